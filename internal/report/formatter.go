// Package report shapes analysis results for presentation. The formatter
// converts aggregator outputs into display-ready tables and chart series;
// the writers export them as CSV, JSON, and XLSX files. Neither computes
// anything: ordering established by the aggregators is preserved as-is.
package report

import (
	"fmt"
	"strconv"

	apiv1 "ordersight/pkg/contracts/api/v1"
	"ordersight/pkg/contracts/domain"
)

// Format shapes an analysis result into the display payload consumed by
// the dashboard widgets and the chart layer.
func Format(result *domain.AnalysisResult) *apiv1.ReportPayload {
	return &apiv1.ReportPayload{
		Metrics:      metrics(result),
		CountryTable: countryTable(result.Country),
		ProductTable: productTable(result.Product),
		PairTable:    pairTable(result.Product),
		CountryChart: countryChart(result.Country),
		ProductChart: productChart(result.Product),
	}
}

func metrics(result *domain.AnalysisResult) []apiv1.Metric {
	return []apiv1.Metric{
		{Label: "Total Orders", Value: strconv.Itoa(result.Country.TotalOrders)},
		{Label: "Unique Countries", Value: strconv.Itoa(result.Country.UniqueCountries)},
		{Label: "Total Quantity Sold", Value: strconv.Itoa(result.Product.TotalQuantitySold)},
		{Label: "Average Order Size", Value: fmt.Sprintf("%.2f", result.Product.AverageOrderSize)},
	}
}

func countryTable(summary domain.CountrySummary) apiv1.Table {
	rows := make([][]string, 0, len(summary.OrdersByCountry))
	for _, c := range summary.OrdersByCountry {
		rows = append(rows, []string{c.Country, strconv.Itoa(c.Orders)})
	}
	return apiv1.Table{
		Title:   "Country Orders in Descending Order",
		Columns: []string{"Country", "Number of Orders"},
		Rows:    rows,
	}
}

func productTable(summary domain.ProductSummary) apiv1.Table {
	rows := make([][]string, 0, len(summary.PopularProducts))
	for _, p := range summary.PopularProducts {
		rows = append(rows, []string{p.ProductRef, strconv.Itoa(p.Quantity)})
	}
	return apiv1.Table{
		Title:   "Top Popular Products by Quantity",
		Columns: []string{"Product Reference", "Total Quantity Sold"},
		Rows:    rows,
	}
}

func pairTable(summary domain.ProductSummary) apiv1.Table {
	rows := make([][]string, 0, len(summary.Cooccurrences))
	for _, pair := range summary.Cooccurrences {
		rows = append(rows, []string{
			fmt.Sprintf("%s + %s", pair.First, pair.Second),
			strconv.Itoa(pair.Count),
		})
	}
	return apiv1.Table{
		Title:   "Product Reference Co-occurrences in Orders",
		Columns: []string{"Product Pair", "Co-occurrence Count"},
		Rows:    rows,
	}
}

func countryChart(summary domain.CountrySummary) apiv1.ChartSeries {
	categories := make([]string, 0, len(summary.OrdersByCountry))
	values := make([]float64, 0, len(summary.OrdersByCountry))
	for _, c := range summary.OrdersByCountry {
		categories = append(categories, c.Country)
		values = append(values, float64(c.Orders))
	}
	return apiv1.ChartSeries{
		Title:      "Distribution of Orders by Country",
		Categories: categories,
		Values:     values,
	}
}

func productChart(summary domain.ProductSummary) apiv1.ChartSeries {
	categories := make([]string, 0, len(summary.PopularProducts))
	values := make([]float64, 0, len(summary.PopularProducts))
	for _, p := range summary.PopularProducts {
		categories = append(categories, p.ProductRef)
		values = append(values, float64(p.Quantity))
	}
	return apiv1.ChartSeries{
		Title:      "Top Popular Products by Quantity",
		Categories: categories,
		Values:     values,
	}
}
