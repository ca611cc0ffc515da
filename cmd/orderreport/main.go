// orderreport analyzes an order file offline and writes CSV, JSON, and
// XLSX reports to an output directory.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"ordersight/internal/analysis"
	"ordersight/internal/dataset"
	apperrors "ordersight/internal/errors"
	"ordersight/internal/report"
	"ordersight/internal/validation"
	"ordersight/pkg/contracts/domain"
)

func main() {
	inPath := flag.String("in", "", "input order file (.csv or .xlsx)")
	outDir := flag.String("out", "reports", "output directory for generated reports")
	dateFrom := flag.String("from", "", "include orders on or after this date (YYYY-MM-DD)")
	dateTo := flag.String("to", "", "include orders on or before this date (YYYY-MM-DD)")
	countries := flag.String("countries", "", "comma-separated country codes, empty means all")
	products := flag.String("products", "", "comma-separated product references, empty means all")
	vipMode := flag.String("vip", "all", "VIP filter: all, vip, or non_vip")
	topN := flag.Int("top", 10, "number of products in the popularity ranking")
	flag.Parse()

	if *inPath == "" {
		slog.Error("missing required -in flag")
		flag.Usage()
		os.Exit(2)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	ctx := context.Background()

	validator := validation.NewFileValidator(logger)
	if err := validator.ValidateOrderFile(*inPath); err != nil {
		logger.Error("input validation failed", "error", err)
		os.Exit(1)
	}
	if err := validator.ValidateOutputDirectory(*outDir); err != nil {
		logger.Error("output validation failed", "error", err)
		os.Exit(1)
	}

	table, dropped, err := loadTable(ctx, logger, *inPath)
	if err != nil {
		var schemaErr *apperrors.SchemaError
		if errors.As(err, &schemaErr) {
			logger.Error("input file is missing required columns",
				"missing", strings.Join(schemaErr.Missing, ", "))
			os.Exit(1)
		}
		logger.Error("failed to load input file", "error", err)
		os.Exit(1)
	}
	if dropped > 0 {
		logger.Warn("rows with unparsable dates were dropped", "count", dropped)
	}

	criteria, err := buildCriteria(table, *dateFrom, *dateTo, *countries, *products, *vipMode)
	if err != nil {
		logger.Error("invalid filter flags", "error", err)
		os.Exit(2)
	}

	analyzer := analysis.NewAnalyzer(logger, analysis.AnalyzerConfig{TopProducts: *topN})
	result, err := analyzer.Analyze(ctx, table, criteria)
	if err != nil {
		if errors.Is(err, apperrors.ErrEmptyResult) {
			fmt.Println("No data available for the selected filters. Please adjust your filters.")
			os.Exit(0)
		}
		logger.Error("analysis failed", "error", err)
		os.Exit(1)
	}

	payload := report.Format(result)
	writer := report.NewWriter(logger)
	if err := writer.WriteAll(ctx, *outDir, result, payload); err != nil {
		logger.Error("failed to write reports", "error", err)
		os.Exit(1)
	}

	fmt.Printf("Reports written to %s (%d orders, %d countries)\n",
		*outDir, result.Country.TotalOrders, result.Country.UniqueCountries)
}

func loadTable(ctx context.Context, logger *slog.Logger, path string) (*domain.CanonicalTable, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, err
	}
	defer f.Close()

	normalizer := dataset.NewNormalizer(logger)

	var result *dataset.Result
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		result, err = normalizer.NormalizeXLSX(ctx, f)
	default:
		result, err = normalizer.NormalizeCSV(ctx, f)
	}
	if err != nil {
		return nil, 0, err
	}
	return result.Table, result.DroppedRows, nil
}

func buildCriteria(table *domain.CanonicalTable, from, to, countries, products, vipMode string) (domain.FilterCriteria, error) {
	criteria := domain.AllRecords(table)

	if from != "" {
		parsed, err := time.Parse("2006-01-02", from)
		if err != nil {
			return criteria, fmt.Errorf("invalid -from date %q: %w", from, err)
		}
		criteria.DateFrom = parsed
	}
	if to != "" {
		parsed, err := time.Parse("2006-01-02", to)
		if err != nil {
			return criteria, fmt.Errorf("invalid -to date %q: %w", to, err)
		}
		criteria.DateTo = parsed
	}
	if countries != "" {
		criteria.Countries = splitList(countries)
	}
	if products != "" {
		criteria.ProductRefs = splitList(products)
	}

	switch vipMode {
	case string(domain.VipModeAll), string(domain.VipModeVipOnly), string(domain.VipModeNonVip):
		criteria.VipMode = domain.VipMode(vipMode)
	default:
		return criteria, fmt.Errorf("invalid -vip mode %q, expected all, vip, or non_vip", vipMode)
	}

	return criteria, nil
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
