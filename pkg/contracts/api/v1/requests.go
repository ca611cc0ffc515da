// Package api contains API contract definitions for the order analytics
// service. Version v1 represents the current stable API version.
package api

import (
	"time"

	"ordersight/pkg/contracts/domain"
)

// AnalyzeRequest carries the filter selections of one dashboard interaction.
// Empty country/ref selections and the "all" sentinel both expand to the
// full observed domain of the field.
type AnalyzeRequest struct {
	DateFrom    string   `json:"date_from" validate:"omitempty,datetime=2006-01-02"`
	DateTo      string   `json:"date_to" validate:"omitempty,datetime=2006-01-02"`
	Countries   []string `json:"countries,omitempty"`
	ProductRefs []string `json:"product_refs,omitempty"`
	VipMode     string   `json:"vip_mode" validate:"omitempty,oneof=all vip non_vip"`
}

// Criteria converts the request into domain filter criteria against the
// given table, defaulting unset fields to the match-everything selection.
func (r AnalyzeRequest) Criteria(t *domain.CanonicalTable) (domain.FilterCriteria, error) {
	c := domain.AllRecords(t)

	if r.DateFrom != "" {
		from, err := time.Parse("2006-01-02", r.DateFrom)
		if err != nil {
			return domain.FilterCriteria{}, err
		}
		c.DateFrom = from
	}
	if r.DateTo != "" {
		to, err := time.Parse("2006-01-02", r.DateTo)
		if err != nil {
			return domain.FilterCriteria{}, err
		}
		c.DateTo = to
	}
	if len(r.Countries) > 0 {
		c.Countries = r.Countries
	}
	if len(r.ProductRefs) > 0 {
		c.ProductRefs = r.ProductRefs
	}
	if r.VipMode != "" {
		c.VipMode = domain.VipMode(r.VipMode)
	}
	return c, nil
}

// DatasetSummary describes an uploaded dataset and the observed value
// domains the dashboard needs to build its filter widgets.
type DatasetSummary struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Rows        int      `json:"rows"`
	DroppedRows int      `json:"dropped_rows"`
	Countries   []string `json:"countries"`
	ProductRefs []string `json:"product_refs"`
	DateFrom    string   `json:"date_from,omitempty"`
	DateTo      string   `json:"date_to,omitempty"`
	UploadedAt  string   `json:"uploaded_at"`
}

// AnalyzeResponse wraps an analysis result. When the filter combination
// matches no rows, Empty is true, Notice carries the user guidance, and
// Result is omitted.
type AnalyzeResponse struct {
	Status string                 `json:"status"`
	Empty  bool                   `json:"empty,omitempty"`
	Notice string                 `json:"notice,omitempty"`
	Result *domain.AnalysisResult `json:"result,omitempty"`
	Report *ReportPayload         `json:"report,omitempty"`
}

// ReportPayload is the display-ready shape of an analysis result: tables
// for the ranked outputs and series for the bar charts. Ordering follows
// the aggregators and is never re-sorted here.
type ReportPayload struct {
	Metrics      []Metric    `json:"metrics"`
	CountryTable Table       `json:"country_table"`
	ProductTable Table       `json:"product_table"`
	PairTable    Table       `json:"pair_table"`
	CountryChart ChartSeries `json:"country_chart"`
	ProductChart ChartSeries `json:"product_chart"`
}

// Metric is a single scalar for the dashboard metric strip.
type Metric struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Table is a generic display table: a header plus pre-ordered rows.
type Table struct {
	Title   string     `json:"title"`
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
}

// ChartSeries is a category/value series for bar-chart rendering.
type ChartSeries struct {
	Title      string    `json:"title"`
	Categories []string  `json:"categories"`
	Values     []float64 `json:"values"`
}
