package analysis

import (
	"context"
	"log/slog"

	"ordersight/pkg/contracts/domain"
)

// AnalyzerConfig holds configuration options for the Analyzer.
type AnalyzerConfig struct {
	// TopProducts is the N of the product popularity ranking.
	TopProducts int
}

// DefaultAnalyzerConfig returns the configuration used by the dashboard.
func DefaultAnalyzerConfig() AnalyzerConfig {
	return AnalyzerConfig{TopProducts: 10}
}

// Analyzer runs the full analytical pipeline for one canonical table. Runs
// are synchronous and stateless; every call recomputes from the table and
// the given criteria, nothing is cached across filter changes.
type Analyzer struct {
	logger      *slog.Logger
	topProducts int
}

// NewAnalyzer creates an analyzer with the given configuration.
func NewAnalyzer(logger *slog.Logger, config AnalyzerConfig) *Analyzer {
	if logger == nil {
		logger = slog.Default()
	}
	if config.TopProducts <= 0 {
		config.TopProducts = 10
	}
	return &Analyzer{
		logger:      logger.With(slog.String("component", "analyzer")),
		topProducts: config.TopProducts,
	}
}

// Analyze filters the table and runs both aggregators over the filtered
// view. When the criteria match no rows it returns errors.ErrEmptyResult
// before any aggregation runs.
func (a *Analyzer) Analyze(ctx context.Context, t *domain.CanonicalTable, c domain.FilterCriteria) (*domain.AnalysisResult, error) {
	view, err := ApplyFilter(t, c)
	if err != nil {
		return nil, err
	}

	product, err := AggregateProducts(view, a.topProducts)
	if err != nil {
		return nil, err
	}

	result := &domain.AnalysisResult{
		Criteria: c,
		RowCount: view.Len(),
		Country:  AggregateCountries(view),
		Product:  product,
	}

	a.logger.InfoContext(ctx, "analysis complete",
		slog.Int("rows", result.RowCount),
		slog.Int("total_orders", result.Country.TotalOrders),
		slog.Int("unique_countries", result.Country.UniqueCountries),
		slog.Int("total_quantity", result.Product.TotalQuantitySold),
		slog.Int("cooccurrence_pairs", len(result.Product.Cooccurrences)))

	return result, nil
}
