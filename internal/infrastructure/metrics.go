package infrastructure

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus instruments of the service.
type Metrics struct {
	Registry *prometheus.Registry

	UploadsTotal    *prometheus.CounterVec
	RowsNormalized  prometheus.Counter
	RowsDropped     prometheus.Counter
	AnalysesTotal   *prometheus.CounterVec
	AnalyzeDuration prometheus.Histogram
	ActiveDatasets  prometheus.Gauge
}

// NewMetrics creates and registers the service metrics on a fresh registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,
		UploadsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "ordersight_uploads_total",
			Help: "Dataset uploads by outcome.",
		}, []string{"outcome"}),
		RowsNormalized: factory.NewCounter(prometheus.CounterOpts{
			Name: "ordersight_rows_normalized_total",
			Help: "Rows accepted into canonical tables.",
		}),
		RowsDropped: factory.NewCounter(prometheus.CounterOpts{
			Name: "ordersight_rows_dropped_total",
			Help: "Rows dropped during normalization for unparsable dates.",
		}),
		AnalysesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "ordersight_analyses_total",
			Help: "Analysis runs by outcome.",
		}, []string{"outcome"}),
		AnalyzeDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "ordersight_analyze_duration_seconds",
			Help:    "Wall time of one analysis run.",
			Buckets: prometheus.DefBuckets,
		}),
		ActiveDatasets: factory.NewGauge(prometheus.GaugeOpts{
			Name: "ordersight_active_datasets",
			Help: "Dataset sessions currently held in memory.",
		}),
	}
}
