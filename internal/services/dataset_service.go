// Package services holds the application services between the HTTP
// transport and the analytical core. The dataset service owns the live
// dataset sessions: each uploaded dataset gets its own canonical table and
// is analyzed independently, with no mutable state shared across sessions.
package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"ordersight/internal/analysis"
	"ordersight/internal/dataset"
	apperrors "ordersight/internal/errors"
	"ordersight/internal/infrastructure"
	"ordersight/internal/report"
	apiv1 "ordersight/pkg/contracts/api/v1"
	"ordersight/pkg/contracts/domain"
)

// Notifier receives dataset lifecycle events for the presentation layer.
type Notifier interface {
	NotifyAnalysisUpdated(datasetID string)
	NotifyDatasetDeleted(datasetID string)
}

// Dataset is one live dataset session.
type Dataset struct {
	ID          string
	Name        string
	Table       *domain.CanonicalTable
	DroppedRows int
	UploadedAt  time.Time
}

// DatasetServiceConfig holds configuration options for the dataset service.
type DatasetServiceConfig struct {
	// MaxSessions caps live datasets; the oldest session is evicted when
	// the cap is exceeded.
	MaxSessions int
	// TopProducts is the N of the product popularity ranking.
	TopProducts int
}

// DatasetService manages dataset sessions and runs analyses against them.
type DatasetService struct {
	logger     *slog.Logger
	normalizer *dataset.Normalizer
	analyzer   *analysis.Analyzer
	metrics    *infrastructure.Metrics
	notifier   Notifier

	maxSessions int

	mu       sync.RWMutex
	datasets map[string]*Dataset
	order    []string
}

// NewDatasetService creates the dataset service. Metrics and notifier may
// be nil; the service then skips instrumenting and notifying.
func NewDatasetService(logger *slog.Logger, cfg DatasetServiceConfig, metrics *infrastructure.Metrics, notifier Notifier) *DatasetService {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.MaxSessions <= 0 {
		cfg.MaxSessions = 16
	}
	if cfg.TopProducts <= 0 {
		cfg.TopProducts = 10
	}

	return &DatasetService{
		logger:      logger.With(slog.String("component", "dataset_service")),
		normalizer:  dataset.NewNormalizer(logger),
		analyzer:    analysis.NewAnalyzer(logger, analysis.AnalyzerConfig{TopProducts: cfg.TopProducts}),
		metrics:     metrics,
		notifier:    notifier,
		maxSessions: cfg.MaxSessions,
		datasets:    make(map[string]*Dataset),
	}
}

// Upload normalizes an uploaded file and registers it as a new dataset
// session. The format is chosen by file extension: .csv or .xlsx.
func (s *DatasetService) Upload(ctx context.Context, name string, r io.Reader) (*Dataset, error) {
	var result *dataset.Result
	var err error

	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv", ".txt", "":
		result, err = s.normalizer.NormalizeCSV(ctx, r)
	case ".xlsx":
		result, err = s.normalizer.NormalizeXLSX(ctx, r)
	default:
		s.countUpload("rejected")
		return nil, ErrUnsupportedFormat
	}
	if err != nil {
		s.countUpload("failed")
		return nil, err
	}

	d := &Dataset{
		ID:          uuid.New().String(),
		Name:        name,
		Table:       result.Table,
		DroppedRows: result.DroppedRows,
		UploadedAt:  time.Now(),
	}

	s.mu.Lock()
	s.datasets[d.ID] = d
	s.order = append(s.order, d.ID)
	for len(s.order) > s.maxSessions {
		oldest := s.order[0]
		s.order = s.order[1:]
		delete(s.datasets, oldest)
		s.logger.InfoContext(ctx, "evicted oldest dataset session",
			slog.String("dataset_id", oldest))
	}
	active := len(s.datasets)
	s.mu.Unlock()

	if s.metrics != nil {
		s.metrics.UploadsTotal.WithLabelValues("accepted").Inc()
		s.metrics.RowsNormalized.Add(float64(d.Table.Len()))
		s.metrics.RowsDropped.Add(float64(d.DroppedRows))
		s.metrics.ActiveDatasets.Set(float64(active))
	}

	s.logger.InfoContext(ctx, "dataset uploaded",
		slog.String("dataset_id", d.ID),
		slog.String("name", d.Name),
		slog.Int("rows", d.Table.Len()),
		slog.Int("dropped_rows", d.DroppedRows))

	return d, nil
}

// Get returns a dataset session by id.
func (s *DatasetService) Get(ctx context.Context, id string) (*Dataset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	d, ok := s.datasets[id]
	if !ok {
		return nil, ErrDatasetNotFound
	}
	return d, nil
}

// Delete discards a dataset session.
func (s *DatasetService) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.datasets[id]; !ok {
		return ErrDatasetNotFound
	}
	delete(s.datasets, id)
	for i, existing := range s.order {
		if existing == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	if s.metrics != nil {
		s.metrics.ActiveDatasets.Set(float64(len(s.datasets)))
	}

	if s.notifier != nil {
		s.notifier.NotifyDatasetDeleted(id)
	}

	s.logger.InfoContext(ctx, "dataset deleted", slog.String("dataset_id", id))
	return nil
}

// Analyze runs the full pipeline for one dataset against the requested
// criteria and shapes the response for the dashboard. An empty filter
// result comes back as a notice payload, not an error.
func (s *DatasetService) Analyze(ctx context.Context, id string, req apiv1.AnalyzeRequest) (*apiv1.AnalyzeResponse, error) {
	d, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	criteria, err := req.Criteria(d.Table)
	if err != nil {
		return nil, apperrors.NewValidationError("invalid filter criteria: " + err.Error())
	}

	started := time.Now()
	result, err := s.analyzer.Analyze(ctx, d.Table, criteria)
	if s.metrics != nil {
		s.metrics.AnalyzeDuration.Observe(time.Since(started).Seconds())
	}

	if errors.Is(err, apperrors.ErrEmptyResult) {
		s.countAnalysis("empty")
		return &apiv1.AnalyzeResponse{
			Status: "empty",
			Empty:  true,
			Notice: "No data available for the selected filters. Please adjust your filters.",
		}, nil
	}
	if err != nil {
		s.countAnalysis("failed")
		return nil, err
	}

	s.countAnalysis("success")
	if s.notifier != nil {
		s.notifier.NotifyAnalysisUpdated(d.ID)
	}

	return &apiv1.AnalyzeResponse{
		Status: "success",
		Result: result,
		Report: report.Format(result),
	}, nil
}

// Summary builds the dataset summary that drives the filter widgets.
func (s *DatasetService) Summary(d *Dataset) apiv1.DatasetSummary {
	summary := apiv1.DatasetSummary{
		ID:          d.ID,
		Name:        d.Name,
		Rows:        d.Table.Len(),
		DroppedRows: d.DroppedRows,
		Countries:   d.Table.Countries(),
		ProductRefs: d.Table.ProductRefs(),
		UploadedAt:  d.UploadedAt.Format(time.RFC3339),
	}
	if d.Table.Len() > 0 {
		from, to := d.Table.DateBounds()
		summary.DateFrom = from.Format("2006-01-02")
		summary.DateTo = to.Format("2006-01-02")
	}
	return summary
}

func (s *DatasetService) countUpload(outcome string) {
	if s.metrics != nil {
		s.metrics.UploadsTotal.WithLabelValues(outcome).Inc()
	}
}

func (s *DatasetService) countAnalysis(outcome string) {
	if s.metrics != nil {
		s.metrics.AnalysesTotal.WithLabelValues(outcome).Inc()
	}
}
