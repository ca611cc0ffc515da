package http

import (
	"context"
	"io"

	"ordersight/internal/services"
	apiv1 "ordersight/pkg/contracts/api/v1"
)

// DatasetServiceInterface is what the handlers need from the services
// layer. Kept as an interface so handler tests can swap in fakes.
type DatasetServiceInterface interface {
	Upload(ctx context.Context, name string, r io.Reader) (*services.Dataset, error)
	Get(ctx context.Context, id string) (*services.Dataset, error)
	Delete(ctx context.Context, id string) error
	Analyze(ctx context.Context, id string, req apiv1.AnalyzeRequest) (*apiv1.AnalyzeResponse, error)
	Summary(d *services.Dataset) apiv1.DatasetSummary
}
