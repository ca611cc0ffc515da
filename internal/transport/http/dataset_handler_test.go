package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apierrors "ordersight/internal/errors"
	"ordersight/internal/services"
	apiv1 "ordersight/pkg/contracts/api/v1"
	"ordersight/pkg/contracts/domain"
)

type fakeDatasetService struct {
	uploadFn  func(ctx context.Context, name string, r io.Reader) (*services.Dataset, error)
	getFn     func(ctx context.Context, id string) (*services.Dataset, error)
	deleteFn  func(ctx context.Context, id string) error
	analyzeFn func(ctx context.Context, id string, req apiv1.AnalyzeRequest) (*apiv1.AnalyzeResponse, error)
}

func (f *fakeDatasetService) Upload(ctx context.Context, name string, r io.Reader) (*services.Dataset, error) {
	return f.uploadFn(ctx, name, r)
}

func (f *fakeDatasetService) Get(ctx context.Context, id string) (*services.Dataset, error) {
	return f.getFn(ctx, id)
}

func (f *fakeDatasetService) Delete(ctx context.Context, id string) error {
	return f.deleteFn(ctx, id)
}

func (f *fakeDatasetService) Analyze(ctx context.Context, id string, req apiv1.AnalyzeRequest) (*apiv1.AnalyzeResponse, error) {
	return f.analyzeFn(ctx, id, req)
}

func (f *fakeDatasetService) Summary(d *services.Dataset) apiv1.DatasetSummary {
	return apiv1.DatasetSummary{ID: d.ID, Name: d.Name, Rows: d.Table.Len()}
}

func testDataset() *services.Dataset {
	table := domain.NewCanonicalTable([]domain.OrderRecord{
		{OrderID: "1", OrderDate: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), Quantity: 2, ShipCountry: "US", ProductRef: "A", VipFlag: 1},
	})
	return &services.Dataset{ID: "ds-1", Name: "orders.csv", Table: table, UploadedAt: time.Now()}
}

func newTestRouter(svc DatasetServiceInterface) chi.Router {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	handler := NewDatasetHandler(svc, logger, apierrors.NewErrorHandler(logger, false), 1<<20)
	r := chi.NewRouter()
	r.Mount("/api/datasets", handler.Routes())
	return r
}

func multipartUpload(t *testing.T, filename, content string) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	part, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return body, mw.FormDataContentType()
}

func TestDatasetHandler_Upload(t *testing.T) {
	svc := &fakeDatasetService{
		uploadFn: func(ctx context.Context, name string, r io.Reader) (*services.Dataset, error) {
			assert.Equal(t, "orders.csv", name)
			return testDataset(), nil
		},
	}
	router := newTestRouter(svc)

	body, contentType := multipartUpload(t, "orders.csv", "ID,orderdate\n")
	req := httptest.NewRequest(http.MethodPost, "/api/datasets", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	var summary apiv1.DatasetSummary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &summary))
	assert.Equal(t, "ds-1", summary.ID)
	assert.Equal(t, 1, summary.Rows)
}

func TestDatasetHandler_Upload_MissingColumns(t *testing.T) {
	svc := &fakeDatasetService{
		uploadFn: func(ctx context.Context, name string, r io.Reader) (*services.Dataset, error) {
			return nil, apierrors.NewSchemaError([]string{"quantity", "Vip"})
		},
	}
	router := newTestRouter(svc)

	body, contentType := multipartUpload(t, "orders.csv", "ID,orderdate\n")
	req := httptest.NewRequest(http.MethodPost, "/api/datasets", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "quantity")
	assert.Contains(t, rec.Body.String(), "Vip")
}

func TestDatasetHandler_Upload_UnsupportedFormat(t *testing.T) {
	svc := &fakeDatasetService{
		uploadFn: func(ctx context.Context, name string, r io.Reader) (*services.Dataset, error) {
			return nil, services.ErrUnsupportedFormat
		},
	}
	router := newTestRouter(svc)

	body, contentType := multipartUpload(t, "orders.pdf", "x")
	req := httptest.NewRequest(http.MethodPost, "/api/datasets", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Unsupported file format")
}

func TestDatasetHandler_Upload_NoFileField(t *testing.T) {
	svc := &fakeDatasetService{}
	router := newTestRouter(svc)

	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	require.NoError(t, mw.WriteField("other", "value"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/datasets", body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDatasetHandler_Get_NotFound(t *testing.T) {
	svc := &fakeDatasetService{
		getFn: func(ctx context.Context, id string) (*services.Dataset, error) {
			return nil, services.ErrDatasetNotFound
		},
	}
	router := newTestRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/datasets/nope", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))
}

func TestDatasetHandler_Delete(t *testing.T) {
	deleted := ""
	svc := &fakeDatasetService{
		deleteFn: func(ctx context.Context, id string) error {
			deleted = id
			return nil
		},
	}
	router := newTestRouter(svc)

	req := httptest.NewRequest(http.MethodDelete, "/api/datasets/ds-1", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "ds-1", deleted)
}

func TestDatasetHandler_Analyze(t *testing.T) {
	svc := &fakeDatasetService{
		analyzeFn: func(ctx context.Context, id string, req apiv1.AnalyzeRequest) (*apiv1.AnalyzeResponse, error) {
			assert.Equal(t, "ds-1", id)
			assert.Equal(t, []string{"US"}, req.Countries)
			return &apiv1.AnalyzeResponse{Status: "success"}, nil
		},
	}
	router := newTestRouter(svc)

	req := httptest.NewRequest(http.MethodPost, "/api/datasets/ds-1/analyze",
		strings.NewReader(`{"countries":["US"],"vip_mode":"all"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"success"`)
}

func TestDatasetHandler_Analyze_EmptyBodyMeansEverything(t *testing.T) {
	svc := &fakeDatasetService{
		analyzeFn: func(ctx context.Context, id string, req apiv1.AnalyzeRequest) (*apiv1.AnalyzeResponse, error) {
			assert.Empty(t, req.Countries)
			return &apiv1.AnalyzeResponse{Status: "success"}, nil
		},
	}
	router := newTestRouter(svc)

	req := httptest.NewRequest(http.MethodPost, "/api/datasets/ds-1/analyze", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestDatasetHandler_Analyze_InvalidVipMode(t *testing.T) {
	svc := &fakeDatasetService{}
	router := newTestRouter(svc)

	req := httptest.NewRequest(http.MethodPost, "/api/datasets/ds-1/analyze",
		strings.NewReader(`{"vip_mode":"sometimes"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "VipMode")
}

func TestDatasetHandler_Analyze_MalformedJSON(t *testing.T) {
	svc := &fakeDatasetService{}
	router := newTestRouter(svc)

	req := httptest.NewRequest(http.MethodPost, "/api/datasets/ds-1/analyze",
		strings.NewReader(`{"countries":`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
