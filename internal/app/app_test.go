package app

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ordersight/internal/config"
	"ordersight/internal/infrastructure"
	"ordersight/internal/services"
	ws "ordersight/internal/websocket"
)

func newTestApplication(t *testing.T) *Application {
	t.Helper()
	cfg := config.Default()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	metrics := infrastructure.NewMetrics()
	hub := ws.NewHub(logger)

	app := &Application{
		Config: cfg,
		Logger: logger,
		DatasetService: services.NewDatasetService(logger, services.DatasetServiceConfig{
			MaxSessions: cfg.Datasets.MaxSessions,
			TopProducts: cfg.Analysis.TopProducts,
		}, metrics, hub),
		Metrics:      metrics,
		WebSocketHub: hub,
	}
	app.Router = app.buildRouter()
	return app
}

func TestRouter_Healthz(t *testing.T) {
	app := newTestApplication(t)

	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/healthz", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
}

func TestRouter_Metrics(t *testing.T) {
	app := newTestApplication(t)

	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRouter_UnknownRouteIsProblemJSON(t *testing.T) {
	app := newTestApplication(t)

	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/nope", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))
}

func TestRouter_DatasetNotFound(t *testing.T) {
	app := newTestApplication(t)

	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/datasets/missing", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
