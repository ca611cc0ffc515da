package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	apierrors "ordersight/internal/errors"
	"ordersight/internal/services"
	apiv1 "ordersight/pkg/contracts/api/v1"
)

// DatasetHandler handles dataset upload, lookup, and analysis requests.
type DatasetHandler struct {
	service        DatasetServiceInterface
	logger         *slog.Logger
	errorHandler   *apierrors.ErrorHandler
	validate       *validator.Validate
	maxUploadBytes int64
}

// NewDatasetHandler creates a dataset handler.
func NewDatasetHandler(service DatasetServiceInterface, logger *slog.Logger, errorHandler *apierrors.ErrorHandler, maxUploadBytes int64) *DatasetHandler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = 32 << 20
	}
	return &DatasetHandler{
		service:        service,
		logger:         logger.With(slog.String("component", "dataset_handler")),
		errorHandler:   errorHandler,
		validate:       validator.New(),
		maxUploadBytes: maxUploadBytes,
	}
}

// Routes returns the dataset routes.
func (h *DatasetHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Post("/", h.Upload)

	r.Route("/{datasetID}", func(r chi.Router) {
		r.Use(h.DatasetCtx)
		r.Get("/", h.Get)
		r.Delete("/", h.Delete)
		r.Post("/analyze", h.Analyze)
	})

	return r
}

// DatasetCtx validates the dataset ID parameter.
func (h *DatasetHandler) DatasetCtx(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if chi.URLParam(r, "datasetID") == "" {
			h.errorHandler.HandleError(w, r, apierrors.ErrValidation("datasetID", "Dataset ID is required"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Upload handles POST /api/datasets. The order file rides in the "file"
// multipart field; its extension selects the parser.
func (h *DatasetHandler) Upload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			h.errorHandler.HandleError(w, r, apierrors.ErrPayloadTooLarge)
			return
		}
		h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("file", "A file upload is required"))
		return
	}
	defer file.Close()

	h.logger.InfoContext(ctx, "dataset upload received",
		slog.String("filename", header.Filename),
		slog.Int64("size", header.Size),
	)

	d, err := h.service.Upload(ctx, header.Filename, file)
	if err != nil {
		h.handleUploadError(w, r, err)
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, h.service.Summary(d))
}

func (h *DatasetHandler) handleUploadError(w http.ResponseWriter, r *http.Request, err error) {
	var schemaErr *apierrors.SchemaError
	switch {
	case errors.As(err, &schemaErr):
		h.errorHandler.HandleError(w, r, apierrors.SchemaUploadError(schemaErr))
	case errors.Is(err, services.ErrUnsupportedFormat):
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("file", "Unsupported file format, expected .csv or .xlsx"))
	default:
		h.logger.ErrorContext(r.Context(), "dataset upload failed",
			slog.String("error", err.Error()))
		h.errorHandler.HandleError(w, r, err)
	}
}

// Get handles GET /api/datasets/{datasetID}.
func (h *DatasetHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "datasetID")

	d, err := h.service.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, services.ErrDatasetNotFound) {
			h.errorHandler.HandleError(w, r, apierrors.DatasetNotFoundError(id))
			return
		}
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, h.service.Summary(d))
}

// Delete handles DELETE /api/datasets/{datasetID}.
func (h *DatasetHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "datasetID")

	if err := h.service.Delete(r.Context(), id); err != nil {
		if errors.Is(err, services.ErrDatasetNotFound) {
			h.errorHandler.HandleError(w, r, apierrors.DatasetNotFoundError(id))
			return
		}
		h.errorHandler.HandleError(w, r, err)
		return
	}

	h.logger.InfoContext(r.Context(), "dataset deleted", slog.String("dataset_id", id))
	w.WriteHeader(http.StatusNoContent)
}

// Analyze handles POST /api/datasets/{datasetID}/analyze. An empty body
// means analyze everything.
func (h *DatasetHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "datasetID")

	var req apiv1.AnalyzeRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
			return
		}
	}

	if err := h.validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			first := verrs[0]
			h.errorHandler.HandleError(w, r, apierrors.ErrValidation(first.Field(), "failed validation on "+first.Tag()))
			return
		}
		h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
		return
	}

	resp, err := h.service.Analyze(ctx, id, req)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrDatasetNotFound):
			h.errorHandler.HandleError(w, r, apierrors.DatasetNotFoundError(id))
		default:
			h.logger.ErrorContext(ctx, "analysis failed",
				slog.String("dataset_id", id),
				slog.String("error", err.Error()))
			h.errorHandler.HandleError(w, r, err)
		}
		return
	}

	render.JSON(w, r, resp)
}
