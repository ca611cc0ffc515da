package errors

import (
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *AppError
		want string
	}{
		{
			name: "without cause",
			err:  NewValidationError("vip_mode must be one of all, vip, non_vip"),
			want: "[VALIDATION] vip_mode must be one of all, vip, non_vip",
		},
		{
			name: "with cause",
			err:  NewParsingError("cannot read upload", fmt.Errorf("unexpected EOF")),
			want: "[PARSING] cannot read upload: unexpected EOF",
		},
		{
			name: "not found",
			err:  NewNotFoundError("dataset"),
			want: "[NOT_FOUND] dataset not found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	cause := fmt.Errorf("unexpected EOF")
	err := NewParsingError("cannot read upload", cause)

	assert.ErrorIs(t, err, cause)
}

func TestAppError_WithContext(t *testing.T) {
	err := NewParsingError("bad row", nil).WithContext("row", 7)

	assert.Equal(t, 7, err.Context["row"])
}

func TestSchemaError(t *testing.T) {
	err := NewSchemaError([]string{"orderdate", "Vip"})

	assert.True(t, IsSchemaError(err))
	assert.Contains(t, err.Error(), "orderdate, Vip")
	assert.False(t, IsSchemaError(fmt.Errorf("other")))
}

func TestErrorHandler_ErrorToProblem(t *testing.T) {
	handler := NewErrorHandler(slog.Default(), false)
	req := httptest.NewRequest(http.MethodPost, "/api/datasets", nil)

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantType   string
	}{
		{
			name:       "schema error",
			err:        NewSchemaError([]string{"ID"}),
			wantStatus: http.StatusUnprocessableEntity,
			wantType:   TypeMissingColumns,
		},
		{
			name:       "api error",
			err:        DatasetNotFoundError("abc"),
			wantStatus: http.StatusNotFound,
			wantType:   TypeDatasetNotFound,
		},
		{
			name:       "app validation error",
			err:        NewValidationError("bad criteria"),
			wantStatus: http.StatusBadRequest,
			wantType:   TypeValidation,
		},
		{
			name:       "unknown error",
			err:        fmt.Errorf("boom"),
			wantStatus: http.StatusInternalServerError,
			wantType:   TypeInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			problem := handler.ErrorToProblem(tt.err, req)

			require.NotNil(t, problem)
			assert.Equal(t, tt.wantStatus, problem.Status)
			assert.Equal(t, tt.wantType, problem.Type)
		})
	}
}

func TestErrorHandler_HandleError(t *testing.T) {
	handler := NewErrorHandler(slog.Default(), false)
	req := httptest.NewRequest(http.MethodPost, "/api/datasets", nil)
	rec := httptest.NewRecorder()

	handler.HandleError(rec, req, NewSchemaError([]string{"quantity"}))

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "missing_columns")
	assert.Contains(t, rec.Body.String(), "quantity")
}

func TestProblemDetails_MarshalJSON(t *testing.T) {
	problem := NewProblemDetails(http.StatusBadRequest, TypeValidation, "Validation Failed", "detail", "/api/x").
		WithExtension("error_code", "VALIDATION_FAILED")

	data, err := problem.MarshalJSON()

	require.NoError(t, err)
	assert.Contains(t, string(data), `"error_code":"VALIDATION_FAILED"`)
	assert.Contains(t, string(data), `"status":400`)
}

func TestSchemaUploadError(t *testing.T) {
	apiErr := SchemaUploadError(NewSchemaError([]string{"ref_total"}))

	assert.Equal(t, http.StatusUnprocessableEntity, apiErr.StatusCode)
	assert.Equal(t, "MISSING_COLUMNS", apiErr.ErrorCode)
}
