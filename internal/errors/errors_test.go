package errors

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAPIError(t *testing.T) {
	err := New(http.StatusBadRequest, "INVALID_REQUEST", "bad input")

	assert.Equal(t, "bad input", err.Error())
	assert.Equal(t, http.StatusBadRequest, err.StatusCode)
	assert.Equal(t, "INVALID_REQUEST", err.ErrorCode)
}

func TestNewWithDetails(t *testing.T) {
	err := NewWithDetails(http.StatusBadRequest, "VALIDATION_FAILED", "validation failed", ValidationError{
		Field:   "start_date",
		Message: "must be a valid date",
	})

	require.NotNil(t, err.Details)
	detail, ok := err.Details.(ValidationError)
	require.True(t, ok)
	assert.Equal(t, "start_date", detail.Field)
}

func TestSchemaError(t *testing.T) {
	err := NewSchemaError("Added Time", ErrMissingColumn)

	assert.True(t, errors.Is(err, ErrMissingColumn))
	assert.Contains(t, err.Error(), "Added Time")
	assert.Contains(t, err.Error(), "missing required column")
}

func TestProblemDetailsMarshalJSON(t *testing.T) {
	problem := NewProblemDetails(
		http.StatusUnprocessableEntity,
		TypeSchema,
		"Workbook Schema Error",
		"missing required column: Added Time",
		"/api/sampling/process",
	).WithExtension("trace_id", "abc-123")

	data, err := json.Marshal(problem)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &decoded))

	assert.Equal(t, TypeSchema, decoded["type"])
	assert.Equal(t, float64(422), decoded["status"])
	assert.Equal(t, "abc-123", decoded["trace_id"])
}

func TestMapPipelineError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{
			name:       "missing sheet",
			err:        NewSchemaError("RawData", ErrSheetNotFound),
			wantStatus: http.StatusUnprocessableEntity,
			wantCode:   "SHEET_NOT_FOUND",
		},
		{
			name:       "missing column",
			err:        NewSchemaError("Added Time", ErrMissingColumn),
			wantStatus: http.StatusUnprocessableEntity,
			wantCode:   "MISSING_COLUMN",
		},
		{
			name:       "corrupt workbook",
			err:        fmt.Errorf("open: %w", ErrWorkbookCorrupt),
			wantStatus: http.StatusBadRequest,
			wantCode:   "WORKBOOK_CORRUPT",
		},
		{
			name:       "inverted range",
			err:        ErrInvalidRange,
			wantStatus: http.StatusBadRequest,
			wantCode:   "INVALID_RANGE",
		},
		{
			name:       "unknown error",
			err:        errors.New("boom"),
			wantStatus: http.StatusInternalServerError,
			wantCode:   "INTERNAL_ERROR",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			renderer := MapPipelineError(tt.err, "/api/sampling/process", "trace-1")
			problem, ok := renderer.(*ProblemDetails)
			require.True(t, ok)

			assert.Equal(t, tt.wantStatus, problem.Status)
			assert.Equal(t, tt.wantCode, problem.Extensions["error_code"])
			assert.Equal(t, "trace-1", problem.Extensions["trace_id"])
		})
	}
}

func TestErrorHandlerHandleError(t *testing.T) {
	handler := NewErrorHandler(slog.Default(), false)

	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"api error", ErrMissingUpload, http.StatusBadRequest},
		{"schema error", NewSchemaError("RawData", ErrSheetNotFound), http.StatusUnprocessableEntity},
		{"range error", ErrInvalidRange, http.StatusBadRequest},
		{"generic error", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			r := httptest.NewRequest(http.MethodPost, "/api/sampling/process", nil)

			handler.HandleError(w, r, tt.err)

			assert.Equal(t, tt.wantStatus, w.Code)

			var problem map[string]interface{}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &problem))
			assert.NotEmpty(t, problem["type"])
			assert.NotEmpty(t, problem["title"])
		})
	}
}

func TestErrorHandlerNotFound(t *testing.T) {
	handler := NewErrorHandler(slog.Default(), false)

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/missing", nil)

	handler.NotFound(w, r)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
