package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apierrors "portsampler/internal/errors"
)

type boundsForm struct {
	StartDate string `json:"start_date" validate:"omitempty,dateonly"`
	StartTime string `json:"start_time" validate:"omitempty,timeofday"`
	EndDate   string `json:"end_date" validate:"omitempty,dateonly"`
	EndTime   string `json:"end_time" validate:"omitempty,timeofday"`
}

func newTestValidation(t *testing.T) *ValidationMiddleware {
	t.Helper()
	return NewValidationMiddleware(testLogger(), apierrors.NewErrorHandler(testLogger(), false))
}

func TestValidateStructBoundsForm(t *testing.T) {
	m := newTestValidation(t)

	tests := []struct {
		name    string
		form    boundsForm
		wantErr bool
	}{
		{
			name: "all fields valid",
			form: boundsForm{StartDate: "2024-03-01", StartTime: "08:30", EndDate: "2024-03-05", EndTime: "17:00"},
		},
		{
			name: "all fields empty",
			form: boundsForm{},
		},
		{
			name:    "bad date",
			form:    boundsForm{StartDate: "03/01/2024"},
			wantErr: true,
		},
		{
			name:    "bad time",
			form:    boundsForm{EndTime: "5pm"},
			wantErr: true,
		},
		{
			name:    "date out of calendar",
			form:    boundsForm{StartDate: "2024-13-40"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := m.ValidateStruct(tt.form)
			if tt.wantErr {
				require.Error(t, err)
				apiErr, ok := err.(*apierrors.APIError)
				require.True(t, ok)
				assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidationErrorUsesJSONFieldName(t *testing.T) {
	m := newTestValidation(t)

	err := m.ValidateStruct(boundsForm{StartDate: "bogus"})
	require.Error(t, err)

	apiErr := err.(*apierrors.APIError)
	details, ok := apiErr.Details.(apierrors.ValidationErrors)
	require.True(t, ok)
	require.NotEmpty(t, details.Errors)
	assert.Equal(t, "start_date", details.Errors[0].Field)
}

func TestContentTypeValidator(t *testing.T) {
	handler := ContentTypeValidator("multipart/form-data")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	t.Run("accepted", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		req.Header.Set("Content-Type", "multipart/form-data; boundary=xyz")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("missing", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unsupported", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
	})

	t.Run("get passes through", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}
