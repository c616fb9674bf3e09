package validation

import (
	"mime/multipart"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apierrors "portsampler/internal/errors"
)

func TestValidateUpload(t *testing.T) {
	validator := NewUploadValidator(1024)

	tests := []struct {
		name     string
		header   *multipart.FileHeader
		wantCode string
	}{
		{
			name:   "valid xlsx",
			header: &multipart.FileHeader{Filename: "samples.xlsx", Size: 512},
		},
		{
			name:   "valid xls",
			header: &multipart.FileHeader{Filename: "samples.xls", Size: 512},
		},
		{
			name:   "extension case insensitive",
			header: &multipart.FileHeader{Filename: "SAMPLES.XLSX", Size: 512},
		},
		{
			name:     "missing file",
			header:   nil,
			wantCode: "MISSING_UPLOAD",
		},
		{
			name:     "wrong extension",
			header:   &multipart.FileHeader{Filename: "samples.csv", Size: 512},
			wantCode: "VALIDATION_FAILED",
		},
		{
			name:     "no extension",
			header:   &multipart.FileHeader{Filename: "samples", Size: 512},
			wantCode: "VALIDATION_FAILED",
		},
		{
			name:     "office lock file",
			header:   &multipart.FileHeader{Filename: "~$samples.xlsx", Size: 512},
			wantCode: "VALIDATION_FAILED",
		},
		{
			name:     "over size cap",
			header:   &multipart.FileHeader{Filename: "samples.xlsx", Size: 2048},
			wantCode: "UPLOAD_TOO_LARGE",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validator.ValidateUpload(tt.header)
			if tt.wantCode == "" {
				assert.Nil(t, err)
				return
			}
			require.NotNil(t, err)
			assert.Equal(t, tt.wantCode, err.ErrorCode)
		})
	}
}

func TestValidateUploadNoCap(t *testing.T) {
	validator := NewUploadValidator(0)

	err := validator.ValidateUpload(&multipart.FileHeader{
		Filename: "samples.xlsx",
		Size:     1 << 30,
	})
	assert.Nil(t, err)
}

func TestValidateUploadTooLargeStatus(t *testing.T) {
	validator := NewUploadValidator(1)

	err := validator.ValidateUpload(&multipart.FileHeader{Filename: "a.xlsx", Size: 2})
	require.NotNil(t, err)
	assert.Equal(t, http.StatusRequestEntityTooLarge, err.StatusCode)
	assert.Same(t, apierrors.ErrUploadTooLarge, err)
}
