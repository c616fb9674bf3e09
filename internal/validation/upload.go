package validation

import (
	"mime/multipart"
	"path/filepath"
	"strings"

	apierrors "portsampler/internal/errors"
)

// workbookExtensions are the accepted upload extensions, lowercased.
var workbookExtensions = map[string]bool{
	".xlsx": true,
	".xls":  true,
}

// UploadValidator checks uploaded workbook files before the pipeline sees
// their bytes.
type UploadValidator struct {
	maxBytes int64
}

// NewUploadValidator creates an upload validator with the given size cap
func NewUploadValidator(maxBytes int64) *UploadValidator {
	return &UploadValidator{maxBytes: maxBytes}
}

// ValidateUpload inspects a multipart file header: the filename must carry a
// workbook extension and not be an Office lock file, and the declared size
// must fit the configured cap. The workbook bytes themselves are validated by
// the loader.
func (v *UploadValidator) ValidateUpload(header *multipart.FileHeader) *apierrors.APIError {
	if header == nil {
		return apierrors.ErrMissingUpload
	}

	name := filepath.Base(header.Filename)
	ext := strings.ToLower(filepath.Ext(name))
	if !workbookExtensions[ext] {
		return apierrors.ErrValidation("file",
			"uploaded file must be an Excel workbook (.xlsx or .xls)")
	}

	if strings.HasPrefix(name, "~$") {
		return apierrors.ErrValidation("file",
			"uploaded file is an Excel lock file, upload the workbook itself")
	}

	if v.maxBytes > 0 && header.Size > v.maxBytes {
		return apierrors.ErrUploadTooLarge
	}

	return nil
}
