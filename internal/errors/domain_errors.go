package errors

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/render"
)

// Pipeline-specific errors (sentinel errors for errors.Is matching)
var (
	// Schema errors: the uploaded workbook does not have the shape the
	// pipeline requires. Fatal for the run.
	ErrSheetNotFound   = errors.New("sheet not found")
	ErrMissingColumn   = errors.New("missing required column")
	ErrWorkbookCorrupt = errors.New("workbook could not be read")

	// Range errors: caller-supplied filter bounds are inconsistent.
	ErrInvalidRange = errors.New("start bound is after end bound")

	// Soft conditions.
	ErrNoDataRows = errors.New("workbook contains no data rows")
)

// SchemaError wraps a sentinel with the workbook element that failed the check.
type SchemaError struct {
	Element string // sheet or column name
	Err     error
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("%v: %s", e.Err, e.Element)
}

func (e *SchemaError) Unwrap() error {
	return e.Err
}

// NewSchemaError creates a schema error for a missing sheet or column
func NewSchemaError(element string, sentinel error) *SchemaError {
	return &SchemaError{Element: element, Err: sentinel}
}

// ProblemDetails implements RFC 7807 Problem Details for HTTP APIs
type ProblemDetails struct {
	Type     string `json:"type"`
	Title    string `json:"title"`
	Status   int    `json:"status"`
	Detail   string `json:"detail,omitempty"`
	Instance string `json:"instance,omitempty"`

	// Additional fields for extensibility
	Extensions map[string]interface{} `json:"-"`
}

// Render implements the render.Renderer interface
func (pd *ProblemDetails) Render(w http.ResponseWriter, r *http.Request) error {
	render.Status(r, pd.Status)
	return nil
}

// MarshalJSON custom marshaler to include extensions
func (pd *ProblemDetails) MarshalJSON() ([]byte, error) {
	data := make(map[string]interface{})

	data["type"] = pd.Type
	data["title"] = pd.Title
	data["status"] = pd.Status

	if pd.Detail != "" {
		data["detail"] = pd.Detail
	}
	if pd.Instance != "" {
		data["instance"] = pd.Instance
	}

	for k, v := range pd.Extensions {
		data[k] = v
	}

	return json.Marshal(data)
}

// NewProblemDetails creates a new RFC 7807 compliant error
func NewProblemDetails(status int, problemType, title, detail, instance string) *ProblemDetails {
	return &ProblemDetails{
		Type:       problemType,
		Title:      title,
		Status:     status,
		Detail:     detail,
		Instance:   instance,
		Extensions: make(map[string]interface{}),
	}
}

// WithExtension adds an extension field to the problem details
func (pd *ProblemDetails) WithExtension(key string, value interface{}) *ProblemDetails {
	pd.Extensions[key] = value
	return pd
}

// MapPipelineError maps pipeline domain errors to HTTP problem details
func MapPipelineError(err error, instance, traceID string) render.Renderer {
	switch {
	case errors.Is(err, ErrSheetNotFound):
		return NewProblemDetails(
			http.StatusUnprocessableEntity,
			TypeSchema,
			"Workbook Schema Error",
			err.Error(),
			instance,
		).WithExtension("trace_id", traceID).
			WithExtension("error_code", "SHEET_NOT_FOUND")

	case errors.Is(err, ErrMissingColumn):
		return NewProblemDetails(
			http.StatusUnprocessableEntity,
			TypeSchema,
			"Workbook Schema Error",
			err.Error(),
			instance,
		).WithExtension("trace_id", traceID).
			WithExtension("error_code", "MISSING_COLUMN")

	case errors.Is(err, ErrWorkbookCorrupt):
		return NewProblemDetails(
			http.StatusBadRequest,
			TypeSchema,
			"Unreadable Workbook",
			"The uploaded file could not be opened as an Excel workbook.",
			instance,
		).WithExtension("trace_id", traceID).
			WithExtension("error_code", "WORKBOOK_CORRUPT")

	case errors.Is(err, ErrInvalidRange):
		return NewProblemDetails(
			http.StatusBadRequest,
			TypeRange,
			"Invalid Filter Range",
			"The start of the filter range must not be after its end.",
			instance,
		).WithExtension("trace_id", traceID).
			WithExtension("error_code", "INVALID_RANGE")

	case errors.Is(err, ErrNoDataRows):
		return NewProblemDetails(
			http.StatusUnprocessableEntity,
			TypeSchema,
			"Empty Workbook",
			"The designated sheet has a header row but no data rows.",
			instance,
		).WithExtension("trace_id", traceID).
			WithExtension("error_code", "NO_DATA_ROWS")

	default:
		return NewProblemDetails(
			http.StatusInternalServerError,
			TypeInternal,
			"Internal Server Error",
			"An unexpected error occurred while processing the workbook.",
			instance,
		).WithExtension("trace_id", traceID).
			WithExtension("error_code", "INTERNAL_ERROR")
	}
}
