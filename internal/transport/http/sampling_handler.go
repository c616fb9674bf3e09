package http

import (
	"fmt"
	"log/slog"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"portsampler/internal/dataprocessing"
	apierrors "portsampler/internal/errors"
	"portsampler/internal/middleware"
	"portsampler/internal/services"
	"portsampler/internal/validation"
)

// boundsForm carries the four scalar filter inputs. A time field is only
// meaningful next to its date field.
type boundsForm struct {
	StartDate string `json:"start_date" validate:"omitempty,dateonly"`
	StartTime string `json:"start_time" validate:"omitempty,timeofday"`
	EndDate   string `json:"end_date" validate:"omitempty,dateonly"`
	EndTime   string `json:"end_time" validate:"omitempty,timeofday"`
}

// SamplingHandler handles workbook processing HTTP requests with RFC 7807
// compliance
type SamplingHandler struct {
	service      *services.SamplingService
	uploads      *validation.UploadValidator
	forms        *middleware.ValidationMiddleware
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
	maxBytes     int64
}

// NewSamplingHandler creates a new sampling handler
func NewSamplingHandler(
	service *services.SamplingService,
	uploads *validation.UploadValidator,
	forms *middleware.ValidationMiddleware,
	maxBytes int64,
	logger *slog.Logger,
	errorHandler *apierrors.ErrorHandler,
) *SamplingHandler {
	return &SamplingHandler{
		service:      service,
		uploads:      uploads,
		forms:        forms,
		logger:       logger.With(slog.String("component", "sampling_handler")),
		errorHandler: errorHandler,
		maxBytes:     maxBytes,
	}
}

// Routes returns the sampling routes
func (h *SamplingHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.ContentTypeValidator("multipart/form-data"))

	r.Post("/process", h.Process)
	r.Post("/export", h.Export)

	return r
}

// Process handles POST /api/sampling/process
func (h *SamplingHandler) Process(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetReqID(r.Context())

	file, params, ok := h.parseRequest(w, r)
	if !ok {
		return
	}
	defer file.Close()

	h.logger.InfoContext(r.Context(), "processing workbook",
		slog.String("request_id", reqID))

	response, err := h.service.Process(r.Context(), file, params)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "workbook processing failed",
			slog.String("error", err.Error()),
			slog.String("request_id", reqID))
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, response)
}

// Export handles POST /api/sampling/export
func (h *SamplingHandler) Export(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetReqID(r.Context())

	file, params, ok := h.parseRequest(w, r)
	if !ok {
		return
	}
	defer file.Close()

	result, err := h.service.Export(r.Context(), file, params)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "workbook export failed",
			slog.String("error", err.Error()),
			slog.String("request_id", reqID))
		h.errorHandler.HandleError(w, r, err)
		return
	}

	h.logger.InfoContext(r.Context(), "export generated",
		slog.String("request_id", reqID),
		slog.Int("bytes", len(result.Body)))

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", result.FileName))
	w.WriteHeader(http.StatusOK)
	w.Write(result.Body)
}

// parseRequest extracts the uploaded workbook and filter bounds from the
// multipart form. On failure it writes the error response and returns false.
func (h *SamplingHandler) parseRequest(w http.ResponseWriter, r *http.Request) (multipart.File, dataprocessing.RunParams, bool) {
	var none dataprocessing.RunParams

	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes)
	if err := r.ParseMultipartForm(h.maxBytes); err != nil {
		h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
		return nil, none, false
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		h.errorHandler.HandleError(w, r, apierrors.ErrMissingUpload)
		return nil, none, false
	}

	if apiErr := h.uploads.ValidateUpload(header); apiErr != nil {
		file.Close()
		h.errorHandler.HandleError(w, r, apiErr)
		return nil, none, false
	}

	form := boundsForm{
		StartDate: r.FormValue("start_date"),
		StartTime: r.FormValue("start_time"),
		EndDate:   r.FormValue("end_date"),
		EndTime:   r.FormValue("end_time"),
	}
	if err := h.forms.ValidateStruct(form); err != nil {
		file.Close()
		h.errorHandler.HandleError(w, r, err)
		return nil, none, false
	}

	params, err := combineBounds(form)
	if err != nil {
		file.Close()
		h.errorHandler.HandleError(w, r, err)
		return nil, none, false
	}

	return file, params, true
}

// combineBounds merges the four scalar inputs into the two datetime bounds.
// A missing start time means the start of the day; a missing end time means
// the end of the day, so a bare end date keeps that whole day in range. A
// time without its date has nothing to attach to and is rejected.
func combineBounds(form boundsForm) (dataprocessing.RunParams, error) {
	var params dataprocessing.RunParams

	if form.StartDate == "" && form.StartTime != "" {
		return params, apierrors.ErrValidation("start_time", "start_time requires start_date")
	}
	if form.EndDate == "" && form.EndTime != "" {
		return params, apierrors.ErrValidation("end_time", "end_time requires end_date")
	}

	if form.StartDate != "" {
		start, err := combineDateTime(form.StartDate, form.StartTime, "00:00")
		if err != nil {
			return params, apierrors.ErrValidation("start_date", err.Error())
		}
		params.Start = &start
	}

	if form.EndDate != "" {
		end, err := combineDateTime(form.EndDate, form.EndTime, "23:59")
		if err != nil {
			return params, apierrors.ErrValidation("end_date", err.Error())
		}
		if form.EndTime == "" {
			end = end.Add(59 * time.Second)
		}
		params.End = &end
	}

	return params, nil
}

func combineDateTime(date, clock, defaultClock string) (time.Time, error) {
	if clock == "" {
		clock = defaultClock
	}
	return time.Parse("2006-01-02 15:04", date+" "+clock)
}
