package services

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"portsampler/internal/config"
	"portsampler/internal/dataprocessing"
	apierrors "portsampler/internal/errors"
	"portsampler/internal/exporter"
	"portsampler/internal/infrastructure"
)

// ErrEnrichmentRequired is returned by Export when the workbook lacks the
// identifier columns: there is no enriched table to map, so there is nothing
// to download.
var ErrEnrichmentRequired = apierrors.New(
	http.StatusUnprocessableEntity,
	"ENRICHMENT_REQUIRED",
	"Workbook lacks the identifier columns required for export")

// SamplingService wraps the pipeline with tracing, metrics and response
// shaping. It holds no state between calls; every request carries its own
// workbook bytes.
type SamplingService struct {
	pipeline *dataprocessing.Pipeline
	cfg      config.PipelineConfig
	tracer   trace.Tracer
	metrics  *infrastructure.PipelineMetrics
	logger   *slog.Logger
}

// NewSamplingService creates a new sampling service
func NewSamplingService(cfg config.PipelineConfig, metrics *infrastructure.PipelineMetrics, logger *slog.Logger) *SamplingService {
	if logger == nil {
		logger = slog.Default()
	}
	return &SamplingService{
		pipeline: dataprocessing.NewPipeline(cfg, logger),
		cfg:      cfg,
		tracer:   otel.Tracer("portsampler"),
		metrics:  metrics,
		logger:   logger.With(slog.String("component", "sampling_service")),
	}
}

// TablePayload is a JSON-friendly rendering of a table: ordered columns and
// one map per row. Null cells marshal as JSON null.
type TablePayload struct {
	Columns []string             `json:"columns"`
	Rows    []map[string]*string `json:"rows"`
	Count   int                  `json:"count"`
}

// ProcessResponse is the JSON body of a process request.
type ProcessResponse struct {
	EnrichmentSkipped bool                            `json:"enrichment_skipped"`
	RowsLoaded        int                             `json:"rows_loaded"`
	Start             string                          `json:"start,omitempty"`
	End               string                          `json:"end,omitempty"`
	Enriched          *TablePayload                   `json:"enriched,omitempty"`
	Duplicates        []dataprocessing.DuplicateGroup `json:"duplicates"`
	LengthAnomalies   *TablePayload                   `json:"length_anomalies,omitempty"`
	Filtered          *TablePayload                   `json:"filtered,omitempty"`
	MappedPreview     *TablePayload                   `json:"mapped_preview,omitempty"`
}

// ExportResult carries the serialized download.
type ExportResult struct {
	FileName string
	Body     []byte
}

// Process runs the pipeline and shapes the display tables.
func (s *SamplingService) Process(ctx context.Context, upload io.Reader, params dataprocessing.RunParams) (*ProcessResponse, error) {
	ctx, span := s.tracer.Start(ctx, "sampling.process",
		trace.WithSpanKind(trace.SpanKindInternal))
	defer span.End()

	result, err := s.run(ctx, span, upload, params, "process")
	if err != nil {
		return nil, err
	}

	response := &ProcessResponse{
		EnrichmentSkipped: result.EnrichmentSkipped,
		RowsLoaded:        len(result.Loaded.Rows),
		Duplicates:        result.Duplicates,
	}
	if response.Duplicates == nil {
		response.Duplicates = []dataprocessing.DuplicateGroup{}
	}
	if result.EnrichmentSkipped {
		return response, nil
	}

	response.Start = result.Start.Format(config.TimestampLayout)
	response.End = result.End.Format(config.TimestampLayout)
	response.Enriched = tablePayload(result.Enriched)
	response.LengthAnomalies = rowsPayload(result.Enriched.Columns, result.LengthAnomalies)
	response.Filtered = tablePayload(result.Filtered)
	response.MappedPreview = mappedPayload(result.Filtered, s.cfg.TimezoneSuffix)

	return response, nil
}

// Export runs the pipeline and serializes the mapped filtered table as the
// download CSV.
func (s *SamplingService) Export(ctx context.Context, upload io.Reader, params dataprocessing.RunParams) (*ExportResult, error) {
	ctx, span := s.tracer.Start(ctx, "sampling.export",
		trace.WithSpanKind(trace.SpanKindInternal))
	defer span.End()

	result, err := s.run(ctx, span, upload, params, "export")
	if err != nil {
		return nil, err
	}
	if result.EnrichmentSkipped {
		s.logger.WarnContext(ctx, "export refused, identifier columns absent")
		return nil, ErrEnrichmentRequired
	}

	body, err := exporter.EncodeDownload(result.Filtered, s.cfg.TimezoneSuffix)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.ExportBytesWritten.Add(ctx, int64(len(body)))
	}
	span.SetAttributes(attribute.Int("export.bytes", len(body)))

	return &ExportResult{
		FileName: config.ExportFileName,
		Body:     body,
	}, nil
}

// run executes the pipeline once and records run metrics and span status.
func (s *SamplingService) run(ctx context.Context, span trace.Span, upload io.Reader, params dataprocessing.RunParams, trigger string) (*dataprocessing.Result, error) {
	start := time.Now()
	result, err := s.pipeline.Run(ctx, upload, params)
	duration := time.Since(start)

	rows := 0
	if result != nil && result.Loaded != nil {
		rows = len(result.Loaded.Rows)
	}
	infrastructure.RecordRunMetrics(ctx, s.metrics, trigger, duration, rows, err)

	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		infrastructure.RecordError(ctx, err)
		return nil, err
	}

	if s.metrics != nil && !result.EnrichmentSkipped {
		attrs := metric.WithAttributes(attribute.String("trigger", trigger))
		s.metrics.DuplicateGroups.Add(ctx, int64(len(result.Duplicates)), attrs)
		s.metrics.LengthAnomalyRows.Add(ctx, int64(len(result.LengthAnomalies)), attrs)
	}

	span.SetAttributes(
		attribute.Int("pipeline.rows_loaded", rows),
		attribute.Bool("pipeline.enrichment_skipped", result.EnrichmentSkipped),
	)

	return result, nil
}

// tablePayload converts an enriched table to its JSON form.
func tablePayload(table *dataprocessing.EnrichedTable) *TablePayload {
	return rowsPayload(table.Columns, table.Rows)
}

func rowsPayload(columns []string, rows []dataprocessing.EnrichedRow) *TablePayload {
	payload := &TablePayload{
		Columns: columns,
		Rows:    make([]map[string]*string, 0, len(rows)),
		Count:   len(rows),
	}
	for _, row := range rows {
		cells := make(map[string]*string, len(columns))
		for _, column := range columns {
			if value, ok := row.Value(column); ok {
				v := value
				cells[column] = &v
			} else {
				cells[column] = nil
			}
		}
		payload.Rows = append(payload.Rows, cells)
	}
	return payload
}

// mappedPayload renders the download projection for preview display.
func mappedPayload(table *dataprocessing.EnrichedTable, timezoneSuffix string) *TablePayload {
	headers := exporter.ExportHeaders()
	records := exporter.MapForDownload(table, timezoneSuffix)

	payload := &TablePayload{
		Columns: headers,
		Rows:    make([]map[string]*string, 0, len(records)),
		Count:   len(records),
	}
	for _, record := range records {
		cells := make(map[string]*string, len(headers))
		for i, header := range headers {
			v := record[i]
			cells[header] = &v
		}
		payload.Rows = append(payload.Rows, cells)
	}
	return payload
}
