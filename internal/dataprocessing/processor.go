package dataprocessing

import (
	"context"
	"io"
	"log/slog"
	"time"

	"portsampler/internal/config"
	apierrors "portsampler/internal/errors"
)

// Pipeline runs the full transformation over one uploaded workbook: load,
// parse identifiers, enrich, compute the exception views, and filter by time
// range. Every run recomputes everything from the uploaded bytes; nothing is
// shared between runs.
type Pipeline struct {
	cfg    config.PipelineConfig
	logger *slog.Logger
}

// NewPipeline creates a pipeline with the given configuration
func NewPipeline(cfg config.PipelineConfig, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		cfg:    cfg,
		logger: logger.With(slog.String("component", "pipeline")),
	}
}

// RunParams are the caller-supplied filter bounds. A nil Start defaults to the
// dataset's earliest AddedTime at midnight; a nil End defaults to the current
// wall-clock time.
type RunParams struct {
	Start *time.Time
	End   *time.Time
}

// Result is the outcome of one pipeline run.
type Result struct {
	// Loaded is the raw sheet as read from the workbook.
	Loaded *Table

	// EnrichmentSkipped is true when the bag identifier or seal column is
	// absent: the remaining stages are disabled rather than failed, and only
	// Loaded is populated.
	EnrichmentSkipped bool

	Enriched        *EnrichedTable
	Duplicates      []DuplicateGroup
	LengthAnomalies []EnrichedRow
	Filtered        *EnrichedTable

	// Start and End are the resolved filter bounds actually applied.
	Start time.Time
	End   time.Time
}

// Run executes the pipeline against one uploaded workbook.
func (p *Pipeline) Run(ctx context.Context, upload io.Reader, params RunParams) (*Result, error) {
	table, err := LoadWorkbook(upload, p.cfg.SheetName)
	if err != nil {
		return nil, err
	}
	if len(table.Rows) == 0 {
		return nil, apierrors.ErrNoDataRows
	}

	result := &Result{Loaded: table}

	if !table.HasColumn(config.ColumnBagID) || !table.HasColumn(config.ColumnSealNo) {
		p.logger.WarnContext(ctx, "identifier columns absent, enrichment skipped",
			slog.Bool("has_bag_id", table.HasColumn(config.ColumnBagID)),
			slog.Bool("has_seal_no", table.HasColumn(config.ColumnSealNo)),
			slog.Int("rows", len(table.Rows)))
		result.EnrichmentSkipped = true
		return result, nil
	}

	result.Enriched = Enrich(table)
	result.Duplicates = DuplicateView(result.Enriched)
	result.LengthAnomalies = LengthAnomalyView(result.Enriched)

	start, end := p.resolveBounds(result.Enriched, params)
	result.Start, result.End = start, end

	result.Filtered, err = FilterByRange(result.Enriched, start, end)
	if err != nil {
		return nil, err
	}

	p.logger.InfoContext(ctx, "pipeline run complete",
		slog.Int("rows", len(result.Enriched.Rows)),
		slog.Int("duplicate_groups", len(result.Duplicates)),
		slog.Int("length_anomalies", len(result.LengthAnomalies)),
		slog.Int("filtered_rows", len(result.Filtered.Rows)),
		slog.Time("start", start),
		slog.Time("end", end))

	return result, nil
}

// resolveBounds fills in the default bounds for whichever side the caller left
// unset.
func (p *Pipeline) resolveBounds(table *EnrichedTable, params RunParams) (time.Time, time.Time) {
	var start, end time.Time

	if params.Start != nil {
		start = *params.Start
	} else if earliest, ok := EarliestAddedTime(table); ok {
		start = Midnight(earliest)
	}

	if params.End != nil {
		end = *params.End
	} else {
		end = time.Now()
	}

	return start, end
}
