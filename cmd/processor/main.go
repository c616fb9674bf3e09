package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"portsampler/internal/config"
	"portsampler/internal/dataprocessing"
	"portsampler/internal/exporter"
	"portsampler/internal/infrastructure"
	"portsampler/internal/validation"
)

const (
	enrichedFileName  = "enriched_rows.csv"
	filteredFileName  = "filtered_rows.csv"
	duplicateFileName = "duplicate_bags.csv"
	lengthFileName    = "length_exceptions.csv"
)

func main() {
	filePath := flag.String("file", "", "path to the sampling workbook (.xlsx)")
	outDir := flag.String("out", "reports", "output directory for CSV reports")
	sheetName := flag.String("sheet", config.DefaultSheetName, "workbook sheet to load")
	startArg := flag.String("start", "", "window start, \"2006-01-02\" or \"2006-01-02 15:04\"")
	endArg := flag.String("end", "", "window end, \"2006-01-02\" or \"2006-01-02 15:04\"")
	tzSuffix := flag.String("tz", config.ExportTimezoneSuffix, "timezone suffix appended to exported sampling timestamps")
	logLevel := flag.String("log-level", "info", "log level (debug, info, warn, error)")
	flag.Parse()

	logger := infrastructure.MustInitializeLogger(config.LoggingConfig{
		Level:  *logLevel,
		Format: "json",
		Output: "console",
	})

	if *filePath == "" {
		fmt.Fprintln(os.Stderr, "usage: processor -file <workbook.xlsx> [-out <dir>] [-start <ts>] [-end <ts>]")
		flag.PrintDefaults()
		os.Exit(2)
	}

	if err := run(logger, *filePath, *outDir, *sheetName, *startArg, *endArg, *tzSuffix); err != nil {
		logger.Error("processing failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(logger *slog.Logger, filePath, outDir, sheetName, startArg, endArg, tzSuffix string) error {
	validator := validation.NewFileValidator(logger)
	if err := validator.ValidateWorkbookFile(filePath); err != nil {
		return err
	}
	if err := validator.ValidateOutputDirectory(outDir); err != nil {
		return err
	}

	params, err := parseBounds(startArg, endArg)
	if err != nil {
		return err
	}

	file, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("failed to open workbook: %w", err)
	}
	defer file.Close()

	cfg := config.Default().Pipeline
	cfg.SheetName = sheetName
	cfg.TimezoneSuffix = tzSuffix

	pipeline := dataprocessing.NewPipeline(cfg, logger)

	started := time.Now()
	result, err := pipeline.Run(context.Background(), file, params)
	if err != nil {
		return err
	}

	writer := exporter.NewCSVWriter(outDir)

	if result.EnrichmentSkipped {
		logger.Warn("identifier columns absent, writing raw rows only",
			slog.Int("rows", len(result.Loaded.Rows)))
		return writer.WriteSimpleCSV(enrichedFileName,
			result.Loaded.Columns, rawRecords(result.Loaded))
	}

	if err := writer.WriteSimpleCSV(enrichedFileName,
		result.Enriched.Columns, exporter.EnrichedRecords(result.Enriched)); err != nil {
		return err
	}

	if err := writer.WriteSimpleCSV(filteredFileName,
		result.Filtered.Columns, exporter.EnrichedRecords(result.Filtered)); err != nil {
		return err
	}

	if err := writer.WriteSimpleCSV(duplicateFileName,
		exporter.DuplicateHeaders(), exporter.DuplicateRecords(result.Duplicates)); err != nil {
		return err
	}

	anomalies := &dataprocessing.EnrichedTable{
		Columns: result.Enriched.Columns,
		Rows:    result.LengthAnomalies,
	}
	if err := writer.WriteSimpleCSV(lengthFileName,
		anomalies.Columns, exporter.EnrichedRecords(anomalies)); err != nil {
		return err
	}

	// The mapped export matches the web download byte for byte, so no BOM
	if err := writer.WriteCSV(config.ExportFileName, exporter.WriteOptions{
		Headers: exporter.ExportHeaders(),
		Records: exporter.MapForDownload(result.Filtered, tzSuffix),
	}); err != nil {
		return err
	}

	logger.Info("processing complete",
		slog.String("output_dir", outDir),
		slog.Int("rows_loaded", len(result.Loaded.Rows)),
		slog.Int("duplicate_groups", len(result.Duplicates)),
		slog.Int("length_anomalies", len(result.LengthAnomalies)),
		slog.Int("filtered_rows", len(result.Filtered.Rows)),
		slog.Time("start", result.Start),
		slog.Time("end", result.End),
		slog.Duration("elapsed", time.Since(started)))

	return nil
}

// parseBounds converts the -start/-end flags into pipeline run parameters. A
// bare end date is widened to cover its whole day.
func parseBounds(startArg, endArg string) (dataprocessing.RunParams, error) {
	var params dataprocessing.RunParams

	if startArg != "" {
		start, _, err := parseBound(startArg)
		if err != nil {
			return params, fmt.Errorf("invalid -start value %q: %w", startArg, err)
		}
		params.Start = &start
	}

	if endArg != "" {
		end, dateOnly, err := parseBound(endArg)
		if err != nil {
			return params, fmt.Errorf("invalid -end value %q: %w", endArg, err)
		}
		if dateOnly {
			end = end.Add(23*time.Hour + 59*time.Minute + 59*time.Second)
		}
		params.End = &end
	}

	return params, nil
}

func parseBound(value string) (parsed time.Time, dateOnly bool, err error) {
	layouts := []struct {
		layout   string
		dateOnly bool
	}{
		{"2006-01-02 15:04:05", false},
		{"2006-01-02 15:04", false},
		{"2006-01-02", true},
	}

	for _, l := range layouts {
		if t, parseErr := time.Parse(l.layout, value); parseErr == nil {
			return t, l.dateOnly, nil
		}
	}

	return time.Time{}, false, fmt.Errorf("unrecognized timestamp layout")
}

func rawRecords(table *dataprocessing.Table) [][]string {
	records := make([][]string, 0, len(table.Rows))
	for _, row := range table.Rows {
		record := make([]string, len(table.Columns))
		for i, column := range table.Columns {
			if v, ok := row.Cell(column); ok {
				record[i] = v
			}
		}
		records = append(records, record)
	}
	return records
}
