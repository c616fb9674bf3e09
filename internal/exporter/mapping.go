package exporter

import (
	"bytes"
	"encoding/csv"
	"fmt"

	"portsampler/internal/config"
	"portsampler/internal/dataprocessing"
)

// exportColumns is the fixed download schema: output header paired with the
// enriched-table column it is sourced from. Order is part of the contract.
var exportColumns = []struct {
	Header string
	Source string
}{
	{"name", config.ColumnScanned},
	{"PRN_AHK_SEAL", config.ColumnSealNo},
	{"PRN_WH_GROSS_WEIGHT", config.ColumnGrossWeight},
	{"BAG_AHK_LP_SAMPLING_TS", config.ColumnSampling},
}

// samplingTimestampHeader names the one output column that carries the fixed
// timezone suffix.
const samplingTimestampHeader = "BAG_AHK_LP_SAMPLING_TS"

// ExportHeaders returns the download column headers in schema order.
func ExportHeaders() []string {
	headers := make([]string, len(exportColumns))
	for i, col := range exportColumns {
		headers[i] = col.Header
	}
	return headers
}

// MapForDownload projects an enriched table onto the fixed download schema.
// Null source cells (and entirely absent source columns) yield empty strings.
// The timezone suffix is appended to every sampling timestamp cell, empty ones
// included; downstream consumers key on the suffix being unconditionally
// present.
func MapForDownload(table *dataprocessing.EnrichedTable, timezoneSuffix string) [][]string {
	records := make([][]string, 0, len(table.Rows))
	for _, row := range table.Rows {
		record := make([]string, len(exportColumns))
		for i, col := range exportColumns {
			value, _ := row.Value(col.Source)
			if col.Header == samplingTimestampHeader {
				value += timezoneSuffix
			}
			record[i] = value
		}
		records = append(records, record)
	}
	return records
}

// EncodeCSV serializes headers and records as UTF-8 CSV bytes with no BOM,
// suitable for an HTTP attachment body.
func EncodeCSV(headers []string, records [][]string) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write headers: %w", err)
	}
	for i, record := range records {
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// EncodeDownload maps an enriched table and serializes it in one step.
func EncodeDownload(table *dataprocessing.EnrichedTable, timezoneSuffix string) ([]byte, error) {
	return EncodeCSV(ExportHeaders(), MapForDownload(table, timezoneSuffix))
}
