// Package exporter serializes pipeline results as CSV.
//
// This package contains two main components:
//
// CSVWriter: file-based CSV writing with support for headers, streaming,
// and UTF-8 BOM for Excel compatibility. Used by the batch binary to write
// report files under an output directory.
//
// Download mapping: projection of the enriched table onto the fixed
// four-column download schema (name, PRN_AHK_SEAL, PRN_WH_GROSS_WEIGHT,
// BAG_AHK_LP_SAMPLING_TS) serialized in memory for HTTP attachment delivery.
//
// Example usage:
//
//	// Serve the mapped table as a download body
//	body, err := exporter.EncodeDownload(result.Filtered, cfg.TimezoneSuffix)
//
//	// Write report files from the batch binary
//	writer := exporter.NewCSVWriter(outputDir)
//	err = writer.WriteSimpleCSV("duplicates.csv",
//		exporter.DuplicateHeaders(), exporter.DuplicateRecords(result.Duplicates))
package exporter
