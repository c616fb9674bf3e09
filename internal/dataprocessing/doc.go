// Package dataprocessing implements the port sampling transformation pipeline.
//
// The pipeline is a pure, single-threaded function of one uploaded workbook:
//
//	Load → Parse bag identifiers → Enrich → Exception views
//	                                  └→ Range filter → (export mapping, see
//	                                                     internal/exporter)
//
// The exception views (duplicate identifiers and length-band anomalies) are
// read-only reports over the enriched table; they never remove rows from the
// dataset. All structures are recomputed on every run and nothing persists
// between runs.
package dataprocessing
