package dataprocessing

import (
	"log/slog"
	"sort"

	"portsampler/internal/config"
)

// Enrich parses every row's bag identifier, merges the extracted sub-fields in
// as new columns, derives the canonical scanned identifier, and sorts the
// result by AddedTime descending (null timestamps last).
//
// The scanned identifier rule: a raw identifier longer than
// config.ScannedIDMaxRawLen is scanner noise whose true short code lives in the
// "Bag" sub-field; shorter identifiers are already the code. Rows where the
// rule cannot produce a value (null identifier, or a long identifier without a
// "Bag" sub-field) get a null ScannedID rather than failing.
func Enrich(table *Table) *EnrichedTable {
	enriched := &EnrichedTable{}

	var fieldColumns []string
	seenField := make(map[string]bool)

	for _, row := range table.Rows {
		er := EnrichedRow{Row: row}

		if raw, ok := row.Cell(config.ColumnBagID); ok {
			er.Fields = ParseBagID(raw)
			for k := range er.Fields {
				if !seenField[k] {
					seenField[k] = true
					fieldColumns = append(fieldColumns, k)
				}
			}

			if len(raw) > config.ScannedIDMaxRawLen {
				if code, has := er.Fields[config.BagFieldBag]; has {
					er.ScannedID = &code
				}
			} else {
				er.ScannedID = &raw
			}
		}

		enriched.Rows = append(enriched.Rows, er)
	}

	// Sorted field columns keep output deterministic; map iteration order is not.
	sort.Strings(fieldColumns)

	enriched.Columns = append(enriched.Columns, table.Columns...)
	enriched.Columns = append(enriched.Columns, fieldColumns...)
	enriched.Columns = append(enriched.Columns, config.ColumnScanned)

	sort.SliceStable(enriched.Rows, func(i, j int) bool {
		a, b := enriched.Rows[i].AddedTime, enriched.Rows[j].AddedTime
		if a == nil {
			return false
		}
		if b == nil {
			return true
		}
		return a.After(*b)
	})

	slog.Debug("rows enriched",
		slog.Int("rows", len(enriched.Rows)),
		slog.Int("extracted_columns", len(fieldColumns)))

	return enriched
}
