package dataprocessing

import (
	"time"

	"portsampler/internal/config"
)

// Row is one sampling event loaded from the workbook. Cells holds the raw cell
// text keyed by column header; an absent key means the cell was empty (null).
// AddedTime is the parsed "Added Time" cell, nil when the cell was empty or
// unparseable.
type Row struct {
	AddedTime *time.Time
	Cells     map[string]string
}

// Cell returns the raw text of a column and whether the cell was non-null.
func (r Row) Cell(column string) (string, bool) {
	v, ok := r.Cells[column]
	return v, ok
}

// Table is the loaded workbook sheet: ordered column headers plus data rows.
type Table struct {
	Columns []string
	Rows    []Row
}

// HasColumn reports whether the sheet header contains the named column.
func (t *Table) HasColumn(name string) bool {
	for _, c := range t.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// EnrichedRow is a Row extended with the sub-fields parsed from its composite
// bag identifier and the canonical scanned identifier. Fields is nil for rows
// whose bag identifier cell was null. ScannedID is nil when no canonical
// identifier could be derived.
type EnrichedRow struct {
	Row
	Fields    map[string]string
	ScannedID *string
}

// Value resolves a column for an enriched row: the derived scanned column, a
// parsed sub-field, the formatted timestamp, or the raw cell, in that order.
// The boolean is false when the value is null for this row.
func (r EnrichedRow) Value(column string) (string, bool) {
	switch column {
	case config.ColumnScanned:
		if r.ScannedID == nil {
			return "", false
		}
		return *r.ScannedID, true
	case config.ColumnAddedTime:
		if r.AddedTime == nil {
			return "", false
		}
		return r.AddedTime.Format(config.TimestampLayout), true
	}
	if v, ok := r.Fields[column]; ok {
		return v, true
	}
	return r.Cell(column)
}

// EnrichedTable is the enriched dataset: the original columns followed by the
// extracted sub-field columns and the derived scanned column, rows sorted by
// AddedTime descending.
type EnrichedTable struct {
	Columns []string
	Rows    []EnrichedRow
}

// DuplicateGroup summarizes all rows sharing one canonical scanned identifier.
// The list fields are comma-joined unique non-null values observed across the
// group's members.
type DuplicateGroup struct {
	ScannedID  string `json:"scanned_id"`
	AddedTimes string `json:"added_times"`
	SealNos    string `json:"seal_nos"`
	Seals      string `json:"seals"`
	Lots       string `json:"lots"`
	Count      int    `json:"count"`
}
