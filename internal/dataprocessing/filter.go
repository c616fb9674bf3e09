package dataprocessing

import (
	"time"

	apierrors "portsampler/internal/errors"
)

// FilterByRange selects the rows whose AddedTime lies in the inclusive
// [start, end] interval. Rows with a null AddedTime never match. An inverted
// interval is rejected with ErrInvalidRange instead of silently yielding an
// empty result.
func FilterByRange(table *EnrichedTable, start, end time.Time) (*EnrichedTable, error) {
	if start.After(end) {
		return nil, apierrors.ErrInvalidRange
	}

	filtered := &EnrichedTable{Columns: table.Columns}
	for _, row := range table.Rows {
		if row.AddedTime == nil {
			continue
		}
		if row.AddedTime.Before(start) || row.AddedTime.After(end) {
			continue
		}
		filtered.Rows = append(filtered.Rows, row)
	}

	return filtered, nil
}

// EarliestAddedTime returns the minimum non-null AddedTime of the table. The
// boolean is false when no row has a parseable timestamp.
func EarliestAddedTime(table *EnrichedTable) (time.Time, bool) {
	var min time.Time
	found := false
	for _, row := range table.Rows {
		if row.AddedTime == nil {
			continue
		}
		if !found || row.AddedTime.Before(min) {
			min = *row.AddedTime
			found = true
		}
	}
	return min, found
}

// Midnight truncates a timestamp to the start of its day.
func Midnight(ts time.Time) time.Time {
	return time.Date(ts.Year(), ts.Month(), ts.Day(), 0, 0, 0, 0, ts.Location())
}
