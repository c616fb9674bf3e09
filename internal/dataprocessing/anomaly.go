package dataprocessing

import (
	"strings"

	"portsampler/internal/config"
)

// DuplicateView groups enriched rows by canonical scanned identifier and
// reports every identifier observed on two or more rows. Rows without a
// scanned identifier are not grouped: a null identifier names nothing, so two
// nulls are not evidence of a duplicate scan. Group order follows the first
// appearance of each identifier in the (sorted) enriched table.
func DuplicateView(table *EnrichedTable) []DuplicateGroup {
	var order []string
	members := make(map[string][]EnrichedRow)

	for _, row := range table.Rows {
		if row.ScannedID == nil {
			continue
		}
		id := *row.ScannedID
		if _, seen := members[id]; !seen {
			order = append(order, id)
		}
		members[id] = append(members[id], row)
	}

	var groups []DuplicateGroup
	for _, id := range order {
		rows := members[id]
		if len(rows) < 2 {
			continue
		}

		groups = append(groups, DuplicateGroup{
			ScannedID:  id,
			AddedTimes: joinUnique(rows, config.ColumnAddedTime),
			SealNos:    joinUnique(rows, config.ColumnSealNo),
			Seals:      joinUnique(rows, config.BagFieldSeal),
			Lots:       joinUnique(rows, config.BagFieldLot),
			Count:      len(rows),
		})
	}

	return groups
}

// joinUnique comma-joins the distinct non-null values of one column across the
// group's rows, preserving encounter order.
func joinUnique(rows []EnrichedRow, column string) string {
	var values []string
	seen := make(map[string]bool)

	for _, row := range rows {
		v, ok := row.Value(column)
		if !ok || seen[v] {
			continue
		}
		seen[v] = true
		values = append(values, v)
	}

	return strings.Join(values, ", ")
}

// LengthAnomalyView reports rows whose raw bag identifier length falls in the
// partially-scanned band [config.LengthAnomalyMin, config.LengthAnomalyMax].
// All columns are preserved and nothing is deduplicated.
func LengthAnomalyView(table *EnrichedTable) []EnrichedRow {
	var rows []EnrichedRow
	for _, row := range table.Rows {
		raw, ok := row.Cell(config.ColumnBagID)
		if !ok {
			continue
		}
		if n := len(raw); n >= config.LengthAnomalyMin && n <= config.LengthAnomalyMax {
			rows = append(rows, row)
		}
	}
	return rows
}
