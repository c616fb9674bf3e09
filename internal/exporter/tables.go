package exporter

import (
	"strconv"

	"portsampler/internal/dataprocessing"
)

// EnrichedRecords flattens an enriched table into CSV records following the
// table's own column order. Null cells become empty strings.
func EnrichedRecords(table *dataprocessing.EnrichedTable) [][]string {
	records := make([][]string, 0, len(table.Rows))
	for _, row := range table.Rows {
		record := make([]string, len(table.Columns))
		for i, column := range table.Columns {
			value, _ := row.Value(column)
			record[i] = value
		}
		records = append(records, record)
	}
	return records
}

// DuplicateHeaders returns the CSV headers for the duplicate exception table.
func DuplicateHeaders() []string {
	return []string{"ScannedId", "AddedTimes", "SealNos", "Seals", "Lots", "Count"}
}

// DuplicateRecords converts duplicate groups to CSV records.
func DuplicateRecords(groups []dataprocessing.DuplicateGroup) [][]string {
	records := make([][]string, 0, len(groups))
	for _, group := range groups {
		records = append(records, []string{
			group.ScannedID,
			group.AddedTimes,
			group.SealNos,
			group.Seals,
			group.Lots,
			strconv.Itoa(group.Count),
		})
	}
	return records
}
