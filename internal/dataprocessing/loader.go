package dataprocessing

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"portsampler/internal/config"
	apierrors "portsampler/internal/errors"
)

// addedTimeLayouts are the timestamp formats accepted for the "Added Time"
// column. Excelize renders date cells with the workbook's cell style, so the
// same column can carry more than one textual form.
var addedTimeLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"01-02-06 15:04",
	"1/2/2006 15:04:05",
	"1/2/06 15:04",
	"02-Jan-2006 15:04:05",
	"2006-01-02",
}

// LoadWorkbook reads the designated sheet of an uploaded workbook into a Table.
// Row 0 is the header. The "Added Time" column is required and parsed to
// timestamps; cells that fail to parse become null rather than failing the row.
func LoadWorkbook(r io.Reader, sheetName string) (*Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apierrors.ErrWorkbookCorrupt, err)
	}
	defer f.Close()

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, apierrors.NewSchemaError(sheetName, apierrors.ErrSheetNotFound)
	}
	if len(rows) == 0 {
		return nil, apierrors.NewSchemaError(config.ColumnAddedTime, apierrors.ErrMissingColumn)
	}

	header := make([]string, 0, len(rows[0]))
	for _, h := range rows[0] {
		header = append(header, strings.TrimSpace(h))
	}

	addedIdx := -1
	for i, h := range header {
		if h == config.ColumnAddedTime {
			addedIdx = i
			break
		}
	}
	if addedIdx == -1 {
		return nil, apierrors.NewSchemaError(config.ColumnAddedTime, apierrors.ErrMissingColumn)
	}

	table := &Table{Columns: header}

	for _, raw := range rows[1:] {
		cells := make(map[string]string)
		for i, cell := range raw {
			if i >= len(header) || header[i] == "" {
				continue
			}
			if strings.TrimSpace(cell) == "" {
				continue // empty cell stays null
			}
			cells[header[i]] = cell
		}
		if len(cells) == 0 {
			continue // skip fully empty rows
		}

		row := Row{Cells: cells}
		if text, ok := cells[config.ColumnAddedTime]; ok {
			row.AddedTime = parseAddedTime(text)
		}
		table.Rows = append(table.Rows, row)
	}

	slog.Debug("workbook sheet loaded",
		slog.String("sheet", sheetName),
		slog.Int("columns", len(table.Columns)),
		slog.Int("rows", len(table.Rows)))

	return table, nil
}

// parseAddedTime attempts the known layouts in order; nil means unparseable.
func parseAddedTime(text string) *time.Time {
	text = strings.TrimSpace(text)
	for _, layout := range addedTimeLayouts {
		if ts, err := time.Parse(layout, text); err == nil {
			return &ts
		}
	}
	return nil
}
