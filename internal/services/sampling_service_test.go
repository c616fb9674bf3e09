package services

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"portsampler/internal/config"
	"portsampler/internal/dataprocessing"
	apierrors "portsampler/internal/errors"
)

func workbookBytes(t *testing.T, rows [][]interface{}) []byte {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	require.NoError(t, f.SetSheetName("Sheet1", config.DefaultSheetName))
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(config.DefaultSheetName, cell, &row))
	}

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

func bound(t *testing.T, value string) *time.Time {
	t.Helper()
	parsed, err := time.Parse(config.TimestampLayout, value)
	require.NoError(t, err)
	return &parsed
}

func newTestService() *SamplingService {
	return NewSamplingService(config.Default().Pipeline, nil, nil)
}

func fullWorkbook(t *testing.T) []byte {
	return workbookBytes(t, [][]interface{}{
		{"Added Time", "BAG ID.", "AHK SEAL NO.", "WAREHOUSE PLATFORM SCALE GROSS WEIGHT (KG)", "SAMPLING TIME"},
		{"2024-03-02 10:00:00", "Bag=KB0042, Seal=X-1, Lot: L-1", "S-1", "1042.5", "2024-03-02 09:45:00"},
		{"2024-03-01 09:00:00", "Bag=KB0042, Seal=X-1, Lot: L-2", "S-2", "", ""},
		{"2024-03-03 11:00:00", "KB0077", "S-3", "990.0", "2024-03-03 10:45:00"},
	})
}

func TestProcess(t *testing.T) {
	svc := newTestService()

	resp, err := svc.Process(context.Background(), bytes.NewReader(fullWorkbook(t)), dataprocessing.RunParams{
		Start: bound(t, "2024-03-01 00:00:00"),
		End:   bound(t, "2024-03-31 00:00:00"),
	})
	require.NoError(t, err)

	assert.False(t, resp.EnrichmentSkipped)
	assert.Equal(t, 3, resp.RowsLoaded)
	assert.Equal(t, "2024-03-01 00:00:00", resp.Start)

	require.NotNil(t, resp.Enriched)
	assert.Equal(t, 3, resp.Enriched.Count)
	assert.Contains(t, resp.Enriched.Columns, "Bag Scanned & Manual")

	require.Len(t, resp.Duplicates, 1)
	assert.Equal(t, "KB0042", resp.Duplicates[0].ScannedID)

	require.NotNil(t, resp.Filtered)
	assert.Equal(t, 3, resp.Filtered.Count)

	require.NotNil(t, resp.MappedPreview)
	assert.Equal(t,
		[]string{"name", "PRN_AHK_SEAL", "PRN_WH_GROSS_WEIGHT", "BAG_AHK_LP_SAMPLING_TS"},
		resp.MappedPreview.Columns)

	// first preview row follows the enriched sort (newest first)
	first := resp.MappedPreview.Rows[0]
	require.NotNil(t, first["BAG_AHK_LP_SAMPLING_TS"])
	assert.True(t, strings.HasSuffix(*first["BAG_AHK_LP_SAMPLING_TS"], "+02:00"))
}

func TestProcessNullCellsMarshalAsNil(t *testing.T) {
	svc := newTestService()

	resp, err := svc.Process(context.Background(), bytes.NewReader(fullWorkbook(t)), dataprocessing.RunParams{
		Start: bound(t, "2024-03-01 00:00:00"),
		End:   bound(t, "2024-03-31 00:00:00"),
	})
	require.NoError(t, err)

	// the 2024-03-01 row has an empty gross weight cell
	var found bool
	for _, row := range resp.Enriched.Rows {
		added := row["Added Time"]
		if added != nil && *added == "2024-03-01 09:00:00" {
			found = true
			assert.Nil(t, row["WAREHOUSE PLATFORM SCALE GROSS WEIGHT (KG)"])
		}
	}
	assert.True(t, found)
}

func TestProcessEnrichmentSkipped(t *testing.T) {
	svc := newTestService()

	data := workbookBytes(t, [][]interface{}{
		{"Added Time", "WAREHOUSE PLATFORM SCALE GROSS WEIGHT (KG)"},
		{"2024-03-02 10:00:00", "1042.5"},
	})

	resp, err := svc.Process(context.Background(), bytes.NewReader(data), dataprocessing.RunParams{})
	require.NoError(t, err)

	assert.True(t, resp.EnrichmentSkipped)
	assert.Equal(t, 1, resp.RowsLoaded)
	assert.NotNil(t, resp.Duplicates, "duplicates marshal as an empty list, not null")
	assert.Empty(t, resp.Duplicates)
	assert.Nil(t, resp.Enriched)
	assert.Nil(t, resp.MappedPreview)
}

func TestProcessPipelineErrorPropagates(t *testing.T) {
	svc := newTestService()

	_, err := svc.Process(context.Background(), strings.NewReader("not a workbook"), dataprocessing.RunParams{})
	assert.ErrorIs(t, err, apierrors.ErrWorkbookCorrupt)
}

func TestExport(t *testing.T) {
	svc := newTestService()

	result, err := svc.Export(context.Background(), bytes.NewReader(fullWorkbook(t)), dataprocessing.RunParams{
		Start: bound(t, "2024-03-01 00:00:00"),
		End:   bound(t, "2024-03-31 00:00:00"),
	})
	require.NoError(t, err)

	assert.Equal(t, "mapped_combined_df_for_download.csv", result.FileName)

	lines := strings.Split(strings.TrimRight(string(result.Body), "\n"), "\n")
	require.Len(t, lines, 4, "header plus three filtered rows")
	assert.Equal(t, "name,PRN_AHK_SEAL,PRN_WH_GROSS_WEIGHT,BAG_AHK_LP_SAMPLING_TS", lines[0])
	for _, line := range lines[1:] {
		assert.True(t, strings.HasSuffix(line, "+02:00"), "line %q", line)
	}
}

func TestExportEnrichmentRequired(t *testing.T) {
	svc := newTestService()

	data := workbookBytes(t, [][]interface{}{
		{"Added Time"},
		{"2024-03-02 10:00:00"},
	})

	_, err := svc.Export(context.Background(), bytes.NewReader(data), dataprocessing.RunParams{})
	require.Error(t, err)
	assert.Same(t, ErrEnrichmentRequired, err)
}
