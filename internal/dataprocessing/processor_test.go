package dataprocessing

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"portsampler/internal/config"
	apierrors "portsampler/internal/errors"
)

func testPipeline() *Pipeline {
	return NewPipeline(config.Default().Pipeline, nil)
}

func TestPipelineRun(t *testing.T) {
	dupID := "Bag=KB0042, Seal=X-1, Lot: L-17" // over the scan threshold
	require.Greater(t, len(dupID), config.ScannedIDMaxRawLen)

	data := buildWorkbook(t, config.DefaultSheetName, [][]interface{}{
		{"Added Time", "BAG ID.", "AHK SEAL NO."},
		{"2024-03-02 10:00:00", dupID, "S-1"},
		{"2024-03-01 09:00:00", dupID, "S-2"},
		{"2024-03-03 11:00:00", "KB0077KB0077KB00", "S-3"}, // 16 chars, length band
		{"2024-02-20 07:00:00", "KB0099", "S-4"},           // outside the filter window
	})

	start := mustTime(t, "2024-03-01 00:00:00")
	end := mustTime(t, "2024-03-31 00:00:00")

	result, err := testPipeline().Run(context.Background(), bytes.NewReader(data), RunParams{
		Start: &start,
		End:   &end,
	})
	require.NoError(t, err)

	assert.False(t, result.EnrichmentSkipped)
	assert.Len(t, result.Loaded.Rows, 4)

	require.NotNil(t, result.Enriched)
	assert.Equal(t, "2024-03-03 11:00:00",
		result.Enriched.Rows[0].AddedTime.Format(config.TimestampLayout),
		"enriched rows sorted newest first")

	require.Len(t, result.Duplicates, 1)
	assert.Equal(t, "KB0042", result.Duplicates[0].ScannedID)
	assert.Equal(t, 2, result.Duplicates[0].Count)
	assert.Equal(t, "S-1, S-2", result.Duplicates[0].SealNos)

	require.Len(t, result.LengthAnomalies, 1)
	raw, _ := result.LengthAnomalies[0].Cell(config.ColumnBagID)
	assert.Equal(t, "KB0077KB0077KB00", raw)

	require.NotNil(t, result.Filtered)
	assert.Len(t, result.Filtered.Rows, 3, "february row falls outside the window")
	assert.Equal(t, start, result.Start)
	assert.Equal(t, end, result.End)
}

func TestPipelineRunDefaultBounds(t *testing.T) {
	data := buildWorkbook(t, config.DefaultSheetName, [][]interface{}{
		{"Added Time", "BAG ID.", "AHK SEAL NO."},
		{"2024-03-02 10:30:00", "KB0042", "S-1"},
		{"2024-03-05 08:00:00", "KB0043", "S-2"},
	})

	result, err := testPipeline().Run(context.Background(), bytes.NewReader(data), RunParams{})
	require.NoError(t, err)

	assert.Equal(t, mustTime(t, "2024-03-02 00:00:00"), result.Start,
		"default start is the earliest timestamp at midnight")
	assert.False(t, result.End.IsZero(), "default end is the current time")
	assert.Len(t, result.Filtered.Rows, 2)
}

func TestPipelineRunEnrichmentSkipped(t *testing.T) {
	data := buildWorkbook(t, config.DefaultSheetName, [][]interface{}{
		{"Added Time", "AHK SEAL NO."}, // no bag identifier column
		{"2024-03-02 10:30:00", "S-1"},
	})

	result, err := testPipeline().Run(context.Background(), bytes.NewReader(data), RunParams{})
	require.NoError(t, err)

	assert.True(t, result.EnrichmentSkipped)
	assert.NotNil(t, result.Loaded)
	assert.Nil(t, result.Enriched)
	assert.Nil(t, result.Duplicates)
	assert.Nil(t, result.Filtered)
}

func TestPipelineRunNoDataRows(t *testing.T) {
	data := buildWorkbook(t, config.DefaultSheetName, [][]interface{}{
		{"Added Time", "BAG ID.", "AHK SEAL NO."},
	})

	_, err := testPipeline().Run(context.Background(), bytes.NewReader(data), RunParams{})
	assert.ErrorIs(t, err, apierrors.ErrNoDataRows)
}

func TestPipelineRunInvertedRange(t *testing.T) {
	data := buildWorkbook(t, config.DefaultSheetName, [][]interface{}{
		{"Added Time", "BAG ID.", "AHK SEAL NO."},
		{"2024-03-02 10:30:00", "KB0042", "S-1"},
	})

	start := mustTime(t, "2024-03-10 00:00:00")
	end := mustTime(t, "2024-03-01 00:00:00")

	_, err := testPipeline().Run(context.Background(), bytes.NewReader(data), RunParams{
		Start: &start,
		End:   &end,
	})
	assert.ErrorIs(t, err, apierrors.ErrInvalidRange)
}

func TestPipelineRunDeterministic(t *testing.T) {
	data := buildWorkbook(t, config.DefaultSheetName, [][]interface{}{
		{"Added Time", "BAG ID.", "AHK SEAL NO."},
		{"2024-03-02 10:00:00", "Bag=KB0042, Seal=X-1, Lot: L-1", "S-1"},
		{"2024-03-01 09:00:00", "Bag=KB0042, Seal=X-1, Lot: L-2", "S-2"},
	})

	start := mustTime(t, "2024-03-01 00:00:00")
	end := mustTime(t, "2024-03-31 00:00:00")
	params := RunParams{Start: &start, End: &end}

	first, err := testPipeline().Run(context.Background(), bytes.NewReader(data), params)
	require.NoError(t, err)
	second, err := testPipeline().Run(context.Background(), bytes.NewReader(data), params)
	require.NoError(t, err)

	assert.Equal(t, first.Enriched.Columns, second.Enriched.Columns)
	assert.Equal(t, first.Duplicates, second.Duplicates)
	assert.Equal(t, len(first.Filtered.Rows), len(second.Filtered.Rows))
}
