package dataprocessing

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"portsampler/internal/config"
)

func ts(t *testing.T, value string) *time.Time {
	t.Helper()
	parsed, err := time.Parse(config.TimestampLayout, value)
	require.NoError(t, err)
	return &parsed
}

func TestEnrichScannedIDRule(t *testing.T) {
	longID := "Bag=KB0042, Seal=S-1, Lot: L-17" // 31 chars, carries Bag sub-field
	require.Greater(t, len(longID), config.ScannedIDMaxRawLen)

	longNoBag := "Seal=S-1, Lot: L-17, pad pad" // long but no Bag sub-field
	require.Greater(t, len(longNoBag), config.ScannedIDMaxRawLen)

	table := &Table{
		Columns: []string{config.ColumnAddedTime, config.ColumnBagID, config.ColumnSealNo},
		Rows: []Row{
			{Cells: map[string]string{config.ColumnBagID: longID}},
			{Cells: map[string]string{config.ColumnBagID: "KB0042"}},
			{Cells: map[string]string{config.ColumnBagID: longNoBag}},
			{Cells: map[string]string{config.ColumnSealNo: "S-2"}}, // null bag id
		},
	}

	enriched := Enrich(table)
	require.Len(t, enriched.Rows, 4)

	require.NotNil(t, enriched.Rows[0].ScannedID)
	assert.Equal(t, "KB0042", *enriched.Rows[0].ScannedID, "long identifier resolves through Bag sub-field")

	require.NotNil(t, enriched.Rows[1].ScannedID)
	assert.Equal(t, "KB0042", *enriched.Rows[1].ScannedID, "short identifier is already the code")

	assert.Nil(t, enriched.Rows[2].ScannedID, "long identifier without Bag sub-field yields null")
	assert.Nil(t, enriched.Rows[3].ScannedID, "null identifier yields null")
}

func TestEnrichBoundaryLength(t *testing.T) {
	// Exactly the threshold length: still treated as a manual code.
	exact := strings.Repeat("x", config.ScannedIDMaxRawLen)
	table := &Table{
		Columns: []string{config.ColumnBagID},
		Rows:    []Row{{Cells: map[string]string{config.ColumnBagID: exact}}},
	}

	enriched := Enrich(table)
	require.NotNil(t, enriched.Rows[0].ScannedID)
	assert.Equal(t, exact, *enriched.Rows[0].ScannedID)
}

func TestEnrichAddsFieldColumns(t *testing.T) {
	table := &Table{
		Columns: []string{config.ColumnAddedTime, config.ColumnBagID},
		Rows: []Row{
			{Cells: map[string]string{config.ColumnBagID: "Bag=KB1, Seal=S-1"}},
			{Cells: map[string]string{config.ColumnBagID: "Lot: L-9"}},
		},
	}

	enriched := Enrich(table)

	assert.Equal(t, []string{
		config.ColumnAddedTime, config.ColumnBagID,
		"Bag", "Lot", "Seal",
		config.ColumnScanned,
	}, enriched.Columns)

	v, ok := enriched.Rows[0].Value("Seal")
	require.True(t, ok)
	assert.Equal(t, "S-1", v)

	_, ok = enriched.Rows[0].Value("Lot")
	assert.False(t, ok, "field absent on this row is null, not empty")
}

func TestEnrichSortsByAddedTimeDescending(t *testing.T) {
	table := &Table{
		Columns: []string{config.ColumnAddedTime, config.ColumnBagID},
		Rows: []Row{
			{AddedTime: ts(t, "2024-03-01 08:00:00"), Cells: map[string]string{config.ColumnBagID: "A"}},
			{Cells: map[string]string{config.ColumnBagID: "C"}}, // null timestamp
			{AddedTime: ts(t, "2024-03-02 08:00:00"), Cells: map[string]string{config.ColumnBagID: "B"}},
		},
	}

	enriched := Enrich(table)

	first, _ := enriched.Rows[0].Cell(config.ColumnBagID)
	second, _ := enriched.Rows[1].Cell(config.ColumnBagID)
	third, _ := enriched.Rows[2].Cell(config.ColumnBagID)

	assert.Equal(t, "B", first)
	assert.Equal(t, "A", second)
	assert.Equal(t, "C", third, "null timestamps sort last")
}

func TestEnrichedRowValueResolution(t *testing.T) {
	id := "KB7"
	row := EnrichedRow{
		Row: Row{
			AddedTime: ts(t, "2024-03-01 08:30:00"),
			Cells:     map[string]string{config.ColumnSealNo: "S-5"},
		},
		Fields:    map[string]string{"Lot": "L-2"},
		ScannedID: &id,
	}

	v, ok := row.Value(config.ColumnScanned)
	require.True(t, ok)
	assert.Equal(t, "KB7", v)

	v, ok = row.Value(config.ColumnAddedTime)
	require.True(t, ok)
	assert.Equal(t, "2024-03-01 08:30:00", v)

	v, ok = row.Value("Lot")
	require.True(t, ok)
	assert.Equal(t, "L-2", v)

	v, ok = row.Value(config.ColumnSealNo)
	require.True(t, ok)
	assert.Equal(t, "S-5", v)

	_, ok = row.Value("missing")
	assert.False(t, ok)
}
