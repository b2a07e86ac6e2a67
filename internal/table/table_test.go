package table

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromCellsSparsePositions(t *testing.T) {
	// arrival order does not matter and missing positions become gaps
	cells := []Cell{
		{Row: 1, Col: 2, Text: "12/03/2025"},
		{Row: 0, Col: 0, Text: "Passenger Name"},
		{Row: 0, Col: 2, Text: "Date of Travel"},
		{Row: 1, Col: 0, Text: "Amit Verma"},
	}
	tab := FromCells(cells)

	require.Len(t, tab.Rows, 2)
	assert.Equal(t, []string{"Passenger Name", "", "Date of Travel"}, tab.Rows[0])
	assert.Equal(t, []string{"Amit Verma", "", "12/03/2025"}, tab.Rows[1])
	assert.Equal(t, 3, tab.ColumnCount())
}

func TestFromCellsPadsSkippedRows(t *testing.T) {
	tab := FromCells([]Cell{
		{Row: 0, Col: 0, Text: "Name"},
		{Row: 2, Col: 1, Text: "John Smith"},
	})

	require.Len(t, tab.Rows, 3)
	assert.Equal(t, []string{"", ""}, tab.Rows[1], "skipped row is all gaps")
	assert.Equal(t, "John Smith", tab.Rows[2][1])
}

func TestFromCellsEmptyInput(t *testing.T) {
	tab := FromCells(nil)
	assert.True(t, tab.Empty())
	assert.Zero(t, tab.RowCount())
}
