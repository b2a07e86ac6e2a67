package table

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReconstructHorizontal(t *testing.T) {
	r := NewReconstructor(nil)
	recs := r.FromTable(cabTable(), Layout{Kind: KindHorizontalMulti})
	require.Len(t, recs, 4)

	assert.Equal(t, "Amit Verma", recs[0].PassengerName)
	assert.Equal(t, "9876543210", recs[0].PassengerPhone)
	assert.Equal(t, "Mumbai", recs[0].FromLocation)
	assert.Equal(t, "Dzire", recs[0].VehicleGroup)

	assert.Equal(t, "Deepa Iyer", recs[3].PassengerName)
	assert.Equal(t, "Chennai", recs[3].FromLocation)
	assert.Equal(t, "Crysta", recs[3].VehicleGroup)

	// each record carries values from its own column only
	assert.NotEqual(t, recs[0].PassengerPhone, recs[1].PassengerPhone)
}

func TestReconstructHorizontalSkipsNoiseValues(t *testing.T) {
	r := NewReconstructor(nil)
	tab := New(
		[]string{"Field", "Cab 1", "Cab 2"},
		[][]string{
			{"Passenger Name", "Amit Verma", "NA"},
			{"Contact Number", "-", "9876543211"},
		},
	)
	recs := r.FromTable(tab, Layout{Kind: KindHorizontalMulti})
	require.Len(t, recs, 2)
	assert.Equal(t, "Amit Verma", recs[0].PassengerName)
	assert.Empty(t, recs[0].PassengerPhone)
	assert.Empty(t, recs[1].PassengerName)
	assert.Equal(t, "9876543211", recs[1].PassengerPhone)
}

func TestReconstructVertical(t *testing.T) {
	r := NewReconstructor(nil)
	recs := r.FromTable(verticalTable(), Layout{Kind: KindVerticalMulti})
	require.Len(t, recs, 3)

	assert.Equal(t, "Priya Nair", recs[1].PassengerName)
	assert.Equal(t, "9876543211", recs[1].PassengerPhone)
	assert.Equal(t, "Powai", recs[1].ReportingAddress)
}

func TestReconstructVerticalHeaderInFirstRow(t *testing.T) {
	r := NewReconstructor(nil)
	tab := New(nil, [][]string{
		{"Passenger Name", "Contact Number"},
		{"Amit Verma", "9876543210"},
	})
	recs := r.FromTable(tab, Layout{Kind: KindVerticalMulti, HeaderRow: true})
	require.Len(t, recs, 1)
	assert.Equal(t, "Amit Verma", recs[0].PassengerName)
}

func TestReconstructFormKV(t *testing.T) {
	r := NewReconstructor(nil)
	tab := New(nil, [][]string{
		{"Name", "John Smith"},
		{"Phone", "9876543210"},
	})
	recs := r.FromTable(tab, Layout{Kind: KindFormKV})
	require.Len(t, recs, 1)
	assert.Equal(t, "John Smith", recs[0].PassengerName)
	assert.Equal(t, "9876543210", recs[0].PassengerPhone)
}

func TestReconstructDropsUnmappedLabels(t *testing.T) {
	r := NewReconstructor(nil)
	tab := New(nil, [][]string{
		{"Name", "John Smith"},
		{"Xyz Field 123", "whatever"},
		{"Phone", "9876543210"},
	})
	recs := r.FromTable(tab, Layout{Kind: KindFormKV})
	require.Len(t, recs, 1)
	assert.Equal(t, "John Smith", recs[0].PassengerName)
	assert.Equal(t, "9876543210", recs[0].PassengerPhone)
	assert.Empty(t, recs[0].Remarks)
}

func TestReconstructVerticalHeaderlessDataRows(t *testing.T) {
	r := NewReconstructor(nil)
	// no headers and the first row is data, even though one of its cells
	// happens to resolve through the field mapper
	tab := New(nil, [][]string{
		{"Contact Number", "9876543210"},
		{"Amit Verma", "12/03/2025"},
	})
	recs := r.FromTable(tab, Layout{Kind: KindVerticalMulti})
	assert.Empty(t, recs, "data rows must not be promoted to headers")
}

func TestClassifyAndReconstructAgreeOnHeaderRow(t *testing.T) {
	// headerless table whose first row carries the labels: the classifier's
	// record estimate and the reconstructed count must match
	tab := New(nil, [][]string{
		{"Passenger Name", "Contact Number", "Date of Travel"},
		{"Amit Verma", "9876543210", "12/03/2025"},
		{"Priya Nair", "9876543211", "13/03/2025"},
	})
	layout := NewClassifier(nil).Classify(tab)
	require.True(t, layout.HeaderRow)

	recs := NewReconstructor(nil).FromTable(tab, layout)
	require.Len(t, recs, layout.EstimatedRecords)
	assert.Equal(t, "Amit Verma", recs[0].PassengerName)
	assert.Equal(t, "9876543211", recs[1].PassengerPhone)
}

func TestReconstructDropsEmptyRecords(t *testing.T) {
	r := NewReconstructor(nil)
	tab := New(
		[]string{"Field", "Cab 1", "Cab 2"},
		[][]string{
			{"Passenger Name", "Amit Verma", ""},
			{"Contact Number", "9876543210", "N/A"},
		},
	)
	recs := r.FromTable(tab, Layout{Kind: KindHorizontalMulti})
	require.Len(t, recs, 1)
	assert.Equal(t, "Amit Verma", recs[0].PassengerName)
}
