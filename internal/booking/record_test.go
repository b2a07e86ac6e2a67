package booking

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fleetdesk/booking-intake/constants"
)

func TestRowFillsAllColumns(t *testing.T) {
	r := Record{PassengerName: "Rahul Sharma", StartDate: "2025-03-14"}
	row := r.Row()
	require.Len(t, row, 20)

	assert.Equal(t, "Rahul Sharma", row[4])
	assert.Equal(t, "2025-03-14", row[11])
	for i, v := range row {
		if i == 4 || i == 11 {
			continue
		}
		assert.Equal(t, constants.Placeholder, v, "column %d", i)
	}
}

func TestGetSetRoundTrip(t *testing.T) {
	var r Record
	for _, f := range constants.AllFields() {
		r.Set(f, "v-"+string(f))
	}
	for _, f := range constants.AllFields() {
		assert.Equal(t, "v-"+string(f), r.Get(f))
	}
}

func TestViable(t *testing.T) {
	tests := []struct {
		name string
		rec  Record
		want bool
	}{
		{"identity only", Record{PassengerPhone: "9876543210"}, true},
		{"trip only", Record{ReportingAddress: "T2 Departures"}, true},
		{"corporate only", Record{Customer: "Accenture", VehicleGroup: "Dzire"}, false},
		{"placeholder does not count", Record{PassengerName: constants.Placeholder}, false},
		{"empty", Record{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.rec.Viable())
		})
	}
}

func TestDropNonViable(t *testing.T) {
	recs := []Record{
		{PassengerName: "A"},
		{VehicleGroup: "Innova"},
		{StartDate: "2025-01-02"},
	}
	kept := DropNonViable(recs)
	require.Len(t, kept, 2)
	assert.Equal(t, "A", kept[0].PassengerName)
	assert.Equal(t, "2025-01-02", kept[1].StartDate)
}
