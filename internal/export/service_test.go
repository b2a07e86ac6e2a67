package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/fleetdesk/booking-intake/constants"
	"github.com/fleetdesk/booking-intake/internal/booking"
)

func TestWorkbookBytes(t *testing.T) {
	recs := []booking.Record{
		{Customer: "Accenture India Ltd", PassengerName: "Amit Verma", PassengerPhone: "9876543210"},
		{PassengerName: "Priya Nair", StartDate: "12/03/2025"},
	}

	raw, err := WorkbookBytes(recs)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(raw))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Bookings")
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, constants.ColumnTitles(), rows[0][:20])
	assert.Equal(t, "Accenture India Ltd", rows[1][0])
	assert.Equal(t, "Amit Verma", rows[1][4])
	// empty fields render as the placeholder, never blank
	assert.Equal(t, constants.Placeholder, rows[2][0])
	assert.Equal(t, "12/03/2025", rows[2][11])
}

func TestWorkbookBytesNoRecords(t *testing.T) {
	raw, err := WorkbookBytes(nil)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(raw))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Bookings")
	require.NoError(t, err)
	require.Len(t, rows, 1, "header row only")
}
