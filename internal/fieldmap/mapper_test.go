package fieldmap

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fleetdesk/booking-intake/constants"
)

func TestMapExactLabels(t *testing.T) {
	m := New()
	tests := []struct {
		label string
		want  constants.Field
	}{
		{"Name of Employee", constants.FieldPassengerName},
		{"Contact Number", constants.FieldPassengerPhone},
		{"Date of Travel", constants.FieldStartDate},
		{"Cab Type", constants.FieldVehicleGroup},
		{"Drop at", constants.FieldDropAddress},
		{"Flight Details", constants.FieldFlightTrainNumber},
		{"Company Name", constants.FieldCustomer},
		{"City in which car is required", constants.FieldFromLocation},
		{"Email ID of Booker", constants.FieldBookedByEmail},
		{"Pick-up Address", constants.FieldReportingAddress},
		{"Rep. Time:", constants.FieldReportingTime},
	}
	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			got, ok := m.Map(tt.label)
			if tt.label == "Rep. Time:" {
				// not an exact key; resolves through the "time" rule
				assert.True(t, ok)
				assert.Equal(t, constants.FieldReportingTime, got)
				return
			}
			assert.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMapSubstringFallback(t *testing.T) {
	m := New()

	got, ok := m.Map("Guest Contact Details")
	assert.True(t, ok)
	assert.Equal(t, constants.FieldPassengerPhone, got)

	got, ok = m.Map("Preferred Car")
	assert.True(t, ok)
	assert.Equal(t, constants.FieldVehicleGroup, got)

	// pickup wording must never resolve to the drop side
	got, ok = m.Map("Pick up / Drop point")
	assert.True(t, ok)
	assert.Equal(t, constants.FieldReportingAddress, got)
}

func TestMapCanonicalKeysRoundTrip(t *testing.T) {
	m := New()
	for _, f := range constants.AllFields() {
		got, ok := m.Map(string(f))
		assert.True(t, ok, "canonical key %q must resolve", f)
		assert.Equal(t, f, got)
	}
}

func TestMapUnknownLabelMisses(t *testing.T) {
	m := New()
	_, ok := m.Map("Xyz Field 123")
	assert.False(t, ok)

	_, ok = m.Map("")
	assert.False(t, ok)

	_, ok = m.Map("   ")
	assert.False(t, ok)
}

func TestMapIsIdempotent(t *testing.T) {
	m := New()
	first, ok1 := m.Map("  Booker NAME  ")
	second, ok2 := m.Map("booker name")
	assert.True(t, ok1)
	assert.True(t, ok2)
	assert.Equal(t, first, second)
	assert.Equal(t, constants.FieldBookedByName, first)
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "reporting time", Normalize("  Reporting   Time: "))
	assert.Equal(t, "cab type", Normalize("Cab Type*"))
}
