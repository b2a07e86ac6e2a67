package pipeline

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fleetdesk/booking-intake/internal/booking"
)

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"ten digits pass through", "9876543210", "9876543210"},
		{"separators stripped", "98765-43210", "9876543210"},
		{"country code 91", "+91 98765 43210", "9876543210"},
		{"country code 091", "091-98765-43210", "9876543210"},
		{"too short untouched", "12345", "12345"},
		{"eleven digits untouched", "19876543210", "19876543210"},
		{"empty", "", ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, normalizePhone(tc.in))
		})
	}
}

func TestRoundToQuarterHour(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		changed bool
	}{
		{"09:05", "09:00", true},
		{"09:10", "09:15", true},
		{"09:30", "09:30", false},
		{"09:40", "09:45", true},
		{"09:55", "10:00", true},
		{"23:58", "00:00", true},
		{"9.20 am", "09:15", true},
		{"9 pm", "21:00", false},
		{"12 am", "00:00", false},
	}
	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			got, changed, ok := roundToQuarterHour(tc.in)
			require.True(t, ok)
			assert.Equal(t, tc.want, got)
			assert.Equal(t, tc.changed, changed)
		})
	}

	_, _, ok := roundToQuarterHour("no time here")
	assert.False(t, ok)
}

func TestValidateAdjustedTimeLeavesRemark(t *testing.T) {
	v := NewValidator(nil, nil)
	rec := v.validateRecord(booking.Record{ReportingTime: "09:40", Confidence: 0.8}, IntakeContent{})

	assert.Equal(t, "09:45", rec.ReportingTime)
	assert.Contains(t, rec.Remarks, "Reporting time adjusted from 09:40 to 09:45")
}

func TestValidateCorporateResolution(t *testing.T) {
	v := NewValidator(nil, nil)

	rec := v.validateRecord(booking.Record{Customer: "accenture travel desk", Confidence: 0.8}, IntakeContent{})
	assert.Equal(t, "Accenture India Ltd", rec.Customer)
	assert.Equal(t, "G2G-08HR 80KMS", rec.DutyType)

	// unknown corporate mail domain still implies a corporate account
	rec = v.validateRecord(booking.Record{BookedByEmail: "ravi@zentech.io", Confidence: 0.8}, IntakeContent{})
	assert.Equal(t, "G2G-08HR 80KMS", rec.DutyType)

	// free mail providers never do
	rec = v.validateRecord(booking.Record{BookedByEmail: "guest@gmail.com", Confidence: 0.8}, IntakeContent{})
	assert.Equal(t, "P2P-08HR 80KMS", rec.DutyType)
}

func TestValidateCityAndDispatch(t *testing.T) {
	v := NewValidator(nil, nil)
	rec := v.validateRecord(booking.Record{
		FromLocation: "bombay airport",
		ToLocation:   "pune office",
		Confidence:   0.8,
	}, IntakeContent{})

	assert.Equal(t, "Mumbai", rec.FromLocation)
	assert.Equal(t, "Pune", rec.ToLocation)
	assert.Equal(t, "Mumbai Central Dispatch", rec.DispatchCenter)
}

func TestValidateVehicleCanonicalization(t *testing.T) {
	v := NewValidator(nil, nil)

	rec := v.validateRecord(booking.Record{VehicleGroup: "need an innova crysta", Confidence: 0.8}, IntakeContent{})
	assert.Equal(t, "Toyota Innova Crysta", rec.VehicleGroup)

	rec = v.validateRecord(booking.Record{VehicleGroup: "any sedan", Confidence: 0.8}, IntakeContent{})
	assert.Equal(t, "Swift Dzire", rec.VehicleGroup)
}

func TestValidateOutstationDutyCode(t *testing.T) {
	v := NewValidator(nil, nil)
	rec := v.validateRecord(booking.Record{
		Customer:     "infosys",
		FromLocation: "Mumbai",
		ToLocation:   "Pune",
		DutyType:     "outstation trip",
		Confidence:   0.8,
	}, IntakeContent{})

	assert.Equal(t, "G2G-Outstation 150KMS", rec.DutyType)
}

func TestValidateOutstationDefaultDistance(t *testing.T) {
	v := NewValidator(nil, nil)
	rec := v.validateRecord(booking.Record{
		FromLocation: "Delhi",
		ToLocation:   "Jaipur",
		DutyType:     "outstation",
		Confidence:   0.8,
	}, IntakeContent{})

	assert.Equal(t, "P2P-Outstation 250KMS", rec.DutyType)
}

func TestValidateTransferDutyCode(t *testing.T) {
	v := NewValidator(nil, nil)
	rec := v.validateRecord(booking.Record{DutyType: "airport transfer", Confidence: 0.8}, IntakeContent{})

	assert.Equal(t, "P2P-04HR 40KMS", rec.DutyType)
}

func TestValidateLabels(t *testing.T) {
	v := NewValidator(nil, nil)
	rec := v.validateRecord(
		booking.Record{PassengerName: "Ms. Priya Nair", Confidence: 0.8},
		IntakeContent{Text: "VIP movement, handle with care"},
	)

	assert.Equal(t, "LadyGuest, VIP", rec.Labels)
}

func TestValidateEndDateDefaultsToStart(t *testing.T) {
	v := NewValidator(nil, nil)
	rec := v.validateRecord(booking.Record{StartDate: "12/03/2025", Confidence: 0.8}, IntakeContent{})

	assert.Equal(t, "12/03/2025", rec.EndDate)
}

func TestValidateDefaults(t *testing.T) {
	v := NewValidator(nil, nil)
	rec := v.validateRecord(booking.Record{PassengerPhone: "9876543210", Confidence: 0.8}, IntakeContent{})

	assert.Equal(t, "Travel Coordinator", rec.BookedByName)
	assert.Equal(t, "Guest", rec.PassengerName)
	assert.Equal(t, "Swift Dzire", rec.VehicleGroup)
	assert.Equal(t, "09:00", rec.ReportingTime)
	assert.Equal(t, "Central Dispatch", rec.DispatchCenter)
}

func TestValidateLookupMissPenalty(t *testing.T) {
	v := NewValidator(nil, nil)
	rec := v.validateRecord(booking.Record{VehicleGroup: "armored truck", Confidence: 0.8}, IntakeContent{})

	// the unresolved value passes through at reduced confidence
	assert.Equal(t, "armored truck", rec.VehicleGroup)
	assert.InDelta(t, 0.8*lookupMissPenalty, rec.Confidence, 1e-9)
}

func TestValidateDropLocationMissPenalized(t *testing.T) {
	v := NewValidator(nil, nil)
	resolved := v.validateRecord(booking.Record{
		FromLocation: "Mumbai", ToLocation: "Pune", Confidence: 0.8,
	}, IntakeContent{})
	unresolved := v.validateRecord(booking.Record{
		FromLocation: "Mumbai", ToLocation: "Shangri-La", Confidence: 0.8,
	}, IntakeContent{})

	// an unknown drop city counts like an unknown pickup city
	assert.InDelta(t, 0.8, resolved.Confidence, 1e-9)
	assert.Equal(t, "Shangri-La", unresolved.ToLocation)
	assert.InDelta(t, 0.8*lookupMissPenalty, unresolved.Confidence, 1e-9)
}

func TestValidateConfidenceFloor(t *testing.T) {
	v := NewValidator(nil, nil)
	rec := v.validateRecord(booking.Record{
		FromLocation: "Atlantis",
		VehicleGroup: "submarine",
		Confidence:   0.11,
	}, IntakeContent{})

	assert.InDelta(t, 0.1, rec.Confidence, 1e-9)
}

func TestValidateStageReportsMisses(t *testing.T) {
	v := NewValidator(nil, nil)
	sc := newStageContext()
	sc.priorRecords = []booking.Record{
		{PassengerName: "Amit", FromLocation: "Mumbai", Confidence: 0.8},
		{PassengerName: "Ravi", VehicleGroup: "bullock cart", Confidence: 0.8},
	}
	res := v.Process(context.Background(), IntakeContent{}, sc)

	require.True(t, res.Success, "validation is never fatal")
	require.Len(t, res.Records, 2)
	assert.Equal(t, KindLookupMiss, res.ErrorKind)
	assert.Equal(t, "1", res.Metadata["records_with_misses"])
}
