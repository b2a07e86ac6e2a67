package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRulesMultipleDrops(t *testing.T) {
	rc := NewRuleClassifier()
	cls := rc.Classify("Pickup from office at 10:00, drop at airport, then second drop at Andheri station the same day")

	assert.Equal(t, "multiple", cls.BookingType)
	assert.Equal(t, 2, cls.BookingCount)
	assert.InDelta(t, 0.85, cls.Confidence, 1e-9)
}

func TestRulesExplicitDropCount(t *testing.T) {
	rc := NewRuleClassifier()
	cls := rc.Classify("We need 3 drops tomorrow: drop at T2, drop at BKC, drop at Worli")

	assert.Equal(t, "multiple", cls.BookingType)
	assert.Equal(t, 3, cls.BookingCount)
}

func TestRulesRoundTripIsSingle(t *testing.T) {
	rc := NewRuleClassifier()
	cls := rc.Classify("Mumbai to Pune and back the same day, round trip for Mr. Mehta in one vehicle")

	assert.Equal(t, "single", cls.BookingType)
	assert.Equal(t, 1, cls.BookingCount)
}

func TestRulesEnumeratedRecords(t *testing.T) {
	rc := NewRuleClassifier()
	cls := rc.Classify("Cab 1 for Amit, Cab 2 for Priya, Cab 3 for Sanjay, Cab 4 for Deepa")

	assert.Equal(t, "multiple", cls.BookingType)
	assert.Equal(t, 4, cls.BookingCount)
}

func TestRulesFullDayAlternateDays(t *testing.T) {
	rc := NewRuleClassifier()
	cls := rc.Classify("Full day 8/80 car needed on alternate days next week")

	assert.Equal(t, "multiple", cls.BookingType)
	assert.GreaterOrEqual(t, cls.BookingCount, 2)
	assert.InDelta(t, 0.9, cls.Confidence, 1e-9)
}

func TestRulesVehicleChange(t *testing.T) {
	rc := NewRuleClassifier()
	cls := rc.Classify("Dzire for the first two days, then an Innova for the remaining days")

	assert.Equal(t, "multiple", cls.BookingType)
}

func TestRulesConsecutiveFullDayIsSingle(t *testing.T) {
	rc := NewRuleClassifier()
	cls := rc.Classify("8hr 80kms at disposal daily for 3 days, continuous duty in Bangalore")

	assert.Equal(t, "single", cls.BookingType)
	assert.Equal(t, 1, cls.BookingCount)
	assert.Equal(t, "8hr_80kms", cls.DutyTypeTag)
}

func TestRulesOutstationConsecutiveIsSingle(t *testing.T) {
	rc := NewRuleClassifier()
	cls := rc.Classify("Outstation trip Mumbai to Nashik, continuous for 2 days")

	assert.Equal(t, "single", cls.BookingType)
	assert.Equal(t, "outstation", cls.DutyTypeTag)
}

func TestRulesDateCountFallback(t *testing.T) {
	rc := NewRuleClassifier()

	cls := rc.Classify("Car needed on 12/03/2025 and again on 15/03/2025")
	assert.Equal(t, "multiple", cls.BookingType)
	assert.Equal(t, 2, cls.BookingCount)
	assert.InDelta(t, 0.6, cls.Confidence, 1e-9)

	cls = rc.Classify("Need a car for a meeting across town")
	assert.Equal(t, "single", cls.BookingType)
	assert.Equal(t, 1, cls.BookingCount)
}

func TestRulesCountCap(t *testing.T) {
	rc := NewRuleClassifier()
	cls := rc.Classify("Cab 1 Cab 2 Cab 3 Cab 4 Cab 5 Cab 6 Cab 7 Cab 8 Cab 9 Cab 10 Cab 11 Cab 12")

	assert.Equal(t, "multiple", cls.BookingType)
	assert.Equal(t, maxBookingCount, cls.BookingCount)
}

func TestRulesDeterministic(t *testing.T) {
	rc := NewRuleClassifier()
	const text = "drop at airport, drop at hotel, Innova preferred"
	first := rc.Classify(text)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, rc.Classify(text))
	}
}
