package llm

import "github.com/fleetdesk/booking-intake/constants"

// BuildClassificationJSONSchema returns a JSON-Schema (draft 2020-12 subset)
// as a generic map. We pass this to the oracle as a structured output
// constraint and also use it locally to validate the response.
func BuildClassificationJSONSchema() map[string]any {
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"booking_type": map[string]any{
				"type": "string",
				"enum": []string{string(constants.BookingSingle), string(constants.BookingMultiple)},
			},
			"booking_count":      map[string]any{"type": "integer", "minimum": 1},
			"confidence":         map[string]any{"type": "number", "minimum": 0.0, "maximum": 1.0},
			"reasoning":          map[string]any{"type": "string"},
			"detected_duty_type": map[string]any{"type": "string"},
		},
		"required": []string{"booking_type", "booking_count", "confidence"},
	}
}

// BuildBookingRecordsJSONSchema constrains the extraction response to an
// object with a "bookings" array, each element restricted to the canonical
// field keys.
func BuildBookingRecordsJSONSchema() map[string]any {
	props := map[string]any{}
	for _, f := range constants.AllFields() {
		props[string(f)] = map[string]any{"type": "string"}
	}
	props["confidence"] = map[string]any{"type": "number", "minimum": 0.0, "maximum": 1.0}

	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"bookings": map[string]any{
				"type":     "array",
				"minItems": 1,
				"items": map[string]any{
					"type":                 "object",
					"additionalProperties": false,
					"properties":           props,
				},
			},
		},
		"required": []string{"bookings"},
	}
}
