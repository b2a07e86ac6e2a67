package llm

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractJSONPayload(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{
			"clean",
			`{"booking_type":"single"}`,
			`{"booking_type":"single"}`,
		},
		{
			"fenced",
			"Here you go:\n```json\n{\"booking_type\": \"multiple\"}\n```",
			`{"booking_type": "multiple"}`,
		},
		{
			"prose around object",
			`Sure! The result is {"booking_count": 2} as requested.`,
			`{"booking_count": 2}`,
		},
		{
			"trailing commas",
			`{"a": 1, "b": [1, 2,],}`,
			`{"a": 1, "b": [1, 2]}`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractJSONPayload(tt.content)
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(got))
			assert.True(t, json.Valid(got))
		})
	}
}

func TestExtractJSONPayloadNoObject(t *testing.T) {
	_, err := ExtractJSONPayload("sorry, I cannot help with that")
	assert.Error(t, err)
}

func TestParseClassificationLenient(t *testing.T) {
	raw := []byte(`the model said "booking_type": "multiple" and "booking_count": 3 with "confidence": 0.85 somewhere`)
	got, err := ParseClassificationLenient(raw)
	require.NoError(t, err)
	assert.Equal(t, "multiple", got.BookingType)
	assert.Equal(t, 3, got.BookingCount)
	assert.InDelta(t, 0.85, got.Confidence, 1e-9)
}

func TestParseClassificationLenientDefaults(t *testing.T) {
	got, err := ParseClassificationLenient([]byte(`"booking_type": "single"`))
	require.NoError(t, err)
	assert.Equal(t, "single", got.BookingType)
	assert.Equal(t, 1, got.BookingCount)
	assert.InDelta(t, 0.5, got.Confidence, 1e-9)
}

func TestParseClassificationLenientMissingType(t *testing.T) {
	_, err := ParseClassificationLenient([]byte(`{"booking_count": 2}`))
	assert.Error(t, err)
}
