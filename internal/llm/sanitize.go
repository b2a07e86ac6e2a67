package llm

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	fenceRe         = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)\\s*```")
	trailingCommaRe = regexp.MustCompile(`,\s*([}\]])`)

	bookingTypeRe  = regexp.MustCompile(`"booking_type"\s*:\s*"(single|multiple)"`)
	bookingCountRe = regexp.MustCompile(`"booking_count"\s*:\s*(\d+)`)
	confidenceRe   = regexp.MustCompile(`"confidence(?:_score)?"\s*:\s*([0-9.]+)`)
)

// ExtractJSONPayload pulls the JSON object out of an oracle reply. Models
// wrap responses in markdown fences, prepend prose, and leave trailing
// commas; all of that is stripped before strict validation runs.
func ExtractJSONPayload(content string) ([]byte, error) {
	s := strings.TrimSpace(content)
	if m := fenceRe.FindStringSubmatch(s); len(m) == 2 {
		s = m[1]
	}
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end <= start {
		return nil, fmt.Errorf("no json object in content (%d bytes)", len(content))
	}
	s = s[start : end+1]
	s = trailingCommaRe.ReplaceAllString(s, "$1")
	return []byte(s), nil
}

// ParseClassificationLenient scrapes the classification fields out of a
// response that failed strict decoding. Best effort: it fails only when not
// even the booking type can be found.
func ParseClassificationLenient(raw []byte) (Classification, error) {
	s := string(raw)

	m := bookingTypeRe.FindStringSubmatch(s)
	if len(m) != 2 {
		return Classification{}, fmt.Errorf("booking_type not found in response")
	}
	out := Classification{BookingType: m[1], BookingCount: 1, Confidence: 0.5}

	if m := bookingCountRe.FindStringSubmatch(s); len(m) == 2 {
		if n, err := strconv.Atoi(m[1]); err == nil && n >= 1 {
			out.BookingCount = n
		}
	}
	if m := confidenceRe.FindStringSubmatch(s); len(m) == 2 {
		if f, err := strconv.ParseFloat(m[1], 64); err == nil && f >= 0 && f <= 1 {
			out.Confidence = f
		}
	}
	return out, nil
}
