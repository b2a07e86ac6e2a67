package llm

import (
	"fmt"
	"strings"
)

// maxPromptChars caps how much raw document text is forwarded to the oracle.
const maxPromptChars = 6000

// BuildClassifySystemPrompt composes the system message with the business
// rules the oracle must apply when deciding single vs multiple bookings.
func BuildClassifySystemPrompt() string {
	parts := []string{
		"You are a car rental booking classifier. Return ONLY JSON that matches the provided schema.",
		"Decide whether the request describes a single booking or multiple bookings and how many.",
		"Business rules, in priority order:",
		"1. Two or more drop events on the same calendar day mean multiple bookings, one per drop.",
		"2. A full-day package (8hr/80kms) on alternate or non-consecutive days means multiple bookings, one per listed day.",
		"3. A change of car type within the date range means multiple bookings.",
		"4. Several point transfers (4hr/40kms) mean multiple bookings.",
		"5. A full-day or outstation duty across consecutive days is a single booking spanning those days.",
		"6. A round trip (city A to city B and back to A) for the same passenger in one vehicle is a single booking.",
		"Report detected_duty_type as one of: drop, 4hr_40kms, 8hr_80kms, outstation, unknown.",
		"Confidence must reflect how unambiguous the request is, between 0 and 1.",
		"Never output null. If a field is unknown, omit it.",
	}
	return strings.Join(parts, " ")
}

// BuildClassifyUserPrompt renders the document for classification.
func BuildClassifyUserPrompt(req ClassifyRequest) string {
	var b strings.Builder
	b.WriteString("Source type: ")
	if req.SourceType != "" {
		b.WriteString(req.SourceType)
	} else {
		b.WriteString("unknown")
	}
	b.WriteString("\n\nBooking request:\n")
	b.WriteString(clip(req.Content))
	return b.String()
}

// BuildExtractSystemPrompt composes the system message for record extraction.
func BuildExtractSystemPrompt(multiple bool) string {
	parts := []string{
		"You are a car rental booking extractor. Return ONLY JSON that matches the provided schema.",
		"Populate every field you can find; omit fields that are absent from the text.",
		"Dates must be formatted DD/MM/YYYY and times as 24-hour HH:MM.",
		"Phone numbers must be digits only.",
	}
	if multiple {
		parts = append(parts,
			"The request contains several bookings. Return one object per booking in the bookings array, in document order.",
			"Never merge details from different bookings into one object.",
		)
	} else {
		parts = append(parts, "The request is a single booking. Return a bookings array with exactly one object.")
	}
	return strings.Join(parts, " ")
}

// BuildExtractUserPrompt renders the document for extraction, with the
// classifier's count as a hint when known.
func BuildExtractUserPrompt(req ExtractRequest) string {
	var b strings.Builder
	if req.Multiple && req.ExpectedCount > 1 {
		fmt.Fprintf(&b, "Expected number of bookings: %d\n\n", req.ExpectedCount)
	}
	b.WriteString("Booking request:\n")
	b.WriteString(clip(req.Content))
	return b.String()
}

func clip(s string) string {
	if len(s) > maxPromptChars {
		return s[:maxPromptChars]
	}
	return s
}
