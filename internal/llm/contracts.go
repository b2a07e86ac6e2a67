package llm

import (
	"context"

	"github.com/fleetdesk/booking-intake/internal/booking"
)

// Classification is the normalized shape we want from the classification
// oracle.
type Classification struct {
	BookingType  string  `json:"booking_type"`
	BookingCount int     `json:"booking_count"`
	Confidence   float64 `json:"confidence"`
	Reasoning    string  `json:"reasoning,omitempty"`
	DutyTypeTag  string  `json:"detected_duty_type,omitempty"`
}

// ClassifyRequest carries the document content to classify.
type ClassifyRequest struct {
	Content    string
	SourceType string // email_text | ocr_table | form
}

// ExtractRequest asks the oracle for booking records from free text.
type ExtractRequest struct {
	Content       string
	Multiple      bool
	ExpectedCount int // hint from the classifier; 0 means unknown
}

// Usage is the token accounting reported by the oracle for one call.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
}

// BookingClassifier is the classification oracle the pipeline depends on.
type BookingClassifier interface {
	ClassifyBooking(ctx context.Context, req ClassifyRequest) (Classification, Usage, error)
}

// BookingExtractor is the extraction oracle the pipeline depends on.
type BookingExtractor interface {
	ExtractBookings(ctx context.Context, req ExtractRequest) ([]booking.Record, Usage, error)
}
