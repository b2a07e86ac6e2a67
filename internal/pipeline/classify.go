package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/fleetdesk/booking-intake/constants"
	"github.com/fleetdesk/booking-intake/internal/llm"
	"github.com/fleetdesk/booking-intake/internal/table"
)

// fallbackConfidence is applied when the oracle is unavailable and the rule
// cascade decides instead.
const fallbackConfidence = 0.6

// Classifier decides single vs multiple bookings. Table-shaped content
// bypasses the oracle entirely; free text goes to the oracle with the rule
// cascade as fallback.
type Classifier struct {
	logger *slog.Logger
	oracle llm.BookingClassifier // nil means rules only
	layout *table.Classifier
	rules  *RuleClassifier
}

func NewClassifier(oracle llm.BookingClassifier, layout *table.Classifier, logger *slog.Logger) *Classifier {
	if logger == nil {
		logger = slog.Default()
	}
	if layout == nil {
		layout = table.NewClassifier(nil)
	}
	return &Classifier{
		logger: logger,
		oracle: oracle,
		layout: layout,
		rules:  NewRuleClassifier(),
	}
}

func (c *Classifier) Name() string { return StageClassify }

func (c *Classifier) Process(ctx context.Context, content IntakeContent, sc *StageContext) StageResult {
	start := time.Now()

	if len(content.Tables) > 0 {
		res := c.bypass(content)
		res.Elapsed = time.Since(start)
		c.logDone(sc, res)
		return res
	}

	if c.oracle == nil {
		res := c.fromRules(content.Text, "", 0)
		res.Elapsed = time.Since(start)
		c.logDone(sc, res)
		return res
	}

	cls, usage, err := c.oracle.ClassifyBooking(ctx, llm.ClassifyRequest{
		Content:    content.Text,
		SourceType: content.SourceType,
	})
	cost := llm.ClassifyRates.Cost(usage)
	if err != nil {
		c.logger.Warn("pipeline.classify.oracle_fallback",
			"run_id", sc.RunID, "error", err, "cost", cost)
		res := c.fromRules(content.Text, errorKind(err), cost)
		res.Elapsed = time.Since(start)
		c.logDone(sc, res)
		return res
	}

	clampClassification(&cls)
	out := &Classification{Classification: cls, Source: SourceOracle}
	res := StageResult{
		Stage:          StageClassify,
		Success:        true,
		Classification: out,
		Confidence:     cls.Confidence,
		Cost:           cost,
		Elapsed:        time.Since(start),
	}
	c.logDone(sc, res)
	return res
}

// bypass derives the classification from table shape alone: rows in, records
// out, no oracle cost.
func (c *Classifier) bypass(content IntakeContent) StageResult {
	count := 0
	for _, t := range content.Tables {
		if t.Empty() {
			continue
		}
		layout := c.layout.Classify(t)
		count += layout.EstimatedRecords
	}
	if count < 1 {
		count = 1
	}
	if count > maxBookingCount {
		count = maxBookingCount
	}

	bookingType := constants.BookingSingle
	if count > 1 {
		bookingType = constants.BookingMultiple
	}
	cls := &Classification{
		Classification: llm.Classification{
			BookingType:  string(bookingType),
			BookingCount: count,
			Confidence:   0.9,
			Reasoning:    "record count derived from table structure",
			DutyTypeTag:  readSignals(content.Text).dutyTag(),
		},
		Source: SourceBypass,
	}
	return StageResult{
		Stage:          StageClassify,
		Success:        true,
		Classification: cls,
		Confidence:     cls.Confidence,
	}
}

// fromRules classifies with the keyword cascade. errKind is set when this is
// an oracle fallback; cost carries whatever the failed call still billed.
func (c *Classifier) fromRules(text, errKind string, cost float64) StageResult {
	cls := c.rules.Classify(text)
	if errKind != "" {
		cls.Confidence = fallbackConfidence
	}
	out := &Classification{Classification: cls, Source: SourceRules}
	return StageResult{
		Stage:          StageClassify,
		Success:        true,
		Classification: out,
		Confidence:     cls.Confidence,
		Cost:           cost,
		ErrorKind:      errKind,
	}
}

func (c *Classifier) logDone(sc *StageContext, res StageResult) {
	c.logger.Info("pipeline.classify.ok",
		"run_id", sc.RunID,
		"source", res.Classification.Source,
		"booking_type", res.Classification.BookingType,
		"booking_count", res.Classification.BookingCount,
		"confidence", res.Confidence,
		"cost", res.Cost,
		"elapsed_ms", res.Elapsed.Milliseconds(),
	)
}

func clampClassification(cls *llm.Classification) {
	if cls.BookingType != string(constants.BookingMultiple) {
		cls.BookingType = string(constants.BookingSingle)
	}
	if cls.BookingCount < 1 {
		cls.BookingCount = 1
	}
	if cls.BookingCount > maxBookingCount {
		cls.BookingCount = maxBookingCount
	}
	if cls.BookingType == string(constants.BookingSingle) {
		cls.BookingCount = 1
	}
	if cls.Confidence < 0 {
		cls.Confidence = 0
	}
	if cls.Confidence > 1 {
		cls.Confidence = 1
	}
}
