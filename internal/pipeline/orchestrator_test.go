package pipeline

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fleetdesk/booking-intake/constants"
	"github.com/fleetdesk/booking-intake/internal/booking"
	"github.com/fleetdesk/booking-intake/internal/llm"
	"github.com/fleetdesk/booking-intake/internal/table"
)

// stubStage returns a scripted result and records the context it saw.
type stubStage struct {
	name  string
	res   StageResult
	seen  *StageContext
	panic bool
}

func (s *stubStage) Name() string { return s.name }

func (s *stubStage) Process(_ context.Context, _ IntakeContent, sc *StageContext) StageResult {
	s.seen = sc
	if s.panic {
		panic("stage blew up")
	}
	return s.res
}

func okClassify(cost float64) *stubStage {
	return &stubStage{name: StageClassify, res: StageResult{
		Stage:   StageClassify,
		Success: true,
		Cost:    cost,
		Classification: &Classification{
			Classification: llm.Classification{BookingType: "single", BookingCount: 1, Confidence: 0.9},
			Source:         SourceOracle,
		},
	}}
}

func okExtract(cost float64, recs ...booking.Record) *stubStage {
	return &stubStage{name: StageExtract, res: StageResult{
		Stage: StageExtract, Success: true, Cost: cost, Records: recs,
	}}
}

func okValidate(recs ...booking.Record) *stubStage {
	return &stubStage{name: StageValidate, res: StageResult{
		Stage: StageValidate, Success: true, Records: recs,
	}}
}

func TestOrchestratorHappyPath(t *testing.T) {
	rec := booking.Record{PassengerName: "Amit", Confidence: 0.9}
	stats := NewStatsCollector()
	o := NewOrchestrator(okClassify(0.01), okExtract(0.05, rec), okValidate(rec), stats, nil)

	res := o.Run(context.Background(), IntakeContent{Text: "one car please"})

	require.True(t, res.Success)
	assert.Equal(t, constants.RunStatusSucceeded, res.Status)
	assert.Equal(t, 1, res.BookingCount)
	require.Len(t, res.Stages, 3)
	assert.InDelta(t, 0.06, res.TotalCost, 1e-9)
	assert.Positive(t, res.TotalElapsed)

	snap := stats.Snapshot()
	assert.EqualValues(t, 1, snap.TotalRuns)
	assert.EqualValues(t, 1, snap.Succeeded)
	assert.InDelta(t, 0.06, snap.TotalCost, 1e-9)
}

func TestOrchestratorForwardsRecordsToValidator(t *testing.T) {
	rec := booking.Record{PassengerName: "Amit"}
	validate := okValidate(rec)
	o := NewOrchestrator(okClassify(0), okExtract(0, rec), validate, nil, nil)

	o.Run(context.Background(), IntakeContent{Text: "x"})

	require.NotNil(t, validate.seen)
	require.Len(t, validate.seen.priorRecords, 1)
	assert.Equal(t, "Amit", validate.seen.priorRecords[0].PassengerName)
	require.NotNil(t, validate.seen.Classification)
}

func TestOrchestratorEmptyExtractionFailsRun(t *testing.T) {
	extract := &stubStage{name: StageExtract, res: StageResult{
		Stage:        StageExtract,
		Cost:         0.02,
		ErrorKind:    KindExtractionEmpty,
		ErrorMessage: "no usable booking records extracted",
	}}
	stats := NewStatsCollector()
	o := NewOrchestrator(okClassify(0.01), extract, okValidate(), stats, nil)

	res := o.Run(context.Background(), IntakeContent{Text: "x"})

	assert.False(t, res.Success)
	assert.Equal(t, constants.RunStatusFailed, res.Status)
	assert.Contains(t, res.ErrorMessage, "extract stage failed")
	// failed runs still account for every stage's spend
	assert.InDelta(t, 0.03, res.TotalCost, 1e-9)
	require.Len(t, res.Stages, 2, "validation must not run after a fatal extraction")

	snap := stats.Snapshot()
	assert.EqualValues(t, 1, snap.Failed)
	assert.InDelta(t, 0.03, snap.TotalCost, 1e-9)
}

func TestOrchestratorValidatorFailureKeepsPartialRecords(t *testing.T) {
	rec := booking.Record{PassengerName: "Amit"}
	validate := &stubStage{name: StageValidate, res: StageResult{
		Stage: StageValidate, ErrorKind: KindInternal, ErrorMessage: "boom",
	}}
	o := NewOrchestrator(okClassify(0), okExtract(0, rec), validate, nil, nil)

	res := o.Run(context.Background(), IntakeContent{Text: "x"})

	assert.False(t, res.Success)
	require.Len(t, res.PartialRecords, 1)
	assert.Equal(t, "Amit", res.PartialRecords[0].PassengerName)
}

func TestOrchestratorRecoversFromPanic(t *testing.T) {
	stats := NewStatsCollector()
	o := NewOrchestrator(okClassify(0.01), &stubStage{name: StageExtract, panic: true}, okValidate(), stats, nil)

	res := o.Run(context.Background(), IntakeContent{Text: "x"})

	assert.False(t, res.Success)
	assert.Equal(t, constants.RunStatusFailed, res.Status)
	assert.Contains(t, res.ErrorMessage, "unexpected pipeline fault")
	assert.Positive(t, res.TotalElapsed)
	assert.EqualValues(t, 1, stats.Snapshot().Failed)
}

func TestOrchestratorEndToEndWithFakes(t *testing.T) {
	classifyOracle := &fakeClassifyOracle{
		cls:   llm.Classification{BookingType: "multiple", BookingCount: 2, Confidence: 0.9},
		usage: llm.Usage{PromptTokens: 1000, CompletionTokens: 200},
	}
	extractOracle := &fakeExtractOracle{
		recs: []booking.Record{
			{PassengerName: "Amit Verma", PassengerPhone: "+91 98765 43210", StartDate: "12/03/2025", FromLocation: "bombay"},
			{PassengerName: "Priya Nair", PassengerPhone: "9876543211", StartDate: "13/03/2025", FromLocation: "pune"},
		},
		usage: llm.Usage{PromptTokens: 2000, CompletionTokens: 500},
	}
	o := NewOrchestrator(
		NewClassifier(classifyOracle, nil, nil),
		NewExtractor(extractOracle, nil),
		NewValidator(nil, nil),
		NewStatsCollector(),
		nil,
	)

	res := o.Run(context.Background(), IntakeContent{Text: "two cars, details below", SourceType: "email_text"})

	require.True(t, res.Success)
	require.Len(t, res.Records, 2)
	assert.Equal(t, "9876543210", res.Records[0].PassengerPhone)
	assert.Equal(t, "Mumbai", res.Records[0].FromLocation)
	assert.Equal(t, "Pune", res.Records[1].FromLocation)

	wantCost := llm.ClassifyRates.Cost(classifyOracle.usage) + llm.ExtractRates.Cost(extractOracle.usage)
	assert.InDelta(t, wantCost, res.TotalCost, 1e-9)
}

func TestOrchestratorAssemblesCellIntake(t *testing.T) {
	o := NewOrchestrator(
		NewClassifier(nil, nil, nil),
		NewExtractor(nil, nil),
		NewValidator(nil, nil),
		NewStatsCollector(),
		nil,
	)

	// raw OCR cells, out of order and with one position missing
	cells := []table.Cell{
		{Row: 1, Col: 0, Text: "Amit Verma"},
		{Row: 0, Col: 0, Text: "Passenger Name"},
		{Row: 0, Col: 1, Text: "Contact Number"},
		{Row: 0, Col: 2, Text: "Date of Travel"},
		{Row: 1, Col: 1, Text: "9876543210"},
		{Row: 1, Col: 2, Text: "12/03/2025"},
		{Row: 2, Col: 0, Text: "Priya Nair"},
		{Row: 2, Col: 2, Text: "13/03/2025"},
	}
	res := o.Run(context.Background(), IntakeContent{Cells: cells, SourceType: "ocr_table"})

	require.True(t, res.Success)
	require.NotNil(t, res.Classification)
	assert.Equal(t, SourceBypass, res.Classification.Source)
	require.Len(t, res.Records, 2)
	assert.Equal(t, "Amit Verma", res.Records[0].PassengerName)
	assert.Equal(t, "Priya Nair", res.Records[1].PassengerName)
	assert.Empty(t, res.Records[1].PassengerPhone, "the missing cell stays a gap")
	assert.Zero(t, res.TotalCost)
}
