package pipeline

import (
	"context"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/fleetdesk/booking-intake/constants"
	"github.com/fleetdesk/booking-intake/internal/booking"
	"github.com/fleetdesk/booking-intake/internal/llm"
	"github.com/fleetdesk/booking-intake/internal/table"
)

// Extractor turns classified content into booking records. Table-shaped
// content goes through layout classification and reconstruction; degraded
// text is recovered into a table first; plain free text is delegated to the
// extraction oracle. An empty result is fatal for the run.
type Extractor struct {
	logger   *slog.Logger
	oracle   llm.BookingExtractor // nil means structured content only
	layout   *table.Classifier
	recon    *table.Reconstructor
	recovery *table.TextRecovery
}

func NewExtractor(oracle llm.BookingExtractor, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{
		logger:   logger,
		oracle:   oracle,
		layout:   table.NewClassifier(nil),
		recon:    table.NewReconstructor(nil),
		recovery: table.NewTextRecovery(nil),
	}
}

func (e *Extractor) Name() string { return StageExtract }

func (e *Extractor) Process(ctx context.Context, content IntakeContent, sc *StageContext) StageResult {
	start := time.Now()
	res := StageResult{Stage: StageExtract, Metadata: map[string]string{}}

	switch {
	case len(content.Tables) > 0:
		res = e.fromTables(content.Tables, res)
	case table.ShouldRecover(content.Text, len(content.Tables)):
		res = e.fromDegradedText(content.Text, res)
	default:
		res = e.fromOracle(ctx, content.Text, sc, res)
	}

	res.Records = booking.DropNonViable(res.Records)
	fillConfidence(res.Records)
	res.Confidence = recordSetConfidence(res.Records)
	res.Elapsed = time.Since(start)

	if len(res.Records) == 0 {
		res.Success = false
		if res.ErrorKind == "" {
			res.ErrorKind = KindExtractionEmpty
		}
		if res.ErrorMessage == "" {
			res.ErrorMessage = "no usable booking records extracted"
		}
		e.logger.Error("pipeline.extract.empty",
			"run_id", sc.RunID, "cost", res.Cost,
			"elapsed_ms", res.Elapsed.Milliseconds())
		return res
	}

	res.Success = true
	e.logger.Info("pipeline.extract.ok",
		"run_id", sc.RunID,
		"records", len(res.Records),
		"confidence", res.Confidence,
		"cost", res.Cost,
		"elapsed_ms", res.Elapsed.Milliseconds(),
	)
	return res
}

func (e *Extractor) fromTables(tables []table.Table, res StageResult) StageResult {
	res.Metadata["strategy"] = "table"
	for i, t := range tables {
		if t.Empty() {
			continue
		}
		layout := e.layout.Classify(t)
		if layout.Fallback {
			// below threshold; the vertical default applies, noted but not fatal
			res.ErrorKind = KindLayoutUnrecognized
			res.Metadata["table_"+strconv.Itoa(i)+"_layout"] = "fallback_vertical"
		} else {
			res.Metadata["table_"+strconv.Itoa(i)+"_layout"] = string(layout.Kind)
		}
		res.Records = append(res.Records, e.recon.FromTable(t, layout)...)
	}
	return res
}

func (e *Extractor) fromDegradedText(text string, res StageResult) StageResult {
	res.Metadata["strategy"] = "text_recovery"
	t := e.recovery.FromText(strings.Split(text, "\n"))
	if t == nil {
		res.ErrorMessage = "degraded text recovery found no table structure"
		return res
	}
	layout := e.layout.Classify(*t)
	res.Table = t
	res.Records = e.recon.FromTable(*t, layout)
	return res
}

func (e *Extractor) fromOracle(ctx context.Context, text string, sc *StageContext, res StageResult) StageResult {
	res.Metadata["strategy"] = "oracle"
	if e.oracle == nil {
		res.ErrorMessage = "no extraction oracle configured"
		return res
	}

	multiple := false
	expected := 0
	if sc.Classification != nil {
		multiple = sc.Classification.BookingType == string(constants.BookingMultiple)
		expected = sc.Classification.BookingCount
	}

	recs, usage, err := e.oracle.ExtractBookings(ctx, llm.ExtractRequest{
		Content:       text,
		Multiple:      multiple,
		ExpectedCount: expected,
	})
	res.Cost = llm.ExtractRates.Cost(usage)
	if err != nil {
		res.ErrorKind = errorKind(err)
		res.ErrorMessage = err.Error()
		return res
	}
	res.Records = recs
	return res
}

// coreFields drive the per-record confidence estimate.
var coreFields = []constants.Field{
	constants.FieldPassengerName,
	constants.FieldPassengerPhone,
	constants.FieldStartDate,
}

// fillConfidence scores records that arrived without a confidence: 0.3 base
// plus up to 0.6 for the three core fields, capped at 0.9.
func fillConfidence(recs []booking.Record) {
	for i := range recs {
		if recs[i].Confidence > 0 {
			continue
		}
		filled := 0
		for _, f := range coreFields {
			if strings.TrimSpace(recs[i].Get(f)) != "" {
				filled++
			}
		}
		conf := 0.3 + float64(filled)/float64(len(coreFields))*0.6
		if conf > 0.9 {
			conf = 0.9
		}
		recs[i].Confidence = conf
	}
}

func recordSetConfidence(recs []booking.Record) float64 {
	if len(recs) == 0 {
		return 0
	}
	sum := 0.0
	for _, r := range recs {
		sum += r.Confidence
	}
	return sum / float64(len(recs))
}
