// Package pipeline runs booking intake end to end: classify the request,
// extract records, validate them. Stages are strategies behind a common
// interface; the orchestrator sequences them and owns the aggregate result.
package pipeline

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/fleetdesk/booking-intake/constants"
	"github.com/fleetdesk/booking-intake/internal/booking"
	"github.com/fleetdesk/booking-intake/internal/common"
	"github.com/fleetdesk/booking-intake/internal/llm"
	"github.com/fleetdesk/booking-intake/internal/table"
)

// Stage names, used in logs and per-stage breakdowns.
const (
	StageClassify = "classify"
	StageExtract  = "extract"
	StageValidate = "validate"
)

// Classification sources. The source discriminator replaces the shadow
// "mock classification" type the bypass path would otherwise need.
const (
	SourceOracle = "oracle"
	SourceRules  = "rules"
	SourceBypass = "bypass"
)

// IntakeContent is one booking request as delivered by the caller: raw text
// plus whatever structure the upstream OCR service detected, either as
// prebuilt tables or as raw positioned cells.
type IntakeContent struct {
	Text       string        `json:"text"`
	Tables     []table.Table `json:"tables,omitempty"`
	Cells      []table.Cell  `json:"cells,omitempty"`
	SourceType string        `json:"source_type,omitempty"` // email_text | ocr_table | form
}

// normalized assembles raw OCR cells into a table so the stages only ever
// see Tables. Prebuilt tables win when the caller sent both.
func (c IntakeContent) normalized() IntakeContent {
	if len(c.Tables) > 0 || len(c.Cells) == 0 {
		return c
	}
	t := table.FromCells(c.Cells)
	if !t.Empty() {
		c.Tables = []table.Table{t}
	}
	return c
}

// Classification is the classifier verdict plus where it came from.
type Classification struct {
	llm.Classification
	Source string `json:"source"`
}

// StageContext carries prior-stage outputs (read-only for the stage) plus
// run metadata.
type StageContext struct {
	RunID          uuid.UUID
	Classification *Classification
	RunningCost    float64

	// priorRecords is the record set produced by the previous stage; the
	// orchestrator forwards it, stages read it.
	priorRecords []booking.Record
}

// StageResult is the envelope every stage returns. Cost and Elapsed are
// recorded even when the stage fails.
type StageResult struct {
	Stage          string            `json:"stage"`
	Success        bool              `json:"success"`
	Records        []booking.Record  `json:"records,omitempty"`
	Table          *table.Table      `json:"table,omitempty"`
	Classification *Classification   `json:"classification,omitempty"`
	Confidence     float64           `json:"confidence"`
	Cost           float64           `json:"cost"`
	Elapsed        time.Duration     `json:"elapsed_ns"`
	ErrorKind      string            `json:"error_kind,omitempty"`
	ErrorMessage   string            `json:"error_message,omitempty"`
	Metadata       map[string]string `json:"metadata,omitempty"`
}

// Stage is the strategy contract implemented by the classifier, extractor,
// and validator.
type Stage interface {
	Name() string
	Process(ctx context.Context, content IntakeContent, sc *StageContext) StageResult
}

// Result is the aggregate outcome of one pipeline run. A failed run still
// carries the full envelope: accumulated cost and time, the per-stage
// breakdown, and the partial records from the last successful stage.
type Result struct {
	RunID          uuid.UUID           `json:"run_id"`
	Success        bool                `json:"success"`
	Status         constants.RunStatus `json:"status"`
	Records        []booking.Record    `json:"records,omitempty"`
	PartialRecords []booking.Record    `json:"partial_records,omitempty"`
	BookingCount   int                 `json:"booking_count"`
	Classification *Classification     `json:"classification,omitempty"`
	TotalCost      float64             `json:"total_cost"`
	TotalElapsed   time.Duration       `json:"total_elapsed_ns"`
	Stages         []StageResult       `json:"stages"`
	ErrorMessage   string              `json:"error_message,omitempty"`
}

// Error kinds as stable strings for StageResult.ErrorKind.
const (
	KindOracleUnavailable       = "oracle_unavailable"
	KindMalformedOracleResponse = "malformed_oracle_response"
	KindLayoutUnrecognized      = "layout_unrecognized"
	KindExtractionEmpty         = "extraction_empty"
	KindLookupMiss              = "lookup_miss"
	KindInternal                = "internal"
)

// errorKind maps an error to its stable kind string.
func errorKind(err error) string {
	switch {
	case errors.Is(err, common.ErrOracleUnavailable):
		return KindOracleUnavailable
	case errors.Is(err, common.ErrMalformedOracleResponse):
		return KindMalformedOracleResponse
	case errors.Is(err, common.ErrLayoutUnrecognized):
		return KindLayoutUnrecognized
	case errors.Is(err, common.ErrExtractionEmpty):
		return KindExtractionEmpty
	case errors.Is(err, common.ErrLookupMiss):
		return KindLookupMiss
	}
	return KindInternal
}

// RunStats is a snapshot of cross-run counters.
type RunStats struct {
	TotalRuns    int64   `json:"total_runs"`
	Succeeded    int64   `json:"succeeded"`
	Failed       int64   `json:"failed"`
	TotalCost    float64 `json:"total_cost"`
	TotalRecords int64   `json:"total_records"`
}

// StatsCollector aggregates run outcomes across callers. All methods are
// safe for concurrent use.
type StatsCollector struct {
	mu    sync.Mutex
	stats RunStats
}

func NewStatsCollector() *StatsCollector {
	return &StatsCollector{}
}

// Observe folds one run result into the counters.
func (c *StatsCollector) Observe(res Result) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stats.TotalRuns++
	if res.Success {
		c.stats.Succeeded++
	} else {
		c.stats.Failed++
	}
	c.stats.TotalCost += res.TotalCost
	c.stats.TotalRecords += int64(len(res.Records))
}

// Snapshot returns a copy of the current counters.
func (c *StatsCollector) Snapshot() RunStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}
