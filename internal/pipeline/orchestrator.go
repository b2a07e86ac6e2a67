package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/fleetdesk/booking-intake/constants"
	"github.com/fleetdesk/booking-intake/internal/common"
)

// Orchestrator sequences the three stages and owns the aggregate result. It
// never mutates a record a stage produced; it only forwards record sets
// downstream. A caller always gets a complete result envelope, failed runs
// included.
type Orchestrator struct {
	logger     *slog.Logger
	classifier Stage
	extractor  Stage
	validator  Stage
	stats      *StatsCollector
}

func NewOrchestrator(classifier, extractor, validator Stage, stats *StatsCollector, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{
		logger:     logger,
		classifier: classifier,
		extractor:  extractor,
		validator:  validator,
		stats:      stats,
	}
}

// Run executes one pipeline run. Cost and elapsed time are strictly
// additive across stages, failed stages included.
func (o *Orchestrator) Run(ctx context.Context, content IntakeContent) (result Result) {
	runID := uuid.New()
	start := time.Now()
	ctx = common.WithRunID(ctx, runID.String())
	content = content.normalized()
	sc := &StageContext{RunID: runID}

	result = Result{RunID: runID, Status: constants.RunStatusPending}
	defer func() {
		if r := recover(); r != nil {
			// stages convert their own faults; anything reaching here is
			// unexpected and becomes a generic pipeline failure
			o.logger.Error("pipeline.run.panic", "run_id", runID, "panic", r)
			result.Success = false
			result.Status = constants.RunStatusFailed
			result.ErrorMessage = fmt.Sprintf("unexpected pipeline fault: %v", r)
		}
		result.TotalElapsed = time.Since(start)
		if o.stats != nil {
			o.stats.Observe(result)
		}
		o.logger.Info("pipeline.run.done",
			"run_id", runID,
			"success", result.Success,
			"status", string(result.Status),
			"records", len(result.Records),
			"total_cost", result.TotalCost,
			"elapsed_ms", result.TotalElapsed.Milliseconds(),
		)
	}()

	o.logger.Info("pipeline.run.start",
		"run_id", runID,
		"source_type", content.SourceType,
		"text_len", len(content.Text),
		"tables", len(content.Tables),
	)

	// classify
	result.Status = constants.RunStatusClassifying
	clsRes := o.classifier.Process(ctx, content, sc)
	result.Stages = append(result.Stages, clsRes)
	result.TotalCost += clsRes.Cost
	sc.RunningCost = result.TotalCost
	if !clsRes.Success || clsRes.Classification == nil {
		result.Success = false
		result.Status = constants.RunStatusFailed
		result.ErrorMessage = failureMessage(clsRes)
		return result
	}
	sc.Classification = clsRes.Classification
	result.Classification = clsRes.Classification

	// extract
	result.Status = constants.RunStatusExtracting
	extRes := o.extractor.Process(ctx, content, sc)
	result.Stages = append(result.Stages, extRes)
	result.TotalCost += extRes.Cost
	sc.RunningCost = result.TotalCost
	if !extRes.Success {
		result.Success = false
		result.Status = constants.RunStatusFailed
		result.ErrorMessage = failureMessage(extRes)
		return result
	}
	sc.priorRecords = extRes.Records

	// validate
	result.Status = constants.RunStatusValidating
	valRes := o.validator.Process(ctx, content, sc)
	result.Stages = append(result.Stages, valRes)
	result.TotalCost += valRes.Cost
	if !valRes.Success {
		result.Success = false
		result.Status = constants.RunStatusFailed
		result.ErrorMessage = failureMessage(valRes)
		// the extractor's records are the last good set
		result.PartialRecords = extRes.Records
		return result
	}

	result.Success = true
	result.Status = constants.RunStatusSucceeded
	result.Records = valRes.Records
	result.BookingCount = len(valRes.Records)
	return result
}

func failureMessage(res StageResult) string {
	if res.ErrorMessage != "" {
		return fmt.Sprintf("%s stage failed: %s", res.Stage, res.ErrorMessage)
	}
	return fmt.Sprintf("%s stage failed (%s)", res.Stage, res.ErrorKind)
}
