package repository

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fleetdesk/booking-intake/internal/booking"
	"github.com/fleetdesk/booking-intake/internal/common"
	"github.com/fleetdesk/booking-intake/internal/pipeline"
)

// Run is one persisted pipeline run. Classification and the per-stage
// breakdown are stored as JSON; records live in their own table.
type Run struct {
	ID           uuid.UUID                `json:"id"`
	Status       string                   `json:"status"`
	Success      bool                     `json:"success"`
	SourceType   string                   `json:"source_type"`
	BookingCount int                      `json:"booking_count"`
	TotalCost    float64                  `json:"total_cost"`
	ElapsedMS    int64                    `json:"elapsed_ms"`
	ErrorMessage string                   `json:"error_message,omitempty"`
	Classify     *pipeline.Classification `json:"classification,omitempty"`
	Stages       []pipeline.StageResult   `json:"stages,omitempty"`
	CreatedAt    time.Time                `json:"created_at"`
}

type RunRepository interface {
	Migrate(ctx context.Context) error
	SaveResult(ctx context.Context, sourceType string, res pipeline.Result) error
	GetRun(ctx context.Context, id uuid.UUID) (*Run, error)
	ListRuns(ctx context.Context, limit int) ([]*Run, error)
	GetRecords(ctx context.Context, runID uuid.UUID) ([]booking.Record, error)
}

type runRepository struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

func NewRunRepository(pool *pgxpool.Pool, logger *slog.Logger) RunRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &runRepository{pool: pool, logger: logger}
}

const runsDDL = `
CREATE TABLE IF NOT EXISTS intake_runs (
	id             UUID PRIMARY KEY,
	status         TEXT NOT NULL,
	success        BOOLEAN NOT NULL,
	source_type    TEXT NOT NULL DEFAULT '',
	booking_count  INTEGER NOT NULL DEFAULT 0,
	total_cost     DOUBLE PRECISION NOT NULL DEFAULT 0,
	elapsed_ms     BIGINT NOT NULL DEFAULT 0,
	error_message  TEXT NOT NULL DEFAULT '',
	classification JSONB,
	stages         JSONB,
	created_at     TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS booking_records (
	run_id     UUID NOT NULL REFERENCES intake_runs(id) ON DELETE CASCADE,
	seq        INTEGER NOT NULL,
	record     JSONB NOT NULL,
	confidence DOUBLE PRECISION NOT NULL DEFAULT 0,
	method     TEXT NOT NULL DEFAULT '',
	PRIMARY KEY (run_id, seq)
);

CREATE INDEX IF NOT EXISTS idx_intake_runs_created_at ON intake_runs (created_at DESC);
`

// Migrate applies the schema. Idempotent; runs at startup.
func (r *runRepository) Migrate(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, runsDDL); err != nil {
		return common.WrapError(err, "migrate intake schema")
	}
	r.logger.Info("repository.migrate.ok")
	return nil
}

// SaveResult persists a run and its records in one transaction. Failed runs
// are stored too; their partial records stand in for the final set.
func (r *runRepository) SaveResult(ctx context.Context, sourceType string, res pipeline.Result) error {
	// in-flight statuses never reach storage; the history holds finished
	// runs only
	if !res.Status.Terminal() {
		return common.NewAppError("RUN_NOT_FINISHED",
			"run status "+string(res.Status)+" is not terminal", common.ErrInvalidInput)
	}
	var classification []byte
	if res.Classification != nil {
		var err error
		classification, err = json.Marshal(res.Classification)
		if err != nil {
			return common.WrapError(err, "encode classification")
		}
	}
	stages, err := json.Marshal(res.Stages)
	if err != nil {
		return common.WrapError(err, "encode stages")
	}

	records := res.Records
	if len(records) == 0 {
		records = res.PartialRecords
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return common.WrapError(err, "begin save run")
	}
	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.Exec(ctx, `
		INSERT INTO intake_runs
			(id, status, success, source_type, booking_count, total_cost, elapsed_ms, error_message, classification, stages)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		res.RunID, string(res.Status), res.Success, sourceType, res.BookingCount,
		res.TotalCost, res.TotalElapsed.Milliseconds(), res.ErrorMessage, classification, stages,
	)
	if err != nil {
		return common.WrapError(err, "insert run")
	}

	for i, rec := range records {
		payload, err := json.Marshal(rec)
		if err != nil {
			return common.WrapError(err, "encode record")
		}
		_, err = tx.Exec(ctx, `
			INSERT INTO booking_records (run_id, seq, record, confidence, method)
			VALUES ($1, $2, $3, $4, $5)`,
			res.RunID, i, payload, rec.Confidence, rec.Method,
		)
		if err != nil {
			return common.WrapError(err, "insert record")
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return common.WrapError(err, "commit save run")
	}
	r.logger.Info("repository.save_run.ok", "run_id", res.RunID, "records", len(records))
	return nil
}

const runColumns = `id, status, success, source_type, booking_count, total_cost,
	elapsed_ms, error_message, classification, stages, created_at`

func (r *runRepository) GetRun(ctx context.Context, id uuid.UUID) (*Run, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+runColumns+` FROM intake_runs WHERE id = $1`, id)
	run, err := scanRun(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, common.NewAppError("NOT_FOUND", "run not found", common.ErrNotFound)
	}
	if err != nil {
		return nil, common.WrapError(err, "get run")
	}
	return run, nil
}

func (r *runRepository) ListRuns(ctx context.Context, limit int) ([]*Run, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.pool.Query(ctx,
		`SELECT `+runColumns+` FROM intake_runs ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, common.WrapError(err, "list runs")
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, common.WrapError(err, "scan run")
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

func (r *runRepository) GetRecords(ctx context.Context, runID uuid.UUID) ([]booking.Record, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT record FROM booking_records WHERE run_id = $1 ORDER BY seq`, runID)
	if err != nil {
		return nil, common.WrapError(err, "get records")
	}
	defer rows.Close()

	var records []booking.Record
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, common.WrapError(err, "scan record")
		}
		var rec booking.Record
		if err := json.Unmarshal(payload, &rec); err != nil {
			return nil, common.WrapError(err, "decode record")
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func scanRun(row pgx.Row) (*Run, error) {
	var (
		run            Run
		status         string
		classification []byte
		stages         []byte
	)
	err := row.Scan(&run.ID, &status, &run.Success, &run.SourceType, &run.BookingCount,
		&run.TotalCost, &run.ElapsedMS, &run.ErrorMessage, &classification, &stages, &run.CreatedAt)
	if err != nil {
		return nil, err
	}
	run.Status = status
	if len(classification) > 0 {
		if err := json.Unmarshal(classification, &run.Classify); err != nil {
			return nil, err
		}
	}
	if len(stages) > 0 {
		if err := json.Unmarshal(stages, &run.Stages); err != nil {
			return nil, err
		}
	}
	return &run, nil
}
