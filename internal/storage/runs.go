package db

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/lueurxax/framing-eval/internal/core/domain"
	coreerrors "github.com/lueurxax/framing-eval/internal/core/errors"
)

// Run is the archived header of one evaluation.
type Run struct {
	ID         string
	Model      string
	SourceFile string
	Correct    int
	Total      int
	CreatedAt  time.Time
}

var recordColumns = []string{
	"run_id", "position", "statement", "expected", "actual", "correct", "emotion_group",
}

// SaveRun stores the run header and all of its records in one transaction.
// The run ID is assigned here when empty and returned.
func (db *DB) SaveRun(ctx context.Context, run Run, records []domain.GradedRecord) (string, error) {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}

	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}

	runID := toUUID(run.ID)
	if !runID.Valid {
		return "", fmt.Errorf("%w: run id %q", coreerrors.ErrInvalidInput, run.ID)
	}

	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return "", fmt.Errorf("begin tx: %w", err)
	}

	defer func() {
		_ = tx.Rollback(ctx)
	}()

	if _, err := tx.Exec(ctx, `
		INSERT INTO eval_runs (id, model, source_file, correct, total, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		runID, run.Model, run.SourceFile, run.Correct, run.Total, run.CreatedAt,
	); err != nil {
		return "", fmt.Errorf("insert run: %w", err)
	}

	if _, err := tx.CopyFrom(ctx, pgx.Identifier{tableRecords}, recordColumns, pgx.CopyFromRows(recordRows(runID, records))); err != nil {
		return "", fmt.Errorf("copy records: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return "", fmt.Errorf("commit run: %w", err)
	}

	db.Logger.Info().Str("run_id", run.ID).Str("model", run.Model).Int("records", len(records)).Msg("run archived")

	return run.ID, nil
}

func recordRows(runID pgtype.UUID, records []domain.GradedRecord) [][]any {
	rows := make([][]any, 0, len(records))

	for i, rec := range records {
		rows = append(rows, []any{
			runID,
			int32(i), //nolint:gosec // record counts are small
			SanitizeUTF8(rec.Statement),
			SanitizeUTF8(rec.Expected),
			SanitizeUTF8(rec.Actual),
			rec.Correct,
			toText(string(rec.EmotionGroup)),
		})
	}

	return rows
}

// ListRuns returns archived runs, newest first.
func (db *DB) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}

	rows, err := db.Pool.Query(ctx, `
		SELECT id, model, source_file, correct, total, created_at
		FROM eval_runs
		ORDER BY created_at DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run

	for rows.Next() {
		var (
			id  pgtype.UUID
			run Run
		)

		if err := rows.Scan(&id, &run.Model, &run.SourceFile, &run.Correct, &run.Total, &run.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}

		run.ID = fromUUID(id)
		runs = append(runs, run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}

	return runs, nil
}

// LoadRecords returns the records of one run in their original order.
func (db *DB) LoadRecords(ctx context.Context, runID string) ([]domain.GradedRecord, error) {
	id := toUUID(runID)
	if !id.Valid {
		return nil, fmt.Errorf("%w: run id %q", coreerrors.ErrInvalidInput, runID)
	}

	var exists bool
	if err := db.Pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM eval_runs WHERE id = $1)`, id).Scan(&exists); err != nil {
		return nil, fmt.Errorf("check run: %w", err)
	}

	if !exists {
		return nil, fmt.Errorf("run %s: %w", runID, coreerrors.ErrNotFound)
	}

	rows, err := db.Pool.Query(ctx, `
		SELECT statement, expected, actual, correct, emotion_group
		FROM eval_records
		WHERE run_id = $1
		ORDER BY position`, id)
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}

	records, err := pgx.CollectRows(rows, scanRecord)
	if err != nil {
		return nil, fmt.Errorf("collect records: %w", err)
	}

	return records, nil
}

func scanRecord(row pgx.CollectableRow) (domain.GradedRecord, error) {
	var (
		rec   domain.GradedRecord
		group pgtype.Text
	)

	if err := row.Scan(&rec.Statement, &rec.Expected, &rec.Actual, &rec.Correct, &group); err != nil {
		return domain.GradedRecord{}, err
	}

	rec.EmotionGroup = domain.EmotionGroup(fromText(group))

	return rec, nil
}
