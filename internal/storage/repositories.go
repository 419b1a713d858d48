package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Common errors
var (
	ErrNotFound = errors.New("record not found")
	ErrConflict = errors.New("record conflict")
)

// DB represents a database connection interface.
type DB interface {
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

// RunRepository handles populate run bookkeeping.
type RunRepository struct {
	db DB
}

// NewRunRepository creates a new run repository.
func NewRunRepository(db DB) *RunRepository {
	return &RunRepository{db: db}
}

// Create inserts a new run in running state.
func (r *RunRepository) Create(ctx context.Context, run *Run) error {
	if run.ID == uuid.Nil {
		run.ID = uuid.New()
	}
	if run.Status == "" {
		run.Status = RunStatusRunning
	}
	run.StartedAt = time.Now()

	query := `
		INSERT INTO runs (id, input_path, status, total, already_populated, newly_populated, skipped, specs_extracted, started_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := r.db.ExecContext(ctx, query,
		run.ID, run.InputPath, run.Status, run.Total, run.AlreadyPopulated,
		run.NewlyPopulated, run.Skipped, run.SpecsExtracted, run.StartedAt,
	)
	return err
}

// Complete records the final status and counters for a run.
func (r *RunRepository) Complete(ctx context.Context, run *Run, status RunStatus) error {
	now := time.Now()
	run.Status = status
	run.CompletedAt = &now

	query := `
		UPDATE runs
		SET status = $1, total = $2, already_populated = $3, newly_populated = $4,
		    skipped = $5, specs_extracted = $6, completed_at = $7
		WHERE id = $8
	`
	result, err := r.db.ExecContext(ctx, query,
		run.Status, run.Total, run.AlreadyPopulated, run.NewlyPopulated,
		run.Skipped, run.SpecsExtracted, run.CompletedAt, run.ID,
	)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// GetByID retrieves a run by ID.
func (r *RunRepository) GetByID(ctx context.Context, id uuid.UUID) (*Run, error) {
	query := `
		SELECT id, input_path, status, total, already_populated, newly_populated, skipped, specs_extracted, started_at, completed_at
		FROM runs WHERE id = $1
	`
	run := &Run{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&run.ID, &run.InputPath, &run.Status, &run.Total, &run.AlreadyPopulated,
		&run.NewlyPopulated, &run.Skipped, &run.SpecsExtracted, &run.StartedAt, &run.CompletedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return run, err
}

// ListRecent returns the most recent runs, newest first.
func (r *RunRepository) ListRecent(ctx context.Context, limit int) ([]*Run, error) {
	if limit <= 0 {
		limit = 20
	}
	query := `
		SELECT id, input_path, status, total, already_populated, newly_populated, skipped, specs_extracted, started_at, completed_at
		FROM runs ORDER BY started_at DESC LIMIT $1
	`
	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		run := &Run{}
		if err := rows.Scan(
			&run.ID, &run.InputPath, &run.Status, &run.Total, &run.AlreadyPopulated,
			&run.NewlyPopulated, &run.Skipped, &run.SpecsExtracted, &run.StartedAt, &run.CompletedAt,
		); err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// SpecListRepository handles persisted spec lists.
type SpecListRepository struct {
	db DB
}

// NewSpecListRepository creates a new spec list repository.
func NewSpecListRepository(db DB) *SpecListRepository {
	return &SpecListRepository{db: db}
}

// Create inserts a spec list record. The ID is derived from the run,
// handle and variant key so re-runs upsert rather than duplicate.
func (r *SpecListRepository) Create(ctx context.Context, rec *SpecListRecord) error {
	if rec.ID == uuid.Nil {
		rec.ID = RecordID(rec.RunID, rec.Handle, rec.VariantKey)
	}
	rec.CreatedAt = time.Now()

	specsJSON, err := json.Marshal(rec.Specs)
	if err != nil {
		return fmt.Errorf("marshal specs: %w", err)
	}

	query := `
		INSERT INTO spec_lists (id, run_id, handle, variant_key, specs, skipped, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err = r.db.ExecContext(ctx, query,
		rec.ID, rec.RunID, rec.Handle, rec.VariantKey, string(specsJSON), rec.Skipped, rec.CreatedAt,
	)
	return err
}

// GetByHandle retrieves the product-level spec list for a handle within a run.
func (r *SpecListRepository) GetByHandle(ctx context.Context, runID uuid.UUID, handle string) (*SpecListRecord, error) {
	query := `
		SELECT id, run_id, handle, variant_key, specs, skipped, created_at
		FROM spec_lists WHERE run_id = $1 AND handle = $2 AND variant_key IS NULL
	`
	return r.scanOne(r.db.QueryRowContext(ctx, query, runID, handle))
}

// ListByRun retrieves all spec list records for a run, products and variants.
func (r *SpecListRepository) ListByRun(ctx context.Context, runID uuid.UUID) ([]*SpecListRecord, error) {
	query := `
		SELECT id, run_id, handle, variant_key, specs, skipped, created_at
		FROM spec_lists WHERE run_id = $1 ORDER BY handle, variant_key
	`
	rows, err := r.db.QueryContext(ctx, query, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []*SpecListRecord
	for rows.Next() {
		rec := &SpecListRecord{}
		var specsJSON string
		if err := rows.Scan(
			&rec.ID, &rec.RunID, &rec.Handle, &rec.VariantKey, &specsJSON, &rec.Skipped, &rec.CreatedAt,
		); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(specsJSON), &rec.Specs); err != nil {
			return nil, fmt.Errorf("unmarshal specs for %s: %w", rec.Handle, err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func (r *SpecListRepository) scanOne(row *sql.Row) (*SpecListRecord, error) {
	rec := &SpecListRecord{}
	var specsJSON string
	err := row.Scan(
		&rec.ID, &rec.RunID, &rec.Handle, &rec.VariantKey, &specsJSON, &rec.Skipped, &rec.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(specsJSON), &rec.Specs); err != nil {
		return nil, fmt.Errorf("unmarshal specs for %s: %w", rec.Handle, err)
	}
	return rec, nil
}
