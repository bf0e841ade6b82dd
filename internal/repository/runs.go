package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/night-owl-018/seapay-certifier/constants"
	"github.com/night-owl-018/seapay-certifier/internal/common"
)

// Run is one batch processing pass over the inbox.
type Run struct {
	ID         string
	StartedAt  time.Time
	FinishedAt sql.NullTime
	Status     constants.RunStatus
	TotalFiles int
	Processed  int
	Failed     int
	Message    string
}

// RunRepository records batch runs and the content hashes of sheets already
// ingested, so re-dropped files can be skipped.
type RunRepository interface {
	Create(ctx context.Context, totalFiles int) (Run, error)
	Finish(ctx context.Context, id string, status constants.RunStatus, processed, failed int, message string) error
	Get(ctx context.Context, id string) (Run, error)
	Latest(ctx context.Context) (Run, error)
	SeenHash(ctx context.Context, sha256 string) (bool, error)
	RecordHash(ctx context.Context, sha256, fileName, runID string) error
}

type runRepo struct {
	db *DB
}

func NewRunRepository(db *DB) RunRepository {
	return &runRepo{db: db}
}

func (r *runRepo) Create(ctx context.Context, totalFiles int) (Run, error) {
	run := Run{
		ID:         uuid.NewString(),
		StartedAt:  time.Now().UTC(),
		Status:     constants.RunStatusProcessing,
		TotalFiles: totalFiles,
	}
	_, err := r.db.sql.ExecContext(ctx,
		`INSERT INTO runs (id, started_at, status, total_files) VALUES (?, ?, ?, ?)`,
		run.ID, run.StartedAt, string(run.Status), run.TotalFiles)
	if err != nil {
		return Run{}, common.WrapError(common.ErrDatabase, "create run", err)
	}
	return run, nil
}

func (r *runRepo) Finish(ctx context.Context, id string, status constants.RunStatus, processed, failed int, message string) error {
	_, err := r.db.sql.ExecContext(ctx, `
UPDATE runs SET finished_at = CURRENT_TIMESTAMP, status = ?, processed = ?, failed = ?, message = ?
WHERE id = ?`, string(status), processed, failed, message, id)
	if err != nil {
		return common.WrapError(common.ErrDatabase, "finish run", err)
	}
	return nil
}

func (r *runRepo) Get(ctx context.Context, id string) (Run, error) {
	return r.one(ctx, `
SELECT id, started_at, finished_at, status, total_files, processed, failed, COALESCE(message, '')
FROM runs WHERE id = ?`, id)
}

func (r *runRepo) Latest(ctx context.Context) (Run, error) {
	return r.one(ctx, `
SELECT id, started_at, finished_at, status, total_files, processed, failed, COALESCE(message, '')
FROM runs ORDER BY started_at DESC LIMIT 1`)
}

func (r *runRepo) one(ctx context.Context, query string, args ...any) (Run, error) {
	var run Run
	var status string
	err := r.db.sql.QueryRowContext(ctx, query, args...).Scan(
		&run.ID, &run.StartedAt, &run.FinishedAt, &status,
		&run.TotalFiles, &run.Processed, &run.Failed, &run.Message)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, common.ErrNotFound
	}
	if err != nil {
		return Run{}, common.WrapError(common.ErrDatabase, "get run", err)
	}
	run.Status = constants.RunStatus(status)
	return run, nil
}

func (r *runRepo) SeenHash(ctx context.Context, sha256 string) (bool, error) {
	var n int
	err := r.db.sql.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM file_hashes WHERE sha256 = ?`, sha256).Scan(&n)
	if err != nil {
		return false, common.WrapError(common.ErrDatabase, "check hash", err)
	}
	return n > 0, nil
}

func (r *runRepo) RecordHash(ctx context.Context, sha256, fileName, runID string) error {
	_, err := r.db.sql.ExecContext(ctx, `
INSERT INTO file_hashes (sha256, file_name, run_id) VALUES (?, ?, ?)
ON CONFLICT(sha256) DO UPDATE SET file_name = excluded.file_name, seen_at = CURRENT_TIMESTAMP`,
		sha256, fileName, runID)
	if err != nil {
		return common.WrapError(common.ErrDatabase, "record hash", err)
	}
	return nil
}
