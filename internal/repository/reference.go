package repository

import (
	"context"

	"github.com/night-owl-018/seapay-certifier/internal/common"
	"github.com/night-owl-018/seapay-certifier/internal/reference"
)

// ReferenceRepository persists the platform list and roster so the files can
// be seeded once and served from the database afterwards.
type ReferenceRepository interface {
	ReplaceShips(ctx context.Context, names []string) error
	ListShips(ctx context.Context) ([]string, error)
	ReplaceRoster(ctx context.Context, entries []reference.Identity) error
	ListRoster(ctx context.Context) ([]reference.Identity, error)
}

type referenceRepo struct {
	db *DB
}

func NewReferenceRepository(db *DB) ReferenceRepository {
	return &referenceRepo{db: db}
}

func (r *referenceRepo) ReplaceShips(ctx context.Context, names []string) error {
	tx, err := r.db.sql.BeginTx(ctx, nil)
	if err != nil {
		return common.WrapError(common.ErrDatabase, "begin ship replace", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM ships`); err != nil {
		return common.WrapError(common.ErrDatabase, "clear ships", err)
	}
	for _, n := range names {
		if _, err := tx.ExecContext(ctx, `INSERT OR IGNORE INTO ships (name) VALUES (?)`, n); err != nil {
			return common.WrapError(common.ErrDatabase, "insert ship", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return common.WrapError(common.ErrDatabase, "commit ship replace", err)
	}
	return nil
}

func (r *referenceRepo) ListShips(ctx context.Context) ([]string, error) {
	rows, err := r.db.sql.QueryContext(ctx, `SELECT name FROM ships ORDER BY name`)
	if err != nil {
		return nil, common.WrapError(common.ErrDatabase, "list ships", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, common.WrapError(common.ErrDatabase, "scan ship", err)
		}
		names = append(names, n)
	}
	return names, rows.Err()
}

func (r *referenceRepo) ReplaceRoster(ctx context.Context, entries []reference.Identity) error {
	tx, err := r.db.sql.BeginTx(ctx, nil)
	if err != nil {
		return common.WrapError(common.ErrDatabase, "begin roster replace", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM roster`); err != nil {
		return common.WrapError(common.ErrDatabase, "clear roster", err)
	}
	for _, e := range entries {
		if _, err := tx.ExecContext(ctx,
			`INSERT OR REPLACE INTO roster (last, first, rate) VALUES (?, ?, ?)`,
			e.Last, e.First, e.Rate); err != nil {
			return common.WrapError(common.ErrDatabase, "insert roster entry", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return common.WrapError(common.ErrDatabase, "commit roster replace", err)
	}
	return nil
}

func (r *referenceRepo) ListRoster(ctx context.Context) ([]reference.Identity, error) {
	rows, err := r.db.sql.QueryContext(ctx, `SELECT last, first, rate FROM roster ORDER BY last, first`)
	if err != nil {
		return nil, common.WrapError(common.ErrDatabase, "list roster", err)
	}
	defer rows.Close()

	var out []reference.Identity
	for rows.Next() {
		var e reference.Identity
		if err := rows.Scan(&e.Last, &e.First, &e.Rate); err != nil {
			return nil, common.WrapError(common.ErrDatabase, "scan roster entry", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
