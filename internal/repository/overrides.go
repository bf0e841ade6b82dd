package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/night-owl-018/seapay-certifier/internal/common"
)

// OverrideRecord is a persisted human decision about one extracted event.
// EventIndex addresses the payable partition when >= 0; a negative value
// -(i+1) addresses entry i of the invalid partition.
type OverrideRecord struct {
	MemberKey  string
	SheetFile  string
	EventIndex int
	MakeValid  bool
	Reason     string
	Signature  string
	UpdatedAt  time.Time
}

// OverrideRepository persists reviewer overrides keyed by
// (member, sheet file, event index).
type OverrideRepository interface {
	Upsert(ctx context.Context, rec OverrideRecord) error
	Get(ctx context.Context, memberKey, sheetFile string, eventIndex int) (OverrideRecord, error)
	ListForMember(ctx context.Context, memberKey string) ([]OverrideRecord, error)
	ListForSheet(ctx context.Context, memberKey, sheetFile string) ([]OverrideRecord, error)
	Delete(ctx context.Context, memberKey, sheetFile string, eventIndex int) error
	ClearMember(ctx context.Context, memberKey string) (int64, error)
}

type overrideRepo struct {
	db *DB
}

func NewOverrideRepository(db *DB) OverrideRepository {
	return &overrideRepo{db: db}
}

func (r *overrideRepo) Upsert(ctx context.Context, rec OverrideRecord) error {
	_, err := r.db.sql.ExecContext(ctx, `
INSERT INTO overrides (member_key, sheet_file, event_index, make_valid, reason, signature, updated_at)
VALUES (?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
ON CONFLICT(member_key, sheet_file, event_index) DO UPDATE SET
  make_valid = excluded.make_valid,
  reason     = excluded.reason,
  signature  = excluded.signature,
  updated_at = CURRENT_TIMESTAMP`,
		rec.MemberKey, rec.SheetFile, rec.EventIndex, boolToInt(rec.MakeValid), rec.Reason, rec.Signature)
	if err != nil {
		return common.WrapError(common.ErrDatabase, "upsert override", err)
	}
	return nil
}

func (r *overrideRepo) Get(ctx context.Context, memberKey, sheetFile string, eventIndex int) (OverrideRecord, error) {
	row := r.db.sql.QueryRowContext(ctx, `
SELECT member_key, sheet_file, event_index, make_valid, reason, signature, updated_at
FROM overrides WHERE member_key = ? AND sheet_file = ? AND event_index = ?`,
		memberKey, sheetFile, eventIndex)
	rec, err := scanOverride(row)
	if errors.Is(err, sql.ErrNoRows) {
		return OverrideRecord{}, common.ErrNotFound
	}
	if err != nil {
		return OverrideRecord{}, common.WrapError(common.ErrDatabase, "get override", err)
	}
	return rec, nil
}

func (r *overrideRepo) ListForMember(ctx context.Context, memberKey string) ([]OverrideRecord, error) {
	return r.list(ctx, `
SELECT member_key, sheet_file, event_index, make_valid, reason, signature, updated_at
FROM overrides WHERE member_key = ? ORDER BY sheet_file, event_index`, memberKey)
}

func (r *overrideRepo) ListForSheet(ctx context.Context, memberKey, sheetFile string) ([]OverrideRecord, error) {
	return r.list(ctx, `
SELECT member_key, sheet_file, event_index, make_valid, reason, signature, updated_at
FROM overrides WHERE member_key = ? AND sheet_file = ? ORDER BY event_index`, memberKey, sheetFile)
}

func (r *overrideRepo) list(ctx context.Context, query string, args ...any) ([]OverrideRecord, error) {
	rows, err := r.db.sql.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, common.WrapError(common.ErrDatabase, "list overrides", err)
	}
	defer rows.Close()

	var out []OverrideRecord
	for rows.Next() {
		rec, err := scanOverride(rows)
		if err != nil {
			return nil, common.WrapError(common.ErrDatabase, "scan override", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, common.WrapError(common.ErrDatabase, "iterate overrides", err)
	}
	return out, nil
}

func (r *overrideRepo) Delete(ctx context.Context, memberKey, sheetFile string, eventIndex int) error {
	res, err := r.db.sql.ExecContext(ctx,
		`DELETE FROM overrides WHERE member_key = ? AND sheet_file = ? AND event_index = ?`,
		memberKey, sheetFile, eventIndex)
	if err != nil {
		return common.WrapError(common.ErrDatabase, "delete override", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *overrideRepo) ClearMember(ctx context.Context, memberKey string) (int64, error) {
	res, err := r.db.sql.ExecContext(ctx, `DELETE FROM overrides WHERE member_key = ?`, memberKey)
	if err != nil {
		return 0, common.WrapError(common.ErrDatabase, "clear member overrides", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOverride(row rowScanner) (OverrideRecord, error) {
	var rec OverrideRecord
	var valid int
	var reason sql.NullString
	err := row.Scan(&rec.MemberKey, &rec.SheetFile, &rec.EventIndex, &valid, &reason, &rec.Signature, &rec.UpdatedAt)
	if err != nil {
		return OverrideRecord{}, err
	}
	rec.MakeValid = valid != 0
	rec.Reason = reason.String
	return rec, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
