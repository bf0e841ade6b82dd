package repository

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/night-owl-018/seapay-certifier/constants"
	"github.com/night-owl-018/seapay-certifier/internal/common"
	"github.com/night-owl-018/seapay-certifier/internal/reference"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "test.db"), time.Second, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestOverrideRepo_UpsertReplacesOnConflict(t *testing.T) {
	repo := NewOverrideRepository(testDB(t))
	ctx := context.Background()

	rec := OverrideRecord{
		MemberKey:  "STG1 SMITH,JOHN",
		SheetFile:  "smith.pdf",
		EventIndex: 2,
		MakeValid:  false,
		Reason:     "first",
		Signature:  "sig-a",
	}
	require.NoError(t, repo.Upsert(ctx, rec))

	rec.MakeValid = true
	rec.Reason = "second"
	rec.Signature = "sig-b"
	require.NoError(t, repo.Upsert(ctx, rec))

	got, err := repo.Get(ctx, rec.MemberKey, rec.SheetFile, rec.EventIndex)
	require.NoError(t, err)
	assert.True(t, got.MakeValid)
	assert.Equal(t, "second", got.Reason)
	assert.Equal(t, "sig-b", got.Signature)
	assert.False(t, got.UpdatedAt.IsZero())
}

func TestOverrideRepo_NegativeIndexIsDistinctKey(t *testing.T) {
	repo := NewOverrideRepository(testDB(t))
	ctx := context.Background()

	base := OverrideRecord{MemberKey: "M", SheetFile: "s.pdf"}
	pos := base
	pos.EventIndex = 1
	neg := base
	neg.EventIndex = -2
	neg.MakeValid = true
	require.NoError(t, repo.Upsert(ctx, pos))
	require.NoError(t, repo.Upsert(ctx, neg))

	recs, err := repo.ListForSheet(ctx, "M", "s.pdf")
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, -2, recs[0].EventIndex)
	assert.Equal(t, 1, recs[1].EventIndex)
}

func TestOverrideRepo_ListForMemberSpansSheets(t *testing.T) {
	repo := NewOverrideRepository(testDB(t))
	ctx := context.Background()

	for _, rec := range []OverrideRecord{
		{MemberKey: "M", SheetFile: "b.pdf", EventIndex: 0},
		{MemberKey: "M", SheetFile: "a.pdf", EventIndex: 3},
		{MemberKey: "OTHER", SheetFile: "a.pdf", EventIndex: 0},
	} {
		require.NoError(t, repo.Upsert(ctx, rec))
	}

	recs, err := repo.ListForMember(ctx, "M")
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "a.pdf", recs[0].SheetFile)
	assert.Equal(t, "b.pdf", recs[1].SheetFile)
}

func TestOverrideRepo_GetMissing(t *testing.T) {
	repo := NewOverrideRepository(testDB(t))
	_, err := repo.Get(context.Background(), "M", "s.pdf", 0)
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestOverrideRepo_DeleteAndClear(t *testing.T) {
	repo := NewOverrideRepository(testDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Upsert(ctx, OverrideRecord{MemberKey: "M", SheetFile: "s.pdf", EventIndex: 0}))
	require.NoError(t, repo.Upsert(ctx, OverrideRecord{MemberKey: "M", SheetFile: "s.pdf", EventIndex: 1}))

	require.NoError(t, repo.Delete(ctx, "M", "s.pdf", 0))
	assert.ErrorIs(t, repo.Delete(ctx, "M", "s.pdf", 0), common.ErrNotFound)

	n, err := repo.ClearMember(ctx, "M")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestRunRepo_Lifecycle(t *testing.T) {
	repo := NewRunRepository(testDB(t))
	ctx := context.Background()

	run, err := repo.Create(ctx, 7)
	require.NoError(t, err)
	require.NotEmpty(t, run.ID)
	assert.Equal(t, constants.RunStatusProcessing, run.Status)

	require.NoError(t, repo.Finish(ctx, run.ID, constants.RunStatusComplete, 6, 1, "one sheet unreadable"))

	got, err := repo.Get(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, constants.RunStatusComplete, got.Status)
	assert.Equal(t, 7, got.TotalFiles)
	assert.Equal(t, 6, got.Processed)
	assert.Equal(t, 1, got.Failed)
	assert.Equal(t, "one sheet unreadable", got.Message)
	assert.True(t, got.FinishedAt.Valid)

	latest, err := repo.Latest(ctx)
	require.NoError(t, err)
	assert.Equal(t, run.ID, latest.ID)
}

func TestRunRepo_LatestEmpty(t *testing.T) {
	repo := NewRunRepository(testDB(t))
	_, err := repo.Latest(context.Background())
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestRunRepo_HashDedup(t *testing.T) {
	repo := NewRunRepository(testDB(t))
	ctx := context.Background()

	seen, err := repo.SeenHash(ctx, "abc123")
	require.NoError(t, err)
	assert.False(t, seen)

	require.NoError(t, repo.RecordHash(ctx, "abc123", "smith.pdf", "run-1"))
	require.NoError(t, repo.RecordHash(ctx, "abc123", "smith_copy.pdf", "run-2"))

	seen, err = repo.SeenHash(ctx, "abc123")
	require.NoError(t, err)
	assert.True(t, seen)
}

func TestReferenceRepo_ReplaceShips(t *testing.T) {
	repo := NewReferenceRepository(testDB(t))
	ctx := context.Background()

	require.NoError(t, repo.ReplaceShips(ctx, []string{"USS COLE", "USS MASON"}))
	require.NoError(t, repo.ReplaceShips(ctx, []string{"USS GRAVELY"}))

	names, err := repo.ListShips(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"USS GRAVELY"}, names)
}

func TestReferenceRepo_ReplaceRoster(t *testing.T) {
	repo := NewReferenceRepository(testDB(t))
	ctx := context.Background()

	require.NoError(t, repo.ReplaceRoster(ctx, []reference.Identity{
		{Rate: "STG1", Last: "SMITH", First: "JOHN"},
		{Rate: "STG2", Last: "ADAMS", First: "JANE"},
	}))

	entries, err := repo.ListRoster(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "ADAMS", entries[0].Last)
	assert.Equal(t, "SMITH", entries[1].Last)
}

func TestDB_Health(t *testing.T) {
	db := testDB(t)
	assert.NoError(t, db.Health(context.Background()))
}
