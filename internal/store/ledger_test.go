package store

import (
	"os"
	"path/filepath"
	"teamsync/internal/model"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestConflictStore(t *testing.T) *ConflictStore {
	t.Helper()
	dir := t.TempDir()
	return NewConflictStore(filepath.Join(dir, "conflicts.json"), filepath.Join(dir, "archive"))
}

func makeConflict(id, path string) model.ConflictRecord {
	return model.ConflictRecord{
		ID:              id,
		SyncOperationID: "op-1",
		FilePath:        path,
		LocalVersion:    model.ConflictVersion{Content: "local", ModifiedBy: "alice@example.com", ModifiedAt: time.Now()},
		RemoteVersion:   model.ConflictVersion{Content: "remote", ModifiedBy: "unknown", ModifiedAt: time.Now()},
	}
}

func TestConflictStoreOneActivePerPath(t *testing.T) {
	s := newTestConflictStore(t)

	require.NoError(t, s.Add(makeConflict("c1", "team/doc.md")))
	require.NoError(t, s.Add(makeConflict("c2", "team/other.md")))
	require.NoError(t, s.Add(makeConflict("c3", "team/doc.md")))

	active, err := s.Active()
	require.NoError(t, err)
	require.Len(t, active, 2)

	byPath := make(map[string]string)
	for _, c := range active {
		byPath[c.FilePath] = c.ID
	}
	assert.Equal(t, "c3", byPath["team/doc.md"])
	assert.Equal(t, "c2", byPath["team/other.md"])
}

func TestConflictStoreArchiveIsTerminal(t *testing.T) {
	s := newTestConflictStore(t)

	rec := makeConflict("c1", "team/doc.md")
	require.NoError(t, s.Add(rec))

	now := time.Now()
	rec.Resolution = model.KeepLocal
	rec.ResolvedBy = "alice@example.com"
	rec.ResolvedAt = &now
	require.NoError(t, s.Archive(rec))

	active, err := s.Active()
	require.NoError(t, err)
	assert.Empty(t, active)

	archived, err := s.Archived(10)
	require.NoError(t, err)
	require.Len(t, archived, 1)
	assert.Equal(t, "c1", archived[0].ID)
	assert.Equal(t, model.KeepLocal, archived[0].Resolution)

	count, err := s.ResolvedCount()
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestConflictStoreArchiveRejectsUnresolved(t *testing.T) {
	s := newTestConflictStore(t)

	rec := makeConflict("c1", "team/doc.md")
	require.NoError(t, s.Add(rec))
	require.Error(t, s.Archive(rec))

	active, err := s.Active()
	require.NoError(t, err)
	assert.Len(t, active, 1)
}

func TestConflictStoreArchivedNewestFirst(t *testing.T) {
	s := newTestConflictStore(t)
	now := time.Now()

	for _, id := range []string{"c1", "c2", "c3"} {
		rec := makeConflict(id, "team/"+id+".md")
		rec.Resolution = model.KeepRemote
		rec.ResolvedAt = &now
		require.NoError(t, s.Add(rec))
		require.NoError(t, s.Archive(rec))
	}

	archived, err := s.Archived(2)
	require.NoError(t, err)
	require.Len(t, archived, 2)

	all, err := s.Archived(0)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestConflictStoreClearActive(t *testing.T) {
	s := newTestConflictStore(t)

	require.NoError(t, s.Add(makeConflict("c1", "team/a.md")))
	require.NoError(t, s.Add(makeConflict("c2", "team/b.md")))

	n, err := s.ClearActive()
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	active, err := s.Active()
	require.NoError(t, err)
	assert.Empty(t, active)

	// Nothing was archived, only abandoned.
	archived, err := s.Archived(10)
	require.NoError(t, err)
	assert.Empty(t, archived)

	n, err = s.ClearActive()
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestConflictStoreGet(t *testing.T) {
	s := newTestConflictStore(t)
	require.NoError(t, s.Add(makeConflict("c1", "team/a.md")))

	rec, ok, err := s.Get("c1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "team/a.md", rec.FilePath)

	_, ok, err = s.Get("missing")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestConflictStoreCorruptLedger(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "conflicts.json")
	require.NoError(t, os.WriteFile(path, []byte("]["), 0644))

	s := NewConflictStore(path, filepath.Join(dir, "archive"))
	_, err := s.Active()
	require.ErrorIs(t, err, ErrCorruptState)
}
