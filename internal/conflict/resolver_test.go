package conflict

import (
	"errors"
	"os"
	"path/filepath"
	"teamsync/internal/gitops"
	"teamsync/internal/model"
	"teamsync/internal/store"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGit struct {
	conflicting []string
	stages      map[string]string
	showErr     bool
	checkoutErr error
	oursCalls   [][]string
	theirsCalls [][]string
	identity    gitops.Identity
	latestHash  string
}

func newFakeGit() *fakeGit {
	return &fakeGit{
		stages:     map[string]string{},
		identity:   gitops.Identity{Name: "Alice", Email: "alice@example.com"},
		latestHash: "abc123",
	}
}

func (g *fakeGit) Fetch() error { return nil }
func (g *fakeGit) Pull() (*gitops.PullResult, error) { return &gitops.PullResult{}, nil }
func (g *fakeGit) Push() error { return nil }
func (g *fakeGit) Add(paths []string) error { return nil }
func (g *fakeGit) Commit(message string) error { return nil }
func (g *fakeGit) HasRemote() bool { return true }
func (g *fakeGit) IsOnline() bool { return true }
func (g *fakeGit) Status() (*gitops.Status, error) { return &gitops.Status{IsClean: true}, nil }
func (g *fakeGit) LatestCommitHash() (string, error) { return g.latestHash, nil }
func (g *fakeGit) ConflictingFiles() ([]string, error) { return g.conflicting, nil }

func (g *fakeGit) CheckoutOurs(paths []string) error {
	g.oursCalls = append(g.oursCalls, paths)
	return g.checkoutErr
}

func (g *fakeGit) CheckoutTheirs(paths []string) error {
	g.theirsCalls = append(g.theirsCalls, paths)
	return g.checkoutErr
}

func (g *fakeGit) Show(ref string) (string, error) {
	if g.showErr {
		return "", errors.New("stage extraction failed")
	}
	content, ok := g.stages[ref]
	if !ok {
		return "", errors.New("no such stage")
	}
	return content, nil
}

func (g *fakeGit) LastModifiedBy(path string) (string, time.Time, error) {
	return g.identity.Email, time.Now(), nil
}

func (g *fakeGit) CurrentIdentity() (gitops.Identity, error) {
	return g.identity, nil
}

func newTestResolver(t *testing.T, git gitops.Git) (*Resolver, string) {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "team"), 0755))

	st := store.NewConflictStore(
		filepath.Join(root, ".teamsync", "conflicts.json"),
		filepath.Join(root, ".teamsync", "conflict-archive"),
	)
	return NewResolver(git, st, root, "team"), root
}

func TestDetectConflictsCapturesBothSides(t *testing.T) {
	git := newFakeGit()
	git.conflicting = []string{"team/overview.md", "team/tasks.md"}
	git.stages[":2:team/overview.md"] = "local overview"
	git.stages[":3:team/overview.md"] = "remote overview"
	git.stages[":2:team/tasks.md"] = "local tasks"
	git.stages[":3:team/tasks.md"] = "remote tasks"

	r, _ := newTestResolver(t, git)

	records, err := r.DetectConflicts("op-1")
	require.NoError(t, err)
	require.Len(t, records, 2)

	byPath := map[string]model.ConflictRecord{}
	for _, rec := range records {
		byPath[rec.FilePath] = rec
	}

	overview := byPath["team/overview.md"]
	assert.Equal(t, "local overview", overview.LocalVersion.Content)
	assert.Equal(t, "remote overview", overview.RemoteVersion.Content)
	assert.Equal(t, "alice@example.com", overview.LocalVersion.ModifiedBy)
	assert.Equal(t, "unknown", overview.RemoteVersion.ModifiedBy)
	assert.Equal(t, "abc123", overview.LocalVersion.CommitRef)
	assert.Empty(t, overview.RemoteVersion.CommitRef)
	assert.Equal(t, "op-1", overview.SyncOperationID)

	active, err := r.ActiveConflicts()
	require.NoError(t, err)
	assert.Len(t, active, 2)
}

func TestDetectConflictsIgnoresFilesOutsideSharedRoot(t *testing.T) {
	git := newFakeGit()
	git.conflicting = []string{"README.md", "team/doc.md"}
	git.stages[":2:team/doc.md"] = "a"
	git.stages[":3:team/doc.md"] = "b"

	r, _ := newTestResolver(t, git)

	records, err := r.DetectConflicts("op-1")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "team/doc.md", records[0].FilePath)
}

func TestDetectConflictsFallsBackToWorkingCopy(t *testing.T) {
	git := newFakeGit()
	git.conflicting = []string{"team/doc.md"}
	git.showErr = true

	r, root := newTestResolver(t, git)
	require.NoError(t, os.WriteFile(filepath.Join(root, "team", "doc.md"), []byte("on disk"), 0644))

	records, err := r.DetectConflicts("op-1")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "on disk", records[0].LocalVersion.Content)
}

func TestDetectConflictsSkipsExistingActiveRecord(t *testing.T) {
	git := newFakeGit()
	git.conflicting = []string{"team/doc.md"}
	git.stages[":2:team/doc.md"] = "a"
	git.stages[":3:team/doc.md"] = "b"

	r, _ := newTestResolver(t, git)

	first, err := r.DetectConflicts("op-1")
	require.NoError(t, err)
	require.Len(t, first, 1)

	second, err := r.DetectConflicts("op-2")
	require.NoError(t, err)
	assert.Empty(t, second)

	active, err := r.ActiveConflicts()
	require.NoError(t, err)
	assert.Len(t, active, 1)
}

func TestResolveKeepRemoteWritesRemoteContent(t *testing.T) {
	git := newFakeGit()
	git.conflicting = []string{"team/doc.md"}
	git.stages[":2:team/doc.md"] = "A"
	git.stages[":3:team/doc.md"] = "B"

	r, root := newTestResolver(t, git)

	records, err := r.DetectConflicts("op-1")
	require.NoError(t, err)

	rec, err := r.Resolve(records[0].ID, model.KeepRemote, "bob@x.com")
	require.NoError(t, err)
	assert.Equal(t, model.KeepRemote, rec.Resolution)
	assert.Equal(t, "bob@x.com", rec.ResolvedBy)
	require.NotNil(t, rec.ResolvedAt)

	data, err := os.ReadFile(filepath.Join(root, "team", "doc.md"))
	require.NoError(t, err)
	assert.Equal(t, "B", string(data))

	require.Len(t, git.theirsCalls, 1)
	assert.Equal(t, []string{"team/doc.md"}, git.theirsCalls[0])

	active, err := r.ActiveConflicts()
	require.NoError(t, err)
	assert.Empty(t, active)

	archived, err := r.ArchivedConflicts(10)
	require.NoError(t, err)
	require.Len(t, archived, 1)
	assert.Equal(t, rec.ID, archived[0].ID)
}

func TestResolveKeepLocalWritesLocalContent(t *testing.T) {
	git := newFakeGit()
	git.conflicting = []string{"team/doc.md"}
	git.stages[":2:team/doc.md"] = "A"
	git.stages[":3:team/doc.md"] = "B"

	r, root := newTestResolver(t, git)

	records, err := r.DetectConflicts("op-1")
	require.NoError(t, err)

	_, err = r.Resolve(records[0].ID, model.KeepLocal, "alice@example.com")
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(root, "team", "doc.md"))
	require.NoError(t, err)
	assert.Equal(t, "A", string(data))
	require.Len(t, git.oursCalls, 1)
}

func TestResolveManualMergeLeavesFileAlone(t *testing.T) {
	git := newFakeGit()
	git.conflicting = []string{"team/doc.md"}
	git.stages[":2:team/doc.md"] = "A"
	git.stages[":3:team/doc.md"] = "B"

	r, root := newTestResolver(t, git)
	merged := filepath.Join(root, "team", "doc.md")
	require.NoError(t, os.WriteFile(merged, []byte("hand merged"), 0644))

	records, err := r.DetectConflicts("op-1")
	require.NoError(t, err)

	_, err = r.Resolve(records[0].ID, model.ManualMerge, "alice@example.com")
	require.NoError(t, err)

	data, err := os.ReadFile(merged)
	require.NoError(t, err)
	assert.Equal(t, "hand merged", string(data))
	assert.Empty(t, git.oursCalls)
	assert.Empty(t, git.theirsCalls)
}

func TestResolveFailureLeavesRecordActive(t *testing.T) {
	git := newFakeGit()
	git.conflicting = []string{"team/doc.md"}
	git.stages[":2:team/doc.md"] = "A"
	git.stages[":3:team/doc.md"] = "B"
	git.checkoutErr = errors.New("index locked")

	r, _ := newTestResolver(t, git)

	records, err := r.DetectConflicts("op-1")
	require.NoError(t, err)

	_, err = r.Resolve(records[0].ID, model.KeepLocal, "alice@example.com")
	require.ErrorIs(t, err, ErrResolutionFailed)

	active, err := r.ActiveConflicts()
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.False(t, active[0].Resolved())
}

func TestResolveUnknownConflict(t *testing.T) {
	r, _ := newTestResolver(t, newFakeGit())

	_, err := r.Resolve("missing", model.KeepLocal, "alice@example.com")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestResolveAllIsBestEffort(t *testing.T) {
	git := newFakeGit()
	git.conflicting = []string{"team/a.md", "team/b.md"}
	git.stages[":2:team/a.md"] = "a local"
	git.stages[":3:team/a.md"] = "a remote"
	git.stages[":2:team/b.md"] = "b local"
	git.stages[":3:team/b.md"] = "b remote"

	r, root := newTestResolver(t, git)

	_, err := r.DetectConflicts("op-1")
	require.NoError(t, err)

	// Make one working file unwritable by replacing it with a directory,
	// so its double-write fails while the other still resolves.
	require.NoError(t, os.MkdirAll(filepath.Join(root, "team", "a.md"), 0755))

	resolved, err := r.ResolveAll(model.KeepRemote, "alice@example.com")
	require.NoError(t, err)
	require.Len(t, resolved, 1)
	assert.Equal(t, "team/b.md", resolved[0].FilePath)

	active, err := r.ActiveConflicts()
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "team/a.md", active[0].FilePath)
}
