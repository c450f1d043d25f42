// Package conflict turns unmerged paths reported by git into durable
// conflict records and applies resolution strategies to them.
package conflict

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"teamsync/internal/gitops"
	"teamsync/internal/logger"
	"teamsync/internal/model"
	"teamsync/internal/store"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrNotFound         = errors.New("conflict not found")
	ErrResolutionFailed = errors.New("conflict resolution failed")
)

// unknownModifier is recorded for the remote side when the committer
// cannot be determined from the merge state.
const unknownModifier = "unknown"

type Resolver struct {
	git         gitops.Git
	store       *store.ConflictStore
	projectRoot string
	sharedRoot  string
}

func NewResolver(git gitops.Git, st *store.ConflictStore, projectRoot, sharedRoot string) *Resolver {
	return &Resolver{
		git:         git,
		store:       st,
		projectRoot: projectRoot,
		sharedRoot:  sharedRoot,
	}
}

// DetectConflicts captures both sides of every unmerged shared file and
// persists each record as soon as it is built, so a crash mid-detection
// loses at most the in-flight record.
func (r *Resolver) DetectConflicts(syncOperationID string) ([]model.ConflictRecord, error) {
	paths, err := r.git.ConflictingFiles()
	if err != nil {
		return nil, fmt.Errorf("failed to list conflicting files: %w", err)
	}

	active, err := r.store.Active()
	if err != nil {
		return nil, err
	}

	activePaths := make(map[string]bool, len(active))
	for _, c := range active {
		activePaths[c.FilePath] = true
	}

	identity, err := r.git.CurrentIdentity()
	if err != nil {
		return nil, err
	}

	commit, err := r.git.LatestCommitHash()
	if err != nil {
		commit = ""
	}

	now := time.Now()
	var detected []model.ConflictRecord

	for _, path := range paths {
		if !r.underSharedRoot(path) || activePaths[path] {
			continue
		}

		rec := model.ConflictRecord{
			ID:              uuid.NewString(),
			SyncOperationID: syncOperationID,
			FilePath:        path,
			LocalVersion: model.ConflictVersion{
				Content:    r.stageContent(":2:"+path, path),
				ModifiedBy: identity.Email,
				ModifiedAt: now,
				CommitRef:  commit,
			},
			RemoteVersion: model.ConflictVersion{
				Content:    r.stageContent(":3:"+path, path),
				ModifiedBy: unknownModifier,
				ModifiedAt: now,
			},
		}

		if err := r.store.Add(rec); err != nil {
			return detected, err
		}

		logger.Log.Warn("conflict detected",
			zap.String("path", path),
			zap.String("id", rec.ID))
		detected = append(detected, rec)
	}

	return detected, nil
}

// stageContent reads one side of the conflict from the index, falling back
// to the conflict-marked working copy when stage extraction fails.
func (r *Resolver) stageContent(ref, path string) string {
	content, err := r.git.Show(ref)
	if err == nil {
		return content
	}

	data, readErr := os.ReadFile(filepath.Join(r.projectRoot, path))
	if readErr != nil {
		logger.Log.Warn("failed to materialize conflict side",
			zap.String("ref", ref),
			zap.Error(err))
		return ""
	}

	return string(data)
}

func (r *Resolver) underSharedRoot(path string) bool {
	if r.sharedRoot == "" {
		return true
	}

	rel, err := filepath.Rel(r.sharedRoot, path)
	return err == nil && !strings.HasPrefix(rel, "..")
}

func (r *Resolver) ActiveConflicts() ([]model.ConflictRecord, error) {
	return r.store.Active()
}

func (r *Resolver) Conflict(id string) (model.ConflictRecord, error) {
	rec, ok, err := r.store.Get(id)
	if err != nil {
		return model.ConflictRecord{}, err
	}
	if !ok {
		return model.ConflictRecord{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	return rec, nil
}

// Resolve applies the strategy to a single active conflict and archives the
// record. On any failure the record stays active and unmodified.
func (r *Resolver) Resolve(id string, resolution model.Resolution, resolvedBy string) (model.ConflictRecord, error) {
	rec, err := r.Conflict(id)
	if err != nil {
		return model.ConflictRecord{}, err
	}

	workPath := filepath.Join(r.projectRoot, rec.FilePath)

	switch resolution {
	case model.KeepLocal:
		if err := r.git.CheckoutOurs([]string{rec.FilePath}); err != nil {
			return model.ConflictRecord{}, fmt.Errorf("%w: %v", ErrResolutionFailed, err)
		}
		// checkout may only stage the chosen side; write the captured
		// content so the working copy is guaranteed to match.
		if err := os.WriteFile(workPath, []byte(rec.LocalVersion.Content), 0644); err != nil {
			return model.ConflictRecord{}, fmt.Errorf("%w: %v", ErrResolutionFailed, err)
		}

	case model.KeepRemote:
		if err := r.git.CheckoutTheirs([]string{rec.FilePath}); err != nil {
			return model.ConflictRecord{}, fmt.Errorf("%w: %v", ErrResolutionFailed, err)
		}
		if err := os.WriteFile(workPath, []byte(rec.RemoteVersion.Content), 0644); err != nil {
			return model.ConflictRecord{}, fmt.Errorf("%w: %v", ErrResolutionFailed, err)
		}

	case model.ManualMerge:
		// The caller already merged the file by hand; nothing to write.

	default:
		return model.ConflictRecord{}, fmt.Errorf("%w: unknown resolution %q", ErrResolutionFailed, resolution)
	}

	now := time.Now()
	rec.Resolution = resolution
	rec.ResolvedBy = resolvedBy
	rec.ResolvedAt = &now

	if err := r.store.Archive(rec); err != nil {
		return model.ConflictRecord{}, fmt.Errorf("%w: %v", ErrResolutionFailed, err)
	}

	logger.Log.Info("conflict resolved",
		zap.String("path", rec.FilePath),
		zap.String("resolution", string(resolution)),
		zap.String("by", resolvedBy))

	return rec, nil
}

// ResolveAll applies one strategy to every active conflict. A failing
// record is skipped and left active; the batch never aborts partway.
func (r *Resolver) ResolveAll(resolution model.Resolution, resolvedBy string) ([]model.ConflictRecord, error) {
	active, err := r.store.Active()
	if err != nil {
		return nil, err
	}

	var resolved []model.ConflictRecord
	for _, rec := range active {
		done, err := r.Resolve(rec.ID, resolution, resolvedBy)
		if err != nil {
			logger.Log.Warn("skipping unresolvable conflict",
				zap.String("id", rec.ID),
				zap.Error(err))
			continue
		}

		resolved = append(resolved, done)
	}

	return resolved, nil
}

func (r *Resolver) ArchivedConflicts(limit int) ([]model.ConflictRecord, error) {
	return r.store.Archived(limit)
}

// ClearActive abandons every active conflict without resolving it.
func (r *Resolver) ClearActive() (int, error) {
	n, err := r.store.ClearActive()
	if err != nil {
		return 0, err
	}

	if n > 0 {
		logger.Log.Info("cleared active conflicts", zap.Int("count", n))
	}

	return n, nil
}
