// Package syncer sequences pull, conflict detection and push against the
// shared-file set and maintains the local sync log.
package syncer

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"teamsync/internal/access"
	"teamsync/internal/conflict"
	"teamsync/internal/gitops"
	"teamsync/internal/logger"
	"teamsync/internal/model"
	"teamsync/internal/store"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrNoRemote           = errors.New("no git remote configured")
	ErrNetworkUnavailable = errors.New("remote is unreachable")
	ErrAccessDenied       = errors.New("member may not push shared files")
)

const resolveCommitMessage = "chore(team): resolve sync conflicts (keep local)"

// FileRegistry is the descriptor source the orchestrator reads and
// refreshes after a successful sync.
type FileRegistry interface {
	List() ([]model.SharedFile, error)
	Save(file *model.SharedFile) error
}

type Orchestrator struct {
	git           gitops.Git
	log           *store.SyncLogStore
	resolver      *conflict.Resolver
	registry      FileRegistry
	access        access.Checker
	projectRoot   string
	commitMessage string
	memberID      string
}

type Options struct {
	ProjectRoot   string
	CommitMessage string
	MemberID      string
}

func NewOrchestrator(git gitops.Git, log *store.SyncLogStore, resolver *conflict.Resolver,
	registry FileRegistry, checker access.Checker, opts Options) *Orchestrator {
	return &Orchestrator{
		git:           git,
		log:           log,
		resolver:      resolver,
		registry:      registry,
		access:        checker,
		projectRoot:   opts.ProjectRoot,
		commitMessage: opts.CommitMessage,
		memberID:      opts.MemberID,
	}
}

// Sync runs one pull/push cycle. Pull always precedes push so local work is
// never pushed on top of stale remote state. Unresolved conflicts stop the
// cycle before any push unless force resolves them by keeping local content.
//
// Precondition failures (access, remote, reachability) return a sentinel
// error; underlying git failures are reported through the result only.
func (o *Orchestrator) Sync(pushOnly, pullOnly, force bool) (model.SyncResult, error) {
	op := o.newOperation(operationType(pushOnly, pullOnly))

	if !pullOnly && !o.access.CanPerform(access.ActionPush) {
		return o.failed(op, ErrAccessDenied), ErrAccessDenied
	}

	if !o.git.HasRemote() {
		return o.failed(op, ErrNoRemote), ErrNoRemote
	}

	if !o.git.IsOnline() {
		return o.failed(op, ErrNetworkUnavailable), ErrNetworkUnavailable
	}

	op.Status = model.StatusInProgress

	if !pushOnly {
		if err := o.git.Fetch(); err != nil {
			return o.errored(op, err), nil
		}

		pull, err := o.git.Pull()
		if err != nil {
			return o.errored(op, err), nil
		}

		if len(pull.Conflicts) > 0 {
			if _, err := o.resolver.DetectConflicts(op.ID); err != nil {
				return o.errored(op, err), nil
			}
		}
	}

	// Gate on the ledger, not on freshly detected records: a conflict left
	// unresolved by an earlier sync must keep blocking every later push.
	active, err := o.resolver.ActiveConflicts()
	if err != nil {
		return o.errored(op, err), nil
	}

	if len(active) > 0 {
		if !force {
			return o.conflicted(op, active), nil
		}

		if err := o.forceResolve(active); err != nil {
			return o.errored(op, err), nil
		}
	}

	var pushed []string
	if !pullOnly {
		changes, err := o.GetPendingChanges()
		if err != nil {
			return o.errored(op, err), nil
		}

		for _, c := range changes {
			pushed = append(pushed, c.Path)
		}

		if len(pushed) > 0 {
			if err := o.commitAndPush(pushed); err != nil {
				return o.errored(op, err), nil
			}
		} else if err := o.pushIfAhead(); err != nil {
			return o.errored(op, err), nil
		}
	}

	op.Status = model.StatusSuccess
	op.FilesAffected = pushed
	o.complete(&op)

	if err := o.log.Append(op); err != nil {
		logger.Log.Warn("failed to record sync operation", zap.Error(err))
	}
	if err := o.log.MarkSynced(*op.CompletedAt); err != nil {
		logger.Log.Warn("failed to advance last sync time", zap.Error(err))
	}

	o.refreshDescriptors()

	logger.Log.Info("sync complete",
		zap.String("operation", string(op.Type)),
		zap.Int("pushed", len(pushed)))

	return model.SyncResult{Operation: op, Success: true, PushedFiles: pushed}, nil
}

func (o *Orchestrator) forceResolve(records []model.ConflictRecord) error {
	paths := make([]string, 0, len(records))
	for _, rec := range records {
		if _, err := o.resolver.Resolve(rec.ID, model.KeepLocal, o.memberID); err != nil {
			return fmt.Errorf("failed to force-resolve %s: %w", rec.FilePath, err)
		}

		paths = append(paths, rec.FilePath)
	}

	if err := o.git.Add(paths); err != nil {
		return err
	}

	return o.git.Commit(resolveCommitMessage)
}

func (o *Orchestrator) commitAndPush(paths []string) error {
	if err := o.git.Add(paths); err != nil {
		return err
	}

	if err := o.git.Commit(o.commitMessage); err != nil {
		return err
	}

	return o.git.Push()
}

// pushIfAhead publishes commits that exist locally without new file
// changes, e.g. a conflict-resolution commit from a previous force sync.
func (o *Orchestrator) pushIfAhead() error {
	st, err := o.git.Status()
	if err != nil {
		return err
	}

	if st.Ahead == 0 {
		return nil
	}

	return o.git.Push()
}

// GetStatus derives a read-only snapshot; nothing is mutated.
func (o *Orchestrator) GetStatus() (model.StatusSnapshot, error) {
	st, err := o.git.Status()
	if err != nil {
		return model.StatusSnapshot{}, err
	}

	lastSync, err := o.log.LastSync()
	if err != nil {
		return model.StatusSnapshot{}, err
	}

	shared, err := o.registry.List()
	if err != nil {
		return model.StatusSnapshot{}, err
	}

	dirty := make(map[string]bool)
	for _, p := range st.Modified {
		dirty[p] = true
	}
	for _, p := range st.Staged {
		dirty[p] = true
	}
	for _, p := range st.Untracked {
		dirty[p] = true
	}

	files := make(map[string]model.FileSyncState, len(shared))
	for _, f := range shared {
		switch {
		case !o.existsLocally(f.Path):
			files[f.Path] = model.FileMissing
		case dirty[f.Path]:
			files[f.Path] = model.FileModified
		case st.Ahead > 0:
			files[f.Path] = model.FileAhead
		case st.Behind > 0:
			files[f.Path] = model.FileBehind
		default:
			files[f.Path] = model.FileSynced
		}
	}

	return model.StatusSnapshot{
		Online:     o.git.IsOnline(),
		Branch:     st.Branch,
		Clean:      st.IsClean,
		Ahead:      st.Ahead,
		Behind:     st.Behind,
		LastSyncAt: lastSync,
		Files:      files,
	}, nil
}

// GetPendingChanges lists shared files that are locally modified, staged or
// untracked, independent of remote state.
func (o *Orchestrator) GetPendingChanges() ([]model.FileChange, error) {
	st, err := o.git.Status()
	if err != nil {
		return nil, err
	}

	shared, err := o.registry.List()
	if err != nil {
		return nil, err
	}

	sharedPaths := make(map[string]bool, len(shared))
	for _, f := range shared {
		sharedPaths[f.Path] = true
	}

	staged := make(map[string]bool, len(st.Staged))
	for _, p := range st.Staged {
		staged[p] = true
	}

	seen := make(map[string]bool)
	var changes []model.FileChange
	for _, p := range append(append(append([]string{}, st.Modified...), st.Untracked...), st.Staged...) {
		if !sharedPaths[p] || seen[p] {
			continue
		}

		seen[p] = true
		changes = append(changes, model.FileChange{Path: p, Staged: staged[p]})
	}

	return changes, nil
}

// QueueOfflineOperation records a sync intent without touching the network.
func (o *Orchestrator) QueueOfflineOperation(opType model.OperationType, files []string) error {
	return o.log.Enqueue(model.PendingOperation{
		Type:     opType,
		Files:    files,
		QueuedAt: time.Now(),
	})
}

// PendingOperations returns the offline queue without replaying it.
func (o *Orchestrator) PendingOperations() ([]model.PendingOperation, error) {
	return o.log.Pending()
}

// ProcessPendingOperations replays the offline queue in enqueue order, then
// clears it unconditionally. A failed replay shows up in its result but
// never blocks the remaining queued items.
func (o *Orchestrator) ProcessPendingOperations() ([]model.SyncResult, error) {
	pending, err := o.log.Pending()
	if err != nil {
		return nil, err
	}

	if len(pending) == 0 {
		return nil, nil
	}

	defer func() {
		if err := o.log.ClearPending(); err != nil {
			logger.Log.Warn("failed to clear pending queue", zap.Error(err))
		}
	}()

	results := make([]model.SyncResult, 0, len(pending))
	for _, p := range pending {
		var result model.SyncResult
		switch p.Type {
		case model.OpPush:
			result, _ = o.Sync(true, false, false)
		case model.OpPull:
			result, _ = o.Sync(false, true, false)
		default:
			result, _ = o.Sync(false, false, false)
		}

		results = append(results, result)
	}

	return results, nil
}

// GetSyncHistory returns up to limit recent operations, newest last.
func (o *Orchestrator) GetSyncHistory(limit int) ([]model.SyncOperation, error) {
	return o.log.Recent(limit)
}

// refreshDescriptors updates each shared file's sync metadata from the
// now-current local copy. Best effort: a file that cannot be inspected
// keeps its previous descriptor.
func (o *Orchestrator) refreshDescriptors() {
	shared, err := o.registry.List()
	if err != nil {
		logger.Log.Warn("failed to list shared files", zap.Error(err))
		return
	}

	version, err := o.git.LatestCommitHash()
	if err != nil {
		version = ""
	}

	for i := range shared {
		f := &shared[i]

		info, err := os.Stat(filepath.Join(o.projectRoot, f.Path))
		if err != nil {
			continue
		}

		f.Version = version
		f.SizeBytes = info.Size()
		f.ModifiedAt = info.ModTime()

		if by, at, err := o.git.LastModifiedBy(f.Path); err == nil {
			f.ModifiedBy = by
			if !at.IsZero() {
				f.ModifiedAt = at
			}
		} else {
			f.ModifiedBy = o.memberID
		}

		if err := o.registry.Save(f); err != nil {
			logger.Log.Warn("failed to save descriptor",
				zap.String("path", f.Path),
				zap.Error(err))
		}
	}
}

func (o *Orchestrator) existsLocally(path string) bool {
	_, err := os.Stat(filepath.Join(o.projectRoot, path))
	return err == nil
}

func (o *Orchestrator) newOperation(opType model.OperationType) model.SyncOperation {
	return model.SyncOperation{
		ID:        uuid.NewString(),
		MemberID:  o.memberID,
		Type:      opType,
		Status:    model.StatusPending,
		StartedAt: time.Now(),
	}
}

func (o *Orchestrator) complete(op *model.SyncOperation) {
	now := time.Now()
	op.CompletedAt = &now
}

func (o *Orchestrator) failed(op model.SyncOperation, cause error) model.SyncResult {
	return o.record(op, model.StatusError, cause.Error())
}

func (o *Orchestrator) errored(op model.SyncOperation, cause error) model.SyncResult {
	logger.Log.Error("sync failed",
		zap.String("operation", string(op.Type)),
		zap.Error(cause))
	return o.record(op, model.StatusError, cause.Error())
}

func (o *Orchestrator) record(op model.SyncOperation, status model.SyncStatus, message string) model.SyncResult {
	op.Status = status
	op.ErrorMessage = message
	o.complete(&op)

	if err := o.log.Append(op); err != nil {
		logger.Log.Warn("failed to record sync operation", zap.Error(err))
	}

	return model.SyncResult{Operation: op, ErrorMessage: message}
}

func (o *Orchestrator) conflicted(op model.SyncOperation, records []model.ConflictRecord) model.SyncResult {
	op.Status = model.StatusConflict
	op.ConflictID = records[0].ID
	for _, rec := range records {
		op.FilesAffected = append(op.FilesAffected, rec.FilePath)
	}
	o.complete(&op)

	if err := o.log.Append(op); err != nil {
		logger.Log.Warn("failed to record sync operation", zap.Error(err))
	}

	logger.Log.Warn("sync stopped on conflicts",
		zap.Int("count", len(records)))

	return model.SyncResult{Operation: op, Conflicts: records}
}

func operationType(pushOnly, pullOnly bool) model.OperationType {
	switch {
	case pushOnly:
		return model.OpPush
	case pullOnly:
		return model.OpPull
	default:
		return model.OpMerge
	}
}
