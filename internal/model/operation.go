package model

import "time"

type OperationType string

const (
	OpPull  OperationType = "PULL"
	OpPush  OperationType = "PUSH"
	OpMerge OperationType = "MERGE"
)

type SyncStatus string

const (
	StatusPending    SyncStatus = "PENDING"
	StatusInProgress SyncStatus = "IN_PROGRESS"
	StatusSuccess    SyncStatus = "SUCCESS"
	StatusConflict   SyncStatus = "CONFLICT"
	StatusError      SyncStatus = "ERROR"
)

// SyncOperation is one attempted pull/push/merge cycle. It transitions once
// to a terminal status and is immutable after being appended to the log.
type SyncOperation struct {
	ID            string        `json:"id"`
	MemberID      string        `json:"member_id"`
	Type          OperationType `json:"type"`
	Status        SyncStatus    `json:"status"`
	FilesAffected []string      `json:"files_affected"`
	StartedAt     time.Time     `json:"started_at"`
	CompletedAt   *time.Time    `json:"completed_at,omitempty"`
	ErrorMessage  string        `json:"error_message,omitempty"`
	ConflictID    string        `json:"conflict_id,omitempty"`
}

// PendingOperation is a sync intent queued while the remote was unreachable.
type PendingOperation struct {
	Type     OperationType `json:"type"`
	Files    []string      `json:"files"`
	QueuedAt time.Time     `json:"queued_at"`
}

type SyncResult struct {
	Operation    SyncOperation    `json:"operation"`
	Success      bool             `json:"success"`
	Conflicts    []ConflictRecord `json:"conflicts,omitempty"`
	PushedFiles  []string         `json:"pushed_files,omitempty"`
	ErrorMessage string           `json:"error_message,omitempty"`
}

type FileSyncState string

const (
	FileMissing  FileSyncState = "missing"
	FileModified FileSyncState = "modified"
	FileAhead    FileSyncState = "ahead"
	FileBehind   FileSyncState = "behind"
	FileSynced   FileSyncState = "synced"
)

type FileChange struct {
	Path   string `json:"path"`
	Staged bool   `json:"staged"`
}

type StatusSnapshot struct {
	Online     bool                     `json:"online"`
	Branch     string                   `json:"branch"`
	Clean      bool                     `json:"clean"`
	Ahead      int                      `json:"ahead"`
	Behind     int                      `json:"behind"`
	LastSyncAt *time.Time               `json:"last_sync_at,omitempty"`
	Files      map[string]FileSyncState `json:"files"`
}
