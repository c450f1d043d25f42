package model

import "time"

type Resolution string

const (
	KeepLocal   Resolution = "KEEP_LOCAL"
	KeepRemote  Resolution = "KEEP_REMOTE"
	ManualMerge Resolution = "MANUAL_MERGE"
)

func (r Resolution) IsValid() bool {
	switch r {
	case KeepLocal, KeepRemote, ManualMerge:
		return true
	default:
		return false
	}
}

// ConflictVersion is one side of a file-level divergence. CommitRef may be
// empty for the remote side when it cannot be resolved.
type ConflictVersion struct {
	Content    string    `json:"content"`
	ModifiedBy string    `json:"modified_by"`
	ModifiedAt time.Time `json:"modified_at"`
	CommitRef  string    `json:"commit_ref,omitempty"`
}

// ConflictRecord tracks a single conflicting shared file from detection
// until it is resolved and archived. Resolution, ResolvedBy and ResolvedAt
// stay empty while the record is active.
type ConflictRecord struct {
	ID              string          `json:"id"`
	SyncOperationID string          `json:"sync_operation_id"`
	FilePath        string          `json:"file_path"`
	LocalVersion    ConflictVersion `json:"local_version"`
	RemoteVersion   ConflictVersion `json:"remote_version"`
	Resolution      Resolution      `json:"resolution,omitempty"`
	ResolvedBy      string          `json:"resolved_by,omitempty"`
	ResolvedAt      *time.Time      `json:"resolved_at,omitempty"`
}

func (c ConflictRecord) Resolved() bool {
	return c.Resolution != ""
}
