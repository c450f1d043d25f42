package store

import (
	"encoding/json"
	"fmt"
	"os"
	"teamsync/internal/model"
	"teamsync/internal/util"
	"time"
)

// MaxOperations bounds the sync log; the oldest entries are evicted first.
const MaxOperations = 100

type syncLogFile struct {
	Operations        []model.SyncOperation    `json:"operations"`
	LastSync          *time.Time               `json:"last_sync"`
	PendingOperations []model.PendingOperation `json:"pending_operations"`
}

type SyncLogStore struct {
	path string
}

func NewSyncLogStore(path string) *SyncLogStore {
	return &SyncLogStore{path: path}
}

func (s *SyncLogStore) load() (*syncLogFile, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return &syncLogFile{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read sync log: %w", err)
	}

	var f syncLogFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorruptState, s.path, err)
	}

	return &f, nil
}

func (s *SyncLogStore) save(f *syncLogFile) error {
	return util.WriteJSON(s.path, f)
}

// Append records a terminal sync operation, evicting the oldest entries
// beyond the log capacity.
func (s *SyncLogStore) Append(op model.SyncOperation) error {
	f, err := s.load()
	if err != nil {
		return err
	}

	f.Operations = append(f.Operations, op)
	if len(f.Operations) > MaxOperations {
		f.Operations = f.Operations[len(f.Operations)-MaxOperations:]
	}

	return s.save(f)
}

// Recent returns up to limit of the most recent operations, oldest first.
func (s *SyncLogStore) Recent(limit int) ([]model.SyncOperation, error) {
	f, err := s.load()
	if err != nil {
		return nil, err
	}

	ops := f.Operations
	if limit > 0 && len(ops) > limit {
		ops = ops[len(ops)-limit:]
	}

	return ops, nil
}

func (s *SyncLogStore) LastSync() (*time.Time, error) {
	f, err := s.load()
	if err != nil {
		return nil, err
	}

	return f.LastSync, nil
}

// MarkSynced advances the last successful sync time. It never regresses.
func (s *SyncLogStore) MarkSynced(t time.Time) error {
	f, err := s.load()
	if err != nil {
		return err
	}

	if f.LastSync != nil && !t.After(*f.LastSync) {
		return nil
	}

	f.LastSync = &t
	return s.save(f)
}

func (s *SyncLogStore) Enqueue(p model.PendingOperation) error {
	f, err := s.load()
	if err != nil {
		return err
	}

	f.PendingOperations = append(f.PendingOperations, p)
	return s.save(f)
}

func (s *SyncLogStore) Pending() ([]model.PendingOperation, error) {
	f, err := s.load()
	if err != nil {
		return nil, err
	}

	return f.PendingOperations, nil
}

func (s *SyncLogStore) ClearPending() error {
	f, err := s.load()
	if err != nil {
		return err
	}

	if len(f.PendingOperations) == 0 {
		return nil
	}

	f.PendingOperations = nil
	return s.save(f)
}
