package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"teamsync/internal/model"
	"teamsync/internal/util"
)

type ledgerFile struct {
	ActiveConflicts []model.ConflictRecord `json:"active_conflicts"`
	ResolvedCount   int                    `json:"resolved_count"`
}

// ConflictStore holds the active conflict set plus a per-conflict archive
// directory of resolved records.
type ConflictStore struct {
	path       string
	archiveDir string
}

func NewConflictStore(path, archiveDir string) *ConflictStore {
	return &ConflictStore{path: path, archiveDir: archiveDir}
}

func (s *ConflictStore) load() (*ledgerFile, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return &ledgerFile{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read conflict ledger: %w", err)
	}

	var f ledgerFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorruptState, s.path, err)
	}

	return &f, nil
}

func (s *ConflictStore) save(f *ledgerFile) error {
	return util.WriteJSON(s.path, f)
}

// Add persists a newly detected conflict. A path may have at most one
// active record; adding an existing path replaces the stale record.
func (s *ConflictStore) Add(rec model.ConflictRecord) error {
	f, err := s.load()
	if err != nil {
		return err
	}

	kept := f.ActiveConflicts[:0]
	for _, c := range f.ActiveConflicts {
		if c.FilePath != rec.FilePath {
			kept = append(kept, c)
		}
	}

	f.ActiveConflicts = append(kept, rec)
	return s.save(f)
}

func (s *ConflictStore) Active() ([]model.ConflictRecord, error) {
	f, err := s.load()
	if err != nil {
		return nil, err
	}

	return f.ActiveConflicts, nil
}

func (s *ConflictStore) Get(id string) (model.ConflictRecord, bool, error) {
	f, err := s.load()
	if err != nil {
		return model.ConflictRecord{}, false, err
	}

	for _, c := range f.ActiveConflicts {
		if c.ID == id {
			return c, true, nil
		}
	}

	return model.ConflictRecord{}, false, nil
}

func (s *ConflictStore) ResolvedCount() (int, error) {
	f, err := s.load()
	if err != nil {
		return 0, err
	}

	return f.ResolvedCount, nil
}

// Archive writes the resolved record to the archive directory, then removes
// it from the active set and bumps the resolved counter. This is the only
// way a record leaves the active set.
func (s *ConflictStore) Archive(rec model.ConflictRecord) error {
	if !rec.Resolved() {
		return fmt.Errorf("conflict %s is not resolved", rec.ID)
	}

	if err := os.MkdirAll(s.archiveDir, 0755); err != nil {
		return fmt.Errorf("failed to create archive dir: %w", err)
	}

	entry := filepath.Join(s.archiveDir, rec.ID+".json")
	if err := util.WriteJSON(entry, rec); err != nil {
		return err
	}

	f, err := s.load()
	if err != nil {
		return err
	}

	kept := f.ActiveConflicts[:0]
	for _, c := range f.ActiveConflicts {
		if c.ID != rec.ID {
			kept = append(kept, c)
		}
	}

	f.ActiveConflicts = kept
	f.ResolvedCount++
	return s.save(f)
}

// Archived returns resolved records, newest first by archive write time.
func (s *ConflictStore) Archived(limit int) ([]model.ConflictRecord, error) {
	entries, err := os.ReadDir(s.archiveDir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read archive dir: %w", err)
	}

	type stamped struct {
		rec     model.ConflictRecord
		modTime int64
	}

	var records []stamped
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".json" {
			continue
		}

		data, err := os.ReadFile(filepath.Join(s.archiveDir, e.Name()))
		if err != nil {
			return nil, fmt.Errorf("failed to read archive entry %s: %w", e.Name(), err)
		}

		var rec model.ConflictRecord
		if err := json.Unmarshal(data, &rec); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrCorruptState, e.Name(), err)
		}

		info, err := e.Info()
		if err != nil {
			return nil, err
		}

		records = append(records, stamped{rec: rec, modTime: info.ModTime().UnixNano()})
	}

	sort.Slice(records, func(i, j int) bool {
		if records[i].modTime != records[j].modTime {
			return records[i].modTime > records[j].modTime
		}
		return records[i].rec.ID > records[j].rec.ID
	})

	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}

	out := make([]model.ConflictRecord, 0, len(records))
	for _, r := range records {
		out = append(out, r.rec)
	}

	return out, nil
}

// ClearActive drops every active conflict without resolving or archiving.
func (s *ConflictStore) ClearActive() (int, error) {
	f, err := s.load()
	if err != nil {
		return 0, err
	}

	n := len(f.ActiveConflicts)
	if n == 0 {
		return 0, nil
	}

	f.ActiveConflicts = nil
	return n, s.save(f)
}
