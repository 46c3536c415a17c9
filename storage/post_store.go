package storage

import (
	"encoding/json"
	"errors"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
)

const lockTimeout = 5 * time.Second

// PostStore holds the post-state: one record per manifest video URL plus an
// append-only run log. It is the source of truth for "already uploaded".
type PostStore struct {
	path string
	lock *FileLock
	data *postState
	mu   sync.RWMutex
}

// postState is the top-level JSON structure of the post-state file.
type postState struct {
	Version   int                      `json:"version"`
	UpdatedAt time.Time                `json:"updated_at"`
	Rotation  Rotation                 `json:"rotation"`
	Items     map[string]*UploadRecord `json:"items"`
	Runs      []UploadRun              `json:"runs"`
}

// OpenPostStore opens the post-state file at the given path, acquiring an
// exclusive lock held until Close. A missing file yields an empty in-memory
// state; nothing is written to disk until the first Save.
func OpenPostStore(path string) (*PostStore, error) {
	s := &PostStore{
		path: path,
		lock: NewFileLock(path),
	}

	if err := s.lock.Lock(lockTimeout); err != nil {
		return nil, err
	}

	if err := s.load(); err != nil {
		s.lock.Unlock()
		return nil, err
	}

	return s, nil
}

func (s *PostStore) load() error {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			s.data = &postState{
				Version: stateVersion,
				// Index -1 so the first daily rotation lands on entry 0.
				Rotation: Rotation{ManifestIndex: -1},
				Items:    make(map[string]*UploadRecord),
			}
			return nil
		}
		return &StateError{Op: "read", File: s.path, Err: err}
	}

	s.data = &postState{}
	if err := json.Unmarshal(raw, s.data); err != nil {
		return &StateError{Op: "read", File: s.path, Err: ErrStateCorrupt}
	}
	if s.data.Items == nil {
		s.data.Items = make(map[string]*UploadRecord)
	}
	if s.data.Version == 0 {
		s.data.Version = stateVersion
	}

	return nil
}

// Save persists the state to disk atomically.
func (s *PostStore) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data.UpdatedAt = time.Now()

	writer, err := NewAtomicWriter(s.path)
	if err != nil {
		return &StateError{Op: "write", File: s.path, Err: err}
	}

	encoder := json.NewEncoder(writer)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(s.data); err != nil {
		writer.Abort()
		return &StateError{Op: "write", File: s.path, Err: err}
	}

	if err := writer.Commit(); err != nil {
		return &StateError{Op: "write", File: s.path, Err: err}
	}

	return nil
}

// Close releases the state file lock. It does not save.
func (s *PostStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lock.Unlock()
}

// Rotation returns the current manifest rotation state.
func (s *PostStore) Rotation() Rotation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data.Rotation
}

// SetRotation updates the rotation state in memory.
func (s *PostStore) SetRotation(r Rotation) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.Rotation = r
}

// Record returns a copy of the upload record for a video URL.
func (s *PostStore) Record(videoURL string) (UploadRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.data.Items[videoURL]
	if !ok {
		return UploadRecord{}, false
	}
	return *rec, true
}

// RecordAttempt merges an upload attempt into the item record for its video
// URL, incrementing the accumulated attempt count, and appends a run log
// entry. The caller must Save afterwards.
func (s *PostStore) RecordAttempt(rec UploadRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()

	attempts := 1
	if prev, ok := s.data.Items[rec.VideoURL]; ok {
		attempts = prev.Attempts + 1
	}
	rec.Attempts = attempts
	rec.UpdatedAt = time.Now()
	s.data.Items[rec.VideoURL] = &rec

	s.data.Runs = append(s.data.Runs, UploadRun{
		ID:       uuid.NewString(),
		At:       time.Now().UTC(),
		VideoURL: rec.VideoURL,
		Manifest: rec.Manifest,
		Result:   rec.Result,
		VideoID:  rec.VideoID,
	})
}

// SuccessRuns returns the successful upload runs, newest first. The comment
// poster walks this to find the latest upload lacking a comment.
func (s *PostStore) SuccessRuns() []UploadRun {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var runs []UploadRun
	for i := len(s.data.Runs) - 1; i >= 0; i-- {
		if s.data.Runs[i].Result == ResultSuccess {
			runs = append(runs, s.data.Runs[i])
		}
	}
	return runs
}

// Runs returns all run log entries in chronological order.
func (s *PostStore) Runs() []UploadRun {
	s.mu.RLock()
	defer s.mu.RUnlock()

	runs := make([]UploadRun, len(s.data.Runs))
	copy(runs, s.data.Runs)
	return runs
}

// Len returns the number of item records.
func (s *PostStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data.Items)
}
