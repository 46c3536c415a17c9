package storage

import (
	"encoding/json"
	"errors"
	"os"
	"sync"
	"time"
)

// CommentStore holds the comment-state: one record per YouTube video ID plus
// an append-only run log. It prevents double-commenting the same video.
type CommentStore struct {
	path string
	lock *FileLock
	data *commentState
	mu   sync.RWMutex
}

// commentState is the top-level JSON structure of the comment-state file.
type commentState struct {
	Version   int                       `json:"version"`
	UpdatedAt time.Time                 `json:"updated_at"`
	Items     map[string]*CommentRecord `json:"items"`
	Runs      []CommentRun              `json:"runs"`
}

// OpenCommentStore opens the comment-state file at the given path, acquiring
// an exclusive lock held until Close. A missing file yields an empty
// in-memory state; nothing is written to disk until the first Save.
func OpenCommentStore(path string) (*CommentStore, error) {
	s := &CommentStore{
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

func (s *CommentStore) load() error {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			s.data = &commentState{
				Version: stateVersion,
				Items:   make(map[string]*CommentRecord),
			}
			return nil
		}
		return &StateError{Op: "read", File: s.path, Err: err}
	}

	s.data = &commentState{}
	if err := json.Unmarshal(raw, s.data); err != nil {
		return &StateError{Op: "read", File: s.path, Err: ErrStateCorrupt}
	}
	if s.data.Items == nil {
		s.data.Items = make(map[string]*CommentRecord)
	}
	if s.data.Version == 0 {
		s.data.Version = stateVersion
	}

	return nil
}

// Save persists the state to disk atomically.
func (s *CommentStore) Save() error {
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
func (s *CommentStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lock.Unlock()
}

// Record returns a copy of the comment record for a video ID.
func (s *CommentStore) Record(videoID string) (CommentRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.data.Items[videoID]
	if !ok {
		return CommentRecord{}, false
	}
	return *rec, true
}

// SetRecord stores the comment record for a video ID in memory.
// The caller must Save afterwards.
func (s *CommentStore) SetRecord(videoID string, rec CommentRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.Items[videoID] = &rec
}

// DeleteRecord removes the comment record for a video ID, reopening the
// video for commenting. The caller must Save afterwards.
func (s *CommentStore) DeleteRecord(videoID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data.Items, videoID)
}

// AppendRun appends a run log entry. The caller must Save afterwards.
func (s *CommentStore) AppendRun(run CommentRun) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.Runs = append(s.data.Runs, run)
}

// Runs returns all run log entries in chronological order.
func (s *CommentStore) Runs() []CommentRun {
	s.mu.RLock()
	defer s.mu.RUnlock()

	runs := make([]CommentRun, len(s.data.Runs))
	copy(runs, s.data.Runs)
	return runs
}

// Len returns the number of item records.
func (s *CommentStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data.Items)
}
