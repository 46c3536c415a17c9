package storage

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func newTestPostStore(t *testing.T) (*PostStore, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "post_state.json")
	store, err := OpenPostStore(path)
	if err != nil {
		t.Fatalf("OpenPostStore() error = %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store, path
}

func TestPostStore_MissingFileIsEmptyAndUnwritten(t *testing.T) {
	store, path := newTestPostStore(t)

	if store.Len() != 0 {
		t.Errorf("Len() = %d, want 0", store.Len())
	}
	// Opening must not create the file; only Save does.
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("state file exists after open without save")
	}
}

func TestPostStore_RecordAttemptAccumulates(t *testing.T) {
	store, _ := newTestPostStore(t)

	store.RecordAttempt(UploadRecord{
		VideoURL: "https://cdn.example.com/a.mp4",
		Manifest: "wood.json",
		Result:   ResultFailed,
		Error:    "boom",
	})
	store.RecordAttempt(UploadRecord{
		VideoURL: "https://cdn.example.com/a.mp4",
		Manifest: "wood.json",
		Result:   ResultSuccess,
		VideoID:  "vid123",
	})

	rec, ok := store.Record("https://cdn.example.com/a.mp4")
	if !ok {
		t.Fatal("Record() not found")
	}
	if rec.Attempts != 2 {
		t.Errorf("Attempts = %d, want 2", rec.Attempts)
	}
	if rec.Result != ResultSuccess {
		t.Errorf("Result = %q, want %q", rec.Result, ResultSuccess)
	}
	if rec.Error != "" {
		t.Errorf("Error = %q, want empty after success", rec.Error)
	}
	if got := len(store.Runs()); got != 2 {
		t.Errorf("len(Runs()) = %d, want 2", got)
	}
}

func TestPostStore_SuccessRunsNewestFirst(t *testing.T) {
	store, _ := newTestPostStore(t)

	store.RecordAttempt(UploadRecord{VideoURL: "u1", Result: ResultSuccess, VideoID: "v1"})
	store.RecordAttempt(UploadRecord{VideoURL: "u2", Result: ResultFailed})
	store.RecordAttempt(UploadRecord{VideoURL: "u3", Result: ResultSuccess, VideoID: "v3"})

	runs := store.SuccessRuns()
	if len(runs) != 2 {
		t.Fatalf("len(SuccessRuns()) = %d, want 2", len(runs))
	}
	if runs[0].VideoID != "v3" || runs[1].VideoID != "v1" {
		t.Errorf("SuccessRuns order = [%s %s], want [v3 v1]", runs[0].VideoID, runs[1].VideoID)
	}
}

func TestPostStore_Reload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "post_state.json")

	store, err := OpenPostStore(path)
	if err != nil {
		t.Fatalf("OpenPostStore() error = %v", err)
	}
	store.SetRotation(Rotation{ManifestIndex: 2, LastDay: "2026-08-26"})
	store.RecordAttempt(UploadRecord{VideoURL: "u1", Result: ResultSuccess, VideoID: "v1"})
	if err := store.Save(); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	store.Close()

	store2, err := OpenPostStore(path)
	if err != nil {
		t.Fatalf("OpenPostStore() reopen error = %v", err)
	}
	defer store2.Close()

	if rot := store2.Rotation(); rot.ManifestIndex != 2 || rot.LastDay != "2026-08-26" {
		t.Errorf("Rotation() = %+v after reload", rot)
	}
	rec, ok := store2.Record("u1")
	if !ok || rec.VideoID != "v1" {
		t.Errorf("Record() after reload = %+v, ok = %v", rec, ok)
	}
}

func TestPostStore_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "post_state.json")
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := OpenPostStore(path)
	if !errors.Is(err, ErrStateCorrupt) {
		t.Errorf("OpenPostStore() error = %v, want ErrStateCorrupt", err)
	}

	// The corrupt file must be preserved for manual repair.
	data, readErr := os.ReadFile(path)
	if readErr != nil || string(data) != "{not json" {
		t.Errorf("corrupt file was modified: %q, %v", data, readErr)
	}
}

func TestPostStore_LockExcludesSecondOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "post_state.json")

	store, err := OpenPostStore(path)
	if err != nil {
		t.Fatalf("OpenPostStore() error = %v", err)
	}
	defer store.Close()

	// A second lock on the same path must time out while the store holds it.
	// Uses the lock directly with a short timeout to keep the test fast.
	lock := NewFileLock(path)
	if err := lock.Lock(50 * time.Millisecond); !errors.Is(err, ErrLockTimeout) {
		if err == nil {
			lock.Unlock()
		}
		t.Errorf("Lock() error = %v, want ErrLockTimeout", err)
	}
}
