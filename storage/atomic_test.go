package storage

import (
	"os"
	"path/filepath"
	"testing"
)

func TestAtomicWriter_Commit(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sub", "state.json")

	w, err := NewAtomicWriter(path)
	if err != nil {
		t.Fatalf("NewAtomicWriter() error = %v", err)
	}
	if _, err := w.Write([]byte(`{"ok":true}`)); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if err := w.Commit(); err != nil {
		t.Fatalf("Commit() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if string(data) != `{"ok":true}` {
		t.Errorf("file content = %q, want %q", data, `{"ok":true}`)
	}

	assertNoTempFiles(t, filepath.Dir(path))
}

func TestAtomicWriter_Abort(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "state.json")

	// Seed an existing file that must survive the abort untouched.
	if err := os.WriteFile(path, []byte("original"), 0644); err != nil {
		t.Fatal(err)
	}

	w, err := NewAtomicWriter(path)
	if err != nil {
		t.Fatalf("NewAtomicWriter() error = %v", err)
	}
	if _, err := w.Write([]byte("garbage")); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if err := w.Abort(); err != nil {
		t.Fatalf("Abort() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if string(data) != "original" {
		t.Errorf("file content = %q, want %q", data, "original")
	}

	assertNoTempFiles(t, dir)
}

func assertNoTempFiles(t *testing.T, dir string) {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join(dir, ".ytpost-*.tmp"))
	if err != nil {
		t.Fatal(err)
	}
	if len(matches) != 0 {
		t.Errorf("temp files left behind: %v", matches)
	}
}
