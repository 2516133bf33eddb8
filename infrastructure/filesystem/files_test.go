package filesystem

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "audio.m4a")
	files := NewFiles()

	if files.Exists(path) {
		t.Fatal("expected file to not exist yet")
	}
	if err := files.Remove(path); err != nil {
		t.Errorf("Remove() of missing file returned error: %v", err)
	}

	if err := os.WriteFile(path, []byte("hello"), 0644); err != nil {
		t.Fatal(err)
	}

	if !files.Exists(path) {
		t.Error("expected file to exist")
	}

	size, err := files.Size(path)
	if err != nil {
		t.Fatalf("Size() unexpected error: %v", err)
	}
	if size != 5 {
		t.Errorf("Size() = %d, want 5", size)
	}

	data, err := files.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() unexpected error: %v", err)
	}
	if string(data) != "hello" {
		t.Errorf("ReadFile() = %q, want hello", data)
	}

	if err := files.Remove(path); err != nil {
		t.Errorf("Remove() unexpected error: %v", err)
	}
	if files.Exists(path) {
		t.Error("expected file to be removed")
	}
}

func TestFiles_SizeErrors(t *testing.T) {
	files := NewFiles()
	dir := t.TempDir()

	if _, err := files.Size(filepath.Join(dir, "missing.m4a")); err == nil {
		t.Error("Size() of missing file expected error")
	}
	if _, err := files.Size(dir); err == nil {
		t.Error("Size() of directory expected error")
	}
}
