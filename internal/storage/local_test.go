package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestLocalFileStore_Read(t *testing.T) {
	dir := t.TempDir()
	content := []byte("name,age\nAlice,30\n")
	if err := os.WriteFile(filepath.Join(dir, "upload.csv"), content, 0o644); err != nil {
		t.Fatalf("Failed to write fixture: %v", err)
	}

	store := NewLocalFileStore(dir)
	got, err := store.Read(context.Background(), "upload.csv")
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if string(got) != string(content) {
		t.Errorf("Unexpected content: %q", got)
	}
}

func TestLocalFileStore_MissingFile(t *testing.T) {
	store := NewLocalFileStore(t.TempDir())
	if _, err := store.Read(context.Background(), "nope.csv"); err == nil {
		t.Error("Expected error for a missing file")
	}
}

// TestLocalFileStore_EscapeRejected verifies paths cannot climb out of the
// storage root
func TestLocalFileStore_EscapeRejected(t *testing.T) {
	dir := t.TempDir()
	outside := filepath.Join(filepath.Dir(dir), "secret.txt")
	if err := os.WriteFile(outside, []byte("secret"), 0o644); err != nil {
		t.Fatalf("Failed to write fixture: %v", err)
	}

	store := NewLocalFileStore(dir)
	if got, err := store.Read(context.Background(), "../secret.txt"); err == nil {
		t.Errorf("Traversal should be rejected, read %q", got)
	}
}
