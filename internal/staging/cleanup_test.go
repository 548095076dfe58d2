package staging

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"vouch/internal/logging"
)

func writeAged(t *testing.T, path string, age time.Duration) {
	t.Helper()
	if err := os.WriteFile(path, []byte("test"), 0o644); err != nil {
		t.Fatalf("create file: %v", err)
	}
	when := time.Now().Add(-age)
	if err := os.Chtimes(path, when, when); err != nil {
		t.Fatalf("set time: %v", err)
	}
}

func TestCleanStaleInvalidPaths(t *testing.T) {
	for _, dir := range []string{"", "   ", "/nonexistent/path/12345"} {
		result := CleanStale(context.Background(), dir, time.Hour, logging.NewNop())
		if len(result.Removed) != 0 || len(result.Errors) != 0 {
			t.Errorf("expected empty result for path %q", dir)
		}
	}
}

func TestCleanStaleRemovesOldStagedFiles(t *testing.T) {
	tmpDir := t.TempDir()

	oldFile := filepath.Join(tmpDir, "vouch-111.mp4")
	writeAged(t, oldFile, 2*time.Hour)
	recentFile := filepath.Join(tmpDir, "vouch-222.mp4")
	writeAged(t, recentFile, 0)

	result := CleanStale(context.Background(), tmpDir, time.Hour, logging.NewNop())

	if len(result.Removed) != 1 {
		t.Fatalf("expected 1 removed, got %d", len(result.Removed))
	}
	if result.Removed[0] != oldFile {
		t.Errorf("expected %s to be removed, got %s", oldFile, result.Removed[0])
	}
	if _, err := os.Stat(oldFile); !os.IsNotExist(err) {
		t.Error("old file should have been removed")
	}
	if _, err := os.Stat(recentFile); err != nil {
		t.Error("recent file should still exist")
	}
}

func TestCleanStaleIgnoresForeignEntries(t *testing.T) {
	tmpDir := t.TempDir()

	foreign := filepath.Join(tmpDir, "old-file.txt")
	writeAged(t, foreign, 2*time.Hour)
	lock := filepath.Join(tmpDir, ".audit.lock")
	writeAged(t, lock, 2*time.Hour)
	dir := filepath.Join(tmpDir, "vouch-dir")
	if err := os.Mkdir(dir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	result := CleanStale(context.Background(), tmpDir, time.Hour, logging.NewNop())

	if len(result.Removed) != 0 {
		t.Errorf("expected no removals, got %v", result.Removed)
	}
	for _, path := range []string{foreign, lock, dir} {
		if _, err := os.Stat(path); err != nil {
			t.Errorf("%s should not have been removed", path)
		}
	}
}

func TestListInvalidPaths(t *testing.T) {
	for _, path := range []string{"", "/nonexistent/path/12345"} {
		files, err := List(path)
		if err != nil {
			t.Fatalf("unexpected error for %q: %v", path, err)
		}
		if files != nil {
			t.Errorf("expected nil for %q, got %v", path, files)
		}
	}
}

func TestListOrdersOldestFirst(t *testing.T) {
	tmpDir := t.TempDir()
	writeAged(t, filepath.Join(tmpDir, "vouch-new.mp4"), time.Minute)
	writeAged(t, filepath.Join(tmpDir, "vouch-old.mp4"), time.Hour)
	writeAged(t, filepath.Join(tmpDir, "notes.txt"), time.Hour)

	files, err := List(tmpDir)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("expected 2 files, got %d", len(files))
	}
	if files[0].Name != "vouch-old.mp4" || files[1].Name != "vouch-new.mp4" {
		t.Fatalf("unexpected order: %s, %s", files[0].Name, files[1].Name)
	}
	if files[0].Size != 4 {
		t.Fatalf("size = %d", files[0].Size)
	}
}
