package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gofrs/flock"

	"vouch/internal/config"
)

func TestStagingListAndClean(t *testing.T) {
	env := setupCLITestEnv(t)
	if err := os.MkdirAll(env.stagingDir, 0o755); err != nil {
		t.Fatalf("mkdir staging: %v", err)
	}

	old := filepath.Join(env.stagingDir, "vouch-old.mp4")
	fresh := filepath.Join(env.stagingDir, "vouch-fresh.mp4")
	other := filepath.Join(env.stagingDir, "notes.txt")
	for _, p := range []string{old, fresh, other} {
		if err := os.WriteFile(p, []byte("data"), 0o644); err != nil {
			t.Fatalf("write %s: %v", p, err)
		}
	}
	past := time.Now().Add(-48 * time.Hour)
	if err := os.Chtimes(old, past, past); err != nil {
		t.Fatalf("chtimes: %v", err)
	}

	out, _, err := runCLI(t, []string{"staging", "list"}, env.configPath)
	if err != nil {
		t.Fatalf("staging list: %v", err)
	}
	requireContains(t, out, "vouch-old.mp4")
	requireContains(t, out, "Total: 2 files")

	out, _, err = runCLI(t, []string{"staging", "clean", "--json"}, env.configPath)
	if err != nil {
		t.Fatalf("staging clean: %v", err)
	}
	var payload struct {
		Removed int      `json:"removed"`
		Errors  []string `json:"errors"`
	}
	if err := json.Unmarshal([]byte(out), &payload); err != nil {
		t.Fatalf("decode clean output %q: %v", out, err)
	}
	if payload.Removed != 1 {
		t.Fatalf("removed = %d, want 1", payload.Removed)
	}
	if _, err := os.Stat(old); !os.IsNotExist(err) {
		t.Fatalf("expected stale file removed, stat err = %v", err)
	}
	if _, err := os.Stat(fresh); err != nil {
		t.Fatalf("fresh file should remain: %v", err)
	}

	if _, _, err := runCLI(t, []string{"staging", "clean", "--all"}, env.configPath); err != nil {
		t.Fatalf("staging clean --all: %v", err)
	}
	if _, err := os.Stat(fresh); !os.IsNotExist(err) {
		t.Fatalf("expected --all to remove fresh file, stat err = %v", err)
	}
	if _, err := os.Stat(other); err != nil {
		t.Fatalf("unrelated file should remain: %v", err)
	}
}

func TestStagingCleanRefusesWhileAuditRuns(t *testing.T) {
	env := setupCLITestEnv(t)
	if err := os.MkdirAll(env.stagingDir, 0o755); err != nil {
		t.Fatalf("mkdir staging: %v", err)
	}
	staged := filepath.Join(env.stagingDir, "vouch-inflight.mp4")
	if err := os.WriteFile(staged, []byte("data"), 0o644); err != nil {
		t.Fatalf("write staged: %v", err)
	}

	cfg := config.Default()
	cfg.Paths.StagingDir = env.stagingDir
	lock := flock.New(cfg.LockPath())
	ok, err := lock.TryLock()
	if err != nil || !ok {
		t.Fatalf("hold audit lock: ok=%v err=%v", ok, err)
	}
	defer func() { _ = lock.Unlock() }()

	_, _, err = runCLI(t, []string{"staging", "clean", "--all"}, env.configPath)
	if err == nil {
		t.Fatal("expected clean to refuse while the audit lock is held")
	}
	requireContains(t, err.Error(), "already running")
	if _, statErr := os.Stat(staged); statErr != nil {
		t.Fatalf("in-flight upload should remain: %v", statErr)
	}

	_ = lock.Unlock()
	if _, _, err := runCLI(t, []string{"staging", "clean", "--all"}, env.configPath); err != nil {
		t.Fatalf("staging clean --all after unlock: %v", err)
	}
	if _, statErr := os.Stat(staged); !os.IsNotExist(statErr) {
		t.Fatalf("expected staged upload removed, stat err = %v", statErr)
	}
}

func TestFormatDuration(t *testing.T) {
	cases := map[time.Duration]string{
		5 * time.Minute: "5m",
		3 * time.Hour:   "3h",
		50 * time.Hour:  "2d",
	}
	for in, want := range cases {
		if got := formatDuration(in); got != want {
			t.Errorf("formatDuration(%s) = %q, want %q", in, got, want)
		}
	}
}
