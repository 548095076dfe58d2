package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"vouch/internal/api"
)

func writeVideo(t *testing.T, name string, size int) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, make([]byte, size), 0o644); err != nil {
		t.Fatalf("write video: %v", err)
	}
	return path
}

func TestAuditCommandPrintsReport(t *testing.T) {
	env := setupCLITestEnv(t)
	video := writeVideo(t, "trailer.mp4", 4096)

	out, stderr, err := runCLI(t, []string{"audit", video, "--acknowledge"}, env.configPath)
	if err != nil {
		t.Fatalf("audit: %v (stderr %q)", err, stderr)
	}
	requireContains(t, out, "Vouch.ai Liability Report")
	requireContains(t, out, "Gemini Test")
	requireContains(t, out, "**Risk Score**: CAUTION")
	requireContains(t, stderr, "[100%] Audit complete")
	if env.gemini.deletions() != 1 {
		t.Fatalf("remote deletions = %d, want 1", env.gemini.deletions())
	}

	entries, err := os.ReadDir(env.stagingDir)
	if err != nil {
		t.Fatalf("read staging dir: %v", err)
	}
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), "vouch-") {
			t.Fatalf("staged file %s left behind", e.Name())
		}
	}
}

func TestAuditCommandJSON(t *testing.T) {
	env := setupCLITestEnv(t)
	video := writeVideo(t, "clip.mov", 1024)

	out, stderr, err := runCLI(t, []string{"audit", video, "--acknowledge", "--json"}, env.configPath)
	if err != nil {
		t.Fatalf("audit: %v", err)
	}
	if stderr != "" {
		t.Fatalf("expected no progress output in JSON mode, got %q", stderr)
	}
	var resp api.AuditResponse
	if err := json.Unmarshal([]byte(out), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !strings.HasPrefix(resp.AuditID, "VCH-") {
		t.Fatalf("audit id = %q", resp.AuditID)
	}
	if resp.EngineUsed != "gemini-test" {
		t.Fatalf("engine = %q", resp.EngineUsed)
	}
}

func TestAuditCommandRequiresAcknowledgement(t *testing.T) {
	env := setupCLITestEnv(t)
	video := writeVideo(t, "trailer.mp4", 16)

	_, _, err := runCLI(t, []string{"audit", video}, env.configPath)
	if err == nil || !strings.Contains(err.Error(), "--acknowledge") {
		t.Fatalf("expected acknowledgement error, got %v", err)
	}
}

func TestAuditCommandRejectsUnsupportedType(t *testing.T) {
	env := setupCLITestEnv(t)
	doc := writeVideo(t, "notes.txt", 16)

	_, stderr, err := runCLI(t, []string{"audit", doc, "--acknowledge"}, env.configPath)
	if err == nil {
		t.Fatal("expected unsupported type to fail")
	}
	requireContains(t, stderr, "not accepted")
}

func TestModelsCommandJSON(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"models", "--json"}, env.configPath)
	if err != nil {
		t.Fatalf("models: %v", err)
	}
	var resp api.ModelsResponse
	if err := json.Unmarshal([]byte(out), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Candidates) != 1 || resp.Candidates[0].Identifier != "gemini-test" {
		t.Fatalf("candidates = %+v", resp.Candidates)
	}
}
