package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pelletier/go-toml/v2"

	"vouch/internal/config"
	"vouch/internal/services"
)

func TestLoadDefaultConfigUsesEnvKeyAndExpandsPaths(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "test-key")
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Chdir(t.TempDir())

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantStaging := filepath.Join(tempHome, ".local", "share", "vouch", "staging")
	if cfg.Paths.StagingDir != wantStaging {
		t.Fatalf("unexpected staging dir: got %q want %q", cfg.Paths.StagingDir, wantStaging)
	}
	if cfg.Gemini.APIKey != "test-key" {
		t.Fatalf("expected API key from env, got %q", cfg.Gemini.APIKey)
	}
	if cfg.Models.Mode != config.ModelModeStatic {
		t.Fatalf("unexpected model mode: %q", cfg.Models.Mode)
	}
	if len(cfg.Models.Candidates) == 0 {
		t.Fatal("expected default candidates")
	}
	if cfg.PollInterval() != 2*time.Second {
		t.Fatalf("unexpected poll interval: %s", cfg.PollInterval())
	}
	if cfg.PollTimeout() != 60*time.Second {
		t.Fatalf("unexpected poll timeout: %s", cfg.PollTimeout())
	}
	if cfg.MaxUploadBytes() != 200*1024*1024 {
		t.Fatalf("unexpected upload quota: %d", cfg.MaxUploadBytes())
	}
	if !cfg.Server.RequireAcknowledgement {
		t.Fatal("expected acknowledgement gate enabled by default")
	}
	if cfg.Notifications.NtfyTopic != "" || cfg.NotifyTimeout() != 10*time.Second {
		t.Fatalf("unexpected notification defaults: topic=%q timeout=%s", cfg.Notifications.NtfyTopic, cfg.NotifyTimeout())
	}
}

func TestLoadFallsBackToGoogleAPIKey(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("GOOGLE_API_KEY", "google-key")
	t.Setenv("HOME", t.TempDir())
	t.Chdir(t.TempDir())

	cfg, _, _, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Gemini.APIKey != "google-key" {
		t.Fatalf("expected GOOGLE_API_KEY fallback, got %q", cfg.Gemini.APIKey)
	}
}

func TestLoadReadsDotEnv(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("GOOGLE_API_KEY", "")
	os.Unsetenv("GEMINI_API_KEY")
	os.Unsetenv("GOOGLE_API_KEY")
	t.Setenv("HOME", t.TempDir())
	dir := t.TempDir()
	t.Chdir(dir)
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("GEMINI_API_KEY=dotenv-key\n"), 0o600); err != nil {
		t.Fatalf("write .env: %v", err)
	}
	t.Cleanup(func() { os.Unsetenv("GEMINI_API_KEY") })

	cfg, _, _, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Gemini.APIKey != "dotenv-key" {
		t.Fatalf("expected key from .env, got %q", cfg.Gemini.APIKey)
	}
}

func TestLoadCustomPath(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Chdir(t.TempDir())
	dir := t.TempDir()
	path := filepath.Join(dir, "vouch.toml")

	payload := map[string]any{
		"paths": map[string]any{
			"staging_dir": filepath.Join(dir, "staging"),
		},
		"gemini": map[string]any{
			"api_key":  "file-key",
			"base_url": "http://localhost:9999/v1beta/",
		},
		"models": map[string]any{
			"mode":       "DISCOVER",
			"candidates": []string{"models/gemini-2.5-flash", " gemini-2.5-flash ", "gemini-2.0-flash"},
		},
		"audit": map[string]any{
			"poll_interval_seconds": 1,
			"poll_timeout_seconds":  5,
		},
		"staging": map[string]any{
			"allowed_extensions": []string{"MP4", ".mov", ""},
		},
	}
	data, err := toml.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != path {
		t.Fatalf("unexpected resolution: %q exists=%v", resolved, exists)
	}
	if cfg.Gemini.APIKey != "file-key" {
		t.Fatalf("unexpected key: %q", cfg.Gemini.APIKey)
	}
	if cfg.Gemini.BaseURL != "http://localhost:9999/v1beta" {
		t.Fatalf("expected trailing slash trimmed, got %q", cfg.Gemini.BaseURL)
	}
	if cfg.Models.Mode != config.ModelModeDiscover {
		t.Fatalf("expected discover mode, got %q", cfg.Models.Mode)
	}
	if strings.Join(cfg.Models.Candidates, ",") != "gemini-2.5-flash,gemini-2.0-flash" {
		t.Fatalf("unexpected candidates: %v", cfg.Models.Candidates)
	}
	if strings.Join(cfg.Staging.AllowedExtensions, ",") != ".mp4,.mov" {
		t.Fatalf("unexpected extensions: %v", cfg.Staging.AllowedExtensions)
	}
	if cfg.PollTimeout() != 5*time.Second {
		t.Fatalf("unexpected poll timeout: %s", cfg.PollTimeout())
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*config.Config)
		want   string
	}{
		{"mode", func(c *config.Config) { c.Models.Mode = "random" }, "models.mode"},
		{"interval", func(c *config.Config) { c.Audit.PollIntervalSeconds = 0 }, "audit.poll_interval_seconds"},
		{"timeout order", func(c *config.Config) { c.Audit.PollTimeoutSeconds = 1; c.Audit.PollIntervalSeconds = 2 }, "poll_timeout_seconds"},
		{"quota", func(c *config.Config) { c.Staging.MaxUploadMB = 0 }, "staging.max_upload_mb"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := config.Default()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("error %q does not mention %q", err, tc.want)
			}
		})
	}
}

func TestRequireAPIKey(t *testing.T) {
	cfg := config.Default()
	if err := cfg.RequireAPIKey(); !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
	cfg.Gemini.APIKey = "k"
	if err := cfg.RequireAPIKey(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestCreateSampleIsLoadable(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Chdir(t.TempDir())
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample returned error: %v", err)
	}
	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load sample returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected sample to exist")
	}
	if cfg.Models.Default != "gemini-flash-latest" {
		t.Fatalf("unexpected default model: %q", cfg.Models.Default)
	}
}
