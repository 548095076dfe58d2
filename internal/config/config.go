package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory and bind address configuration.
type Paths struct {
	StagingDir string `toml:"staging_dir"`
	LogDir     string `toml:"log_dir"`
	APIBind    string `toml:"api_bind"`
}

// Gemini contains connection settings for the remote multimodal service.
type Gemini struct {
	APIKey               string `toml:"api_key"`
	BaseURL              string `toml:"base_url"`
	UploadURL            string `toml:"upload_url"`
	TimeoutSeconds       int    `toml:"timeout_seconds"`
	UploadTimeoutSeconds int    `toml:"upload_timeout_seconds"`
}

// Models controls how candidate backends are resolved for each audit.
type Models struct {
	// Mode is "static" (use Candidates in order) or "discover" (query the
	// service and order by Priority).
	Mode       string   `toml:"mode"`
	Candidates []string `toml:"candidates"`
	Priority   []string `toml:"priority"`
	Default    string   `toml:"default"`
}

// Audit contains pipeline timing settings.
type Audit struct {
	PollIntervalSeconds  int `toml:"poll_interval_seconds"`
	PollTimeoutSeconds   int `toml:"poll_timeout_seconds"`
	BackoffBaseSeconds   int `toml:"backoff_base_seconds"`
	BackoffMaxSeconds    int `toml:"backoff_max_seconds"`
	CleanupTimeoutSecond int `toml:"cleanup_timeout_seconds"`
}

// Staging contains limits for locally staged uploads.
type Staging struct {
	MaxUploadMB       int      `toml:"max_upload_mb"`
	StaleAfterHours   int      `toml:"stale_after_hours"`
	AllowedExtensions []string `toml:"allowed_extensions"`
}

// Server contains settings for the HTTP front door.
type Server struct {
	AllowedOrigins         []string `toml:"allowed_origins"`
	RequireAcknowledgement bool     `toml:"require_acknowledgement"`
	ReadTimeoutSeconds     int      `toml:"read_timeout_seconds"`
}

// Notifications contains ntfy push settings. An empty topic disables them.
type Notifications struct {
	NtfyTopic             string `toml:"ntfy_topic"`
	RequestTimeoutSeconds int    `toml:"request_timeout_seconds"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for Vouch.
//
// Configuration sections by subsystem:
//   - Paths: staging/log directories and API bind address
//   - Gemini: remote service credentials and endpoints
//   - Models: candidate backend resolution
//   - Audit: polling and backoff timing
//   - Staging: upload size and type limits
//   - Server: HTTP CORS and acknowledgement gate
//   - Notifications: ntfy audit outcome pushes
//   - Logging: log format and level
type Config struct {
	Paths         Paths         `toml:"paths"`
	Gemini        Gemini        `toml:"gemini"`
	Models        Models        `toml:"models"`
	Audit         Audit         `toml:"audit"`
	Staging       Staging       `toml:"staging"`
	Server        Server        `toml:"server"`
	Notifications Notifications `toml:"notifications"`
	Logging       Logging       `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/vouch/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	loadDotEnv()

	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

// loadDotEnv reads .env files from the working directory. Existing
// environment variables always win and missing files are ignored.
func loadDotEnv() {
	for _, name := range []string{".env", ".env.local"} {
		if _, err := os.Stat(name); err != nil {
			continue
		}
		_ = godotenv.Load(name)
	}
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("vouch.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the staging and log directories.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.StagingDir, c.Paths.LogDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

// GeminiConfig contains the connection settings handed to the service client.
type GeminiConfig struct {
	APIKey        string
	BaseURL       string
	UploadURL     string
	Timeout       time.Duration
	UploadTimeout time.Duration
}

// GetGemini returns the remote service connection settings.
func (c *Config) GetGemini() GeminiConfig {
	return GeminiConfig{
		APIKey:        strings.TrimSpace(c.Gemini.APIKey),
		BaseURL:       strings.TrimSpace(c.Gemini.BaseURL),
		UploadURL:     strings.TrimSpace(c.Gemini.UploadURL),
		Timeout:       seconds(c.Gemini.TimeoutSeconds),
		UploadTimeout: seconds(c.Gemini.UploadTimeoutSeconds),
	}
}

// PollInterval returns the delay between remote status checks.
func (c *Config) PollInterval() time.Duration {
	return seconds(c.Audit.PollIntervalSeconds)
}

// PollTimeout returns the bound on waiting for a remote asset to become ready.
func (c *Config) PollTimeout() time.Duration {
	return seconds(c.Audit.PollTimeoutSeconds)
}

// Backoff returns the base and maximum delay applied after a transient backend failure.
func (c *Config) Backoff() (time.Duration, time.Duration) {
	return seconds(c.Audit.BackoffBaseSeconds), seconds(c.Audit.BackoffMaxSeconds)
}

// CleanupTimeout bounds best-effort remote deletion after a run.
func (c *Config) CleanupTimeout() time.Duration {
	return seconds(c.Audit.CleanupTimeoutSecond)
}

// MaxUploadBytes returns the staging quota in bytes.
func (c *Config) MaxUploadBytes() int64 {
	return int64(c.Staging.MaxUploadMB) * 1024 * 1024
}

// StaleAfter returns the age after which leftover staged files are swept.
func (c *Config) StaleAfter() time.Duration {
	return time.Duration(c.Staging.StaleAfterHours) * time.Hour
}

// NotifyTimeout bounds a single ntfy request.
func (c *Config) NotifyTimeout() time.Duration {
	return seconds(c.Notifications.RequestTimeoutSeconds)
}

// LockPath returns the lock file used to keep a single CLI audit in flight.
func (c *Config) LockPath() string {
	return filepath.Join(c.Paths.StagingDir, ".audit.lock")
}

// LogFilePath returns the log file written next to console output, if any.
func (c *Config) LogFilePath() string {
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		return ""
	}
	return filepath.Join(c.Paths.LogDir, "vouch.log")
}

func seconds(value int) time.Duration {
	return time.Duration(value) * time.Second
}
