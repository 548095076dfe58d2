package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeGemini()
	c.normalizeModels()
	c.normalizeAudit()
	c.normalizeStaging()
	c.normalizeServer()
	c.normalizeNotifications()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.StagingDir) == "" {
		c.Paths.StagingDir = defaultStagingDir
	}
	if c.Paths.StagingDir, err = expandPath(c.Paths.StagingDir); err != nil {
		return fmt.Errorf("paths.staging_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(strings.TrimSpace(c.Paths.LogDir)); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	c.Paths.APIBind = strings.TrimSpace(c.Paths.APIBind)
	if c.Paths.APIBind == "" {
		c.Paths.APIBind = defaultAPIBind
	}
	return nil
}

func (c *Config) normalizeGemini() {
	c.Gemini.APIKey = strings.TrimSpace(c.Gemini.APIKey)
	if c.Gemini.APIKey == "" {
		if value, ok := os.LookupEnv("GEMINI_API_KEY"); ok {
			c.Gemini.APIKey = strings.TrimSpace(value)
		}
	}
	if c.Gemini.APIKey == "" {
		if value, ok := os.LookupEnv("GOOGLE_API_KEY"); ok {
			c.Gemini.APIKey = strings.TrimSpace(value)
		}
	}
	c.Gemini.BaseURL = strings.TrimRight(strings.TrimSpace(c.Gemini.BaseURL), "/")
	if c.Gemini.BaseURL == "" {
		c.Gemini.BaseURL = defaultGeminiBaseURL
	}
	c.Gemini.UploadURL = strings.TrimRight(strings.TrimSpace(c.Gemini.UploadURL), "/")
	if c.Gemini.UploadURL == "" {
		c.Gemini.UploadURL = defaultGeminiUploadURL
	}
	if c.Gemini.TimeoutSeconds <= 0 {
		c.Gemini.TimeoutSeconds = defaultGeminiTimeoutSeconds
	}
	if c.Gemini.UploadTimeoutSeconds <= 0 {
		c.Gemini.UploadTimeoutSeconds = defaultGeminiUploadTimeout
	}
}

func (c *Config) normalizeModels() {
	c.Models.Mode = strings.ToLower(strings.TrimSpace(c.Models.Mode))
	if c.Models.Mode == "" {
		c.Models.Mode = defaultModelMode
	}
	c.Models.Default = trimModelName(c.Models.Default)
	if c.Models.Default == "" {
		c.Models.Default = defaultModel
	}
	c.Models.Candidates = normalizeModelList(c.Models.Candidates)
	if len(c.Models.Candidates) == 0 {
		c.Models.Candidates = []string{c.Models.Default}
	}
	c.Models.Priority = normalizeModelList(c.Models.Priority)
	if len(c.Models.Priority) == 0 {
		c.Models.Priority = defaultPriority()
	}
}

func (c *Config) normalizeAudit() {
	if c.Audit.CleanupTimeoutSecond <= 0 {
		c.Audit.CleanupTimeoutSecond = defaultCleanupTimeoutSeconds
	}
	if c.Audit.BackoffBaseSeconds < 0 {
		c.Audit.BackoffBaseSeconds = 0
	}
	if c.Audit.BackoffMaxSeconds < c.Audit.BackoffBaseSeconds {
		c.Audit.BackoffMaxSeconds = c.Audit.BackoffBaseSeconds
	}
}

func (c *Config) normalizeStaging() {
	if c.Staging.StaleAfterHours <= 0 {
		c.Staging.StaleAfterHours = defaultStaleAfterHours
	}
	exts := make([]string, 0, len(c.Staging.AllowedExtensions))
	seen := make(map[string]struct{}, len(c.Staging.AllowedExtensions))
	for _, ext := range c.Staging.AllowedExtensions {
		normalized := strings.ToLower(strings.TrimSpace(ext))
		if normalized == "" {
			continue
		}
		if !strings.HasPrefix(normalized, ".") {
			normalized = "." + normalized
		}
		if _, exists := seen[normalized]; exists {
			continue
		}
		seen[normalized] = struct{}{}
		exts = append(exts, normalized)
	}
	if len(exts) == 0 {
		exts = defaultExtensions()
	}
	c.Staging.AllowedExtensions = exts
}

func (c *Config) normalizeServer() {
	origins := make([]string, 0, len(c.Server.AllowedOrigins))
	for _, origin := range c.Server.AllowedOrigins {
		if trimmed := strings.TrimSpace(origin); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	c.Server.AllowedOrigins = origins
	if c.Server.ReadTimeoutSeconds <= 0 {
		c.Server.ReadTimeoutSeconds = defaultServerReadTimeout
	}
}

func (c *Config) normalizeNotifications() {
	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)
	if c.Notifications.RequestTimeoutSeconds <= 0 {
		c.Notifications.RequestTimeoutSeconds = defaultNotifyTimeoutSeconds
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

// trimModelName strips whitespace and the "models/" resource prefix the
// service uses in listings so configured names and discovered names compare equal.
func trimModelName(name string) string {
	name = strings.TrimSpace(name)
	return strings.TrimPrefix(name, "models/")
}

func normalizeModelList(values []string) []string {
	out := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, value := range values {
		name := trimModelName(value)
		if name == "" {
			continue
		}
		if _, exists := seen[name]; exists {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return out
}
