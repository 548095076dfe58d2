package config

import (
	"errors"
	"fmt"

	"vouch/internal/services"
)

// Validate ensures the configuration is usable. A missing API key is not an
// error here; commands that contact the service call RequireAPIKey.
func (c *Config) Validate() error {
	if err := c.validateModels(); err != nil {
		return err
	}
	if err := c.validateAudit(); err != nil {
		return err
	}
	if err := c.validateStaging(); err != nil {
		return err
	}
	return nil
}

// RequireAPIKey reports a configuration error when no credential is available.
func (c *Config) RequireAPIKey() error {
	if c.Gemini.APIKey != "" {
		return nil
	}
	defaultPath, err := DefaultConfigPath()
	if err != nil {
		defaultPath = "~/.config/vouch/config.toml"
	}
	return fmt.Errorf("%w: gemini.api_key is required. Set GEMINI_API_KEY (or GOOGLE_API_KEY) or edit %s (create with 'vouch config init')", services.ErrConfiguration, defaultPath)
}

func (c *Config) validateModels() error {
	switch c.Models.Mode {
	case ModelModeStatic, ModelModeDiscover:
	default:
		return fmt.Errorf("models.mode must be %q or %q, got %q", ModelModeStatic, ModelModeDiscover, c.Models.Mode)
	}
	if c.Models.Default == "" {
		return errors.New("models.default must be set")
	}
	return nil
}

func (c *Config) validateAudit() error {
	if err := ensurePositiveMap(map[string]int{
		"audit.poll_interval_seconds": c.Audit.PollIntervalSeconds,
		"audit.poll_timeout_seconds":  c.Audit.PollTimeoutSeconds,
	}); err != nil {
		return err
	}
	if c.Audit.PollTimeoutSeconds < c.Audit.PollIntervalSeconds {
		return errors.New("audit.poll_timeout_seconds must be >= audit.poll_interval_seconds")
	}
	return nil
}

func (c *Config) validateStaging() error {
	if c.Staging.MaxUploadMB <= 0 {
		return errors.New("staging.max_upload_mb must be positive")
	}
	return nil
}

func ensurePositiveMap(values map[string]int) error {
	for key, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}
