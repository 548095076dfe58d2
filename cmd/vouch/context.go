package main

import (
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"vouch/internal/audit"
	"vouch/internal/config"
	"vouch/internal/logging"
	"vouch/internal/modelselect"
	"vouch/internal/notifications"
	"vouch/internal/remoteasset"
	"vouch/internal/services/gemini"
	"vouch/internal/staging"
)

type commandContext struct {
	configFlag *string
	jsonFlag   *bool

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
}

func newCommandContext(configFlag *string, jsonFlag *bool) *commandContext {
	return &commandContext{
		configFlag: configFlag,
		jsonFlag:   jsonFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		cfg, _, _, err := config.Load(c.configPath())
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) configPath() string {
	if c.configFlag == nil {
		return ""
	}
	return strings.TrimSpace(*c.configFlag)
}

// JSONMode reports whether --json was passed.
func (c *commandContext) JSONMode() bool {
	return c.jsonFlag != nil && *c.jsonFlag
}

// ensureLogger builds the logger once. A logger that cannot open its file
// falls back to stderr only.
func (c *commandContext) ensureLogger() *slog.Logger {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.logger = logging.NewNop()
			return
		}
		logger, err := logging.NewFromConfig(cfg)
		if err != nil {
			logger, err = logging.New(logging.Options{Level: cfg.Logging.Level, Format: cfg.Logging.Format})
		}
		if err != nil {
			logger = logging.NewNop()
		}
		c.logger = logger
	})
	return c.logger
}

func (c *commandContext) geminiClient(cfg *config.Config) (*gemini.Client, error) {
	if err := cfg.RequireAPIKey(); err != nil {
		return nil, err
	}
	g := cfg.GetGemini()
	return gemini.NewClient(gemini.Config{
		APIKey:        g.APIKey,
		BaseURL:       g.BaseURL,
		UploadURL:     g.UploadURL,
		Timeout:       g.Timeout,
		UploadTimeout: g.UploadTimeout,
	}), nil
}

// auditStack bundles the components built from one configuration.
type auditStack struct {
	client   *gemini.Client
	selector *modelselect.Selector
	pipeline *audit.Pipeline
}

func (c *commandContext) buildStack() (*auditStack, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	client, err := c.geminiClient(cfg)
	if err != nil {
		return nil, err
	}
	logger := c.ensureLogger()
	selector := modelselect.NewFromConfig(client, cfg, logger)
	pipeline := audit.NewPipeline(
		staging.NewFromConfig(cfg, logger),
		remoteasset.NewFromConfig(client, cfg, logger),
		audit.NewInvokerFromConfig(client, selector, cfg, logger),
		audit.NewPresenter(),
		audit.PipelineOptions{
			CleanupTimeout: cfg.CleanupTimeout(),
			Notifier:       notifications.NewService(cfg),
		},
		logger,
	)
	return &auditStack{client: client, selector: selector, pipeline: pipeline}, nil
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
