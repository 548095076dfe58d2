package preflight

import (
	"context"

	"vouch/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// Options selects the optional checks.
type Options struct {
	// Remote enables the Gemini API round trip.
	Remote bool
}

// RunAll executes all applicable preflight checks for the given config.
func RunAll(ctx context.Context, cfg *config.Config, opts Options) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result

	// Staging directory (always checked)
	staging := CheckDirectoryAccess("Staging directory", cfg.Paths.StagingDir)
	results = append(results, staging)
	if staging.Passed {
		results = append(results, CheckFreeSpace("Staging free space", cfg.Paths.StagingDir, uint64(cfg.MaxUploadBytes())))
	}

	// Log directory (when configured)
	if cfg.Paths.LogDir != "" {
		results = append(results, CheckDirectoryAccess("Log directory", cfg.Paths.LogDir))
	}

	gemini := cfg.GetGemini()
	if opts.Remote {
		results = append(results, CheckGemini(ctx, "Gemini API", gemini))
	} else {
		results = append(results, CheckAPIKey("Gemini API key", gemini.APIKey))
	}
	return results
}

// Failed returns the checks that did not pass.
func Failed(results []Result) []Result {
	var failed []Result
	for _, r := range results {
		if !r.Passed {
			failed = append(failed, r)
		}
	}
	return failed
}
