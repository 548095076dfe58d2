package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"vouch/internal/preflight"
)

type statusCheckJSON struct {
	Name   string `json:"name"`
	Passed bool   `json:"passed"`
	Detail string `json:"detail,omitempty"`
}

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var offline bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Check configuration, directories, and Gemini connectivity",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			results := preflight.RunAll(cmd.Context(), cfg, preflight.Options{Remote: !offline})
			failed := preflight.Failed(results)

			if ctx.JSONMode() {
				checks := make([]statusCheckJSON, 0, len(results))
				for _, r := range results {
					checks = append(checks, statusCheckJSON{Name: r.Name, Passed: r.Passed, Detail: r.Detail})
				}
				if err := writeJSON(cmd, map[string]any{
					"models_mode": cfg.Models.Mode,
					"checks":      checks,
					"healthy":     len(failed) == 0,
				}); err != nil {
					return err
				}
			} else {
				out := cmd.OutOrStdout()
				colorize := shouldColorize(out)
				for _, line := range renderSectionHeader("Vouch", colorize) {
					fmt.Fprintln(out, line)
				}
				fmt.Fprintln(out, renderStatusLine("Model selection", statusInfo, cfg.Models.Mode, colorize))
				for _, r := range results {
					kind := statusOK
					if !r.Passed {
						kind = statusError
					}
					fmt.Fprintln(out, renderStatusLine(r.Name, kind, r.Detail, colorize))
				}
			}

			if len(failed) > 0 {
				return errors.New("one or more checks failed")
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&offline, "offline", false, "Skip the Gemini API round trip and only check the key is set")
	return cmd
}
