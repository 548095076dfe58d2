package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"vouch/internal/api"
	"vouch/internal/audit"
	"vouch/internal/services"
	"vouch/internal/staging"
)

var errAuditInProgress = errors.New("another audit is already running")

func newAuditCommand(ctx *commandContext) *cobra.Command {
	var acknowledged bool
	var quiet bool

	cmd := &cobra.Command{
		Use:   "audit FILE",
		Short: "Audit a video and print the liability report",
		Long: `Upload a video to Gemini, screen it against the Indian media-law checklist,
and print the resulting liability report as Markdown.

The report is an automated screening aid and not legal advice. Pass
--acknowledge to confirm this when server.require_acknowledgement is set.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if cfg.Server.RequireAcknowledgement && !acknowledged {
				return errors.New("this report is not legal advice; rerun with --acknowledge to continue")
			}

			path := strings.TrimSpace(args[0])
			info, err := os.Stat(path)
			if err != nil {
				return fmt.Errorf("read video: %w", err)
			}
			if info.IsDir() {
				return fmt.Errorf("read video: %s is a directory", path)
			}
			if limit := cfg.MaxUploadBytes(); limit > 0 && info.Size() > limit {
				return fmt.Errorf("%w: %s is %s, limit is %s",
					staging.ErrQuotaExceeded, filepath.Base(path), formatBytes(info.Size()), formatBytes(limit))
			}

			lock := flock.New(cfg.LockPath())
			ok, err := lock.TryLock()
			if err != nil {
				return fmt.Errorf("acquire audit lock: %w", err)
			}
			if !ok {
				return errAuditInProgress
			}
			defer func() { _ = lock.Unlock() }()

			data, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("read video: %w", err)
			}

			stack, err := ctx.buildStack()
			if err != nil {
				return err
			}

			stderr := cmd.ErrOrStderr()
			colorize := shouldColorize(stderr)
			progress := func(stage audit.Stage) {
				if quiet || ctx.JSONMode() {
					return
				}
				fmt.Fprintln(stderr, renderProgress(stage.Percent(), stage.Message(), colorize))
			}

			result, err := stack.pipeline.RunAuditWithProgress(cmd.Context(), audit.Upload{
				Name: filepath.Base(path),
				Data: data,
			}, progress)
			if err != nil {
				if ctx.JSONMode() {
					if encodeErr := writeJSON(cmd, api.FromError(err)); encodeErr != nil {
						return encodeErr
					}
				} else {
					fmt.Fprintln(stderr, services.UserMessage(err))
				}
				return fmt.Errorf("audit failed: %w", err)
			}

			if ctx.JSONMode() {
				return writeJSON(cmd, api.FromResult(result))
			}
			fmt.Fprintln(cmd.OutOrStdout(), audit.Render(*result))
			return nil
		},
	}

	cmd.Flags().BoolVar(&acknowledged, "acknowledge", false, "Confirm the report is a screening aid and not legal advice")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Suppress progress output")
	return cmd
}
