package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"vouch/internal/staging"
)

func newStagingCommand(ctx *commandContext) *cobra.Command {
	stagingCmd := &cobra.Command{
		Use:   "staging",
		Short: "Manage locally staged uploads",
	}

	stagingCmd.AddCommand(newStagingListCommand(ctx))
	stagingCmd.AddCommand(newStagingCleanCommand(ctx))

	return stagingCmd
}

func newStagingListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List staged uploads",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			stagingDir := strings.TrimSpace(cfg.Paths.StagingDir)
			files, err := staging.List(stagingDir)
			if err != nil {
				return fmt.Errorf("list staged files: %w", err)
			}

			var totalSize int64
			for _, f := range files {
				totalSize += f.Size
			}

			if ctx.JSONMode() {
				if files == nil {
					files = []staging.FileInfo{}
				}
				return writeJSON(cmd, map[string]any{
					"staging_dir":      stagingDir,
					"files":            files,
					"total_size_bytes": totalSize,
				})
			}

			out := cmd.OutOrStdout()
			if len(files) == 0 {
				fmt.Fprintln(out, "No staged uploads found")
				return nil
			}

			fmt.Fprintf(out, "Staging directory: %s\n\n", stagingDir)
			rows := make([][]string, 0, len(files))
			for _, f := range files {
				age := time.Since(f.ModTime).Truncate(time.Minute)
				rows = append(rows, []string{f.Name, formatDuration(age), formatBytes(f.Size)})
			}
			fmt.Fprint(out, renderTable(
				[]string{"File", "Age", "Size"},
				rows,
				[]columnAlignment{alignLeft, alignRight, alignRight},
			))
			fmt.Fprintf(out, "\nTotal: %d files, %s\n", len(files), formatBytes(totalSize))
			return nil
		},
	}
}

func newStagingCleanCommand(ctx *commandContext) *cobra.Command {
	var maxAge time.Duration
	var cleanAll bool

	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Remove staged uploads left behind by interrupted audits",
		Long: `Remove staged uploads older than the configured staleness window
(staging.stale_after_hours). Override the window with --max-age, or pass
--all to remove every staged upload regardless of age.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			age := cfg.StaleAfter()
			if cmd.Flags().Changed("max-age") {
				age = maxAge
			}
			if cleanAll {
				age = 0
			}

			lock := flock.New(cfg.LockPath())
			ok, err := lock.TryLock()
			if err != nil {
				return fmt.Errorf("acquire audit lock: %w", err)
			}
			if !ok {
				return fmt.Errorf("%w; staged uploads are in use", errAuditInProgress)
			}
			defer func() { _ = lock.Unlock() }()

			result := staging.CleanStale(cmd.Context(), cfg.Paths.StagingDir, age, ctx.ensureLogger())
			if ctx.JSONMode() {
				return writeStagingCleanJSON(cmd, result)
			}
			printStagingCleanResult(cmd, result)
			return nil
		},
	}

	cmd.Flags().DurationVar(&maxAge, "max-age", 0, "Remove uploads older than this (default staging.stale_after_hours)")
	cmd.Flags().BoolVar(&cleanAll, "all", false, "Remove all staged uploads")
	return cmd
}

func printStagingCleanResult(cmd *cobra.Command, result staging.CleanStaleResult) {
	out := cmd.OutOrStdout()
	if len(result.Removed) == 0 && len(result.Errors) == 0 {
		fmt.Fprintln(out, "No staged uploads to clean")
		return
	}
	fmt.Fprintf(out, "Removed %d staged uploads", len(result.Removed))
	if len(result.Errors) > 0 {
		fmt.Fprintf(out, ", %d errors", len(result.Errors))
	}
	fmt.Fprintln(out)
	for _, e := range result.Errors {
		fmt.Fprintf(out, "  Error: %s: %v\n", e.Path, e.Error)
	}
}

func writeStagingCleanJSON(cmd *cobra.Command, result staging.CleanStaleResult) error {
	errs := make([]string, 0, len(result.Errors))
	for _, e := range result.Errors {
		errs = append(errs, fmt.Sprintf("%s: %v", e.Path, e.Error))
	}
	return writeJSON(cmd, map[string]any{
		"removed": len(result.Removed),
		"errors":  errs,
	})
}

func formatDuration(d time.Duration) string {
	switch {
	case d < time.Hour:
		return fmt.Sprintf("%dm", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd", int(d.Hours()/24))
	}
}
