package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"vouch/internal/api"
	"vouch/internal/audit"
)

func newModelsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "models",
		Short: "Show the models the next audit will try, in order",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			stack, err := ctx.buildStack()
			if err != nil {
				return err
			}
			candidates := stack.selector.Resolve(cmd.Context())

			if ctx.JSONMode() {
				return writeJSON(cmd, api.FromCandidates(candidates))
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Mode: %s\n\n", cfg.Models.Mode)
			rows := make([][]string, 0, len(candidates))
			for _, c := range candidates {
				rows = append(rows, []string{strconv.Itoa(c.Priority), c.Identifier, audit.EngineLabel(c.Identifier)})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"#", "Model", "Engine"},
				rows,
				[]columnAlignment{alignRight, alignLeft, alignLeft},
			))
			return nil
		},
	}
}
