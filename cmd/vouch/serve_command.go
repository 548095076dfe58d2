package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"vouch/internal/api"
	"vouch/internal/logging"
	"vouch/internal/staging"
)

func newServeCommand(ctx *commandContext) *cobra.Command {
	var bind string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the audit HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			stack, err := ctx.buildStack()
			if err != nil {
				return err
			}
			logger := ctx.ensureLogger()

			swept := staging.CleanStale(cmd.Context(), cfg.Paths.StagingDir, cfg.StaleAfter(), logger)
			if len(swept.Removed) > 0 {
				logger.Info("removed stale staged uploads",
					logging.Int("count", len(swept.Removed)),
					logging.String(logging.FieldEventType, "staging_swept"),
				)
			}

			opts := api.OptionsFromConfig(cfg)
			if bind != "" {
				opts.Bind = bind
			}
			server := api.NewServer(stack.pipeline, stack.selector, stack.client, opts, logger)
			if err := server.Start(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Listening on http://%s\n", server.Addr())

			<-cmd.Context().Done()
			server.Stop()
			return nil
		},
	}

	cmd.Flags().StringVar(&bind, "bind", "", "Listen address (default paths.api_bind)")
	return cmd
}
