package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"moviely/internal/api"
	"moviely/internal/editor"
	"moviely/internal/logging"
)

func newServeCommand(ctx *commandContext) *cobra.Command {
	var bind string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve stored projects over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := logging.NewFromConfig(cfg)
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			manager, err := editor.NewFromConfig(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer manager.Close()

			address := cfg.Server.Bind
			if strings.TrimSpace(bind) != "" {
				address = bind
			}
			if cfg.Server.APIToken == "" {
				logging.WarnWithContext(logger, "api token not configured", "api_unauthenticated",
					logging.String("bind", address),
					logging.String(logging.FieldImpact, "any client that can reach the bind address can edit projects"),
					logging.String(logging.FieldErrorHint, "set server.api_token or MOVIELY_API_TOKEN"),
				)
			}
			server, err := api.NewServer(address, api.ServerConfig{
				Editor:  manager,
				Token:   cfg.Server.APIToken,
				Version: version,
				Logger:  logger,
			})
			if err != nil {
				return err
			}
			return server.Run(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&bind, "bind", "", "Listen address (overrides server.bind)")
	return cmd
}
