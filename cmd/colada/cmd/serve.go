package cmd

import (
	"fmt"

	"cosmossdk.io/log"
	"github.com/spf13/cobra"

	"github.com/colada-chain/colada/api"
	"github.com/colada-chain/colada/internal/sandbox"
)

func serveCommand(config func() Config) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the read-only quote API over the scenario",
		Long: `Seed a sandbox from the scenario and serve quotes over HTTP until
interrupted. Nothing the API does changes the sandbox.

Example:
  $ COLADA_API_PORT=8080 colada serve --scenario scenario.yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config()
			env, err := loadEnv(cmd, cfg)
			if err != nil {
				return err
			}
			logger, err := newLogger(cmd.ErrOrStderr(), cfg)
			if err != nil {
				return err
			}
			server, err := newServer(env.App, cfg, logger)
			if err != nil {
				return err
			}
			return server.Start(cmd.Context())
		},
	}
}

func newServer(app *sandbox.App, cfg Config, logger log.Logger) (*api.Server, error) {
	server, err := api.NewServer(app, cfg.API, logger)
	if err != nil {
		return nil, fmt.Errorf("quote API: %w", err)
	}
	logger.Info("quote API configured",
		"addr", cfg.API.Host+":"+cfg.API.Port,
		"metrics", cfg.API.MetricsEnabled,
		"rate_limit", cfg.API.RateLimitRPS,
	)
	return server, nil
}
