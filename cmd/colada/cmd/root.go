package cmd

import (
	"errors"

	"github.com/cosmos/cosmos-sdk/client"
	"github.com/spf13/cobra"

	"github.com/colada-chain/colada/internal/sandbox"
	"github.com/colada-chain/colada/x/poolmanager/client/cli"
)

var errNoScenario = errors.New("no scenario: set --scenario, COLADA_SCENARIO or scenario in the config file")

// NewRootCmd creates the colada command tree. Every invocation gets its own
// viper instance so tests can build the tree repeatedly.
func NewRootCmd() *cobra.Command {
	v := newViper()
	var cfg Config

	rootCmd := &cobra.Command{
		Use:           "colada",
		Short:         "Concentrated liquidity pool manager",
		Long:          "Quote, dry-run and serve a concentrated liquidity pool manager seeded from a scenario file.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := bindFlags(v, cmd.Root().PersistentFlags()); err != nil {
				return err
			}
			configPath, err := cmd.Flags().GetString(flagConfig)
			if err != nil {
				return err
			}
			if err := readConfigFile(v, configPath); err != nil {
				return err
			}
			cfg, err = loadConfig(v)
			return err
		},
	}

	rootCmd.PersistentFlags().String(flagConfig, "", "Config file (toml, yaml or json)")
	rootCmd.PersistentFlags().String(flagScenario, "", "Scenario file seeding the sandbox")
	rootCmd.PersistentFlags().String(flagLogLevel, "info", "Log level, e.g. info or poolmanager:debug,*:error")
	rootCmd.PersistentFlags().Bool(flagLogJSON, false, "Log as JSON")

	load := func(cmd *cobra.Command) (*cli.Env, error) {
		return loadEnv(cmd, cfg)
	}

	rootCmd.AddCommand(
		queryCommand(load),
		txCommand(load),
		serveCommand(func() Config { return cfg }),
	)

	return rootCmd
}

// loadEnv builds a fresh sandbox out of the configured scenario
func loadEnv(cmd *cobra.Command, cfg Config) (*cli.Env, error) {
	if cfg.Scenario == "" {
		return nil, errNoScenario
	}
	logger, err := newLogger(cmd.ErrOrStderr(), cfg)
	if err != nil {
		return nil, err
	}
	scenario, err := sandbox.LoadScenario(cfg.Scenario)
	if err != nil {
		return nil, err
	}
	return cli.NewEnv(logger, scenario)
}

func queryCommand(load cli.EnvLoader) *cobra.Command {
	cmd := &cobra.Command{
		Use:                        "query",
		Aliases:                    []string{"q"},
		Short:                      "Querying subcommands",
		SuggestionsMinimumDistance: 2,
		RunE:                       client.ValidateCmd,
	}
	cmd.AddCommand(cli.GetQueryCmd(load))
	return cmd
}

func txCommand(load cli.EnvLoader) *cobra.Command {
	cmd := &cobra.Command{
		Use:                        "tx",
		Short:                      "Transaction subcommands, dry-run against the scenario",
		SuggestionsMinimumDistance: 2,
		RunE:                       client.ValidateCmd,
	}
	cmd.AddCommand(cli.GetTxCmd(load))
	return cmd
}
