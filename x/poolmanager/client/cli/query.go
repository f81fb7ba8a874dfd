package cli

import (
	"fmt"
	"strconv"

	"github.com/cosmos/cosmos-sdk/client"
	"github.com/cosmos/cosmos-sdk/types/query"
	"github.com/spf13/cobra"

	"github.com/colada-chain/colada/x/poolmanager/keeper"
	"github.com/colada-chain/colada/x/poolmanager/types"
)

// GetQueryCmd returns the cli query commands for the poolmanager module
func GetQueryCmd(load EnvLoader) *cobra.Command {
	queryCmd := &cobra.Command{
		Use:                        types.ModuleName,
		Short:                      "Querying commands for the poolmanager module",
		DisableFlagParsing:         true,
		SuggestionsMinimumDistance: 2,
		RunE:                       client.ValidateCmd,
	}

	queryCmd.AddCommand(
		GetCmdQueryParams(load),
		GetCmdQueryPool(load),
		GetCmdQueryPools(load),
		GetCmdQueryShare(load),
		GetCmdQuerySimulate(load),
		GetCmdQuerySimulateRoute(load),
		GetCmdQueryComputeD(load),
		GetCmdQueryPrecision(load),
		GetCmdQueryBalanceAt(load),
		GetCmdQueryObserve(load),
	)

	return queryCmd
}

// queryCommand wires the common part of every query: load the env and hand
// a querier to run.
func queryCommand(load EnvLoader, run func(cmd *cobra.Command, env *Env, q keeper.Querier, args []string) (any, error)) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		env, err := load(cmd)
		if err != nil {
			return err
		}
		res, err := run(cmd, env, env.App.Querier, args)
		if err != nil {
			return err
		}
		return printJSON(cmd, res)
	}
}

// GetCmdQueryParams returns the command to query module parameters
func GetCmdQueryParams(load EnvLoader) *cobra.Command {
	return &cobra.Command{
		Use:   "params",
		Short: "Query the current poolmanager module parameters",
		Args:  cobra.NoArgs,
		RunE: queryCommand(load, func(cmd *cobra.Command, env *Env, q keeper.Querier, _ []string) (any, error) {
			return q.Params(env.App.Context())
		}),
	}
}

// GetCmdQueryPool returns the command to query a pool by its assets
func GetCmdQueryPool(load EnvLoader) *cobra.Command {
	return &cobra.Command{
		Use:   "pool [asset-a] [asset-b]",
		Short: "Query a pool by its asset pair",
		Long: `Query a pool, its state and its share supply. The assets may be given in
either order.

Example:
  $ colada query poolmanager pool uluna uusd`,
		Args: cobra.ExactArgs(2),
		RunE: queryCommand(load, func(cmd *cobra.Command, env *Env, q keeper.Querier, args []string) (any, error) {
			return q.Pool(env.App.Context(), env.PoolKey(args[0], args[1]))
		}),
	}
}

// GetCmdQueryPools returns the command to query all pools
func GetCmdQueryPools(load EnvLoader) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pools",
		Short: "Query all pools",
		Long: `Query all pools in pair key order with pagination support.

Example:
  $ colada query poolmanager pools --limit 10 --offset 20`,
		Args: cobra.NoArgs,
		RunE: queryCommand(load, func(cmd *cobra.Command, env *Env, q keeper.Querier, _ []string) (any, error) {
			limit, err := cmd.Flags().GetUint64(FlagLimit)
			if err != nil {
				return nil, err
			}
			offset, err := cmd.Flags().GetUint64(FlagOffset)
			if err != nil {
				return nil, err
			}
			return q.Pools(env.App.Context(), &types.QueryPoolsRequest{
				Pagination: &query.PageRequest{Limit: limit, Offset: offset, CountTotal: true},
			})
		}),
	}

	cmd.Flags().Uint64(FlagLimit, 100, "Maximum number of pools to return")
	cmd.Flags().Uint64(FlagOffset, 0, "Number of pools to skip")
	return cmd
}

// GetCmdQueryShare returns the command to value liquidity shares
func GetCmdQueryShare(load EnvLoader) *cobra.Command {
	return &cobra.Command{
		Use:   "share [asset-a] [asset-b] [amount]",
		Short: "Query the reserves backing an amount of shares",
		Args:  cobra.ExactArgs(3),
		RunE: queryCommand(load, func(cmd *cobra.Command, env *Env, q keeper.Querier, args []string) (any, error) {
			amount, err := parseAmount(args[2])
			if err != nil {
				return nil, err
			}
			return q.Share(env.App.Context(), env.PoolKey(args[0], args[1]), amount)
		}),
	}
}

// GetCmdQuerySimulate returns the command to quote a single pool swap
func GetCmdQuerySimulate(load EnvLoader) *cobra.Command {
	return &cobra.Command{
		Use:   "simulate [offer-asset] [amount] [ask-asset]",
		Short: "Simulate a swap in one pool",
		Long: `Quote the return, spread and commission of a swap without executing it.

Example:
  $ colada query poolmanager simulate uluna 1000000 uusd`,
		Args: cobra.ExactArgs(3),
		RunE: queryCommand(load, func(cmd *cobra.Command, env *Env, q keeper.Querier, args []string) (any, error) {
			amount, err := parseAmount(args[1])
			if err != nil {
				return nil, err
			}
			offer := types.NewAsset(env.Asset(args[0]), amount)
			return q.Simulation(env.App.Context(), offer, env.Asset(args[2]))
		}),
	}
}

// GetCmdQuerySimulateRoute returns the command to quote a swap chain
func GetCmdQuerySimulateRoute(load EnvLoader) *cobra.Command {
	return &cobra.Command{
		Use:   "simulate-route [amount] [asset] [asset] [asset...]",
		Short: "Simulate a swap chain through consecutive pools",
		Long: `Quote a multi-hop swap. The path lists every asset the chain passes through.

Example:
  $ colada query poolmanager simulate-route 1000000 uluna uusd astro`,
		Args: cobra.MinimumNArgs(3),
		RunE: queryCommand(load, func(cmd *cobra.Command, env *Env, q keeper.Querier, args []string) (any, error) {
			amount, err := parseAmount(args[0])
			if err != nil {
				return nil, err
			}
			return q.SimulateSwapOperations(env.App.Context(), amount, env.Path(args[1:]))
		}),
	}
}

// GetCmdQueryComputeD returns the command to query a pool invariant
func GetCmdQueryComputeD(load EnvLoader) *cobra.Command {
	return &cobra.Command{
		Use:   "compute-d [asset-a] [asset-b]",
		Short: "Query the invariant and virtual price of a pool",
		Args:  cobra.ExactArgs(2),
		RunE: queryCommand(load, func(cmd *cobra.Command, env *Env, q keeper.Querier, args []string) (any, error) {
			return q.ComputeD(env.App.Context(), env.PoolKey(args[0], args[1]))
		}),
	}
}

// GetCmdQueryPrecision returns the command to query an asset precision
func GetCmdQueryPrecision(load EnvLoader) *cobra.Command {
	return &cobra.Command{
		Use:   "precision [asset]",
		Short: "Query the decimal precision recorded for an asset",
		Args:  cobra.ExactArgs(1),
		RunE: queryCommand(load, func(cmd *cobra.Command, env *Env, q keeper.Querier, args []string) (any, error) {
			precision, err := q.Precision(env.App.Context(), env.Asset(args[0]))
			if err != nil {
				return nil, err
			}
			return map[string]any{"asset": env.Asset(args[0]).ID(), "precision": precision}, nil
		}),
	}
}

// GetCmdQueryBalanceAt returns the command to query a historical reserve
func GetCmdQueryBalanceAt(load EnvLoader) *cobra.Command {
	return &cobra.Command{
		Use:   "balance-at [asset-a] [asset-b] [asset] [height]",
		Short: "Query a reserve of a balance tracking pool at a height",
		Args:  cobra.ExactArgs(4),
		RunE: queryCommand(load, func(cmd *cobra.Command, env *Env, q keeper.Querier, args []string) (any, error) {
			height, err := strconv.ParseUint(args[3], 10, 64)
			if err != nil {
				return nil, fmt.Errorf("invalid height: %w", err)
			}
			return q.BalanceAt(env.App.Context(), env.PoolKey(args[0], args[1]), env.Asset(args[2]), height)
		}),
	}
}

// GetCmdQueryObserve returns the command to query the price oracle
func GetCmdQueryObserve(load EnvLoader) *cobra.Command {
	return &cobra.Command{
		Use:   "observe [asset-a] [asset-b] [seconds-ago]",
		Short: "Query the volume weighted price observed at or before a point in time",
		Args:  cobra.ExactArgs(3),
		RunE: queryCommand(load, func(cmd *cobra.Command, env *Env, q keeper.Querier, args []string) (any, error) {
			secondsAgo, err := strconv.ParseUint(args[2], 10, 64)
			if err != nil {
				return nil, fmt.Errorf("invalid seconds ago: %w", err)
			}
			return q.Observe(env.App.Context(), env.PoolKey(args[0], args[1]), secondsAgo)
		}),
	}
}
