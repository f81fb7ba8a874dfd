package cli

import (
	"fmt"

	"github.com/cosmos/cosmos-sdk/client"
	"github.com/spf13/cobra"

	"github.com/colada-chain/colada/x/poolmanager/types"
)

// GetTxCmd returns the transaction commands for the poolmanager module.
// They run against the in-process sandbox and print the settlement.
func GetTxCmd(load EnvLoader) *cobra.Command {
	txCmd := &cobra.Command{
		Use:                        types.ModuleName,
		Short:                      "Pool manager transaction subcommands",
		DisableFlagParsing:         true,
		SuggestionsMinimumDistance: 2,
		RunE:                       client.ValidateCmd,
	}

	txCmd.AddCommand(
		CmdSwap(load),
		CmdProvideLiquidity(load),
		CmdWithdrawLiquidity(load),
		CmdExecuteRoute(load),
	)

	return txCmd
}

func addSenderFlags(cmd *cobra.Command) {
	cmd.Flags().String(FlagFrom, "", "Sender account name or address")
	cmd.Flags().String(FlagReceiver, "", "Receiver account name or address, defaults to the sender")
	_ = cmd.MarkFlagRequired(FlagFrom)
}

func senderAndReceiver(cmd *cobra.Command, env *Env) (string, string, error) {
	from, err := cmd.Flags().GetString(FlagFrom)
	if err != nil {
		return "", "", err
	}
	if from == "" {
		return "", "", fmt.Errorf("--%s is required", FlagFrom)
	}
	to, err := cmd.Flags().GetString(FlagReceiver)
	if err != nil {
		return "", "", err
	}
	receiver := ""
	if to != "" {
		receiver = env.Account(to).String()
	}
	return env.Account(from).String(), receiver, nil
}

// CmdSwap returns a CLI command handler for a single pool swap
func CmdSwap(load EnvLoader) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "swap [offer-asset] [amount] [ask-asset]",
		Short: "Swap an asset in the pool of the pair",
		Long: `Swap an amount of the offer asset for the ask asset.

Example:
  $ colada tx poolmanager swap uluna 1000000 uusd --from trader --max-spread 0.01`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := load(cmd)
			if err != nil {
				return err
			}
			sender, receiver, err := senderAndReceiver(cmd, env)
			if err != nil {
				return err
			}
			amount, err := parseAmount(args[1])
			if err != nil {
				return err
			}
			beliefPrice, err := decFlag(cmd, FlagBeliefPrice)
			if err != nil {
				return err
			}
			maxSpread, err := decFlag(cmd, FlagMaxSpread)
			if err != nil {
				return err
			}

			res, err := env.App.Keeper.Swap(env.App.Context(), types.MsgSwap{
				Sender:      sender,
				OfferAsset:  types.NewAsset(env.Asset(args[0]), amount),
				AskAsset:    env.Asset(args[2]),
				BeliefPrice: beliefPrice,
				MaxSpread:   maxSpread,
				To:          receiver,
			})
			if err != nil {
				return err
			}
			return printJSON(cmd, res)
		},
	}

	addSenderFlags(cmd)
	cmd.Flags().String(FlagBeliefPrice, "", "Expected price, offer units per ask unit")
	cmd.Flags().String(FlagMaxSpread, "", "Maximum accepted spread, default 0.005")
	return cmd
}

// CmdProvideLiquidity returns a CLI command handler for depositing liquidity
func CmdProvideLiquidity(load EnvLoader) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "provide [asset-a] [amount-a] [asset-b] [amount-b]",
		Short: "Provide liquidity to a pool",
		Long: `Deposit one or both pool assets. A zero amount skips that side, which makes
the deposit one-sided.

Example:
  $ colada tx poolmanager provide uluna 1000000 uusd 1000000 --from lp
  $ colada tx poolmanager provide uluna 1000000 uusd 0 --from lp --slippage-tolerance 0.02`,
		Args: cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := load(cmd)
			if err != nil {
				return err
			}
			sender, receiver, err := senderAndReceiver(cmd, env)
			if err != nil {
				return err
			}
			tolerance, err := decFlag(cmd, FlagSlippageTolerance)
			if err != nil {
				return err
			}

			var assets []types.Asset
			for _, pair := range [][2]string{{args[0], args[1]}, {args[2], args[3]}} {
				amount, err := parseAmount(pair[1])
				if err != nil {
					return err
				}
				if amount.IsZero() {
					continue
				}
				assets = append(assets, types.NewAsset(env.Asset(pair[0]), amount))
			}

			res, err := env.App.Keeper.ProvideLiquidity(env.App.Context(), types.MsgProvideLiquidity{
				Sender:            sender,
				PoolKey:           env.PoolKey(args[0], args[2]),
				Assets:            assets,
				SlippageTolerance: tolerance,
				Receiver:          receiver,
			})
			if err != nil {
				return err
			}
			return printJSON(cmd, res)
		},
	}

	addSenderFlags(cmd)
	cmd.Flags().String(FlagSlippageTolerance, "", "Maximum accepted slippage, default 0.005")
	return cmd
}

// CmdWithdrawLiquidity returns a CLI command handler for burning shares
func CmdWithdrawLiquidity(load EnvLoader) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "withdraw [asset-a] [asset-b] [shares]",
		Short: "Burn liquidity shares for the pro-rata reserves",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := load(cmd)
			if err != nil {
				return err
			}
			sender, _, err := senderAndReceiver(cmd, env)
			if err != nil {
				return err
			}
			shares, err := parseAmount(args[2])
			if err != nil {
				return err
			}

			res, err := env.App.Keeper.WithdrawLiquidity(env.App.Context(), types.MsgWithdrawLiquidity{
				Sender:  sender,
				PoolKey: env.PoolKey(args[0], args[1]),
				Amount:  shares,
			})
			if err != nil {
				return err
			}
			return printJSON(cmd, res)
		},
	}

	cmd.Flags().String(FlagFrom, "", "Sender account name or address")
	_ = cmd.MarkFlagRequired(FlagFrom)
	return cmd
}

// CmdExecuteRoute returns a CLI command handler for a swap chain
func CmdExecuteRoute(load EnvLoader) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "route [amount] [asset] [asset] [asset...]",
		Short: "Execute a swap chain through consecutive pools",
		Long: `Swap along a path of assets. The chain settles atomically: if any hop fails
or the receiver gains less than --minimum-receive, nothing changes.

Example:
  $ colada tx poolmanager route 1000000 uluna uusd astro --from trader --minimum-receive 990000`,
		Args: cobra.MinimumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := load(cmd)
			if err != nil {
				return err
			}
			sender, receiver, err := senderAndReceiver(cmd, env)
			if err != nil {
				return err
			}
			amount, err := parseAmount(args[0])
			if err != nil {
				return err
			}
			maxSpread, err := decFlag(cmd, FlagMaxSpread)
			if err != nil {
				return err
			}

			msg := types.MsgExecuteSwapOperations{
				Sender:      sender,
				Operations:  env.Path(args[1:]),
				OfferAmount: amount,
				To:          receiver,
				MaxSpread:   maxSpread,
			}
			if raw, _ := cmd.Flags().GetString(FlagMinimumReceive); raw != "" {
				minimum, err := parseAmount(raw)
				if err != nil {
					return err
				}
				msg.MinimumReceive = &minimum
			}

			res, err := env.App.Keeper.ExecuteSwapOperations(env.App.Context(), msg)
			if err != nil {
				return err
			}
			return printJSON(cmd, res)
		},
	}

	addSenderFlags(cmd)
	cmd.Flags().String(FlagMinimumReceive, "", "Minimum amount of the last asset the receiver must gain")
	cmd.Flags().String(FlagMaxSpread, "", "Maximum accepted spread per hop, default 0.005")
	return cmd
}
