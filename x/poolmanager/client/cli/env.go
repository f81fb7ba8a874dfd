package cli

import (
	"encoding/json"
	"fmt"

	"cosmossdk.io/log"
	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/spf13/cobra"

	"github.com/colada-chain/colada/internal/sandbox"
	"github.com/colada-chain/colada/x/poolmanager/types"
)

// Env is the host a command runs against: a sandbox seeded from a scenario.
// Transactions change only the in-process copy, so every tx command is a
// dry run against the scenario state.
type Env struct {
	App      *sandbox.App
	Scenario sandbox.Scenario
}

// EnvLoader builds the Env of a command.
type EnvLoader func(cmd *cobra.Command) (*Env, error)

// NewEnv starts a sandbox and applies the scenario to it.
func NewEnv(logger log.Logger, scenario sandbox.Scenario) (*Env, error) {
	app, err := sandbox.New(logger)
	if err != nil {
		return nil, err
	}
	if err := app.Apply(scenario); err != nil {
		return nil, fmt.Errorf("apply scenario: %w", err)
	}
	return &Env{App: app, Scenario: scenario}, nil
}

// Asset resolves a scenario asset name, falling back to a raw asset id.
func (e *Env) Asset(name string) types.AssetInfo {
	if info, err := e.Scenario.AssetInfo(name); err == nil {
		return info
	}
	return types.ParseAssetInfo(name)
}

// Account resolves a bech32 address or a sandbox account name.
func (e *Env) Account(name string) sdk.AccAddress {
	if addr, err := sdk.AccAddressFromBech32(name); err == nil {
		return addr
	}
	return sandbox.Addr(name)
}

// PoolKey resolves the pool of two asset names.
func (e *Env) PoolKey(a, b string) string {
	return types.PoolKey(e.Asset(a), e.Asset(b))
}

// Path turns a list of asset names into pool hops.
func (e *Env) Path(names []string) []types.SwapOperation {
	ops := make([]types.SwapOperation, 0, len(names)-1)
	for i := 1; i < len(names); i++ {
		ops = append(ops, types.NewPoolOperation(e.Asset(names[i-1]), e.Asset(names[i])))
	}
	return ops
}

func parseAmount(raw string) (math.Int, error) {
	amount, ok := math.NewIntFromString(raw)
	if !ok {
		return math.Int{}, fmt.Errorf("invalid amount %q", raw)
	}
	return amount, nil
}

// decFlag reads an optional decimal flag, nil when unset.
func decFlag(cmd *cobra.Command, name string) (*math.LegacyDec, error) {
	raw, err := cmd.Flags().GetString(name)
	if err != nil || raw == "" {
		return nil, err
	}
	dec, err := math.LegacyNewDecFromStr(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid --%s: %w", name, err)
	}
	return &dec, nil
}

func printJSON(cmd *cobra.Command, v any) error {
	bz, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(bz))
	return err
}
