package keeper

import (
	"testing"

	"cosmossdk.io/log"
	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/stretchr/testify/require"

	"github.com/colada-chain/colada/internal/sandbox"
	"github.com/colada-chain/colada/x/poolmanager/types"
)

// SetupTestApp initializes a sandbox with the pool manager and its collaborators
func SetupTestApp(t testing.TB) (*sandbox.App, sdk.Context) {
	app, err := sandbox.New(log.NewNopLogger())
	require.NoError(t, err)
	return app, app.Context()
}

// RegisterNative registers bank metadata for a denom with precision decimals
func RegisterNative(t testing.TB, app *sandbox.App, ctx sdk.Context, denom string, precision uint32) types.AssetInfo {
	require.NoError(t, app.Bank.RegisterDenom(ctx, denom, "display"+denom, precision))
	return types.NativeAsset(denom)
}

// RegisterToken deploys a sandbox token with decimals
func RegisterToken(t testing.TB, app *sandbox.App, ctx sdk.Context, name string, decimals uint32) types.AssetInfo {
	app.Tokens.Register(ctx, sandbox.TokenAddr(name), decimals)
	return types.TokenAsset(sandbox.TokenAddr(name).String())
}

// FundAccount credits amount of asset to addr
func FundAccount(t testing.TB, app *sandbox.App, ctx sdk.Context, addr sdk.AccAddress, asset types.AssetInfo, amount math.Int) {
	if asset.IsNative() {
		require.NoError(t, app.Bank.Fund(ctx, addr, sdk.NewCoins(sdk.NewCoin(asset.Denom, amount))))
		return
	}
	contract, err := sdk.AccAddressFromBech32(asset.ContractAddr)
	require.NoError(t, err)
	require.NoError(t, app.Tokens.Mint(ctx, contract, addr, amount))
}

// Balance returns the balance of asset held by addr
func Balance(t testing.TB, app *sandbox.App, ctx sdk.Context, addr sdk.AccAddress, asset types.AssetInfo) math.Int {
	if asset.IsNative() {
		return app.Bank.GetBalance(ctx, addr, asset.Denom).Amount
	}
	contract, err := sdk.AccAddressFromBech32(asset.ContractAddr)
	require.NoError(t, err)
	balance, err := app.Tokens.Balance(ctx, contract, addr)
	require.NoError(t, err)
	return balance
}
