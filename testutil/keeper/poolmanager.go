package keeper

import (
	"testing"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/stretchr/testify/require"

	"github.com/colada-chain/colada/internal/sandbox"
	"github.com/colada-chain/colada/x/poolmanager/keeper"
	"github.com/colada-chain/colada/x/poolmanager/types"
)

// PoolManagerKeeper creates a test keeper over sandbox collaborators
func PoolManagerKeeper(t testing.TB) (keeper.Keeper, sdk.Context) {
	app, ctx := SetupTestApp(t)
	return app.Keeper, ctx
}

// CreateTestPool creates a pool with default parameters at price scale 1 and
// seeds it with amountA and amountB from a funded provider. It returns the
// pool key.
func CreateTestPool(t testing.TB, app *sandbox.App, ctx sdk.Context, a, b types.AssetInfo, amountA, amountB math.Int) string {
	provider := sandbox.Addr("pool_provider")
	FundAccount(t, app, ctx, provider, a, amountA)
	FundAccount(t, app, ctx, provider, b, amountB)

	resp, err := app.Keeper.CreatePool(ctx, types.MsgCreatePool{
		Creator:           provider.String(),
		AssetInfos:        [2]types.AssetInfo{a, b},
		AmpGamma:          types.DefaultAmpGamma(),
		Params:            types.DefaultPoolParams(),
		InitialPriceScale: math.LegacyOneDec(),
	})
	require.NoError(t, err)

	_, err = app.Keeper.ProvideLiquidity(ctx, types.MsgProvideLiquidity{
		Sender:  provider.String(),
		PoolKey: resp.PoolKey,
		Assets:  []types.Asset{types.NewAsset(a, amountA), types.NewAsset(b, amountB)},
	})
	require.NoError(t, err)
	return resp.PoolKey
}
