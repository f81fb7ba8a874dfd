package sandbox_test

import (
	"context"
	"testing"
	"time"

	"cosmossdk.io/log"
	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"
	sdkerrors "github.com/cosmos/cosmos-sdk/types/errors"
	"github.com/stretchr/testify/require"

	"github.com/colada-chain/colada/internal/sandbox"
	"github.com/colada-chain/colada/x/poolmanager/types"
)

func newApp(t *testing.T) *sandbox.App {
	t.Helper()
	app, err := sandbox.New(log.NewNopLogger())
	require.NoError(t, err)
	return app
}

func TestBankMovesAndTracksSupply(t *testing.T) {
	app := newApp(t)
	ctx := app.Context()
	alice, bob := sandbox.Addr("alice"), sandbox.Addr("bob")

	require.NoError(t, app.Bank.Fund(ctx, alice, sdk.NewCoins(sdk.NewInt64Coin("uluna", 1_000))))
	require.Equal(t, int64(1_000), app.Bank.GetSupply(ctx, "uluna").Amount.Int64())

	require.NoError(t, app.Bank.SendCoins(ctx, alice, bob, sdk.NewCoins(sdk.NewInt64Coin("uluna", 400))))
	require.Equal(t, int64(600), app.Bank.GetBalance(ctx, alice, "uluna").Amount.Int64())
	require.Equal(t, int64(400), app.Bank.GetBalance(ctx, bob, "uluna").Amount.Int64())

	err := app.Bank.SendCoins(ctx, alice, bob, sdk.NewCoins(sdk.NewInt64Coin("uluna", 601)))
	require.ErrorIs(t, err, sdkerrors.ErrInsufficientFunds)

	require.NoError(t, app.Bank.SendCoinsFromAccountToModule(ctx, bob, types.ModuleName, sdk.NewCoins(sdk.NewInt64Coin("uluna", 400))))
	require.NoError(t, app.Bank.BurnCoins(ctx, types.ModuleName, sdk.NewCoins(sdk.NewInt64Coin("uluna", 150))))
	require.Equal(t, int64(850), app.Bank.GetSupply(ctx, "uluna").Amount.Int64())
	require.Equal(t, int64(250), app.Bank.GetBalance(ctx, types.ModuleAddress(), "uluna").Amount.Int64())

	err = app.Bank.BurnCoins(ctx, types.ModuleName, sdk.NewCoins(sdk.NewInt64Coin("uluna", 251)))
	require.ErrorIs(t, err, sdkerrors.ErrInsufficientFunds)
}

func TestBankMetadata(t *testing.T) {
	app := newApp(t)
	ctx := app.Context()

	_, found := app.Bank.GetDenomMetaData(ctx, "uusd")
	require.False(t, found)

	require.NoError(t, app.Bank.RegisterDenom(ctx, "uusd", "usd", 6))
	metadata, found := app.Bank.GetDenomMetaData(ctx, "uusd")
	require.True(t, found)
	require.Equal(t, "usd", metadata.Display)
	require.Len(t, metadata.DenomUnits, 2)
	require.Equal(t, uint32(6), metadata.DenomUnits[1].Exponent)
}

func TestTokenLedger(t *testing.T) {
	app := newApp(t)
	ctx := app.Context()
	token := sandbox.TokenAddr("astro")
	alice, bob := sandbox.Addr("alice"), sandbox.Addr("bob")

	require.ErrorIs(t, app.Tokens.Mint(ctx, token, alice, math.NewInt(10)), types.ErrInvalidAsset)

	app.Tokens.Register(ctx, token, 8)
	decimals, err := app.Tokens.Decimals(ctx, token)
	require.NoError(t, err)
	require.Equal(t, uint32(8), decimals)

	require.NoError(t, app.Tokens.Mint(ctx, token, alice, math.NewInt(100)))

	var seen []math.Int
	app.Tokens.OnTransfer(func(_ context.Context, contract, from, to sdk.AccAddress, amount math.Int) error {
		require.True(t, contract.Equals(token))
		require.True(t, from.Equals(alice))
		require.True(t, to.Equals(bob))
		seen = append(seen, amount)
		return nil
	})

	require.NoError(t, app.Tokens.Transfer(ctx, token, alice, bob, math.NewInt(30)))
	require.Len(t, seen, 1)
	require.Equal(t, int64(30), seen[0].Int64())

	balance, err := app.Tokens.Balance(ctx, token, bob)
	require.NoError(t, err)
	require.Equal(t, int64(30), balance.Int64())

	err = app.Tokens.Transfer(ctx, token, alice, bob, math.NewInt(71))
	require.ErrorIs(t, err, sdkerrors.ErrInsufficientFunds)
	require.ErrorIs(t, app.Tokens.Transfer(ctx, token, alice, bob, math.NewInt(-1)), types.ErrNegativeAmount)
	require.Len(t, seen, 1)
}

func TestNextBlockAdvancesClock(t *testing.T) {
	app := newApp(t)
	require.Equal(t, int64(1), app.Height())
	require.Equal(t, int64(sandbox.GenesisTime), app.BlockTime().Unix())

	ctx := app.Context()
	require.NoError(t, app.Bank.Fund(ctx, sandbox.Addr("alice"), sdk.NewCoins(sdk.NewInt64Coin("uluna", 5))))

	app.NextBlock(6 * time.Second)
	require.Equal(t, int64(2), app.Height())
	require.Equal(t, int64(sandbox.GenesisTime+6), app.BlockTime().Unix())

	// committed state survives the block boundary
	require.Equal(t, int64(5), app.Bank.GetBalance(app.Context(), sandbox.Addr("alice"), "uluna").Amount.Int64())
}

const scenarioYAML = `
assets:
  - name: uluna
    precision: 6
  - name: uusd
    precision: 6
  - name: astro
    token: true
    precision: 6
accounts:
  lp:
    uluna: "2000000000"
    uusd: "2000000000"
    astro: "1000000000"
  trader:
    uluna: "50000000"
params:
  fee_address: fees
  maker_fee_rate: "0.1"
pools:
  - assets: [uluna, uusd]
    provider: lp
    liquidity: ["1000000000", "1000000000"]
  - assets: [uusd, astro]
    amp: "20"
    provider: lp
    track_balances: true
    liquidity: ["1000000000", "1000000000"]
`

func TestScenarioApply(t *testing.T) {
	s, err := sandbox.ParseScenario([]byte(scenarioYAML))
	require.NoError(t, err)
	require.Len(t, s.Assets, 3)
	require.Len(t, s.Pools, 2)

	astro, err := s.AssetInfo("astro")
	require.NoError(t, err)
	require.False(t, astro.IsNative())
	_, err = s.AssetInfo("missing")
	require.Error(t, err)

	app := newApp(t)
	require.NoError(t, app.Apply(s))

	ctx := app.Context()
	pools, err := app.Keeper.GetAllPools(ctx)
	require.NoError(t, err)
	require.Len(t, pools, 2)

	usdAstro, err := app.Keeper.GetPoolByAssets(ctx, types.NativeAsset("uusd"), astro)
	require.NoError(t, err)
	require.True(t, usdAstro.TrackBalances)
	require.True(t, usdAstro.State.Future.Amp.Equal(math.LegacyNewDec(20)))

	params, err := app.Keeper.GetParams(ctx)
	require.NoError(t, err)
	require.True(t, params.MakerFeeRate.Equal(math.LegacyMustNewDecFromStr("0.1")))
	require.Equal(t, sandbox.Addr("fees").String(), params.FeeAddress)

	require.Equal(t, int64(50_000_000), app.Bank.GetBalance(ctx, sandbox.Addr("trader"), "uluna").Amount.Int64())
	lpUsd := app.Bank.GetBalance(ctx, sandbox.Addr("lp"), "uusd").Amount
	require.Equal(t, int64(0), lpUsd.Int64())
}

func TestParseScenarioRejectsUnknownFields(t *testing.T) {
	_, err := sandbox.ParseScenario([]byte("assets: []\nunknown: 1\n"))
	require.Error(t, err)
}
