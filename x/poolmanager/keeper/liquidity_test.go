package keeper_test

import (
	"time"

	"cosmossdk.io/math"

	keepertest "github.com/colada-chain/colada/testutil/keeper"
	"github.com/colada-chain/colada/x/poolmanager/types"
)

func (s *KeeperTestSuite) provideMsg(poolKey string, assets ...types.Asset) types.MsgProvideLiquidity {
	return types.MsgProvideLiquidity{
		Sender:  s.bob.String(),
		PoolKey: poolKey,
		Assets:  assets,
	}
}

func (s *KeeperTestSuite) TestProvideBalanced() {
	pool := s.pool(s.lunaUsd)
	supplyBefore := s.app.Bank.GetSupply(s.ctx, pool.LPDenom).Amount

	resp, err := s.app.Keeper.ProvideLiquidity(s.ctx, s.provideMsg(s.lunaUsd,
		types.NewAsset(s.luna, math.NewInt(100_000_000)),
		types.NewAsset(s.usd, math.NewInt(100_000_000)),
	))
	s.Require().NoError(err)

	// a tenth of the pool buys a tenth of the supply
	expected := supplyBefore.QuoRaw(10)
	s.Require().True(resp.Share.Sub(expected).Abs().LTE(math.NewInt(1_000)), "share %s, expected %s", resp.Share, expected)
	s.Require().True(resp.Locked.IsZero())
	s.Require().Equal(resp.Share.String(), s.app.Bank.GetBalance(s.ctx, s.bob, pool.LPDenom).Amount.String())

	after := s.pool(s.lunaUsd)
	s.Require().Equal(seedAmount.AddRaw(100_000_000).String(), after.Reserves[0].String())
	s.Require().Equal(seedAmount.AddRaw(100_000_000).String(), after.Reserves[1].String())
	s.Require().True(pool.State.Price.PriceScale.Equal(after.State.Price.PriceScale))
	s.Require().True(s.hasEvent(types.EventTypeProvideLiquidity))
	s.requireReservesBacked()
	s.requireUnlocked(s.lunaUsd)
}

func (s *KeeperTestSuite) TestProvideOneSided() {
	tolerance := math.LegacyMustNewDecFromStr("0.05")
	msg := s.provideMsg(s.lunaUsd, types.NewAsset(s.luna, math.NewInt(100_000_000)))
	msg.SlippageTolerance = &tolerance

	resp, err := s.app.Keeper.ProvideLiquidity(s.ctx, msg)
	s.Require().NoError(err)
	s.Require().True(resp.Share.IsPositive())
	s.Require().True(resp.Slippage.IsPositive())
	s.Require().True(resp.Slippage.LTE(tolerance))

	after := s.pool(s.lunaUsd)
	s.Require().Equal(seedAmount.AddRaw(100_000_000).String(), after.Reserves[0].String())
	s.Require().Equal(seedAmount.String(), after.Reserves[1].String())
	s.requireReservesBacked()

	// the imbalance fee alone exceeds a tight tolerance
	tight := math.LegacyMustNewDecFromStr("0.0001")
	msg.SlippageTolerance = &tight
	_, err = s.app.Keeper.ProvideLiquidity(s.ctx, msg)
	s.Require().ErrorIs(err, types.ErrSlippageToleranceExceeded)
	s.Require().Equal(seedAmount.AddRaw(100_000_000).String(), s.pool(s.lunaUsd).Reserves[0].String())
}

func (s *KeeperTestSuite) TestProvideToReceiver() {
	msg := s.provideMsg(s.usdAstro,
		types.NewAsset(s.usd, math.NewInt(10_000_000)),
		types.NewAsset(s.astro, math.NewInt(10_000_000)),
	)
	msg.Receiver = s.alice.String()

	resp, err := s.app.Keeper.ProvideLiquidity(s.ctx, msg)
	s.Require().NoError(err)

	lpDenom := s.pool(s.usdAstro).LPDenom
	s.Require().Equal(resp.Share.String(), s.app.Bank.GetBalance(s.ctx, s.alice, lpDenom).Amount.String())
	s.Require().True(s.app.Bank.GetBalance(s.ctx, s.bob, lpDenom).Amount.IsZero())
	s.Require().Equal(seedAmount.SubRaw(10_000_000).String(), s.balance(s.bob, s.astro).String())
}

func (s *KeeperTestSuite) TestProvideErrors() {
	// the first deposit into a pool must be two sided
	created, err := s.app.Keeper.CreatePool(s.ctx, s.createMsg(s.luna, s.astro))
	s.Require().NoError(err)
	_, err = s.app.Keeper.ProvideLiquidity(s.ctx, s.provideMsg(created.PoolKey, types.NewAsset(s.luna, math.NewInt(1_000_000))))
	s.Require().ErrorIs(err, types.ErrInvalidZeroAmount)

	// and large enough to lock the minimum liquidity
	_, err = s.app.Keeper.ProvideLiquidity(s.ctx, s.provideMsg(created.PoolKey,
		types.NewAsset(s.luna, math.NewInt(500)),
		types.NewAsset(s.astro, math.NewInt(500)),
	))
	s.Require().ErrorIs(err, types.ErrMinimumLiquidityAmount)

	_, err = s.app.Keeper.ProvideLiquidity(s.ctx, s.provideMsg(s.lunaUsd, types.NewAsset(s.astro, math.NewInt(1_000_000))))
	s.Require().ErrorIs(err, types.ErrInvalidAsset)

	_, err = s.app.Keeper.ProvideLiquidity(s.ctx, s.provideMsg(s.lunaUsd))
	s.Require().ErrorIs(err, types.ErrInvalidZeroAmount)

	tooWide := math.LegacyMustNewDecFromStr("0.51")
	msg := s.provideMsg(s.lunaUsd, types.NewAsset(s.luna, math.NewInt(100_000_000)))
	msg.SlippageTolerance = &tooWide
	_, err = s.app.Keeper.ProvideLiquidity(s.ctx, msg)
	s.Require().ErrorIs(err, types.ErrAllowedSpreadAssertion)

	// bob can not pay for more than he holds; nothing moves
	before := s.pool(s.lunaUsd)
	_, err = s.app.Keeper.ProvideLiquidity(s.ctx, s.provideMsg(s.lunaUsd,
		types.NewAsset(s.luna, seedAmount.AddRaw(1)),
		types.NewAsset(s.usd, seedAmount.AddRaw(1)),
	))
	s.Require().Error(err)
	s.Require().Equal(before.Reserves, s.pool(s.lunaUsd).Reserves)
	s.requireUnlocked(s.lunaUsd, created.PoolKey)
}

func (s *KeeperTestSuite) TestWithdraw() {
	provided, err := s.app.Keeper.ProvideLiquidity(s.ctx, s.provideMsg(s.lunaUsd,
		types.NewAsset(s.luna, math.NewInt(100_000_000)),
		types.NewAsset(s.usd, math.NewInt(100_000_000)),
	))
	s.Require().NoError(err)
	pool := s.pool(s.lunaUsd)
	supply := s.app.Bank.GetSupply(s.ctx, pool.LPDenom).Amount

	resp, err := s.app.Keeper.WithdrawLiquidity(s.ctx, types.MsgWithdrawLiquidity{
		Sender:  s.bob.String(),
		PoolKey: s.lunaUsd,
		Amount:  provided.Share,
	})
	s.Require().NoError(err)

	for i, refund := range resp.Refund {
		s.Require().True(refund.Info.Equal(pool.AssetInfos[i]))
		// pro rata, less the withheld unit
		expected := pool.Reserves[i].Mul(provided.Share.SubRaw(1)).Quo(supply)
		s.Require().Equal(expected.String(), refund.Amount.String())
		s.Require().True(refund.Amount.LTE(math.NewInt(100_000_000)))
	}

	s.Require().True(s.app.Bank.GetBalance(s.ctx, s.bob, pool.LPDenom).Amount.IsZero())
	s.Require().Equal(supply.Sub(provided.Share).String(), s.app.Bank.GetSupply(s.ctx, pool.LPDenom).Amount.String())
	s.Require().Equal(seedAmount.SubRaw(100_000_000).Add(resp.Refund[0].Amount).String(), s.balance(s.bob, s.luna).String())
	s.Require().True(s.hasEvent(types.EventTypeWithdrawLiquidity))
	s.requireReservesBacked()
	s.requireUnlocked(s.lunaUsd)
}

func (s *KeeperTestSuite) TestWithdrawErrors() {
	_, err := s.app.Keeper.WithdrawLiquidity(s.ctx, types.MsgWithdrawLiquidity{
		Sender:  s.bob.String(),
		PoolKey: s.lunaUsd,
		Amount:  math.NewInt(1_000),
	})
	s.Require().Error(err, "bob holds no shares")

	pool := s.pool(s.lunaUsd)
	supply := s.app.Bank.GetSupply(s.ctx, pool.LPDenom).Amount
	_, err = s.app.Keeper.WithdrawLiquidity(s.ctx, types.MsgWithdrawLiquidity{
		Sender:  s.bob.String(),
		PoolKey: s.lunaUsd,
		Amount:  supply.AddRaw(1),
	})
	s.Require().ErrorIs(err, types.ErrInsufficientShares)

	_, err = s.app.Keeper.WithdrawLiquidity(s.ctx, types.MsgWithdrawLiquidity{
		Sender:  s.bob.String(),
		PoolKey: s.lunaUsd,
		Amount:  math.NewInt(1_000),
		Assets:  []types.Asset{types.NewAsset(s.luna, math.NewInt(1))},
	})
	s.Require().ErrorIs(err, types.ErrImbalancedWithdrawDisabled)
	s.Require().Equal(pool.Reserves, s.pool(s.lunaUsd).Reserves)
}

func (s *KeeperTestSuite) TestShareQuery() {
	pool := s.pool(s.lunaUsd)
	supply := s.app.Bank.GetSupply(s.ctx, pool.LPDenom).Amount

	assets, err := s.app.Querier.Share(s.ctx, s.lunaUsd, supply.QuoRaw(2))
	s.Require().NoError(err)
	for i, asset := range assets {
		expected := pool.Reserves[i].Mul(supply.QuoRaw(2)).Quo(supply)
		s.Require().Equal(expected.String(), asset.Amount.String())
	}

	_, err = s.app.Querier.Share(s.ctx, s.lunaUsd, supply.AddRaw(1))
	s.Require().ErrorIs(err, types.ErrInsufficientShares)
}

func (s *KeeperTestSuite) TestBalanceSnapshots() {
	stake := keepertest.RegisterNative(s.T(), s.app, s.ctx, "ustake", 6)
	s.assetByID[stake.ID()] = stake
	keepertest.FundAccount(s.T(), s.app, s.ctx, s.bob, stake, seedAmount)

	msg := s.createMsg(s.usd, stake)
	msg.TrackBalances = true
	created, err := s.app.Keeper.CreatePool(s.ctx, msg)
	s.Require().NoError(err)

	startHeight := uint64(s.app.Height())
	_, err = s.app.Keeper.ProvideLiquidity(s.ctx, s.provideMsg(created.PoolKey,
		types.NewAsset(s.usd, math.NewInt(50_000_000)),
		types.NewAsset(stake, math.NewInt(50_000_000)),
	))
	s.Require().NoError(err)

	s.nextBlock(5 * time.Second)
	swap := s.swapMsg(stake, 1_000_000, s.usd)
	swap.Sender = s.bob.String()
	resp, err := s.app.Keeper.Swap(s.ctx, swap)
	s.Require().NoError(err)

	at, err := s.app.Keeper.BalanceAt(s.ctx, created.PoolKey, s.usd, startHeight)
	s.Require().NoError(err)
	s.Require().Equal(int64(50_000_000), at.Int64())

	now, err := s.app.Keeper.BalanceAt(s.ctx, created.PoolKey, s.usd, uint64(s.app.Height()))
	s.Require().NoError(err)
	s.Require().Equal(math.NewInt(50_000_000).Sub(resp.ReturnAmount).String(), now.String())

	// later heights see the latest snapshot
	later, err := s.app.Keeper.BalanceAt(s.ctx, created.PoolKey, stake, uint64(s.app.Height())+100)
	s.Require().NoError(err)
	s.Require().Equal(int64(51_000_000), later.Int64())

	before, err := s.app.Keeper.BalanceAt(s.ctx, created.PoolKey, s.usd, startHeight-1)
	s.Require().NoError(err)
	s.Require().True(before.IsZero())

	_, err = s.app.Keeper.BalanceAt(s.ctx, s.lunaUsd, s.usd, startHeight)
	s.Require().ErrorIs(err, types.ErrInvalidParams)

	_, err = s.app.Keeper.BalanceAt(s.ctx, created.PoolKey, s.luna, startHeight)
	s.Require().ErrorIs(err, types.ErrInvalidAsset)
}
