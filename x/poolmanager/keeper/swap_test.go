package keeper_test

import (
	"context"
	"time"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/colada-chain/colada/internal/sandbox"
	keepertest "github.com/colada-chain/colada/testutil/keeper"
	"github.com/colada-chain/colada/x/poolmanager/pcl"
	"github.com/colada-chain/colada/x/poolmanager/types"
)

func (s *KeeperTestSuite) swapMsg(offer types.AssetInfo, amount int64, ask types.AssetInfo) types.MsgSwap {
	return types.MsgSwap{
		Sender:     s.alice.String(),
		OfferAsset: types.NewAsset(offer, math.NewInt(amount)),
		AskAsset:   ask,
	}
}

func (s *KeeperTestSuite) TestSwap() {
	before := s.pool(s.lunaUsd)
	lunaBefore := s.balance(s.alice, s.luna)
	usdBefore := s.balance(s.alice, s.usd)

	resp, err := s.app.Keeper.Swap(s.ctx, s.swapMsg(s.luna, 1_000_000, s.usd))
	s.Require().NoError(err)

	// near balance only the mid fee applies
	s.Require().True(resp.ReturnAmount.GT(math.NewInt(990_000)), "return %s", resp.ReturnAmount)
	s.Require().True(resp.ReturnAmount.LT(math.NewInt(1_000_000)), "return %s", resp.ReturnAmount)
	s.Require().True(resp.CommissionAmount.IsPositive())
	s.Require().True(resp.MakerFeeAmount.IsZero())

	s.Require().Equal(lunaBefore.SubRaw(1_000_000).String(), s.balance(s.alice, s.luna).String())
	s.Require().Equal(usdBefore.Add(resp.ReturnAmount).String(), s.balance(s.alice, s.usd).String())

	after := s.pool(s.lunaUsd)
	s.Require().Equal(before.Reserves[0].AddRaw(1_000_000).String(), after.Reserves[0].String())
	s.Require().Equal(before.Reserves[1].Sub(resp.ReturnAmount).String(), after.Reserves[1].String())

	s.Require().True(s.hasEvent(types.EventTypeSwap))
	s.requireReservesBacked()
	s.requireUnlocked(s.lunaUsd)
}

func (s *KeeperTestSuite) TestSwapToReceiver() {
	msg := s.swapMsg(s.usd, 2_000_000, s.astro)
	carol := sandbox.Addr("carol")
	msg.To = carol.String()

	resp, err := s.app.Keeper.Swap(s.ctx, msg)
	s.Require().NoError(err)
	s.Require().Equal(resp.ReturnAmount.String(), s.balance(carol, s.astro).String())
	s.Require().Equal(seedAmount.String(), s.balance(s.alice, s.astro).String())
	s.requireReservesBacked()
}

func (s *KeeperTestSuite) TestSimulationMatchesSwap() {
	offer := types.NewAsset(s.luna, math.NewInt(5_000_000))
	sim, err := s.app.Keeper.Simulation(s.ctx, offer, s.usd)
	s.Require().NoError(err)

	// simulating leaves the pool untouched
	s.Require().True(s.pool(s.lunaUsd).Reserves[0].Equal(seedAmount))

	resp, err := s.app.Keeper.Swap(s.ctx, s.swapMsg(s.luna, 5_000_000, s.usd))
	s.Require().NoError(err)
	s.Require().Equal(sim.ReturnAmount.String(), resp.ReturnAmount.String())
	s.Require().Equal(sim.SpreadAmount.String(), resp.SpreadAmount.String())
	s.Require().Equal(sim.CommissionAmount.String(), resp.CommissionAmount.String())
}

func (s *KeeperTestSuite) TestSwapFailures() {
	tooMuch := s.swapMsg(s.luna, 1_000_000, s.usd)
	tooMuch.OfferAsset.Amount = seedAmount.AddRaw(1)

	tight := s.swapMsg(s.luna, 100_000_000, s.usd)
	spread := math.LegacyMustNewDecFromStr("0.000001")
	tight.MaxSpread = &spread

	belief := s.swapMsg(s.luna, 1_000_000, s.usd)
	price := math.LegacyMustNewDecFromStr("0.5")
	belief.BeliefPrice = &price

	wide := s.swapMsg(s.luna, 1_000_000, s.usd)
	tooWide := math.LegacyMustNewDecFromStr("0.6")
	wide.MaxSpread = &tooWide

	noPool := s.swapMsg(s.luna, 1_000_000, s.astro)

	tests := []struct {
		name string
		msg  types.MsgSwap
		err  error
	}{
		{"insufficient funds", tooMuch, nil},
		{"spread above max spread", tight, types.ErrExcessiveSpread},
		{"return below belief price", belief, types.ErrExcessiveSpread},
		{"max spread above 50%", wide, types.ErrAllowedSpreadAssertion},
		{"no pool for the pair", noPool, types.ErrNotFound},
		{"asset for itself", s.swapMsg(s.luna, 1_000_000, s.luna), types.ErrDoublingAssetsPath},
	}

	for _, tc := range tests {
		s.Run(tc.name, func() {
			before := s.pool(s.lunaUsd)
			lunaBefore := s.balance(s.alice, s.luna)

			_, err := s.app.Keeper.Swap(s.ctx, tc.msg)
			if tc.err != nil {
				s.Require().ErrorIs(err, tc.err)
			} else {
				s.Require().Error(err)
			}

			s.Require().Equal(before.Reserves, s.pool(s.lunaUsd).Reserves)
			s.Require().Equal(lunaBefore.String(), s.balance(s.alice, s.luna).String())
			s.requireUnlocked(s.lunaUsd)
		})
	}
}

func (s *KeeperTestSuite) TestSwapRoutesMakerAndShareFees() {
	feeAddr := sandbox.Addr("fee_collector")
	shareAddr := sandbox.Addr("integrator")

	params := types.DefaultParams()
	params.FeeAddress = feeAddr.String()
	params.MakerFeeRate = math.LegacyMustNewDecFromStr("0.5")
	s.Require().NoError(s.app.Keeper.UpdateParams(s.ctx, sandbox.Authority(), params))

	s.Require().NoError(s.app.Keeper.UpdatePoolParams(s.ctx, types.MsgUpdatePoolParams{
		Authority: sandbox.Authority(),
		PoolKey:   s.lunaUsd,
		FeeShare:  &types.FeeShareConfig{Bps: 500, Recipient: shareAddr.String()},
	}))

	resp, err := s.app.Keeper.Swap(s.ctx, s.swapMsg(s.luna, 10_000_000, s.usd))
	s.Require().NoError(err)
	s.Require().True(resp.MakerFeeAmount.IsPositive())
	s.Require().True(resp.FeeShareAmount.IsPositive())
	s.Require().True(resp.MakerFeeAmount.GT(resp.FeeShareAmount))
	s.Require().True(resp.MakerFeeAmount.Add(resp.FeeShareAmount).LTE(resp.CommissionAmount))

	s.Require().Equal(resp.MakerFeeAmount.String(), s.balance(feeAddr, s.usd).String())
	s.Require().Equal(resp.FeeShareAmount.String(), s.balance(shareAddr, s.usd).String())
	s.requireReservesBacked()
}

func (s *KeeperTestSuite) TestSwapTokenAsset() {
	resp, err := s.app.Keeper.Swap(s.ctx, s.swapMsg(s.astro, 3_000_000, s.usd))
	s.Require().NoError(err)
	s.Require().Equal(seedAmount.SubRaw(3_000_000).String(), s.balance(s.alice, s.astro).String())
	s.Require().Equal(seedAmount.Add(resp.ReturnAmount).String(), s.balance(s.alice, s.usd).String())
	s.requireReservesBacked()
}

func (s *KeeperTestSuite) TestSwapReentrancyIsRejected() {
	var nestedErr error
	s.app.Tokens.OnTransfer(func(ctx context.Context, _, _, to sdk.AccAddress, _ math.Int) error {
		if !to.Equals(types.ModuleAddress()) || nestedErr != nil {
			return nil
		}
		_, nestedErr = s.app.Keeper.Swap(ctx, s.swapMsg(s.usd, 1_000_000, s.astro))
		return nil
	})
	defer s.app.Tokens.OnTransfer(nil)

	_, err := s.app.Keeper.Swap(s.ctx, s.swapMsg(s.astro, 1_000_000, s.usd))
	s.Require().NoError(err)
	s.Require().ErrorIs(nestedErr, types.ErrPoolLocked)
	s.requireUnlocked(s.usdAstro)
	s.requireReservesBacked()
}

func (s *KeeperTestSuite) TestSwapFailingHookRollsBack() {
	s.app.Tokens.OnTransfer(func(ctx context.Context, _, _, to sdk.AccAddress, _ math.Int) error {
		if !to.Equals(types.ModuleAddress()) {
			return nil
		}
		_, err := s.app.Keeper.Swap(ctx, s.swapMsg(s.usd, 1_000_000, s.astro))
		return err
	})
	defer s.app.Tokens.OnTransfer(nil)

	before := s.pool(s.usdAstro)
	_, err := s.app.Keeper.Swap(s.ctx, s.swapMsg(s.astro, 1_000_000, s.usd))
	s.Require().ErrorIs(err, types.ErrPoolLocked)
	s.Require().Equal(before.Reserves, s.pool(s.usdAstro).Reserves)
	s.Require().Equal(seedAmount.String(), s.balance(s.alice, s.astro).String())
	s.requireUnlocked(s.usdAstro)
}

func (s *KeeperTestSuite) TestObservations() {
	_, err := s.app.Keeper.Observe(s.ctx, s.lunaUsd, 0)
	s.Require().ErrorIs(err, types.ErrNotFound)

	first, err := s.app.Keeper.Swap(s.ctx, s.swapMsg(s.luna, 2_000_000, s.usd))
	s.Require().NoError(err)

	obs, err := s.app.Keeper.Observe(s.ctx, s.lunaUsd, 0)
	s.Require().NoError(err)
	s.Require().Equal(uint64(sandbox.GenesisTime), obs.Timestamp)
	// uluna is the base: offered uluna per returned uusd
	expected := observedPrice(s, math.NewInt(2_000_000), first.ReturnAmount)
	s.Require().True(expected.Equal(obs.Price), "price %s, expected %s", obs.Price, expected)

	s.nextBlock(10 * time.Second)
	_, err = s.app.Keeper.Swap(s.ctx, s.swapMsg(s.usd, 4_000_000, s.luna))
	s.Require().NoError(err)

	latest, err := s.app.Keeper.Observe(s.ctx, s.lunaUsd, 0)
	s.Require().NoError(err)
	s.Require().Equal(uint64(sandbox.GenesisTime+10), latest.Timestamp)

	older, err := s.app.Keeper.Observe(s.ctx, s.lunaUsd, 5)
	s.Require().NoError(err)
	s.Require().Equal(obs.Timestamp, older.Timestamp)
	s.Require().True(obs.Price.Equal(older.Price))

	_, err = s.app.Keeper.Observe(s.ctx, s.lunaUsd, 60)
	s.Require().ErrorIs(err, types.ErrNotFound)
}

func (s *KeeperTestSuite) TestObservationsAccumulateWithinBlock() {
	a, err := s.app.Keeper.Swap(s.ctx, s.swapMsg(s.luna, 1_000_000, s.usd))
	s.Require().NoError(err)
	b, err := s.app.Keeper.Swap(s.ctx, s.swapMsg(s.luna, 3_000_000, s.usd))
	s.Require().NoError(err)

	obs, err := s.app.Keeper.Observe(s.ctx, s.lunaUsd, 0)
	s.Require().NoError(err)
	expected := observedPrice(s, math.NewInt(4_000_000), a.ReturnAmount.Add(b.ReturnAmount))
	s.Require().True(expected.Equal(obs.Price), "price %s, expected %s", obs.Price, expected)
}

func (s *KeeperTestSuite) TestDustOutputSkipsPriceUpdate() {
	nano := keepertest.RegisterNative(s.T(), s.app, s.ctx, "unano", 9)
	s.assetByID[nano.ID()] = nano
	poolKey := keepertest.CreateTestPool(s.T(), s.app, s.ctx, s.luna, nano,
		seedAmount, seedAmount.MulRaw(1_000))
	before := s.pool(poolKey).State.Price

	// one uluna unit reaches the minimum trade size but returns less than it
	resp, err := s.app.Keeper.Swap(s.ctx, s.swapMsg(s.luna, 1, nano))
	s.Require().NoError(err)
	s.Require().True(resp.ReturnAmount.IsPositive())
	s.Require().True(resp.ReturnAmount.LT(math.NewInt(1_000)), "return %s", resp.ReturnAmount)

	after := s.pool(poolKey).State.Price
	s.Require().True(before.PriceScale.Equal(after.PriceScale))
	s.Require().True(before.LastPrice.Equal(after.LastPrice))
	s.Require().True(before.OracleEmaPrice.Equal(after.OracleEmaPrice))
	s.Require().True(before.XcpProfit.Equal(after.XcpProfit))
	s.Require().Equal(before.LastPriceUpdate, after.LastPriceUpdate)

	_, err = s.app.Keeper.Observe(s.ctx, poolKey, 0)
	s.Require().ErrorIs(err, types.ErrNotFound)
	s.requireReservesBacked()
	s.requireUnlocked(poolKey)
}

func observedPrice(s *KeeperTestSuite, base, quote math.Int) math.LegacyDec {
	baseDec, err := pcl.WithPrecision(base, 6)
	s.Require().NoError(err)
	quoteDec, err := pcl.WithPrecision(quote, 6)
	s.Require().NoError(err)
	return baseDec.Quo(quoteDec)
}
