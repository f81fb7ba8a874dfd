package keeper_test

import (
	"time"

	"cosmossdk.io/log"
	"cosmossdk.io/math"
	"github.com/cosmos/cosmos-sdk/types/query"

	"github.com/colada-chain/colada/internal/sandbox"
	"github.com/colada-chain/colada/x/poolmanager/pcl"
	"github.com/colada-chain/colada/x/poolmanager/types"
)

func (s *KeeperTestSuite) TestUpdateParamsRequiresAuthority() {
	params := types.DefaultParams()
	params.MakerFeeRate = math.LegacyMustNewDecFromStr("0.2")
	params.FeeAddress = s.bob.String()

	err := s.app.Keeper.UpdateParams(s.ctx, s.alice.String(), params)
	s.Require().ErrorIs(err, types.ErrUnauthorized)

	s.Require().NoError(s.app.Keeper.UpdateParams(s.ctx, sandbox.Authority(), params))
	got, err := s.app.Querier.Params(s.ctx)
	s.Require().NoError(err)
	s.Require().True(got.MakerFeeRate.Equal(params.MakerFeeRate))
	s.Require().Equal(s.bob.String(), got.FeeAddress)
}

func (s *KeeperTestSuite) TestUpdatePoolParams() {
	newParams := types.DefaultPoolParams()
	newParams.MidFee = math.LegacyMustNewDecFromStr("0.003")

	err := s.app.Keeper.UpdatePoolParams(s.ctx, types.MsgUpdatePoolParams{
		Authority: s.alice.String(),
		PoolKey:   s.lunaUsd,
		Params:    &newParams,
	})
	s.Require().ErrorIs(err, types.ErrUnauthorized)

	err = s.app.Keeper.UpdatePoolParams(s.ctx, types.MsgUpdatePoolParams{
		Authority: sandbox.Authority(),
		PoolKey:   s.lunaUsd,
	})
	s.Require().ErrorIs(err, types.ErrInvalidParams)

	s.Require().NoError(s.app.Keeper.UpdatePoolParams(s.ctx, types.MsgUpdatePoolParams{
		Authority: sandbox.Authority(),
		PoolKey:   s.lunaUsd,
		Params:    &newParams,
	}))
	s.Require().True(s.pool(s.lunaUsd).Params.MidFee.Equal(newParams.MidFee))
	s.Require().True(s.hasEvent(types.EventTypeUpdatePoolParams))
	s.requireUnlocked(s.lunaUsd)
}

func (s *KeeperTestSuite) TestRampAmpGamma() {
	now := uint64(s.app.BlockTime().Unix())
	future := types.AmpGamma{Amp: math.LegacyNewDec(80), Gamma: types.DefaultAmpGamma().Gamma}

	tooSoon := types.MsgUpdatePoolParams{
		Authority: sandbox.Authority(),
		PoolKey:   s.lunaUsd,
		Ramp:      &types.RampUpdate{Future: future, FutureTime: now + types.MinAmpChangingTime - 1},
	}
	s.Require().ErrorIs(s.app.Keeper.UpdatePoolParams(s.ctx, tooSoon), types.ErrInvalidRamp)

	tooFar := types.MsgUpdatePoolParams{
		Authority: sandbox.Authority(),
		PoolKey:   s.lunaUsd,
		Ramp: &types.RampUpdate{
			Future:     types.AmpGamma{Amp: math.LegacyNewDec(401), Gamma: future.Gamma},
			FutureTime: now + types.MinAmpChangingTime,
		},
	}
	s.Require().ErrorIs(s.app.Keeper.UpdatePoolParams(s.ctx, tooFar), types.ErrInvalidRamp)

	ramp := types.MsgUpdatePoolParams{
		Authority: sandbox.Authority(),
		PoolKey:   s.lunaUsd,
		Ramp:      &types.RampUpdate{Future: future, FutureTime: now + types.MinAmpChangingTime},
	}
	s.Require().NoError(s.app.Keeper.UpdatePoolParams(s.ctx, ramp))

	// a second ramp waits for the first to finish
	s.Require().ErrorIs(s.app.Keeper.UpdatePoolParams(s.ctx, ramp), types.ErrInvalidRamp)

	s.nextBlock(time.Duration(types.MinAmpChangingTime/2) * time.Second)
	halfway := pcl.AmpGammaAt(s.pool(s.lunaUsd).State, uint64(s.app.BlockTime().Unix()))
	s.Require().True(halfway.Amp.Equal(math.LegacyNewDec(60)), "amp %s", halfway.Amp)

	s.Require().NoError(s.app.Keeper.UpdatePoolParams(s.ctx, types.MsgUpdatePoolParams{
		Authority: sandbox.Authority(),
		PoolKey:   s.lunaUsd,
		StopRamp:  true,
	}))
	s.nextBlock(time.Hour)
	frozen := pcl.AmpGammaAt(s.pool(s.lunaUsd).State, uint64(s.app.BlockTime().Unix()))
	s.Require().True(frozen.Amp.Equal(math.LegacyNewDec(60)), "amp %s", frozen.Amp)

	// swaps keep working on the new curve
	_, err := s.app.Keeper.Swap(s.ctx, s.swapMsg(s.luna, 1_000_000, s.usd))
	s.Require().NoError(err)
}

func (s *KeeperTestSuite) TestGenesisRoundTrip() {
	_, err := s.app.Keeper.Swap(s.ctx, s.swapMsg(s.luna, 1_000_000, s.usd))
	s.Require().NoError(err)

	exported, err := s.app.Keeper.ExportGenesis(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(exported.Pools, 2)
	s.Require().Len(exported.Precisions, 3)
	s.Require().Equal(uint64(3), exported.NextPoolID)
	s.Require().NoError(exported.Validate())

	fresh, err := sandbox.New(log.NewNopLogger())
	s.Require().NoError(err)
	freshCtx := fresh.Context()
	s.Require().NoError(fresh.Keeper.InitGenesis(freshCtx, *exported))

	reexported, err := fresh.Keeper.ExportGenesis(freshCtx)
	s.Require().NoError(err)
	s.Require().JSONEq(string(exported.MustMarshalJSON()), string(reexported.MustMarshalJSON()))

	bad := *exported
	bad.NextPoolID = 2
	s.Require().Error(fresh.Keeper.InitGenesis(freshCtx, bad))
}

func (s *KeeperTestSuite) TestPoolsQuery() {
	_, err := s.app.Querier.Pools(s.ctx, nil)
	s.Require().Error(err)

	all, err := s.app.Querier.Pools(s.ctx, &types.QueryPoolsRequest{})
	s.Require().NoError(err)
	s.Require().Len(all.Pools, 2)

	first, err := s.app.Querier.Pools(s.ctx, &types.QueryPoolsRequest{Pagination: &query.PageRequest{Limit: 1}})
	s.Require().NoError(err)
	s.Require().Len(first.Pools, 1)
	s.Require().NotEmpty(first.Pagination.NextKey)

	second, err := s.app.Querier.Pools(s.ctx, &types.QueryPoolsRequest{
		Pagination: &query.PageRequest{Key: first.Pagination.NextKey, Limit: 1},
	})
	s.Require().NoError(err)
	s.Require().Len(second.Pools, 1)
	s.Require().NotEqual(first.Pools[0].Pool.Key(), second.Pools[0].Pool.Key())

	for _, resp := range all.Pools {
		supply := s.app.Bank.GetSupply(s.ctx, resp.Pool.LPDenom).Amount
		s.Require().Equal(supply.String(), resp.TotalShare.String())
	}
}

func (s *KeeperTestSuite) TestComputeDQuery() {
	resp, err := s.app.Querier.ComputeD(s.ctx, s.lunaUsd)
	s.Require().NoError(err)

	// a balanced 1000/1000 pool at price 1
	tolerance := math.LegacyMustNewDecFromStr("0.000001")
	s.Require().True(resp.D.Sub(math.LegacyNewDec(2000)).Abs().LTE(tolerance), "d %s", resp.D)
	s.Require().True(resp.VirtualPrice.Sub(math.LegacyOneDec()).Abs().LTE(tolerance), "virtual price %s", resp.VirtualPrice)

	created, err := s.app.Keeper.CreatePool(s.ctx, s.createMsg(s.luna, s.astro))
	s.Require().NoError(err)
	empty, err := s.app.Querier.ComputeD(s.ctx, created.PoolKey)
	s.Require().NoError(err)
	s.Require().True(empty.D.IsZero())
	s.Require().True(empty.VirtualPrice.IsZero())

	_, err = s.app.Querier.ComputeD(s.ctx, types.PoolKey(s.usd, types.NativeAsset("unknown")))
	s.Require().ErrorIs(err, types.ErrNotFound)
}

func (s *KeeperTestSuite) TestPrecisionAndPoolQueries() {
	precision, err := s.app.Querier.Precision(s.ctx, s.astro)
	s.Require().NoError(err)
	s.Require().Equal(uint32(6), precision)

	resp, err := s.app.Querier.Pool(s.ctx, s.usdAstro)
	s.Require().NoError(err)
	s.Require().Equal(s.usdAstro, resp.Pool.Key())
	s.Require().True(resp.TotalShare.IsPositive())
}
