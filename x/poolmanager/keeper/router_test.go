package keeper_test

import (
	"context"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/colada-chain/colada/internal/sandbox"
	"github.com/colada-chain/colada/x/poolmanager/types"
)

func (s *KeeperTestSuite) chainMsg(amount int64, ops ...types.SwapOperation) types.MsgExecuteSwapOperations {
	return types.MsgExecuteSwapOperations{
		Sender:      s.alice.String(),
		Operations:  ops,
		OfferAmount: math.NewInt(amount),
	}
}

func (s *KeeperTestSuite) lunaToAstro() []types.SwapOperation {
	return []types.SwapOperation{
		types.NewPoolOperation(s.luna, s.usd),
		types.NewPoolOperation(s.usd, s.astro),
	}
}

func (s *KeeperTestSuite) TestExecuteSwapOperations() {
	sim, err := s.app.Querier.SimulateSwapOperations(s.ctx, math.NewInt(10_000_000), s.lunaToAstro())
	s.Require().NoError(err)
	s.Require().Len(sim.Hops, 2)

	resp, err := s.app.Keeper.ExecuteSwapOperations(s.ctx, s.chainMsg(10_000_000, s.lunaToAstro()...))
	s.Require().NoError(err)
	s.Require().Len(resp.Hops, 2)
	s.Require().Equal(sim.Amount.String(), resp.ReturnAmount.String())
	s.Require().Equal(resp.Hops[0].ReturnAmount.String(), resp.Hops[1].OfferAsset.Amount.String())
	s.Require().Equal(resp.Hops[1].ReturnAmount.String(), resp.ReturnAmount.String())

	s.Require().Equal(seedAmount.SubRaw(10_000_000).String(), s.balance(s.alice, s.luna).String())
	s.Require().Equal(seedAmount.String(), s.balance(s.alice, s.usd).String())
	s.Require().Equal(seedAmount.Add(resp.ReturnAmount).String(), s.balance(s.alice, s.astro).String())

	// the escrow is drained
	for _, asset := range []types.AssetInfo{s.luna, s.usd, s.astro} {
		s.Require().True(s.balance(types.RouterAddress(), asset).IsZero(), "router holds %s", asset)
	}
	s.Require().True(s.hasEvent(types.EventTypeSwapChain))
	s.requireReservesBacked()
	s.requireUnlocked(s.lunaUsd, s.usdAstro)
}

func (s *KeeperTestSuite) TestExecuteSingleHopSwapsFromSender() {
	msg := s.chainMsg(1_000_000, types.NewPoolOperation(s.usd, s.luna))
	carol := sandbox.Addr("carol")
	msg.To = carol.String()

	resp, err := s.app.Keeper.ExecuteSwapOperations(s.ctx, msg)
	s.Require().NoError(err)
	s.Require().Len(resp.Hops, 1)
	s.Require().Equal(s.alice.String(), resp.Hops[0].Transfers[0].From)
	s.Require().Equal(resp.ReturnAmount.String(), s.balance(carol, s.luna).String())
	s.Require().True(s.balance(types.RouterAddress(), s.usd).IsZero())
	s.requireUnlocked(s.lunaUsd)
}

func (s *KeeperTestSuite) TestExecuteSwapOperationsMinimumReceive() {
	sim, err := s.app.Querier.SimulateSwapOperations(s.ctx, math.NewInt(10_000_000), s.lunaToAstro())
	s.Require().NoError(err)

	before := [2]types.Pool{s.pool(s.lunaUsd), s.pool(s.usdAstro)}
	msg := s.chainMsg(10_000_000, s.lunaToAstro()...)
	tooMuch := sim.Amount.AddRaw(1)
	msg.MinimumReceive = &tooMuch

	_, err = s.app.Keeper.ExecuteSwapOperations(s.ctx, msg)
	s.Require().ErrorIs(err, types.ErrMinimumReceiveNotMet)

	// every hop is rolled back
	s.Require().Equal(before[0].Reserves, s.pool(s.lunaUsd).Reserves)
	s.Require().Equal(before[1].Reserves, s.pool(s.usdAstro).Reserves)
	s.Require().Equal(seedAmount.String(), s.balance(s.alice, s.luna).String())
	s.Require().Equal(seedAmount.String(), s.balance(s.alice, s.astro).String())
	s.Require().True(s.balance(types.RouterAddress(), s.luna).IsZero())
	s.requireUnlocked(s.lunaUsd, s.usdAstro)

	exact := sim.Amount
	msg.MinimumReceive = &exact
	resp, err := s.app.Keeper.ExecuteSwapOperations(s.ctx, msg)
	s.Require().NoError(err)
	s.Require().Equal(sim.Amount.String(), resp.ReturnAmount.String())
}

func (s *KeeperTestSuite) TestExecuteSwapOperationsPathErrors() {
	tests := []struct {
		name string
		ops  []types.SwapOperation
		err  error
	}{
		{"empty", nil, types.ErrEmptyOperations},
		{
			"reversed hop",
			[]types.SwapOperation{types.NewPoolOperation(s.luna, s.usd), types.NewPoolOperation(s.usd, s.luna)},
			types.ErrDoublingAssetsPath,
		},
		{
			"broken path",
			[]types.SwapOperation{types.NewPoolOperation(s.luna, s.usd), types.NewPoolOperation(s.astro, s.usd)},
			types.ErrInvalidPathOperations,
		},
		{
			"native swap",
			[]types.SwapOperation{{Type: types.OperationNativeSwap, OfferAssetInfo: s.luna, AskAssetInfo: s.usd}},
			types.ErrNativeSwapUnsupported,
		},
		{
			"missing pool",
			[]types.SwapOperation{types.NewPoolOperation(s.usd, s.luna), types.NewPoolOperation(s.luna, s.astro)},
			types.ErrNotFound,
		},
	}

	for _, tc := range tests {
		s.Run(tc.name, func() {
			_, err := s.app.Keeper.ExecuteSwapOperations(s.ctx, s.chainMsg(1_000_000, tc.ops...))
			s.Require().ErrorIs(err, tc.err)
			s.Require().Equal(seedAmount.String(), s.balance(s.alice, s.luna).String())
			s.Require().Equal(seedAmount.String(), s.balance(s.alice, s.usd).String())
			s.requireUnlocked(s.lunaUsd, s.usdAstro)
		})
	}

	_, err := s.app.Querier.SimulateSwapOperations(s.ctx, math.NewInt(1_000_000), nil)
	s.Require().ErrorIs(err, types.ErrEmptyOperations)
}

func (s *KeeperTestSuite) TestExecuteSwapOperationsFailingHopRollsBack() {
	// astro/luna exists but holds no liquidity
	_, err := s.app.Keeper.CreatePool(s.ctx, s.createMsg(s.astro, s.luna))
	s.Require().NoError(err)

	before := s.pool(s.usdAstro)
	_, err = s.app.Keeper.ExecuteSwapOperations(s.ctx, s.chainMsg(1_000_000,
		types.NewPoolOperation(s.usd, s.astro),
		types.NewPoolOperation(s.astro, s.luna),
	))
	s.Require().Error(err)

	s.Require().Equal(before.Reserves, s.pool(s.usdAstro).Reserves)
	s.Require().Equal(seedAmount.String(), s.balance(s.alice, s.usd).String())
	s.Require().True(s.balance(types.RouterAddress(), s.usd).IsZero())
	s.Require().True(s.balance(types.RouterAddress(), s.astro).IsZero())
	s.requireUnlocked(s.usdAstro, types.PoolKey(s.astro, s.luna))
	s.requireReservesBacked()
}

func (s *KeeperTestSuite) TestExecuteSwapOperationsReentrancy() {
	var nestedErr error
	nested := false
	s.app.Tokens.OnTransfer(func(ctx context.Context, _, _, _ sdk.AccAddress, _ math.Int) error {
		if nested {
			return nil
		}
		nested = true
		_, nestedErr = s.app.Keeper.ExecuteSwapOperations(ctx, s.chainMsg(1_000_000, types.NewPoolOperation(s.usd, s.luna)))
		return nil
	})
	defer s.app.Tokens.OnTransfer(nil)

	_, err := s.app.Keeper.ExecuteSwapOperations(s.ctx, s.chainMsg(10_000_000, s.lunaToAstro()...))
	s.Require().NoError(err)
	s.Require().True(nested)
	s.Require().ErrorIs(nestedErr, types.ErrPoolLocked)
	s.requireUnlocked(s.lunaUsd, s.usdAstro)
	s.requireReservesBacked()
}

func (s *KeeperTestSuite) TestSimulateSwapOperationsLeavesPoolsUntouched() {
	before := s.pool(s.lunaUsd)
	sim, err := s.app.Querier.SimulateSwapOperations(s.ctx, math.NewInt(10_000_000), s.lunaToAstro())
	s.Require().NoError(err)
	s.Require().True(sim.Amount.IsPositive())
	s.Require().Equal(before.Reserves, s.pool(s.lunaUsd).Reserves)
	s.Require().True(before.State.Price.LastPrice.Equal(s.pool(s.lunaUsd).State.Price.LastPrice))
}
