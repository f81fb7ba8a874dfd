package keeper_test

import (
	"cosmossdk.io/math"

	keepertest "github.com/colada-chain/colada/testutil/keeper"
	"github.com/colada-chain/colada/x/poolmanager/types"
)

func (s *KeeperTestSuite) createMsg(a, b types.AssetInfo) types.MsgCreatePool {
	return types.MsgCreatePool{
		Creator:           s.alice.String(),
		AssetInfos:        [2]types.AssetInfo{a, b},
		AmpGamma:          types.DefaultAmpGamma(),
		Params:            types.DefaultPoolParams(),
		InitialPriceScale: math.LegacyOneDec(),
	}
}

func (s *KeeperTestSuite) TestCreatePool() {
	resp, err := s.app.Keeper.CreatePool(s.ctx, s.createMsg(s.luna, s.astro))
	s.Require().NoError(err)
	s.Require().Equal(uint64(3), resp.PoolID)
	s.Require().Equal(types.LPDenomPrefix+"3", resp.LPDenom)
	s.Require().Equal(types.PoolKey(s.astro, s.luna), resp.PoolKey)
	s.Require().True(s.hasEvent(types.EventTypeCreatePool))

	pool, err := s.app.Keeper.GetPoolByID(s.ctx, 3)
	s.Require().NoError(err)
	s.Require().Equal(resp.PoolKey, pool.Key())
	s.Require().True(pool.Reserves[0].IsZero())
	s.Require().True(pool.Reserves[1].IsZero())

	precision, err := s.app.Keeper.GetPrecision(s.ctx, s.astro)
	s.Require().NoError(err)
	s.Require().Equal(uint32(6), precision)
	s.Require().Equal(uint64(4), s.app.Keeper.GetNextPoolID(s.ctx))
}

func (s *KeeperTestSuite) TestCreatePoolErrors() {
	// either order names the same pair
	_, err := s.app.Keeper.CreatePool(s.ctx, s.createMsg(s.usd, s.luna))
	s.Require().ErrorIs(err, types.ErrPoolExists)

	_, err = s.app.Keeper.CreatePool(s.ctx, s.createMsg(s.luna, types.NativeAsset("unknown")))
	s.Require().ErrorIs(err, types.ErrInvalidPrecision)

	wide := keepertest.RegisterNative(s.T(), s.app, s.ctx, "uwide", 12)
	_, err = s.app.Keeper.CreatePool(s.ctx, s.createMsg(s.luna, wide))
	s.Require().ErrorIs(err, types.ErrInvalidPrecision)

	// a failed creation leaves no precision behind for the first asset
	fresh := keepertest.RegisterNative(s.T(), s.app, s.ctx, "ufresh", 6)
	_, err = s.app.Keeper.CreatePool(s.ctx, s.createMsg(fresh, wide))
	s.Require().ErrorIs(err, types.ErrInvalidPrecision)
	_, err = s.app.Keeper.GetPrecision(s.ctx, fresh)
	s.Require().ErrorIs(err, types.ErrNotFound)
	s.Require().Equal(uint64(3), s.app.Keeper.GetNextPoolID(s.ctx))

	msg := s.createMsg(s.luna, s.luna)
	_, err = s.app.Keeper.CreatePool(s.ctx, msg)
	s.Require().Error(err)

	msg = s.createMsg(s.luna, s.astro)
	msg.InitialPriceScale = math.LegacyZeroDec()
	_, err = s.app.Keeper.CreatePool(s.ctx, msg)
	s.Require().ErrorIs(err, types.ErrInvalidParams)
}

func (s *KeeperTestSuite) TestGetPoolByAssetsIsOrderIndependent() {
	forward, err := s.app.Keeper.GetPoolByAssets(s.ctx, s.luna, s.usd)
	s.Require().NoError(err)
	backward, err := s.app.Keeper.GetPoolByAssets(s.ctx, s.usd, s.luna)
	s.Require().NoError(err)
	s.Require().Equal(forward.ID, backward.ID)

	_, err = s.app.Keeper.GetPoolByAssets(s.ctx, s.luna, s.astro)
	s.Require().ErrorIs(err, types.ErrNotFound)
}

func (s *KeeperTestSuite) TestInitialProvideLocksMinimumLiquidity() {
	pool := s.pool(s.lunaUsd)
	supply := s.app.Bank.GetSupply(s.ctx, pool.LPDenom).Amount
	locked := s.app.Bank.GetBalance(s.ctx, types.NullHolderAddress(), pool.LPDenom).Amount

	s.Require().Equal(int64(1000), locked.Int64())
	// xcp of a balanced 1000/1000 pool is 1000 units of the 6 digit share
	s.Require().True(supply.SubRaw(1_000_000_000).Abs().LTE(math.NewInt(1)), "supply %s", supply)
	s.requireReservesBacked()
}
