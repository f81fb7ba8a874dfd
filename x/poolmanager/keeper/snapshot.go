package keeper

import (
	"context"

	"cosmossdk.io/math"

	"github.com/colada-chain/colada/x/poolmanager/types"
)

// snapshotReserves records both reserves at the current height when the pool
// tracks balances. Later writes within a block overwrite earlier ones.
func (k Keeper) snapshotReserves(ctx context.Context, pool types.Pool) error {
	if !pool.TrackBalances {
		return nil
	}
	height := blockHeight(ctx)
	for i, info := range pool.AssetInfos {
		if err := k.SetBalanceSnapshot(ctx, pool.Key(), info, height, pool.Reserves[i]); err != nil {
			return err
		}
	}
	return nil
}

// SetBalanceSnapshot stores the reserve of asset in pool at height.
func (k Keeper) SetBalanceSnapshot(ctx context.Context, poolKey string, asset types.AssetInfo, height uint64, amount math.Int) error {
	bz, err := amount.Marshal()
	if err != nil {
		return types.ErrIO.Wrapf("encode snapshot: %s", err)
	}
	k.getStore(ctx).Set(BalanceSnapshotKey(poolKey, asset.ID(), height), bz)
	return nil
}

// BalanceAt returns the reserve of asset in pool as of the end of height: the
// latest snapshot at or below height, or zero before the first one.
func (k Keeper) BalanceAt(ctx context.Context, poolKey string, asset types.AssetInfo, height uint64) (math.Int, error) {
	pool, err := k.GetPool(ctx, poolKey)
	if err != nil {
		return math.Int{}, err
	}
	if !pool.TrackBalances {
		return math.Int{}, types.ErrInvalidParams.Wrapf("pool %s does not track balances", poolKey)
	}
	if _, err := pool.AssetIndex(asset); err != nil {
		return math.Int{}, err
	}

	prefix := BalanceSnapshotPrefix(poolKey, asset.ID())
	end := BalanceSnapshotKey(poolKey, asset.ID(), height)
	// ReverseIterator excludes its end, so extend past height
	end = append(end, 0x00)

	iter := k.getStore(ctx).ReverseIterator(prefix, end)
	defer iter.Close()
	if !iter.Valid() {
		return math.ZeroInt(), nil
	}

	var amount math.Int
	if err := amount.Unmarshal(iter.Value()); err != nil {
		return math.Int{}, types.ErrIO.Wrapf("decode snapshot: %s", err)
	}
	return amount, nil
}
