package keeper

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"strconv"

	"cosmossdk.io/math"
	storetypes "cosmossdk.io/store/types"
	sdk "github.com/cosmos/cosmos-sdk/types"
	banktypes "github.com/cosmos/cosmos-sdk/x/bank/types"

	"github.com/colada-chain/colada/x/poolmanager/types"
)

// GetPool returns the pool stored under a pair key.
func (k Keeper) GetPool(ctx context.Context, poolKey string) (types.Pool, error) {
	var pool types.Pool
	found, err := k.getJSON(ctx, PoolStoreKey(poolKey), &pool)
	if err != nil {
		return types.Pool{}, err
	}
	if !found {
		return types.Pool{}, types.ErrNotFound.Wrapf("pool %s", poolKey)
	}
	return pool, nil
}

// GetPoolByAssets returns the pool trading a and b in either order.
func (k Keeper) GetPoolByAssets(ctx context.Context, a, b types.AssetInfo) (types.Pool, error) {
	return k.GetPool(ctx, types.PoolKey(a, b))
}

// GetPoolByID resolves a pool through the id index.
func (k Keeper) GetPoolByID(ctx context.Context, poolID uint64) (types.Pool, error) {
	bz := k.getStore(ctx).Get(PoolIDKey(poolID))
	if bz == nil {
		return types.Pool{}, types.ErrNotFound.Wrapf("pool %d", poolID)
	}
	return k.GetPool(ctx, string(bz))
}

// SetPool validates and stores a pool together with its id index.
func (k Keeper) SetPool(ctx context.Context, pool types.Pool) error {
	if err := pool.Validate(); err != nil {
		return err
	}
	if err := k.setJSON(ctx, PoolStoreKey(pool.Key()), pool); err != nil {
		return err
	}
	k.getStore(ctx).Set(PoolIDKey(pool.ID), []byte(pool.Key()))
	return nil
}

// IteratePools calls cb for every pool in pair key order until cb returns true.
func (k Keeper) IteratePools(ctx context.Context, cb func(pool types.Pool) (stop bool, err error)) error {
	iter := storetypes.KVStorePrefixIterator(k.getStore(ctx), PoolKeyPrefix)
	defer iter.Close()

	for ; iter.Valid(); iter.Next() {
		var pool types.Pool
		if err := json.Unmarshal(iter.Value(), &pool); err != nil {
			return types.ErrIO.Wrapf("decode pool %s: %s", iter.Key()[len(PoolKeyPrefix):], err)
		}
		stop, err := cb(pool)
		if err != nil {
			return err
		}
		if stop {
			return nil
		}
	}
	return nil
}

// GetAllPools returns every pool.
func (k Keeper) GetAllPools(ctx context.Context) ([]types.Pool, error) {
	var pools []types.Pool
	err := k.IteratePools(ctx, func(pool types.Pool) (bool, error) {
		pools = append(pools, pool)
		return false, nil
	})
	return pools, err
}

// GetNextPoolID returns the id the next pool will get.
func (k Keeper) GetNextPoolID(ctx context.Context) uint64 {
	bz := k.getStore(ctx).Get(NextPoolIDKey)
	if bz == nil {
		return 1
	}
	return binary.BigEndian.Uint64(bz)
}

// SetNextPoolID stores the pool id counter
func (k Keeper) SetNextPoolID(ctx context.Context, id uint64) {
	k.getStore(ctx).Set(NextPoolIDKey, uint64Bytes(id))
}

// GetPrecision returns the stored precision of an asset.
func (k Keeper) GetPrecision(ctx context.Context, info types.AssetInfo) (uint32, error) {
	bz := k.getStore(ctx).Get(PrecisionKey(info.ID()))
	if bz == nil {
		return 0, types.ErrNotFound.Wrapf("precision of %s", info)
	}
	return binary.BigEndian.Uint32(bz), nil
}

// SetPrecision records the precision of an asset. Precisions are immutable
// once a pool trades the asset.
func (k Keeper) SetPrecision(ctx context.Context, assetID string, precision uint32) error {
	if precision > types.MaxAssetPrecision {
		return types.ErrInvalidPrecision.Wrapf("%s has precision %d, at most %d supported",
			assetID, precision, types.MaxAssetPrecision)
	}
	bz := make([]byte, 4)
	binary.BigEndian.PutUint32(bz, precision)
	k.getStore(ctx).Set(PrecisionKey(assetID), bz)
	return nil
}

// GetAllPrecisions exports the precision table.
func (k Keeper) GetAllPrecisions(ctx context.Context) []types.PrecisionEntry {
	iter := storetypes.KVStorePrefixIterator(k.getStore(ctx), PrecisionKeyPrefix)
	defer iter.Close()

	var entries []types.PrecisionEntry
	for ; iter.Valid(); iter.Next() {
		entries = append(entries, types.PrecisionEntry{
			AssetID:   string(iter.Key()[len(PrecisionKeyPrefix):]),
			Precision: binary.BigEndian.Uint32(iter.Value()),
		})
	}
	return entries
}

// resolvePrecision returns the table entry of an asset, or looks it up from
// the bank denom metadata or the token contract and records it.
func (k Keeper) resolvePrecision(ctx context.Context, info types.AssetInfo) (uint32, error) {
	if precision, err := k.GetPrecision(ctx, info); err == nil {
		return precision, nil
	}

	var precision uint32
	if info.IsNative() {
		metadata, found := k.bankKeeper.GetDenomMetaData(ctx, info.Denom)
		if !found {
			return 0, types.ErrInvalidPrecision.Wrapf("no denom metadata for %s", info.Denom)
		}
		exponent, ok := displayExponent(metadata.Display, metadata.DenomUnits)
		if !ok {
			return 0, types.ErrInvalidPrecision.Wrapf("denom %s has no display unit", info.Denom)
		}
		precision = exponent
	} else {
		contract, err := sdk.AccAddressFromBech32(info.ContractAddr)
		if err != nil {
			return 0, types.ErrInvalidAsset.Wrapf("token %q: %s", info.ContractAddr, err)
		}
		decimals, err := k.tokenKeeper.Decimals(ctx, contract)
		if err != nil {
			return 0, err
		}
		precision = decimals
	}

	if err := k.SetPrecision(ctx, info.ID(), precision); err != nil {
		return 0, err
	}
	return precision, nil
}

// poolPrecisions returns the precisions of both pool assets.
func (k Keeper) poolPrecisions(ctx context.Context, pool types.Pool) ([2]uint32, error) {
	var out [2]uint32
	for i, info := range pool.AssetInfos {
		p, err := k.GetPrecision(ctx, info)
		if err != nil {
			return out, err
		}
		out[i] = p
	}
	return out, nil
}

// CreatePool registers a new pair. The pool starts empty; the first deposit
// sets its liquidity.
func (k Keeper) CreatePool(ctx context.Context, msg types.MsgCreatePool) (*types.CreatePoolResponse, error) {
	if err := msg.ValidateBasic(); err != nil {
		return nil, err
	}

	poolKey := types.PoolKey(msg.AssetInfos[0], msg.AssetInfos[1])
	if k.getStore(ctx).Has(PoolStoreKey(poolKey)) {
		return nil, types.ErrPoolExists.Wrapf("pool %s", poolKey)
	}

	cacheCtx, write := sdk.UnwrapSDKContext(ctx).CacheContext()
	for _, info := range msg.AssetInfos {
		if _, err := k.resolvePrecision(cacheCtx, info); err != nil {
			return nil, err
		}
	}

	now := blockTime(cacheCtx)
	poolID := k.GetNextPoolID(cacheCtx)
	pool := types.Pool{
		ID:         poolID,
		AssetInfos: msg.AssetInfos,
		Reserves:   zeroReserves(),
		LPDenom:    types.LPDenomForPool(poolID),
		Params:     msg.Params,
		State: types.PoolState{
			Initial:     msg.AmpGamma,
			Future:      msg.AmpGamma,
			InitialTime: now,
			FutureTime:  now,
			Price:       types.NewPriceState(msg.InitialPriceScale, now),
		},
		FeeShare:      msg.FeeShare,
		TrackBalances: msg.TrackBalances,
	}

	if err := k.SetPool(cacheCtx, pool); err != nil {
		return nil, err
	}
	k.SetNextPoolID(cacheCtx, poolID+1)
	write()

	sdkCtx := sdk.UnwrapSDKContext(ctx)
	sdkCtx.EventManager().EmitEvent(
		sdk.NewEvent(
			types.EventTypeCreatePool,
			sdk.NewAttribute(types.AttributeKeyPoolID, strconv.FormatUint(poolID, 10)),
			sdk.NewAttribute(types.AttributeKeyPoolKey, poolKey),
			sdk.NewAttribute(types.AttributeKeyLPDenom, pool.LPDenom),
			sdk.NewAttribute(types.AttributeKeySender, msg.Creator),
		),
	)
	k.metrics.PoolsCreated.Inc()
	k.Logger(ctx).Info("pool created",
		"pool_id", poolID,
		"pool_key", poolKey,
		"amp", msg.AmpGamma.Amp.String(),
		"gamma", msg.AmpGamma.Gamma.String(),
		"price_scale", msg.InitialPriceScale.String(),
	)

	return &types.CreatePoolResponse{
		PoolID:  poolID,
		PoolKey: poolKey,
		LPDenom: pool.LPDenom,
	}, nil
}

func poolIDLabel(pool types.Pool) string {
	return strconv.FormatUint(pool.ID, 10)
}

func zeroReserves() [2]math.Int {
	return [2]math.Int{math.ZeroInt(), math.ZeroInt()}
}

// displayExponent returns the exponent of the display unit.
func displayExponent(display string, units []*banktypes.DenomUnit) (uint32, bool) {
	for _, unit := range units {
		if unit != nil && unit.Denom == display {
			return unit.Exponent, true
		}
	}
	return 0, false
}
