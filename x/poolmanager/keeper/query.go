package keeper

import (
	"context"
	"encoding/json"
	"fmt"

	"cosmossdk.io/math"
	"cosmossdk.io/store/prefix"
	sdkerrors "github.com/cosmos/cosmos-sdk/types/errors"
	"github.com/cosmos/cosmos-sdk/types/query"

	"github.com/colada-chain/colada/x/poolmanager/pcl"
	"github.com/colada-chain/colada/x/poolmanager/types"
)

const (
	defaultPaginationLimit = 100
	maxPaginationLimit     = 1000
)

// Querier serves read-only views of the pool manager. Nothing it does is
// ever written back.
type Querier struct {
	Keeper
}

// NewQuerier returns the read-only view of keeper
func NewQuerier(keeper Keeper) Querier {
	return Querier{Keeper: keeper}
}

// Params returns the module parameters
func (q Querier) Params(ctx context.Context) (types.Params, error) {
	params, err := q.Keeper.GetParams(ctx)
	if err != nil {
		return types.Params{}, fmt.Errorf("Params: get params: %w", err)
	}
	return params, nil
}

// Pool returns a pool by pair key with its share supply
func (q Querier) Pool(ctx context.Context, poolKey string) (types.PoolResponse, error) {
	pool, err := q.Keeper.GetPool(ctx, poolKey)
	if err != nil {
		return types.PoolResponse{}, err
	}
	return types.PoolResponse{Pool: pool, TotalShare: q.Keeper.totalShare(ctx, pool)}, nil
}

// Pools returns all pools with pagination
func (q Querier) Pools(ctx context.Context, req *types.QueryPoolsRequest) (*types.QueryPoolsResponse, error) {
	if req == nil {
		return nil, sdkerrors.ErrInvalidRequest
	}

	if req.Pagination == nil {
		req.Pagination = &query.PageRequest{Limit: defaultPaginationLimit}
	} else {
		if req.Pagination.Limit == 0 {
			req.Pagination.Limit = defaultPaginationLimit
		}
		if req.Pagination.Limit > maxPaginationLimit {
			req.Pagination.Limit = maxPaginationLimit
		}
	}

	pools := make([]types.PoolResponse, 0, int(req.Pagination.Limit))
	poolStore := prefix.NewStore(q.Keeper.getStore(ctx), PoolKeyPrefix)

	pageRes, err := query.Paginate(poolStore, req.Pagination, func(key []byte, value []byte) error {
		var pool types.Pool
		if err := json.Unmarshal(value, &pool); err != nil {
			return types.ErrIO.Wrapf("decode pool %s: %s", key, err)
		}
		pools = append(pools, types.PoolResponse{Pool: pool, TotalShare: q.Keeper.totalShare(ctx, pool)})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("Pools: paginate: %w", err)
	}

	return &types.QueryPoolsResponse{
		Pools:      pools,
		Pagination: pageRes,
	}, nil
}

// Share returns the reserves backing amount shares
func (q Querier) Share(ctx context.Context, poolKey string, amount math.Int) ([2]types.Asset, error) {
	if amount.IsNil() || amount.IsNegative() {
		return [2]types.Asset{}, types.ErrNegativeAmount.Wrap("share amount")
	}
	return q.Keeper.Share(ctx, poolKey, amount)
}

// Simulation quotes a single-pool swap
func (q Querier) Simulation(ctx context.Context, offer types.Asset, ask types.AssetInfo) (types.SimulationResponse, error) {
	return q.Keeper.Simulation(ctx, offer, ask)
}

// SimulateSwapOperations quotes a swap chain
func (q Querier) SimulateSwapOperations(ctx context.Context, offerAmount math.Int, ops []types.SwapOperation) (types.SimulateSwapOperationsResponse, error) {
	return q.Keeper.SimulateSwapOperations(ctx, offerAmount, ops)
}

// ComputeD returns the invariant of a pool at the current block time.
func (q Querier) ComputeD(ctx context.Context, poolKey string) (types.ComputeDResponse, error) {
	pool, err := q.Keeper.GetPool(ctx, poolKey)
	if err != nil {
		return types.ComputeDResponse{}, err
	}
	precisions, err := q.Keeper.poolPrecisions(ctx, pool)
	if err != nil {
		return types.ComputeDResponse{}, err
	}

	var xs [2]math.LegacyDec
	for i := range xs {
		if xs[i], err = pcl.WithPrecision(pool.Reserves[i], precisions[i]); err != nil {
			return types.ComputeDResponse{}, err
		}
	}
	if xs[0].IsZero() && xs[1].IsZero() {
		return types.ComputeDResponse{D: math.LegacyZeroDec(), VirtualPrice: math.LegacyZeroDec()}, nil
	}
	xs[1] = xs[1].Mul(pool.State.Price.PriceScale)

	d, err := pcl.CalcD(xs, pcl.AmpGammaAt(pool.State, blockTime(ctx)))
	if err != nil {
		return types.ComputeDResponse{}, err
	}

	resp := types.ComputeDResponse{D: d, VirtualPrice: math.LegacyZeroDec()}
	totalLP, err := pcl.WithPrecision(q.Keeper.totalShare(ctx, pool), pcl.LPTokenPrecision)
	if err != nil {
		return types.ComputeDResponse{}, err
	}
	if totalLP.IsPositive() {
		xcp, err := pcl.GetXcp(d, pool.State.Price.PriceScale)
		if err != nil {
			return types.ComputeDResponse{}, err
		}
		resp.VirtualPrice = xcp.Quo(totalLP)
	}
	return resp, nil
}

// Precision returns the precision of an asset
func (q Querier) Precision(ctx context.Context, info types.AssetInfo) (uint32, error) {
	return q.Keeper.GetPrecision(ctx, info)
}

// BalanceAt returns a historical reserve of a balance tracking pool
func (q Querier) BalanceAt(ctx context.Context, poolKey string, asset types.AssetInfo, height uint64) (types.BalanceAtResponse, error) {
	amount, err := q.Keeper.BalanceAt(ctx, poolKey, asset, height)
	if err != nil {
		return types.BalanceAtResponse{}, err
	}
	return types.BalanceAtResponse{Height: height, Amount: amount}, nil
}

// Observe returns the oracle observation at or before secondsAgo
func (q Querier) Observe(ctx context.Context, poolKey string, secondsAgo uint64) (types.OracleObservation, error) {
	return q.Keeper.Observe(ctx, poolKey, secondsAgo)
}
