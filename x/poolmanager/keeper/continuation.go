package keeper

import (
	"context"

	"github.com/colada-chain/colada/x/poolmanager/types"
)

// GetContinuation returns the reply continuation of the swap chain in flight.
func (k Keeper) GetContinuation(ctx context.Context) (types.ReplyContinuation, bool, error) {
	bz := k.getStore(ctx).Get(ContinuationKey)
	if bz == nil {
		return types.ReplyContinuation{}, false, nil
	}
	c, err := types.UnmarshalReplyContinuation(bz)
	if err != nil {
		return types.ReplyContinuation{}, false, err
	}
	return c, true, nil
}

// setContinuation persists c as the chain in flight
func (k Keeper) setContinuation(ctx context.Context, c types.ReplyContinuation) error {
	bz, err := c.Marshal()
	if err != nil {
		return types.ErrIO.Wrapf("encode reply continuation: %s", err)
	}
	k.getStore(ctx).Set(ContinuationKey, bz)
	return nil
}

func (k Keeper) deleteContinuation(ctx context.Context) {
	k.getStore(ctx).Delete(ContinuationKey)
}

// openContinuation stores a fresh continuation. Only one chain may be in
// flight; a nested chain finds the outer one and is refused.
func (k Keeper) openContinuation(ctx context.Context, c types.ReplyContinuation) error {
	if k.getStore(ctx).Has(ContinuationKey) {
		k.metrics.LockContention.WithLabelValues("router").Inc()
		return types.ErrPoolLocked.Wrap("another swap chain is in flight")
	}
	c.NextHop = 0
	c.Status = types.ChainIdle
	return k.setContinuation(ctx, c)
}

// advanceChain reloads the stored continuation after a hop settled and moves
// it to the next hop.
func (k Keeper) advanceChain(ctx context.Context) (types.ReplyContinuation, error) {
	c, found, err := k.GetContinuation(ctx)
	if err != nil {
		return types.ReplyContinuation{}, err
	}
	if !found {
		return types.ReplyContinuation{}, types.ErrNotFound.Wrap("reply continuation")
	}
	if c.Status != types.ChainHopInFlight {
		return types.ReplyContinuation{}, types.ErrInvalidPathOperations.Wrapf("chain is %s, no hop in flight", c.Status)
	}
	c.NextHop++
	c.Status = types.ChainIdle
	if err := k.setContinuation(ctx, c); err != nil {
		return types.ReplyContinuation{}, err
	}
	return c, nil
}
