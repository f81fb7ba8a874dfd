package keeper

import (
	"context"
	"sort"

	"cosmossdk.io/math"

	"github.com/colada-chain/colada/x/poolmanager/pcl"
	"github.com/colada-chain/colada/x/poolmanager/types"
)

// getObservationBuffer returns a pool's ring buffer cursor.
func (k Keeper) getObservationBuffer(ctx context.Context, poolKey string) (types.ObservationBuffer, error) {
	var buf types.ObservationBuffer
	_, err := k.getJSON(ctx, ObservationBufferKey(poolKey), &buf)
	return buf, err
}

func (k Keeper) getObservation(ctx context.Context, poolKey string, index uint64) (types.Observation, error) {
	var obs types.Observation
	found, err := k.getJSON(ctx, ObservationKey(poolKey, index), &obs)
	if err != nil {
		return types.Observation{}, err
	}
	if !found {
		return types.Observation{}, types.ErrNotFound.Wrapf("observation %d of pool %s", index, poolKey)
	}
	return obs, nil
}

// recordObservation accumulates traded volume into the slot of the current
// block timestamp, opening a new slot when time moved. The buffer keeps the
// latest ObservationsSize slots. base and quote are raw amounts of asset 1
// and asset 2.
func (k Keeper) recordObservation(ctx context.Context, pool types.Pool, base, quote math.Int) error {
	poolKey := pool.Key()
	now := blockTime(ctx)

	buf, err := k.getObservationBuffer(ctx, poolKey)
	if err != nil {
		return err
	}

	obs := types.Observation{Timestamp: now, BaseAmount: math.ZeroInt(), QuoteAmount: math.ZeroInt()}
	index := buf.Head
	if buf.Len > 0 {
		lastIndex := (buf.Head + types.ObservationsSize - 1) % types.ObservationsSize
		last, err := k.getObservation(ctx, poolKey, lastIndex)
		if err != nil {
			return err
		}
		if last.Timestamp == now {
			obs = last
			index = lastIndex
		}
	}

	obs.BaseAmount = obs.BaseAmount.Add(base)
	obs.QuoteAmount = obs.QuoteAmount.Add(quote)

	precisions, err := k.poolPrecisions(ctx, pool)
	if err != nil {
		return err
	}
	baseDec, err := pcl.WithPrecision(obs.BaseAmount, precisions[0])
	if err != nil {
		return err
	}
	quoteDec, err := pcl.WithPrecision(obs.QuoteAmount, precisions[1])
	if err != nil {
		return err
	}
	if !quoteDec.IsPositive() {
		return nil
	}
	// asset 1 per asset 2, the unit of the price scale
	obs.Price = baseDec.Quo(quoteDec)

	if err := k.setJSON(ctx, ObservationKey(poolKey, index), obs); err != nil {
		return err
	}
	if index == buf.Head {
		buf.Head = (buf.Head + 1) % types.ObservationsSize
		if buf.Len < types.ObservationsSize {
			buf.Len++
		}
		return k.setJSON(ctx, ObservationBufferKey(poolKey), buf)
	}
	return nil
}

// Observe returns the latest observation taken at or before secondsAgo
// seconds in the past.
func (k Keeper) Observe(ctx context.Context, poolKey string, secondsAgo uint64) (types.OracleObservation, error) {
	if _, err := k.GetPool(ctx, poolKey); err != nil {
		return types.OracleObservation{}, err
	}
	buf, err := k.getObservationBuffer(ctx, poolKey)
	if err != nil {
		return types.OracleObservation{}, err
	}
	if buf.Len == 0 {
		return types.OracleObservation{}, types.ErrNotFound.Wrapf("no observations for pool %s", poolKey)
	}

	now := blockTime(ctx)
	target := uint64(0)
	if now > secondsAgo {
		target = now - secondsAgo
	}

	// slot of the i-th oldest observation
	oldest := (buf.Head + types.ObservationsSize - buf.Len) % types.ObservationsSize
	slot := func(i uint64) uint64 {
		return (oldest + i) % types.ObservationsSize
	}

	var searchErr error
	// first observation strictly after target
	after := sort.Search(int(buf.Len), func(i int) bool {
		obs, err := k.getObservation(ctx, poolKey, slot(uint64(i)))
		if err != nil {
			searchErr = err
			return true
		}
		return obs.Timestamp > target
	})
	if searchErr != nil {
		return types.OracleObservation{}, searchErr
	}
	if after == 0 {
		return types.OracleObservation{}, types.ErrNotFound.Wrapf("no observation at or before %d for pool %s", target, poolKey)
	}

	obs, err := k.getObservation(ctx, poolKey, slot(uint64(after-1)))
	if err != nil {
		return types.OracleObservation{}, err
	}
	return types.OracleObservation{Timestamp: obs.Timestamp, Price: obs.Price}, nil
}
