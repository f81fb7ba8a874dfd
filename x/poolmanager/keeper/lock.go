package keeper

import (
	"context"
	"sort"

	"github.com/colada-chain/colada/x/poolmanager/types"
)

// withPoolLocks runs fn while holding the reentrancy lock of every listed
// pool. Locks live in the KVStore so they are visible to any callback that
// shares the context, and they vanish together with a discarded cache context.
func (k Keeper) withPoolLocks(ctx context.Context, poolKeys []string, fn func() error) error {
	keys := uniqueSorted(poolKeys)

	acquired := make([]string, 0, len(keys))
	defer func() {
		for _, key := range acquired {
			k.releasePoolLock(ctx, key)
		}
	}()

	for _, key := range keys {
		if err := k.acquirePoolLock(ctx, key); err != nil {
			return err
		}
		acquired = append(acquired, key)
	}

	return fn()
}

// acquirePoolLock attempts to acquire a pool's reentrancy lock. It never waits.
func (k Keeper) acquirePoolLock(ctx context.Context, poolKey string) error {
	store := k.getStore(ctx)
	key := PoolLockKey(poolKey)

	if store.Has(key) {
		k.metrics.LockContention.WithLabelValues(poolKey).Inc()
		return types.ErrPoolLocked.Wrapf("pool %s is locked", poolKey)
	}

	store.Set(key, []byte{0x01})
	return nil
}

// releasePoolLock releases a pool's reentrancy lock
func (k Keeper) releasePoolLock(ctx context.Context, poolKey string) {
	k.getStore(ctx).Delete(PoolLockKey(poolKey))
}

// IsPoolLocked reports whether an operation currently holds the pool.
func (k Keeper) IsPoolLocked(ctx context.Context, poolKey string) bool {
	return k.getStore(ctx).Has(PoolLockKey(poolKey))
}

func uniqueSorted(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}
