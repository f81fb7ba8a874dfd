package keeper

import (
	"context"
	"encoding/json"

	"cosmossdk.io/log"
	storetypes "cosmossdk.io/store/types"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/colada-chain/colada/x/poolmanager/types"
)

// Keeper of the poolmanager store
type Keeper struct {
	storeKey    storetypes.StoreKey
	bankKeeper  types.BankKeeper
	tokenKeeper types.TokenKeeper

	// authority may update pool parameters and module params
	authority string

	metrics *PoolMetrics
}

// NewKeeper creates a new poolmanager Keeper instance
func NewKeeper(
	key storetypes.StoreKey,
	bankKeeper types.BankKeeper,
	tokenKeeper types.TokenKeeper,
	authority string,
) Keeper {
	if _, err := sdk.AccAddressFromBech32(authority); err != nil {
		panic(types.ErrInvalidAddress.Wrapf("invalid authority address: %s", err))
	}

	return Keeper{
		storeKey:    key,
		bankKeeper:  bankKeeper,
		tokenKeeper: tokenKeeper,
		authority:   authority,
		metrics:     NewPoolMetrics(),
	}
}

// GetAuthority returns the module's authority.
func (k Keeper) GetAuthority() string {
	return k.authority
}

// Logger returns a module-specific logger.
func (k Keeper) Logger(ctx context.Context) log.Logger {
	return sdk.UnwrapSDKContext(ctx).Logger().With("module", "x/"+types.ModuleName)
}

// getStore returns the KVStore for the poolmanager module
func (k Keeper) getStore(ctx context.Context) storetypes.KVStore {
	sdkCtx := sdk.UnwrapSDKContext(ctx)
	return sdkCtx.KVStore(k.storeKey)
}

// getJSON decodes the value at key into v and reports whether it was found.
func (k Keeper) getJSON(ctx context.Context, key []byte, v any) (bool, error) {
	bz := k.getStore(ctx).Get(key)
	if bz == nil {
		return false, nil
	}
	if err := json.Unmarshal(bz, v); err != nil {
		return false, types.ErrIO.Wrapf("decode %x: %s", key, err)
	}
	return true, nil
}

func (k Keeper) setJSON(ctx context.Context, key []byte, v any) error {
	bz, err := json.Marshal(v)
	if err != nil {
		return types.ErrIO.Wrapf("encode %x: %s", key, err)
	}
	k.getStore(ctx).Set(key, bz)
	return nil
}

// blockTime is the block timestamp in seconds.
func blockTime(ctx context.Context) uint64 {
	ts := sdk.UnwrapSDKContext(ctx).BlockTime().Unix()
	if ts < 0 {
		return 0
	}
	return uint64(ts)
}

func blockHeight(ctx context.Context) uint64 {
	h := sdk.UnwrapSDKContext(ctx).BlockHeight()
	if h < 0 {
		return 0
	}
	return uint64(h)
}
