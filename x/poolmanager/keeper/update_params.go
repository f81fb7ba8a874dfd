package keeper

import (
	"context"
	"strconv"

	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/colada-chain/colada/x/poolmanager/pcl"
	"github.com/colada-chain/colada/x/poolmanager/types"
)

// UpdatePoolParams adjusts the fee curve, the amp/gamma schedule or the fee
// share of a pool on behalf of the module authority.
func (k Keeper) UpdatePoolParams(ctx context.Context, msg types.MsgUpdatePoolParams) error {
	if err := msg.ValidateBasic(); err != nil {
		return err
	}
	if msg.Authority != k.authority {
		return types.ErrUnauthorized.Wrapf("expected %s, got %s", k.authority, msg.Authority)
	}

	cacheCtx, write := sdk.UnwrapSDKContext(ctx).CacheContext()

	err := k.withPoolLocks(cacheCtx, []string{msg.PoolKey}, func() error {
		pool, err := k.GetPool(cacheCtx, msg.PoolKey)
		if err != nil {
			return err
		}
		now := blockTime(cacheCtx)

		var actions []string
		if msg.Params != nil {
			pool.Params = *msg.Params
			actions = append(actions, "params")
		}
		if msg.StopRamp {
			pcl.StopRamp(&pool.State, now)
			actions = append(actions, "stop_ramp")
			k.Logger(cacheCtx).Info("amp/gamma ramp stopped",
				"pool_key", pool.Key(),
				"amp", pool.State.Future.Amp.String(),
				"gamma", pool.State.Future.Gamma.String(),
			)
		}
		if msg.Ramp != nil {
			if err := pcl.StartRamp(&pool.State, msg.Ramp.Future, now, msg.Ramp.FutureTime); err != nil {
				return err
			}
			actions = append(actions, "start_ramp")
			k.Logger(cacheCtx).Info("amp/gamma ramp started",
				"pool_key", pool.Key(),
				"future_amp", msg.Ramp.Future.Amp.String(),
				"future_gamma", msg.Ramp.Future.Gamma.String(),
				"future_time", msg.Ramp.FutureTime,
			)
		}
		if msg.FeeShare != nil {
			feeShare := *msg.FeeShare
			pool.FeeShare = &feeShare
			actions = append(actions, "fee_share")
		}

		if err := k.SetPool(cacheCtx, pool); err != nil {
			return err
		}

		sdkCtx := sdk.UnwrapSDKContext(cacheCtx)
		for _, action := range actions {
			sdkCtx.EventManager().EmitEvent(
				sdk.NewEvent(
					types.EventTypeUpdatePoolParams,
					sdk.NewAttribute(types.AttributeKeyPoolID, strconv.FormatUint(pool.ID, 10)),
					sdk.NewAttribute(types.AttributeKeyPoolKey, pool.Key()),
					sdk.NewAttribute(types.AttributeKeyAction, action),
				),
			)
		}
		return nil
	})
	if err != nil {
		return err
	}

	write()
	return nil
}
