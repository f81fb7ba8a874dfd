package keeper

import (
	"context"
	"strings"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/colada-chain/colada/x/poolmanager/types"
)

// ExecuteSwapOperations runs a swap chain. Progress lives in the stored
// reply continuation; after every hop the router reloads it to decide what
// to do next. The chain settles atomically: when any hop or the final
// minimum receive check fails, every hop is rolled back.
func (k Keeper) ExecuteSwapOperations(ctx context.Context, msg types.MsgExecuteSwapOperations) (*types.SwapOperationsResponse, error) {
	if err := msg.ValidateBasic(); err != nil {
		return nil, err
	}
	sender, err := sdk.AccAddressFromBech32(msg.Sender)
	if err != nil {
		return nil, types.ErrInvalidAddress.Wrapf("invalid sender address: %s", err)
	}
	receiver := sender
	if msg.To != "" {
		if receiver, err = sdk.AccAddressFromBech32(msg.To); err != nil {
			return nil, types.ErrInvalidAddress.Wrapf("invalid receiver address: %s", err)
		}
	}

	poolKeys := make([]string, len(msg.Operations))
	for i, op := range msg.Operations {
		poolKeys[i] = types.PoolKey(op.OfferAssetInfo, op.AskAssetInfo)
	}

	cacheCtx, write := sdk.UnwrapSDKContext(ctx).CacheContext()

	var resp *types.SwapOperationsResponse
	err = k.withPoolLocks(cacheCtx, poolKeys, func() error {
		resp, err = k.runChain(cacheCtx, msg, sender, receiver)
		return err
	})
	if err != nil {
		k.metrics.SwapChains.WithLabelValues(string(types.ChainFailed)).Inc()
		k.Logger(ctx).Error("swap chain failed",
			"sender", msg.Sender,
			"operations", operationsString(msg.Operations),
			"offer_amount", msg.OfferAmount.String(),
			"error", err,
		)
		return nil, err
	}

	write()
	k.metrics.SwapChains.WithLabelValues(string(types.ChainSettled)).Inc()
	k.metrics.SwapChainHops.Observe(float64(len(msg.Operations)))
	return resp, nil
}

func (k Keeper) runChain(
	ctx context.Context,
	msg types.MsgExecuteSwapOperations,
	sender, receiver sdk.AccAddress,
) (*types.SwapOperationsResponse, error) {
	for _, op := range msg.Operations {
		if _, err := k.GetPool(ctx, types.PoolKey(op.OfferAssetInfo, op.AskAssetInfo)); err != nil {
			return nil, err
		}
	}

	target := msg.Operations[len(msg.Operations)-1].AskAssetInfo
	balanceBefore, err := k.queryBalance(ctx, target, receiver)
	if err != nil {
		return nil, err
	}

	c := types.ReplyContinuation{
		TargetAsset:    target,
		BalanceBefore:  balanceBefore,
		MinimumReceive: msg.MinimumReceive,
		Receiver:       receiver.String(),
		Operations:     msg.Operations,
		MaxSpread:      msg.MaxSpread,
	}
	if err := k.openContinuation(ctx, c); err != nil {
		return nil, err
	}
	if c, err = k.loadContinuation(ctx); err != nil {
		return nil, err
	}

	if !c.Single() {
		offer := msg.Operations[0].OfferAssetInfo
		pull := types.NewTransfer(offer, msg.OfferAmount, sender.String(), types.RouterAddress().String())
		if err := k.dispatch(ctx, []types.Transfer{pull}); err != nil {
			return nil, err
		}
	}

	hops := make([]types.SwapResponse, 0, len(c.Operations))
	for !c.Terminal() {
		hop, err := k.executeSwapOperation(ctx, c, sender, msg.OfferAmount)
		if err != nil {
			return nil, err
		}
		hops = append(hops, hop)

		if c, err = k.advanceChain(ctx); err != nil {
			return nil, err
		}
	}

	if err := k.settleChain(ctx, c); err != nil {
		return nil, err
	}

	returnAmount := hops[len(hops)-1].ReturnAmount
	sdkCtx := sdk.UnwrapSDKContext(ctx)
	sdkCtx.EventManager().EmitEvent(
		sdk.NewEvent(
			types.EventTypeSwapChain,
			sdk.NewAttribute(types.AttributeKeySender, sender.String()),
			sdk.NewAttribute(types.AttributeKeyReceiver, receiver.String()),
			sdk.NewAttribute(types.AttributeKeyOperations, operationsString(c.Operations)),
			sdk.NewAttribute(types.AttributeKeyOfferAmount, msg.OfferAmount.String()),
			sdk.NewAttribute(types.AttributeKeyReturnAmount, returnAmount.String()),
		),
	)

	return &types.SwapOperationsResponse{ReturnAmount: returnAmount, Hops: hops}, nil
}

// executeSwapOperation settles the hop the continuation points at. A single
// hop chain swaps straight from the sender to the receiver. Otherwise the
// offer is whatever the router escrow holds of the offer asset, and the
// output goes back to escrow unless this is the last hop.
func (k Keeper) executeSwapOperation(
	ctx context.Context,
	c types.ReplyContinuation,
	sender sdk.AccAddress,
	offerAmount math.Int,
) (types.SwapResponse, error) {
	op := c.Operations[c.NextHop]

	c.Status = types.ChainHopInFlight
	if err := k.setContinuation(ctx, c); err != nil {
		return types.SwapResponse{}, err
	}

	receiver, err := sdk.AccAddressFromBech32(c.Receiver)
	if err != nil {
		return types.SwapResponse{}, types.ErrInvalidAddress.Wrapf("invalid receiver address: %s", err)
	}
	router := types.RouterAddress()

	from, to := sender, receiver
	if !c.Single() {
		from = router
		if c.NextHop < len(c.Operations)-1 {
			to = router
		}
		if offerAmount, err = k.queryBalance(ctx, op.OfferAssetInfo, router); err != nil {
			return types.SwapResponse{}, err
		}
		if !offerAmount.IsPositive() {
			return types.SwapResponse{}, types.ErrInvalidZeroAmount.Wrapf("hop %d: escrow holds no %s", c.NextHop, op.OfferAssetInfo)
		}
	}

	pool, err := k.GetPool(ctx, types.PoolKey(op.OfferAssetInfo, op.AskAssetInfo))
	if err != nil {
		return types.SwapResponse{}, err
	}

	offer := types.NewAsset(op.OfferAssetInfo, offerAmount)
	resp, err := k.executeSwap(ctx, pool, offer, op.AskAssetInfo, nil, c.MaxSpread, from, to)
	if err != nil {
		return types.SwapResponse{}, err
	}

	k.Logger(ctx).Debug("swap chain hop settled",
		"hop", c.NextHop,
		"operation", op.String(),
		"offer", offer.String(),
		"return_amount", resp.ReturnAmount.String(),
	)
	return resp, nil
}

// settleChain checks the minimum receive against the balance the receiver
// gained over the whole chain and clears the continuation.
func (k Keeper) settleChain(ctx context.Context, c types.ReplyContinuation) error {
	receiver, err := sdk.AccAddressFromBech32(c.Receiver)
	if err != nil {
		return types.ErrInvalidAddress.Wrapf("invalid receiver address: %s", err)
	}
	balanceAfter, err := k.queryBalance(ctx, c.TargetAsset, receiver)
	if err != nil {
		return err
	}
	received := balanceAfter.Sub(c.BalanceBefore)

	if c.MinimumReceive != nil && received.LT(*c.MinimumReceive) {
		return types.ErrMinimumReceiveNotMet.Wrapf("received %s %s, minimum %s", received, c.TargetAsset, *c.MinimumReceive)
	}

	c.Status = types.ChainSettled
	if err := k.setContinuation(ctx, c); err != nil {
		return err
	}
	k.deleteContinuation(ctx)
	return nil
}

func (k Keeper) loadContinuation(ctx context.Context) (types.ReplyContinuation, error) {
	c, found, err := k.GetContinuation(ctx)
	if err != nil {
		return types.ReplyContinuation{}, err
	}
	if !found {
		return types.ReplyContinuation{}, types.ErrNotFound.Wrap("reply continuation")
	}
	return c, nil
}

// SimulateSwapOperations quotes a swap chain. Hops run against a throw-away
// cache so a pool visited twice sees its own earlier hop.
func (k Keeper) SimulateSwapOperations(ctx context.Context, offerAmount math.Int, ops []types.SwapOperation) (types.SimulateSwapOperationsResponse, error) {
	if offerAmount.IsNil() || !offerAmount.IsPositive() {
		return types.SimulateSwapOperationsResponse{}, types.ErrInvalidZeroAmount.Wrap("offer amount must be positive")
	}
	if err := types.ValidateOperations(ops); err != nil {
		return types.SimulateSwapOperationsResponse{}, err
	}

	cacheCtx, _ := sdk.UnwrapSDKContext(ctx).CacheContext()

	amount := offerAmount
	hops := make([]types.SimulationResponse, 0, len(ops))
	for _, op := range ops {
		pool, err := k.GetPoolByAssets(cacheCtx, op.OfferAssetInfo, op.AskAssetInfo)
		if err != nil {
			return types.SimulateSwapOperationsResponse{}, err
		}
		q, err := k.quoteSwap(cacheCtx, &pool, types.NewAsset(op.OfferAssetInfo, amount), op.AskAssetInfo)
		if err != nil {
			return types.SimulateSwapOperationsResponse{}, err
		}
		if err := k.SetPool(cacheCtx, pool); err != nil {
			return types.SimulateSwapOperationsResponse{}, err
		}
		hops = append(hops, types.SimulationResponse{
			ReturnAmount:     q.returnAmount,
			SpreadAmount:     q.spreadAmount,
			CommissionAmount: q.commissionAmount,
		})
		amount = q.returnAmount
	}

	return types.SimulateSwapOperationsResponse{Amount: amount, Hops: hops}, nil
}

func operationsString(ops []types.SwapOperation) string {
	parts := make([]string, len(ops))
	for i, op := range ops {
		parts[i] = op.String()
	}
	return strings.Join(parts, ",")
}
