package keeper

import (
	"context"
	"errors"
	"time"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/colada-chain/colada/x/poolmanager/pcl"
	"github.com/colada-chain/colada/x/poolmanager/types"
)

// swapQuote is a priced swap. Decimal fields are internal units, integer
// fields raw ask-asset units.
type swapQuote struct {
	offerIndex int
	askIndex   int

	offerDec  math.LegacyDec
	returnDec math.LegacyDec
	spreadDec math.LegacyDec

	returnAmount     math.Int
	spreadAmount     math.Int
	commissionAmount math.Int
	makerFeeAmount   math.Int
	feeShareAmount   math.Int

	feeAddress string
	repegged   bool
	// moves is set when both legs reach pcl.MinTradeSize; smaller trades
	// settle without touching the price state or the observations.
	moves bool
}

// quoteSwap prices offer against the pool and applies the result to it:
// reserves move and the price state advances. Nothing is transferred or
// persisted, so a caller may throw the pool away to get a pure quote.
func (k Keeper) quoteSwap(ctx context.Context, pool *types.Pool, offer types.Asset, ask types.AssetInfo) (swapQuote, error) {
	offerIndex, err := pool.AssetIndex(offer.Info)
	if err != nil {
		return swapQuote{}, err
	}
	askIndex, err := pool.AssetIndex(ask)
	if err != nil {
		return swapQuote{}, err
	}
	if offerIndex == askIndex {
		return swapQuote{}, types.ErrDoublingAssetsPath.Wrapf("cannot swap %s for itself", ask)
	}

	precisions, err := k.poolPrecisions(ctx, *pool)
	if err != nil {
		return swapQuote{}, err
	}
	var xs [2]math.LegacyDec
	for i := range xs {
		if xs[i], err = pcl.WithPrecision(pool.Reserves[i], precisions[i]); err != nil {
			return swapQuote{}, err
		}
	}
	offerDec, err := pcl.WithPrecision(offer.Amount, precisions[offerIndex])
	if err != nil {
		return swapQuote{}, err
	}
	if err := pcl.BeforeSwapCheck(xs, offerDec); err != nil {
		return swapQuote{}, err
	}

	params, err := k.GetParams(ctx)
	if err != nil {
		return swapQuote{}, err
	}
	shareRate := math.LegacyZeroDec()
	if pool.FeeShare != nil {
		shareRate = pool.FeeShare.Rate()
	}

	now := blockTime(ctx)
	res, err := pcl.ComputeSwap(xs, offerDec, askIndex, pool.State, pool.Params, now, params.EffectiveMakerFeeRate(), shareRate)
	if err != nil {
		k.countSolverFailure("swap", err)
		return swapQuote{}, err
	}

	q := swapQuote{
		offerIndex: offerIndex,
		askIndex:   askIndex,
		offerDec:   offerDec,
		returnDec:  res.Dy,
		spreadDec:  res.SpreadFee,
		feeAddress: params.FeeAddress,
	}
	askPrecision := precisions[askIndex]
	for _, conv := range []struct {
		dec math.LegacyDec
		out *math.Int
	}{
		{res.Dy, &q.returnAmount},
		{res.SpreadFee, &q.spreadAmount},
		{res.TotalFee, &q.commissionAmount},
		{res.MakerFee, &q.makerFeeAmount},
		{res.ShareFee, &q.feeShareAmount},
	} {
		if *conv.out, err = pcl.ToUint(conv.dec, askPrecision); err != nil {
			return swapQuote{}, err
		}
	}
	if q.returnAmount.IsZero() {
		return swapQuote{}, types.ErrInvalidZeroAmount.Wrapf("offer %s returns nothing", offer)
	}

	outflow := q.returnAmount.Add(q.makerFeeAmount).Add(q.feeShareAmount)
	if outflow.GT(pool.Reserves[askIndex]) {
		return swapQuote{}, types.ErrNegativeAmount.Wrapf("outflow %s exceeds reserve %s", outflow, pool.Reserves[askIndex])
	}
	pool.Reserves[offerIndex] = pool.Reserves[offerIndex].Add(offer.Amount)
	pool.Reserves[askIndex] = pool.Reserves[askIndex].Sub(outflow)

	q.moves = offerDec.GTE(pcl.MinTradeSize) && res.AskOutflow().GTE(pcl.MinTradeSize)
	if !q.moves {
		return q, nil
	}
	totalLP, err := pcl.WithPrecision(k.totalShare(ctx, *pool), pcl.LPTokenPrecision)
	if err != nil {
		return swapQuote{}, err
	}
	if !totalLP.IsPositive() {
		return q, nil
	}

	newXs := xs
	newXs[offerIndex] = newXs[offerIndex].Add(offerDec)
	newXs[askIndex] = newXs[askIndex].Sub(res.AskOutflow())
	newXs[1] = newXs[1].Mul(pool.State.Price.PriceScale)

	lastPrice, err := res.LastPrice(offerDec, offerIndex)
	if err != nil {
		return swapQuote{}, err
	}
	q.repegged, err = pcl.UpdatePrice(&pool.State, pool.Params, now, totalLP, newXs, lastPrice)
	if err != nil {
		k.countSolverFailure("update_price", err)
		return swapQuote{}, err
	}
	return q, nil
}

// executeSwap settles a swap through pool: the offer is pulled from `from`,
// the return is paid to `to` and fees are routed to their recipients. The
// caller holds the pool lock and owns the cache context.
func (k Keeper) executeSwap(
	ctx context.Context,
	pool types.Pool,
	offer types.Asset,
	ask types.AssetInfo,
	beliefPrice, maxSpread *math.LegacyDec,
	from, to sdk.AccAddress,
) (types.SwapResponse, error) {
	start := time.Now()
	defer func() {
		k.metrics.SwapLatency.Observe(time.Since(start).Seconds())
	}()

	resp, err := k.settleSwap(ctx, pool, offer, ask, beliefPrice, maxSpread, from, to)
	status := "success"
	if err != nil {
		status = "failed"
	}
	k.metrics.SwapsTotal.WithLabelValues(poolIDLabel(pool), offer.Info.ID(), ask.ID(), status).Inc()
	return resp, err
}

func (k Keeper) settleSwap(
	ctx context.Context,
	pool types.Pool,
	offer types.Asset,
	ask types.AssetInfo,
	beliefPrice, maxSpread *math.LegacyDec,
	from, to sdk.AccAddress,
) (types.SwapResponse, error) {
	q, err := k.quoteSwap(ctx, &pool, offer, ask)
	if err != nil {
		return types.SwapResponse{}, err
	}
	if err := pcl.AssertMaxSpread(beliefPrice, maxSpread, q.offerDec, q.returnDec, q.spreadDec); err != nil {
		return types.SwapResponse{}, err
	}

	moduleAddr := types.ModuleAddress().String()
	transfers := []types.Transfer{
		types.NewTransfer(offer.Info, offer.Amount, from.String(), moduleAddr),
		types.NewTransfer(ask, q.returnAmount, moduleAddr, to.String()),
	}
	if q.makerFeeAmount.IsPositive() {
		transfers = append(transfers, types.NewTransfer(ask, q.makerFeeAmount, moduleAddr, q.feeAddress))
	}
	if q.feeShareAmount.IsPositive() {
		transfers = append(transfers, types.NewTransfer(ask, q.feeShareAmount, moduleAddr, pool.FeeShare.Recipient))
	}
	if err := k.dispatch(ctx, transfers); err != nil {
		return types.SwapResponse{}, err
	}

	if err := k.SetPool(ctx, pool); err != nil {
		return types.SwapResponse{}, err
	}
	if err := k.snapshotReserves(ctx, pool); err != nil {
		return types.SwapResponse{}, err
	}
	if q.moves {
		amounts := [2]math.Int{}
		amounts[q.offerIndex] = offer.Amount
		amounts[q.askIndex] = q.returnAmount
		if err := k.recordObservation(ctx, pool, amounts[0], amounts[1]); err != nil {
			return types.SwapResponse{}, err
		}
	}

	sdkCtx := sdk.UnwrapSDKContext(ctx)
	sdkCtx.EventManager().EmitEvent(
		sdk.NewEvent(
			types.EventTypeSwap,
			sdk.NewAttribute(types.AttributeKeyPoolKey, pool.Key()),
			sdk.NewAttribute(types.AttributeKeySender, from.String()),
			sdk.NewAttribute(types.AttributeKeyReceiver, to.String()),
			sdk.NewAttribute(types.AttributeKeyOfferAsset, offer.Info.ID()),
			sdk.NewAttribute(types.AttributeKeyAskAsset, ask.ID()),
			sdk.NewAttribute(types.AttributeKeyOfferAmount, offer.Amount.String()),
			sdk.NewAttribute(types.AttributeKeyReturnAmount, q.returnAmount.String()),
			sdk.NewAttribute(types.AttributeKeySpreadAmount, q.spreadAmount.String()),
			sdk.NewAttribute(types.AttributeKeyCommission, q.commissionAmount.String()),
			sdk.NewAttribute(types.AttributeKeyMakerFee, q.makerFeeAmount.String()),
			sdk.NewAttribute(types.AttributeKeyFeeShare, q.feeShareAmount.String()),
		),
	)
	if q.repegged {
		k.emitRepeg(ctx, pool)
	}

	poolID := poolIDLabel(pool)
	k.metrics.SwapVolume.WithLabelValues(poolID, offer.Info.ID()).Add(intToFloat(offer.Amount))
	k.metrics.SwapFeesCollected.WithLabelValues(poolID, ask.ID(), "total").Add(intToFloat(q.commissionAmount))
	k.metrics.SwapFeesCollected.WithLabelValues(poolID, ask.ID(), "maker").Add(intToFloat(q.makerFeeAmount))
	k.metrics.SwapFeesCollected.WithLabelValues(poolID, ask.ID(), "share").Add(intToFloat(q.feeShareAmount))

	k.Logger(ctx).Debug("swap executed",
		"pool_key", pool.Key(),
		"offer", offer.String(),
		"return_amount", q.returnAmount.String(),
		"spread_amount", q.spreadAmount.String(),
		"commission_amount", q.commissionAmount.String(),
	)

	return types.SwapResponse{
		OfferAsset:       offer,
		AskAsset:         ask,
		ReturnAmount:     q.returnAmount,
		SpreadAmount:     q.spreadAmount,
		CommissionAmount: q.commissionAmount,
		MakerFeeAmount:   q.makerFeeAmount,
		FeeShareAmount:   q.feeShareAmount,
		Transfers:        transfers,
	}, nil
}

// Swap trades through the single pool of the offer and ask assets. Every
// state change rolls back together when any step fails.
func (k Keeper) Swap(ctx context.Context, msg types.MsgSwap) (*types.SwapResponse, error) {
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

	poolKey := types.PoolKey(msg.OfferAsset.Info, msg.AskAsset)
	cacheCtx, write := sdk.UnwrapSDKContext(ctx).CacheContext()

	var resp types.SwapResponse
	err = k.withPoolLocks(cacheCtx, []string{poolKey}, func() error {
		pool, err := k.GetPool(cacheCtx, poolKey)
		if err != nil {
			return err
		}
		resp, err = k.executeSwap(cacheCtx, pool, msg.OfferAsset, msg.AskAsset, msg.BeliefPrice, msg.MaxSpread, sender, receiver)
		return err
	})
	if err != nil {
		return nil, err
	}

	write()
	return &resp, nil
}

// Simulation quotes a swap without changing state.
func (k Keeper) Simulation(ctx context.Context, offer types.Asset, ask types.AssetInfo) (types.SimulationResponse, error) {
	if err := offer.Validate(); err != nil {
		return types.SimulationResponse{}, err
	}
	pool, err := k.GetPoolByAssets(ctx, offer.Info, ask)
	if err != nil {
		return types.SimulationResponse{}, err
	}
	q, err := k.quoteSwap(ctx, &pool, offer, ask)
	if err != nil {
		return types.SimulationResponse{}, err
	}
	return types.SimulationResponse{
		ReturnAmount:     q.returnAmount,
		SpreadAmount:     q.spreadAmount,
		CommissionAmount: q.commissionAmount,
	}, nil
}

func (k Keeper) emitRepeg(ctx context.Context, pool types.Pool) {
	sdkCtx := sdk.UnwrapSDKContext(ctx)
	sdkCtx.EventManager().EmitEvent(
		sdk.NewEvent(
			types.EventTypeRepeg,
			sdk.NewAttribute(types.AttributeKeyPoolKey, pool.Key()),
			sdk.NewAttribute(types.AttributeKeyPriceScale, pool.State.Price.PriceScale.String()),
		),
	)
	k.metrics.Repegs.WithLabelValues(poolIDLabel(pool)).Inc()
	k.Logger(ctx).Info("price scale adjusted",
		"pool_key", pool.Key(),
		"price_scale", pool.State.Price.PriceScale.String(),
		"oracle_price", pool.State.Price.OracleEmaPrice.String(),
	)
}

func (k Keeper) countSolverFailure(operation string, err error) {
	if errors.Is(err, types.ErrInvariantDidNotConverge) || errors.Is(err, types.ErrArithmeticOverflow) {
		k.metrics.SolverFailures.WithLabelValues(operation).Inc()
	}
}

func intToFloat(i math.Int) float64 {
	f, _ := math.LegacyNewDecFromInt(i).Float64()
	return f
}
