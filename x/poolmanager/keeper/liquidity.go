package keeper

import (
	"context"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/colada-chain/colada/x/poolmanager/pcl"
	"github.com/colada-chain/colada/x/poolmanager/types"
)

// ProvideLiquidity deposits one or both pool assets and mints shares to the
// receiver. The first deposit also mints MinimumLiquidityAmount to the null
// holder, where it stays forever.
func (k Keeper) ProvideLiquidity(ctx context.Context, msg types.MsgProvideLiquidity) (*types.ProvideResponse, error) {
	if err := msg.ValidateBasic(); err != nil {
		return nil, err
	}
	sender, err := sdk.AccAddressFromBech32(msg.Sender)
	if err != nil {
		return nil, types.ErrInvalidAddress.Wrapf("invalid sender address: %s", err)
	}
	receiver := sender
	if msg.Receiver != "" {
		if receiver, err = sdk.AccAddressFromBech32(msg.Receiver); err != nil {
			return nil, types.ErrInvalidAddress.Wrapf("invalid receiver address: %s", err)
		}
	}

	cacheCtx, write := sdk.UnwrapSDKContext(ctx).CacheContext()

	var resp *types.ProvideResponse
	err = k.withPoolLocks(cacheCtx, []string{msg.PoolKey}, func() error {
		pool, err := k.GetPool(cacheCtx, msg.PoolKey)
		if err != nil {
			return err
		}
		resp, err = k.provide(cacheCtx, pool, msg.Assets, msg.SlippageTolerance, sender, receiver)
		return err
	})
	if err != nil {
		return nil, err
	}

	write()
	return resp, nil
}

func (k Keeper) provide(
	ctx context.Context,
	pool types.Pool,
	assets []types.Asset,
	slippageTolerance *math.LegacyDec,
	sender, receiver sdk.AccAddress,
) (*types.ProvideResponse, error) {
	deposits := zeroReserves()
	for _, asset := range assets {
		i, err := pool.AssetIndex(asset.Info)
		if err != nil {
			return nil, err
		}
		deposits[i] = asset.Amount
	}

	precisions, err := k.poolPrecisions(ctx, pool)
	if err != nil {
		return nil, err
	}
	var xs, ds [2]math.LegacyDec
	for i := range xs {
		if xs[i], err = pcl.WithPrecision(pool.Reserves[i], precisions[i]); err != nil {
			return nil, err
		}
		if ds[i], err = pcl.WithPrecision(deposits[i], precisions[i]); err != nil {
			return nil, err
		}
	}

	total := k.totalShare(ctx, pool)
	totalDec, err := pcl.WithPrecision(total, pcl.LPTokenPrecision)
	if err != nil {
		return nil, err
	}

	res, err := pcl.ProvideShare(&pool.State, pool.Params, blockTime(ctx), xs, ds, totalDec, slippageTolerance)
	if err != nil {
		k.countSolverFailure("provide", err)
		return nil, err
	}

	share, err := pcl.ToUint(res.Share, pcl.LPTokenPrecision)
	if err != nil {
		return nil, err
	}
	if share.IsZero() {
		return nil, types.ErrInvalidZeroAmount.Wrap("deposit mints no shares")
	}
	locked, err := pcl.ToUint(res.Locked, pcl.LPTokenPrecision)
	if err != nil {
		return nil, err
	}

	moduleAddr := types.ModuleAddress().String()
	var transfers []types.Transfer
	for i, amount := range deposits {
		if amount.IsPositive() {
			transfers = append(transfers, types.NewTransfer(pool.AssetInfos[i], amount, sender.String(), moduleAddr))
		}
	}
	if locked.IsPositive() {
		transfers = append(transfers, types.NewMint(pool.LPDenom, locked, types.NullHolderAddress().String()))
	}
	transfers = append(transfers, types.NewMint(pool.LPDenom, share, receiver.String()))

	if err := k.dispatch(ctx, transfers); err != nil {
		return nil, err
	}

	for i := range pool.Reserves {
		pool.Reserves[i] = pool.Reserves[i].Add(deposits[i])
	}
	if err := k.SetPool(ctx, pool); err != nil {
		return nil, err
	}
	if err := k.snapshotReserves(ctx, pool); err != nil {
		return nil, err
	}

	sdkCtx := sdk.UnwrapSDKContext(ctx)
	sdkCtx.EventManager().EmitEvent(
		sdk.NewEvent(
			types.EventTypeProvideLiquidity,
			sdk.NewAttribute(types.AttributeKeyPoolKey, pool.Key()),
			sdk.NewAttribute(types.AttributeKeySender, sender.String()),
			sdk.NewAttribute(types.AttributeKeyReceiver, receiver.String()),
			sdk.NewAttribute(types.AttributeKeyAssets, assetsString(pool.AssetInfos, deposits)),
			sdk.NewAttribute(types.AttributeKeyShare, share.String()),
			sdk.NewAttribute(types.AttributeKeySlippage, res.Slippage.String()),
		),
	)
	if res.Repegged {
		k.emitRepeg(ctx, pool)
	}
	k.metrics.LiquidityProvided.WithLabelValues(poolIDLabel(pool)).Inc()
	k.Logger(ctx).Debug("liquidity provided",
		"pool_key", pool.Key(),
		"deposits", assetsString(pool.AssetInfos, deposits),
		"share", share.String(),
		"locked", locked.String(),
	)

	return &types.ProvideResponse{
		PoolKey:   pool.Key(),
		Share:     share,
		Locked:    locked,
		Slippage:  res.Slippage,
		Transfers: transfers,
	}, nil
}

// WithdrawLiquidity burns shares and refunds the pro-rata reserves.
func (k Keeper) WithdrawLiquidity(ctx context.Context, msg types.MsgWithdrawLiquidity) (*types.WithdrawResponse, error) {
	if err := msg.ValidateBasic(); err != nil {
		return nil, err
	}
	sender, err := sdk.AccAddressFromBech32(msg.Sender)
	if err != nil {
		return nil, types.ErrInvalidAddress.Wrapf("invalid sender address: %s", err)
	}

	cacheCtx, write := sdk.UnwrapSDKContext(ctx).CacheContext()

	var resp *types.WithdrawResponse
	err = k.withPoolLocks(cacheCtx, []string{msg.PoolKey}, func() error {
		pool, err := k.GetPool(cacheCtx, msg.PoolKey)
		if err != nil {
			return err
		}
		resp, err = k.withdraw(cacheCtx, pool, msg.Amount, sender)
		return err
	})
	if err != nil {
		return nil, err
	}

	write()
	return resp, nil
}

func (k Keeper) withdraw(ctx context.Context, pool types.Pool, amount math.Int, sender sdk.AccAddress) (*types.WithdrawResponse, error) {
	total := k.totalShare(ctx, pool)
	refund, err := pcl.WithdrawShare(pool.Reserves, amount, total)
	if err != nil {
		return nil, err
	}

	moduleAddr := types.ModuleAddress().String()
	transfers := []types.Transfer{types.NewBurn(pool.LPDenom, amount, sender.String())}
	for i, info := range pool.AssetInfos {
		transfers = append(transfers, types.NewTransfer(info, refund[i], moduleAddr, sender.String()))
	}
	if err := k.dispatch(ctx, transfers); err != nil {
		return nil, err
	}

	for i := range pool.Reserves {
		pool.Reserves[i] = pool.Reserves[i].Sub(refund[i])
	}

	precisions, err := k.poolPrecisions(ctx, pool)
	if err != nil {
		return nil, err
	}
	var xs [2]math.LegacyDec
	for i := range xs {
		if xs[i], err = pcl.WithPrecision(pool.Reserves[i], precisions[i]); err != nil {
			return nil, err
		}
	}
	xs[1] = xs[1].Mul(pool.State.Price.PriceScale)
	totalLP, err := pcl.WithPrecision(total.Sub(amount), pcl.LPTokenPrecision)
	if err != nil {
		return nil, err
	}
	if err := pcl.RefreshXcpProfitReal(&pool.State, blockTime(ctx), xs, totalLP); err != nil {
		k.countSolverFailure("withdraw", err)
		return nil, err
	}

	if err := k.SetPool(ctx, pool); err != nil {
		return nil, err
	}
	if err := k.snapshotReserves(ctx, pool); err != nil {
		return nil, err
	}

	sdkCtx := sdk.UnwrapSDKContext(ctx)
	sdkCtx.EventManager().EmitEvent(
		sdk.NewEvent(
			types.EventTypeWithdrawLiquidity,
			sdk.NewAttribute(types.AttributeKeyPoolKey, pool.Key()),
			sdk.NewAttribute(types.AttributeKeySender, sender.String()),
			sdk.NewAttribute(types.AttributeKeyWithdrawn, amount.String()),
			sdk.NewAttribute(types.AttributeKeyRefundAssets, assetsString(pool.AssetInfos, refund)),
		),
	)
	k.metrics.LiquidityWithdrawn.WithLabelValues(poolIDLabel(pool)).Inc()
	k.Logger(ctx).Debug("liquidity withdrawn",
		"pool_key", pool.Key(),
		"share", amount.String(),
		"refund", assetsString(pool.AssetInfos, refund),
	)

	return &types.WithdrawResponse{
		PoolKey: pool.Key(),
		Refund: [2]types.Asset{
			types.NewAsset(pool.AssetInfos[0], refund[0]),
			types.NewAsset(pool.AssetInfos[1], refund[1]),
		},
		Transfers: transfers,
	}, nil
}

// Share returns the reserves backing amount shares of a pool.
func (k Keeper) Share(ctx context.Context, poolKey string, amount math.Int) ([2]types.Asset, error) {
	pool, err := k.GetPool(ctx, poolKey)
	if err != nil {
		return [2]types.Asset{}, err
	}
	assets, err := pcl.ShareInAssets(pool.Reserves, amount, k.totalShare(ctx, pool))
	if err != nil {
		return [2]types.Asset{}, err
	}
	return [2]types.Asset{
		types.NewAsset(pool.AssetInfos[0], assets[0]),
		types.NewAsset(pool.AssetInfos[1], assets[1]),
	}, nil
}

func assetsString(infos [2]types.AssetInfo, amounts [2]math.Int) string {
	return types.NewAsset(infos[0], amounts[0]).String() + "," + types.NewAsset(infos[1], amounts[1]).String()
}
