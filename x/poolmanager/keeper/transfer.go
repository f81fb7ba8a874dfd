package keeper

import (
	"context"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/colada-chain/colada/x/poolmanager/types"
)

// dispatch executes transfers in order. The first failure aborts; the caller
// owns the cache context and discards whatever already moved.
func (k Keeper) dispatch(ctx context.Context, transfers []types.Transfer) error {
	for _, t := range transfers {
		if t.IsZero() {
			continue
		}
		if err := k.executeTransfer(ctx, t); err != nil {
			return err
		}
	}
	return nil
}

func (k Keeper) executeTransfer(ctx context.Context, t types.Transfer) error {
	if t.Amount.IsNegative() {
		return types.ErrNegativeAmount.Wrapf("transfer %s", t)
	}

	switch t.Kind {
	case types.TransferSend:
		from, err := sdk.AccAddressFromBech32(t.From)
		if err != nil {
			return types.ErrInvalidAddress.Wrapf("transfer source %q: %s", t.From, err)
		}
		to, err := sdk.AccAddressFromBech32(t.To)
		if err != nil {
			return types.ErrInvalidAddress.Wrapf("transfer destination %q: %s", t.To, err)
		}
		if t.Asset.IsNative() {
			return k.bankKeeper.SendCoins(ctx, from, to, sdk.NewCoins(sdk.NewCoin(t.Asset.Denom, t.Amount)))
		}
		contract, err := sdk.AccAddressFromBech32(t.Asset.ContractAddr)
		if err != nil {
			return types.ErrInvalidAsset.Wrapf("token %q: %s", t.Asset.ContractAddr, err)
		}
		return k.tokenKeeper.Transfer(ctx, contract, from, to, t.Amount)

	case types.TransferMint:
		to, err := sdk.AccAddressFromBech32(t.To)
		if err != nil {
			return types.ErrInvalidAddress.Wrapf("mint destination %q: %s", t.To, err)
		}
		coins := sdk.NewCoins(sdk.NewCoin(t.Asset.Denom, t.Amount))
		if err := k.bankKeeper.MintCoins(ctx, types.ModuleName, coins); err != nil {
			return err
		}
		return k.bankKeeper.SendCoinsFromModuleToAccount(ctx, types.ModuleName, to, coins)

	case types.TransferBurn:
		from, err := sdk.AccAddressFromBech32(t.From)
		if err != nil {
			return types.ErrInvalidAddress.Wrapf("burn source %q: %s", t.From, err)
		}
		coins := sdk.NewCoins(sdk.NewCoin(t.Asset.Denom, t.Amount))
		if err := k.bankKeeper.SendCoinsFromAccountToModule(ctx, from, types.ModuleName, coins); err != nil {
			return err
		}
		return k.bankKeeper.BurnCoins(ctx, types.ModuleName, coins)
	}

	return types.ErrInvalidParams.Wrapf("unknown transfer kind %q", t.Kind)
}

// queryBalance returns the raw balance of an asset held by addr.
func (k Keeper) queryBalance(ctx context.Context, info types.AssetInfo, addr sdk.AccAddress) (math.Int, error) {
	if info.IsNative() {
		return k.bankKeeper.GetBalance(ctx, addr, info.Denom).Amount, nil
	}
	contract, err := sdk.AccAddressFromBech32(info.ContractAddr)
	if err != nil {
		return math.Int{}, types.ErrInvalidAsset.Wrapf("token %q: %s", info.ContractAddr, err)
	}
	return k.tokenKeeper.Balance(ctx, contract, addr)
}

// totalShare is the outstanding supply of a pool's liquidity share.
func (k Keeper) totalShare(ctx context.Context, pool types.Pool) math.Int {
	return k.bankKeeper.GetSupply(ctx, pool.LPDenom).Amount
}
