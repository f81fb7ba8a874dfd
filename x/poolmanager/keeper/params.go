package keeper

import (
	"context"

	"github.com/colada-chain/colada/x/poolmanager/types"
)

// GetParams returns the module parameters, falling back to the defaults.
func (k Keeper) GetParams(ctx context.Context) (types.Params, error) {
	var params types.Params
	found, err := k.getJSON(ctx, ParamsKey, &params)
	if err != nil {
		return types.Params{}, err
	}
	if !found {
		return types.DefaultParams(), nil
	}
	return params, nil
}

// SetParams stores validated module parameters
func (k Keeper) SetParams(ctx context.Context, params types.Params) error {
	if err := params.Validate(); err != nil {
		return err
	}
	return k.setJSON(ctx, ParamsKey, params)
}

// UpdateParams replaces the module parameters on behalf of the authority.
func (k Keeper) UpdateParams(ctx context.Context, authority string, params types.Params) error {
	if authority != k.authority {
		return types.ErrUnauthorized.Wrapf("expected %s, got %s", k.authority, authority)
	}
	if err := k.SetParams(ctx, params); err != nil {
		return err
	}
	k.Logger(ctx).Info("module params updated", "fee_address", params.FeeAddress, "maker_fee_rate", params.MakerFeeRate.String())
	return nil
}
