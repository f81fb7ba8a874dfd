package keeper

import (
	"context"
	"fmt"

	"github.com/colada-chain/colada/x/poolmanager/types"
)

// InitGenesis initializes the poolmanager module's state from a genesis state
func (k Keeper) InitGenesis(ctx context.Context, genState types.GenesisState) error {
	if err := genState.Validate(); err != nil {
		return fmt.Errorf("invalid genesis: %w", err)
	}

	if err := k.SetParams(ctx, genState.Params); err != nil {
		return fmt.Errorf("failed to set params: %w", err)
	}

	// precisions first: pools are priced through them
	for _, entry := range genState.Precisions {
		if err := k.SetPrecision(ctx, entry.AssetID, entry.Precision); err != nil {
			return fmt.Errorf("failed to set precision of %s: %w", entry.AssetID, err)
		}
	}

	for _, pool := range genState.Pools {
		if err := k.SetPool(ctx, pool); err != nil {
			return fmt.Errorf("failed to set pool %d: %w", pool.ID, err)
		}
	}

	k.SetNextPoolID(ctx, genState.NextPoolID)
	return nil
}

// ExportGenesis exports the poolmanager module's state to a genesis state
func (k Keeper) ExportGenesis(ctx context.Context) (*types.GenesisState, error) {
	params, err := k.GetParams(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get params: %w", err)
	}

	pools, err := k.GetAllPools(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get pools: %w", err)
	}
	if pools == nil {
		pools = []types.Pool{}
	}

	precisions := k.GetAllPrecisions(ctx)
	if precisions == nil {
		precisions = []types.PrecisionEntry{}
	}

	return &types.GenesisState{
		Params:     params,
		Pools:      pools,
		Precisions: precisions,
		NextPoolID: k.GetNextPoolID(ctx),
	}, nil
}
