package types

import (
	"encoding/json"
	"fmt"
)

// MaxAssetPrecision keeps the internal 18-digit precision at least twice the asset precision.
const MaxAssetPrecision uint32 = 9

// PrecisionEntry is one row of the precision table.
type PrecisionEntry struct {
	AssetID   string `json:"asset_id"`
	Precision uint32 `json:"precision"`
}

// GenesisState defines the poolmanager module's genesis state.
type GenesisState struct {
	Params     Params           `json:"params"`
	Pools      []Pool           `json:"pools"`
	Precisions []PrecisionEntry `json:"precisions"`
	NextPoolID uint64           `json:"next_pool_id"`
}

// DefaultGenesis returns the default genesis state
func DefaultGenesis() *GenesisState {
	return &GenesisState{
		Params:     DefaultParams(),
		Pools:      []Pool{},
		Precisions: []PrecisionEntry{},
		NextPoolID: 1,
	}
}

// Validate performs basic genesis state validation returning an error upon any
// failure.
func (gs GenesisState) Validate() error {
	if err := gs.Params.Validate(); err != nil {
		return fmt.Errorf("invalid params: %w", err)
	}
	if gs.NextPoolID == 0 {
		return fmt.Errorf("next pool id must be positive")
	}

	precisions := make(map[string]struct{}, len(gs.Precisions))
	for _, entry := range gs.Precisions {
		if entry.AssetID == "" {
			return fmt.Errorf("precision entry without asset id")
		}
		if entry.Precision > MaxAssetPrecision {
			return ErrInvalidPrecision.Wrapf("%s has precision %d, at most %d supported",
				entry.AssetID, entry.Precision, MaxAssetPrecision)
		}
		if _, dup := precisions[entry.AssetID]; dup {
			return fmt.Errorf("duplicate precision entry for %s", entry.AssetID)
		}
		precisions[entry.AssetID] = struct{}{}
	}

	ids := make(map[uint64]struct{}, len(gs.Pools))
	keys := make(map[string]struct{}, len(gs.Pools))
	for _, pool := range gs.Pools {
		if err := pool.Validate(); err != nil {
			return fmt.Errorf("invalid pool %d: %w", pool.ID, err)
		}
		if pool.ID == 0 || pool.ID >= gs.NextPoolID {
			return fmt.Errorf("pool id %d out of range, next pool id is %d", pool.ID, gs.NextPoolID)
		}
		if _, dup := ids[pool.ID]; dup {
			return fmt.Errorf("duplicate pool id %d", pool.ID)
		}
		ids[pool.ID] = struct{}{}
		if _, dup := keys[pool.Key()]; dup {
			return fmt.Errorf("duplicate pool for pair %s", pool.Key())
		}
		keys[pool.Key()] = struct{}{}
		for _, info := range pool.AssetInfos {
			if _, ok := precisions[info.ID()]; !ok {
				return fmt.Errorf("pool %d asset %s has no precision entry", pool.ID, info)
			}
		}
	}
	return nil
}

// MustMarshalJSON encodes the genesis state for export.
func (gs GenesisState) MustMarshalJSON() []byte {
	bz, err := json.MarshalIndent(gs, "", "  ")
	if err != nil {
		panic(err)
	}
	return bz
}
