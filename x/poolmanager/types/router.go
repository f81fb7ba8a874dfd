package types

import (
	"encoding/json"
	"fmt"

	"cosmossdk.io/math"
)

// MaxSwapOperations bounds the length of a swap chain.
const MaxSwapOperations = 50

// OperationType selects how a hop is settled.
type OperationType string

const (
	// OperationPool swaps through a pool of this module.
	OperationPool OperationType = "pool"
	// OperationNativeSwap asks for a direct native-to-native market conversion.
	OperationNativeSwap OperationType = "native_swap"
)

// SwapOperation is one hop of a swap chain.
type SwapOperation struct {
	Type           OperationType `json:"type"`
	OfferAssetInfo AssetInfo     `json:"offer_asset_info"`
	AskAssetInfo   AssetInfo     `json:"ask_asset_info"`
}

// NewPoolOperation builds a pool hop.
func NewPoolOperation(offer, ask AssetInfo) SwapOperation {
	return SwapOperation{Type: OperationPool, OfferAssetInfo: offer, AskAssetInfo: ask}
}

func (op SwapOperation) String() string {
	return fmt.Sprintf("%s:%s->%s", op.Type, op.OfferAssetInfo, op.AskAssetInfo)
}

// ValidateOperations checks the shape of a swap path: non-empty, bounded,
// continuous and never trading an asset against itself or straight back.
func ValidateOperations(ops []SwapOperation) error {
	if len(ops) == 0 {
		return ErrEmptyOperations
	}
	if len(ops) > MaxSwapOperations {
		return ErrMaxSwapOperations.Wrapf("%d operations, at most %d allowed", len(ops), MaxSwapOperations)
	}

	for i, op := range ops {
		if op.Type == OperationNativeSwap {
			return ErrNativeSwapUnsupported.Wrapf("operation %d: %s", i, op)
		}
		if op.Type != OperationPool {
			return ErrInvalidPathOperations.Wrapf("operation %d has unknown type %q", i, op.Type)
		}
		if err := op.OfferAssetInfo.Validate(); err != nil {
			return err
		}
		if err := op.AskAssetInfo.Validate(); err != nil {
			return err
		}
		if op.OfferAssetInfo.Equal(op.AskAssetInfo) {
			return ErrDoublingAssetsPath.Wrapf("operation %d trades %s against itself", i, op.OfferAssetInfo)
		}
		if i == 0 {
			continue
		}

		prev := ops[i-1]
		if !prev.AskAssetInfo.Equal(op.OfferAssetInfo) {
			return ErrInvalidPathOperations.Wrapf("operation %d offers %s but operation %d returns %s",
				i, op.OfferAssetInfo, i-1, prev.AskAssetInfo)
		}
		if prev.OfferAssetInfo.Equal(op.AskAssetInfo) {
			return ErrDoublingAssetsPath.Wrapf("operation %d reverses operation %d", i, i-1)
		}
	}
	return nil
}

// ChainStatus is the router state of a swap chain.
type ChainStatus string

const (
	ChainIdle        ChainStatus = "idle"
	ChainHopInFlight ChainStatus = "hop_in_flight"
	ChainSettled     ChainStatus = "settled"
	ChainFailed      ChainStatus = "failed"
)

// ReplyContinuation carries a swap chain across hop boundaries. It is
// persisted before the first hop and deleted once the chain completes, so
// the router never relies on in-memory progress.
type ReplyContinuation struct {
	TargetAsset    AssetInfo       `json:"target_asset"`
	BalanceBefore  math.Int        `json:"balance_before"`
	MinimumReceive *math.Int       `json:"minimum_receive,omitempty"`
	Receiver       string          `json:"receiver"`
	Operations     []SwapOperation `json:"operations"`
	MaxSpread      *math.LegacyDec `json:"max_spread,omitempty"`
	NextHop        int             `json:"next_hop"`
	Status         ChainStatus     `json:"status"`
}

// Single reports whether the chain has exactly one hop.
func (c ReplyContinuation) Single() bool {
	return len(c.Operations) == 1
}

// Terminal reports whether every hop has been dispatched.
func (c ReplyContinuation) Terminal() bool {
	return c.NextHop >= len(c.Operations)
}

// Marshal encodes the continuation for the store.
func (c ReplyContinuation) Marshal() ([]byte, error) {
	return json.Marshal(c)
}

// UnmarshalReplyContinuation decodes a stored continuation.
func UnmarshalReplyContinuation(bz []byte) (ReplyContinuation, error) {
	var c ReplyContinuation
	if err := json.Unmarshal(bz, &c); err != nil {
		return ReplyContinuation{}, ErrIO.Wrapf("decode reply continuation: %s", err)
	}
	return c, nil
}
