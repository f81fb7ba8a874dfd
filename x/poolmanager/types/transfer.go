package types

import (
	"fmt"

	"cosmossdk.io/math"
)

// TransferKind selects how an instruction moves value.
type TransferKind string

const (
	TransferSend TransferKind = "send"
	TransferMint TransferKind = "mint"
	TransferBurn TransferKind = "burn"
)

// Transfer describes a movement of an asset. The engine only builds
// transfers; the keeper's dispatcher executes them against the bank and
// token keepers.
type Transfer struct {
	Kind   TransferKind `json:"kind"`
	Asset  AssetInfo    `json:"asset"`
	Amount math.Int     `json:"amount"`
	From   string       `json:"from,omitempty"`
	To     string       `json:"to,omitempty"`
}

// NewTransfer describes a plain send from one account to another.
func NewTransfer(asset AssetInfo, amount math.Int, from, to string) Transfer {
	return Transfer{Kind: TransferSend, Asset: asset, Amount: amount, From: from, To: to}
}

// NewMint describes freshly minted liquidity shares.
func NewMint(denom string, amount math.Int, to string) Transfer {
	return Transfer{Kind: TransferMint, Asset: NativeAsset(denom), Amount: amount, To: to}
}

// NewBurn describes liquidity shares taken from an account and destroyed.
func NewBurn(denom string, amount math.Int, from string) Transfer {
	return Transfer{Kind: TransferBurn, Asset: NativeAsset(denom), Amount: amount, From: from}
}

// IsZero reports a transfer that moves nothing.
func (t Transfer) IsZero() bool {
	return t.Amount.IsNil() || t.Amount.IsZero()
}

func (t Transfer) String() string {
	return fmt.Sprintf("%s %s%s %s->%s", t.Kind, t.Amount, t.Asset, t.From, t.To)
}
