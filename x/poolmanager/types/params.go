package types

import (
	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"
)

// Params defines the module-wide parameters.
type Params struct {
	// FeeAddress receives maker fees. Empty disables the maker fee.
	FeeAddress string `json:"fee_address,omitempty"`
	// MakerFeeRate is the share of every swap fee routed to FeeAddress.
	MakerFeeRate math.LegacyDec `json:"maker_fee_rate"`
}

// DefaultParams returns default module parameters
func DefaultParams() Params {
	return Params{
		FeeAddress:   "",
		MakerFeeRate: math.LegacyZeroDec(),
	}
}

// Validate validates the parameters
func (p Params) Validate() error {
	if p.MakerFeeRate.IsNil() || p.MakerFeeRate.IsNegative() || p.MakerFeeRate.GT(math.LegacyOneDec()) {
		return ErrInvalidParams.Wrapf("maker fee rate must be within [0, 1], got %s", p.MakerFeeRate)
	}
	if p.FeeAddress != "" {
		if _, err := sdk.AccAddressFromBech32(p.FeeAddress); err != nil {
			return ErrInvalidAddress.Wrapf("invalid fee address: %s", err)
		}
	}
	return nil
}

// EffectiveMakerFeeRate is zero unless a fee address is configured.
func (p Params) EffectiveMakerFeeRate() math.LegacyDec {
	if p.FeeAddress == "" {
		return math.LegacyZeroDec()
	}
	return p.MakerFeeRate
}
