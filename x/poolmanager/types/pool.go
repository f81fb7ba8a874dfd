package types

import (
	"fmt"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"
)

// Pool parameter bounds.
var (
	MinAmp                  = math.LegacyMustNewDecFromStr("0.1")
	MaxAmp                  = math.LegacyNewDec(100_000)
	MaxGamma                = math.LegacyMustNewDecFromStr("0.02")
	MaxFee                  = math.LegacyMustNewDecFromStr("0.5")
	MaxFeeGamma             = math.LegacyOneDec()
	MaxRepegProfitThreshold = math.LegacyMustNewDecFromStr("0.01")
	MaxPriceScaleDelta      = math.LegacyOneDec()
)

const (
	// MaxMaHalfTime is seven days.
	MaxMaHalfTime uint64 = 7 * 86400

	// MinAmpChangingTime is the shortest amp/gamma ramp in seconds.
	MinAmpChangingTime uint64 = 86400

	// MaxAmpGammaChange bounds the ratio between the current and the future amp or gamma.
	MaxAmpGammaChange int64 = 10

	// MaxFeeShareBps caps the revenue share at 10%.
	MaxFeeShareBps uint16 = 1000
)

// AmpGamma is a point of the amplification/gamma schedule.
type AmpGamma struct {
	Amp   math.LegacyDec `json:"amp"`
	Gamma math.LegacyDec `json:"gamma"`
}

// Validate checks amp and gamma against the allowed ranges.
func (ag AmpGamma) Validate() error {
	if ag.Amp.IsNil() || ag.Amp.LT(MinAmp) || ag.Amp.GT(MaxAmp) {
		return ErrInvalidParams.Wrapf("amp must be within [%s, %s], got %s", MinAmp, MaxAmp, ag.Amp)
	}
	if ag.Gamma.IsNil() || !ag.Gamma.IsPositive() || ag.Gamma.GT(MaxGamma) {
		return ErrInvalidParams.Wrapf("gamma must be within (0, %s], got %s", MaxGamma, ag.Gamma)
	}
	return nil
}

// PoolParams shape the fee curve and gate repegging.
type PoolParams struct {
	MidFee               math.LegacyDec `json:"mid_fee"`
	OutFee               math.LegacyDec `json:"out_fee"`
	FeeGamma             math.LegacyDec `json:"fee_gamma"`
	RepegProfitThreshold math.LegacyDec `json:"repeg_profit_threshold"`
	MinPriceScaleDelta   math.LegacyDec `json:"min_price_scale_delta"`
	MaHalfTime           uint64         `json:"ma_half_time"`
}

// DefaultPoolParams returns a conservative parameter set for volatile pairs.
func DefaultPoolParams() PoolParams {
	return PoolParams{
		MidFee:               math.LegacyMustNewDecFromStr("0.0026"),
		OutFee:               math.LegacyMustNewDecFromStr("0.0045"),
		FeeGamma:             math.LegacyMustNewDecFromStr("0.00023"),
		RepegProfitThreshold: math.LegacyMustNewDecFromStr("0.000002"),
		MinPriceScaleDelta:   math.LegacyMustNewDecFromStr("0.000146"),
		MaHalfTime:           600,
	}
}

// DefaultAmpGamma pairs with DefaultPoolParams.
func DefaultAmpGamma() AmpGamma {
	return AmpGamma{
		Amp:   math.LegacyNewDec(40),
		Gamma: math.LegacyMustNewDecFromStr("0.000145"),
	}
}

// Validate checks every parameter against its bounds.
func (p PoolParams) Validate() error {
	for _, field := range []struct {
		name  string
		value math.LegacyDec
	}{
		{"mid_fee", p.MidFee},
		{"out_fee", p.OutFee},
		{"fee_gamma", p.FeeGamma},
		{"repeg_profit_threshold", p.RepegProfitThreshold},
		{"min_price_scale_delta", p.MinPriceScaleDelta},
	} {
		if field.value.IsNil() {
			return ErrInvalidParams.Wrapf("%s is not set", field.name)
		}
		if field.value.IsNegative() {
			return ErrInvalidParams.Wrapf("%s must not be negative, got %s", field.name, field.value)
		}
	}

	if p.OutFee.GT(MaxFee) {
		return ErrInvalidParams.Wrapf("out_fee must be at most %s, got %s", MaxFee, p.OutFee)
	}
	if p.MidFee.GT(p.OutFee) {
		return ErrInvalidParams.Wrapf("mid_fee %s must not exceed out_fee %s", p.MidFee, p.OutFee)
	}
	if !p.FeeGamma.IsPositive() || p.FeeGamma.GT(MaxFeeGamma) {
		return ErrInvalidParams.Wrapf("fee_gamma must be within (0, %s], got %s", MaxFeeGamma, p.FeeGamma)
	}
	if p.RepegProfitThreshold.GT(MaxRepegProfitThreshold) {
		return ErrInvalidParams.Wrapf("repeg_profit_threshold must be at most %s, got %s",
			MaxRepegProfitThreshold, p.RepegProfitThreshold)
	}
	if p.MinPriceScaleDelta.GT(MaxPriceScaleDelta) {
		return ErrInvalidParams.Wrapf("min_price_scale_delta must be at most %s, got %s",
			MaxPriceScaleDelta, p.MinPriceScaleDelta)
	}
	if p.MaHalfTime == 0 || p.MaHalfTime > MaxMaHalfTime {
		return ErrInvalidParams.Wrapf("ma_half_time must be within [1, %d], got %d", MaxMaHalfTime, p.MaHalfTime)
	}
	return nil
}

// PriceState is the internal price bookkeeping of a pool.
type PriceState struct {
	// PriceScale converts asset 2 units into asset 1 units.
	PriceScale      math.LegacyDec `json:"price_scale"`
	LastPrice       math.LegacyDec `json:"last_price"`
	OracleEmaPrice  math.LegacyDec `json:"oracle_ema_price"`
	LastPriceUpdate uint64         `json:"last_price_update"`
	XcpProfit       math.LegacyDec `json:"xcp_profit"`
	XcpProfitReal   math.LegacyDec `json:"xcp_profit_real"`
}

// NewPriceState initializes the price state at the given price.
func NewPriceState(initialPrice math.LegacyDec, now uint64) PriceState {
	return PriceState{
		PriceScale:      initialPrice,
		LastPrice:       initialPrice,
		OracleEmaPrice:  initialPrice,
		LastPriceUpdate: now,
		XcpProfit:       math.LegacyZeroDec(),
		XcpProfitReal:   math.LegacyZeroDec(),
	}
}

// PoolState holds the amp/gamma schedule and the price state.
type PoolState struct {
	Initial     AmpGamma   `json:"initial"`
	Future      AmpGamma   `json:"future"`
	InitialTime uint64     `json:"initial_time"`
	FutureTime  uint64     `json:"future_time"`
	Price       PriceState `json:"price_state"`
}

// Validate checks the schedule and the price scale.
func (s PoolState) Validate() error {
	if err := s.Initial.Validate(); err != nil {
		return err
	}
	if err := s.Future.Validate(); err != nil {
		return err
	}
	if s.FutureTime < s.InitialTime {
		return ErrInvalidRamp.Wrapf("future time %d precedes initial time %d", s.FutureTime, s.InitialTime)
	}
	if s.Price.PriceScale.IsNil() || !s.Price.PriceScale.IsPositive() {
		return ErrInvalidParams.Wrap("price scale must be positive")
	}
	return nil
}

// FeeShareConfig routes a share of every swap fee to a third party.
type FeeShareConfig struct {
	Bps       uint16 `json:"bps"`
	Recipient string `json:"recipient"`
}

// Rate returns the share as a decimal fraction.
func (f FeeShareConfig) Rate() math.LegacyDec {
	return math.LegacyNewDec(int64(f.Bps)).QuoInt64(10_000)
}

// Validate checks the share cap and the recipient address.
func (f FeeShareConfig) Validate() error {
	if f.Bps == 0 || f.Bps > MaxFeeShareBps {
		return ErrInvalidParams.Wrapf("fee share bps must be within [1, %d], got %d", MaxFeeShareBps, f.Bps)
	}
	if _, err := sdk.AccAddressFromBech32(f.Recipient); err != nil {
		return ErrInvalidAddress.Wrapf("invalid fee share recipient: %s", err)
	}
	return nil
}

// Pool is the persisted state of one trading pair.
type Pool struct {
	ID            uint64          `json:"id"`
	AssetInfos    [2]AssetInfo    `json:"asset_infos"`
	Reserves      [2]math.Int     `json:"reserves"`
	LPDenom       string          `json:"lp_denom"`
	Params        PoolParams      `json:"params"`
	State         PoolState       `json:"state"`
	FeeShare      *FeeShareConfig `json:"fee_share,omitempty"`
	TrackBalances bool            `json:"track_balances"`
}

// Key is the canonical pair key of the pool.
func (p Pool) Key() string {
	return PoolKey(p.AssetInfos[0], p.AssetInfos[1])
}

// AssetIndex returns the position of the asset in the pool.
func (p Pool) AssetIndex(info AssetInfo) (int, error) {
	for i, candidate := range p.AssetInfos {
		if candidate.Equal(info) {
			return i, nil
		}
	}
	return 0, ErrInvalidAsset.Wrapf("%s is not in pool %s", info, p.Key())
}

// LPDenomForPool derives the liquidity share denom from the pool id.
func LPDenomForPool(id uint64) string {
	return fmt.Sprintf("%s%d", LPDenomPrefix, id)
}

// Validate checks the pool invariants that must hold after every mutation.
func (p Pool) Validate() error {
	if err := ValidatePairInfos(p.AssetInfos); err != nil {
		return err
	}
	for i, reserve := range p.Reserves {
		if reserve.IsNil() || reserve.IsNegative() {
			return ErrNegativeAmount.Wrapf("reserve %d of pool %d is %s", i, p.ID, reserve)
		}
	}
	if p.LPDenom == "" {
		return ErrInvalidParams.Wrapf("pool %d has no lp denom", p.ID)
	}
	if err := p.Params.Validate(); err != nil {
		return err
	}
	if p.FeeShare != nil {
		if err := p.FeeShare.Validate(); err != nil {
			return err
		}
	}
	return p.State.Validate()
}
