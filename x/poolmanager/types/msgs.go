package types

import (
	sdkerrors "cosmossdk.io/errors"
	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"
)

// MsgCreatePool registers a new trading pair.
type MsgCreatePool struct {
	Creator           string          `json:"creator"`
	AssetInfos        [2]AssetInfo    `json:"asset_infos"`
	AmpGamma          AmpGamma        `json:"amp_gamma"`
	Params            PoolParams      `json:"params"`
	InitialPriceScale math.LegacyDec  `json:"initial_price_scale"`
	FeeShare          *FeeShareConfig `json:"fee_share,omitempty"`
	TrackBalances     bool            `json:"track_balances"`
}

// ValidateBasic performs stateless validation
func (msg MsgCreatePool) ValidateBasic() error {
	if _, err := sdk.AccAddressFromBech32(msg.Creator); err != nil {
		return sdkerrors.Wrapf(ErrInvalidAddress, "invalid creator address: %s", err)
	}
	if err := ValidatePairInfos(msg.AssetInfos); err != nil {
		return err
	}
	if err := msg.AmpGamma.Validate(); err != nil {
		return err
	}
	if err := msg.Params.Validate(); err != nil {
		return err
	}
	if msg.InitialPriceScale.IsNil() || !msg.InitialPriceScale.IsPositive() {
		return sdkerrors.Wrap(ErrInvalidParams, "initial price scale must be positive")
	}
	if msg.FeeShare != nil {
		return msg.FeeShare.Validate()
	}
	return nil
}

// CreatePoolResponse identifies the new pool.
type CreatePoolResponse struct {
	PoolID  uint64 `json:"pool_id"`
	PoolKey string `json:"pool_key"`
	LPDenom string `json:"lp_denom"`
}

// MsgSwap swaps through a single pool.
type MsgSwap struct {
	Sender      string          `json:"sender"`
	OfferAsset  Asset           `json:"offer_asset"`
	AskAsset    AssetInfo       `json:"ask_asset"`
	BeliefPrice *math.LegacyDec `json:"belief_price,omitempty"`
	MaxSpread   *math.LegacyDec `json:"max_spread,omitempty"`
	To          string          `json:"to,omitempty"`
}

// ValidateBasic performs stateless validation
func (msg MsgSwap) ValidateBasic() error {
	if _, err := sdk.AccAddressFromBech32(msg.Sender); err != nil {
		return sdkerrors.Wrapf(ErrInvalidAddress, "invalid sender address: %s", err)
	}
	if msg.To != "" {
		if _, err := sdk.AccAddressFromBech32(msg.To); err != nil {
			return sdkerrors.Wrapf(ErrInvalidAddress, "invalid receiver address: %s", err)
		}
	}
	if err := msg.OfferAsset.Validate(); err != nil {
		return err
	}
	if !msg.OfferAsset.Amount.IsPositive() {
		return sdkerrors.Wrap(ErrInvalidZeroAmount, "offer amount must be positive")
	}
	if err := msg.AskAsset.Validate(); err != nil {
		return err
	}
	if msg.OfferAsset.Info.Equal(msg.AskAsset) {
		return sdkerrors.Wrap(ErrDoublingAssetsPath, "cannot swap an asset for itself")
	}
	if msg.BeliefPrice != nil && !msg.BeliefPrice.IsPositive() {
		return sdkerrors.Wrap(ErrInvalidParams, "belief price must be positive")
	}
	return validateOptionalRate("max spread", msg.MaxSpread)
}

// SwapResponse reports a settled swap in raw ask-asset units.
type SwapResponse struct {
	OfferAsset       Asset      `json:"offer_asset"`
	AskAsset         AssetInfo  `json:"ask_asset"`
	ReturnAmount     math.Int   `json:"return_amount"`
	SpreadAmount     math.Int   `json:"spread_amount"`
	CommissionAmount math.Int   `json:"commission_amount"`
	MakerFeeAmount   math.Int   `json:"maker_fee_amount"`
	FeeShareAmount   math.Int   `json:"fee_share_amount"`
	Transfers        []Transfer `json:"transfers"`
}

// MsgProvideLiquidity deposits one or two assets into the pool at PoolKey.
type MsgProvideLiquidity struct {
	Sender            string          `json:"sender"`
	PoolKey           string          `json:"pool_key"`
	Assets            []Asset         `json:"assets"`
	SlippageTolerance *math.LegacyDec `json:"slippage_tolerance,omitempty"`
	Receiver          string          `json:"receiver,omitempty"`
}

// ValidateBasic performs stateless validation
func (msg MsgProvideLiquidity) ValidateBasic() error {
	if _, err := sdk.AccAddressFromBech32(msg.Sender); err != nil {
		return sdkerrors.Wrapf(ErrInvalidAddress, "invalid sender address: %s", err)
	}
	if msg.Receiver != "" {
		if _, err := sdk.AccAddressFromBech32(msg.Receiver); err != nil {
			return sdkerrors.Wrapf(ErrInvalidAddress, "invalid receiver address: %s", err)
		}
	}
	if _, _, err := SplitPoolKey(msg.PoolKey); err != nil {
		return err
	}
	switch len(msg.Assets) {
	case 1, 2:
	case 0:
		return sdkerrors.Wrap(ErrInvalidZeroAmount, "nothing to provide")
	default:
		return sdkerrors.Wrapf(ErrInvalidAsset, "at most 2 assets, got %d", len(msg.Assets))
	}
	for _, asset := range msg.Assets {
		if err := asset.Validate(); err != nil {
			return err
		}
	}
	if len(msg.Assets) == 2 && msg.Assets[0].Info.Equal(msg.Assets[1].Info) {
		return sdkerrors.Wrap(ErrDoublingAssetsPath, "duplicated deposit asset")
	}
	return validateOptionalRate("slippage tolerance", msg.SlippageTolerance)
}

// ProvideResponse reports minted shares in raw LP units.
type ProvideResponse struct {
	PoolKey   string         `json:"pool_key"`
	Share     math.Int       `json:"share"`
	Locked    math.Int       `json:"locked"`
	Slippage  math.LegacyDec `json:"slippage"`
	Transfers []Transfer     `json:"transfers"`
}

// MsgWithdrawLiquidity burns shares for the pro-rata reserves.
type MsgWithdrawLiquidity struct {
	Sender  string   `json:"sender"`
	PoolKey string   `json:"pool_key"`
	Amount  math.Int `json:"amount"`
	// Assets requests an imbalanced withdraw, which is disabled.
	Assets []Asset `json:"assets,omitempty"`
}

// ValidateBasic performs stateless validation
func (msg MsgWithdrawLiquidity) ValidateBasic() error {
	if _, err := sdk.AccAddressFromBech32(msg.Sender); err != nil {
		return sdkerrors.Wrapf(ErrInvalidAddress, "invalid sender address: %s", err)
	}
	if _, _, err := SplitPoolKey(msg.PoolKey); err != nil {
		return err
	}
	if msg.Amount.IsNil() || !msg.Amount.IsPositive() {
		return sdkerrors.Wrap(ErrInvalidZeroAmount, "withdraw amount must be positive")
	}
	if len(msg.Assets) > 0 {
		return ErrImbalancedWithdrawDisabled
	}
	return nil
}

// WithdrawResponse reports the refunded reserves.
type WithdrawResponse struct {
	PoolKey   string     `json:"pool_key"`
	Refund    [2]Asset   `json:"refund"`
	Transfers []Transfer `json:"transfers"`
}

// MsgExecuteSwapOperations runs a swap chain.
type MsgExecuteSwapOperations struct {
	Sender         string          `json:"sender"`
	Operations     []SwapOperation `json:"operations"`
	OfferAmount    math.Int        `json:"offer_amount"`
	MinimumReceive *math.Int       `json:"minimum_receive,omitempty"`
	To             string          `json:"to,omitempty"`
	MaxSpread      *math.LegacyDec `json:"max_spread,omitempty"`
}

// ValidateBasic performs stateless validation
func (msg MsgExecuteSwapOperations) ValidateBasic() error {
	if _, err := sdk.AccAddressFromBech32(msg.Sender); err != nil {
		return sdkerrors.Wrapf(ErrInvalidAddress, "invalid sender address: %s", err)
	}
	if msg.To != "" {
		if _, err := sdk.AccAddressFromBech32(msg.To); err != nil {
			return sdkerrors.Wrapf(ErrInvalidAddress, "invalid receiver address: %s", err)
		}
	}
	if msg.OfferAmount.IsNil() || !msg.OfferAmount.IsPositive() {
		return sdkerrors.Wrap(ErrInvalidZeroAmount, "offer amount must be positive")
	}
	if msg.MinimumReceive != nil && msg.MinimumReceive.IsNegative() {
		return sdkerrors.Wrap(ErrNegativeAmount, "minimum receive must not be negative")
	}
	if err := validateOptionalRate("max spread", msg.MaxSpread); err != nil {
		return err
	}
	return ValidateOperations(msg.Operations)
}

// SwapOperationsResponse reports the output of the last hop together with
// every hop's settlement.
type SwapOperationsResponse struct {
	ReturnAmount math.Int       `json:"return_amount"`
	Hops         []SwapResponse `json:"hops"`
}

// RampUpdate starts a new amp/gamma ramp.
type RampUpdate struct {
	Future     AmpGamma `json:"future"`
	FutureTime uint64   `json:"future_time"`
}

// MsgUpdatePoolParams adjusts a pool. Only the module authority may send it.
type MsgUpdatePoolParams struct {
	Authority string          `json:"authority"`
	PoolKey   string          `json:"pool_key"`
	Params    *PoolParams     `json:"params,omitempty"`
	Ramp      *RampUpdate     `json:"ramp,omitempty"`
	StopRamp  bool            `json:"stop_ramp,omitempty"`
	FeeShare  *FeeShareConfig `json:"fee_share,omitempty"`
}

// ValidateBasic performs stateless validation
func (msg MsgUpdatePoolParams) ValidateBasic() error {
	if _, err := sdk.AccAddressFromBech32(msg.Authority); err != nil {
		return sdkerrors.Wrapf(ErrInvalidAddress, "invalid authority address: %s", err)
	}
	if _, _, err := SplitPoolKey(msg.PoolKey); err != nil {
		return err
	}
	if msg.Ramp != nil && msg.StopRamp {
		return sdkerrors.Wrap(ErrInvalidRamp, "can not start and stop a ramp at once")
	}
	if msg.Params == nil && msg.Ramp == nil && !msg.StopRamp && msg.FeeShare == nil {
		return sdkerrors.Wrap(ErrInvalidParams, "nothing to update")
	}
	if msg.Params != nil {
		if err := msg.Params.Validate(); err != nil {
			return err
		}
	}
	if msg.Ramp != nil {
		if err := msg.Ramp.Future.Validate(); err != nil {
			return err
		}
	}
	if msg.FeeShare != nil {
		return msg.FeeShare.Validate()
	}
	return nil
}

func validateOptionalRate(name string, rate *math.LegacyDec) error {
	if rate == nil {
		return nil
	}
	if rate.IsNil() || rate.IsNegative() || rate.GT(math.LegacyOneDec()) {
		return sdkerrors.Wrapf(ErrInvalidParams, "%s must be within [0, 1]", name)
	}
	return nil
}
