package pcl

import (
	"cosmossdk.io/math"

	"github.com/colada-chain/colada/x/poolmanager/types"
)

var (
	// DefaultSlippage applies when the caller sets no max spread or slippage tolerance.
	DefaultSlippage = math.LegacyNewDecWithPrec(5, 3)
	// MaxAllowedSlippage is the largest max spread or slippage tolerance a caller may set.
	MaxAllowedSlippage = math.LegacyNewDecWithPrec(5, 1)
)

// SwapResult is the outcome of a swap in internal units of the ask asset.
type SwapResult struct {
	// Dy is the amount the receiver gets, net of every fee.
	Dy math.LegacyDec
	// SpreadFee is the shortfall against a trade at the price scale.
	SpreadFee math.LegacyDec
	// MakerFee goes to the protocol fee address.
	MakerFee math.LegacyDec
	// ShareFee goes to the pool's revenue share recipient.
	ShareFee math.LegacyDec
	// TotalFee includes MakerFee and ShareFee; the rest stays with LPs.
	TotalFee math.LegacyDec
}

// AskOutflow is what leaves the ask reserve: the net output and the carved out fees.
func (r SwapResult) AskOutflow() math.LegacyDec {
	return r.Dy.Add(r.MakerFee).Add(r.ShareFee)
}

// LastPrice is the trade price in asset 1 per asset 2.
func (r SwapResult) LastPrice(offerAmount math.LegacyDec, offerIndex int) (price math.LegacyDec, err error) {
	defer recoverOverflow(&err)

	out := r.AskOutflow()
	if offerIndex == 0 {
		return offerAmount.Quo(out), nil
	}
	return out.Quo(offerAmount), nil
}

// BeforeSwapCheck rejects a zero offer and empty pools.
func BeforeSwapCheck(xs [2]math.LegacyDec, offerAmount math.LegacyDec) error {
	if !offerAmount.IsPositive() {
		return types.ErrInvalidZeroAmount.Wrap("swap amount must not be zero")
	}
	if !xs[0].IsPositive() || !xs[1].IsPositive() {
		return types.ErrInvalidZeroAmount.Wrap("one of the pool reserves is empty")
	}
	return nil
}

// ComputeSwap prices an offer against reserves xs (not normalized, offer not
// yet included). The fee rate is taken from the post-trade normalized reserves.
func ComputeSwap(
	xs [2]math.LegacyDec,
	offerAmount math.LegacyDec,
	askIndex int,
	state types.PoolState,
	params types.PoolParams,
	now uint64,
	makerFeeRate, shareFeeRate math.LegacyDec,
) (res SwapResult, err error) {
	defer recoverOverflow(&err)

	if askIndex != 0 && askIndex != 1 {
		return SwapResult{}, types.ErrInvalidAsset.Wrapf("ask index %d", askIndex)
	}
	offerIndex := 1 - askIndex
	priceScale := state.Price.PriceScale

	ixs := [2]math.LegacyDec{xs[0], xs[1].Mul(priceScale)}
	ag := AmpGammaAt(state, now)
	d, err := CalcD(ixs, ag)
	if err != nil {
		return SwapResult{}, err
	}

	offer := offerAmount
	if offerIndex == 1 {
		offer = offer.Mul(priceScale)
	}
	ixs[offerIndex] = ixs[offerIndex].Add(offer)

	newY, err := CalcY(ixs, d, ag, askIndex)
	if err != nil {
		return SwapResult{}, err
	}
	dy := ixs[askIndex].Sub(newY)
	if !dy.IsPositive() {
		return SwapResult{}, types.ErrInvalidZeroAmount.Wrap("swap returns nothing")
	}
	ixs[askIndex] = newY

	// at the price scale the normalized offer is worth the same normalized output
	expected := offer
	if askIndex == 1 {
		dy = dy.Quo(priceScale)
		expected = expected.Quo(priceScale)
	}
	// price scale lags the market so the spread may be negative
	spread := SaturatingSub(expected, dy)

	feeRate, err := Fee(params, ixs)
	if err != nil {
		return SwapResult{}, err
	}
	totalFee := feeRate.Mul(dy)
	dy = dy.Sub(totalFee)

	return SwapResult{
		Dy:        dy,
		SpreadFee: spread,
		MakerFee:  totalFee.Mul(makerFeeRate),
		ShareFee:  totalFee.Mul(shareFeeRate),
		TotalFee:  totalFee,
	}, nil
}

// AssertMaxSpread compares the realized spread with maxSpread, either
// directly or against the return expected at beliefPrice (offer per ask).
// All amounts are internal decimals.
func AssertMaxSpread(beliefPrice, maxSpread *math.LegacyDec, offerAmount, returnAmount, spreadAmount math.LegacyDec) (err error) {
	defer recoverOverflow(&err)

	limit := DefaultSlippage
	if maxSpread != nil {
		limit = *maxSpread
	}
	if limit.GT(MaxAllowedSlippage) {
		return types.ErrAllowedSpreadAssertion.Wrapf("max spread %s", limit)
	}

	if beliefPrice != nil {
		if !beliefPrice.IsPositive() {
			return types.ErrInvalidParams.Wrap("belief price must be positive")
		}
		expected := offerAmount.Quo(*beliefPrice)
		shortfall := SaturatingSub(expected, returnAmount)
		if returnAmount.LT(expected) && shortfall.Quo(expected).GT(limit) {
			return types.ErrExcessiveSpread.Wrapf("expected %s at belief price %s, got %s", expected, beliefPrice, returnAmount)
		}
		return nil
	}

	total := returnAmount.Add(spreadAmount)
	if total.IsPositive() && spreadAmount.Quo(total).GT(limit) {
		return types.ErrExcessiveSpread.Wrapf("spread %s on return %s exceeds %s", spreadAmount, returnAmount, limit)
	}
	return nil
}
