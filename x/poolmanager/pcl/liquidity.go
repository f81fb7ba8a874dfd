package pcl

import (
	"cosmossdk.io/math"

	"github.com/colada-chain/colada/x/poolmanager/types"
)

const (
	// LPTokenPrecision is the precision of every liquidity share denom.
	LPTokenPrecision uint32 = 6
)

// MinimumLiquidityAmount is locked forever on the first deposit, in raw LP units.
var MinimumLiquidityAmount = math.NewInt(1_000)

// ProvideResult is the outcome of a deposit in internal LP units.
type ProvideResult struct {
	// Share is minted to the depositor.
	Share math.LegacyDec
	// Locked is minted to the null holder; non-zero only for the first deposit.
	Locked math.LegacyDec
	// Slippage is the realized slippage when the deposit moved the price.
	Slippage math.LegacyDec
	// Repegged reports a price scale move.
	Repegged bool
}

// ProvideShare computes the shares minted for deposits into a pool holding
// reserves with totalShare outstanding, and updates the price state when the
// deposit moves the price. Reserves and deposits are internal decimals in
// asset units (not normalized).
func ProvideShare(
	state *types.PoolState,
	params types.PoolParams,
	now uint64,
	reserves, deposits [2]math.LegacyDec,
	totalShare math.LegacyDec,
	slippageTolerance *math.LegacyDec,
) (res ProvideResult, err error) {
	defer recoverOverflow(&err)

	if deposits[0].IsNegative() || deposits[1].IsNegative() {
		return ProvideResult{}, types.ErrNegativeAmount.Wrap("deposit")
	}
	if deposits[0].IsZero() && deposits[1].IsZero() {
		return ProvideResult{}, types.ErrInvalidZeroAmount.Wrap("nothing to provide")
	}
	// the first deposit sets the reference price and must be two sided
	if totalShare.IsZero() && (deposits[0].IsZero() || deposits[1].IsZero()) {
		return ProvideResult{}, types.ErrInvalidZeroAmount.Wrap("initial provide can not be one-sided")
	}

	priceScale := state.Price.PriceScale
	ag := AmpGammaAt(*state, now)
	newXp := [2]math.LegacyDec{
		reserves[0].Add(deposits[0]),
		reserves[1].Add(deposits[1]).Mul(priceScale),
	}
	newD, err := CalcD(newXp, ag)
	if err != nil {
		return ProvideResult{}, err
	}

	one := math.LegacyOneDec()
	res.Locked = math.LegacyZeroDec()
	res.Slippage = math.LegacyZeroDec()

	if totalShare.IsZero() {
		minLiquidity, err := WithPrecision(MinimumLiquidityAmount, LPTokenPrecision)
		if err != nil {
			return ProvideResult{}, err
		}
		xcp, err := GetXcp(newD, priceScale)
		if err != nil {
			return ProvideResult{}, err
		}
		if xcp.LTE(minLiquidity) {
			return ProvideResult{}, types.ErrMinimumLiquidityAmount.Wrapf("initial liquidity %s, at least %s required", xcp, minLiquidity)
		}

		res.Share = xcp.Sub(minLiquidity)
		res.Locked = minLiquidity
		state.Price.XcpProfit = one
		state.Price.XcpProfitReal = one
	} else {
		oldXp := [2]math.LegacyDec{reserves[0], reserves[1].Mul(priceScale)}
		oldD, err := CalcD(oldXp, ag)
		if err != nil {
			return ProvideResult{}, err
		}
		share := SaturatingSub(totalShare.Mul(newD).Quo(oldD), totalShare)

		ideposits := [2]math.LegacyDec{deposits[0], deposits[1].Mul(priceScale)}
		fee, err := CalcProvideFee(params, ideposits, newXp)
		if err != nil {
			return ProvideResult{}, err
		}
		res.Share = share.Mul(one.Sub(fee))
	}

	// compare the deposit with a deposit at the current balance of the pool
	shareRatio := res.Share.Quo(totalShare.Add(res.Share))
	balanced := [2]math.LegacyDec{
		newXp[0].Mul(shareRatio),
		newXp[1].Mul(shareRatio).Quo(priceScale),
	}
	assetsDiff := [2]math.LegacyDec{
		Diff(deposits[0], balanced[0]),
		Diff(deposits[1], balanced[1]),
	}

	// near balanced deposits do not move the price
	if assetsDiff[0].LT(MinTradeSize) || assetsDiff[1].LT(MinTradeSize) {
		return res, nil
	}

	res.Slippage, err = AssertSlippageTolerance(deposits, res.Share, state.Price, slippageTolerance)
	if err != nil {
		return ProvideResult{}, err
	}

	lastPrice := assetsDiff[0].Quo(assetsDiff[1])
	res.Repegged, err = UpdatePrice(state, params, now, totalShare.Add(res.Share), newXp, lastPrice)
	if err != nil {
		return ProvideResult{}, err
	}
	return res, nil
}

// AssertSlippageTolerance compares the minted share with the share a deposit
// of the same value would get at the current virtual price.
func AssertSlippageTolerance(
	deposits [2]math.LegacyDec,
	actualShare math.LegacyDec,
	price types.PriceState,
	slippageTolerance *math.LegacyDec,
) (slippage math.LegacyDec, err error) {
	defer recoverOverflow(&err)

	limit := DefaultSlippage
	if slippageTolerance != nil {
		limit = *slippageTolerance
	}
	if limit.GT(MaxAllowedSlippage) {
		return math.LegacyDec{}, types.ErrAllowedSpreadAssertion.Wrapf("slippage tolerance %s", limit)
	}
	if !price.XcpProfitReal.IsPositive() {
		return math.LegacyZeroDec(), nil
	}

	depositValue := deposits[0].Add(deposits[1].Mul(price.PriceScale))
	sqrtPrice, err := sqrt(price.PriceScale)
	if err != nil {
		return math.LegacyDec{}, err
	}
	expected := depositValue.Quo(two.Mul(sqrtPrice)).Quo(price.XcpProfitReal)
	if !expected.IsPositive() {
		return math.LegacyZeroDec(), nil
	}

	slippage = SaturatingSub(expected, actualShare).Quo(expected)
	if slippage.GT(limit) {
		return math.LegacyDec{}, types.ErrSlippageToleranceExceeded.Wrapf("slippage %s exceeds %s", slippage, limit)
	}
	return slippage, nil
}

// ShareInAssets returns the pro-rata reserves of amount shares.
func ShareInAssets(reserves [2]math.Int, amount, totalShare math.Int) (refund [2]math.Int, err error) {
	defer recoverOverflow(&err)

	if !totalShare.IsPositive() {
		return [2]math.Int{math.ZeroInt(), math.ZeroInt()}, nil
	}
	if amount.GT(totalShare) {
		return refund, types.ErrInsufficientShares.Wrapf("%s requested, %s outstanding", amount, totalShare)
	}
	for i, reserve := range reserves {
		refund[i] = reserve.Mul(amount).Quo(totalShare)
	}
	return refund, nil
}

// WithdrawShare returns the reserves refunded for burning amount shares. One
// raw share unit is withheld so rounding always favors the pool.
func WithdrawShare(reserves [2]math.Int, amount, totalShare math.Int) ([2]math.Int, error) {
	if !amount.IsPositive() {
		return [2]math.Int{}, types.ErrInvalidZeroAmount.Wrap("withdraw amount")
	}
	if amount.GT(totalShare) {
		return [2]math.Int{}, types.ErrInsufficientShares.Wrapf("%s requested, %s outstanding", amount, totalShare)
	}

	refund, err := ShareInAssets(reserves, amount.Sub(math.OneInt()), totalShare)
	if err != nil {
		return [2]math.Int{}, err
	}
	for i := range refund {
		if refund[i].GT(reserves[i]) {
			return [2]math.Int{}, types.ErrNegativeAmount.Wrapf("refund %s exceeds reserve %s", refund[i], reserves[i])
		}
	}
	return refund, nil
}

// RefreshXcpProfitReal recomputes the virtual price per share after shares
// left the pool. xs are normalized reserves.
func RefreshXcpProfitReal(state *types.PoolState, now uint64, xs [2]math.LegacyDec, totalLP math.LegacyDec) (err error) {
	defer recoverOverflow(&err)

	if !totalLP.IsPositive() || !xs[0].IsPositive() || !xs[1].IsPositive() {
		return nil
	}
	d, err := CalcD(xs, AmpGammaAt(*state, now))
	if err != nil {
		return err
	}
	xcp, err := GetXcp(d, state.Price.PriceScale)
	if err != nil {
		return err
	}
	state.Price.XcpProfitReal = xcp.Quo(totalLP)
	return nil
}
