package pcl

import (
	"cosmossdk.io/math"

	"github.com/colada-chain/colada/x/poolmanager/types"
)

// MinTradeSize is the smallest trade, in internal units, that may move the
// price state. Smaller trades still settle but skip UpdatePrice.
var MinTradeSize = math.LegacyNewDecWithPrec(1, 6)

// AmpGammaAt interpolates the amp/gamma schedule at now. The schedule is
// clamped to Future once now reaches FutureTime.
func AmpGammaAt(state types.PoolState, now uint64) types.AmpGamma {
	if now >= state.FutureTime || state.FutureTime <= state.InitialTime {
		return state.Future
	}
	if now <= state.InitialTime {
		return state.Initial
	}

	passed := math.LegacyNewDec(int64(now - state.InitialTime))
	total := math.LegacyNewDec(int64(state.FutureTime - state.InitialTime))
	ratio := passed.Quo(total)

	return types.AmpGamma{
		Amp:   state.Initial.Amp.Add(state.Future.Amp.Sub(state.Initial.Amp).Mul(ratio)),
		Gamma: state.Initial.Gamma.Add(state.Future.Gamma.Sub(state.Initial.Gamma).Mul(ratio)),
	}
}

// IsChangingAmpGamma reports whether a ramp is in progress at now.
func IsChangingAmpGamma(state types.PoolState, now uint64) bool {
	return state.FutureTime > state.InitialTime && now >= state.InitialTime && now < state.FutureTime
}

// StartRamp schedules a linear move from the current amp/gamma to future,
// finishing at futureTime.
func StartRamp(state *types.PoolState, future types.AmpGamma, now, futureTime uint64) error {
	if err := future.Validate(); err != nil {
		return err
	}
	if IsChangingAmpGamma(*state, now) {
		return types.ErrInvalidRamp.Wrap("a ramp is already in progress")
	}
	if futureTime < now+types.MinAmpChangingTime {
		return types.ErrInvalidRamp.Wrapf("ramp must last at least %d seconds", types.MinAmpChangingTime)
	}

	current := AmpGammaAt(*state, now)
	maxChange := math.LegacyNewDec(types.MaxAmpGammaChange)
	for _, pair := range [][2]math.LegacyDec{
		{current.Amp, future.Amp},
		{current.Gamma, future.Gamma},
	} {
		cur, next := pair[0], pair[1]
		if next.GT(cur.Mul(maxChange)) || next.Mul(maxChange).LT(cur) {
			return types.ErrInvalidRamp.Wrapf("change from %s to %s exceeds %dx", cur, next, types.MaxAmpGammaChange)
		}
	}

	state.Initial = current
	state.Future = future
	state.InitialTime = now
	state.FutureTime = futureTime
	return nil
}

// StopRamp freezes the schedule at its current value.
func StopRamp(state *types.PoolState, now uint64) {
	current := AmpGammaAt(*state, now)
	state.Initial = current
	state.Future = current
	state.InitialTime = now
	state.FutureTime = now
}

// UpdatePrice advances the EMA oracle, accounts the growth of the invariant
// per share and repegs the price scale toward the oracle when the pool has
// earned enough to pay for it. xs are normalized reserves after the trade,
// totalLP the share supply after it and lastPrice the trade price. It
// reports whether the price scale moved.
func UpdatePrice(
	state *types.PoolState,
	params types.PoolParams,
	now uint64,
	totalLP math.LegacyDec,
	xs [2]math.LegacyDec,
	lastPrice math.LegacyDec,
) (repegged bool, err error) {
	defer recoverOverflow(&err)

	if !totalLP.IsPositive() {
		return false, types.ErrInvalidZeroAmount.Wrap("share supply must be positive")
	}

	ag := AmpGammaAt(*state, now)
	ps := &state.Price
	one := math.LegacyOneDec()

	if ps.LastPriceUpdate < now {
		arg, err := FromRatio(now-ps.LastPriceUpdate, params.MaHalfTime)
		if err != nil {
			return false, err
		}
		alpha, err := HalfFloatPow(arg)
		if err != nil {
			return false, err
		}
		ps.OracleEmaPrice = ps.LastPrice.Mul(one.Sub(alpha)).Add(ps.OracleEmaPrice.Mul(alpha))
		ps.LastPriceUpdate = now
	}
	ps.LastPrice = lastPrice

	d, err := CalcD(xs, ag)
	if err != nil {
		return false, err
	}
	xcp, err := GetXcp(d, ps.PriceScale)
	if err != nil {
		return false, err
	}
	xcpProfitReal := xcp.Quo(totalLP)

	if xcpProfitReal.LT(ps.XcpProfitReal) && !IsChangingAmpGamma(*state, now) {
		return false, types.ErrLossForLPs.Wrapf("virtual price dropped from %s to %s", ps.XcpProfitReal, xcpProfitReal)
	}

	if ps.XcpProfitReal.IsPositive() {
		ps.XcpProfit = ps.XcpProfit.Mul(xcpProfitReal).Quo(ps.XcpProfitReal)
	}
	ps.XcpProfitReal = xcpProfitReal

	norm := Diff(ps.OracleEmaPrice, ps.PriceScale).Quo(ps.PriceScale)
	scaleDelta := math.LegacyMaxDec(params.MinPriceScaleDelta, norm.Mul(tenth))

	if norm.IsZero() || norm.LT(scaleDelta) {
		return false, nil
	}
	profitGate := ps.XcpProfit.Sub(one).Quo(two).Add(params.RepegProfitThreshold)
	if ps.XcpProfitReal.Sub(one).LTE(profitGate) {
		return false, nil
	}

	// step toward the oracle by scaleDelta of the relative distance
	newPriceScale := ps.PriceScale.Mul(norm.Sub(scaleDelta)).Add(scaleDelta.Mul(ps.OracleEmaPrice)).Quo(norm)

	newXs := [2]math.LegacyDec{xs[0], xs[1].Mul(newPriceScale).Quo(ps.PriceScale)}
	newD, err := CalcD(newXs, ag)
	if err != nil {
		return false, err
	}
	newXcp, err := GetXcp(newD, newPriceScale)
	if err != nil {
		return false, err
	}
	newXcpProfitReal := newXcp.Quo(totalLP)

	// the repeg must leave LPs with at least half of the accumulated profit
	if newXcpProfitReal.Mul(two).GT(ps.XcpProfit.Add(one)) {
		ps.PriceScale = newPriceScale
		ps.XcpProfitReal = newXcpProfitReal
		return true, nil
	}
	return false, nil
}
