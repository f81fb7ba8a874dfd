package pcl

import (
	"cosmossdk.io/math"

	"github.com/colada-chain/colada/x/poolmanager/types"
)

// FeeTol zeroes the balance weight of the fee curve on very imbalanced pools.
var FeeTol = math.LegacyNewDecWithPrec(1, 3)

// Fee returns the dynamic fee rate for normalized reserves. It moves from
// MidFee on a balanced pool toward OutFee as the pool gets imbalanced;
// FeeGamma controls how fast.
func Fee(params types.PoolParams, xp [2]math.LegacyDec) (fee math.LegacyDec, err error) {
	defer recoverOverflow(&err)

	sum := xp[0].Add(xp[1])
	if !sum.IsPositive() {
		return params.OutFee, nil
	}

	one := math.LegacyOneDec()
	k := xp[0].Mul(xp[1]).Mul(nPow2).Quo(sum.Mul(sum))
	k = params.FeeGamma.Quo(params.FeeGamma.Add(one).Sub(k))
	if k.LTE(FeeTol) {
		k = math.LegacyZeroDec()
	}

	return k.Mul(params.MidFee).Add(one.Sub(k).Mul(params.OutFee)), nil
}

// CalcProvideFee charges deposits that diverge from an even split of value.
// deposits and xp are normalized.
func CalcProvideFee(params types.PoolParams, deposits, xp [2]math.LegacyDec) (fee math.LegacyDec, err error) {
	defer recoverOverflow(&err)

	sum := deposits[0].Add(deposits[1])
	if sum.IsZero() {
		return math.LegacyZeroDec(), nil
	}

	avg := sum.Quo(two)
	rate, err := Fee(params, xp)
	if err != nil {
		return math.LegacyDec{}, err
	}

	imbalance := Diff(deposits[0], avg).Add(Diff(deposits[1], avg))
	return imbalance.Mul(rate).Mul(two).Quo(nPow2.Mul(sum)), nil
}
