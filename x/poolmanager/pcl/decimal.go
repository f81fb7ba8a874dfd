// Package pcl implements the pricing math of two-asset concentrated-liquidity
// pools: the Curve v2 style invariant, the dynamic fee curve, the EMA price
// oracle with repegging, and swap/liquidity settlement amounts.
//
// All computations run on math.LegacyDec (18 fractional digits). Raw integer
// amounts are converted only at the boundary with WithPrecision and ToUint.
// The library panics on overflow and division by zero; every exported
// function converts those panics into types.ErrArithmeticOverflow.
package pcl

import (
	"fmt"

	"cosmossdk.io/math"

	"github.com/colada-chain/colada/x/poolmanager/types"
)

var (
	two    = math.LegacyNewDec(2)
	nPow2  = math.LegacyNewDec(NPow2)
	half   = math.LegacyNewDecWithPrec(5, 1)
	tenth  = math.LegacyNewDecWithPrec(1, 1)
	pow10s = [...]int64{1, 10, 100, 1_000, 10_000, 100_000, 1_000_000, 10_000_000, 100_000_000, 1_000_000_000}
)

// recoverOverflow turns a LegacyDec panic into ErrArithmeticOverflow. It must
// be deferred by functions with a named error result.
func recoverOverflow(err *error) {
	if r := recover(); r != nil {
		*err = types.ErrArithmeticOverflow.Wrap(fmt.Sprint(r))
	}
}

// WithPrecision converts a raw integer amount into the internal decimal
// representation: raw * 10^-precision. The conversion is exact.
func WithPrecision(raw math.Int, precision uint32) (dec math.LegacyDec, err error) {
	defer recoverOverflow(&err)

	if precision > types.MaxAssetPrecision {
		return math.LegacyDec{}, types.ErrInvalidPrecision.Wrapf("precision %d, at most %d supported",
			precision, types.MaxAssetPrecision)
	}
	if raw.IsNil() {
		return math.LegacyDec{}, types.ErrInvalidZeroAmount.Wrap("nil amount")
	}
	if raw.IsNegative() {
		return math.LegacyDec{}, types.ErrNegativeAmount.Wrapf("%s", raw)
	}
	return math.LegacyNewDecFromIntWithPrec(raw, int64(precision)), nil
}

// ToUint converts an internal decimal back into raw units at the given
// precision, truncating toward zero.
func ToUint(dec math.LegacyDec, precision uint32) (raw math.Int, err error) {
	defer recoverOverflow(&err)

	if precision > types.MaxAssetPrecision {
		return math.Int{}, types.ErrInvalidPrecision.Wrapf("precision %d, at most %d supported",
			precision, types.MaxAssetPrecision)
	}
	if dec.IsNil() {
		return math.Int{}, types.ErrInvalidZeroAmount.Wrap("nil decimal")
	}
	if dec.IsNegative() {
		return math.Int{}, types.ErrNegativeAmount.Wrapf("%s", dec)
	}
	return dec.MulInt64(pow10s[precision]).TruncateInt(), nil
}

// SaturatingSub returns a-b clamped at zero.
func SaturatingSub(a, b math.LegacyDec) math.LegacyDec {
	if a.LTE(b) {
		return math.LegacyZeroDec()
	}
	return a.Sub(b)
}

// Diff returns |a-b|.
func Diff(a, b math.LegacyDec) math.LegacyDec {
	return a.Sub(b).Abs()
}

// FromRatio returns num/den. den must be positive.
func FromRatio(num, den uint64) (dec math.LegacyDec, err error) {
	defer recoverOverflow(&err)

	if den == 0 {
		return math.LegacyDec{}, types.ErrArithmeticOverflow.Wrap("division by zero")
	}
	return math.LegacyNewDecFromInt(math.NewIntFromUint64(num)).
		Quo(math.LegacyNewDecFromInt(math.NewIntFromUint64(den))), nil
}

func sqrt(d math.LegacyDec) (math.LegacyDec, error) {
	root, err := d.ApproxSqrt()
	if err != nil {
		return math.LegacyDec{}, types.ErrArithmeticOverflow.Wrapf("sqrt of %s: %s", d, err)
	}
	return root, nil
}
