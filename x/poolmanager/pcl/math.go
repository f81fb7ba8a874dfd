package pcl

import (
	"cosmossdk.io/math"

	"github.com/colada-chain/colada/x/poolmanager/types"
)

const (
	// N is the number of assets in a pool.
	N = 2
	// NPow2 is N^N, the normalizer of the invariant's product term.
	NPow2 = 4
	// MaxIter bounds every iterative computation.
	MaxIter = 64
)

var (
	// absTolerance and relTolerance define solver convergence: successive
	// iterates within max(absTolerance, |x|*relTolerance) are a root.
	absTolerance = math.LegacyNewDecWithPrec(1, 12)
	relTolerance = math.LegacyNewDecWithPrec(1, 15)

	halfPowTolerance = math.LegacyNewDecWithPrec(1, 10)
)

// converged reports whether two successive iterates agree within
// max(1e-12, 1e-15*|next|). This is looser than a one-unit step of the
// 18-digit representation: near the root Newton's method on LegacyDec can
// alternate between neighbouring values and never settle on a single unit.
func converged(prev, next math.LegacyDec) bool {
	tol := next.Abs().Mul(relTolerance)
	if tol.LT(absTolerance) {
		tol = absTolerance
	}
	return Diff(prev, next).LTE(tol)
}

// curve holds the terms shared by the invariant equation and its derivatives.
type curve struct {
	k0    math.LegacyDec // 4*x0*x1/D^2, 1 on a balanced pool
	g1k0  math.LegacyDec // gamma+1-k0
	g1pk0 math.LegacyDec // gamma+1+k0
	k     math.LegacyDec // A*gamma^2*k0/(gamma+1-k0)^2
}

func newCurve(mul, d2 math.LegacyDec, ag types.AmpGamma) curve {
	one := math.LegacyOneDec()
	k0 := mul.Mul(nPow2).Quo(d2)
	g1k0 := ag.Gamma.Add(one).Sub(k0)
	r := ag.Gamma.Quo(g1k0)
	return curve{
		k0:    k0,
		g1k0:  g1k0,
		g1pk0: ag.Gamma.Add(one).Add(k0),
		k:     ag.Amp.Mul(k0).Mul(r).Mul(r),
	}
}

// f evaluates K*D*(x0+x1) + x0*x1 - K*D^2 - D^2/4.
func f(c curve, x0, x1, d, mul, d2 math.LegacyDec) math.LegacyDec {
	return c.k.Mul(d).Mul(x0.Add(x1)).
		Add(mul).
		Sub(c.k.Mul(d2)).
		Sub(d2.Quo(nPow2))
}

// dfdd is the derivative of f with respect to D.
func dfdd(c curve, x0, x1, d math.LegacyDec) math.LegacyDec {
	// kd is dK/dD * D
	kd := c.k.Mul(two).Mul(c.g1pk0).Quo(c.g1k0).Neg()
	return kd.Add(c.k).Mul(x0.Add(x1)).
		Sub(kd.Add(c.k.Mul(two)).Mul(d)).
		Sub(d.Quo(two))
}

// dfdx is the derivative of f with respect to the reserve x, the other one being xr.
func dfdx(c curve, x, xr, d, d2 math.LegacyDec) math.LegacyDec {
	kx := c.k.Mul(c.g1pk0).Quo(c.g1k0.Mul(x))
	return kx.Mul(x.Add(xr)).Add(c.k).Mul(d).
		Add(xr).
		Sub(kx.Mul(d2))
}

// CalcD solves the invariant for normalized reserves (asset 2 already
// multiplied by the price scale) by Newton's method, starting from the
// constant-product value 2*sqrt(x0*x1).
func CalcD(xs [2]math.LegacyDec, ag types.AmpGamma) (d math.LegacyDec, err error) {
	defer recoverOverflow(&err)

	if !xs[0].IsPositive() || !xs[1].IsPositive() {
		return math.LegacyDec{}, types.ErrInvalidZeroAmount.Wrapf("reserves must be positive, got %s and %s", xs[0], xs[1])
	}

	mul := xs[0].Mul(xs[1])
	root, err := sqrt(mul)
	if err != nil {
		return math.LegacyDec{}, err
	}
	d = root.Mul(two)

	for i := 0; i < MaxIter; i++ {
		d2 := d.Mul(d)
		c := newCurve(mul, d2, ag)
		slope := dfdd(c, xs[0], xs[1], d)
		if slope.IsZero() {
			break
		}
		next := d.Sub(f(c, xs[0], xs[1], d, mul, d2).Quo(slope))
		if !next.IsPositive() {
			break
		}
		if converged(d, next) {
			return next, nil
		}
		d = next
	}

	return math.LegacyDec{}, types.ErrInvariantDidNotConverge.Wrapf("newton method for D failed on %s, %s", xs[0], xs[1])
}

// CalcY solves the invariant for the reserve at askIndex given D and the
// other reserve.
func CalcY(xs [2]math.LegacyDec, d math.LegacyDec, ag types.AmpGamma, askIndex int) (y math.LegacyDec, err error) {
	defer recoverOverflow(&err)

	xr := xs[1-askIndex]
	if !xr.IsPositive() || !d.IsPositive() {
		return math.LegacyDec{}, types.ErrInvalidZeroAmount.Wrapf("reserve %s and D %s must be positive", xr, d)
	}

	d2 := d.Mul(d)
	y = d2.Quo(xr.Mul(nPow2))

	// an initial guess that rounds to zero has no representable root
	for i := 0; i < MaxIter && y.IsPositive(); i++ {
		mul := y.Mul(xr)
		c := newCurve(mul, d2, ag)
		slope := dfdx(c, y, xr, d, d2)
		if slope.IsZero() {
			break
		}
		next := y.Sub(f(c, y, xr, d, mul, d2).Quo(slope))
		if !next.IsPositive() {
			break
		}
		if converged(y, next) {
			return next, nil
		}
		y = next
	}

	return math.LegacyDec{}, types.ErrInvariantDidNotConverge.Wrapf("newton method for y failed, D %s, reserve %s", d, xr)
}

// GetXcp returns the virtual price-independent depth sqrt(D/2 * D/(2*ps)).
func GetXcp(d, priceScale math.LegacyDec) (xcp math.LegacyDec, err error) {
	defer recoverOverflow(&err)

	if !priceScale.IsPositive() {
		return math.LegacyDec{}, types.ErrInvalidParams.Wrap("price scale must be positive")
	}
	halfD := d.Quo(two)
	return sqrt(halfD.Mul(d.Quo(two.Mul(priceScale))))
}

// HalfFloatPow returns 0.5^power for a non-negative decimal power: the
// integer part by exponentiation, the fractional part by its binomial series.
func HalfFloatPow(power math.LegacyDec) (res math.LegacyDec, err error) {
	defer recoverOverflow(&err)

	if power.IsNegative() {
		return math.LegacyDec{}, types.ErrInvalidParams.Wrapf("negative power %s", power)
	}

	intPow := power.TruncateInt()
	// 0.5^64 is below the smallest representable decimal.
	if !intPow.IsUint64() || intPow.Uint64() >= 64 {
		return math.LegacyZeroDec(), nil
	}
	frac := power.Sub(math.LegacyNewDecFromInt(intPow))
	result := half.Power(intPow.Uint64())

	one := math.LegacyOneDec()
	term := one
	sum := one
	for i := int64(1); i < MaxIter; i++ {
		k := math.LegacyNewDec(i)
		term = term.Mul(frac.Sub(k.Sub(one))).Quo(k).Mul(half).Neg()
		sum = sum.Add(term)
		if term.Abs().LT(halfPowTolerance) {
			return result.Mul(sum), nil
		}
	}

	return math.LegacyDec{}, types.ErrInvariantDidNotConverge.Wrapf("half pow series for %s", power)
}
