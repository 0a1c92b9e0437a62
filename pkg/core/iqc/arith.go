//
// Copyright (c) 2019 harmony-one
// Copyright (c) 2023 Quilibrium, Inc.
//
// SPDX-License-Identifier: MIT
//

package iqc

import (
	"math/big"
)

var (
	bigZero = big.NewInt(0)
	bigOne  = big.NewInt(1)
	bigTwo  = big.NewInt(2)
)

// FloorDivision returns floor(x / y). Panics if y is zero.
func FloorDivision(x, y *big.Int) *big.Int {
	mustNonZero(y)
	var r big.Int
	q, _ := new(big.Int).QuoRem(x, y, &r)

	if (r.Sign() == 1 && y.Sign() == -1) || (r.Sign() == -1 && y.Sign() == 1) {
		q.Sub(q, bigOne)
	}

	return q
}

// FloorMod returns x - y*floor(x/y), which carries the sign of y. Panics if y
// is zero.
func FloorMod(x, y *big.Int) *big.Int {
	mustNonZero(y)
	r := new(big.Int).Rem(x, y)
	if r.Sign() != 0 && r.Sign() != y.Sign() {
		r.Add(r, y)
	}
	return r
}

// ExactDivision returns x / y where y is known to divide x.
func ExactDivision(x, y *big.Int) *big.Int {
	mustNonZero(y)
	return new(big.Int).Quo(x, y)
}

// InvariantViolation is the panic value raised when the arithmetic reaches a
// state that no valid form or discriminant can produce.
type InvariantViolation struct {
	msg string
}

func (e *InvariantViolation) Error() string {
	return "iqc: " + e.msg
}

// PanicOnInvariantViolation re-raises r if it is an InvariantViolation. Callers
// that turn recovered panics into a failure result pass r through it first.
func PanicOnInvariantViolation(r interface{}) {
	if v, ok := r.(*InvariantViolation); ok {
		panic(v)
	}
}

func mustNonZero(y *big.Int) {
	if y.Sign() == 0 {
		panic(&InvariantViolation{msg: "division by zero"})
	}
}

// ExtendedGCD returns g, s, t such that g = gcd(a, b) = a*s + b*t and g >= 0.
// Inputs may have any sign.
func ExtendedGCD(a, b *big.Int) (g, s, t *big.Int) {
	s = new(big.Int)
	t = new(big.Int)
	g = new(big.Int).GCD(s, t, a, b)
	return g, s, t
}

// InverseMod returns x such that a*x == 1 (mod m) with 0 <= x < m, or false if
// a is not invertible.
func InverseMod(a, m *big.Int) (*big.Int, bool) {
	if m.Sign() <= 0 {
		return nil, false
	}
	g, s, _ := ExtendedGCD(FloorMod(a, m), m)
	if g.Cmp(bigOne) != 0 {
		return nil, false
	}
	return FloorMod(s, m), true
}

// xgcdPartial runs the extended Euclidean algorithm on (r2, r1), both
// non-negative, until r1 <= bound. It returns the cofactors co2, co1 and the
// remainders r2, r1; co1 starts at -1 and co2 at 0.
func xgcdPartial(r2, r1, bound *big.Int) (co2, co1, outR2, outR1 *big.Int) {
	co2 = big.NewInt(0)
	co1 = big.NewInt(-1)
	outR2 = new(big.Int).Set(r2)
	outR1 = new(big.Int).Set(r1)

	q := new(big.Int)
	r := new(big.Int)
	tmp := new(big.Int)
	for outR1.Sign() != 0 && outR1.Cmp(bound) > 0 {
		q.QuoRem(outR2, outR1, r)
		outR2, outR1, r = outR1, r, outR2

		tmp.Mul(q, co1)
		co2.Sub(co2, tmp)
		co2, co1 = co1, co2
	}

	if outR2.Sign() < 0 {
		co2.Neg(co2)
		co1.Neg(co1)
		outR2.Neg(outR2)
	}

	return co2, co1, outR2, outR1
}

// IntRoot4 returns floor(n^(1/4)) for n >= 0.
func IntRoot4(n *big.Int) *big.Int {
	r := new(big.Int).Sqrt(n)
	return r.Sqrt(r)
}

// allInputValueGCD returns gcd(|a|, |b|), with gcd(0, 0) = 0.
func allInputValueGCD(a, b *big.Int) *big.Int {
	if a.Sign() == 0 {
		return new(big.Int).Abs(b)
	}

	if b.Sign() == 0 {
		return new(big.Int).Abs(a)
	}

	return new(big.Int).GCD(nil, nil, new(big.Int).Abs(a), new(big.Int).Abs(b))
}

// isPerfectSquare reports whether n >= 0 is a square and returns its root.
func isPerfectSquare(n *big.Int) (*big.Int, bool) {
	if n.Sign() < 0 {
		return nil, false
	}
	r := new(big.Int).Sqrt(n)
	return r, new(big.Int).Mul(r, r).Cmp(n) == 0
}
