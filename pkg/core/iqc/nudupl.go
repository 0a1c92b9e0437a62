//
// Copyright (c) 2023 Quilibrium, Inc.
//
// SPDX-License-Identifier: MIT
//

package iqc

import (
	"math/big"
)

// Squarer squares forms of a fixed discriminant with NUDUPL, reducing the
// partial quotients against L = floor(|d|^(1/4)).
type Squarer struct {
	d *big.Int
	l *big.Int
}

func NewSquarer(d *big.Int) *Squarer {
	return &Squarer{
		d: d,
		l: IntRoot4(new(big.Int).Abs(d)),
	}
}

func (sq *Squarer) Discriminant() *big.Int {
	return new(big.Int).Set(sq.d)
}

// Square returns the reduced square of f.
func (sq *Squarer) Square(f *Form) *Form {
	a1 := new(big.Int).Set(f.a)
	c1 := new(big.Int).Set(f.c)

	// s = gcd(|b|, a), v2 the cofactor of b
	s := new(big.Int)
	v2 := new(big.Int)
	s.GCD(v2, nil, new(big.Int).Abs(f.b), a1)
	if f.b.Sign() < 0 {
		v2.Neg(v2)
	}

	//k = -(c*v2)
	k := new(big.Int).Mul(v2, c1)
	k.Neg(k)

	if s.Cmp(bigOne) != 0 {
		a1.Quo(a1, s)
		c1.Mul(c1, s)
	}

	//k = k mod a1
	k = FloorMod(k, a1)

	var a, b, c *big.Int
	if a1.Cmp(sq.l) < 0 {
		t := new(big.Int).Mul(a1, k)

		a = new(big.Int).Mul(a1, a1)

		b = new(big.Int).Lsh(t, 1)
		b.Add(b, f.b)

		c = new(big.Int).Add(f.b, t)
		c.Mul(c, k)
		c.Add(c, c1)
		c = FloorDivision(c, a1)
	} else {
		co2, co1, _, r1 := xgcdPartial(a1, k, sq.l)

		//m2 = (b*r1 - c1*co1) / a1
		m2 := new(big.Int).Mul(f.b, r1)
		m2.Sub(m2, new(big.Int).Mul(c1, co1))
		m2 = ExactDivision(m2, a1)

		//a = r1^2 - co1*m2
		a = new(big.Int).Mul(r1, r1)
		a.Sub(a, new(big.Int).Mul(co1, m2))
		if co1.Sign() >= 0 {
			a.Neg(a)
		}

		//b = 2*(a1*r1 - a*co2) / co1 - b
		b = new(big.Int).Mul(a1, r1)
		b.Sub(b, new(big.Int).Mul(a, co2))
		b.Lsh(b, 1)
		b = ExactDivision(b, co1)
		b.Sub(b, f.b)
		b = FloorMod(b, new(big.Int).Lsh(a, 1))

		//c = (b^2 - d) / a / 4
		c = new(big.Int).Mul(b, b)
		c.Sub(c, sq.d)
		c = ExactDivision(c, a)
		c.Quo(c, big.NewInt(4))

		if a.Sign() < 0 {
			a.Neg(a)
			c.Neg(c)
		}
	}

	return newFormWithDiscriminant(a, b, c, sq.d).Reduce()
}
