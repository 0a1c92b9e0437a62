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

// Form is a binary quadratic form ax^2 + bxy + cy^2 of negative discriminant
// d = b^2 - 4ac. Forms are treated as immutable: every operation returns a
// fresh value and never writes through to its receiver or arguments.
type Form struct {
	a *big.Int
	b *big.Int
	c *big.Int
	d *big.Int
}

func NewForm(a, b, c *big.Int) *Form {
	d := new(big.Int).Mul(b, b)
	d.Sub(d, new(big.Int).Mul(new(big.Int).Lsh(a, 2), c))
	return &Form{a: a, b: b, c: c, d: d}
}

func newFormWithDiscriminant(a, b, c, d *big.Int) *Form {
	return &Form{a: a, b: b, c: c, d: d}
}

// NewFormFromAB completes (a, b) with c = (b^2 - d) / 4a. If 4a does not
// divide b^2 - d the result fails IsValid.
func NewFormFromAB(a, b, d *big.Int) *Form {
	//z = b*b-discriminant
	z := new(big.Int).Sub(new(big.Int).Mul(b, b), d)

	//z = z // 4a
	c := FloorDivision(z, new(big.Int).Lsh(a, 2))

	return newFormWithDiscriminant(
		new(big.Int).Set(a),
		new(big.Int).Set(b),
		c,
		d,
	)
}

// Identity returns the principal form (1, 1, (1-d)/4).
func Identity(d *big.Int) *Form {
	return NewFormFromAB(bigOne, bigOne, d)
}

// Generator returns the form (2, 1, (1-d)/8). It is a valid element only when
// d == 1 (mod 8), which every discriminant from CreateDiscriminant satisfies.
func Generator(d *big.Int) *Form {
	return NewFormFromAB(bigTwo, bigOne, d)
}

func (f *Form) A() *big.Int { return new(big.Int).Set(f.a) }

func (f *Form) B() *big.Int { return new(big.Int).Set(f.b) }

func (f *Form) C() *big.Int { return new(big.Int).Set(f.c) }

func (f *Form) Discriminant() *big.Int { return new(big.Int).Set(f.d) }

func (f *Form) identity() *Form {
	return Identity(f.d)
}

// IsValid reports whether f is a positive definite form of discriminant d.
func (f *Form) IsValid(d *big.Int) bool {
	if f == nil || f.a == nil || f.b == nil || f.c == nil {
		return false
	}

	if f.a.Sign() <= 0 || f.c.Sign() <= 0 {
		return false
	}

	disc := new(big.Int).Mul(f.b, f.b)
	disc.Sub(disc, new(big.Int).Mul(new(big.Int).Lsh(f.a, 2), f.c))
	return disc.Cmp(d) == 0
}

// IsNormalized reports -a < b <= a.
func (f *Form) IsNormalized() bool {
	return f.b.CmpAbs(f.a) <= 0 &&
		new(big.Int).Neg(f.a).Cmp(f.b) != 0
}

// IsReduced reports whether f is normalized and a < c, or a == c and b >= 0.
func (f *Form) IsReduced() bool {
	if !f.IsNormalized() {
		return false
	}
	cmp := f.a.Cmp(f.c)
	return cmp < 0 || (cmp == 0 && f.b.Sign() >= 0)
}

// Normalize moves b into (-a, a] by an equivalent change of variables.
func (f *Form) Normalize() *Form {
	if f.IsNormalized() {
		return f
	}

	a := f.a
	b := new(big.Int).Set(f.b)
	c := new(big.Int).Set(f.c)

	//r = (a - b) // (2 * a)
	r := new(big.Int).Sub(a, b)
	r = FloorDivision(r, new(big.Int).Lsh(a, 1))

	//b, c = b + 2 * r * a, a * r * r + b * r + c
	ar := new(big.Int).Mul(a, r)
	br := new(big.Int).Mul(b, r)
	c.Add(c, new(big.Int).Mul(ar, r))
	c.Add(c, br)
	b.Add(b, ar.Lsh(ar, 1))

	return newFormWithDiscriminant(new(big.Int).Set(a), b, c, f.d)
}

// Reduce returns the unique reduced form equivalent to f.
func (f *Form) Reduce() *Form {
	g := f.Normalize()
	a := new(big.Int).Set(g.a)
	b := new(big.Int).Set(g.b)
	c := new(big.Int).Set(g.c)

	s := new(big.Int)
	twoC := new(big.Int)
	tmp := new(big.Int)

	//while a > c or (a == c and b < 0):
	for a.Cmp(c) > 0 || (a.Cmp(c) == 0 && b.Sign() < 0) {
		//s = (c + b) // (c + c)
		twoC.Lsh(c, 1)
		s.Add(c, b)
		s = floorDivInto(s, s, twoC)

		//a, b, c = c, -b + 2 * s * c, c * s * s - b * s + a
		oldA := a
		a = new(big.Int).Set(c)

		// c' = c*s^2 - b*s + a = s*(c*s - b) + a
		tmp.Mul(c, s)
		tmp.Sub(tmp, b)
		tmp.Mul(tmp, s)
		c.Add(tmp, oldA)

		b.Neg(b)
		b.Add(b, twoC.Mul(twoC, s))
	}

	return newFormWithDiscriminant(a, b, c, f.d).Normalize()
}

// floorDivInto sets z = floor(x / y) and returns z.
func floorDivInto(z, x, y *big.Int) *big.Int {
	mustNonZero(y)
	var r big.Int
	z.QuoRem(x, y, &r)
	if r.Sign() != 0 && r.Sign() != y.Sign() {
		z.Sub(z, bigOne)
	}
	return z
}

// Compose multiplies two forms of the same discriminant (Cohen, Algorithm
// 5.4.7) and returns the reduced product.
func (f *Form) Compose(other *Form) *Form {
	f1, f2 := f, other
	if f1.a.Cmp(f2.a) > 0 {
		f1, f2 = f2, f1
	}

	//s = (b1 + b2) / 2, n = b2 - s
	s := new(big.Int).Add(f1.b, f2.b)
	s.Rsh(s, 1)
	n := new(big.Int).Sub(f2.b, s)

	var y1, d *big.Int
	if new(big.Int).Rem(f2.a, f1.a).Sign() == 0 {
		y1 = new(big.Int)
		d = new(big.Int).Set(f1.a)
	} else {
		// u*a2 + v*a1 = d
		var u *big.Int
		d, u, _ = ExtendedGCD(f2.a, f1.a)
		y1 = u
	}

	var x2, y2, d1 *big.Int
	if new(big.Int).Rem(s, d).Sign() == 0 {
		y2 = big.NewInt(-1)
		x2 = new(big.Int)
		d1 = d
	} else {
		d1, x2, y2 = ExtendedGCD(s, d)
		y2.Neg(y2)
	}

	v1 := ExactDivision(f1.a, d1)
	v2 := ExactDivision(f2.a, d1)

	//r = (y1*y2*n - x2*c2) mod v1
	r := new(big.Int).Mul(y1, y2)
	r.Mul(r, n)
	r.Sub(r, new(big.Int).Mul(x2, f2.c))
	r = FloorMod(r, v1)

	//b3 = b2 + 2*v2*r, a3 = v1*v2, c3 = (b3^2 - D) / 4a3
	b3 := new(big.Int).Mul(v2, r)
	b3.Lsh(b3, 1)
	b3.Add(b3, f2.b)
	a3 := new(big.Int).Mul(v1, v2)
	c3 := new(big.Int).Mul(b3, b3)
	c3.Sub(c3, f.d)
	c3 = ExactDivision(c3, new(big.Int).Lsh(a3, 2))

	return newFormWithDiscriminant(a3, b3, c3, f.d).Reduce()
}

// Square returns f*f. See Squarer for repeated squaring under one
// discriminant.
func (f *Form) Square() *Form {
	return NewSquarer(f.d).Square(f)
}

// Inverse returns the reduced inverse (a, -b, c).
func (f *Form) Inverse() *Form {
	return newFormWithDiscriminant(
		new(big.Int).Set(f.a),
		new(big.Int).Neg(f.b),
		new(big.Int).Set(f.c),
		f.d,
	).Reduce()
}

// Pow returns f^n for a machine-word exponent.
func (f *Form) Pow(n uint64) *Form {
	return f.BigPow(new(big.Int).SetUint64(n))
}

// BigPow returns f^n; a negative n raises the inverse.
func (f *Form) BigPow(n *big.Int) *Form {
	base := f
	if n.Sign() < 0 {
		base = f.Inverse()
	}

	e := new(big.Int).Abs(n)
	sq := NewSquarer(f.d)
	res := f.identity()
	for i := e.BitLen() - 1; i >= 0; i-- {
		res = sq.Square(res)
		if e.Bit(i) == 1 {
			res = res.Compose(base)
		}
	}

	return res
}

// Equal compares the coefficients of two forms; both should be reduced.
func (f *Form) Equal(other *Form) bool {
	if f == nil || other == nil {
		return f == other
	}
	return f.a.Cmp(other.a) == 0 &&
		f.b.Cmp(other.b) == 0 &&
		f.c.Cmp(other.c) == 0
}
