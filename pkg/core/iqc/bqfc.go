//
// Copyright (c) 2023 Quilibrium, Inc.
//
// SPDX-License-Identifier: MIT
//

package iqc

import (
	"bytes"
	"math/big"

	"github.com/pkg/errors"
)

// Compressed form encoding. The layout is:
//
//	1                    flags: b sign, t sign, identity, generator
//	1                    g_size, the byte length of g minus one
//	d_bits/16 - g_size   a' = a / g
//	d_bits/32 - g_size   t' = t / g
//	g_size + 1           g = gcd(a, t)
//	g_size + 1           b0 = |b| / a' (truncated)
//
// where d_bits is the discriminant bit length rounded up to a multiple of 32
// and every integer is an unsigned little-endian magnitude. The identity (1, 1)
// and generator (2, 1) forms are a single flag byte. Encodings are zero padded
// to FormSize.
const (
	MaxFormDiscriminantBits = 1024
	FormSize                = (MaxFormDiscriminantBits+31)/32*3 + 4
)

const (
	flagBSign     = 1 << 0
	flagTSign     = 1 << 1
	flagIdentity  = 1 << 2
	flagGenerator = 1 << 3
)

var ErrInvalidEncoding = errors.New("invalid form encoding")

type compressedForm struct {
	a     *big.Int
	t     *big.Int
	g     *big.Int
	b0    *big.Int
	bSign bool
}

func compress(a, b *big.Int) *compressedForm {
	if a.Cmp(b) == 0 {
		return &compressedForm{
			a:  new(big.Int).Set(a),
			t:  new(big.Int),
			g:  new(big.Int),
			b0: new(big.Int),
		}
	}

	sign := b.Sign() < 0
	aSqrt := new(big.Int).Sqrt(a)
	_, co1, _, _ := xgcdPartial(a, new(big.Int).Abs(b), aSqrt)
	t := co1.Neg(co1)

	out := &compressedForm{bSign: sign}
	out.g = new(big.Int).GCD(nil, nil, a, new(big.Int).Abs(t))
	if out.g.Cmp(bigOne) == 0 {
		out.a = new(big.Int).Set(a)
		out.t = t
		out.b0 = new(big.Int)
		return out
	}

	out.a = ExactDivision(a, out.g)
	out.t = ExactDivision(t, out.g)
	out.b0 = new(big.Int).Quo(b, out.a)
	if sign {
		out.b0.Neg(out.b0)
	}

	return out
}

func (cf *compressedForm) decompress(d *big.Int) (a, b *big.Int, err error) {
	if cf.a.Sign() == 0 {
		return nil, nil, errors.Wrap(ErrInvalidEncoding, "decompress")
	}

	if cf.t.Sign() == 0 {
		return new(big.Int).Set(cf.a), new(big.Int).Set(cf.a), nil
	}

	t := new(big.Int).Set(cf.t)
	if t.Sign() < 0 {
		t.Add(t, cf.a)
	}

	tInv, ok := InverseMod(t, cf.a)
	if !ok {
		return nil, nil, errors.Wrap(ErrInvalidEncoding, "decompress")
	}

	dm := FloorMod(d, cf.a)

	// tmp = sqrt(t^2 * d mod a')
	tmp := new(big.Int).Mul(cf.t, cf.t)
	tmp.Mod(tmp, cf.a)
	tmp.Mul(tmp, dm)
	tmp.Mod(tmp, cf.a)
	root, ok := isPerfectSquare(tmp)
	if !ok {
		return nil, nil, errors.Wrap(ErrInvalidEncoding, "decompress")
	}

	b = new(big.Int).Mul(root, tInv)
	b.Mod(b, cf.a)

	if cf.g.Cmp(bigOne) > 0 {
		a = new(big.Int).Mul(cf.a, cf.g)
	} else {
		a = new(big.Int).Set(cf.a)
	}

	if cf.b0.Sign() > 0 {
		b.Add(b, new(big.Int).Mul(cf.a, cf.b0))
	}

	if cf.bSign {
		b.Neg(b)
	}

	return a, b, nil
}

func roundDiscriminantBits(dBits int) int {
	return (dBits + 31) &^ 31
}

// putLE writes the magnitude of n little-endian into dst, which must be large
// enough to hold it.
func putLE(dst []byte, n *big.Int) error {
	be := n.Bytes()
	if len(be) > len(dst) {
		return errors.Wrap(ErrInvalidEncoding, "field overflow")
	}
	for i, v := range be {
		dst[len(be)-1-i] = v
	}
	return nil
}

func getLE(src []byte) *big.Int {
	be := make([]byte, len(src))
	for i, v := range src {
		be[len(src)-1-i] = v
	}
	return new(big.Int).SetBytes(be)
}

// Serialize encodes f into FormSize bytes for a discriminant of dBits bits.
func (f *Form) Serialize(dBits int) ([]byte, error) {
	return SerializeAB(f.a, f.b, dBits)
}

// SerializeAB encodes the form with leading coefficients a and b.
func SerializeAB(a, b *big.Int, dBits int) ([]byte, error) {
	if dBits <= 0 || dBits > MaxFormDiscriminantBits {
		return nil, errors.Wrap(
			errors.Wrapf(ErrInvalidEncoding, "discriminant of %d bits", dBits),
			"serialize form",
		)
	}

	if a.Sign() <= 0 {
		return nil, errors.Wrap(ErrInvalidEncoding, "serialize form")
	}

	out := make([]byte, FormSize)
	if b.Cmp(bigOne) == 0 && a.Cmp(bigTwo) <= 0 {
		if a.Cmp(bigTwo) == 0 {
			out[0] = flagGenerator
		} else {
			out[0] = flagIdentity
		}
		return out, nil
	}

	cf := compress(a, b)
	dBits = roundDiscriminantBits(dBits)

	gBits := cf.g.BitLen()
	if gBits == 0 {
		gBits = 1
	}
	gSize := (gBits+7)/8 - 1
	if gSize >= dBits/32 {
		return nil, errors.Wrap(ErrInvalidEncoding, "serialize form")
	}

	if cf.bSign {
		out[0] |= flagBSign
	}
	if cf.t.Sign() < 0 {
		out[0] |= flagTSign
	}
	out[1] = byte(gSize)

	offset := 2
	fields := []struct {
		size int
		n    *big.Int
	}{
		{dBits/16 - gSize, cf.a},
		{dBits/32 - gSize, cf.t},
		{gSize + 1, cf.g},
		{gSize + 1, cf.b0},
	}
	for _, field := range fields {
		if err := putLE(out[offset:offset+field.size], field.n); err != nil {
			return nil, errors.Wrap(err, "serialize form")
		}
		offset += field.size
	}

	return out, nil
}

// Deserialize decodes a FormSize encoding under discriminant d. Only the
// canonical encoding of a valid form is accepted.
func Deserialize(d *big.Int, buf []byte) (*Form, error) {
	if len(buf) != FormSize {
		return nil, errors.Wrap(ErrInvalidEncoding, "deserialize form")
	}

	dBits := d.BitLen()
	if dBits == 0 || dBits > MaxFormDiscriminantBits {
		return nil, errors.Wrap(ErrInvalidDiscriminant, "deserialize form")
	}

	var a, b *big.Int
	if buf[0]&(flagIdentity|flagGenerator) != 0 {
		b = big.NewInt(1)
		if buf[0]&flagGenerator != 0 {
			a = big.NewInt(2)
		} else {
			a = big.NewInt(1)
		}
	} else {
		rounded := roundDiscriminantBits(dBits)
		gSize := int(buf[1])
		if gSize >= rounded/32 {
			return nil, errors.Wrap(ErrInvalidEncoding, "deserialize form")
		}

		offset := 2
		next := func(size int) *big.Int {
			n := getLE(buf[offset : offset+size])
			offset += size
			return n
		}

		cf := &compressedForm{}
		cf.a = next(rounded/16 - gSize)
		cf.t = next(rounded/32 - gSize)
		cf.g = next(gSize + 1)
		cf.b0 = next(gSize + 1)
		cf.bSign = buf[0]&flagBSign != 0
		if buf[0]&flagTSign != 0 {
			cf.t.Neg(cf.t)
		}

		var err error
		a, b, err = cf.decompress(d)
		if err != nil {
			return nil, errors.Wrap(err, "deserialize form")
		}
	}

	canon, err := SerializeAB(a, b, dBits)
	if err != nil || !bytes.Equal(canon, buf) {
		return nil, errors.Wrap(ErrInvalidEncoding, "deserialize form")
	}

	f := NewFormFromAB(a, b, d)
	if !f.IsValid(d) {
		return nil, errors.Wrap(ErrInvalidEncoding, "deserialize form")
	}

	return f, nil
}
