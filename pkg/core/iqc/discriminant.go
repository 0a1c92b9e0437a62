//
// Copyright (c) 2019 harmony-one
// Copyright (c) 2023 Quilibrium, Inc.
//
// SPDX-License-Identifier: MIT
//

package iqc

import (
	"math/big"

	"github.com/pkg/errors"
)

const (
	// Largest discriminant CreateDiscriminant will derive.
	MaxDiscriminantBits = 16384

	// Default number of candidates tested before CreateDiscriminant gives up.
	DefaultDiscriminantAttempts = 1 << 16
)

var (
	ErrDiscriminantExhausted = errors.New("no prime discriminant within attempt bound")
	ErrInvalidDiscriminant   = errors.New("invalid discriminant")
)

// CreateDiscriminant derives a negative prime discriminant D of exactly bits
// bits from seed. The seed is treated as a big-endian counter: before each
// sha256 it is incremented, and the digests are concatenated until bits/8
// bytes are available. Bits 0, 1, 2 and bits-1 of the candidate are set, so
// the returned D = -p satisfies D == 1 (mod 8). The first candidate passing
// IsProbablePrime is returned; the counter keeps advancing between candidates.
func CreateDiscriminant(
	seed []byte,
	bits int,
	maxAttempts int,
) (*big.Int, error) {
	if bits <= 0 || bits%8 != 0 || bits > MaxDiscriminantBits {
		return nil, errors.Wrap(
			errors.Wrapf(ErrInvalidDiscriminant, "unsupported bit length %d", bits),
			"create discriminant",
		)
	}

	sprout := make([]byte, len(seed))
	copy(sprout, seed)

	n := new(big.Int)
	for attempt := 0; attempt < maxAttempts; attempt++ {
		n.SetBytes(expandSeed(sprout, bits/8))
		n.SetBit(n, bits-1, 1)
		n.SetBit(n, 0, 1)
		n.SetBit(n, 1, 1)
		n.SetBit(n, 2, 1)

		if IsProbablePrime(n) {
			return n.Neg(n), nil
		}
	}

	return nil, errors.Wrap(ErrDiscriminantExhausted, "create discriminant")
}

// DiscriminantBytes encodes |D| as a big-endian magnitude of bits/8 bytes.
func DiscriminantBytes(d *big.Int, bits int) []byte {
	out := make([]byte, (bits+7)/8)
	new(big.Int).Abs(d).FillBytes(out)
	return out
}

// DiscriminantFromBytes is the inverse of DiscriminantBytes. The result must
// be negative and congruent to 1 mod 4.
func DiscriminantFromBytes(buf []byte) (*big.Int, error) {
	if len(buf) == 0 || len(buf)*8 > MaxDiscriminantBits {
		return nil, errors.Wrap(ErrInvalidDiscriminant, "discriminant from bytes")
	}

	d := new(big.Int).SetBytes(buf)
	d.Neg(d)
	if !IsValidDiscriminant(d) {
		return nil, errors.Wrap(ErrInvalidDiscriminant, "discriminant from bytes")
	}

	return d, nil
}

// IsValidDiscriminant reports whether d is negative and d == 1 (mod 4).
func IsValidDiscriminant(d *big.Int) bool {
	if d == nil || d.Sign() >= 0 {
		return false
	}
	return FloorMod(d, big.NewInt(4)).Cmp(bigOne) == 0
}
