//
// Copyright (c) 2023 Quilibrium, Inc.
//
// SPDX-License-Identifier: MIT
//

package iqc

import (
	"math/big"

	"github.com/minio/sha256-simd"
	"github.com/pkg/errors"
)

// Number of random-base Miller-Rabin rounds performed before the Baillie-PSW
// test inside big.Int.ProbablyPrime.
const primalityRounds = 20

// Upper bound on candidates HashPrime will test before giving up.
const DefaultHashPrimeAttempts = 1 << 20

var ErrHashPrimeExhausted = errors.New("no prime found within attempt bound")

// IsProbablePrime reports whether n is prime with error probability far below
// 2^-128 for inputs not chosen adversarially against the random bases.
func IsProbablePrime(n *big.Int) bool {
	if n.Sign() <= 0 {
		return false
	}
	return n.ProbablyPrime(primalityRounds)
}

// incrementCounter treats sprout as a big-endian counter and adds one.
func incrementCounter(sprout []byte) {
	for i := len(sprout) - 1; i >= 0; i-- {
		sprout[i]++
		if sprout[i] != 0 {
			return
		}
	}
}

// expandSeed fills a buffer of byteCount bytes from sha256(sprout), advancing
// the counter before every hash.
func expandSeed(sprout []byte, byteCount int) []byte {
	blob := make([]byte, 0, byteCount+sha256.Size)
	for len(blob) < byteCount {
		incrementCounter(sprout)
		sum := sha256.Sum256(sprout)
		remaining := byteCount - len(blob)
		if remaining > sha256.Size {
			remaining = sha256.Size
		}
		blob = append(blob, sum[:remaining]...)
	}
	return blob
}

// HashPrime derives a pseudo-random prime of the given bit length from seed:
// each candidate is expanded from the incremented seed, the bits in bitmask
// are forced on and the first probable prime is returned.
func HashPrime(
	seed []byte,
	length int,
	bitmask []int,
	maxAttempts int,
) (*big.Int, error) {
	if length <= 0 || length%8 != 0 {
		return nil, errors.Wrap(
			errors.Errorf("invalid prime length %d", length),
			"hash prime",
		)
	}

	sprout := make([]byte, len(seed))
	copy(sprout, seed)

	p := new(big.Int)
	for attempt := 0; attempt < maxAttempts; attempt++ {
		p.SetBytes(expandSeed(sprout, length/8))
		for _, b := range bitmask {
			p.SetBit(p, b, 1)
		}

		if IsProbablePrime(p) {
			return p, nil
		}
	}

	return nil, errors.Wrap(ErrHashPrimeExhausted, "hash prime")
}
