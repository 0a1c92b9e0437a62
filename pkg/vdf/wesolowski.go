//
// Copyright (c) 2019 harmony-one
// Copyright (c) 2023 Quilibrium, Inc.
//
// SPDX-License-Identifier: MIT
//

package vdf

import (
	"context"
	"encoding/binary"
	"math"
	"math/big"

	"github.com/pkg/errors"
	"source.quilibrium.com/quilibrium/monorepo/vdf/pkg/core/iqc"
)

const (
	// Bit length of the Fiat-Shamir challenge prime; bit 263 is always set.
	ChallengeBits = 264
	BBytes        = ChallengeBits / 8
)

// Creates L and k parameters from papers, based on how many iterations need to be
// performed, and how much memory should be used.
func ApproximateParameters(T uint64) (l int, k int) {
	logMemory := 23.25349666
	logT := math.Log2(float64(T))
	l = 1

	if logT-logMemory > 0.000001 {
		l = int(math.Ceil(math.Pow(2, logMemory-20)))
	}

	// Total time for proof: T/k + L * 2^(k+1)
	// To optimize, set left equal to right, and solve for k
	// k = W(T * log(2) / (2 * L))  / log(2), where W is the product log function
	// W can be approximated by log(x) - log(log(x)) + 0.25
	intermediate := float64(T) * 0.6931471 / (2.0 * float64(l))
	kf := math.Round(math.Log(intermediate) - math.Log(math.Log(intermediate)) + 0.25)
	if math.IsNaN(kf) || kf < 1 {
		kf = 1
	}
	k = int(kf)

	return l, k
}

// IterateSquarings computes y = x^(2^T) one squaring at a time and keeps every
// kl-th intermediate, so that intermediates[i] = x^(2^(i*kl)). The context is
// consulted before each squaring.
func IterateSquarings(
	ctx context.Context,
	sq *iqc.Squarer,
	x *iqc.Form,
	T uint64,
	kl uint64,
) (intermediates []*iqc.Form, y *iqc.Form, err error) {
	if kl == 0 {
		return nil, nil, errors.Wrap(
			errors.New("zero checkpoint interval"),
			"iterate squarings",
		)
	}

	intermediates = make([]*iqc.Form, 0, (T+kl-1)/kl)
	done := ctx.Done()

	y = x
	for i := uint64(0); i < T; i++ {
		select {
		case <-done:
			return nil, nil, errors.Wrap(ctx.Err(), "iterate squarings")
		default:
		}

		if i%kl == 0 {
			intermediates = append(intermediates, y)
		}
		y = sq.Square(y)
	}

	return intermediates, y, nil
}

// GetB derives the challenge prime binding the input, the output and the
// iteration count: HashPrime(ser(x) || ser(y) || T, 264, {263}).
func GetB(d *big.Int, x, y *iqc.Form, T uint64) (*big.Int, error) {
	dBits := d.BitLen()

	xs, err := x.Serialize(dBits)
	if err != nil {
		return nil, errors.Wrap(err, "get b")
	}

	ys, err := y.Serialize(dBits)
	if err != nil {
		return nil, errors.Wrap(err, "get b")
	}

	seed := make([]byte, 0, len(xs)+len(ys)+8)
	seed = append(seed, xs...)
	seed = append(seed, ys...)
	seed = binary.BigEndian.AppendUint64(seed, T)

	b, err := iqc.HashPrime(
		seed,
		ChallengeBits,
		[]int{ChallengeBits - 1},
		iqc.DefaultHashPrimeAttempts,
	)
	return b, errors.Wrap(err, "get b")
}

// isChallenge reports whether b has the shape GetB produces.
func isChallenge(b *big.Int) bool {
	return b != nil && b.BitLen() == ChallengeBits
}

// Get's the ith block of  2^T // B
// such that sum(get_block(i) * 2^ki) = t^T // B
func GetBlock(i, k, T uint64, B *big.Int) uint64 {
	//(pow(2, k) * pow(2, T - k * (i + 1), B)) // B
	e := new(big.Int).SetUint64(T - k*(i+1))
	p := new(big.Int).Exp(big.NewInt(2), e, B)
	p.Lsh(p, uint(k))
	return p.Quo(p, B).Uint64()
}

// GenerateWesolowski evaluates pi = x^(2^T // B) from the intermediates
// recorded by IterateSquarings, using windows of k bits interleaved l ways.
func GenerateWesolowski(
	sq *iqc.Squarer,
	B *big.Int,
	intermediates []*iqc.Form,
	T uint64,
	k, l int,
) *iqc.Form {
	identity := iqc.Identity(sq.Discriminant())
	uk, ul := uint64(k), uint64(l)

	//k1 = k//2
	k1 := k / 2
	k0 := k - k1

	//x = identity
	x := identity

	for j := l - 1; j >= 0; j-- {
		//x = pow(x, pow(2, k))
		for s := 0; s < k; s++ {
			x = sq.Square(x)
		}

		ys := make([]*iqc.Form, 1<<k)
		for b := range ys {
			ys[b] = identity
		}

		for i := uint64(0); i < uint64(len(intermediates)); i++ {
			if T < uk*(i*ul+uint64(j)+1) {
				continue
			}

			b := GetBlock(i*ul+uint64(j), uk, T, B)
			ys[b] = ys[b].Compose(intermediates[i])
		}

		//for b1 in range(0, pow(2, k1)):
		for b1 := 0; b1 < 1<<k1; b1++ {
			z := identity
			//for b0 in range(0, pow(2, k0)):
			for b0 := 0; b0 < 1<<k0; b0++ {
				//z *= ys[b1 * pow(2, k0) + b0]
				z = z.Compose(ys[b1<<k0+b0])
			}

			//x *= pow(z, b1 * pow(2, k0))
			x = x.Compose(z.Pow(uint64(b1) << k0))
		}

		//for b0 in range(0, pow(2, k0)):
		for b0 := 0; b0 < 1<<k0; b0++ {
			z := identity
			//for b1 in range(0, pow(2, k1)):
			for b1 := 0; b1 < 1<<k1; b1++ {
				//z *= ys[b1 * pow(2, k0) + b0]
				z = z.Compose(ys[b1<<k0+b0])
			}

			//x *= pow(z, b0)
			x = x.Compose(z.Pow(uint64(b0)))
		}
	}

	return x.Reduce()
}

// evaluationExponents returns the exponents applied to the witness and the
// input when checking a proof, B and 2^T mod B. Both are below
// 2^ChallengeBits for every T.
func evaluationExponents(B *big.Int, T uint64) (q, r *big.Int) {
	r = new(big.Int).Exp(big.NewInt(2), new(big.Int).SetUint64(T), B)
	return B, r
}

// evaluate returns pi^B * x^(2^T mod B).
func evaluate(x, proof *iqc.Form, B *big.Int, T uint64) *iqc.Form {
	q, r := evaluationExponents(B, T)
	return proof.BigPow(q).Compose(x.BigPow(r))
}
