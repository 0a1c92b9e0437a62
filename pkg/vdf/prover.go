//
// Copyright (c) 2023 Quilibrium, Inc.
//
// SPDX-License-Identifier: MIT
//

package vdf

import (
	"context"
	"math/big"

	"github.com/pkg/errors"
	"source.quilibrium.com/quilibrium/monorepo/vdf/pkg/core/iqc"
)

// Smallest discriminant accepted by the prover and verifier. The upper bound
// is iqc.MaxFormDiscriminantBits, the largest size the form encoding holds.
const MinDiscriminantBits = 512

var (
	ErrZeroIterations         = errors.New("iterations must be positive")
	ErrInsufficientIterations = errors.New("iterations too small for recursion depth")
	ErrInvalidElement         = errors.New("invalid group element")
	ErrDiscriminantSize       = errors.New("unsupported discriminant size")
	ErrDepthTooLarge          = errors.New("recursion depth too large")
)

func checkDiscriminant(d *big.Int) error {
	if !iqc.IsValidDiscriminant(d) {
		return iqc.ErrInvalidDiscriminant
	}

	bits := d.BitLen()
	if bits < MinDiscriminantBits || bits > iqc.MaxFormDiscriminantBits {
		return errors.Wrapf(ErrDiscriminantSize, "%d bits", bits)
	}

	return nil
}

// DefaultElement is the usual starting point of an evaluation, the (2, 1)
// form, which encodes as a single flag byte.
func DefaultElement(d *big.Int) *iqc.Form {
	return iqc.Generator(d)
}

// proveSegment squares x T times and returns the output, the witness and the
// challenge prime of a single Wesolowski proof.
func proveSegment(
	ctx context.Context,
	sq *iqc.Squarer,
	x *iqc.Form,
	T uint64,
) (y, witness *iqc.Form, b *big.Int, err error) {
	l, k := ApproximateParameters(T)

	intermediates, y, err := IterateSquarings(ctx, sq, x, T, uint64(k*l))
	if err != nil {
		return nil, nil, nil, err
	}

	b, err = GetB(sq.Discriminant(), x, y, T)
	if err != nil {
		return nil, nil, nil, err
	}

	witness = GenerateWesolowski(sq, b, intermediates, T, k, l)
	return y, witness, b, nil
}

// Prove evaluates y = x^(2^T) and a single-level proof.
func Prove(
	ctx context.Context,
	d *big.Int,
	x *iqc.Form,
	T uint64,
) (*Proof, error) {
	return ProveN(ctx, d, x, T, 0)
}

// ProveN evaluates y = x^(2^T) and an n-Wesolowski proof of the given depth.
// The iterations are split into depth chunks of T/(depth+1) iterations, each
// carrying its own segment proof, followed by a final proof over the
// remainder. The squarings of all chunks form one sequential pass.
func ProveN(
	ctx context.Context,
	d *big.Int,
	x *iqc.Form,
	T uint64,
	depth uint64,
) (*Proof, error) {
	if err := checkDiscriminant(d); err != nil {
		return nil, errors.Wrap(err, "prove")
	}

	if T == 0 {
		return nil, errors.Wrap(ErrZeroIterations, "prove")
	}

	if depth > MaxDepth {
		return nil, errors.Wrap(ErrDepthTooLarge, "prove")
	}

	chunk := T / (depth + 1)
	if chunk == 0 {
		return nil, errors.Wrap(ErrInsufficientIterations, "prove")
	}

	if !x.IsValid(d) {
		return nil, errors.Wrap(ErrInvalidElement, "prove")
	}
	x = x.Reduce()

	sq := iqc.NewSquarer(d)
	proof := &Proof{
		WitnessType:          uint8(depth),
		NormalizedToIdentity: x.Equal(DefaultElement(d)),
		Segments:             make([]Segment, 0, depth),
	}

	current := x
	for i := uint64(0); i < depth; i++ {
		y, witness, b, err := proveSegment(ctx, sq, current, chunk)
		if err != nil {
			return nil, errors.Wrap(err, "prove")
		}

		proof.Segments = append(proof.Segments, Segment{
			Iterations: chunk,
			B:          b,
			Witness:    witness,
		})
		current = y
	}

	y, witness, _, err := proveSegment(ctx, sq, current, T-chunk*depth)
	if err != nil {
		return nil, errors.Wrap(err, "prove")
	}

	proof.Output = y
	proof.Witness = witness
	return proof, nil
}
