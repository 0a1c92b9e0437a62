//
// Copyright (c) 2019 harmony-one
// Copyright (c) 2023 Quilibrium, Inc.
//
// SPDX-License-Identifier: MIT
//

package vdf

import (
	"math/big"

	"github.com/pkg/errors"
	"source.quilibrium.com/quilibrium/monorepo/vdf/pkg/core/iqc"
)

// VerifyWesolowski checks pi^B * x^(2^T mod B) == y for B = GetB(x, y, T).
func VerifyWesolowski(d *big.Int, x, y, proof *iqc.Form, T uint64) bool {
	if T == 0 {
		return false
	}

	B, err := GetB(d, x, y, T)
	if err != nil {
		return false
	}

	return evaluate(x, proof, B, T).Equal(y)
}

// VerifySegment reconstructs the output of a segment from its witness and
// challenge prime, and checks that the prime commits to that output.
func VerifySegment(
	d *big.Int,
	x, proof *iqc.Form,
	B *big.Int,
	T uint64,
) (*iqc.Form, bool) {
	if T == 0 || !isChallenge(B) {
		return nil, false
	}

	y := evaluate(x, proof, B, T)

	expected, err := GetB(d, x, y, T)
	if err != nil || expected.Cmp(B) != 0 {
		return nil, false
	}

	return y, true
}

// verifySegments walks the segments in chunk order from x, returning the
// element reached and the iterations left for the final level. Every segment
// and the final level must cover at least one iteration.
func verifySegments(
	d *big.Int,
	x *iqc.Form,
	segments []Segment,
	T uint64,
	check bool,
) (*iqc.Form, uint64, bool) {
	for _, s := range segments {
		if s.Iterations == 0 || s.Iterations >= T || !isChallenge(s.B) {
			return nil, 0, false
		}

		var ok bool
		if check {
			x, ok = VerifySegment(d, x, s.Witness, s.B, s.Iterations)
			if !ok {
				return nil, 0, false
			}
		} else {
			x = evaluate(x, s.Witness, s.B, s.Iterations)
		}

		T -= s.Iterations
	}

	return x, T, true
}

// recoverInvalid turns a panic raised while handling malformed input into a
// false result. Arithmetic invariant violations are re-raised.
func recoverInvalid(valid *bool) {
	if r := recover(); r != nil {
		iqc.PanicOnInvariantViolation(r)
		*valid = false
	}
}

// VerifyProof checks a decoded proof for T total iterations starting at x. A
// proof marked NormalizedToIdentity only verifies from the default element.
func VerifyProof(d *big.Int, x *iqc.Form, proof *Proof, T uint64) (valid bool) {
	defer recoverInvalid(&valid)

	if proof == nil || T == 0 || checkDiscriminant(d) != nil || !x.IsValid(d) {
		return false
	}

	x = x.Reduce()
	if proof.NormalizedToIdentity && !x.Equal(DefaultElement(d)) {
		return false
	}

	x, remaining, ok := verifySegments(d, x, proof.Segments, T, true)
	if !ok {
		return false
	}

	return VerifyWesolowski(d, x, proof.Output, proof.Witness, remaining)
}

// VerifyN checks an encoded n-Wesolowski proof of the given depth. Any
// malformed input yields false; only an iqc.InvariantViolation escapes.
func VerifyN(
	d *big.Int,
	x *iqc.Form,
	blob []byte,
	T uint64,
	depth uint64,
) (valid bool) {
	defer recoverInvalid(&valid)

	if checkDiscriminant(d) != nil || !x.IsValid(d) {
		return false
	}

	proof, err := decodeProofFor(d, x, blob, depth)
	if err != nil {
		return false
	}

	return VerifyProof(d, x, proof, T)
}

// VerifyNWithB checks a proof whose final output is not transmitted: blob is
// pi || segment_n || ... || segment_1 and B is the final challenge prime. On
// success the serialized output is returned.
func VerifyNWithB(
	d *big.Int,
	B *big.Int,
	x *iqc.Form,
	blob []byte,
	T uint64,
	depth uint64,
) (y []byte, valid bool) {
	defer func() {
		if r := recover(); r != nil {
			iqc.PanicOnInvariantViolation(r)
			y, valid = nil, false
		}
	}()

	if T == 0 || checkDiscriminant(d) != nil || !x.IsValid(d) {
		return nil, false
	}

	if depth > MaxDepth ||
		len(blob) != iqc.FormSize+int(depth)*SegmentSize {
		return nil, false
	}

	witness, err := iqc.Deserialize(d, blob[:iqc.FormSize])
	if err != nil {
		return nil, false
	}

	segments, err := decodeSegments(d, blob, int(depth))
	if err != nil {
		return nil, false
	}

	last, remaining, ok := verifySegments(d, x.Reduce(), segments, T, true)
	if !ok {
		return nil, false
	}

	out, ok := VerifySegment(d, last, witness, B, remaining)
	if !ok {
		return nil, false
	}

	y, err = out.Serialize(d.BitLen())
	if err != nil {
		return nil, false
	}

	return y, true
}

// GetBFromProof recomputes the final challenge prime of an encoded proof.
// Segment proofs are evaluated but not checked.
func GetBFromProof(
	d *big.Int,
	x *iqc.Form,
	blob []byte,
	T uint64,
	depth uint64,
) (b *big.Int, err error) {
	defer func() {
		if r := recover(); r != nil {
			iqc.PanicOnInvariantViolation(r)
			b, err = nil, errors.Wrap(ErrInvalidProof, "get b from proof")
		}
	}()

	if T == 0 {
		return nil, errors.Wrap(ErrZeroIterations, "get b from proof")
	}

	if err := checkDiscriminant(d); err != nil {
		return nil, errors.Wrap(err, "get b from proof")
	}

	if !x.IsValid(d) {
		return nil, errors.Wrap(ErrInvalidElement, "get b from proof")
	}

	proof, err := decodeProofFor(d, x, blob, depth)
	if err != nil {
		return nil, errors.Wrap(err, "get b from proof")
	}

	last, remaining, ok := verifySegments(d, x.Reduce(), proof.Segments, T, false)
	if !ok {
		return nil, errors.Wrap(ErrInvalidProof, "get b from proof")
	}

	b, err = GetB(d, last, proof.Output, remaining)
	return b, errors.Wrap(err, "get b from proof")
}
