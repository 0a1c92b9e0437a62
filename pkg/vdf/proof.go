//
// Copyright (c) 2023 Quilibrium, Inc.
//
// SPDX-License-Identifier: MIT
//

package vdf

import (
	"encoding/binary"
	"math/big"

	"github.com/pkg/errors"
	"source.quilibrium.com/quilibrium/monorepo/vdf/pkg/core/iqc"
)

// SegmentSize is the encoded size of one intermediate proof:
// iterations (8, big-endian) || B (33, big-endian) || witness.
const SegmentSize = 8 + BBytes + iqc.FormSize

// MaxDepth bounds the recursion depth so it fits the witness type byte.
const MaxDepth = 255

var ErrInvalidProof = errors.New("invalid proof")

// Segment is an intermediate level of an n-Wesolowski proof. It proves that
// some input, raised to 2^Iterations, reaches an element the verifier
// reconstructs from B and Witness.
type Segment struct {
	Iterations uint64
	B          *big.Int
	Witness    *iqc.Form
}

// Proof is the prover's output. Segments are ordered by chunk, the first
// entry covering the first iterations after the input.
type Proof struct {
	Output  *iqc.Form
	Witness *iqc.Form

	// WitnessType is the recursion depth, len(Segments).
	WitnessType uint8

	// NormalizedToIdentity is set when the evaluation started from the
	// default element.
	NormalizedToIdentity bool

	Segments []Segment
}

// ProofSize returns the encoded length of a proof with depth segments.
func ProofSize(depth int) int {
	return 2*iqc.FormSize + depth*SegmentSize
}

// Bytes encodes the proof as y || pi || segment_n || ... || segment_1, the
// segment of the first chunk last.
func (p *Proof) Bytes(dBits int) ([]byte, error) {
	out := make([]byte, 0, ProofSize(len(p.Segments)))

	y, err := p.Output.Serialize(dBits)
	if err != nil {
		return nil, errors.Wrap(err, "encode proof")
	}
	out = append(out, y...)

	w, err := p.Witness.Serialize(dBits)
	if err != nil {
		return nil, errors.Wrap(err, "encode proof")
	}
	out = append(out, w...)

	for i := len(p.Segments) - 1; i >= 0; i-- {
		out, err = p.Segments[i].appendTo(out, dBits)
		if err != nil {
			return nil, errors.Wrap(err, "encode proof")
		}
	}

	return out, nil
}

func (s *Segment) appendTo(out []byte, dBits int) ([]byte, error) {
	if !isChallenge(s.B) {
		return nil, errors.Wrap(ErrInvalidProof, "segment challenge")
	}

	w, err := s.Witness.Serialize(dBits)
	if err != nil {
		return nil, err
	}

	var b [BBytes]byte
	s.B.FillBytes(b[:])

	out = binary.BigEndian.AppendUint64(out, s.Iterations)
	out = append(out, b[:]...)
	return append(out, w...), nil
}

func decodeSegment(d *big.Int, buf []byte) (Segment, error) {
	w, err := iqc.Deserialize(d, buf[8+BBytes:SegmentSize])
	if err != nil {
		return Segment{}, err
	}

	return Segment{
		Iterations: binary.BigEndian.Uint64(buf[:8]),
		B:          new(big.Int).SetBytes(buf[8 : 8+BBytes]),
		Witness:    w,
	}, nil
}

// decodeSegments parses depth trailing segments of blob, returning them in
// chunk order.
func decodeSegments(d *big.Int, blob []byte, depth int) ([]Segment, error) {
	segments := make([]Segment, 0, depth)
	for i := len(blob) - SegmentSize; len(segments) < depth; i -= SegmentSize {
		s, err := decodeSegment(d, blob[i:i+SegmentSize])
		if err != nil {
			return nil, err
		}
		segments = append(segments, s)
	}
	return segments, nil
}

// DecodeProof parses an encoding produced by Proof.Bytes. It checks the
// layout and the validity of each element, not the proof itself. The input is
// not part of the encoding, so NormalizedToIdentity is left unset.
func DecodeProof(d *big.Int, blob []byte, depth uint64) (*Proof, error) {
	if depth > MaxDepth || len(blob) != ProofSize(int(depth)) {
		return nil, errors.Wrap(ErrInvalidProof, "decode proof")
	}

	y, err := iqc.Deserialize(d, blob[:iqc.FormSize])
	if err != nil {
		return nil, errors.Wrap(err, "decode proof")
	}

	w, err := iqc.Deserialize(d, blob[iqc.FormSize:2*iqc.FormSize])
	if err != nil {
		return nil, errors.Wrap(err, "decode proof")
	}

	segments, err := decodeSegments(d, blob, int(depth))
	if err != nil {
		return nil, errors.Wrap(err, "decode proof")
	}

	return &Proof{
		Output:      y,
		Witness:     w,
		WitnessType: uint8(depth),
		Segments:    segments,
	}, nil
}

// decodeProofFor decodes a proof of an evaluation starting at x, recording
// whether x is the default element.
func decodeProofFor(d *big.Int, x *iqc.Form, blob []byte, depth uint64) (*Proof, error) {
	proof, err := DecodeProof(d, blob, depth)
	if err != nil {
		return nil, err
	}

	proof.NormalizedToIdentity = x.Reduce().Equal(DefaultElement(d))
	return proof, nil
}
