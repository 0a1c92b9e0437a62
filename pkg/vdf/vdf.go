//
// Copyright (c) 2019 harmony-one
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

// VDF is the struct holding necessary state for one class group delay
// function evaluation. Difficulty is carried through as an unsigned int,
// because we can't travel backwards in time (yet ;) )
type VDF struct {
	discriminant *big.Int
	input        *iqc.Form
	difficulty   uint64
	depth        uint64
	output       []byte
	outputChan   chan []byte
	finished     bool
}

// New create a new instance of VDF starting at the default element.
func New(discriminant *big.Int, difficulty, depth uint64) *VDF {
	return NewWithInput(
		discriminant,
		DefaultElement(discriminant),
		difficulty,
		depth,
	)
}

// NewWithInput creates an instance of VDF starting at input.
func NewWithInput(
	discriminant *big.Int,
	input *iqc.Form,
	difficulty, depth uint64,
) *VDF {
	return &VDF{
		discriminant: discriminant,
		input:        input,
		difficulty:   difficulty,
		depth:        depth,
		outputChan:   make(chan []byte, 1),
	}
}

// GetOutputChannel returns the vdf output channel.
// VDF output consists of 100 bytes of serialized Y, 100 bytes of serialized
// Proof and the encoded segments of any recursion levels.
func (vdf *VDF) GetOutputChannel() chan []byte {
	return vdf.outputChan
}

// Execute runs the VDF until it's finished or ctx is cancelled, and puts the
// result into the output channel.
func (vdf *VDF) Execute(ctx context.Context) error {
	vdf.finished = false

	proof, err := ProveN(ctx, vdf.discriminant, vdf.input, vdf.difficulty, vdf.depth)
	if err != nil {
		return errors.Wrap(err, "execute")
	}

	vdf.output, err = proof.Bytes(vdf.discriminant.BitLen())
	if err != nil {
		return errors.Wrap(err, "execute")
	}

	select {
	case vdf.outputChan <- vdf.output:
	default:
	}

	vdf.finished = true
	return nil
}

// Verify runs the verification of generated proof
func (vdf *VDF) Verify(proof []byte) bool {
	return VerifyN(vdf.discriminant, vdf.input, proof, vdf.difficulty, vdf.depth)
}

// IsFinished returns whether the vdf execution is finished or not.
func (vdf *VDF) IsFinished() bool {
	return vdf.finished
}

// GetOutput returns the vdf output, which is nil if the vdf is not finished.
func (vdf *VDF) GetOutput() []byte {
	return vdf.output
}
