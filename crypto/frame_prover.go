package crypto

import (
	"context"
	"crypto"
)

type FrameProver interface {
	CreateGenesisFrame(
		filter []byte,
		seed []byte,
		difficulty uint32,
	) (*ClockFrame, error)
	ProveClockFrame(
		previousFrame *ClockFrame,
		timestamp int64,
		difficulty uint32,
	) (*ClockFrame, error)
	SignClockFrame(
		frame *ClockFrame,
		provingKey crypto.Signer,
	) error
	VerifyClockFrame(
		frame *ClockFrame,
	) error
	VerifyClockFrames(
		ctx context.Context,
		frames []*ClockFrame,
	) error
	CalculateChallengeProof(
		challenge []byte,
		difficulty uint32,
	) ([]byte, error)
	VerifyChallengeProof(
		challenge []byte,
		difficulty uint32,
		proof []byte,
	) bool
}

// ClockFrame is one link of a VDF clock. Output is the evaluation of the
// frame's challenge and Input is the Output of the frame before it.
type ClockFrame struct {
	Filter         []byte
	FrameNumber    uint64
	Timestamp      int64
	Difficulty     uint32
	ParentSelector []byte
	Input          []byte
	Output         []byte
	PublicKey      []byte
	Signature      []byte
}
