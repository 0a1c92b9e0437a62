package crypto

import (
	"bytes"
	"context"
	"crypto"
	"crypto/rand"
	"encoding/binary"
	"math/big"

	"github.com/cloudflare/circl/sign/ed448"
	"github.com/iden3/go-iden3-crypto/poseidon"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/crypto/sha3"
	"golang.org/x/sync/errgroup"
	"source.quilibrium.com/quilibrium/monorepo/vdf"
)

// OutputSize is the length of a frame output, the solution followed by its
// proof.
const OutputSize = 2 * vdf.FormSize

type WesolowskiFrameProver struct {
	logger *zap.Logger
}

var _ FrameProver = (*WesolowskiFrameProver)(nil)

func NewWesolowskiFrameProver(logger *zap.Logger) *WesolowskiFrameProver {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &WesolowskiFrameProver{
		logger,
	}
}

func frameChallenge(
	filter []byte,
	frameNumber uint64,
	difficulty uint32,
	previousOutput []byte,
) [32]byte {
	input := []byte{}
	input = append(input, filter...)
	input = binary.BigEndian.AppendUint64(input, frameNumber)
	input = binary.BigEndian.AppendUint32(input, difficulty)
	input = append(input, previousOutput...)

	return sha3.Sum256(input)
}

func parentSelector(previousOutput []byte) ([]byte, error) {
	parent, err := poseidon.HashBytes(previousOutput)
	if err != nil {
		return nil, err
	}

	return parent.FillBytes(make([]byte, 32)), nil
}

func signingPayload(challenge [32]byte, frame *ClockFrame) []byte {
	payload := append([]byte{}, challenge[:]...)
	payload = binary.BigEndian.AppendUint64(payload, uint64(frame.Timestamp))
	return append(payload, frame.Output...)
}

func (w *WesolowskiFrameProver) CreateGenesisFrame(
	filter []byte,
	seed []byte,
	difficulty uint32,
) (*ClockFrame, error) {
	if difficulty == 0 {
		return nil, errors.Wrap(
			errors.New("invalid difficulty"),
			"create genesis frame",
		)
	}

	w.logger.Debug("proving genesis frame", zap.Uint32("difficulty", difficulty))
	b := sha3.Sum256(seed)
	o := vdf.WesolowskiSolve(b, difficulty)
	inputMessage := o[:]

	b = frameChallenge(filter, 0, difficulty, inputMessage)
	o = vdf.WesolowskiSolve(b, difficulty)

	frame := &ClockFrame{
		Filter:         filter,
		FrameNumber:    0,
		Timestamp:      0,
		Difficulty:     difficulty,
		Input:          inputMessage,
		Output:         o[:],
		ParentSelector: make([]byte, 32),
	}

	return frame, nil
}

func (w *WesolowskiFrameProver) ProveClockFrame(
	previousFrame *ClockFrame,
	timestamp int64,
	difficulty uint32,
) (*ClockFrame, error) {
	if previousFrame == nil || len(previousFrame.Output) != OutputSize {
		return nil, errors.Wrap(
			errors.New("invalid previous frame"),
			"prove clock frame",
		)
	}

	if difficulty == 0 {
		return nil, errors.Wrap(
			errors.New("invalid difficulty"),
			"prove clock frame",
		)
	}

	b := frameChallenge(
		previousFrame.Filter,
		previousFrame.FrameNumber+1,
		difficulty,
		previousFrame.Output,
	)
	o := vdf.WesolowskiSolve(b, difficulty)

	parent, err := parentSelector(previousFrame.Output)
	if err != nil {
		return nil, errors.Wrap(err, "prove clock frame")
	}

	frame := &ClockFrame{
		Filter:         previousFrame.Filter,
		FrameNumber:    previousFrame.FrameNumber + 1,
		Timestamp:      timestamp,
		Difficulty:     difficulty,
		ParentSelector: parent,
		Input:          append([]byte{}, previousFrame.Output...),
		Output:         o[:],
	}

	w.logger.Debug(
		"proved clock frame",
		zap.Uint64("frame_number", frame.FrameNumber),
		zap.Uint32("difficulty", difficulty),
	)

	return frame, nil
}

// SignClockFrame attaches an ed448 signature over the frame's challenge,
// timestamp and output.
func (w *WesolowskiFrameProver) SignClockFrame(
	frame *ClockFrame,
	provingKey crypto.Signer,
) error {
	ed448PublicKey, ok := provingKey.Public().(ed448.PublicKey)
	if !ok {
		return errors.Wrap(
			errors.New("unsupported proving key"),
			"sign clock frame",
		)
	}

	b := frameChallenge(
		frame.Filter,
		frame.FrameNumber,
		frame.Difficulty,
		frame.Input,
	)

	// TODO: make this configurable for signing algorithms that allow
	// user-supplied hash functions
	signature, err := provingKey.Sign(
		rand.Reader,
		signingPayload(b, frame),
		crypto.Hash(0),
	)
	if err != nil {
		return errors.Wrap(err, "sign clock frame")
	}

	frame.PublicKey = []byte(ed448PublicKey)
	frame.Signature = signature
	return nil
}

func (w *WesolowskiFrameProver) VerifyClockFrame(
	frame *ClockFrame,
) error {
	if frame == nil {
		return errors.Wrap(errors.New("missing frame"), "verify clock frame")
	}

	if len(frame.Input) != OutputSize {
		return errors.Wrap(
			errors.New("invalid input"),
			"verify clock frame",
		)
	}

	if len(frame.Output) != OutputSize {
		return errors.Wrap(
			errors.New("invalid output"),
			"verify clock frame",
		)
	}

	b := frameChallenge(
		frame.Filter,
		frame.FrameNumber,
		frame.Difficulty,
		frame.Input,
	)

	if frame.PublicKey != nil || frame.Signature != nil {
		if len(frame.PublicKey) != ed448.PublicKeySize ||
			len(frame.Signature) != ed448.SignatureSize ||
			!ed448.Verify(
				frame.PublicKey,
				signingPayload(b, frame),
				frame.Signature,
				"",
			) {
			return errors.Wrap(
				errors.New("invalid signature for issuer"),
				"verify clock frame",
			)
		}
	}

	if !vdf.WesolowskiVerify(b, frame.Difficulty, [OutputSize]byte(frame.Output)) {
		w.logger.Error("invalid proof",
			zap.Binary("filter", frame.Filter),
			zap.Uint64("frame_number", frame.FrameNumber),
			zap.Uint32("difficulty", frame.Difficulty),
			zap.Binary("frame_input", frame.Input),
			zap.Binary("frame_output", frame.Output),
		)
		return errors.Wrap(
			errors.New("invalid proof"),
			"verify clock frame",
		)
	}

	if frame.FrameNumber == 0 {
		if !bytes.Equal(frame.ParentSelector, make([]byte, 32)) {
			return errors.Wrap(
				errors.New("genesis frame has parent"),
				"verify clock frame",
			)
		}

		return nil
	}

	parent, err := parentSelector(frame.Input)
	if err != nil {
		return errors.Wrap(err, "verify clock frame")
	}

	selector := new(big.Int).SetBytes(frame.ParentSelector)
	if new(big.Int).SetBytes(parent).Cmp(selector) != 0 {
		return errors.Wrap(
			errors.New("selector did not match input"),
			"verify clock frame",
		)
	}

	return nil
}

// VerifyClockFrames checks that frames form an unbroken chain and verifies
// every frame's proof concurrently.
func (w *WesolowskiFrameProver) VerifyClockFrames(
	ctx context.Context,
	frames []*ClockFrame,
) error {
	for i := 1; i < len(frames); i++ {
		prev, next := frames[i-1], frames[i]
		if prev == nil || next == nil {
			return errors.Wrap(errors.New("missing frame"), "verify clock frames")
		}

		if next.FrameNumber != prev.FrameNumber+1 ||
			!bytes.Equal(next.Filter, prev.Filter) ||
			!bytes.Equal(next.Input, prev.Output) {
			return errors.Wrapf(
				errors.New("frame does not extend previous frame"),
				"verify clock frames: frame %d",
				next.FrameNumber,
			)
		}
	}

	eg, ctx := errgroup.WithContext(ctx)
	for _, frame := range frames {
		frame := frame
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			return w.VerifyClockFrame(frame)
		})
	}

	return errors.Wrap(eg.Wait(), "verify clock frames")
}

func (w *WesolowskiFrameProver) CalculateChallengeProof(
	challenge []byte,
	difficulty uint32,
) ([]byte, error) {
	if difficulty == 0 {
		return nil, errors.Wrap(
			errors.New("invalid difficulty"),
			"calculate challenge proof",
		)
	}

	b := sha3.Sum256(challenge)
	o := vdf.WesolowskiSolve(b, difficulty)

	output := make([]byte, OutputSize)
	copy(output[:], o[:])

	return output, nil
}

func (w *WesolowskiFrameProver) VerifyChallengeProof(
	challenge []byte,
	difficulty uint32,
	proof []byte,
) bool {
	if len(proof) != OutputSize {
		return false
	}

	b := sha3.Sum256(challenge)

	check := vdf.WesolowskiVerify(b, difficulty, [OutputSize]byte(proof))
	return check
}
