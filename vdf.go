package vdf

import (
	"context"
	"math/big"

	"github.com/pkg/errors"
	"source.quilibrium.com/quilibrium/monorepo/vdf/pkg/core/iqc"
	nekrovdf "source.quilibrium.com/quilibrium/monorepo/vdf/pkg/vdf"
)

// FormSize is the length of an encoded group element.
const FormSize = iqc.FormSize

// Discriminant size used by WesolowskiSolve and WesolowskiVerify.
const intSizeBits = 1024

// DefaultElement returns the encoding of the (2, 1) form, the conventional
// starting point of an evaluation.
func DefaultElement() []byte {
	x := make([]byte, FormSize)
	x[0] = 0x08
	return x
}

// CreateDiscriminant derives the discriminant of the given bit length from
// seed and returns its big-endian magnitude of bits/8 bytes.
func CreateDiscriminant(seed []byte, bits int) ([]byte, error) {
	d, err := iqc.CreateDiscriminant(seed, bits, iqc.DefaultDiscriminantAttempts)
	if err != nil {
		return nil, err
	}

	return iqc.DiscriminantBytes(d, bits), nil
}

// Prove derives the discriminant from challenge and evaluates T squarings of
// x, returning y || proof.
func Prove(challenge, x []byte, bits int, T uint64) ([]byte, error) {
	return ProveNWesolowski(challenge, x, bits, T, 0)
}

// ProveNWesolowski is Prove with depth intermediate segment proofs appended.
func ProveNWesolowski(
	challenge, x []byte,
	bits int,
	T uint64,
	depth uint64,
) ([]byte, error) {
	return proveContext(
		context.Background(),
		challenge,
		x,
		bits,
		T,
		depth,
		iqc.DefaultDiscriminantAttempts,
	)
}

func proveContext(
	ctx context.Context,
	challenge, x []byte,
	bits int,
	T uint64,
	depth uint64,
	attempts int,
) ([]byte, error) {
	d, err := iqc.CreateDiscriminant(challenge, bits, attempts)
	if err != nil {
		return nil, errors.Wrap(err, "prove")
	}

	return proveWithDiscriminant(ctx, d, x, T, depth)
}

func proveWithDiscriminant(
	ctx context.Context,
	d *big.Int,
	x []byte,
	T uint64,
	depth uint64,
) ([]byte, error) {
	input, err := iqc.Deserialize(d, x)
	if err != nil {
		return nil, errors.Wrap(err, "prove")
	}

	proof, err := nekrovdf.ProveN(ctx, d, input, T, depth)
	if err != nil {
		return nil, err
	}

	return proof.Bytes(d.BitLen())
}

func discriminantFromBytes(disc []byte, bits int) (*big.Int, bool) {
	if bits <= 0 || bits%8 != 0 || len(disc)*8 != bits {
		return nil, false
	}

	d, err := iqc.DiscriminantFromBytes(disc)
	if err != nil {
		return nil, false
	}

	return d, true
}

// VerifyNWesolowski checks a proof produced by Prove or ProveNWesolowski
// against the discriminant bytes returned by CreateDiscriminant. Malformed
// inputs of any kind yield false.
func VerifyNWesolowski(
	disc, x, proof []byte,
	T uint64,
	bits int,
	depth uint64,
) (valid bool) {
	defer func() {
		if r := recover(); r != nil {
			iqc.PanicOnInvariantViolation(r)
			valid = false
		}
	}()

	d, ok := discriminantFromBytes(disc, bits)
	if !ok {
		return false
	}

	input, err := iqc.Deserialize(d, x)
	if err != nil {
		return false
	}

	return nekrovdf.VerifyN(d, input, proof, T, depth)
}

// CreateDiscriminantAndVerifyNWesolowski derives the discriminant from seed
// before verifying.
func CreateDiscriminantAndVerifyNWesolowski(
	seed []byte,
	bits int,
	x, proof []byte,
	T uint64,
	depth uint64,
) bool {
	disc, err := CreateDiscriminant(seed, bits)
	if err != nil {
		return false
	}

	return VerifyNWesolowski(disc, x, proof, T, bits, depth)
}

// VerifyWesolowski checks a single level proof given y and the witness
// separately.
func VerifyWesolowski(disc, x, y, witness []byte, T uint64, bits int) bool {
	if len(y) != FormSize || len(witness) != FormSize {
		return false
	}

	proof := make([]byte, 0, 2*FormSize)
	proof = append(proof, y...)
	proof = append(proof, witness...)
	return VerifyNWesolowski(disc, x, proof, T, bits, 0)
}

// VerifyNWesolowskiWithB checks a proof whose output is omitted, given the
// final challenge prime B as big-endian bytes. On success it returns the
// encoded output.
func VerifyNWesolowskiWithB(
	disc, b, x, proof []byte,
	T uint64,
	bits int,
	depth uint64,
) (valid bool, y []byte) {
	defer func() {
		if r := recover(); r != nil {
			iqc.PanicOnInvariantViolation(r)
			valid, y = false, nil
		}
	}()

	d, ok := discriminantFromBytes(disc, bits)
	if !ok || len(b) != nekrovdf.BBytes {
		return false, nil
	}

	input, err := iqc.Deserialize(d, x)
	if err != nil {
		return false, nil
	}

	y, ok = nekrovdf.VerifyNWithB(
		d,
		new(big.Int).SetBytes(b),
		input,
		proof,
		T,
		depth,
	)
	return ok, y
}

// GetBFromNWesolowski returns the final challenge prime of a proof as
// big-endian bytes.
func GetBFromNWesolowski(
	disc, x, proof []byte,
	T uint64,
	bits int,
	depth uint64,
) ([]byte, error) {
	d, ok := discriminantFromBytes(disc, bits)
	if !ok {
		return nil, errors.Wrap(iqc.ErrInvalidDiscriminant, "get b")
	}

	input, err := iqc.Deserialize(d, x)
	if err != nil {
		return nil, errors.Wrap(err, "get b")
	}

	b, err := nekrovdf.GetBFromProof(d, input, proof, T, depth)
	if err != nil {
		return nil, err
	}

	out := make([]byte, nekrovdf.BBytes)
	b.FillBytes(out)
	return out, nil
}

// WesolowskiSolve Solve and prove with the Wesolowski VDF using the given parameters.
// Outputs the concatenated solution and proof (in this order). Panics if
// difficulty is zero.
func WesolowskiSolve(challenge [32]byte, difficulty uint32) [2 * FormSize]byte {
	d, err := iqc.CreateDiscriminant(
		challenge[:],
		intSizeBits,
		iqc.DefaultDiscriminantAttempts,
	)
	if err != nil {
		panic(err)
	}

	v := nekrovdf.New(d, uint64(difficulty), 0)
	if err := v.Execute(context.Background()); err != nil {
		panic(err)
	}

	return [2 * FormSize]byte(<-v.GetOutputChannel())
}

// WesolowskiVerify Verify with the Wesolowski VDF using the given parameters.
// `allegedSolution` is the output of `WesolowskiSolve`.
func WesolowskiVerify(
	challenge [32]byte,
	difficulty uint32,
	allegedSolution [2 * FormSize]byte,
) bool {
	d, err := iqc.CreateDiscriminant(
		challenge[:],
		intSizeBits,
		iqc.DefaultDiscriminantAttempts,
	)
	if err != nil {
		return false
	}

	return nekrovdf.New(d, uint64(difficulty), 0).Verify(allegedSolution[:])
}
