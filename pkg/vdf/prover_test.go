package vdf

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/sha3"
	"source.quilibrium.com/quilibrium/monorepo/vdf/pkg/core/iqc"
)

func testDiscriminant(t testing.TB) *big.Int {
	return testDiscriminantBits(t, 512)
}

func testDiscriminantBits(t testing.TB, bits int) *big.Int {
	seed := sha3.Sum256([]byte("pkg/vdf"))
	d, err := iqc.CreateDiscriminant(seed[:], bits, iqc.DefaultDiscriminantAttempts)
	require.NoError(t, err)
	return d
}

func proveBytes(t testing.TB, d *big.Int, x *iqc.Form, T, depth uint64) []byte {
	proof, err := ProveN(context.Background(), d, x, T, depth)
	require.NoError(t, err)

	blob, err := proof.Bytes(d.BitLen())
	require.NoError(t, err)
	require.Len(t, blob, ProofSize(int(depth)))
	return blob
}

func TestProveVerify(t *testing.T) {
	d := testDiscriminant(t)
	x := DefaultElement(d)

	for _, T := range []uint64{1, 2, 3, 100, 231, 1000} {
		proof, err := Prove(context.Background(), d, x, T)
		require.NoError(t, err)

		assert.Equal(t, uint8(0), proof.WitnessType)
		assert.True(t, proof.NormalizedToIdentity)
		assert.Empty(t, proof.Segments)
		assert.True(t, proof.Output.Equal(x.BigPow(new(big.Int).Lsh(big.NewInt(1), uint(T)))))
		assert.True(t, VerifyProof(d, x, proof, T), "T=%d", T)

		blob, err := proof.Bytes(d.BitLen())
		require.NoError(t, err)
		assert.True(t, VerifyN(d, x, blob, T, 0), "T=%d", T)
	}
}

func TestProveNVerify(t *testing.T) {
	d := testDiscriminant(t)
	x := DefaultElement(d)

	cases := []struct{ T, depth uint64 }{
		{2, 1},
		{10, 1},
		{101, 2},
		{500, 3},
		{1000, 5},
	}

	for _, c := range cases {
		proof, err := ProveN(context.Background(), d, x, c.T, c.depth)
		require.NoError(t, err)
		require.Len(t, proof.Segments, int(c.depth))
		assert.Equal(t, uint8(c.depth), proof.WitnessType)

		chunk := c.T / (c.depth + 1)
		for _, s := range proof.Segments {
			assert.Equal(t, chunk, s.Iterations)
		}

		blob, err := proof.Bytes(d.BitLen())
		require.NoError(t, err)
		assert.True(t, VerifyN(d, x, blob, c.T, c.depth), "T=%d depth=%d", c.T, c.depth)

		// the same output as a single level proof
		single, err := Prove(context.Background(), d, x, c.T)
		require.NoError(t, err)
		assert.True(t, single.Output.Equal(proof.Output))
	}
}

func TestProveFromArbitraryElement(t *testing.T) {
	d := testDiscriminant(t)
	e, err := rand.Int(rand.Reader, new(big.Int).Lsh(big.NewInt(1), 64))
	require.NoError(t, err)
	x := DefaultElement(d).BigPow(e)

	proof, err := ProveN(context.Background(), d, x, 300, 2)
	require.NoError(t, err)
	assert.False(t, proof.NormalizedToIdentity)

	blob, err := proof.Bytes(d.BitLen())
	require.NoError(t, err)
	assert.True(t, VerifyN(d, x, blob, 300, 2))
	assert.False(t, VerifyN(d, DefaultElement(d), blob, 300, 2))
}

func TestProveErrors(t *testing.T) {
	d := testDiscriminant(t)
	x := DefaultElement(d)
	ctx := context.Background()

	_, err := Prove(ctx, d, x, 0)
	assert.True(t, errors.Is(err, ErrZeroIterations))

	_, err = ProveN(ctx, d, x, 3, 3)
	assert.True(t, errors.Is(err, ErrInsufficientIterations))

	_, err = ProveN(ctx, d, x, 1000, MaxDepth+1)
	assert.True(t, errors.Is(err, ErrDepthTooLarge))

	bad := iqc.NewForm(big.NewInt(2), big.NewInt(1), big.NewInt(1))
	_, err = Prove(ctx, d, bad, 10)
	assert.True(t, errors.Is(err, ErrInvalidElement))

	_, err = Prove(ctx, d, nil, 10)
	assert.True(t, errors.Is(err, ErrInvalidElement))

	small := testDiscriminantBits(t, 256)
	_, err = Prove(ctx, small, DefaultElement(small), 10)
	assert.True(t, errors.Is(err, ErrDiscriminantSize))

	large := testDiscriminantBits(t, 1032)
	_, err = Prove(ctx, large, DefaultElement(large), 10)
	assert.True(t, errors.Is(err, ErrDiscriminantSize))

	_, err = Prove(ctx, big.NewInt(7), x, 10)
	assert.True(t, errors.Is(err, iqc.ErrInvalidDiscriminant))
}

func TestProveCancelled(t *testing.T) {
	d := testDiscriminant(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Prove(ctx, d, DefaultElement(d), 1000000)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestExecute(t *testing.T) {
	d := testDiscriminant(t)
	v := New(d, 200, 1)
	assert.False(t, v.IsFinished())
	assert.Nil(t, v.GetOutput())

	require.NoError(t, v.Execute(context.Background()))
	assert.True(t, v.IsFinished())

	out := <-v.GetOutputChannel()
	assert.Equal(t, v.GetOutput(), out)
	assert.True(t, v.Verify(out))

	other := New(d, 201, 1)
	assert.False(t, other.Verify(out))
}

func BenchmarkProve512(b *testing.B) {
	d := testDiscriminant(b)
	x := DefaultElement(d)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, err := Prove(context.Background(), d, x, 1000)
		require.NoError(b, err)
	}
}

func BenchmarkProve1024(b *testing.B) {
	d := testDiscriminantBits(b, 1024)
	x := DefaultElement(d)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, err := Prove(context.Background(), d, x, 1000)
		require.NoError(b, err)
	}
}

// Prove time grows linearly with the iteration count.
func BenchmarkProveScaling(b *testing.B) {
	d := testDiscriminant(b)
	x := DefaultElement(d)

	for _, T := range []uint64{1000, 10000, 100000} {
		b.Run(fmt.Sprint(T), func(b *testing.B) {
			for i := 0; i < b.N; i++ {
				_, err := Prove(context.Background(), d, x, T)
				require.NoError(b, err)
			}
		})
	}
}
