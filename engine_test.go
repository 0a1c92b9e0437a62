package vdf_test

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"source.quilibrium.com/quilibrium/monorepo/vdf"
	"source.quilibrium.com/quilibrium/monorepo/vdf/config"
)

func testEngine(t testing.TB) *vdf.Engine {
	cfg := config.DefaultEngineConfig()
	cfg.DiscriminantBits = 512
	cfg.MaxIterations = 10000
	cfg.MaxRecursion = 4
	cfg.CacheSize = 4

	e, err := vdf.NewEngine(cfg, zap.NewNop())
	require.NoError(t, err)
	return e
}

func TestNewEngine(t *testing.T) {
	e, err := vdf.NewEngine(nil, nil)
	require.NoError(t, err)
	require.NotNil(t, e)

	cfg := config.DefaultEngineConfig()
	cfg.VerifyWorkers = 0
	_, err = vdf.NewEngine(cfg, nil)
	assert.Error(t, err)
}

func TestEngineDiscriminantCache(t *testing.T) {
	e := testEngine(t)
	challenge := getChallenge("TestEngineDiscriminantCache")

	d1, err := e.Discriminant(challenge[:])
	require.NoError(t, err)
	d2, err := e.Discriminant(challenge[:])
	require.NoError(t, err)
	assert.Same(t, d1, d2)

	disc, err := e.CreateDiscriminant(challenge[:])
	require.NoError(t, err)
	expected, err := vdf.CreateDiscriminant(challenge[:], 512)
	require.NoError(t, err)
	assert.Equal(t, expected, disc)
}

func TestEngineProveVerify(t *testing.T) {
	e := testEngine(t)
	challenge := getChallenge("TestEngineProveVerify")
	x := vdf.DefaultElement()

	for depth := uint64(0); depth <= 2; depth++ {
		proof, err := e.Prove(challenge[:], x, 500, depth)
		require.NoError(t, err)
		assert.True(t, e.Verify(challenge[:], x, proof, 500, depth))
		assert.False(t, e.Verify(challenge[:], x, proof, 501, depth))

		disc, err := e.CreateDiscriminant(challenge[:])
		require.NoError(t, err)
		assert.True(t, vdf.VerifyNWesolowski(disc, x, proof, 500, 512, depth))
	}
}

func TestEngineBounds(t *testing.T) {
	e := testEngine(t)
	challenge := getChallenge("TestEngineBounds")
	x := vdf.DefaultElement()

	_, err := e.Prove(challenge[:], x, 10001, 0)
	assert.True(t, errors.Is(err, vdf.ErrIterationsExceeded))

	_, err = e.Prove(challenge[:], x, 100, 5)
	assert.True(t, errors.Is(err, vdf.ErrRecursionExceeded))

	proof, err := vdf.ProveNWesolowski(challenge[:], x, 512, 100, 5)
	require.NoError(t, err)
	assert.False(t, e.Verify(challenge[:], x, proof, 100, 5))
}

func TestEngineProveCancelled(t *testing.T) {
	e := testEngine(t)
	challenge := getChallenge("TestEngineProveCancelled")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := e.ProveContext(ctx, challenge[:], vdf.DefaultElement(), 5000, 0)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestEngineBatchVerify(t *testing.T) {
	e := testEngine(t)
	x := vdf.DefaultElement()

	requests := []vdf.VerifyRequest{}
	for i, seed := range []string{"a", "b", "c", "d", "e", "f"} {
		challenge := getChallenge(seed)
		depth := uint64(i % 3)
		proof, err := e.Prove(challenge[:], x, 200, depth)
		require.NoError(t, err)

		requests = append(requests, vdf.VerifyRequest{
			Challenge:  challenge[:],
			Input:      x,
			Proof:      proof,
			Iterations: 200,
			Depth:      depth,
		})
	}

	requests[1].Iterations = 199
	requests[4].Proof = requests[4].Proof[1:]

	results := e.BatchVerify(context.Background(), requests)
	assert.Equal(t, []bool{true, false, true, true, false, true}, results)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	results = e.BatchVerify(ctx, requests)
	assert.Equal(t, make([]bool, len(requests)), results)
}
