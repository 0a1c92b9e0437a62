package vdf

import (
	"context"
	"math/big"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"source.quilibrium.com/quilibrium/monorepo/vdf/config"
	"source.quilibrium.com/quilibrium/monorepo/vdf/pkg/core/iqc"
	nekrovdf "source.quilibrium.com/quilibrium/monorepo/vdf/pkg/vdf"
)

var (
	ErrIterationsExceeded = errors.New("iterations exceed configured maximum")
	ErrRecursionExceeded  = errors.New("recursion depth exceeds configured maximum")
)

type discriminantKey struct {
	bits int
	seed string
}

// Engine proves and verifies against discriminants derived from challenges,
// remembering recently derived discriminants. It is safe for concurrent use.
type Engine struct {
	config        *config.EngineConfig
	logger        *zap.Logger
	discriminants *lru.Cache[discriminantKey, *big.Int]
}

func NewEngine(cfg *config.EngineConfig, logger *zap.Logger) (*Engine, error) {
	if cfg == nil {
		cfg = config.DefaultEngineConfig()
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "new engine")
	}

	if logger == nil {
		logger = zap.NewNop()
	}

	cache, err := lru.New[discriminantKey, *big.Int](cfg.CacheSize)
	if err != nil {
		return nil, errors.Wrap(err, "new engine")
	}

	return &Engine{
		config:        cfg,
		logger:        logger,
		discriminants: cache,
	}, nil
}

// Discriminant returns the discriminant for seed at the configured size.
func (e *Engine) Discriminant(seed []byte) (*big.Int, error) {
	key := discriminantKey{bits: e.config.DiscriminantBits, seed: string(seed)}
	if d, ok := e.discriminants.Get(key); ok {
		return d, nil
	}

	d, err := iqc.CreateDiscriminant(
		seed,
		e.config.DiscriminantBits,
		e.config.DiscriminantAttempts,
	)
	if err != nil {
		return nil, errors.Wrap(err, "discriminant")
	}

	e.discriminants.Add(key, d)
	return d, nil
}

// CreateDiscriminant returns the big-endian magnitude of the discriminant for
// seed.
func (e *Engine) CreateDiscriminant(seed []byte) ([]byte, error) {
	d, err := e.Discriminant(seed)
	if err != nil {
		return nil, err
	}

	return iqc.DiscriminantBytes(d, e.config.DiscriminantBits), nil
}

func (e *Engine) checkBounds(T, depth uint64) error {
	if e.config.MaxIterations != 0 && T > e.config.MaxIterations {
		return errors.Wrapf(ErrIterationsExceeded, "%d > %d", T, e.config.MaxIterations)
	}

	if depth > e.config.MaxRecursion {
		return errors.Wrapf(ErrRecursionExceeded, "%d > %d", depth, e.config.MaxRecursion)
	}

	return nil
}

// ProveContext evaluates T squarings of x under the discriminant derived from
// challenge. Cancelling ctx aborts the evaluation.
func (e *Engine) ProveContext(
	ctx context.Context,
	challenge, x []byte,
	T uint64,
	depth uint64,
) ([]byte, error) {
	if err := e.checkBounds(T, depth); err != nil {
		return nil, errors.Wrap(err, "prove")
	}

	d, err := e.Discriminant(challenge)
	if err != nil {
		return nil, errors.Wrap(err, "prove")
	}

	e.logger.Debug(
		"proving",
		zap.Binary("challenge", challenge),
		zap.Uint64("iterations", T),
		zap.Uint64("depth", depth),
	)
	start := time.Now()

	proof, err := proveWithDiscriminant(ctx, d, x, T, depth)
	if err != nil {
		e.logger.Debug("proof aborted", zap.Error(err))
		return nil, err
	}

	e.logger.Debug(
		"proof complete",
		zap.Uint64("iterations", T),
		zap.Duration("duration", time.Since(start)),
	)

	return proof, nil
}

func (e *Engine) Prove(challenge, x []byte, T, depth uint64) ([]byte, error) {
	return e.ProveContext(context.Background(), challenge, x, T, depth)
}

// Verify checks proof against the discriminant derived from challenge.
func (e *Engine) Verify(challenge, x, proof []byte, T, depth uint64) bool {
	if e.checkBounds(T, depth) != nil {
		return false
	}

	d, err := e.Discriminant(challenge)
	if err != nil {
		return false
	}

	input, err := iqc.Deserialize(d, x)
	if err != nil {
		return false
	}

	return nekrovdf.VerifyN(d, input, proof, T, depth)
}

type VerifyRequest struct {
	Challenge  []byte
	Input      []byte
	Proof      []byte
	Iterations uint64
	Depth      uint64
}

// BatchVerify verifies requests concurrently, at most VerifyWorkers at a
// time. Requests not reached before ctx is cancelled report false.
func (e *Engine) BatchVerify(ctx context.Context, requests []VerifyRequest) []bool {
	results := make([]bool, len(requests))

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(e.config.VerifyWorkers)

	for i := range requests {
		i := i
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			r := requests[i]
			results[i] = e.Verify(r.Challenge, r.Input, r.Proof, r.Iterations, r.Depth)
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		e.logger.Debug("batch verification cancelled", zap.Error(err))
	}

	return results
}
