package config

import (
	"github.com/pkg/errors"
)

type EngineConfig struct {
	// Bit length of discriminants derived from challenges. Must be a multiple
	// of 8 between 512 and 1024.
	DiscriminantBits int `yaml:"discriminantBits"`
	// Number of candidates tested before discriminant derivation gives up
	DiscriminantAttempts int `yaml:"discriminantAttempts"`
	// Number of derived discriminants kept in memory
	CacheSize int `yaml:"cacheSize"`
	// Upper bound on the iterations of a single proof, zero for no bound
	MaxIterations uint64 `yaml:"maxIterations"`
	// Upper bound on the recursion depth of proofs
	MaxRecursion uint64 `yaml:"maxRecursion"`
	// Number of proofs verified concurrently by batch verification
	VerifyWorkers int `yaml:"verifyWorkers"`
}

func DefaultEngineConfig() *EngineConfig {
	return &EngineConfig{
		DiscriminantBits:     1024,
		DiscriminantAttempts: 1 << 16,
		CacheSize:            128,
		MaxIterations:        0,
		MaxRecursion:         64,
		VerifyWorkers:        4,
	}
}

func (e *EngineConfig) Validate() error {
	if e.DiscriminantBits < 512 ||
		e.DiscriminantBits > 1024 ||
		e.DiscriminantBits%8 != 0 {
		return errors.Errorf(
			"discriminant bits must be a multiple of 8 in [512, 1024], got %d",
			e.DiscriminantBits,
		)
	}

	if e.DiscriminantAttempts <= 0 {
		return errors.New("discriminant attempts must be positive")
	}

	if e.CacheSize <= 0 {
		return errors.New("cache size must be positive")
	}

	if e.MaxRecursion > 255 {
		return errors.New("max recursion must be at most 255")
	}

	if e.VerifyWorkers <= 0 {
		return errors.New("verify workers must be positive")
	}

	return nil
}
