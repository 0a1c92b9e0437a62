package iqc_test

import (
	"encoding/hex"
	"math/big"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"source.quilibrium.com/quilibrium/monorepo/vdf/pkg/core/iqc"
)

func mustHex(t testing.TB, s string) []byte {
	b, err := hex.DecodeString(s)
	require.NoError(t, err)
	return b
}

func TestCreateDiscriminantVectors(t *testing.T) {
	vectors := []struct {
		seed string
		disc string
	}{
		{
			"6c3b9aa767f785b537c0",
			"9a8eaf9c52d9a5f1db648cdf7bcd04b35cb1ac4f421c978fa61fe1344b97d4199dbff700d24e7cfc0b785e4b8b8023dc49f0e90227f74f54234032ac3381879f",
		},
		{
			"b10da48cea4c09676b8e",
			"b193cdb02f1c2615a257b98933ee0d24157ac5f8c46774d5d635022e6e6bd3f7372898066c2a40fa211d1df8c45cb95c02e36ef878bc67325473d9c0bb34b047",
		},
		{
			"c51b8a31c98b9fe13065",
			"bb5bd19ae50efe98b5ac56c69453a95e92dc16bb4b2824e73b39b9db0a077fa33fc2e775958af14f675a071bf53f1c22f90ccbd456e2291276951830dba9dcaf",
		},
		{
			"5de9bc1bb4cb7a9f9cf9",
			"a1e93b8f2e9b0fd3b1325fbe40601f55e2afbdc6161409c0aff8737b7213d7d71cab21ffc83a0b6d5bdeee2fdcbbb34fbc8fc0b439915075afa9ffac8bb1b337",
		},
		{
			"22cfaefc92e4edb9b0ae",
			"f2a10f70148fb30e4a16c4eda44cc0f9917cb9c2d460926d59a408318472e2cfd597193aa58e1fdccc6ae6a4d85bc9b27f77567ebe94fcedbf530a60ff709fd7",
		},
	}

	for _, v := range vectors {
		d, err := iqc.CreateDiscriminant(
			mustHex(t, v.seed),
			512,
			iqc.DefaultDiscriminantAttempts,
		)
		require.NoError(t, err)
		assert.Equal(t, v.disc, hex.EncodeToString(iqc.DiscriminantBytes(d, 512)))
	}
}

func TestCreateDiscriminantProperties(t *testing.T) {
	for _, bits := range []int{256, 512, 1024} {
		d, err := iqc.CreateDiscriminant([]byte("discriminant"), bits, iqc.DefaultDiscriminantAttempts)
		require.NoError(t, err)

		assert.Equal(t, -1, d.Sign())
		assert.Equal(t, bits, d.BitLen())
		assert.Equal(t, int64(1), new(big.Int).Mod(d, big.NewInt(8)).Int64())
		assert.True(t, iqc.IsProbablePrime(new(big.Int).Neg(d)))
	}
}

func TestCreateDiscriminantDeterministic(t *testing.T) {
	seed := []byte{0xff, 0xff, 0xff}
	a, err := iqc.CreateDiscriminant(seed, 512, iqc.DefaultDiscriminantAttempts)
	require.NoError(t, err)
	b, err := iqc.CreateDiscriminant(seed, 512, iqc.DefaultDiscriminantAttempts)
	require.NoError(t, err)
	assert.Equal(t, 0, a.Cmp(b))

	// the caller's seed is left untouched
	assert.Equal(t, []byte{0xff, 0xff, 0xff}, seed)
}

func TestCreateDiscriminantEmptySeed(t *testing.T) {
	// an empty counter never advances, so every attempt sees one candidate
	d, err := iqc.CreateDiscriminant(nil, 512, 64)
	if err != nil {
		assert.True(t, errors.Is(err, iqc.ErrDiscriminantExhausted))
		return
	}
	assert.Equal(t, 512, d.BitLen())
}

func TestCreateDiscriminantExhausted(t *testing.T) {
	_, err := iqc.CreateDiscriminant([]byte{0x01}, 512, 0)
	require.Error(t, err)
	assert.True(t, errors.Is(err, iqc.ErrDiscriminantExhausted))
}

func TestCreateDiscriminantInvalidBits(t *testing.T) {
	for _, bits := range []int{0, -8, 13, iqc.MaxDiscriminantBits + 8} {
		_, err := iqc.CreateDiscriminant([]byte{0x01}, bits, 10)
		assert.True(t, errors.Is(err, iqc.ErrInvalidDiscriminant), "bits %d", bits)
	}
}

func TestDiscriminantBytesRoundTrip(t *testing.T) {
	d, err := iqc.CreateDiscriminant([]byte{0x02}, 512, iqc.DefaultDiscriminantAttempts)
	require.NoError(t, err)

	buf := iqc.DiscriminantBytes(d, 512)
	assert.Len(t, buf, 64)

	back, err := iqc.DiscriminantFromBytes(buf)
	require.NoError(t, err)
	assert.Equal(t, 0, d.Cmp(back))

	_, err = iqc.DiscriminantFromBytes(nil)
	assert.Error(t, err)

	// |D| = 6 gives D == 2 (mod 4)
	_, err = iqc.DiscriminantFromBytes([]byte{0x06})
	assert.Error(t, err)
}

func TestHashPrime(t *testing.T) {
	p, err := iqc.HashPrime([]byte("hash prime"), 264, []int{263}, iqc.DefaultHashPrimeAttempts)
	require.NoError(t, err)
	assert.Equal(t, 264, p.BitLen())
	assert.True(t, iqc.IsProbablePrime(p))

	q, err := iqc.HashPrime([]byte("hash prime"), 264, []int{263}, iqc.DefaultHashPrimeAttempts)
	require.NoError(t, err)
	assert.Equal(t, 0, p.Cmp(q))

	_, err = iqc.HashPrime([]byte("hash prime"), 264, []int{263}, 0)
	assert.True(t, errors.Is(err, iqc.ErrHashPrimeExhausted))

	_, err = iqc.HashPrime([]byte("hash prime"), 263, []int{262}, 10)
	assert.Error(t, err)
}

func TestIsProbablePrime(t *testing.T) {
	assert.False(t, iqc.IsProbablePrime(big.NewInt(0)))
	assert.False(t, iqc.IsProbablePrime(big.NewInt(-7)))
	assert.False(t, iqc.IsProbablePrime(big.NewInt(1)))
	assert.True(t, iqc.IsProbablePrime(big.NewInt(2)))
	assert.True(t, iqc.IsProbablePrime(big.NewInt(65537)))
	// Carmichael number
	assert.False(t, iqc.IsProbablePrime(big.NewInt(561)))
}
