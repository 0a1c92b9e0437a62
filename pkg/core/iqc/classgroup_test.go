package iqc_test

import (
	"crypto/rand"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"source.quilibrium.com/quilibrium/monorepo/vdf/pkg/core/iqc"
)

func testDiscriminant(t testing.TB, bits int) *big.Int {
	d, err := iqc.CreateDiscriminant([]byte("class group"), bits, iqc.DefaultDiscriminantAttempts)
	require.NoError(t, err)
	return d
}

func randomForm(t testing.TB, d *big.Int) *iqc.Form {
	e, err := rand.Int(rand.Reader, new(big.Int).Lsh(big.NewInt(1), 128))
	require.NoError(t, err)
	return iqc.Generator(d).BigPow(e)
}

func TestIdentityAndGenerator(t *testing.T) {
	d := testDiscriminant(t, 512)

	id := iqc.Identity(d)
	require.True(t, id.IsValid(d))
	assert.True(t, id.IsReduced())
	assert.Equal(t, int64(1), id.A().Int64())
	assert.Equal(t, int64(1), id.B().Int64())

	g := iqc.Generator(d)
	require.True(t, g.IsValid(d))
	assert.True(t, g.IsReduced())

	assert.True(t, g.Compose(id).Equal(g))
	assert.True(t, id.Square().Equal(id))
	assert.True(t, g.Pow(0).Equal(id))
	assert.True(t, g.Pow(1).Equal(g))
}

func TestSquareMatchesCompose(t *testing.T) {
	for _, bits := range []int{256, 512, 1024} {
		d := testDiscriminant(t, bits)
		sq := iqc.NewSquarer(d)

		f := iqc.Generator(d)
		for i := 0; i < 200; i++ {
			s := sq.Square(f)
			c := f.Compose(f)

			require.True(t, s.IsValid(d), "bits %d step %d", bits, i)
			require.True(t, s.IsReduced(), "bits %d step %d", bits, i)
			require.True(t, s.Equal(c), "bits %d step %d", bits, i)
			f = s
		}
	}
}

func TestSquareRandomForms(t *testing.T) {
	d := testDiscriminant(t, 1024)
	for i := 0; i < 20; i++ {
		f := randomForm(t, d)
		require.True(t, f.IsValid(d))
		assert.True(t, f.Square().Equal(f.Compose(f)))
	}
}

func TestComposeCommutativeAssociative(t *testing.T) {
	d := testDiscriminant(t, 512)
	f, g, h := randomForm(t, d), randomForm(t, d), randomForm(t, d)

	assert.True(t, f.Compose(g).Equal(g.Compose(f)))
	assert.True(t, f.Compose(g).Compose(h).Equal(f.Compose(g.Compose(h))))
}

func TestInverse(t *testing.T) {
	d := testDiscriminant(t, 512)
	f := randomForm(t, d)

	inv := f.Inverse()
	require.True(t, inv.IsValid(d))
	assert.True(t, f.Compose(inv).Equal(iqc.Identity(d)))
	assert.True(t, f.BigPow(big.NewInt(-3)).Equal(f.Pow(3).Inverse()))
}

func TestPowExponentLaws(t *testing.T) {
	d := testDiscriminant(t, 512)
	f := randomForm(t, d)

	assert.True(t, f.Pow(5).Compose(f.Pow(7)).Equal(f.Pow(12)))
	assert.True(t, f.Pow(3).Pow(4).Equal(f.Pow(12)))

	// x^(2^10) through repeated squaring
	sq := iqc.NewSquarer(d)
	x := f
	for i := 0; i < 10; i++ {
		x = sq.Square(x)
	}
	assert.True(t, x.Equal(f.Pow(1024)))
}

func TestReduce(t *testing.T) {
	d := testDiscriminant(t, 512)
	f := randomForm(t, d)

	// (a, b, c) -> (c, -b, a) is an equivalent form
	swapped := iqc.NewForm(f.C(), new(big.Int).Neg(f.B()), f.A())
	require.True(t, swapped.IsValid(d))
	assert.True(t, swapped.Reduce().Equal(f))

	// shifting b by 2a changes the representative but not the class
	a := f.A()
	b := new(big.Int).Add(f.B(), new(big.Int).Lsh(a, 3))
	shifted := iqc.NewFormFromAB(a, b, d)
	require.True(t, shifted.IsValid(d))
	assert.False(t, shifted.IsNormalized())
	assert.True(t, shifted.Reduce().Equal(f))
}

func TestIsValid(t *testing.T) {
	d := testDiscriminant(t, 512)
	f := randomForm(t, d)

	assert.False(t, iqc.NewForm(f.A(), new(big.Int).Add(f.B(), big.NewInt(2)), f.C()).IsValid(d))
	assert.False(t, iqc.NewForm(new(big.Int).Neg(f.A()), f.B(), new(big.Int).Neg(f.C())).IsValid(d))

	var nilForm *iqc.Form
	assert.False(t, nilForm.IsValid(d))
}

func BenchmarkSquare1024(b *testing.B) {
	d := testDiscriminant(b, 1024)
	sq := iqc.NewSquarer(d)
	f := iqc.Generator(d)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		f = sq.Square(f)
	}
}
