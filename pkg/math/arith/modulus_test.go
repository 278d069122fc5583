package arith

import (
	"io"
	mrand "math/rand"
	"testing"

	"github.com/cronokirby/saferith"
	"github.com/gargos-crypto/gargos/pkg/math/sample"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mersennePair returns 2¹²⁷−1 and 2¹⁰⁷−1, both prime.
func mersennePair(t require.TestingT) (*saferith.Nat, *saferith.Nat) {
	p, err := new(saferith.Nat).SetHex("7FFFFFFFFFFFFFFFFFFFFFFFFFFFFFFF")
	require.NoError(t, err)
	q, err := new(saferith.Nat).SetHex("7FFFFFFFFFFFFFFFFFFFFFFFFFF")
	require.NoError(t, err)
	return p, q
}

func coprimePair(r io.Reader) (*saferith.Nat, *saferith.Nat) {
	a := sample.IntervalLEpsN(r).Abs()
	b := sample.IntervalLEpsN(r).Abs()
	for b.Coprime(a) != 1 {
		b = sample.IntervalLEpsN(r).Abs()
	}
	return a, b
}

func checkExpAgreement(t *testing.T, p, q *saferith.Nat, r io.Reader) {
	n := saferith.ModulusFromNat(new(saferith.Nat).Mul(p, q, -1))
	fast := ModulusFromFactors(p, q)
	plain := ModulusFromN(n)
	require.True(t, fast.Nat().Eq(plain.Nat()) == 1)

	x := sample.ModN(r, n)
	e := sample.IntervalLN(r).Abs()
	eNeg := new(saferith.Int).SetNat(e).Neg(1)

	want := new(saferith.Nat).Exp(x, e, n)
	assert.True(t, want.Eq(fast.Exp(x, e)) == 1, "CRT path diverges from direct Exp")
	assert.True(t, want.Eq(plain.Exp(x, e)) == 1, "plain path diverges from direct Exp")

	want.ExpI(x, eNeg, n)
	assert.True(t, want.Eq(fast.ExpI(x, eNeg)) == 1, "CRT path diverges on negative exponent")
	assert.True(t, want.Eq(plain.ExpI(x, eNeg)) == 1, "plain path diverges on negative exponent")
}

func TestModulusExpMersenne(t *testing.T) {
	r := mrand.New(mrand.NewSource(1))
	p, q := mersennePair(t)
	checkExpAgreement(t, p, q, r)
}

func TestModulusExpRandomFactors(t *testing.T) {
	r := mrand.New(mrand.NewSource(2))
	for i := 0; i < 4; i++ {
		p, q := coprimePair(r)
		checkExpAgreement(t, p, q, r)
	}
}

func BenchmarkExp(b *testing.B) {
	r := mrand.New(mrand.NewSource(3))
	p, q := mersennePair(b)
	n := saferith.ModulusFromNat(new(saferith.Nat).Mul(p, q, -1))
	x := sample.ModN(r, n)
	e := sample.ModN(r, n)

	b.Run("crt", func(b *testing.B) {
		m := ModulusFromFactors(p, q)
		for i := 0; i < b.N; i++ {
			m.Exp(x, e)
		}
	})
	b.Run("plain", func(b *testing.B) {
		m := ModulusFromN(n)
		for i := 0; i < b.N; i++ {
			m.Exp(x, e)
		}
	})
}
