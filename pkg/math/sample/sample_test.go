package sample

import (
	"crypto/rand"
	"math/big"
	"testing"

	"github.com/cronokirby/saferith"
	"github.com/gargos-crypto/gargos/pkg/math/curve"
)

func TestModN(t *testing.T) {
	n := saferith.ModulusFromUint64(3 * 11 * 65519)
	x := ModN(rand.Reader, n)
	if _, _, lt := x.CmpMod(n); lt != 1 {
		t.Errorf("ModN generated a number >= %v: %v", n, x)
	}
}

func TestUnitModN(t *testing.T) {
	n := saferith.ModulusFromUint64(3 * 11 * 65519)
	u := UnitModN(rand.Reader, n)
	if u.IsUnit(n) != 1 {
		t.Errorf("UnitModN generated a non unit: %v", u)
	}
}

func TestScalar(t *testing.T) {
	for _, group := range []curve.Curve{curve.Secp256k1{}, curve.Ed25519{}} {
		s := Scalar(rand.Reader, group)
		if s.Curve().Name() != group.Name() {
			t.Errorf("Scalar generated a scalar of the wrong group: %v", s.Curve().Name())
		}
		u := ScalarUnit(rand.Reader, group)
		if u.IsZero() {
			t.Error("ScalarUnit generated zero")
		}
	}
}

func TestIntervalScalar(t *testing.T) {
	group := curve.Secp256k1{}
	i := IntervalScalar(rand.Reader, group)
	if bits := i.Abs().TrueLen(); int(bits) > group.ScalarBits() {
		t.Errorf("IntervalScalar generated a value of %d bits", bits)
	}
}

const blumPrimeProbabilityIterations = 20

func TestTryBlumPrime(t *testing.T) {
	var p *saferith.Nat
	for p == nil {
		p = tryBlumPrime(rand.Reader)
	}
	pBig := p.Big()
	if !pBig.ProbablyPrime(blumPrimeProbabilityIterations) {
		t.Error("tryBlumPrime generated a non prime number: ", pBig)
	}
	q := new(big.Int).Sub(pBig, new(big.Int).SetUint64(1))
	q.Rsh(q, 1)
	if !q.ProbablyPrime(blumPrimeProbabilityIterations) {
		t.Error("p isn't safe because (p - 1) / 2 isn't prime", q)
	}
	if new(big.Int).And(pBig, big.NewInt(3)).Cmp(big.NewInt(3)) != 0 {
		t.Error("p isn't 3 mod 4")
	}
}

// This exists to save the results of functions we want to benchmark, to avoid
// having them optimized away.
var resultNat *saferith.Nat

func BenchmarkTryBlumPrime(b *testing.B) {
	for i := 0; i < b.N; i++ {
		resultNat = tryBlumPrime(rand.Reader)
	}
}
