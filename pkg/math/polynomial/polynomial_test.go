package polynomial

import (
	"crypto/rand"
	mrand "math/rand"
	"testing"

	"github.com/cronokirby/saferith"
	"github.com/gargos-crypto/gargos/pkg/math/curve"
	"github.com/gargos-crypto/gargos/pkg/math/sample"
	"github.com/gargos-crypto/gargos/pkg/party"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPolynomial_Constant(t *testing.T) {
	group := curve.Secp256k1{}
	deg := 10
	secret := sample.Scalar(rand.Reader, group)
	poly := NewPolynomial(group, rand.Reader, deg, secret)
	require.True(t, poly.Constant().Equal(secret))
	require.EqualValues(t, deg, poly.Degree())
}

func TestPolynomial_Evaluate(t *testing.T) {
	group := curve.Secp256k1{}
	polynomial := &Polynomial{group, make([]curve.Scalar, 3)}
	polynomial.coefficients[0] = group.NewScalar().SetNat(new(saferith.Nat).SetUint64(1))
	polynomial.coefficients[1] = group.NewScalar()
	polynomial.coefficients[2] = group.NewScalar().SetNat(new(saferith.Nat).SetUint64(1))

	for i := 0; i < 100; i++ {
		x := uint64(mrand.Uint32())
		// the polynomial is 1 + x²
		expected := group.NewScalar().SetNat(new(saferith.Nat).SetUint64(x*x + 1))
		computed := polynomial.Evaluate(group.NewScalar().SetNat(new(saferith.Nat).SetUint64(x)))
		assert.True(t, expected.Equal(computed))
	}
}

func TestPolynomial_EvaluateZeroPanics(t *testing.T) {
	group := curve.Secp256k1{}
	poly := NewPolynomial(group, rand.Reader, 2, sample.Scalar(rand.Reader, group))
	assert.Panics(t, func() {
		poly.Evaluate(group.NewScalar())
	})
}

func TestInterpolation(t *testing.T) {
	for _, group := range []curve.Curve{curve.Secp256k1{}, curve.Ed25519{}} {
		t.Run(group.Name(), func(t *testing.T) {
			threshold := 4
			ids := party.RandomIDs(7)

			secret := sample.Scalar(rand.Reader, group)
			poly := NewPolynomial(group, rand.Reader, threshold-1, secret)

			shares := make(map[party.ID]curve.Scalar, len(ids))
			for _, id := range ids {
				shares[id] = poly.Evaluate(id.Scalar(group))
			}

			subset := ids[:threshold]
			coefficients := Lagrange(group, subset)
			reconstructed := group.NewScalar()
			for _, id := range subset {
				reconstructed.Add(group.NewScalar().Set(coefficients[id]).Mul(shares[id]))
			}
			assert.True(t, reconstructed.Equal(secret), "interpolating the threshold should recover the secret")

			smaller := ids[:threshold-1]
			coefficients = Lagrange(group, smaller)
			tooFew := group.NewScalar()
			for _, id := range smaller {
				tooFew.Add(group.NewScalar().Set(coefficients[id]).Mul(shares[id]))
			}
			assert.False(t, tooFew.Equal(secret), "interpolating below the threshold should not recover the secret")
		})
	}
}

func TestLagrangeCoefficientsSumToOne(t *testing.T) {
	group := curve.Secp256k1{}
	n := 10
	allIDs := party.RandomIDs(n)
	one := group.NewScalar().SetNat(new(saferith.Nat).SetUint64(1))

	for _, domain := range []party.IDSlice{allIDs, allIDs[:n-1]} {
		coefficients := Lagrange(group, domain)
		sum := group.NewScalar()
		for _, c := range coefficients {
			sum.Add(c)
		}
		assert.True(t, sum.Equal(one))
	}
}

func TestLagrangeForSubset(t *testing.T) {
	group := curve.Secp256k1{}
	allIDs := party.RandomIDs(6)
	subset := allIDs[:3]

	full := LagrangeFor(group, subset, subset...)
	for _, id := range subset {
		single := LagrangeSingle(group, subset, id)
		assert.True(t, full[id].Equal(single))
	}
}
