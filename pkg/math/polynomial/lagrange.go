package polynomial

import (
	"github.com/cronokirby/saferith"
	"github.com/gargos-crypto/gargos/pkg/math/curve"
	"github.com/gargos-crypto/gargos/pkg/party"
)

// Lagrange returns the Lagrange coefficient at 0 for every party in the
// interpolation domain, so that for a polynomial f of degree below
// len(domain),
//
//	f(0) = Σ lⱼ·f(xⱼ).
func Lagrange(group curve.Curve, domain []party.ID) map[party.ID]curve.Scalar {
	return LagrangeFor(group, domain, domain...)
}

// LagrangeFor returns the Lagrange coefficients at 0 for the given
// subset of the interpolation domain.
func LagrangeFor(group curve.Curve, domain []party.ID, subset ...party.ID) map[party.ID]curve.Scalar {
	points := make(map[party.ID]curve.Scalar, len(domain))
	for _, id := range domain {
		points[id] = id.Scalar(group)
	}

	coefficients := make(map[party.ID]curve.Scalar, len(subset))
	for _, j := range subset {
		coefficients[j] = coefficientAtZero(group, points, j)
	}
	return coefficients
}

// LagrangeSingle returns the single coefficient lⱼ(0).
func LagrangeSingle(group curve.Curve, domain []party.ID, j party.ID) curve.Scalar {
	return LagrangeFor(group, domain, j)[j]
}

// coefficientAtZero computes
//
//	lⱼ(0) = Π_{i≠j} xᵢ / (xᵢ − xⱼ)
//
// over the whole interpolation domain.
func coefficientAtZero(group curve.Curve, points map[party.ID]curve.Scalar, j party.ID) curve.Scalar {
	xJ := points[j]

	one := new(saferith.Nat).SetUint64(1)
	num := group.NewScalar().SetNat(one)
	den := group.NewScalar().SetNat(one)
	diff := group.NewScalar()
	for i, xI := range points {
		if i == j {
			continue
		}
		num.Mul(xI)
		// diff = xᵢ − xⱼ
		diff.Set(xJ).Negate().Add(xI)
		den.Mul(diff)
	}

	return num.Mul(den.Invert())
}
