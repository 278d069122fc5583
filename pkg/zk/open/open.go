// Package zkopen implements a proof of knowledge of an opening (x, r) of a
// Pedersen commitment V = x⋅G + r⋅H.
package zkopen

import (
	"crypto/rand"

	"github.com/gargos-crypto/gargos/pkg/hash"
	"github.com/gargos-crypto/gargos/pkg/math/curve"
	"github.com/gargos-crypto/gargos/pkg/math/sample"
	"github.com/gargos-crypto/gargos/pkg/pedersen"
)

type Public struct {
	// Pedersen is the commitment key (G, H).
	Pedersen *pedersen.Parameters
	// V = x⋅G + r⋅H.
	V curve.Point
}

type Private struct {
	// X is the committed value.
	X curve.Scalar
	// R is the blinding factor.
	R curve.Scalar
}

type Commitment struct {
	// A = α⋅G + β⋅H.
	A curve.Point
}

type Proof struct {
	group      curve.Curve
	Commitment *Commitment
	// Z1 = α + e⋅x (mod q).
	Z1 curve.Scalar
	// Z2 = β + e⋅r (mod q).
	Z2 curve.Scalar
}

func challenge(hash *hash.Hash, group curve.Curve, public Public, commitment *Commitment) (curve.Scalar, error) {
	err := hash.WriteAny(public.Pedersen, public.V, commitment.A)
	return sample.Scalar(hash.Digest(), group), err
}

// NewProof proves knowledge of an opening of public.V, bound to the current
// state of hash.
func NewProof(hash *hash.Hash, public Public, private Private) *Proof {
	group := public.Pedersen.Group()

	alpha := sample.Scalar(rand.Reader, group)
	beta := sample.Scalar(rand.Reader, group)
	commitment := &Commitment{
		A: public.Pedersen.Commit(alpha, beta),
	}

	e, err := challenge(hash, group, public, commitment)
	if err != nil {
		return nil
	}

	z1 := group.NewScalar().Set(e).Mul(private.X).Add(alpha)
	z2 := group.NewScalar().Set(e).Mul(private.R).Add(beta)

	return &Proof{
		group:      group,
		Commitment: commitment,
		Z1:         z1,
		Z2:         z2,
	}
}

// Verify checks that z1⋅G + z2⋅H == A + e⋅V.
func (p *Proof) Verify(hash *hash.Hash, public Public) bool {
	if !p.IsValid() || public.V == nil || public.V.IsIdentity() {
		return false
	}

	e, err := challenge(hash, p.group, public, p.Commitment)
	if err != nil {
		return false
	}

	lhs := public.Pedersen.Commit(p.Z1, p.Z2)
	rhs := e.Act(public.V).Add(p.Commitment.A)

	return lhs.Equal(rhs)
}

func (p *Proof) IsValid() bool {
	if p == nil || p.Commitment == nil {
		return false
	}
	if p.Commitment.A == nil || p.Commitment.A.IsIdentity() {
		return false
	}
	if p.Z1 == nil || p.Z2 == nil {
		return false
	}
	return true
}

// Empty returns a Proof with initialized fields, ready to be unmarshalled into.
func Empty(group curve.Curve) *Proof {
	return &Proof{
		group:      group,
		Commitment: &Commitment{A: group.NewPoint()},
		Z1:         group.NewScalar(),
		Z2:         group.NewScalar(),
	}
}
