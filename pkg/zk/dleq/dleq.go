// Package zkdleq implements a Chaum-Pedersen proof of discrete logarithm
// equality: for public (H, X, Y), the prover knows x with X = x⋅G and Y = x⋅H.
package zkdleq

import (
	"crypto/rand"

	"github.com/gargos-crypto/gargos/pkg/hash"
	"github.com/gargos-crypto/gargos/pkg/math/curve"
	"github.com/gargos-crypto/gargos/pkg/math/sample"
)

type Public struct {
	// H is the second generator.
	H curve.Point
	// X = x⋅G.
	X curve.Point
	// Y = x⋅H.
	Y curve.Point
}

type Private struct {
	// X is the common discrete logarithm.
	X curve.Scalar
}

type Commitment struct {
	// A1 = a⋅G.
	A1 curve.Point
	// A2 = a⋅H.
	A2 curve.Point
}

type Proof struct {
	group      curve.Curve
	Commitment *Commitment
	// Z = a + e⋅x (mod q).
	Z curve.Scalar
}

func challenge(hash *hash.Hash, group curve.Curve, public Public, commitment *Commitment) (curve.Scalar, error) {
	err := hash.WriteAny(public.H, public.X, public.Y, commitment.A1, commitment.A2)
	return sample.Scalar(hash.Digest(), group), err
}

// NewProof proves that public.X and public.Y share the discrete logarithm
// private.X with respect to G and public.H, bound to the current state of hash.
func NewProof(group curve.Curve, hash *hash.Hash, public Public, private Private) *Proof {
	a := sample.Scalar(rand.Reader, group)
	commitment := &Commitment{
		A1: a.ActOnBase(),
		A2: a.Act(public.H),
	}

	e, err := challenge(hash, group, public, commitment)
	if err != nil {
		return nil
	}

	z := group.NewScalar().Set(e).Mul(private.X).Add(a)

	return &Proof{
		group:      group,
		Commitment: commitment,
		Z:          z,
	}
}

// Verify checks that z⋅G == A1 + e⋅X and z⋅H == A2 + e⋅Y.
func (p *Proof) Verify(hash *hash.Hash, public Public) bool {
	if !p.IsValid() {
		return false
	}
	if public.H == nil || public.X == nil || public.Y == nil {
		return false
	}
	if public.H.IsIdentity() || public.X.IsIdentity() || public.Y.IsIdentity() {
		return false
	}

	e, err := challenge(hash, p.group, public, p.Commitment)
	if err != nil {
		return false
	}

	lhs := p.Z.ActOnBase()
	rhs := e.Act(public.X).Add(p.Commitment.A1)
	if !lhs.Equal(rhs) {
		return false
	}

	lhs = p.Z.Act(public.H)
	rhs = e.Act(public.Y).Add(p.Commitment.A2)
	return lhs.Equal(rhs)
}

func (p *Proof) IsValid() bool {
	if p == nil || p.Commitment == nil || p.Z == nil {
		return false
	}
	if p.Commitment.A1 == nil || p.Commitment.A2 == nil {
		return false
	}
	if p.Z.IsZero() {
		return false
	}
	return true
}

// Empty returns a Proof with initialized fields, ready to be unmarshalled into.
func Empty(group curve.Curve) *Proof {
	return &Proof{
		group:      group,
		Commitment: &Commitment{A1: group.NewPoint(), A2: group.NewPoint()},
		Z:          group.NewScalar(),
	}
}
