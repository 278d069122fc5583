// Package zksch implements proofs of knowledge of discrete logarithm,
// compiled with the Fiat-Shamir transform.
package zksch

import (
	"crypto/rand"
	"io"

	"github.com/gargos-crypto/gargos/pkg/hash"
	"github.com/gargos-crypto/gargos/pkg/math/curve"
	"github.com/gargos-crypto/gargos/pkg/math/sample"
)

// Randomness = a ← ℤq.
type Randomness struct {
	a          curve.Scalar
	commitment Commitment
}

// Commitment = A = a⋅gen.
type Commitment struct {
	C curve.Point
}

// Response = z = a + e⋅x (mod q).
type Response struct {
	Z curve.Scalar
}

// Proof is a Fiat-Shamir compiled proof of knowledge of x such that X = x⋅gen.
type Proof struct {
	C Commitment
	Z Response
}

// NewRandomness samples a ← ℤq and computes its commitment A = a⋅gen.
//
// gen can be nil, in which case the group's base point is used.
func NewRandomness(rand io.Reader, group curve.Curve, gen curve.Point) *Randomness {
	a := sample.Scalar(rand, group)
	var c curve.Point
	if gen == nil {
		c = a.ActOnBase()
	} else {
		c = a.Act(gen)
	}
	return &Randomness{
		a:          a,
		commitment: Commitment{C: c},
	}
}

func challenge(hash *hash.Hash, group curve.Curve, commitment *Commitment, public, gen curve.Point) (e curve.Scalar, err error) {
	err = hash.WriteAny(commitment.C, public, gen)
	e = sample.Scalar(hash.Digest(), group)
	return
}

// Prove creates a Response = a + e⋅x (mod q), where the challenge e is
// derived from the current state of hash.
func (r *Randomness) Prove(hash *hash.Hash, public curve.Point, secret curve.Scalar, gen curve.Point) *Response {
	if public.IsIdentity() || secret.IsZero() {
		return nil
	}
	group := secret.Curve()
	if gen == nil {
		gen = group.NewBasePoint()
	}
	e, err := challenge(hash, group, &r.commitment, public, gen)
	if err != nil {
		return nil
	}
	z := group.NewScalar().Set(e).Mul(secret).Add(r.a)
	return &Response{Z: z}
}

// Commitment returns the commitment A = a⋅gen for the randomness a.
func (r *Randomness) Commitment() *Commitment {
	return &r.commitment
}

// Verify checks that z⋅gen == A + e⋅X.
func (z *Response) Verify(hash *hash.Hash, public curve.Point, commitment *Commitment, gen curve.Point) bool {
	if z == nil || !z.IsValid() || public.IsIdentity() || !commitment.IsValid() {
		return false
	}
	group := z.Z.Curve()
	if gen == nil {
		gen = group.NewBasePoint()
	}

	e, err := challenge(hash, group, commitment, public, gen)
	if err != nil {
		return false
	}

	lhs := z.Z.Act(gen)
	rhs := e.Act(public).Add(commitment.C)

	return lhs.Equal(rhs)
}

// NewProof generates a proof of knowledge of x such that X = x⋅gen,
// bound to the current state of hash.
func NewProof(hash *hash.Hash, public curve.Point, private curve.Scalar, gen curve.Point) *Proof {
	a := NewRandomness(rand.Reader, private.Curve(), gen)
	z := a.Prove(hash, public, private, gen)
	if z == nil {
		return nil
	}
	return &Proof{
		C: a.commitment,
		Z: *z,
	}
}

// Verify checks the proof against the given public point.
func (p *Proof) Verify(hash *hash.Hash, public, gen curve.Point) bool {
	if !p.IsValid() {
		return false
	}
	return p.Z.Verify(hash, public, &p.C, gen)
}

func (c *Commitment) IsValid() bool {
	if c == nil || c.C == nil || c.C.IsIdentity() {
		return false
	}
	return true
}

func (z *Response) IsValid() bool {
	if z == nil || z.Z == nil || z.Z.IsZero() {
		return false
	}
	return true
}

func (p *Proof) IsValid() bool {
	if p == nil || !p.Z.IsValid() || !p.C.IsValid() {
		return false
	}
	return true
}

// EmptyProof returns a Proof with initialized fields, ready to be unmarshalled into.
func EmptyProof(group curve.Curve) *Proof {
	return &Proof{
		C: Commitment{C: group.NewPoint()},
		Z: Response{Z: group.NewScalar()},
	}
}
