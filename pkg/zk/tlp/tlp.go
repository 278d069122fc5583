// Package zktlp proves that a time-lock puzzle hides the discrete logarithm
// of a public point.
//
// For public (params, puzzle (u, v), S) the prover knows (s, r) with
//
//	u = gʳ (mod n)
//	v = (hʳ)ᴺ⋅(1+N)ˢ (mod n²)
//	S = s⋅G
//
// so whoever solves the puzzle recovers exactly the scalar behind S.
package zktlp

import (
	"crypto/rand"
	"fmt"

	"github.com/cronokirby/saferith"
	"github.com/fxamacker/cbor/v2"
	"github.com/gargos-crypto/gargos/pkg/hash"
	"github.com/gargos-crypto/gargos/pkg/math/arith"
	"github.com/gargos-crypto/gargos/pkg/math/curve"
	"github.com/gargos-crypto/gargos/pkg/math/sample"
	"github.com/gargos-crypto/gargos/pkg/timelock"
)

type Public struct {
	// TL are the puzzle parameters.
	TL *timelock.Parameters
	// Z is the puzzle.
	Z *timelock.Puzzle
	// S = s⋅G for the value s hidden in Z.
	S curve.Point
}

type Private struct {
	// S is the hidden value.
	S curve.Scalar
	// R is the randomness used to lock the puzzle.
	R *saferith.Nat
}

type Commitment struct {
	// A1 = g^β (mod n)
	A1 *saferith.Nat
	// A2 = (h^β)ᴺ⋅(1+N)^α (mod n²)
	A2 *saferith.Nat
	// A3 = α⋅G
	A3 curve.Point
}

type Proof struct {
	group      curve.Curve
	Commitment *Commitment
	// Z1 = α + e⋅s over the integers.
	Z1 *saferith.Int
	// Z2 = β + e⋅r over the integers.
	Z2 *saferith.Int
}

func challenge(hash *hash.Hash, group curve.Curve, public Public, commitment *Commitment) (*saferith.Int, error) {
	err := hash.WriteAny(public.TL, public.Z, public.S,
		commitment.A1, commitment.A2, commitment.A3)
	return sample.IntervalScalar(hash.Digest(), group), err
}

// NewProof proves that public.Z locks the discrete logarithm of public.S,
// bound to the current state of hash.
func NewProof(group curve.Curve, hash *hash.Hash, public Public, private Private) *Proof {
	alpha := sample.IntervalLEps(rand.Reader)
	beta := sample.IntervalLEpsN(rand.Reader)

	alphaScalar := group.NewScalar().SetNat(alpha.Mod(group.Order()))
	commitment := &Commitment{
		A1: public.TL.PowG(beta),
		A2: public.TL.Enc(alpha, beta),
		A3: alphaScalar.ActOnBase(),
	}

	e, err := challenge(hash, group, public, commitment)
	if err != nil {
		return nil
	}

	z1 := new(saferith.Int).Mul(e, new(saferith.Int).SetInt(curve.MakeInt(private.S)), -1)
	z1.Add(z1, alpha, -1)
	z2 := new(saferith.Int).Mul(e, new(saferith.Int).SetNat(private.R), -1)
	z2.Add(z2, beta, -1)

	return &Proof{
		group:      group,
		Commitment: commitment,
		Z1:         z1,
		Z2:         z2,
	}
}

// Verify checks the three puzzle equations against the challenge, and the
// range of the response so the hidden value cannot wrap around the modulus.
func (p *Proof) Verify(hash *hash.Hash, public Public) bool {
	if !p.IsValid() {
		return false
	}
	if public.TL == nil || public.S == nil || public.S.IsIdentity() {
		return false
	}
	if err := public.Z.Validate(public.TL); err != nil {
		return false
	}
	if !arith.IsInIntervalLEps(p.Z1) {
		return false
	}

	e, err := challenge(hash, p.group, public, p.Commitment)
	if err != nil {
		return false
	}

	n := public.TL.N()
	nSquared := public.TL.NSquared()

	// g^z2 == A1 ⋅ u^e (mod n)
	lhs := public.TL.PowG(p.Z2)
	rhs := n.ExpI(public.Z.U, e)
	rhs.ModMul(rhs, p.Commitment.A1, n.Modulus)
	if lhs.Eq(rhs) != 1 {
		return false
	}

	// (h^z2)ᴺ⋅(1+N)^z1 == A2 ⋅ v^e (mod n²)
	lhs = public.TL.Enc(p.Z1, p.Z2)
	rhs = nSquared.ExpI(public.Z.V, e)
	rhs.ModMul(rhs, p.Commitment.A2, nSquared.Modulus)
	if lhs.Eq(rhs) != 1 {
		return false
	}

	// z1⋅G == A3 + e⋅S
	z1 := p.group.NewScalar().SetNat(p.Z1.Mod(p.group.Order()))
	eScalar := p.group.NewScalar().SetNat(e.Mod(p.group.Order()))
	lhsPoint := z1.ActOnBase()
	rhsPoint := eScalar.Act(public.S).Add(p.Commitment.A3)
	return lhsPoint.Equal(rhsPoint)
}

func (p *Proof) IsValid() bool {
	if p == nil || p.Commitment == nil || p.Z1 == nil || p.Z2 == nil {
		return false
	}
	if p.Commitment.A1 == nil || p.Commitment.A2 == nil || p.Commitment.A3 == nil {
		return false
	}
	return true
}

// Empty returns a Proof with initialized fields, ready to be unmarshalled into.
func Empty(group curve.Curve) *Proof {
	return &Proof{
		group:      group,
		Commitment: &Commitment{A3: group.NewPoint()},
	}
}

type rawProof struct {
	A1, A2 []byte
	A3     []byte
	Z1, Z2 []byte
}

func intToBytes(i *saferith.Int) []byte {
	sign := byte(i.IsNegative())
	return append([]byte{sign}, i.Abs().Bytes()...)
}

func intFromBytes(data []byte) (*saferith.Int, error) {
	if len(data) < 2 {
		return nil, fmt.Errorf("zktlp: invalid integer encoding")
	}
	i := new(saferith.Int).SetBytes(data[1:])
	i.Neg(saferith.Choice(data[0] & 1))
	return i, nil
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (p *Proof) MarshalBinary() ([]byte, error) {
	if !p.IsValid() {
		return nil, fmt.Errorf("zktlp: cannot marshal invalid proof")
	}
	a3, err := p.Commitment.A3.MarshalBinary()
	if err != nil {
		return nil, err
	}
	return cbor.Marshal(rawProof{
		A1: p.Commitment.A1.Bytes(),
		A2: p.Commitment.A2.Bytes(),
		A3: a3,
		Z1: intToBytes(p.Z1),
		Z2: intToBytes(p.Z2),
	})
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler. The receiver must
// come from Empty so the group is known.
func (p *Proof) UnmarshalBinary(data []byte) error {
	if p.group == nil {
		return fmt.Errorf("zktlp: unmarshal into proof with unknown group")
	}
	var raw rawProof
	if err := cbor.Unmarshal(data, &raw); err != nil {
		return err
	}
	if len(raw.A1) == 0 || len(raw.A2) == 0 {
		return fmt.Errorf("zktlp: missing commitment")
	}
	a3 := p.group.NewPoint()
	if err := a3.UnmarshalBinary(raw.A3); err != nil {
		return err
	}
	z1, err := intFromBytes(raw.Z1)
	if err != nil {
		return err
	}
	z2, err := intFromBytes(raw.Z2)
	if err != nil {
		return err
	}
	p.Commitment = &Commitment{
		A1: new(saferith.Nat).SetBytes(raw.A1),
		A2: new(saferith.Nat).SetBytes(raw.A2),
		A3: a3,
	}
	p.Z1, p.Z2 = z1, z2
	return nil
}
