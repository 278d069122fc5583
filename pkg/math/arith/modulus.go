package arith

import "github.com/cronokirby/saferith"

// Modulus is a saferith.Modulus that exponentiates faster when its
// factorization n = p·q is known, using one exponentiation per factor
// and a CRT recombination.
type Modulus struct {
	*saferith.Modulus
	p, q *saferith.Modulus
	// crt = p·(p⁻¹ mod q) mod n, so residues xp, xq recombine as
	// x = xp + crt·(xq − xp) mod n.
	crt *saferith.Nat
}

// ModulusFromN wraps n without factorization; Exp falls back to a
// single full-width exponentiation. n is not copied.
func ModulusFromN(n *saferith.Modulus) *Modulus {
	return &Modulus{Modulus: n}
}

// ModulusFromFactors builds the modulus p·q with its CRT coefficient
// precomputed.
func ModulusFromFactors(p, q *saferith.Nat) *Modulus {
	n := saferith.ModulusFromNat(new(saferith.Nat).Mul(p, q, -1))
	qMod := saferith.ModulusFromNat(q)
	crt := new(saferith.Nat).ModInverse(p, qMod)
	crt.ModMul(crt, p, n)
	return &Modulus{
		Modulus: n,
		p:       saferith.ModulusFromNat(p),
		q:       qMod,
		crt:     crt,
	}
}

// Exp returns xᵉ mod n.
func (n *Modulus) Exp(x, e *saferith.Nat) *saferith.Nat {
	if n.crt == nil {
		return new(saferith.Nat).Exp(x, e, n.Modulus)
	}
	var xp, xq saferith.Nat
	xp.Exp(x, e, n.p)
	xq.Exp(x, e, n.q)
	r := xq.ModSub(&xq, &xp, n.Modulus)
	r.ModMul(r, n.crt, n.Modulus)
	r.ModAdd(r, &xp, n.Modulus)
	return r
}

// ExpI returns xᵉ mod n for a signed exponent, inverting the result
// when e is negative.
func (n *Modulus) ExpI(x *saferith.Nat, e *saferith.Int) *saferith.Nat {
	if n.crt == nil {
		return new(saferith.Nat).ExpI(x, e, n.Modulus)
	}
	y := n.Exp(x, e.Abs())
	inv := new(saferith.Nat).ModInverse(y, n.Modulus)
	y.CondAssign(e.IsNegative(), inv)
	return y
}
