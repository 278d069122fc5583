package sample

import (
	"io"

	"github.com/cronokirby/saferith"
	"github.com/gargos-crypto/gargos/internal/params"
	"github.com/gargos-crypto/gargos/pkg/math/curve"
)

// signedBits draws a uniform integer of the given magnitude with a
// uniform sign, spending one extra byte on the sign so the magnitude
// bytes stay untouched.
func signedBits(rand io.Reader, bits int) *saferith.Int {
	buf := make([]byte, bits/8+1)
	mustReadBits(rand, buf)
	sign := saferith.Choice(buf[0] & 1)
	out := new(saferith.Int).SetBytes(buf[1:])
	return out.Neg(sign)
}

// IntervalL returns an integer in ±2ˡ, in constant time.
func IntervalL(rand io.Reader) *saferith.Int {
	return signedBits(rand, params.L)
}

// IntervalLEps returns an integer in ±2ˡ⁺ᵉ, in constant time.
func IntervalLEps(rand io.Reader) *saferith.Int {
	return signedBits(rand, params.LPlusEpsilon)
}

// IntervalLN returns an integer in ±2ˡ·N, for N a time-lock modulus.
func IntervalLN(rand io.Reader) *saferith.Int {
	return signedBits(rand, params.L+params.BitsIntModN)
}

// IntervalLEpsN returns an integer in ±2ˡ⁺ᵉ·N, for N a time-lock modulus.
func IntervalLEpsN(rand io.Reader) *saferith.Int {
	return signedBits(rand, params.LPlusEpsilon+params.BitsIntModN)
}

// IntervalScalar returns an integer in ±q, for q the group order.
func IntervalScalar(rand io.Reader, group curve.Curve) *saferith.Int {
	return signedBits(rand, group.ScalarBits())
}
