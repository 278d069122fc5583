package curve

import (
	"encoding"

	"github.com/cronokirby/saferith"
)

// Curve represents the starting point for working with an Elliptic Curve group.
//
// The expectation is that this interface will be implemented by a nominal struct,
// and use associated functions to create types satisfying the Scalar and Point interfaces.
type Curve interface {
	// NewPoint creates an identity point.
	NewPoint() Point
	// NewBasePoint creates the generator of the group.
	NewBasePoint() Point
	// NewScalar creates a scalar with the value of 0.
	NewScalar() Scalar
	// Name returns the name of this curve.
	//
	// This should be unique between curves.
	Name() string
	// ScalarBits returns the number of significant bits in a scalar.
	ScalarBits() int
	// SafeScalarBytes returns the number of random bytes needed to sample a scalar through modular reduction.
	//
	// Usually, this is going to be the number of bytes in the scalar, plus an extra
	// security parameter's worth of bytes, say 32 extra bytes.
	SafeScalarBytes() int
	// Order returns the order of the group as a Modulus.
	Order() *saferith.Modulus
	// LiftHash deterministically derives a point from a digest, such that
	// its discrete logarithm relative to the base point is not known to anybody.
	LiftHash(digest []byte) Point
}

// Scalar represents a number modulo the order of some Elliptic Curve group.
//
// Scalars act on points, but should also form a field amongst themselves.
//
// The methods on Scalar are all defined to mutate the current value, and then return
// that same value. This allows the type to be used in a "builder" pattern.
type Scalar interface {
	// MarshalBinary returns a fixed size encoding of this scalar, in big-endian order.
	encoding.BinaryMarshaler
	// UnmarshalBinary reads a scalar from its exact encoding, rejecting any
	// value not already reduced modulo the group order.
	encoding.BinaryUnmarshaler
	// Curve returns the Curve associated with this kind of scalar.
	Curve() Curve
	// Add mutates this scalar, by adding in another.
	Add(Scalar) Scalar
	// Sub mutates this scalar, by subtracting another.
	Sub(Scalar) Scalar
	// Mul mutates this scalar, multiplying in another.
	Mul(Scalar) Scalar
	// Invert mutates this scalar, replacing it with its multiplicative inverse.
	Invert() Scalar
	// Negate mutates this scalar, replacing it with its additive inverse.
	Negate() Scalar
	// Equal checks if this scalar is equal to another.
	//
	// This check should be done in constant time.
	Equal(Scalar) bool
	// IsZero checks if this scalar is equal to 0.
	IsZero() bool
	// Set mutates this scalar, replacing its value with another.
	Set(Scalar) Scalar
	// SetNat mutates this scalar, replacing its value with a number, reduced
	// modulo the group order.
	SetNat(*saferith.Nat) Scalar
	// Act acts on a point with this scalar, returning a new point.
	//
	// This shouldn't mutate the current scalar, or the point.
	Act(Point) Point
	// ActOnBase acts on the base point with this scalar, returning a new point.
	//
	// This shouldn't mutate the current scalar.
	ActOnBase() Point
}

// Point represents an element of our Elliptic Curve group.
//
// Unlike Scalar, none of the methods on Point mutate the receiver.
type Point interface {
	// MarshalBinary returns the canonical fixed size encoding of this point.
	encoding.BinaryMarshaler
	// UnmarshalBinary reads a point from its canonical encoding, rejecting
	// anything malleable, like a point not on the curve.
	encoding.BinaryUnmarshaler
	// Curve returns the Curve associated with this kind of point.
	Curve() Curve
	// Add returns the sum of this point with another, without mutating either.
	Add(Point) Point
	// Sub returns the difference of this point with another, without mutating either.
	Sub(Point) Point
	// Negate returns the additive inverse of this point, without mutating it.
	Negate() Point
	// Set mutates this point, replacing its value with another.
	Set(Point) Point
	// Equal checks if this point is equal to another.
	Equal(Point) bool
	// IsIdentity checks if this is the identity element of the group.
	IsIdentity() bool
}

// MakeInt converts a scalar into an Int, with the same value as the
// canonical residue of the scalar.
func MakeInt(s Scalar) *saferith.Int {
	bytes, err := s.MarshalBinary()
	if err != nil {
		panic(err)
	}
	return new(saferith.Int).SetBytes(bytes)
}
