// Package pedersen implements Pedersen commitments over an elliptic curve group.
package pedersen

import (
	"io"

	"github.com/gargos-crypto/gargos/pkg/hash"
	"github.com/gargos-crypto/gargos/pkg/math/curve"
)

// Parameters couples the group's base point G with a second generator H.
//
// The discrete logarithm of H relative to G is not known to anybody,
// which makes commitments binding as well as hiding.
type Parameters struct {
	group curve.Curve
	h     curve.Point
}

// New derives commitment parameters for the group from the given seed.
//
// The second generator is lifted from a hash of the seed, so two sets of
// parameters derived from the same seed commit identically.
func New(group curve.Curve, seed []byte) *Parameters {
	digest := hash.New(hash.TaggedBytes("Pedersen Generator", seed)).Sum()
	return &Parameters{
		group: group,
		h:     group.LiftHash(digest),
	}
}

// Group returns the elliptic curve group of the parameters.
func (p *Parameters) Group() curve.Curve {
	return p.group
}

// H returns the second generator.
func (p *Parameters) H() curve.Point {
	return p.h
}

// Commit returns x⋅G + r⋅H.
func (p *Parameters) Commit(x, r curve.Scalar) curve.Point {
	return x.ActOnBase().Add(r.Act(p.h))
}

// Verify returns true if commitment == x⋅G + r⋅H.
func (p *Parameters) Verify(x, r curve.Scalar, commitment curve.Point) bool {
	if x == nil || r == nil || commitment == nil {
		return false
	}
	return p.Commit(x, r).Equal(commitment)
}

// WriteTo implements io.WriterTo and should be used within the hash.Hash function.
func (p *Parameters) WriteTo(w io.Writer) (int64, error) {
	if p == nil {
		return 0, io.ErrUnexpectedEOF
	}
	data, err := p.h.MarshalBinary()
	if err != nil {
		return 0, err
	}
	n, err := w.Write(data)
	return int64(n), err
}

// Domain implements hash.WriterToWithDomain.
func (Parameters) Domain() string {
	return "Pedersen Parameters"
}
