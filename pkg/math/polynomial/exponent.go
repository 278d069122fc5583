package polynomial

import (
	"errors"

	"github.com/fxamacker/cbor/v2"
	"github.com/gargos-crypto/gargos/pkg/math/curve"
)

// Exponent represents a polynomial F(X) whose coefficients belong to a group 𝔾.
type Exponent struct {
	group curve.Curve
	// IsConstant indicates that the constant coefficient is the identity.
	// We do this so that we never need to send an encoded identity point,
	// and thus can consider all encoded coefficients valid when they are
	// not the identity.
	IsConstant   bool
	coefficients []curve.Point
}

// NewPolynomialExponent generates F(X) = [secret + a₁⋅X + … + aₜ⋅Xᵗ]•G,
// with coefficients in 𝔾, and degree t.
func NewPolynomialExponent(polynomial *Polynomial) *Exponent {
	p := &Exponent{
		group:        polynomial.group,
		IsConstant:   polynomial.coefficients[0].IsZero(),
		coefficients: make([]curve.Point, 0, len(polynomial.coefficients)),
	}

	for i, c := range polynomial.coefficients {
		if p.IsConstant && i == 0 {
			continue
		}
		p.coefficients = append(p.coefficients, c.ActOnBase())
	}

	return p
}

// EmptyExponent returns an Exponent ready to be unmarshalled into.
//
// Because the coefficients are interface values, the group has to be known
// before their encodings can be read back.
func EmptyExponent(group curve.Curve) *Exponent {
	return &Exponent{group: group}
}

// Evaluate returns F(x), using Horner's method.
func (p *Exponent) Evaluate(x curve.Scalar) curve.Point {
	result := p.group.NewPoint()
	for i := len(p.coefficients) - 1; i >= 0; i-- {
		// Bₙ₋₁ = [x]Bₙ + Aₙ₋₁
		result = x.Act(result).Add(p.coefficients[i])
	}

	if p.IsConstant {
		// result is B₁
		// we want B₀ = [x]B₁ + A₀ = [x]B₁
		result = x.Act(result)
	}

	return result
}

// Degree is the highest power of the Exponent.
func (p *Exponent) Degree() uint32 {
	if p.IsConstant {
		return uint32(len(p.coefficients))
	}
	return uint32(len(p.coefficients)) - 1
}

func (p *Exponent) add(q *Exponent) error {
	if len(p.coefficients) != len(q.coefficients) {
		return errors.New("polynomial: q is not the same length as p")
	}

	if p.IsConstant != q.IsConstant {
		return errors.New("polynomial: p and q differ in 'IsConstant'")
	}

	for i := 0; i < len(p.coefficients); i++ {
		p.coefficients[i] = p.coefficients[i].Add(q.coefficients[i])
	}

	return nil
}

// Sum creates a new Exponent by summing a slice of existing ones.
func Sum(polynomials []*Exponent) (*Exponent, error) {
	var err error

	// create the new polynomial by copying the first one given
	summed := polynomials[0].copy()

	// we assume all polynomials have the same degree as the first
	for j := 1; j < len(polynomials); j++ {
		err = summed.add(polynomials[j])
		if err != nil {
			return nil, err
		}
	}
	return summed, nil
}

func (p *Exponent) copy() *Exponent {
	q := &Exponent{
		group:        p.group,
		IsConstant:   p.IsConstant,
		coefficients: make([]curve.Point, 0, len(p.coefficients)),
	}
	for i := 0; i < len(p.coefficients); i++ {
		q.coefficients = append(q.coefficients, p.group.NewPoint().Set(p.coefficients[i]))
	}
	return q
}

// Equal returns true if p ≡ other.
func (p *Exponent) Equal(other Exponent) bool {
	if p.IsConstant != other.IsConstant {
		return false
	}
	if len(p.coefficients) != len(other.coefficients) {
		return false
	}
	for i := 0; i < len(p.coefficients); i++ {
		if !p.coefficients[i].Equal(other.coefficients[i]) {
			return false
		}
	}
	return true
}

// Constant returns the constant coefficient of the polynomial 'in the exponent'.
func (p *Exponent) Constant() curve.Point {
	c := p.group.NewPoint()
	if p.IsConstant {
		return c
	}
	return c.Set(p.coefficients[0])
}

type rawExponent struct {
	IsConstant   bool
	Coefficients [][]byte
}

func (p *Exponent) MarshalBinary() ([]byte, error) {
	coefficients := make([][]byte, len(p.coefficients))
	for i, c := range p.coefficients {
		data, err := c.MarshalBinary()
		if err != nil {
			return nil, err
		}
		coefficients[i] = data
	}
	return cbor.Marshal(rawExponent{
		IsConstant:   p.IsConstant,
		Coefficients: coefficients,
	})
}

func (p *Exponent) UnmarshalBinary(data []byte) error {
	if p.group == nil {
		return errors.New("polynomial: Exponent requires a group to unmarshal, see EmptyExponent")
	}
	var raw rawExponent
	if err := cbor.Unmarshal(data, &raw); err != nil {
		return err
	}
	coefficients := make([]curve.Point, len(raw.Coefficients))
	for i, cBytes := range raw.Coefficients {
		c := p.group.NewPoint()
		if err := c.UnmarshalBinary(cBytes); err != nil {
			return err
		}
		// the identity is only ever implicit, see IsConstant
		if c.IsIdentity() {
			return errors.New("polynomial: coefficient is the identity")
		}
		coefficients[i] = c
	}
	p.IsConstant = raw.IsConstant
	p.coefficients = coefficients
	return nil
}
