package curve

import (
	"encoding/hex"
	"errors"
	"fmt"

	"filippo.io/edwards25519"
	"github.com/cronokirby/saferith"
	"github.com/zeebo/blake3"
)

var (
	ed25519OrderNat *saferith.Nat
	ed25519Order    *saferith.Modulus
)

func init() {
	orderBytes, _ := hex.DecodeString("1000000000000000000000000000000014DEF9DEA2F79CD65812631A5CF5D3ED")
	ed25519OrderNat = new(saferith.Nat).SetBytes(orderBytes)
	ed25519Order = saferith.ModulusFromNat(ed25519OrderNat)
}

// Ed25519 is an implementation of Curve over the prime order subgroup of edwards25519.
type Ed25519 struct{}

func (Ed25519) NewPoint() Point {
	return &Ed25519Point{value: *edwards25519.NewIdentityPoint()}
}

func (Ed25519) NewBasePoint() Point {
	return &Ed25519Point{value: *edwards25519.NewGeneratorPoint()}
}

func (Ed25519) NewScalar() Scalar {
	return &Ed25519Scalar{value: *edwards25519.NewScalar()}
}

func (Ed25519) ScalarBits() int {
	return 252
}

// SafeScalarBytes is twice the scalar size, because the order of edwards25519
// is far enough from a power of two that reducing a scalar's worth of random
// bytes would be noticeably biased.
func (Ed25519) SafeScalarBytes() int {
	return 64
}

func (Ed25519) Order() *saferith.Modulus {
	return ed25519Order
}

func (Ed25519) Name() string {
	return "ed25519"
}

func (Ed25519) LiftHash(digest []byte) Point {
	h := blake3.New()
	for counter := 0; counter < 256; counter++ {
		h.Reset()
		_, _ = h.Write([]byte("ed25519 point lift"))
		_, _ = h.Write(digest)
		_, _ = h.Write([]byte{byte(counter)})
		p, err := new(edwards25519.Point).SetBytes(h.Sum(nil))
		if err != nil {
			continue
		}
		// clearing the cofactor moves the candidate into the prime order subgroup
		p.MultByCofactor(p)
		if p.Equal(edwards25519.NewIdentityPoint()) == 1 {
			continue
		}
		return &Ed25519Point{value: *p}
	}
	panic("ed25519: failed to lift digest to a point")
}

// Ed25519Scalar is a number modulo the prime order of the edwards25519 subgroup.
//
// Unlike the usual convention for this curve, MarshalBinary produces big-endian
// bytes, so that scalar encodings are uniform across curves.
type Ed25519Scalar struct {
	value edwards25519.Scalar
}

func ed25519CastScalar(generic Scalar) *Ed25519Scalar {
	out, ok := generic.(*Ed25519Scalar)
	if !ok {
		panic(fmt.Sprintf("failed to convert to ed25519Scalar: %v", generic))
	}
	return out
}

func (*Ed25519Scalar) Curve() Curve {
	return Ed25519{}
}

func (s *Ed25519Scalar) MarshalBinary() ([]byte, error) {
	data := s.value.Bytes()
	reverseBytes(data)
	return data, nil
}

func (s *Ed25519Scalar) UnmarshalBinary(data []byte) error {
	if len(data) != 32 {
		return errors.New("invalid length for ed25519 scalar")
	}
	buf := make([]byte, 32)
	copy(buf, data)
	reverseBytes(buf)
	if _, err := s.value.SetCanonicalBytes(buf); err != nil {
		return errors.New("invalid bytes for ed25519 scalar")
	}
	return nil
}

func (s *Ed25519Scalar) Add(that Scalar) Scalar {
	other := ed25519CastScalar(that)
	s.value.Add(&s.value, &other.value)
	return s
}

func (s *Ed25519Scalar) Sub(that Scalar) Scalar {
	other := ed25519CastScalar(that)
	s.value.Subtract(&s.value, &other.value)
	return s
}

func (s *Ed25519Scalar) Mul(that Scalar) Scalar {
	other := ed25519CastScalar(that)
	s.value.Multiply(&s.value, &other.value)
	return s
}

func (s *Ed25519Scalar) Invert() Scalar {
	s.value.Invert(&s.value)
	return s
}

func (s *Ed25519Scalar) Negate() Scalar {
	s.value.Negate(&s.value)
	return s
}

func (s *Ed25519Scalar) Equal(that Scalar) bool {
	other := ed25519CastScalar(that)
	return s.value.Equal(&other.value) == 1
}

func (s *Ed25519Scalar) IsZero() bool {
	return s.value.Equal(edwards25519.NewScalar()) == 1
}

func (s *Ed25519Scalar) Set(that Scalar) Scalar {
	other := ed25519CastScalar(that)
	s.value.Set(&other.value)
	return s
}

func (s *Ed25519Scalar) SetNat(x *saferith.Nat) Scalar {
	buf := make([]byte, 32)
	new(saferith.Nat).Mod(x, ed25519Order).FillBytes(buf)
	reverseBytes(buf)
	if _, err := s.value.SetCanonicalBytes(buf); err != nil {
		panic(err)
	}
	return s
}

func (s *Ed25519Scalar) Act(that Point) Point {
	other := ed25519CastPoint(that)
	out := Ed25519{}.NewPoint().(*Ed25519Point)
	out.value.ScalarMult(&s.value, &other.value)
	return out
}

func (s *Ed25519Scalar) ActOnBase() Point {
	out := Ed25519{}.NewPoint().(*Ed25519Point)
	out.value.ScalarBaseMult(&s.value)
	return out
}

// Ed25519Point is an element of the prime order subgroup of edwards25519.
type Ed25519Point struct {
	value edwards25519.Point
}

func ed25519CastPoint(generic Point) *Ed25519Point {
	out, ok := generic.(*Ed25519Point)
	if !ok {
		panic(fmt.Sprintf("failed to convert to ed25519Point: %v", generic))
	}
	return out
}

func (*Ed25519Point) Curve() Curve {
	return Ed25519{}
}

func (p *Ed25519Point) MarshalBinary() ([]byte, error) {
	return p.value.Bytes(), nil
}

func (p *Ed25519Point) UnmarshalBinary(data []byte) error {
	if len(data) != 32 {
		return errors.New("invalid length for ed25519 point")
	}
	if _, err := p.value.SetBytes(data); err != nil {
		return errors.New("invalid bytes for ed25519 point")
	}
	return nil
}

func (p *Ed25519Point) Add(that Point) Point {
	other := ed25519CastPoint(that)
	out := Ed25519{}.NewPoint().(*Ed25519Point)
	out.value.Add(&p.value, &other.value)
	return out
}

func (p *Ed25519Point) Sub(that Point) Point {
	other := ed25519CastPoint(that)
	out := Ed25519{}.NewPoint().(*Ed25519Point)
	out.value.Subtract(&p.value, &other.value)
	return out
}

func (p *Ed25519Point) Negate() Point {
	out := Ed25519{}.NewPoint().(*Ed25519Point)
	out.value.Negate(&p.value)
	return out
}

func (p *Ed25519Point) Set(that Point) Point {
	other := ed25519CastPoint(that)
	p.value.Set(&other.value)
	return p
}

func (p *Ed25519Point) Equal(that Point) bool {
	other := ed25519CastPoint(that)
	return p.value.Equal(&other.value) == 1
}

func (p *Ed25519Point) IsIdentity() bool {
	return p.value.Equal(edwards25519.NewIdentityPoint()) == 1
}

func reverseBytes(buf []byte) {
	for i, j := 0, len(buf)-1; i < j; i, j = i+1, j-1 {
		buf[i], buf[j] = buf[j], buf[i]
	}
}
