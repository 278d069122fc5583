package sign

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/gargos-crypto/gargos/pkg/math/curve"
	"github.com/gargos-crypto/gargos/pkg/party"
)

// PartialSignature is one signer's contribution to a threshold signature.
type PartialSignature struct {
	// Index identifies the signer that produced this share.
	Index party.ID
	// D is the signer's nonce commitment for the session.
	D curve.Point
	// Z is the signer's response share, already weighted by the Lagrange
	// coefficient for the session's signer set.
	Z curve.Scalar
	// Tag is the deterministic tracing tag, empty when tracing is disabled.
	Tag []byte
}

// EmptyPartialSignature returns a PartialSignature ready to be unmarshalled into.
func EmptyPartialSignature(group curve.Curve) PartialSignature {
	return PartialSignature{
		D: group.NewPoint(),
		Z: group.NewScalar(),
	}
}

// Validate checks for nil or degenerate fields.
func (p *PartialSignature) Validate() error {
	if p == nil {
		return errors.New("sign: nil partial signature")
	}
	if !p.Index.Valid() {
		return fmt.Errorf("sign: partial signature with invalid index %d", p.Index)
	}
	if p.D == nil || p.D.IsIdentity() {
		return errors.New("sign: partial signature with identity nonce commitment")
	}
	if p.Z == nil || p.Z.IsZero() {
		return errors.New("sign: partial signature with zero response")
	}
	return nil
}

// MarshalBinary encodes the share as
//
//	index (2 bytes, big-endian) ‖ D ‖ Z ‖ tag length (1 byte) ‖ tag
//
// with D and Z in their canonical fixed-width form.
func (p *PartialSignature) MarshalBinary() ([]byte, error) {
	if p.D == nil || p.Z == nil {
		return nil, errors.New("sign: cannot marshal incomplete partial signature")
	}
	if len(p.Tag) > 255 {
		return nil, fmt.Errorf("sign: tracing tag too long (%d bytes)", len(p.Tag))
	}
	dBytes, err := p.D.MarshalBinary()
	if err != nil {
		return nil, err
	}
	zBytes, err := p.Z.MarshalBinary()
	if err != nil {
		return nil, err
	}

	data := make([]byte, 0, 2+len(dBytes)+len(zBytes)+1+len(p.Tag))
	data = binary.BigEndian.AppendUint16(data, uint16(p.Index))
	data = append(data, dBytes...)
	data = append(data, zBytes...)
	data = append(data, byte(len(p.Tag)))
	data = append(data, p.Tag...)
	return data, nil
}

// UnmarshalBinary decodes a share, failing with ErrInvalidEncoding on any
// malformed component. The receiver must come from EmptyPartialSignature.
func (p *PartialSignature) UnmarshalBinary(data []byte) error {
	if p.D == nil || p.Z == nil {
		return errors.New("sign: UnmarshalBinary called without EmptyPartialSignature")
	}
	group := p.D.Curve()
	pointLen := encodedPointSize(group)
	scalarLen := encodedScalarSize(group)

	minLen := 2 + pointLen + scalarLen + 1
	if len(data) < minLen {
		return fmt.Errorf("%w: partial signature: expected at least %d bytes, got %d", ErrInvalidEncoding, minLen, len(data))
	}

	index := party.ID(binary.BigEndian.Uint16(data[:2]))
	if !index.Valid() {
		return fmt.Errorf("%w: partial signature: invalid signer index", ErrInvalidEncoding)
	}
	rest := data[2:]

	if err := p.D.UnmarshalBinary(rest[:pointLen]); err != nil {
		return fmt.Errorf("%w: partial signature D: %s", ErrInvalidEncoding, err)
	}
	rest = rest[pointLen:]

	if err := p.Z.UnmarshalBinary(rest[:scalarLen]); err != nil {
		return fmt.Errorf("%w: partial signature Z: %s", ErrInvalidEncoding, err)
	}
	rest = rest[scalarLen:]

	tagLen := int(rest[0])
	rest = rest[1:]
	if len(rest) != tagLen {
		return fmt.Errorf("%w: partial signature tag: expected %d bytes, got %d", ErrInvalidEncoding, tagLen, len(rest))
	}

	p.Index = index
	if tagLen == 0 {
		p.Tag = nil
	} else {
		p.Tag = append([]byte{}, rest...)
	}
	return nil
}
