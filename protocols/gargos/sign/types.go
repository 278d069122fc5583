package sign

import (
	"errors"
	"fmt"

	"github.com/gargos-crypto/gargos/internal/types"
	"github.com/gargos-crypto/gargos/pkg/hash"
	"github.com/gargos-crypto/gargos/pkg/math/curve"
	"github.com/gargos-crypto/gargos/pkg/math/sample"
)

var (
	// ErrInvalidEncoding is returned when decoding a malformed artifact.
	ErrInvalidEncoding = errors.New("sign: invalid encoding")
	// ErrSessionReuse is returned when a session ID is reused with a different message.
	ErrSessionReuse = errors.New("sign: session ID already bound to a different message")
	// ErrNonceReuse is returned when a signing attempt would risk reusing a nonce.
	ErrNonceReuse = errors.New("sign: repeated session ID refused, nonce reuse risk")
	// ErrStaleCommitment is returned when the respond phase starts before
	// every participant's nonce commitment is known.
	ErrStaleCommitment = errors.New("sign: nonce commitments missing for session")
)

// Challenge derives the Schnorr challenge c = H(R, public, m).
//
// It uses a fresh domain-separated hash, so any third party can recompute it
// from the signature and the message alone.
func Challenge(R, public curve.Point, message []byte) curve.Scalar {
	challengeHash := hash.New(hash.TaggedBytes("Gargos Schnorr Challenge", nil))
	_ = challengeHash.WriteAny(R, public, types.SigningMessage(message))
	return sample.Scalar(challengeHash.Digest(), public.Curve())
}

// Signature is a Schnorr signature, exactly as compact as a single-signer one.
//
// It claims to satisfy
//
//	Z⋅G == R + H(R, Y, m)⋅Y
//
// for a public key Y.
type Signature struct {
	// R is the aggregate nonce commitment.
	R curve.Point
	// Z is the response scalar.
	Z curve.Scalar
}

// EmptySignature returns a Signature ready to be unmarshalled into.
func EmptySignature(group curve.Curve) Signature {
	return Signature{
		R: group.NewPoint(),
		Z: group.NewScalar(),
	}
}

// Verify checks the signature equation against a public key and message.
// It rejects an identity R and a zero Z outright.
func (sig Signature) Verify(public curve.Point, message []byte) bool {
	if sig.R == nil || sig.Z == nil || public == nil {
		return false
	}
	if sig.R.IsIdentity() || sig.Z.IsZero() || public.IsIdentity() {
		return false
	}

	c := Challenge(sig.R, public, message)

	expected := c.Act(public)
	expected = expected.Add(sig.R)

	actual := sig.Z.ActOnBase()

	return actual.Equal(expected)
}

// MarshalBinary encodes the signature as R ‖ Z, both in their canonical
// fixed-width form.
func (sig Signature) MarshalBinary() ([]byte, error) {
	rBytes, err := sig.R.MarshalBinary()
	if err != nil {
		return nil, err
	}
	zBytes, err := sig.Z.MarshalBinary()
	if err != nil {
		return nil, err
	}
	return append(rBytes, zBytes...), nil
}

// UnmarshalBinary decodes R ‖ Z. The receiver must come from EmptySignature.
func (sig *Signature) UnmarshalBinary(data []byte) error {
	if sig.R == nil || sig.Z == nil {
		return errors.New("sign: UnmarshalBinary called without EmptySignature")
	}
	group := sig.R.Curve()
	pointLen := encodedPointSize(group)
	scalarLen := encodedScalarSize(group)
	if len(data) != pointLen+scalarLen {
		return fmt.Errorf("%w: signature: expected %d bytes, got %d", ErrInvalidEncoding, pointLen+scalarLen, len(data))
	}
	if err := sig.R.UnmarshalBinary(data[:pointLen]); err != nil {
		return fmt.Errorf("%w: signature R: %s", ErrInvalidEncoding, err)
	}
	if err := sig.Z.UnmarshalBinary(data[pointLen:]); err != nil {
		return fmt.Errorf("%w: signature Z: %s", ErrInvalidEncoding, err)
	}
	return nil
}

// encodedPointSize returns the length of the canonical point encoding for the group.
func encodedPointSize(group curve.Curve) int {
	data, err := group.NewBasePoint().MarshalBinary()
	if err != nil {
		panic(fmt.Sprintf("sign: cannot size point encoding: %s", err))
	}
	return len(data)
}

// encodedScalarSize returns the length of the canonical scalar encoding for the group.
func encodedScalarSize(group curve.Curve) int {
	data, err := group.NewScalar().MarshalBinary()
	if err != nil {
		panic(fmt.Sprintf("sign: cannot size scalar encoding: %s", err))
	}
	return len(data)
}
