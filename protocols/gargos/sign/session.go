package sign

import (
	"errors"
	"fmt"

	"github.com/fxamacker/cbor/v2"
	"github.com/gargos-crypto/gargos/pkg/math/curve"
	"github.com/gargos-crypto/gargos/pkg/party"
)

// Session is the public transcript of one signing session. Every signer
// derives the same Session at the end of the protocol, and the combiner needs
// it to check partial signatures against the nonce commitments they were
// produced for.
type Session struct {
	// ID is the unique session identifier the nonces are bound to.
	ID []byte
	// Message is the message being signed.
	Message []byte
	// SignerIDs lists the signers that formed the session, sorted.
	SignerIDs party.IDSlice
	// Commitments maps each signer to the nonce commitment D they broadcast.
	Commitments *party.PointMap
}

// EmptySession returns a Session ready to be unmarshalled into.
func EmptySession(group curve.Curve) *Session {
	return &Session{
		Commitments: party.EmptyPointMap(group),
	}
}

// Validate checks that the transcript is complete and internally consistent.
func (s *Session) Validate() error {
	if s == nil {
		return errors.New("sign: nil session")
	}
	if len(s.ID) == 0 {
		return errors.New("sign: session without ID")
	}
	if len(s.SignerIDs) == 0 {
		return errors.New("sign: session without signers")
	}
	if !s.SignerIDs.Valid() {
		return errors.New("sign: session signer list is invalid")
	}
	if s.Commitments == nil || len(s.Commitments.Points) != len(s.SignerIDs) {
		return errors.New("sign: session commitment count does not match signer list")
	}
	for _, id := range s.SignerIDs {
		d, ok := s.Commitments.Points[id]
		if !ok {
			return fmt.Errorf("sign: session missing nonce commitment for party %s", id)
		}
		if d == nil || d.IsIdentity() {
			return fmt.Errorf("sign: session has degenerate nonce commitment for party %s", id)
		}
	}
	return nil
}

// R returns the combined nonce point, the sum of all signers' commitments.
// The session must be validated first.
func (s *Session) R() curve.Point {
	if len(s.SignerIDs) == 0 || s.Commitments == nil {
		return nil
	}
	first, ok := s.Commitments.Points[s.SignerIDs[0]]
	if !ok {
		return nil
	}
	r := first.Curve().NewPoint()
	for _, id := range s.SignerIDs {
		r = r.Add(s.Commitments.Points[id])
	}
	return r
}

// Challenge computes the challenge scalar for this session under the given
// public key.
func (s *Session) Challenge(public curve.Point) curve.Scalar {
	return Challenge(s.R(), public, s.Message)
}

type rawSession struct {
	ID          []byte
	Message     []byte
	SignerIDs   party.IDSlice
	Commitments *party.PointMap
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (s *Session) MarshalBinary() ([]byte, error) {
	return cbor.Marshal(rawSession{
		ID:          s.ID,
		Message:     s.Message,
		SignerIDs:   s.SignerIDs,
		Commitments: s.Commitments,
	})
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
// The receiver must come from EmptySession.
func (s *Session) UnmarshalBinary(data []byte) error {
	if s.Commitments == nil {
		return errors.New("sign: session must be initialized using EmptySession")
	}
	raw := rawSession{Commitments: s.Commitments}
	if err := cbor.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("sign: session: %w", err)
	}
	s.ID = raw.ID
	s.Message = raw.Message
	s.SignerIDs = raw.SignerIDs
	s.Commitments = raw.Commitments
	return s.Validate()
}
