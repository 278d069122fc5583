package trace

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/fxamacker/cbor/v2"
	"github.com/gargos-crypto/gargos/internal/types"
	"github.com/gargos-crypto/gargos/pkg/hash"
	"github.com/gargos-crypto/gargos/pkg/math/curve"
	"github.com/gargos-crypto/gargos/pkg/math/sample"
	zksch "github.com/gargos-crypto/gargos/pkg/zk/sch"
)

// Authorizer issues tracing warrants. Its verification key is distributed to
// the signers in their tracing config, so the authority cannot trace under an
// authorization the signers never agreed to.
type Authorizer struct {
	group  curve.Curve
	secret curve.Scalar
	public curve.Point
}

// NewAuthorizer samples a fresh warrant signing key.
func NewAuthorizer(rand io.Reader, group curve.Curve) *Authorizer {
	secret := sample.Scalar(rand, group)
	return &Authorizer{
		group:  group,
		secret: secret,
		public: secret.ActOnBase(),
	}
}

// PublicKey returns the key warrants are verified against.
func (a *Authorizer) PublicKey() curve.Point {
	return a.public
}

// Warrant authorizes tracing of one message under one tracing authority key.
type Warrant struct {
	// Message is the exact message tracing is authorized for.
	Message []byte
	// Proof is the authorizer's signature over the warrant scope.
	Proof *zksch.Proof
}

// warrantHash binds a warrant to its scope: the message and the tracing
// authority the authorization is addressed to.
func warrantHash(message []byte, authority curve.Point) *hash.Hash {
	h := hash.New(hash.TaggedBytes("Gargos Tracing Warrant", nil))
	_ = h.WriteAny(types.SigningMessage(message), authority)
	return h
}

// Authorize issues a warrant allowing the holder of the given tracing
// authority key to trace message.
func (a *Authorizer) Authorize(message []byte, authority curve.Point) *Warrant {
	return &Warrant{
		Message: message,
		Proof:   zksch.NewProof(warrantHash(message, authority), a.public, a.secret, nil),
	}
}

// Verify checks the warrant against the registered authorizer key, for
// exactly this message and tracing authority.
func (w *Warrant) Verify(authorizerKey curve.Point, message []byte, authority curve.Point) bool {
	if w == nil || w.Proof == nil {
		return false
	}
	if authorizerKey == nil || authorizerKey.IsIdentity() {
		return false
	}
	if authority == nil || authority.IsIdentity() {
		return false
	}
	if !bytes.Equal(w.Message, message) {
		return false
	}
	return w.Proof.Verify(warrantHash(message, authority), authorizerKey, nil)
}

// EmptyWarrant returns a Warrant ready to be unmarshalled into.
func EmptyWarrant(group curve.Curve) *Warrant {
	return &Warrant{
		Proof: zksch.EmptyProof(group),
	}
}

type rawWarrant struct {
	Message []byte
	Proof   *zksch.Proof
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (w *Warrant) MarshalBinary() ([]byte, error) {
	return cbor.Marshal(rawWarrant{Message: w.Message, Proof: w.Proof})
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler. The receiver must
// come from EmptyWarrant.
func (w *Warrant) UnmarshalBinary(data []byte) error {
	if w.Proof == nil {
		return errors.New("trace: warrant must be initialized using EmptyWarrant")
	}
	raw := rawWarrant{Proof: w.Proof}
	if err := cbor.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("trace: warrant: %w", err)
	}
	w.Message = raw.Message
	w.Proof = raw.Proof
	return nil
}
