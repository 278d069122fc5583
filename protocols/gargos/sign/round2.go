package sign

import (
	"fmt"

	"github.com/gargos-crypto/gargos/internal/round"
	"github.com/gargos-crypto/gargos/pkg/math/curve"
	"github.com/gargos-crypto/gargos/pkg/math/polynomial"
	"github.com/gargos-crypto/gargos/pkg/party"
	"github.com/gargos-crypto/gargos/protocols/gargos/config"
)

// This round assembles the nonce commitments and produces the response share.
type round2 struct {
	*round1

	// d is this signer's nonce, consumed by Finalize.
	d curve.Scalar
	// D collects the nonce commitments Dⱼ = dⱼ•G of all signers.
	D map[party.ID]curve.Point
}

type broadcast2 struct {
	round.ReliableBroadcastContent
	// D is the signer's nonce commitment for this session.
	D curve.Point
}

// StoreBroadcastMessage implements round.BroadcastRound.
func (r *round2) StoreBroadcastMessage(msg round.Message) error {
	body, ok := msg.Content.(*broadcast2)
	if !ok || body == nil {
		return round.ErrInvalidContent
	}
	if body.D == nil {
		return round.ErrNilFields
	}
	if body.D.IsIdentity() {
		return fmt.Errorf("party %s: nonce commitment is the identity", msg.From)
	}
	r.D[msg.From] = body.D
	return nil
}

// VerifyMessage implements round.Round.
func (r *round2) VerifyMessage(round.Message) error { return nil }

// StoreMessage implements round.Round.
func (r *round2) StoreMessage(round.Message) error { return nil }

// Finalize implements round.Round.
//
// Once every commitment for the session is in, it computes
//
//	R = Σⱼ Dⱼ
//	c = H(R, public key, message)
//	zᵢ = dᵢ + c•λᵢ•sᵢ
//
// with λᵢ the Lagrange coefficient of this signer for the session's signer
// set, and outputs the session transcript together with this signer's
// partial signature. The nonce is cleared so the round cannot respond twice.
func (r *round2) Finalize(chan<- *round.Message) (round.Session, error) {
	if r.d == nil {
		return r, ErrNonceReuse
	}
	if len(r.D) != r.N() {
		return r, ErrStaleCommitment
	}

	signers := r.PartyIDs()
	commitment := r.Group().NewPoint()
	for _, id := range signers {
		commitment = commitment.Add(r.D[id])
	}

	c := Challenge(commitment, r.config.PublicKey, r.message)
	lagrange := polynomial.Lagrange(r.Group(), signers)

	z := r.Group().NewScalar().Set(lagrange[r.SelfID()]).Mul(r.config.PrivateShare).Mul(c).Add(r.d)

	var tag []byte
	if r.config.Tracing != nil {
		dh := r.config.TracingSecret.Act(r.config.Tracing.Authority)
		var err error
		tag, err = config.TracingTag(r.config.ChainKey, dh, r.message)
		if err != nil {
			return r, err
		}
	}

	session := &Session{
		ID:          r.SSID(),
		Message:     r.message,
		SignerIDs:   signers,
		Commitments: party.NewPointMap(r.D),
	}
	partial := &PartialSignature{
		Index: r.SelfID(),
		D:     r.D[r.SelfID()],
		Z:     z,
		Tag:   tag,
	}

	r.d = nil

	return r.ResultRound(&Result{
		Session: session,
		Partial: partial,
	}), nil
}

// MessageContent implements round.Round.
func (round2) MessageContent() round.Content { return nil }

// RoundNumber implements round.Content.
func (broadcast2) RoundNumber() round.Number { return 2 }

// BroadcastContent implements round.BroadcastRound.
func (r *round2) BroadcastContent() round.BroadcastContent {
	return &broadcast2{
		D: r.Group().NewPoint(),
	}
}

// Number implements round.Round.
func (round2) Number() round.Number { return 2 }
