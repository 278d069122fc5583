package keygen

import (
	"errors"
	"fmt"

	"github.com/gargos-crypto/gargos/internal/round"
	"github.com/gargos-crypto/gargos/internal/types"
	"github.com/gargos-crypto/gargos/pkg/hash"
	"github.com/gargos-crypto/gargos/pkg/math/curve"
	"github.com/gargos-crypto/gargos/pkg/math/polynomial"
	"github.com/gargos-crypto/gargos/pkg/party"
	"github.com/gargos-crypto/gargos/protocols/gargos/config"
)

// round3 verifies the received shares and assembles the config.
type round3 struct {
	*round2
	// shareFrom[l] is the share fₗ(i) dealt to us by l, ourselves included.
	shareFrom map[party.ID]curve.Scalar
}

type broadcast3 struct {
	round.ReliableBroadcastContent
	// C_i is the sender's chain key contribution.
	C_i types.RID
	// Decommitment opens the commitment from the previous round.
	Decommitment hash.Decommitment
}

type message3 struct {
	// F_li is the share fₗ(i) dealt to the receiver.
	F_li curve.Scalar
}

// StoreBroadcastMessage implements round.BroadcastRound.
func (r *round3) StoreBroadcastMessage(msg round.Message) error {
	from := msg.From
	body, ok := msg.Content.(*broadcast3)
	if !ok || body == nil {
		return round.ErrInvalidContent
	}
	if err := body.C_i.Validate(); err != nil {
		return fmt.Errorf("party %s: %w", from, err)
	}
	if err := body.Decommitment.Validate(); err != nil {
		return fmt.Errorf("party %s: %w", from, err)
	}
	if !r.HashForID(from).Decommit(r.ChainKeyCommitments[from], body.Decommitment, body.C_i) {
		return fmt.Errorf("party %s: failed to decommit chain key contribution", from)
	}
	r.ChainKeys[from] = body.C_i
	return nil
}

// VerifyMessage implements round.Round.
//
// Checks the received share against the sender's committed polynomial, so a
// corrupted share is caught before it can poison the sum.
func (r *round3) VerifyMessage(msg round.Message) error {
	from := msg.From
	body, ok := msg.Content.(*message3)
	if !ok || body == nil {
		return round.ErrInvalidContent
	}
	if body.F_li == nil {
		return round.ErrNilFields
	}
	expected := r.Phi[from].Evaluate(r.SelfID().Scalar(r.Group()))
	if !body.F_li.ActOnBase().Equal(expected) {
		return fmt.Errorf("party %s: share does not match the committed polynomial", from)
	}
	return nil
}

// StoreMessage implements round.Round.
func (r *round3) StoreMessage(msg round.Message) error {
	r.shareFrom[msg.From] = msg.Content.(*message3).F_li
	return nil
}

// Finalize implements round.Round.
//
// The private share is the sum of all dealt shares, the shared polynomial
// commitment is the sum of everyone's commitments, and the chain key is the
// XOR of all decommitted contributions. Every participant derives the same
// public key and verification shares.
func (r *round3) Finalize(chan<- *round.Message) (round.Session, error) {
	if len(r.shareFrom) != r.N() || len(r.ChainKeys) != r.N() {
		return r.AbortRound(errors.New("keygen: missing contributions")), nil
	}

	chainKey := types.EmptyRID()
	for _, id := range r.PartyIDs() {
		chainKey.XOR(r.ChainKeys[id])
	}

	privateShare := r.Group().NewScalar()
	for _, id := range r.PartyIDs() {
		privateShare.Add(r.shareFrom[id])
	}

	exponents := make([]*polynomial.Exponent, 0, r.N())
	for _, id := range r.PartyIDs() {
		exponents = append(exponents, r.Phi[id])
	}
	Phi, err := polynomial.Sum(exponents)
	if err != nil {
		return r.AbortRound(fmt.Errorf("keygen: %w", err)), nil
	}

	verificationShares := make(map[party.ID]curve.Point, r.N())
	for _, id := range r.PartyIDs() {
		verificationShares[id] = Phi.Evaluate(id.Scalar(r.Group()))
	}
	if !verificationShares[r.SelfID()].Equal(privateShare.ActOnBase()) {
		return r.AbortRound(errors.New("keygen: resulting share is inconsistent")), nil
	}

	c := &config.Config{
		ID:                 r.SelfID(),
		Threshold:          r.threshold,
		PrivateShare:       privateShare,
		PublicKey:          Phi.Constant(),
		ChainKey:           chainKey,
		VerificationShares: party.NewPointMap(verificationShares),
	}
	if r.tracing() {
		c.Tracing = &config.Tracing{
			Authority: r.authority,
			Warrant:   r.warrant,
			Registry:  party.NewPointMap(r.U),
		}
		c.TracingSecret = r.u_i
	}
	if err := c.Validate(); err != nil {
		return r.AbortRound(fmt.Errorf("keygen: %w", err)), nil
	}
	return r.ResultRound(c), nil
}

// MessageContent implements round.Round.
func (r *round3) MessageContent() round.Content {
	return &message3{F_li: r.Group().NewScalar()}
}

// RoundNumber implements round.Content.
func (broadcast3) RoundNumber() round.Number { return 3 }

// RoundNumber implements round.Content.
func (message3) RoundNumber() round.Number { return 3 }

// BroadcastContent implements round.BroadcastRound.
func (round3) BroadcastContent() round.BroadcastContent { return &broadcast3{} }

// Number implements round.Round.
func (round3) Number() round.Number { return 3 }
