package keygen

import (
	"fmt"

	"github.com/gargos-crypto/gargos/internal/round"
	"github.com/gargos-crypto/gargos/internal/types"
	"github.com/gargos-crypto/gargos/pkg/hash"
	"github.com/gargos-crypto/gargos/pkg/math/curve"
	"github.com/gargos-crypto/gargos/pkg/math/polynomial"
	"github.com/gargos-crypto/gargos/pkg/party"
	zksch "github.com/gargos-crypto/gargos/pkg/zk/sch"
)

// round2 checks everyone's committed polynomial and deals out the shares.
type round2 struct {
	*round1
	// f_i is this participant's sharing polynomial. It is dropped once the
	// shares have been dealt.
	f_i *polynomial.Polynomial
	// Phi collects every participant's polynomial commitment.
	//
	// Phi[l] commits to fₗ, so Phi[l].Constant() is aₗ•G.
	Phi map[party.ID]*polynomial.Exponent
	// ChainKeys collects the decommitted chain key contributions.
	ChainKeys map[party.ID]types.RID
	// ChainKeyDecommitment opens our own chain key commitment next round.
	ChainKeyDecommitment hash.Decommitment
	// ChainKeyCommitments holds the commitments received this round.
	ChainKeyCommitments map[party.ID]hash.Commitment
	// u_i is our tracing secret, nil when tracing is disabled.
	u_i curve.Scalar
	// U collects the registered tracing points.
	U map[party.ID]curve.Point
}

type broadcast2 struct {
	round.ReliableBroadcastContent
	// Phi_i commits to the sender's sharing polynomial.
	Phi_i *polynomial.Exponent
	// Sigma_i proves knowledge of the secret contribution fᵢ(0).
	Sigma_i *zksch.Proof
	// Commitment hides the sender's chain key contribution until everyone
	// has committed.
	Commitment hash.Commitment
	// U_i is the sender's tracing point, nil when tracing is disabled.
	U_i curve.Point
	// Tau_i proves knowledge of the tracing secret behind U_i.
	Tau_i *zksch.Proof
}

// StoreBroadcastMessage implements round.BroadcastRound.
func (r *round2) StoreBroadcastMessage(msg round.Message) error {
	from := msg.From
	body, ok := msg.Content.(*broadcast2)
	if !ok || body == nil {
		return round.ErrInvalidContent
	}
	if body.Phi_i == nil || !body.Sigma_i.IsValid() {
		return round.ErrNilFields
	}
	if err := body.Commitment.Validate(); err != nil {
		return fmt.Errorf("party %s: %w", from, err)
	}
	if body.Phi_i.Degree() != uint32(r.threshold-1) {
		return fmt.Errorf("party %s: polynomial has degree %d, expected %d", from, body.Phi_i.Degree(), r.threshold-1)
	}
	if !body.Sigma_i.Verify(r.HashForID(from), body.Phi_i.Constant(), nil) {
		return fmt.Errorf("party %s: failed to prove knowledge of the secret contribution", from)
	}
	if r.tracing() {
		if body.U_i == nil || body.U_i.IsIdentity() {
			return fmt.Errorf("party %s: missing tracing point", from)
		}
		if !body.Tau_i.Verify(r.HashForID(from), body.U_i, nil) {
			return fmt.Errorf("party %s: failed to prove knowledge of the tracing secret", from)
		}
		r.U[from] = body.U_i
	}
	r.Phi[from] = body.Phi_i
	r.ChainKeyCommitments[from] = body.Commitment
	return nil
}

// VerifyMessage implements round.Round.
func (round2) VerifyMessage(round.Message) error { return nil }

// StoreMessage implements round.Round.
func (round2) StoreMessage(round.Message) error { return nil }

// Finalize implements round.Round.
//
// Sends each participant their share fᵢ(l) over the direct channel and
// decommits the chain key contribution. The sharing polynomial is dropped
// afterwards; only the share dealt to ourselves survives.
func (r *round2) Finalize(out chan<- *round.Message) (round.Session, error) {
	if err := r.BroadcastMessage(out, &broadcast3{
		C_i:          r.ChainKeys[r.SelfID()],
		Decommitment: r.ChainKeyDecommitment,
	}); err != nil {
		return r, err
	}

	for _, l := range r.OtherPartyIDs() {
		if err := r.SendMessage(out, &message3{
			F_li: r.f_i.Evaluate(l.Scalar(r.Group())),
		}, l); err != nil {
			return r, err
		}
	}

	selfShare := r.f_i.Evaluate(r.SelfID().Scalar(r.Group()))
	r.f_i = nil
	return &round3{
		round2:    r,
		shareFrom: map[party.ID]curve.Scalar{r.SelfID(): selfShare},
	}, nil
}

// MessageContent implements round.Round.
func (round2) MessageContent() round.Content { return nil }

// RoundNumber implements round.Content.
func (broadcast2) RoundNumber() round.Number { return 2 }

// BroadcastContent implements round.BroadcastRound.
func (r *round2) BroadcastContent() round.BroadcastContent {
	return &broadcast2{
		Phi_i:   polynomial.EmptyExponent(r.Group()),
		Sigma_i: zksch.EmptyProof(r.Group()),
		U_i:     r.Group().NewPoint(),
		Tau_i:   zksch.EmptyProof(r.Group()),
	}
}

// Number implements round.Round.
func (round2) Number() round.Number { return 2 }
