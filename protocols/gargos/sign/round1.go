package sign

import (
	"crypto/rand"

	"github.com/gargos-crypto/gargos/internal/round"
	"github.com/gargos-crypto/gargos/pkg/math/curve"
	"github.com/gargos-crypto/gargos/pkg/math/sample"
	"github.com/gargos-crypto/gargos/pkg/party"
	"github.com/gargos-crypto/gargos/protocols/gargos/config"
)

// This round samples the nonce and broadcasts its commitment.
//
// The nonce is tied to this session only: it lives in the round state, is
// consumed when the response is produced, and is never persisted or derived
// from the message.
type round1 struct {
	*round.Helper

	// config is this signer's long-term key material.
	config *config.Config
	// message is the message being signed.
	message []byte
}

// VerifyMessage implements round.Round.
func (r *round1) VerifyMessage(round.Message) error { return nil }

// StoreMessage implements round.Round.
func (r *round1) StoreMessage(round.Message) error { return nil }

// Finalize implements round.Round.
//
// It samples the nonce dᵢ, computes the commitment Dᵢ = dᵢ•G and broadcasts it.
func (r *round1) Finalize(out chan<- *round.Message) (round.Session, error) {
	d := sample.Scalar(rand.Reader, r.Group())
	D := d.ActOnBase()

	if err := r.BroadcastMessage(out, &broadcast2{D: D}); err != nil {
		return r, err
	}

	return &round2{
		round1: r,
		d:      d,
		D:      map[party.ID]curve.Point{r.SelfID(): D},
	}, nil
}

// MessageContent implements round.Round.
func (round1) MessageContent() round.Content { return nil }

// Number implements round.Round.
func (round1) Number() round.Number { return 1 }
