package config

import (
	"errors"
	"fmt"

	"github.com/gargos-crypto/gargos/internal/types"
	"github.com/gargos-crypto/gargos/pkg/math/curve"
	"github.com/gargos-crypto/gargos/pkg/party"
)

// Public is the public portion of a Config. It is all a combiner, verifier
// or tracer ever needs, and contains no secret shares.
type Public struct {
	// Threshold is the minimum number of participants required to produce a signature.
	Threshold int
	// PublicKey is the group public key.
	PublicKey curve.Point
	// ChainKey is the shared randomness the participants agreed on.
	ChainKey types.RID
	// VerificationShares maps each participant to a commitment of their private share.
	VerificationShares *party.PointMap
	// Tracing is the public tracing information, or nil when tracing is disabled.
	Tracing *Tracing
}

// EmptyPublic creates an empty Public with a specific group, ready for unmarshalling.
func EmptyPublic(group curve.Curve) *Public {
	return &Public{
		PublicKey:          group.NewPoint(),
		VerificationShares: party.EmptyPointMap(group),
		Tracing:            EmptyTracing(group),
	}
}

// Curve returns the elliptic curve group of the public key.
func (p *Public) Curve() curve.Curve {
	return p.PublicKey.Curve()
}

// Validate checks that the public information is coherent.
func (p *Public) Validate() error {
	if p == nil {
		return errors.New("config: nil public info")
	}
	if p.PublicKey == nil || p.PublicKey.IsIdentity() {
		return errors.New("config: missing public key")
	}
	if err := p.ChainKey.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if p.VerificationShares == nil || len(p.VerificationShares.Points) == 0 {
		return errors.New("config: missing verification shares")
	}
	n := len(p.VerificationShares.Points)
	if p.Threshold < 1 || p.Threshold > n {
		return fmt.Errorf("config: invalid threshold %d for %d parties", p.Threshold, n)
	}
	if p.Tracing != nil {
		if err := p.Tracing.Validate(); err != nil {
			return fmt.Errorf("config: %w", err)
		}
	}
	return nil
}

// PartyIDs returns a sorted slice of all participants.
func (p *Public) PartyIDs() party.IDSlice {
	ids := make([]party.ID, 0, len(p.VerificationShares.Points))
	for id := range p.VerificationShares.Points {
		ids = append(ids, id)
	}
	return party.NewIDSlice(ids)
}
