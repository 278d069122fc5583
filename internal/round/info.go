package round

import (
	"github.com/gargos-crypto/gargos/pkg/math/curve"
	"github.com/gargos-crypto/gargos/pkg/party"
)

// Info carries the static parameters of one protocol execution, fixed
// before the first round starts.
type Info struct {
	// ProtocolID identifies the protocol being run.
	ProtocolID string
	// FinalRoundNumber is the number of communication rounds before output.
	FinalRoundNumber Number
	// SelfID is this party's ID.
	SelfID party.ID
	// PartyIDs lists the participants; order does not matter.
	PartyIDs []party.ID
	// Threshold is the minimum number of shares that produce a signature.
	Threshold int
	// Group is the curve the protocol operates over.
	Group curve.Curve
}
