package round

import (
	"github.com/gargos-crypto/gargos/pkg/hash"
	"github.com/gargos-crypto/gargos/pkg/math/curve"
	"github.com/gargos-crypto/gargos/pkg/party"
)

// Session is a Round together with the execution-wide context it runs
// in: the participant set, the group, and the running transcript.
// Rounds obtain all of it by embedding *Helper.
type Session interface {
	Round

	// Group is the curve the session operates over.
	Group() curve.Curve
	// Hash returns a clone of the current session transcript.
	Hash() *hash.Hash
	// ProtocolID identifies the protocol being run.
	ProtocolID() string
	// FinalRoundNumber is the number of communication rounds before output.
	FinalRoundNumber() Number
	// SSID is the digest identifying this protocol execution.
	SSID() []byte
	// SelfID is this party's ID.
	SelfID() party.ID
	// PartyIDs lists all participants, sorted.
	PartyIDs() party.IDSlice
	// OtherPartyIDs lists all participants except this party, sorted.
	OtherPartyIDs() party.IDSlice
	// Threshold is the minimum number of shares that produce a signature.
	Threshold() int
	// N is the number of participants.
	N() int
}
