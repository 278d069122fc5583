package round

import (
	"github.com/gargos-crypto/gargos/pkg/party"
)

// Content represents the message payload, either broadcast or P2P, returned
// by a round during finalization.
type Content interface {
	RoundNumber() Number
}

// BroadcastContent wraps Content, and adds a flag indicating whether the
// content must be delivered with reliable broadcast.
type BroadcastContent interface {
	Content
	Reliable() bool
}

// ReliableBroadcastContent can be embedded in a broadcast message struct
// when its delivery must be guaranteed consistent across all parties.
type ReliableBroadcastContent struct{}

func (ReliableBroadcastContent) Reliable() bool { return true }

// NormalBroadcastContent can be embedded in a broadcast message struct when
// a simple best-effort broadcast suffices.
type NormalBroadcastContent struct{}

func (NormalBroadcastContent) Reliable() bool { return false }

type Message struct {
	From, To  party.ID
	Broadcast bool
	Content   Content
}
