package protocol

import (
	"fmt"

	"github.com/gargos-crypto/gargos/internal/round"
	"github.com/gargos-crypto/gargos/pkg/hash"
	"github.com/gargos-crypto/gargos/pkg/party"
)

// Message is a wrapper for a message generated by one of the protocol rounds.
// It contains additional headers to route it to the intended recipient, and
// can be serialized for transport with cbor.Marshal or equivalent.
type Message struct {
	// SSID is a byte string which uniquely identifies the session this message belongs to.
	SSID []byte
	// From is the party.ID of the sender.
	From party.ID
	// To is the intended recipient. If To == 0, the message should be sent to all parties.
	To party.ID
	// Protocol identifies the protocol this message belongs to.
	Protocol string
	// RoundNumber is the index of the round this message belongs to.
	RoundNumber round.Number
	// Data is the serialized content of the round message.
	Data []byte
	// Broadcast indicates whether this message should be reliably broadcast to all participants.
	Broadcast bool
	// BroadcastVerification is the hash of all broadcast messages from the previous round,
	// and is used to simulate an echo broadcast.
	BroadcastVerification []byte
}

// String implements fmt.Stringer.
func (m Message) String() string {
	return fmt.Sprintf("message: round %d, from: %s, to: %s, protocol: %s", m.RoundNumber, m.From, m.To, m.Protocol)
}

// IsFor returns true if the message is intended for the designated party.
func (m Message) IsFor(id party.ID) bool {
	if m.From == id {
		return false
	}
	return m.To == 0 || m.To == id
}

// Hash returns a digest of the message, including its headers.
// It can be signed to provide authentication on the transport layer.
func (m *Message) Hash() []byte {
	var broadcast byte
	if m.Broadcast {
		broadcast = 1
	}
	h := hash.New(
		hash.TaggedBytes("SSID", m.SSID),
		m.From,
		m.To,
		hash.TaggedBytes("Protocol", []byte(m.Protocol)),
		m.RoundNumber,
		hash.TaggedBytes("Content", m.Data),
		hash.TaggedBytes("Broadcast", []byte{broadcast}),
		hash.TaggedBytes("BroadcastVerification", m.BroadcastVerification),
	)
	return h.Sum()
}
