package round

// Round is one step of a protocol. The handler drives it: verify and
// store each incoming message, then finalize once every expected
// message has arrived.
type Round interface {
	// VerifyMessage checks an incoming message's content. The content
	// has already been decoded into the type MessageContent returns.
	// It must not mutate round state; the handler may call it from
	// several goroutines at once.
	VerifyMessage(msg Message) error

	// StoreMessage records the verified content. It runs after
	// VerifyMessage, serialized by the handler.
	StoreMessage(msg Message) error

	// Finalize runs once all expected messages are stored, sending the
	// next round's messages on out. Returning the receiver with a nil
	// error signals a transient failure (full channel, entropy error)
	// and the handler may finalize again.
	//
	// The last round returns r.ResultRound(result). A detected abort
	// returns r.AbortRound(err, culprits...), still with a nil error.
	Finalize(out chan<- *Message) (Session, error)

	// MessageContent returns an empty content value for this round's
	// point-to-point message, ready to decode into. Rounds expecting
	// no P2P message return nil.
	MessageContent() Content

	// Number is this round's index. The first round is 1; terminal
	// rounds report 0.
	Number() Number
}

// BroadcastRound is a Round that also expects one broadcast message
// from each party.
type BroadcastRound interface {
	// StoreBroadcastMessage runs before VerifyMessage and StoreMessage,
	// which may rely on the stored broadcast content.
	StoreBroadcastMessage(msg Message) error

	// BroadcastContent returns an empty content value for this round's
	// broadcast message. The first round returns nil.
	BroadcastContent() BroadcastContent

	Round
}
