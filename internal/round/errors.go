package round

import "errors"

var (
	// ErrOutChanFull is returned when the out channel is full, and the protocol
	// cannot send its message. The round can be finalized again once the channel
	// has been drained.
	ErrOutChanFull = errors.New("round: out channel is full")
	// ErrInvalidContent is returned when the round is given a message whose content
	// does not match the expected type for this round.
	ErrInvalidContent = errors.New("round: message content is invalid")
	// ErrNilFields is returned when the message content contains unset fields.
	ErrNilFields = errors.New("round: message content contains nil fields")
)
