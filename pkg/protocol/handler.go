package protocol

import (
	"bytes"
	"errors"
	"fmt"
	"sync"

	"github.com/fxamacker/cbor/v2"
	"github.com/gargos-crypto/gargos/internal/round"
	"github.com/gargos-crypto/gargos/pkg/hash"
	"github.com/gargos-crypto/gargos/pkg/party"
	"github.com/rs/zerolog"
)

// StartFunc is a function that creates the first round of a protocol,
// initialized with the session information.
//
// An optional sessionID can be provided, which should be unique among all
// protocol executions sharing the same set of participants.
type StartFunc func(sessionID []byte) (round.Session, error)

// Handler represents an execution of a protocol from the perspective of one party.
type Handler interface {
	// Result returns the protocol result, or an error if the protocol aborted
	// or has not yet finished.
	Result() (interface{}, error)
	// Listen returns a channel with outgoing messages that must be sent to other
	// parties. The channel is closed when the protocol finishes or aborts.
	Listen() <-chan *Message
	// Stop aborts the protocol execution.
	Stop()
	// CanAccept checks whether the message is addressed to this protocol execution.
	CanAccept(msg *Message) bool
	// Accept advances the protocol execution after receiving a message.
	Accept(msg *Message)
}

// MultiHandler drives the rounds of a protocol with any number of participants.
// Messages are fed with Accept, and outgoing ones are read from Listen.
type MultiHandler struct {
	currentRound    round.Session
	rounds          map[round.Number]round.Session
	err             *Error
	result          interface{}
	messages        map[round.Number]map[party.ID]*Message
	broadcast       map[round.Number]map[party.ID]*Message
	broadcastHashes map[round.Number][]byte
	out             chan *Message
	closed          bool
	mtx             sync.Mutex

	Log zerolog.Logger
}

// NewMultiHandler starts a protocol execution from the given StartFunc.
// The first round is finalized immediately, so outgoing messages may be
// available on Listen straight away.
func NewMultiHandler(create StartFunc, sessionID []byte) (*MultiHandler, error) {
	r, err := create(sessionID)
	if err != nil {
		return nil, fmt.Errorf("protocol: failed to create first round: %w", err)
	}
	h := &MultiHandler{
		currentRound:    r,
		rounds:          map[round.Number]round.Session{r.Number(): r},
		messages:        newQueue(r.OtherPartyIDs(), r.FinalRoundNumber()),
		broadcast:       newQueue(r.PartyIDs(), r.FinalRoundNumber()),
		broadcastHashes: map[round.Number][]byte{},
		out:             make(chan *Message, 2*r.N()),
	}
	h.Log = zerolog.New(zerolog.NewConsoleWriter()).Level(zerolog.InfoLevel).With().
		Str("protocol", r.ProtocolID()).
		Stringer("party", r.SelfID()).
		Int("round", int(r.Number())).
		Stack().
		Logger()
	h.Log.Info().Msg("start")
	h.finalize()
	return h, nil
}

// Result returns the protocol result if the execution finished successfully.
func (h *MultiHandler) Result() (interface{}, error) {
	h.mtx.Lock()
	defer h.mtx.Unlock()
	if h.result != nil {
		return h.result, nil
	}
	if h.err != nil {
		return nil, *h.err
	}
	return nil, errors.New("protocol: not finished")
}

// Listen returns a channel with outgoing messages that must be sent to other
// parties. A message should be reliably broadcast if msg.Broadcast is true.
// The channel is closed when the protocol finishes or aborts.
func (h *MultiHandler) Listen() <-chan *Message {
	h.mtx.Lock()
	defer h.mtx.Unlock()
	return h.out
}

// CanAccept returns true if the message is addressed to this protocol execution.
// It does not check whether the message content is valid for the current round.
func (h *MultiHandler) CanAccept(msg *Message) bool {
	h.mtx.Lock()
	defer h.mtx.Unlock()
	return h.canAccept(msg)
}

func (h *MultiHandler) canAccept(msg *Message) bool {
	r := h.currentRound
	if msg == nil || r == nil {
		return false
	}
	if !msg.IsFor(r.SelfID()) {
		return false
	}
	if msg.Protocol != r.ProtocolID() {
		return false
	}
	if !bytes.Equal(msg.SSID, r.SSID()) {
		return false
	}
	if !r.PartyIDs().Contains(msg.From) {
		return false
	}
	if msg.Data == nil {
		return false
	}
	if msg.RoundNumber > r.FinalRoundNumber() {
		return false
	}
	// Messages from previous rounds are no longer relevant, but round 0
	// indicates an abort from another party and is always accepted.
	if msg.RoundNumber < r.Number() && msg.RoundNumber > 0 {
		return false
	}
	return true
}

// Accept tries to process the given message. If an abort occurs, the channel
// returned by Listen is closed and Result returns an Error.
//
// This method may be called concurrently.
func (h *MultiHandler) Accept(msg *Message) {
	h.mtx.Lock()
	defer h.mtx.Unlock()

	if !h.canAccept(msg) || h.err != nil || h.result != nil || h.duplicate(msg) {
		return
	}

	// A message with round number 0 is an abort from another party.
	if msg.RoundNumber == 0 {
		h.abort(fmt.Errorf("aborted by other party with error: %q", msg.Data), msg.From)
		return
	}

	h.store(msg)
	if h.currentRound.Number() != msg.RoundNumber {
		return
	}

	if msg.Broadcast {
		if err := h.verifyBroadcastMessage(msg); err != nil {
			h.abort(err, msg.From)
			return
		}
	} else {
		if err := h.verifyMessage(msg); err != nil {
			h.abort(err, msg.From)
			return
		}
	}

	h.finalize()
}

// Stop cancels the current execution of the protocol and alerts the other parties.
func (h *MultiHandler) Stop() {
	h.mtx.Lock()
	defer h.mtx.Unlock()
	if h.err == nil && h.result == nil {
		h.abort(errors.New("aborted by user"), h.currentRound.SelfID())
	}
}

func (h *MultiHandler) verifyBroadcastMessage(msg *Message) error {
	r, ok := h.rounds[msg.RoundNumber]
	if !ok {
		return nil
	}

	roundMsg, err := getRoundMessage(msg, r)
	if err != nil {
		return err
	}

	b, ok := r.(round.BroadcastRound)
	if !ok {
		return errors.New("got broadcast message for non broadcast round")
	}
	if err = b.StoreBroadcastMessage(roundMsg); err != nil {
		return fmt.Errorf("round %d: %w", r.Number(), err)
	}

	// The P2P message from the same sender may have arrived first,
	// in which case it is waiting for this broadcast.
	if !expectsNormalMessage(r) {
		return nil
	}
	msg = h.messages[msg.RoundNumber][msg.From]
	if msg == nil {
		return nil
	}
	return h.verifyMessage(msg)
}

func (h *MultiHandler) verifyMessage(msg *Message) error {
	r, ok := h.rounds[msg.RoundNumber]
	if !ok {
		return nil
	}

	// Delay P2P messages until the sender's broadcast has been stored.
	if _, ok = r.(round.BroadcastRound); ok {
		q := h.broadcast[msg.RoundNumber]
		if q == nil || q[msg.From] == nil {
			return nil
		}
	}

	roundMsg, err := getRoundMessage(msg, r)
	if err != nil {
		return err
	}

	if err = r.VerifyMessage(roundMsg); err != nil {
		return fmt.Errorf("round %d: %w", r.Number(), err)
	}
	if err = r.StoreMessage(roundMsg); err != nil {
		return fmt.Errorf("round %d: %w", r.Number(), err)
	}
	return nil
}

func (h *MultiHandler) finalize() {
	if !h.receivedAll() {
		return
	}
	if !h.checkBroadcastHash() {
		h.abort(errors.New("broadcast verification failed"))
		return
	}

	out := make(chan *round.Message, h.currentRound.N()+1)
	// The channel is large enough for all messages of one round,
	// so Finalize should never block on it.
	r, err := h.currentRound.Finalize(out)
	close(out)
	if err != nil || r == nil {
		h.abort(err, h.currentRound.SelfID())
		return
	}

	for roundMsg := range out {
		data, err := cbor.Marshal(roundMsg.Content)
		if err != nil {
			h.abort(fmt.Errorf("failed to marshal message for round %d: %w", roundMsg.Content.RoundNumber(), err), h.currentRound.SelfID())
			return
		}
		msg := &Message{
			SSID:        r.SSID(),
			From:        r.SelfID(),
			To:          roundMsg.To,
			Protocol:    r.ProtocolID(),
			RoundNumber: roundMsg.Content.RoundNumber(),
			Data:        data,
			Broadcast:   roundMsg.Broadcast,
			// Attach the hash of the broadcasts of the round we just finalized,
			// so the recipients can verify they all got the same ones.
			BroadcastVerification: h.broadcastHashes[roundMsg.Content.RoundNumber()-1],
		}
		if msg.Broadcast {
			// We also store our own broadcast so that it is included
			// in the echo hash.
			h.store(msg)
		}
		h.out <- msg
	}

	roundNumber := r.Number()
	// A round with the same number as the current one is still waiting for input.
	if roundNumber == h.currentRound.Number() {
		return
	}

	switch R := r.(type) {
	case *round.Abort:
		h.abort(R.Err, R.Culprits...)
		return
	case *round.Output:
		h.result = R.Result
		h.Log.Info().Msg("success")
		h.abort(nil)
		return
	default:
	}

	h.rounds[roundNumber] = r
	h.currentRound = r
	h.Log.UpdateContext(func(c zerolog.Context) zerolog.Context {
		return c.Int("round", int(roundNumber))
	})
	h.Log.Info().Msg("round advanced")

	// Replay the messages that arrived early for this round.
	// Our own broadcast was never meant to be processed.
	if _, ok := r.(round.BroadcastRound); ok {
		for _, msg := range h.broadcast[roundNumber] {
			if msg == nil || msg.From == r.SelfID() {
				continue
			}
			if err := h.verifyBroadcastMessage(msg); err != nil {
				h.abort(err, msg.From)
				return
			}
		}
	} else {
		for _, msg := range h.messages[roundNumber] {
			if msg == nil {
				continue
			}
			if err := h.verifyMessage(msg); err != nil {
				h.abort(err, msg.From)
				return
			}
		}
	}

	h.finalize()
}

// receivedAll checks whether all messages for the current round have been stored.
// Once all broadcasts are in, it computes the echo hash for the round.
func (h *MultiHandler) receivedAll() bool {
	r := h.currentRound
	number := r.Number()

	if _, ok := r.(round.BroadcastRound); ok {
		q := h.broadcast[number]
		if q == nil {
			return true
		}
		for _, id := range r.PartyIDs() {
			if q[id] == nil {
				return false
			}
		}

		if h.broadcastHashes[number] == nil {
			hashState := r.Hash()
			for _, id := range r.PartyIDs() {
				_ = hashState.WriteAny(hash.TaggedBytes("Message", q[id].Hash()))
			}
			h.broadcastHashes[number] = hashState.Sum()
		}
	}

	if expectsNormalMessage(r) {
		q := h.messages[number]
		if q == nil {
			return true
		}
		for _, id := range r.OtherPartyIDs() {
			if q[id] == nil {
				return false
			}
		}
	}
	return true
}

// checkBroadcastHash verifies that all parties attached the same echo hash
// of the previous round's broadcasts.
func (h *MultiHandler) checkBroadcastHash() bool {
	number := h.currentRound.Number()
	previousHash := h.broadcastHashes[number-1]
	if previousHash == nil {
		return true
	}

	for _, msg := range h.messages[number] {
		if msg != nil && !bytes.Equal(previousHash, msg.BroadcastVerification) {
			return false
		}
	}
	for _, msg := range h.broadcast[number] {
		if msg != nil && !bytes.Equal(previousHash, msg.BroadcastVerification) {
			return false
		}
	}
	return true
}

func (h *MultiHandler) duplicate(msg *Message) bool {
	if msg.RoundNumber == 0 {
		return false
	}
	var q map[party.ID]*Message
	if msg.Broadcast {
		q = h.broadcast[msg.RoundNumber]
	} else {
		q = h.messages[msg.RoundNumber]
	}
	// Unknown round numbers were never allocated a queue, so the message
	// cannot be expected.
	if q == nil {
		return true
	}
	return q[msg.From] != nil
}

func (h *MultiHandler) store(msg *Message) {
	var q map[party.ID]*Message
	if msg.Broadcast {
		q = h.broadcast[msg.RoundNumber]
	} else {
		q = h.messages[msg.RoundNumber]
	}
	if q == nil || q[msg.From] != nil {
		return
	}
	q[msg.From] = msg
}

// abort stops the execution. When err is non-nil, the other parties are
// notified with a round number 0 message carrying the error string.
func (h *MultiHandler) abort(err error, culprits ...party.ID) {
	if err != nil {
		h.err = &Error{
			Culprits: culprits,
			Err:      err,
		}
		h.Log.Error().Err(err).Msg("abort")
		select {
		case h.out <- &Message{
			SSID:     h.currentRound.SSID(),
			From:     h.currentRound.SelfID(),
			Protocol: h.currentRound.ProtocolID(),
			Data:     []byte(err.Error()),
		}:
		default:
		}
	}
	h.stop()
}

func (h *MultiHandler) stop() {
	if !h.closed {
		h.closed = true
		close(h.out)
	}
}

func expectsNormalMessage(r round.Session) bool {
	return r.MessageContent() != nil
}

// getRoundMessage decodes a Message into a round.Message for the given round,
// using the round's empty content as the decoding target.
func getRoundMessage(msg *Message, r round.Session) (round.Message, error) {
	var content round.Content
	if msg.Broadcast {
		b, ok := r.(round.BroadcastRound)
		if !ok {
			return round.Message{}, errors.New("got broadcast message for non broadcast round")
		}
		content = b.BroadcastContent()
	} else {
		content = r.MessageContent()
	}

	if err := cbor.Unmarshal(msg.Data, content); err != nil {
		return round.Message{}, fmt.Errorf("failed to unmarshal message: %w", err)
	}
	if content.RoundNumber() != msg.RoundNumber {
		return round.Message{}, errors.New("message round number mismatch")
	}
	return round.Message{
		From:      msg.From,
		To:        msg.To,
		Broadcast: msg.Broadcast,
		Content:   content,
	}, nil
}

func newQueue(senders party.IDSlice, rounds round.Number) map[round.Number]map[party.ID]*Message {
	q := make(map[round.Number]map[party.ID]*Message, rounds)
	for i := round.Number(2); i <= rounds; i++ {
		q[i] = make(map[party.ID]*Message, len(senders))
		for _, id := range senders {
			q[i][id] = nil
		}
	}
	return q
}

var _ Handler = (*MultiHandler)(nil)
