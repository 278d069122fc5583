package round

import (
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/gargos-crypto/gargos/internal/types"
	"github.com/gargos-crypto/gargos/pkg/hash"
	"github.com/gargos-crypto/gargos/pkg/math/curve"
	"github.com/gargos-crypto/gargos/pkg/party"
	"github.com/gargos-crypto/gargos/pkg/pool"
)

// Helper provides the session plumbing shared by every round: the
// participant set, the running transcript hash, and message
// construction. A protocol's first round embeds it to satisfy Session.
type Helper struct {
	info Info

	// Pool, when non-nil, parallelizes expensive operations.
	Pool *pool.Pool

	partyIDs      party.IDSlice
	otherPartyIDs party.IDSlice

	// ssid fingerprints this execution: a digest over the session ID,
	// protocol ID, group, participants, threshold and auxiliary data.
	ssid []byte

	hash *hash.Hash

	mtx sync.Mutex
}

// NewSession validates the session parameters and returns a Helper whose
// transcript binds them all.
//
// sessionID is optional caller-chosen freshness, unique per execution.
// auxInfo values are folded into the transcript in order; nil entries
// are skipped.
func NewSession(info Info, sessionID []byte, pl *pool.Pool, auxInfo ...hash.WriterToWithDomain) (*Helper, error) {
	partyIDs := party.NewIDSlice(info.PartyIDs)
	if !partyIDs.Valid() {
		return nil, errors.New("session: duplicate or zero party IDs")
	}
	if !partyIDs.Contains(info.SelfID) {
		return nil, errors.New("session: self not among the participants")
	}

	// Threshold counts the shares needed to sign, so [1, n].
	if info.Threshold < 1 || info.Threshold > math.MaxUint16 {
		return nil, fmt.Errorf("session: threshold %d out of range", info.Threshold)
	}
	if n := len(partyIDs); info.Threshold > n {
		return nil, fmt.Errorf("session: threshold %d exceeds the %d participants", info.Threshold, n)
	}

	h, err := sessionTranscript(info, sessionID, partyIDs, auxInfo)
	if err != nil {
		return nil, fmt.Errorf("session: %w", err)
	}

	return &Helper{
		info:          info,
		Pool:          pl,
		partyIDs:      partyIDs,
		otherPartyIDs: partyIDs.Remove(info.SelfID),
		ssid:          h.Clone().Sum(),
		hash:          h,
	}, nil
}

// sessionTranscript seeds the hash state every party must agree on
// before the first message is sent.
func sessionTranscript(info Info, sessionID []byte, partyIDs party.IDSlice, auxInfo []hash.WriterToWithDomain) (*hash.Hash, error) {
	h := hash.New()

	if sessionID != nil {
		if err := h.WriteAny(hash.TaggedBytes("Session ID", sessionID)); err != nil {
			return nil, err
		}
	}
	if err := h.WriteAny(hash.TaggedBytes("Protocol ID", []byte(info.ProtocolID))); err != nil {
		return nil, err
	}
	if info.Group != nil {
		if err := h.WriteAny(hash.TaggedBytes("Group Name", []byte(info.Group.Name()))); err != nil {
			return nil, err
		}
	}
	if err := h.WriteAny(partyIDs, types.ThresholdWrapper(info.Threshold)); err != nil {
		return nil, err
	}

	for _, a := range auxInfo {
		if a == nil {
			continue
		}
		if err := h.WriteAny(a); err != nil {
			return nil, err
		}
	}
	return h, nil
}

// HashForID clones the session hash, seeded with the given party's ID
// when it is non-zero.
func (h *Helper) HashForID(id party.ID) *hash.Hash {
	h.mtx.Lock()
	defer h.mtx.Unlock()

	cloned := h.hash.Clone()
	if id != 0 {
		_ = cloned.WriteAny(id)
	}
	return cloned
}

// UpdateHashState folds value into the session transcript.
func (h *Helper) UpdateHashState(value hash.WriterToWithDomain) {
	h.mtx.Lock()
	defer h.mtx.Unlock()
	_ = h.hash.WriteAny(value)
}

// Hash returns a clone of the current session transcript.
func (h *Helper) Hash() *hash.Hash {
	h.mtx.Lock()
	defer h.mtx.Unlock()
	return h.hash.Clone()
}

// BroadcastMessage queues content for reliable broadcast to all parties.
// out must have capacity; a full channel is reported as ErrOutChanFull.
func (h *Helper) BroadcastMessage(out chan<- *Message, broadcastContent Content) error {
	return h.send(out, &Message{
		From:      h.info.SelfID,
		Broadcast: true,
		Content:   broadcastContent,
	})
}

// SendMessage queues content for a single party, or for everyone when to
// is 0 (point-to-point fan-out, no broadcast guarantee).
func (h *Helper) SendMessage(out chan<- *Message, content Content, to party.ID) error {
	return h.send(out, &Message{
		From:    h.info.SelfID,
		To:      to,
		Content: content,
	})
}

func (h *Helper) send(out chan<- *Message, msg *Message) error {
	select {
	case out <- msg:
		return nil
	default:
		return ErrOutChanFull
	}
}

// ResultRound wraps a protocol result in the terminal round the handler
// recognizes as success.
func (h *Helper) ResultRound(result interface{}) Session {
	return &Output{Helper: h, Result: result}
}

// AbortRound wraps a protocol failure, attributing it to the given
// culprits. Finalize should return it with a nil error.
func (h *Helper) AbortRound(err error, culprits ...party.ID) Session {
	return &Abort{Helper: h, Culprits: culprits, Err: err}
}

// ProtocolID identifies the protocol this session runs.
func (h *Helper) ProtocolID() string { return h.info.ProtocolID }

// FinalRoundNumber is the number of communication rounds before output.
func (h *Helper) FinalRoundNumber() Number { return h.info.FinalRoundNumber }

// SSID is the digest identifying this protocol execution.
func (h *Helper) SSID() []byte { return h.ssid }

// SelfID is this party's ID.
func (h *Helper) SelfID() party.ID { return h.info.SelfID }

// PartyIDs lists all participants, sorted.
func (h *Helper) PartyIDs() party.IDSlice { return h.partyIDs }

// OtherPartyIDs lists all participants except this party, sorted.
func (h *Helper) OtherPartyIDs() party.IDSlice { return h.otherPartyIDs }

// Threshold is the minimum number of shares that produce a signature.
func (h *Helper) Threshold() int { return h.info.Threshold }

// N is the number of participants.
func (h *Helper) N() int { return len(h.info.PartyIDs) }

// Group is the curve the session operates over.
func (h *Helper) Group() curve.Curve { return h.info.Group }
