package test

import (
	"sync"

	"github.com/gargos-crypto/gargos/pkg/party"
	"github.com/gargos-crypto/gargos/pkg/protocol"
)

// Network fans protocol messages out between in-process parties over
// buffered channels. Mailboxes are created lazily on the first Next
// call, so parties that Quit before then never receive anything.
type Network struct {
	mtx sync.Mutex

	parties party.IDSlice
	// mailboxes holds one buffered channel per active party; empty
	// until the first Next call, emptied again as parties finish.
	mailboxes map[party.ID]chan *protocol.Message
	// done is closed once every active party has called Done.
	done chan struct{}
	// closed is returned to parties without a mailbox, so their reads
	// never block.
	closed chan *protocol.Message
}

func NewNetwork(parties party.IDSlice) *Network {
	closed := make(chan *protocol.Message)
	close(closed)
	return &Network{
		parties:   parties,
		mailboxes: make(map[party.ID]chan *protocol.Message, len(parties)),
		closed:    closed,
	}
}

// Next returns the channel id receives on.
func (n *Network) Next(id party.ID) <-chan *protocol.Message {
	n.mtx.Lock()
	defer n.mtx.Unlock()
	if len(n.mailboxes) == 0 {
		// First use: open a mailbox per remaining party, sized so a
		// full round of traffic never blocks a sender.
		buf := len(n.parties) * len(n.parties)
		for _, p := range n.parties {
			n.mailboxes[p] = make(chan *protocol.Message, buf)
		}
		n.done = make(chan struct{})
	}
	mbox, ok := n.mailboxes[id]
	if !ok {
		return n.closed
	}
	return mbox
}

// Send delivers msg to every active party it is addressed to.
func (n *Network) Send(msg *protocol.Message) {
	n.mtx.Lock()
	defer n.mtx.Unlock()
	for id, mbox := range n.mailboxes {
		if msg.IsFor(id) {
			mbox <- msg
		}
	}
}

// Done retires id's mailbox and returns a channel that closes once all
// parties have retired.
func (n *Network) Done(id party.ID) chan struct{} {
	n.mtx.Lock()
	defer n.mtx.Unlock()
	if mbox, ok := n.mailboxes[id]; ok {
		close(mbox)
		delete(n.mailboxes, id)
	}
	if len(n.mailboxes) == 0 {
		close(n.done)
	}
	return n.done
}

// Quit removes id from the roster before the network starts. It has no
// effect on a running network.
func (n *Network) Quit(id party.ID) {
	n.mtx.Lock()
	defer n.mtx.Unlock()
	n.parties = n.parties.Remove(id)
}
