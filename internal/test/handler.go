package test

import (
	"github.com/gargos-crypto/gargos/pkg/party"
	"github.com/gargos-crypto/gargos/pkg/protocol"
)

// HandlerLoop pumps messages between a handler and the network until
// the protocol finishes, then blocks until all parties are done so the
// network can be torn down. Results are read from h.Result afterwards.
func HandlerLoop(id party.ID, h protocol.Handler, network *Network) {
	outgoing := h.Listen()
	for {
		select {
		case msg, ok := <-outgoing:
			if !ok {
				// Handler closed its channel: protocol over.
				<-network.Done(id)
				return
			}
			go network.Send(msg)
		case msg := <-network.Next(id):
			h.Accept(msg)
		}
	}
}
