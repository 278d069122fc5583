package round

import "github.com/gargos-crypto/gargos/pkg/party"

// Output is the terminal round of a successful execution. Result holds
// the protocol's output value.
type Output struct {
	*Helper
	Result interface{}
}

// Abort is the terminal round of a failed execution. Culprits lists the
// parties whose messages caused the failure, when they can be named.
type Abort struct {
	*Helper
	Culprits []party.ID
	Err      error
}

// Terminal rounds accept no messages and finalize to themselves.

func (Output) VerifyMessage(Message) error                  { return nil }
func (Output) StoreMessage(Message) error                   { return nil }
func (r *Output) Finalize(chan<- *Message) (Session, error) { return r, nil }
func (Output) MessageContent() Content                      { return nil }
func (Output) Number() Number                               { return 0 }

func (Abort) VerifyMessage(Message) error                  { return nil }
func (Abort) StoreMessage(Message) error                   { return nil }
func (r *Abort) Finalize(chan<- *Message) (Session, error) { return r, nil }
func (Abort) MessageContent() Content                      { return nil }
func (Abort) Number() Number                               { return 0 }
