package protocol

import (
	"fmt"

	"github.com/gargos-crypto/gargos/pkg/party"
)

// Error is returned by the handler when the protocol aborts.
// If the error can be attributed to one or more parties, they are listed in Culprits.
type Error struct {
	// Culprits is the list of parties whose messages caused the abort, if known.
	Culprits []party.ID
	// Err is the underlying cause.
	Err error
}

// Error implements error.
func (e Error) Error() string {
	if len(e.Culprits) == 0 {
		return fmt.Sprintf("protocol: %s", e.Err)
	}
	return fmt.Sprintf("protocol: culprits %v: %s", e.Culprits, e.Err)
}

// Unwrap implements errors.Unwrap.
func (e Error) Unwrap() error {
	return e.Err
}
