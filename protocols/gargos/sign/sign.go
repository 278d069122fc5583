package sign

import (
	"errors"
	"fmt"

	"github.com/gargos-crypto/gargos/internal/round"
	"github.com/gargos-crypto/gargos/internal/types"
	"github.com/gargos-crypto/gargos/pkg/party"
	"github.com/gargos-crypto/gargos/pkg/protocol"
	"github.com/gargos-crypto/gargos/protocols/gargos/config"
)

const (
	// protocolSignID identifies the threshold signing protocol.
	protocolSignID = "gargos/sign"
	// protocolSignRounds is the number of rounds to produce a partial signature.
	protocolSignRounds round.Number = 2
)

// Result is what each signer obtains at the end of a signing session.
type Result struct {
	// Session is the public transcript shared by all signers.
	Session *Session
	// Partial is this signer's own contribution, destined for the combiner.
	Partial *PartialSignature
}

// StartSign returns a protocol start function for one signing session over
// message with the given signer set. The signers must contain the config's
// own ID and meet the threshold. Each invocation samples a fresh nonce, so a
// session ID must never be reused for a different message; use Signer to get
// that enforced.
func StartSign(c *config.Config, signers []party.ID, message []byte) protocol.StartFunc {
	return func(sessionID []byte) (round.Session, error) {
		if c == nil {
			return nil, errors.New("sign.StartSign: nil config")
		}
		if err := c.Validate(); err != nil {
			return nil, fmt.Errorf("sign.StartSign: %w", err)
		}
		signerIDs := party.NewIDSlice(signers)
		if !c.CanSign(signerIDs) {
			return nil, errors.New("sign.StartSign: signers is not a valid signing subset")
		}

		info := round.Info{
			FinalRoundNumber: protocolSignRounds,
			ProtocolID:       protocolSignID,
			SelfID:           c.ID,
			PartyIDs:         signerIDs,
			Threshold:        c.Threshold,
			Group:            c.Curve(),
		}
		helper, err := round.NewSession(info, sessionID, nil, c, types.SigningMessage(message))
		if err != nil {
			return nil, fmt.Errorf("sign.StartSign: %w", err)
		}
		return &round1{
			Helper:  helper,
			config:  c,
			message: message,
		}, nil
	}
}
