package sign

import (
	"crypto/subtle"
	"sync"

	"github.com/gargos-crypto/gargos/internal/round"
	"github.com/gargos-crypto/gargos/internal/types"
	"github.com/gargos-crypto/gargos/pkg/hash"
	"github.com/gargos-crypto/gargos/pkg/party"
	"github.com/gargos-crypto/gargos/pkg/protocol"
	"github.com/gargos-crypto/gargos/protocols/gargos/config"
)

// Signer runs signing sessions for one key share and refuses session IDs that
// would put the nonce at risk. A session ID commits to one message: starting
// it again with a different message fails with ErrSessionReuse, and starting
// it again at all fails with ErrNonceReuse, since a second run would sample a
// second nonce for the same session.
//
// The guard is per Signer instance. Sharing one key share between several
// Signer instances reintroduces the risk the guard exists to prevent.
type Signer struct {
	mtx    sync.Mutex
	config *config.Config
	// seen maps each session ID to the digest of the message it signed.
	seen map[string][]byte
}

// NewSigner wraps a validated config.
func NewSigner(c *config.Config) (*Signer, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &Signer{
		config: c,
		seen:   map[string][]byte{},
	}, nil
}

// Config returns the key material this signer signs with.
func (s *Signer) Config() *config.Config {
	return s.config
}

// Sign returns a start function like StartSign, with the session reuse guard
// applied before any nonce is sampled.
func (s *Signer) Sign(signers []party.ID, message []byte) protocol.StartFunc {
	start := StartSign(s.config, signers, message)
	return func(sessionID []byte) (round.Session, error) {
		if err := s.reserve(sessionID, message); err != nil {
			return nil, err
		}
		return start(sessionID)
	}
}

func (s *Signer) reserve(sessionID, message []byte) error {
	digest := hash.New(types.SigningMessage(message)).Sum()

	s.mtx.Lock()
	defer s.mtx.Unlock()
	if previous, ok := s.seen[string(sessionID)]; ok {
		if subtle.ConstantTimeCompare(previous, digest) != 1 {
			return ErrSessionReuse
		}
		return ErrNonceReuse
	}
	s.seen[string(sessionID)] = digest
	return nil
}
