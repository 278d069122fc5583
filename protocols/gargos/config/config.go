package config

import (
	"errors"
	"fmt"
	"io"

	"github.com/fxamacker/cbor/v2"
	"github.com/gargos-crypto/gargos/internal/types"
	"github.com/gargos-crypto/gargos/pkg/math/curve"
	"github.com/gargos-crypto/gargos/pkg/party"
)

// Config contains all the key material a single participant holds after setup,
// whether it came from the trusted dealer or from the distributed key generation.
//
// When unmarshalling, EmptyConfig needs to be called to set the group, before
// calling cbor.Unmarshal, or equivalent methods.
type Config struct {
	// ID is the identifier for this participant.
	ID party.ID
	// Threshold is the minimum number of participants required to produce a signature.
	Threshold int
	// PrivateShare is this participant's share of the group secret.
	//
	// It must never appear in any artifact shared with other parties.
	PrivateShare curve.Scalar
	// PublicKey is the group public key. Signatures produced by any
	// authorized subset verify against it.
	PublicKey curve.Point
	// ChainKey is the shared randomness the participants agreed on.
	// The tracing tags are keyed with it.
	ChainKey types.RID
	// VerificationShares maps each participant to a commitment of their
	// private share, used to validate partial signatures.
	VerificationShares *party.PointMap
	// Tracing is the public tracing information, or nil when tracing is disabled.
	Tracing *Tracing
	// TracingSecret is this participant's tracing secret uᵢ, or nil when
	// tracing is disabled.
	TracingSecret curve.Scalar
}

// EmptyConfig creates an empty Config with a specific group.
//
// This needs to be called before unmarshalling, instead of just using new(Config).
// This is to allow points and scalars to be correctly unmarshalled.
func EmptyConfig(group curve.Curve) *Config {
	return &Config{
		PrivateShare:       group.NewScalar(),
		PublicKey:          group.NewPoint(),
		VerificationShares: party.EmptyPointMap(group),
		Tracing:            EmptyTracing(group),
		TracingSecret:      group.NewScalar(),
	}
}

// Curve returns the elliptic curve group this config was generated over.
func (c *Config) Curve() curve.Curve {
	return c.PublicKey.Curve()
}

// Public strips the secret fields, leaving the information a combiner,
// verifier or tracer may hold.
func (c *Config) Public() *Public {
	return &Public{
		Threshold:          c.Threshold,
		PublicKey:          c.PublicKey,
		ChainKey:           c.ChainKey.Copy(),
		VerificationShares: c.VerificationShares,
		Tracing:            c.Tracing,
	}
}

// Validate checks that the config is coherent.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config: nil")
	}
	if !c.ID.Valid() {
		return fmt.Errorf("config: invalid ID %d", c.ID)
	}
	if c.PrivateShare == nil || c.PrivateShare.IsZero() {
		return errors.New("config: missing private share")
	}
	if c.PublicKey == nil || c.PublicKey.IsIdentity() {
		return errors.New("config: missing public key")
	}
	if err := c.ChainKey.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if c.VerificationShares == nil || len(c.VerificationShares.Points) == 0 {
		return errors.New("config: missing verification shares")
	}
	n := len(c.VerificationShares.Points)
	if c.Threshold < 1 || c.Threshold > n {
		return fmt.Errorf("config: invalid threshold %d for %d parties", c.Threshold, n)
	}
	self, ok := c.VerificationShares.Points[c.ID]
	if !ok {
		return fmt.Errorf("config: no verification share for own ID %d", c.ID)
	}
	if !self.Equal(c.PrivateShare.ActOnBase()) {
		return errors.New("config: private share does not match verification share")
	}
	if c.Tracing != nil {
		if err := c.Tracing.Validate(); err != nil {
			return fmt.Errorf("config: %w", err)
		}
		if c.TracingSecret == nil || c.TracingSecret.IsZero() {
			return errors.New("config: tracing enabled but tracing secret missing")
		}
		registered, ok := c.Tracing.Registry.Points[c.ID]
		if !ok || !registered.Equal(c.TracingSecret.ActOnBase()) {
			return errors.New("config: tracing secret does not match registry")
		}
	}
	return nil
}

// PartyIDs returns a sorted slice of all participants in this config.
func (c *Config) PartyIDs() party.IDSlice {
	ids := make([]party.ID, 0, len(c.VerificationShares.Points))
	for id := range c.VerificationShares.Points {
		ids = append(ids, id)
	}
	return party.NewIDSlice(ids)
}

// CanSign returns true if the given set of signers is a valid subset for
// signing under this config.
func (c *Config) CanSign(signers party.IDSlice) bool {
	if !signers.Valid() || len(signers) < c.Threshold || !signers.Contains(c.ID) {
		return false
	}
	for _, id := range signers {
		if _, ok := c.VerificationShares.Points[id]; !ok {
			return false
		}
	}
	return true
}

type rawConfig struct {
	ID                 party.ID
	Threshold          int
	PrivateShare       curve.Scalar
	PublicKey          curve.Point
	ChainKey           types.RID
	VerificationShares *party.PointMap
	Tracing            *Tracing
	TracingSecret      curve.Scalar
}

// MarshalBinary implements encoding.BinaryMarshaler.
//
// A config contains this party's secrets. The encoding exists for the
// signer's own storage, never for artifacts shared with other parties.
func (c *Config) MarshalBinary() ([]byte, error) {
	return cbor.Marshal(rawConfig{
		ID:                 c.ID,
		Threshold:          c.Threshold,
		PrivateShare:       c.PrivateShare,
		PublicKey:          c.PublicKey,
		ChainKey:           c.ChainKey,
		VerificationShares: c.VerificationShares,
		Tracing:            c.Tracing,
		TracingSecret:      c.TracingSecret,
	})
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
// The receiver must come from EmptyConfig.
func (c *Config) UnmarshalBinary(data []byte) error {
	if c.PublicKey == nil {
		return errors.New("config: UnmarshalBinary called without EmptyConfig")
	}
	raw := rawConfig{
		PrivateShare:       c.PrivateShare,
		PublicKey:          c.PublicKey,
		VerificationShares: c.VerificationShares,
		Tracing:            c.Tracing,
		TracingSecret:      c.TracingSecret,
	}
	if err := cbor.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	*c = Config{
		ID:                 raw.ID,
		Threshold:          raw.Threshold,
		PrivateShare:       raw.PrivateShare,
		PublicKey:          raw.PublicKey,
		ChainKey:           raw.ChainKey,
		VerificationShares: raw.VerificationShares,
		Tracing:            raw.Tracing,
		TracingSecret:      raw.TracingSecret,
	}
	return c.Validate()
}

// WriteTo implements io.WriterTo, writing the public part of the config.
// It is used to bind signing sessions to the key material.
func (c *Config) WriteTo(w io.Writer) (int64, error) {
	if c == nil {
		return 0, io.ErrUnexpectedEOF
	}
	var total int64

	data, err := c.PublicKey.MarshalBinary()
	if err != nil {
		return total, err
	}
	n, err := w.Write(data)
	total += int64(n)
	if err != nil {
		return total, err
	}

	n64, err := c.ChainKey.WriteTo(w)
	total += n64
	if err != nil {
		return total, err
	}

	n64, err = types.ThresholdWrapper(c.Threshold).WriteTo(w)
	total += n64
	if err != nil {
		return total, err
	}

	for _, id := range c.PartyIDs() {
		data, err = c.VerificationShares.Points[id].MarshalBinary()
		if err != nil {
			return total, err
		}
		n, err = w.Write(data)
		total += int64(n)
		if err != nil {
			return total, err
		}
	}

	if c.Tracing != nil {
		n64, err = c.Tracing.WriteTo(w)
		total += n64
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// Domain implements hash.WriterToWithDomain.
func (c *Config) Domain() string {
	return "Gargos Config"
}
