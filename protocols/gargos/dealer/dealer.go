// Package dealer generates signing configs from a single trusted party.
//
// The dealer samples the group secret, deals Shamir shares of it, and hands
// each participant a config. It is the fast path for setups where a trusted
// party is acceptable; the keygen package produces equivalent configs without
// that trust assumption.
package dealer

import (
	"errors"
	"fmt"
	"io"

	"github.com/gargos-crypto/gargos/internal/types"
	"github.com/gargos-crypto/gargos/pkg/math/curve"
	"github.com/gargos-crypto/gargos/pkg/math/polynomial"
	"github.com/gargos-crypto/gargos/pkg/math/sample"
	"github.com/gargos-crypto/gargos/pkg/party"
	"github.com/gargos-crypto/gargos/protocols/gargos/config"
	"github.com/gargos-crypto/gargos/protocols/gargos/trace"
)

// ErrInvalidThreshold is returned when the threshold does not satisfy
// 1 ≤ threshold ≤ n.
var ErrInvalidThreshold = errors.New("dealer: invalid threshold")

// Keygen deals fresh key material to the given participants. Any threshold
// of them can later produce a signature under the shared public key.
//
// The returned configs contain each participant's secret share; the dealer
// must deliver them over confidential channels and forget them.
func Keygen(rand io.Reader, group curve.Curve, partyIDs []party.ID, threshold int) (map[party.ID]*config.Config, error) {
	ids := party.NewIDSlice(partyIDs)
	if !ids.Valid() {
		return nil, errors.New("dealer: party IDs must be distinct and non-zero")
	}
	if threshold < 1 || threshold > len(ids) {
		return nil, fmt.Errorf("%w: %d of %d", ErrInvalidThreshold, threshold, len(ids))
	}

	f := polynomial.NewPolynomial(group, rand, threshold-1, sample.Scalar(rand, group))
	publicKey := f.Constant().ActOnBase()

	chainKey, err := types.NewRID(rand)
	if err != nil {
		return nil, fmt.Errorf("dealer: %w", err)
	}

	shares := make(map[party.ID]curve.Scalar, len(ids))
	verificationShares := make(map[party.ID]curve.Point, len(ids))
	for _, id := range ids {
		shares[id] = f.Evaluate(id.Scalar(group))
		verificationShares[id] = shares[id].ActOnBase()
	}

	configs := make(map[party.ID]*config.Config, len(ids))
	for _, id := range ids {
		configs[id] = &config.Config{
			ID:                 id,
			Threshold:          threshold,
			PrivateShare:       shares[id],
			PublicKey:          publicKey,
			ChainKey:           chainKey.Copy(),
			VerificationShares: party.NewPointMap(verificationShares),
		}
	}
	return configs, nil
}

// KeygenTracing deals key material like Keygen and additionally equips every
// config with a tracing registry. It returns the tracing authority holding
// the trapdoor and the authorizer whose warrants the authority will demand.
func KeygenTracing(rand io.Reader, group curve.Curve, partyIDs []party.ID, threshold int) (map[party.ID]*config.Config, *trace.Authority, *trace.Authorizer, error) {
	configs, err := Keygen(rand, group, partyIDs, threshold)
	if err != nil {
		return nil, nil, nil, err
	}

	authority := trace.NewAuthority(rand, group)
	authorizer := trace.NewAuthorizer(rand, group)

	registry := make(map[party.ID]curve.Point, len(configs))
	secrets := make(map[party.ID]curve.Scalar, len(configs))
	for id := range configs {
		u := sample.Scalar(rand, group)
		secrets[id] = u
		registry[id] = u.ActOnBase()
	}

	tracing := &config.Tracing{
		Authority: authority.PublicKey(),
		Warrant:   authorizer.PublicKey(),
		Registry:  party.NewPointMap(registry),
	}
	for id, c := range configs {
		c.Tracing = tracing
		c.TracingSecret = secrets[id]
	}
	return configs, authority, authorizer, nil
}
