package test

import (
	"io"

	"github.com/gargos-crypto/gargos/internal/types"
	"github.com/gargos-crypto/gargos/pkg/math/curve"
	"github.com/gargos-crypto/gargos/pkg/math/polynomial"
	"github.com/gargos-crypto/gargos/pkg/math/sample"
	"github.com/gargos-crypto/gargos/pkg/party"
	"github.com/gargos-crypto/gargos/protocols/gargos/config"
)

// GenerateConfig creates random key material for N parties with threshold T
// over the group, as if a dealer had run.
func GenerateConfig(group curve.Curve, N, T int, source io.Reader) (map[party.ID]*config.Config, party.IDSlice) {
	partyIDs := PartyIDs(N)
	configs := make(map[party.ID]*config.Config, N)

	f := polynomial.NewPolynomial(group, source, T-1, sample.Scalar(source, group))
	publicKey := f.Constant().ActOnBase()

	chainKey, err := types.NewRID(source)
	if err != nil {
		panic(err)
	}

	verificationShares := make(map[party.ID]curve.Point, N)
	shares := make(map[party.ID]curve.Scalar, N)
	for _, pid := range partyIDs {
		shares[pid] = f.Evaluate(pid.Scalar(group))
		verificationShares[pid] = shares[pid].ActOnBase()
	}

	for _, pid := range partyIDs {
		configs[pid] = &config.Config{
			ID:                 pid,
			Threshold:          T,
			PrivateShare:       shares[pid],
			PublicKey:          publicKey,
			ChainKey:           chainKey.Copy(),
			VerificationShares: party.NewPointMap(verificationShares),
		}
	}
	return configs, partyIDs
}

// WithTracing equips every config with a fresh tracing registry under the
// given authority and warrant verification keys.
func WithTracing(source io.Reader, configs map[party.ID]*config.Config, authority, warrant curve.Point) {
	var group curve.Curve
	for _, c := range configs {
		group = c.Curve()
		break
	}

	registry := make(map[party.ID]curve.Point, len(configs))
	secrets := make(map[party.ID]curve.Scalar, len(configs))
	for pid := range configs {
		u := sample.Scalar(source, group)
		secrets[pid] = u
		registry[pid] = u.ActOnBase()
	}

	tracing := &config.Tracing{
		Authority: authority,
		Warrant:   warrant,
		Registry:  party.NewPointMap(registry),
	}
	for pid, c := range configs {
		c.Tracing = tracing
		c.TracingSecret = secrets[pid]
	}
}
