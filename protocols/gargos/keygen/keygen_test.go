package keygen

import (
	"crypto/rand"
	"testing"

	"github.com/gargos-crypto/gargos/internal/round"
	"github.com/gargos-crypto/gargos/internal/test"
	"github.com/gargos-crypto/gargos/pkg/math/curve"
	"github.com/gargos-crypto/gargos/pkg/math/sample"
	"github.com/gargos-crypto/gargos/pkg/party"
	"github.com/gargos-crypto/gargos/pkg/protocol"
	"github.com/gargos-crypto/gargos/protocols/gargos/config"
	"github.com/gargos-crypto/gargos/protocols/gargos/sign"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runKeygen(t *testing.T, group curve.Curve, partyIDs party.IDSlice, threshold int, authority, warrant curve.Point) map[party.ID]*config.Config {
	rounds := make([]round.Session, 0, len(partyIDs))
	for _, id := range partyIDs {
		var start protocol.StartFunc
		if authority != nil {
			start = StartKeygenTracing(group, id, partyIDs, threshold, authority, warrant)
		} else {
			start = StartKeygen(group, id, partyIDs, threshold)
		}
		r, err := start(nil)
		require.NoError(t, err, "round creation should not result in an error")
		rounds = append(rounds, r)
	}

	for {
		err, done := test.Rounds(rounds, nil)
		require.NoError(t, err, "failed to process round")
		if done {
			break
		}
	}

	configs := make(map[party.ID]*config.Config, len(partyIDs))
	for _, r := range rounds {
		require.IsType(t, &round.Output{}, r, "expected result round")
		c := r.(*round.Output).Result.(*config.Config)
		configs[c.ID] = c
	}
	return configs
}

func checkConfigs(t *testing.T, configs map[party.ID]*config.Config, partyIDs party.IDSlice, threshold int) {
	reference := configs[partyIDs[0]]
	for _, id := range partyIDs {
		c := configs[id]
		require.NoError(t, c.Validate(), "produced config should be valid")
		assert.Equal(t, id, c.ID)
		assert.Equal(t, threshold, c.Threshold)
		assert.True(t, c.PublicKey.Equal(reference.PublicKey), "all parties should derive the same public key")
		assert.EqualValues(t, reference.ChainKey, c.ChainKey, "all parties should derive the same chain key")
		for _, other := range partyIDs {
			assert.True(t, c.VerificationShares.Points[other].Equal(reference.VerificationShares.Points[other]),
				"verification shares should agree across parties")
		}
	}
}

// signWith runs a signing session over freshly generated configs, and checks
// the aggregated signature against the shared public key.
func signWith(t *testing.T, configs map[party.ID]*config.Config, signers party.IDSlice, message []byte) {
	rounds := make([]round.Session, 0, len(signers))
	for _, id := range signers {
		r, err := sign.StartSign(configs[id], signers, message)(nil)
		require.NoError(t, err)
		rounds = append(rounds, r)
	}
	for {
		err, done := test.Rounds(rounds, nil)
		require.NoError(t, err)
		if done {
			break
		}
	}

	group := configs[signers[0]].Curve()
	z := group.NewScalar()
	var session *sign.Session
	for _, r := range rounds {
		require.IsType(t, &round.Output{}, r)
		result := r.(*round.Output).Result.(*sign.Result)
		session = result.Session
		z.Add(result.Partial.Z)
	}
	signature := sign.Signature{R: session.R(), Z: z}
	assert.True(t, signature.Verify(configs[signers[0]].PublicKey, message),
		"signature under the generated key should verify")
}

func TestKeygen(t *testing.T) {
	group := curve.Secp256k1{}
	partyIDs := test.PartyIDs(5)

	configs := runKeygen(t, group, partyIDs, 3, nil, nil)
	checkConfigs(t, configs, partyIDs, 3)
	for _, c := range configs {
		assert.Nil(t, c.Tracing, "untraced keygen should leave tracing unset")
	}

	signWith(t, configs, partyIDs[:3], []byte("hello"))
}

func TestKeygenTracing(t *testing.T) {
	group := curve.Secp256k1{}
	partyIDs := test.PartyIDs(4)
	authority := sample.Scalar(rand.Reader, group).ActOnBase()
	warrant := sample.Scalar(rand.Reader, group).ActOnBase()

	configs := runKeygen(t, group, partyIDs, 2, authority, warrant)
	checkConfigs(t, configs, partyIDs, 2)

	reference := configs[partyIDs[0]]
	for _, id := range partyIDs {
		c := configs[id]
		require.NotNil(t, c.Tracing, "traced keygen should set tracing")
		assert.True(t, c.Tracing.Authority.Equal(authority))
		assert.True(t, c.Tracing.Warrant.Equal(warrant))
		require.Len(t, c.Tracing.Registry.Points, len(partyIDs))
		for _, other := range partyIDs {
			assert.True(t, c.Tracing.Registry.Points[other].Equal(reference.Tracing.Registry.Points[other]),
				"registries should agree across parties")
		}
	}

	signWith(t, configs, partyIDs[1:3], []byte("hello"))
}

func TestKeygenInvalid(t *testing.T) {
	group := curve.Secp256k1{}
	partyIDs := test.PartyIDs(3)

	_, err := StartKeygen(group, partyIDs[0], partyIDs, 0)(nil)
	assert.Error(t, err, "threshold 0 should be rejected")

	_, err = StartKeygen(group, partyIDs[0], partyIDs, 4)(nil)
	assert.Error(t, err, "threshold above n should be rejected")

	identity := group.NewPoint()
	_, err = StartKeygenTracing(group, partyIDs[0], partyIDs, 2, identity, identity)(nil)
	assert.Error(t, err, "identity tracing keys should be rejected")
}

func TestKeygenConfigEncoding(t *testing.T) {
	group := curve.Secp256k1{}
	partyIDs := test.PartyIDs(3)

	configs := runKeygen(t, group, partyIDs, 2, nil, nil)
	for _, c := range configs {
		data, err := c.MarshalBinary()
		require.NoError(t, err)

		decoded := config.EmptyConfig(group)
		require.NoError(t, decoded.UnmarshalBinary(data))
		assert.Equal(t, c.ID, decoded.ID)
		assert.Equal(t, c.Threshold, decoded.Threshold)
		assert.True(t, c.PublicKey.Equal(decoded.PublicKey))
		assert.True(t, c.PrivateShare.Equal(decoded.PrivateShare))
		assert.EqualValues(t, c.ChainKey, decoded.ChainKey)
	}
}

func TestKeygenTracingConfigEncoding(t *testing.T) {
	group := curve.Secp256k1{}
	partyIDs := test.PartyIDs(3)
	authority := sample.Scalar(rand.Reader, group).ActOnBase()
	warrant := sample.Scalar(rand.Reader, group).ActOnBase()

	configs := runKeygen(t, group, partyIDs, 2, authority, warrant)
	for _, c := range configs {
		data, err := c.MarshalBinary()
		require.NoError(t, err)

		decoded := config.EmptyConfig(group)
		require.NoError(t, decoded.UnmarshalBinary(data))
		require.NotNil(t, decoded.Tracing)
		assert.True(t, decoded.Tracing.Authority.Equal(authority))
		assert.True(t, decoded.TracingSecret.Equal(c.TracingSecret))
	}
}

func TestKeygenEd25519(t *testing.T) {
	group := curve.Ed25519{}
	partyIDs := test.PartyIDs(3)

	configs := runKeygen(t, group, partyIDs, 2, nil, nil)
	checkConfigs(t, configs, partyIDs, 2)
	signWith(t, configs, partyIDs[:2], []byte("hello"))
}
