package sign

import (
	"crypto/rand"
	"testing"

	"github.com/gargos-crypto/gargos/internal/round"
	"github.com/gargos-crypto/gargos/internal/test"
	"github.com/gargos-crypto/gargos/pkg/math/curve"
	"github.com/gargos-crypto/gargos/pkg/math/sample"
	"github.com/gargos-crypto/gargos/pkg/party"
	"github.com/gargos-crypto/gargos/protocols/gargos/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var messageHello = []byte("hello")

func signWithParties(t *testing.T, configs map[party.ID]*config.Config, signerIDs party.IDSlice, message []byte) []round.Session {
	rounds := make([]round.Session, 0, len(signerIDs))
	for _, id := range signerIDs {
		r, err := StartSign(configs[id], signerIDs, message)(nil)
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
	return rounds
}

func verifySignOutput(t *testing.T, group curve.Curve, publicKey curve.Point, signerIDs party.IDSlice, message []byte, rounds []round.Session) {
	var session *Session
	z := group.NewScalar()
	for _, r := range rounds {
		require.IsType(t, &round.Output{}, r, "expected result round")
		resultRound := r.(*round.Output)
		require.IsType(t, &Result{}, resultRound.Result, "expected sign result")
		result := resultRound.Result.(*Result)

		require.NoError(t, result.Session.Validate())
		require.NoError(t, result.Partial.Validate())
		assert.Equal(t, signerIDs, result.Session.SignerIDs, "session should cover exactly the signer set")
		assert.True(t, result.Session.Commitments.Points[result.Partial.Index].Equal(result.Partial.D),
			"partial should carry the commitment it broadcast")

		if session == nil {
			session = result.Session
		} else {
			assert.Equal(t, session.ID, result.Session.ID, "all signers should derive the same session ID")
			assert.True(t, session.R().Equal(result.Session.R()), "all signers should derive the same combined nonce")
		}
		z.Add(result.Partial.Z)
	}

	sig := Signature{R: session.R(), Z: z}
	assert.True(t, sig.Verify(publicKey, message), "aggregated responses should form a valid signature")
}

func TestSign(t *testing.T) {
	group := curve.Secp256k1{}
	N, T := 5, 3
	configs, partyIDs := test.GenerateConfig(group, N, T, rand.Reader)
	publicKey := configs[partyIDs[0]].PublicKey
	signers := partyIDs[:T]

	rounds := signWithParties(t, configs, signers, messageHello)
	verifySignOutput(t, group, publicKey, signers, messageHello, rounds)
}

func TestSignMoreThanThreshold(t *testing.T) {
	group := curve.Secp256k1{}
	N, T := 5, 2
	configs, partyIDs := test.GenerateConfig(group, N, T, rand.Reader)
	publicKey := configs[partyIDs[0]].PublicKey

	rounds := signWithParties(t, configs, partyIDs, messageHello)
	verifySignOutput(t, group, publicKey, partyIDs, messageHello, rounds)
}

func TestSignEd25519(t *testing.T) {
	group := curve.Ed25519{}
	N, T := 4, 3
	configs, partyIDs := test.GenerateConfig(group, N, T, rand.Reader)
	publicKey := configs[partyIDs[0]].PublicKey
	signers := partyIDs[:T]

	rounds := signWithParties(t, configs, signers, messageHello)
	verifySignOutput(t, group, publicKey, signers, messageHello, rounds)
}

func TestSignRejectsSmallSubset(t *testing.T) {
	group := curve.Secp256k1{}
	configs, partyIDs := test.GenerateConfig(group, 5, 3, rand.Reader)

	signers := partyIDs[:2]
	_, err := StartSign(configs[signers[0]], signers, messageHello)(nil)
	require.Error(t, err, "fewer signers than the threshold should be refused")

	strangers := party.IDSlice{partyIDs[1], partyIDs[2], partyIDs[3]}
	_, err = StartSign(configs[partyIDs[0]], strangers, messageHello)(nil)
	require.Error(t, err, "a signer set excluding ourselves should be refused")
}

func TestSignStaleCommitment(t *testing.T) {
	group := curve.Secp256k1{}
	configs, partyIDs := test.GenerateConfig(group, 3, 3, rand.Reader)

	r, err := StartSign(configs[partyIDs[0]], partyIDs, messageHello)(nil)
	require.NoError(t, err)

	out := make(chan *round.Message, 3)
	r, err = r.Finalize(out)
	require.NoError(t, err)
	require.IsType(t, &round2{}, r)

	// No other commitments have been stored, responding now must fail.
	_, err = r.Finalize(out)
	assert.ErrorIs(t, err, ErrStaleCommitment)
}

func TestSignTracingTag(t *testing.T) {
	group := curve.Secp256k1{}
	N, T := 4, 2
	configs, partyIDs := test.GenerateConfig(group, N, T, rand.Reader)
	authority := sample.Scalar(rand.Reader, group).ActOnBase()
	warrant := sample.Scalar(rand.Reader, group).ActOnBase()
	test.WithTracing(rand.Reader, configs, authority, warrant)
	signers := partyIDs[:T]

	tags := make(map[party.ID][]byte, T)
	rounds := signWithParties(t, configs, signers, messageHello)
	for _, r := range rounds {
		result := r.(*round.Output).Result.(*Result)
		require.Len(t, result.Partial.Tag, 32, "tracing tag should be emitted when tracing is configured")
		tags[result.Partial.Index] = result.Partial.Tag
	}

	// The tag depends only on the signer and the message, not the session.
	again := signWithParties(t, configs, signers, messageHello)
	for _, r := range again {
		result := r.(*round.Output).Result.(*Result)
		assert.Equal(t, tags[result.Partial.Index], result.Partial.Tag, "tag should be deterministic per signer and message")
	}

	other := signWithParties(t, configs, signers, []byte("goodbye"))
	for _, r := range other {
		result := r.(*round.Output).Result.(*Result)
		assert.NotEqual(t, tags[result.Partial.Index], result.Partial.Tag, "tag should differ across messages")
	}
}

func TestSignerSessionGuard(t *testing.T) {
	group := curve.Secp256k1{}
	configs, partyIDs := test.GenerateConfig(group, 3, 2, rand.Reader)
	signers := partyIDs[:2]

	signer, err := NewSigner(configs[signers[0]])
	require.NoError(t, err)

	sid := []byte("session-1")
	_, err = signer.Sign(signers, messageHello)(sid)
	require.NoError(t, err, "first use of a session ID should succeed")

	_, err = signer.Sign(signers, []byte("other message"))(sid)
	assert.ErrorIs(t, err, ErrSessionReuse, "same session ID with a different message should be refused")

	_, err = signer.Sign(signers, messageHello)(sid)
	assert.ErrorIs(t, err, ErrNonceReuse, "repeating a session should be refused outright")

	_, err = signer.Sign(signers, messageHello)([]byte("session-2"))
	require.NoError(t, err, "a fresh session ID should succeed")
}

func TestPartialSignatureEncoding(t *testing.T) {
	group := curve.Secp256k1{}
	configs, partyIDs := test.GenerateConfig(group, 3, 2, rand.Reader)
	signers := partyIDs[:2]

	rounds := signWithParties(t, configs, signers, messageHello)
	result := rounds[0].(*round.Output).Result.(*Result)

	data, err := result.Partial.MarshalBinary()
	require.NoError(t, err)

	decoded := EmptyPartialSignature(group)
	require.NoError(t, decoded.UnmarshalBinary(data))
	assert.Equal(t, result.Partial.Index, decoded.Index)
	assert.True(t, decoded.D.Equal(result.Partial.D))
	assert.True(t, decoded.Z.Equal(result.Partial.Z))

	truncated := EmptyPartialSignature(group)
	assert.ErrorIs(t, truncated.UnmarshalBinary(data[:len(data)-2]), ErrInvalidEncoding)

	garbage := append([]byte{}, data...)
	for i := 2; i < 2+33; i++ {
		garbage[i] = 0xFF
	}
	mangled := EmptyPartialSignature(group)
	assert.ErrorIs(t, mangled.UnmarshalBinary(garbage), ErrInvalidEncoding)
}
