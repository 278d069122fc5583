package trace

import (
	"crypto/rand"
	"testing"

	"github.com/gargos-crypto/gargos/internal/round"
	"github.com/gargos-crypto/gargos/internal/test"
	"github.com/gargos-crypto/gargos/pkg/math/curve"
	"github.com/gargos-crypto/gargos/pkg/party"
	"github.com/gargos-crypto/gargos/protocols/gargos/config"
	"github.com/gargos-crypto/gargos/protocols/gargos/sign"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var messageHello = []byte("hello")

// tracingSetup deals key material for n parties with a fresh tracing
// authority and warrant authorizer.
func tracingSetup(t *testing.T, group curve.Curve, n, threshold int) (map[party.ID]*config.Config, party.IDSlice, *Authority, *Authorizer) {
	configs, partyIDs := test.GenerateConfig(group, n, threshold, rand.Reader)
	authority := NewAuthority(rand.Reader, group)
	authorizer := NewAuthorizer(rand.Reader, group)
	test.WithTracing(rand.Reader, configs, authority.PublicKey(), authorizer.PublicKey())
	return configs, partyIDs, authority, authorizer
}

// signSession runs a full signing session and returns every signer's partial
// signature, tagged for tracing.
func signSession(t *testing.T, configs map[party.ID]*config.Config, signers party.IDSlice, message []byte) []*sign.PartialSignature {
	rounds := make([]round.Session, 0, len(signers))
	for _, id := range signers {
		r, err := sign.StartSign(configs[id], signers, message)(nil)
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

	partials := make([]*sign.PartialSignature, 0, len(signers))
	for _, r := range rounds {
		require.IsType(t, &round.Output{}, r, "expected result round")
		result := r.(*round.Output).Result.(*sign.Result)
		partials = append(partials, result.Partial)
	}
	return partials
}

func TestTrace(t *testing.T) {
	group := curve.Secp256k1{}
	configs, partyIDs, authority, authorizer := tracingSetup(t, group, 5, 3)
	signers := party.IDSlice{partyIDs[0], partyIDs[2], partyIDs[3]}
	public := configs[partyIDs[0]].Public()

	partials := signSession(t, configs, signers, messageHello)
	for _, partial := range partials {
		require.NotEmpty(t, partial.Tag, "partials of a tracing config should carry tags")
	}

	warrant := authorizer.Authorize(messageHello, authority.PublicKey())
	result, err := authority.Trace(warrant, public, messageHello, partials)
	require.NoError(t, err)
	assert.Equal(t, signers, result.Indices(), "trace should implicate exactly the signers")
	assert.True(t, result.Verify(public, messageHello, partials), "trace evidence should verify")
}

func TestTraceSubsetOfArtifacts(t *testing.T) {
	group := curve.Secp256k1{}
	configs, partyIDs, authority, authorizer := tracingSetup(t, group, 4, 2)
	signers := partyIDs[:3]
	public := configs[partyIDs[0]].Public()

	partials := signSession(t, configs, signers, messageHello)
	warrant := authorizer.Authorize(messageHello, authority.PublicKey())

	result, err := authority.Trace(warrant, public, messageHello, partials[:1])
	require.NoError(t, err)
	assert.Equal(t, party.NewIDSlice([]party.ID{signers[0]}), result.Indices(),
		"only the signer whose artifact was presented should be implicated")
	assert.True(t, result.Verify(public, messageHello, partials[:1]))
	assert.False(t, result.Verify(public, []byte("goodbye"), partials[:1]),
		"evidence should be bound to the traced message")
}

func TestTraceUnauthorized(t *testing.T) {
	group := curve.Secp256k1{}
	configs, partyIDs, authority, authorizer := tracingSetup(t, group, 4, 3)
	signers := partyIDs[:3]
	public := configs[partyIDs[0]].Public()

	partials := signSession(t, configs, signers, messageHello)

	_, err := authority.Trace(nil, public, messageHello, partials)
	assert.ErrorIs(t, err, ErrUnauthorized, "missing warrant")

	otherMessage := authorizer.Authorize([]byte("goodbye"), authority.PublicKey())
	_, err = authority.Trace(otherMessage, public, messageHello, partials)
	assert.ErrorIs(t, err, ErrUnauthorized, "warrant scoped to another message")

	rogue := NewAuthorizer(rand.Reader, group)
	forged := rogue.Authorize(messageHello, authority.PublicKey())
	_, err = authority.Trace(forged, public, messageHello, partials)
	assert.ErrorIs(t, err, ErrUnauthorized, "warrant from an unregistered authorizer")

	otherAuthority := NewAuthority(rand.Reader, group)
	misaddressed := authorizer.Authorize(messageHello, otherAuthority.PublicKey())
	_, err = authority.Trace(misaddressed, public, messageHello, partials)
	assert.ErrorIs(t, err, ErrUnauthorized, "warrant addressed to another authority")

	_, err = otherAuthority.Trace(misaddressed, public, messageHello, partials)
	assert.ErrorIs(t, err, ErrUnauthorized, "authority not in the registry")
}

func TestTraceRequiresTracingConfig(t *testing.T) {
	group := curve.Secp256k1{}
	configs, partyIDs := test.GenerateConfig(group, 4, 3, rand.Reader)
	signers := partyIDs[:3]
	public := configs[partyIDs[0]].Public()

	partials := signSession(t, configs, signers, messageHello)
	for _, partial := range partials {
		require.Empty(t, partial.Tag, "partials without tracing should carry no tags")
	}

	authority := NewAuthority(rand.Reader, group)
	authorizer := NewAuthorizer(rand.Reader, group)
	warrant := authorizer.Authorize(messageHello, authority.PublicKey())
	_, err := authority.Trace(warrant, public, messageHello, partials)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestTraceUntaggedArtifacts(t *testing.T) {
	group := curve.Secp256k1{}
	configs, partyIDs, authority, authorizer := tracingSetup(t, group, 4, 3)
	signers := partyIDs[:3]
	public := configs[partyIDs[0]].Public()

	partials := signSession(t, configs, signers, messageHello)
	stripped := make([]*sign.PartialSignature, len(partials))
	for k, partial := range partials {
		stripped[k] = &sign.PartialSignature{Index: partial.Index, D: partial.D, Z: partial.Z}
	}

	warrant := authorizer.Authorize(messageHello, authority.PublicKey())
	result, err := authority.Trace(warrant, public, messageHello, stripped)
	require.NoError(t, err, "an authorized trace over untagged artifacts is empty, not an error")
	assert.Empty(t, result.Indices())
	assert.True(t, result.Verify(public, messageHello, stripped))
}

func TestTraceResultRejectsTampering(t *testing.T) {
	group := curve.Secp256k1{}
	configs, partyIDs, authority, authorizer := tracingSetup(t, group, 5, 3)
	signers := partyIDs[:3]
	public := configs[partyIDs[0]].Public()

	partials := signSession(t, configs, signers, messageHello)
	warrant := authorizer.Authorize(messageHello, authority.PublicKey())
	result, err := authority.Trace(warrant, public, messageHello, partials)
	require.NoError(t, err)
	require.True(t, result.Verify(public, messageHello, partials))

	// Implicating a party that did not sign requires forging a DLEQ proof.
	outsider := partyIDs[4]
	forged := &Result{
		Warrant: result.Warrant,
		Matches: append(append([]*Match{}, result.Matches...), &Match{
			ID:    outsider,
			S:     result.Matches[0].S,
			Tag:   result.Matches[0].Tag,
			Proof: result.Matches[0].Proof,
		}),
	}
	assert.False(t, forged.Verify(public, messageHello, partials))

	// Swapping evidence between two matches breaks both proofs.
	swapped := &Result{
		Warrant: result.Warrant,
		Matches: []*Match{
			{ID: result.Matches[0].ID, S: result.Matches[1].S, Tag: result.Matches[1].Tag, Proof: result.Matches[1].Proof},
			{ID: result.Matches[1].ID, S: result.Matches[0].S, Tag: result.Matches[0].Tag, Proof: result.Matches[0].Proof},
		},
	}
	assert.False(t, swapped.Verify(public, messageHello, partials))

	// A duplicated match is rejected.
	duplicated := &Result{
		Warrant: result.Warrant,
		Matches: append(append([]*Match{}, result.Matches...), result.Matches[0]),
	}
	assert.False(t, duplicated.Verify(public, messageHello, partials))

	// The evidence must point at tags that are actually present.
	assert.False(t, result.Verify(public, messageHello, nil))
}

func TestTraceResultEncoding(t *testing.T) {
	group := curve.Secp256k1{}
	configs, partyIDs, authority, authorizer := tracingSetup(t, group, 4, 2)
	signers := partyIDs[:2]
	public := configs[partyIDs[0]].Public()

	partials := signSession(t, configs, signers, messageHello)
	warrant := authorizer.Authorize(messageHello, authority.PublicKey())
	result, err := authority.Trace(warrant, public, messageHello, partials)
	require.NoError(t, err)

	data, err := result.MarshalBinary()
	require.NoError(t, err)

	decoded := EmptyResult(group)
	require.NoError(t, decoded.UnmarshalBinary(data))
	assert.Equal(t, result.Indices(), decoded.Indices())
	assert.True(t, decoded.Verify(public, messageHello, partials), "decoded evidence should still verify")
}

func TestWarrantScope(t *testing.T) {
	group := curve.Secp256k1{}
	authority := NewAuthority(rand.Reader, group)
	authorizer := NewAuthorizer(rand.Reader, group)

	warrant := authorizer.Authorize(messageHello, authority.PublicKey())
	assert.True(t, warrant.Verify(authorizer.PublicKey(), messageHello, authority.PublicKey()))
	assert.False(t, warrant.Verify(authorizer.PublicKey(), []byte("goodbye"), authority.PublicKey()))

	other := NewAuthority(rand.Reader, group)
	assert.False(t, warrant.Verify(authorizer.PublicKey(), messageHello, other.PublicKey()),
		"a warrant is bound to the authority it was issued to")

	rogue := NewAuthorizer(rand.Reader, group)
	assert.False(t, warrant.Verify(rogue.PublicKey(), messageHello, authority.PublicKey()))

	data, err := warrant.MarshalBinary()
	require.NoError(t, err)
	decoded := EmptyWarrant(group)
	require.NoError(t, decoded.UnmarshalBinary(data))
	assert.True(t, decoded.Verify(authorizer.PublicKey(), messageHello, authority.PublicKey()))
}

func TestTraceEd25519(t *testing.T) {
	group := curve.Ed25519{}
	configs, partyIDs, authority, authorizer := tracingSetup(t, group, 4, 3)
	signers := partyIDs[:3]
	public := configs[partyIDs[0]].Public()

	partials := signSession(t, configs, signers, messageHello)
	warrant := authorizer.Authorize(messageHello, authority.PublicKey())
	result, err := authority.Trace(warrant, public, messageHello, partials)
	require.NoError(t, err)
	assert.Equal(t, signers, result.Indices())
	assert.True(t, result.Verify(public, messageHello, partials))
}
