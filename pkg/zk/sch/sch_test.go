package zksch

import (
	"crypto/rand"
	"testing"

	"github.com/fxamacker/cbor/v2"
	"github.com/gargos-crypto/gargos/pkg/hash"
	"github.com/gargos-crypto/gargos/pkg/math/curve"
	"github.com/gargos-crypto/gargos/pkg/math/sample"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchPass(t *testing.T) {
	group := curve.Secp256k1{}

	x := sample.Scalar(rand.Reader, group)
	X := x.ActOnBase()

	proof := NewProof(hash.New(), X, x, nil)
	require.NotNil(t, proof)
	assert.True(t, proof.Verify(hash.New(), X, nil), "proof should verify")

	data, err := cbor.Marshal(proof)
	require.NoError(t, err)
	proof2 := EmptyProof(group)
	require.NoError(t, cbor.Unmarshal(data, proof2))
	assert.True(t, proof2.Verify(hash.New(), X, nil), "unmarshalled proof should verify")
}

func TestSchCustomGenerator(t *testing.T) {
	group := curve.Ed25519{}

	gen := sample.Scalar(rand.Reader, group).ActOnBase()
	x := sample.Scalar(rand.Reader, group)
	X := x.Act(gen)

	proof := NewProof(hash.New(), X, x, gen)
	require.NotNil(t, proof)
	assert.True(t, proof.Verify(hash.New(), X, gen), "proof should verify")
	assert.False(t, proof.Verify(hash.New(), X, nil), "proof must not verify against the base point")
}

func TestSchFail(t *testing.T) {
	group := curve.Secp256k1{}

	x := sample.Scalar(rand.Reader, group)
	X := group.NewPoint()

	// identity public point and zero secret
	proof := NewProof(hash.New(), X, group.NewScalar(), nil)
	assert.Nil(t, proof)

	X = x.ActOnBase()
	proof = NewProof(hash.New(), X, x, nil)
	require.NotNil(t, proof)

	// bind to a different transcript
	wrongHash := hash.New()
	_ = wrongHash.WriteAny([]byte("wrong prefix"))
	assert.False(t, proof.Verify(wrongHash, X, nil), "proof must be bound to the transcript")

	// wrong public point
	otherX := sample.Scalar(rand.Reader, group).ActOnBase()
	assert.False(t, proof.Verify(hash.New(), otherX, nil), "proof must not verify for another public point")

	// mangled response
	proof.Z.Z = sample.Scalar(rand.Reader, group)
	assert.False(t, proof.Verify(hash.New(), X, nil), "mangled proof must not verify")
}
