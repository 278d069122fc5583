package zkdleq

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

func TestDLEQ(t *testing.T) {
	for _, group := range []curve.Curve{curve.Secp256k1{}, curve.Ed25519{}} {
		H := sample.Scalar(rand.Reader, group).ActOnBase()
		x := sample.Scalar(rand.Reader, group)
		public := Public{
			H: H,
			X: x.ActOnBase(),
			Y: x.Act(H),
		}

		proof := NewProof(group, hash.New(), public, Private{X: x})
		require.NotNil(t, proof)
		assert.True(t, proof.Verify(hash.New(), public), "proof should verify")

		data, err := cbor.Marshal(proof)
		require.NoError(t, err)
		proof2 := Empty(group)
		require.NoError(t, cbor.Unmarshal(data, proof2))
		assert.True(t, proof2.Verify(hash.New(), public), "unmarshalled proof should verify")
	}
}

func TestDLEQFail(t *testing.T) {
	group := curve.Secp256k1{}

	H := sample.Scalar(rand.Reader, group).ActOnBase()
	x := sample.Scalar(rand.Reader, group)
	public := Public{
		H: H,
		X: x.ActOnBase(),
		Y: x.Act(H),
	}

	proof := NewProof(group, hash.New(), public, Private{X: x})
	require.NotNil(t, proof)

	// different transcript
	wrongHash := hash.New()
	_ = wrongHash.WriteAny([]byte("wrong prefix"))
	assert.False(t, proof.Verify(wrongHash, public), "proof must be bound to the transcript")

	// Y with a different discrete logarithm
	badPublic := public
	badPublic.Y = sample.Scalar(rand.Reader, group).Act(H)
	assert.False(t, proof.Verify(hash.New(), badPublic), "proof must not verify when the logarithms differ")

	// identity member
	badPublic = public
	badPublic.X = group.NewPoint()
	assert.False(t, proof.Verify(hash.New(), badPublic), "identity public point must be rejected")

	// mangled response
	proof.Z = sample.Scalar(rand.Reader, group)
	assert.False(t, proof.Verify(hash.New(), public), "mangled proof must not verify")
}
