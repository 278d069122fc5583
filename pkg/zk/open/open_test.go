package zkopen

import (
	"crypto/rand"
	"testing"

	"github.com/fxamacker/cbor/v2"
	"github.com/gargos-crypto/gargos/pkg/hash"
	"github.com/gargos-crypto/gargos/pkg/math/curve"
	"github.com/gargos-crypto/gargos/pkg/math/sample"
	"github.com/gargos-crypto/gargos/pkg/pedersen"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen(t *testing.T) {
	for _, group := range []curve.Curve{curve.Secp256k1{}, curve.Ed25519{}} {
		ped := pedersen.New(group, []byte("test commitment key"))

		x := sample.Scalar(rand.Reader, group)
		r := sample.Scalar(rand.Reader, group)
		public := Public{
			Pedersen: ped,
			V:        ped.Commit(x, r),
		}

		proof := NewProof(hash.New(), public, Private{X: x, R: r})
		require.NotNil(t, proof)
		assert.True(t, proof.Verify(hash.New(), public), "proof should verify")

		data, err := cbor.Marshal(proof)
		require.NoError(t, err)
		proof2 := Empty(group)
		require.NoError(t, cbor.Unmarshal(data, proof2))
		assert.True(t, proof2.Verify(hash.New(), public), "unmarshalled proof should verify")
	}
}

func TestOpenFail(t *testing.T) {
	group := curve.Secp256k1{}
	ped := pedersen.New(group, []byte("test commitment key"))

	x := sample.Scalar(rand.Reader, group)
	r := sample.Scalar(rand.Reader, group)
	public := Public{
		Pedersen: ped,
		V:        ped.Commit(x, r),
	}

	proof := NewProof(hash.New(), public, Private{X: x, R: r})
	require.NotNil(t, proof)

	// different transcript
	wrongHash := hash.New()
	_ = wrongHash.WriteAny([]byte("wrong prefix"))
	assert.False(t, proof.Verify(wrongHash, public), "proof must be bound to the transcript")

	// commitment to a different value
	otherPublic := Public{
		Pedersen: ped,
		V:        ped.Commit(sample.Scalar(rand.Reader, group), r),
	}
	assert.False(t, proof.Verify(hash.New(), otherPublic), "proof must not verify for another commitment")

	// different commitment key
	otherPed := pedersen.New(group, []byte("other commitment key"))
	assert.False(t, proof.Verify(hash.New(), Public{Pedersen: otherPed, V: public.V}), "proof must not verify under another key")

	// mangled responses
	proof.Z1, proof.Z2 = proof.Z2, proof.Z1
	assert.False(t, proof.Verify(hash.New(), public), "mangled proof must not verify")
}
