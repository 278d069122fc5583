package pedersen

import (
	"crypto/rand"
	"testing"

	"github.com/gargos-crypto/gargos/pkg/math/curve"
	"github.com/gargos-crypto/gargos/pkg/math/sample"
	"github.com/stretchr/testify/assert"
)

func TestCommitVerify(t *testing.T) {
	for _, group := range []curve.Curve{curve.Secp256k1{}, curve.Ed25519{}} {
		t.Run(group.Name(), func(t *testing.T) {
			params := New(group, []byte("test seed"))

			x := sample.Scalar(rand.Reader, group)
			r := sample.Scalar(rand.Reader, group)
			c := params.Commit(x, r)

			assert.True(t, params.Verify(x, r, c))
			assert.False(t, params.Verify(r, x, c), "swapped opening should fail")
			assert.False(t, params.Verify(x, r, params.H()), "wrong commitment should fail")
			assert.False(t, params.Verify(nil, r, c))
		})
	}
}

func TestCommitHomomorphic(t *testing.T) {
	group := curve.Secp256k1{}
	params := New(group, []byte("test seed"))

	x1 := sample.Scalar(rand.Reader, group)
	r1 := sample.Scalar(rand.Reader, group)
	x2 := sample.Scalar(rand.Reader, group)
	r2 := sample.Scalar(rand.Reader, group)

	sum := params.Commit(x1, r1).Add(params.Commit(x2, r2))
	x := group.NewScalar().Set(x1).Add(x2)
	r := group.NewScalar().Set(r1).Add(r2)
	assert.True(t, params.Verify(x, r, sum), "commitments should add homomorphically")
}

func TestDeterministicParameters(t *testing.T) {
	group := curve.Secp256k1{}
	first := New(group, []byte("seed"))
	second := New(group, []byte("seed"))
	assert.True(t, first.H().Equal(second.H()))

	other := New(group, []byte("different seed"))
	assert.False(t, first.H().Equal(other.H()))
	assert.False(t, first.H().Equal(group.NewBasePoint()), "H must differ from G")
}
