package party

import (
	"testing"

	"github.com/gargos-crypto/gargos/pkg/math/curve"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIDBytesRoundTrip(t *testing.T) {
	for _, id := range []ID{1, 2, 0x0102, MAX} {
		decoded, err := FromBytes(id.Bytes())
		require.NoError(t, err)
		assert.Equal(t, id, decoded)
	}

	_, err := FromBytes([]byte{1})
	assert.Error(t, err)
}

func TestIDScalarNonZero(t *testing.T) {
	group := curve.Secp256k1{}
	one := ID(1).Scalar(group)
	assert.False(t, one.IsZero())

	two := ID(2).Scalar(group)
	assert.True(t, one.Add(one).Equal(two))
}

func TestRandomIDs(t *testing.T) {
	ids := RandomIDs(10)
	assert.Len(t, ids, 10)
	assert.True(t, ids.Valid())
}

func TestIDSliceSearch(t *testing.T) {
	ids := NewIDSlice([]ID{5, 1, 3})
	assert.True(t, ids.Valid())
	assert.True(t, ids.Contains(1, 3, 5))
	assert.False(t, ids.Contains(2))
	assert.Equal(t, 1, ids.GetIndex(3))
	assert.Equal(t, -1, ids.GetIndex(4))
}

func TestIDSliceValid(t *testing.T) {
	assert.False(t, IDSlice{1, 1, 2}.Valid(), "duplicates are invalid")
	assert.False(t, IDSlice{2, 1}.Valid(), "unsorted slices are invalid")
	assert.False(t, IDSlice{0, 1}.Valid(), "the zero ID is invalid")
	assert.True(t, IDSlice{}.Valid())
}

func TestIDSliceRemove(t *testing.T) {
	ids := NewIDSlice([]ID{1, 2, 3})
	removed := ids.Remove(2)
	assert.Equal(t, IDSlice{1, 3}, removed)
	assert.Equal(t, IDSlice{1, 2, 3}, ids, "Remove should not mutate the receiver")
}

func TestPointMapMarshalRoundTrip(t *testing.T) {
	group := curve.Secp256k1{}
	points := map[ID]curve.Point{
		1: ID(1).Scalar(group).ActOnBase(),
		5: ID(5).Scalar(group).ActOnBase(),
	}
	m := NewPointMap(points)
	data, err := m.MarshalBinary()
	require.NoError(t, err)

	decoded := EmptyPointMap(group)
	require.NoError(t, decoded.UnmarshalBinary(data))
	require.Len(t, decoded.Points, 2)
	for id, p := range points {
		assert.True(t, p.Equal(decoded.Points[id]))
	}
}
