package party

import (
	"encoding/binary"
	"errors"
	"io"
	"math/rand"
	"strconv"

	"github.com/cronokirby/saferith"
	"github.com/gargos-crypto/gargos/pkg/math/curve"
)

// ByteSize is the number of bytes in the encoding of an ID.
const ByteSize = 2

// MAX is the largest value an ID may take.
const MAX = (1 << (ByteSize * 8)) - 1

// ID identifies a share holder, as the index its share was dealt for.
//
// The zero value is reserved, so valid IDs start at 1. This guarantees that
// the scalar derived from an ID never reveals the dealt secret.
type ID uint16

// Scalar returns the ID as a scalar of the given group.
//
// Since valid IDs are never 0, the result is invertible.
func (id ID) Scalar(group curve.Curve) curve.Scalar {
	return group.NewScalar().SetNat(new(saferith.Nat).SetUint64(uint64(id)))
}

// Bytes returns the big-endian encoding of the ID, of length ByteSize.
func (id ID) Bytes() []byte {
	out := make([]byte, ByteSize)
	binary.BigEndian.PutUint16(out, uint16(id))
	return out
}

// String implements fmt.Stringer, as the base 10 representation of the ID.
func (id ID) String() string {
	return strconv.FormatUint(uint64(id), 10)
}

// Valid returns true for any ID except the reserved zero value.
func (id ID) Valid() bool {
	return id != 0
}

// FromBytes reads an ID from the first ByteSize bytes of b.
func FromBytes(b []byte) (ID, error) {
	if len(b) < ByteSize {
		return 0, errors.New("party: not enough bytes for an ID")
	}
	return ID(binary.BigEndian.Uint16(b)), nil
}

// WriteTo implements io.WriterTo interface.
func (id ID) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(id.Bytes())
	return int64(n), err
}

// Domain implements hash.WriterToWithDomain.
func (ID) Domain() string { return "Party ID" }

// RandomIDs returns a sorted slice of n distinct random IDs.
func RandomIDs(n int) IDSlice {
	if n > MAX {
		panic("party: cannot sample more IDs than the ID space holds")
	}
	seen := make(map[ID]bool, n)
	ids := make([]ID, 0, n)
	for len(ids) < n {
		id := ID(rand.Intn(MAX)) + 1
		if seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}
	return NewIDSlice(ids)
}
