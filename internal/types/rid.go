package types

import (
	"errors"
	"fmt"
	"io"

	"github.com/gargos-crypto/gargos/internal/params"
)

// RID is a random identifier of params.SecBytes bytes, combined across
// parties by XOR so that one honest contribution randomizes the result.
type RID []byte

// EmptyRID returns an all-zero RID of the correct length.
func EmptyRID() RID {
	return make(RID, params.SecBytes)
}

// NewRID samples a fresh RID from r.
func NewRID(r io.Reader) (RID, error) {
	rid := EmptyRID()
	if _, err := io.ReadFull(r, rid); err != nil {
		return nil, err
	}
	return rid, nil
}

// XOR folds other into the receiver in place.
func (rid RID) XOR(other RID) {
	for i := range rid {
		rid[i] ^= other[i]
	}
}

// WriteTo implements io.WriterTo.
func (rid RID) WriteTo(w io.Writer) (int64, error) {
	if rid == nil {
		return 0, io.ErrUnexpectedEOF
	}
	n, err := w.Write(rid)
	return int64(n), err
}

// Domain implements hash.WriterToWithDomain.
func (RID) Domain() string { return "RID" }

// Validate checks the length and rejects the all-zero value.
func (rid RID) Validate() error {
	if len(rid) != params.SecBytes {
		return fmt.Errorf("rid: wrong length %d, want %d", len(rid), params.SecBytes)
	}
	for _, b := range rid {
		if b != 0 {
			return nil
		}
	}
	return errors.New("rid: all zero")
}

// Copy returns an independent copy.
func (rid RID) Copy() RID {
	c := EmptyRID()
	copy(c, rid)
	return c
}
