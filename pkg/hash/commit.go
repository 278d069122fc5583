package hash

import (
	"bytes"
	"crypto/rand"
	"fmt"
	"io"

	"github.com/gargos-crypto/gargos/internal/params"
)

type (
	// Commitment is the digest of some data and a decommitment string.
	Commitment []byte
	// Decommitment is the randomness that opens a Commitment.
	Decommitment []byte
)

// WriteTo implements io.WriterTo.
func (c Commitment) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(c)
	return int64(n), err
}

// Domain implements WriterToWithDomain.
func (Commitment) Domain() string { return "Commitment" }

func (c Commitment) Validate() error {
	if len(c) != params.SecBytes {
		return fmt.Errorf("commitment: wrong length %d, want %d", len(c), params.SecBytes)
	}
	return nil
}

// WriteTo implements io.WriterTo.
func (d Decommitment) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(d)
	return int64(n), err
}

// Domain implements WriterToWithDomain.
func (Decommitment) Domain() string { return "Decommitment" }

func (d Decommitment) Validate() error {
	if len(d) != params.SecBytes {
		return fmt.Errorf("decommitment: wrong length %d, want %d", len(d), params.SecBytes)
	}
	return nil
}

// digest folds data and the decommitment into a clone of the current
// state, so Commit and Decommit agree byte for byte.
func (hash *Hash) digest(d Decommitment, data []interface{}) ([]byte, error) {
	h := hash.Clone()
	for _, item := range data {
		if err := h.WriteAny(item); err != nil {
			return nil, err
		}
	}
	if err := h.WriteAny(d); err != nil {
		return nil, err
	}
	return h.Sum(), nil
}

// Commit commits to data under fresh randomness, returning the
// commitment and the decommitment string that opens it.
func (hash *Hash) Commit(data ...interface{}) (Commitment, Decommitment, error) {
	decommitment := Decommitment(make([]byte, params.SecBytes))
	if _, err := rand.Read(decommitment); err != nil {
		return nil, nil, fmt.Errorf("hash.Commit: sample decommitment: %w", err)
	}

	c, err := hash.digest(decommitment, data)
	if err != nil {
		return nil, nil, fmt.Errorf("hash.Commit: %w", err)
	}
	return c, decommitment, nil
}

// Decommit reports whether c opens to data under d.
func (hash *Hash) Decommit(c Commitment, d Decommitment, data ...interface{}) bool {
	if c.Validate() != nil || d.Validate() != nil {
		return false
	}
	expected, err := hash.digest(d, data)
	if err != nil {
		return false
	}
	return bytes.Equal(expected, c)
}
