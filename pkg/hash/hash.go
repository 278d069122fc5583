// Package hash provides a wrapper around the BLAKE3 hash function,
// which writes the protocol's data types into the state unambiguously.
package hash

import (
	"bytes"
	"encoding"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math/big"

	"github.com/cronokirby/saferith"
	"github.com/gargos-crypto/gargos/internal/params"
	"github.com/zeebo/blake3"
)

// Hash is the hash function used for commitments, challenges and randomness extraction.
type Hash struct {
	h *blake3.Hasher
}

// New creates a Hash struct, with initial data written to the state.
func New(initialData ...WriterToWithDomain) *Hash {
	hash := &Hash{h: blake3.New()}
	for _, d := range initialData {
		_ = hash.WriteAny(d)
	}
	return hash
}

// Digest returns a reader for the unbounded output of the current state.
//
// This is useful for proofs, which stretch a transcript into randomness.
// The state is unaffected by reads on the returned reader.
func (hash *Hash) Digest() io.Reader {
	return hash.h.Digest()
}

// Sum returns the digest of the current state, leaving the state intact.
func (hash *Hash) Sum() []byte {
	out := make([]byte, params.SecBytes)
	_, _ = hash.Digest().Read(out)
	return out
}

// Clone returns a copy of the Hash in its current state.
func (hash *Hash) Clone() *Hash {
	return &Hash{h: hash.h.Clone()}
}

// writeBytesWithDomain writes a length-prefixed domain string followed by
// length-prefixed data to the state.
//
// The prefixes guarantee that no two distinct (domain, data) pairs produce
// the same byte stream, no matter how their lengths line up.
func (hash *Hash) writeBytesWithDomain(domain string, data []byte) {
	sizeBuf := make([]byte, 8)
	binary.BigEndian.PutUint64(sizeBuf, uint64(len(domain)))
	_, _ = hash.h.Write(sizeBuf)
	_, _ = hash.h.WriteString(domain)
	binary.BigEndian.PutUint64(sizeBuf, uint64(len(data)))
	_, _ = hash.h.Write(sizeBuf)
	_, _ = hash.h.Write(data)
}

// WriteAny writes many different data types to the hash state.
func (hash *Hash) WriteAny(data ...interface{}) error {
	for _, d := range data {
		switch t := d.(type) {
		case []byte:
			hash.writeBytesWithDomain("[]byte", t)
		case *big.Int:
			if t == nil {
				return errors.New("hash.WriteAny: write *big.Int: nil")
			}
			enc, err := t.GobEncode()
			if err != nil {
				return fmt.Errorf("hash.WriteAny: write *big.Int: %w", err)
			}
			hash.writeBytesWithDomain("big.Int", enc)
		case *saferith.Nat:
			if t == nil {
				return errors.New("hash.WriteAny: write *saferith.Nat: nil")
			}
			hash.writeBytesWithDomain("saferith.Nat", t.Bytes())
		case *saferith.Int:
			if t == nil {
				return errors.New("hash.WriteAny: write *saferith.Int: nil")
			}
			enc := append([]byte{byte(t.IsNegative())}, t.Abs().Bytes()...)
			hash.writeBytesWithDomain("saferith.Int", enc)
		case *saferith.Modulus:
			if t == nil {
				return errors.New("hash.WriteAny: write *saferith.Modulus: nil")
			}
			hash.writeBytesWithDomain("saferith.Modulus", t.Bytes())
		case WriterToWithDomain:
			buf := new(bytes.Buffer)
			if _, err := t.WriteTo(buf); err != nil {
				return fmt.Errorf("hash.WriteAny: write %s: %w", t.Domain(), err)
			}
			hash.writeBytesWithDomain(t.Domain(), buf.Bytes())
		case encoding.BinaryMarshaler:
			enc, err := t.MarshalBinary()
			if err != nil {
				return fmt.Errorf("hash.WriteAny: marshal %T: %w", d, err)
			}
			hash.writeBytesWithDomain("encoding.BinaryMarshaler", enc)
		case io.WriterTo:
			buf := new(bytes.Buffer)
			if _, err := t.WriteTo(buf); err != nil {
				return fmt.Errorf("hash.WriteAny: write io.WriterTo: %w", err)
			}
			hash.writeBytesWithDomain("io.WriterTo", buf.Bytes())
		default:
			return fmt.Errorf("hash.WriteAny: unsupported type %T", d)
		}
	}
	return nil
}
