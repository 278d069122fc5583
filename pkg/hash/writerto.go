package hash

import "io"

// WriterToWithDomain is a value that writes its own encoding and names
// the domain it hashes under, so two types with identical encodings
// still hash apart.
type WriterToWithDomain interface {
	io.WriterTo

	// Domain returns the separation string for this type.
	Domain() string
}

// taggedBytes hashes a raw byte string under a caller-chosen domain.
type taggedBytes struct {
	domain string
	data   []byte
}

// TaggedBytes wraps data so it hashes under the given domain. A nil
// slice hashes like an empty one, so a bare domain acts as a marker.
func TaggedBytes(domain string, data []byte) WriterToWithDomain {
	return taggedBytes{domain: domain, data: data}
}

// WriteTo implements io.WriterTo.
func (t taggedBytes) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(t.data)
	return int64(n), err
}

// Domain implements WriterToWithDomain.
func (t taggedBytes) Domain() string { return t.domain }
