package types

import "io"

// SigningMessage is the application message being signed, tagged so it
// hashes under its own domain. A nil message hashes under a distinct
// domain and can never collide with an empty one.
type SigningMessage []byte

// WriteTo implements io.WriterTo.
func (m SigningMessage) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(m)
	return int64(n), err
}

// Domain implements hash.WriterToWithDomain.
func (m SigningMessage) Domain() string {
	if m == nil {
		return "Empty Message"
	}
	return "Signature Message"
}
