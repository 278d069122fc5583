package types

import (
	"encoding/binary"
	"io"
)

// ThresholdWrapper gives a threshold value a domain-tagged, fixed-width
// hash encoding.
type ThresholdWrapper uint32

// WriteTo implements io.WriterTo, emitting the threshold as 4 big-endian bytes.
func (t ThresholdWrapper) WriteTo(w io.Writer) (int64, error) {
	var buf [4]byte
	binary.BigEndian.PutUint32(buf[:], uint32(t))
	n, err := w.Write(buf[:])
	return int64(n), err
}

// Domain implements hash.WriterToWithDomain.
func (ThresholdWrapper) Domain() string { return "Threshold" }
