package round

import (
	"encoding/binary"
	"io"
)

// Number indexes a round within a protocol. The first round is 1;
// terminal rounds use 0.
type Number uint16

// WriteTo implements io.WriterTo, emitting 2 big-endian bytes.
func (n Number) WriteTo(w io.Writer) (int64, error) {
	var buf [2]byte
	binary.BigEndian.PutUint16(buf[:], uint16(n))
	written, err := w.Write(buf[:])
	return int64(written), err
}

// Domain implements hash.WriterToWithDomain.
func (Number) Domain() string { return "Round Number" }
