package timelock

import (
	"fmt"
	"io"

	"github.com/cronokirby/saferith"
	"github.com/fxamacker/cbor/v2"
	"github.com/gargos-crypto/gargos/pkg/math/sample"
)

// Puzzle hides a value m as
//
//	u = gʳ (mod n)
//	v = (hʳ)ᴺ⋅(1+N)ᵐ (mod n²)
//
// for random r. Recovering m requires computing u^(2ᵗ), which takes t
// sequential squarings without the factorization of n.
type Puzzle struct {
	U *saferith.Nat
	V *saferith.Nat
}

// Lock embeds m in a fresh puzzle and returns it together with the
// randomness r, which the caller needs to prove statements about the puzzle.
// m must be smaller than the modulus.
func (p *Parameters) Lock(rand io.Reader, m *saferith.Nat) (*Puzzle, *saferith.Nat, error) {
	if m == nil {
		return nil, nil, fmt.Errorf("%w: nil value", ErrMalformedArtifact)
	}
	if _, _, lt := m.CmpMod(p.n.Modulus); lt != 1 {
		return nil, nil, fmt.Errorf("%w: value does not fit the modulus", ErrMalformedArtifact)
	}
	r := sample.ModN(rand, p.n.Modulus)

	rInt := new(saferith.Int).SetNat(r)
	mInt := new(saferith.Int).SetNat(m)
	puzzle := &Puzzle{
		U: p.PowG(rInt),
		V: p.Enc(mInt, rInt),
	}
	return puzzle, r, nil
}

// Validate checks that the puzzle components are units in the right groups.
func (z *Puzzle) Validate(p *Parameters) error {
	if z == nil || z.U == nil || z.V == nil {
		return fmt.Errorf("%w: missing puzzle component", ErrMalformedArtifact)
	}
	if _, _, lt := z.U.CmpMod(p.n.Modulus); lt != 1 {
		return fmt.Errorf("%w: u out of range", ErrMalformedArtifact)
	}
	if _, _, lt := z.V.CmpMod(p.nSquared.Modulus); lt != 1 {
		return fmt.Errorf("%w: v out of range", ErrMalformedArtifact)
	}
	if z.U.IsUnit(p.n.Modulus) != 1 {
		return fmt.Errorf("%w: u is not a unit", ErrMalformedArtifact)
	}
	if z.V.IsUnit(p.nSquared.Modulus) != 1 {
		return fmt.Errorf("%w: v is not a unit", ErrMalformedArtifact)
	}
	return nil
}

// WriteTo implements io.WriterTo.
func (z *Puzzle) WriteTo(w io.Writer) (int64, error) {
	if z == nil {
		return 0, io.ErrUnexpectedEOF
	}
	total := int64(0)
	for _, b := range [][]byte{z.U.Bytes(), z.V.Bytes()} {
		n, err := w.Write(b)
		total += int64(n)
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// Domain implements hash.WriterToWithDomain.
func (Puzzle) Domain() string {
	return "TimeLock Puzzle"
}

type rawPuzzle struct {
	U []byte
	V []byte
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (z *Puzzle) MarshalBinary() ([]byte, error) {
	if z == nil || z.U == nil || z.V == nil {
		return nil, fmt.Errorf("%w: missing puzzle component", ErrMalformedArtifact)
	}
	return cbor.Marshal(rawPuzzle{U: z.U.Bytes(), V: z.V.Bytes()})
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler. The result must
// still be checked with Validate.
func (z *Puzzle) UnmarshalBinary(data []byte) error {
	var raw rawPuzzle
	if err := cbor.Unmarshal(data, &raw); err != nil {
		return err
	}
	if len(raw.U) == 0 || len(raw.V) == 0 {
		return fmt.Errorf("%w: missing puzzle component", ErrMalformedArtifact)
	}
	z.U = new(saferith.Nat).SetBytes(raw.U)
	z.V = new(saferith.Nat).SetBytes(raw.V)
	return nil
}
