// Package timelock implements a linearly homomorphic time-lock puzzle over an
// RSA group, following Malavolta and Thyagarajan (CRYPTO 2019), together with
// Wesolowski's proof of exponentiation so that parameters are publicly
// verifiable without redoing the squarings.
package timelock

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/cronokirby/saferith"
	"github.com/fxamacker/cbor/v2"
	"github.com/gargos-crypto/gargos/internal/params"
	"github.com/gargos-crypto/gargos/pkg/math/arith"
	"github.com/gargos-crypto/gargos/pkg/math/sample"
	"github.com/gargos-crypto/gargos/pkg/pool"
)

var (
	// ErrInvalidHardness is returned when the squaring count t is zero.
	ErrInvalidHardness = errors.New("timelock: hardness t must be at least 1")
	// ErrMalformedArtifact is returned when parameters or a puzzle fail validation.
	ErrMalformedArtifact = errors.New("timelock: malformed time-lock artifact")
)

// Parameters are the public parameters of the puzzle scheme. Solving a puzzle
// takes t sequential squarings modulo n; no secret shortcut is retained after
// generation.
type Parameters struct {
	// n = p⋅q is the time-lock modulus.
	n *arith.Modulus
	// nSquared = n², the ciphertext modulus.
	nSquared *arith.Modulus
	// nNat = n, nPlusOne = n+1, cached.
	nNat, nPlusOne *saferith.Nat
	// t is the number of sequential squarings needed to solve a puzzle.
	t uint64
	// g is a random unit mod n.
	g *saferith.Nat
	// h = g^(2ᵗ) (mod n).
	h *saferith.Nat
	// poe certifies h = g^(2ᵗ) (mod n).
	poe *PoE
}

// NewParameters generates parameters with hardness t.
//
// The factorization of the modulus serves only to compute h and its proof
// without performing t squarings. It is not part of the result, so the
// generating party cannot open puzzles faster than anyone else once this
// function returns.
func NewParameters(rand io.Reader, pl *pool.Pool, t uint64) (*Parameters, error) {
	if t == 0 {
		return nil, ErrInvalidHardness
	}
	p, q := sample.BlumPrimes(rand, pl)
	return NewParametersFromPrimes(rand, p, q, t)
}

// NewParametersFromPrimes is NewParameters for callers who already hold Blum
// primes p and q, skipping the search. The caller is responsible for the
// primes having the right form and size, and for discarding them afterwards.
func NewParametersFromPrimes(rand io.Reader, p, q *saferith.Nat, t uint64) (*Parameters, error) {
	if t == 0 {
		return nil, ErrInvalidHardness
	}
	one := new(saferith.Nat).SetUint64(1)
	pMinusOne := new(saferith.Nat).Sub(p, one, -1)
	qMinusOne := new(saferith.Nat).Sub(q, one, -1)
	phi := saferith.ModulusFromNat(new(saferith.Nat).Mul(pMinusOne, qMinusOne, -1))

	// trapdoor modulus, local to generation
	nFast := arith.ModulusFromFactors(p, q)

	g := sample.UnitModN(rand, nFast.Modulus)

	// 2ᵗ (mod φ(n)) reduces the tower of squarings to one exponentiation.
	e := new(saferith.Nat).Exp(
		new(saferith.Nat).SetUint64(2),
		new(saferith.Nat).SetUint64(t),
		phi,
	)
	h := nFast.Exp(g, e)

	poe := newPoE(nFast, phi, t, g, h)
	if poe == nil {
		return nil, fmt.Errorf("%w: proof of exponentiation failed", ErrMalformedArtifact)
	}

	out := bareParameters(nFast.Modulus, t, g, h, poe)
	return out, nil
}

// bareParameters assembles a Parameters value whose modulus carries no
// factorization, deriving the cached values from n.
func bareParameters(n *saferith.Modulus, t uint64, g, h *saferith.Nat, poe *PoE) *Parameters {
	nNat := n.Nat()
	nSquared := saferith.ModulusFromNat(new(saferith.Nat).Mul(nNat, nNat, -1))
	nPlusOne := new(saferith.Nat).Add(nNat, new(saferith.Nat).SetUint64(1), -1)
	return &Parameters{
		n:        arith.ModulusFromN(n),
		nSquared: arith.ModulusFromN(nSquared),
		nNat:     nNat,
		nPlusOne: nPlusOne,
		t:        t,
		g:        g,
		h:        h,
		poe:      poe,
	}
}

// Validate checks the parameters, including the proof that h = g^(2ᵗ).
// It must be called on parameters received from an untrusted source.
func (p *Parameters) Validate() error {
	if p == nil || p.n == nil || p.nSquared == nil || p.g == nil || p.h == nil {
		return fmt.Errorf("%w: missing fields", ErrMalformedArtifact)
	}
	if p.t == 0 {
		return ErrInvalidHardness
	}
	if bits := p.n.BitLen(); bits != params.BitsTimelock {
		return fmt.Errorf("%w: modulus has %d bits, expected %d", ErrMalformedArtifact, bits, params.BitsTimelock)
	}
	if p.nNat.Big().Bit(0) != 1 {
		return fmt.Errorf("%w: modulus is even", ErrMalformedArtifact)
	}
	if p.g.IsUnit(p.n.Modulus) != 1 || p.h.IsUnit(p.n.Modulus) != 1 {
		return fmt.Errorf("%w: base is not a unit", ErrMalformedArtifact)
	}
	if !p.poe.Verify(p.n, p.t, p.g, p.h) {
		return fmt.Errorf("%w: proof of exponentiation does not verify", ErrMalformedArtifact)
	}
	return nil
}

// N returns the time-lock modulus n.
// WARNING: Do not modify the returned value.
func (p *Parameters) N() *arith.Modulus { return p.n }

// NSquared returns n².
// WARNING: Do not modify the returned value.
func (p *Parameters) NSquared() *arith.Modulus { return p.nSquared }

// NNat returns n as a saferith.Nat.
// WARNING: Do not modify the returned value.
func (p *Parameters) NNat() *saferith.Nat { return p.nNat }

// T returns the number of sequential squarings a puzzle costs.
func (p *Parameters) T() uint64 { return p.t }

// G returns the puzzle base g.
// WARNING: Do not modify the returned value.
func (p *Parameters) G() *saferith.Nat { return p.g }

// H returns h = g^(2ᵗ) (mod n).
// WARNING: Do not modify the returned value.
func (p *Parameters) H() *saferith.Nat { return p.h }

// PowG returns gʳ (mod n) for signed r.
func (p *Parameters) PowG(r *saferith.Int) *saferith.Nat {
	return p.n.ExpI(p.g, r)
}

// Enc returns (hʳ)ᴺ⋅(1+N)ᵐ (mod n²) for signed m, r. This is the second
// puzzle component, and the equation proofs about puzzles re-derive.
func (p *Parameters) Enc(m, r *saferith.Int) *saferith.Nat {
	hr := p.n.ExpI(p.h, r)
	c := p.nSquared.Exp(hr, p.nNat)
	// (1+N)ᵐ = 1 + mN (mod N²)
	mN := new(saferith.Nat).ModMul(m.Mod(p.n.Modulus), p.nNat, p.nSquared.Modulus)
	mN.ModAdd(mN, new(saferith.Nat).SetUint64(1), p.nSquared.Modulus)
	c.ModMul(c, mN, p.nSquared.Modulus)
	return c
}

// WriteTo implements io.WriterTo and writes (t, n, g, h) to w.
func (p *Parameters) WriteTo(w io.Writer) (int64, error) {
	if p == nil {
		return 0, io.ErrUnexpectedEOF
	}
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], p.t)
	total := int64(0)
	n, err := w.Write(buf[:])
	total += int64(n)
	if err != nil {
		return total, err
	}
	for _, b := range [][]byte{p.n.Bytes(), p.g.Bytes(), p.h.Bytes()} {
		n, err = w.Write(b)
		total += int64(n)
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// Domain implements hash.WriterToWithDomain.
func (Parameters) Domain() string {
	return "TimeLock Parameters"
}

type rawParameters struct {
	N []byte
	T uint64
	G []byte
	H []byte
	Q []byte
}

// MarshalBinary implements encoding.BinaryMarshaler. The factorization, when
// present, is never written.
func (p *Parameters) MarshalBinary() ([]byte, error) {
	if p == nil || p.poe == nil {
		return nil, fmt.Errorf("%w: missing fields", ErrMalformedArtifact)
	}
	return cbor.Marshal(rawParameters{
		N: p.n.Bytes(),
		T: p.t,
		G: p.g.Bytes(),
		H: p.h.Bytes(),
		Q: p.poe.Q.Bytes(),
	})
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler. The result must
// still be checked with Validate.
func (p *Parameters) UnmarshalBinary(data []byte) error {
	var raw rawParameters
	if err := cbor.Unmarshal(data, &raw); err != nil {
		return err
	}
	if len(raw.N) == 0 || len(raw.G) == 0 || len(raw.H) == 0 || len(raw.Q) == 0 {
		return fmt.Errorf("%w: missing fields", ErrMalformedArtifact)
	}
	n := saferith.ModulusFromBytes(raw.N)
	g := new(saferith.Nat).SetBytes(raw.G)
	h := new(saferith.Nat).SetBytes(raw.H)
	poe := &PoE{Q: new(saferith.Nat).SetBytes(raw.Q)}
	*p = *bareParameters(n, raw.T, g, h, poe)
	return nil
}
