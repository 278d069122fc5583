package combine

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/cronokirby/saferith"
	"github.com/fxamacker/cbor/v2"
	"github.com/gargos-crypto/gargos/internal/types"
	"github.com/gargos-crypto/gargos/pkg/hash"
	"github.com/gargos-crypto/gargos/pkg/math/curve"
	"github.com/gargos-crypto/gargos/pkg/timelock"
	zktlp "github.com/gargos-crypto/gargos/pkg/zk/tlp"
	"github.com/gargos-crypto/gargos/protocols/gargos/config"
	"github.com/gargos-crypto/gargos/protocols/gargos/sign"
)

// ErrMalformedArtifact is returned when a time-locked signature fails its
// correctness proof.
var ErrMalformedArtifact = timelock.ErrMalformedArtifact

// TimedSignature locks a signature behind a sequential-work puzzle. The nonce
// point R travels in the clear while the response z is hidden in the puzzle.
// Since S = z•G = R + c•PublicKey is publicly computable, the embedded proof
// shows the puzzle hides exactly the response completing the signature, so
// the artifact can be checked without solving it. The parameters carry the
// hardness and a proof of their own sequential-work setup, which makes the
// artifact self-describing.
type TimedSignature struct {
	// TL are the puzzle parameters.
	TL *timelock.Parameters
	// Puzzle hides the signature's response.
	Puzzle *timelock.Puzzle
	// Proof shows the puzzle opens to the discrete logarithm of R + c•PublicKey.
	Proof *zktlp.Proof
	// R is the signature's nonce point.
	R curve.Point
}

// lockHash binds the puzzle proof to the signature context.
func lockHash(publicKey, R curve.Point, message []byte) *hash.Hash {
	h := hash.New(hash.TaggedBytes("Gargos Timed Combining", nil))
	_ = h.WriteAny(publicKey, R, types.SigningMessage(message))
	return h
}

// Lock wraps an existing signature in a time-lock puzzle under the given
// parameters. Anyone holding the artifact can verify what it will reveal,
// but recovering the signature requires the sequential work the parameters
// prescribe.
func Lock(rand io.Reader, public *config.Public, message []byte, signature *sign.Signature, tl *timelock.Parameters) (*TimedSignature, error) {
	if err := public.Validate(); err != nil {
		return nil, err
	}
	if err := tl.Validate(); err != nil {
		return nil, err
	}
	if signature == nil || !signature.Verify(public.PublicKey, message) {
		return nil, errors.New("combine: refusing to lock an invalid signature")
	}

	zBytes, err := signature.Z.MarshalBinary()
	if err != nil {
		return nil, err
	}
	puzzle, r, err := tl.Lock(rand, new(saferith.Nat).SetBytes(zBytes))
	if err != nil {
		return nil, err
	}

	group := public.Curve()
	proof := zktlp.NewProof(group, lockHash(public.PublicKey, signature.R, message), zktlp.Public{
		TL: tl,
		Z:  puzzle,
		S:  signature.Z.ActOnBase(),
	}, zktlp.Private{
		S: signature.Z,
		R: r,
	})
	if proof == nil {
		return nil, errors.New("combine: failed to prove the time-lock puzzle")
	}

	return &TimedSignature{
		TL:     tl,
		Puzzle: puzzle,
		Proof:  proof,
		R:      signature.R,
	}, nil
}

// Timed combines like Combine and immediately locks the result, so the plain
// signature never leaves the combiner.
func Timed(rand io.Reader, public *config.Public, session *sign.Session, partials []*sign.PartialSignature, tl *timelock.Parameters) (*TimedSignature, error) {
	signature, err := Combine(public, session, partials)
	if err != nil {
		return nil, err
	}
	return Lock(rand, public, session.Message, signature, tl)
}

// Verify checks that solving the artifact will yield a valid signature over
// message: the parameters' own setup proof must hold, and the puzzle must
// hide the discrete logarithm of S = R + c•PublicKey.
func (t *TimedSignature) Verify(public *config.Public, message []byte) bool {
	if t == nil || public == nil || public.Validate() != nil {
		return false
	}
	if t.TL == nil || t.Puzzle == nil || t.Proof == nil || t.R == nil || t.R.IsIdentity() {
		return false
	}
	if err := t.TL.Validate(); err != nil {
		return false
	}

	c := sign.Challenge(t.R, public.PublicKey, message)
	S := c.Act(public.PublicKey).Add(t.R)
	return t.Proof.Verify(lockHash(public.PublicKey, t.R, message), zktlp.Public{TL: t.TL, Z: t.Puzzle, S: S})
}

// Solve verifies the artifact and performs the sequential squarings to
// recover the signature. The cost scales with the hardness parameter and
// cannot be parallelized. Cancelling ctx abandons the attempt without
// corrupting the artifact, which can be solved again from scratch.
func (t *TimedSignature) Solve(ctx context.Context, public *config.Public, message []byte) (*sign.Signature, error) {
	if !t.Verify(public, message) {
		return nil, ErrMalformedArtifact
	}

	solved, err := t.TL.Solve(ctx, t.Puzzle)
	if err != nil {
		return nil, err
	}

	group := public.Curve()
	reduced := new(saferith.Nat).Mod(solved, group.Order())
	signature := &sign.Signature{
		R: t.R,
		Z: group.NewScalar().SetNat(reduced),
	}
	if !signature.Verify(public.PublicKey, message) {
		return nil, ErrMalformedArtifact
	}
	return signature, nil
}

// EmptyTimedSignature returns a TimedSignature ready to be unmarshalled into.
func EmptyTimedSignature(group curve.Curve) *TimedSignature {
	return &TimedSignature{
		TL:     &timelock.Parameters{},
		Puzzle: &timelock.Puzzle{},
		Proof:  zktlp.Empty(group),
		R:      group.NewPoint(),
	}
}

type rawTimedSignature struct {
	TL     *timelock.Parameters
	Puzzle *timelock.Puzzle
	Proof  *zktlp.Proof
	R      curve.Point
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (t *TimedSignature) MarshalBinary() ([]byte, error) {
	return cbor.Marshal(rawTimedSignature{
		TL:     t.TL,
		Puzzle: t.Puzzle,
		Proof:  t.Proof,
		R:      t.R,
	})
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler. The receiver must
// come from EmptyTimedSignature.
func (t *TimedSignature) UnmarshalBinary(data []byte) error {
	if t.TL == nil || t.Puzzle == nil || t.Proof == nil || t.R == nil {
		return errors.New("combine: timed signature must be initialized using EmptyTimedSignature")
	}
	raw := rawTimedSignature{
		TL:     t.TL,
		Puzzle: t.Puzzle,
		Proof:  t.Proof,
		R:      t.R,
	}
	if err := cbor.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("combine: timed signature: %w", err)
	}
	t.TL = raw.TL
	t.Puzzle = raw.Puzzle
	t.Proof = raw.Proof
	t.R = raw.R
	return nil
}
