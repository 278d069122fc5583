package timelock

import (
	"context"

	"github.com/cronokirby/saferith"
)

// checkCancelMask throttles how often Solve polls the context. Polling every
// 1024 squarings keeps the overhead below measurement noise.
const checkCancelMask = 1<<10 - 1

// Solve recovers the value hidden in puzzle by performing t sequential
// squarings. There is no shortcut and no way to persist progress: cancelling
// ctx aborts the computation and a later call starts over.
func (p *Parameters) Solve(ctx context.Context, puzzle *Puzzle) (*saferith.Nat, error) {
	if err := puzzle.Validate(p); err != nil {
		return nil, err
	}

	// w = u^(2ᵗ) (mod n)
	w := new(saferith.Nat).SetNat(puzzle.U)
	for i := uint64(0); i < p.t; i++ {
		if i&checkCancelMask == 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			default:
			}
		}
		w.ModMul(w, w, p.n.Modulus)
	}

	// m = L(v ⋅ (wᴺ)⁻¹ (mod n²)), with L(x) = (x-1)/n
	wN := p.nSquared.Exp(w, p.nNat)
	wN.ModInverse(wN, p.nSquared.Modulus)
	res := new(saferith.Nat).ModMul(puzzle.V, wN, p.nSquared.Modulus)
	res.ModSub(res, new(saferith.Nat).SetUint64(1), p.nSquared.Modulus)
	res.Div(res, p.n.Modulus, -1)
	return res, nil
}
