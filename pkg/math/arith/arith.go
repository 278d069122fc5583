package arith

import (
	"github.com/cronokirby/saferith"
	"github.com/gargos-crypto/gargos/internal/params"
)

// IsInIntervalLEps returns true if n ∈ [-2ˡ⁺ᵉ, …, 2ˡ⁺ᵉ].
func IsInIntervalLEps(n *saferith.Int) bool {
	if n == nil {
		return false
	}
	return n.TrueLen() <= params.LPlusEpsilon
}
