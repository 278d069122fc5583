package sample

import (
	"io"
	"math"
	"math/big"
	"sync"

	"github.com/cronokirby/saferith"
	"github.com/gargos-crypto/gargos/internal/params"
	"github.com/gargos-crypto/gargos/pkg/pool"
)

// windowSize is the number of candidates sieved per random base. Each
// slot i stands for base + 4i, so one window spans 4*windowSize
// integers, all congruent to 3 mod 4.
const windowSize = 1 << 16

// smallPrimeBound caps the trial-division primes used for sieving.
const smallPrimeBound = 1 << 20

// mrIterations is the Miller-Rabin count for the co-factor check, the
// same count the standard library uses for untrusted input.
const mrIterations = 20

var (
	smallPrimesOnce sync.Once
	smallPrimes     []uint32
)

// oddPrimes returns the odd primes below the bound, via a sieve of
// Eratosthenes over odd numbers only.
func oddPrimes(below uint32) []uint32 {
	// composite[i] refers to the odd number 2i+1.
	composite := make([]bool, below/2)
	for p := uint32(3); p*p < below; p += 2 {
		if composite[p/2] {
			continue
		}
		for m := p * p; m < below; m += 2 * p {
			composite[m/2] = true
		}
	}

	estimate := float64(below)
	out := make([]uint32, 0, int(estimate/math.Log(estimate)))
	for i := uint32(1); 2*i+1 < below; i++ {
		if !composite[i] {
			out = append(out, 2*i+1)
		}
	}
	return out
}

var windowPool = sync.Pool{
	New: func() interface{} {
		w := make([]bool, windowSize)
		return &w
	},
}

// inverseOfFour returns 4⁻¹ mod r for odd r.
func inverseOfFour(r uint64) uint64 {
	if r%4 == 3 {
		return (r + 1) / 4
	}
	return (3*r + 1) / 4
}

// tryBlumPrime sieves one random window for a safe Blum prime: p ≡ 3
// mod 4 with (p−1)/2 prime. It returns nil when the window comes up
// empty, and the caller draws a fresh base.
func tryBlumPrime(rand io.Reader) *saferith.Nat {
	smallPrimesOnce.Do(func() {
		smallPrimes = oddPrimes(smallPrimeBound)
	})

	buf := make([]byte, (params.BitsBlumPrime+7)/8)
	if _, err := io.ReadFull(rand, buf); err != nil {
		return nil
	}
	// base ≡ 3 mod 4, and the top two bits are set so the product of
	// two such primes reaches the full modulus width.
	buf[len(buf)-1] |= 3
	buf[0] |= 0xC0
	base := new(big.Int).SetBytes(buf)

	windowPtr := windowPool.Get().(*[]bool)
	window := *windowPtr
	defer windowPool.Put(windowPtr)
	for i := range window {
		window[i] = true
	}

	// For every small prime r, kill the candidates base+4i that r
	// divides, and those ≡ 1 mod r, whose co-factor (p−1)/2 r divides.
	rBig := new(big.Int)
	for _, p := range smallPrimes {
		r := uint64(p)
		b := rBig.SetUint64(r).Mod(base, rBig).Uint64()
		inv4 := inverseOfFour(r)

		killFrom := ((r - b) % r) * inv4 % r
		for i := killFrom; i < windowSize; i += r {
			window[i] = false
		}
		killFrom = ((r + 1 - b) % r) * inv4 % r
		for i := killFrom; i < windowSize; i += r {
			window[i] = false
		}
	}

	candidate := new(big.Int)
	cofactor := new(big.Int)
	four := big.NewInt(4)
	for i, alive := range window {
		if !alive {
			continue
		}
		candidate.SetInt64(int64(i))
		candidate.Mul(candidate, four).Add(candidate, base)
		if candidate.BitLen() > params.BitsBlumPrime {
			return nil
		}
		// The co-factor check first: random survivors fail it far more
		// often than the candidate check.
		cofactor.Rsh(candidate, 1)
		if !cofactor.ProbablyPrime(mrIterations) {
			continue
		}
		// With the co-factor prime, one round suffices.
		if !candidate.ProbablyPrime(0) {
			continue
		}
		return new(saferith.Nat).SetBig(candidate, params.BitsBlumPrime)
	}
	return nil
}

// BlumPrimes draws the two factors of a time-lock modulus: safe Blum
// primes, found in parallel when a pool is provided.
func BlumPrimes(rand io.Reader, pl *pool.Pool) (p, q *saferith.Nat) {
	reader := pool.NewLockedReader(rand)
	results := pl.Search(2, func() interface{} {
		// A nil *Nat boxed in an interface would not compare equal to
		// nil, so unbox explicitly.
		if prime := tryBlumPrime(reader); prime != nil {
			return prime
		}
		return nil
	})
	p, q = results[0].(*saferith.Nat), results[1].(*saferith.Nat)
	return
}
