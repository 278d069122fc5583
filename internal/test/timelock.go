package test

import (
	mrand "math/rand"

	"github.com/cronokirby/saferith"
	"github.com/gargos-crypto/gargos/pkg/timelock"
)

var timelockP, timelockQ *saferith.Nat

func init() {
	timelockP, _ = new(saferith.Nat).SetHex("D08769E92F80F7FDFB85EC02AFFDAED0FDE2782070757F191DCDC4D108110AC1E31C07FC253B5F7B91C5D9F203AA0572D3F2062A3D2904C535C6ACCA7D5674E1C2640720E762C72B66931F483C2D910908CF02EA6723A0CBBB1016CA696C38FEAC59B31E40584C8141889A11F7A38F5B17811D11F42CD15B8470F11C6183802B")
	timelockQ, _ = new(saferith.Nat).SetHex("C21239C3484FC3C8409F40A9A22FABFFE26CA10C27506E3E017C2EC8C4B98D7A6D30DED0686869884BE9BAD27F5241B7313F73D19E9E4B384FABF9554B5BB4D517CBAC0268420C63D545612C9ADABEEDF20F94244E7F8F2080B0C675AC98D97C580D43375F999B1AC127EC580B89B2D302EF33DD5FD8474A241B0398F6088CA7")
}

// TimelockParameters returns deterministic time-lock parameters built from
// fixed Blum primes, so tests skip the prime search.
func TimelockParameters(hardness uint64) *timelock.Parameters {
	p, err := timelock.NewParametersFromPrimes(mrand.New(mrand.NewSource(42)), timelockP, timelockQ, hardness)
	if err != nil {
		panic(err)
	}
	return p
}
