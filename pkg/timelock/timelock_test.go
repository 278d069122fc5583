package timelock

import (
	"context"
	mrand "math/rand"
	"testing"

	"github.com/cronokirby/saferith"
	"github.com/gargos-crypto/gargos/pkg/math/sample"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fixed Blum primes so tests skip the expensive search
var testP, testQ *saferith.Nat

func init() {
	testP, _ = new(saferith.Nat).SetHex("D08769E92F80F7FDFB85EC02AFFDAED0FDE2782070757F191DCDC4D108110AC1E31C07FC253B5F7B91C5D9F203AA0572D3F2062A3D2904C535C6ACCA7D5674E1C2640720E762C72B66931F483C2D910908CF02EA6723A0CBBB1016CA696C38FEAC59B31E40584C8141889A11F7A38F5B17811D11F42CD15B8470F11C6183802B")
	testQ, _ = new(saferith.Nat).SetHex("C21239C3484FC3C8409F40A9A22FABFFE26CA10C27506E3E017C2EC8C4B98D7A6D30DED0686869884BE9BAD27F5241B7313F73D19E9E4B384FABF9554B5BB4D517CBAC0268420C63D545612C9ADABEEDF20F94244E7F8F2080B0C675AC98D97C580D43375F999B1AC127EC580B89B2D302EF33DD5FD8474A241B0398F6088CA7")
}

func testParameters(t *testing.T, hardness uint64) *Parameters {
	t.Helper()
	p, err := NewParametersFromPrimes(mrand.New(mrand.NewSource(42)), testP, testQ, hardness)
	require.NoError(t, err)
	return p
}

func TestParametersValidate(t *testing.T) {
	p := testParameters(t, 128)
	require.NoError(t, p.Validate())

	// a different hardness changes the statement, so the proof must fail
	bad := bareParameters(p.n.Modulus, p.t+1, p.g, p.h, p.poe)
	assert.ErrorIs(t, bad.Validate(), ErrMalformedArtifact)

	// h that is not g^(2ᵗ)
	bad = bareParameters(p.n.Modulus, p.t, p.g, p.g, p.poe)
	assert.ErrorIs(t, bad.Validate(), ErrMalformedArtifact)
}

func TestLockSolve(t *testing.T) {
	p := testParameters(t, 512)
	r := mrand.New(mrand.NewSource(1))

	for _, m := range []*saferith.Nat{
		new(saferith.Nat).SetUint64(42),
		sample.ModN(r, p.N().Modulus),
	} {
		puzzle, nonce, err := p.Lock(r, m)
		require.NoError(t, err)
		require.NotNil(t, nonce)
		require.NoError(t, puzzle.Validate(p))

		solved, err := p.Solve(context.Background(), puzzle)
		require.NoError(t, err)
		assert.True(t, solved.Eq(m) == 1, "solving should recover the locked value")
	}
}

func TestLockRejectsOversizedValue(t *testing.T) {
	p := testParameters(t, 16)
	tooBig := new(saferith.Nat).SetNat(p.NNat())
	_, _, err := p.Lock(mrand.New(mrand.NewSource(2)), tooBig)
	assert.ErrorIs(t, err, ErrMalformedArtifact)
}

func TestSolveCancelled(t *testing.T) {
	// hardness is large enough that solving would take a while, but the
	// cancelled context aborts before the first squaring
	p := testParameters(t, 1<<30)
	puzzle, _, err := p.Lock(mrand.New(mrand.NewSource(3)), new(saferith.Nat).SetUint64(7))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = p.Solve(ctx, puzzle)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSolveRejectsMalformedPuzzle(t *testing.T) {
	p := testParameters(t, 16)
	puzzle, _, err := p.Lock(mrand.New(mrand.NewSource(4)), new(saferith.Nat).SetUint64(7))
	require.NoError(t, err)

	bad := &Puzzle{U: new(saferith.Nat).SetUint64(0), V: puzzle.V}
	_, err = p.Solve(context.Background(), bad)
	assert.ErrorIs(t, err, ErrMalformedArtifact)

	_, err = p.Solve(context.Background(), &Puzzle{U: puzzle.U})
	assert.ErrorIs(t, err, ErrMalformedArtifact)
}

func TestParametersMarshal(t *testing.T) {
	p := testParameters(t, 64)
	data, err := p.MarshalBinary()
	require.NoError(t, err)

	p2 := &Parameters{}
	require.NoError(t, p2.UnmarshalBinary(data))
	require.NoError(t, p2.Validate())

	// a puzzle locked under the original parameters opens under the decoded ones
	m := new(saferith.Nat).SetUint64(1729)
	puzzle, _, err := p.Lock(mrand.New(mrand.NewSource(5)), m)
	require.NoError(t, err)
	solved, err := p2.Solve(context.Background(), puzzle)
	require.NoError(t, err)
	assert.True(t, solved.Eq(m) == 1)
}

func TestPuzzleMarshal(t *testing.T) {
	p := testParameters(t, 16)
	puzzle, _, err := p.Lock(mrand.New(mrand.NewSource(6)), new(saferith.Nat).SetUint64(99))
	require.NoError(t, err)

	data, err := puzzle.MarshalBinary()
	require.NoError(t, err)
	puzzle2 := &Puzzle{}
	require.NoError(t, puzzle2.UnmarshalBinary(data))
	assert.True(t, puzzle.U.Eq(puzzle2.U) == 1)
	assert.True(t, puzzle.V.Eq(puzzle2.V) == 1)
	require.NoError(t, puzzle2.Validate(p))
}

func TestChallengePrimeDeterministic(t *testing.T) {
	p := testParameters(t, 32)
	l1 := challengePrime(p.n.Modulus, p.t, p.g, p.h)
	l2 := challengePrime(p.n.Modulus, p.t, p.g, p.h)
	assert.Zero(t, l1.Cmp(l2), "challenge must be deterministic")
	assert.True(t, l1.ProbablyPrime(40))

	l3 := challengePrime(p.n.Modulus, p.t+1, p.g, p.h)
	assert.NotZero(t, l1.Cmp(l3), "challenge must bind the hardness")
}
