package keygen

import (
	"crypto/rand"
	"errors"

	"github.com/gargos-crypto/gargos/internal/round"
	"github.com/gargos-crypto/gargos/internal/types"
	"github.com/gargos-crypto/gargos/pkg/hash"
	"github.com/gargos-crypto/gargos/pkg/math/curve"
	"github.com/gargos-crypto/gargos/pkg/math/polynomial"
	"github.com/gargos-crypto/gargos/pkg/math/sample"
	"github.com/gargos-crypto/gargos/pkg/party"
	zksch "github.com/gargos-crypto/gargos/pkg/zk/sch"
)

// round1 samples this participant's contribution to the shared secret and
// commits to it.
type round1 struct {
	*round.Helper
	// threshold is the minimum number of participants needed to sign.
	threshold int
	// authority and warrant are the tracing keys the participants agreed
	// on beforehand, or nil when generating an untraced key.
	authority curve.Point
	warrant   curve.Point
}

// VerifyMessage implements round.Round.
func (round1) VerifyMessage(round.Message) error { return nil }

// StoreMessage implements round.Round.
func (round1) StoreMessage(round.Message) error { return nil }

// Finalize implements round.Round.
//
// Samples the secret contribution aᵢ and a sharing polynomial fᵢ with
// fᵢ(0) = aᵢ, then broadcasts the polynomial commitment Φᵢ, a proof of
// knowledge of aᵢ, and a commitment to a chain key contribution. With
// tracing, the registration point Uᵢ = uᵢ•G travels alongside, with its own
// proof of knowledge so nobody can register a point they do not control.
func (r *round1) Finalize(out chan<- *round.Message) (round.Session, error) {
	group := r.Group()

	a_i := sample.Scalar(rand.Reader, group)
	f_i := polynomial.NewPolynomial(group, rand.Reader, r.threshold-1, a_i)
	Phi_i := polynomial.NewPolynomialExponent(f_i)

	Sigma_i := zksch.NewProof(r.HashForID(r.SelfID()), Phi_i.Constant(), a_i, nil)

	c_i, err := types.NewRID(rand.Reader)
	if err != nil {
		return r, errors.New("keygen: failed to sample chain key contribution")
	}
	commitment, decommitment, err := r.HashForID(r.SelfID()).Commit(c_i)
	if err != nil {
		return r, errors.New("keygen: failed to commit to chain key contribution")
	}

	broadcast := &broadcast2{
		Phi_i:      Phi_i,
		Sigma_i:    Sigma_i,
		Commitment: commitment,
	}

	var u_i curve.Scalar
	if r.tracing() {
		u_i = sample.Scalar(rand.Reader, group)
		broadcast.U_i = u_i.ActOnBase()
		broadcast.Tau_i = zksch.NewProof(r.HashForID(r.SelfID()), broadcast.U_i, u_i, nil)
	}

	if err := r.BroadcastMessage(out, broadcast); err != nil {
		return r, err
	}

	next := &round2{
		round1:               r,
		f_i:                  f_i,
		Phi:                  map[party.ID]*polynomial.Exponent{r.SelfID(): Phi_i},
		ChainKeys:            map[party.ID]types.RID{r.SelfID(): c_i},
		ChainKeyDecommitment: decommitment,
		ChainKeyCommitments:  make(map[party.ID]hash.Commitment),
		u_i:                  u_i,
	}
	if r.tracing() {
		next.U = map[party.ID]curve.Point{r.SelfID(): broadcast.U_i}
	}
	return next, nil
}

func (r *round1) tracing() bool { return r.authority != nil }

// MessageContent implements round.Round.
func (round1) MessageContent() round.Content { return nil }

// Number implements round.Round.
func (round1) Number() round.Number { return 1 }
