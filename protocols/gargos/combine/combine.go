// Package combine aggregates partial signatures into a single Schnorr
// signature, optionally with a proof of correct combining or a time-lock on
// the result.
//
// A session fixes its combined nonce at commit time, over all signers that
// formed it. The combiner therefore needs one valid partial signature from
// every signer of the session: the choice of subset happens when the session
// is formed, not when shares are aggregated. Offering shares from a different
// subset, or too few of them, fails with ErrInsufficientShares.
package combine

import (
	"errors"
	"fmt"

	"github.com/gargos-crypto/gargos/pkg/math/curve"
	"github.com/gargos-crypto/gargos/pkg/math/polynomial"
	"github.com/gargos-crypto/gargos/pkg/party"
	"github.com/gargos-crypto/gargos/protocols/gargos/config"
	"github.com/gargos-crypto/gargos/protocols/gargos/sign"
)

var (
	// ErrInsufficientShares is returned when the valid partial signatures do
	// not cover the session's signer set.
	ErrInsufficientShares = errors.New("combine: not enough valid partial signatures for the session")
	// ErrCombineInconsistent is returned when the aggregate signature fails
	// its self-check, meaning a bad share went undetected.
	ErrCombineInconsistent = errors.New("combine: aggregate signature failed verification")
)

// VerifyPartial checks a single partial signature against its session: the
// signer must belong to the session, the nonce commitment must match the one
// broadcast during the commit phase, and the response must satisfy
//
//	zᵢ•G == Dᵢ + c•λᵢ•Yᵢ
//
// with Yᵢ the signer's verification share and λᵢ its Lagrange coefficient
// for the session's signer set.
func VerifyPartial(public *config.Public, session *sign.Session, partial *sign.PartialSignature) error {
	if err := public.Validate(); err != nil {
		return err
	}
	if err := session.Validate(); err != nil {
		return err
	}
	c := session.Challenge(public.PublicKey)
	lagrange := polynomial.Lagrange(public.Curve(), session.SignerIDs)
	return verifyPartial(public, session, partial, c, lagrange)
}

func verifyPartial(public *config.Public, session *sign.Session, partial *sign.PartialSignature, c curve.Scalar, lagrange map[party.ID]curve.Scalar) error {
	if err := partial.Validate(); err != nil {
		return err
	}
	if !session.SignerIDs.Contains(partial.Index) {
		return fmt.Errorf("combine: partial signature from party %s outside the session", partial.Index)
	}
	if !partial.D.Equal(session.Commitments.Points[partial.Index]) {
		return fmt.Errorf("combine: partial signature from party %s does not match its nonce commitment", partial.Index)
	}
	verificationShare, ok := public.VerificationShares.Points[partial.Index]
	if !ok {
		return fmt.Errorf("combine: no verification share for party %s", partial.Index)
	}

	group := public.Curve()
	expected := group.NewScalar().Set(lagrange[partial.Index]).Mul(c).Act(verificationShare).Add(partial.D)
	if !partial.Z.ActOnBase().Equal(expected) {
		return fmt.Errorf("combine: partial signature from party %s does not verify", partial.Index)
	}
	return nil
}

// acceptPartials filters the offered shares down to one valid partial per
// session signer. Duplicates by signer index are dropped, first valid wins.
// The result covers the session's signer set exactly, otherwise
// ErrInsufficientShares is returned.
func acceptPartials(public *config.Public, session *sign.Session, partials []*sign.PartialSignature) (map[party.ID]*sign.PartialSignature, error) {
	if err := public.Validate(); err != nil {
		return nil, err
	}
	if err := session.Validate(); err != nil {
		return nil, err
	}
	if len(session.SignerIDs) < public.Threshold {
		return nil, ErrInsufficientShares
	}

	c := session.Challenge(public.PublicKey)
	lagrange := polynomial.Lagrange(public.Curve(), session.SignerIDs)

	accepted := make(map[party.ID]*sign.PartialSignature, len(session.SignerIDs))
	for _, partial := range partials {
		if partial == nil {
			continue
		}
		if _, ok := accepted[partial.Index]; ok {
			continue
		}
		if err := verifyPartial(public, session, partial, c, lagrange); err != nil {
			continue
		}
		accepted[partial.Index] = partial
	}

	if len(accepted) != len(session.SignerIDs) {
		return nil, ErrInsufficientShares
	}
	return accepted, nil
}

// aggregate sums the responses over the session's signer set. The sum is
// taken in sorted signer order, so the result depends only on the set.
func aggregate(public *config.Public, session *sign.Session, accepted map[party.ID]*sign.PartialSignature) (*sign.Signature, error) {
	group := public.Curve()
	z := group.NewScalar()
	for _, id := range session.SignerIDs {
		z.Add(accepted[id].Z)
	}

	signature := &sign.Signature{
		R: session.R(),
		Z: z,
	}
	if !signature.Verify(public.PublicKey, session.Message) {
		return nil, ErrCombineInconsistent
	}
	return signature, nil
}

// Combine aggregates the partial signatures of a session into a Schnorr
// signature under the group public key, and verifies the result before
// returning it.
func Combine(public *config.Public, session *sign.Session, partials []*sign.PartialSignature) (*sign.Signature, error) {
	accepted, err := acceptPartials(public, session, partials)
	if err != nil {
		return nil, err
	}
	return aggregate(public, session, accepted)
}
