package combine

import (
	"bytes"
	"errors"
	"io"
	"sort"

	"github.com/fxamacker/cbor/v2"
	"github.com/gargos-crypto/gargos/internal/types"
	"github.com/gargos-crypto/gargos/pkg/hash"
	"github.com/gargos-crypto/gargos/pkg/math/curve"
	"github.com/gargos-crypto/gargos/pkg/math/sample"
	"github.com/gargos-crypto/gargos/pkg/pedersen"
	zkopen "github.com/gargos-crypto/gargos/pkg/zk/open"
	"github.com/gargos-crypto/gargos/protocols/gargos/config"
	"github.com/gargos-crypto/gargos/protocols/gargos/sign"
)

// CombiningProof shows that the response of a signature is the sum of
// committed values, one per session signer, each of which the combiner could
// open. The commitments are sorted by their encoding and carry no signer
// identities, so the proof does not reveal who participated.
type CombiningProof struct {
	group curve.Curve
	// Commitments are Pedersen commitments Vᵢ = zᵢ•G + rᵢ•H to the responses.
	Commitments []curve.Point
	// Openings[k] proves knowledge of an opening of Commitments[k].
	Openings []*zkopen.Proof
	// Rho = Σ rᵢ ties the commitments to the aggregate response.
	Rho curve.Scalar
}

// commitmentKey derives the Pedersen commitment key used for verifiable
// combining under this public key. It depends only on public data, so any
// verifier recomputes the same key.
func commitmentKey(publicKey curve.Point) *pedersen.Parameters {
	h := hash.New(hash.TaggedBytes("Gargos Combining Setup", nil))
	_ = h.WriteAny(publicKey)
	return pedersen.New(publicKey.Curve(), h.Sum())
}

// openingHash binds the opening proofs to the signature context.
func openingHash(publicKey, R curve.Point, message []byte) *hash.Hash {
	h := hash.New(hash.TaggedBytes("Gargos Verifiable Combining", nil))
	_ = h.WriteAny(publicKey, R, types.SigningMessage(message))
	return h
}

// Verifiable combines like Combine and additionally produces a proof of
// correct combining for verifiers that do not trust the combiner.
func Verifiable(rand io.Reader, public *config.Public, session *sign.Session, partials []*sign.PartialSignature) (*sign.Signature, *CombiningProof, error) {
	accepted, err := acceptPartials(public, session, partials)
	if err != nil {
		return nil, nil, err
	}
	signature, err := aggregate(public, session, accepted)
	if err != nil {
		return nil, nil, err
	}

	group := public.Curve()
	ped := commitmentKey(public.PublicKey)

	type committed struct {
		encoding []byte
		V        curve.Point
		opening  *zkopen.Proof
	}
	commitments := make([]committed, 0, len(session.SignerIDs))
	rho := group.NewScalar()
	for _, id := range session.SignerIDs {
		z := accepted[id].Z
		r := sample.Scalar(rand, group)
		V := ped.Commit(z, r)
		opening := zkopen.NewProof(
			openingHash(public.PublicKey, signature.R, session.Message),
			zkopen.Public{Pedersen: ped, V: V},
			zkopen.Private{X: z, R: r},
		)
		if opening == nil {
			return nil, nil, errors.New("combine: failed to prove commitment opening")
		}
		encoding, err := V.MarshalBinary()
		if err != nil {
			return nil, nil, err
		}
		rho.Add(r)
		commitments = append(commitments, committed{encoding: encoding, V: V, opening: opening})
	}

	// Shed the signer order so the proof does not leak the subset.
	sort.Slice(commitments, func(i, j int) bool {
		return bytes.Compare(commitments[i].encoding, commitments[j].encoding) < 0
	})

	proof := &CombiningProof{
		group:       group,
		Commitments: make([]curve.Point, len(commitments)),
		Openings:    make([]*zkopen.Proof, len(commitments)),
		Rho:         rho,
	}
	for k, c := range commitments {
		proof.Commitments[k] = c.V
		proof.Openings[k] = c.opening
	}
	return signature, proof, nil
}

// Verify checks the proof against a signature over message. The signature
// itself must verify, there must be at least threshold many distinct
// commitments, every commitment needs a valid opening proof, and the
// commitments must sum to z•G + ρ•H, which ties the committed values to the
// signature's response.
func (p *CombiningProof) Verify(public *config.Public, message []byte, signature *sign.Signature) bool {
	if p == nil || public == nil || signature == nil {
		return false
	}
	if public.Validate() != nil {
		return false
	}
	if p.Rho == nil || len(p.Commitments) != len(p.Openings) {
		return false
	}
	if len(p.Commitments) < public.Threshold {
		return false
	}
	if !signature.Verify(public.PublicKey, message) {
		return false
	}

	group := public.Curve()
	ped := commitmentKey(public.PublicKey)

	seen := make(map[string]struct{}, len(p.Commitments))
	sum := group.NewPoint()
	for k, V := range p.Commitments {
		if V == nil || V.IsIdentity() {
			return false
		}
		encoding, err := V.MarshalBinary()
		if err != nil {
			return false
		}
		if _, ok := seen[string(encoding)]; ok {
			return false
		}
		seen[string(encoding)] = struct{}{}

		if !p.Openings[k].Verify(openingHash(public.PublicKey, signature.R, message), zkopen.Public{Pedersen: ped, V: V}) {
			return false
		}
		sum = sum.Add(V)
	}

	return sum.Equal(ped.Commit(signature.Z, p.Rho))
}

// EmptyCombiningProof returns a CombiningProof ready to be unmarshalled into.
func EmptyCombiningProof(group curve.Curve) *CombiningProof {
	return &CombiningProof{group: group}
}

type rawCombiningProof struct {
	Commitments [][]byte
	Openings    [][]byte
	Rho         []byte
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (p *CombiningProof) MarshalBinary() ([]byte, error) {
	raw := rawCombiningProof{
		Commitments: make([][]byte, len(p.Commitments)),
		Openings:    make([][]byte, len(p.Openings)),
	}
	if len(p.Commitments) != len(p.Openings) || p.Rho == nil {
		return nil, errors.New("combine: cannot marshal incomplete combining proof")
	}
	var err error
	for k, V := range p.Commitments {
		if raw.Commitments[k], err = V.MarshalBinary(); err != nil {
			return nil, err
		}
	}
	for k, opening := range p.Openings {
		if raw.Openings[k], err = cbor.Marshal(opening); err != nil {
			return nil, err
		}
	}
	if raw.Rho, err = p.Rho.MarshalBinary(); err != nil {
		return nil, err
	}
	return cbor.Marshal(raw)
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler. The receiver must
// come from EmptyCombiningProof so the group is known.
func (p *CombiningProof) UnmarshalBinary(data []byte) error {
	if p.group == nil {
		return errors.New("combine: unmarshal into combining proof with unknown group, see EmptyCombiningProof")
	}
	var raw rawCombiningProof
	if err := cbor.Unmarshal(data, &raw); err != nil {
		return err
	}
	if len(raw.Commitments) != len(raw.Openings) {
		return errors.New("combine: commitment and opening counts differ")
	}

	commitments := make([]curve.Point, len(raw.Commitments))
	openings := make([]*zkopen.Proof, len(raw.Openings))
	for k := range raw.Commitments {
		commitments[k] = p.group.NewPoint()
		if err := commitments[k].UnmarshalBinary(raw.Commitments[k]); err != nil {
			return err
		}
		openings[k] = zkopen.Empty(p.group)
		if err := cbor.Unmarshal(raw.Openings[k], openings[k]); err != nil {
			return err
		}
	}
	rho := p.group.NewScalar()
	if err := rho.UnmarshalBinary(raw.Rho); err != nil {
		return err
	}

	p.Commitments = commitments
	p.Openings = openings
	p.Rho = rho
	return nil
}
