// Package trace identifies the signers behind threshold signing artifacts.
//
// Signing configs may carry a tracing registry: each signer i registers a
// point Uᵢ = uᵢ•G and embeds a deterministic tag in its partial signatures,
// keyed by the Diffie-Hellman point shared between uᵢ and the tracing
// authority's trapdoor. The authority can recompute every signer's tag for a
// given message and match them against the artifacts. Nobody else can:
// without the trapdoor the tags are keyed MAC outputs under unknown keys,
// and signatures themselves never reveal who participated.
//
// Tracing is authorized per message. The authority must present a warrant
// from the authorizer key the signers registered; asked to trace without
// one, or with one scoped to a different message, it fails closed with
// ErrUnauthorized.
package trace

import (
	"errors"
	"io"

	"github.com/gargos-crypto/gargos/pkg/hash"
	"github.com/gargos-crypto/gargos/pkg/math/curve"
	"github.com/gargos-crypto/gargos/pkg/math/sample"
	"github.com/gargos-crypto/gargos/pkg/party"
	zkdleq "github.com/gargos-crypto/gargos/pkg/zk/dleq"
	"github.com/gargos-crypto/gargos/protocols/gargos/config"
	"github.com/gargos-crypto/gargos/protocols/gargos/sign"
)

// ErrUnauthorized is returned when a trace is attempted without a warrant
// covering the message, or against a config this authority is not the
// registered tracer for.
var ErrUnauthorized = errors.New("trace: not authorized for this message")

// Authority holds the tracing trapdoor.
type Authority struct {
	group curve.Curve
	// k is the trapdoor. It never appears in any artifact.
	k curve.Scalar
	// public is K = k•G, registered in the signers' tracing config.
	public curve.Point
}

// NewAuthority samples a fresh tracing trapdoor.
func NewAuthority(rand io.Reader, group curve.Curve) *Authority {
	k := sample.Scalar(rand, group)
	return &Authority{
		group:  group,
		k:      k,
		public: k.ActOnBase(),
	}
}

// PublicKey returns the authority's registration key K.
func (a *Authority) PublicKey() curve.Point {
	return a.public
}

// evidenceHash binds a match proof to the signer it implicates and the
// message the trace was run for.
func evidenceHash(public *config.Public, message []byte, id party.ID) *hash.Hash {
	h := hash.New(hash.TaggedBytes("Gargos Tracing Evidence", nil))
	_ = h.WriteAny(public.ChainKey, public.Tracing.Authority, id, hash.TaggedBytes("Traced Message", message))
	return h
}

// Trace identifies the registered signers whose tags appear in the given
// partial signatures for message.
//
// It requires a warrant scoped to exactly this message and this authority;
// a missing, mismatched or invalid warrant yields ErrUnauthorized, as does
// a config without tracing information. The result carries evidence a third
// party can check without the trapdoor.
func (a *Authority) Trace(warrant *Warrant, public *config.Public, message []byte, partials []*sign.PartialSignature) (*Result, error) {
	if a == nil || a.k == nil {
		return nil, ErrUnauthorized
	}
	if public == nil || public.Validate() != nil || public.Tracing == nil {
		return nil, ErrUnauthorized
	}
	tracing := public.Tracing
	if !tracing.Authority.Equal(a.public) {
		return nil, ErrUnauthorized
	}
	if !warrant.Verify(tracing.Warrant, message, a.public) {
		return nil, ErrUnauthorized
	}

	// Tags present in the artifacts. An artifact without a tag cannot
	// implicate anyone.
	present := make(map[string]struct{}, len(partials))
	for _, partial := range partials {
		if partial == nil || len(partial.Tag) == 0 {
			continue
		}
		present[string(partial.Tag)] = struct{}{}
	}

	result := &Result{Warrant: warrant}
	for _, id := range registeredIDs(tracing) {
		u := tracing.Registry.Points[id]
		s := a.k.Act(u)
		tag, err := config.TracingTag(public.ChainKey, s, message)
		if err != nil {
			continue
		}
		if _, ok := present[string(tag)]; !ok {
			continue
		}
		proof := zkdleq.NewProof(a.group, evidenceHash(public, message, id), zkdleq.Public{
			H: u,
			X: a.public,
			Y: s,
		}, zkdleq.Private{X: a.k})
		if proof == nil {
			return nil, errors.New("trace: failed to prove a match")
		}
		result.Matches = append(result.Matches, &Match{
			ID:    id,
			S:     s,
			Tag:   tag,
			Proof: proof,
		})
	}
	return result, nil
}

func registeredIDs(tracing *config.Tracing) party.IDSlice {
	ids := make([]party.ID, 0, len(tracing.Registry.Points))
	for id := range tracing.Registry.Points {
		ids = append(ids, id)
	}
	return party.NewIDSlice(ids)
}
