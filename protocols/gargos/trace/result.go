package trace

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/fxamacker/cbor/v2"
	"github.com/gargos-crypto/gargos/pkg/math/curve"
	"github.com/gargos-crypto/gargos/pkg/party"
	zkdleq "github.com/gargos-crypto/gargos/pkg/zk/dleq"
	"github.com/gargos-crypto/gargos/protocols/gargos/config"
	"github.com/gargos-crypto/gargos/protocols/gargos/sign"
)

// Match ties one registered signer to a tag found in the artifacts.
type Match struct {
	// ID is the implicated signer.
	ID party.ID
	// S = k•Uᵢ is the Diffie-Hellman point the signer's tag is keyed by.
	S curve.Point
	// Tag is the recomputed tracing tag, equal to one in the artifacts.
	Tag []byte
	// Proof shows S was formed with the trapdoor behind the registered
	// authority key, so the match cannot be fabricated.
	Proof *zkdleq.Proof
}

// Result is the outcome of an authorized trace: the implicated signers, the
// warrant the trace ran under, and per-signer evidence. It deliberately
// contains no trapdoor material, so it can be handed to anyone.
type Result struct {
	// Warrant is the authorization the trace was performed under.
	Warrant *Warrant
	// Matches lists the implicated signers in increasing ID order.
	Matches []*Match

	// group is only needed to decode matches.
	group curve.Curve
}

// Indices returns the sorted identifiers of the implicated signers.
func (r *Result) Indices() party.IDSlice {
	if r == nil {
		return nil
	}
	ids := make([]party.ID, 0, len(r.Matches))
	for _, match := range r.Matches {
		ids = append(ids, match.ID)
	}
	return party.NewIDSlice(ids)
}

// Verify checks the trace evidence against the public key material, the
// message, and the artifacts the trace was run over. It needs no trapdoor:
// the embedded proofs show each Diffie-Hellman point was formed with the
// registered authority key, and the tags recomputed from those points must
// appear in the artifacts.
//
// A valid result proves every listed signer contributed. It does not prove
// the list is exhaustive; only the authority can assert that.
func (r *Result) Verify(public *config.Public, message []byte, partials []*sign.PartialSignature) bool {
	if r == nil || public == nil || public.Validate() != nil || public.Tracing == nil {
		return false
	}
	tracing := public.Tracing
	if !r.Warrant.Verify(tracing.Warrant, message, tracing.Authority) {
		return false
	}

	present := make(map[string]struct{}, len(partials))
	for _, partial := range partials {
		if partial == nil || len(partial.Tag) == 0 {
			continue
		}
		present[string(partial.Tag)] = struct{}{}
	}

	seen := make(map[party.ID]struct{}, len(r.Matches))
	for _, match := range r.Matches {
		if match == nil || !match.ID.Valid() {
			return false
		}
		if _, ok := seen[match.ID]; ok {
			return false
		}
		seen[match.ID] = struct{}{}

		u, ok := tracing.Registry.Points[match.ID]
		if !ok {
			return false
		}
		if match.S == nil || match.S.IsIdentity() {
			return false
		}
		if !match.Proof.Verify(evidenceHash(public, message, match.ID), zkdleq.Public{
			H: u,
			X: tracing.Authority,
			Y: match.S,
		}) {
			return false
		}
		tag, err := config.TracingTag(public.ChainKey, match.S, message)
		if err != nil || !bytes.Equal(tag, match.Tag) {
			return false
		}
		if _, ok := present[string(tag)]; !ok {
			return false
		}
	}
	return true
}

type rawMatch struct {
	ID    party.ID
	S     []byte
	Tag   []byte
	Proof []byte
}

type rawResult struct {
	Warrant []byte
	Matches []rawMatch
}

// EmptyResult returns a Result ready to be unmarshalled into.
func EmptyResult(group curve.Curve) *Result {
	return &Result{Warrant: EmptyWarrant(group), group: group}
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (r *Result) MarshalBinary() ([]byte, error) {
	warrantData, err := r.Warrant.MarshalBinary()
	if err != nil {
		return nil, err
	}
	raw := rawResult{
		Warrant: warrantData,
		Matches: make([]rawMatch, len(r.Matches)),
	}
	for k, match := range r.Matches {
		if match.S == nil || match.Proof == nil {
			return nil, errors.New("trace: cannot marshal incomplete match")
		}
		sBytes, err := match.S.MarshalBinary()
		if err != nil {
			return nil, err
		}
		proofBytes, err := cbor.Marshal(match.Proof)
		if err != nil {
			return nil, err
		}
		raw.Matches[k] = rawMatch{
			ID:    match.ID,
			S:     sBytes,
			Tag:   match.Tag,
			Proof: proofBytes,
		}
	}
	return cbor.Marshal(raw)
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler. The receiver must
// come from EmptyResult.
func (r *Result) UnmarshalBinary(data []byte) error {
	if r.group == nil || r.Warrant == nil {
		return errors.New("trace: result must be initialized using EmptyResult")
	}
	var raw rawResult
	if err := cbor.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("trace: result: %w", err)
	}
	if err := r.Warrant.UnmarshalBinary(raw.Warrant); err != nil {
		return err
	}
	matches := make([]*Match, len(raw.Matches))
	for k, rm := range raw.Matches {
		match := &Match{
			ID:    rm.ID,
			S:     r.group.NewPoint(),
			Tag:   rm.Tag,
			Proof: zkdleq.Empty(r.group),
		}
		if err := match.S.UnmarshalBinary(rm.S); err != nil {
			return fmt.Errorf("trace: result: match %s: %w", rm.ID, err)
		}
		if err := cbor.Unmarshal(rm.Proof, match.Proof); err != nil {
			return fmt.Errorf("trace: result: match %s: %w", rm.ID, err)
		}
		matches[k] = match
	}
	r.Matches = matches
	return nil
}
