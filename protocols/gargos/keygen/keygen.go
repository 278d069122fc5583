// Package keygen implements distributed key generation.
//
// The participants jointly sample a shared public key with a threshold
// sharing of its secret, so that no party, and no coalition smaller than the
// threshold, ever learns the full key. Each participant contributes a secret
// through a verifiable Shamir sharing and proves knowledge of it; the final
// shares are sums of everyone's dealt shares. The protocol completes in three
// rounds and outputs the same config a trusted dealer would have produced.
package keygen

import (
	"errors"
	"fmt"

	"github.com/gargos-crypto/gargos/internal/round"
	"github.com/gargos-crypto/gargos/internal/types"
	"github.com/gargos-crypto/gargos/pkg/hash"
	"github.com/gargos-crypto/gargos/pkg/math/curve"
	"github.com/gargos-crypto/gargos/pkg/party"
	"github.com/gargos-crypto/gargos/pkg/protocol"
)

const (
	protocolKeygenID                      = "gargos/keygen"
	protocolKeygenTracingID               = "gargos/keygen-tracing"
	protocolKeygenRounds     round.Number = 3
)

// StartKeygen returns a function to initiate the distributed key generation
// for this participant. All participants must agree on the set of IDs and
// the threshold, the minimum number of signers a signature will require.
func StartKeygen(group curve.Curve, selfID party.ID, participants []party.ID, threshold int) protocol.StartFunc {
	return startKeygen(group, selfID, participants, threshold, nil, nil)
}

// StartKeygenTracing is StartKeygen for a traced key: every participant
// additionally registers a tracing point, enabling the holder of the
// authority key's trapdoor to identify signers later. The authority and
// warrant verification keys must be agreed on beforehand; the session binds
// to them, so participants with differing keys cannot complete the protocol
// together.
func StartKeygenTracing(group curve.Curve, selfID party.ID, participants []party.ID, threshold int, authority, warrant curve.Point) protocol.StartFunc {
	return func(sessionID []byte) (round.Session, error) {
		if authority == nil || authority.IsIdentity() {
			return nil, errors.New("keygen: tracing requires an authority key")
		}
		if warrant == nil || warrant.IsIdentity() {
			return nil, errors.New("keygen: tracing requires a warrant verification key")
		}
		return startKeygen(group, selfID, participants, threshold, authority, warrant)(sessionID)
	}
}

func startKeygen(group curve.Curve, selfID party.ID, participants []party.ID, threshold int, authority, warrant curve.Point) protocol.StartFunc {
	return func(sessionID []byte) (round.Session, error) {
		ids := party.NewIDSlice(participants)
		if threshold < 1 || threshold > len(ids) {
			return nil, fmt.Errorf("keygen: invalid threshold %d for %d participants", threshold, len(ids))
		}

		info := round.Info{
			FinalRoundNumber: protocolKeygenRounds,
			ProtocolID:       protocolKeygenID,
			SelfID:           selfID,
			PartyIDs:         ids,
			Threshold:        threshold,
			Group:            group,
		}
		auxInfo := []hash.WriterToWithDomain{types.ThresholdWrapper(threshold)}
		if authority != nil {
			info.ProtocolID = protocolKeygenTracingID
			authorityBytes, err := authority.MarshalBinary()
			if err != nil {
				return nil, err
			}
			warrantBytes, err := warrant.MarshalBinary()
			if err != nil {
				return nil, err
			}
			auxInfo = append(auxInfo,
				hash.TaggedBytes("Tracing Authority Key", authorityBytes),
				hash.TaggedBytes("Tracing Warrant Key", warrantBytes),
			)
		}

		helper, err := round.NewSession(info, sessionID, nil, auxInfo...)
		if err != nil {
			return nil, fmt.Errorf("keygen: %w", err)
		}
		return &round1{
			Helper:    helper,
			threshold: threshold,
			authority: authority,
			warrant:   warrant,
		}, nil
	}
}
