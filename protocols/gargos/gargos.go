// Package gargos implements a threshold Schnorr signature scheme with
// verifiable, timed, and traceable combining.
//
// A key is shared among n participants so that any threshold of them can
// produce an ordinary Schnorr signature under the shared public key, while
// the signature itself does not reveal which of them signed. On top of the
// basic scheme, the combine package lets an aggregator prove it combined a
// threshold of valid shares without revealing whose, or lock the finished
// signature behind a time-lock puzzle that anyone can verify and nobody can
// open early. The trace package gives a designated authority, acting under a
// per-message warrant, the ability to identify the signers behind a set of
// signing artifacts.
//
// Key material comes either from the dealer package or from the distributed
// key generation started with Keygen, which needs no trusted party.
package gargos

import (
	"github.com/gargos-crypto/gargos/pkg/math/curve"
	"github.com/gargos-crypto/gargos/pkg/party"
	"github.com/gargos-crypto/gargos/pkg/protocol"
	"github.com/gargos-crypto/gargos/protocols/gargos/combine"
	"github.com/gargos-crypto/gargos/protocols/gargos/config"
	"github.com/gargos-crypto/gargos/protocols/gargos/keygen"
	"github.com/gargos-crypto/gargos/protocols/gargos/sign"
	"github.com/gargos-crypto/gargos/protocols/gargos/trace"
)

type (
	// Config holds one participant's key material.
	Config = config.Config
	// Public is the key material everyone may hold.
	Public = config.Public
	// Signature is a plain Schnorr signature.
	Signature = sign.Signature
	// PartialSignature is one signer's contribution to a signature.
	PartialSignature = sign.PartialSignature
	// Session is the public transcript of one signing session.
	Session = sign.Session
	// CombiningProof shows a signature was combined from a threshold of
	// valid shares, without revealing whose.
	CombiningProof = combine.CombiningProof
	// TimedSignature locks a signature behind sequential work.
	TimedSignature = combine.TimedSignature
	// Warrant authorizes tracing one message.
	Warrant = trace.Warrant
	// TraceResult names the signers behind a set of artifacts.
	TraceResult = trace.Result
)

// Keygen initiates the distributed key generation for this participant.
//
// participants is the complete set of parties that will hold shares; future
// signers must come from this set. threshold is the minimum number of
// participants that must cooperate to produce a signature. The final result
// is a *Config for this participant.
func Keygen(group curve.Curve, selfID party.ID, participants []party.ID, threshold int) protocol.StartFunc {
	return keygen.StartKeygen(group, selfID, participants, threshold)
}

// KeygenTracing is Keygen for a traceable key. All participants must agree
// beforehand on the tracing authority's public key and on the key warrants
// will be verified against; the resulting configs carry a registry that lets
// the authority identify signers per message, with a warrant.
func KeygenTracing(group curve.Curve, selfID party.ID, participants []party.ID, threshold int, authority, warrant curve.Point) protocol.StartFunc {
	return keygen.StartKeygenTracing(group, selfID, participants, threshold, authority, warrant)
}

// Sign initiates the signing protocol for this participant.
//
// signers is the set of parties producing this signature together, including
// this participant; it must hold at least the config's threshold. The final
// result is a *sign.Result holding the session transcript and this party's
// partial signature, ready for the combine package.
func Sign(c *Config, signers []party.ID, message []byte) protocol.StartFunc {
	return sign.StartSign(c, signers, message)
}
