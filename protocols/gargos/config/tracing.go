package config

import (
	"errors"
	"io"

	"github.com/gargos-crypto/gargos/internal/types"
	"github.com/gargos-crypto/gargos/pkg/math/curve"
	"github.com/gargos-crypto/gargos/pkg/party"
	"golang.org/x/crypto/blake2b"
)

// Tracing is the public tracing information shared by all participants.
type Tracing struct {
	// Authority is K = k⋅G, the tracing authority's public key.
	// The trapdoor k never leaves the authority.
	Authority curve.Point
	// Warrant is the public key tracing warrants are verified against.
	Warrant curve.Point
	// Registry maps each signer to their tracing point Uᵢ = uᵢ⋅G.
	Registry *party.PointMap
}

// EmptyTracing creates an empty Tracing with a specific group, ready for unmarshalling.
func EmptyTracing(group curve.Curve) *Tracing {
	return &Tracing{
		Authority: group.NewPoint(),
		Warrant:   group.NewPoint(),
		Registry:  party.EmptyPointMap(group),
	}
}

// Validate checks that the tracing information is coherent.
func (t *Tracing) Validate() error {
	if t.Authority == nil || t.Authority.IsIdentity() {
		return errors.New("tracing: missing authority key")
	}
	if t.Warrant == nil || t.Warrant.IsIdentity() {
		return errors.New("tracing: missing warrant key")
	}
	if t.Registry == nil || len(t.Registry.Points) == 0 {
		return errors.New("tracing: empty registry")
	}
	for id, point := range t.Registry.Points {
		if point == nil || point.IsIdentity() {
			return errors.New("tracing: registry contains an identity point")
		}
		if !id.Valid() {
			return errors.New("tracing: registry contains an invalid ID")
		}
	}
	return nil
}

// WriteTo implements io.WriterTo.
func (t *Tracing) WriteTo(w io.Writer) (int64, error) {
	if t == nil {
		return 0, io.ErrUnexpectedEOF
	}
	var total int64
	points := []curve.Point{t.Authority, t.Warrant}
	ids := make([]party.ID, 0, len(t.Registry.Points))
	for id := range t.Registry.Points {
		ids = append(ids, id)
	}
	for _, id := range party.NewIDSlice(ids) {
		points = append(points, t.Registry.Points[id])
	}
	for _, point := range points {
		data, err := point.MarshalBinary()
		if err != nil {
			return total, err
		}
		n, err := w.Write(data)
		total += int64(n)
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// Domain implements hash.WriterToWithDomain.
func (Tracing) Domain() string {
	return "Gargos Tracing"
}

// TracingTag computes the deterministic tag a signer attaches to a partial
// signature when tracing is enabled.
//
// The tag key is derived from the shared randomness and the Diffie-Hellman
// point between the signer and the tracing authority: the signer computes
// it as uᵢ⋅K, the authority as k⋅Uᵢ. Anyone without the trapdoor sees only
// a pseudorandom value bound to the message.
func TracingTag(rid types.RID, dh curve.Point, message []byte) ([]byte, error) {
	if dh == nil || dh.IsIdentity() {
		return nil, errors.New("tracing: invalid tag point")
	}
	dhBytes, err := dh.MarshalBinary()
	if err != nil {
		return nil, err
	}

	keyMaterial := make([]byte, 0, len(rid)+len(dhBytes))
	keyMaterial = append(keyMaterial, rid...)
	keyMaterial = append(keyMaterial, dhBytes...)
	key := blake2b.Sum256(keyMaterial)

	mac, err := blake2b.New256(key[:])
	if err != nil {
		return nil, err
	}
	_, _ = mac.Write([]byte("gargos/tag"))
	_, _ = mac.Write(message)
	return mac.Sum(nil), nil
}
