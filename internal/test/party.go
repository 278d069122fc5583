package test

import (
	"github.com/gargos-crypto/gargos/pkg/party"
)

// PartyIDs returns a sorted party.IDSlice with the IDs 1, ..., n.
func PartyIDs(n int) party.IDSlice {
	ids := make([]party.ID, n)
	for i := range ids {
		ids[i] = party.ID(i + 1)
	}
	return party.NewIDSlice(ids)
}
