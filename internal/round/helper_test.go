package round_test

import (
	"testing"

	"github.com/gargos-crypto/gargos/internal/round"
	"github.com/gargos-crypto/gargos/pkg/math/curve"
	"github.com/gargos-crypto/gargos/pkg/party"
	"github.com/stretchr/testify/assert"
)

func TestNewSession(t *testing.T) {
	RNumber := round.Number(2)
	T := 20
	N := 26
	partyIDs := party.RandomIDs(N)
	selfID := partyIDs[0]
	tests := []struct {
		name      string
		selfID    party.ID
		partyIDs  []party.ID
		threshold int
		wantErr   bool
	}{
		{"threshold 0", selfID, partyIDs, 0, true},
		{"negative threshold", selfID, partyIDs, -1, true},
		{"invalid selfID", 0, partyIDs, T, true},
		{"selfID not a participant", selfID, partyIDs[1:], T, true},
		{"duplicate selfID", selfID, append(partyIDs.Copy(), selfID), T, true},
		{"duplicate second ID", selfID, append(partyIDs.Copy(), partyIDs[1]), T, true},
		{"zero ID among participants", selfID, append(partyIDs.Copy(), 0), T, true},
		{"threshold N+1", selfID, partyIDs, N + 1, true},
		{"threshold N", selfID, partyIDs, N, false},
		{"threshold T", selfID, partyIDs, T, false},
		{"threshold T with T parties", partyIDs[0], partyIDs[:T], T, false},
		{"single party", partyIDs[0], partyIDs[:1], 1, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info := round.Info{
				ProtocolID:       "TEST",
				FinalRoundNumber: RNumber,
				SelfID:           tt.selfID,
				PartyIDs:         tt.partyIDs,
				Threshold:        tt.threshold,
				Group:            curve.Secp256k1{},
			}
			_, err := round.NewSession(info, nil, nil)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSessionSSIDBindsSessionID(t *testing.T) {
	partyIDs := party.RandomIDs(3)
	info := round.Info{
		ProtocolID:       "TEST",
		FinalRoundNumber: 2,
		SelfID:           partyIDs[0],
		PartyIDs:         partyIDs,
		Threshold:        2,
		Group:            curve.Secp256k1{},
	}
	s1, err := round.NewSession(info, []byte("session 1"), nil)
	assert.NoError(t, err)
	s2, err := round.NewSession(info, []byte("session 2"), nil)
	assert.NoError(t, err)
	s3, err := round.NewSession(info, []byte("session 1"), nil)
	assert.NoError(t, err)

	assert.NotEqual(t, s1.SSID(), s2.SSID(), "different session IDs must give different SSIDs")
	assert.Equal(t, s1.SSID(), s3.SSID(), "equal inputs must give equal SSIDs")
}
