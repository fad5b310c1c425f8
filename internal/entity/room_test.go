package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoomParticipant_CanSend(t *testing.T) {
	var missing *RoomParticipant
	assert.False(t, missing.CanSend(), "no participant record means no send rights")

	p := &RoomParticipant{Role: ParticipantRoleMember}
	assert.True(t, p.CanSend())

	p.IsMuted = true
	assert.False(t, p.CanSend())

	p.IsMuted = false
	p.IsBanned = true
	assert.False(t, p.CanSend())
}

func TestRoomParticipant_CanModerate(t *testing.T) {
	assert.True(t, (&RoomParticipant{Role: ParticipantRoleAdmin}).CanModerate())
	assert.True(t, (&RoomParticipant{Role: ParticipantRoleModerator}).CanModerate())
	assert.False(t, (&RoomParticipant{Role: ParticipantRoleMember}).CanModerate())
}
