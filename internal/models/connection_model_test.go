package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizePair(t *testing.T) {
	low, high := NormalizePair(7, 3)
	assert.Equal(t, uint(3), low)
	assert.Equal(t, uint(7), high)

	low, high = NormalizePair(3, 7)
	assert.Equal(t, uint(3), low)
	assert.Equal(t, uint(7), high)
}

func TestConnectionParticipants(t *testing.T) {
	conn := &Connection{UserLowID: 3, UserHighID: 7, InitiatorID: 7}

	assert.True(t, conn.HasParticipant(3))
	assert.True(t, conn.HasParticipant(7))
	assert.False(t, conn.HasParticipant(5))

	assert.Equal(t, uint(7), conn.OtherParticipantID(3))
	assert.Equal(t, uint(3), conn.OtherParticipantID(7))
}

func TestOtherParticipantUsesPreload(t *testing.T) {
	conn := &Connection{UserLowID: 3, UserHighID: 7}
	conn.UserLow.ID = 3
	conn.UserLow.Username = "alice"
	conn.UserHigh.ID = 7
	conn.UserHigh.Username = "bob"

	assert.Equal(t, "bob", conn.OtherParticipant(3).Username)
	assert.Equal(t, "alice", conn.OtherParticipant(7).Username)
}

func TestConnectionToResponse(t *testing.T) {
	conn := &Connection{UserLowID: 3, UserHighID: 7, InitiatorID: 7, Status: ConnectionPending}
	conn.ID = 42

	resp := conn.ToResponse()
	assert.Equal(t, uint(42), resp.ID)
	assert.Equal(t, [2]uint{3, 7}, resp.Participants)
	assert.Equal(t, uint(7), resp.InitiatorID)
	assert.Equal(t, ConnectionPending, resp.Status)
}
