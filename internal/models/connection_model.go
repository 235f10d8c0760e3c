package models

import (
	"time"

	"gorm.io/gorm"
)

// ConnectionStatus is the lifecycle state of a pairwise connection.
type ConnectionStatus string

const (
	ConnectionPending  ConnectionStatus = "pending"
	ConnectionAccepted ConnectionStatus = "accepted"
	ConnectionBlocked  ConnectionStatus = "blocked"
	ConnectionRemoved  ConnectionStatus = "removed"
)

/** --------------------ENTITIES-------------------- */
// Connection represents the relationship between exactly two users. The
// pair is stored sorted (UserLowID < UserHighID) so the unordered pair has
// a single canonical row. Removal is a soft state, the row is never
// deleted, which preserves history and allows re-requesting.
//
// A partial unique index on (user_low_id, user_high_id) for rows with
// status <> 'removed' guarantees at most one active connection per pair
// even under concurrent sends (see configs/database/postgres.go).
type Connection struct {
	gorm.Model
	UserLowID   uint             `gorm:"not null;index:idx_connection_pair" json:"-"`
	UserHighID  uint             `gorm:"not null;index:idx_connection_pair" json:"-"`
	InitiatorID uint             `gorm:"not null" json:"initiatorId"` // whoever sent the most recent request
	Status      ConnectionStatus `gorm:"not null;type:varchar(16);default:'pending'" json:"status"`

	UserLow  User `gorm:"foreignKey:UserLowID;references:ID" json:"-"`
	UserHigh User `gorm:"foreignKey:UserHighID;references:ID" json:"-"`
}

// NormalizePair returns the canonical (low, high) ordering for a pair.
func NormalizePair(a, b uint) (uint, uint) {
	if a < b {
		return a, b
	}
	return b, a
}

// HasParticipant reports whether userID is one of the two participants.
func (c *Connection) HasParticipant(userID uint) bool {
	return c.UserLowID == userID || c.UserHighID == userID
}

// OtherParticipantID returns the participant that is not userID.
func (c *Connection) OtherParticipantID(userID uint) uint {
	if c.UserLowID == userID {
		return c.UserHighID
	}
	return c.UserLowID
}

// OtherParticipant returns the preloaded user record of the participant
// that is not userID.
func (c *Connection) OtherParticipant(userID uint) *User {
	if c.UserLowID == userID {
		return &c.UserHigh
	}
	return &c.UserLow
}

/** -------------------- DTOs -------------------- */
// Request
type SendConnectionRequest struct {
	ReceiverID uint `json:"receiverId" binding:"required"`
}

type BlockUserRequest struct {
	UserID uint `json:"userId" binding:"required"`
}

// Response
type ConnectionResponse struct {
	ID           uint             `json:"id"`
	Participants [2]uint          `json:"participants"`
	InitiatorID  uint             `json:"initiatorId"`
	Status       ConnectionStatus `json:"status"`
	CreatedAt    time.Time        `json:"createdAt"`
	UpdatedAt    time.Time        `json:"updatedAt"`
}

func (c *Connection) ToResponse() ConnectionResponse {
	return ConnectionResponse{
		ID:           c.ID,
		Participants: [2]uint{c.UserLowID, c.UserHighID},
		InitiatorID:  c.InitiatorID,
		Status:       c.Status,
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    c.UpdatedAt,
	}
}

// PendingRequestResponse is a pending connection joined with the peer's
// profile, used by the sent and received request views.
type PendingRequestResponse struct {
	ConnectionID uint         `json:"connectionId"`
	Peer         UserResponse `json:"peer"`
	SentAt       time.Time    `json:"sentAt"`
}

// FriendResponse is one accepted connection joined with the peer profile.
type FriendResponse struct {
	ConnectionID uint         `json:"connectionId"`
	Friend       UserResponse `json:"friend"`
	Since        time.Time    `json:"since"`
}

// FriendListResponse is the paginated friend-list envelope.
type FriendListResponse struct {
	TotalItem int64            `json:"totalItem"`
	TotalPage int64            `json:"totalPage"`
	Limit     int              `json:"limit"`
	Page      int              `json:"page"`
	Data      []FriendResponse `json:"data"`
}
