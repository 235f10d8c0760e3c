package models

import (
	"time"

	"gorm.io/gorm"
)

// Notification types
const (
	NotificationConnectionRequest  = "connection_request"
	NotificationConnectionAccepted = "connection_accepted"
	NotificationSoundShared        = "sound_shared"
)

/** --------------------ENTITIES-------------------- */
// Notification is a persisted in-app notification. Out-of-band delivery
// (email/SMS) happens asynchronously via the notification event topic.
type Notification struct {
	gorm.Model
	RecipientID uint   `gorm:"not null;index" json:"recipientId"`
	ActorID     uint   `gorm:"not null" json:"actorId"`
	Type        string `gorm:"not null;type:varchar(32)" json:"type"`
	Read        bool   `gorm:"not null;default:false" json:"read"`

	Actor User `gorm:"foreignKey:ActorID;references:ID" json:"-"`
}

// NotificationEvent is the message published to the notification topic
// for the delivery worker.
type NotificationEvent struct {
	Type        string    `json:"type"`
	RecipientID uint      `json:"recipientId"`
	ActorID     uint      `json:"actorId"`
	OccurredAt  time.Time `json:"occurredAt"`
}

/** -------------------- DTOs -------------------- */
type NotificationResponse struct {
	ID        uint         `json:"id"`
	Type      string       `json:"type"`
	Actor     UserResponse `json:"actor"`
	Read      bool         `json:"read"`
	CreatedAt time.Time    `json:"createdAt"`
}

func (n *Notification) ToResponse() NotificationResponse {
	return NotificationResponse{
		ID:        n.ID,
		Type:      n.Type,
		Actor:     n.Actor.ToResponse(),
		Read:      n.Read,
		CreatedAt: n.CreatedAt,
	}
}
