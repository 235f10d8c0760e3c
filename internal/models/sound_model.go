package models

import (
	"time"

	"gorm.io/gorm"
)

/** --------------------ENTITIES-------------------- */
// Sound represents an uploaded sound clip
type Sound struct {
	gorm.Model
	OwnerID    uint   `gorm:"not null;index" json:"ownerId"`
	Title      string `gorm:"not null;type:varchar(128)" json:"title"`
	URL        string `gorm:"not null" json:"url"` // object storage URL
	DurationMs int    `gorm:"not null;default:0" json:"durationMs"`
	Premium    bool   `gorm:"not null;default:false" json:"premium"` // playable by subscribers only
	PlayCount  int64  `gorm:"not null;default:0" json:"playCount"`

	Owner User `gorm:"foreignKey:OwnerID;references:ID" json:"-"`
}

/** -------------------- DTOs -------------------- */
type UpdateSoundRequest struct {
	Title   string `json:"title"`
	Premium *bool  `json:"premium"`
}

type SoundResponse struct {
	ID         uint         `json:"id"`
	Title      string       `json:"title"`
	URL        string       `json:"url,omitempty"` // omitted when gated
	DurationMs int          `json:"durationMs"`
	Premium    bool         `json:"premium"`
	PlayCount  int64        `json:"playCount"`
	Owner      UserResponse `json:"owner"`
	CreatedAt  time.Time    `json:"createdAt"`
}

func (s *Sound) ToResponse() SoundResponse {
	return SoundResponse{
		ID:         s.ID,
		Title:      s.Title,
		URL:        s.URL,
		DurationMs: s.DurationMs,
		Premium:    s.Premium,
		PlayCount:  s.PlayCount,
		Owner:      s.Owner.ToResponse(),
		CreatedAt:  s.CreatedAt,
	}
}
