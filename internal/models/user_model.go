package models

import (
	"time"

	"gorm.io/gorm"
)

// SubscriptionStatus mirrors the payment processor's subscription state.
type SubscriptionStatus string

const (
	SubscriptionNone     SubscriptionStatus = "none"
	SubscriptionActive   SubscriptionStatus = "active"
	SubscriptionPastDue  SubscriptionStatus = "past_due"
	SubscriptionCanceled SubscriptionStatus = "canceled"
)

/** --------------------ENTITIES-------------------- */
// User represents the user entity
type User struct {
	gorm.Model
	Username string `gorm:"not null;type:varchar(64)" json:"username"`
	Email    string `gorm:"uniqueIndex;not null;type:varchar(255)" json:"email"`
	Password string `json:"-"` // hashed, never returned in responses
	Phone    string `gorm:"type:varchar(32)" json:"phone,omitempty"`
	Avatar   string `json:"avatar,omitempty"`

	Premium            bool               `gorm:"not null;default:false" json:"premium"`
	BillingCustomerID  string             `gorm:"index;type:varchar(64)" json:"-"`
	SubscriptionStatus SubscriptionStatus `gorm:"not null;type:varchar(16);default:'none'" json:"subscriptionStatus"`
}

/** -------------------- DTOs -------------------- */
// Request
type RegisterRequest struct {
	Username string `json:"username" binding:"required,min=3,max=50"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	Phone    string `json:"phone"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type UpdateProfileRequest struct {
	Username string `json:"username"`
	Phone    string `json:"phone"`
	Avatar   string `json:"avatar"`
}

// Response
type UserResponse struct {
	ID        uint      `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Avatar    string    `json:"avatar,omitempty"`
	Premium   bool      `json:"premium"`
	CreatedAt time.Time `json:"createdAt"`
}

func (u *User) ToResponse() UserResponse {
	return UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		Avatar:    u.Avatar,
		Premium:   u.Premium,
		CreatedAt: u.CreatedAt,
	}
}
