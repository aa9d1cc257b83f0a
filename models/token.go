package models

import (
	"time"

	"github.com/google/uuid"
)

// Token is the opaque bearer credential of a user. There is at most one per user.
type Token struct {
	Key       string    `json:"key" db:"key" gorm:"type:varchar(40);primaryKey;not null"`
	UserID    uuid.UUID `json:"user_id" db:"user_id" gorm:"type:uuid;not null;uniqueIndex:idx_token_user_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	User *User `json:"-" gorm:"foreignKey:UserID;references:ID;constraint:OnDelete:CASCADE"`
}

// Expired reports whether the token outlived ttl. A zero ttl never expires.
func (t Token) Expired(ttl time.Duration, now time.Time) bool {
	if ttl <= 0 {
		return false
	}
	return !t.CreatedAt.Add(ttl).After(now)
}
