package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Like represents a user's like on a post.
// The combination of PostID and UserID must be unique.
type Like struct {
	ID        uuid.UUID `json:"id" db:"id" gorm:"type:uuid;primaryKey;not null"`
	PostID    uuid.UUID `json:"post" db:"post_id" gorm:"type:uuid;not null;uniqueIndex:idx_like_post_user"`
	UserID    uuid.UUID `json:"user" db:"user_id" gorm:"type:uuid;not null;uniqueIndex:idx_like_post_user;index:idx_like_user_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	Post *BlogPost `json:"-" gorm:"foreignKey:PostID;references:ID;constraint:OnDelete:CASCADE"`
	User *User     `json:"-" gorm:"foreignKey:UserID;references:ID;constraint:OnDelete:CASCADE"`
}

func (l *Like) BeforeCreate(tx *gorm.DB) error {
	ensureID(&l.ID)
	return nil
}
