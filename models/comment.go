package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Comment on a post. New comments are hidden until an admin approves them.
type Comment struct {
	ID        uuid.UUID `json:"id" db:"id" gorm:"type:uuid;primaryKey;not null"`
	PostID    uuid.UUID `json:"post" db:"post_id" gorm:"type:uuid;not null;index:idx_comment_post_id"`
	AuthorID  uuid.UUID `json:"-" db:"author_id" gorm:"type:uuid;not null;index:idx_comment_author_id"`
	Author    *User     `json:"author" gorm:"foreignKey:AuthorID;references:ID;constraint:OnDelete:CASCADE"`
	Content   string    `json:"content" db:"content" gorm:"type:text;not null"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	Approved  bool      `json:"approved" db:"approved" gorm:"not null;default:false"`

	Post *BlogPost `json:"-" gorm:"foreignKey:PostID;references:ID;constraint:OnDelete:CASCADE"`
}

func (c *Comment) BeforeCreate(tx *gorm.DB) error {
	ensureID(&c.ID)
	return nil
}
