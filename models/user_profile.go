package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UserProfile extends User one-to-one. It is created in the same transaction as the user.
type UserProfile struct {
	ID             uuid.UUID `json:"id" db:"id" gorm:"type:uuid;primaryKey;not null"`
	UserID         uuid.UUID `json:"user_id" db:"user_id" gorm:"type:uuid;not null;uniqueIndex:idx_user_profile_user_id"`
	Bio            *string   `json:"bio,omitempty" db:"bio" gorm:"type:text"`
	Website        *string   `json:"website,omitempty" db:"website" gorm:"type:text"`
	ProfilePicture *string   `json:"profile_picture,omitempty" db:"profile_picture" gorm:"type:text"`
	IsBlogAdmin    bool      `json:"is_blog_admin" db:"is_blog_admin" gorm:"not null;default:false"`
}

func (p *UserProfile) BeforeCreate(tx *gorm.DB) error {
	ensureID(&p.ID)
	return nil
}
