package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is an account of the platform. Credentials never leave the server.
type User struct {
	ID           uuid.UUID    `json:"id" db:"id" gorm:"type:uuid;primaryKey;not null"`
	Username     string       `json:"username" db:"username" gorm:"type:varchar(150);not null;uniqueIndex:idx_user_username"`
	Email        string       `json:"email" db:"email" gorm:"type:varchar(254);not null"`
	FirstName    string       `json:"first_name" db:"first_name" gorm:"type:varchar(150);not null"`
	LastName     string       `json:"last_name" db:"last_name" gorm:"type:varchar(150);not null"`
	PasswordHash string       `json:"-" db:"password_hash" gorm:"type:text;not null"`
	IsStaff      bool         `json:"is_staff" db:"is_staff" gorm:"not null;default:false"`
	CreatedAt    time.Time    `json:"created_at" db:"created_at"`
	Profile      *UserProfile `json:"-" gorm:"foreignKey:UserID;references:ID;constraint:OnDelete:CASCADE"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	ensureID(&u.ID)
	return nil
}

// IsBlogAdmin reports the profile flag. A nil user or a user loaded without its
// profile is never an admin.
func (u *User) IsBlogAdmin() bool {
	return u != nil && u.Profile != nil && u.Profile.IsBlogAdmin
}

// Is reports whether u and other are the same account.
func (u *User) Is(id uuid.UUID) bool {
	return u != nil && u.ID == id
}

func ensureID(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}
