package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BlogCategory groups posts. Managed by blog admins only.
type BlogCategory struct {
	ID          uuid.UUID `json:"id" db:"id" gorm:"type:uuid;primaryKey;not null"`
	Name        string    `json:"name" db:"name" gorm:"type:varchar(100);not null"`
	Description *string   `json:"description" db:"description" gorm:"type:text"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

func (c *BlogCategory) BeforeCreate(tx *gorm.DB) error {
	ensureID(&c.ID)
	return nil
}
