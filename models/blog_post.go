package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BlogPost represents a complete blog post with metadata
type BlogPost struct {
	ID            uuid.UUID     `json:"id" db:"id" gorm:"type:uuid;primaryKey;not null"`
	Title         string        `json:"title" db:"title" gorm:"type:varchar(200);not null"`
	Content       string        `json:"content" db:"content" gorm:"type:text;not null"`
	AuthorID      uuid.UUID     `json:"-" db:"author_id" gorm:"type:uuid;not null;index:idx_blog_post_author_id"`
	Author        *User         `json:"author" gorm:"foreignKey:AuthorID;references:ID;constraint:OnDelete:CASCADE"`
	CategoryID    *uuid.UUID    `json:"-" db:"category_id" gorm:"type:uuid;index:idx_blog_post_category_id"`
	Category      *BlogCategory `json:"category" gorm:"foreignKey:CategoryID;references:ID;constraint:OnDelete:SET NULL"`
	CreatedAt     time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at" db:"updated_at"`
	Published     bool          `json:"published" db:"published" gorm:"not null;default:false;index:idx_blog_post_published"`
	PublishedDate *time.Time    `json:"published_date" db:"published_date" gorm:"index:idx_blog_post_published_date"`
	FeaturedImage *string       `json:"featured_image" db:"featured_image" gorm:"type:text"`
	Slug          string        `json:"slug" db:"slug" gorm:"type:varchar(200);not null;uniqueIndex:idx_blog_post_slug"`

	// Computed per request, never persisted.
	CommentsCount int64 `json:"comments_count" gorm:"-"`
	LikesCount    int64 `json:"likes_count" gorm:"-"`
	IsLiked       bool  `json:"is_liked" gorm:"-"`
}

func (p *BlogPost) BeforeCreate(tx *gorm.DB) error {
	ensureID(&p.ID)
	return nil
}

// BeforeSave stamps published_date the first time a post is saved as published.
func (p *BlogPost) BeforeSave(tx *gorm.DB) error {
	if p.PublishedDate != nil {
		utc := p.PublishedDate.UTC()
		p.PublishedDate = &utc
	}
	if p.Published && p.PublishedDate == nil {
		now := tx.NowFunc()
		p.PublishedDate = &now
	}
	return nil
}
