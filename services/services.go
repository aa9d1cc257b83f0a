// Package services holds the blog's business operations. Every call takes the
// acting user explicitly; a nil actor is an anonymous caller.
package services

import (
	"time"

	"github.com/rpupo63/blogd/database"
	"github.com/rpupo63/blogd/storage"
)

// Options tunes the services. The zero value is usable.
type Options struct {
	// TokenTTL expires tokens older than this. Zero keeps tokens until logout.
	TokenTTL time.Duration
	// Images stores featured images. Uploads fail as unavailable when nil.
	Images storage.ImageStore
	// MaxImageBytes caps featured image uploads. Zero or less means 5 MiB.
	MaxImageBytes int64
	// Now replaces the clock in tests.
	Now func() time.Time
}

const defaultMaxImageBytes = 5 << 20

type Services struct {
	Auth       *AuthService
	Categories *CategoryService
	Posts      *PostService
	Comments   *CommentService
	Likes      *LikeService
	Dashboard  *DashboardService
}

func New(db database.Database, opts Options) Services {
	if opts.Now == nil {
		opts.Now = func() time.Time { return time.Now().UTC() }
	}
	if opts.MaxImageBytes <= 0 {
		opts.MaxImageBytes = defaultMaxImageBytes
	}

	posts := &PostService{db: db, images: opts.Images, maxImageBytes: opts.MaxImageBytes, now: opts.Now}
	return Services{
		Auth:       &AuthService{db: db, tokenTTL: opts.TokenTTL, now: opts.Now},
		Categories: &CategoryService{db: db},
		Posts:      posts,
		Comments:   &CommentService{db: db},
		Likes:      &LikeService{db: db},
		Dashboard:  &DashboardService{db: db},
	}
}
