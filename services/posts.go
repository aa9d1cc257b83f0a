package services

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/rpupo63/blogd/database"
	"github.com/rpupo63/blogd/errs"
	"github.com/rpupo63/blogd/models"
	"github.com/rpupo63/blogd/policy"
	"github.com/rpupo63/blogd/storage"
	"github.com/rpupo63/blogd/validate"
)

const (
	latestWindow = 30 * 24 * time.Hour
	latestLimit  = 5
)

// PostInput is used for create and partial update. Nil fields are left untouched
// on update. An empty Category removes the post from its category.
type PostInput struct {
	Title         *string    `json:"title" validate:"omitempty,notblank,max=200"`
	Content       *string    `json:"content" validate:"omitempty,notblank"`
	Category      *string    `json:"category"`
	Published     *bool      `json:"published"`
	PublishedDate *time.Time `json:"published_date"`
	Slug          *string    `json:"slug" validate:"omitempty,max=200"`
	FeaturedImage *string    `json:"featured_image" validate:"omitempty,url"`
}

// PostFilters narrows ListPublished. Category is a category id.
type PostFilters struct {
	Category string
	Search   string
}

type PostService struct {
	db            database.Database
	images        storage.ImageStore
	maxImageBytes int64
	now           func() time.Time
}

// MaxImageBytes is the largest featured image SetFeaturedImage accepts.
func (s *PostService) MaxImageBytes() int64 {
	return s.maxImageBytes
}

// ListPublished returns published posts, most recently published first.
func (s *PostService) ListPublished(ctx context.Context, actor *models.User, f PostFilters) ([]*models.BlogPost, error) {
	q := database.PostQuery{Search: f.Search}
	if f.Category != "" {
		id, err := uuid.Parse(f.Category)
		if err != nil {
			return nil, errs.NewInvalidFieldError("category", "must be a valid category id")
		}
		q.CategoryID = &id
	}

	posts, err := s.db.BlogPostRepo().FindPublished(ctx, q)
	if err != nil {
		return nil, errs.NewDatabaseError("list", "posts", err)
	}
	return s.enrich(ctx, actor, posts)
}

// Latest returns up to five posts published in the last thirty days.
func (s *PostService) Latest(ctx context.Context, actor *models.User) ([]*models.BlogPost, error) {
	posts, err := s.db.BlogPostRepo().FindLatest(ctx, s.now().Add(-latestWindow), latestLimit)
	if err != nil {
		return nil, errs.NewDatabaseError("list", "latest posts", err)
	}
	return s.enrich(ctx, actor, posts)
}

// ListOwnForAdmin returns every post the admin wrote, drafts included, newest first.
func (s *PostService) ListOwnForAdmin(ctx context.Context, actor *models.User) ([]*models.BlogPost, error) {
	if err := policy.CanViewAdminPosts(actor).Err(); err != nil {
		return nil, err
	}
	posts, err := s.db.BlogPostRepo().FindByAuthor(ctx, actor.ID)
	if err != nil {
		return nil, errs.NewDatabaseError("list", "admin posts", err)
	}
	return s.enrich(ctx, actor, posts)
}

// Get returns a post in any state.
func (s *PostService) Get(ctx context.Context, actor *models.User, id uuid.UUID) (*models.BlogPost, error) {
	post, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := s.enrich(ctx, actor, []*models.BlogPost{post}); err != nil {
		return nil, err
	}
	return post, nil
}

func (s *PostService) Create(ctx context.Context, actor *models.User, in PostInput) (*models.BlogPost, error) {
	if err := policy.CanCreatePost(actor).Err(); err != nil {
		return nil, err
	}
	if in.Title == nil {
		return nil, errs.NewMissingRequiredFieldError("title")
	}
	if in.Content == nil {
		return nil, errs.NewMissingRequiredFieldError("content")
	}
	if err := validate.Struct(in); err != nil {
		return nil, err
	}

	post := &models.BlogPost{
		Title:         strings.TrimSpace(*in.Title),
		Content:       *in.Content,
		AuthorID:      actor.ID,
		PublishedDate: in.PublishedDate,
		FeaturedImage: in.FeaturedImage,
	}
	if in.Published != nil {
		post.Published = *in.Published
	}
	if err := s.applyCategory(ctx, post, in.Category); err != nil {
		return nil, err
	}

	slug, err := s.slugFor(ctx, post.Title, in.Slug, "")
	if err != nil {
		return nil, err
	}
	post.Slug = slug

	if err := s.db.BlogPostRepo().Add(ctx, post); err != nil {
		return nil, errs.NewDatabaseError("create", "post", err)
	}

	log.Info().Str("postID", post.ID.String()).Str("author", actor.Username).Bool("published", post.Published).Msg("Post created")
	return s.Get(ctx, actor, post.ID)
}

// Update applies the non-nil fields of in. The author never changes.
func (s *PostService) Update(ctx context.Context, actor *models.User, id uuid.UUID, in PostInput) (*models.BlogPost, error) {
	post, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := policy.CanMutatePost(actor, post).Err(); err != nil {
		return nil, err
	}
	if err := validate.Struct(in); err != nil {
		return nil, err
	}

	if in.Title != nil {
		post.Title = strings.TrimSpace(*in.Title)
	}
	if in.Content != nil {
		post.Content = *in.Content
	}
	if in.Published != nil {
		post.Published = *in.Published
	}
	if in.PublishedDate != nil {
		post.PublishedDate = in.PublishedDate
	}
	if in.FeaturedImage != nil {
		post.FeaturedImage = in.FeaturedImage
	}
	if err := s.applyCategory(ctx, post, in.Category); err != nil {
		return nil, err
	}
	if in.Slug != nil {
		slug, err := s.slugFor(ctx, post.Title, in.Slug, post.Slug)
		if err != nil {
			return nil, err
		}
		post.Slug = slug
	}

	if err := s.db.BlogPostRepo().Update(ctx, post); err != nil {
		return nil, errs.NewDatabaseError("update", "post", err)
	}
	return s.Get(ctx, actor, post.ID)
}

// Delete removes the post along with its comments and likes.
func (s *PostService) Delete(ctx context.Context, actor *models.User, id uuid.UUID) error {
	post, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	if err := policy.CanMutatePost(actor, post).Err(); err != nil {
		return err
	}

	err = s.db.Transaction(ctx, func(tx database.Database) error {
		rows, err := tx.BlogPostRepo().Delete(ctx, id)
		if err != nil {
			return err
		}
		if rows == 0 {
			return errs.NewNotFound("post")
		}
		return nil
	})
	if err != nil {
		return errs.NewDatabaseError("delete", "post", err)
	}

	log.Info().Str("postID", id.String()).Str("actor", actor.Username).Msg("Post deleted")
	return nil
}

// SetFeaturedImage uploads an image and makes it the post's featured image.
func (s *PostService) SetFeaturedImage(ctx context.Context, actor *models.User, id uuid.UUID, filename, contentType string, body io.Reader, size int64) (*models.BlogPost, error) {
	if s.images == nil {
		return nil, errs.NewServiceUnavailableError("Image storage is not configured")
	}

	post, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := policy.CanMutatePost(actor, post).Err(); err != nil {
		return nil, err
	}
	if !strings.HasPrefix(contentType, "image/") {
		return nil, errs.NewInvalidFieldError("image", "must be an image")
	}
	if size > s.maxImageBytes {
		return nil, errs.NewMaxBodySizeExceededError(s.maxImageBytes)
	}

	key := fmt.Sprintf("posts/%s/%s%s", post.ID, uuid.NewString(), strings.ToLower(filepath.Ext(filename)))
	url, err := s.images.Put(ctx, key, contentType, body, size)
	if err != nil {
		return nil, errs.NewInternalErrorWithCause("Failed to store image", err)
	}

	previous := post.FeaturedImage
	post.FeaturedImage = &url
	if err := s.db.BlogPostRepo().Update(ctx, post); err != nil {
		s.removeImage(ctx, key)
		return nil, errs.NewDatabaseError("update", "post", err)
	}

	// The replaced object is unreachable once the new URL is saved.
	if previous != nil {
		if oldKey, ok := s.images.KeyFromURL(*previous); ok && oldKey != key {
			s.removeImage(ctx, oldKey)
		}
	}
	return s.Get(ctx, actor, post.ID)
}

func (s *PostService) removeImage(ctx context.Context, key string) {
	if err := s.images.Delete(ctx, key); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("Failed to remove image")
	}
}

func (s *PostService) find(ctx context.Context, id uuid.UUID) (*models.BlogPost, error) {
	post, err := s.db.BlogPostRepo().FindByID(ctx, id)
	if err != nil {
		return nil, errs.NewDatabaseError("find", "post", err)
	}
	return post, nil
}

func (s *PostService) applyCategory(ctx context.Context, post *models.BlogPost, category *string) error {
	if category == nil {
		return nil
	}
	if *category == "" {
		post.CategoryID = nil
		post.Category = nil
		return nil
	}

	id, err := uuid.Parse(*category)
	if err != nil {
		return errs.NewInvalidFieldError("category", "must be a valid category id")
	}
	exists, err := s.db.BlogCategoryRepo().Exists(ctx, id)
	if err != nil {
		return errs.NewDatabaseError("find", "category", err)
	}
	if !exists {
		return errs.NewInvalidFieldError("category", "category does not exist")
	}
	post.CategoryID = &id
	post.Category = nil
	return nil
}

// slugFor picks the slug to store. A requested slug must be free; a slug
// derived from the title gets a random suffix when taken.
func (s *PostService) slugFor(ctx context.Context, title string, requested *string, current string) (string, error) {
	if requested != nil && strings.TrimSpace(*requested) != "" {
		slug := Slugify(*requested)
		if slug == current {
			return slug, nil
		}
		taken, err := s.db.BlogPostRepo().SlugExists(ctx, slug)
		if err != nil {
			return "", errs.NewDatabaseError("check", "slug", err)
		}
		if taken {
			return "", errs.NewConflictError("A post with this slug already exists")
		}
		return slug, nil
	}

	base := Slugify(title)
	if base == current {
		return base, nil
	}
	taken, err := s.db.BlogPostRepo().SlugExists(ctx, base)
	if err != nil {
		return "", errs.NewDatabaseError("check", "slug", err)
	}
	if !taken {
		return base, nil
	}
	return base + "-" + strings.ReplaceAll(uuid.NewString(), "-", "")[:slugSuffixLen], nil
}

// enrich fills the computed counters of posts in three grouped queries.
func (s *PostService) enrich(ctx context.Context, actor *models.User, posts []*models.BlogPost) ([]*models.BlogPost, error) {
	if len(posts) == 0 {
		return posts, nil
	}

	ids := make([]uuid.UUID, len(posts))
	for i, p := range posts {
		ids[i] = p.ID
	}

	repo := s.db.BlogPostRepo()
	comments, err := repo.CountApprovedComments(ctx, ids)
	if err != nil {
		return nil, errs.NewDatabaseError("count", "comments", err)
	}
	likes, err := repo.CountLikes(ctx, ids)
	if err != nil {
		return nil, errs.NewDatabaseError("count", "likes", err)
	}
	liked := map[uuid.UUID]bool{}
	if actor != nil {
		liked, err = repo.LikedBy(ctx, actor.ID, ids)
		if err != nil {
			return nil, errs.NewDatabaseError("check", "likes", err)
		}
	}

	for _, p := range posts {
		p.CommentsCount = comments[p.ID]
		p.LikesCount = likes[p.ID]
		p.IsLiked = liked[p.ID]
	}
	return posts, nil
}

// requirePost reports NotFound when the post does not exist.
func requirePost(ctx context.Context, db database.Database, id uuid.UUID) error {
	exists, err := db.BlogPostRepo().Exists(ctx, id)
	if err != nil {
		return errs.NewDatabaseError("find", "post", err)
	}
	if !exists {
		return errs.NewNotFound("post")
	}
	return nil
}
