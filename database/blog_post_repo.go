package database

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/plugin/dbresolver"

	"github.com/rpupo63/blogd/models"
)

type BlogPostRepo struct {
	db *gorm.DB
}

func NewBlogPostRepo(db *gorm.DB) *BlogPostRepo {
	return &BlogPostRepo{db}
}

// PostQuery narrows FindPublished. Zero values mean no filter.
type PostQuery struct {
	CategoryID *uuid.UUID
	Search     string
}

func (r *BlogPostRepo) withRelations(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Preload("Author.Profile").Preload("Category")
}

// FindPublished returns published posts, newest publication first.
// Search matches title, content or the author's username, case-insensitively.
func (r *BlogPostRepo) FindPublished(ctx context.Context, q PostQuery) ([]*models.BlogPost, error) {
	tx := r.withRelations(ctx).Where("blog_posts.published = ?", true)
	if q.CategoryID != nil {
		tx = tx.Where("blog_posts.category_id = ?", *q.CategoryID)
	}
	if term := strings.TrimSpace(q.Search); term != "" {
		like := containsPattern(lowerLike(r.db, term))
		tx = tx.Joins("JOIN users ON users.id = blog_posts.author_id").
			Where(`LOWER(blog_posts.title) LIKE ? ESCAPE '\' OR LOWER(blog_posts.content) LIKE ? ESCAPE '\' OR LOWER(users.username) LIKE ? ESCAPE '\'`, like, like, like)
	}

	var posts []*models.BlogPost
	err := tx.Order("blog_posts.published_date DESC").Find(&posts).Error
	return posts, err
}

// FindLatest returns at most limit posts published since the given time.
func (r *BlogPostRepo) FindLatest(ctx context.Context, since time.Time, limit int) ([]*models.BlogPost, error) {
	var posts []*models.BlogPost
	err := r.withRelations(ctx).
		Where("published = ? AND published_date >= ?", true, since.UTC()).
		Order("published_date DESC").
		Limit(limit).
		Find(&posts).Error
	return posts, err
}

// FindByAuthor returns every post written by authorID regardless of state.
func (r *BlogPostRepo) FindByAuthor(ctx context.Context, authorID uuid.UUID) ([]*models.BlogPost, error) {
	var posts []*models.BlogPost
	err := r.withRelations(ctx).
		Where("author_id = ?", authorID).
		Order("created_at DESC").
		Find(&posts).Error
	return posts, err
}

// FindByID returns a blog post by its ID
func (r *BlogPostRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.BlogPost, error) {
	var post models.BlogPost
	err := r.withRelations(ctx).Clauses(dbresolver.Write).First(&post, "blog_posts.id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *BlogPostRepo) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Clauses(dbresolver.Write).Model(&models.BlogPost{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

func (r *BlogPostRepo) SlugExists(ctx context.Context, slug string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Clauses(dbresolver.Write).Model(&models.BlogPost{}).Where("slug = ?", slug).Count(&count).Error
	return count > 0, err
}

// Add inserts a new blog post into the database
func (r *BlogPostRepo) Add(ctx context.Context, post *models.BlogPost) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(post).Error
}

// Update updates an existing blog post in the database
func (r *BlogPostRepo) Update(ctx context.Context, post *models.BlogPost) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(post).Error
}

// Delete removes a post with its comments and likes. Callers run it inside a transaction.
func (r *BlogPostRepo) Delete(ctx context.Context, id uuid.UUID) (int64, error) {
	db := r.db.WithContext(ctx)
	if err := db.Where("post_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
		return 0, err
	}
	if err := db.Where("post_id = ?", id).Delete(&models.Like{}).Error; err != nil {
		return 0, err
	}
	res := db.Delete(&models.BlogPost{}, "id = ?", id)
	return res.RowsAffected, res.Error
}

type postCount struct {
	PostID uuid.UUID
	Total  int64
}

// CountApprovedComments returns approved comment totals keyed by post id.
func (r *BlogPostRepo) CountApprovedComments(ctx context.Context, postIDs []uuid.UUID) (map[uuid.UUID]int64, error) {
	var rows []postCount
	err := r.db.WithContext(ctx).Model(&models.Comment{}).
		Select("post_id, COUNT(*) AS total").
		Where("post_id IN ? AND approved = ?", postIDs, true).
		Group("post_id").
		Scan(&rows).Error
	return countsByPost(rows), err
}

// CountLikes returns like totals keyed by post id.
func (r *BlogPostRepo) CountLikes(ctx context.Context, postIDs []uuid.UUID) (map[uuid.UUID]int64, error) {
	var rows []postCount
	err := r.db.WithContext(ctx).Model(&models.Like{}).
		Select("post_id, COUNT(*) AS total").
		Where("post_id IN ?", postIDs).
		Group("post_id").
		Scan(&rows).Error
	return countsByPost(rows), err
}

// LikedBy returns the subset of postIDs that userID has liked.
func (r *BlogPostRepo) LikedBy(ctx context.Context, userID uuid.UUID, postIDs []uuid.UUID) (map[uuid.UUID]bool, error) {
	var liked []uuid.UUID
	err := r.db.WithContext(ctx).Model(&models.Like{}).
		Where("user_id = ? AND post_id IN ?", userID, postIDs).
		Pluck("post_id", &liked).Error
	if err != nil {
		return nil, err
	}
	set := make(map[uuid.UUID]bool, len(liked))
	for _, id := range liked {
		set[id] = true
	}
	return set, nil
}

// CountByAuthor returns how many posts authorID wrote, optionally only published ones.
func (r *BlogPostRepo) CountByAuthor(ctx context.Context, authorID uuid.UUID, publishedOnly bool) (int64, error) {
	var count int64
	tx := r.db.WithContext(ctx).Model(&models.BlogPost{}).Where("author_id = ?", authorID)
	if publishedOnly {
		tx = tx.Where("published = ?", true)
	}
	err := tx.Count(&count).Error
	return count, err
}

func countsByPost(rows []postCount) map[uuid.UUID]int64 {
	counts := make(map[uuid.UUID]int64, len(rows))
	for _, row := range rows {
		counts[row.PostID] = row.Total
	}
	return counts
}
