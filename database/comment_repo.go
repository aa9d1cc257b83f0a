package database

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/plugin/dbresolver"

	"github.com/rpupo63/blogd/models"
)

type CommentRepo struct {
	db *gorm.DB
}

func NewCommentRepo(db *gorm.DB) *CommentRepo {
	return &CommentRepo{db}
}

// FindApprovedByPost lists the approved comments of a post, newest first.
func (r *CommentRepo) FindApprovedByPost(ctx context.Context, postID uuid.UUID) ([]*models.Comment, error) {
	var comments []*models.Comment
	err := r.db.WithContext(ctx).Preload("Author").
		Where("post_id = ? AND approved = ?", postID, true).
		Order("created_at DESC").
		Find(&comments).Error
	return comments, err
}

func (r *CommentRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Comment, error) {
	var comment models.Comment
	err := r.db.WithContext(ctx).Clauses(dbresolver.Write).Preload("Author").First(&comment, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &comment, nil
}

func (r *CommentRepo) Add(ctx context.Context, comment *models.Comment) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(comment).Error
}

// UpdateContent rewrites the body of a comment and nothing else.
func (r *CommentRepo) UpdateContent(ctx context.Context, id uuid.UUID, content string) error {
	return r.db.WithContext(ctx).Model(&models.Comment{}).
		Where("id = ?", id).
		Update("content", content).Error
}

func (r *CommentRepo) Delete(ctx context.Context, id uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).Delete(&models.Comment{}, "id = ?", id)
	return res.RowsAffected, res.Error
}

// Approve marks a comment as visible. Approving twice is harmless.
func (r *CommentRepo) Approve(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&models.Comment{}).
		Where("id = ?", id).
		Update("approved", true).Error
}

// CountOnPostsByAuthor counts comments left on posts written by authorID.
// A nil approved counts every comment.
func (r *CommentRepo) CountOnPostsByAuthor(ctx context.Context, authorID uuid.UUID, approved *bool) (int64, error) {
	var count int64
	tx := r.db.WithContext(ctx).Model(&models.Comment{}).
		Joins("JOIN blog_posts ON blog_posts.id = comments.post_id").
		Where("blog_posts.author_id = ?", authorID)
	if approved != nil {
		tx = tx.Where("comments.approved = ?", *approved)
	}
	err := tx.Count(&count).Error
	return count, err
}

// CountByAuthor counts the comments written by authorID.
func (r *CommentRepo) CountByAuthor(ctx context.Context, authorID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Comment{}).Where("author_id = ?", authorID).Count(&count).Error
	return count, err
}
