package services

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/rpupo63/blogd/database"
	"github.com/rpupo63/blogd/errs"
	"github.com/rpupo63/blogd/models"
	"github.com/rpupo63/blogd/policy"
)

type CommentService struct {
	db database.Database
}

// ListApprovedForPost returns the approved comments of a post, newest first.
// Pending comments are never listed, not even to their author.
func (s *CommentService) ListApprovedForPost(ctx context.Context, postID uuid.UUID) ([]*models.Comment, error) {
	if err := requirePost(ctx, s.db, postID); err != nil {
		return nil, err
	}
	comments, err := s.db.CommentRepo().FindApprovedByPost(ctx, postID)
	if err != nil {
		return nil, errs.NewDatabaseError("list", "comments", err)
	}
	return comments, nil
}

// Create stores a pending comment by actor on the post.
func (s *CommentService) Create(ctx context.Context, actor *models.User, postID uuid.UUID, content string) (*models.Comment, error) {
	if actor == nil {
		return nil, errs.Unauthorized
	}
	if strings.TrimSpace(content) == "" {
		return nil, errs.NewMissingRequiredFieldError("content")
	}
	if err := requirePost(ctx, s.db, postID); err != nil {
		return nil, err
	}

	comment := &models.Comment{
		PostID:   postID,
		AuthorID: actor.ID,
		Content:  content,
	}
	if err := s.db.CommentRepo().Add(ctx, comment); err != nil {
		return nil, errs.NewDatabaseError("create", "comment", err)
	}
	comment.Author = actor
	return comment, nil
}

func (s *CommentService) Get(ctx context.Context, id uuid.UUID) (*models.Comment, error) {
	comment, err := s.db.CommentRepo().FindByID(ctx, id)
	if err != nil {
		return nil, errs.NewDatabaseError("find", "comment", err)
	}
	return comment, nil
}

// Update rewrites the comment body. Approval only changes through Approve.
func (s *CommentService) Update(ctx context.Context, actor *models.User, id uuid.UUID, content string) (*models.Comment, error) {
	comment, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := policy.CanMutateComment(actor, comment).Err(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(content) == "" {
		return nil, errs.NewMissingRequiredFieldError("content")
	}

	if err := s.db.CommentRepo().UpdateContent(ctx, id, content); err != nil {
		return nil, errs.NewDatabaseError("update", "comment", err)
	}
	comment.Content = content
	return comment, nil
}

func (s *CommentService) Delete(ctx context.Context, actor *models.User, id uuid.UUID) error {
	comment, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := policy.CanMutateComment(actor, comment).Err(); err != nil {
		return err
	}

	rows, err := s.db.CommentRepo().Delete(ctx, id)
	if err != nil {
		return errs.NewDatabaseError("delete", "comment", err)
	}
	if rows == 0 {
		return errs.NewNotFound("comment")
	}
	return nil
}

// Approve makes the comment public. Approving an approved comment succeeds.
func (s *CommentService) Approve(ctx context.Context, actor *models.User, id uuid.UUID) (*models.Comment, error) {
	if err := policy.CanApproveComment(actor).Err(); err != nil {
		return nil, err
	}
	comment, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if comment.Approved {
		return comment, nil
	}

	if err := s.db.CommentRepo().Approve(ctx, id); err != nil {
		return nil, errs.NewDatabaseError("approve", "comment", err)
	}
	comment.Approved = true
	return comment, nil
}
