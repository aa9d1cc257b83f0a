package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/rpupo63/blogd/database"
	"github.com/rpupo63/blogd/errs"
	"github.com/rpupo63/blogd/models"
)

type LikeService struct {
	db database.Database
}

// Create likes the post as actor. The unique (post, user) index makes the
// insert a no-op for a second like, which is reported as a conflict.
func (s *LikeService) Create(ctx context.Context, actor *models.User, postID uuid.UUID) (*models.Like, error) {
	if actor == nil {
		return nil, errs.Unauthorized
	}
	if err := requirePost(ctx, s.db, postID); err != nil {
		return nil, err
	}

	like := &models.Like{PostID: postID, UserID: actor.ID}
	created, err := s.db.LikeRepo().Add(ctx, like)
	if err != nil {
		return nil, errs.NewDatabaseError("create", "like", err)
	}
	if !created {
		return nil, errs.NewConflictError("You already liked this post")
	}
	return like, nil
}

// Delete removes actor's like from the post.
func (s *LikeService) Delete(ctx context.Context, actor *models.User, postID uuid.UUID) error {
	if actor == nil {
		return errs.Unauthorized
	}
	if err := requirePost(ctx, s.db, postID); err != nil {
		return err
	}

	rows, err := s.db.LikeRepo().Delete(ctx, postID, actor.ID)
	if err != nil {
		return errs.NewDatabaseError("delete", "like", err)
	}
	if rows == 0 {
		return errs.NewNotFound("like")
	}
	return nil
}
