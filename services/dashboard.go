package services

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/rpupo63/blogd/database"
	"github.com/rpupo63/blogd/errs"
	"github.com/rpupo63/blogd/models"
)

// DashboardStats is the per-role summary. Admins get the post and comment
// counters, everybody else gets their own activity.
type DashboardStats struct {
	IsAdmin bool `json:"is_admin"`

	TotalPosts      *int64 `json:"total_posts,omitempty"`
	PublishedPosts  *int64 `json:"published_posts,omitempty"`
	TotalComments   *int64 `json:"total_comments,omitempty"`
	PendingComments *int64 `json:"pending_comments,omitempty"`

	LikedPosts   *int64 `json:"liked_posts,omitempty"`
	CommentsMade *int64 `json:"comments_made,omitempty"`
}

type DashboardService struct {
	db database.Database
}

func (s *DashboardService) Summarize(ctx context.Context, actor *models.User) (*DashboardStats, error) {
	if actor == nil {
		return nil, errs.Unauthorized
	}

	g, gctx := errgroup.WithContext(ctx)
	count := func(dst **int64, fn func(context.Context) (int64, error)) {
		g.Go(func() error {
			n, err := fn(gctx)
			if err != nil {
				return err
			}
			*dst = &n
			return nil
		})
	}

	stats := &DashboardStats{IsAdmin: actor.IsBlogAdmin()}
	posts, comments, likes := s.db.BlogPostRepo(), s.db.CommentRepo(), s.db.LikeRepo()

	if stats.IsAdmin {
		pending := false
		count(&stats.TotalPosts, func(ctx context.Context) (int64, error) {
			return posts.CountByAuthor(ctx, actor.ID, false)
		})
		count(&stats.PublishedPosts, func(ctx context.Context) (int64, error) {
			return posts.CountByAuthor(ctx, actor.ID, true)
		})
		count(&stats.TotalComments, func(ctx context.Context) (int64, error) {
			return comments.CountOnPostsByAuthor(ctx, actor.ID, nil)
		})
		count(&stats.PendingComments, func(ctx context.Context) (int64, error) {
			return comments.CountOnPostsByAuthor(ctx, actor.ID, &pending)
		})
	} else {
		count(&stats.LikedPosts, func(ctx context.Context) (int64, error) {
			return likes.CountByUser(ctx, actor.ID)
		})
		count(&stats.CommentsMade, func(ctx context.Context) (int64, error) {
			return comments.CountByAuthor(ctx, actor.ID)
		})
	}

	if err := g.Wait(); err != nil {
		return nil, errs.NewDatabaseError("summarize", "dashboard", err)
	}
	return stats, nil
}
