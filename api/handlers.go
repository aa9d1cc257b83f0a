package api

import (
	"time"

	"github.com/rpupo63/blogd/database"
	"github.com/rpupo63/blogd/services"
)

// initializeHandlers creates and returns all handlers organized in a routeHandlers struct
func initializeHandlers(db database.Database, svc services.Services, startupTime time.Time) *routeHandlers {
	return &routeHandlers{
		authHandler:      newAuthHandler(svc.Auth),
		categoryHandler:  newCategoryHandler(svc.Categories),
		blogPostHandler:  newBlogPostHandler(svc.Posts),
		commentHandler:   newCommentHandler(svc.Comments),
		likeHandler:      newLikeHandler(svc.Likes),
		dashboardHandler: newDashboardHandler(svc.Dashboard),
		healthHandler:    newHealthHandler(db, startupTime),
		metricsHandler:   metricsHandler{},
	}
}
