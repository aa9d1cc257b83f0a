package api

import (
	"github.com/go-chi/chi/v5"
)

// setupPublicRoutes registers the endpoints that need no token
func setupPublicRoutes(r chi.Router, handlers *routeHandlers) {
	r.Get("/metrics", handlers.metricsHandler.serve())

	r.Group(func(r chi.Router) {
		r.Use(ColoredHTTPLoggingMiddleware)

		r.Get("/ping", handlers.healthHandler.ping())
		r.Post("/auth/register", handlers.authHandler.register())
		r.Post("/auth/login", handlers.authHandler.login())
	})
}

// setupAuthenticatedRoutes registers every endpoint that requires a token
func setupAuthenticatedRoutes(r chi.Router, handlers *routeHandlers, authMiddleware authMiddleware) {
	r.Group(func(r chi.Router) {
		r.Use(ColoredHTTPLoggingMiddleware)
		r.Use(authMiddleware.authenticate)

		// Auth
		r.Post("/auth/logout", handlers.authHandler.logout())
		r.Get("/auth/user", handlers.authHandler.currentUser())

		// Categories
		r.Get("/categories", handlers.categoryHandler.listCategories())
		r.Post("/categories", handlers.categoryHandler.createCategory())
		r.Get("/categories/{categoryID}", handlers.categoryHandler.getCategory())
		r.Put("/categories/{categoryID}", handlers.categoryHandler.updateCategory())
		r.Patch("/categories/{categoryID}", handlers.categoryHandler.updateCategory())
		r.Delete("/categories/{categoryID}", handlers.categoryHandler.deleteCategory())

		// Blog posts
		r.Get("/posts", handlers.blogPostHandler.listPublished())
		r.Post("/posts", handlers.blogPostHandler.createBlogPost())
		r.Get("/posts/latest", handlers.blogPostHandler.latest())
		r.Get("/posts/admin", handlers.blogPostHandler.adminPosts())
		r.Get("/posts/{postID}", handlers.blogPostHandler.getBlogPost())
		r.Put("/posts/{postID}", handlers.blogPostHandler.updateBlogPost())
		r.Patch("/posts/{postID}", handlers.blogPostHandler.updateBlogPost())
		r.Delete("/posts/{postID}", handlers.blogPostHandler.deleteBlogPost())
		r.Put("/posts/{postID}/image", handlers.blogPostHandler.uploadFeaturedImage())

		// Comments
		r.Get("/posts/{postID}/comments", handlers.commentHandler.listComments())
		r.Post("/posts/{postID}/comments", handlers.commentHandler.createComment())
		r.Get("/comments/{commentID}", handlers.commentHandler.getComment())
		r.Put("/comments/{commentID}", handlers.commentHandler.updateComment())
		r.Patch("/comments/{commentID}", handlers.commentHandler.updateComment())
		r.Delete("/comments/{commentID}", handlers.commentHandler.deleteComment())
		r.Patch("/comments/{commentID}/approve", handlers.commentHandler.approveComment())

		// Likes
		r.Post("/posts/{postID}/like", handlers.likeHandler.likePost())
		r.Delete("/posts/{postID}/unlike", handlers.likeHandler.unlikePost())

		// Dashboard
		r.Get("/dashboard", handlers.dashboardHandler.summary())
	})
}
