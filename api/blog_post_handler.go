package api

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/rpupo63/blogd/errs"
	"github.com/rpupo63/blogd/services"
)

// multipartOverhead is allowed on top of the image size for form boundaries and headers.
const multipartOverhead = 64 << 10

type blogPostHandler struct {
	responder Responder
	logger    zerolog.Logger
	posts     *services.PostService
}

func newBlogPostHandler(posts *services.PostService) blogPostHandler {
	logger := log.With().Str("handlerName", "blogPostHandler").Logger()

	return blogPostHandler{
		responder: NewResponder(logger),
		logger:    logger,
		posts:     posts,
	}
}

// listPublished returns published posts, most recently published first
// @Summary List published posts
// @Description Filters by category id and searches title, content and author username
// @Tags Blog Posts
// @Produce json
// @Security TokenAuth
// @Param category query string false "Category ID" format(uuid)
// @Param search query string false "Case-insensitive search term"
// @Success 200 {array} models.BlogPost
// @Failure 400 {object} ErrorResponse "Bad Request - Invalid category id"
// @Router /posts [get]
func (h blogPostHandler) listPublished() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		posts, err := h.posts.ListPublished(r.Context(), ctxGetActor(r.Context()), services.PostFilters{
			Category: query.Get("category"),
			Search:   query.Get("search"),
		})
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, posts)
	}
}

// latest returns up to five posts published in the last thirty days
// @Summary Latest posts
// @Tags Blog Posts
// @Produce json
// @Security TokenAuth
// @Success 200 {array} models.BlogPost
// @Router /posts/latest [get]
func (h blogPostHandler) latest() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		posts, err := h.posts.Latest(r.Context(), ctxGetActor(r.Context()))
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, posts)
	}
}

// adminPosts returns every post of the calling admin, drafts included
// @Summary Admin posts
// @Tags Blog Posts
// @Produce json
// @Security TokenAuth
// @Success 200 {array} models.BlogPost
// @Failure 403 {object} ErrorResponse
// @Router /posts/admin [get]
func (h blogPostHandler) adminPosts() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		posts, err := h.posts.ListOwnForAdmin(r.Context(), ctxGetActor(r.Context()))
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, posts)
	}
}

// getBlogPost retrieves a post in any state
// @Summary Get blog post
// @Tags Blog Posts
// @Produce json
// @Security TokenAuth
// @Param postID path string true "Post ID" format(uuid)
// @Success 200 {object} models.BlogPost
// @Failure 404 {object} ErrorResponse "Not Found - Blog post not found"
// @Router /posts/{postID} [get]
func (h blogPostHandler) getBlogPost() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuidParam(r, "postID", "post")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		post, err := h.posts.Get(r.Context(), ctxGetActor(r.Context()), id)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, post)
	}
}

// createBlogPost creates a post authored by the caller. Blog admins only.
// @Summary Create blog post
// @Tags Blog Posts
// @Accept json
// @Produce json
// @Security TokenAuth
// @Param body body services.PostInput true "Post"
// @Success 201 {object} models.BlogPost
// @Failure 400 {object} ErrorResponse "Bad Request - Invalid blog post data"
// @Failure 403 {object} ErrorResponse "Forbidden - Only blog admins can create posts"
// @Router /posts [post]
func (h blogPostHandler) createBlogPost() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in services.PostInput
		if err := decodeJSON(w, r, &in); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		post, err := h.posts.Create(r.Context(), ctxGetActor(r.Context()), in)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSONStatus(w, http.StatusCreated, post)
	}
}

// updateBlogPost changes the provided fields of a post. Author or blog admin only.
// @Summary Update blog post
// @Tags Blog Posts
// @Accept json
// @Produce json
// @Security TokenAuth
// @Param postID path string true "Post ID" format(uuid)
// @Param body body services.PostInput true "Fields to change"
// @Success 200 {object} models.BlogPost
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /posts/{postID} [put]
// @Router /posts/{postID} [patch]
func (h blogPostHandler) updateBlogPost() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuidParam(r, "postID", "post")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		var in services.PostInput
		if err := decodeJSON(w, r, &in); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		post, err := h.posts.Update(r.Context(), ctxGetActor(r.Context()), id, in)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, post)
	}
}

// deleteBlogPost removes a post with its comments and likes
// @Summary Delete blog post
// @Tags Blog Posts
// @Security TokenAuth
// @Param postID path string true "Post ID" format(uuid)
// @Success 204
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /posts/{postID} [delete]
func (h blogPostHandler) deleteBlogPost() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuidParam(r, "postID", "post")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		if err := h.posts.Delete(r.Context(), ctxGetActor(r.Context()), id); err != nil {
			h.responder.WriteError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// uploadFeaturedImage stores an image and sets it as the post's featured image
// @Summary Upload featured image
// @Tags Blog Posts
// @Accept multipart/form-data
// @Produce json
// @Security TokenAuth
// @Param postID path string true "Post ID" format(uuid)
// @Param image formData file true "Image file"
// @Success 200 {object} models.BlogPost
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 413 {object} ErrorResponse
// @Failure 503 {object} ErrorResponse "Service Unavailable - Image storage not configured"
// @Router /posts/{postID}/image [put]
func (h blogPostHandler) uploadFeaturedImage() http.HandlerFunc {
	maxImageBytes := h.posts.MaxImageBytes()

	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuidParam(r, "postID", "post")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		r.Body = http.MaxBytesReader(w, r.Body, maxImageBytes+multipartOverhead)
		if err := r.ParseMultipartForm(maxImageBytes); err != nil {
			var maxErr *http.MaxBytesError
			if errors.As(err, &maxErr) {
				h.responder.WriteError(w, errs.NewMaxBodySizeExceededError(maxImageBytes))
				return
			}
			h.responder.WriteError(w, errs.NewMalformedPayloadError("multipart", err))
			return
		}
		defer r.MultipartForm.RemoveAll()

		file, header, err := r.FormFile("image")
		if err != nil {
			h.responder.WriteError(w, errs.NewMissingRequiredFieldError("image"))
			return
		}
		defer file.Close()

		post, err := h.posts.SetFeaturedImage(r.Context(), ctxGetActor(r.Context()), id,
			header.Filename, header.Header.Get("Content-Type"), file, header.Size)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.logger.Info().Str("postID", id.String()).Int64("bytes", header.Size).Msg("Featured image uploaded")
		h.responder.WriteJSON(w, post)
	}
}
