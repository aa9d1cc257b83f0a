package api

import (
	"net/http"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/rpupo63/blogd/services"
)

type likeHandler struct {
	responder Responder
	logger    zerolog.Logger
	likes     *services.LikeService
}

func newLikeHandler(likes *services.LikeService) likeHandler {
	logger := log.With().Str("handlerName", "likeHandler").Logger()

	return likeHandler{
		responder: NewResponder(logger),
		logger:    logger,
		likes:     likes,
	}
}

// likePost likes a post as the caller
// @Summary Like post
// @Tags Likes
// @Produce json
// @Security TokenAuth
// @Param postID path string true "Post ID" format(uuid)
// @Success 201 {object} models.Like
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse "Conflict - You already liked this post"
// @Router /posts/{postID}/like [post]
func (h likeHandler) likePost() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		postID, err := uuidParam(r, "postID", "post")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		like, err := h.likes.Create(r.Context(), ctxGetActor(r.Context()), postID)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSONStatus(w, http.StatusCreated, like)
	}
}

// unlikePost removes the caller's like
// @Summary Unlike post
// @Tags Likes
// @Security TokenAuth
// @Param postID path string true "Post ID" format(uuid)
// @Success 204
// @Failure 404 {object} ErrorResponse
// @Router /posts/{postID}/unlike [delete]
func (h likeHandler) unlikePost() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		postID, err := uuidParam(r, "postID", "post")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		if err := h.likes.Delete(r.Context(), ctxGetActor(r.Context()), postID); err != nil {
			h.responder.WriteError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
