package api

import (
	"net/http"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/rpupo63/blogd/services"
)

type commentHandler struct {
	responder Responder
	logger    zerolog.Logger
	comments  *services.CommentService
}

func newCommentHandler(comments *services.CommentService) commentHandler {
	logger := log.With().Str("handlerName", "commentHandler").Logger()

	return commentHandler{
		responder: NewResponder(logger),
		logger:    logger,
		comments:  comments,
	}
}

// listComments returns the approved comments of a post
// @Summary List comments
// @Tags Comments
// @Produce json
// @Security TokenAuth
// @Param postID path string true "Post ID" format(uuid)
// @Success 200 {array} models.Comment
// @Failure 404 {object} ErrorResponse
// @Router /posts/{postID}/comments [get]
func (h commentHandler) listComments() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		postID, err := uuidParam(r, "postID", "post")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		comments, err := h.comments.ListApprovedForPost(r.Context(), postID)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, comments)
	}
}

// createComment leaves a comment awaiting approval
// @Summary Create comment
// @Tags Comments
// @Accept json
// @Produce json
// @Security TokenAuth
// @Param postID path string true "Post ID" format(uuid)
// @Param body body CommentRequest true "Comment"
// @Success 201 {object} models.Comment
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /posts/{postID}/comments [post]
func (h commentHandler) createComment() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		postID, err := uuidParam(r, "postID", "post")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		var in CommentRequest
		if err := decodeJSON(w, r, &in); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		comment, err := h.comments.Create(r.Context(), ctxGetActor(r.Context()), postID, in.Content)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSONStatus(w, http.StatusCreated, comment)
	}
}

// getComment returns one comment, approved or not
// @Summary Get comment
// @Tags Comments
// @Produce json
// @Security TokenAuth
// @Param commentID path string true "Comment ID" format(uuid)
// @Success 200 {object} models.Comment
// @Failure 404 {object} ErrorResponse
// @Router /comments/{commentID} [get]
func (h commentHandler) getComment() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuidParam(r, "commentID", "comment")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		comment, err := h.comments.Get(r.Context(), id)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, comment)
	}
}

// updateComment edits the text of a comment. Author or blog admin only.
// @Summary Update comment
// @Tags Comments
// @Accept json
// @Produce json
// @Security TokenAuth
// @Param commentID path string true "Comment ID" format(uuid)
// @Param body body CommentRequest true "Comment"
// @Success 200 {object} models.Comment
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /comments/{commentID} [put]
// @Router /comments/{commentID} [patch]
func (h commentHandler) updateComment() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuidParam(r, "commentID", "comment")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		var in CommentRequest
		if err := decodeJSON(w, r, &in); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		comment, err := h.comments.Update(r.Context(), ctxGetActor(r.Context()), id, in.Content)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, comment)
	}
}

// deleteComment removes a comment. Author or blog admin only.
// @Summary Delete comment
// @Tags Comments
// @Security TokenAuth
// @Param commentID path string true "Comment ID" format(uuid)
// @Success 204
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /comments/{commentID} [delete]
func (h commentHandler) deleteComment() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuidParam(r, "commentID", "comment")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		if err := h.comments.Delete(r.Context(), ctxGetActor(r.Context()), id); err != nil {
			h.responder.WriteError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// approveComment makes a comment public. Blog admins only.
// @Summary Approve comment
// @Tags Comments
// @Produce json
// @Security TokenAuth
// @Param commentID path string true "Comment ID" format(uuid)
// @Success 200 {object} StatusResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /comments/{commentID}/approve [patch]
func (h commentHandler) approveComment() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuidParam(r, "commentID", "comment")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		if _, err := h.comments.Approve(r.Context(), ctxGetActor(r.Context()), id); err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, StatusResponse{Status: "comment approved"})
	}
}
