package api

import (
	"net/http"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/rpupo63/blogd/services"
)

type categoryHandler struct {
	responder  Responder
	logger     zerolog.Logger
	categories *services.CategoryService
}

func newCategoryHandler(categories *services.CategoryService) categoryHandler {
	logger := log.With().Str("handlerName", "categoryHandler").Logger()

	return categoryHandler{
		responder:  NewResponder(logger),
		logger:     logger,
		categories: categories,
	}
}

// listCategories returns every category
// @Summary List categories
// @Tags Categories
// @Produce json
// @Security TokenAuth
// @Success 200 {array} models.BlogCategory
// @Failure 401 {object} ErrorResponse
// @Router /categories [get]
func (h categoryHandler) listCategories() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		categories, err := h.categories.List(r.Context())
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, categories)
	}
}

// getCategory returns one category
// @Summary Get category
// @Tags Categories
// @Produce json
// @Security TokenAuth
// @Param categoryID path string true "Category ID" format(uuid)
// @Success 200 {object} models.BlogCategory
// @Failure 404 {object} ErrorResponse
// @Router /categories/{categoryID} [get]
func (h categoryHandler) getCategory() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuidParam(r, "categoryID", "category")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		category, err := h.categories.Get(r.Context(), id)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, category)
	}
}

// createCategory creates a category. Blog admins only.
// @Summary Create category
// @Tags Categories
// @Accept json
// @Produce json
// @Security TokenAuth
// @Param body body services.CategoryInput true "Category"
// @Success 201 {object} models.BlogCategory
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Router /categories [post]
func (h categoryHandler) createCategory() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in services.CategoryInput
		if err := decodeJSON(w, r, &in); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		category, err := h.categories.Create(r.Context(), ctxGetActor(r.Context()), in)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSONStatus(w, http.StatusCreated, category)
	}
}

// updateCategory changes the provided fields of a category. Blog admins only.
// @Summary Update category
// @Tags Categories
// @Accept json
// @Produce json
// @Security TokenAuth
// @Param categoryID path string true "Category ID" format(uuid)
// @Param body body services.CategoryInput true "Fields to change"
// @Success 200 {object} models.BlogCategory
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /categories/{categoryID} [put]
// @Router /categories/{categoryID} [patch]
func (h categoryHandler) updateCategory() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuidParam(r, "categoryID", "category")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		var in services.CategoryInput
		if err := decodeJSON(w, r, &in); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		category, err := h.categories.Update(r.Context(), ctxGetActor(r.Context()), id, in)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, category)
	}
}

// deleteCategory removes a category. Its posts become uncategorised.
// @Summary Delete category
// @Tags Categories
// @Security TokenAuth
// @Param categoryID path string true "Category ID" format(uuid)
// @Success 204
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /categories/{categoryID} [delete]
func (h categoryHandler) deleteCategory() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuidParam(r, "categoryID", "category")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		if err := h.categories.Delete(r.Context(), ctxGetActor(r.Context()), id); err != nil {
			h.responder.WriteError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
