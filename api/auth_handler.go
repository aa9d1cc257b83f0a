package api

import (
	"net/http"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/rpupo63/blogd/services"
)

type authHandler struct {
	responder Responder
	logger    zerolog.Logger
	auth      *services.AuthService
}

func newAuthHandler(auth *services.AuthService) authHandler {
	logger := log.With().Str("handlerName", "authHandler").Logger()

	return authHandler{
		responder: NewResponder(logger),
		logger:    logger,
		auth:      auth,
	}
}

// register creates an account and returns its token
// @Summary Register
// @Description Creates a user with its profile and issues an auth token
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body services.RegisterInput true "Account data"
// @Success 201 {object} RegisterResponse
// @Failure 400 {object} ErrorResponse "Bad Request - Missing or invalid field"
// @Failure 409 {object} ErrorResponse "Conflict - Username taken"
// @Router /auth/register [post]
func (h authHandler) register() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in services.RegisterInput
		if err := decodeJSON(w, r, &in); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		user, token, err := h.auth.Register(r.Context(), in)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteJSONStatus(w, http.StatusCreated, RegisterResponse{
			User:    newUserResponse(user),
			Token:   token.Key,
			Message: "User registered successfully",
		})
	}
}

// login exchanges credentials for the user's token
// @Summary Login
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body LoginRequest true "Credentials"
// @Success 200 {object} LoginResponse
// @Failure 400 {object} ErrorResponse "Bad Request - Missing username or password"
// @Failure 401 {object} ErrorResponse "Unauthorized - Invalid credentials"
// @Router /auth/login [post]
func (h authHandler) login() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in LoginRequest
		if err := decodeJSON(w, r, &in); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		user, token, isAdmin, err := h.auth.Login(r.Context(), in.Username, in.Password)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteJSON(w, LoginResponse{
			Token:       token.Key,
			User:        newUserResponse(user),
			IsBlogAdmin: isAdmin,
			Message:     "Login successful",
		})
	}
}

// logout deletes the caller's token
// @Summary Logout
// @Tags Auth
// @Produce json
// @Security TokenAuth
// @Success 200 {object} MessageResponse
// @Failure 401 {object} ErrorResponse
// @Router /auth/logout [post]
func (h authHandler) logout() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := h.auth.Logout(r.Context(), ctxGetActor(r.Context()), ctxGetToken(r.Context())); err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteMessage(w, http.StatusOK, "Logged out successfully")
	}
}

// currentUser describes the caller
// @Summary Current user
// @Tags Auth
// @Produce json
// @Security TokenAuth
// @Success 200 {object} CurrentUserResponse
// @Failure 401 {object} ErrorResponse
// @Router /auth/user [get]
func (h authHandler) currentUser() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, isAdmin, err := h.auth.CurrentUser(ctxGetActor(r.Context()))
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, CurrentUserResponse{User: newUserResponse(user), IsBlogAdmin: isAdmin})
	}
}
