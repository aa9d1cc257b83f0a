package api

import (
	"github.com/rpupo63/blogd/models"
)

// routeHandlers contains all the handlers for different route types
type routeHandlers struct {
	authHandler      authHandler
	categoryHandler  categoryHandler
	blogPostHandler  blogPostHandler
	commentHandler   commentHandler
	likeHandler      likeHandler
	dashboardHandler dashboardHandler
	healthHandler    healthHandler
	metricsHandler   metricsHandler
}

// ErrorResponse represents an error response from the API
// @Description Error response structure
type ErrorResponse struct {
	Error   string `json:"error" example:"Internal Server Error"`
	Status  string `json:"status" example:"error"`
	Field   string `json:"field,omitempty" example:"title"`
	Details string `json:"details,omitempty" example:"Additional error details"`
	Cause   string `json:"cause,omitempty" example:"Underlying error cause"`
}

// MessageResponse is returned by endpoints that have nothing else to report
type MessageResponse struct {
	Message string `json:"message" example:"Logged out successfully"`
}

// UserResponse is the public view of an account
type UserResponse struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	IsStaff   bool   `json:"is_staff"`
}

func newUserResponse(u *models.User) UserResponse {
	return UserResponse{
		ID:        u.ID.String(),
		Username:  u.Username,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Email:     u.Email,
		IsStaff:   u.IsStaff,
	}
}

// RegisterResponse is returned after a successful registration
type RegisterResponse struct {
	User    UserResponse `json:"user"`
	Token   string       `json:"token" example:"9944b09199c62bcf9418ad846dd0e4bbdfc6ee4b"`
	Message string       `json:"message" example:"User registered successfully"`
}

// LoginRequest holds the credentials of a login attempt
type LoginRequest struct {
	Username string `json:"username" example:"alice"`
	Password string `json:"password" example:"s3cret"`
}

// LoginResponse is returned after a successful login
type LoginResponse struct {
	Token       string       `json:"token"`
	User        UserResponse `json:"user"`
	IsBlogAdmin bool         `json:"is_blog_admin"`
	Message     string       `json:"message" example:"Login successful"`
}

// CurrentUserResponse describes the authenticated caller
type CurrentUserResponse struct {
	User        UserResponse `json:"user"`
	IsBlogAdmin bool         `json:"is_blog_admin"`
}

// CommentRequest is the body used to create or edit a comment
type CommentRequest struct {
	Content string `json:"content" example:"Great post!"`
}

// StatusResponse is returned by the approve endpoint
type StatusResponse struct {
	Status string `json:"status" example:"comment approved"`
}

// PingResponse reports liveness
type PingResponse struct {
	Status   string `json:"status" example:"ok"`
	Database string `json:"database" example:"ok"`
	Uptime   string `json:"uptime" example:"1h2m3s"`
}
