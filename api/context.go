package api

import (
	"context"

	"github.com/rpupo63/blogd/models"
)

type keyType string

const (
	userKey  keyType = "user"
	tokenKey keyType = "token"
)

// ctxWithActor stores the authenticated user and the token it presented
func ctxWithActor(ctx context.Context, user *models.User, token string) context.Context {
	ctx = context.WithValue(ctx, userKey, user)
	return context.WithValue(ctx, tokenKey, token)
}

// ctxGetActor returns the authenticated user, or nil for anonymous requests
func ctxGetActor(ctx context.Context) *models.User {
	user, _ := ctx.Value(userKey).(*models.User)
	return user
}

// ctxGetToken returns the token key the request authenticated with
func ctxGetToken(ctx context.Context) string {
	token, _ := ctx.Value(tokenKey).(string)
	return token
}
