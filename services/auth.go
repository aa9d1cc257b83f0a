package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/rpupo63/blogd/database"
	"github.com/rpupo63/blogd/errs"
	"github.com/rpupo63/blogd/models"
	"github.com/rpupo63/blogd/validate"
)

// tokenKeyBytes yields the 40 hex characters of a token key.
const tokenKeyBytes = 20

type RegisterInput struct {
	Username    string `json:"username" validate:"notblank,max=150"`
	Password    string `json:"password" validate:"notblank,max=72"`
	Email       string `json:"email" validate:"notblank,email,max=254"`
	FirstName   string `json:"first_name" validate:"notblank,max=150"`
	LastName    string `json:"last_name" validate:"notblank,max=150"`
	IsBlogAdmin bool   `json:"is_blog_admin"`
}

type AuthService struct {
	db       database.Database
	tokenTTL time.Duration
	now      func() time.Time
}

// Register creates the user and its profile atomically, then issues a token.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*models.User, *models.Token, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)
	if err := validate.Struct(in); err != nil {
		return nil, nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, nil, errs.NewInternalErrorWithCause("Failed to hash password", err)
	}

	user := &models.User{
		Username:     in.Username,
		Email:        in.Email,
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
		PasswordHash: string(hash),
		Profile:      &models.UserProfile{IsBlogAdmin: in.IsBlogAdmin},
	}

	err = s.db.Transaction(ctx, func(tx database.Database) error {
		exists, err := tx.UserRepo().ExistsByUsername(ctx, user.Username)
		if err != nil {
			return err
		}
		if exists {
			return errs.NewConflictError("A user with that username already exists")
		}
		return tx.UserRepo().Create(ctx, user)
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, nil, errs.NewConflictError("A user with that username already exists")
		}
		return nil, nil, errs.NewDatabaseError("register", "user", err)
	}

	token, err := s.issueToken(ctx, user)
	if err != nil {
		return nil, nil, err
	}

	log.Info().Str("username", user.Username).Bool("isBlogAdmin", in.IsBlogAdmin).Msg("User registered")
	return user, token, nil
}

// Login checks the credentials and returns the user's token, creating it if needed.
func (s *AuthService) Login(ctx context.Context, username, password string) (*models.User, *models.Token, bool, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, nil, false, errs.NewValidationError("credentials", "Both username and password are required")
	}

	user, err := s.db.UserRepo().FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, false, errs.NewInvalidCredentialsError()
		}
		return nil, nil, false, errs.NewDatabaseError("find", "user", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, nil, false, errs.NewInvalidCredentialsError()
	}

	token, err := s.issueToken(ctx, user)
	if err != nil {
		return nil, nil, false, err
	}
	return user, token, user.IsBlogAdmin(), nil
}

// Logout deletes the caller's token. Without a caller it does nothing.
func (s *AuthService) Logout(ctx context.Context, actor *models.User, key string) error {
	if actor == nil {
		return nil
	}
	if _, err := s.db.TokenRepo().DeleteByKey(ctx, key); err != nil {
		return errs.NewDatabaseError("delete", "token", err)
	}
	return nil
}

// Resolve returns the owner of key, profile included.
func (s *AuthService) Resolve(ctx context.Context, key string) (*models.User, error) {
	if key == "" {
		return nil, errs.NewMissingTokenError()
	}

	token, err := s.db.TokenRepo().FindByKey(ctx, key)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewInvalidTokenError()
		}
		return nil, errs.NewDatabaseError("resolve", "token", err)
	}
	if token.User == nil {
		return nil, errs.NewInvalidTokenError()
	}

	if token.Expired(s.tokenTTL, s.now()) {
		if _, err := s.db.TokenRepo().DeleteByKey(ctx, key); err != nil {
			log.Warn().Err(err).Msg("Failed to delete expired token")
		}
		return nil, errs.NewExpiredTokenError()
	}
	return token.User, nil
}

// CurrentUser reports who the actor is and whether they administer the blog.
func (s *AuthService) CurrentUser(actor *models.User) (*models.User, bool, error) {
	if actor == nil {
		return nil, false, errs.Unauthorized
	}
	return actor, actor.IsBlogAdmin(), nil
}

// PurgeExpired deletes every expired token and reports how many were removed.
// It does nothing when tokens never expire.
func (s *AuthService) PurgeExpired(ctx context.Context) (int64, error) {
	if s.tokenTTL <= 0 {
		return 0, nil
	}

	removed, err := s.db.TokenRepo().DeleteIssuedBefore(ctx, s.now().Add(-s.tokenTTL))
	if err != nil {
		return 0, errs.NewDatabaseError("purge", "tokens", err)
	}
	if removed > 0 {
		log.Info().Int64("removed", removed).Msg("Purged expired tokens")
	}
	return removed, nil
}

// issueToken returns the user's live token or stores a new one. An expired
// token is replaced in the same transaction.
func (s *AuthService) issueToken(ctx context.Context, user *models.User) (*models.Token, error) {
	key, err := newTokenKey()
	if err != nil {
		return nil, errs.NewInternalErrorWithCause("Failed to generate token", err)
	}

	var token *models.Token
	err = s.db.Transaction(ctx, func(tx database.Database) error {
		if s.tokenTTL > 0 {
			existing, err := tx.TokenRepo().FindByUser(ctx, user.ID)
			switch {
			case err == nil && existing.Expired(s.tokenTTL, s.now()):
				if err := tx.TokenRepo().DeleteByUser(ctx, user.ID); err != nil {
					return err
				}
			case err != nil && !errors.Is(err, gorm.ErrRecordNotFound):
				return err
			}
		}

		token, err = tx.TokenRepo().GetOrCreate(ctx, &models.Token{Key: key, UserID: user.ID})
		return err
	})
	if err != nil {
		return nil, errs.NewDatabaseError("issue", "token", err)
	}
	return token, nil
}

func newTokenKey() (string, error) {
	buf := make([]byte, tokenKeyBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
