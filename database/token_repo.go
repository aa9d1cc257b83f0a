package database

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/plugin/dbresolver"

	"github.com/rpupo63/blogd/models"
)

type TokenRepo struct {
	db *gorm.DB
}

func NewTokenRepo(db *gorm.DB) *TokenRepo {
	return &TokenRepo{db}
}

// GetOrCreate stores candidate unless the user already holds a token, then
// returns whichever token is on record. Concurrent logins converge on one row.
func (r *TokenRepo) GetOrCreate(ctx context.Context, candidate *models.Token) (*models.Token, error) {
	db := r.db.WithContext(ctx)
	err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoNothing: true,
	}).Create(candidate).Error
	if err != nil {
		return nil, err
	}

	var token models.Token
	if err := db.Where("user_id = ?", candidate.UserID).First(&token).Error; err != nil {
		return nil, err
	}
	return &token, nil
}

// FindByKey returns the token and its owner, profile included.
func (r *TokenRepo) FindByKey(ctx context.Context, key string) (*models.Token, error) {
	var token models.Token
	err := r.db.WithContext(ctx).Clauses(dbresolver.Write).Preload("User.Profile").Where(&models.Token{Key: key}).First(&token).Error
	if err != nil {
		return nil, err
	}
	return &token, nil
}

func (r *TokenRepo) FindByUser(ctx context.Context, userID uuid.UUID) (*models.Token, error) {
	var token models.Token
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&token).Error
	if err != nil {
		return nil, err
	}
	return &token, nil
}

func (r *TokenRepo) DeleteByKey(ctx context.Context, key string) (int64, error) {
	res := r.db.WithContext(ctx).Where(&models.Token{Key: key}).Delete(&models.Token{})
	return res.RowsAffected, res.Error
}

func (r *TokenRepo) DeleteByUser(ctx context.Context, userID uuid.UUID) error {
	return r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.Token{}).Error
}

// DeleteIssuedBefore removes every token created at or before cutoff.
func (r *TokenRepo) DeleteIssuedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Where("created_at <= ?", cutoff.UTC()).Delete(&models.Token{})
	return res.RowsAffected, res.Error
}
