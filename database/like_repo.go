package database

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/rpupo63/blogd/models"
)

type LikeRepo struct {
	db *gorm.DB
}

func NewLikeRepo(db *gorm.DB) *LikeRepo {
	return &LikeRepo{db}
}

// Add inserts the like unless the pair already exists. created is false when
// the unique (post_id, user_id) index swallowed the insert.
func (r *LikeRepo) Add(ctx context.Context, like *models.Like) (created bool, err error) {
	res := r.db.WithContext(ctx).Omit(clause.Associations).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "post_id"}, {Name: "user_id"}},
		DoNothing: true,
	}).Create(like)
	return res.RowsAffected > 0, res.Error
}

// Delete removes the like of userID on postID and reports how many rows went away.
func (r *LikeRepo) Delete(ctx context.Context, postID, userID uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("post_id = ? AND user_id = ?", postID, userID).
		Delete(&models.Like{})
	return res.RowsAffected, res.Error
}

// CountByUser counts the posts userID has liked.
func (r *LikeRepo) CountByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Like{}).Where("user_id = ?", userID).Count(&count).Error
	return count, err
}
