package database

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/plugin/dbresolver"

	"github.com/rpupo63/blogd/models"
)

type BlogCategoryRepo struct {
	db *gorm.DB
}

func NewBlogCategoryRepo(db *gorm.DB) *BlogCategoryRepo {
	return &BlogCategoryRepo{db}
}

// FindAll returns every category ordered by name
func (r *BlogCategoryRepo) FindAll(ctx context.Context) ([]*models.BlogCategory, error) {
	var categories []*models.BlogCategory
	err := r.db.WithContext(ctx).Order("name ASC").Find(&categories).Error
	return categories, err
}

func (r *BlogCategoryRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.BlogCategory, error) {
	var category models.BlogCategory
	err := r.db.WithContext(ctx).Clauses(dbresolver.Write).First(&category, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *BlogCategoryRepo) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Clauses(dbresolver.Write).Model(&models.BlogCategory{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

func (r *BlogCategoryRepo) Add(ctx context.Context, category *models.BlogCategory) error {
	return r.db.WithContext(ctx).Create(category).Error
}

func (r *BlogCategoryRepo) Update(ctx context.Context, category *models.BlogCategory) error {
	return r.db.WithContext(ctx).Save(category).Error
}

// Delete removes the category. Posts that referenced it keep existing
// without a category. Callers run it inside a transaction.
func (r *BlogCategoryRepo) Delete(ctx context.Context, id uuid.UUID) (int64, error) {
	db := r.db.WithContext(ctx)
	err := db.Model(&models.BlogPost{}).
		Where("category_id = ?", id).
		UpdateColumn("category_id", nil).Error
	if err != nil {
		return 0, err
	}
	res := db.Delete(&models.BlogCategory{}, "id = ?", id)
	return res.RowsAffected, res.Error
}
