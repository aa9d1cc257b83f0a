package services

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/rpupo63/blogd/database"
	"github.com/rpupo63/blogd/errs"
	"github.com/rpupo63/blogd/models"
	"github.com/rpupo63/blogd/policy"
	"github.com/rpupo63/blogd/validate"
)

// CategoryInput is used for create and partial update. Nil fields are left untouched on update.
type CategoryInput struct {
	Name        *string `json:"name" validate:"omitempty,notblank,max=100"`
	Description *string `json:"description"`
}

type CategoryService struct {
	db database.Database
}

// List returns every category ordered by name.
func (s *CategoryService) List(ctx context.Context) ([]*models.BlogCategory, error) {
	categories, err := s.db.BlogCategoryRepo().FindAll(ctx)
	if err != nil {
		return nil, errs.NewDatabaseError("list", "categories", err)
	}
	return categories, nil
}

func (s *CategoryService) Get(ctx context.Context, id uuid.UUID) (*models.BlogCategory, error) {
	category, err := s.db.BlogCategoryRepo().FindByID(ctx, id)
	if err != nil {
		return nil, errs.NewDatabaseError("find", "category", err)
	}
	return category, nil
}

func (s *CategoryService) Create(ctx context.Context, actor *models.User, in CategoryInput) (*models.BlogCategory, error) {
	if err := policy.CanCreateCategory(actor).Err(); err != nil {
		return nil, err
	}
	if in.Name == nil {
		return nil, errs.NewMissingRequiredFieldError("name")
	}
	if err := validate.Struct(in); err != nil {
		return nil, err
	}

	category := &models.BlogCategory{
		Name:        strings.TrimSpace(*in.Name),
		Description: in.Description,
	}
	if err := s.db.BlogCategoryRepo().Add(ctx, category); err != nil {
		return nil, errs.NewDatabaseError("create", "category", err)
	}
	return category, nil
}

func (s *CategoryService) Update(ctx context.Context, actor *models.User, id uuid.UUID, in CategoryInput) (*models.BlogCategory, error) {
	if err := policy.CanMutateCategory(actor).Err(); err != nil {
		return nil, err
	}
	if err := validate.Struct(in); err != nil {
		return nil, err
	}

	category, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		category.Name = strings.TrimSpace(*in.Name)
	}
	if in.Description != nil {
		category.Description = in.Description
	}

	if err := s.db.BlogCategoryRepo().Update(ctx, category); err != nil {
		return nil, errs.NewDatabaseError("update", "category", err)
	}
	return category, nil
}

// Delete removes the category. Its posts stay, uncategorised.
func (s *CategoryService) Delete(ctx context.Context, actor *models.User, id uuid.UUID) error {
	if err := policy.CanMutateCategory(actor).Err(); err != nil {
		return err
	}

	err := s.db.Transaction(ctx, func(tx database.Database) error {
		rows, err := tx.BlogCategoryRepo().Delete(ctx, id)
		if err != nil {
			return err
		}
		if rows == 0 {
			return errs.NewNotFound("category")
		}
		return nil
	})
	if err != nil {
		return errs.NewDatabaseError("delete", "category", err)
	}
	return nil
}
