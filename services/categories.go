package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/evacurves/storefront-backend-go/apperror"
	"github.com/evacurves/storefront-backend-go/models"
	"github.com/evacurves/storefront-backend-go/repository"
	"github.com/evacurves/storefront-backend-go/utils"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type CategoryInput struct {
	Name        string
	Slug        string
	Description string
	Image       string
	IsActive    *bool
	Order       int
}

type CategoryPatch struct {
	Name        *string
	Slug        *string
	Description *string
	Image       *string
	IsActive    *bool
	Order       *int
}

type CategoryService struct {
	categories repository.Categories
	tx         repository.Transactor
	log        *zap.Logger
}

func NewCategoryService(store *repository.Store, log *zap.Logger) *CategoryService {
	return &CategoryService{categories: store.Categories, tx: store.Tx, log: log}
}

func (s *CategoryService) List(ctx context.Context) ([]models.Category, error) {
	categories, err := s.categories.List(ctx)
	if err != nil {
		s.log.Error("Failed to fetch categories", zap.Error(err))
		return nil, apperror.Internal(err, "Failed to fetch categories")
	}
	return categories, nil
}

func (s *CategoryService) Get(ctx context.Context, id primitive.ObjectID) (*models.Category, error) {
	c, err := s.categories.Get(ctx, id)
	if err != nil {
		return nil, storeErr(err, "Category", "Failed to fetch category")
	}
	return c, nil
}

// Create derives the slug from the name when none is given. New
// categories are active unless stated otherwise.
func (s *CategoryService) Create(ctx context.Context, in CategoryInput) (*models.Category, error) {
	now := time.Now()
	c := &models.Category{
		ID:          primitive.NewObjectID(),
		Name:        strings.TrimSpace(in.Name),
		Slug:        in.Slug,
		Description: in.Description,
		Image:       in.Image,
		IsActive:    true,
		Order:       in.Order,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if in.IsActive != nil {
		c.IsActive = *in.IsActive
	}
	if err := normalizeCategory(c); err != nil {
		return nil, err
	}

	if err := s.categories.Create(ctx, c); err != nil {
		return nil, s.writeErr(err, c, "Failed to create category")
	}
	s.log.Info("Category created", zap.String("category_id", c.ID.Hex()), zap.String("slug", c.Slug))
	return c, nil
}

func (s *CategoryService) Update(ctx context.Context, id primitive.ObjectID, patch CategoryPatch) (*models.Category, error) {
	c, err := s.categories.Get(ctx, id)
	if err != nil {
		return nil, storeErr(err, "Category", "Failed to update category")
	}

	if patch.Name != nil {
		c.Name = strings.TrimSpace(*patch.Name)
		if patch.Slug == nil {
			c.Slug = ""
		}
	}
	if patch.Slug != nil {
		c.Slug = *patch.Slug
	}
	if patch.Description != nil {
		c.Description = *patch.Description
	}
	if patch.Image != nil {
		c.Image = *patch.Image
	}
	if patch.IsActive != nil {
		c.IsActive = *patch.IsActive
	}
	if patch.Order != nil {
		c.Order = *patch.Order
	}
	if err := normalizeCategory(c); err != nil {
		return nil, err
	}
	c.UpdatedAt = time.Now()

	if err := s.categories.Update(ctx, c); err != nil {
		return nil, s.writeErr(err, c, "Failed to update category")
	}
	return c, nil
}

func (s *CategoryService) Delete(ctx context.Context, id primitive.ObjectID) error {
	if err := s.categories.Delete(ctx, id); err != nil {
		return storeErr(err, "Category", "Failed to delete category")
	}
	s.log.Info("Category deleted", zap.String("category_id", id.Hex()))
	return nil
}

// Reorder applies all positions or none.
func (s *CategoryService) Reorder(ctx context.Context, entries []models.CategoryOrder) error {
	if len(entries) == 0 {
		return apperror.Validation("Categories array is required")
	}
	return s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		for _, e := range entries {
			if e.Order < 0 {
				return apperror.Validation("Order must not be negative")
			}
			if err := s.categories.SetOrder(ctx, e.ID, e.Order); err != nil {
				return storeErr(err, "Category "+e.ID.Hex(), "Failed to reorder categories")
			}
		}
		return nil
	})
}

func (s *CategoryService) writeErr(err error, c *models.Category, msg string) error {
	switch {
	case errors.Is(err, repository.ErrDuplicate):
		return apperror.Conflict("A category with slug %q already exists", c.Slug)
	case errors.Is(err, repository.ErrNotFound):
		return apperror.NotFound("Category not found")
	}
	s.log.Error(msg, zap.String("category_id", c.ID.Hex()), zap.Error(err))
	return apperror.Internal(err, msg)
}

func normalizeCategory(c *models.Category) error {
	if c.Name == "" {
		return apperror.Validation("name is required")
	}
	if c.Order < 0 {
		return apperror.Validation("order must not be negative")
	}
	c.Slug = utils.Slugify(c.Slug)
	if c.Slug == "" {
		c.Slug = utils.Slugify(c.Name)
	}
	if c.Slug == "" {
		return apperror.Validation("slug could not be derived from name %q", c.Name)
	}
	return nil
}
