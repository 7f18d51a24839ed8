package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/evacurves/storefront-backend-go/apperror"
	"github.com/evacurves/storefront-backend-go/models"
	"github.com/evacurves/storefront-backend-go/repository"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// SearchLimit caps GET /products/search.
const SearchLimit = 12

type ProductInput struct {
	Name        string
	Description string
	Price       models.Money
	Stock       int
	Images      []string
	Category    models.CategoryRef
	Colors      []models.Color
	Sizes       []models.Size
	IsNew       bool
	IsFeatured  bool
}

// ProductPatch holds the fields of a partial update; nil means unchanged.
type ProductPatch struct {
	Name        *string
	Description *string
	Price       *models.Money
	Stock       *int
	Images      *[]string
	Category    *models.CategoryRef
	Colors      *[]models.Color
	Sizes       *[]models.Size
	IsNew       *bool
	IsFeatured  *bool
}

type CatalogService struct {
	products   repository.Products
	categories repository.Categories
	reviews    repository.Reviews
	tx         repository.Transactor
	reviewer   *ReviewService
	log        *zap.Logger
}

func NewCatalogService(store *repository.Store, reviews *ReviewService, log *zap.Logger) *CatalogService {
	return &CatalogService{
		products:   store.Products,
		categories: store.Categories,
		reviews:    store.Reviews,
		tx:         store.Tx,
		reviewer:   reviews,
		log:        log,
	}
}

// List returns the catalog in storefront order, optionally filtered by a
// case-insensitive match on name or description.
func (s *CatalogService) List(ctx context.Context, search string) ([]models.Product, error) {
	products, err := s.products.List(ctx, repository.ProductFilter{Search: strings.TrimSpace(search)})
	if err != nil {
		s.log.Error("Failed to fetch products", zap.Error(err))
		return nil, apperror.Internal(err, "Failed to fetch products")
	}
	if err := s.attachCategories(ctx, products); err != nil {
		return nil, err
	}
	return products, nil
}

// Search returns at most SearchLimit matches, newest first.
func (s *CatalogService) Search(ctx context.Context, query string) ([]models.Product, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []models.Product{}, nil
	}
	products, err := s.products.List(ctx, repository.ProductFilter{Search: query, Limit: SearchLimit, Newest: true})
	if err != nil {
		s.log.Error("Failed to search products", zap.String("query", query), zap.Error(err))
		return nil, apperror.Internal(err, "Failed to search products")
	}
	if err := s.attachCategories(ctx, products); err != nil {
		return nil, err
	}
	return products, nil
}

// Get returns a product with its category, related products and reviews
// populated.
func (s *CatalogService) Get(ctx context.Context, id primitive.ObjectID) (*models.Product, error) {
	p, err := s.products.Get(ctx, id)
	if err != nil {
		return nil, storeErr(err, "Product", "Failed to fetch product")
	}

	single := []models.Product{*p}
	if err := s.attachCategories(ctx, single); err != nil {
		return nil, err
	}
	p = &single[0]

	p.RelatedProducts = []models.Product{}
	if len(p.RelatedProductIDs) > 0 {
		related, err := s.products.GetMany(ctx, p.RelatedProductIDs)
		if err != nil {
			return nil, apperror.Internal(err, "Failed to fetch product")
		}
		if err := s.attachCategories(ctx, related); err != nil {
			return nil, err
		}
		p.RelatedProducts = related
	}

	reviews, err := s.reviewer.ListForProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	p.Reviews = reviews
	return p, nil
}

func (s *CatalogService) Create(ctx context.Context, in ProductInput) (*models.Product, error) {
	now := time.Now()
	p := &models.Product{
		ID:          primitive.NewObjectID(),
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
		Price:       in.Price,
		Stock:       in.Stock,
		Images:      nonNil(in.Images),
		CategoryID:  in.Category.Ptr(),
		Colors:      nonNil(in.Colors),
		Sizes:       nonNil(in.Sizes),
		IsNew:       in.IsNew,
		IsFeatured:  in.IsFeatured,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.checkProduct(ctx, p); err != nil {
		return nil, err
	}

	if p.IsFeatured {
		n, err := s.products.CountFeatured(ctx)
		if err != nil {
			return nil, apperror.Internal(err, "Failed to create product")
		}
		p.Order = int(n)
	}

	if err := s.products.Create(ctx, p); err != nil {
		s.log.Error("Failed to create product", zap.Error(err))
		return nil, apperror.Internal(err, "Failed to create product")
	}
	s.log.Info("Product created", zap.String("product_id", p.ID.Hex()), zap.String("name", p.Name))
	return s.Get(ctx, p.ID)
}

// Update validates the patched product and writes only the patched fields,
// leaving stock taken by concurrent orders alone.
func (s *CatalogService) Update(ctx context.Context, id primitive.ObjectID, patch ProductPatch) (*models.Product, error) {
	p, err := s.products.Get(ctx, id)
	if err != nil {
		return nil, storeErr(err, "Product", "Failed to update product")
	}
	wasFeatured := p.IsFeatured

	var u repository.ProductUpdate
	if patch.Name != nil {
		p.Name = strings.TrimSpace(*patch.Name)
		u.Name = &p.Name
	}
	if patch.Description != nil {
		p.Description = *patch.Description
		u.Description = &p.Description
	}
	if patch.Price != nil {
		p.Price = *patch.Price
		u.Price = &p.Price
	}
	if patch.Stock != nil {
		p.Stock = *patch.Stock
		u.Stock = &p.Stock
	}
	if patch.Images != nil {
		p.Images = nonNil(*patch.Images)
		u.Images = &p.Images
	}
	if patch.Category != nil {
		p.CategoryID = patch.Category.Ptr()
		u.SetCategory, u.CategoryID = true, p.CategoryID
	}
	if patch.Colors != nil {
		p.Colors = nonNil(*patch.Colors)
		u.Colors = &p.Colors
	}
	if patch.Sizes != nil {
		p.Sizes = nonNil(*patch.Sizes)
		u.Sizes = &p.Sizes
	}
	if patch.IsNew != nil {
		p.IsNew = *patch.IsNew
		u.IsNew = &p.IsNew
	}
	if patch.IsFeatured != nil {
		p.IsFeatured = *patch.IsFeatured
		u.IsFeatured = &p.IsFeatured
	}
	if err := s.checkProduct(ctx, p); err != nil {
		return nil, err
	}

	if p.IsFeatured && !wasFeatured {
		n, err := s.products.CountFeatured(ctx)
		if err != nil {
			return nil, apperror.Internal(err, "Failed to update product")
		}
		p.Order = int(n)
		u.Order = &p.Order
	}

	if err := s.products.Update(ctx, id, u); err != nil {
		s.log.Error("Failed to update product", zap.String("product_id", id.Hex()), zap.Error(err))
		return nil, storeErr(err, "Product", "Failed to update product")
	}
	return s.Get(ctx, id)
}

// Delete removes the product and its reviews. Orders keep their snapshots.
func (s *CatalogService) Delete(ctx context.Context, id primitive.ObjectID) error {
	err := s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		if err := s.products.Delete(ctx, id); err != nil {
			return storeErr(err, "Product", "Failed to delete product")
		}
		if err := s.reviews.DeleteByProduct(ctx, id); err != nil {
			return apperror.Internal(err, "Failed to delete product")
		}
		return nil
	})
	if err != nil {
		if apperror.IsKind(err, apperror.KindInternal) {
			s.log.Error("Failed to delete product", zap.String("product_id", id.Hex()), zap.Error(err))
		}
		return err
	}
	s.log.Info("Product deleted", zap.String("product_id", id.Hex()))
	return nil
}

// SetRelated replaces the related products list. The product itself and
// repeated ids are dropped; unknown ids are rejected.
func (s *CatalogService) SetRelated(ctx context.Context, id primitive.ObjectID, related []primitive.ObjectID) (*models.Product, error) {
	if _, err := s.products.Get(ctx, id); err != nil {
		return nil, storeErr(err, "Product", "Failed to update related products")
	}

	ids := uniqueIDs(len(related), func(i int) primitive.ObjectID { return related[i] })
	filtered := ids[:0]
	for _, rid := range ids {
		if rid != id {
			filtered = append(filtered, rid)
		}
	}

	found, err := s.products.GetMany(ctx, filtered)
	if err != nil {
		return nil, apperror.Internal(err, "Failed to update related products")
	}
	if len(found) != len(filtered) {
		return nil, apperror.Validation("One or more related products do not exist")
	}

	if err := s.products.SetRelated(ctx, id, filtered); err != nil {
		return nil, storeErr(err, "Product", "Failed to update related products")
	}
	return s.Get(ctx, id)
}

// ReorderFeatured applies all positions or none.
func (s *CatalogService) ReorderFeatured(ctx context.Context, entries []models.FeaturedOrder) error {
	if len(entries) == 0 {
		return apperror.Validation("Products array is required")
	}
	return s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		for _, e := range entries {
			if e.Order < 0 {
				return apperror.Validation("Order must not be negative")
			}
			if err := s.products.SetOrder(ctx, e.ID, e.Order); err != nil {
				return storeErr(err, "Product "+e.ID.Hex(), "Failed to reorder featured products")
			}
		}
		return nil
	})
}

func (s *CatalogService) checkProduct(ctx context.Context, p *models.Product) error {
	if p.Name == "" {
		return apperror.Validation("name is required")
	}
	if p.Price.IsNegative() {
		return apperror.Validation("price must not be negative")
	}
	if p.Stock < 0 {
		return apperror.Validation("stock must not be negative")
	}
	seen := map[string]bool{}
	for _, sz := range p.Sizes {
		if strings.TrimSpace(sz.Name) == "" {
			return apperror.Validation("sizes.name is required")
		}
		if sz.Stock < 0 {
			return apperror.Validation("stock of size %s must not be negative", sz.Name)
		}
		if seen[sz.Name] {
			return apperror.Validation("size %s is listed twice", sz.Name)
		}
		seen[sz.Name] = true
	}
	if p.CategoryID != nil {
		if _, err := s.categories.Get(ctx, *p.CategoryID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return apperror.Validation("Category %s does not exist", p.CategoryID.Hex())
			}
			return apperror.Internal(err, "Failed to check category")
		}
	}
	return nil
}

func (s *CatalogService) attachCategories(ctx context.Context, products []models.Product) error {
	var ids []primitive.ObjectID
	for _, p := range products {
		if p.CategoryID != nil {
			ids = append(ids, *p.CategoryID)
		}
	}
	if len(ids) == 0 {
		return nil
	}
	ids = uniqueIDs(len(ids), func(i int) primitive.ObjectID { return ids[i] })

	categories, err := s.categories.GetMany(ctx, ids)
	if err != nil {
		return apperror.Internal(err, "Failed to fetch categories")
	}
	byID := make(map[primitive.ObjectID]models.Category, len(categories))
	for _, c := range categories {
		byID[c.ID] = c
	}
	for i := range products {
		if products[i].CategoryID == nil {
			continue
		}
		if c, ok := byID[*products[i].CategoryID]; ok {
			products[i].Category = &c
		}
	}
	return nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
