package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/evacurves/storefront-backend-go/models"
	"github.com/evacurves/storefront-backend-go/repository"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ProductRepository struct {
	s *Store
}

func (r *ProductRepository) List(_ context.Context, filter repository.ProductFilter) ([]models.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	needle := strings.ToLower(filter.Search)
	products := []models.Product{}
	for _, p := range r.s.products {
		if needle != "" &&
			!strings.Contains(strings.ToLower(p.Name), needle) &&
			!strings.Contains(strings.ToLower(p.Description), needle) {
			continue
		}
		products = append(products, cloneProduct(p))
	}

	sort.SliceStable(products, func(i, j int) bool {
		a, b := products[i], products[j]
		if !filter.Newest {
			if a.IsFeatured != b.IsFeatured {
				return a.IsFeatured
			}
			if a.Order != b.Order {
				return a.Order < b.Order
			}
		}
		return a.CreatedAt.After(b.CreatedAt)
	})

	if filter.Limit > 0 && int64(len(products)) > filter.Limit {
		products = products[:filter.Limit]
	}
	return products, nil
}

func (r *ProductRepository) Get(_ context.Context, id primitive.ObjectID) (*models.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	p, ok := r.s.products[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	p = cloneProduct(p)
	return &p, nil
}

func (r *ProductRepository) GetMany(_ context.Context, ids []primitive.ObjectID) ([]models.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	products := []models.Product{}
	for _, id := range ids {
		if p, ok := r.s.products[id]; ok {
			products = append(products, cloneProduct(p))
		}
	}
	return products, nil
}

func (r *ProductRepository) Create(ctx context.Context, p *models.Product) error {
	defer r.s.lock(ctx)()

	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	if _, ok := r.s.products[p.ID]; ok {
		return repository.ErrDuplicate
	}
	remember(ctx, r.s.products, p.ID)
	r.s.products[p.ID] = cloneProduct(*p)
	return nil
}

func (r *ProductRepository) Update(ctx context.Context, id primitive.ObjectID, u repository.ProductUpdate) error {
	return r.mutate(ctx, id, func(p *models.Product) error {
		if u.Name != nil {
			p.Name = *u.Name
		}
		if u.Description != nil {
			p.Description = *u.Description
		}
		if u.Price != nil {
			p.Price = *u.Price
		}
		if u.Stock != nil {
			p.Stock = *u.Stock
		}
		if u.Images != nil {
			p.Images = append([]string{}, *u.Images...)
		}
		if u.SetCategory {
			p.CategoryID = nil
			if u.CategoryID != nil {
				id := *u.CategoryID
				p.CategoryID = &id
			}
		}
		if u.Colors != nil {
			p.Colors = append([]models.Color{}, *u.Colors...)
		}
		if u.Sizes != nil {
			p.Sizes = append([]models.Size{}, *u.Sizes...)
		}
		if u.IsNew != nil {
			p.IsNew = *u.IsNew
		}
		if u.IsFeatured != nil {
			p.IsFeatured = *u.IsFeatured
		}
		if u.Order != nil {
			p.Order = *u.Order
		}
		return nil
	})
}

func (r *ProductRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	defer r.s.lock(ctx)()

	if _, ok := r.s.products[id]; !ok {
		return repository.ErrNotFound
	}
	remember(ctx, r.s.products, id)
	delete(r.s.products, id)
	return nil
}

func (r *ProductRepository) CountFeatured(_ context.Context) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var n int64
	for _, p := range r.s.products {
		if p.IsFeatured {
			n++
		}
	}
	return n, nil
}

func (r *ProductRepository) SetOrder(ctx context.Context, id primitive.ObjectID, order int) error {
	return r.mutate(ctx, id, func(p *models.Product) error {
		p.Order = order
		return nil
	})
}

func (r *ProductRepository) SetRelated(ctx context.Context, id primitive.ObjectID, related []primitive.ObjectID) error {
	return r.mutate(ctx, id, func(p *models.Product) error {
		p.RelatedProductIDs = append([]primitive.ObjectID{}, related...)
		return nil
	})
}

func (r *ProductRepository) SetRating(ctx context.Context, id primitive.ObjectID, rating float64, count int) error {
	return r.mutate(ctx, id, func(p *models.Product) error {
		p.Rating = rating
		p.ReviewCount = count
		return nil
	})
}

func (r *ProductRepository) DecrementStock(ctx context.Context, id primitive.ObjectID, size string, qty int) error {
	return r.mutate(ctx, id, func(p *models.Product) error {
		if p.Stock < qty {
			return repository.ErrInsufficientStock
		}
		sizeIdx := -1
		if size != "" {
			for i, s := range p.Sizes {
				if s.Name == size {
					sizeIdx = i
					break
				}
			}
			if sizeIdx < 0 || p.Sizes[sizeIdx].Stock < qty {
				return repository.ErrInsufficientStock
			}
		}

		p.Stock -= qty
		if sizeIdx >= 0 {
			p.Sizes[sizeIdx].Stock -= qty
		}
		return nil
	})
}

// mutate applies fn to a copy of the product and stores it only when fn
// succeeds.
func (r *ProductRepository) mutate(ctx context.Context, id primitive.ObjectID, fn func(p *models.Product) error) error {
	defer r.s.lock(ctx)()

	stored, ok := r.s.products[id]
	if !ok {
		return repository.ErrNotFound
	}
	next := cloneProduct(stored)
	if err := fn(&next); err != nil {
		return err
	}
	next.UpdatedAt = time.Now()

	remember(ctx, r.s.products, id)
	r.s.products[id] = next
	return nil
}
