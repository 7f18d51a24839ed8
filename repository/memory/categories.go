package memory

import (
	"context"
	"sort"
	"time"

	"github.com/evacurves/storefront-backend-go/models"
	"github.com/evacurves/storefront-backend-go/repository"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type CategoryRepository struct {
	s *Store
}

func (r *CategoryRepository) List(_ context.Context) ([]models.Category, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	categories := make([]models.Category, 0, len(r.s.categories))
	for _, c := range r.s.categories {
		categories = append(categories, c)
	}
	sort.SliceStable(categories, func(i, j int) bool {
		if categories[i].Order != categories[j].Order {
			return categories[i].Order < categories[j].Order
		}
		return categories[i].Name < categories[j].Name
	})
	return categories, nil
}

func (r *CategoryRepository) Get(_ context.Context, id primitive.ObjectID) (*models.Category, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	c, ok := r.s.categories[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &c, nil
}

func (r *CategoryRepository) GetMany(_ context.Context, ids []primitive.ObjectID) ([]models.Category, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	categories := []models.Category{}
	for _, id := range ids {
		if c, ok := r.s.categories[id]; ok {
			categories = append(categories, c)
		}
	}
	return categories, nil
}

func (r *CategoryRepository) Create(ctx context.Context, c *models.Category) error {
	defer r.s.lock(ctx)()

	if c.ID.IsZero() {
		c.ID = primitive.NewObjectID()
	}
	if r.slugTaken(c.Slug, c.ID) {
		return repository.ErrDuplicate
	}
	remember(ctx, r.s.categories, c.ID)
	r.s.categories[c.ID] = *c
	return nil
}

func (r *CategoryRepository) Update(ctx context.Context, c *models.Category) error {
	defer r.s.lock(ctx)()

	stored, ok := r.s.categories[c.ID]
	if !ok {
		return repository.ErrNotFound
	}
	if r.slugTaken(c.Slug, c.ID) {
		return repository.ErrDuplicate
	}
	next := *c
	next.CreatedAt = stored.CreatedAt

	remember(ctx, r.s.categories, c.ID)
	r.s.categories[c.ID] = next
	return nil
}

func (r *CategoryRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	defer r.s.lock(ctx)()

	if _, ok := r.s.categories[id]; !ok {
		return repository.ErrNotFound
	}
	remember(ctx, r.s.categories, id)
	delete(r.s.categories, id)
	return nil
}

func (r *CategoryRepository) SetOrder(ctx context.Context, id primitive.ObjectID, order int) error {
	defer r.s.lock(ctx)()

	c, ok := r.s.categories[id]
	if !ok {
		return repository.ErrNotFound
	}
	c.Order = order
	c.UpdatedAt = time.Now()

	remember(ctx, r.s.categories, id)
	r.s.categories[id] = c
	return nil
}

func (r *CategoryRepository) slugTaken(slug string, self primitive.ObjectID) bool {
	for id, c := range r.s.categories {
		if id != self && c.Slug == slug {
			return true
		}
	}
	return false
}
