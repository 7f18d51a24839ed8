package memory

import (
	"context"
	"time"

	"github.com/evacurves/storefront-backend-go/models"
	"github.com/evacurves/storefront-backend-go/repository"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type HeroRepository struct {
	s *Store
}

func (r *HeroRepository) Active(_ context.Context) (*models.Hero, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var active *models.Hero
	for _, h := range r.s.heroes {
		if !h.IsActive {
			continue
		}
		if active == nil || h.UpdatedAt.After(active.UpdatedAt) {
			h := h
			active = &h
		}
	}
	if active == nil {
		return nil, repository.ErrNotFound
	}
	return active, nil
}

func (r *HeroRepository) Get(_ context.Context, id primitive.ObjectID) (*models.Hero, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	h, ok := r.s.heroes[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &h, nil
}

func (r *HeroRepository) Create(ctx context.Context, h *models.Hero) error {
	defer r.s.lock(ctx)()

	if h.ID.IsZero() {
		h.ID = primitive.NewObjectID()
	}
	remember(ctx, r.s.heroes, h.ID)
	r.s.heroes[h.ID] = *h
	return nil
}

func (r *HeroRepository) Update(ctx context.Context, h *models.Hero) error {
	defer r.s.lock(ctx)()

	if _, ok := r.s.heroes[h.ID]; !ok {
		return repository.ErrNotFound
	}
	remember(ctx, r.s.heroes, h.ID)
	r.s.heroes[h.ID] = *h
	return nil
}

func (r *HeroRepository) DeactivateOthers(ctx context.Context, keep primitive.ObjectID) error {
	defer r.s.lock(ctx)()

	for id, h := range r.s.heroes {
		if id == keep || !h.IsActive {
			continue
		}
		remember(ctx, r.s.heroes, id)
		h.IsActive = false
		h.UpdatedAt = time.Now()
		r.s.heroes[id] = h
	}
	return nil
}
