package memory

import (
	"context"

	"github.com/evacurves/storefront-backend-go/models"
	"github.com/evacurves/storefront-backend-go/repository"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type SettingsRepository struct {
	s *Store
}

func (r *SettingsRepository) Get(_ context.Context) (*models.Settings, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	if r.s.settings == nil {
		return nil, repository.ErrNotFound
	}
	out := *r.s.settings
	return &out, nil
}

func (r *SettingsRepository) Save(ctx context.Context, s *models.Settings) error {
	defer r.s.lock(ctx)()

	if s.ID.IsZero() {
		s.ID = primitive.NewObjectID()
	}
	prev := r.s.settings
	record(ctx, func() { r.s.settings = prev })

	stored := *s
	r.s.settings = &stored
	return nil
}
