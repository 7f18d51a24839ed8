package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/evacurves/storefront-backend-go/apperror"
	"github.com/evacurves/storefront-backend-go/cache"
	"github.com/evacurves/storefront-backend-go/currency"
	"github.com/evacurves/storefront-backend-go/models"
	"github.com/evacurves/storefront-backend-go/repository"
	"go.uber.org/zap"
)

const settingsCacheKey = "storefront:settings"

type SettingsPatch struct {
	Name     *string
	Email    *string
	Currency *string
	Timezone *string
}

type SettingsService struct {
	settings repository.Settings
	cache    cache.Cache
	ttl      time.Duration
	log      *zap.Logger
}

func NewSettingsService(store *repository.Store, c cache.Cache, ttl time.Duration, log *zap.Logger) *SettingsService {
	if c == nil {
		c = cache.Noop{}
	}
	return &SettingsService{settings: store.Settings, cache: c, ttl: ttl, log: log}
}

// Get returns the store settings, falling back to the defaults before the
// document is seeded.
func (s *SettingsService) Get(ctx context.Context) (*models.Settings, error) {
	var cached models.Settings
	if ok, err := s.cache.GetJSON(ctx, settingsCacheKey, &cached); err != nil {
		s.log.Warn("Settings cache read failed", zap.Error(err))
	} else if ok {
		return &cached, nil
	}

	settings, err := s.settings.Get(ctx)
	if errors.Is(err, repository.ErrNotFound) {
		d := models.DefaultSettings()
		return &d, nil
	}
	if err != nil {
		s.log.Error("Failed to fetch settings", zap.Error(err))
		return nil, apperror.Internal(err, "Failed to fetch settings")
	}

	if err := s.cache.SetJSON(ctx, settingsCacheKey, settings, s.ttl); err != nil {
		s.log.Warn("Settings cache write failed", zap.Error(err))
	}
	return settings, nil
}

func (s *SettingsService) Update(ctx context.Context, patch SettingsPatch) (*models.Settings, error) {
	current, err := s.settings.Get(ctx)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		d := models.DefaultSettings()
		d.CreatedAt = time.Now()
		current = &d
	case err != nil:
		return nil, apperror.Internal(err, "Failed to update settings")
	}

	if patch.Name != nil {
		current.Name = strings.TrimSpace(*patch.Name)
		if current.Name == "" {
			return nil, apperror.Validation("name is required")
		}
	}
	if patch.Email != nil {
		current.Email = normalizeEmail(*patch.Email)
		if !validEmail(current.Email) {
			return nil, apperror.Validation("email must be a valid email address")
		}
	}
	if patch.Currency != nil {
		code := strings.ToUpper(strings.TrimSpace(*patch.Currency))
		if !currency.Supported(code) {
			return nil, apperror.Validation("currency must be one of %s", strings.Join(currency.Codes(), ", "))
		}
		current.Currency = code
	}
	if patch.Timezone != nil {
		current.Timezone = strings.TrimSpace(*patch.Timezone)
	}
	current.UpdatedAt = time.Now()

	if err := s.settings.Save(ctx, current); err != nil {
		s.log.Error("Failed to save settings", zap.Error(err))
		return nil, apperror.Internal(err, "Failed to update settings")
	}
	if err := s.cache.Delete(ctx, settingsCacheKey); err != nil {
		s.log.Warn("Settings cache invalidation failed", zap.Error(err))
	}
	s.log.Info("Settings updated", zap.String("currency", current.Currency))
	return current, nil
}
