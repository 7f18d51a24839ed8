package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/evacurves/storefront-backend-go/apperror"
	"github.com/evacurves/storefront-backend-go/cache"
	"github.com/evacurves/storefront-backend-go/models"
	"github.com/evacurves/storefront-backend-go/repository"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const activeHeroCacheKey = "storefront:hero:active"

type HeroInput struct {
	Title               string
	Subtitle            string
	Image               string
	PrimaryButtonText   string
	SecondaryButtonText string
	IsActive            bool
}

type HeroPatch struct {
	Title               *string
	Subtitle            *string
	Image               *string
	PrimaryButtonText   *string
	SecondaryButtonText *string
	IsActive            *bool
}

type HeroService struct {
	heroes repository.Heroes
	tx     repository.Transactor
	cache  cache.Cache
	ttl    time.Duration
	log    *zap.Logger
}

func NewHeroService(store *repository.Store, c cache.Cache, ttl time.Duration, log *zap.Logger) *HeroService {
	if c == nil {
		c = cache.Noop{}
	}
	return &HeroService{heroes: store.Heroes, tx: store.Tx, cache: c, ttl: ttl, log: log}
}

// Active returns the hero shown on the storefront.
func (s *HeroService) Active(ctx context.Context) (*models.Hero, error) {
	var cached models.Hero
	if ok, err := s.cache.GetJSON(ctx, activeHeroCacheKey, &cached); err != nil {
		s.log.Warn("Hero cache read failed", zap.Error(err))
	} else if ok {
		return &cached, nil
	}

	hero, err := s.heroes.Active(ctx)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperror.NotFound("No active hero section found")
	}
	if err != nil {
		s.log.Error("Failed to fetch hero", zap.Error(err))
		return nil, apperror.Internal(err, "Failed to fetch hero")
	}

	if err := s.cache.SetJSON(ctx, activeHeroCacheKey, hero, s.ttl); err != nil {
		s.log.Warn("Hero cache write failed", zap.Error(err))
	}
	return hero, nil
}

func (s *HeroService) Create(ctx context.Context, in HeroInput) (*models.Hero, error) {
	now := time.Now()
	h := &models.Hero{
		ID:                  primitive.NewObjectID(),
		Title:               strings.TrimSpace(in.Title),
		Subtitle:            in.Subtitle,
		Image:               strings.TrimSpace(in.Image),
		PrimaryButtonText:   in.PrimaryButtonText,
		SecondaryButtonText: in.SecondaryButtonText,
		IsActive:            in.IsActive,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	if err := checkHero(h); err != nil {
		return nil, err
	}

	err := s.save(ctx, h, s.heroes.Create)
	if err != nil {
		return nil, err
	}
	return h, nil
}

func (s *HeroService) Update(ctx context.Context, id primitive.ObjectID, patch HeroPatch) (*models.Hero, error) {
	h, err := s.heroes.Get(ctx, id)
	if err != nil {
		return nil, storeErr(err, "Hero", "Failed to update hero")
	}
	if patch.Title != nil {
		h.Title = strings.TrimSpace(*patch.Title)
	}
	if patch.Subtitle != nil {
		h.Subtitle = *patch.Subtitle
	}
	if patch.Image != nil {
		h.Image = strings.TrimSpace(*patch.Image)
	}
	if patch.PrimaryButtonText != nil {
		h.PrimaryButtonText = *patch.PrimaryButtonText
	}
	if patch.SecondaryButtonText != nil {
		h.SecondaryButtonText = *patch.SecondaryButtonText
	}
	if patch.IsActive != nil {
		h.IsActive = *patch.IsActive
	}
	if err := checkHero(h); err != nil {
		return nil, err
	}
	h.UpdatedAt = time.Now()

	if err := s.save(ctx, h, s.heroes.Update); err != nil {
		return nil, err
	}
	return h, nil
}

// save writes h and, when it is active, deactivates every other hero in
// the same transaction.
func (s *HeroService) save(ctx context.Context, h *models.Hero, write func(context.Context, *models.Hero) error) error {
	err := s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		if err := write(ctx, h); err != nil {
			return storeErr(err, "Hero", "Failed to save hero")
		}
		if h.IsActive {
			if err := s.heroes.DeactivateOthers(ctx, h.ID); err != nil {
				return apperror.Internal(err, "Failed to save hero")
			}
		}
		return nil
	})
	if err != nil {
		if apperror.IsKind(err, apperror.KindInternal) {
			s.log.Error("Failed to save hero", zap.String("hero_id", h.ID.Hex()), zap.Error(err))
		}
		return err
	}
	if err := s.cache.Delete(ctx, activeHeroCacheKey); err != nil {
		s.log.Warn("Hero cache invalidation failed", zap.Error(err))
	}
	return nil
}

func checkHero(h *models.Hero) error {
	if h.Title == "" {
		return apperror.Validation("title is required")
	}
	if h.Image == "" {
		return apperror.Validation("image is required")
	}
	return nil
}
