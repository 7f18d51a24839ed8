package services

import (
	"context"
	"errors"
	"time"

	"github.com/evacurves/storefront-backend-go/models"
	"github.com/evacurves/storefront-backend-go/repository"
	"github.com/evacurves/storefront-backend-go/utils"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type SeedConfig struct {
	AdminName     string
	AdminEmail    string
	AdminPassword string
}

// Seed provisions the settings document and the first admin account. It
// only creates what is missing, so it runs on every boot.
func Seed(ctx context.Context, store *repository.Store, cfg SeedConfig, log *zap.Logger) error {
	_, err := store.Settings.Get(ctx)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		s := models.DefaultSettings()
		s.CreatedAt = time.Now()
		s.UpdatedAt = s.CreatedAt
		if err := store.Settings.Save(ctx, &s); err != nil {
			return err
		}
		log.Info("Default settings created")
	case err != nil:
		return err
	}

	exists, err := store.Users.AdminExists(ctx)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	if cfg.AdminEmail == "" || cfg.AdminPassword == "" {
		log.Warn("No admin account exists and ADMIN_EMAIL/ADMIN_PASSWORD are not set")
		return nil
	}

	hash, err := utils.HashPassword(cfg.AdminPassword)
	if err != nil {
		return err
	}
	name := cfg.AdminName
	if name == "" {
		name = "Admin"
	}
	now := time.Now()
	admin := &models.User{
		ID:                      primitive.NewObjectID(),
		Name:                    name,
		Email:                   normalizeEmail(cfg.AdminEmail),
		Password:                hash,
		Role:                    models.RoleAdmin,
		NotificationPreferences: models.DefaultNotificationPreferences(),
		LastPasswordChange:      now,
		CreatedAt:               now,
		UpdatedAt:               now,
	}
	if err := store.Users.Create(ctx, admin); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			log.Warn("Admin e-mail belongs to an existing customer; admin not created", zap.String("email", admin.Email))
			return nil
		}
		return err
	}
	log.Info("Default admin created", zap.String("email", admin.Email))
	return nil
}
