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

type ProfilePatch struct {
	Name  *string
	Email *string
	Image *string
}

type NotificationPatch struct {
	OrderUpdates  *bool
	NewArrivals   *bool
	SpecialOffers *bool
}

type UserService struct {
	users  repository.Users
	tokens *utils.TokenManager
	log    *zap.Logger
	now    func() time.Time
}

func NewUserService(store *repository.Store, tokens *utils.TokenManager, log *zap.Logger) *UserService {
	return &UserService{users: store.Users, tokens: tokens, log: log, now: time.Now}
}

// Register creates a customer account and signs the user in.
func (s *UserService) Register(ctx context.Context, name, email, password string) (*models.User, string, error) {
	name = strings.TrimSpace(name)
	email = normalizeEmail(email)
	if name == "" {
		return nil, "", apperror.Validation("name is required")
	}
	if !validEmail(email) {
		return nil, "", apperror.Validation("email must be a valid email address")
	}
	if err := checkPassword(password); err != nil {
		return nil, "", err
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		return nil, "", apperror.Internal(err, "Failed to register user")
	}
	now := s.now()
	u := &models.User{
		ID:                      primitive.NewObjectID(),
		Name:                    name,
		Email:                   email,
		Password:                hash,
		Role:                    models.RoleUser,
		NotificationPreferences: models.DefaultNotificationPreferences(),
		LastPasswordChange:      now,
		CreatedAt:               now,
		UpdatedAt:               now,
	}
	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, "", apperror.Conflict("Email already registered")
		}
		s.log.Error("Failed to register user", zap.Error(err))
		return nil, "", apperror.Internal(err, "Failed to register user")
	}

	token, err := s.issue(u)
	if err != nil {
		return nil, "", err
	}
	s.log.Info("User registered", zap.String("user_id", u.ID.Hex()))
	return u, token, nil
}

// Login verifies credentials. Unknown e-mail and wrong password produce the
// same error.
func (s *UserService) Login(ctx context.Context, email, password string) (*models.User, string, error) {
	u, err := s.users.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, "", apperror.Unauthenticated("Invalid email or password")
		}
		return nil, "", apperror.Internal(err, "Failed to log in")
	}
	if !utils.CheckPassword(u.Password, password) {
		return nil, "", apperror.Unauthenticated("Invalid email or password")
	}
	token, err := s.issue(u)
	if err != nil {
		return nil, "", err
	}
	return u, token, nil
}

// Authenticate resolves a bearer token to an existing user.
func (s *UserService) Authenticate(ctx context.Context, token string) (*models.User, error) {
	if token == "" {
		return nil, apperror.Unauthenticated("Authentication required")
	}
	claims, err := s.tokens.ValidateJWT(token)
	if err != nil {
		return nil, apperror.Unauthenticated("Invalid or expired token")
	}
	id, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return nil, apperror.Unauthenticated("Invalid or expired token")
	}
	u, err := s.users.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperror.Unauthenticated("User no longer exists")
		}
		return nil, apperror.Internal(err, "Failed to authenticate")
	}
	return u, nil
}

func (s *UserService) UpdateProfile(ctx context.Context, u *models.User, patch ProfilePatch) (*models.User, error) {
	next := *u
	if patch.Name != nil {
		next.Name = strings.TrimSpace(*patch.Name)
		if next.Name == "" {
			return nil, apperror.Validation("name is required")
		}
	}
	if patch.Email != nil {
		next.Email = normalizeEmail(*patch.Email)
		if !validEmail(next.Email) {
			return nil, apperror.Validation("email must be a valid email address")
		}
	}
	if patch.Image != nil {
		next.Image = *patch.Image
	}
	next.UpdatedAt = s.now()

	if err := s.users.Update(ctx, &next); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperror.Conflict("Email already in use")
		}
		return nil, storeErr(err, "User", "Failed to update profile")
	}
	return &next, nil
}

func (s *UserService) ChangePassword(ctx context.Context, u *models.User, current, replacement string) error {
	if current == "" || replacement == "" {
		return apperror.Validation("Current and new password are required")
	}
	if !utils.CheckPassword(u.Password, current) {
		return apperror.Unauthenticated("Current password is incorrect")
	}
	if err := checkPassword(replacement); err != nil {
		return err
	}

	hash, err := utils.HashPassword(replacement)
	if err != nil {
		return apperror.Internal(err, "Failed to update password")
	}
	next := *u
	next.Password = hash
	next.LastPasswordChange = s.now()
	next.UpdatedAt = next.LastPasswordChange
	if err := s.users.Update(ctx, &next); err != nil {
		return storeErr(err, "User", "Failed to update password")
	}
	s.log.Info("Password changed", zap.String("user_id", u.ID.Hex()))
	return nil
}

// UpdateNotifications merges the given preferences into the stored ones.
func (s *UserService) UpdateNotifications(ctx context.Context, u *models.User, patch NotificationPatch) (*models.NotificationPreferences, error) {
	next := *u
	prefs := &next.NotificationPreferences
	if patch.OrderUpdates != nil {
		prefs.OrderUpdates = *patch.OrderUpdates
	}
	if patch.NewArrivals != nil {
		prefs.NewArrivals = *patch.NewArrivals
	}
	if patch.SpecialOffers != nil {
		prefs.SpecialOffers = *patch.SpecialOffers
	}
	next.UpdatedAt = s.now()
	if err := s.users.Update(ctx, &next); err != nil {
		return nil, storeErr(err, "User", "Failed to update notification preferences")
	}
	return prefs, nil
}

// DeleteAccount removes the user. Their orders and reviews are kept.
func (s *UserService) DeleteAccount(ctx context.Context, u *models.User) error {
	if err := s.users.Delete(ctx, u.ID); err != nil {
		return storeErr(err, "User", "Failed to delete account")
	}
	s.log.Info("Account deleted", zap.String("user_id", u.ID.Hex()))
	return nil
}

func (s *UserService) issue(u *models.User) (string, error) {
	token, err := s.tokens.GenerateJWT(u.ID.Hex())
	if err != nil {
		s.log.Error("Failed to sign token", zap.Error(err))
		return "", apperror.Internal(err, "Failed to generate token")
	}
	return token, nil
}

func checkPassword(p string) error {
	if len(p) < utils.MinPasswordLength {
		return apperror.Validation("password must be at least %d characters", utils.MinPasswordLength)
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
