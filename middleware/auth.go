package middleware

import (
	"context"
	"strings"

	"github.com/evacurves/storefront-backend-go/apperror"
	"github.com/evacurves/storefront-backend-go/models"
	"github.com/labstack/echo/v4"
)

const userKey = "user"

// Authenticator resolves a bearer token to an existing user.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*models.User, error)
}

// Authenticated rejects requests without a valid bearer token with 401 and
// stores the resolved user on the context.
func Authenticated(auth Authenticator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, err := bearerToken(c)
			if err != nil {
				return err
			}
			user, err := auth.Authenticate(c.Request().Context(), token)
			if err != nil {
				return err
			}
			c.Set(userKey, user)
			return next(c)
		}
	}
}

// AdminOnly must run after Authenticated.
func AdminOnly(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		user, ok := CurrentUser(c)
		if !ok {
			return apperror.Unauthenticated("Authentication required")
		}
		if !user.IsAdmin() {
			return apperror.Forbidden("Admin access required")
		}
		return next(c)
	}
}

// OptionalAuth attaches the user when a valid bearer token is present and
// lets the request through as a guest otherwise.
func OptionalAuth(auth Authenticator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if token, err := bearerToken(c); err == nil {
				if user, err := auth.Authenticate(c.Request().Context(), token); err == nil {
					c.Set(userKey, user)
				}
			}
			return next(c)
		}
	}
}

func CurrentUser(c echo.Context) (*models.User, bool) {
	user, ok := c.Get(userKey).(*models.User)
	return user, ok && user != nil
}

func bearerToken(c echo.Context) (string, error) {
	header := c.Request().Header.Get(echo.HeaderAuthorization)
	if header == "" {
		return "", apperror.Unauthenticated("Missing authorization header")
	}
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", apperror.Unauthenticated("Invalid authorization header format")
	}
	return parts[1], nil
}
