// Package handlers adapts HTTP requests to the storefront services. Handlers
// bind and validate the request, call one service method and return its
// result as JSON; failures are returned to echo's error handler.
package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/evacurves/storefront-backend-go/apperror"
	"github.com/evacurves/storefront-backend-go/services"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Handler struct {
	Orders     *services.OrderService
	Catalog    *services.CatalogService
	Reviews    *services.ReviewService
	Categories *services.CategoryService
	Users      *services.UserService
	Settings   *services.SettingsService
	Heroes     *services.HeroService

	// Ping checks the backing store for /health.
	Ping func(ctx context.Context) error
}

type messageResponse struct {
	Message string `json:"message"`
}

func message(c echo.Context, status int, msg string) error {
	return c.JSON(status, messageResponse{Message: msg})
}

// bind decodes the request into req and runs the registered validator.
func bind(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		var he *echo.HTTPError
		if errors.As(err, &he) {
			if he.Internal != nil {
				return apperror.Validation("Invalid request body: %v", he.Internal)
			}
			return apperror.Validation("Invalid request body")
		}
		return apperror.Validation("Invalid request body: %v", err)
	}
	return c.Validate(req)
}

func paramID(c echo.Context, name, what string) (primitive.ObjectID, error) {
	return services.ParseID(c.Param(name), what)
}

func (h *Handler) Health(c echo.Context) error {
	if h.Ping != nil {
		if err := h.Ping(c.Request().Context()); err != nil {
			return c.JSON(http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		}
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
