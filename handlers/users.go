package handlers

import (
	"net/http"

	"github.com/evacurves/storefront-backend-go/apperror"
	"github.com/evacurves/storefront-backend-go/middleware"
	"github.com/evacurves/storefront-backend-go/models"
	"github.com/evacurves/storefront-backend-go/services"
	"github.com/labstack/echo/v4"
)

type registerRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type authResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

type profileRequest struct {
	Name  *string `json:"name"`
	Email *string `json:"email" validate:"omitempty,email"`
	Image *string `json:"image"`
}

type passwordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=6"`
}

type notificationsRequest struct {
	OrderUpdates  *bool `json:"orderUpdates"`
	NewArrivals   *bool `json:"newArrivals"`
	SpecialOffers *bool `json:"specialOffers"`
}

func currentUser(c echo.Context) (*models.User, error) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return nil, apperror.Unauthenticated("Authentication required")
	}
	return user, nil
}

func (h *Handler) Register(c echo.Context) error {
	var req registerRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	user, token, err := h.Users.Register(c.Request().Context(), req.Name, req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, authResponse{Token: token, User: user})
}

func (h *Handler) Login(c echo.Context) error {
	var req loginRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	user, token, err := h.Users.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, authResponse{Token: token, User: user})
}

func (h *Handler) Me(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

func (h *Handler) UpdateProfile(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	var req profileRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	updated, err := h.Users.UpdateProfile(c.Request().Context(), user, services.ProfilePatch{
		Name:  req.Name,
		Email: req.Email,
		Image: req.Image,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]*models.UserSummary{"user": updated.Summary()})
}

func (h *Handler) ChangePassword(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	var req passwordRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if err := h.Users.ChangePassword(c.Request().Context(), user, req.CurrentPassword, req.NewPassword); err != nil {
		return err
	}
	return message(c, http.StatusOK, "Password updated successfully")
}

func (h *Handler) UpdateNotifications(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	var req notificationsRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	prefs, err := h.Users.UpdateNotifications(c.Request().Context(), user, services.NotificationPatch{
		OrderUpdates:  req.OrderUpdates,
		NewArrivals:   req.NewArrivals,
		SpecialOffers: req.SpecialOffers,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]*models.NotificationPreferences{"preferences": prefs})
}

func (h *Handler) DeleteAccount(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	if err := h.Users.DeleteAccount(c.Request().Context(), user); err != nil {
		return err
	}
	return message(c, http.StatusOK, "Account deleted successfully")
}
