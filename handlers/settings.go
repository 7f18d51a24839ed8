package handlers

import (
	"net/http"

	"github.com/evacurves/storefront-backend-go/services"
	"github.com/labstack/echo/v4"
)

type settingsRequest struct {
	Name     *string `json:"name"`
	Email    *string `json:"email" validate:"omitempty,email"`
	Currency *string `json:"currency"`
	Timezone *string `json:"timezone"`
}

func (h *Handler) GetSettings(c echo.Context) error {
	settings, err := h.Settings.Get(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, settings)
}

func (h *Handler) UpdateSettings(c echo.Context) error {
	var req settingsRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	settings, err := h.Settings.Update(c.Request().Context(), services.SettingsPatch{
		Name:     req.Name,
		Email:    req.Email,
		Currency: req.Currency,
		Timezone: req.Timezone,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, settings)
}
