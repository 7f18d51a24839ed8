package handlers

import (
	"net/http"

	"github.com/evacurves/storefront-backend-go/services"
	"github.com/labstack/echo/v4"
)

type heroRequest struct {
	Title               string `json:"title" validate:"required"`
	Subtitle            string `json:"subtitle"`
	Image               string `json:"image" validate:"required"`
	PrimaryButtonText   string `json:"primaryButtonText"`
	SecondaryButtonText string `json:"secondaryButtonText"`
	IsActive            bool   `json:"isActive"`
}

type heroPatchRequest struct {
	Title               *string `json:"title"`
	Subtitle            *string `json:"subtitle"`
	Image               *string `json:"image"`
	PrimaryButtonText   *string `json:"primaryButtonText"`
	SecondaryButtonText *string `json:"secondaryButtonText"`
	IsActive            *bool   `json:"isActive"`
}

// GetActiveHero is polled by the storefront.
func (h *Handler) GetActiveHero(c echo.Context) error {
	hero, err := h.Heroes.Active(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, hero)
}

func (h *Handler) CreateHero(c echo.Context) error {
	var req heroRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	hero, err := h.Heroes.Create(c.Request().Context(), services.HeroInput{
		Title:               req.Title,
		Subtitle:            req.Subtitle,
		Image:               req.Image,
		PrimaryButtonText:   req.PrimaryButtonText,
		SecondaryButtonText: req.SecondaryButtonText,
		IsActive:            req.IsActive,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, hero)
}

func (h *Handler) UpdateHero(c echo.Context) error {
	id, err := paramID(c, "id", "hero")
	if err != nil {
		return err
	}
	var req heroPatchRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	hero, err := h.Heroes.Update(c.Request().Context(), id, services.HeroPatch{
		Title:               req.Title,
		Subtitle:            req.Subtitle,
		Image:               req.Image,
		PrimaryButtonText:   req.PrimaryButtonText,
		SecondaryButtonText: req.SecondaryButtonText,
		IsActive:            req.IsActive,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, hero)
}
