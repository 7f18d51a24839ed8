package handlers

import (
	"net/http"

	"github.com/evacurves/storefront-backend-go/models"
	"github.com/evacurves/storefront-backend-go/services"
	"github.com/labstack/echo/v4"
)

type categoryRequest struct {
	Name        string `json:"name" validate:"required"`
	Slug        string `json:"slug"`
	Description string `json:"description"`
	Image       string `json:"image"`
	IsActive    *bool  `json:"isActive"`
	Order       int    `json:"order" validate:"gte=0"`
}

type categoryPatchRequest struct {
	Name        *string `json:"name"`
	Slug        *string `json:"slug"`
	Description *string `json:"description"`
	Image       *string `json:"image"`
	IsActive    *bool   `json:"isActive"`
	Order       *int    `json:"order" validate:"omitempty,gte=0"`
}

type reorderCategoriesRequest struct {
	Categories []models.CategoryOrder `json:"categories" validate:"required,min=1,dive"`
}

func (h *Handler) GetCategories(c echo.Context) error {
	categories, err := h.Categories.List(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, categories)
}

func (h *Handler) GetCategory(c echo.Context) error {
	id, err := paramID(c, "id", "category")
	if err != nil {
		return err
	}
	category, err := h.Categories.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, category)
}

func (h *Handler) CreateCategory(c echo.Context) error {
	var req categoryRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	category, err := h.Categories.Create(c.Request().Context(), services.CategoryInput{
		Name:        req.Name,
		Slug:        req.Slug,
		Description: req.Description,
		Image:       req.Image,
		IsActive:    req.IsActive,
		Order:       req.Order,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, category)
}

func (h *Handler) UpdateCategory(c echo.Context) error {
	id, err := paramID(c, "id", "category")
	if err != nil {
		return err
	}
	var req categoryPatchRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	category, err := h.Categories.Update(c.Request().Context(), id, services.CategoryPatch{
		Name:        req.Name,
		Slug:        req.Slug,
		Description: req.Description,
		Image:       req.Image,
		IsActive:    req.IsActive,
		Order:       req.Order,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, category)
}

func (h *Handler) DeleteCategory(c echo.Context) error {
	id, err := paramID(c, "id", "category")
	if err != nil {
		return err
	}
	if err := h.Categories.Delete(c.Request().Context(), id); err != nil {
		return err
	}
	return message(c, http.StatusOK, "Category deleted successfully")
}

func (h *Handler) ReorderCategories(c echo.Context) error {
	var req reorderCategoriesRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if err := h.Categories.Reorder(c.Request().Context(), req.Categories); err != nil {
		return err
	}
	return message(c, http.StatusOK, "Categories reordered successfully")
}
