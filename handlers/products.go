package handlers

import (
	"net/http"

	"github.com/evacurves/storefront-backend-go/models"
	"github.com/evacurves/storefront-backend-go/services"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type productRequest struct {
	Name        string             `json:"name" validate:"required"`
	Description string             `json:"description"`
	Price       models.Money       `json:"price"`
	Stock       int                `json:"stock" validate:"gte=0"`
	Images      []string           `json:"images"`
	Category    models.CategoryRef `json:"category"`
	Colors      []models.Color     `json:"colors" validate:"dive"`
	Sizes       []models.Size      `json:"sizes" validate:"dive"`
	IsNew       bool               `json:"isNew"`
	IsFeatured  bool               `json:"isFeatured"`
}

type productPatchRequest struct {
	Name        *string             `json:"name"`
	Description *string             `json:"description"`
	Price       *models.Money       `json:"price"`
	Stock       *int                `json:"stock" validate:"omitempty,gte=0"`
	Images      *[]string           `json:"images"`
	Category    *models.CategoryRef `json:"category"`
	Colors      *[]models.Color     `json:"colors" validate:"omitempty,dive"`
	Sizes       *[]models.Size      `json:"sizes" validate:"omitempty,dive"`
	IsNew       *bool               `json:"isNew"`
	IsFeatured  *bool               `json:"isFeatured"`
}

type relatedRequest struct {
	RelatedProducts []primitive.ObjectID `json:"relatedProducts"`
}

type reorderFeaturedRequest struct {
	Products []models.FeaturedOrder `json:"products" validate:"required,min=1,dive"`
}

// GetProducts lists the catalog; ?search filters by name or description.
func (h *Handler) GetProducts(c echo.Context) error {
	products, err := h.Catalog.List(c.Request().Context(), c.QueryParam("search"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, products)
}

func (h *Handler) SearchProducts(c echo.Context) error {
	products, err := h.Catalog.Search(c.Request().Context(), c.QueryParam("query"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, products)
}

func (h *Handler) GetProduct(c echo.Context) error {
	id, err := paramID(c, "id", "product")
	if err != nil {
		return err
	}
	product, err := h.Catalog.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, product)
}

func (h *Handler) CreateProduct(c echo.Context) error {
	var req productRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	product, err := h.Catalog.Create(c.Request().Context(), services.ProductInput{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Stock:       req.Stock,
		Images:      req.Images,
		Category:    req.Category,
		Colors:      req.Colors,
		Sizes:       req.Sizes,
		IsNew:       req.IsNew,
		IsFeatured:  req.IsFeatured,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, product)
}

func (h *Handler) UpdateProduct(c echo.Context) error {
	id, err := paramID(c, "id", "product")
	if err != nil {
		return err
	}
	var req productPatchRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	product, err := h.Catalog.Update(c.Request().Context(), id, services.ProductPatch{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Stock:       req.Stock,
		Images:      req.Images,
		Category:    req.Category,
		Colors:      req.Colors,
		Sizes:       req.Sizes,
		IsNew:       req.IsNew,
		IsFeatured:  req.IsFeatured,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, product)
}

func (h *Handler) DeleteProduct(c echo.Context) error {
	id, err := paramID(c, "id", "product")
	if err != nil {
		return err
	}
	if err := h.Catalog.Delete(c.Request().Context(), id); err != nil {
		return err
	}
	return message(c, http.StatusOK, "Product deleted successfully")
}

func (h *Handler) UpdateRelatedProducts(c echo.Context) error {
	id, err := paramID(c, "id", "product")
	if err != nil {
		return err
	}
	var req relatedRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	product, err := h.Catalog.SetRelated(c.Request().Context(), id, req.RelatedProducts)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, product)
}

func (h *Handler) ReorderFeaturedProducts(c echo.Context) error {
	var req reorderFeaturedRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if err := h.Catalog.ReorderFeatured(c.Request().Context(), req.Products); err != nil {
		return err
	}
	return message(c, http.StatusOK, "Featured products reordered successfully")
}
