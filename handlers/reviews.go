package handlers

import (
	"net/http"

	"github.com/evacurves/storefront-backend-go/services"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type reviewRequest struct {
	Rating  int      `json:"rating" validate:"required,min=1,max=5"`
	Comment string   `json:"comment" validate:"required"`
	Photos  []string `json:"photos"`
}

func reviewIDs(c echo.Context) (primitive.ObjectID, primitive.ObjectID, error) {
	productID, err := paramID(c, "id", "product")
	if err != nil {
		return primitive.NilObjectID, primitive.NilObjectID, err
	}
	reviewID, err := paramID(c, "reviewId", "review")
	if err != nil {
		return primitive.NilObjectID, primitive.NilObjectID, err
	}
	return productID, reviewID, nil
}

func (h *Handler) AddReview(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	productID, err := paramID(c, "id", "product")
	if err != nil {
		return err
	}
	var req reviewRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	review, err := h.Reviews.Add(c.Request().Context(), productID, user, services.ReviewInput{
		Rating:  req.Rating,
		Comment: req.Comment,
		Photos:  req.Photos,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, review)
}

func (h *Handler) MarkReviewHelpful(c echo.Context) error {
	productID, reviewID, err := reviewIDs(c)
	if err != nil {
		return err
	}
	review, err := h.Reviews.MarkHelpful(c.Request().Context(), productID, reviewID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, review)
}

func (h *Handler) ReportReview(c echo.Context) error {
	productID, reviewID, err := reviewIDs(c)
	if err != nil {
		return err
	}
	if err := h.Reviews.Report(c.Request().Context(), productID, reviewID); err != nil {
		return err
	}
	return message(c, http.StatusOK, "Review reported successfully")
}

func (h *Handler) VerifyReview(c echo.Context) error {
	productID, reviewID, err := reviewIDs(c)
	if err != nil {
		return err
	}
	review, err := h.Reviews.Verify(c.Request().Context(), productID, reviewID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, review)
}

func (h *Handler) DeleteReview(c echo.Context) error {
	productID, reviewID, err := reviewIDs(c)
	if err != nil {
		return err
	}
	if err := h.Reviews.Delete(c.Request().Context(), productID, reviewID); err != nil {
		return err
	}
	return message(c, http.StatusOK, "Review deleted successfully")
}

// GetAllReviews is the admin moderation listing across every product.
func (h *Handler) GetAllReviews(c echo.Context) error {
	reviews, err := h.Reviews.ListAll(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, reviews)
}
