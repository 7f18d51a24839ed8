// Package services holds the storefront's business rules on top of the
// repository contracts. Every error returned to callers is an
// *apperror.Error.
package services

import (
	"errors"

	"github.com/evacurves/storefront-backend-go/apperror"
	"github.com/evacurves/storefront-backend-go/repository"
	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Recorder receives domain events for metrics.
type Recorder interface {
	OrderPlaced(paymentMethod string)
	StockConflict()
	ReviewSubmitted()
}

type nopRecorder struct{}

func (nopRecorder) OrderPlaced(string) {}
func (nopRecorder) StockConflict()     {}
func (nopRecorder) ReviewSubmitted()   {}

func recorderOrNop(r Recorder) Recorder {
	if r == nil {
		return nopRecorder{}
	}
	return r
}

// storeErr converts repository failures into application errors. what names
// the entity for not-found messages.
func storeErr(err error, what, failure string) error {
	if err == nil {
		return nil
	}
	if _, ok := apperror.As(err); ok {
		return err
	}
	if errors.Is(err, repository.ErrNotFound) {
		return apperror.NotFound("%s not found", what)
	}
	return apperror.Internal(err, failure)
}

// ParseID parses a hex object id, reporting a validation error naming what.
func ParseID(raw, what string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		return primitive.NilObjectID, apperror.Validation("Invalid %s ID", what)
	}
	return id, nil
}

var fields = validator.New()

func validEmail(email string) bool {
	return fields.Var(email, "required,email") == nil
}
