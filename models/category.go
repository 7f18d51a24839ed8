package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Category struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Name        string             `bson:"name" json:"name"`
	Slug        string             `bson:"slug" json:"slug"`
	Description string             `bson:"description" json:"description"`
	Image       string             `bson:"image" json:"image"`
	IsActive    bool               `bson:"isActive" json:"isActive"`
	Order       int                `bson:"order" json:"order"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}

type CategoryOrder struct {
	ID    primitive.ObjectID `json:"id" validate:"required"`
	Order int                `json:"order" validate:"gte=0"`
}

var ErrInvalidCategoryRef = errors.New("category must be an id or an object with an _id")

// CategoryRef is a category reference as clients send it: either a bare id
// string or a populated category object. Null or "" clears the reference.
type CategoryRef struct {
	ID    primitive.ObjectID
	Valid bool
}

func (r *CategoryRef) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	*r = CategoryRef{}
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return nil
	}

	var raw string
	switch b[0] {
	case '"':
		if err := json.Unmarshal(b, &raw); err != nil {
			return ErrInvalidCategoryRef
		}
	case '{':
		var obj struct {
			UnderscoreID string `json:"_id"`
			ID           string `json:"id"`
		}
		if err := json.Unmarshal(b, &obj); err != nil {
			return ErrInvalidCategoryRef
		}
		raw = obj.UnderscoreID
		if raw == "" {
			raw = obj.ID
		}
		if raw == "" {
			return ErrInvalidCategoryRef
		}
	default:
		return ErrInvalidCategoryRef
	}

	if raw == "" {
		return nil
	}
	id, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		return ErrInvalidCategoryRef
	}
	r.ID, r.Valid = id, true
	return nil
}

// Ptr returns the referenced id, or nil when the reference is empty.
func (r CategoryRef) Ptr() *primitive.ObjectID {
	if !r.Valid {
		return nil
	}
	id := r.ID
	return &id
}
