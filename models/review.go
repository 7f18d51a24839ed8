package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	MinRating = 1
	MaxRating = 5
)

// Review is stored in its own collection keyed by (productId, _id).
type Review struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	ProductID primitive.ObjectID `bson:"productId" json:"productId"`
	UserID    primitive.ObjectID `bson:"userId" json:"userId"`
	User      *UserSummary       `bson:"-" json:"user,omitempty"`
	Rating    int                `bson:"rating" json:"rating"`
	Comment   string             `bson:"comment" json:"comment"`
	Photos    []string           `bson:"photos" json:"photos"`
	Verified  bool               `bson:"verified" json:"verified"`
	Helpful   int                `bson:"helpful" json:"helpful"`
	Reported  bool               `bson:"reported" json:"reported"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}

// ModerationReview is a review as listed in the admin moderation view.
type ModerationReview struct {
	Review
	Product ProductSummary `json:"product"`
}
