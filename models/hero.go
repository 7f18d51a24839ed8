package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Hero is the storefront banner. At most one is active.
type Hero struct {
	ID                  primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Title               string             `bson:"title" json:"title"`
	Subtitle            string             `bson:"subtitle" json:"subtitle"`
	Image               string             `bson:"image" json:"image"`
	PrimaryButtonText   string             `bson:"primaryButtonText" json:"primaryButtonText"`
	SecondaryButtonText string             `bson:"secondaryButtonText" json:"secondaryButtonText"`
	IsActive            bool               `bson:"isActive" json:"isActive"`
	CreatedAt           time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt           time.Time          `bson:"updatedAt" json:"updatedAt"`
}
