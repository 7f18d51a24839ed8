package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Settings is the single store configuration document.
type Settings struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Name      string             `bson:"name" json:"name"`
	Email     string             `bson:"email" json:"email"`
	Currency  string             `bson:"currency" json:"currency"`
	Timezone  string             `bson:"timezone" json:"timezone"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}

func DefaultSettings() Settings {
	return Settings{
		Name:     "Eva Curves Fashion Store",
		Email:    "contact@evacurves.com",
		Currency: "USD",
		Timezone: "UTC-5",
	}
}
