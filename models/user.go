package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

type NotificationPreferences struct {
	OrderUpdates  bool `bson:"orderUpdates" json:"orderUpdates"`
	NewArrivals   bool `bson:"newArrivals" json:"newArrivals"`
	SpecialOffers bool `bson:"specialOffers" json:"specialOffers"`
}

func DefaultNotificationPreferences() NotificationPreferences {
	return NotificationPreferences{OrderUpdates: true, NewArrivals: true, SpecialOffers: true}
}

type User struct {
	ID                      primitive.ObjectID      `bson:"_id,omitempty" json:"_id"`
	Name                    string                  `bson:"name" json:"name"`
	Email                   string                  `bson:"email" json:"email"` // stored lower-cased
	Password                string                  `bson:"password" json:"-"`  // bcrypt hash
	Image                   string                  `bson:"image,omitempty" json:"image,omitempty"`
	Role                    Role                    `bson:"role" json:"role"`
	NotificationPreferences NotificationPreferences `bson:"notificationPreferences" json:"notificationPreferences"`
	LastPasswordChange      time.Time               `bson:"lastPasswordChange" json:"lastPasswordChange"`
	CreatedAt               time.Time               `bson:"createdAt" json:"createdAt"`
	UpdatedAt               time.Time               `bson:"updatedAt" json:"updatedAt"`
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

func (u *User) Summary() *UserSummary {
	return &UserSummary{ID: u.ID, Name: u.Name, Email: u.Email, Image: u.Image}
}

// UserSummary is the public shape of a reviewer.
type UserSummary struct {
	ID    primitive.ObjectID `json:"_id"`
	Name  string             `json:"name"`
	Email string             `json:"email"`
	Image string             `json:"image,omitempty"`
}
