package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User is a credential-store record. Username and email are unique
// (enforced by collection indexes, not in-process). The password hash
// never leaves the service: it is excluded from JSON and from every
// repository projection.
type User struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Username        string             `bson:"username" json:"username"`
	Name            string             `bson:"name,omitempty" json:"name,omitempty"`
	Email           string             `bson:"email" json:"email"`
	Password        string             `bson:"password,omitempty" json:"-"`
	IsAdmin         bool               `bson:"isAdmin" json:"isAdmin"`
	IsProfilePublic bool               `bson:"isProfilePublic" json:"isProfilePublic"`
	CreatedAt       time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time          `bson:"updatedAt" json:"updatedAt"`
}
