package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User represents the application user account. Password holds the bcrypt
// hash and never serializes to JSON.
type User struct {
	ID        primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Name      string               `bson:"name" json:"name"`
	Email     string               `bson:"email" json:"email"`
	Password  string               `bson:"password" json:"-"`
	Role      string               `bson:"role" json:"role"`
	Phone     string               `bson:"phone" json:"phone"`
	Address   string               `bson:"address" json:"address"`
	City      string               `bson:"city" json:"city"`
	State     string               `bson:"state" json:"state"`
	Pincode   string               `bson:"pincode" json:"pincode"`
	Orders    []primitive.ObjectID `bson:"orders,omitempty" json:"orders,omitempty"`
	CreatedAt time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time            `bson:"updatedAt" json:"updatedAt"`
}
