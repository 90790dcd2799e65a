package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// IdempotencyRecord maps a client-supplied Idempotency-Key to the order it
// produced, so a replayed order creation returns the existing order instead
// of inserting a duplicate. Records expire via a TTL index on createdAt.
type IdempotencyRecord struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Key       string             `bson:"key"`
	UserID    primitive.ObjectID `bson:"userId"`
	OrderID   primitive.ObjectID `bson:"orderId"`
	CreatedAt time.Time          `bson:"createdAt"`
}
