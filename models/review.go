package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Review links back to the order that proves the purchase. At most one
// review may exist per (product_id, user_id) pair, enforced by a unique
// compound index.
type Review struct {
	ID        primitive.ObjectID `json:"_id,omitempty" bson:"_id,omitempty"`
	ProductID primitive.ObjectID `json:"product_id" bson:"product_id"`
	UserID    primitive.ObjectID `json:"user_id" bson:"user_id"`
	OrderID   primitive.ObjectID `json:"order_id" bson:"order_id"`
	Rating    int                `json:"rating" bson:"rating"`
	Title     string             `json:"title" bson:"title"`
	Comment   string             `json:"comment" bson:"comment"`
	CreatedAt time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time          `json:"updated_at" bson:"updated_at"`
}
