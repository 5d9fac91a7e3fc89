package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ProductImage is a single uploaded image; PublicID is the image store
// handle used to destroy the asset when the product changes.
type ProductImage struct {
	URL      string `json:"url" bson:"url"`
	PublicID string `json:"public_id" bson:"public_id"`
}

type Product struct {
	ID            primitive.ObjectID `json:"_id,omitempty" bson:"_id,omitempty"`
	Name          string             `json:"name" bson:"name"`
	Description   string             `json:"description" bson:"description"`
	Price         float64            `json:"price" bson:"price"`
	CategoryID    primitive.ObjectID `json:"category_id" bson:"category_id"`
	Images        []ProductImage     `json:"images" bson:"images"`
	Stock         int                `json:"stock" bson:"stock"`
	AverageRating float64            `json:"average_rating" bson:"average_rating"`
	TotalReviews  int                `json:"total_reviews" bson:"total_reviews"`
	CreatedBy     primitive.ObjectID `json:"created_by" bson:"created_by"`
	CreatedAt     time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at" bson:"updated_at"`
}
