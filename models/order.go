package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// OrderItem is a purchase-time snapshot; Price is captured from the product
// at checkout and never re-read afterwards.
type OrderItem struct {
	ProductID primitive.ObjectID `json:"product_id" bson:"product_id"`
	Quantity  int                `json:"quantity" bson:"quantity"`
	Price     float64            `json:"price" bson:"price"`
}

type Order struct {
	ID              primitive.ObjectID `json:"_id,omitempty" bson:"_id,omitempty"`
	UserID          primitive.ObjectID `json:"user_id" bson:"user_id"`
	Items           []OrderItem        `json:"items" bson:"items"`
	TotalAmount     float64            `json:"total_amount" bson:"total_amount"`
	ShippingFee     float64            `json:"shipping_fee" bson:"shipping_fee"`
	DeliveryAddress string             `json:"delivery_address" bson:"delivery_address"`
	PhoneNumber     string             `json:"phone_number" bson:"phone_number"`
	PaymentMethod   string             `json:"payment_method" bson:"payment_method"`
	Status          string             `json:"status" bson:"status"`
	TrackingNumber  string             `json:"tracking_number,omitempty" bson:"tracking_number,omitempty"`
	CreatedAt       time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt       time.Time          `json:"updated_at" bson:"updated_at"`
}
