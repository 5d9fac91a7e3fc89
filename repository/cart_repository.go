package repository

import (
	"context"
	"time"

	"commerce-api/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type CartRepository struct {
	collection *mongo.Collection
}

func NewCartRepository(db *mongo.Database) *CartRepository {
	return &CartRepository{
		collection: db.Collection("carts"),
	}
}

func (r *CartRepository) FindByUserID(ctx context.Context, userID primitive.ObjectID) (*models.Cart, error) {
	var cart models.Cart
	err := r.collection.FindOne(ctx, bson.M{"user_id": userID}).Decode(&cart)
	if err != nil {
		return nil, err
	}
	return &cart, nil
}

func (r *CartRepository) Create(ctx context.Context, cart *models.Cart) error {
	_, err := r.collection.InsertOne(ctx, cart)
	return err
}

func (r *CartRepository) ReplaceItems(ctx context.Context, userID primitive.ObjectID, items []models.CartItem) error {
	if items == nil {
		items = []models.CartItem{}
	}
	update := bson.M{"$set": bson.M{"items": items, "updated_at": time.Now().UTC()}}
	_, err := r.collection.UpdateOne(ctx, bson.M{"user_id": userID}, update)
	return err
}

// Clear empties the cart wholesale; used after a successful checkout.
func (r *CartRepository) Clear(ctx context.Context, userID primitive.ObjectID) error {
	return r.ReplaceItems(ctx, userID, nil)
}

func (r *CartRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "user_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}
