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

type WishlistRepository struct {
	collection *mongo.Collection
}

func NewWishlistRepository(db *mongo.Database) *WishlistRepository {
	return &WishlistRepository{
		collection: db.Collection("wishlists"),
	}
}

func (r *WishlistRepository) FindByUserID(ctx context.Context, userID primitive.ObjectID) (*models.Wishlist, error) {
	var wishlist models.Wishlist
	err := r.collection.FindOne(ctx, bson.M{"user_id": userID}).Decode(&wishlist)
	if err != nil {
		return nil, err
	}
	return &wishlist, nil
}

func (r *WishlistRepository) Create(ctx context.Context, wishlist *models.Wishlist) error {
	_, err := r.collection.InsertOne(ctx, wishlist)
	return err
}

func (r *WishlistRepository) ReplaceItems(ctx context.Context, userID primitive.ObjectID, items []models.WishlistItem) error {
	if items == nil {
		items = []models.WishlistItem{}
	}
	update := bson.M{"$set": bson.M{"items": items, "updated_at": time.Now().UTC()}}
	_, err := r.collection.UpdateOne(ctx, bson.M{"user_id": userID}, update)
	return err
}

func (r *WishlistRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "user_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}
