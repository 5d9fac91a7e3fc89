package repository

import (
	"context"
	"errors"

	"commerce-api/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrInsufficientStock is returned by conditional stock decrements when the
// product's remaining stock is below the requested quantity.
var ErrInsufficientStock = errors.New("insufficient stock")

// ProductRepo defines the operations the services need over the products
// collection. Mutations on stock and rating are single server-side updates
// so concurrent writers cannot lose each other's changes.
type ProductRepo interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error)
	Find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]*models.Product, error)
	Count(ctx context.Context, filter bson.M) (int64, error)
	Create(ctx context.Context, product *models.Product) error
	Update(ctx context.Context, id primitive.ObjectID, updates bson.M) (int64, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	// DecrementStock atomically decrements stock by quantity, failing with
	// ErrInsufficientStock when stock < quantity at write time.
	DecrementStock(ctx context.Context, id primitive.ObjectID, quantity int) error
	// IncrementStock adds quantity back; used to compensate a failed
	// multi-item checkout.
	IncrementStock(ctx context.Context, id primitive.ObjectID, quantity int) error
	// SetRating writes average_rating and total_reviews in one update.
	SetRating(ctx context.Context, id primitive.ObjectID, average float64, count int) error
	EnsureIndexes(ctx context.Context) error
}

type OrderRepo interface {
	Create(ctx context.Context, order *models.Order) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Order, error)
	FindByUserID(ctx context.Context, userID primitive.ObjectID, page, limit int) ([]models.Order, int64, error)
	FindAll(ctx context.Context, filter bson.M, page, limit int) ([]models.Order, int64, error)
	Find(ctx context.Context, filter bson.M) ([]models.Order, error)
	Count(ctx context.Context, filter bson.M) (int64, error)
	Update(ctx context.Context, id primitive.ObjectID, updates bson.M) (int64, error)
}

type ReviewRepo interface {
	Create(ctx context.Context, review *models.Review) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Review, error)
	FindByProduct(ctx context.Context, productID primitive.ObjectID, page, limit int) ([]models.Review, int64, error)
	FindByUser(ctx context.Context, userID primitive.ObjectID, page, limit int) ([]models.Review, int64, error)
	FindOneByProductAndUser(ctx context.Context, productID, userID primitive.ObjectID) (*models.Review, error)
	// FindAllByProduct returns every review of the product, for rating
	// recomputation.
	FindAllByProduct(ctx context.Context, productID primitive.ObjectID) ([]models.Review, error)
	Update(ctx context.Context, id primitive.ObjectID, updates bson.M) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	Count(ctx context.Context, filter bson.M) (int64, error)
	EnsureIndexes(ctx context.Context) error
}

type CartRepo interface {
	FindByUserID(ctx context.Context, userID primitive.ObjectID) (*models.Cart, error)
	Create(ctx context.Context, cart *models.Cart) error
	ReplaceItems(ctx context.Context, userID primitive.ObjectID, items []models.CartItem) error
	Clear(ctx context.Context, userID primitive.ObjectID) error
	EnsureIndexes(ctx context.Context) error
}

type WishlistRepo interface {
	FindByUserID(ctx context.Context, userID primitive.ObjectID) (*models.Wishlist, error)
	Create(ctx context.Context, wishlist *models.Wishlist) error
	ReplaceItems(ctx context.Context, userID primitive.ObjectID, items []models.WishlistItem) error
	EnsureIndexes(ctx context.Context) error
}

type CategoryRepo interface {
	FindAll(ctx context.Context) ([]models.Category, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Category, error)
	FindByName(ctx context.Context, name string) (*models.Category, error)
	// FindOrCreateByName is a single upsert at the store boundary, so two
	// concurrent callers with the same name cannot create duplicates.
	FindOrCreateByName(ctx context.Context, name string) (*models.Category, error)
	Create(ctx context.Context, category *models.Category) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	HasProducts(ctx context.Context, categoryID primitive.ObjectID) (bool, error)
	EnsureIndexes(ctx context.Context) error
}

type UserRepo interface {
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	Find(ctx context.Context, page, limit int) ([]models.User, int64, error)
	Count(ctx context.Context, filter bson.M) (int64, error)
	Update(ctx context.Context, id primitive.ObjectID, updates bson.M) (int64, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	EnsureIndexes(ctx context.Context) error
}
