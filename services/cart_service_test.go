package services

import (
	"context"
	"testing"

	apperrors "commerce-api/common/errors"
	"commerce-api/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestCartService(t *testing.T) {
	ctx := context.Background()

	t.Run("missing cart reads as empty", func(t *testing.T) {
		svc := NewCartService(newFakeCartRepo(), newFakeProductRepo())

		view, appErr := svc.GetCart(ctx, primitive.NewObjectID().Hex())
		require.Nil(t, appErr)
		assert.Empty(t, view.Items)
		assert.Equal(t, 0.0, view.Subtotal)
	})

	t.Run("add creates the cart and populates the product", func(t *testing.T) {
		p := &models.Product{ID: primitive.NewObjectID(), Name: "Shirt", Price: 25, Stock: 10}
		svc := NewCartService(newFakeCartRepo(), newFakeProductRepo(p))
		userID := primitive.NewObjectID().Hex()

		view, appErr := svc.AddItem(ctx, userID, &AddCartItemRequest{
			ProductID: p.ID.Hex(), Quantity: 2, Size: "M",
		})
		require.Nil(t, appErr)
		require.Len(t, view.Items, 1)
		assert.Equal(t, "Shirt", view.Items[0].Product.Name)
		assert.Equal(t, 2, view.Items[0].Quantity)
		assert.Equal(t, 50.0, view.Subtotal)
	})

	t.Run("same product, size and color merges into one line", func(t *testing.T) {
		p := &models.Product{ID: primitive.NewObjectID(), Name: "Shirt", Price: 25, Stock: 10}
		svc := NewCartService(newFakeCartRepo(), newFakeProductRepo(p))
		userID := primitive.NewObjectID().Hex()

		_, appErr := svc.AddItem(ctx, userID, &AddCartItemRequest{ProductID: p.ID.Hex(), Quantity: 1, Size: "M"})
		require.Nil(t, appErr)
		view, appErr := svc.AddItem(ctx, userID, &AddCartItemRequest{ProductID: p.ID.Hex(), Quantity: 2, Size: "M"})
		require.Nil(t, appErr)

		require.Len(t, view.Items, 1)
		assert.Equal(t, 3, view.Items[0].Quantity)
	})

	t.Run("different size gets its own line", func(t *testing.T) {
		p := &models.Product{ID: primitive.NewObjectID(), Name: "Shirt", Price: 25, Stock: 10}
		svc := NewCartService(newFakeCartRepo(), newFakeProductRepo(p))
		userID := primitive.NewObjectID().Hex()

		_, appErr := svc.AddItem(ctx, userID, &AddCartItemRequest{ProductID: p.ID.Hex(), Quantity: 1, Size: "M"})
		require.Nil(t, appErr)
		view, appErr := svc.AddItem(ctx, userID, &AddCartItemRequest{ProductID: p.ID.Hex(), Quantity: 1, Size: "L"})
		require.Nil(t, appErr)

		assert.Len(t, view.Items, 2)
	})

	t.Run("adding beyond stock is rejected", func(t *testing.T) {
		p := &models.Product{ID: primitive.NewObjectID(), Name: "Shirt", Price: 25, Stock: 1}
		svc := NewCartService(newFakeCartRepo(), newFakeProductRepo(p))

		_, appErr := svc.AddItem(ctx, primitive.NewObjectID().Hex(), &AddCartItemRequest{ProductID: p.ID.Hex(), Quantity: 2})
		require.NotNil(t, appErr)
		assert.Equal(t, apperrors.KindInsufficientStock, appErr.Kind)
	})

	t.Run("update and remove lines", func(t *testing.T) {
		p := &models.Product{ID: primitive.NewObjectID(), Name: "Shirt", Price: 10, Stock: 10}
		svc := NewCartService(newFakeCartRepo(), newFakeProductRepo(p))
		userID := primitive.NewObjectID().Hex()

		view, appErr := svc.AddItem(ctx, userID, &AddCartItemRequest{ProductID: p.ID.Hex(), Quantity: 1})
		require.Nil(t, appErr)
		itemID := view.Items[0].ID.Hex()

		view, appErr = svc.UpdateItem(ctx, userID, itemID, &UpdateCartItemRequest{Quantity: 5})
		require.Nil(t, appErr)
		assert.Equal(t, 5, view.Items[0].Quantity)
		assert.Equal(t, 50.0, view.Subtotal)

		view, appErr = svc.RemoveItem(ctx, userID, itemID)
		require.Nil(t, appErr)
		assert.Empty(t, view.Items)
	})

	t.Run("deleted product is dropped from the view", func(t *testing.T) {
		p := &models.Product{ID: primitive.NewObjectID(), Name: "Shirt", Price: 10, Stock: 10}
		products := newFakeProductRepo(p)
		svc := NewCartService(newFakeCartRepo(), products)
		userID := primitive.NewObjectID().Hex()

		_, appErr := svc.AddItem(ctx, userID, &AddCartItemRequest{ProductID: p.ID.Hex(), Quantity: 1})
		require.Nil(t, appErr)
		require.NoError(t, products.Delete(ctx, p.ID))

		view, appErr := svc.GetCart(ctx, userID)
		require.Nil(t, appErr)
		assert.Empty(t, view.Items)
	})
}

func TestWishlistService(t *testing.T) {
	ctx := context.Background()

	t.Run("add is idempotent", func(t *testing.T) {
		p := &models.Product{ID: primitive.NewObjectID(), Name: "Shirt", Price: 10, Stock: 10}
		svc := NewWishlistService(newFakeWishlistRepo(), newFakeProductRepo(p))
		userID := primitive.NewObjectID().Hex()

		_, appErr := svc.AddItem(ctx, userID, &AddWishlistItemRequest{ProductID: p.ID.Hex()})
		require.Nil(t, appErr)
		view, appErr := svc.AddItem(ctx, userID, &AddWishlistItemRequest{ProductID: p.ID.Hex()})
		require.Nil(t, appErr)

		assert.Len(t, view.Items, 1)
		assert.Equal(t, "Shirt", view.Items[0].Product.Name)
	})

	t.Run("remove by item id", func(t *testing.T) {
		p := &models.Product{ID: primitive.NewObjectID(), Name: "Shirt", Price: 10, Stock: 10}
		svc := NewWishlistService(newFakeWishlistRepo(), newFakeProductRepo(p))
		userID := primitive.NewObjectID().Hex()

		added, appErr := svc.AddItem(ctx, userID, &AddWishlistItemRequest{ProductID: p.ID.Hex()})
		require.Nil(t, appErr)
		require.Len(t, added.Items, 1)

		view, appErr := svc.RemoveItem(ctx, userID, added.Items[0].ID.Hex())
		require.Nil(t, appErr)
		assert.Empty(t, view.Items)
	})

	t.Run("removing an absent item is not found", func(t *testing.T) {
		p := &models.Product{ID: primitive.NewObjectID(), Name: "Shirt", Price: 10, Stock: 10}
		svc := NewWishlistService(newFakeWishlistRepo(), newFakeProductRepo(p))
		userID := primitive.NewObjectID().Hex()

		_, appErr := svc.AddItem(ctx, userID, &AddWishlistItemRequest{ProductID: p.ID.Hex()})
		require.Nil(t, appErr)

		_, appErr = svc.RemoveItem(ctx, userID, primitive.NewObjectID().Hex())
		require.NotNil(t, appErr)
		assert.Equal(t, apperrors.KindNotFound, appErr.Kind)
	})
}
