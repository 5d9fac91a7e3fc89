package services

import (
	"context"
	"sync"
	"testing"
	"time"

	apperrors "commerce-api/common/errors"
	"commerce-api/models"
	"commerce-api/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func newTestOrderService(products *fakeProductRepo, orders *fakeOrderRepo, carts *fakeCartRepo, users *fakeUserRepo, mailer *recordingSender) *OrderService {
	return NewOrderService(orders, products, carts, users, mailer)
}

func testUser() *models.User {
	return &models.User{
		ID:    primitive.NewObjectID(),
		Name:  "Test Buyer",
		Email: "buyer@example.com",
		Role:  models.RoleUser,
	}
}

func TestPlaceOrder(t *testing.T) {
	ctx := context.Background()

	t.Run("computes totals from snapshot prices", func(t *testing.T) {
		user := testUser()
		p1 := &models.Product{ID: primitive.NewObjectID(), Name: "Shirt", Price: 19.99, Stock: 10}
		p2 := &models.Product{ID: primitive.NewObjectID(), Name: "Shoes", Price: 59.50, Stock: 5}

		products := newFakeProductRepo(p1, p2)
		orders := newFakeOrderRepo()
		carts := newFakeCartRepo(&models.Cart{ID: primitive.NewObjectID(), UserID: user.ID})
		mailer := newRecordingSender(false)
		svc := newTestOrderService(products, orders, carts, newFakeUserRepo(user), mailer)

		order, appErr := svc.PlaceOrder(ctx, user.ID.Hex(), &CreateOrderRequest{
			DeliveryAddress: "1 Main St",
			PhoneNumber:     "555-0100",
			CartItems: []OrderItemRequest{
				{ProductID: p1.ID.Hex(), Quantity: 2},
				{ProductID: p2.ID.Hex(), Quantity: 1},
			},
		})
		require.Nil(t, appErr)

		assert.InDelta(t, 2*19.99+59.50, order.TotalAmount, 0.001)
		assert.Equal(t, float64(models.DefaultShippingFee), order.ShippingFee)
		assert.Equal(t, models.OrderStatusPending, order.Status)
		assert.Equal(t, models.PaymentCashOnDelivery, order.PaymentMethod)
		require.Len(t, order.Items, 2)
		assert.Equal(t, 19.99, order.Items[0].Price)

		assert.Equal(t, 8, products.stock(p1.ID))
		assert.Equal(t, 4, products.stock(p2.ID))
		assert.True(t, carts.cleared)

		mailer.waitForSend(t)
		assert.Equal(t, []string{user.Email}, mailer.calls)
	})

	t.Run("snapshot prices survive later price changes", func(t *testing.T) {
		user := testUser()
		p := &models.Product{ID: primitive.NewObjectID(), Name: "Shirt", Price: 19.99, Stock: 10}
		products := newFakeProductRepo(p)
		orders := newFakeOrderRepo()
		svc := newTestOrderService(products, orders, newFakeCartRepo(), newFakeUserRepo(user), newRecordingSender(false))

		placed, appErr := svc.PlaceOrder(ctx, user.ID.Hex(), &CreateOrderRequest{
			DeliveryAddress: "1 Main St",
			PhoneNumber:     "555-0100",
			CartItems:       []OrderItemRequest{{ProductID: p.ID.Hex(), Quantity: 2}},
		})
		require.Nil(t, appErr)

		// Reprice the product after checkout; the order keeps what the
		// buyer actually paid.
		_, err := products.Update(ctx, p.ID, bson.M{"price": 99.99})
		require.NoError(t, err)

		got, appErr := svc.GetOrderByID(ctx, user.ID.Hex(), models.RoleUser, placed.ID.Hex())
		require.Nil(t, appErr)
		require.Len(t, got.Items, 1)
		assert.Equal(t, 19.99, got.Items[0].Price)
		assert.InDelta(t, 2*19.99, got.TotalAmount, 0.001)
	})

	t.Run("rejects when stock is short", func(t *testing.T) {
		user := testUser()
		p := &models.Product{ID: primitive.NewObjectID(), Name: "Shirt", Price: 10, Stock: 1}
		products := newFakeProductRepo(p)
		svc := newTestOrderService(products, newFakeOrderRepo(), newFakeCartRepo(), newFakeUserRepo(user), newRecordingSender(false))

		_, appErr := svc.PlaceOrder(ctx, user.ID.Hex(), &CreateOrderRequest{
			DeliveryAddress: "1 Main St",
			PhoneNumber:     "555-0100",
			CartItems:       []OrderItemRequest{{ProductID: p.ID.Hex(), Quantity: 2}},
		})
		require.NotNil(t, appErr)
		assert.Equal(t, apperrors.KindInsufficientStock, appErr.Kind)
		assert.Contains(t, appErr.Message, "Shirt")
		assert.Equal(t, 1, products.stock(p.ID))
	})

	t.Run("unknown product fails with not found", func(t *testing.T) {
		user := testUser()
		svc := newTestOrderService(newFakeProductRepo(), newFakeOrderRepo(), newFakeCartRepo(), newFakeUserRepo(user), newRecordingSender(false))

		_, appErr := svc.PlaceOrder(ctx, user.ID.Hex(), &CreateOrderRequest{
			DeliveryAddress: "1 Main St",
			PhoneNumber:     "555-0100",
			CartItems:       []OrderItemRequest{{ProductID: primitive.NewObjectID().Hex(), Quantity: 1}},
		})
		require.NotNil(t, appErr)
		assert.Equal(t, apperrors.KindNotFound, appErr.Kind)
	})

	t.Run("missing fields rejected", func(t *testing.T) {
		user := testUser()
		svc := newTestOrderService(newFakeProductRepo(), newFakeOrderRepo(), newFakeCartRepo(), newFakeUserRepo(user), newRecordingSender(false))

		_, appErr := svc.PlaceOrder(ctx, user.ID.Hex(), &CreateOrderRequest{
			PhoneNumber: "555-0100",
			CartItems:   []OrderItemRequest{{ProductID: primitive.NewObjectID().Hex(), Quantity: 1}},
		})
		require.NotNil(t, appErr)
		assert.Equal(t, apperrors.KindValidation, appErr.Kind)
	})

	t.Run("mid-commit failure restores earlier decrements", func(t *testing.T) {
		user := testUser()
		p1 := &models.Product{ID: primitive.NewObjectID(), Name: "First", Price: 10, Stock: 5}
		p2 := &models.Product{ID: primitive.NewObjectID(), Name: "Second", Price: 20, Stock: 5}

		products := newFakeProductRepo(p1, p2)
		// Second line loses its conditional update, as if a concurrent
		// checkout drained it between validation and commit.
		products.failDecrementFor[p2.ID] = repository.ErrInsufficientStock

		orders := newFakeOrderRepo()
		svc := newTestOrderService(products, orders, newFakeCartRepo(), newFakeUserRepo(user), newRecordingSender(false))

		_, appErr := svc.PlaceOrder(ctx, user.ID.Hex(), &CreateOrderRequest{
			DeliveryAddress: "1 Main St",
			PhoneNumber:     "555-0100",
			CartItems: []OrderItemRequest{
				{ProductID: p1.ID.Hex(), Quantity: 2},
				{ProductID: p2.ID.Hex(), Quantity: 1},
			},
		})
		require.NotNil(t, appErr)
		assert.Equal(t, apperrors.KindInsufficientStock, appErr.Kind)
		assert.Contains(t, appErr.Message, "Second")

		assert.Equal(t, 5, products.stock(p1.ID))
		assert.Equal(t, 0, orders.count())
	})

	t.Run("persist failure restores all decrements", func(t *testing.T) {
		user := testUser()
		p := &models.Product{ID: primitive.NewObjectID(), Name: "Shirt", Price: 10, Stock: 3}
		products := newFakeProductRepo(p)
		orders := newFakeOrderRepo()
		orders.failCreate = assert.AnError
		svc := newTestOrderService(products, orders, newFakeCartRepo(), newFakeUserRepo(user), newRecordingSender(false))

		_, appErr := svc.PlaceOrder(ctx, user.ID.Hex(), &CreateOrderRequest{
			DeliveryAddress: "1 Main St",
			PhoneNumber:     "555-0100",
			CartItems:       []OrderItemRequest{{ProductID: p.ID.Hex(), Quantity: 2}},
		})
		require.NotNil(t, appErr)
		assert.Equal(t, apperrors.KindUpstream, appErr.Kind)
		assert.Equal(t, 3, products.stock(p.ID))
	})

	t.Run("concurrent orders for the last unit: exactly one wins", func(t *testing.T) {
		user1, user2 := testUser(), testUser()
		user2.Email = "other@example.com"
		p := &models.Product{ID: primitive.NewObjectID(), Name: "Last Unit", Price: 99, Stock: 1}

		products := newFakeProductRepo(p)
		orders := newFakeOrderRepo()
		users := newFakeUserRepo(user1, user2)
		svc := newTestOrderService(products, orders, newFakeCartRepo(), users, newRecordingSender(false))

		req := &CreateOrderRequest{
			DeliveryAddress: "1 Main St",
			PhoneNumber:     "555-0100",
			CartItems:       []OrderItemRequest{{ProductID: p.ID.Hex(), Quantity: 1}},
		}

		var wg sync.WaitGroup
		results := make([]*apperrors.Error, 2)
		for i, uid := range []string{user1.ID.Hex(), user2.ID.Hex()} {
			wg.Add(1)
			go func(i int, uid string) {
				defer wg.Done()
				_, results[i] = svc.PlaceOrder(ctx, uid, req)
			}(i, uid)
		}
		wg.Wait()

		successes, stockFails := 0, 0
		for _, r := range results {
			switch {
			case r == nil:
				successes++
			case r.Kind == apperrors.KindInsufficientStock:
				stockFails++
			}
		}
		assert.Equal(t, 1, successes)
		assert.Equal(t, 1, stockFails)
		assert.Equal(t, 0, products.stock(p.ID))
		assert.Equal(t, 1, orders.count())
	})

	t.Run("email failure does not fail the order", func(t *testing.T) {
		user := testUser()
		p := &models.Product{ID: primitive.NewObjectID(), Name: "Shirt", Price: 10, Stock: 3}
		mailer := newRecordingSender(true)
		svc := newTestOrderService(newFakeProductRepo(p), newFakeOrderRepo(), newFakeCartRepo(), newFakeUserRepo(user), mailer)

		order, appErr := svc.PlaceOrder(ctx, user.ID.Hex(), &CreateOrderRequest{
			DeliveryAddress: "1 Main St",
			PhoneNumber:     "555-0100",
			CartItems:       []OrderItemRequest{{ProductID: p.ID.Hex(), Quantity: 1}},
		})
		require.Nil(t, appErr)
		require.NotNil(t, order)
		mailer.waitForSend(t)
	})

	t.Run("cart clear failure does not fail the order", func(t *testing.T) {
		user := testUser()
		p := &models.Product{ID: primitive.NewObjectID(), Name: "Shirt", Price: 10, Stock: 3}
		carts := newFakeCartRepo(&models.Cart{ID: primitive.NewObjectID(), UserID: user.ID})
		carts.failClear = assert.AnError
		svc := newTestOrderService(newFakeProductRepo(p), newFakeOrderRepo(), carts, newFakeUserRepo(user), newRecordingSender(false))

		order, appErr := svc.PlaceOrder(ctx, user.ID.Hex(), &CreateOrderRequest{
			DeliveryAddress: "1 Main St",
			PhoneNumber:     "555-0100",
			CartItems:       []OrderItemRequest{{ProductID: p.ID.Hex(), Quantity: 1}},
		})
		require.Nil(t, appErr)
		require.NotNil(t, order)
	})
}

func TestGetOrderByID(t *testing.T) {
	ctx := context.Background()
	owner, stranger := testUser(), testUser()
	order := &models.Order{
		ID:        primitive.NewObjectID(),
		UserID:    owner.ID,
		Status:    models.OrderStatusPending,
		CreatedAt: time.Now().UTC(),
	}
	orders := newFakeOrderRepo(order)
	svc := newTestOrderService(newFakeProductRepo(), orders, newFakeCartRepo(), newFakeUserRepo(owner, stranger), newRecordingSender(false))

	t.Run("owner can read", func(t *testing.T) {
		got, appErr := svc.GetOrderByID(ctx, owner.ID.Hex(), models.RoleUser, order.ID.Hex())
		require.Nil(t, appErr)
		assert.Equal(t, order.ID, got.ID)
	})

	t.Run("stranger is forbidden", func(t *testing.T) {
		_, appErr := svc.GetOrderByID(ctx, stranger.ID.Hex(), models.RoleUser, order.ID.Hex())
		require.NotNil(t, appErr)
		assert.Equal(t, apperrors.KindAuthorization, appErr.Kind)
	})

	t.Run("admin can read any order", func(t *testing.T) {
		got, appErr := svc.GetOrderByID(ctx, stranger.ID.Hex(), models.RoleAdmin, order.ID.Hex())
		require.Nil(t, appErr)
		assert.Equal(t, order.ID, got.ID)
	})

	t.Run("missing order is not found", func(t *testing.T) {
		_, appErr := svc.GetOrderByID(ctx, owner.ID.Hex(), models.RoleUser, primitive.NewObjectID().Hex())
		require.NotNil(t, appErr)
		assert.Equal(t, apperrors.KindNotFound, appErr.Kind)
	})
}

func TestTrackOrder(t *testing.T) {
	ctx := context.Background()
	owner := testUser()
	order := &models.Order{
		ID:        primitive.NewObjectID(),
		UserID:    owner.ID,
		Status:    models.OrderStatusPending,
		CreatedAt: time.Now().UTC(),
	}
	svc := newTestOrderService(newFakeProductRepo(), newFakeOrderRepo(order), newFakeCartRepo(), newFakeUserRepo(owner), newRecordingSender(false))

	tracking, appErr := svc.TrackOrder(ctx, owner.ID.Hex(), order.ID.Hex())
	require.Nil(t, appErr)
	assert.Equal(t, models.OrderStatusPending, tracking.Status)
	assert.Equal(t, "N/A", tracking.TrackingNumber)
}
