package services

import (
	"context"
	"fmt"
	"time"

	apperrors "commerce-api/common/errors"
	"commerce-api/mail"
	"commerce-api/models"
	"commerce-api/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type OrderItemRequest struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

type CreateOrderRequest struct {
	DeliveryAddress string             `json:"deliveryAddress"`
	PhoneNumber     string             `json:"phoneNumber"`
	PaymentMethod   string             `json:"paymentMethod"`
	CartItems       []OrderItemRequest `json:"cartItems"`
}

type OrderListResponse struct {
	Orders     []models.Order `json:"orders"`
	Pagination Pagination     `json:"pagination"`
}

type TrackingInfo struct {
	OrderID        primitive.ObjectID `json:"orderId"`
	Status         string             `json:"status"`
	TrackingNumber string             `json:"trackingNumber"`
	OrderDate      time.Time          `json:"orderDate"`
}

type OrderService struct {
	orderRepo   repository.OrderRepo
	productRepo repository.ProductRepo
	cartRepo    repository.CartRepo
	userRepo    repository.UserRepo
	mailer      mail.EmailSender
}

func NewOrderService(orderRepo repository.OrderRepo, productRepo repository.ProductRepo, cartRepo repository.CartRepo, userRepo repository.UserRepo, mailer mail.EmailSender) *OrderService {
	return &OrderService{
		orderRepo:   orderRepo,
		productRepo: productRepo,
		cartRepo:    cartRepo,
		userRepo:    userRepo,
		mailer:      mailer,
	}
}

// PlaceOrder runs the checkout in two phases. Phase one validates every
// requested line against current stock and snapshots prices; phase two
// commits the decrements with conditional updates. A decrement lost to a
// concurrent checkout re-increments the lines committed before it, so a
// failed order never leaves stock partially consumed.
func (s *OrderService) PlaceOrder(ctx context.Context, userID string, req *CreateOrderRequest) (*models.Order, *apperrors.Error) {
	uid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, apperrors.Validation("Invalid user ID format")
	}

	if req.DeliveryAddress == "" || req.PhoneNumber == "" || len(req.CartItems) == 0 {
		return nil, apperrors.Validation("Please provide all required fields")
	}

	paymentMethod := req.PaymentMethod
	if paymentMethod == "" {
		paymentMethod = models.PaymentCashOnDelivery
	}
	if !models.ValidPaymentMethod(paymentMethod) {
		return nil, apperrors.Validation("Invalid payment method")
	}

	// Phase 1: validate and snapshot prices, in input order.
	var totalAmount float64
	items := make([]models.OrderItem, 0, len(req.CartItems))
	names := make([]string, 0, len(req.CartItems))

	for _, item := range req.CartItems {
		if item.Quantity < 1 {
			return nil, apperrors.Validation("Quantity must be at least 1")
		}

		pid, err := primitive.ObjectIDFromHex(item.ProductID)
		if err != nil {
			return nil, apperrors.Validation(fmt.Sprintf("Invalid product ID %s", item.ProductID))
		}

		product, err := s.productRepo.FindByID(ctx, pid)
		if err != nil {
			if err == mongo.ErrNoDocuments {
				return nil, apperrors.NotFound(fmt.Sprintf("Product %s not found", item.ProductID))
			}
			return nil, apperrors.Upstream("Error creating order", err)
		}

		if product.Stock < item.Quantity {
			return nil, apperrors.InsufficientStock(fmt.Sprintf("Insufficient stock for %s", product.Name))
		}

		totalAmount += product.Price * float64(item.Quantity)
		items = append(items, models.OrderItem{
			ProductID: pid,
			Quantity:  item.Quantity,
			Price:     product.Price,
		})
		names = append(names, product.Name)
	}

	// Phase 2: commit the decrements. The conditional update is the real
	// stock check; phase 1 only produces friendlier early failures.
	for i, item := range items {
		if err := s.productRepo.DecrementStock(ctx, item.ProductID, item.Quantity); err != nil {
			s.rollbackDecrements(ctx, items[:i])
			if err == repository.ErrInsufficientStock {
				return nil, apperrors.InsufficientStock(fmt.Sprintf("Insufficient stock for %s", names[i]))
			}
			return nil, apperrors.Upstream("Error creating order", err)
		}
	}

	now := time.Now().UTC()
	order := &models.Order{
		ID:              primitive.NewObjectID(),
		UserID:          uid,
		Items:           items,
		TotalAmount:     totalAmount,
		ShippingFee:     models.DefaultShippingFee,
		DeliveryAddress: req.DeliveryAddress,
		PhoneNumber:     req.PhoneNumber,
		PaymentMethod:   paymentMethod,
		Status:          models.OrderStatusPending,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.orderRepo.Create(ctx, order); err != nil {
		s.rollbackDecrements(ctx, items)
		return nil, apperrors.Upstream("Error creating order", err)
	}

	// Clearing the cart is not worth failing a persisted order over.
	if err := s.cartRepo.Clear(ctx, uid); err != nil {
		zap.L().Warn("failed to clear cart after checkout",
			zap.String("user_id", userID), zap.Error(err))
	}

	go s.sendConfirmation(order)

	return order, nil
}

func (s *OrderService) rollbackDecrements(ctx context.Context, committed []models.OrderItem) {
	for _, item := range committed {
		if err := s.productRepo.IncrementStock(ctx, item.ProductID, item.Quantity); err != nil {
			zap.L().Error("failed to restore stock after aborted checkout",
				zap.String("product_id", item.ProductID.Hex()),
				zap.Int("quantity", item.Quantity),
				zap.Error(err))
		}
	}
}

// sendConfirmation emails the buyer. Best-effort: any failure is logged
// and never affects the order that triggered it.
func (s *OrderService) sendConfirmation(order *models.Order) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	user, err := s.userRepo.FindByID(ctx, order.UserID)
	if err != nil {
		zap.L().Warn("order confirmation skipped: user lookup failed",
			zap.String("order_id", order.ID.Hex()), zap.Error(err))
		return
	}

	body := mail.OrderConfirmationBody(order.ID.Hex(), order.TotalAmount+order.ShippingFee, order.DeliveryAddress)
	if _, err := s.mailer.SendEmail(ctx, user.Email, mail.OrderConfirmationSubject, body); err != nil {
		zap.L().Warn("order confirmation email failed",
			zap.String("order_id", order.ID.Hex()), zap.Error(err))
	}
}

// GetUserOrders retrieves paginated orders for a specific user
func (s *OrderService) GetUserOrders(ctx context.Context, userID string, page, limit int) (*OrderListResponse, *apperrors.Error) {
	uid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, apperrors.Validation("Invalid user ID format")
	}

	orders, total, err := s.orderRepo.FindByUserID(ctx, uid, page, limit)
	if err != nil {
		return nil, apperrors.Upstream("Error fetching orders", err)
	}
	if orders == nil {
		orders = []models.Order{}
	}

	return &OrderListResponse{
		Orders:     orders,
		Pagination: paginate(total, page, limit),
	}, nil
}

// GetOrderByID retrieves a specific order, visible to its owner or an admin.
func (s *OrderService) GetOrderByID(ctx context.Context, userID, role, orderID string) (*models.Order, *apperrors.Error) {
	uid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, apperrors.Validation("Invalid user ID format")
	}
	oid, err := primitive.ObjectIDFromHex(orderID)
	if err != nil {
		return nil, apperrors.Validation("Invalid order ID format")
	}

	order, err := s.orderRepo.FindByID(ctx, oid)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, apperrors.NotFound("Order not found")
		}
		return nil, apperrors.Upstream("Error fetching order", err)
	}

	if order.UserID != uid && role != models.RoleAdmin {
		return nil, apperrors.Forbidden("Not authorized")
	}
	return order, nil
}

// TrackOrder returns the shipping status of an order owned by the caller.
func (s *OrderService) TrackOrder(ctx context.Context, userID, orderID string) (*TrackingInfo, *apperrors.Error) {
	uid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, apperrors.Validation("Invalid user ID format")
	}
	oid, err := primitive.ObjectIDFromHex(orderID)
	if err != nil {
		return nil, apperrors.Validation("Invalid order ID format")
	}

	order, err := s.orderRepo.FindByID(ctx, oid)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, apperrors.NotFound("Order not found")
		}
		return nil, apperrors.Upstream("Error tracking order", err)
	}

	if order.UserID != uid {
		return nil, apperrors.Forbidden("Not authorized")
	}

	tracking := order.TrackingNumber
	if tracking == "" {
		tracking = "N/A"
	}
	return &TrackingInfo{
		OrderID:        order.ID,
		Status:         order.Status,
		TrackingNumber: tracking,
		OrderDate:      order.CreatedAt,
	}, nil
}
