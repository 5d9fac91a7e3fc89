package services

import (
	"context"
	"time"

	apperrors "commerce-api/common/errors"
	"commerce-api/models"
	"commerce-api/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type AddCartItemRequest struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
	Size      string `json:"size"`
	Color     string `json:"color"`
}

type UpdateCartItemRequest struct {
	Quantity int `json:"quantity"`
}

// ProductSummary is the populated product slice embedded in cart and
// wishlist views.
type ProductSummary struct {
	ID     primitive.ObjectID    `json:"_id"`
	Name   string                `json:"name"`
	Price  float64               `json:"price"`
	Images []models.ProductImage `json:"images"`
	Stock  int                   `json:"stock"`
}

type CartItemView struct {
	ID       primitive.ObjectID `json:"_id"`
	Product  *ProductSummary    `json:"product"`
	Quantity int                `json:"quantity"`
	Price    float64            `json:"price"`
	Size     string             `json:"size,omitempty"`
	Color    string             `json:"color,omitempty"`
}

type CartView struct {
	ID        primitive.ObjectID `json:"_id"`
	UserID    primitive.ObjectID `json:"user_id"`
	Items     []CartItemView     `json:"items"`
	Subtotal  float64            `json:"subtotal"`
	UpdatedAt time.Time          `json:"updated_at"`
}

type CartService struct {
	cartRepo    repository.CartRepo
	productRepo repository.ProductRepo
}

func NewCartService(cartRepo repository.CartRepo, productRepo repository.ProductRepo) *CartService {
	return &CartService{cartRepo: cartRepo, productRepo: productRepo}
}

// GetCart returns the caller's cart with each line's product populated.
// A missing cart reads as an empty one. Lines whose product has since
// been deleted are dropped from the view.
func (s *CartService) GetCart(ctx context.Context, userID string) (*CartView, *apperrors.Error) {
	uid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, apperrors.Validation("Invalid user ID format")
	}

	cart, err := s.cartRepo.FindByUserID(ctx, uid)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return &CartView{UserID: uid, Items: []CartItemView{}}, nil
		}
		return nil, apperrors.Upstream("Error fetching cart", err)
	}

	return s.buildView(ctx, cart)
}

// AddItem puts a product in the cart. An existing line with the same
// product, size and color has its quantity bumped instead of duplicating.
func (s *CartService) AddItem(ctx context.Context, userID string, req *AddCartItemRequest) (*CartView, *apperrors.Error) {
	uid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, apperrors.Validation("Invalid user ID format")
	}
	pid, err := primitive.ObjectIDFromHex(req.ProductID)
	if err != nil {
		return nil, apperrors.Validation("Invalid product ID format")
	}
	if req.Quantity < 1 {
		return nil, apperrors.Validation("Quantity must be at least 1")
	}

	product, err := s.productRepo.FindByID(ctx, pid)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, apperrors.NotFound("Product not found")
		}
		return nil, apperrors.Upstream("Error adding to cart", err)
	}
	if product.Stock < req.Quantity {
		return nil, apperrors.InsufficientStock("Insufficient stock for " + product.Name)
	}

	cart, err := s.cartRepo.FindByUserID(ctx, uid)
	if err != nil {
		if err != mongo.ErrNoDocuments {
			return nil, apperrors.Upstream("Error adding to cart", err)
		}
		now := time.Now().UTC()
		cart = &models.Cart{
			ID:        primitive.NewObjectID(),
			UserID:    uid,
			Items:     []models.CartItem{},
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := s.cartRepo.Create(ctx, cart); err != nil && !mongo.IsDuplicateKeyError(err) {
			return nil, apperrors.Upstream("Error adding to cart", err)
		}
	}

	merged := false
	for i := range cart.Items {
		line := &cart.Items[i]
		if line.ProductID == pid && line.Size == req.Size && line.Color == req.Color {
			line.Quantity += req.Quantity
			line.Price = product.Price
			merged = true
			break
		}
	}
	if !merged {
		cart.Items = append(cart.Items, models.CartItem{
			ID:        primitive.NewObjectID(),
			ProductID: pid,
			Quantity:  req.Quantity,
			Price:     product.Price,
			Size:      req.Size,
			Color:     req.Color,
		})
	}

	if err := s.cartRepo.ReplaceItems(ctx, uid, cart.Items); err != nil {
		return nil, apperrors.Upstream("Error adding to cart", err)
	}

	return s.buildView(ctx, cart)
}

// UpdateItem sets the quantity of a cart line.
func (s *CartService) UpdateItem(ctx context.Context, userID, itemID string, req *UpdateCartItemRequest) (*CartView, *apperrors.Error) {
	uid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, apperrors.Validation("Invalid user ID format")
	}
	iid, err := primitive.ObjectIDFromHex(itemID)
	if err != nil {
		return nil, apperrors.Validation("Invalid item ID format")
	}
	if req.Quantity < 1 {
		return nil, apperrors.Validation("Quantity must be at least 1")
	}

	cart, err := s.cartRepo.FindByUserID(ctx, uid)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, apperrors.NotFound("Cart not found")
		}
		return nil, apperrors.Upstream("Error updating cart", err)
	}

	found := false
	for i := range cart.Items {
		if cart.Items[i].ID == iid {
			cart.Items[i].Quantity = req.Quantity
			found = true
			break
		}
	}
	if !found {
		return nil, apperrors.NotFound("Cart item not found")
	}

	if err := s.cartRepo.ReplaceItems(ctx, uid, cart.Items); err != nil {
		return nil, apperrors.Upstream("Error updating cart", err)
	}

	return s.buildView(ctx, cart)
}

// RemoveItem deletes a cart line.
func (s *CartService) RemoveItem(ctx context.Context, userID, itemID string) (*CartView, *apperrors.Error) {
	uid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, apperrors.Validation("Invalid user ID format")
	}
	iid, err := primitive.ObjectIDFromHex(itemID)
	if err != nil {
		return nil, apperrors.Validation("Invalid item ID format")
	}

	cart, err := s.cartRepo.FindByUserID(ctx, uid)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, apperrors.NotFound("Cart not found")
		}
		return nil, apperrors.Upstream("Error updating cart", err)
	}

	items := make([]models.CartItem, 0, len(cart.Items))
	found := false
	for _, line := range cart.Items {
		if line.ID == iid {
			found = true
			continue
		}
		items = append(items, line)
	}
	if !found {
		return nil, apperrors.NotFound("Cart item not found")
	}

	cart.Items = items
	if err := s.cartRepo.ReplaceItems(ctx, uid, items); err != nil {
		return nil, apperrors.Upstream("Error updating cart", err)
	}

	return s.buildView(ctx, cart)
}

// ClearCart empties the caller's cart.
func (s *CartService) ClearCart(ctx context.Context, userID string) *apperrors.Error {
	uid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return apperrors.Validation("Invalid user ID format")
	}
	if err := s.cartRepo.Clear(ctx, uid); err != nil {
		return apperrors.Upstream("Error clearing cart", err)
	}
	return nil
}

func (s *CartService) buildView(ctx context.Context, cart *models.Cart) (*CartView, *apperrors.Error) {
	view := &CartView{
		ID:        cart.ID,
		UserID:    cart.UserID,
		Items:     make([]CartItemView, 0, len(cart.Items)),
		UpdatedAt: cart.UpdatedAt,
	}

	for _, line := range cart.Items {
		product, err := s.productRepo.FindByID(ctx, line.ProductID)
		if err != nil {
			if err == mongo.ErrNoDocuments {
				continue
			}
			return nil, apperrors.Upstream("Error fetching cart", err)
		}
		view.Items = append(view.Items, CartItemView{
			ID: line.ID,
			Product: &ProductSummary{
				ID:     product.ID,
				Name:   product.Name,
				Price:  product.Price,
				Images: product.Images,
				Stock:  product.Stock,
			},
			Quantity: line.Quantity,
			Price:    line.Price,
			Size:     line.Size,
			Color:    line.Color,
		})
		view.Subtotal += line.Price * float64(line.Quantity)
	}
	view.Subtotal = round2(view.Subtotal)

	return view, nil
}
