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

type AddWishlistItemRequest struct {
	ProductID string `json:"productId"`
}

type WishlistItemView struct {
	ID      primitive.ObjectID `json:"_id"`
	Product *ProductSummary    `json:"product"`
}

type WishlistView struct {
	ID        primitive.ObjectID `json:"_id"`
	UserID    primitive.ObjectID `json:"user_id"`
	Items     []WishlistItemView `json:"items"`
	UpdatedAt time.Time          `json:"updated_at"`
}

type WishlistService struct {
	wishlistRepo repository.WishlistRepo
	productRepo  repository.ProductRepo
}

func NewWishlistService(wishlistRepo repository.WishlistRepo, productRepo repository.ProductRepo) *WishlistService {
	return &WishlistService{wishlistRepo: wishlistRepo, productRepo: productRepo}
}

// GetWishlist returns the caller's wishlist with products populated; a
// missing wishlist reads as empty.
func (s *WishlistService) GetWishlist(ctx context.Context, userID string) (*WishlistView, *apperrors.Error) {
	uid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, apperrors.Validation("Invalid user ID format")
	}

	wishlist, err := s.wishlistRepo.FindByUserID(ctx, uid)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return &WishlistView{UserID: uid, Items: []WishlistItemView{}}, nil
		}
		return nil, apperrors.Upstream("Error fetching wishlist", err)
	}

	return s.buildView(ctx, wishlist)
}

// AddItem puts a product on the wishlist; adding it twice is a no-op.
func (s *WishlistService) AddItem(ctx context.Context, userID string, req *AddWishlistItemRequest) (*WishlistView, *apperrors.Error) {
	uid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, apperrors.Validation("Invalid user ID format")
	}
	pid, err := primitive.ObjectIDFromHex(req.ProductID)
	if err != nil {
		return nil, apperrors.Validation("Invalid product ID format")
	}

	if _, err := s.productRepo.FindByID(ctx, pid); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, apperrors.NotFound("Product not found")
		}
		return nil, apperrors.Upstream("Error updating wishlist", err)
	}

	wishlist, err := s.wishlistRepo.FindByUserID(ctx, uid)
	if err != nil {
		if err != mongo.ErrNoDocuments {
			return nil, apperrors.Upstream("Error updating wishlist", err)
		}
		now := time.Now().UTC()
		wishlist = &models.Wishlist{
			ID:        primitive.NewObjectID(),
			UserID:    uid,
			Items:     []models.WishlistItem{},
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := s.wishlistRepo.Create(ctx, wishlist); err != nil && !mongo.IsDuplicateKeyError(err) {
			return nil, apperrors.Upstream("Error updating wishlist", err)
		}
	}

	for _, item := range wishlist.Items {
		if item.ProductID == pid {
			return s.buildView(ctx, wishlist)
		}
	}

	wishlist.Items = append(wishlist.Items, models.WishlistItem{
		ID:        primitive.NewObjectID(),
		ProductID: pid,
	})

	if err := s.wishlistRepo.ReplaceItems(ctx, uid, wishlist.Items); err != nil {
		return nil, apperrors.Upstream("Error updating wishlist", err)
	}

	return s.buildView(ctx, wishlist)
}

// RemoveItem deletes a wishlist entry by its item ID.
func (s *WishlistService) RemoveItem(ctx context.Context, userID, itemID string) (*WishlistView, *apperrors.Error) {
	uid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, apperrors.Validation("Invalid user ID format")
	}
	iid, err := primitive.ObjectIDFromHex(itemID)
	if err != nil {
		return nil, apperrors.Validation("Invalid wishlist item ID format")
	}

	wishlist, err := s.wishlistRepo.FindByUserID(ctx, uid)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, apperrors.NotFound("Wishlist not found")
		}
		return nil, apperrors.Upstream("Error updating wishlist", err)
	}

	items := make([]models.WishlistItem, 0, len(wishlist.Items))
	found := false
	for _, item := range wishlist.Items {
		if item.ID == iid {
			found = true
			continue
		}
		items = append(items, item)
	}
	if !found {
		return nil, apperrors.NotFound("Wishlist item not found")
	}

	wishlist.Items = items
	if err := s.wishlistRepo.ReplaceItems(ctx, uid, items); err != nil {
		return nil, apperrors.Upstream("Error updating wishlist", err)
	}

	return s.buildView(ctx, wishlist)
}

func (s *WishlistService) buildView(ctx context.Context, wishlist *models.Wishlist) (*WishlistView, *apperrors.Error) {
	view := &WishlistView{
		ID:        wishlist.ID,
		UserID:    wishlist.UserID,
		Items:     make([]WishlistItemView, 0, len(wishlist.Items)),
		UpdatedAt: wishlist.UpdatedAt,
	}

	for _, item := range wishlist.Items {
		product, err := s.productRepo.FindByID(ctx, item.ProductID)
		if err != nil {
			if err == mongo.ErrNoDocuments {
				continue
			}
			return nil, apperrors.Upstream("Error fetching wishlist", err)
		}
		view.Items = append(view.Items, WishlistItemView{
			ID: item.ID,
			Product: &ProductSummary{
				ID:     product.ID,
				Name:   product.Name,
				Price:  product.Price,
				Images: product.Images,
				Stock:  product.Stock,
			},
		})
	}

	return view, nil
}
