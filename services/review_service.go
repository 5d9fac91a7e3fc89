package services

import (
	"context"
	"time"

	apperrors "commerce-api/common/errors"
	"commerce-api/models"
	"commerce-api/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type AddReviewRequest struct {
	Rating  int    `json:"rating"`
	Title   string `json:"title"`
	Comment string `json:"comment"`
}

type UpdateReviewRequest struct {
	Rating  *int    `json:"rating"`
	Title   *string `json:"title"`
	Comment *string `json:"comment"`
}

type ReviewListResponse struct {
	Reviews    []models.Review `json:"reviews"`
	Pagination Pagination      `json:"pagination"`
}

type ReviewService struct {
	reviewRepo  repository.ReviewRepo
	productRepo repository.ProductRepo
	orderRepo   repository.OrderRepo
}

func NewReviewService(reviewRepo repository.ReviewRepo, productRepo repository.ProductRepo, orderRepo repository.OrderRepo) *ReviewService {
	return &ReviewService{
		reviewRepo:  reviewRepo,
		productRepo: productRepo,
		orderRepo:   orderRepo,
	}
}

// AddReview creates a review for a product the caller has actually bought.
// Purchase proof is a delivered order containing the product; one review per
// (product, user) pair, backed by a unique index so racing requests cannot
// slip a duplicate through.
func (s *ReviewService) AddReview(ctx context.Context, userID, productID string, req *AddReviewRequest) (*models.Review, *apperrors.Error) {
	uid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, apperrors.Validation("Invalid user ID format")
	}
	pid, err := primitive.ObjectIDFromHex(productID)
	if err != nil {
		return nil, apperrors.Validation("Invalid product ID format")
	}

	if req.Rating < 1 || req.Rating > 5 {
		return nil, apperrors.Validation("Rating must be between 1 and 5")
	}

	if _, err := s.productRepo.FindByID(ctx, pid); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, apperrors.NotFound("Product not found")
		}
		return nil, apperrors.Upstream("Error adding review", err)
	}

	orders, err := s.orderRepo.Find(ctx, bson.M{
		"user_id":          uid,
		"status":           models.OrderStatusDelivered,
		"items.product_id": pid,
	})
	if err != nil {
		return nil, apperrors.Upstream("Error adding review", err)
	}
	if len(orders) == 0 {
		return nil, apperrors.Forbidden("You can only review products you have purchased")
	}

	existing, err := s.reviewRepo.FindOneByProductAndUser(ctx, pid, uid)
	if err != nil && err != mongo.ErrNoDocuments {
		return nil, apperrors.Upstream("Error adding review", err)
	}
	if existing != nil {
		return nil, apperrors.Conflict("You have already reviewed this product")
	}

	now := time.Now().UTC()
	review := &models.Review{
		ID:        primitive.NewObjectID(),
		ProductID: pid,
		UserID:    uid,
		OrderID:   orders[0].ID,
		Rating:    req.Rating,
		Title:     req.Title,
		Comment:   req.Comment,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.reviewRepo.Create(ctx, review); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, apperrors.Conflict("You have already reviewed this product")
		}
		return nil, apperrors.Upstream("Error adding review", err)
	}

	s.recomputeProductRating(ctx, pid)

	return review, nil
}

// UpdateReview edits the caller's own review.
func (s *ReviewService) UpdateReview(ctx context.Context, userID, reviewID string, req *UpdateReviewRequest) (*models.Review, *apperrors.Error) {
	uid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, apperrors.Validation("Invalid user ID format")
	}
	rid, err := primitive.ObjectIDFromHex(reviewID)
	if err != nil {
		return nil, apperrors.Validation("Invalid review ID format")
	}

	review, err := s.reviewRepo.FindByID(ctx, rid)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, apperrors.NotFound("Review not found")
		}
		return nil, apperrors.Upstream("Error updating review", err)
	}
	if review.UserID != uid {
		return nil, apperrors.Forbidden("Not authorized to update this review")
	}

	updates := bson.M{"updated_at": time.Now().UTC()}
	if req.Rating != nil {
		if *req.Rating < 1 || *req.Rating > 5 {
			return nil, apperrors.Validation("Rating must be between 1 and 5")
		}
		updates["rating"] = *req.Rating
	}
	if req.Title != nil {
		updates["title"] = *req.Title
	}
	if req.Comment != nil {
		updates["comment"] = *req.Comment
	}

	if err := s.reviewRepo.Update(ctx, rid, updates); err != nil {
		return nil, apperrors.Upstream("Error updating review", err)
	}

	if req.Rating != nil {
		s.recomputeProductRating(ctx, review.ProductID)
	}

	updated, err := s.reviewRepo.FindByID(ctx, rid)
	if err != nil {
		return nil, apperrors.Upstream("Error updating review", err)
	}
	return updated, nil
}

// DeleteReview removes a review; the author or an admin may delete it.
func (s *ReviewService) DeleteReview(ctx context.Context, userID, role, reviewID string) *apperrors.Error {
	uid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return apperrors.Validation("Invalid user ID format")
	}
	rid, err := primitive.ObjectIDFromHex(reviewID)
	if err != nil {
		return apperrors.Validation("Invalid review ID format")
	}

	review, err := s.reviewRepo.FindByID(ctx, rid)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return apperrors.NotFound("Review not found")
		}
		return apperrors.Upstream("Error deleting review", err)
	}
	if review.UserID != uid && role != models.RoleAdmin {
		return apperrors.Forbidden("Not authorized to delete this review")
	}

	if err := s.reviewRepo.Delete(ctx, rid); err != nil {
		return apperrors.Upstream("Error deleting review", err)
	}

	s.recomputeProductRating(ctx, review.ProductID)

	return nil
}

// GetProductReviews retrieves paginated reviews for a product
func (s *ReviewService) GetProductReviews(ctx context.Context, productID string, page, limit int) (*ReviewListResponse, *apperrors.Error) {
	pid, err := primitive.ObjectIDFromHex(productID)
	if err != nil {
		return nil, apperrors.Validation("Invalid product ID format")
	}

	reviews, total, err := s.reviewRepo.FindByProduct(ctx, pid, page, limit)
	if err != nil {
		return nil, apperrors.Upstream("Error fetching reviews", err)
	}
	if reviews == nil {
		reviews = []models.Review{}
	}

	return &ReviewListResponse{
		Reviews:    reviews,
		Pagination: paginate(total, page, limit),
	}, nil
}

// GetUserReviews retrieves paginated reviews written by the caller
func (s *ReviewService) GetUserReviews(ctx context.Context, userID string, page, limit int) (*ReviewListResponse, *apperrors.Error) {
	uid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, apperrors.Validation("Invalid user ID format")
	}

	reviews, total, err := s.reviewRepo.FindByUser(ctx, uid, page, limit)
	if err != nil {
		return nil, apperrors.Upstream("Error fetching reviews", err)
	}
	if reviews == nil {
		reviews = []models.Review{}
	}

	return &ReviewListResponse{
		Reviews:    reviews,
		Pagination: paginate(total, page, limit),
	}, nil
}

// recomputeProductRating reads every review of the product and rewrites the
// denormalized average_rating/total_reviews pair in one update. Recompute
// over the full set, not an incremental delta, so a missed update cannot
// drift the average forever. Failures only stale the denormalized copy, so
// they are logged rather than surfaced.
func (s *ReviewService) recomputeProductRating(ctx context.Context, productID primitive.ObjectID) {
	reviews, err := s.reviewRepo.FindAllByProduct(ctx, productID)
	if err != nil {
		zap.L().Warn("rating recompute failed: review scan",
			zap.String("product_id", productID.Hex()), zap.Error(err))
		return
	}

	var average float64
	if len(reviews) > 0 {
		var sum int
		for _, r := range reviews {
			sum += r.Rating
		}
		average = round2(float64(sum) / float64(len(reviews)))
	}

	if err := s.productRepo.SetRating(ctx, productID, average, len(reviews)); err != nil {
		zap.L().Warn("rating recompute failed: product update",
			zap.String("product_id", productID.Hex()), zap.Error(err))
	}
}
