package controllers

import (
	"net/http"

	"commerce-api/middleware"
	"commerce-api/services"

	"github.com/gin-gonic/gin"
)

type ReviewController struct {
	reviewService *services.ReviewService
}

func NewReviewController(reviewService *services.ReviewService) *ReviewController {
	return &ReviewController{reviewService: reviewService}
}

// ListProductReviews returns paginated reviews for the product named in
// the productId query param
func (rc *ReviewController) ListProductReviews(c *gin.Context) {
	page, limit := parsePaginationParams(c)

	resp, appErr := rc.reviewService.GetProductReviews(c.Request.Context(), c.Query("productId"), page, limit)
	if appErr != nil {
		respondError(c, appErr)
		return
	}
	c.JSON(http.StatusOK, resp)
}

type addReviewPayload struct {
	ProductID string `json:"productId"`
	services.AddReviewRequest
}

// AddReview creates a review for a purchased product
func (rc *ReviewController) AddReview(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "No token provided. Please login first."})
		return
	}

	var payload addReviewPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBindError(c)
		return
	}

	review, appErr := rc.reviewService.AddReview(c.Request.Context(), userID, payload.ProductID, &payload.AddReviewRequest)
	if appErr != nil {
		respondError(c, appErr)
		return
	}
	c.JSON(http.StatusCreated, review)
}

// UpdateReview edits the caller's review
func (rc *ReviewController) UpdateReview(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "No token provided. Please login first."})
		return
	}

	var req services.UpdateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c)
		return
	}

	review, appErr := rc.reviewService.UpdateReview(c.Request.Context(), userID, c.Param("reviewId"), &req)
	if appErr != nil {
		respondError(c, appErr)
		return
	}
	c.JSON(http.StatusOK, review)
}

// DeleteReview removes a review (author or admin)
func (rc *ReviewController) DeleteReview(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "No token provided. Please login first."})
		return
	}

	if appErr := rc.reviewService.DeleteReview(c.Request.Context(), userID, middleware.GetRole(c), c.Param("reviewId")); appErr != nil {
		respondError(c, appErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "review deleted"})
}

// ListMyReviews returns reviews written by the caller
func (rc *ReviewController) ListMyReviews(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "No token provided. Please login first."})
		return
	}
	page, limit := parsePaginationParams(c)

	resp, appErr := rc.reviewService.GetUserReviews(c.Request.Context(), userID, page, limit)
	if appErr != nil {
		respondError(c, appErr)
		return
	}
	c.JSON(http.StatusOK, resp)
}
