package controllers

import (
	"net/http"

	"commerce-api/middleware"
	"commerce-api/services"

	"github.com/gin-gonic/gin"
)

type WishlistController struct {
	wishlistService *services.WishlistService
}

func NewWishlistController(wishlistService *services.WishlistService) *WishlistController {
	return &WishlistController{wishlistService: wishlistService}
}

// GetWishlist returns the caller's wishlist with products populated
func (wc *WishlistController) GetWishlist(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "No token provided. Please login first."})
		return
	}

	wishlist, appErr := wc.wishlistService.GetWishlist(c.Request.Context(), userID)
	if appErr != nil {
		respondError(c, appErr)
		return
	}
	c.JSON(http.StatusOK, wishlist)
}

// AddItem puts a product on the wishlist
func (wc *WishlistController) AddItem(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "No token provided. Please login first."})
		return
	}

	var req services.AddWishlistItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c)
		return
	}

	wishlist, appErr := wc.wishlistService.AddItem(c.Request.Context(), userID, &req)
	if appErr != nil {
		respondError(c, appErr)
		return
	}
	c.JSON(http.StatusOK, wishlist)
}

// RemoveItem drops an entry from the wishlist
func (wc *WishlistController) RemoveItem(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "No token provided. Please login first."})
		return
	}

	wishlist, appErr := wc.wishlistService.RemoveItem(c.Request.Context(), userID, c.Param("wishlistItemId"))
	if appErr != nil {
		respondError(c, appErr)
		return
	}
	c.JSON(http.StatusOK, wishlist)
}
