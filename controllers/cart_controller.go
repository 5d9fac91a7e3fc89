package controllers

import (
	"net/http"

	"commerce-api/middleware"
	"commerce-api/services"

	"github.com/gin-gonic/gin"
)

type CartController struct {
	cartService *services.CartService
}

func NewCartController(cartService *services.CartService) *CartController {
	return &CartController{cartService: cartService}
}

// GetCart returns the caller's cart with products populated
func (cc *CartController) GetCart(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "No token provided. Please login first."})
		return
	}

	cart, appErr := cc.cartService.GetCart(c.Request.Context(), userID)
	if appErr != nil {
		respondError(c, appErr)
		return
	}
	c.JSON(http.StatusOK, cart)
}

// AddItem adds a product to the cart, merging same product+size+color lines
func (cc *CartController) AddItem(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "No token provided. Please login first."})
		return
	}

	var req services.AddCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c)
		return
	}

	cart, appErr := cc.cartService.AddItem(c.Request.Context(), userID, &req)
	if appErr != nil {
		respondError(c, appErr)
		return
	}
	c.JSON(http.StatusOK, cart)
}

// UpdateItem sets the quantity of a cart line
func (cc *CartController) UpdateItem(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "No token provided. Please login first."})
		return
	}

	var req services.UpdateCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c)
		return
	}

	cart, appErr := cc.cartService.UpdateItem(c.Request.Context(), userID, c.Param("itemId"), &req)
	if appErr != nil {
		respondError(c, appErr)
		return
	}
	c.JSON(http.StatusOK, cart)
}

// RemoveItem deletes a cart line
func (cc *CartController) RemoveItem(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "No token provided. Please login first."})
		return
	}

	cart, appErr := cc.cartService.RemoveItem(c.Request.Context(), userID, c.Param("itemId"))
	if appErr != nil {
		respondError(c, appErr)
		return
	}
	c.JSON(http.StatusOK, cart)
}

// ClearCart empties the cart
func (cc *CartController) ClearCart(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "No token provided. Please login first."})
		return
	}

	if appErr := cc.cartService.ClearCart(c.Request.Context(), userID); appErr != nil {
		respondError(c, appErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "cart cleared"})
}
