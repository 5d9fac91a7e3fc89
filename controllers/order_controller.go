package controllers

import (
	"net/http"

	"commerce-api/middleware"
	"commerce-api/services"

	"github.com/gin-gonic/gin"
)

type OrderController struct {
	orderService *services.OrderService
}

func NewOrderController(orderService *services.OrderService) *OrderController {
	return &OrderController{orderService: orderService}
}

// CreateOrder runs checkout for the caller
func (oc *OrderController) CreateOrder(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "No token provided. Please login first."})
		return
	}

	var req services.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c)
		return
	}

	order, appErr := oc.orderService.PlaceOrder(c.Request.Context(), userID, &req)
	if appErr != nil {
		respondError(c, appErr)
		return
	}
	c.JSON(http.StatusCreated, order)
}

// ListOrders returns the caller's order history
func (oc *OrderController) ListOrders(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "No token provided. Please login first."})
		return
	}
	page, limit := parsePaginationParams(c)

	resp, appErr := oc.orderService.GetUserOrders(c.Request.Context(), userID, page, limit)
	if appErr != nil {
		respondError(c, appErr)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// GetOrder returns one order, visible to its owner or an admin
func (oc *OrderController) GetOrder(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "No token provided. Please login first."})
		return
	}

	order, appErr := oc.orderService.GetOrderByID(c.Request.Context(), userID, middleware.GetRole(c), c.Param("orderId"))
	if appErr != nil {
		respondError(c, appErr)
		return
	}
	c.JSON(http.StatusOK, order)
}

// TrackOrder returns shipping status for an order owned by the caller
func (oc *OrderController) TrackOrder(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "No token provided. Please login first."})
		return
	}

	tracking, appErr := oc.orderService.TrackOrder(c.Request.Context(), userID, c.Param("orderId"))
	if appErr != nil {
		respondError(c, appErr)
		return
	}
	c.JSON(http.StatusOK, tracking)
}
