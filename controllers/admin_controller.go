package controllers

import (
	"mime/multipart"
	"net/http"
	"strconv"
	"time"

	apperrors "commerce-api/common/errors"
	"commerce-api/middleware"
	"commerce-api/services"

	"github.com/gin-gonic/gin"
)

type AdminController struct {
	adminService *services.AdminService
}

func NewAdminController(adminService *services.AdminService) *AdminController {
	return &AdminController{adminService: adminService}
}

// CreateProduct adds a catalog entry from a multipart form
func (ac *AdminController) CreateProduct(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "No token provided. Please login first."})
		return
	}

	price, err := strconv.ParseFloat(c.PostForm("price"), 64)
	if err != nil {
		respondError(c, apperrors.Validation("Invalid price"))
		return
	}
	stock := 0
	if raw := c.PostForm("stock"); raw != "" {
		stock, err = strconv.Atoi(raw)
		if err != nil {
			respondError(c, apperrors.Validation("Invalid stock"))
			return
		}
	}

	req := services.CreateProductRequest{
		Name:        c.PostForm("name"),
		Description: c.PostForm("description"),
		Price:       price,
		Category:    c.PostForm("category"),
		Stock:       stock,
	}

	product, appErr := ac.adminService.CreateProduct(c.Request.Context(), userID, &req, formFiles(c))
	if appErr != nil {
		respondError(c, appErr)
		return
	}
	c.JSON(http.StatusCreated, product)
}

// UpdateProduct patches a product from a multipart form
func (ac *AdminController) UpdateProduct(c *gin.Context) {
	var req services.UpdateProductRequest

	if v, ok := c.GetPostForm("name"); ok {
		req.Name = &v
	}
	if v, ok := c.GetPostForm("description"); ok {
		req.Description = &v
	}
	if v, ok := c.GetPostForm("category"); ok {
		req.Category = &v
	}
	if raw, ok := c.GetPostForm("price"); ok {
		price, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			respondError(c, apperrors.Validation("Invalid price"))
			return
		}
		req.Price = &price
	}
	if raw, ok := c.GetPostForm("stock"); ok {
		stock, err := strconv.Atoi(raw)
		if err != nil {
			respondError(c, apperrors.Validation("Invalid stock"))
			return
		}
		req.Stock = &stock
	}

	product, appErr := ac.adminService.UpdateProduct(c.Request.Context(), c.Param("productId"), &req, formFiles(c))
	if appErr != nil {
		respondError(c, appErr)
		return
	}
	c.JSON(http.StatusOK, product)
}

// DeleteProduct removes a product and its images
func (ac *AdminController) DeleteProduct(c *gin.Context) {
	if appErr := ac.adminService.DeleteProduct(c.Request.Context(), c.Param("productId")); appErr != nil {
		respondError(c, appErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "product deleted"})
}

// ListOrders returns every order, optionally filtered by status
func (ac *AdminController) ListOrders(c *gin.Context) {
	page, limit := parsePaginationParams(c)

	resp, appErr := ac.adminService.ListOrders(c.Request.Context(), c.Query("status"), page, limit)
	if appErr != nil {
		respondError(c, appErr)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// UpdateOrderStatus sets an order's status
func (ac *AdminController) UpdateOrderStatus(c *gin.Context) {
	var req services.UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c)
		return
	}

	order, appErr := ac.adminService.UpdateOrderStatus(c.Request.Context(), c.Param("orderId"), &req)
	if appErr != nil {
		respondError(c, appErr)
		return
	}
	c.JSON(http.StatusOK, order)
}

// ListUsers returns all accounts
func (ac *AdminController) ListUsers(c *gin.Context) {
	page, limit := parsePaginationParams(c)

	resp, appErr := ac.adminService.ListUsers(c.Request.Context(), page, limit)
	if appErr != nil {
		respondError(c, appErr)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// UpdateUserRole promotes or demotes an account
func (ac *AdminController) UpdateUserRole(c *gin.Context) {
	var req services.UpdateUserRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c)
		return
	}

	user, appErr := ac.adminService.UpdateUserRole(c.Request.Context(), c.Param("userId"), &req)
	if appErr != nil {
		respondError(c, appErr)
		return
	}
	c.JSON(http.StatusOK, user)
}

// DeleteUser removes an account
func (ac *AdminController) DeleteUser(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "No token provided. Please login first."})
		return
	}

	if appErr := ac.adminService.DeleteUser(c.Request.Context(), userID, c.Param("userId")); appErr != nil {
		respondError(c, appErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "user deleted"})
}

// GetDashboard returns the admin landing stats
func (ac *AdminController) GetDashboard(c *gin.Context) {
	stats, appErr := ac.adminService.GetDashboardStats(c.Request.Context())
	if appErr != nil {
		respondError(c, appErr)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// GetSalesReport sums delivered orders in a date range. Dates are
// YYYY-MM-DD; the default window is the last 30 days.
func (ac *AdminController) GetSalesReport(c *gin.Context) {
	to := time.Now().UTC()
	from := to.AddDate(0, 0, -30)

	if raw := c.Query("from"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			respondError(c, apperrors.Validation("Invalid from date, expected YYYY-MM-DD"))
			return
		}
		from = parsed
	}
	if raw := c.Query("to"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			respondError(c, apperrors.Validation("Invalid to date, expected YYYY-MM-DD"))
			return
		}
		// Inclusive end date.
		to = parsed.AddDate(0, 0, 1)
	}

	report, appErr := ac.adminService.GetSalesReport(c.Request.Context(), from, to)
	if appErr != nil {
		respondError(c, appErr)
		return
	}
	c.JSON(http.StatusOK, report)
}

func formFiles(c *gin.Context) []*multipart.FileHeader {
	form, err := c.MultipartForm()
	if err != nil || form == nil {
		return nil
	}
	return form.File["images"]
}
