package controllers

import (
	"net/http"
	"strconv"

	apperrors "commerce-api/common/errors"
	"commerce-api/services"

	"github.com/gin-gonic/gin"
)

type ProductController struct {
	productService *services.ProductService
}

func NewProductController(productService *services.ProductService) *ProductController {
	return &ProductController{productService: productService}
}

// ListProducts returns the paginated catalog with optional filters
func (pc *ProductController) ListProducts(c *gin.Context) {
	page, limit := parsePaginationParams(c)

	filter := services.ProductFilter{
		Category: c.Query("category"),
		Search:   c.Query("search"),
		Page:     page,
		Limit:    limit,
	}

	if raw := c.Query("minPrice"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || v < 0 {
			respondError(c, apperrors.Validation("Invalid minPrice"))
			return
		}
		filter.MinPrice = &v
	}
	if raw := c.Query("maxPrice"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || v < 0 {
			respondError(c, apperrors.Validation("Invalid maxPrice"))
			return
		}
		filter.MaxPrice = &v
	}

	resp, appErr := pc.productService.ListProducts(c.Request.Context(), filter)
	if appErr != nil {
		respondError(c, appErr)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// GetProduct returns one product with category and creator populated
func (pc *ProductController) GetProduct(c *gin.Context) {
	detail, appErr := pc.productService.GetProduct(c.Request.Context(), c.Param("productId"))
	if appErr != nil {
		respondError(c, appErr)
		return
	}
	c.JSON(http.StatusOK, detail)
}

// SearchProducts is the typeahead endpoint
func (pc *ProductController) SearchProducts(c *gin.Context) {
	products, appErr := pc.productService.SearchProducts(c.Request.Context(), c.Query("q"))
	if appErr != nil {
		respondError(c, appErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": products})
}
