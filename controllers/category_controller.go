package controllers

import (
	"net/http"

	"commerce-api/services"

	"github.com/gin-gonic/gin"
)

type CategoryController struct {
	categoryService *services.CategoryService
}

func NewCategoryController(categoryService *services.CategoryService) *CategoryController {
	return &CategoryController{categoryService: categoryService}
}

// ListCategories returns all categories
func (cc *CategoryController) ListCategories(c *gin.Context) {
	categories, appErr := cc.categoryService.ListCategories(c.Request.Context())
	if appErr != nil {
		respondError(c, appErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

// CreateCategory adds a category (admin)
func (cc *CategoryController) CreateCategory(c *gin.Context) {
	var req services.CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c)
		return
	}

	category, appErr := cc.categoryService.CreateCategory(c.Request.Context(), &req)
	if appErr != nil {
		respondError(c, appErr)
		return
	}
	c.JSON(http.StatusCreated, category)
}

// DeleteCategory removes an unused category (admin)
func (cc *CategoryController) DeleteCategory(c *gin.Context) {
	if appErr := cc.categoryService.DeleteCategory(c.Request.Context(), c.Param("categoryId")); appErr != nil {
		respondError(c, appErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "category deleted"})
}
