package services

import (
	"context"
	"strings"
	"time"

	apperrors "commerce-api/common/errors"
	"commerce-api/models"
	"commerce-api/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type CreateCategoryRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type CategoryService struct {
	categoryRepo repository.CategoryRepo
}

func NewCategoryService(categoryRepo repository.CategoryRepo) *CategoryService {
	return &CategoryService{categoryRepo: categoryRepo}
}

// ListCategories retrieves all categories
func (s *CategoryService) ListCategories(ctx context.Context) ([]models.Category, *apperrors.Error) {
	categories, err := s.categoryRepo.FindAll(ctx)
	if err != nil {
		return nil, apperrors.Upstream("Error fetching categories", err)
	}
	if categories == nil {
		categories = []models.Category{}
	}
	return categories, nil
}

// CreateCategory adds a new category; names are unique.
func (s *CategoryService) CreateCategory(ctx context.Context, req *CreateCategoryRequest) (*models.Category, *apperrors.Error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, apperrors.Validation("Category name is required")
	}

	now := time.Now().UTC()
	category := &models.Category{
		ID:          primitive.NewObjectID(),
		Name:        name,
		Description: req.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.categoryRepo.Create(ctx, category); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, apperrors.Conflict("Category already exists")
		}
		return nil, apperrors.Upstream("Error creating category", err)
	}
	return category, nil
}

// DeleteCategory removes a category that no product references.
func (s *CategoryService) DeleteCategory(ctx context.Context, categoryID string) *apperrors.Error {
	cid, err := primitive.ObjectIDFromHex(categoryID)
	if err != nil {
		return apperrors.Validation("Invalid category ID format")
	}

	if _, err := s.categoryRepo.FindByID(ctx, cid); err != nil {
		if err == mongo.ErrNoDocuments {
			return apperrors.NotFound("Category not found")
		}
		return apperrors.Upstream("Error deleting category", err)
	}

	inUse, err := s.categoryRepo.HasProducts(ctx, cid)
	if err != nil {
		return apperrors.Upstream("Error deleting category", err)
	}
	if inUse {
		return apperrors.Conflict("Category has products and cannot be deleted")
	}

	if err := s.categoryRepo.Delete(ctx, cid); err != nil {
		return apperrors.Upstream("Error deleting category", err)
	}
	return nil
}
