package services

import (
	"context"

	apperrors "commerce-api/common/errors"
	"commerce-api/models"
	"commerce-api/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ProductFilter captures the catalog query parameters.
type ProductFilter struct {
	Category string
	MinPrice *float64
	MaxPrice *float64
	Search   string
	Page     int
	Limit    int
}

type ProductListResponse struct {
	Products   []*models.Product `json:"products"`
	Pagination Pagination        `json:"pagination"`
}

// CreatorSummary is the slice of the creator's profile exposed on a
// product detail page.
type CreatorSummary struct {
	ID   primitive.ObjectID `json:"_id"`
	Name string             `json:"name"`
}

// ProductDetail is a product with its category and creator populated.
type ProductDetail struct {
	models.Product
	Category *models.Category `json:"category,omitempty"`
	Creator  *CreatorSummary  `json:"creator,omitempty"`
}

type ProductService struct {
	productRepo  repository.ProductRepo
	categoryRepo repository.CategoryRepo
	userRepo     repository.UserRepo
}

func NewProductService(productRepo repository.ProductRepo, categoryRepo repository.CategoryRepo, userRepo repository.UserRepo) *ProductService {
	return &ProductService{
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
		userRepo:     userRepo,
	}
}

// ListProducts returns the paginated catalog, filtered by category name,
// price range and free-text search over name and description.
func (s *ProductService) ListProducts(ctx context.Context, filter ProductFilter) (*ProductListResponse, *apperrors.Error) {
	query := bson.M{}

	if filter.Category != "" {
		category, err := s.categoryRepo.FindByName(ctx, filter.Category)
		if err != nil {
			if err == mongo.ErrNoDocuments {
				// Unknown category matches nothing rather than erroring.
				return &ProductListResponse{
					Products:   []*models.Product{},
					Pagination: paginate(0, filter.Page, filter.Limit),
				}, nil
			}
			return nil, apperrors.Upstream("Error fetching products", err)
		}
		query["category_id"] = category.ID
	}

	price := bson.M{}
	if filter.MinPrice != nil {
		price["$gte"] = *filter.MinPrice
	}
	if filter.MaxPrice != nil {
		price["$lte"] = *filter.MaxPrice
	}
	if len(price) > 0 {
		query["price"] = price
	}

	if filter.Search != "" {
		regex := primitive.Regex{Pattern: filter.Search, Options: "i"}
		query["$or"] = []bson.M{
			{"name": regex},
			{"description": regex},
		}
	}

	total, err := s.productRepo.Count(ctx, query)
	if err != nil {
		return nil, apperrors.Upstream("Error fetching products", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(int64((filter.Page - 1) * filter.Limit)).
		SetLimit(int64(filter.Limit))

	products, err := s.productRepo.Find(ctx, query, opts)
	if err != nil {
		return nil, apperrors.Upstream("Error fetching products", err)
	}
	if products == nil {
		products = []*models.Product{}
	}

	return &ProductListResponse{
		Products:   products,
		Pagination: paginate(total, filter.Page, filter.Limit),
	}, nil
}

// GetProduct returns a single product with its category and creator
// populated. Either lookup failing leaves that field nil instead of
// failing the whole page.
func (s *ProductService) GetProduct(ctx context.Context, productID string) (*ProductDetail, *apperrors.Error) {
	pid, err := primitive.ObjectIDFromHex(productID)
	if err != nil {
		return nil, apperrors.Validation("Invalid product ID format")
	}

	product, err := s.productRepo.FindByID(ctx, pid)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, apperrors.NotFound("Product not found")
		}
		return nil, apperrors.Upstream("Error fetching product", err)
	}

	detail := &ProductDetail{Product: *product}

	if !product.CategoryID.IsZero() {
		if category, err := s.categoryRepo.FindByID(ctx, product.CategoryID); err == nil {
			detail.Category = category
		}
	}
	if !product.CreatedBy.IsZero() {
		if creator, err := s.userRepo.FindByID(ctx, product.CreatedBy); err == nil {
			detail.Creator = &CreatorSummary{ID: creator.ID, Name: creator.Name}
		}
	}

	return detail, nil
}

// SearchProducts is the lightweight typeahead query: name/description
// regex, capped at 20 results, no pagination envelope.
func (s *ProductService) SearchProducts(ctx context.Context, query string) ([]*models.Product, *apperrors.Error) {
	if query == "" {
		return nil, apperrors.Validation("Search query is required")
	}

	regex := primitive.Regex{Pattern: query, Options: "i"}
	filter := bson.M{"$or": []bson.M{
		{"name": regex},
		{"description": regex},
	}}

	opts := options.Find().SetLimit(20)
	products, err := s.productRepo.Find(ctx, filter, opts)
	if err != nil {
		return nil, apperrors.Upstream("Error searching products", err)
	}
	if products == nil {
		products = []*models.Product{}
	}
	return products, nil
}
