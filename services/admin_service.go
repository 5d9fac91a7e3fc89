package services

import (
	"context"
	"mime/multipart"
	"strings"
	"time"

	apperrors "commerce-api/common/errors"
	"commerce-api/images"
	"commerce-api/models"
	"commerce-api/repository"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type CreateProductRequest struct {
	Name        string
	Description string
	Price       float64
	Category    string
	Stock       int
}

type UpdateProductRequest struct {
	Name        *string  `json:"name"`
	Description *string  `json:"description"`
	Price       *float64 `json:"price"`
	Category    *string  `json:"category"`
	Stock       *int     `json:"stock"`
}

type UpdateOrderStatusRequest struct {
	Status string `json:"status"`
}

type UpdateUserRoleRequest struct {
	Role string `json:"role"`
}

// GrowthStat pairs a running total with its month-over-month change.
type GrowthStat struct {
	Total  float64 `json:"total"`
	Growth float64 `json:"growth"`
}

type DashboardStats struct {
	Revenue       GrowthStat     `json:"revenue"`
	Orders        GrowthStat     `json:"orders"`
	Users         GrowthStat     `json:"users"`
	TotalProducts int64          `json:"totalProducts"`
	PendingOrders int64          `json:"pendingOrders"`
	RecentOrders  []models.Order `json:"recentOrders"`
}

type SalesReport struct {
	From         time.Time `json:"from"`
	To           time.Time `json:"to"`
	TotalRevenue float64   `json:"totalRevenue"`
	TotalOrders  int       `json:"totalOrders"`
	ItemsSold    int       `json:"itemsSold"`
}

type UserListResponse struct {
	Users      []models.User `json:"users"`
	Pagination Pagination    `json:"pagination"`
}

type AdminService struct {
	productRepo  repository.ProductRepo
	categoryRepo repository.CategoryRepo
	orderRepo    repository.OrderRepo
	userRepo     repository.UserRepo
	imageStore   images.Store
}

func NewAdminService(productRepo repository.ProductRepo, categoryRepo repository.CategoryRepo, orderRepo repository.OrderRepo, userRepo repository.UserRepo, imageStore images.Store) *AdminService {
	return &AdminService{
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
		orderRepo:    orderRepo,
		userRepo:     userRepo,
		imageStore:   imageStore,
	}
}

// CreateProduct adds a catalog entry. The category is resolved by name and
// created on the fly when unknown; images are uploaded before the document
// is written so a failed upload never leaves a product with broken links.
func (s *AdminService) CreateProduct(ctx context.Context, adminID string, req *CreateProductRequest, files []*multipart.FileHeader) (*models.Product, *apperrors.Error) {
	aid, err := primitive.ObjectIDFromHex(adminID)
	if err != nil {
		return nil, apperrors.Validation("Invalid user ID format")
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, apperrors.Validation("Product name is required")
	}
	if req.Price <= 0 {
		return nil, apperrors.Validation("Price must be greater than zero")
	}
	if req.Stock < 0 {
		return nil, apperrors.Validation("Stock cannot be negative")
	}
	categoryName := strings.TrimSpace(req.Category)
	if categoryName == "" {
		return nil, apperrors.Validation("Category is required")
	}

	category, err := s.categoryRepo.FindOrCreateByName(ctx, categoryName)
	if err != nil {
		return nil, apperrors.Upstream("Error creating product", err)
	}

	uploaded, uerr := s.uploadFiles(ctx, files)
	if uerr != nil {
		return nil, uerr
	}

	now := time.Now().UTC()
	product := &models.Product{
		ID:          primitive.NewObjectID(),
		Name:        name,
		Description: req.Description,
		Price:       req.Price,
		CategoryID:  category.ID,
		Images:      uploaded,
		Stock:       req.Stock,
		CreatedBy:   aid,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.productRepo.Create(ctx, product); err != nil {
		s.destroyImages(uploaded)
		return nil, apperrors.Upstream("Error creating product", err)
	}
	return product, nil
}

// UpdateProduct patches product fields. New images, when provided, replace
// the old set; the replaced assets are destroyed best-effort.
func (s *AdminService) UpdateProduct(ctx context.Context, productID string, req *UpdateProductRequest, files []*multipart.FileHeader) (*models.Product, *apperrors.Error) {
	pid, err := primitive.ObjectIDFromHex(productID)
	if err != nil {
		return nil, apperrors.Validation("Invalid product ID format")
	}

	product, err := s.productRepo.FindByID(ctx, pid)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, apperrors.NotFound("Product not found")
		}
		return nil, apperrors.Upstream("Error updating product", err)
	}

	updates := bson.M{"updated_at": time.Now().UTC()}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, apperrors.Validation("Product name cannot be empty")
		}
		updates["name"] = name
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Price != nil {
		if *req.Price <= 0 {
			return nil, apperrors.Validation("Price must be greater than zero")
		}
		updates["price"] = *req.Price
	}
	if req.Stock != nil {
		if *req.Stock < 0 {
			return nil, apperrors.Validation("Stock cannot be negative")
		}
		updates["stock"] = *req.Stock
	}
	if req.Category != nil {
		categoryName := strings.TrimSpace(*req.Category)
		if categoryName == "" {
			return nil, apperrors.Validation("Category cannot be empty")
		}
		category, err := s.categoryRepo.FindOrCreateByName(ctx, categoryName)
		if err != nil {
			return nil, apperrors.Upstream("Error updating product", err)
		}
		updates["category_id"] = category.ID
	}

	var replaced []models.ProductImage
	if len(files) > 0 {
		uploaded, uerr := s.uploadFiles(ctx, files)
		if uerr != nil {
			return nil, uerr
		}
		updates["images"] = uploaded
		replaced = product.Images
	}

	matched, err := s.productRepo.Update(ctx, pid, updates)
	if err != nil {
		return nil, apperrors.Upstream("Error updating product", err)
	}
	if matched == 0 {
		return nil, apperrors.NotFound("Product not found")
	}

	s.destroyImages(replaced)

	updated, err := s.productRepo.FindByID(ctx, pid)
	if err != nil {
		return nil, apperrors.Upstream("Error updating product", err)
	}
	return updated, nil
}

// DeleteProduct removes a product and destroys its images best-effort.
func (s *AdminService) DeleteProduct(ctx context.Context, productID string) *apperrors.Error {
	pid, err := primitive.ObjectIDFromHex(productID)
	if err != nil {
		return apperrors.Validation("Invalid product ID format")
	}

	product, err := s.productRepo.FindByID(ctx, pid)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return apperrors.NotFound("Product not found")
		}
		return apperrors.Upstream("Error deleting product", err)
	}

	if err := s.productRepo.Delete(ctx, pid); err != nil {
		return apperrors.Upstream("Error deleting product", err)
	}

	s.destroyImages(product.Images)
	return nil
}

// ListOrders returns every order, optionally filtered by status.
func (s *AdminService) ListOrders(ctx context.Context, status string, page, limit int) (*OrderListResponse, *apperrors.Error) {
	filter := bson.M{}
	if status != "" {
		if !models.ValidOrderStatus(status) {
			return nil, apperrors.Validation("Invalid order status")
		}
		filter["status"] = status
	}

	orders, total, err := s.orderRepo.FindAll(ctx, filter, page, limit)
	if err != nil {
		return nil, apperrors.Upstream("Error fetching orders", err)
	}
	if orders == nil {
		orders = []models.Order{}
	}

	return &OrderListResponse{
		Orders:     orders,
		Pagination: paginate(total, page, limit),
	}, nil
}

// UpdateOrderStatus sets an order's status. Any known status may be set in
// one step; moving to shipped mints a tracking number if the order has none.
func (s *AdminService) UpdateOrderStatus(ctx context.Context, orderID string, req *UpdateOrderStatusRequest) (*models.Order, *apperrors.Error) {
	oid, err := primitive.ObjectIDFromHex(orderID)
	if err != nil {
		return nil, apperrors.Validation("Invalid order ID format")
	}
	if !models.ValidOrderStatus(req.Status) {
		return nil, apperrors.Validation("Invalid order status")
	}

	order, err := s.orderRepo.FindByID(ctx, oid)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, apperrors.NotFound("Order not found")
		}
		return nil, apperrors.Upstream("Error updating order", err)
	}

	updates := bson.M{
		"status":     req.Status,
		"updated_at": time.Now().UTC(),
	}
	if req.Status == models.OrderStatusShipped && order.TrackingNumber == "" {
		updates["tracking_number"] = "TRK-" + uuid.NewString()
	}

	if _, err := s.orderRepo.Update(ctx, oid, updates); err != nil {
		return nil, apperrors.Upstream("Error updating order", err)
	}

	updated, err := s.orderRepo.FindByID(ctx, oid)
	if err != nil {
		return nil, apperrors.Upstream("Error updating order", err)
	}
	return updated, nil
}

// ListUsers returns all accounts, paginated.
func (s *AdminService) ListUsers(ctx context.Context, page, limit int) (*UserListResponse, *apperrors.Error) {
	users, total, err := s.userRepo.Find(ctx, page, limit)
	if err != nil {
		return nil, apperrors.Upstream("Error fetching users", err)
	}
	if users == nil {
		users = []models.User{}
	}

	return &UserListResponse{
		Users:      users,
		Pagination: paginate(total, page, limit),
	}, nil
}

// UpdateUserRole promotes or demotes an account.
func (s *AdminService) UpdateUserRole(ctx context.Context, userID string, req *UpdateUserRoleRequest) (*models.User, *apperrors.Error) {
	uid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, apperrors.Validation("Invalid user ID format")
	}
	if req.Role != models.RoleUser && req.Role != models.RoleAdmin {
		return nil, apperrors.Validation("Invalid role")
	}

	matched, err := s.userRepo.Update(ctx, uid, bson.M{
		"role":       req.Role,
		"updated_at": time.Now().UTC(),
	})
	if err != nil {
		return nil, apperrors.Upstream("Error updating user", err)
	}
	if matched == 0 {
		return nil, apperrors.NotFound("User not found")
	}

	user, err := s.userRepo.FindByID(ctx, uid)
	if err != nil {
		return nil, apperrors.Upstream("Error updating user", err)
	}
	return user, nil
}

// DeleteUser removes an account. Admins cannot delete themselves.
func (s *AdminService) DeleteUser(ctx context.Context, callerID, userID string) *apperrors.Error {
	if callerID == userID {
		return apperrors.Validation("Cannot delete your own account")
	}
	uid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return apperrors.Validation("Invalid user ID format")
	}

	if _, err := s.userRepo.FindByID(ctx, uid); err != nil {
		if err == mongo.ErrNoDocuments {
			return apperrors.NotFound("User not found")
		}
		return apperrors.Upstream("Error deleting user", err)
	}

	if err := s.userRepo.Delete(ctx, uid); err != nil {
		return apperrors.Upstream("Error deleting user", err)
	}
	return nil
}

// GetDashboardStats assembles the admin landing page: running totals with
// month-over-month growth, plus the five most recent orders. Revenue counts
// delivered orders only.
func (s *AdminService) GetDashboardStats(ctx context.Context) (*DashboardStats, *apperrors.Error) {
	now := time.Now().UTC()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	prevMonthStart := monthStart.AddDate(0, -1, 0)

	delivered, err := s.orderRepo.Find(ctx, bson.M{"status": models.OrderStatusDelivered})
	if err != nil {
		return nil, apperrors.Upstream("Error building dashboard", err)
	}

	var totalRevenue, curRevenue, prevRevenue float64
	for _, o := range delivered {
		amount := o.TotalAmount + o.ShippingFee
		totalRevenue += amount
		switch {
		case !o.CreatedAt.Before(monthStart):
			curRevenue += amount
		case !o.CreatedAt.Before(prevMonthStart):
			prevRevenue += amount
		}
	}

	totalOrders, err := s.orderRepo.Count(ctx, bson.M{})
	if err != nil {
		return nil, apperrors.Upstream("Error building dashboard", err)
	}
	curOrders, err := s.orderRepo.Count(ctx, bson.M{"created_at": bson.M{"$gte": monthStart}})
	if err != nil {
		return nil, apperrors.Upstream("Error building dashboard", err)
	}
	prevOrders, err := s.orderRepo.Count(ctx, bson.M{"created_at": bson.M{"$gte": prevMonthStart, "$lt": monthStart}})
	if err != nil {
		return nil, apperrors.Upstream("Error building dashboard", err)
	}

	totalUsers, err := s.userRepo.Count(ctx, bson.M{})
	if err != nil {
		return nil, apperrors.Upstream("Error building dashboard", err)
	}
	curUsers, err := s.userRepo.Count(ctx, bson.M{"created_at": bson.M{"$gte": monthStart}})
	if err != nil {
		return nil, apperrors.Upstream("Error building dashboard", err)
	}
	prevUsers, err := s.userRepo.Count(ctx, bson.M{"created_at": bson.M{"$gte": prevMonthStart, "$lt": monthStart}})
	if err != nil {
		return nil, apperrors.Upstream("Error building dashboard", err)
	}

	totalProducts, err := s.productRepo.Count(ctx, bson.M{})
	if err != nil {
		return nil, apperrors.Upstream("Error building dashboard", err)
	}
	pendingOrders, err := s.orderRepo.Count(ctx, bson.M{"status": models.OrderStatusPending})
	if err != nil {
		return nil, apperrors.Upstream("Error building dashboard", err)
	}

	recent, _, err := s.orderRepo.FindAll(ctx, bson.M{}, 1, 5)
	if err != nil {
		zap.L().Warn("dashboard recent orders fetch failed", zap.Error(err))
		recent = nil
	}
	if recent == nil {
		recent = []models.Order{}
	}

	return &DashboardStats{
		Revenue:       GrowthStat{Total: round2(totalRevenue), Growth: growth(curRevenue, prevRevenue)},
		Orders:        GrowthStat{Total: float64(totalOrders), Growth: growth(float64(curOrders), float64(prevOrders))},
		Users:         GrowthStat{Total: float64(totalUsers), Growth: growth(float64(curUsers), float64(prevUsers))},
		TotalProducts: totalProducts,
		PendingOrders: pendingOrders,
		RecentOrders:  recent,
	}, nil
}

// GetSalesReport sums delivered orders inside [from, to).
func (s *AdminService) GetSalesReport(ctx context.Context, from, to time.Time) (*SalesReport, *apperrors.Error) {
	if !to.After(from) {
		return nil, apperrors.Validation("Invalid date range")
	}

	orders, err := s.orderRepo.Find(ctx, bson.M{
		"status":     models.OrderStatusDelivered,
		"created_at": bson.M{"$gte": from, "$lt": to},
	})
	if err != nil {
		return nil, apperrors.Upstream("Error building sales report", err)
	}

	report := &SalesReport{From: from, To: to, TotalOrders: len(orders)}
	for _, o := range orders {
		report.TotalRevenue += o.TotalAmount + o.ShippingFee
		for _, item := range o.Items {
			report.ItemsSold += item.Quantity
		}
	}
	report.TotalRevenue = round2(report.TotalRevenue)
	return report, nil
}

// growth is the month-over-month percentage change. A zero previous month
// reads as 100% when anything happened this month, 0% otherwise.
func growth(current, previous float64) float64 {
	if previous == 0 {
		if current > 0 {
			return 100
		}
		return 0
	}
	return round1((current - previous) / previous * 100)
}

func (s *AdminService) uploadFiles(ctx context.Context, files []*multipart.FileHeader) ([]models.ProductImage, *apperrors.Error) {
	uploaded := make([]models.ProductImage, 0, len(files))
	for _, fh := range files {
		f, err := fh.Open()
		if err != nil {
			s.destroyImages(uploaded)
			return nil, apperrors.Validation("Could not read uploaded file")
		}
		url, publicID, err := s.imageStore.Upload(ctx, f)
		f.Close()
		if err != nil {
			s.destroyImages(uploaded)
			return nil, apperrors.Upstream("Image upload failed", err)
		}
		uploaded = append(uploaded, models.ProductImage{URL: url, PublicID: publicID})
	}
	return uploaded, nil
}

// destroyImages removes assets from the image store, logging failures.
func (s *AdminService) destroyImages(imgs []models.ProductImage) {
	if len(imgs) == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	for _, img := range imgs {
		if img.PublicID == "" {
			continue
		}
		if err := s.imageStore.Destroy(ctx, img.PublicID); err != nil {
			zap.L().Warn("failed to destroy image asset",
				zap.String("public_id", img.PublicID), zap.Error(err))
		}
	}
}
