package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"commerce-api/mail"
	"commerce-api/models"
	"commerce-api/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// duplicateKeyErr mimics the server-side unique index violation.
var duplicateKeyErr = mongo.WriteException{
	WriteErrors: []mongo.WriteError{{Code: 11000, Message: "duplicate key error"}},
}

// --- fake product repo ---

type fakeProductRepo struct {
	mu       sync.Mutex
	products map[primitive.ObjectID]*models.Product

	failDecrementFor map[primitive.ObjectID]error
}

func newFakeProductRepo(products ...*models.Product) *fakeProductRepo {
	r := &fakeProductRepo{
		products:         make(map[primitive.ObjectID]*models.Product),
		failDecrementFor: make(map[primitive.ObjectID]error),
	}
	for _, p := range products {
		cp := *p
		r.products[p.ID] = &cp
	}
	return r
}

func (r *fakeProductRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	cp := *p
	return &cp, nil
}

func (r *fakeProductRepo) Find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]*models.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.Product, 0, len(r.products))
	for _, p := range r.products {
		cp := *p
		out = append(out, &cp)
	}
	return out, nil
}

func (r *fakeProductRepo) Count(ctx context.Context, filter bson.M) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.products)), nil
}

func (r *fakeProductRepo) Create(ctx context.Context, product *models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *product
	r.products[product.ID] = &cp
	return nil
}

func (r *fakeProductRepo) Update(ctx context.Context, id primitive.ObjectID, updates bson.M) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok {
		return 0, nil
	}
	if v, ok := updates["stock"]; ok {
		p.Stock = v.(int)
	}
	if v, ok := updates["name"]; ok {
		p.Name = v.(string)
	}
	if v, ok := updates["price"]; ok {
		p.Price = v.(float64)
	}
	return 1, nil
}

func (r *fakeProductRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.products, id)
	return nil
}

func (r *fakeProductRepo) DecrementStock(ctx context.Context, id primitive.ObjectID, quantity int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err, ok := r.failDecrementFor[id]; ok {
		return err
	}
	p, ok := r.products[id]
	if !ok || p.Stock < quantity {
		return repository.ErrInsufficientStock
	}
	p.Stock -= quantity
	return nil
}

func (r *fakeProductRepo) IncrementStock(ctx context.Context, id primitive.ObjectID, quantity int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok {
		return errors.New("product not found")
	}
	p.Stock += quantity
	return nil
}

func (r *fakeProductRepo) SetRating(ctx context.Context, id primitive.ObjectID, average float64, count int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok {
		return errors.New("product not found")
	}
	p.AverageRating = average
	p.TotalReviews = count
	return nil
}

func (r *fakeProductRepo) EnsureIndexes(ctx context.Context) error { return nil }

func (r *fakeProductRepo) stock(id primitive.ObjectID) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.products[id].Stock
}

func (r *fakeProductRepo) rating(id primitive.ObjectID) (float64, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p := r.products[id]
	return p.AverageRating, p.TotalReviews
}

// --- fake order repo ---

type fakeOrderRepo struct {
	mu     sync.Mutex
	orders map[primitive.ObjectID]*models.Order

	failCreate error
}

func newFakeOrderRepo(orders ...*models.Order) *fakeOrderRepo {
	r := &fakeOrderRepo{orders: make(map[primitive.ObjectID]*models.Order)}
	for _, o := range orders {
		cp := *o
		r.orders[o.ID] = &cp
	}
	return r
}

func (r *fakeOrderRepo) Create(ctx context.Context, order *models.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failCreate != nil {
		return r.failCreate
	}
	cp := *order
	r.orders[order.ID] = &cp
	return nil
}

func (r *fakeOrderRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	cp := *o
	return &cp, nil
}

func (r *fakeOrderRepo) FindByUserID(ctx context.Context, userID primitive.ObjectID, page, limit int) ([]models.Order, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Order
	for _, o := range r.orders {
		if o.UserID == userID {
			out = append(out, *o)
		}
	}
	return out, int64(len(out)), nil
}

func (r *fakeOrderRepo) FindAll(ctx context.Context, filter bson.M, page, limit int) ([]models.Order, int64, error) {
	orders, err := r.Find(ctx, filter)
	return orders, int64(len(orders)), err
}

// Find honors the filter keys the services actually use: user_id, status
// and items.product_id.
func (r *fakeOrderRepo) Find(ctx context.Context, filter bson.M) ([]models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Order
	for _, o := range r.orders {
		if v, ok := filter["user_id"]; ok && o.UserID != v.(primitive.ObjectID) {
			continue
		}
		if v, ok := filter["status"]; ok && o.Status != v.(string) {
			continue
		}
		if v, ok := filter["items.product_id"]; ok {
			pid := v.(primitive.ObjectID)
			found := false
			for _, item := range o.Items {
				if item.ProductID == pid {
					found = true
					break
				}
			}
			if !found {
				continue
			}
		}
		out = append(out, *o)
	}
	return out, nil
}

func (r *fakeOrderRepo) Count(ctx context.Context, filter bson.M) (int64, error) {
	orders, err := r.Find(ctx, filter)
	return int64(len(orders)), err
}

func (r *fakeOrderRepo) Update(ctx context.Context, id primitive.ObjectID, updates bson.M) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return 0, nil
	}
	if v, ok := updates["status"]; ok {
		o.Status = v.(string)
	}
	if v, ok := updates["tracking_number"]; ok {
		o.TrackingNumber = v.(string)
	}
	return 1, nil
}

func (r *fakeOrderRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.orders)
}

// --- fake review repo ---

type fakeReviewRepo struct {
	mu      sync.Mutex
	reviews map[primitive.ObjectID]*models.Review
}

func newFakeReviewRepo() *fakeReviewRepo {
	return &fakeReviewRepo{reviews: make(map[primitive.ObjectID]*models.Review)}
}

func (r *fakeReviewRepo) Create(ctx context.Context, review *models.Review) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.reviews {
		if existing.ProductID == review.ProductID && existing.UserID == review.UserID {
			return duplicateKeyErr
		}
	}
	cp := *review
	r.reviews[review.ID] = &cp
	return nil
}

func (r *fakeReviewRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Review, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rev, ok := r.reviews[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	cp := *rev
	return &cp, nil
}

func (r *fakeReviewRepo) FindByProduct(ctx context.Context, productID primitive.ObjectID, page, limit int) ([]models.Review, int64, error) {
	reviews, err := r.FindAllByProduct(ctx, productID)
	return reviews, int64(len(reviews)), err
}

func (r *fakeReviewRepo) FindByUser(ctx context.Context, userID primitive.ObjectID, page, limit int) ([]models.Review, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Review
	for _, rev := range r.reviews {
		if rev.UserID == userID {
			out = append(out, *rev)
		}
	}
	return out, int64(len(out)), nil
}

func (r *fakeReviewRepo) FindOneByProductAndUser(ctx context.Context, productID, userID primitive.ObjectID) (*models.Review, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rev := range r.reviews {
		if rev.ProductID == productID && rev.UserID == userID {
			cp := *rev
			return &cp, nil
		}
	}
	return nil, mongo.ErrNoDocuments
}

func (r *fakeReviewRepo) FindAllByProduct(ctx context.Context, productID primitive.ObjectID) ([]models.Review, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Review
	for _, rev := range r.reviews {
		if rev.ProductID == productID {
			out = append(out, *rev)
		}
	}
	return out, nil
}

func (r *fakeReviewRepo) Update(ctx context.Context, id primitive.ObjectID, updates bson.M) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rev, ok := r.reviews[id]
	if !ok {
		return mongo.ErrNoDocuments
	}
	if v, ok := updates["rating"]; ok {
		rev.Rating = v.(int)
	}
	if v, ok := updates["title"]; ok {
		rev.Title = v.(string)
	}
	if v, ok := updates["comment"]; ok {
		rev.Comment = v.(string)
	}
	return nil
}

func (r *fakeReviewRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.reviews, id)
	return nil
}

func (r *fakeReviewRepo) Count(ctx context.Context, filter bson.M) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.reviews)), nil
}

func (r *fakeReviewRepo) EnsureIndexes(ctx context.Context) error { return nil }

// --- fake cart repo ---

type fakeCartRepo struct {
	mu    sync.Mutex
	carts map[primitive.ObjectID]*models.Cart

	failClear error
	cleared   bool
}

func newFakeCartRepo(carts ...*models.Cart) *fakeCartRepo {
	r := &fakeCartRepo{carts: make(map[primitive.ObjectID]*models.Cart)}
	for _, c := range carts {
		cp := *c
		r.carts[c.UserID] = &cp
	}
	return r
}

func (r *fakeCartRepo) FindByUserID(ctx context.Context, userID primitive.ObjectID) (*models.Cart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.carts[userID]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	cp := *c
	cp.Items = append([]models.CartItem(nil), c.Items...)
	return &cp, nil
}

func (r *fakeCartRepo) Create(ctx context.Context, cart *models.Cart) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.carts[cart.UserID]; exists {
		return duplicateKeyErr
	}
	cp := *cart
	r.carts[cart.UserID] = &cp
	return nil
}

func (r *fakeCartRepo) ReplaceItems(ctx context.Context, userID primitive.ObjectID, items []models.CartItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.carts[userID]
	if !ok {
		return mongo.ErrNoDocuments
	}
	c.Items = append([]models.CartItem(nil), items...)
	c.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *fakeCartRepo) Clear(ctx context.Context, userID primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failClear != nil {
		return r.failClear
	}
	if c, ok := r.carts[userID]; ok {
		c.Items = nil
	}
	r.cleared = true
	return nil
}

func (r *fakeCartRepo) EnsureIndexes(ctx context.Context) error { return nil }

// --- fake wishlist repo ---

type fakeWishlistRepo struct {
	mu        sync.Mutex
	wishlists map[primitive.ObjectID]*models.Wishlist
}

func newFakeWishlistRepo() *fakeWishlistRepo {
	return &fakeWishlistRepo{wishlists: make(map[primitive.ObjectID]*models.Wishlist)}
}

func (r *fakeWishlistRepo) FindByUserID(ctx context.Context, userID primitive.ObjectID) (*models.Wishlist, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.wishlists[userID]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	cp := *w
	cp.Items = append([]models.WishlistItem(nil), w.Items...)
	return &cp, nil
}

func (r *fakeWishlistRepo) Create(ctx context.Context, wishlist *models.Wishlist) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.wishlists[wishlist.UserID]; exists {
		return duplicateKeyErr
	}
	cp := *wishlist
	r.wishlists[wishlist.UserID] = &cp
	return nil
}

func (r *fakeWishlistRepo) ReplaceItems(ctx context.Context, userID primitive.ObjectID, items []models.WishlistItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.wishlists[userID]
	if !ok {
		return mongo.ErrNoDocuments
	}
	w.Items = append([]models.WishlistItem(nil), items...)
	return nil
}

func (r *fakeWishlistRepo) EnsureIndexes(ctx context.Context) error { return nil }

// --- fake category repo ---

type fakeCategoryRepo struct {
	mu         sync.Mutex
	categories map[primitive.ObjectID]*models.Category
	upserts    int
	products   *fakeProductRepo
}

func newFakeCategoryRepo(categories ...*models.Category) *fakeCategoryRepo {
	r := &fakeCategoryRepo{categories: make(map[primitive.ObjectID]*models.Category)}
	for _, c := range categories {
		cp := *c
		r.categories[c.ID] = &cp
	}
	return r
}

func (r *fakeCategoryRepo) FindAll(ctx context.Context) ([]models.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.Category, 0, len(r.categories))
	for _, c := range r.categories {
		out = append(out, *c)
	}
	return out, nil
}

func (r *fakeCategoryRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.categories[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	cp := *c
	return &cp, nil
}

func (r *fakeCategoryRepo) FindByName(ctx context.Context, name string) (*models.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.categories {
		if c.Name == name {
			cp := *c
			return &cp, nil
		}
	}
	return nil, mongo.ErrNoDocuments
}

func (r *fakeCategoryRepo) FindOrCreateByName(ctx context.Context, name string) (*models.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.upserts++
	for _, c := range r.categories {
		if c.Name == name {
			cp := *c
			return &cp, nil
		}
	}
	now := time.Now().UTC()
	c := &models.Category{ID: primitive.NewObjectID(), Name: name, CreatedAt: now, UpdatedAt: now}
	r.categories[c.ID] = c
	cp := *c
	return &cp, nil
}

func (r *fakeCategoryRepo) Create(ctx context.Context, category *models.Category) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.categories {
		if c.Name == category.Name {
			return duplicateKeyErr
		}
	}
	cp := *category
	r.categories[category.ID] = &cp
	return nil
}

func (r *fakeCategoryRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.categories, id)
	return nil
}

func (r *fakeCategoryRepo) HasProducts(ctx context.Context, categoryID primitive.ObjectID) (bool, error) {
	if r.products == nil {
		return false, nil
	}
	r.products.mu.Lock()
	defer r.products.mu.Unlock()
	for _, p := range r.products.products {
		if p.CategoryID == categoryID {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeCategoryRepo) EnsureIndexes(ctx context.Context) error { return nil }

// --- fake user repo ---

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[primitive.ObjectID]*models.User
}

func newFakeUserRepo(users ...*models.User) *fakeUserRepo {
	r := &fakeUserRepo{users: make(map[primitive.ObjectID]*models.User)}
	for _, u := range users {
		cp := *u
		r.users[u.ID] = &cp
	}
	return r
}

func (r *fakeUserRepo) Create(ctx context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == user.Email {
			return duplicateKeyErr
		}
	}
	cp := *user
	r.users[user.ID] = &cp
	return nil
}

func (r *fakeUserRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	cp := *u
	return &cp, nil
}

func (r *fakeUserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, mongo.ErrNoDocuments
}

func (r *fakeUserRepo) Find(ctx context.Context, page, limit int) ([]models.User, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, *u)
	}
	return out, int64(len(out)), nil
}

func (r *fakeUserRepo) Count(ctx context.Context, filter bson.M) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.users)), nil
}

func (r *fakeUserRepo) Update(ctx context.Context, id primitive.ObjectID, updates bson.M) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return 0, nil
	}
	if v, ok := updates["name"]; ok {
		u.Name = v.(string)
	}
	if v, ok := updates["role"]; ok {
		u.Role = v.(string)
	}
	if v, ok := updates["password"]; ok {
		u.Password = v.(string)
	}
	if v, ok := updates["phone"]; ok {
		u.Phone = v.(string)
	}
	if v, ok := updates["address"]; ok {
		u.Address = v.(string)
	}
	return 1, nil
}

func (r *fakeUserRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.users, id)
	return nil
}

func (r *fakeUserRepo) EnsureIndexes(ctx context.Context) error { return nil }

// --- fake mailers ---

type recordingSender struct {
	mu    sync.Mutex
	sent  chan struct{}
	calls []string
	fail  bool
}

func newRecordingSender(fail bool) *recordingSender {
	return &recordingSender{sent: make(chan struct{}, 10), fail: fail}
}

func (s *recordingSender) SendEmail(ctx context.Context, to, subject, body string) (mail.SendResult, error) {
	s.mu.Lock()
	s.calls = append(s.calls, to)
	s.mu.Unlock()
	s.sent <- struct{}{}
	if s.fail {
		return mail.SendResult{}, errors.New("smtp unavailable")
	}
	return mail.SendResult{MessageID: "test"}, nil
}

func (s *recordingSender) waitForSend(t interface{ Fatal(args ...interface{}) }) {
	select {
	case <-s.sent:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for email send")
	}
}
