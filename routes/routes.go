package routes

import (
	"net/http"

	"commerce-api/common/auth"
	commonmw "commerce-api/common/middleware"
	"commerce-api/controllers"
	"commerce-api/middleware"

	"github.com/gin-gonic/gin"
)

// Controllers bundles every handler group the router mounts.
type Controllers struct {
	Auth     *controllers.AuthController
	Product  *controllers.ProductController
	Category *controllers.CategoryController
	Cart     *controllers.CartController
	Wishlist *controllers.WishlistController
	Order    *controllers.OrderController
	Review   *controllers.ReviewController
	User     *controllers.UserController
	Admin    *controllers.AdminController
}

// Register mounts the full HTTP surface under /api.
func Register(r *gin.Engine, ctrls Controllers, tm *auth.TokenManager, allowedOrigins string) {
	r.Use(commonmw.SecurityHeaders())
	r.Use(commonmw.CORSMiddleware(allowedOrigins))
	r.Use(commonmw.RateLimitMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	authed := middleware.AuthMiddleware(tm)

	authGroup := api.Group("/auth")
	{
		authGroup.POST("/register", ctrls.Auth.Register)
		authGroup.POST("/login", ctrls.Auth.Login)
	}

	products := api.Group("/products")
	{
		products.GET("", ctrls.Product.ListProducts)
		products.GET("/search", ctrls.Product.SearchProducts)
		products.GET("/:productId", ctrls.Product.GetProduct)
	}

	api.GET("/categories", ctrls.Category.ListCategories)

	reviews := api.Group("/reviews")
	{
		reviews.GET("/product", ctrls.Review.ListProductReviews)
		reviews.GET("/my-reviews", authed, ctrls.Review.ListMyReviews)
		reviews.POST("", authed, ctrls.Review.AddReview)
		reviews.PUT("/:reviewId", authed, ctrls.Review.UpdateReview)
		reviews.DELETE("/:reviewId", authed, ctrls.Review.DeleteReview)
	}

	cart := api.Group("/cart", authed)
	{
		cart.GET("", ctrls.Cart.GetCart)
		cart.POST("", ctrls.Cart.AddItem)
		cart.PUT("/:itemId", ctrls.Cart.UpdateItem)
		cart.DELETE("/:itemId", ctrls.Cart.RemoveItem)
		cart.DELETE("", ctrls.Cart.ClearCart)
	}

	wishlist := api.Group("/wishlist", authed)
	{
		wishlist.GET("", ctrls.Wishlist.GetWishlist)
		wishlist.POST("", ctrls.Wishlist.AddItem)
		wishlist.DELETE("/:wishlistItemId", ctrls.Wishlist.RemoveItem)
	}

	orders := api.Group("/orders", authed)
	{
		orders.POST("", ctrls.Order.CreateOrder)
		orders.GET("", ctrls.Order.ListOrders)
		orders.GET("/:orderId", ctrls.Order.GetOrder)
		orders.GET("/:orderId/track", ctrls.Order.TrackOrder)
	}

	users := api.Group("/users", authed)
	{
		users.GET("/profile", ctrls.User.GetProfile)
		users.PUT("/profile", ctrls.User.UpdateProfile)
		users.PUT("/password", ctrls.User.ChangePassword)
		users.GET("/orders", ctrls.Order.ListOrders)
	}

	admin := api.Group("/admin", authed, middleware.AdminOnly())
	{
		admin.GET("/stats", ctrls.Admin.GetDashboard)
		admin.GET("/reports/sales", ctrls.Admin.GetSalesReport)

		admin.POST("/products", ctrls.Admin.CreateProduct)
		admin.PUT("/products/:productId", ctrls.Admin.UpdateProduct)
		admin.DELETE("/products/:productId", ctrls.Admin.DeleteProduct)

		admin.POST("/categories", ctrls.Category.CreateCategory)
		admin.DELETE("/categories/:categoryId", ctrls.Category.DeleteCategory)

		admin.GET("/orders", ctrls.Admin.ListOrders)
		admin.PUT("/orders/:orderId", ctrls.Admin.UpdateOrderStatus)

		admin.GET("/users", ctrls.Admin.ListUsers)
		admin.PUT("/users/:userId/role", ctrls.Admin.UpdateUserRole)
		admin.DELETE("/users/:userId", ctrls.Admin.DeleteUser)

		admin.DELETE("/reviews/:reviewId", ctrls.Review.DeleteReview)
	}
}
