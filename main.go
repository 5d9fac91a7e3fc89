package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"commerce-api/common/auth"
	"commerce-api/common/logger"
	"commerce-api/controllers"
	"commerce-api/database"
	"commerce-api/images"
	"commerce-api/mail"
	"commerce-api/repository"
	"commerce-api/routes"
	"commerce-api/services"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

const tokenTTL = 24 * time.Hour

func main() {
	// Load .env file (optional, falls back to system env)
	_ = godotenv.Load()

	cfg, err := LoadConfig()
	if err != nil {
		zap.NewExample().Fatal("Failed to load configuration", zap.Error(err))
	}

	logger.Initialize(cfg.Env)
	defer logger.Log.Sync()

	if err := database.ConnectWithConfig(cfg.MongoURI, cfg.MongoDB); err != nil {
		zap.L().Fatal("Failed to connect to MongoDB", zap.Error(err))
	}
	defer func() {
		if err := database.Close(); err != nil {
			zap.L().Error("Failed to close MongoDB", zap.Error(err))
		}
	}()

	tokenManager, err := auth.NewTokenManager(cfg.JWTSecret, tokenTTL)
	if err != nil {
		zap.L().Fatal("Failed to initialize token manager", zap.Error(err))
	}

	// Optional backends fall back to no-ops so the API still serves
	// without image or mail credentials.
	var imageStore images.Store = images.NoopStore{}
	if cfg.CloudinaryURL != "" {
		store, err := images.NewCloudinaryStore(cfg.CloudinaryURL)
		if err != nil {
			zap.L().Warn("Cloudinary init failed, image uploads disabled", zap.Error(err))
		} else {
			imageStore = store
		}
	}

	var mailer mail.EmailSender = mail.NoopSender{}
	if cfg.SMTPHost != "" {
		sender, err := mail.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword)
		if err != nil {
			zap.L().Warn("SMTP init failed, order emails disabled", zap.Error(err))
		} else {
			mailer = sender
		}
	}

	// --- Dependency injection ---

	productRepo := repository.NewProductRepository(database.DB)
	orderRepo := repository.NewOrderRepository(database.DB)
	reviewRepo := repository.NewReviewRepository(database.DB)
	cartRepo := repository.NewCartRepository(database.DB)
	wishlistRepo := repository.NewWishlistRepository(database.DB)
	categoryRepo := repository.NewCategoryRepository(database.DB)
	userRepo := repository.NewUserRepository(database.DB)

	indexCtx, cancelIndexes := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelIndexes()
	for name, fn := range map[string]func(context.Context) error{
		"products":   productRepo.EnsureIndexes,
		"reviews":    reviewRepo.EnsureIndexes,
		"carts":      cartRepo.EnsureIndexes,
		"wishlists":  wishlistRepo.EnsureIndexes,
		"categories": categoryRepo.EnsureIndexes,
		"users":      userRepo.EnsureIndexes,
	} {
		if err := fn(indexCtx); err != nil {
			zap.L().Warn("Failed to ensure indexes", zap.String("collection", name), zap.Error(err))
		}
	}

	authService := services.NewAuthService(userRepo, tokenManager)
	productService := services.NewProductService(productRepo, categoryRepo, userRepo)
	categoryService := services.NewCategoryService(categoryRepo)
	cartService := services.NewCartService(cartRepo, productRepo)
	wishlistService := services.NewWishlistService(wishlistRepo, productRepo)
	orderService := services.NewOrderService(orderRepo, productRepo, cartRepo, userRepo, mailer)
	reviewService := services.NewReviewService(reviewRepo, productRepo, orderRepo)
	userService := services.NewUserService(userRepo)
	adminService := services.NewAdminService(productRepo, categoryRepo, orderRepo, userRepo, imageStore)

	ctrls := routes.Controllers{
		Auth:     controllers.NewAuthController(authService),
		Product:  controllers.NewProductController(productService),
		Category: controllers.NewCategoryController(categoryService),
		Cart:     controllers.NewCartController(cartService),
		Wishlist: controllers.NewWishlistController(wishlistService),
		Order:    controllers.NewOrderController(orderService),
		Review:   controllers.NewReviewController(reviewService),
		User:     controllers.NewUserController(userService),
		Admin:    controllers.NewAdminController(adminService),
	}

	// --- HTTP server ---

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logger.RequestLogger())

	// Request timeout
	r.Use(func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 30*time.Second)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	})

	routes.Register(r, ctrls, tokenManager, cfg.AllowedOrigins)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		zap.L().Info("Commerce API starting", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zap.L().Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for an interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zap.L().Info("Shutting down Commerce API...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zap.L().Fatal("Server forced to shutdown", zap.Error(err))
	}

	zap.L().Info("Commerce API stopped gracefully")
}
