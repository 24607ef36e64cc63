package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"shoe-storefront/internal/cache"
	"shoe-storefront/internal/config"
	"shoe-storefront/internal/database"
	"shoe-storefront/internal/events"
	"shoe-storefront/internal/logger"
	custommiddleware "shoe-storefront/internal/middleware"
	"shoe-storefront/internal/notify"
	"shoe-storefront/internal/repository"
	"shoe-storefront/internal/service"
	"shoe-storefront/internal/storage"
	"shoe-storefront/internal/transport"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Dependencies are the external resources the server is built on. The
// server owns them after NewServer and releases them in Close.
type Dependencies struct {
	DB        *database.Service
	Redis     *redis.Client
	Storage   *storage.Local
	Notifier  notify.Notifier
	Publisher events.Publisher
}

type Server struct {
	*http.Server
	config *config.Config
	logger *zap.Logger
	deps   Dependencies
}

func NewServer(cfg *config.Config, logger *zap.Logger, deps Dependencies) *Server {
	s := &Server{
		config: cfg,
		logger: logger,
		deps:   deps,
	}

	s.Server = &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      s.routes(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	return s
}

func (s *Server) routes() http.Handler {
	cfg, log := s.config, s.logger
	db := s.deps.DB.DB()

	router := chi.NewRouter()
	router.Use(custommiddleware.DefaultMiddlewareStack()...)
	router.Use(custommiddleware.ErrorHandlingMiddleware(log))
	router.Use(custommiddleware.LoggingMiddleware(logger.Named(log, "http")))
	router.Use(custommiddleware.CORSMiddleware(cfg.CORS.AllowedOrigins, cfg.IsDevelopment()))

	router.Get("/health", s.health)
	router.Handle("/media/*", http.StripPrefix("/media/", http.FileServer(http.Dir(s.deps.Storage.Dir()))))

	// Repositories
	tx := repository.NewTransactor(db)
	userRepo := repository.NewUserRepository(db)
	refreshTokenRepo := repository.NewRefreshTokenRepository(db)
	addressRepo := repository.NewAddressRepository(db)
	colorRepo := repository.NewColorRepository(db)
	sizeRepo := repository.NewSizeRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	productRepo := repository.NewProductRepository(db)
	basketRepo := repository.NewBasketRepository(db)
	wishlistRepo := repository.NewWishlistRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	contentRepo := repository.NewContentRepository(db)

	// Services
	var catalogCache cache.Cache = cache.NewRedisCache(s.deps.Redis, "storefront", cfg.Cache.TTL)
	cacheLog := logger.Named(log, "cache")

	userService := service.NewUserService(userRepo, refreshTokenRepo, service.TokenConfig{
		Secret:     cfg.JWT.Secret,
		AccessTTL:  time.Duration(cfg.JWT.AccessExpiry) * time.Minute,
		RefreshTTL: time.Duration(cfg.JWT.RefreshExpiry) * 24 * time.Hour,
	})
	addressService := service.NewAddressService(addressRepo, tx)
	colorService := service.NewColorService(colorRepo, catalogCache, cacheLog)
	sizeService := service.NewSizeService(sizeRepo, catalogCache, cacheLog)
	categoryService := service.NewCategoryService(categoryRepo, catalogCache, cacheLog)
	productService := service.NewProductService(productRepo, sizeRepo, tx, catalogCache, logger.Named(log, "products"))
	basketService := service.NewBasketService(basketRepo, productRepo)
	wishlistService := service.NewWishlistService(wishlistRepo, productRepo)
	orderService := service.NewOrderService(
		orderRepo, basketRepo, addressRepo, userRepo, tx,
		s.deps.Notifier, s.deps.Publisher, logger.Named(log, "orders"),
	)
	contentService := service.NewContentService(contentRepo, categoryRepo, tx, catalogCache, logger.Named(log, "content"))

	// Handlers
	userHandler := transport.NewUserHandler(userService, addressService, log)
	catalogHandler := transport.NewCatalogHandler(productService, categoryService, contentService, log)
	basketHandler := transport.NewBasketHandler(basketService, wishlistService, log)
	orderHandler := transport.NewOrderHandler(orderService, log)
	adminHandler := transport.NewAdminHandler(
		productService, colorService, sizeService, categoryService, contentService,
		s.deps.Storage, cfg.Storage.MaxUploadMB<<20, log,
	)

	authMiddleware := custommiddleware.AuthMiddleware(cfg.JWT.Secret, log)
	authLimiter := custommiddleware.RateLimitMiddleware(s.deps.Redis, custommiddleware.RateLimitConfig{
		RequestsPerWindow: cfg.RateLimit.Requests,
		Window:            cfg.RateLimit.Window,
		KeyPrefix:         "ratelimit:auth",
	}, log)
	checkoutLimiter := custommiddleware.RateLimitMiddleware(s.deps.Redis, custommiddleware.RateLimitConfig{
		RequestsPerWindow: cfg.RateLimit.Requests,
		Window:            cfg.RateLimit.Window,
		KeyPrefix:         "ratelimit:checkout",
	}, log)

	userHandler.RegisterRoutes(router, authMiddleware, authLimiter)
	catalogHandler.RegisterRoutes(router)
	basketHandler.RegisterRoutes(router, authMiddleware)
	orderHandler.RegisterRoutes(router, authMiddleware, checkoutLimiter)

	router.Route("/api/admin", func(r chi.Router) {
		r.Use(authMiddleware)
		r.Use(custommiddleware.RequireAdmin(log))
		adminHandler.RegisterRoutes(r)
		orderHandler.RegisterAdminRoutes(r)
	})

	return router
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	status := http.StatusOK
	body := map[string]interface{}{
		"status":   "ok",
		"database": s.deps.DB.Health(r.Context()),
	}

	ctx, cancel := context.WithTimeout(r.Context(), time.Second)
	defer cancel()
	if err := s.deps.Redis.Ping(ctx).Err(); err != nil {
		body["redis"] = "down"
	} else {
		body["redis"] = "up"
	}

	if dbHealth, _ := body["database"].(map[string]string); dbHealth["status"] != "up" {
		body["status"] = "degraded"
		status = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// Close releases everything in Dependencies. Call it after Shutdown.
func (s *Server) Close() error {
	s.logger.Info("Closing server resources")

	if s.deps.Publisher != nil {
		if err := s.deps.Publisher.Close(); err != nil {
			s.logger.Error("Failed to close event publisher", zap.Error(err))
		}
	}

	if s.deps.Redis != nil {
		if err := s.deps.Redis.Close(); err != nil {
			s.logger.Error("Failed to close redis client", zap.Error(err))
		}
	}

	if s.deps.DB != nil {
		if err := s.deps.DB.Close(); err != nil {
			s.logger.Error("Failed to close database connection", zap.Error(err))
		}
	}

	_ = s.logger.Sync()
	return nil
}
