package main

import (
	"rental-service/internal/handler"
	"rental-service/internal/middleware"
	"rental-service/internal/repository"
	"rental-service/internal/service"
	"rental-service/internal/tenant"
	"rental-service/pkg/config"
	"rental-service/pkg/database"
	"rental-service/pkg/hash"
	"rental-service/pkg/jwtutil"
	"rental-service/pkg/logger"

	"rental-service/prometheus"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

func main() {
	// Load configuration from .env file and environment variables
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger with config
	logger.InitLogger(cfg)
	log := logger.GetLogger()
	log.Info("Starting rental service...", zap.String("environment", cfg.Server.Env))

	// Initialize database
	if err := database.InitDB(cfg); err != nil {
		log.Fatal("Failed to initialize database", zap.Error(err))
	}
	log.Info("Database connection established")
	db := database.GetDB()

	// Token codec; a bad signing configuration is fatal at startup
	codec, err := jwtutil.New(&jwtutil.Config{
		SigningKey: cfg.JWT.SigningKey,
		Algorithm:  cfg.JWT.Algorithm,
		AccessTTL:  cfg.JWT.AccessTTL,
		RefreshTTL: cfg.JWT.RefreshTTL,
	})
	if err != nil {
		log.Fatal("Failed to initialize token codec", zap.Error(err))
	}

	hasher := hash.NewPasswordHasher(cfg.Auth.BcryptCost)
	resolver := tenant.NewResolver(db, log)
	store := repository.NewGormStore(db)
	access := service.NewAccessControl(store)
	authService := service.NewAuthService(store, store, hasher, codec, resolver, log)
	userService := service.NewUserService(store, access, hasher, resolver, log)

	authHandler := handler.NewAuthHandler(authService, codec)
	userHandler := handler.NewUserHandler(userService, access)
	tenantHandler := handler.NewTenantHandler(resolver, access)
	propertyHandler := handler.NewPropertyHandler(db, resolver)
	reservationHandler := handler.NewReservationHandler(db)

	// Initialize Echo framework
	e := echo.New()

	// Apply global middleware - order matters
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORS())
	e.Use(middleware.RequestIDMiddleware)
	e.Use(logger.Middleware(log))
	e.Use(prometheus.MetricsMiddleware())

	// Public routes - no authentication required
	e.GET("/health", handler.HealthCheck)
	e.GET("/metrics", handler.MetricsHandler)

	// Authentication routes - tenant-aware but unauthenticated
	auth := e.Group("/auth", middleware.TenantMiddleware(resolver))
	auth.POST("/signup", authHandler.Signup)
	auth.POST("/signin", authHandler.Signin)
	auth.POST("/refresh", authHandler.Refresh)
	auth.POST("/signout", authHandler.Signout, middleware.AuthMiddleware(codec, store))

	// API routes - all require tenant context and authentication
	api := e.Group("/api", middleware.TenantMiddleware(resolver), middleware.AuthMiddleware(codec, store))

	// User management
	users := api.Group("/users")
	users.GET("", userHandler.List)
	users.POST("", userHandler.Create)
	users.GET("/:id", userHandler.Get)
	users.PUT("/:id", userHandler.Update)
	users.DELETE("/:id", userHandler.Delete)

	// Tenant management - operates on the public schema
	tenants := api.Group("/tenants")
	tenants.POST("", tenantHandler.Create)
	tenants.GET("/:id", tenantHandler.Get)

	// Properties
	properties := api.Group("/properties")
	properties.POST("", propertyHandler.Create)
	properties.GET("", propertyHandler.List)
	properties.GET("/:id", propertyHandler.Get)
	properties.PUT("/:id", propertyHandler.Update)
	properties.DELETE("/:id", propertyHandler.Delete)

	// Reservations
	reservations := api.Group("/reservations")
	reservations.POST("", reservationHandler.Create)
	reservations.GET("", reservationHandler.List)
	reservations.GET("/:id", reservationHandler.Get)
	reservations.PATCH("/:id/status", reservationHandler.UpdateStatus)
	reservations.DELETE("/:id", reservationHandler.Delete)

	// Start server
	port := cfg.Server.Port
	log.Info("Starting server", zap.String("port", port))
	if err := e.Start(":" + port); err != nil {
		log.Fatal("Failed to start server", zap.Error(err))
	}
}
