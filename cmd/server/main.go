package main

import (
	"os"

	"furnistore/config"
	"furnistore/internal/delivery"
	"furnistore/internal/domain"
	"furnistore/internal/middleware"
	"furnistore/internal/repository"
	"furnistore/internal/usecase"
	"furnistore/pkg/db"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetOutput(os.Stdout)

	cfg := config.LoadConfig(log)

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.Warnf("Invalid log level '%s', defaulting to 'info'", cfg.LogLevel)
		level = logrus.InfoLevel
	}
	log.SetLevel(level)

	database, err := db.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close()
	log.Info("Database connection established")

	productRepo := repository.NewPostgresProductRepository(database, log)
	categoryRepo := repository.NewPostgresCategoryRepository(database, log)
	orderRepo := repository.NewPostgresOrderRepository(database, log)
	addressRepo := repository.NewPostgresAddressRepository(database, log)
	userRepo := repository.NewPostgresUserRepository(database, log)
	imageRepo := repository.NewPostgresImageRepository(database, log)

	var catalogReader domain.CatalogReader
	if cfg.LegacyCatalogPath != "" {
		legacyDB, err := db.OpenLegacyCatalog(cfg.LegacyCatalogPath)
		if err != nil {
			log.Fatalf("Failed to open legacy catalog: %v", err)
		}
		defer legacyDB.Close()
		catalogReader = repository.NewLegacyCatalogRepository(legacyDB, log)
		log.Info("Legacy catalog opened for read-only product serving")
	}

	if err := os.MkdirAll(cfg.UploadDir, 0o755); err != nil {
		log.Fatalf("Failed to create upload directory %s: %v", cfg.UploadDir, err)
	}

	productUC := usecase.NewProductUseCase(productRepo, categoryRepo, catalogReader, log)
	orderUC := usecase.NewOrderUseCase(orderRepo, cfg.FreeShippingLimit, cfg.FlatShippingFee, log)
	addressUC := usecase.NewAddressUseCase(addressRepo, log)
	userUC := usecase.NewUserUseCase(userRepo, cfg.JWTSecret, log)
	imageUC := usecase.NewImageUseCase(imageRepo, log)

	authHandler := delivery.NewAuthHandler(userUC, log)
	productHandler := delivery.NewProductHandler(productUC, log)
	orderHandler := delivery.NewOrderHandler(orderUC, log)
	addressHandler := delivery.NewAddressHandler(addressUC, log)
	imageHandler := delivery.NewImageHandler(imageUC, cfg.UploadDir, log)

	router := gin.New()
	router.Use(middleware.RequestLogger(log), gin.Recovery())

	api := router.Group("/api")
	authHandler.RegisterRoutes(api)
	productHandler.RegisterRoutes(api)

	// Checkout and tracking work for guests too; the session, when present,
	// only attaches ownership.
	public := api.Group("", middleware.OptionalAuthMiddleware(cfg.JWTSecret, log))
	orderHandler.RegisterRoutes(public)
	imageHandler.RegisterOrderImageRoutes(public)

	user := api.Group("/user", middleware.AuthMiddleware(cfg.JWTSecret, log))
	orderHandler.RegisterUserRoutes(user)
	addressHandler.RegisterRoutes(user)

	admin := api.Group("/admin", middleware.AuthMiddleware(cfg.JWTSecret, log), middleware.AdminMiddleware(log))
	orderHandler.RegisterAdminRoutes(admin)
	productHandler.RegisterAdminRoutes(admin)
	imageHandler.RegisterAdminRoutes(admin)

	log.Infof("Server starting on port %s", cfg.Port)
	if err := router.Run(cfg.Port); err != nil {
		log.Fatalf("Failed to run server: %v", err)
	}
}
