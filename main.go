package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"sweetshop/constants"
	"sweetshop/controllers"
	"sweetshop/dto"
	"sweetshop/events"
	"sweetshop/infra"
	"sweetshop/middlewares"
	"sweetshop/repositories"
	"sweetshop/services"
)

type dependencies struct {
	db              *gorm.DB
	cfg             infra.Config
	logger          *zap.Logger
	tokenRepository repositories.ITokenRepository
	publisher       events.Publisher
}

type serviceSet struct {
	auth      services.IAuthService
	sweet     services.ISweetService
	inventory services.IInventoryService
}

func buildServices(deps dependencies) serviceSet {
	sweetRepository := repositories.NewSweetRepository(deps.db)
	authRepository := repositories.NewAuthRepository(deps.db)

	tokenRepository := deps.tokenRepository
	if tokenRepository == nil {
		tokenRepository = repositories.NewTokenRepository(deps.db)
	}
	publisher := deps.publisher
	if publisher == nil {
		publisher = events.NopPublisher{}
	}

	tokens := services.NewTokenManager(deps.cfg.SecretKey, deps.cfg.TokenTTL, deps.cfg.TokenIssuer)

	return serviceSet{
		auth:      services.NewAuthService(authRepository, tokenRepository, tokens, deps.logger),
		sweet:     services.NewSweetService(sweetRepository, deps.logger),
		inventory: services.NewInventoryService(sweetRepository, publisher, deps.cfg.LowStockThreshold, deps.logger),
	}
}

func setupRouter(deps dependencies, svc serviceSet) *gin.Engine {
	sweetController := controllers.NewSweetController(svc.sweet, deps.logger)
	inventoryController := controllers.NewInventoryController(svc.inventory, deps.logger)
	authController := controllers.NewAuthController(svc.auth, deps.logger)

	r := gin.New()
	r.Use(middlewares.RequestLogger(deps.logger))
	r.Use(gin.Recovery())
	r.Use(corsMiddleware(deps.cfg))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, dto.HealthResponse{Status: "OK", Message: constants.MsgServerRunning})
	})

	authRouter := r.Group("/api/auth")
	authRouter.POST("/register", authController.Register)
	authRouter.POST("/login", authController.Login)

	authRouterWithAuth := r.Group("/api/auth", middlewares.AuthMiddleware(svc.auth))
	authRouterWithAuth.POST("/logout", authController.Logout)
	authRouterWithAuth.GET("/me", authController.Me)

	sweetRouterWithAuth := r.Group("/api/sweets", middlewares.AuthMiddleware(svc.auth))
	sweetRouterWithAdminAuth := r.Group("/api/sweets",
		middlewares.AuthMiddleware(svc.auth),
		middlewares.RoleBasedAccessControl(deps.logger, constants.RoleAdmin))

	sweetRouterWithAuth.GET("", sweetController.FindAll)
	sweetRouterWithAuth.GET("/search", sweetController.Search)
	sweetRouterWithAuth.GET("/:id", sweetController.FindById)
	sweetRouterWithAuth.GET("/:id/stock", inventoryController.CheckStock)
	sweetRouterWithAuth.POST("/:id/purchase", inventoryController.Purchase)

	sweetRouterWithAdminAuth.POST("", sweetController.Create)
	sweetRouterWithAdminAuth.GET("/low-stock", inventoryController.LowStock)
	sweetRouterWithAdminAuth.GET("/stats", inventoryController.Statistics)
	sweetRouterWithAdminAuth.PUT("/:id", sweetController.Update)
	sweetRouterWithAdminAuth.DELETE("/:id", sweetController.Delete)
	sweetRouterWithAdminAuth.POST("/:id/restock", inventoryController.Restock)

	return r
}

func corsMiddleware(cfg infra.Config) gin.HandlerFunc {
	if len(cfg.CORSOrigins) == 0 {
		return cors.Default()
	}
	return cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	})
}

func main() {
	infra.Initialize()

	cfg, err := infra.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := infra.NewLogger(cfg)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	if cfg.IsProd() {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := infra.SetupDB(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	if cfg.AutoMigrate {
		if err := infra.Migrate(db); err != nil {
			logger.Fatal("Failed to migrate database", zap.Error(err))
		}
	}

	deps := dependencies{db: db, cfg: cfg, logger: logger}

	ctx := context.Background()
	redisClient, err := infra.SetupRedis(ctx, cfg)
	if err != nil {
		logger.Fatal("Failed to connect to redis", zap.Error(err))
	}
	if redisClient != nil {
		defer redisClient.Close()
		deps.tokenRepository = repositories.NewRedisTokenRepository(redisClient, "sweetshop:blacklist:")
		logger.Info("Using redis token blacklist", zap.String("addr", cfg.RedisAddr))
	}

	if cfg.AMQPURL != "" {
		publisher, err := events.NewAMQPPublisher(cfg.AMQPURL, cfg.AMQPExchange)
		if err != nil {
			logger.Fatal("Failed to connect to rabbitmq", zap.Error(err))
		}
		defer publisher.Close()
		deps.publisher = publisher
		logger.Info("Publishing inventory events", zap.String("exchange", cfg.AMQPExchange))
	}

	svc := buildServices(deps)

	if cfg.AdminEmail != "" && cfg.AdminPassword != "" {
		if err := svc.auth.EnsureAdmin(ctx, cfg.AdminName, cfg.AdminEmail, cfg.AdminPassword); err != nil {
			logger.Fatal("Failed to bootstrap admin", zap.Error(err))
		}
	}

	r := setupRouter(deps, svc)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("Starting server", zap.String("port", cfg.Port), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}
	logger.Info("Server exited")
}
