package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"aisle/internal/config"
	"aisle/internal/database"
	"aisle/internal/handlers"
	"aisle/internal/logger"
	"aisle/internal/middleware"
	"aisle/internal/services"
	"aisle/internal/validator"

	_ "aisle/internal/docs" // Import swagger docs
)

// @title           Aisle API
// @version         1.0
// @description     Aisle is a wedding budget planner. Scenarios hold a tree of budget folders and items; vendors and a payment ledger track where the money actually goes.
// @termsOfService  http://swagger.io/terms/

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	// Initialize logger (use ENV var if available, default to development)
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	if err := run(); err != nil {
		logger.Get().Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	log := logger.Get()

	// Load configuration
	appConfig, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Register custom request validators
	validator.Register()

	// Initialize database configuration
	dbConfig, err := database.NewConfig()
	if err != nil {
		return fmt.Errorf("failed to load database configuration: %w", err)
	}

	// Create database manager
	dbManager, err := database.NewManager(dbConfig)
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}

	// Run migrations
	if err := dbManager.Migrate(); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	// Initialize services
	db := dbManager.DB()
	userService := services.NewUserService(db)
	auditService := services.NewAuditService(db)
	scenarioService := services.NewScenarioService(db)
	paymentService := services.NewPaymentService(db)
	nodeService := services.NewNodeService(db, paymentService)
	vendorService := services.NewVendorService(db)
	dashboardService := services.NewDashboardService(db, scenarioService, paymentService)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(userService, auditService)
	scenarioHandler := handlers.NewScenarioHandler(scenarioService, auditService)
	nodeHandler := handlers.NewNodeHandler(nodeService, auditService)
	vendorHandler := handlers.NewVendorHandler(vendorService, auditService)
	paymentHandler := handlers.NewPaymentHandler(paymentService, auditService)
	dashboardHandler := handlers.NewDashboardHandler(dashboardService)

	// Initialize Gin router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogging())
	router.Use(middleware.ErrorHandler())
	router.Use(middleware.Metrics())

	// CORS middleware
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Prometheus metrics
	router.GET("/metrics", middleware.MetricsHandler())

	// Health check endpoint
	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// API v1 group
	v1 := router.Group("/api/v1")

	// Public routes
	auth := v1.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.POST("/refresh", authHandler.Refresh)

	// Protected routes
	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware())

	// User profile
	protected.GET("/profile", authHandler.GetProfile)

	// Scenario routes
	scenarios := protected.Group("/scenarios")
	scenarios.POST("", scenarioHandler.CreateScenario)
	scenarios.GET("", scenarioHandler.GetScenarios)
	scenarios.GET("/:id", scenarioHandler.GetScenario)
	scenarios.PUT("/:id", scenarioHandler.UpdateScenario)
	scenarios.DELETE("/:id", scenarioHandler.DeleteScenario)
	scenarios.POST("/:id/nodes", nodeHandler.CreateNode)
	scenarios.GET("/:id/tree", nodeHandler.GetTree)
	scenarios.GET("/:id/summary", dashboardHandler.GetScenarioSummary)
	scenarios.GET("/:id/payments", paymentHandler.GetScenarioPayments)
	scenarios.GET("/:id/payments/upcoming", paymentHandler.GetUpcomingPayments)

	// Node routes
	nodes := protected.Group("/nodes")
	nodes.GET("/:id", nodeHandler.GetNode)
	nodes.PUT("/:id", nodeHandler.UpdateNode)
	nodes.DELETE("/:id", nodeHandler.DeleteNode)
	nodes.POST("/:id/check-move", nodeHandler.CheckMove)
	nodes.POST("/:id/move", nodeHandler.MoveNode)
	nodes.GET("/:id/move-targets", nodeHandler.GetMoveTargets)
	nodes.POST("/:id/reorder", nodeHandler.ReorderNode)
	nodes.GET("/:id/breadcrumb", nodeHandler.GetBreadcrumb)
	nodes.GET("/:id/totals", nodeHandler.GetFolderTotals)
	nodes.GET("/:id/payments", paymentHandler.GetNodePayments)

	// Vendor routes
	vendors := protected.Group("/vendors")
	vendors.POST("", vendorHandler.CreateVendor)
	vendors.GET("", vendorHandler.GetVendors)
	vendors.GET("/:id", vendorHandler.GetVendor)
	vendors.PUT("/:id", vendorHandler.UpdateVendor)
	vendors.DELETE("/:id", vendorHandler.DeleteVendor)

	// Payment routes
	payments := protected.Group("/payments")
	payments.POST("", paymentHandler.CreatePayment)
	payments.POST("/:id/pay", paymentHandler.MarkPaid)
	payments.DELETE("/:id", paymentHandler.DeletePayment)

	log.Infof("Starting Aisle backend server on port %s", appConfig.Port)
	log.Infof("Swagger documentation available at http://localhost:%s/swagger/index.html", appConfig.Port)
	return router.Run(":" + appConfig.Port)
}
