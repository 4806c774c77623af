package main

import (
	"fmt"
	"net/http"
	"os"

	"expenso/internal/config"
	"expenso/internal/database"
	"expenso/internal/handlers"
	"expenso/internal/logger"
	"expenso/internal/middleware"
	"expenso/internal/services"
	"expenso/internal/validator"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "expenso/internal/docs" // Import swagger docs
)

// @title           Expenso API
// @version         1.0
// @description     Expenso is an expense-reporting service: shared reports with hierarchical categories, role-based permissions, guest share links, and an expense approval workflow.

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
	if err := dbManager.RunMigrations(); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	// Initialize services
	db := dbManager.DB()
	userService := services.NewUserService(db)
	reportService := services.NewReportService(db)
	categoryService := services.NewCategoryService(db)
	permissionService := services.NewPermissionService(db)
	expenseService := services.NewExpenseService(db)
	auditService := services.NewAuditService(db)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(userService, auditService)
	reportHandler := handlers.NewReportHandler(reportService, auditService)
	categoryHandler := handlers.NewCategoryHandler(categoryService, auditService)
	permissionHandler := handlers.NewPermissionHandler(permissionService, auditService)
	expenseHandler := handlers.NewExpenseHandler(expenseService, auditService)
	guestHandler := handlers.NewGuestHandler(categoryService, expenseService)

	// Initialize Gin router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogging())
	router.Use(middleware.ErrorHandler())

	// CORS middleware
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Share-Token")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

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

	// Guest routes, authenticated by share-link token
	guest := v1.Group("/guest")
	guest.Use(middleware.GuestAuth(permissionService.LookupGuestToken))
	guest.GET("/category", guestHandler.GetCategory)
	guest.GET("/expenses", guestHandler.ListExpenses)
	guest.POST("/expenses", guestHandler.SubmitExpense)
	guest.PUT("/expenses/:id/status", guestHandler.UpdateExpenseStatus)

	// Protected routes
	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware())

	// User profile
	protected.GET("/profile", authHandler.GetProfile)
	protected.DELETE("/profile", authHandler.DeleteAccount)

	// Report routes
	reports := protected.Group("/reports")
	reports.POST("", reportHandler.CreateReport)
	reports.GET("", reportHandler.ListReports)
	reports.GET("/:id", reportHandler.GetReport)
	reports.DELETE("/:id", reportHandler.DeleteReport)

	// Category routes
	categories := protected.Group("/categories")
	categories.GET("/:id", categoryHandler.GetCategory)
	categories.PUT("/:id", categoryHandler.UpdateCategory)
	categories.DELETE("/:id", categoryHandler.DeleteCategory)
	categories.POST("/:id/subcategories", categoryHandler.CreateSubcategory)

	// Permission and share-link routes
	categories.POST("/:id/permissions", permissionHandler.Grant)
	categories.GET("/:id/permissions", permissionHandler.ListPermissions)
	categories.DELETE("/:id/permissions/:userID", permissionHandler.Revoke)
	categories.POST("/:id/share-links", permissionHandler.CreateShareLink)
	categories.GET("/:id/share-links", permissionHandler.ListShareLinks)
	categories.DELETE("/:id/share-links/:linkID", permissionHandler.RevokeShareLink)

	// Expense routes
	categories.POST("/:id/expenses", expenseHandler.SubmitExpense)
	categories.GET("/:id/expenses", expenseHandler.ListCategoryExpenses)
	expenses := protected.Group("/expenses")
	expenses.GET("/:id", expenseHandler.GetExpense)
	expenses.DELETE("/:id", expenseHandler.DeleteExpense)
	expenses.GET("/:id/approvals", expenseHandler.ListApprovals)
	expenses.PUT("/:id/status", expenseHandler.UpdateExpenseStatus)

	log.Infof("Starting Expenso backend server on port %s", appConfig.Port)
	log.Infof("Swagger documentation available at http://localhost:%s/swagger/index.html", appConfig.Port)
	return router.Run(":" + appConfig.Port)
}
