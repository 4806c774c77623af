package integration

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"expenso/internal/handlers"
	"expenso/internal/logger"
	"expenso/internal/middleware"
	"expenso/internal/models"
	"expenso/internal/services"
	"expenso/internal/validator"
)

// testApp holds the full application stack for integration tests.
type testApp struct {
	DB     *gorm.DB
	Router *gin.Engine
}

// dbCounter ensures each test gets a unique in-memory database.
var dbCounter atomic.Int64

func init() {
	gin.SetMode(gin.TestMode)
	logger.Init("test")
	validator.Register()
}

// setupIsolatedDB creates an isolated in-memory SQLite database for a single test.
func setupIsolatedDB(t *testing.T) *gorm.DB {
	t.Helper()

	n := dbCounter.Add(1)
	dsn := fmt.Sprintf("file:testdb%d?mode=memory&cache=shared", n)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	allModels := []interface{}{
		&models.User{},
		&models.Report{},
		&models.Category{},
		&models.CategoryPermission{},
		&models.GuestToken{},
		&models.Expense{},
		&models.Approval{},
		&models.AuditLog{},
	}
	if err := db.AutoMigrate(allModels...); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return db
}

// setupApp creates a full application stack backed by an isolated in-memory SQLite.
func setupApp(t *testing.T) *testApp {
	t.Helper()

	db := setupIsolatedDB(t)

	// Services
	userService := services.NewUserService(db)
	reportService := services.NewReportService(db)
	categoryService := services.NewCategoryService(db)
	permissionService := services.NewPermissionService(db)
	expenseService := services.NewExpenseService(db)
	auditService := services.NewAuditService(db)

	// Handlers
	authHandler := handlers.NewAuthHandler(userService, auditService)
	reportHandler := handlers.NewReportHandler(reportService, auditService)
	categoryHandler := handlers.NewCategoryHandler(categoryService, auditService)
	permissionHandler := handlers.NewPermissionHandler(permissionService, auditService)
	expenseHandler := handlers.NewExpenseHandler(expenseService, auditService)
	guestHandler := handlers.NewGuestHandler(categoryService, expenseService)

	// Router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.ErrorHandler())

	v1 := router.Group("/api/v1")

	// Public auth routes
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

	protected.GET("/profile", authHandler.GetProfile)
	protected.DELETE("/profile", authHandler.DeleteAccount)

	reports := protected.Group("/reports")
	reports.POST("", reportHandler.CreateReport)
	reports.GET("", reportHandler.ListReports)
	reports.GET("/:id", reportHandler.GetReport)
	reports.DELETE("/:id", reportHandler.DeleteReport)

	categories := protected.Group("/categories")
	categories.GET("/:id", categoryHandler.GetCategory)
	categories.PUT("/:id", categoryHandler.UpdateCategory)
	categories.DELETE("/:id", categoryHandler.DeleteCategory)
	categories.POST("/:id/subcategories", categoryHandler.CreateSubcategory)

	categories.POST("/:id/permissions", permissionHandler.Grant)
	categories.GET("/:id/permissions", permissionHandler.ListPermissions)
	categories.DELETE("/:id/permissions/:userID", permissionHandler.Revoke)
	categories.POST("/:id/share-links", permissionHandler.CreateShareLink)
	categories.GET("/:id/share-links", permissionHandler.ListShareLinks)
	categories.DELETE("/:id/share-links/:linkID", permissionHandler.RevokeShareLink)

	categories.POST("/:id/expenses", expenseHandler.SubmitExpense)
	categories.GET("/:id/expenses", expenseHandler.ListCategoryExpenses)

	expenses := protected.Group("/expenses")
	expenses.GET("/:id", expenseHandler.GetExpense)
	expenses.DELETE("/:id", expenseHandler.DeleteExpense)
	expenses.GET("/:id/approvals", expenseHandler.ListApprovals)
	expenses.PUT("/:id/status", expenseHandler.UpdateExpenseStatus)

	return &testApp{DB: db, Router: router}
}

// request makes an HTTP request to the test router and returns the recorder.
func (app *testApp) request(method, path, body, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, req)
	return rec
}

// guestRequest makes an HTTP request authenticated by a share-link token.
func (app *testApp) guestRequest(method, path, body, shareToken string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if shareToken != "" {
		req.Header.Set("X-Share-Token", shareToken)
	}
	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, req)
	return rec
}

// parseJSON parses the response body into a map.
func parseJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var result map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse JSON: %v\nbody: %s", err, rec.Body.String())
	}
	return result
}

// registerUser registers a new user and returns the access token, refresh token, and user ID.
func (app *testApp) registerUser(t *testing.T, email, password string) (accessToken, refreshToken string, userID float64) {
	t.Helper()
	body := fmt.Sprintf(`{"email":%q,"password":%q,"display_name":"Test User"}`, email, password)
	rec := app.request("POST", "/api/v1/auth/register", body, "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("register failed: %d %s", rec.Code, rec.Body.String())
	}
	result := parseJSON(t, rec)
	user := result["user"].(map[string]interface{})
	return result["access_token"].(string), result["refresh_token"].(string), user["id"].(float64)
}

// createReport creates a report and returns its ID and the root category ID.
func (app *testApp) createReport(t *testing.T, token, name string) (reportID, rootID float64) {
	t.Helper()
	rec := app.request("POST", "/api/v1/reports", fmt.Sprintf(`{"name":%q}`, name), token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create report failed: %d %s", rec.Code, rec.Body.String())
	}
	report := parseJSON(t, rec)["report"].(map[string]interface{})
	root := report["categories"].([]interface{})[0].(map[string]interface{})
	return report["id"].(float64), root["id"].(float64)
}

// createSubcategory creates a child category and returns its ID.
func (app *testApp) createSubcategory(t *testing.T, token string, parentID float64, name string) float64 {
	t.Helper()
	rec := app.request("POST", fmt.Sprintf("/api/v1/categories/%.0f/subcategories", parentID),
		fmt.Sprintf(`{"name":%q}`, name), token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create subcategory failed: %d %s", rec.Code, rec.Body.String())
	}
	return parseJSON(t, rec)["category"].(map[string]interface{})["id"].(float64)
}

// submitExpense submits an expense into a category and returns its ID.
func (app *testApp) submitExpense(t *testing.T, token string, categoryID float64, amount int) float64 {
	t.Helper()
	rec := app.request("POST", fmt.Sprintf("/api/v1/categories/%.0f/expenses", categoryID),
		fmt.Sprintf(`{"amount":%d,"description":"Test expense"}`, amount), token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("submit expense failed: %d %s", rec.Code, rec.Body.String())
	}
	return parseJSON(t, rec)["expense"].(map[string]interface{})["id"].(float64)
}

// grantRole grants a role on a category to a user.
func (app *testApp) grantRole(t *testing.T, token string, categoryID, targetUserID float64, role string) {
	t.Helper()
	rec := app.request("POST", fmt.Sprintf("/api/v1/categories/%.0f/permissions", categoryID),
		fmt.Sprintf(`{"user_id":%.0f,"role":%q}`, targetUserID, role), token)
	if rec.Code != http.StatusCreated && rec.Code != http.StatusOK {
		t.Fatalf("grant failed: %d %s", rec.Code, rec.Body.String())
	}
}

// createShareLink creates a share link on a category and returns its secret token.
func (app *testApp) createShareLink(t *testing.T, token string, categoryID float64, level string) (secret string, linkID float64) {
	t.Helper()
	rec := app.request("POST", fmt.Sprintf("/api/v1/categories/%.0f/share-links", categoryID),
		fmt.Sprintf(`{"permission_level":%q}`, level), token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create share link failed: %d %s", rec.Code, rec.Body.String())
	}
	link := parseJSON(t, rec)["share_link"].(map[string]interface{})
	return link["token"].(string), link["id"].(float64)
}

// setStatus applies a status transition and returns the resulting status.
func (app *testApp) setStatus(t *testing.T, token string, expenseID float64, status string) string {
	t.Helper()
	rec := app.request("PUT", fmt.Sprintf("/api/v1/expenses/%.0f/status", expenseID),
		fmt.Sprintf(`{"status":%q}`, status), token)
	if rec.Code != http.StatusOK {
		t.Fatalf("status update failed: %d %s", rec.Code, rec.Body.String())
	}
	return parseJSON(t, rec)["expense"].(map[string]interface{})["status"].(string)
}
