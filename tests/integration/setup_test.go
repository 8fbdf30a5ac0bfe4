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

	"aisle/internal/handlers"
	"aisle/internal/logger"
	"aisle/internal/middleware"
	"aisle/internal/models"
	"aisle/internal/services"
	"aisle/internal/validator"
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
		&models.Scenario{},
		&models.BudgetNode{},
		&models.Vendor{},
		&models.Payment{},
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
	auditService := services.NewAuditService(db)
	scenarioService := services.NewScenarioService(db)
	paymentService := services.NewPaymentService(db)
	nodeService := services.NewNodeService(db, paymentService)
	vendorService := services.NewVendorService(db)
	dashboardService := services.NewDashboardService(db, scenarioService, paymentService)

	// Handlers
	authHandler := handlers.NewAuthHandler(userService, auditService)
	scenarioHandler := handlers.NewScenarioHandler(scenarioService, auditService)
	nodeHandler := handlers.NewNodeHandler(nodeService, auditService)
	vendorHandler := handlers.NewVendorHandler(vendorService, auditService)
	paymentHandler := handlers.NewPaymentHandler(paymentService, auditService)
	dashboardHandler := handlers.NewDashboardHandler(dashboardService)

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

	// Protected routes
	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware())

	protected.GET("/profile", authHandler.GetProfile)

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

	vendors := protected.Group("/vendors")
	vendors.POST("", vendorHandler.CreateVendor)
	vendors.GET("", vendorHandler.GetVendors)
	vendors.GET("/:id", vendorHandler.GetVendor)
	vendors.PUT("/:id", vendorHandler.UpdateVendor)
	vendors.DELETE("/:id", vendorHandler.DeleteVendor)

	payments := protected.Group("/payments")
	payments.POST("", paymentHandler.CreatePayment)
	payments.POST("/:id/pay", paymentHandler.MarkPaid)
	payments.DELETE("/:id", paymentHandler.DeletePayment)

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
func (app *testApp) registerUser(t *testing.T, email, password string) (accessToken, refreshToken, userID string) {
	t.Helper()
	body := fmt.Sprintf(`{"email":%q,"password":%q,"first_name":"Test","last_name":"User"}`, email, password)
	rec := app.request("POST", "/api/v1/auth/register", body, "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("register failed: %d %s", rec.Code, rec.Body.String())
	}
	result := parseJSON(t, rec)
	user := result["user"].(map[string]interface{})
	return result["token"].(string), result["refresh_token"].(string), user["id"].(string)
}

// createScenario creates a scenario and returns its ID.
func (app *testApp) createScenario(t *testing.T, token, name string, totalBudget float64) string {
	t.Helper()
	body := fmt.Sprintf(`{"name":%q,"total_budget":%g}`, name, totalBudget)
	rec := app.request("POST", "/api/v1/scenarios", body, token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create scenario failed: %d %s", rec.Code, rec.Body.String())
	}
	scenario := parseJSON(t, rec)["scenario"].(map[string]interface{})
	return scenario["id"].(string)
}

// createFolder creates a folder node and returns its ID. An empty parentID creates a root folder.
func (app *testApp) createFolder(t *testing.T, token, scenarioID, name, parentID string) string {
	t.Helper()
	body := fmt.Sprintf(`{"name":%q,"kind":"folder"}`, name)
	if parentID != "" {
		body = fmt.Sprintf(`{"name":%q,"kind":"folder","parent_id":%q}`, name, parentID)
	}
	rec := app.request("POST", "/api/v1/scenarios/"+scenarioID+"/nodes", body, token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create folder failed: %d %s", rec.Code, rec.Body.String())
	}
	node := parseJSON(t, rec)["node"].(map[string]interface{})
	return node["id"].(string)
}

// createItem creates a budget item and returns its ID.
func (app *testApp) createItem(t *testing.T, token, scenarioID, name, parentID string, allocated float64) string {
	t.Helper()
	body := fmt.Sprintf(`{"name":%q,"kind":"item","allocated":%g}`, name, allocated)
	if parentID != "" {
		body = fmt.Sprintf(`{"name":%q,"kind":"item","parent_id":%q,"allocated":%g}`, name, parentID, allocated)
	}
	rec := app.request("POST", "/api/v1/scenarios/"+scenarioID+"/nodes", body, token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create item failed: %d %s", rec.Code, rec.Body.String())
	}
	node := parseJSON(t, rec)["node"].(map[string]interface{})
	return node["id"].(string)
}

// errorCode extracts the machine-readable error code from a response.
func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	result := parseJSON(t, rec)
	errObj, ok := result["error"].(map[string]interface{})
	if !ok {
		t.Fatalf("response has no error object: %s", rec.Body.String())
	}
	code, _ := errObj["code"].(string)
	return code
}
