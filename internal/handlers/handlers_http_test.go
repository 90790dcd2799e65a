package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"mehryaan-backend/internal/config"
	"mehryaan-backend/internal/middleware"
)

func testConfig() config.Config {
	return config.Config{JWTSecret: "test-secret", AccessTokenTTL: time.Hour, SessionTTL: time.Hour}
}

func performJSON(t *testing.T, handler gin.HandlerFunc, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)

	recorder := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(recorder)
	c.Request = httptest.NewRequest(method, target, strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	handler(c)
	return recorder
}

func decodeBody(t *testing.T, recorder *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	if err := json.Unmarshal(recorder.Body.Bytes(), &body); err != nil {
		t.Fatalf("response body is not JSON: %v", err)
	}
	return body
}

func TestCreateOrderRejectsUnauthenticated(t *testing.T) {
	recorder := performJSON(t, CreateOrder(nil, nil, nil), "POST", "/api/orders", `{"items":[]}`)

	if recorder.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", recorder.Code)
	}
	body := decodeBody(t, recorder)
	if body["success"] != false {
		t.Errorf("success = %v, want false", body["success"])
	}
	if body["message"] != "Not authorized to access this route" {
		t.Errorf("message = %v", body["message"])
	}
}

// The order group registers both a literal /user route and a /:id route;
// an authenticated list request must reach the listing handler, not fail
// ObjectID parsing in the id handler.
func TestUserOrderListNotCapturedByIDRoute(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	authed := func(c *gin.Context) {
		middleware.SetUser(c, middleware.AuthUser{ID: primitive.NewObjectID(), Role: "user"})
	}
	orders := r.Group("/api/orders", authed)
	orders.GET("/user", GetUserOrders(nil))
	orders.GET("/:id", GetOrder(nil))

	recorder := httptest.NewRecorder()
	r.ServeHTTP(recorder, httptest.NewRequest("GET", "/api/orders/user", nil))

	body := decodeBody(t, recorder)
	if recorder.Code == http.StatusBadRequest || body["message"] == "invalid id" {
		t.Fatalf("GET /api/orders/user hit the id handler: %d %v", recorder.Code, body)
	}
}

func TestBulkUpdateStatusRequiresOrderIDs(t *testing.T) {
	recorder := performJSON(t, BulkUpdateStatus(nil), "PUT", "/api/orders/bulk/status", `{"orderIds":[],"orderStatus":"Delivered"}`)

	if recorder.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", recorder.Code)
	}
	body := decodeBody(t, recorder)
	if body["message"] != "Please provide an array of orderIds" {
		t.Errorf("message = %v", body["message"])
	}
}

func TestBulkUpdateStatusRequiresAStatus(t *testing.T) {
	recorder := performJSON(t, BulkUpdateStatus(nil), "PUT", "/api/orders/bulk/status",
		`{"orderIds":["68b1f2c3d4e5f60718293a4b"]}`)

	if recorder.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", recorder.Code)
	}
	body := decodeBody(t, recorder)
	if body["message"] != "Please provide orderStatus or paymentStatus to update" {
		t.Errorf("message = %v", body["message"])
	}
}

func TestFilterOrdersByDateRequiresBothBounds(t *testing.T) {
	recorder := performJSON(t, FilterOrdersByDate(nil), "GET", "/api/orders/filter/date?startDate=2026-01-01", "")

	if recorder.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", recorder.Code)
	}
	body := decodeBody(t, recorder)
	if body["message"] != "Please provide startDate and endDate (YYYY-MM-DD format)" {
		t.Errorf("message = %v", body["message"])
	}
}

func TestFilterOrdersByDateRejectsBadFormat(t *testing.T) {
	recorder := performJSON(t, FilterOrdersByDate(nil), "GET", "/api/orders/filter/date?startDate=01-01-2026&endDate=2026-02-01", "")

	if recorder.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", recorder.Code)
	}
}

func TestSearchOrdersRequiresQuery(t *testing.T) {
	recorder := performJSON(t, SearchOrdersByCustomer(nil), "GET", "/api/orders/search/customer?query=%20%20", "")

	if recorder.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", recorder.Code)
	}
	body := decodeBody(t, recorder)
	if body["message"] != "Please provide a search query" {
		t.Errorf("message = %v", body["message"])
	}
}

func TestCreateProductRejectsEmptyBody(t *testing.T) {
	recorder := performJSON(t, CreateProduct(nil), "POST", "/api/products", `{}`)

	if recorder.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", recorder.Code)
	}
}

func TestSignupValidatesBody(t *testing.T) {
	recorder := performJSON(t, Signup(nil, testConfig()), "POST", "/api/auth/signup",
		`{"name":"A","email":"not-an-email","password":"secret1"}`)

	if recorder.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", recorder.Code)
	}
}

func TestLoginValidatesBody(t *testing.T) {
	recorder := performJSON(t, Login(nil, testConfig()), "POST", "/api/auth/login", `{"email":"a@b.c"}`)

	if recorder.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", recorder.Code)
	}
	body := decodeBody(t, recorder)
	if body["message"] != "Please provide email and password" {
		t.Errorf("message = %v", body["message"])
	}
}
