package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/shopdesk-api/internal/application/service"
	"github.com/sangkips/shopdesk-api/internal/config"
	"github.com/sangkips/shopdesk-api/internal/domain/entity"
	"github.com/sangkips/shopdesk-api/internal/domain/enum"
	"github.com/sangkips/shopdesk-api/internal/infrastructure/repository/memory"
	"github.com/sangkips/shopdesk-api/internal/presentation/http/handler"
	"github.com/sangkips/shopdesk-api/internal/presentation/http/middleware"
	"github.com/sangkips/shopdesk-api/pkg/printer"
	"github.com/sangkips/shopdesk-api/pkg/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Errors  json.RawMessage `json:"errors"`
}

type testServer struct {
	router  *gin.Engine
	store   *memory.Store
	tokens  map[enum.UserRole]string
	authSvc *service.AuthService
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := memory.NewStore()
	now := time.Date(2024, time.March, 7, 10, 30, 0, 0, time.UTC)
	store.SetClock(func() time.Time { return now })

	products := memory.NewProductRepository(store)
	sales := memory.NewSaleRepository(store)
	customers := memory.NewCustomerRepository(store)
	suppliers := memory.NewSupplierRepository(store)
	users := memory.NewUserRepository(store)

	receiptPrinter, err := printer.New(printer.Config{Type: "none"})
	require.NoError(t, err)

	jwtManager := utils.NewJWTManager("test-secret", time.Hour)
	authSvc := service.NewAuthService(users, jwtManager)
	saleSvc := service.NewSaleService(memory.NewTxManager(store), sales, products, customers, memory.NewSequence(store),
		service.SaleServiceConfig{CreateRetries: 3, Location: time.UTC})
	saleSvc.SetClock(func() time.Time { return now })

	ts := &testServer{store: store, tokens: map[enum.UserRole]string{}, authSvc: authSvc}
	for _, role := range []enum.UserRole{enum.UserRoleAdmin, enum.UserRoleManager, enum.UserRoleStaff} {
		u, err := authSvc.CreateUser(context.Background(), &service.CreateUserInput{
			Name:     string(role) + " user",
			Email:    string(role) + "@shop.test",
			Password: "password-123",
			Role:     role,
		})
		require.NoError(t, err)
		token, err := jwtManager.GenerateAccessToken(u.ID, u.Email, u.Name, role.String())
		require.NoError(t, err)
		ts.tokens[role] = token
	}

	cfg := &config.Config{App: config.AppConfig{Name: "shopdesk-test"}}
	rl := middleware.NewRateLimiter(middleware.RateLimiterConfigFromWindow(1000, 1))
	t.Cleanup(rl.Stop)

	ts.router = Setup(&Handlers{
		Auth:     handler.NewAuthHandler(authSvc),
		Product:  handler.NewProductHandler(service.NewProductService(products, suppliers)),
		Sale:     handler.NewSaleHandler(saleSvc, service.NewReportService(sales, time.UTC, 5), time.UTC),
		Customer: handler.NewCustomerHandler(service.NewCustomerService(customers)),
		Supplier: handler.NewSupplierHandler(service.NewSupplierService(suppliers)),
		User:     handler.NewUserHandler(authSvc),
		Receipt: handler.NewReceiptHandler(service.NewReceiptService(saleSvc, receiptPrinter, service.ReceiptConfig{
			Header:      entity.ReceiptHeader{ShopName: "Corner Shop"},
			PrinterType: "none",
		})),
	}, &Deps{
		JWTManager:      jwtManager,
		Cfg:             cfg,
		IdempotencyRepo: memory.NewIdempotencyRepository(store),
		RateLimiter:     rl,
	})
	return ts
}

func (ts *testServer) do(t *testing.T, role enum.UserRole, method, path string, body interface{}, headers ...string) (int, envelope, http.Header) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token, ok := ts.tokens[role]; ok {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	}
	return w.Code, env, w.Header()
}

func decode[T any](t *testing.T, raw json.RawMessage) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(raw, &v), string(raw))
	return v
}

func (ts *testServer) createProduct(t *testing.T, sku string, qty int) entity.Product {
	t.Helper()
	code, env, _ := ts.do(t, enum.UserRoleManager, http.MethodPost, "/api/v1/products", gin.H{
		"sku":       sku,
		"name":      "Product " + sku,
		"price":     gin.H{"cost": 50, "selling": 99.99},
		"inventory": gin.H{"quantity": qty},
	})
	require.Equal(t, http.StatusCreated, code, env.Message)
	return decode[entity.Product](t, env.Data)
}

func (ts *testServer) quantity(t *testing.T, id string) int {
	t.Helper()
	code, env, _ := ts.do(t, enum.UserRoleStaff, http.MethodGet, "/api/v1/products/"+id, nil)
	require.Equal(t, http.StatusOK, code)
	return decode[entity.Product](t, env.Data).Inventory.Quantity
}

func saleBody(productID string, qty int) gin.H {
	return gin.H{
		"items":   []gin.H{{"product_id": productID, "quantity": qty, "unit_price": 99.99}},
		"payment": gin.H{"method": "cash"},
	}
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)
	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "shopdesk-test")
}

func TestAuthRoutes(t *testing.T) {
	ts := newTestServer(t)

	code, env, _ := ts.do(t, "", http.MethodPost, "/api/v1/auth/login", gin.H{"email": "staff@shop.test", "password": "password-123"})
	require.Equal(t, http.StatusOK, code)
	login := decode[struct {
		AccessToken string `json:"access_token"`
	}](t, env.Data)
	assert.NotEmpty(t, login.AccessToken)

	code, _, _ = ts.do(t, "", http.MethodPost, "/api/v1/auth/login", gin.H{"email": "staff@shop.test", "password": "wrong-password"})
	assert.Equal(t, http.StatusUnauthorized, code)

	code, env, _ = ts.do(t, "", http.MethodPost, "/api/v1/auth/login", gin.H{"email": "not-an-email"})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Contains(t, string(env.Errors), "email")

	code, env, _ = ts.do(t, enum.UserRoleStaff, http.MethodGet, "/api/v1/auth/me", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "staff@shop.test", decode[entity.User](t, env.Data).Email)

	code, _, _ = ts.do(t, "", http.MethodGet, "/api/v1/auth/me", nil)
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestProductRoutes_RolesAndStock(t *testing.T) {
	ts := newTestServer(t)

	code, _, _ := ts.do(t, enum.UserRoleStaff, http.MethodPost, "/api/v1/products", gin.H{"name": "Nope"})
	assert.Equal(t, http.StatusForbidden, code)

	p := ts.createProduct(t, "TEST-001", 10)
	id := p.ID.String()

	code, env, _ := ts.do(t, enum.UserRoleStaff, http.MethodGet, "/api/v1/products/sku/TEST-001", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, p.ID, decode[entity.Product](t, env.Data).ID)

	code, _, _ = ts.do(t, enum.UserRoleManager, http.MethodPost, "/api/v1/products", gin.H{"sku": "TEST-001", "name": "Other"})
	assert.Equal(t, http.StatusConflict, code)

	code, _, _ = ts.do(t, enum.UserRoleAdmin, http.MethodPatch, "/api/v1/products/"+id+"/stock?quantity=5&operation=add", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, 15, ts.quantity(t, id))

	code, env, _ = ts.do(t, enum.UserRoleAdmin, http.MethodPatch, "/api/v1/products/"+id+"/stock?quantity=20", nil)
	assert.Equal(t, http.StatusBadRequest, code)
	shortage := decode[map[string]interface{}](t, env.Errors)
	assert.EqualValues(t, 15, shortage["available"])
	assert.EqualValues(t, 20, shortage["requested"])
	assert.Equal(t, 15, ts.quantity(t, id))

	code, _, _ = ts.do(t, enum.UserRoleAdmin, http.MethodPatch, "/api/v1/products/"+id+"/stock?quantity=0", nil)
	assert.Equal(t, http.StatusBadRequest, code)

	code, _, _ = ts.do(t, enum.UserRoleStaff, http.MethodGet, "/api/v1/products/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, code)

	code, env, _ = ts.do(t, enum.UserRoleStaff, http.MethodGet, "/api/v1/products/low-stock", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, decode[[]entity.Product](t, env.Data), 0)

	code, env, _ = ts.do(t, enum.UserRoleStaff, http.MethodGet, "/api/v1/products?search=test&sort_by=sku", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(env.Data), "TEST-001")

	code, _, _ = ts.do(t, enum.UserRoleStaff, http.MethodGet, "/api/v1/products?sort_by=password", nil)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestSaleRoutes_Flow(t *testing.T) {
	ts := newTestServer(t)
	p := ts.createProduct(t, "TEST-001", 100)
	id := p.ID.String()

	code, env, _ := ts.do(t, enum.UserRoleStaff, http.MethodPost, "/api/v1/sales", saleBody(id, 2))
	require.Equal(t, http.StatusCreated, code, env.Message)

	sale := decode[map[string]interface{}](t, env.Data)
	assert.Equal(t, "TXN202403070001", sale["transaction_number"])
	assert.Equal(t, "199.98", sale["total"])
	assert.Equal(t, "completed", sale["status"])
	assert.Equal(t, 98, ts.quantity(t, id))

	code, env, _ = ts.do(t, enum.UserRoleStaff, http.MethodGet, "/api/v1/sales/transaction/TXN202403070001", nil)
	require.Equal(t, http.StatusOK, code)
	saleID := decode[map[string]interface{}](t, env.Data)["id"].(string)

	code, env, _ = ts.do(t, enum.UserRoleStaff, http.MethodGet, "/api/v1/sales/daily/2024-03-07", nil)
	require.Equal(t, http.StatusOK, code)
	daily := decode[map[string]interface{}](t, env.Data)
	assert.EqualValues(t, 1, daily["total_transactions"])
	assert.Equal(t, "199.98", daily["total_sales"])

	code, env, _ = ts.do(t, enum.UserRoleStaff, http.MethodGet, "/api/v1/sales/summary?start_date=2024-03-01&end_date=2024-03-31", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "199.98", decode[map[string]interface{}](t, env.Data)["average_transaction_value"])

	code, _, _ = ts.do(t, enum.UserRoleStaff, http.MethodGet, "/api/v1/sales/summary?start_date=2024-03-01", nil)
	assert.Equal(t, http.StatusBadRequest, code)

	code, _, _ = ts.do(t, enum.UserRoleStaff, http.MethodPost, "/api/v1/sales/"+saleID+"/status?status=cancelled", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, 100, ts.quantity(t, id))

	code, _, _ = ts.do(t, enum.UserRoleStaff, http.MethodPost, "/api/v1/sales/"+saleID+"/status?status=lost", nil)
	assert.Equal(t, http.StatusBadRequest, code)

	code, env, _ = ts.do(t, enum.UserRoleStaff, http.MethodGet, "/api/v1/sales?status=cancelled&start_date=2024-03-07&end_date=2024-03-07", nil)
	require.Equal(t, http.StatusOK, code)
	page := decode[struct {
		Items []map[string]interface{} `json:"items"`
	}](t, env.Data)
	require.Len(t, page.Items, 1)
	assert.Equal(t, saleID, page.Items[0]["id"])
}

func TestSaleRoutes_Failures(t *testing.T) {
	ts := newTestServer(t)
	p := ts.createProduct(t, "LOW-001", 5)
	id := p.ID.String()

	code, env, _ := ts.do(t, enum.UserRoleStaff, http.MethodPost, "/api/v1/sales", saleBody(id, 10))
	assert.Equal(t, http.StatusBadRequest, code)
	shortage := decode[map[string]interface{}](t, env.Errors)
	assert.EqualValues(t, 5, shortage["available"])
	assert.EqualValues(t, 10, shortage["requested"])
	assert.Equal(t, 5, ts.quantity(t, id))

	code, env, _ = ts.do(t, enum.UserRoleStaff, http.MethodPost, "/api/v1/sales", gin.H{"items": []gin.H{}, "payment": gin.H{"method": "cash"}})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Contains(t, string(env.Errors), "items")

	code, _, _ = ts.do(t, enum.UserRoleStaff, http.MethodPost, "/api/v1/sales", saleBody("0b8e5b7c-8d8e-4a3a-9c57-3f8f1f7e1a11", 1))
	assert.Equal(t, http.StatusNotFound, code)

	code, _, _ = ts.do(t, enum.UserRoleStaff, http.MethodGet, "/api/v1/sales/daily/2024-3-7", nil)
	assert.Equal(t, http.StatusBadRequest, code)

	code, _, _ = ts.do(t, "", http.MethodPost, "/api/v1/sales", saleBody(id, 1))
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestSaleRoutes_IdempotentRetry(t *testing.T) {
	ts := newTestServer(t)
	p := ts.createProduct(t, "IDEM-1", 10)
	id := p.ID.String()

	code, first, _ := ts.do(t, enum.UserRoleStaff, http.MethodPost, "/api/v1/sales", saleBody(id, 1), "Idempotency-Key", "till-1-0001")
	require.Equal(t, http.StatusCreated, code)

	code, second, headers := ts.do(t, enum.UserRoleStaff, http.MethodPost, "/api/v1/sales", saleBody(id, 1), "Idempotency-Key", "till-1-0001")
	require.Equal(t, http.StatusCreated, code)
	assert.Equal(t, "true", headers.Get("X-Idempotency-Replayed"))
	assert.JSONEq(t, string(first.Data), string(second.Data))
	assert.Equal(t, 9, ts.quantity(t, id))

	code, _, _ = ts.do(t, enum.UserRoleStaff, http.MethodPost, "/api/v1/sales", saleBody(id, 2), "Idempotency-Key", "till-1-0001")
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, 9, ts.quantity(t, id))
}

func TestCustomerAndSupplierRoutes(t *testing.T) {
	ts := newTestServer(t)

	code, env, _ := ts.do(t, enum.UserRoleStaff, http.MethodPost, "/api/v1/customers", gin.H{"name": "Jane Doe", "email": "jane@example.com"})
	require.Equal(t, http.StatusCreated, code)
	customerID := decode[entity.Customer](t, env.Data).ID.String()

	code, _, _ = ts.do(t, enum.UserRoleStaff, http.MethodPost, "/api/v1/customers", gin.H{"name": "Jane Again", "email": "jane@example.com"})
	assert.Equal(t, http.StatusConflict, code)

	code, env, _ = ts.do(t, enum.UserRoleStaff, http.MethodPut, "/api/v1/customers/"+customerID, gin.H{"phone": "555-0100"})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "555-0100", *decode[entity.Customer](t, env.Data).Phone)

	code, env, _ = ts.do(t, enum.UserRoleStaff, http.MethodGet, "/api/v1/customers?search=jane", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(env.Data), customerID)

	code, _, _ = ts.do(t, enum.UserRoleStaff, http.MethodDelete, "/api/v1/customers/"+customerID, nil)
	require.Equal(t, http.StatusOK, code)
	code, _, _ = ts.do(t, enum.UserRoleStaff, http.MethodGet, "/api/v1/customers/"+customerID, nil)
	assert.Equal(t, http.StatusNotFound, code)

	code, _, _ = ts.do(t, enum.UserRoleStaff, http.MethodPost, "/api/v1/suppliers", gin.H{"name": "Acme"})
	assert.Equal(t, http.StatusForbidden, code)

	code, env, _ = ts.do(t, enum.UserRoleManager, http.MethodPost, "/api/v1/suppliers", gin.H{"name": "Acme", "type": "wholesaler"})
	require.Equal(t, http.StatusCreated, code)
	assert.Equal(t, enum.SupplierTypeWholesaler, decode[entity.Supplier](t, env.Data).Type)

	code, _, _ = ts.do(t, enum.UserRoleManager, http.MethodPost, "/api/v1/suppliers", gin.H{"name": "Acme", "type": "smuggler"})
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestUserRoutes(t *testing.T) {
	ts := newTestServer(t)

	code, _, _ := ts.do(t, enum.UserRoleManager, http.MethodGet, "/api/v1/users", nil)
	assert.Equal(t, http.StatusForbidden, code)

	code, env, _ := ts.do(t, enum.UserRoleAdmin, http.MethodPost, "/api/v1/users", gin.H{
		"name": "Till Two", "email": "Till2@Shop.test", "password": "password-123", "role": "staff",
	})
	require.Equal(t, http.StatusCreated, code, env.Message)
	assert.Equal(t, "till2@shop.test", decode[entity.User](t, env.Data).Email)
	assert.NotContains(t, string(env.Data), "password")

	code, _, _ = ts.do(t, enum.UserRoleAdmin, http.MethodPost, "/api/v1/users", gin.H{
		"name": "Till Two", "email": "till2@shop.test", "password": "password-123", "role": "owner",
	})
	assert.Equal(t, http.StatusBadRequest, code)

	code, env, _ = ts.do(t, enum.UserRoleAdmin, http.MethodGet, "/api/v1/users", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, decode[[]entity.User](t, env.Data), 4)
}

func TestReceiptRoutes(t *testing.T) {
	ts := newTestServer(t)
	p := ts.createProduct(t, "RCPT-1", 10)

	code, env, _ := ts.do(t, enum.UserRoleStaff, http.MethodPost, "/api/v1/sales", saleBody(p.ID.String(), 2))
	require.Equal(t, http.StatusCreated, code)
	saleID := decode[map[string]interface{}](t, env.Data)["id"].(string)

	code, env, _ = ts.do(t, enum.UserRoleStaff, http.MethodGet, "/api/v1/sales/"+saleID+"/receipt", nil)
	require.Equal(t, http.StatusOK, code)
	receipt := decode[map[string]interface{}](t, env.Data)
	assert.Equal(t, "TXN202403070001", receipt["transaction_number"])
	assert.Equal(t, "staff user", receipt["cashier"])

	req := httptest.NewRequest(http.MethodGet, "/api/v1/sales/"+saleID+"/receipt?format=escpos", nil)
	req.Header.Set("Authorization", "Bearer "+ts.tokens[enum.UserRoleStaff])
	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/octet-stream", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Body.String(), "Corner Shop")
	assert.Contains(t, w.Body.String(), "2x Product RCPT-1")

	code, _, _ = ts.do(t, enum.UserRoleStaff, http.MethodPost, "/api/v1/sales/"+saleID+"/receipt/print", nil)
	assert.Equal(t, http.StatusOK, code)

	code, env, _ = ts.do(t, enum.UserRoleStaff, http.MethodGet, "/api/v1/printer/status", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, false, decode[map[string]interface{}](t, env.Data)["configured"])
}
