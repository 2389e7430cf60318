//go:build integration

package router_test

// End-to-end tests against real Postgres + Redis via testcontainers.
// Run with: go test -tags integration ./internal/router/... -v

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"novacrm/internal/config"
	"novacrm/internal/infra"
	"novacrm/internal/model"
	"novacrm/internal/router"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcPostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	tcRedis "github.com/testcontainers/testcontainers-go/modules/redis"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// ── Helpers ──────────────────────────────────────────────────────────────────

func jsonBody(t *testing.T, v any) *bytes.Buffer {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewBuffer(b)
}

func do(t *testing.T, srv *httptest.Server, method, path string, body *bytes.Buffer, token string) *http.Response {
	t.Helper()
	var req *http.Request
	var err error
	if body != nil {
		req, err = http.NewRequest(method, srv.URL+path, body)
	} else {
		req, err = http.NewRequest(method, srv.URL+path, nil)
	}
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	return resp
}

func decodeJSON(t *testing.T, resp *http.Response, dest any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(dest))
}

// ── Test Suite Setup ─────────────────────────────────────────────────────────

type testEnv struct {
	server     *httptest.Server
	token      string // admin JWT
	db         *gorm.DB
	tenantID   uuid.UUID
	categoryID uuid.UUID
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()

	pgC, err := tcPostgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:15-alpine"),
		tcPostgres.WithDatabase("novacrm_test"),
		tcPostgres.WithUsername("novacrm"),
		tcPostgres.WithPassword("novacrm"),
		testcontainers.WithWaitStrategy(
			tcPostgres.BasicWaitStrategies()...,
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pgC.Terminate(ctx) })

	pgURL, err := pgC.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	rdC, err := tcRedis.RunContainer(ctx,
		testcontainers.WithImage("redis:7-alpine"),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdC.Terminate(ctx) })

	rdURL, err := rdC.ConnectionString(ctx)
	require.NoError(t, err)

	cfg := &config.Config{
		Port:               8000,
		Env:                "test",
		JWTSecret:          "test-secret-key",
		JWTExpirationHours: 8,
		JWTRefreshHours:    24,
		DatabaseURL:        pgURL,
		RedisURL:           rdURL,
		WorkerPoolSize:     1,
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	require.NoError(t, err)

	rdb, err := infra.NewRedis(cfg.RedisURL)
	require.NoError(t, err)

	// Seed tenant, taxonomy, and admin user.
	tenant := model.Tenant{Name: "acme-e2e", OwnerEmail: "owner@e2e.test", Active: true}
	require.NoError(t, db.Create(&tenant).Error)

	category := model.Category{TenantID: tenant.ID, Name: "Hardware"}
	require.NoError(t, db.Create(&category).Error)

	hash, err := bcrypt.GenerateFromPassword([]byte("novacrm2026"), bcrypt.MinCost)
	require.NoError(t, err)
	admin := model.User{
		TenantID:     tenant.ID,
		Email:        "admin@e2e.test",
		Name:         "Admin E2E",
		PasswordHash: string(hash),
		Role:         "admin",
		Active:       true,
	}
	require.NoError(t, db.Create(&admin).Error)

	r := router.New(cfg, db, rdb)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	loginResp := do(t, srv, "POST", "/v1/auth/login",
		jsonBody(t, map[string]string{"email": "admin@e2e.test", "password": "novacrm2026"}),
		"",
	)
	require.Equal(t, http.StatusOK, loginResp.StatusCode)
	var loginBody struct {
		AccessToken string `json:"access_token"`
	}
	decodeJSON(t, loginResp, &loginBody)
	require.NotEmpty(t, loginBody.AccessToken)

	return &testEnv{
		server:     srv,
		token:      loginBody.AccessToken,
		db:         db,
		tenantID:   tenant.ID,
		categoryID: category.ID,
	}
}

func (env *testEnv) createProduct(t *testing.T, name string, quantity, minStock int, price string) string {
	t.Helper()
	resp := do(t, env.server, "POST", "/v1/products",
		jsonBody(t, map[string]any{
			"name":            name,
			"category_id":     env.categoryID.String(),
			"quantity":        quantity,
			"min_stock_level": minStock,
			"price":           price,
			"cost_price":      "1.00",
		}),
		env.token,
	)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var prod struct {
		ID string `json:"id"`
	}
	decodeJSON(t, resp, &prod)
	return prod.ID
}

// ── Tests ────────────────────────────────────────────────────────────────────

// Full order cycle: create product → create order → ledger shows the sale →
// cancel → ledger shows the release and stock is restored.
func TestE2E_OrderCycle(t *testing.T) {
	env := setupTestEnv(t)

	prodID := env.createProduct(t, "Gadget 500", 20, 5, "250.00")

	orderResp := do(t, env.server, "POST", "/v1/orders",
		jsonBody(t, map[string]any{
			"items": []map[string]any{{"product_id": prodID, "quantity": 3}},
		}),
		env.token,
	)
	require.Equal(t, http.StatusCreated, orderResp.StatusCode)
	var order struct {
		ID    string `json:"id"`
		Name  string `json:"name"`
		Total string `json:"total"`
	}
	decodeJSON(t, orderResp, &order)
	assert.Equal(t, "ORD-1", order.Name)
	total, err := decimal.NewFromString(order.Total)
	require.NoError(t, err)
	assert.True(t, total.Equal(decimal.NewFromInt(750)), "total = %s", order.Total)

	// Stock decremented, one outbound ledger entry.
	prodResp := do(t, env.server, "GET", "/v1/products/"+prodID, nil, env.token)
	var prod struct {
		Quantity int `json:"quantity"`
	}
	decodeJSON(t, prodResp, &prod)
	assert.Equal(t, 17, prod.Quantity)

	movResp := do(t, env.server, "GET", "/v1/stock-movements?product_id="+prodID, nil, env.token)
	var movs struct {
		Data []struct {
			Kind           string `json:"kind"`
			QuantityChange int    `json:"quantity_change"`
			Reason         string `json:"reason"`
		} `json:"data"`
	}
	decodeJSON(t, movResp, &movs)
	require.Len(t, movs.Data, 1)
	assert.Equal(t, "outbound", movs.Data[0].Kind)
	assert.Equal(t, -3, movs.Data[0].QuantityChange)
	assert.Equal(t, "Sale - Order ORD-1", movs.Data[0].Reason)

	// Cancel restores stock with one inbound entry; a second cancel conflicts.
	cancelResp := do(t, env.server, "POST", "/v1/orders/"+order.ID+"/cancel", nil, env.token)
	require.Equal(t, http.StatusNoContent, cancelResp.StatusCode)

	cancelAgain := do(t, env.server, "POST", "/v1/orders/"+order.ID+"/cancel", nil, env.token)
	assert.Equal(t, http.StatusConflict, cancelAgain.StatusCode)

	prodResp = do(t, env.server, "GET", "/v1/products/"+prodID, nil, env.token)
	decodeJSON(t, prodResp, &prod)
	assert.Equal(t, 20, prod.Quantity)

	movResp = do(t, env.server, "GET", "/v1/stock-movements?product_id="+prodID, nil, env.token)
	decodeJSON(t, movResp, &movs)
	require.Len(t, movs.Data, 2)
	assert.Equal(t, "Order Cancellation - Order ORD-1", movs.Data[0].Reason)
}

// Unfulfillable line rejects the whole order and leaves the other product
// untouched.
func TestE2E_OrderAtomicity(t *testing.T) {
	env := setupTestEnv(t)

	okID := env.createProduct(t, "Plenty", 50, 5, "10.00")
	scarceID := env.createProduct(t, "Scarce", 2, 5, "10.00")

	resp := do(t, env.server, "POST", "/v1/orders",
		jsonBody(t, map[string]any{
			"items": []map[string]any{
				{"product_id": okID, "quantity": 5},
				{"product_id": scarceID, "quantity": 1000000},
			},
		}),
		env.token,
	)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	prodResp := do(t, env.server, "GET", "/v1/products/"+okID, nil, env.token)
	var prod struct {
		Quantity int `json:"quantity"`
	}
	decodeJSON(t, prodResp, &prod)
	assert.Equal(t, 50, prod.Quantity)

	listResp := do(t, env.server, "GET", "/v1/orders", nil, env.token)
	var orders struct {
		Total int64 `json:"total"`
	}
	decodeJSON(t, listResp, &orders)
	assert.Equal(t, int64(0), orders.Total)
}

// Bulk percentage increase writes per-product history sharing one reason plus
// an aggregated audit row.
func TestE2E_BulkPriceUpdate(t *testing.T) {
	env := setupTestEnv(t)

	p1 := env.createProduct(t, "Alpha", 10, 5, "100.00")
	env.createProduct(t, "Beta", 10, 5, "150.00")

	resp := do(t, env.server, "POST", "/v1/bulk-price-updates",
		jsonBody(t, map[string]any{
			"kind":   "percentage_increase",
			"amount": "15",
			"scope":  "all",
			"reason": "Supplier cost adjustment",
		}),
		env.token,
	)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var bulk struct {
		ProductCount int `json:"product_count"`
	}
	decodeJSON(t, resp, &bulk)
	assert.Equal(t, 2, bulk.ProductCount)

	histResp := do(t, env.server, "GET", "/v1/products/"+p1+"/price-history", nil, env.token)
	var hist struct {
		Data []struct {
			NewPrice string `json:"new_price"`
			Kind     string `json:"kind"`
			Reason   string `json:"reason"`
		} `json:"data"`
	}
	decodeJSON(t, histResp, &hist)
	require.Len(t, hist.Data, 1)
	newPrice, err := decimal.NewFromString(hist.Data[0].NewPrice)
	require.NoError(t, err)
	assert.True(t, newPrice.Equal(decimal.NewFromInt(115)), "new_price = %s", hist.Data[0].NewPrice)
	assert.Equal(t, "increase", hist.Data[0].Kind)
	assert.Equal(t, "Supplier cost adjustment", hist.Data[0].Reason)
}

// Dropping below the minimum surfaces a low-stock alert and a restock
// recommendation.
func TestE2E_AlertsSurfaceAfterMutation(t *testing.T) {
	env := setupTestEnv(t)

	prodID := env.createProduct(t, "Lowrider", 20, 20, "10.00")

	updateResp := do(t, env.server, "PUT", "/v1/products/"+prodID,
		jsonBody(t, map[string]any{"quantity": 5, "reason": "Shrinkage"}),
		env.token,
	)
	require.Equal(t, http.StatusOK, updateResp.StatusCode)

	alertResp := do(t, env.server, "GET", "/v1/alerts", nil, env.token)
	var alerts struct {
		Data []struct {
			Kind     string `json:"kind"`
			Severity string `json:"severity"`
		} `json:"data"`
	}
	decodeJSON(t, alertResp, &alerts)
	require.Len(t, alerts.Data, 1)
	assert.Equal(t, "low_stock", alerts.Data[0].Kind)
	assert.Equal(t, "critical", alerts.Data[0].Severity)

	recResp := do(t, env.server, "GET", "/v1/recommendations", nil, env.token)
	var recs struct {
		Data []struct {
			Kind              string `json:"kind"`
			SuggestedQuantity int    `json:"suggested_quantity"`
		} `json:"data"`
	}
	decodeJSON(t, recResp, &recs)
	require.Len(t, recs.Data, 1)
	assert.Equal(t, "restock", recs.Data[0].Kind)
	assert.Equal(t, 60, recs.Data[0].SuggestedQuantity)
}

func TestE2E_HealthCheck(t *testing.T) {
	env := setupTestEnv(t)

	resp := do(t, env.server, "GET", "/health", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var body struct {
		OK         bool   `json:"ok"`
		Service    string `json:"service"`
		DB         string `json:"db"`
		Redis      string `json:"redis"`
		QueueDepth int64  `json:"queue_depth"`
	}
	decodeJSON(t, resp, &body)
	assert.True(t, body.OK)
	assert.Equal(t, "novacrm-inventory", body.Service)
	assert.Equal(t, "connected", body.DB)
	assert.Equal(t, "connected", body.Redis)
	assert.GreaterOrEqual(t, body.QueueDepth, int64(0))
}
