package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stockroomhq/warehouse-backend/internal/categories"
	"github.com/stockroomhq/warehouse-backend/internal/orders"
	"github.com/stockroomhq/warehouse-backend/internal/products"
	"github.com/stockroomhq/warehouse-backend/internal/sequence"
	"github.com/stockroomhq/warehouse-backend/internal/statistics"
	"github.com/stockroomhq/warehouse-backend/internal/stock"
	"github.com/stockroomhq/warehouse-backend/pkg/config"
	"github.com/stockroomhq/warehouse-backend/pkg/db/models"
	"github.com/stockroomhq/warehouse-backend/pkg/logger"
	"github.com/stockroomhq/warehouse-backend/pkg/metrics"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type txRunner struct {
	db *gorm.DB
}

func (r txRunner) WithTx(_ context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.Transaction(fn)
}

func newTestServer(t *testing.T) http.Handler {
	t.Helper()

	dsn := "file:routes_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.Category{},
		&models.Product{},
		&models.StockRecord{},
		&models.Order{},
		&models.OrderSequence{},
	))

	stockSvc, err := stock.NewService(stock.NewRepository(db))
	require.NoError(t, err)
	allocator, err := sequence.NewAllocator(sequence.NewRepository(db))
	require.NoError(t, err)

	productsRepo := products.NewRepository(db)
	categoriesSvc, err := categories.NewService(categories.NewRepository(db), productsRepo)
	require.NoError(t, err)

	productsSvc, err := products.NewService(products.Deps{
		Repo:       productsRepo,
		Tx:         txRunner{db: db},
		Ledger:     stockSvc,
		Categories: categoriesSvc,
	})
	require.NoError(t, err)

	ordersSvc, err := orders.NewService(orders.Deps{
		Repo:      orders.NewRepository(db),
		Tx:        txRunner{db: db},
		Sequences: allocator,
		Ledger:    stockSvc,
		Products:  productsSvc,
	})
	require.NoError(t, err)

	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})

	statisticsSvc, err := statistics.NewService(statistics.NewRepository(db), nil, logg, config.StatisticsConfig{TrendDays: 7})
	require.NoError(t, err)

	return NewRouter(Deps{
		Logger:     logg,
		Metrics:    metrics.New(),
		Orders:     ordersSvc,
		Stock:      stockSvc,
		Products:   productsSvc,
		Categories: categoriesSvc,
		Statistics: statisticsSvc,
	})
}

func doJSON(t *testing.T, handler http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Actor", "tester")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	return resp
}

func decodeData(t *testing.T, resp *httptest.ResponseRecorder, dest any) {
	t.Helper()
	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope))
	require.NoError(t, json.Unmarshal(envelope.Data, dest))
}

func decodeError(t *testing.T, resp *httptest.ResponseRecorder) (code string, message string) {
	t.Helper()
	var envelope struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope))
	return envelope.Error.Code, envelope.Error.Message
}

func createProduct(t *testing.T, handler http.Handler, sku string, initialQty int) models.Product {
	t.Helper()
	resp := doJSON(t, handler, http.MethodPost, "/api/v1/products", map[string]any{
		"sku":             sku,
		"name":            "Test Widget",
		"price":           12.5,
		"unit":            "pcs",
		"initialQuantity": initialQty,
	})
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	var product models.Product
	decodeData(t, resp, &product)
	return product
}

func TestInboundLifecycleOverHTTP(t *testing.T) {
	t.Parallel()

	handler := newTestServer(t)
	product := createProduct(t, handler, "HTTP-001", 0)

	resp := doJSON(t, handler, http.MethodPost, "/api/v1/inbounds", map[string]any{
		"productId":        product.ID.String(),
		"quantity":         15,
		"counterpartyName": "Acme Supply Co",
		"orderDate":        "2026-01-05",
	})
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())

	var order models.Order
	decodeData(t, resp, &order)
	// numbering counts under the creation day, not the backdated orderDate
	wantNo := "IN" + time.Now().UTC().Format("20060102") + "0001"
	require.Equal(t, wantNo, order.OrderNo)
	require.Equal(t, "pending", string(order.Status))
	require.Equal(t, "tester", order.CreatedBy)

	resp = doJSON(t, handler, http.MethodPost, fmt.Sprintf("/api/v1/inbounds/%s/approve", order.ID), nil)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	decodeData(t, resp, &order)
	require.Equal(t, "approved", string(order.Status))
	require.Equal(t, "tester", *order.ApprovedBy)

	resp = doJSON(t, handler, http.MethodGet, fmt.Sprintf("/api/v1/inventory/%s", product.ID), nil)
	require.Equal(t, http.StatusOK, resp.Code)
	var record models.StockRecord
	decodeData(t, resp, &record)
	require.Equal(t, 15, record.Quantity)

	// approving again is a conflict
	resp = doJSON(t, handler, http.MethodPost, fmt.Sprintf("/api/v1/inbounds/%s/approve", order.ID), nil)
	require.Equal(t, http.StatusConflict, resp.Code)
	code, _ := decodeError(t, resp)
	require.Equal(t, "STATE_CONFLICT", code)
}

func TestOutboundInsufficientStockOverHTTP(t *testing.T) {
	t.Parallel()

	handler := newTestServer(t)
	product := createProduct(t, handler, "HTTP-002", 3)

	resp := doJSON(t, handler, http.MethodPost, "/api/v1/outbounds", map[string]any{
		"productId":        product.ID.String(),
		"quantity":         10,
		"counterpartyName": "Globex",
	})
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	var order models.Order
	decodeData(t, resp, &order)

	resp = doJSON(t, handler, http.MethodPost, fmt.Sprintf("/api/v1/outbounds/%s/approve", order.ID), nil)
	require.Equal(t, http.StatusConflict, resp.Code)
	code, message := decodeError(t, resp)
	require.Equal(t, "INSUFFICIENT_STOCK", code)
	require.Contains(t, message, "current 3")
	require.Contains(t, message, "requested 10")

	// the order is still pending and can be voided
	resp = doJSON(t, handler, http.MethodPost, fmt.Sprintf("/api/v1/outbounds/%s/void", order.ID), nil)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
}

func TestOrderKindsAreDisjointNamespaces(t *testing.T) {
	t.Parallel()

	handler := newTestServer(t)
	product := createProduct(t, handler, "HTTP-003", 0)

	resp := doJSON(t, handler, http.MethodPost, "/api/v1/inbounds", map[string]any{
		"productId":        product.ID.String(),
		"quantity":         5,
		"counterpartyName": "Acme",
	})
	require.Equal(t, http.StatusCreated, resp.Code)
	var order models.Order
	decodeData(t, resp, &order)

	// an inbound order is invisible under /outbounds
	resp = doJSON(t, handler, http.MethodGet, fmt.Sprintf("/api/v1/outbounds/%s", order.ID), nil)
	require.Equal(t, http.StatusNotFound, resp.Code)

	resp = doJSON(t, handler, http.MethodGet, fmt.Sprintf("/api/v1/inbounds/%s", order.ID), nil)
	require.Equal(t, http.StatusOK, resp.Code)
}

func TestValidationErrorsOverHTTP(t *testing.T) {
	t.Parallel()

	handler := newTestServer(t)

	resp := doJSON(t, handler, http.MethodPost, "/api/v1/inbounds", map[string]any{
		"productId":        "not-a-uuid",
		"quantity":         0,
		"counterpartyName": "",
	})
	require.Equal(t, http.StatusBadRequest, resp.Code)
	code, _ := decodeError(t, resp)
	require.Equal(t, "VALIDATION_ERROR", code)

	resp = doJSON(t, handler, http.MethodGet, "/api/v1/inbounds?page=abc", nil)
	require.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestCategoryAndProductFlowOverHTTP(t *testing.T) {
	t.Parallel()

	handler := newTestServer(t)

	resp := doJSON(t, handler, http.MethodPost, "/api/v1/categories", map[string]any{"name": "Hardware"})
	require.Equal(t, http.StatusCreated, resp.Code)
	var category models.Category
	decodeData(t, resp, &category)

	resp = doJSON(t, handler, http.MethodPost, "/api/v1/products", map[string]any{
		"sku":        "CAT-100",
		"name":       "Bolt",
		"price":      0.25,
		"categoryId": category.ID.String(),
	})
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())

	// category with products cannot be deleted
	resp = doJSON(t, handler, http.MethodDelete, fmt.Sprintf("/api/v1/categories/%s", category.ID), nil)
	require.Equal(t, http.StatusConflict, resp.Code)

	resp = doJSON(t, handler, http.MethodGet, "/api/v1/categories/tree", nil)
	require.Equal(t, http.StatusOK, resp.Code)
	var tree []categories.Node
	decodeData(t, resp, &tree)
	require.Len(t, tree, 1)
	require.Equal(t, "Hardware", tree[0].Name)

	// duplicate SKU conflicts
	resp = doJSON(t, handler, http.MethodPost, "/api/v1/products", map[string]any{
		"sku":   "CAT-100",
		"name":  "Bolt copy",
		"price": 0.30,
	})
	require.Equal(t, http.StatusConflict, resp.Code)
	code, _ := decodeError(t, resp)
	require.Equal(t, "ALREADY_EXISTS", code)
}

func TestStatisticsAndHealthOverHTTP(t *testing.T) {
	t.Parallel()

	handler := newTestServer(t)
	createProduct(t, handler, "HTTP-004", 50)

	resp := doJSON(t, handler, http.MethodGet, "/api/v1/statistics/summary", nil)
	require.Equal(t, http.StatusOK, resp.Code)
	var summary statistics.Summary
	decodeData(t, resp, &summary)
	require.EqualValues(t, 1, summary.TotalProducts)
	require.EqualValues(t, 50, summary.TotalStockUnits)

	resp = doJSON(t, handler, http.MethodGet, "/healthz", nil)
	require.Equal(t, http.StatusOK, resp.Code)

	resp = doJSON(t, handler, http.MethodGet, "/readyz", nil)
	require.Equal(t, http.StatusOK, resp.Code)
}
