package routes

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	checkoutsvc "github.com/angelmondragon/storefront-backend/internal/checkout"
	"github.com/angelmondragon/storefront-backend/internal/orders"
	"github.com/angelmondragon/storefront-backend/pkg/config"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/angelmondragon/storefront-backend/pkg/types"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error {
	return nil
}

type stubCheckoutService struct{}

func (stubCheckoutService) Checkout(ctx context.Context, input checkoutsvc.Input) (*checkoutsvc.Result, error) {
	return &checkoutsvc.Result{SessionID: "cs_test_router"}, nil
}

type stubOrdersService struct{}

func (stubOrdersService) Get(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
}

func (stubOrdersService) List(ctx context.Context) ([]models.Order, error) {
	return nil, nil
}

func (stubOrdersService) ListByFolder(ctx context.Context, folder enums.OrderFolder) ([]models.Order, error) {
	return []models.Order{}, nil
}

func (stubOrdersService) UpdateStatus(ctx context.Context, id uuid.UUID, patch types.StatusTimeline) (*models.Order, error) {
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
}

func (stubOrdersService) MoveBetween(ctx context.Context, ids []uuid.UUID, from, to enums.OrderFolder) (*orders.MoveResult, error) {
	return &orders.MoveResult{}, nil
}

func (stubOrdersService) Delete(ctx context.Context, ids []uuid.UUID, from enums.OrderFolder) (*orders.MoveResult, error) {
	return &orders.MoveResult{}, nil
}

type stubStockService struct{}

func (stubStockService) List(ctx context.Context) ([]models.StockItem, error) {
	return []models.StockItem{}, nil
}

func (stubStockService) Get(ctx context.Context, id int) (*models.StockItem, error) {
	return &models.StockItem{ID: id}, nil
}

func (stubStockService) GetMany(ctx context.Context, ids []int) (map[int]models.StockItem, error) {
	return map[int]models.StockItem{}, nil
}

func (stubStockService) SetAbsolute(ctx context.Context, id, value int) error {
	return nil
}

func (stubStockService) Decrement(ctx context.Context, id, qty int) error {
	return nil
}

func (stubStockService) DecrementBatch(ctx context.Context, items types.OrderItems) error {
	return nil
}

func (stubStockService) Restock(ctx context.Context, id, qty int) error {
	return nil
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	cfg := &config.Config{}
	cfg.App.Env = "test"
	return NewRouter(
		cfg,
		logger.New(logger.Options{ServiceName: "router-test"}),
		stubPinger{},
		stubPinger{},
		stubCheckoutService{},
		stubOrdersService{},
		stubStockService{},
		nil,
		nil,
		nil,
	)
}

func TestRouterHealthEndpoints(t *testing.T) {
	router := newTestRouter(t)

	for _, path := range []string{"/health/live", "/health/ready"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d", path, rec.Code)
		}
	}
}

func TestRouterOrdersListAndDetail(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders/", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("orders list: expected 200, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/orders/"+uuid.NewString(), nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("orders detail: expected 404 from stub, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/orders/?folder=bogus", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("orders list with bad folder: expected 400, got %d", rec.Code)
	}
}

func TestRouterStockRoutes(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/stock/", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("stock list: expected 200, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/stock/not-a-number", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("stock detail with bad id: expected 400, got %d", rec.Code)
	}
}

func TestRouterMetricsEndpoint(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("metrics: expected 200, got %d", rec.Code)
	}
}
