package orders

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/angelmondragon/storefront-backend/pkg/types"
)

type stubOrdersRepo struct {
	orders   map[uuid.UUID]*models.Order
	saved    int
	failSave bool
}

func newStubOrdersRepo(orders ...*models.Order) *stubOrdersRepo {
	repo := &stubOrdersRepo{orders: make(map[uuid.UUID]*models.Order)}
	for _, order := range orders {
		repo.orders[order.ID] = order
	}
	return repo
}

func (s *stubOrdersRepo) WithTx(tx *gorm.DB) Repository {
	return s
}

func (s *stubOrdersRepo) Create(ctx context.Context, order *models.Order) (*models.Order, error) {
	s.orders[order.ID] = order
	return order, nil
}

func (s *stubOrdersRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	order, ok := s.orders[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return order, nil
}

func (s *stubOrdersRepo) FindBySessionID(ctx context.Context, sessionID string) (*models.Order, error) {
	for _, order := range s.orders {
		if sessionID != "" && order.SessionID == sessionID {
			return order, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubOrdersRepo) FindByPaymentID(ctx context.Context, paymentID string) (*models.Order, error) {
	for _, order := range s.orders {
		if paymentID != "" && order.PaymentID == paymentID {
			return order, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubOrdersRepo) FindAll(ctx context.Context) ([]models.Order, error) {
	orders := make([]models.Order, 0, len(s.orders))
	for _, order := range s.orders {
		orders = append(orders, *order)
	}
	return orders, nil
}

func (s *stubOrdersRepo) FindByFolder(ctx context.Context, folder enums.OrderFolder) ([]models.Order, error) {
	var orders []models.Order
	for _, order := range s.orders {
		if order.Folder == folder {
			orders = append(orders, *order)
		}
	}
	return orders, nil
}

func (s *stubOrdersRepo) Save(ctx context.Context, order *models.Order) (*models.Order, error) {
	if s.failSave {
		return nil, gorm.ErrInvalidTransaction
	}
	s.orders[order.ID] = order
	s.saved++
	return order, nil
}

func (s *stubOrdersRepo) MarkStockAdjusted(ctx context.Context, id uuid.UUID, at time.Time) (bool, error) {
	order, ok := s.orders[id]
	if !ok || order.StockAdjustedAt != nil {
		return false, nil
	}
	stamp := at
	order.StockAdjustedAt = &stamp
	return true, nil
}

func (s *stubOrdersRepo) UpdateFolder(ctx context.Context, id uuid.UUID, from, to enums.OrderFolder) (bool, error) {
	order, ok := s.orders[id]
	if !ok || order.Folder != from {
		return false, nil
	}
	order.Folder = to
	return true, nil
}

func newTestOrdersService(t *testing.T, repo Repository) Service {
	t.Helper()

	svc, err := NewService(repo, logger.New(logger.Options{ServiceName: "test"}))
	require.NoError(t, err)
	return svc
}

func TestServiceMoveBetweenReportsSkipped(t *testing.T) {
	existing := newTestOrder("cs_move_a")
	repo := newStubOrdersRepo(existing)
	svc := newTestOrdersService(t, repo)

	missing := uuid.New()
	result, err := svc.MoveBetween(context.Background(),
		[]uuid.UUID{existing.ID, missing},
		enums.OrderFolderOrders, enums.OrderFolderArchive)
	require.NoError(t, err)

	assert.Equal(t, []uuid.UUID{existing.ID}, result.Moved)
	assert.Equal(t, []uuid.UUID{missing}, result.Skipped)
	assert.Equal(t, enums.OrderFolderArchive, repo.orders[existing.ID].Folder)
}

func TestServiceMoveBetweenRejectsSameFolder(t *testing.T) {
	repo := newStubOrdersRepo()
	svc := newTestOrdersService(t, repo)

	_, err := svc.MoveBetween(context.Background(),
		[]uuid.UUID{uuid.New()},
		enums.OrderFolderOrders, enums.OrderFolderOrders)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestServiceDeleteMovesToDeletedFolder(t *testing.T) {
	order := newTestOrder("cs_delete")
	repo := newStubOrdersRepo(order)
	svc := newTestOrdersService(t, repo)

	result, err := svc.Delete(context.Background(), []uuid.UUID{order.ID}, enums.OrderFolderOrders)
	require.NoError(t, err)
	assert.Len(t, result.Moved, 1)
	assert.Equal(t, enums.OrderFolderDeleted, repo.orders[order.ID].Folder)

	_, err = svc.Delete(context.Background(), []uuid.UUID{order.ID}, enums.OrderFolderDeleted)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestServiceUpdateStatusMergesKnownStagesOnly(t *testing.T) {
	order := newTestOrder("cs_status")
	repo := newStubOrdersRepo(order)
	svc := newTestOrdersService(t, repo)

	patch := types.StatusTimeline{
		enums.ShipmentStageAccepted: {Status: true, Date: "2024-03-01", Time: "10:00:00"},
		"made-up-stage":             {Status: true},
	}

	updated, err := svc.UpdateStatus(context.Background(), order.ID, patch)
	require.NoError(t, err)
	assert.True(t, updated.Status[enums.ShipmentStageAccepted].Status)
	_, exists := updated.Status["made-up-stage"]
	assert.False(t, exists)
}

func TestServiceUpdateStatusUnknownOrder(t *testing.T) {
	repo := newStubOrdersRepo()
	svc := newTestOrdersService(t, repo)

	patch := types.StatusTimeline{enums.ShipmentStageAccepted: {Status: true}}
	_, err := svc.UpdateStatus(context.Background(), uuid.New(), patch)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestMarkStockAdjustedWinnerMirrorsMetadata(t *testing.T) {
	order := newTestOrder("cs_adjust")
	repo := newStubOrdersRepo(order)
	ctx := context.Background()

	now := time.Now().UTC()
	won, err := MarkStockAdjusted(ctx, repo, order, now)
	require.NoError(t, err)
	assert.True(t, won)
	require.NotNil(t, order.Metadata.StockAdjustedAt)
	assert.Equal(t, now, *order.Metadata.StockAdjustedAt)

	// replay loses the conditional write and must not touch metadata again
	saves := repo.saved
	won, err = MarkStockAdjusted(ctx, repo, order, now.Add(time.Minute))
	require.NoError(t, err)
	assert.False(t, won)
	assert.Equal(t, saves, repo.saved)
}

func TestMarkStockAdjustedReportsWinWhenMirrorFails(t *testing.T) {
	order := newTestOrder("cs_adjust_mirror")
	repo := newStubOrdersRepo(order)
	repo.failSave = true
	ctx := context.Background()

	// the marker write committed, so the caller owns the claim even though
	// the metadata mirror could not be persisted
	won, err := MarkStockAdjusted(ctx, repo, order, time.Now().UTC())
	require.Error(t, err)
	assert.True(t, won)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeDependency))
	assert.NotNil(t, order.StockAdjustedAt)
}
