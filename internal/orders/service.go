package orders

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/angelmondragon/storefront-backend/pkg/types"
)

// Service defines order lifecycle operations beyond repository reads.
type Service interface {
	Get(ctx context.Context, id uuid.UUID) (*models.Order, error)
	List(ctx context.Context) ([]models.Order, error)
	ListByFolder(ctx context.Context, folder enums.OrderFolder) ([]models.Order, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, patch types.StatusTimeline) (*models.Order, error)
	MoveBetween(ctx context.Context, ids []uuid.UUID, from, to enums.OrderFolder) (*MoveResult, error)
	Delete(ctx context.Context, ids []uuid.UUID, from enums.OrderFolder) (*MoveResult, error)
}

type service struct {
	repo Repository
	logg *logger.Logger
}

// NewService builds an order lifecycle service with the required dependencies.
func NewService(repo Repository, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, logg: logg}, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	order, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	return order, nil
}

func (s *service) List(ctx context.Context) ([]models.Order, error) {
	orders, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	return orders, nil
}

func (s *service) ListByFolder(ctx context.Context, folder enums.OrderFolder) ([]models.Order, error) {
	if !folder.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid folder %q", folder))
	}
	orders, err := s.repo.FindByFolder(ctx, folder)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders by folder")
	}
	return orders, nil
}

// UpdateStatus merges a timeline patch into the stored order. Only stages
// already present on the stored timeline are written; patch keys that do not
// exist are dropped, so the status document cannot drift.
func (s *service) UpdateStatus(ctx context.Context, id uuid.UUID, patch types.StatusTimeline) (*models.Order, error) {
	if len(patch) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "status patch required")
	}

	order, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if order.Status == nil {
		order.Status = types.NewStatusTimeline()
	}
	order.Status = order.Status.Merge(patch)

	saved, err := s.repo.Save(ctx, order)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save order status")
	}
	return saved, nil
}

// MoveBetween moves each requested order from one partition to another. Ids
// that cannot be resolved in the source partition land in the skipped list;
// partial success is reported, not fatal.
func (s *service) MoveBetween(ctx context.Context, ids []uuid.UUID, from, to enums.OrderFolder) (*MoveResult, error) {
	if len(ids) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one order id required")
	}
	if !from.IsValid() || !to.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid folder")
	}
	if from == to {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "source and destination folders are identical")
	}

	result := &MoveResult{
		Moved:   make([]uuid.UUID, 0, len(ids)),
		Skipped: make([]uuid.UUID, 0),
	}

	for _, id := range ids {
		moved, err := s.repo.UpdateFolder(ctx, id, from, to)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "move order between folders")
		}
		if !moved {
			s.logg.Warn(ctx, fmt.Sprintf("order %s not found in folder %s, skipping move", id, from))
			result.Skipped = append(result.Skipped, id)
			continue
		}
		result.Moved = append(result.Moved, id)
	}
	return result, nil
}

// Delete is a folder move into the deleted partition. Orders are never
// hard-deleted.
func (s *service) Delete(ctx context.Context, ids []uuid.UUID, from enums.OrderFolder) (*MoveResult, error) {
	if from == enums.OrderFolderDeleted {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "orders are already deleted")
	}
	return s.MoveBetween(ctx, ids, from, enums.OrderFolderDeleted)
}

// MarkStockAdjusted stamps the reconciliation marker and mirrors it into the
// order metadata. Returns false without error when another delivery already
// holds the marker. A true result with a non-nil error means the marker
// committed but the metadata mirror did not; callers own the claim either way.
func MarkStockAdjusted(ctx context.Context, repo Repository, order *models.Order, at time.Time) (bool, error) {
	won, err := repo.MarkStockAdjusted(ctx, order.ID, at)
	if err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark order stock adjusted")
	}
	if !won {
		return false, nil
	}

	order.StockAdjustedAt = &at
	order.Metadata.StockAdjustedAt = &at
	if _, err := repo.Save(ctx, order); err != nil {
		return true, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist stock adjusted metadata")
	}
	return true, nil
}
