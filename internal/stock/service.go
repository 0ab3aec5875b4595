package stock

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/angelmondragon/storefront-backend/pkg/types"
)

// Service defines stock ledger operations beyond repository reads.
type Service interface {
	List(ctx context.Context) ([]models.StockItem, error)
	Get(ctx context.Context, id int) (*models.StockItem, error)
	GetMany(ctx context.Context, ids []int) (map[int]models.StockItem, error)
	SetAbsolute(ctx context.Context, id int, value int) error
	Decrement(ctx context.Context, id int, qty int) error
	DecrementBatch(ctx context.Context, items types.OrderItems) error
	Restock(ctx context.Context, id int, qty int) error
}

type service struct {
	repo Repository
	logg *logger.Logger
}

// NewService builds a stock service with the required dependencies.
func NewService(repo Repository, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("stock repository required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, logg: logg}, nil
}

func (s *service) List(ctx context.Context) ([]models.StockItem, error) {
	items, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list stock items")
	}
	return items, nil
}

func (s *service) Get(ctx context.Context, id int) (*models.StockItem, error) {
	item, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "stock item not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load stock item")
	}
	return item, nil
}

// GetMany loads a set of catalog items keyed by id. Missing ids are simply
// absent from the map; callers decide whether that is an error.
func (s *service) GetMany(ctx context.Context, ids []int) (map[int]models.StockItem, error) {
	items, err := s.repo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load stock items")
	}
	byID := make(map[int]models.StockItem, len(items))
	for _, item := range items {
		byID[item.ID] = item
	}
	return byID, nil
}

func (s *service) SetAbsolute(ctx context.Context, id int, value int) error {
	if value < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "stock value cannot be negative")
	}
	if err := s.repo.SetStock(ctx, id, value); err != nil {
		if err == gorm.ErrRecordNotFound {
			return pkgerrors.New(pkgerrors.CodeNotFound, "stock item not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "set stock value")
	}
	return nil
}

// Decrement removes qty units from a single item. The repository applies a
// conditional write, so a no-op result means either the item is missing or
// there is not enough stock left.
func (s *service) Decrement(ctx context.Context, id int, qty int) error {
	if qty <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}

	applied, err := s.repo.Decrement(ctx, id, qty)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decrement stock")
	}
	if applied {
		return nil
	}

	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if err == gorm.ErrRecordNotFound {
			return pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("stock item %d not found", id))
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load stock item")
	}
	return pkgerrors.New(pkgerrors.CodeInsufficientStock, fmt.Sprintf("insufficient stock for item %d", id))
}

// DecrementBatch decrements every item or none. Items are applied in order
// and rolled back with compensating increments when a later one fails.
func (s *service) DecrementBatch(ctx context.Context, items types.OrderItems) error {
	applied := make([]types.OrderItem, 0, len(items))

	for _, item := range items {
		if err := s.Decrement(ctx, item.ID, item.Quantity); err != nil {
			s.rollback(ctx, applied)
			return err
		}
		applied = append(applied, item)
	}
	return nil
}

func (s *service) rollback(ctx context.Context, applied []types.OrderItem) {
	for _, item := range applied {
		if err := s.repo.Increment(ctx, item.ID, item.Quantity); err != nil {
			s.logg.Error(ctx, fmt.Sprintf("compensating restock failed for item %d", item.ID), err)
		}
	}
}

func (s *service) Restock(ctx context.Context, id int, qty int) error {
	if qty <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}
	if err := s.repo.Increment(ctx, id, qty); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "restock item")
	}
	return nil
}
