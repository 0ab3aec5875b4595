package stock

import (
	"context"

	"gorm.io/gorm"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
)

// Repository defines persistence operations for the stock ledger.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindAll(ctx context.Context) ([]models.StockItem, error)
	FindByID(ctx context.Context, id int) (*models.StockItem, error)
	FindByIDs(ctx context.Context, ids []int) ([]models.StockItem, error)
	Create(ctx context.Context, item *models.StockItem) (*models.StockItem, error)
	SetStock(ctx context.Context, id int, value int) error
	Decrement(ctx context.Context, id int, qty int) (bool, error)
	Increment(ctx context.Context, id int, qty int) error
}
