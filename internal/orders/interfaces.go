package orders

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
)

// Repository defines persistence operations for the orders table.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, order *models.Order) (*models.Order, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	FindBySessionID(ctx context.Context, sessionID string) (*models.Order, error)
	FindByPaymentID(ctx context.Context, paymentID string) (*models.Order, error)
	FindAll(ctx context.Context) ([]models.Order, error)
	FindByFolder(ctx context.Context, folder enums.OrderFolder) ([]models.Order, error)
	Save(ctx context.Context, order *models.Order) (*models.Order, error)
	MarkStockAdjusted(ctx context.Context, id uuid.UUID, at time.Time) (bool, error)
	UpdateFolder(ctx context.Context, id uuid.UUID, from, to enums.OrderFolder) (bool, error)
}
