package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/storefront-backend/pkg/enums"
	"github.com/angelmondragon/storefront-backend/pkg/types"
)

// Order is the canonical persisted order record. The row is document-shaped:
// items, metadata and the status timeline live in jsonb columns and updates
// are full-document writes. ID and EventID are immutable once created.
type Order struct {
	ID      uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	EventID uuid.UUID `gorm:"column:event_id;type:uuid;not null"`

	// PaymentID is the provider payment-intent id, or a synthetic
	// manual_<uuid> placeholder for unpaid manual orders. Never empty.
	PaymentID string `gorm:"column:payment_id;not null"`
	// SessionID is the provider checkout-session id and the primary
	// idempotency key. Empty for manual orders.
	SessionID string `gorm:"column:session_id;index"`

	Name  string `gorm:"column:name;not null"`
	Email string `gorm:"column:email;not null"`
	Phone string `gorm:"column:phone;not null"`

	Currency          enums.Currency `gorm:"column:currency;type:text;not null"`
	AmountTotalCents  int            `gorm:"column:amount_total_cents;not null"`
	ShippingCostCents int            `gorm:"column:shipping_cost_cents;not null;default:0"`

	Items    types.OrderItems    `gorm:"column:items;type:jsonb;serializer:json"`
	Metadata types.OrderMetadata `gorm:"column:metadata;type:jsonb;serializer:json"`
	Status   types.StatusTimeline `gorm:"column:status;type:jsonb;serializer:json"`

	// StockAdjustedAt is the terminal reconciliation marker. It is a real
	// column (not buried in metadata) so marking adjusted can be a single
	// conditional write.
	StockAdjustedAt *time.Time `gorm:"column:stock_adjusted_at"`

	PaymentStatus enums.PaymentStatus `gorm:"column:payment_status;type:text;not null;default:'unpaid'"`
	PaymentType   enums.PaymentType   `gorm:"column:payment_type;type:text;not null;default:'stripe'"`
	Folder        enums.OrderFolder   `gorm:"column:folder;type:text;not null;default:'orders';index"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// StockAdjusted reports whether the compensating decrement ran for this order.
func (o *Order) StockAdjusted() bool {
	return o != nil && o.StockAdjustedAt != nil
}
