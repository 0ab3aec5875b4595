package models

import "time"

// StockItem is one product row in the stock ledger. IDs are the small integer
// catalog ids the storefront has always used; they also travel through Stripe
// session metadata to tie line items back to products.
type StockItem struct {
	ID         int    `gorm:"column:id;primaryKey"`
	Name       string `gorm:"column:name;not null"`
	StockValue int    `gorm:"column:stock_value;not null;default:0"`
	PriceCents int    `gorm:"column:price_cents;not null"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// SoldOut reports whether the item has no remaining stock.
func (s StockItem) SoldOut() bool {
	return s.StockValue <= 0
}
