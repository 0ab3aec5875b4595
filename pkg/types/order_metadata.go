package types

import "time"

// OrderMetadata is the jsonb metadata column on an order. Both addresses are
// always present on persisted orders; billing mirrors shipping when the buyer
// flagged them identical.
type OrderMetadata struct {
	ShippingAddress       Address    `json:"shipping_address"`
	BillingAddress        Address    `json:"billing_address"`
	BillingSameAsShipping bool       `json:"billing_same_as_shipping"`
	ShippingCostCents     int        `json:"shipping_cost_cents"`
	ClientReferenceID     string     `json:"client_reference_id,omitempty"`
	OrderID               string     `json:"order_id,omitempty"`
	StripeSessionID       string     `json:"stripe_session_id,omitempty"`
	StockAdjustedAt       *time.Time `json:"stock_adjusted_at,omitempty"`
	Discount              string     `json:"discount,omitempty"`
	Notes                 string     `json:"notes,omitempty"`
}
