package checkout

import (
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/types"
)

// CartItem is one requested product in a checkout submission. The expected
// unit amount is what the storefront displayed; the catalog price is always
// authoritative and a mismatch rejects the cart.
type CartItem struct {
	ID                      int `json:"id" validate:"min=0"`
	Quantity                int `json:"quantity" validate:"required,gt=0"`
	ExpectedUnitAmountCents int `json:"expected_unit_amount,omitempty" validate:"min=0"`
}

// Customer carries the contact fields collected at checkout.
type Customer struct {
	Name    string `json:"name" validate:"required"`
	Email   string `json:"email" validate:"required,email"`
	Phone   string `json:"phone" validate:"required"`
	Country string `json:"country,omitempty"`
}

// Input is a checkout submission: a cart plus customer and addresses.
type Input struct {
	Items                 []CartItem    `json:"items" validate:"required,min=1,dive"`
	Customer              Customer      `json:"customer" validate:"required"`
	ShippingAddress       types.Address `json:"shipping_address" validate:"required"`
	BillingAddress        types.Address `json:"billing_address,omitempty"`
	BillingSameAsShipping bool          `json:"billing_same_as_shipping"`
	ShippingCostCents     int           `json:"shipping_cost_cents" validate:"min=0"`
	Currency              string        `json:"currency,omitempty"`
	ClientReferenceID     string        `json:"client_reference_id,omitempty"`
	Discount              string        `json:"discount,omitempty"`
	Notes                 string        `json:"notes,omitempty"`
}

// Result is either a hosted session redirect or an immediately-persisted
// manual order, never both.
type Result struct {
	HostedCheckoutURL string        `json:"checkout_url,omitempty"`
	SessionID         string        `json:"session_id,omitempty"`
	Order             *models.Order `json:"order,omitempty"`
}

// ItemRejection explains why one cart item failed the catalog cross-check.
type ItemRejection struct {
	ItemID int    `json:"item_id"`
	Reason string `json:"reason"`
}
