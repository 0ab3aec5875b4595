package orders

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
)

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// ValidateOrder is the single source of truth for what a valid order looks
// like. Both the webhook-derived path and the manual checkout path run their
// drafts through it before anything is persisted. Checks run in a fixed order
// and fail on the first violation.
func ValidateOrder(order *models.Order) error {
	if order == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "order payload required")
	}
	if strings.TrimSpace(order.Name) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "customer name required")
	}
	if !emailPattern.MatchString(strings.TrimSpace(order.Email)) {
		return pkgerrors.New(pkgerrors.CodeValidation, "valid customer email required")
	}
	if strings.TrimSpace(order.Phone) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "customer phone required")
	}
	if order.AmountTotalCents < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "amount total cannot be negative")
	}
	if order.ShippingCostCents < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "shipping cost cannot be negative")
	}
	if order.ShippingCostCents > order.AmountTotalCents {
		return pkgerrors.New(pkgerrors.CodeValidation, "shipping cost exceeds amount total")
	}
	if len(order.Items) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "order must contain at least one item")
	}
	if !order.Currency.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unsupported currency %q", order.Currency))
	}
	if strings.TrimSpace(order.PaymentID) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "payment id required")
	}

	for i, item := range order.Items {
		if item.ID < 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("item %d: invalid product id", i))
		}
		if strings.TrimSpace(item.Name) == "" {
			return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("item %d: name required", i))
		}
		if item.Quantity <= 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("item %d: quantity must be positive", i))
		}
		if item.UnitAmountCents < 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("item %d: unit amount cannot be negative", i))
		}
	}

	if total := order.Items.TotalCents() + order.ShippingCostCents; total != order.AmountTotalCents {
		return pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("amount total %d does not reconcile with items+shipping %d", order.AmountTotalCents, total))
	}

	if err := order.Metadata.ShippingAddress.Validate(); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "shipping address")
	}
	if err := order.Metadata.BillingAddress.Validate(); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "billing address")
	}
	return nil
}
