package orders

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
)

func TestValidateOrderAcceptsWellFormedOrder(t *testing.T) {
	order := newTestOrder("cs_valid")
	require.NoError(t, ValidateOrder(order))
}

func TestValidateOrderRejectsNil(t *testing.T) {
	err := ValidateOrder(nil)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestValidateOrderFieldFailures(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*models.Order)
	}{
		{"missing name", func(o *models.Order) { o.Name = " " }},
		{"bad email", func(o *models.Order) { o.Email = "not-an-email" }},
		{"missing phone", func(o *models.Order) { o.Phone = "" }},
		{"negative total", func(o *models.Order) { o.AmountTotalCents = -1 }},
		{"negative shipping", func(o *models.Order) { o.ShippingCostCents = -1 }},
		{"shipping exceeds total", func(o *models.Order) {
			o.ShippingCostCents = o.AmountTotalCents + 1
		}},
		{"no items", func(o *models.Order) { o.Items = nil }},
		{"bad currency", func(o *models.Order) { o.Currency = "xyz" }},
		{"missing payment id", func(o *models.Order) { o.PaymentID = "" }},
		{"zero quantity item", func(o *models.Order) { o.Items[0].Quantity = 0 }},
		{"negative unit amount", func(o *models.Order) { o.Items[0].UnitAmountCents = -5 }},
		{"unnamed item", func(o *models.Order) { o.Items[0].Name = "" }},
		{"total mismatch", func(o *models.Order) { o.AmountTotalCents = 9999 }},
		{"missing shipping address", func(o *models.Order) {
			o.Metadata.ShippingAddress.Line1 = ""
		}},
		{"missing billing address", func(o *models.Order) {
			o.Metadata.BillingAddress.City = ""
		}},
		{"invalid country", func(o *models.Order) {
			o.Metadata.ShippingAddress.Country = "1"
		}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			order := newTestOrder("cs_invalid")
			tc.mutate(order)
			err := ValidateOrder(order)
			require.Error(t, err)
			assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
		})
	}
}

func TestValidateOrderTotalReconciliation(t *testing.T) {
	order := newTestOrder("cs_totals")
	// 2*1000 + 1*500 + 300 shipping
	order.AmountTotalCents = 2800
	require.NoError(t, ValidateOrder(order))

	order.AmountTotalCents = 2500
	err := ValidateOrder(order)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}
