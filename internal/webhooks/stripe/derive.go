package stripewebhook

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v84"

	"github.com/angelmondragon/storefront-backend/internal/orders"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/types"
)

// Session metadata keys written by the checkout session builder and read
// back here when the webhook arrives.
const (
	metaProductID         = "product_id"
	metaShippingSentinel  = "shipping"
	metaShippingAddress   = "shipping_address"
	metaBillingAddress    = "billing_address"
	metaBillingSame       = "billing_same_as_shipping"
	metaCustomerName      = "customer_name"
	metaCustomerPhone     = "customer_phone"
	metaOrderID           = "order_id"
	metaClientReferenceID = "client_reference_id"
)

// DeriveOrder turns a checkout session plus its expanded line items into a
// validated order draft. It is a pure function of its inputs; any failure is
// a fatal validation error and no partial order is ever produced.
func DeriveOrder(session *stripe.CheckoutSession, lineItems []*stripe.LineItem) (*models.Order, error) {
	if session == nil || session.ID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "checkout session required")
	}
	if len(lineItems) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "checkout session has no line items")
	}

	items, shippingCents, err := deriveItems(lineItems)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "checkout session contains only shipping lines")
	}

	currency, err := enums.ParseCurrency(string(session.Currency))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "session currency")
	}

	shipping, billing, err := deriveAddresses(session)
	if err != nil {
		return nil, err
	}

	name, email, phone := deriveContact(session, shipping)
	shipping.Phone = backfill(shipping.Phone, phone)
	billing.Phone = backfill(billing.Phone, phone)

	paymentID := ""
	if session.PaymentIntent != nil {
		paymentID = session.PaymentIntent.ID
	}

	// The recomputed total is authoritative; the provider's reported figure
	// is never trusted for persistence.
	order := &models.Order{
		ID:                uuid.New(),
		EventID:           uuid.New(),
		PaymentID:         paymentID,
		SessionID:         session.ID,
		Name:              name,
		Email:             email,
		Phone:             phone,
		Currency:          currency,
		AmountTotalCents:  items.TotalCents() + shippingCents,
		ShippingCostCents: shippingCents,
		Items:             items,
		Metadata: types.OrderMetadata{
			ShippingAddress:       shipping,
			BillingAddress:        billing,
			BillingSameAsShipping: session.Metadata[metaBillingSame] == "true",
			ShippingCostCents:     shippingCents,
			ClientReferenceID:     deriveClientReference(session),
			OrderID:               session.Metadata[metaOrderID],
			StripeSessionID:       session.ID,
		},
		Status:        types.NewStatusTimeline(),
		PaymentStatus: derivePaymentStatus(session),
		PaymentType:   enums.PaymentTypeStripe,
		Folder:        enums.OrderFolderOrders,
	}

	if err := orders.ValidateOrder(order); err != nil {
		return nil, err
	}
	return order, nil
}

func deriveItems(lineItems []*stripe.LineItem) (types.OrderItems, int, error) {
	items := make(types.OrderItems, 0, len(lineItems))
	shippingCents := 0

	for i, li := range lineItems {
		if li == nil {
			return nil, 0, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("line item %d is empty", i))
		}

		unit, err := deriveUnitAmount(li)
		if err != nil {
			return nil, 0, err
		}

		tag := productTag(li)
		if tag == metaShippingSentinel {
			shippingCents += int(li.AmountTotal)
			continue
		}

		productID, err := strconv.Atoi(tag)
		if err != nil || productID < 0 {
			return nil, 0, pkgerrors.New(pkgerrors.CodeValidation,
				fmt.Sprintf("line item %d: unresolvable product id %q", i, tag))
		}

		items = append(items, types.OrderItem{
			ID:              productID,
			Name:            lineItemName(li),
			Quantity:        int(li.Quantity),
			UnitAmountCents: unit,
		})
	}
	return items, shippingCents, nil
}

// deriveUnitAmount recomputes the unit price from the line total when it
// divides evenly, falling back to the quoted price otherwise.
func deriveUnitAmount(li *stripe.LineItem) (int, error) {
	if li.Quantity <= 0 {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "line item quantity must be positive")
	}
	if li.AmountTotal >= 0 && li.AmountTotal%li.Quantity == 0 {
		return int(li.AmountTotal / li.Quantity), nil
	}
	if li.Price != nil && li.Price.UnitAmount >= 0 {
		return int(li.Price.UnitAmount), nil
	}
	return 0, pkgerrors.New(pkgerrors.CodeValidation, "line item has no usable unit amount")
}

func productTag(li *stripe.LineItem) string {
	if li.Price != nil && li.Price.Product != nil {
		if tag, ok := li.Price.Product.Metadata[metaProductID]; ok {
			return tag
		}
	}
	return ""
}

func lineItemName(li *stripe.LineItem) string {
	if li.Description != "" {
		return li.Description
	}
	if li.Price != nil && li.Price.Product != nil {
		return li.Price.Product.Name
	}
	return ""
}

// deriveContact resolves customer fields with a priority-ordered fallback
// chain: explicit session fields, then session metadata, then the shipping
// address block.
func deriveContact(session *stripe.CheckoutSession, shipping types.Address) (name, email, phone string) {
	if session.CustomerDetails != nil {
		name = session.CustomerDetails.Name
		email = session.CustomerDetails.Email
		phone = session.CustomerDetails.Phone
	}
	name = backfill(name, session.Metadata[metaCustomerName], shipping.Name)
	email = backfill(email, session.CustomerEmail)
	phone = backfill(phone, session.Metadata[metaCustomerPhone], shipping.Phone)
	return strings.TrimSpace(name), strings.TrimSpace(email), strings.TrimSpace(phone)
}

// deriveAddresses reads both addresses from JSON-encoded metadata blobs. An
// absent billing blob, or an explicit same-as-shipping flag, copies shipping
// into billing.
func deriveAddresses(session *stripe.CheckoutSession) (types.Address, types.Address, error) {
	shipping, err := parseAddressBlob(session.Metadata[metaShippingAddress])
	if err != nil {
		return types.Address{}, types.Address{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "shipping address metadata")
	}

	sameAsShipping := session.Metadata[metaBillingSame] == "true"
	billingBlob := session.Metadata[metaBillingAddress]
	if sameAsShipping || billingBlob == "" {
		return shipping, shipping, nil
	}

	billing, err := parseAddressBlob(billingBlob)
	if err != nil {
		return types.Address{}, types.Address{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "billing address metadata")
	}
	if billing.IsZero() {
		return shipping, shipping, nil
	}
	return shipping, billing, nil
}

func parseAddressBlob(blob string) (types.Address, error) {
	if blob == "" {
		return types.Address{}, fmt.Errorf("address metadata missing")
	}
	var addr types.Address
	if err := json.Unmarshal([]byte(blob), &addr); err != nil {
		return types.Address{}, fmt.Errorf("decoding address metadata: %w", err)
	}
	return addr.Normalize(), nil
}

func deriveClientReference(session *stripe.CheckoutSession) string {
	if session.ClientReferenceID != "" {
		return session.ClientReferenceID
	}
	return session.Metadata[metaClientReferenceID]
}

func derivePaymentStatus(session *stripe.CheckoutSession) enums.PaymentStatus {
	if session.PaymentStatus == stripe.CheckoutSessionPaymentStatusPaid {
		return enums.PaymentStatusPaid
	}
	return enums.PaymentStatusUnpaid
}

func backfill(value string, fallbacks ...string) string {
	if strings.TrimSpace(value) != "" {
		return value
	}
	for _, fb := range fallbacks {
		if strings.TrimSpace(fb) != "" {
			return fb
		}
	}
	return value
}
