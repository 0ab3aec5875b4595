package checkout

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v84"

	"github.com/angelmondragon/storefront-backend/internal/notifications"
	"github.com/angelmondragon/storefront-backend/internal/orders"
	"github.com/angelmondragon/storefront-backend/internal/stock"
	"github.com/angelmondragon/storefront-backend/pkg/config"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/angelmondragon/storefront-backend/pkg/types"
)

// hostedCountries is the fixed allow-list for the provider-hosted flow.
// Both ISO codes and full names are accepted because the storefront's
// address form is free text.
var hostedCountries = map[string]struct{}{
	"PT":       {},
	"ES":       {},
	"PORTUGAL": {},
	"SPAIN":    {},
	"ESPANHA":  {},
	"ESPAÑA":   {},
}

// Service decides between the provider-hosted checkout flow and the manual
// invoice flow, and builds the respective artifact.
type Service interface {
	Checkout(ctx context.Context, input Input) (*Result, error)
}

// orderCreator is the only persistence operation the manual flow needs.
type orderCreator interface {
	Create(ctx context.Context, order *models.Order) (*models.Order, error)
}

type ServiceParams struct {
	Stock      stock.Service
	OrdersRepo orderCreator
	Sessions   SessionCreator
	Mailer     notifications.Mailer
	Config     config.CheckoutConfig
	Logger     *logger.Logger
}

type service struct {
	stock      stock.Service
	ordersRepo orderCreator
	sessions   SessionCreator
	mailer     notifications.Mailer
	cfg        config.CheckoutConfig
	logg       *logger.Logger
}

func NewService(params ServiceParams) (Service, error) {
	if params.Stock == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "stock service required")
	}
	if params.OrdersRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "orders repo required")
	}
	if params.Sessions == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "stripe session creator required")
	}
	if params.Mailer == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "mailer required")
	}
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "logger required")
	}
	return &service{
		stock:      params.Stock,
		ordersRepo: params.OrdersRepo,
		sessions:   params.Sessions,
		mailer:     params.Mailer,
		cfg:        params.Config,
		logg:       params.Logger,
	}, nil
}

func (s *service) Checkout(ctx context.Context, input Input) (*Result, error) {
	input.ShippingAddress = input.ShippingAddress.Normalize()
	input.BillingAddress = input.BillingAddress.Normalize()

	country := resolveCountry(input)
	if country == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "shipping country required")
	}

	currency, err := resolveCurrency(input.Currency)
	if err != nil {
		return nil, err
	}

	catalog, rejections, err := s.crossCheckCart(ctx, input.Items)
	if err != nil {
		return nil, err
	}
	if len(rejections) > 0 {
		// no partial cart checkout: a single bad item rejects everything
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart rejected").WithDetails(rejections)
	}

	if _, ok := hostedCountries[country]; ok {
		return s.hostedCheckout(ctx, input, currency, catalog)
	}
	return s.manualCheckout(ctx, input, currency, catalog)
}

// resolveCountry extracts the routing country: shipping address first, then
// billing, then the customer profile.
func resolveCountry(input Input) string {
	for _, candidate := range []string{
		input.ShippingAddress.Country,
		input.BillingAddress.Country,
		input.Customer.Country,
	} {
		if c := strings.ToUpper(strings.TrimSpace(candidate)); c != "" {
			return c
		}
	}
	return ""
}

func resolveCurrency(raw string) (enums.Currency, error) {
	if strings.TrimSpace(raw) == "" {
		return enums.CurrencyEUR, nil
	}
	currency, err := enums.ParseCurrency(raw)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeValidation, err, "checkout currency")
	}
	return currency, nil
}

// crossCheckCart verifies every requested item against the live catalog:
// existence, displayed price, sold-out, and sufficient stock.
func (s *service) crossCheckCart(ctx context.Context, items []CartItem) (map[int]models.StockItem, []ItemRejection, error) {
	if len(items) == 0 {
		return nil, nil, pkgerrors.New(pkgerrors.CodeValidation, "cart must contain at least one item")
	}

	ids := make([]int, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ID)
	}

	catalog, err := s.stock.GetMany(ctx, ids)
	if err != nil {
		return nil, nil, err
	}

	var rejections []ItemRejection
	for _, item := range items {
		record, ok := catalog[item.ID]
		switch {
		case !ok:
			rejections = append(rejections, ItemRejection{ItemID: item.ID, Reason: "unknown_item"})
		case item.Quantity <= 0:
			rejections = append(rejections, ItemRejection{ItemID: item.ID, Reason: "invalid_quantity"})
		case item.ExpectedUnitAmountCents > 0 && item.ExpectedUnitAmountCents != record.PriceCents:
			rejections = append(rejections, ItemRejection{ItemID: item.ID, Reason: "price_mismatch"})
		case record.SoldOut():
			rejections = append(rejections, ItemRejection{ItemID: item.ID, Reason: "sold_out"})
		case record.StockValue < item.Quantity:
			rejections = append(rejections, ItemRejection{ItemID: item.ID, Reason: "insufficient_stock"})
		}
	}
	return catalog, rejections, nil
}

func (s *service) hostedCheckout(ctx context.Context, input Input, currency enums.Currency, catalog map[int]models.StockItem) (*Result, error) {
	params, err := s.buildSessionParams(input, currency, catalog)
	if err != nil {
		return nil, err
	}

	sess, err := s.sessions.CreateSession(ctx, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create checkout session")
	}

	s.logg.Info(s.logg.WithSessionID(ctx, sess.ID), "hosted checkout session created")
	return &Result{HostedCheckoutURL: sess.URL, SessionID: sess.ID}, nil
}

// buildSessionParams translates the cart into Stripe line items, tagging each
// price's product with the internal catalog id so the webhook can resolve it
// back, and stashing both addresses in session metadata.
func (s *service) buildSessionParams(input Input, currency enums.Currency, catalog map[int]models.StockItem) (*stripe.CheckoutSessionParams, error) {
	lineItems := make([]*stripe.CheckoutSessionLineItemParams, 0, len(input.Items)+1)
	for _, item := range input.Items {
		record := catalog[item.ID]
		lineItems = append(lineItems, &stripe.CheckoutSessionLineItemParams{
			Quantity: stripe.Int64(int64(item.Quantity)),
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:   stripe.String(currency.String()),
				UnitAmount: stripe.Int64(int64(record.PriceCents)),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name:     stripe.String(record.Name),
					Metadata: map[string]string{"product_id": strconv.Itoa(item.ID)},
				},
			},
		})
	}
	if input.ShippingCostCents > 0 {
		lineItems = append(lineItems, &stripe.CheckoutSessionLineItemParams{
			Quantity: stripe.Int64(1),
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:   stripe.String(currency.String()),
				UnitAmount: stripe.Int64(int64(input.ShippingCostCents)),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name:     stripe.String("Shipping"),
					Metadata: map[string]string{"product_id": "shipping"},
				},
			},
		})
	}

	shippingBlob, err := json.Marshal(input.ShippingAddress)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode shipping address")
	}
	metadata := map[string]string{
		"order_id":                 uuid.NewString(),
		"shipping_address":         string(shippingBlob),
		"billing_same_as_shipping": strconv.FormatBool(input.BillingSameAsShipping || input.BillingAddress.IsZero()),
		"customer_name":            input.Customer.Name,
		"customer_phone":           input.Customer.Phone,
	}
	if !input.BillingSameAsShipping && !input.BillingAddress.IsZero() {
		billingBlob, err := json.Marshal(input.BillingAddress)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode billing address")
		}
		metadata["billing_address"] = string(billingBlob)
	}
	if input.ClientReferenceID != "" {
		metadata["client_reference_id"] = input.ClientReferenceID
	}

	params := &stripe.CheckoutSessionParams{
		Mode:          stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL:    stripe.String(s.cfg.SuccessURL),
		CancelURL:     stripe.String(s.cfg.CancelURL),
		LineItems:     lineItems,
		CustomerEmail: stripe.String(input.Customer.Email),
		Metadata:      metadata,
	}
	if input.ClientReferenceID != "" {
		params.ClientReferenceID = stripe.String(input.ClientReferenceID)
	}
	return params, nil
}

// manualCheckout persists an unpaid order right away for countries outside
// the hosted allow-list. Stock is reserved up front; a failed reservation
// rolls back every already-applied decrement and no order is written.
func (s *service) manualCheckout(ctx context.Context, input Input, currency enums.Currency, catalog map[int]models.StockItem) (*Result, error) {
	items := make(types.OrderItems, 0, len(input.Items))
	for _, item := range input.Items {
		record := catalog[item.ID]
		items = append(items, types.OrderItem{
			ID:              item.ID,
			Name:            record.Name,
			Quantity:        item.Quantity,
			UnitAmountCents: record.PriceCents,
		})
	}

	billing := input.BillingAddress
	sameAsShipping := input.BillingSameAsShipping || billing.IsZero()
	if sameAsShipping {
		billing = input.ShippingAddress
	}
	billing.Phone = firstNonEmpty(billing.Phone, input.Customer.Phone)
	shipping := input.ShippingAddress
	shipping.Phone = firstNonEmpty(shipping.Phone, input.Customer.Phone)

	now := time.Now().UTC()
	order := &models.Order{
		ID:                uuid.New(),
		EventID:           uuid.New(),
		PaymentID:         "manual_" + uuid.NewString(),
		Name:              strings.TrimSpace(input.Customer.Name),
		Email:             strings.TrimSpace(input.Customer.Email),
		Phone:             strings.TrimSpace(input.Customer.Phone),
		Currency:          currency,
		AmountTotalCents:  items.TotalCents() + input.ShippingCostCents,
		ShippingCostCents: input.ShippingCostCents,
		Items:             items,
		Metadata: types.OrderMetadata{
			ShippingAddress:       shipping,
			BillingAddress:        billing,
			BillingSameAsShipping: sameAsShipping,
			ShippingCostCents:     input.ShippingCostCents,
			ClientReferenceID:     input.ClientReferenceID,
			StockAdjustedAt:       &now,
			Discount:              input.Discount,
			Notes:                 input.Notes,
		},
		Status:          types.NewStatusTimeline(),
		StockAdjustedAt: &now,
		PaymentStatus:   enums.PaymentStatusUnpaid,
		PaymentType:     enums.PaymentTypeManual,
		Folder:          enums.OrderFolderOrders,
	}

	if err := orders.ValidateOrder(order); err != nil {
		return nil, err
	}

	if err := s.stock.DecrementBatch(ctx, items); err != nil {
		return nil, err
	}

	created, err := s.ordersRepo.Create(ctx, order)
	if err != nil {
		// release the reservation, the order never materialized
		s.releaseReservation(ctx, items)
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist manual order")
	}

	ctx = s.logg.WithOrderID(ctx, created.ID.String())
	s.logg.Info(ctx, fmt.Sprintf("manual order created for %s (%d cents, unpaid)", resolveCountry(input), created.AmountTotalCents))

	if err := s.mailer.SendAwaitingPayment(ctx, created); err != nil {
		// mail failures never roll back the order
		s.logg.Error(ctx, "awaiting-payment mail failed", err)
	}
	return &Result{Order: created}, nil
}

func (s *service) releaseReservation(ctx context.Context, items types.OrderItems) {
	for _, item := range items {
		if err := s.stock.Restock(ctx, item.ID, item.Quantity); err != nil {
			s.logg.Error(ctx, fmt.Sprintf("releasing reserved stock failed for item %d", item.ID), err)
		}
	}
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if strings.TrimSpace(value) != "" {
			return value
		}
	}
	return ""
}
