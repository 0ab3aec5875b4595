package stripewebhook

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/stripe/stripe-go/v84"
	"go.uber.org/multierr"

	"github.com/angelmondragon/storefront-backend/internal/notifications"
	"github.com/angelmondragon/storefront-backend/internal/orders"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/angelmondragon/storefront-backend/pkg/metrics"
	"github.com/angelmondragon/storefront-backend/pkg/types"
)

type stockDecrementer interface {
	Decrement(ctx context.Context, id int, qty int) error
}

type ServiceParams struct {
	OrdersRepo orders.Repository
	Resolver   *Resolver
	Stock      stockDecrementer
	Sessions   SessionClient
	Mailer     notifications.Mailer
	Metrics    *metrics.WebhookMetrics
	Logger     *logger.Logger
}

// Service is the reconciliation engine: it receives verified payment events
// and drives each (session, payment intent) pair through the monotonic
// order-created / stock-adjusted state machine, safely under duplicate and
// reordered deliveries.
type Service struct {
	ordersRepo orders.Repository
	resolver   *Resolver
	stock      stockDecrementer
	sessions   SessionClient
	mailer     notifications.Mailer
	metrics    *metrics.WebhookMetrics
	logg       *logger.Logger
}

func NewService(params ServiceParams) (*Service, error) {
	if params.OrdersRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "orders repo required")
	}
	if params.Resolver == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "idempotency resolver required")
	}
	if params.Stock == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "stock service required")
	}
	if params.Sessions == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "stripe session client required")
	}
	if params.Mailer == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "mailer required")
	}
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "logger required")
	}
	return &Service{
		ordersRepo: params.OrdersRepo,
		resolver:   params.Resolver,
		stock:      params.Stock,
		sessions:   params.Sessions,
		mailer:     params.Mailer,
		metrics:    params.Metrics,
		logg:       params.Logger,
	}, nil
}

// HandleEvent dispatches one verified webhook event. Unrecognized event types
// are an explicit no-op.
func (s *Service) HandleEvent(ctx context.Context, event *stripe.Event) error {
	if event == nil || event.Data == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "stripe event data required")
	}

	eventType := string(event.Type)
	ctx = s.logg.WithEventType(ctx, eventType)
	start := time.Now()
	defer func() {
		s.metrics.ObserveDuration(eventType, time.Since(start))
	}()

	switch event.Type {
	case stripe.EventTypeCheckoutSessionCompleted,
		stripe.EventTypeCheckoutSessionAsyncPaymentSucceeded:
		var sess stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "decode checkout session event")
		}
		return s.reconcile(ctx, eventType, &sess)

	case stripe.EventTypePaymentIntentSucceeded:
		var intent stripe.PaymentIntent
		if err := json.Unmarshal(event.Data.Raw, &intent); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "decode payment intent event")
		}
		sess, err := s.sessions.FindSessionByPaymentIntent(ctx, intent.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup session by payment intent")
		}
		if sess == nil {
			// some payment flows bypass checkout sessions entirely
			s.logg.Info(ctx, fmt.Sprintf("payment intent %s has no checkout session, skipping", intent.ID))
			s.metrics.IncEvent(eventType, "no_session")
			return nil
		}
		return s.reconcile(ctx, eventType, sess)

	default:
		return nil
	}
}

// reconcile drives one session through the state machine. The idempotency
// marker on the stored order, not event arrival order, decides what is left
// to do.
func (s *Service) reconcile(ctx context.Context, eventType string, sess *stripe.CheckoutSession) error {
	if sess == nil || sess.ID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "checkout session id required")
	}
	ctx = s.logg.WithSessionID(ctx, sess.ID)

	paymentIntentID := ""
	if sess.PaymentIntent != nil {
		paymentIntentID = sess.PaymentIntent.ID
	}

	resolution, existing := s.resolver.FindExisting(ctx, sess.ID, paymentIntentID)
	switch resolution {
	case ResolutionFound:
		if s.resolver.IsStockAdjusted(existing) {
			s.logg.Info(ctx, "order exists with stock already adjusted, idempotent replay")
			s.metrics.IncEvent(eventType, "replay")
			return nil
		}
		// an earlier delivery created the order but never adjusted stock;
		// resume from its items without re-deriving anything
		return s.adjustStock(ctx, eventType, existing)

	case ResolutionLookupFailed:
		s.logg.Warn(ctx, "idempotency lookup failed, proceeding with order creation (fail-open)")
	}

	items, err := s.sessions.ListLineItems(ctx, sess.ID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list session line items")
	}
	if len(items) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "checkout session has no line items")
	}

	order, err := DeriveOrder(sess, items)
	if err != nil {
		return err
	}

	if sess.AmountTotal >= 0 && int(sess.AmountTotal) != order.AmountTotalCents {
		s.logg.Warn(ctx, fmt.Sprintf("provider total %d differs from recomputed total %d, persisting recomputed",
			sess.AmountTotal, order.AmountTotalCents))
	}

	created, err := s.ordersRepo.Create(ctx, order)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist order")
	}
	ctx = s.logg.WithOrderID(ctx, created.ID.String())
	s.logg.Info(ctx, fmt.Sprintf("order created for session %s (%d items, %d cents)",
		sess.ID, len(created.Items), created.AmountTotalCents))
	s.metrics.IncEvent(eventType, "order_created")

	if err := s.mailer.SendOrderConfirmation(ctx, created); err != nil {
		// mail failures never roll back or fail the webhook
		s.logg.Error(ctx, "order confirmation mail failed", err)
	}

	return s.adjustStock(ctx, eventType, created)
}

// adjustStock claims the stock-adjusted marker, then fans the per-item
// decrements out concurrently. Claiming first means only one of several
// racing deliveries ever decrements; a lost claim is a clean no-op.
func (s *Service) adjustStock(ctx context.Context, eventType string, order *models.Order) error {
	won, err := orders.MarkStockAdjusted(ctx, s.ordersRepo, order, time.Now().UTC())
	if err != nil {
		if !won {
			return err
		}
		// the marker column committed, so no retry will ever re-enter here;
		// losing the cosmetic metadata mirror must not skip the decrements
		s.logg.Warn(ctx, fmt.Sprintf("stock adjustment claimed but metadata mirror failed: %v", err))
	}
	if !won {
		s.logg.Info(ctx, "stock adjustment already claimed by another delivery")
		s.metrics.IncEvent(eventType, "replay")
		return nil
	}

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs error
	)
	for _, item := range order.Items {
		wg.Add(1)
		go func(item types.OrderItem) {
			defer wg.Done()
			if err := s.stock.Decrement(ctx, item.ID, item.Quantity); err != nil {
				mu.Lock()
				errs = multierr.Append(errs, fmt.Errorf("item %d: %w", item.ID, err))
				mu.Unlock()
				s.metrics.IncDecrementFailure(decrementFailureReason(err))
			}
		}(item)
	}
	wg.Wait()

	if errs != nil {
		// the customer has already been charged; failing the webhook here
		// would make the provider retry against an already-claimed marker
		s.logg.Warn(ctx, fmt.Sprintf("partial stock adjustment for order %s: %v", order.ID, errs))
		s.metrics.IncEvent(eventType, "partial_stock_adjustment")
		return nil
	}

	s.logg.Info(ctx, fmt.Sprintf("stock adjusted for order %s (%d items)", order.ID, len(order.Items)))
	s.metrics.IncEvent(eventType, "stock_adjusted")
	return nil
}

func decrementFailureReason(err error) string {
	switch {
	case pkgerrors.IsCode(err, pkgerrors.CodeInsufficientStock):
		return "insufficient_stock"
	case pkgerrors.IsCode(err, pkgerrors.CodeNotFound):
		return "missing_item"
	default:
		return "dependency"
	}
}
