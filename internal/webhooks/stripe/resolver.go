package stripewebhook

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/angelmondragon/storefront-backend/internal/orders"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
)

// Resolution distinguishes a clean miss from a miss caused by a store
// failure. Callers currently treat both as "create the order" (availability
// over consistency), but the type keeps the evidence explicit.
type Resolution int

const (
	ResolutionNotFound Resolution = iota
	ResolutionFound
	ResolutionLookupFailed
)

// Resolver finds an already-persisted order for a session / payment-intent
// pair. It never returns an error: lookup failures degrade to
// ResolutionLookupFailed so a transient store outage cannot block order
// creation for a paid customer.
type Resolver struct {
	repo orders.Repository
	logg *logger.Logger
}

func NewResolver(repo orders.Repository, logg *logger.Logger) (*Resolver, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Resolver{repo: repo, logg: logg}, nil
}

// FindExisting checks session id first, then payment-intent id.
func (r *Resolver) FindExisting(ctx context.Context, sessionID, paymentIntentID string) (Resolution, *models.Order) {
	lookupFailed := false

	if sessionID != "" {
		order, err := r.repo.FindBySessionID(ctx, sessionID)
		switch {
		case err == nil:
			return ResolutionFound, order
		case err != gorm.ErrRecordNotFound:
			lookupFailed = true
			r.logg.Error(ctx, "idempotency lookup by session id failed, treating as not found", err)
		}
	}

	if paymentIntentID != "" {
		order, err := r.repo.FindByPaymentID(ctx, paymentIntentID)
		switch {
		case err == nil:
			return ResolutionFound, order
		case err != gorm.ErrRecordNotFound:
			lookupFailed = true
			r.logg.Error(ctx, "idempotency lookup by payment id failed, treating as not found", err)
		}
	}

	if lookupFailed {
		return ResolutionLookupFailed, nil
	}
	return ResolutionNotFound, nil
}

// IsStockAdjusted reports whether the compensating decrement already ran.
// The marker, not mere order existence, is the authority: an order created by
// one event can have its stock adjusted by a later one.
func (r *Resolver) IsStockAdjusted(order *models.Order) bool {
	if order == nil {
		return false
	}
	return order.StockAdjustedAt != nil || order.Metadata.StockAdjustedAt != nil
}
