package checkout

import (
	"context"

	"github.com/stripe/stripe-go/v84"
	"github.com/stripe/stripe-go/v84/checkout/session"

	pkgstripe "github.com/angelmondragon/storefront-backend/pkg/stripe"
)

// SessionCreator exposes the single Stripe operation the checkout service
// needs, so tests can substitute a fake.
type SessionCreator interface {
	CreateSession(ctx context.Context, params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error)
}

type sessionCreatorWrapper struct{}

// NewSessionCreator wraps the shared Stripe client.
func NewSessionCreator(api *pkgstripe.Client) SessionCreator {
	if api == nil {
		return nil
	}
	return &sessionCreatorWrapper{}
}

func (w *sessionCreatorWrapper) CreateSession(ctx context.Context, params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error) {
	if params != nil {
		params.Context = ctx
	}
	return session.New(params)
}
