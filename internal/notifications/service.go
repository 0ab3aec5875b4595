package notifications

import (
	"context"
	"fmt"

	"github.com/angelmondragon/storefront-backend/pkg/config"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
)

// Mailer sends transactional order mail. Failures must never roll back or
// fail the order that triggered them; callers log and move on.
type Mailer interface {
	SendOrderConfirmation(ctx context.Context, order *models.Order) error
	SendAwaitingPayment(ctx context.Context, order *models.Order) error
}

type logMailer struct {
	cfg  config.MailConfig
	logg *logger.Logger
}

// NewLogMailer returns a Mailer that records the outgoing mail in the
// structured log. The SMTP transport lives behind the same interface and is
// swapped in by deployment configuration.
func NewLogMailer(cfg config.MailConfig, logg *logger.Logger) (Mailer, error) {
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &logMailer{cfg: cfg, logg: logg}, nil
}

func (m *logMailer) SendOrderConfirmation(ctx context.Context, order *models.Order) error {
	if order == nil {
		return fmt.Errorf("order required")
	}
	ctx = m.logg.WithFields(ctx, map[string]any{
		"order_id": order.ID.String(),
		"to":       order.Email,
		"from":     m.cfg.FromAddress,
		"template": "order_confirmation",
	})
	m.logg.Info(ctx, fmt.Sprintf("order confirmation mail for %s (%d items, %d cents)",
		order.Name, len(order.Items), order.AmountTotalCents))
	return nil
}

func (m *logMailer) SendAwaitingPayment(ctx context.Context, order *models.Order) error {
	if order == nil {
		return fmt.Errorf("order required")
	}
	ctx = m.logg.WithFields(ctx, map[string]any{
		"order_id": order.ID.String(),
		"to":       order.Email,
		"from":     m.cfg.FromAddress,
		"template": "awaiting_payment",
	})
	m.logg.Info(ctx, fmt.Sprintf("awaiting-payment mail for %s (%d cents due)",
		order.Name, order.AmountTotalCents))
	return nil
}
