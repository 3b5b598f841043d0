package publisher

import (
	"context"
	"log/slog"

	"github.com/nikolayk812/checkoutpay/internal/domain"
)

// LogPublisher is used when no broker is configured.
type LogPublisher struct {
	logger *slog.Logger
}

func NewLog(logger *slog.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

func (p *LogPublisher) Publish(ctx context.Context, change domain.PaymentStateChanged) error {
	p.logger.InfoContext(ctx, "payment state changed",
		"order_id", change.OrderID,
		"from", change.From,
		"to", change.To,
		"event_id", change.EventID,
		"payment_intent_id", change.IntentID)
	return nil
}
