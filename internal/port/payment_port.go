package port

import (
	"context"

	"github.com/nikolayk812/checkoutpay/internal/domain"
)

type PaymentProcessor interface {
	CreatePaymentIntent(ctx context.Context, req domain.IntentRequest) (domain.IntentHandle, error)
}

type SignatureVerifier interface {
	Verify(payload []byte, header string) error
}

// EventLedger remembers webhook event IDs that were already reconciled.
type EventLedger interface {
	Seen(ctx context.Context, eventID string) (bool, error)
	Remember(ctx context.Context, eventID string) error
}

type PaymentStatePublisher interface {
	Publish(ctx context.Context, change domain.PaymentStateChanged) error
}
