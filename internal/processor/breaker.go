package processor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/nikolayk812/checkoutpay/internal/domain"
	"github.com/nikolayk812/checkoutpay/internal/port"
	"github.com/sony/gobreaker/v2"
	"github.com/stripe/stripe-go/v76"
)

type BreakerConfig struct {
	// ConsecutiveFailures opens the breaker.
	ConsecutiveFailures uint32
	// OpenTimeout is how long the breaker stays open before a trial call.
	OpenTimeout time.Duration
}

func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{ConsecutiveFailures: 5, OpenTimeout: 30 * time.Second}
}

// Breaker fails fast while the processor keeps failing.
type Breaker struct {
	next port.PaymentProcessor
	cb   *gobreaker.CircuitBreaker[domain.IntentHandle]
}

func NewBreaker(next port.PaymentProcessor, cfg BreakerConfig, logger *slog.Logger) *Breaker {
	settings := gobreaker.Settings{
		Name:        "payment-processor",
		MaxRequests: 1,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.ConsecutiveFailures
		},
		IsSuccessful: func(err error) bool {
			return err == nil || isRejection(err)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed", "name", name, "from", from.String(), "to", to.String())
		},
	}

	return &Breaker{
		next: next,
		cb:   gobreaker.NewCircuitBreaker[domain.IntentHandle](settings),
	}
}

func (b *Breaker) CreatePaymentIntent(ctx context.Context, req domain.IntentRequest) (domain.IntentHandle, error) {
	handle, err := b.cb.Execute(func() (domain.IntentHandle, error) {
		return b.next.CreatePaymentIntent(ctx, req)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return domain.IntentHandle{}, fmt.Errorf("%w: %w", domain.ErrUpstream, err)
	}

	return handle, err
}

// isRejection reports a 4xx answer from the processor: it is alive, it just said no.
func isRejection(err error) bool {
	var stripeErr *stripe.Error
	if !errors.As(err, &stripeErr) {
		return false
	}
	return stripeErr.HTTPStatusCode >= http.StatusBadRequest && stripeErr.HTTPStatusCode < http.StatusInternalServerError
}
