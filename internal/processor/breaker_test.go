package processor_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/nikolayk812/checkoutpay/internal/domain"
	"github.com/nikolayk812/checkoutpay/internal/processor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v76"
)

type scriptedProcessor struct {
	calls int
	err   error
}

func (p *scriptedProcessor) CreatePaymentIntent(_ context.Context, _ domain.IntentRequest) (domain.IntentHandle, error) {
	p.calls++
	if p.err != nil {
		return domain.IntentHandle{}, p.err
	}
	return domain.IntentHandle{ID: "pi_ok"}, nil
}

func TestBreaker_OpensAfterConsecutiveFailures(t *testing.T) {
	next := &scriptedProcessor{err: errors.Join(domain.ErrUpstream, errors.New("connection refused"))}
	b := processor.NewBreaker(next, processor.BreakerConfig{ConsecutiveFailures: 3, OpenTimeout: time.Hour}, discardLogger())

	for range 3 {
		_, err := b.CreatePaymentIntent(t.Context(), validRequest())
		require.ErrorIs(t, err, domain.ErrUpstream)
	}
	require.Equal(t, 3, next.calls)

	_, err := b.CreatePaymentIntent(t.Context(), validRequest())
	require.ErrorIs(t, err, domain.ErrUpstream)
	assert.Equal(t, 3, next.calls, "open breaker must not call the processor")
}

func TestBreaker_RejectionsDoNotTrip(t *testing.T) {
	declined := &stripe.Error{HTTPStatusCode: 402, Type: stripe.ErrorTypeCard, Msg: "declined"}
	next := &scriptedProcessor{err: errors.Join(domain.ErrUpstream, declined)}
	b := processor.NewBreaker(next, processor.BreakerConfig{ConsecutiveFailures: 2, OpenTimeout: time.Hour}, discardLogger())

	for range 5 {
		_, err := b.CreatePaymentIntent(t.Context(), validRequest())
		require.ErrorIs(t, err, domain.ErrUpstream)
	}
	assert.Equal(t, 5, next.calls)

	next.err = nil
	handle, err := b.CreatePaymentIntent(t.Context(), validRequest())
	require.NoError(t, err)
	assert.Equal(t, "pi_ok", handle.ID)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
