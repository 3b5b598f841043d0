// Package processor talks to the external payment processor: creating
// payment intents and verifying webhook signatures.
package processor

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/nikolayk812/checkoutpay/internal/domain"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

type StripeConfig struct {
	SecretKey string
	// APIURL overrides the processor base URL, e.g. for a local mock.
	APIURL  string
	Timeout time.Duration
}

type StripeProcessor struct {
	api     *client.API
	timeout time.Duration
}

func NewStripe(cfg StripeConfig) *StripeProcessor {
	httpClient := &http.Client{
		Timeout:   cfg.Timeout,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}

	backendConfig := func() *stripe.BackendConfig {
		c := &stripe.BackendConfig{
			HTTPClient:        httpClient,
			MaxNetworkRetries: stripe.Int64(0),
			LeveledLogger:     &stripe.LeveledLogger{Level: stripe.LevelNull},
		}
		if cfg.APIURL != "" {
			c.URL = stripe.String(cfg.APIURL)
		}
		return c
	}

	api := &client.API{}
	api.Init(cfg.SecretKey, &stripe.Backends{
		API:     stripe.GetBackendWithConfig(stripe.APIBackend, backendConfig()),
		Connect: stripe.GetBackendWithConfig(stripe.ConnectBackend, backendConfig()),
		Uploads: stripe.GetBackendWithConfig(stripe.UploadsBackend, backendConfig()),
	})

	return &StripeProcessor{api: api, timeout: cfg.Timeout}
}

// CreatePaymentIntent makes exactly one call to the processor. Every failure,
// including the timeout, is reported as domain.ErrUpstream.
func (p *StripeProcessor) CreatePaymentIntent(ctx context.Context, req domain.IntentRequest) (domain.IntentHandle, error) {
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(req.AmountMinorUnits),
		Currency: stripe.String(strings.ToLower(req.Currency.String())),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.Context = ctx

	for k, v := range req.Order.Metadata() {
		params.AddMetadata(k, v)
	}

	if req.IdempotencyKey != "" {
		params.SetIdempotencyKey(req.IdempotencyKey)
	}

	pi, err := p.api.PaymentIntents.New(params)
	if err != nil {
		return domain.IntentHandle{}, fmt.Errorf("%w: PaymentIntents.New: %w", domain.ErrUpstream, err)
	}

	return domain.IntentHandle{
		ID:           pi.ID,
		ClientSecret: pi.ClientSecret,
		Status:       string(pi.Status),
	}, nil
}
