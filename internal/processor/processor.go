package processor

import (
	"log/slog"

	"github.com/nikolayk812/checkoutpay/internal/config"
	"github.com/nikolayk812/checkoutpay/internal/port"
)

// New picks the simulated processor for placeholder credentials and the
// breaker-guarded Stripe client otherwise.
func New(cfg config.ProcessorConfig, logger *slog.Logger) port.PaymentProcessor {
	if cfg.Simulated() {
		logger.Warn("payment processor credentials are absent or placeholders, intents are simulated")
		return NewSimulated()
	}

	stripeProcessor := NewStripe(StripeConfig{
		SecretKey: cfg.SecretKey,
		APIURL:    cfg.APIURL,
		Timeout:   cfg.Timeout,
	})

	return NewBreaker(stripeProcessor, DefaultBreakerConfig(), logger)
}

// NewWebhookVerifier treats a placeholder secret as not configured, so every webhook is rejected.
func NewWebhookVerifier(cfg config.ProcessorConfig) port.SignatureVerifier {
	secret := cfg.WebhookSecret
	if config.IsPlaceholderSecret(secret) {
		secret = ""
	}
	return NewVerifier(secret, cfg.WebhookTolerance)
}
