package processor

import (
	"fmt"
	"time"

	"github.com/nikolayk812/checkoutpay/internal/domain"
	"github.com/stripe/stripe-go/v76/webhook"
)

const DefaultWebhookTolerance = 5 * time.Minute

// Verifier checks the "t=<unix>,v1=<hex>" signature header: an HMAC-SHA256
// of "<t>.<payload>" under the endpoint secret, with t inside the tolerance.
type Verifier struct {
	secret    string
	tolerance time.Duration
}

func NewVerifier(secret string, tolerance time.Duration) *Verifier {
	if tolerance <= 0 {
		tolerance = DefaultWebhookTolerance
	}
	return &Verifier{secret: secret, tolerance: tolerance}
}

func (v *Verifier) Verify(payload []byte, header string) error {
	if v.secret == "" {
		return fmt.Errorf("%w: webhook secret is not configured", domain.ErrAuthentication)
	}

	if header == "" {
		return fmt.Errorf("%w: signature header is missing", domain.ErrAuthentication)
	}

	if err := webhook.ValidatePayloadWithTolerance(payload, header, v.secret, v.tolerance); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrAuthentication, err)
	}

	return nil
}
