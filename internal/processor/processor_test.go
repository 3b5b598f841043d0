package processor_test

import (
	"testing"
	"time"

	"github.com/nikolayk812/checkoutpay/internal/config"
	"github.com/nikolayk812/checkoutpay/internal/domain"
	"github.com/nikolayk812/checkoutpay/internal/processor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_SelectsImplementation(t *testing.T) {
	simulated := processor.New(config.ProcessorConfig{SecretKey: "sk_test_xxx", Timeout: time.Second}, discardLogger())
	assert.IsType(t, &processor.Simulated{}, simulated)

	live := processor.New(config.ProcessorConfig{SecretKey: "sk_test_51HxYz", Timeout: time.Second}, discardLogger())
	assert.IsType(t, &processor.Breaker{}, live)
}

func TestNewWebhookVerifier_PlaceholderSecretRejectsAll(t *testing.T) {
	payload := []byte(`{}`)
	v := processor.NewWebhookVerifier(config.ProcessorConfig{WebhookSecret: "whsec_xxx", WebhookTolerance: time.Minute})

	err := v.Verify(payload, signedHeader(payload, "whsec_xxx", time.Now()))
	require.ErrorIs(t, err, domain.ErrAuthentication)
}
