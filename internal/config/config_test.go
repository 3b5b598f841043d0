package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/nikolayk812/checkoutpay/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.Equal(t, 30*time.Second, cfg.HTTP.RequestTimeout)
	assert.Equal(t, 10*time.Second, cfg.Processor.Timeout)
	assert.Equal(t, 5*time.Minute, cfg.Processor.WebhookTolerance)
	assert.Equal(t, 72*time.Hour, cfg.Redis.LedgerTTL)
	assert.Equal(t, "payment-state-changed", cfg.Kafka.Topic)
	assert.Equal(t, "usd", cfg.Checkout.Currency)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.True(t, cfg.Processor.Simulated())
}

func TestLoad_FileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "checkout.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
http:
  addr: ":9090"
processor:
  secret_key: sk_test_51Realkey
  timeout: 3s
kafka:
  brokers: ["k1:9092"]
log:
  level: debug
`), 0o600))

	t.Setenv("CHECKOUT_HTTP_ADDR", ":7070")
	t.Setenv("CHECKOUT_PROCESSOR_WEBHOOK_SECRET", "whsec_abc")

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":7070", cfg.HTTP.Addr, "env overrides file")
	assert.Equal(t, 3*time.Second, cfg.Processor.Timeout)
	assert.Equal(t, "whsec_abc", cfg.Processor.WebhookSecret)
	assert.Equal(t, []string{"k1:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.False(t, cfg.Processor.Simulated())
}

func TestLoad_BrokersFromEnv(t *testing.T) {
	t.Setenv("CHECKOUT_KAFKA_BROKERS", "k1:9092, k2:9092")

	cfg, err := config.Load("")
	require.NoError(t, err)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
}

func TestLoad_Invalid(t *testing.T) {
	t.Setenv("CHECKOUT_LOG_FORMAT", "xml")

	_, err := config.Load("")
	require.EqualError(t, err, "cfg.Validate: log.format[xml] must be json or text")
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.ErrorContains(t, err, "v.ReadInConfig")
}

func TestIsPlaceholderSecret(t *testing.T) {
	tests := []struct {
		secret string
		want   bool
	}{
		{secret: "", want: true},
		{secret: "   ", want: true},
		{secret: "sk_test_xxx", want: true},
		{secret: "sk_live_XXXXXXXX", want: true},
		{secret: "changeme", want: true},
		{secret: "<your stripe key>", want: true},
		{secret: "sk_test_placeholder", want: true},
		{secret: "sk_test_51HxYzAbCdEf", want: false},
		{secret: "rk_live_9f8e7d", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.secret, func(t *testing.T) {
			assert.Equal(t, tt.want, config.IsPlaceholderSecret(tt.secret))
		})
	}
}
