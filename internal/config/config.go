package config

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const envPrefix = "CHECKOUT"

type Config struct {
	HTTP      HTTPConfig      `mapstructure:"http"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Kafka     KafkaConfig     `mapstructure:"kafka"`
	Processor ProcessorConfig `mapstructure:"processor"`
	Checkout  CheckoutConfig  `mapstructure:"checkout"`
	Catalog   CatalogConfig   `mapstructure:"catalog"`
	Cart      CartConfig      `mapstructure:"cart"`
	Log       LogConfig       `mapstructure:"log"`
	OTel      OTelConfig      `mapstructure:"otel"`
}

type HTTPConfig struct {
	Addr            string        `mapstructure:"addr"`
	RequestTimeout  time.Duration `mapstructure:"request_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type DatabaseConfig struct {
	URL string `mapstructure:"url"`
}

type RedisConfig struct {
	Addr        string        `mapstructure:"addr"`
	SnapshotTTL time.Duration `mapstructure:"snapshot_ttl"`
	LedgerTTL   time.Duration `mapstructure:"ledger_ttl"`
}

type KafkaConfig struct {
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
}

type ProcessorConfig struct {
	SecretKey        string        `mapstructure:"secret_key"`
	WebhookSecret    string        `mapstructure:"webhook_secret"`
	APIURL           string        `mapstructure:"api_url"`
	Timeout          time.Duration `mapstructure:"timeout"`
	WebhookTolerance time.Duration `mapstructure:"webhook_tolerance"`
}

// Simulated reports whether payment intents should be faked locally.
func (p ProcessorConfig) Simulated() bool {
	return IsPlaceholderSecret(p.SecretKey)
}

type CheckoutConfig struct {
	Currency string `mapstructure:"currency"`
}

type CatalogConfig struct {
	File string `mapstructure:"file"`
}

type CartConfig struct {
	StateDir string `mapstructure:"state_dir"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type OTelConfig struct {
	Endpoint    string `mapstructure:"endpoint"`
	ServiceName string `mapstructure:"service_name"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("http.addr", ":8080")
	v.SetDefault("http.request_timeout", 30*time.Second)
	v.SetDefault("http.shutdown_timeout", 10*time.Second)
	v.SetDefault("database.url", "")
	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.snapshot_ttl", 720*time.Hour)
	v.SetDefault("redis.ledger_ttl", 72*time.Hour)
	v.SetDefault("kafka.brokers", []string{})
	v.SetDefault("kafka.topic", "payment-state-changed")
	v.SetDefault("processor.secret_key", "")
	v.SetDefault("processor.webhook_secret", "")
	v.SetDefault("processor.api_url", "")
	v.SetDefault("processor.timeout", 10*time.Second)
	v.SetDefault("processor.webhook_tolerance", 5*time.Minute)
	v.SetDefault("checkout.currency", "usd")
	v.SetDefault("catalog.file", "")
	v.SetDefault("cart.state_dir", ".checkout/carts")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("otel.endpoint", "")
	v.SetDefault("otel.service_name", "checkout")
}

// Load reads defaults, then the optional YAML file at path, then CHECKOUT_* environment variables.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")

		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("v.ReadInConfig: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("v.Unmarshal: %w", err)
	}

	// a comma separated env value arrives with spaces kept
	cfg.Kafka.Brokers = splitList(strings.Join(cfg.Kafka.Brokers, ","))

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("cfg.Validate: %w", err)
	}

	return &cfg, nil
}

func (c Config) Validate() error {
	var errs []error

	if c.HTTP.Addr == "" {
		errs = append(errs, errors.New("http.addr is empty"))
	}
	if c.HTTP.RequestTimeout <= 0 {
		errs = append(errs, errors.New("http.request_timeout must be positive"))
	}
	if c.Processor.Timeout <= 0 {
		errs = append(errs, errors.New("processor.timeout must be positive"))
	}
	if c.Processor.WebhookTolerance <= 0 {
		errs = append(errs, errors.New("processor.webhook_tolerance must be positive"))
	}
	if c.Checkout.Currency == "" {
		errs = append(errs, errors.New("checkout.currency is empty"))
	}
	if len(c.Kafka.Brokers) > 0 && c.Kafka.Topic == "" {
		errs = append(errs, errors.New("kafka.topic is empty"))
	}

	switch c.Log.Format {
	case "json", "text":
	default:
		errs = append(errs, fmt.Errorf("log.format[%s] must be json or text", c.Log.Format))
	}

	return errors.Join(errs...)
}

var placeholderKey = regexp.MustCompile(`^(sk|rk|whsec)_(test|live)?_?x+$`)

// IsPlaceholderSecret recognizes empty keys and the dummy values found in
// sample configs, e.g. "sk_test_xxx" or "changeme".
func IsPlaceholderSecret(secret string) bool {
	s := strings.ToLower(strings.TrimSpace(secret))
	if s == "" {
		return true
	}

	for _, marker := range []string{"placeholder", "changeme", "change_me", "replace_me", "your_", "<"} {
		if strings.Contains(s, marker) {
			return true
		}
	}

	return placeholderKey.MatchString(s)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
