package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	ProviderGarex   = "garex"
	ProviderPaygate = "paygate"
)

// MaxMethodCandidates bounds how many provider methods one create may try.
// Every attempt gets the full provider timeout, so a create can run for
// MaxMethodCandidates provider timeouts before it answers.
const MaxMethodCandidates = 2

// createMargin covers request decoding, locking and response writing around
// the provider attempts.
const createMargin = 5 * time.Second

type Config struct {
	Server              ServerConfig        `mapstructure:"server"`
	Auth                AuthConfig          `mapstructure:"auth"`
	Providers           ProvidersConfig     `mapstructure:"providers"`
	Webhook             WebhookConfig       `mapstructure:"webhook"`
	Redis               RedisConfig         `mapstructure:"redis"`
	Observability       ObservabilityConfig `mapstructure:"observability"`
	SupportedCurrencies []string            `mapstructure:"supported_currencies"`
	InstanceID          string              `mapstructure:"instance_id"`
}

type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	RequestTimeout  time.Duration `mapstructure:"request_timeout"`
	CORS            CORSConfig    `mapstructure:"cors"`
}

type CORSConfig struct {
	AllowedOrigins   []string `mapstructure:"allowed_origins"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
}

type AuthConfig struct {
	MerchantToken string `mapstructure:"merchant_token"`
}

type ProvidersConfig struct {
	Active  string         `mapstructure:"active"`
	Garex   ProviderConfig `mapstructure:"garex"`
	Paygate ProviderConfig `mapstructure:"paygate"`
}

// ProviderConfig describes how to reach one upstream provider.
type ProviderConfig struct {
	Enabled            bool          `mapstructure:"enabled"`
	BaseURL            string        `mapstructure:"base_url"`
	APIKey             string        `mapstructure:"api_key"`
	MerchantID         string        `mapstructure:"merchant_id"`
	CallbackURL        string        `mapstructure:"callback_url"`
	Timeout            time.Duration `mapstructure:"timeout"`
	ConnectTimeout     time.Duration `mapstructure:"connect_timeout"`
	MaxConnections     int           `mapstructure:"max_connections"`
	MaxIdleConnections int           `mapstructure:"max_idle_connections"`
	BreakerMaxFailures uint32        `mapstructure:"breaker_max_failures"`
	BreakerTimeout     time.Duration `mapstructure:"breaker_timeout"`
}

type WebhookConfig struct {
	Enabled            bool          `mapstructure:"enabled"`
	SecretKey          string        `mapstructure:"secret_key"`
	MerchantURL        string        `mapstructure:"merchant_url"`
	DispatchTimeout    time.Duration `mapstructure:"dispatch_timeout"`
	DedupTTL           time.Duration `mapstructure:"dedup_ttl"`
	RateLimitPerMinute int           `mapstructure:"rate_limit_per_minute"`
}

type RedisConfig struct {
	Enabled           bool          `mapstructure:"enabled"`
	Host              string        `mapstructure:"host"`
	Port              int           `mapstructure:"port"`
	DB                int           `mapstructure:"db"`
	Password          string        `mapstructure:"password"`
	ConnectRetries    int           `mapstructure:"connect_retries"`
	ConnectRetryDelay time.Duration `mapstructure:"connect_retry_delay"`
	LockTTL           time.Duration `mapstructure:"lock_ttl"`
}

type ObservabilityConfig struct {
	LogLevel       string `mapstructure:"log_level"`
	JaegerEndpoint string `mapstructure:"jaeger_endpoint"`
	EnableMetrics  bool   `mapstructure:"enable_metrics"`
	EnableTracing  bool   `mapstructure:"enable_tracing"`
}

func Load() (*Config, error) {
	// .env is optional; real environment variables take precedence.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to read .env file: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("PAYGATE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/paygate")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	var errs []error

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port))
	}
	if c.Server.ReadTimeout <= 0 {
		errs = append(errs, fmt.Errorf("server.read_timeout must be positive"))
	}
	if c.Server.WriteTimeout <= 0 {
		errs = append(errs, fmt.Errorf("server.write_timeout must be positive"))
	}
	if budget := c.CreateBudget(); c.Server.RequestTimeout < budget {
		errs = append(errs, fmt.Errorf("server.request_timeout %s must cover %d provider attempts, at least %s",
			c.Server.RequestTimeout, MaxMethodCandidates, budget))
	}
	if c.Server.WriteTimeout <= c.Server.RequestTimeout {
		errs = append(errs, fmt.Errorf("server.write_timeout %s must exceed server.request_timeout %s",
			c.Server.WriteTimeout, c.Server.RequestTimeout))
	}

	switch c.Providers.Active {
	case ProviderGarex, ProviderPaygate:
		if !c.Providers.Get(c.Providers.Active).Enabled {
			errs = append(errs, fmt.Errorf("providers.active %q is not enabled", c.Providers.Active))
		}
	default:
		errs = append(errs, fmt.Errorf("providers.active must be %q or %q, got %q", ProviderGarex, ProviderPaygate, c.Providers.Active))
	}
	for name, p := range c.Providers.All() {
		if !p.Enabled {
			continue
		}
		if p.BaseURL == "" {
			errs = append(errs, fmt.Errorf("providers.%s.base_url is required", name))
		}
		if p.Timeout <= 0 || p.ConnectTimeout <= 0 {
			errs = append(errs, fmt.Errorf("providers.%s timeouts must be positive", name))
		}
		if p.MaxConnections <= 0 {
			errs = append(errs, fmt.Errorf("providers.%s.max_connections must be positive", name))
		}
	}

	if c.Webhook.Enabled && c.Webhook.MerchantURL == "" {
		errs = append(errs, fmt.Errorf("webhook.merchant_url is required when webhooks are enabled"))
	}
	if c.Webhook.DispatchTimeout <= 0 {
		errs = append(errs, fmt.Errorf("webhook.dispatch_timeout must be positive"))
	}
	if len(c.SupportedCurrencies) == 0 {
		errs = append(errs, fmt.Errorf("supported_currencies must not be empty"))
	}

	if c.Redis.Enabled {
		if c.Redis.Port <= 0 {
			errs = append(errs, fmt.Errorf("redis.port must be positive"))
		}
		if c.Redis.LockTTL <= 0 {
			errs = append(errs, fmt.Errorf("redis.lock_ttl must be positive"))
		} else if c.Redis.LockTTL <= c.Server.RequestTimeout {
			errs = append(errs, fmt.Errorf("redis.lock_ttl %s must exceed server.request_timeout %s",
				c.Redis.LockTTL, c.Server.RequestTimeout))
		}
	}

	env := os.Getenv("ENV")
	if env == "production" || env == "prod" {
		if c.Auth.MerchantToken == "" {
			errs = append(errs, fmt.Errorf("auth.merchant_token required in production"))
		}
		if c.Webhook.Enabled && c.Webhook.SecretKey == "" {
			errs = append(errs, fmt.Errorf("webhook.secret_key required in production"))
		}
	}

	return errors.Join(errs...)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "75s")
	v.SetDefault("server.idle_timeout", "120s")
	v.SetDefault("server.shutdown_timeout", "30s")
	v.SetDefault("server.request_timeout", "70s")
	v.SetDefault("server.cors.allowed_origins", []string{"*"})
	v.SetDefault("server.cors.allow_credentials", false)

	v.SetDefault("auth.merchant_token", "")

	v.SetDefault("providers.active", ProviderGarex)
	for _, name := range []string{ProviderGarex, ProviderPaygate} {
		prefix := "providers." + name + "."
		v.SetDefault(prefix+"enabled", name == ProviderGarex)
		v.SetDefault(prefix+"base_url", "")
		v.SetDefault(prefix+"api_key", "")
		v.SetDefault(prefix+"merchant_id", "")
		v.SetDefault(prefix+"callback_url", "")
		v.SetDefault(prefix+"timeout", "30s")
		v.SetDefault(prefix+"connect_timeout", "5s")
		v.SetDefault(prefix+"max_connections", 100)
		v.SetDefault(prefix+"max_idle_connections", 20)
		v.SetDefault(prefix+"breaker_max_failures", 10)
		v.SetDefault(prefix+"breaker_timeout", "30s")
	}

	v.SetDefault("webhook.enabled", true)
	v.SetDefault("webhook.secret_key", "")
	v.SetDefault("webhook.merchant_url", "")
	v.SetDefault("webhook.dispatch_timeout", "10s")
	v.SetDefault("webhook.dedup_ttl", "24h")
	v.SetDefault("webhook.rate_limit_per_minute", 600)

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.connect_retries", 5)
	v.SetDefault("redis.connect_retry_delay", "1s")
	v.SetDefault("redis.lock_ttl", "90s")

	v.SetDefault("observability.log_level", "info")
	v.SetDefault("observability.jaeger_endpoint", "http://localhost:14268/api/traces")
	v.SetDefault("observability.enable_metrics", true)
	v.SetDefault("observability.enable_tracing", false)

	v.SetDefault("supported_currencies", []string{"RUB"})
	v.SetDefault("instance_id", "paygate-1")
}

// Get returns the settings of the named provider.
func (p *ProvidersConfig) Get(name string) ProviderConfig {
	switch name {
	case ProviderGarex:
		return p.Garex
	case ProviderPaygate:
		return p.Paygate
	default:
		return ProviderConfig{}
	}
}

// All returns every known provider keyed by name.
func (p *ProvidersConfig) All() map[string]ProviderConfig {
	return map[string]ProviderConfig{
		ProviderGarex:   p.Garex,
		ProviderPaygate: p.Paygate,
	}
}

// CreateBudget is the longest a create may legitimately take: every method
// candidate running to the slowest enabled provider's timeout.
func (c *Config) CreateBudget() time.Duration {
	var slowest time.Duration
	for _, p := range c.Providers.All() {
		if p.Enabled && p.Timeout > slowest {
			slowest = p.Timeout
		}
	}
	return MaxMethodCandidates*slowest + createMargin
}

// SupportsCurrency reports whether code is in the configured currency set.
func (c *Config) SupportsCurrency(code string) bool {
	for _, cur := range c.SupportedCurrencies {
		if cur == code {
			return true
		}
	}
	return false
}

func (c *RedisConfig) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
