// Package config loads client and CLI settings from a YAML file and PARTNER_* environment
// variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"

	"github.com/fivetwenty-io/partnercenter/internal/constants"
	"github.com/fivetwenty-io/partnercenter/pkg/partner"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "PARTNER"

// Config represents the CLI configuration.
type Config struct {
	Endpoint string `mapstructure:"endpoint" yaml:"endpoint"`
	Client   string `mapstructure:"client"   yaml:"client,omitempty"`
	Locale   string `mapstructure:"locale"   yaml:"locale,omitempty"`

	Token          string    `mapstructure:"token"            yaml:"token,omitempty"`
	TokenExpiresAt time.Time `mapstructure:"token_expires_at" yaml:"token_expires_at,omitempty"`
	TokenFile      string    `mapstructure:"token_file"       yaml:"token_file,omitempty"`

	OAuth OAuthConfig `mapstructure:"oauth" yaml:"oauth,omitempty"`
	Cache CacheConfig `mapstructure:"cache" yaml:"cache,omitempty"`
	Retry RetryConfig `mapstructure:"retry" yaml:"retry,omitempty"`

	Timeout        time.Duration `mapstructure:"timeout"         yaml:"timeout,omitempty"`
	RateLimit      float64       `mapstructure:"rate_limit"      yaml:"rate_limit,omitempty"`
	RateBurst      int           `mapstructure:"rate_burst"      yaml:"rate_burst,omitempty"`
	BreakerFailure uint32        `mapstructure:"breaker_failure" yaml:"breaker_failure,omitempty"`
	BreakerTimeout time.Duration `mapstructure:"breaker_timeout" yaml:"breaker_timeout,omitempty"`

	Output  string `mapstructure:"output"  yaml:"output"`
	Verbose bool   `mapstructure:"verbose" yaml:"verbose"`
}

// OAuthConfig holds client credentials used to fetch tokens.
type OAuthConfig struct {
	TokenURL     string   `mapstructure:"token_url"     yaml:"token_url,omitempty"`
	ClientID     string   `mapstructure:"client_id"     yaml:"client_id,omitempty"`
	ClientSecret string   `mapstructure:"client_secret" yaml:"client_secret,omitempty"`
	Scopes       []string `mapstructure:"scopes"        yaml:"scopes,omitempty"`
}

// Enabled reports whether client credentials are configured.
func (c OAuthConfig) Enabled() bool {
	return c.TokenURL != "" && c.ClientID != ""
}

// CacheConfig selects where fetched tokens are shared between processes.
type CacheConfig struct {
	RedisAddr  string `mapstructure:"redis_addr"  yaml:"redis_addr,omitempty"`
	NATSURL    string `mapstructure:"nats_url"    yaml:"nats_url,omitempty"`
	NATSBucket string `mapstructure:"nats_bucket" yaml:"nats_bucket,omitempty"`
}

// RetryConfig selects the retry policy.
type RetryConfig struct {
	Policy  string        `mapstructure:"policy"   yaml:"policy,omitempty"`
	BackOff time.Duration `mapstructure:"back_off" yaml:"back_off,omitempty"`
	Max     int           `mapstructure:"max"      yaml:"max"`
}

// setDefaults registers every key so that AutomaticEnv can override it.
func setDefaults(v *viper.Viper) {
	v.SetDefault("endpoint", constants.DefaultEndpoint)
	v.SetDefault("client", constants.DefaultClientName)
	v.SetDefault("locale", partner.DefaultLocale)
	v.SetDefault("token", "")
	v.SetDefault("token_expires_at", "")
	v.SetDefault("token_file", "")
	v.SetDefault("oauth.token_url", "")
	v.SetDefault("oauth.client_id", "")
	v.SetDefault("oauth.client_secret", "")
	v.SetDefault("oauth.scopes", []string{})
	v.SetDefault("cache.redis_addr", "")
	v.SetDefault("cache.nats_url", "")
	v.SetDefault("cache.nats_bucket", "partnercenter-tokens")
	v.SetDefault("retry.policy", partner.RetryPolicyExponential)
	v.SetDefault("retry.back_off", constants.DefaultLinearBackOff)
	v.SetDefault("retry.max", constants.DefaultRetryMax)
	v.SetDefault("timeout", constants.DefaultHTTPTimeout)
	v.SetDefault("rate_limit", 0)
	v.SetDefault("rate_burst", constants.DefaultRateBurst)
	v.SetDefault("breaker_failure", 0)
	v.SetDefault("breaker_timeout", constants.CircuitBreakerTimeout)
	v.SetDefault("output", constants.FormatTable)
	v.SetDefault("verbose", false)
}

// Dir returns the configuration directory, creating it when missing.
func Dir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locating config directory: %w", err)
	}

	dir := filepath.Join(base, constants.ConfigDirName)

	err = os.MkdirAll(dir, constants.ConfigDirPerm)
	if err != nil {
		return "", fmt.Errorf("creating config directory: %w", err)
	}

	return dir, nil
}

// Load reads configuration into v. An explicit path must exist; without one, config.yml in Dir
// is read when present. Environment variables such as PARTNER_ENDPOINT or PARTNER_RETRY_MAX
// override file values.
func Load(v *viper.Viper, path string) (*Config, error) {
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		dir, err := Dir()
		if err == nil {
			v.AddConfigPath(dir)
		}

		v.SetConfigName("config")
		v.SetConfigType("yml")
	}

	err := v.ReadInConfig()
	if err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config

	err = v.Unmarshal(&cfg, viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
		stringToTimeHook,
	)))
	if err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}

	err = cfg.Validate()
	if err != nil {
		return nil, err
	}

	return &cfg, nil
}

// stringToTimeHook decodes RFC 3339 timestamps. An empty string is the zero time.
func stringToTimeHook(from, to reflect.Type, data interface{}) (interface{}, error) {
	if from.Kind() != reflect.String || to != reflect.TypeOf(time.Time{}) {
		return data, nil
	}

	text := strings.TrimSpace(fmt.Sprint(data))
	if text == "" {
		return time.Time{}, nil
	}

	return time.Parse(time.RFC3339, text)
}

// Validate checks values that cannot be fixed by defaults.
func (c *Config) Validate() error {
	switch c.Output {
	case constants.FormatTable, constants.FormatJSON, constants.FormatYAML:
	default:
		return fmt.Errorf("%w: %q", constants.ErrInvalidOutputFormat, c.Output)
	}

	if c.RateLimit < 0 {
		return constants.ErrInvalidRateLimit
	}

	if c.Retry.Max < 0 {
		return fmt.Errorf("%w: %d", partner.ErrNegativeMaxRetries, c.Retry.Max)
	}

	return nil
}

// PartnerConfig converts the settings into a client configuration. Refresh handlers are left
// to the caller.
func (c *Config) PartnerConfig(logger partner.Logger) *partner.Config {
	return &partner.Config{
		Endpoint:            c.Endpoint,
		PartnerCenterClient: c.Client,
		Locale:              c.Locale,
		AccessToken:         c.Token,
		TokenExpiresAt:      c.TokenExpiresAt,
		ExpiryBuffer:        constants.TokenExpirationBuffer,
		RetryKind:           c.Retry.Policy,
		RetryBackOff:        c.Retry.BackOff,
		RetryMax:            c.Retry.Max,
		HTTPTimeout:         c.Timeout,
		RateLimit:           c.RateLimit,
		RateBurst:           c.RateBurst,
		BreakerFailures:     c.BreakerFailure,
		BreakerTimeout:      c.BreakerTimeout,
		Logger:              logger,
		Debug:               c.Verbose,
	}
}
