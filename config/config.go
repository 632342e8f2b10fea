// Package config holds SDK configuration assembled through functional
// options.
package config

import (
	"net/http"
	"time"

	"github.com/kart-io/feishubot/auth"
	"github.com/kart-io/feishubot/errors"
	"github.com/kart-io/feishubot/logger"
)

// DefaultHost is the production Feishu open platform endpoint
const DefaultHost = "https://open.feishu.cn"

// DefaultTokenMargin is subtracted from the reported token lifetime so a
// token is refreshed before the platform rejects it at the edge of expiry
const DefaultTokenMargin = 5 * time.Minute

// Config holds client and dispatcher configuration
type Config struct {
	AppID     string
	AppSecret string
	Host      string
	Timeout   time.Duration

	HTTPClient  *http.Client
	Logger      logger.Interface
	TokenStore  auth.Store
	TokenMargin time.Duration
	Telemetry   *TelemetryConfig
}

// TelemetryConfig configures the optional OpenTelemetry provider
type TelemetryConfig struct {
	Enabled        bool
	ServiceName    string
	ServiceVersion string
	Environment    string
	OTLPEndpoint   string
	OTLPHeaders    map[string]string
	SampleRate     float64
}

// Option defines a configuration option
type Option interface {
	apply(*Config)
}

// optionFunc wraps a function to implement Option
type optionFunc func(*Config)

func (f optionFunc) apply(c *Config) {
	f(c)
}

// New assembles a Config from options and validates it
func New(opts ...Option) (*Config, error) {
	c := &Config{
		Host:        DefaultHost,
		Timeout:     30 * time.Second,
		Logger:      logger.Default,
		TokenMargin: DefaultTokenMargin,
	}
	for _, opt := range opts {
		opt.apply(c)
	}

	if c.AppID == "" || c.AppSecret == "" {
		return nil, errors.ErrMissingCredentials
	}
	if c.TokenStore == nil {
		c.TokenStore = auth.NewMemoryStore()
	}
	if c.HTTPClient == nil {
		c.HTTPClient = &http.Client{Timeout: c.Timeout}
	}

	return c, nil
}

// WithCredentials sets the app id and app secret
func WithCredentials(appID, appSecret string) Option {
	return optionFunc(func(c *Config) {
		c.AppID = appID
		c.AppSecret = appSecret
	})
}

// WithHost overrides the API host (e.g. the Lark international endpoint
// or a test server)
func WithHost(host string) Option {
	return optionFunc(func(c *Config) {
		c.Host = host
	})
}

// WithTimeout sets the HTTP timeout
func WithTimeout(timeout time.Duration) Option {
	return optionFunc(func(c *Config) {
		c.Timeout = timeout
	})
}

// WithHTTPClient supplies a caller-owned HTTP client. The Timeout option
// is ignored for a supplied client.
func WithHTTPClient(client *http.Client) Option {
	return optionFunc(func(c *Config) {
		c.HTTPClient = client
	})
}

// WithLogger sets the logger
func WithLogger(l logger.Interface) Option {
	return optionFunc(func(c *Config) {
		c.Logger = l
	})
}

// WithTokenStore overrides the default in-memory token store
func WithTokenStore(store auth.Store) Option {
	return optionFunc(func(c *Config) {
		c.TokenStore = store
	})
}

// WithTokenMargin sets the refresh safety margin applied to token expiry
func WithTokenMargin(margin time.Duration) Option {
	return optionFunc(func(c *Config) {
		c.TokenMargin = margin
	})
}

// WithTelemetry enables the OpenTelemetry provider
func WithTelemetry(tc *TelemetryConfig) Option {
	return optionFunc(func(c *Config) {
		c.Telemetry = tc
	})
}
