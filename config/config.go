// Package config holds the SDK configuration surface. Values are sourced
// from the environment, a YAML file, or set directly by client options; the
// per-concern interfaces let components depend only on the slice of
// configuration they consume.
package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

type contextKey string

func (c contextKey) String() string {
	return "permit/config/" + string(c)
}

const ctxKeyConfiguration = contextKey("configurationKey")

const (
	// DefaultAPIURL is the Permit cloud control plane.
	DefaultAPIURL = "https://api.permit.io"
	// DefaultPDPURL is the policy decision point sidecar on its default port.
	DefaultPDPURL = "http://localhost:7000"
	// DefaultTenantKey is the tenant used when multi-tenancy auto-fill is on
	// and a checked resource names no tenant.
	DefaultTenantKey = "default"
)

// ErrMissingToken indicates the client was constructed without an API key.
var ErrMissingToken = errors.New("permit: an api key is required, set PERMIT_API_KEY or use WithToken")

// ToContext adds SDK configuration to the supplied context.
func ToContext(ctx context.Context, cfg any) context.Context {
	return context.WithValue(ctx, ctxKeyConfiguration, cfg)
}

// FromContext extracts SDK configuration from the supplied context if any
// exists.
func FromContext[T any](ctx context.Context) T {
	if cfg, ok := ctx.Value(ctxKeyConfiguration).(T); ok {
		return cfg
	}
	var zero T
	return zero
}

// FromEnv convenience method to process configs.
func FromEnv[T any]() (T, error) {
	return env.ParseAs[T]()
}

// FillEnv convenience method to fill a config object with environment data.
func FillEnv(v any) error {
	return env.Parse(v)
}

// FromFile loads configuration from a YAML file. Environment variables and
// defaults fill in first; values the file names override them, the same way
// explicit client options override the environment.
func FromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file %q: %w", path, err)
	}

	cfg := &Config{}
	if err = FillEnv(cfg); err != nil {
		return nil, err
	}

	if err = yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("decoding config file %q: %w", path, err)
	}
	return cfg, nil
}

// Config is the full configuration surface consumed by the SDK.
type Config struct {
	Token  string `env:"PERMIT_API_KEY" yaml:"token"`
	APIURL string `env:"PERMIT_API_URL" yaml:"api_url" envDefault:"https://api.permit.io"`
	PDPURL string `env:"PERMIT_PDP_URL" yaml:"pdp_url" envDefault:"http://localhost:7000"`

	APITimeout time.Duration `env:"PERMIT_API_TIMEOUT" yaml:"api_timeout" envDefault:"30s"`
	PDPTimeout time.Duration `env:"PERMIT_PDP_TIMEOUT" yaml:"pdp_timeout" envDefault:"10s"`

	LogLevel      string `env:"PERMIT_LOG_LEVEL"       yaml:"log_level"       envDefault:"info"`
	LogTimeFormat string `env:"PERMIT_LOG_TIME_FORMAT" yaml:"log_time_format" envDefault:"2006-01-02T15:04:05Z07:00"`
	LogColored    bool   `env:"PERMIT_LOG_COLORED"     yaml:"log_colored"     envDefault:"false"`

	TraceRequests        bool `env:"PERMIT_TRACE_REQUESTS"          yaml:"trace_requests"          envDefault:"false"`
	TraceRequestsLogBody bool `env:"PERMIT_TRACE_REQUESTS_LOG_BODY" yaml:"trace_requests_log_body" envDefault:"false"`

	MultiTenancyDefaultTenant  string `env:"PERMIT_DEFAULT_TENANT"     yaml:"default_tenant"              envDefault:"default"`
	MultiTenancyAutoFillTenant bool   `env:"PERMIT_USE_DEFAULT_TENANT" yaml:"use_default_tenant_if_empty" envDefault:"true"`
}

// Defaults returns a configuration with every default applied and no token.
func Defaults() *Config {
	return &Config{
		APIURL:                     DefaultAPIURL,
		PDPURL:                     DefaultPDPURL,
		APITimeout:                 30 * time.Second,
		PDPTimeout:                 10 * time.Second,
		LogLevel:                   "info",
		LogTimeFormat:              time.RFC3339,
		MultiTenancyDefaultTenant:  DefaultTenantKey,
		MultiTenancyAutoFillTenant: true,
	}
}

// Validate confirms the configuration is usable.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Token) == "" {
		return ErrMissingToken
	}
	if strings.TrimSpace(c.APIURL) == "" {
		return errors.New("permit: api url may not be empty")
	}
	if strings.TrimSpace(c.PDPURL) == "" {
		return errors.New("permit: pdp url may not be empty")
	}
	return nil
}

type ConfigurationAPI interface {
	GetToken() string
	GetAPIURL() string
	GetAPITimeout() time.Duration
}

var _ ConfigurationAPI = new(Config)

func (c *Config) GetToken() string {
	return c.Token
}

func (c *Config) GetAPIURL() string {
	return strings.TrimRight(c.APIURL, "/")
}

func (c *Config) GetAPITimeout() time.Duration {
	if c.APITimeout <= 0 {
		return 30 * time.Second
	}
	return c.APITimeout
}

type ConfigurationPDP interface {
	GetPDPURL() string
	GetPDPTimeout() time.Duration
}

var _ ConfigurationPDP = new(Config)

func (c *Config) GetPDPURL() string {
	return strings.TrimRight(c.PDPURL, "/")
}

func (c *Config) GetPDPTimeout() time.Duration {
	if c.PDPTimeout <= 0 {
		return 10 * time.Second
	}
	return c.PDPTimeout
}

type ConfigurationLogLevel interface {
	LoggingLevel() string
	LoggingTimeFormat() string
	LoggingColored() bool
}

var _ ConfigurationLogLevel = new(Config)

func (c *Config) LoggingLevel() string {
	return c.LogLevel
}

func (c *Config) LoggingTimeFormat() string {
	return c.LogTimeFormat
}

func (c *Config) LoggingColored() bool {
	return c.LogColored
}

type ConfigurationTraceRequests interface {
	TraceReq() bool
	TraceReqLogBody() bool
}

var _ ConfigurationTraceRequests = new(Config)

func (c *Config) TraceReq() bool {
	return c.TraceRequests
}

func (c *Config) TraceReqLogBody() bool {
	return c.TraceRequestsLogBody
}

type ConfigurationMultiTenancy interface {
	DefaultTenant() string
	UseDefaultTenantIfEmpty() bool
}

var _ ConfigurationMultiTenancy = new(Config)

func (c *Config) DefaultTenant() string {
	if strings.TrimSpace(c.MultiTenancyDefaultTenant) == "" {
		return DefaultTenantKey
	}
	return c.MultiTenancyDefaultTenant
}

func (c *Config) UseDefaultTenantIfEmpty() bool {
	return c.MultiTenancyAutoFillTenant
}
