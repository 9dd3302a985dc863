package client

import (
	"context"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/oauth2/clientcredentials"
)

const (
	defaultHTTPTimeoutSeconds     = 30
	defaultHTTPIdleTimeoutSeconds = 90

	// defaultMaxRetryAttempts is deliberately 1: the SDK never retries on
	// its own, callers opt in with WithHTTPRetryPolicy.
	defaultMaxRetryAttempts = 1
)

// RetryPolicy controls how many attempts a request makes and how long to
// back off between them. The default policy makes a single attempt.
type RetryPolicy struct {
	MaxAttempts int
	Backoff     func(attempt int) time.Duration
}

// HTTPOption configures HTTP client behavior.
// It can be used to configure timeout, transport, and other HTTP client settings.
type HTTPOption func(*httpConfig)

// httpConfig holds HTTP client configuration.
type httpConfig struct {
	timeout       time.Duration
	transport     http.RoundTripper
	jar           http.CookieJar
	checkRedirect func(req *http.Request, via []*http.Request) error
	idleTimeout   time.Duration
	cliCredCfg    *clientcredentials.Config
	retryPolicy   *RetryPolicy
	maxBodyLen    int64

	traceRequests       bool
	traceRequestHeaders bool
	traceRequestBody    bool
}

func (c *httpConfig) process(opts ...HTTPOption) {
	for _, opt := range opts {
		opt(c)
	}

	if c.retryPolicy == nil {
		c.retryPolicy = &RetryPolicy{
			MaxAttempts: defaultMaxRetryAttempts,
			Backoff: func(attempt int) time.Duration {
				return time.Duration(attempt) * 100 * time.Millisecond
			},
		}
	}
}

// WithHTTPTimeout sets the request timeout.
func WithHTTPTimeout(timeout time.Duration) HTTPOption {
	return func(c *httpConfig) {
		c.timeout = timeout
	}
}

// WithHTTPTransport sets the HTTP transport.
func WithHTTPTransport(transport http.RoundTripper) HTTPOption {
	return func(c *httpConfig) {
		c.transport = transport
	}
}

// WithHTTPCookieJar sets the cookie jar.
func WithHTTPCookieJar(jar http.CookieJar) HTTPOption {
	return func(c *httpConfig) {
		c.jar = jar
	}
}

// WithHTTPCheckRedirect sets the redirect policy.
func WithHTTPCheckRedirect(checkRedirect func(req *http.Request, via []*http.Request) error) HTTPOption {
	return func(c *httpConfig) {
		c.checkRedirect = checkRedirect
	}
}

// WithHTTPIdleTimeout sets the idle timeout.
func WithHTTPIdleTimeout(timeout time.Duration) HTTPOption {
	return func(c *httpConfig) {
		c.idleTimeout = timeout
	}
}

// WithHTTPClientCredentials authenticates outgoing requests with an OAuth2
// client-credentials flow instead of a static bearer token.
func WithHTTPClientCredentials(cfg *clientcredentials.Config) HTTPOption {
	return func(c *httpConfig) {
		c.cliCredCfg = cfg
	}
}

// WithHTTPRetryPolicy opts in to retrying transient failures. Absent this
// option every request is attempted exactly once.
func WithHTTPRetryPolicy(retry *RetryPolicy) HTTPOption {
	return func(c *httpConfig) {
		c.retryPolicy = retry
	}
}

// WithHTTPMaxResponseBody caps how many bytes of a response body are buffered.
func WithHTTPMaxResponseBody(limit int64) HTTPOption {
	return func(c *httpConfig) {
		c.maxBodyLen = limit
	}
}

// WithHTTPTraceRequests enables request and response logging.
func WithHTTPTraceRequests() HTTPOption {
	return func(c *httpConfig) {
		c.traceRequests = true
	}
}

// WithHTTPTraceRequestHeaders enables header logging.
func WithHTTPTraceRequestHeaders() HTTPOption {
	return func(c *httpConfig) {
		c.traceRequestHeaders = true
	}
}

// WithHTTPTraceRequestBody enables body logging.
func WithHTTPTraceRequestBody() HTTPOption {
	return func(c *httpConfig) {
		c.traceRequestBody = true
	}
}

// NewHTTPClient creates a new HTTP client with the provided options.
// If no transport is specified, it defaults to otelhttp.NewTransport(http.DefaultTransport).
func NewHTTPClient(ctx context.Context, opts ...HTTPOption) *http.Client {
	cfg := &httpConfig{
		timeout:     time.Duration(defaultHTTPTimeoutSeconds) * time.Second,
		idleTimeout: time.Duration(defaultHTTPIdleTimeoutSeconds) * time.Second,
		transport:   otelhttp.NewTransport(http.DefaultTransport),
	}
	cfg.process(opts...)

	if cfg.traceRequests {
		cfg.transport = NewLoggingTransport(cfg.transport,
			WithTransportLogRequests(true),
			WithTransportLogResponses(true),
			WithTransportLogHeaders(cfg.traceRequestHeaders),
			WithTransportLogBody(cfg.traceRequestBody))
	}

	if cfg.cliCredCfg != nil {
		cc := cfg.cliCredCfg.Client(ctx)
		cc.Timeout = cfg.timeout
		cc.Jar = cfg.jar
		cc.CheckRedirect = cfg.checkRedirect
		return cc
	}

	client := &http.Client{
		Transport:     cfg.transport,
		Timeout:       cfg.timeout,
		Jar:           cfg.jar,
		CheckRedirect: cfg.checkRedirect,
	}

	if cfg.idleTimeout > 0 {
		if t, ok := client.Transport.(*http.Transport); ok {
			t.IdleConnTimeout = cfg.idleTimeout
		}
	}

	return client
}
