package client

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pitabwire/util"
)

const (
	defaultMaxBodySize = 1024 // Max body size to log (1KB)

	redactedValue = "[redacted]"
)

// sensitiveHeaders are never logged verbatim; the credential scoping the
// whole SDK travels in Authorization.
var sensitiveHeaders = map[string]bool{
	"Authorization":       true,
	"Proxy-Authorization": true,
	"Cookie":              true,
	"Set-Cookie":          true,
}

// LoggingTransportOption configures the logging HTTP transport.
type LoggingTransportOption func(*loggingTransport)

// loggingTransport is an HTTP transport that logs requests and responses.
type loggingTransport struct {
	transport    http.RoundTripper
	logRequests  bool
	logResponses bool
	logHeaders   bool
	logBody      bool
	maxBodySize  int64
}

// NewLoggingTransport creates a new logging HTTP transport.
// By default, it logs requests and responses but not headers or body for security.
func NewLoggingTransport(transport http.RoundTripper, opts ...LoggingTransportOption) http.RoundTripper {
	if transport == nil {
		transport = http.DefaultTransport
	}

	t := &loggingTransport{
		transport:    transport,
		logRequests:  true,
		logResponses: true,
		logHeaders:   false,
		logBody:      false,
		maxBodySize:  defaultMaxBodySize,
	}

	for _, opt := range opts {
		opt(t)
	}

	return t
}

// WithTransportLogRequests enables or disables request logging.
func WithTransportLogRequests(enabled bool) LoggingTransportOption {
	return func(t *loggingTransport) {
		t.logRequests = enabled
	}
}

// WithTransportLogResponses enables or disables response logging.
func WithTransportLogResponses(enabled bool) LoggingTransportOption {
	return func(t *loggingTransport) {
		t.logResponses = enabled
	}
}

// WithTransportLogHeaders enables or disables header logging. Sensitive
// headers are redacted even when enabled.
func WithTransportLogHeaders(enabled bool) LoggingTransportOption {
	return func(t *loggingTransport) {
		t.logHeaders = enabled
	}
}

// WithTransportLogBody enables or disables body logging.
// Note: Be careful when enabling this as bodies may contain sensitive information or be large.
func WithTransportLogBody(enabled bool) LoggingTransportOption {
	return func(t *loggingTransport) {
		t.logBody = enabled
	}
}

// WithTransportMaxBodySize sets the maximum body size to log.
func WithTransportMaxBodySize(size int64) LoggingTransportOption {
	return func(t *loggingTransport) {
		t.maxBodySize = size
	}
}

// RoundTrip implements http.RoundTripper.
func (t *loggingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()
	ctx := req.Context()

	if t.logRequests {
		t.logRequest(ctx, req)
	}

	resp, err := t.transport.RoundTrip(req)

	if t.logResponses {
		duration := time.Since(start)
		t.logResponse(ctx, resp, err, duration)
	}

	return resp, err
}

func headerMap(headers http.Header) map[string]string {
	out := make(map[string]string, len(headers))
	for name, values := range headers {
		if len(values) == 0 {
			continue
		}
		if sensitiveHeaders[http.CanonicalHeaderKey(name)] {
			out[name] = redactedValue
			continue
		}
		out[name] = strings.Join(values, " , ")
	}
	return out
}

func (t *loggingTransport) logRequest(ctx context.Context, req *http.Request) {
	logger := util.Log(ctx).WithFields(map[string]any{
		"method":     req.Method,
		"url":        req.URL.String(),
		"host":       req.Host,
		"request_id": req.Header.Get(HeaderRequestID),
	})

	if t.logHeaders {
		logger = logger.WithField("headers", headerMap(req.Header))
	}

	if t.logBody && req.Body != nil {
		// Read the body to log it
		bodyBytes, err := io.ReadAll(io.LimitReader(req.Body, t.maxBodySize))
		if err == nil && len(bodyBytes) > 0 {
			logger = logger.WithField("body", string(bodyBytes))
			// Restore the body for the actual request
			req.Body = io.NopCloser(bytes.NewReader(bodyBytes))
		}
	}

	logger.Info("HTTP request sent")
}

func (t *loggingTransport) logResponse(ctx context.Context, resp *http.Response, err error, duration time.Duration) {
	logger := util.Log(ctx).WithFields(map[string]any{
		"duration": duration.String(),
	})

	if err != nil {
		logger.WithError(err).Error("HTTP request failed")
		return
	}

	if resp != nil {
		logger = t.logResponseDetails(logger, resp)
	}

	logger.Info("HTTP response received")
}

func (t *loggingTransport) logResponseDetails(logger *util.LogEntry, resp *http.Response) *util.LogEntry {
	logger = logger.WithFields(map[string]any{
		"status":     resp.StatusCode,
		"statusText": http.StatusText(resp.StatusCode),
	})

	if t.logHeaders {
		logger = logger.WithField("headers", headerMap(resp.Header))
	}

	if t.logBody && resp.Body != nil {
		logger = t.logResponseBody(logger, &resp.Body)
	}
	return logger
}

func (t *loggingTransport) logResponseBody(logger *util.LogEntry, body *io.ReadCloser) *util.LogEntry {
	bodyBytes, readErr := io.ReadAll(io.LimitReader(*body, t.maxBodySize))
	if readErr == nil && len(bodyBytes) > 0 {
		logger = logger.WithField("body", string(bodyBytes))
		// Restore the body for the caller
		*body = io.NopCloser(bytes.NewReader(bodyBytes))
	}
	return logger
}

// WrapClient wraps an existing HTTP client with logging transport.
func WrapClient(client *http.Client, opts ...LoggingTransportOption) *http.Client {
	if client == nil {
		client = http.DefaultClient
	}

	transport := NewLoggingTransport(client.Transport, opts...)
	newClient := *client
	newClient.Transport = transport
	return &newClient
}
