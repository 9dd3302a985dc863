package permit

import (
	"github.com/pitabwire/util"

	"github.com/permitio/permit-go/client"
	"github.com/permitio/permit-go/config"
	"github.com/permitio/permit-go/futures"
)

// clientSettings accumulates construction options before the configuration is
// finalized.
type clientSettings struct {
	cfg        *config.Config
	token      string
	apiURL     string
	pdpURL     string
	log        *util.LogEntry
	invoker    client.Manager
	httpOpts   []client.HTTPOption
	runnerOpts []futures.Option
}

// applyTo overlays the field-level options onto cfg; explicit options always
// win over environment and file values.
func (s *clientSettings) applyTo(cfg *config.Config) {
	if s.token != "" {
		cfg.Token = s.token
	}
	if s.apiURL != "" {
		cfg.APIURL = s.apiURL
	}
	if s.pdpURL != "" {
		cfg.PDPURL = s.pdpURL
	}
}

// Option configures a Client during New.
type Option func(*clientSettings)

// WithConfig supplies a complete configuration, skipping the environment
// lookup. Field options such as WithToken still override it.
func WithConfig(cfg *config.Config) Option {
	return func(s *clientSettings) {
		s.cfg = cfg
	}
}

// WithToken sets the API key.
func WithToken(token string) Option {
	return func(s *clientSettings) {
		s.token = token
	}
}

// WithAPIURL points the client at a control plane other than the default
// cloud endpoint.
func WithAPIURL(apiURL string) Option {
	return func(s *clientSettings) {
		s.apiURL = apiURL
	}
}

// WithPDPURL points the enforcement client at a PDP other than the default
// localhost sidecar.
func WithPDPURL(pdpURL string) Option {
	return func(s *clientSettings) {
		s.pdpURL = pdpURL
	}
}

// WithLogger replaces the logger built from configuration.
func WithLogger(log *util.LogEntry) Option {
	return func(s *clientSettings) {
		s.log = log
	}
}

// WithInvoker replaces the HTTP invoker, mainly for tests.
func WithInvoker(invoker client.Manager) Option {
	return func(s *clientSettings) {
		s.invoker = invoker
	}
}

// WithHTTPOptions forwards options to the underlying HTTP client, such as
// timeouts, transports or an opt-in retry policy.
func WithHTTPOptions(opts ...client.HTTPOption) Option {
	return func(s *clientSettings) {
		s.httpOpts = append(s.httpOpts, opts...)
	}
}

// WithWorkerPoolOptions forwards options to the worker pool backing the
// async API surface.
func WithWorkerPoolOptions(opts ...futures.Option) Option {
	return func(s *clientSettings) {
		s.runnerOpts = append(s.runnerOpts, opts...)
	}
}
