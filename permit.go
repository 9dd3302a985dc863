// Package permit is the Go SDK for the Permit.io authorization platform. A
// Client bundles two surfaces: the control plane API for managing policy
// configuration (projects, environments, resources, roles, users, tenants and
// their facts) and an enforcement client that asks the local policy decision
// point whether an action is allowed.
//
// Control plane operations are gated by the scope of the API key the client
// was built with. The scope is fetched lazily on the first scoped call and
// cached for the client's lifetime; operations that need a broader scope than
// the key grants fail with an *api.ContextError naming the corrective call.
package permit

import (
	"context"

	"github.com/pitabwire/util"

	"github.com/permitio/permit-go/api"
	"github.com/permitio/permit-go/client"
	"github.com/permitio/permit-go/config"
	"github.com/permitio/permit-go/enforcement"
	"github.com/permitio/permit-go/futures"
)

// Client is the entry point of the SDK. It is safe for concurrent use; all
// sub-APIs share one API context and one worker pool.
type Client struct {
	cfg     *config.Config
	log     *util.LogEntry
	invoker client.Manager
	runner  *futures.Runner

	// API is the control plane surface.
	API *api.PermitAPI
	// Enforcer answers allow/deny questions against the PDP.
	Enforcer *enforcement.Enforcer
}

// New builds a Client. Configuration is read from the PERMIT_* environment
// variables first, then overridden by options; an API key is mandatory.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	settings := &clientSettings{}
	for _, opt := range opts {
		opt(settings)
	}

	cfg := settings.cfg
	if cfg == nil {
		envCfg, err := config.FromEnv[config.Config]()
		if err != nil {
			return nil, err
		}
		cfg = &envCfg
	}
	settings.applyTo(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	log := settings.log
	if log == nil {
		var logOpts []util.Option
		if level, lErr := util.ParseLevel(cfg.LoggingLevel()); lErr == nil {
			logOpts = append(logOpts, util.WithLogLevel(level))
		}
		logOpts = append(logOpts,
			util.WithLogTimeFormat(cfg.LoggingTimeFormat()),
			util.WithLogNoColor(!cfg.LoggingColored()))
		log = util.NewLogger(ctx, logOpts...)
	}
	log = log.WithField("sdk", "permit")

	httpOpts := settings.httpOpts
	if cfg.TraceReq() {
		httpOpts = append(httpOpts, client.WithHTTPTraceRequests())
		if cfg.TraceReqLogBody() {
			httpOpts = append(httpOpts, client.WithHTTPTraceRequestBody())
		}
	}
	invoker := settings.invoker
	if invoker == nil {
		invoker = client.NewManager(ctx, httpOpts...)
	}

	runner, err := futures.NewRunner(settings.runnerOpts...)
	if err != nil {
		return nil, err
	}

	c := &Client{
		cfg:      cfg,
		log:      log,
		invoker:  invoker,
		runner:   runner,
		API:      api.New(cfg, invoker, runner, log),
		Enforcer: enforcement.NewEnforcer(cfg, invoker, log),
	}

	log.WithContext(ctx).WithFields(map[string]any{
		"api_url": cfg.GetAPIURL(),
		"pdp_url": cfg.GetPDPURL(),
	}).Debug("permit client created")

	return c, nil
}

// Config returns the effective configuration.
func (c *Client) Config() *config.Config {
	return c.cfg
}

// Log returns the client's logger.
func (c *Client) Log() *util.LogEntry {
	return c.log
}

// Check asks the PDP whether user may perform action on resource. It is a
// shorthand for Enforcer.Check with no extra context.
func (c *Client) Check(
	ctx context.Context,
	user enforcement.User,
	action string,
	resource enforcement.Resource,
) (bool, error) {
	return c.Enforcer.Check(ctx, user, action, resource, nil)
}

// Close releases the worker pool backing the async API surface. Futures
// obtained before Close still complete; new async calls fail with
// futures.ErrRunnerClosed.
func (c *Client) Close() {
	c.runner.Shutdown()
}
