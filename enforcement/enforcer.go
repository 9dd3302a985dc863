// Package enforcement answers allow/deny questions against the local policy
// decision point sidecar. Decisions are made entirely by the PDP; this layer
// only shapes the query, injects the default tenant when multi-tenancy
// auto-fill is on, and surfaces failures without retrying.
package enforcement

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/pitabwire/util"

	"github.com/permitio/permit-go/api"
	"github.com/permitio/permit-go/client"
)

// Configuration is the slice of SDK configuration the enforcer consumes.
type Configuration interface {
	GetToken() string
	GetPDPURL() string
	GetPDPTimeout() time.Duration
	DefaultTenant() string
	UseDefaultTenantIfEmpty() bool
}

// User is the subject of an enforcement check.
type User struct {
	Key        string         `json:"key"`
	FirstName  string         `json:"first_name,omitempty"`
	LastName   string         `json:"last_name,omitempty"`
	Email      string         `json:"email,omitempty"`
	Attributes map[string]any `json:"attributes,omitempty"`
}

// UserKey builds a check subject from a bare user key.
func UserKey(key string) User {
	return User{Key: key}
}

// Resource is the object of an enforcement check.
type Resource struct {
	Type       string         `json:"type"`
	Key        string         `json:"key,omitempty"`
	Tenant     string         `json:"tenant,omitempty"`
	Attributes map[string]any `json:"attributes,omitempty"`
	Context    map[string]any `json:"context,omitempty"`
}

// ResourceType builds a check object from a bare resource type.
func ResourceType(resourceType string) Resource {
	return Resource{Type: resourceType}
}

// CheckQuery is one allow/deny question, used by BulkCheck.
type CheckQuery struct {
	User     User           `json:"user"`
	Action   string         `json:"action"`
	Resource Resource       `json:"resource"`
	Context  map[string]any `json:"context,omitempty"`
}

type checkResponse struct {
	Allow bool `json:"allow"`
}

type bulkCheckRequest struct {
	Checks []CheckQuery `json:"checks"`
}

type bulkCheckResponse struct {
	Allow []checkResponse `json:"allow"`
}

// LocalRoleAssignment is a grant as reported by the PDP's own synced cache.
type LocalRoleAssignment struct {
	User   string `json:"user"`
	Role   string `json:"role"`
	Tenant string `json:"tenant"`
}

// LocalRoleAssignmentFilter narrows a local facts query. Empty fields match
// everything.
type LocalRoleAssignmentFilter struct {
	User   string
	Role   string
	Tenant string
}

func (f LocalRoleAssignmentFilter) query() string {
	q := url.Values{}
	if f.User != "" {
		q.Set("user", f.User)
	}
	if f.Role != "" {
		q.Set("role", f.Role)
	}
	if f.Tenant != "" {
		q.Set("tenant", f.Tenant)
	}
	if len(q) == 0 {
		return ""
	}
	return "?" + q.Encode()
}

// Enforcer issues enforcement queries to the PDP sidecar.
type Enforcer struct {
	cfg     Configuration
	invoker client.Manager
	log     *util.LogEntry
}

// NewEnforcer creates an enforcer talking to the configured PDP.
func NewEnforcer(cfg Configuration, invoker client.Manager, log *util.LogEntry) *Enforcer {
	return &Enforcer{
		cfg:     cfg,
		invoker: invoker,
		log:     log,
	}
}

// normalizeResource fills the default tenant on a resource naming none, when
// the configuration says to.
func (e *Enforcer) normalizeResource(resource Resource) Resource {
	if resource.Tenant == "" && e.cfg.UseDefaultTenantIfEmpty() {
		resource.Tenant = e.cfg.DefaultTenant()
	}
	return resource
}

// Check asks the PDP whether user may perform action on resource. The
// decision itself is the PDP's; a false return with a nil error is a
// legitimate deny, not a failure.
func (e *Enforcer) Check(
	ctx context.Context,
	user User,
	action string,
	resource Resource,
	checkContext map[string]any,
) (bool, error) {
	query := CheckQuery{
		User:     user,
		Action:   action,
		Resource: e.normalizeResource(resource),
		Context:  checkContext,
	}

	var decision checkResponse
	if err := e.post(ctx, "/allowed", query, &decision); err != nil {
		return false, err
	}

	e.log.WithContext(ctx).WithFields(map[string]any{
		"user":     user.Key,
		"action":   action,
		"resource": query.Resource.Type,
		"tenant":   query.Resource.Tenant,
		"allow":    decision.Allow,
	}).Debug("permit check decided")

	return decision.Allow, nil
}

// BulkCheck answers several independent questions in one round trip,
// returning decisions in query order.
func (e *Enforcer) BulkCheck(ctx context.Context, queries ...CheckQuery) ([]bool, error) {
	if len(queries) == 0 {
		return nil, nil
	}

	payload := bulkCheckRequest{Checks: make([]CheckQuery, 0, len(queries))}
	for _, q := range queries {
		q.Resource = e.normalizeResource(q.Resource)
		payload.Checks = append(payload.Checks, q)
	}

	var decisions bulkCheckResponse
	if err := e.post(ctx, "/allowed/bulk", payload, &decisions); err != nil {
		return nil, err
	}

	out := make([]bool, 0, len(decisions.Allow))
	for _, d := range decisions.Allow {
		out = append(out, d.Allow)
	}
	return out, nil
}

// ListLocalRoleAssignments queries the PDP's synced facts cache directly,
// bypassing the control plane.
func (e *Enforcer) ListLocalRoleAssignments(
	ctx context.Context,
	filter LocalRoleAssignmentFilter,
) ([]LocalRoleAssignment, error) {
	endpoint := e.cfg.GetPDPURL() + "/local/role_assignments" + filter.query()

	resp, err := e.invoker.Invoke(ctx, http.MethodGet, endpoint, nil, e.headers(),
		client.WithHTTPTimeout(e.cfg.GetPDPTimeout()))
	if err != nil {
		return nil, &api.ConnectionError{URL: endpoint, Err: err}
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		body, _ := resp.ToContent(ctx)
		return nil, &api.APIError{
			StatusCode: resp.StatusCode,
			Method:     http.MethodGet,
			URL:        endpoint,
			Body:       body,
		}
	}

	var out []LocalRoleAssignment
	if err = resp.Decode(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (e *Enforcer) headers() http.Header {
	h := http.Header{}
	h.Set("Authorization", "bearer "+e.cfg.GetToken())
	h.Set("Content-Type", "application/json")
	h.Set("Accept", "application/json")
	return h
}

func (e *Enforcer) post(ctx context.Context, pdpPath string, payload, out any) error {
	endpoint := e.cfg.GetPDPURL() + pdpPath

	resp, err := e.invoker.Invoke(ctx, http.MethodPost, endpoint, payload, e.headers(),
		client.WithHTTPTimeout(e.cfg.GetPDPTimeout()))
	if err != nil {
		return &api.ConnectionError{URL: endpoint, Err: err}
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		body, _ := resp.ToContent(ctx)
		return &api.APIError{
			StatusCode: resp.StatusCode,
			Method:     http.MethodPost,
			URL:        endpoint,
			Body:       body,
		}
	}

	return resp.Decode(ctx, out)
}
