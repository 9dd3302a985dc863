package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/pitabwire/util"
	"golang.org/x/sync/singleflight"

	"github.com/permitio/permit-go/client"
	"github.com/permitio/permit-go/config"
	"github.com/permitio/permit-go/futures"
	"github.com/permitio/permit-go/models"
)

const scopeEndpointPath = "/v2/api-key/scope"

const (
	defaultPage    = 1
	defaultPerPage = 100
	maxPerPage     = 100
)

// base carries everything a sub-API needs: configuration, the HTTP invoker,
// the futures runner backing the async surface, and the shared API context.
// Every sub-API embeds the same *base, so the context gate is a single choke
// point for the whole client.
type base struct {
	cfg     config.ConfigurationAPI
	invoker client.Manager
	runner  *futures.Runner
	log     *util.LogEntry

	pctx *APIContext
	sf   singleflight.Group
}

// PermitAPI is the control plane surface. Sub-APIs expose blocking methods;
// each has an Async() accessor returning the future-based form they delegate
// to.
type PermitAPI struct {
	*base

	Projects           *Projects
	Environments       *Environments
	Resources          *Resources
	Roles              *Roles
	Tenants            *Tenants
	Users              *Users
	RoleAssignments    *RoleAssignments
	ConditionSets      *ConditionSets
	RelationshipTuples *RelationshipTuples
}

// New assembles the control plane API around one shared API context.
func New(
	cfg config.ConfigurationAPI,
	invoker client.Manager,
	runner *futures.Runner,
	log *util.LogEntry,
) *PermitAPI {
	b := &base{
		cfg:     cfg,
		invoker: invoker,
		runner:  runner,
		log:     log,
		pctx:    NewAPIContext(),
	}

	return &PermitAPI{
		base:               b,
		Projects:           &Projects{async: &ProjectsAsync{base: b}},
		Environments:       &Environments{async: &EnvironmentsAsync{base: b}},
		Resources:          &Resources{async: &ResourcesAsync{base: b}},
		Roles:              &Roles{async: &RolesAsync{base: b}},
		Tenants:            &Tenants{async: &TenantsAsync{base: b}},
		Users:              &Users{async: &UsersAsync{base: b}},
		RoleAssignments:    &RoleAssignments{async: &RoleAssignmentsAsync{base: b}},
		ConditionSets:      &ConditionSets{async: &ConditionSetsAsync{base: b}},
		RelationshipTuples: &RelationshipTuples{async: &RelationshipTuplesAsync{base: b}},
	}
}

// Context exposes the API context for inspection.
func (p *PermitAPI) Context() *APIContext {
	return p.pctx
}

// SetOrganizationLevelContext resolves the api key's scope if needed, then
// selects org for subsequent calls.
func (p *PermitAPI) SetOrganizationLevelContext(ctx context.Context, org string) error {
	if err := p.resolveScope(ctx); err != nil {
		return err
	}
	return p.pctx.SetOrganizationLevelContext(org)
}

// SetProjectLevelContext resolves the api key's scope if needed, then selects
// org and project for subsequent calls.
func (p *PermitAPI) SetProjectLevelContext(ctx context.Context, org, project string) error {
	if err := p.resolveScope(ctx); err != nil {
		return err
	}
	return p.pctx.SetProjectLevelContext(org, project)
}

// SetEnvironmentLevelContext resolves the api key's scope if needed, then
// selects org, project and environment for subsequent calls.
func (p *PermitAPI) SetEnvironmentLevelContext(ctx context.Context, org, project, environment string) error {
	if err := p.resolveScope(ctx); err != nil {
		return err
	}
	return p.pctx.SetEnvironmentLevelContext(org, project, environment)
}

// resolveScope performs the one-time lazy scope bootstrap. Concurrent first
// callers collapse onto a single network call via singleflight; once the
// context is resolved this is a cheap read.
func (b *base) resolveScope(ctx context.Context) error {
	if b.pctx.Resolved() {
		return nil
	}

	_, err, _ := b.sf.Do("api-key-scope", func() (any, error) {
		// A waiter may have resolved the scope while this call queued.
		if b.pctx.Resolved() {
			return nil, nil
		}

		var scope models.APIKeyScope
		if err := b.get(ctx, scopeEndpointPath, &scope); err != nil {
			return nil, err
		}

		if scope.OrganizationID == "" {
			return nil, fmt.Errorf(
				"permit: the scope endpoint returned no organization for this api key, it cannot be used: %w",
				&ContextError{RequiredLevel: ContextOrganization, CredentialLevel: AccessLevelWaitForInit},
			)
		}

		b.pctx.SavePermittedScope(scope)
		b.log.WithFields(map[string]any{
			"access_level": b.pctx.KeyLevel().String(),
			"organization": scope.OrganizationID,
			"project":      scope.ProjectID,
			"environment":  scope.EnvironmentID,
		}).Debug("api key scope resolved")
		return nil, nil
	})

	return err
}

// ensureAccessLevel is the gate every scoped operation calls first: it
// bootstraps the scope lazily, then verifies the current context satisfies
// the operation's declared level. Argument validation always happens after
// this gate so error precedence is deterministic.
func (b *base) ensureAccessLevel(ctx context.Context, required ContextLevel) error {
	if err := b.resolveScope(ctx); err != nil {
		return err
	}
	return b.pctx.EnsureLevel(required)
}

func (b *base) headers() http.Header {
	h := http.Header{}
	h.Set("Authorization", "bearer "+b.cfg.GetToken())
	h.Set("Content-Type", "application/json")
	h.Set("Accept", "application/json")
	return h
}

// schemaPath builds /v2/schema/{proj}/{env}/... from the current context.
// Callers must have passed the environment-level gate.
func (b *base) schemaPath(parts ...string) string {
	return b.scopedPath("schema", parts...)
}

// factsPath builds /v2/facts/{proj}/{env}/... from the current context.
func (b *base) factsPath(parts ...string) string {
	return b.scopedPath("facts", parts...)
}

func (b *base) scopedPath(section string, parts ...string) string {
	segments := []string{"/v2", section, url.PathEscape(b.pctx.Project()), url.PathEscape(b.pctx.Environment())}
	for _, part := range parts {
		segments = append(segments, url.PathEscape(part))
	}
	return strings.Join(segments, "/")
}

func pageQuery(page, perPage int) string {
	if page < 1 {
		page = defaultPage
	}
	if perPage < 1 || perPage > maxPerPage {
		perPage = defaultPerPage
	}
	return fmt.Sprintf("?page=%d&per_page=%d", page, perPage)
}

func (b *base) do(ctx context.Context, method, apiPath string, payload, out any) error {
	endpoint := b.cfg.GetAPIURL() + apiPath

	resp, err := b.invoker.Invoke(ctx, method, endpoint, payload, b.headers(),
		client.WithHTTPTimeout(b.cfg.GetAPITimeout()))
	if err != nil {
		return &ConnectionError{URL: endpoint, Err: err}
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		body, _ := resp.ToContent(ctx)
		return &APIError{
			StatusCode: resp.StatusCode,
			Method:     method,
			URL:        endpoint,
			Body:       body,
		}
	}

	if out == nil {
		return resp.Close()
	}

	if err = resp.Decode(ctx, out); err != nil {
		return fmt.Errorf("permit: decoding %s %s response: %w", method, endpoint, err)
	}
	return nil
}

func (b *base) get(ctx context.Context, apiPath string, out any) error {
	return b.do(ctx, http.MethodGet, apiPath, nil, out)
}

func (b *base) post(ctx context.Context, apiPath string, payload, out any) error {
	return b.do(ctx, http.MethodPost, apiPath, payload, out)
}

func (b *base) patch(ctx context.Context, apiPath string, payload, out any) error {
	return b.do(ctx, http.MethodPatch, apiPath, payload, out)
}

func (b *base) delete(ctx context.Context, apiPath string, payload any) error {
	return b.do(ctx, http.MethodDelete, apiPath, payload, nil)
}
