// Package api exposes the Permit control plane: CRUD sub-APIs for policy
// configuration entities, guarded by a credential-scope gate that fails
// closed when the api key's scope does not cover the attempted operation.
package api

import (
	"fmt"
	"sync"

	"github.com/permitio/permit-go/models"
)

// AccessLevel is the granularity of access an api key is permitted: the key
// was issued for a whole organization, a single project, or a single
// environment. It is derived once from the scope introspection endpoint.
type AccessLevel int

const (
	AccessLevelWaitForInit AccessLevel = iota
	AccessLevelOrganization
	AccessLevelProject
	AccessLevelEnvironment
)

func (l AccessLevel) String() string {
	switch l {
	case AccessLevelOrganization:
		return "ORGANIZATION_LEVEL_API_KEY"
	case AccessLevelProject:
		return "PROJECT_LEVEL_API_KEY"
	case AccessLevelEnvironment:
		return "ENVIRONMENT_LEVEL_API_KEY"
	default:
		return "WAIT_FOR_INIT"
	}
}

// ContextLevel is how specifically the current session has narrowed its
// target. Ordering matters: an operation requiring ContextEnvironment cannot
// be satisfied by a context at ContextProject or lower.
type ContextLevel int

const (
	ContextWaitForInit ContextLevel = iota
	ContextOrganization
	ContextProject
	ContextEnvironment
)

func (l ContextLevel) String() string {
	switch l {
	case ContextOrganization:
		return "ORGANIZATION"
	case ContextProject:
		return "PROJECT"
	case ContextEnvironment:
		return "ENVIRONMENT"
	default:
		return "WAIT_FOR_INIT"
	}
}

// KeyLevel maps a context level onto the access level an api key would need
// to operate there directly. Used in gate error messages.
func (l ContextLevel) KeyLevel() AccessLevel {
	switch l {
	case ContextOrganization:
		return AccessLevelOrganization
	case ContextProject:
		return AccessLevelProject
	case ContextEnvironment:
		return AccessLevelEnvironment
	default:
		return AccessLevelWaitForInit
	}
}

// APIContext tracks two distinct triples for one client instance:
//
//   - the permitted scope: the (organization, project, environment) the api
//     key may touch, written exactly once by the scope resolver;
//   - the current context: the triple actually selected for subsequent
//     calls, narrowed only by explicit Set*LevelContext calls or by the
//     implicit first-resolution step.
//
// The internal mutex makes the lazy bootstrap's check-and-set safe under
// concurrent first callers. Narrowing calls themselves follow a single
// writer discipline: racing Set*LevelContext calls from multiple goroutines
// on one client are the caller's responsibility to serialize.
type APIContext struct {
	mu sync.RWMutex

	keyLevel AccessLevel
	level    ContextLevel

	permittedOrganization string
	permittedProject      string
	permittedEnvironment  string

	organization string
	project      string
	environment  string
}

// NewAPIContext returns a context in the WAIT_FOR_INIT state on both axes.
func NewAPIContext() *APIContext {
	return &APIContext{}
}

// KeyLevel returns the access level derived from the api key's scope.
func (c *APIContext) KeyLevel() AccessLevel {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.keyLevel
}

// Level returns the current context level.
func (c *APIContext) Level() ContextLevel {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.level
}

// Organization returns the currently selected organization id.
func (c *APIContext) Organization() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.organization
}

// Project returns the currently selected project id, or "" when none is
// selected.
func (c *APIContext) Project() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.project
}

// Environment returns the currently selected environment id, or "" when none
// is selected.
func (c *APIContext) Environment() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.environment
}

// Resolved reports whether the api key's scope has been established.
func (c *APIContext) Resolved() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.keyLevel != AccessLevelWaitForInit
}

// SavePermittedScope records the scope the api key may touch and seeds the
// current context at the same granularity, so a single-environment key is
// usable without an explicit Set*LevelContext call. The permitted scope is
// write-once: calls after the first are no-ops.
func (c *APIContext) SavePermittedScope(scope models.APIKeyScope) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.keyLevel != AccessLevelWaitForInit {
		return
	}

	c.permittedOrganization = scope.OrganizationID
	c.permittedProject = scope.ProjectID
	c.permittedEnvironment = scope.EnvironmentID

	c.organization = scope.OrganizationID
	c.project = scope.ProjectID
	c.environment = scope.EnvironmentID

	switch {
	case scope.EnvironmentID != "":
		c.keyLevel = AccessLevelEnvironment
		c.level = ContextEnvironment
	case scope.ProjectID != "":
		c.keyLevel = AccessLevelProject
		c.level = ContextProject
	default:
		c.keyLevel = AccessLevelOrganization
		c.level = ContextOrganization
	}
}

// SetOrganizationLevelContext selects org for subsequent calls and clears
// any narrower selection. org must match the api key's organization.
func (c *APIContext) SetOrganizationLevelContext(org string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.checkOrganization(org); err != nil {
		return err
	}

	c.organization = org
	c.project = ""
	c.environment = ""
	c.level = ContextOrganization
	return nil
}

// SetProjectLevelContext selects org and project for subsequent calls and
// clears any environment selection. An organization-level key may choose any
// project; a project-scoped key only its own.
func (c *APIContext) SetProjectLevelContext(org, project string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.checkOrganization(org); err != nil {
		return err
	}
	if err := c.checkProject(project); err != nil {
		return err
	}

	c.organization = org
	c.project = project
	c.environment = ""
	c.level = ContextProject
	return nil
}

// SetEnvironmentLevelContext selects org, project and environment for
// subsequent calls. Keys with no environment constraint may choose any
// environment under a permitted project.
func (c *APIContext) SetEnvironmentLevelContext(org, project, environment string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.checkOrganization(org); err != nil {
		return err
	}
	if err := c.checkProject(project); err != nil {
		return err
	}
	if err := c.checkEnvironment(environment); err != nil {
		return err
	}

	c.organization = org
	c.project = project
	c.environment = environment
	c.level = ContextEnvironment
	return nil
}

func (c *APIContext) checkOrganization(org string) error {
	if c.keyLevel == AccessLevelWaitForInit {
		return fmt.Errorf("permit: api key scope is not resolved yet, make any api call or use PermitAPI.Set*LevelContext")
	}
	if org != c.permittedOrganization {
		return &ContextChangeError{Field: "organization", Value: org}
	}
	return nil
}

func (c *APIContext) checkProject(project string) error {
	// An organization-level key carries no project constraint.
	if c.permittedProject != "" && project != c.permittedProject {
		return &ContextChangeError{Field: "project", Value: project}
	}
	return nil
}

func (c *APIContext) checkEnvironment(environment string) error {
	if c.permittedEnvironment != "" && environment != c.permittedEnvironment {
		return &ContextChangeError{Field: "environment", Value: environment}
	}
	return nil
}

// EnsureLevel is the context gate: it verifies the current context satisfies
// the level an operation declares, returning a ContextError with actionable
// guidance otherwise. It performs no I/O.
func (c *APIContext) EnsureLevel(required ContextLevel) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.level < required {
		return &ContextError{
			RequiredLevel:   required,
			CredentialLevel: c.keyLevel,
			Guidance:        guidanceFor(required),
		}
	}

	if required >= ContextProject && c.project == "" {
		return &ContextError{
			RequiredLevel:   required,
			CredentialLevel: c.keyLevel,
			Guidance:        "select a project with SetProjectLevelContext",
		}
	}

	if required >= ContextEnvironment && c.environment == "" {
		return &ContextError{
			RequiredLevel:   required,
			CredentialLevel: c.keyLevel,
			Guidance:        "select an environment with SetEnvironmentLevelContext",
		}
	}

	return nil
}

func guidanceFor(required ContextLevel) string {
	switch required {
	case ContextProject:
		return "select a project with SetProjectLevelContext or use a project api key"
	case ContextEnvironment:
		return "select an environment with SetEnvironmentLevelContext or use an environment api key"
	default:
		return ""
	}
}
