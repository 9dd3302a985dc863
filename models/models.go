// Package models holds the request and response schemas exchanged with the
// Permit control plane. These are boundary types only: no behavior lives here
// beyond what the wire format requires.
package models

import "time"

// APIKeyScope is the response of the scope introspection endpoint. Project
// and environment are present only for keys issued at that granularity.
type APIKeyScope struct {
	OrganizationID string `json:"organization_id"`
	ProjectID      string `json:"project_id,omitempty"`
	EnvironmentID  string `json:"environment_id,omitempty"`
}

// ProjectRead is a project as returned by the control plane.
type ProjectRead struct {
	ID             string         `json:"id"`
	Key            string         `json:"key"`
	OrganizationID string         `json:"organization_id"`
	Name           string         `json:"name"`
	Description    string         `json:"description,omitempty"`
	Settings       map[string]any `json:"settings,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

// ProjectCreate is the payload for creating a project.
type ProjectCreate struct {
	Key         string         `json:"key"`
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Settings    map[string]any `json:"settings,omitempty"`
}

// ProjectUpdate is the payload for updating a project. Nil fields are left
// unchanged.
type ProjectUpdate struct {
	Name        *string        `json:"name,omitempty"`
	Description *string        `json:"description,omitempty"`
	Settings    map[string]any `json:"settings,omitempty"`
}

// EnvironmentRead is an environment as returned by the control plane.
type EnvironmentRead struct {
	ID             string    `json:"id"`
	Key            string    `json:"key"`
	OrganizationID string    `json:"organization_id"`
	ProjectID      string    `json:"project_id"`
	Name           string    `json:"name"`
	Description    string    `json:"description,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// EnvironmentCreate is the payload for creating an environment.
type EnvironmentCreate struct {
	Key         string `json:"key"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// EnvironmentUpdate is the payload for updating an environment.
type EnvironmentUpdate struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
}

// ActionBlock describes a single action available on a resource type.
type ActionBlock struct {
	Name        string `json:"name,omitempty"`
	Description string `json:"description,omitempty"`
}

// AttributeBlock describes a single attribute declared on a resource type.
type AttributeBlock struct {
	Type        string `json:"type"`
	Description string `json:"description,omitempty"`
}

// ResourceRead is a resource type as returned by the control plane.
type ResourceRead struct {
	ID             string                    `json:"id"`
	Key            string                    `json:"key"`
	OrganizationID string                    `json:"organization_id"`
	ProjectID      string                    `json:"project_id"`
	EnvironmentID  string                    `json:"environment_id"`
	Name           string                    `json:"name"`
	URN            string                    `json:"urn,omitempty"`
	Description    string                    `json:"description,omitempty"`
	Actions        map[string]ActionBlock    `json:"actions,omitempty"`
	Attributes     map[string]AttributeBlock `json:"attributes,omitempty"`
	CreatedAt      time.Time                 `json:"created_at"`
	UpdatedAt      time.Time                 `json:"updated_at"`
}

// ResourceCreate is the payload for creating a resource type.
type ResourceCreate struct {
	Key         string                    `json:"key"`
	Name        string                    `json:"name"`
	URN         string                    `json:"urn,omitempty"`
	Description string                    `json:"description,omitempty"`
	Actions     map[string]ActionBlock    `json:"actions"`
	Attributes  map[string]AttributeBlock `json:"attributes,omitempty"`
}

// ResourceUpdate is the payload for updating a resource type.
type ResourceUpdate struct {
	Name        *string                   `json:"name,omitempty"`
	URN         *string                   `json:"urn,omitempty"`
	Description *string                   `json:"description,omitempty"`
	Actions     map[string]ActionBlock    `json:"actions,omitempty"`
	Attributes  map[string]AttributeBlock `json:"attributes,omitempty"`
}

// RoleRead is a role as returned by the control plane.
type RoleRead struct {
	ID             string         `json:"id"`
	Key            string         `json:"key"`
	OrganizationID string         `json:"organization_id"`
	ProjectID      string         `json:"project_id"`
	EnvironmentID  string         `json:"environment_id"`
	Name           string         `json:"name"`
	Description    string         `json:"description,omitempty"`
	Permissions    []string       `json:"permissions,omitempty"`
	Extends        []string       `json:"extends,omitempty"`
	Attributes     map[string]any `json:"attributes,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

// RoleCreate is the payload for creating a role.
type RoleCreate struct {
	Key         string         `json:"key"`
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Permissions []string       `json:"permissions,omitempty"`
	Extends     []string       `json:"extends,omitempty"`
	Attributes  map[string]any `json:"attributes,omitempty"`
}

// RoleUpdate is the payload for updating a role.
type RoleUpdate struct {
	Name        *string        `json:"name,omitempty"`
	Description *string        `json:"description,omitempty"`
	Permissions []string       `json:"permissions,omitempty"`
	Extends     []string       `json:"extends,omitempty"`
	Attributes  map[string]any `json:"attributes,omitempty"`
}

// AddRolePermissions is the payload for granting permissions to a role.
type AddRolePermissions struct {
	Permissions []string `json:"permissions"`
}

// RemoveRolePermissions is the payload for revoking permissions from a role.
type RemoveRolePermissions struct {
	Permissions []string `json:"permissions"`
}

// TenantRead is a tenant as returned by the control plane.
type TenantRead struct {
	ID             string         `json:"id"`
	Key            string         `json:"key"`
	OrganizationID string         `json:"organization_id"`
	ProjectID      string         `json:"project_id"`
	EnvironmentID  string         `json:"environment_id"`
	Name           string         `json:"name"`
	Description    string         `json:"description,omitempty"`
	Attributes     map[string]any `json:"attributes,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

// TenantCreate is the payload for creating a tenant.
type TenantCreate struct {
	Key         string         `json:"key"`
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Attributes  map[string]any `json:"attributes,omitempty"`
}

// TenantUpdate is the payload for updating a tenant.
type TenantUpdate struct {
	Name        *string        `json:"name,omitempty"`
	Description *string        `json:"description,omitempty"`
	Attributes  map[string]any `json:"attributes,omitempty"`
}

// UserRole is a single role grant a user holds within a tenant.
type UserRole struct {
	Role   string `json:"role"`
	Tenant string `json:"tenant"`
}

// UserRead is a user as returned by the control plane.
type UserRead struct {
	ID             string         `json:"id"`
	Key            string         `json:"key"`
	OrganizationID string         `json:"organization_id"`
	ProjectID      string         `json:"project_id"`
	EnvironmentID  string         `json:"environment_id"`
	Email          string         `json:"email,omitempty"`
	FirstName      string         `json:"first_name,omitempty"`
	LastName       string         `json:"last_name,omitempty"`
	Attributes     map[string]any `json:"attributes,omitempty"`
	Roles          []UserRole     `json:"roles,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

// UserCreate is the payload for creating a user.
type UserCreate struct {
	Key        string         `json:"key"`
	Email      string         `json:"email,omitempty"`
	FirstName  string         `json:"first_name,omitempty"`
	LastName   string         `json:"last_name,omitempty"`
	Attributes map[string]any `json:"attributes,omitempty"`
}

// UserUpdate is the payload for updating a user.
type UserUpdate struct {
	Email      *string        `json:"email,omitempty"`
	FirstName  *string        `json:"first_name,omitempty"`
	LastName   *string        `json:"last_name,omitempty"`
	Attributes map[string]any `json:"attributes,omitempty"`
}

// RoleAssignmentRead is a role assignment as returned by the control plane.
type RoleAssignmentRead struct {
	ID       string `json:"id"`
	User     string `json:"user"`
	Role     string `json:"role"`
	Tenant   string `json:"tenant"`
	UserID   string `json:"user_id,omitempty"`
	RoleID   string `json:"role_id,omitempty"`
	TenantID string `json:"tenant_id,omitempty"`
}

// RoleAssignmentCreate is the payload for assigning a role to a user in a
// tenant.
type RoleAssignmentCreate struct {
	User   string `json:"user"`
	Role   string `json:"role"`
	Tenant string `json:"tenant"`
}

// RoleAssignmentRemove is the payload for unassigning a role from a user in a
// tenant.
type RoleAssignmentRemove struct {
	User   string `json:"user"`
	Role   string `json:"role"`
	Tenant string `json:"tenant"`
}

// ConditionSetType discriminates user sets from resource sets.
type ConditionSetType string

const (
	ConditionSetUser     ConditionSetType = "userset"
	ConditionSetResource ConditionSetType = "resourceset"
)

// ConditionSetRead is a condition set as returned by the control plane.
type ConditionSetRead struct {
	ID             string           `json:"id"`
	Key            string           `json:"key"`
	OrganizationID string           `json:"organization_id"`
	ProjectID      string           `json:"project_id"`
	EnvironmentID  string           `json:"environment_id"`
	Type           ConditionSetType `json:"type"`
	Name           string           `json:"name"`
	Description    string           `json:"description,omitempty"`
	Conditions     map[string]any   `json:"conditions,omitempty"`
	ResourceID     string           `json:"resource_id,omitempty"`
	CreatedAt      time.Time        `json:"created_at"`
	UpdatedAt      time.Time        `json:"updated_at"`
}

// ConditionSetCreate is the payload for creating a condition set.
type ConditionSetCreate struct {
	Key         string           `json:"key"`
	Type        ConditionSetType `json:"type"`
	Name        string           `json:"name"`
	Description string           `json:"description,omitempty"`
	Conditions  map[string]any   `json:"conditions,omitempty"`
	ResourceID  string           `json:"resource_id,omitempty"`
}

// ConditionSetUpdate is the payload for updating a condition set.
type ConditionSetUpdate struct {
	Name        *string        `json:"name,omitempty"`
	Description *string        `json:"description,omitempty"`
	Conditions  map[string]any `json:"conditions,omitempty"`
}

// RelationshipTupleRead is a relationship tuple as returned by the control
// plane.
type RelationshipTupleRead struct {
	ID             string `json:"id"`
	Subject        string `json:"subject"`
	Relation       string `json:"relation"`
	Object         string `json:"object"`
	Tenant         string `json:"tenant,omitempty"`
	SubjectID      string `json:"subject_id,omitempty"`
	RelationID     string `json:"relation_id,omitempty"`
	ObjectID       string `json:"object_id,omitempty"`
	OrganizationID string `json:"organization_id,omitempty"`
	ProjectID      string `json:"project_id,omitempty"`
	EnvironmentID  string `json:"environment_id,omitempty"`
}

// RelationshipTupleCreate is the payload for creating a relationship tuple.
type RelationshipTupleCreate struct {
	Subject  string `json:"subject"`
	Relation string `json:"relation"`
	Object   string `json:"object"`
	Tenant   string `json:"tenant,omitempty"`
}

// RelationshipTupleDelete is the payload for deleting a relationship tuple.
type RelationshipTupleDelete struct {
	Subject  string `json:"subject"`
	Relation string `json:"relation"`
	Object   string `json:"object"`
}
