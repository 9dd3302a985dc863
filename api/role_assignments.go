package api

import (
	"context"
	"net/url"

	"github.com/permitio/permit-go/futures"
	"github.com/permitio/permit-go/models"
)

// RoleAssignmentFilter narrows a role assignment listing. Empty fields match
// everything.
type RoleAssignmentFilter struct {
	UserKey   string
	RoleKey   string
	TenantKey string
}

func (f RoleAssignmentFilter) query(page, perPage int) string {
	q := url.Values{}
	if f.UserKey != "" {
		q.Set("user", f.UserKey)
	}
	if f.RoleKey != "" {
		q.Set("role", f.RoleKey)
	}
	if f.TenantKey != "" {
		q.Set("tenant", f.TenantKey)
	}
	base := pageQuery(page, perPage)
	if len(q) == 0 {
		return base
	}
	return base + "&" + q.Encode()
}

// RoleAssignmentsAsync manages the user/role/tenant grant facts of the
// currently selected environment.
type RoleAssignmentsAsync struct {
	*base
}

func (a *RoleAssignmentsAsync) List(ctx context.Context, filter RoleAssignmentFilter, page, perPage int) *futures.Future[[]models.RoleAssignmentRead] {
	return futures.Go(a.runner, ctx, func(ctx context.Context) ([]models.RoleAssignmentRead, error) {
		if err := a.ensureAccessLevel(ctx, ContextEnvironment); err != nil {
			return nil, err
		}
		var out []models.RoleAssignmentRead
		err := a.get(ctx, a.factsPath("role_assignments")+filter.query(page, perPage), &out)
		return out, err
	})
}

// Assign grants a role to a user within a tenant.
func (a *RoleAssignmentsAsync) Assign(ctx context.Context, assignment models.RoleAssignmentCreate) *futures.Future[models.RoleAssignmentRead] {
	return futures.Go(a.runner, ctx, func(ctx context.Context) (models.RoleAssignmentRead, error) {
		var out models.RoleAssignmentRead
		if err := a.ensureAccessLevel(ctx, ContextEnvironment); err != nil {
			return out, err
		}
		err := a.post(ctx, a.factsPath("role_assignments"), assignment, &out)
		return out, err
	})
}

// Unassign revokes a role from a user within a tenant.
func (a *RoleAssignmentsAsync) Unassign(ctx context.Context, assignment models.RoleAssignmentRemove) *futures.Future[struct{}] {
	return futures.Go(a.runner, ctx, func(ctx context.Context) (struct{}, error) {
		if err := a.ensureAccessLevel(ctx, ContextEnvironment); err != nil {
			return struct{}{}, err
		}
		return struct{}{}, a.delete(ctx, a.factsPath("role_assignments"), assignment)
	})
}

// RoleAssignments is the blocking facade over RoleAssignmentsAsync.
type RoleAssignments struct {
	async *RoleAssignmentsAsync
}

// Async returns the future-based form of this API.
func (a *RoleAssignments) Async() *RoleAssignmentsAsync {
	return a.async
}

func (a *RoleAssignments) List(ctx context.Context, filter RoleAssignmentFilter, page, perPage int) ([]models.RoleAssignmentRead, error) {
	return a.async.List(ctx, filter, page, perPage).Await(ctx)
}

func (a *RoleAssignments) Assign(ctx context.Context, assignment models.RoleAssignmentCreate) (models.RoleAssignmentRead, error) {
	return a.async.Assign(ctx, assignment).Await(ctx)
}

func (a *RoleAssignments) Unassign(ctx context.Context, assignment models.RoleAssignmentRemove) error {
	_, err := a.async.Unassign(ctx, assignment).Await(ctx)
	return err
}

// BulkAssign performs the assignments strictly one after another, preserving
// caller order. The control plane does not guarantee write commutativity, so
// writes are never parallelized; the first failure stops the run and reports
// how many assignments completed.
func (a *RoleAssignments) BulkAssign(ctx context.Context, assignments []models.RoleAssignmentCreate) (int, error) {
	for i, assignment := range assignments {
		if _, err := a.Assign(ctx, assignment); err != nil {
			return i, err
		}
	}
	return len(assignments), nil
}

// BulkUnassign mirrors BulkAssign for revocations: serialized, in caller
// order, stopping at the first failure.
func (a *RoleAssignments) BulkUnassign(ctx context.Context, assignments []models.RoleAssignmentRemove) (int, error) {
	for i, assignment := range assignments {
		if err := a.Unassign(ctx, assignment); err != nil {
			return i, err
		}
	}
	return len(assignments), nil
}
