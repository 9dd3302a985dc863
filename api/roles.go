package api

import (
	"context"
	"net/http"

	"github.com/permitio/permit-go/futures"
	"github.com/permitio/permit-go/models"
)

// RolesAsync manages the roles of the currently selected environment,
// including the permissions a role grants.
type RolesAsync struct {
	*base
}

func (a *RolesAsync) List(ctx context.Context, page, perPage int) *futures.Future[[]models.RoleRead] {
	return futures.Go(a.runner, ctx, func(ctx context.Context) ([]models.RoleRead, error) {
		if err := a.ensureAccessLevel(ctx, ContextEnvironment); err != nil {
			return nil, err
		}
		var out []models.RoleRead
		err := a.get(ctx, a.schemaPath("roles")+pageQuery(page, perPage), &out)
		return out, err
	})
}

func (a *RolesAsync) Get(ctx context.Context, roleKey string) *futures.Future[models.RoleRead] {
	return futures.Go(a.runner, ctx, func(ctx context.Context) (models.RoleRead, error) {
		var out models.RoleRead
		if err := a.ensureAccessLevel(ctx, ContextEnvironment); err != nil {
			return out, err
		}
		err := a.get(ctx, a.schemaPath("roles", roleKey), &out)
		return out, err
	})
}

func (a *RolesAsync) Create(ctx context.Context, role models.RoleCreate) *futures.Future[models.RoleRead] {
	return futures.Go(a.runner, ctx, func(ctx context.Context) (models.RoleRead, error) {
		var out models.RoleRead
		if err := a.ensureAccessLevel(ctx, ContextEnvironment); err != nil {
			return out, err
		}
		err := a.post(ctx, a.schemaPath("roles"), role, &out)
		return out, err
	})
}

func (a *RolesAsync) Update(ctx context.Context, roleKey string, role models.RoleUpdate) *futures.Future[models.RoleRead] {
	return futures.Go(a.runner, ctx, func(ctx context.Context) (models.RoleRead, error) {
		var out models.RoleRead
		if err := a.ensureAccessLevel(ctx, ContextEnvironment); err != nil {
			return out, err
		}
		err := a.patch(ctx, a.schemaPath("roles", roleKey), role, &out)
		return out, err
	})
}

func (a *RolesAsync) Delete(ctx context.Context, roleKey string) *futures.Future[struct{}] {
	return futures.Go(a.runner, ctx, func(ctx context.Context) (struct{}, error) {
		if err := a.ensureAccessLevel(ctx, ContextEnvironment); err != nil {
			return struct{}{}, err
		}
		return struct{}{}, a.delete(ctx, a.schemaPath("roles", roleKey), nil)
	})
}

// AssignPermissions grants the listed permissions to a role.
func (a *RolesAsync) AssignPermissions(ctx context.Context, roleKey string, permissions []string) *futures.Future[models.RoleRead] {
	return futures.Go(a.runner, ctx, func(ctx context.Context) (models.RoleRead, error) {
		var out models.RoleRead
		if err := a.ensureAccessLevel(ctx, ContextEnvironment); err != nil {
			return out, err
		}
		payload := models.AddRolePermissions{Permissions: permissions}
		err := a.post(ctx, a.schemaPath("roles", roleKey, "permissions"), payload, &out)
		return out, err
	})
}

// RemovePermissions revokes the listed permissions from a role.
func (a *RolesAsync) RemovePermissions(ctx context.Context, roleKey string, permissions []string) *futures.Future[models.RoleRead] {
	return futures.Go(a.runner, ctx, func(ctx context.Context) (models.RoleRead, error) {
		var out models.RoleRead
		if err := a.ensureAccessLevel(ctx, ContextEnvironment); err != nil {
			return out, err
		}
		payload := models.RemoveRolePermissions{Permissions: permissions}
		err := a.do(ctx, http.MethodDelete, a.schemaPath("roles", roleKey, "permissions"), payload, &out)
		return out, err
	})
}

// Roles is the blocking facade over RolesAsync.
type Roles struct {
	async *RolesAsync
}

// Async returns the future-based form of this API.
func (a *Roles) Async() *RolesAsync {
	return a.async
}

func (a *Roles) List(ctx context.Context, page, perPage int) ([]models.RoleRead, error) {
	return a.async.List(ctx, page, perPage).Await(ctx)
}

func (a *Roles) Get(ctx context.Context, roleKey string) (models.RoleRead, error) {
	return a.async.Get(ctx, roleKey).Await(ctx)
}

func (a *Roles) Create(ctx context.Context, role models.RoleCreate) (models.RoleRead, error) {
	return a.async.Create(ctx, role).Await(ctx)
}

func (a *Roles) Update(ctx context.Context, roleKey string, role models.RoleUpdate) (models.RoleRead, error) {
	return a.async.Update(ctx, roleKey, role).Await(ctx)
}

func (a *Roles) Delete(ctx context.Context, roleKey string) error {
	_, err := a.async.Delete(ctx, roleKey).Await(ctx)
	return err
}

func (a *Roles) AssignPermissions(ctx context.Context, roleKey string, permissions []string) (models.RoleRead, error) {
	return a.async.AssignPermissions(ctx, roleKey, permissions).Await(ctx)
}

func (a *Roles) RemovePermissions(ctx context.Context, roleKey string, permissions []string) (models.RoleRead, error) {
	return a.async.RemovePermissions(ctx, roleKey, permissions).Await(ctx)
}
