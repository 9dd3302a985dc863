package api

import (
	"context"
	"net/http"

	"github.com/permitio/permit-go/futures"
	"github.com/permitio/permit-go/models"
)

// UsersAsync manages the users known to the currently selected environment
// and their per-tenant role grants.
type UsersAsync struct {
	*base
}

func (a *UsersAsync) List(ctx context.Context, page, perPage int) *futures.Future[[]models.UserRead] {
	return futures.Go(a.runner, ctx, func(ctx context.Context) ([]models.UserRead, error) {
		if err := a.ensureAccessLevel(ctx, ContextEnvironment); err != nil {
			return nil, err
		}
		var out []models.UserRead
		err := a.get(ctx, a.factsPath("users")+pageQuery(page, perPage), &out)
		return out, err
	})
}

func (a *UsersAsync) Get(ctx context.Context, userKey string) *futures.Future[models.UserRead] {
	return futures.Go(a.runner, ctx, func(ctx context.Context) (models.UserRead, error) {
		var out models.UserRead
		if err := a.ensureAccessLevel(ctx, ContextEnvironment); err != nil {
			return out, err
		}
		err := a.get(ctx, a.factsPath("users", userKey), &out)
		return out, err
	})
}

func (a *UsersAsync) Create(ctx context.Context, user models.UserCreate) *futures.Future[models.UserRead] {
	return futures.Go(a.runner, ctx, func(ctx context.Context) (models.UserRead, error) {
		var out models.UserRead
		if err := a.ensureAccessLevel(ctx, ContextEnvironment); err != nil {
			return out, err
		}
		err := a.post(ctx, a.factsPath("users"), user, &out)
		return out, err
	})
}

// Sync upserts a user: the user is created when missing and updated in place
// when present.
func (a *UsersAsync) Sync(ctx context.Context, user models.UserCreate) *futures.Future[models.UserRead] {
	return futures.Go(a.runner, ctx, func(ctx context.Context) (models.UserRead, error) {
		var out models.UserRead
		if err := a.ensureAccessLevel(ctx, ContextEnvironment); err != nil {
			return out, err
		}
		err := a.do(ctx, http.MethodPut, a.factsPath("users", user.Key), user, &out)
		return out, err
	})
}

func (a *UsersAsync) Update(ctx context.Context, userKey string, user models.UserUpdate) *futures.Future[models.UserRead] {
	return futures.Go(a.runner, ctx, func(ctx context.Context) (models.UserRead, error) {
		var out models.UserRead
		if err := a.ensureAccessLevel(ctx, ContextEnvironment); err != nil {
			return out, err
		}
		err := a.patch(ctx, a.factsPath("users", userKey), user, &out)
		return out, err
	})
}

func (a *UsersAsync) Delete(ctx context.Context, userKey string) *futures.Future[struct{}] {
	return futures.Go(a.runner, ctx, func(ctx context.Context) (struct{}, error) {
		if err := a.ensureAccessLevel(ctx, ContextEnvironment); err != nil {
			return struct{}{}, err
		}
		return struct{}{}, a.delete(ctx, a.factsPath("users", userKey), nil)
	})
}

// AssignRole grants roleKey to the user within tenantKey.
func (a *UsersAsync) AssignRole(ctx context.Context, userKey, roleKey, tenantKey string) *futures.Future[models.RoleAssignmentRead] {
	return futures.Go(a.runner, ctx, func(ctx context.Context) (models.RoleAssignmentRead, error) {
		var out models.RoleAssignmentRead
		if err := a.ensureAccessLevel(ctx, ContextEnvironment); err != nil {
			return out, err
		}
		payload := models.UserRole{Role: roleKey, Tenant: tenantKey}
		err := a.post(ctx, a.factsPath("users", userKey, "roles"), payload, &out)
		return out, err
	})
}

// UnassignRole revokes roleKey from the user within tenantKey.
func (a *UsersAsync) UnassignRole(ctx context.Context, userKey, roleKey, tenantKey string) *futures.Future[struct{}] {
	return futures.Go(a.runner, ctx, func(ctx context.Context) (struct{}, error) {
		if err := a.ensureAccessLevel(ctx, ContextEnvironment); err != nil {
			return struct{}{}, err
		}
		payload := models.UserRole{Role: roleKey, Tenant: tenantKey}
		return struct{}{}, a.delete(ctx, a.factsPath("users", userKey, "roles"), payload)
	})
}

// Users is the blocking facade over UsersAsync.
type Users struct {
	async *UsersAsync
}

// Async returns the future-based form of this API.
func (a *Users) Async() *UsersAsync {
	return a.async
}

func (a *Users) List(ctx context.Context, page, perPage int) ([]models.UserRead, error) {
	return a.async.List(ctx, page, perPage).Await(ctx)
}

func (a *Users) Get(ctx context.Context, userKey string) (models.UserRead, error) {
	return a.async.Get(ctx, userKey).Await(ctx)
}

// GetMany reads several users concurrently and returns them in the order the
// keys were given. Reads are independent, so unlike writes they are safe to
// run in parallel.
func (a *Users) GetMany(ctx context.Context, userKeys ...string) ([]models.UserRead, error) {
	fs := make([]*futures.Future[models.UserRead], 0, len(userKeys))
	for _, key := range userKeys {
		fs = append(fs, a.async.Get(ctx, key))
	}
	return futures.Join(ctx, fs...)
}

func (a *Users) Create(ctx context.Context, user models.UserCreate) (models.UserRead, error) {
	return a.async.Create(ctx, user).Await(ctx)
}

func (a *Users) Sync(ctx context.Context, user models.UserCreate) (models.UserRead, error) {
	return a.async.Sync(ctx, user).Await(ctx)
}

func (a *Users) Update(ctx context.Context, userKey string, user models.UserUpdate) (models.UserRead, error) {
	return a.async.Update(ctx, userKey, user).Await(ctx)
}

func (a *Users) Delete(ctx context.Context, userKey string) error {
	_, err := a.async.Delete(ctx, userKey).Await(ctx)
	return err
}

func (a *Users) AssignRole(ctx context.Context, userKey, roleKey, tenantKey string) (models.RoleAssignmentRead, error) {
	return a.async.AssignRole(ctx, userKey, roleKey, tenantKey).Await(ctx)
}

func (a *Users) UnassignRole(ctx context.Context, userKey, roleKey, tenantKey string) error {
	_, err := a.async.UnassignRole(ctx, userKey, roleKey, tenantKey).Await(ctx)
	return err
}
