package api

import (
	"context"

	"github.com/permitio/permit-go/futures"
	"github.com/permitio/permit-go/models"
)

// TenantsAsync manages the tenants of the currently selected environment.
type TenantsAsync struct {
	*base
}

func (a *TenantsAsync) List(ctx context.Context, page, perPage int) *futures.Future[[]models.TenantRead] {
	return futures.Go(a.runner, ctx, func(ctx context.Context) ([]models.TenantRead, error) {
		if err := a.ensureAccessLevel(ctx, ContextEnvironment); err != nil {
			return nil, err
		}
		var out []models.TenantRead
		err := a.get(ctx, a.factsPath("tenants")+pageQuery(page, perPage), &out)
		return out, err
	})
}

func (a *TenantsAsync) Get(ctx context.Context, tenantKey string) *futures.Future[models.TenantRead] {
	return futures.Go(a.runner, ctx, func(ctx context.Context) (models.TenantRead, error) {
		var out models.TenantRead
		if err := a.ensureAccessLevel(ctx, ContextEnvironment); err != nil {
			return out, err
		}
		err := a.get(ctx, a.factsPath("tenants", tenantKey), &out)
		return out, err
	})
}

func (a *TenantsAsync) Create(ctx context.Context, tenant models.TenantCreate) *futures.Future[models.TenantRead] {
	return futures.Go(a.runner, ctx, func(ctx context.Context) (models.TenantRead, error) {
		var out models.TenantRead
		if err := a.ensureAccessLevel(ctx, ContextEnvironment); err != nil {
			return out, err
		}
		err := a.post(ctx, a.factsPath("tenants"), tenant, &out)
		return out, err
	})
}

func (a *TenantsAsync) Update(ctx context.Context, tenantKey string, tenant models.TenantUpdate) *futures.Future[models.TenantRead] {
	return futures.Go(a.runner, ctx, func(ctx context.Context) (models.TenantRead, error) {
		var out models.TenantRead
		if err := a.ensureAccessLevel(ctx, ContextEnvironment); err != nil {
			return out, err
		}
		err := a.patch(ctx, a.factsPath("tenants", tenantKey), tenant, &out)
		return out, err
	})
}

func (a *TenantsAsync) Delete(ctx context.Context, tenantKey string) *futures.Future[struct{}] {
	return futures.Go(a.runner, ctx, func(ctx context.Context) (struct{}, error) {
		if err := a.ensureAccessLevel(ctx, ContextEnvironment); err != nil {
			return struct{}{}, err
		}
		return struct{}{}, a.delete(ctx, a.factsPath("tenants", tenantKey), nil)
	})
}

// Tenants is the blocking facade over TenantsAsync.
type Tenants struct {
	async *TenantsAsync
}

// Async returns the future-based form of this API.
func (a *Tenants) Async() *TenantsAsync {
	return a.async
}

func (a *Tenants) List(ctx context.Context, page, perPage int) ([]models.TenantRead, error) {
	return a.async.List(ctx, page, perPage).Await(ctx)
}

func (a *Tenants) Get(ctx context.Context, tenantKey string) (models.TenantRead, error) {
	return a.async.Get(ctx, tenantKey).Await(ctx)
}

func (a *Tenants) Create(ctx context.Context, tenant models.TenantCreate) (models.TenantRead, error) {
	return a.async.Create(ctx, tenant).Await(ctx)
}

func (a *Tenants) Update(ctx context.Context, tenantKey string, tenant models.TenantUpdate) (models.TenantRead, error) {
	return a.async.Update(ctx, tenantKey, tenant).Await(ctx)
}

func (a *Tenants) Delete(ctx context.Context, tenantKey string) error {
	_, err := a.async.Delete(ctx, tenantKey).Await(ctx)
	return err
}
