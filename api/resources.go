package api

import (
	"context"

	"github.com/permitio/permit-go/futures"
	"github.com/permitio/permit-go/models"
)

// ResourcesAsync manages the resource types of the currently selected
// environment.
type ResourcesAsync struct {
	*base
}

func (a *ResourcesAsync) List(ctx context.Context, page, perPage int) *futures.Future[[]models.ResourceRead] {
	return futures.Go(a.runner, ctx, func(ctx context.Context) ([]models.ResourceRead, error) {
		if err := a.ensureAccessLevel(ctx, ContextEnvironment); err != nil {
			return nil, err
		}
		var out []models.ResourceRead
		err := a.get(ctx, a.schemaPath("resources")+pageQuery(page, perPage), &out)
		return out, err
	})
}

func (a *ResourcesAsync) Get(ctx context.Context, resourceKey string) *futures.Future[models.ResourceRead] {
	return futures.Go(a.runner, ctx, func(ctx context.Context) (models.ResourceRead, error) {
		var out models.ResourceRead
		if err := a.ensureAccessLevel(ctx, ContextEnvironment); err != nil {
			return out, err
		}
		err := a.get(ctx, a.schemaPath("resources", resourceKey), &out)
		return out, err
	})
}

func (a *ResourcesAsync) Create(ctx context.Context, resource models.ResourceCreate) *futures.Future[models.ResourceRead] {
	return futures.Go(a.runner, ctx, func(ctx context.Context) (models.ResourceRead, error) {
		var out models.ResourceRead
		if err := a.ensureAccessLevel(ctx, ContextEnvironment); err != nil {
			return out, err
		}
		err := a.post(ctx, a.schemaPath("resources"), resource, &out)
		return out, err
	})
}

func (a *ResourcesAsync) Update(ctx context.Context, resourceKey string, resource models.ResourceUpdate) *futures.Future[models.ResourceRead] {
	return futures.Go(a.runner, ctx, func(ctx context.Context) (models.ResourceRead, error) {
		var out models.ResourceRead
		if err := a.ensureAccessLevel(ctx, ContextEnvironment); err != nil {
			return out, err
		}
		err := a.patch(ctx, a.schemaPath("resources", resourceKey), resource, &out)
		return out, err
	})
}

func (a *ResourcesAsync) Delete(ctx context.Context, resourceKey string) *futures.Future[struct{}] {
	return futures.Go(a.runner, ctx, func(ctx context.Context) (struct{}, error) {
		if err := a.ensureAccessLevel(ctx, ContextEnvironment); err != nil {
			return struct{}{}, err
		}
		return struct{}{}, a.delete(ctx, a.schemaPath("resources", resourceKey), nil)
	})
}

// Resources is the blocking facade over ResourcesAsync.
type Resources struct {
	async *ResourcesAsync
}

// Async returns the future-based form of this API.
func (a *Resources) Async() *ResourcesAsync {
	return a.async
}

func (a *Resources) List(ctx context.Context, page, perPage int) ([]models.ResourceRead, error) {
	return a.async.List(ctx, page, perPage).Await(ctx)
}

func (a *Resources) Get(ctx context.Context, resourceKey string) (models.ResourceRead, error) {
	return a.async.Get(ctx, resourceKey).Await(ctx)
}

func (a *Resources) Create(ctx context.Context, resource models.ResourceCreate) (models.ResourceRead, error) {
	return a.async.Create(ctx, resource).Await(ctx)
}

func (a *Resources) Update(ctx context.Context, resourceKey string, resource models.ResourceUpdate) (models.ResourceRead, error) {
	return a.async.Update(ctx, resourceKey, resource).Await(ctx)
}

func (a *Resources) Delete(ctx context.Context, resourceKey string) error {
	_, err := a.async.Delete(ctx, resourceKey).Await(ctx)
	return err
}
