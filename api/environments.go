package api

import (
	"context"
	"net/url"

	"github.com/permitio/permit-go/futures"
	"github.com/permitio/permit-go/models"
)

// EnvironmentsAsync manages the environments of the currently selected
// project, so a project-level context is required.
type EnvironmentsAsync struct {
	*base
}

func (a *EnvironmentsAsync) envsPath(parts ...string) string {
	p := "/v2/projects/" + url.PathEscape(a.pctx.Project()) + "/envs"
	for _, part := range parts {
		p += "/" + url.PathEscape(part)
	}
	return p
}

func (a *EnvironmentsAsync) List(ctx context.Context, page, perPage int) *futures.Future[[]models.EnvironmentRead] {
	return futures.Go(a.runner, ctx, func(ctx context.Context) ([]models.EnvironmentRead, error) {
		if err := a.ensureAccessLevel(ctx, ContextProject); err != nil {
			return nil, err
		}
		var out []models.EnvironmentRead
		err := a.get(ctx, a.envsPath()+pageQuery(page, perPage), &out)
		return out, err
	})
}

func (a *EnvironmentsAsync) Get(ctx context.Context, environmentKey string) *futures.Future[models.EnvironmentRead] {
	return futures.Go(a.runner, ctx, func(ctx context.Context) (models.EnvironmentRead, error) {
		var out models.EnvironmentRead
		if err := a.ensureAccessLevel(ctx, ContextProject); err != nil {
			return out, err
		}
		err := a.get(ctx, a.envsPath(environmentKey), &out)
		return out, err
	})
}

func (a *EnvironmentsAsync) Create(ctx context.Context, environment models.EnvironmentCreate) *futures.Future[models.EnvironmentRead] {
	return futures.Go(a.runner, ctx, func(ctx context.Context) (models.EnvironmentRead, error) {
		var out models.EnvironmentRead
		if err := a.ensureAccessLevel(ctx, ContextProject); err != nil {
			return out, err
		}
		err := a.post(ctx, a.envsPath(), environment, &out)
		return out, err
	})
}

func (a *EnvironmentsAsync) Update(ctx context.Context, environmentKey string, environment models.EnvironmentUpdate) *futures.Future[models.EnvironmentRead] {
	return futures.Go(a.runner, ctx, func(ctx context.Context) (models.EnvironmentRead, error) {
		var out models.EnvironmentRead
		if err := a.ensureAccessLevel(ctx, ContextProject); err != nil {
			return out, err
		}
		err := a.patch(ctx, a.envsPath(environmentKey), environment, &out)
		return out, err
	})
}

func (a *EnvironmentsAsync) Delete(ctx context.Context, environmentKey string) *futures.Future[struct{}] {
	return futures.Go(a.runner, ctx, func(ctx context.Context) (struct{}, error) {
		if err := a.ensureAccessLevel(ctx, ContextProject); err != nil {
			return struct{}{}, err
		}
		return struct{}{}, a.delete(ctx, a.envsPath(environmentKey), nil)
	})
}

// Environments is the blocking facade over EnvironmentsAsync.
type Environments struct {
	async *EnvironmentsAsync
}

// Async returns the future-based form of this API.
func (a *Environments) Async() *EnvironmentsAsync {
	return a.async
}

func (a *Environments) List(ctx context.Context, page, perPage int) ([]models.EnvironmentRead, error) {
	return a.async.List(ctx, page, perPage).Await(ctx)
}

func (a *Environments) Get(ctx context.Context, environmentKey string) (models.EnvironmentRead, error) {
	return a.async.Get(ctx, environmentKey).Await(ctx)
}

func (a *Environments) Create(ctx context.Context, environment models.EnvironmentCreate) (models.EnvironmentRead, error) {
	return a.async.Create(ctx, environment).Await(ctx)
}

func (a *Environments) Update(ctx context.Context, environmentKey string, environment models.EnvironmentUpdate) (models.EnvironmentRead, error) {
	return a.async.Update(ctx, environmentKey, environment).Await(ctx)
}

func (a *Environments) Delete(ctx context.Context, environmentKey string) error {
	_, err := a.async.Delete(ctx, environmentKey).Await(ctx)
	return err
}
