package api

import (
	"context"
	"net/url"

	"github.com/permitio/permit-go/futures"
	"github.com/permitio/permit-go/models"
)

// ProjectsAsync manages the projects under the api key's organization.
// Project operations need only an organization-level context.
type ProjectsAsync struct {
	*base
}

func (a *ProjectsAsync) List(ctx context.Context, page, perPage int) *futures.Future[[]models.ProjectRead] {
	return futures.Go(a.runner, ctx, func(ctx context.Context) ([]models.ProjectRead, error) {
		if err := a.ensureAccessLevel(ctx, ContextOrganization); err != nil {
			return nil, err
		}
		var out []models.ProjectRead
		err := a.get(ctx, "/v2/projects"+pageQuery(page, perPage), &out)
		return out, err
	})
}

func (a *ProjectsAsync) Get(ctx context.Context, projectKey string) *futures.Future[models.ProjectRead] {
	return futures.Go(a.runner, ctx, func(ctx context.Context) (models.ProjectRead, error) {
		var out models.ProjectRead
		if err := a.ensureAccessLevel(ctx, ContextOrganization); err != nil {
			return out, err
		}
		err := a.get(ctx, "/v2/projects/"+url.PathEscape(projectKey), &out)
		return out, err
	})
}

func (a *ProjectsAsync) Create(ctx context.Context, project models.ProjectCreate) *futures.Future[models.ProjectRead] {
	return futures.Go(a.runner, ctx, func(ctx context.Context) (models.ProjectRead, error) {
		var out models.ProjectRead
		if err := a.ensureAccessLevel(ctx, ContextOrganization); err != nil {
			return out, err
		}
		err := a.post(ctx, "/v2/projects", project, &out)
		return out, err
	})
}

func (a *ProjectsAsync) Update(ctx context.Context, projectKey string, project models.ProjectUpdate) *futures.Future[models.ProjectRead] {
	return futures.Go(a.runner, ctx, func(ctx context.Context) (models.ProjectRead, error) {
		var out models.ProjectRead
		if err := a.ensureAccessLevel(ctx, ContextOrganization); err != nil {
			return out, err
		}
		err := a.patch(ctx, "/v2/projects/"+url.PathEscape(projectKey), project, &out)
		return out, err
	})
}

func (a *ProjectsAsync) Delete(ctx context.Context, projectKey string) *futures.Future[struct{}] {
	return futures.Go(a.runner, ctx, func(ctx context.Context) (struct{}, error) {
		if err := a.ensureAccessLevel(ctx, ContextOrganization); err != nil {
			return struct{}{}, err
		}
		return struct{}{}, a.delete(ctx, "/v2/projects/"+url.PathEscape(projectKey), nil)
	})
}

// Projects is the blocking facade over ProjectsAsync.
type Projects struct {
	async *ProjectsAsync
}

// Async returns the future-based form of this API.
func (a *Projects) Async() *ProjectsAsync {
	return a.async
}

func (a *Projects) List(ctx context.Context, page, perPage int) ([]models.ProjectRead, error) {
	return a.async.List(ctx, page, perPage).Await(ctx)
}

func (a *Projects) Get(ctx context.Context, projectKey string) (models.ProjectRead, error) {
	return a.async.Get(ctx, projectKey).Await(ctx)
}

func (a *Projects) Create(ctx context.Context, project models.ProjectCreate) (models.ProjectRead, error) {
	return a.async.Create(ctx, project).Await(ctx)
}

func (a *Projects) Update(ctx context.Context, projectKey string, project models.ProjectUpdate) (models.ProjectRead, error) {
	return a.async.Update(ctx, projectKey, project).Await(ctx)
}

func (a *Projects) Delete(ctx context.Context, projectKey string) error {
	_, err := a.async.Delete(ctx, projectKey).Await(ctx)
	return err
}
