package api

import (
	"context"
	"net/http"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/permitio/permit-go/models"
)

func TestProjectsCRUD(t *testing.T) {
	ctx := context.Background()

	mux := http.NewServeMux()
	mux.HandleFunc("GET /v2/projects", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "1", r.URL.Query().Get("page"))
		writeJSON(w, http.StatusOK, []models.ProjectRead{{Key: "web"}, {Key: "mobile"}})
	})
	mux.HandleFunc("GET /v2/projects/web", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, models.ProjectRead{Key: "web", Name: "Web App"})
	})
	mux.HandleFunc("POST /v2/projects", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, models.ProjectRead{Key: "api"})
	})
	mux.HandleFunc("PATCH /v2/projects/web", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, models.ProjectRead{Key: "web", Name: "Renamed"})
	})
	mux.HandleFunc("DELETE /v2/projects/web", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	p := newTestAPI(t, &scopeHandler{scope: models.APIKeyScope{OrganizationID: "org-1"}, next: mux})

	list, err := p.Projects.List(ctx, 1, 100)
	require.NoError(t, err)
	assert.Len(t, list, 2)

	got, err := p.Projects.Get(ctx, "web")
	require.NoError(t, err)
	assert.Equal(t, "Web App", got.Name)

	created, err := p.Projects.Create(ctx, models.ProjectCreate{Key: "api", Name: "API"})
	require.NoError(t, err)
	assert.Equal(t, "api", created.Key)

	newName := "Renamed"
	updated, err := p.Projects.Update(ctx, "web", models.ProjectUpdate{Name: &newName})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Name)

	require.NoError(t, p.Projects.Delete(ctx, "web"))
}

func TestProjectsAPIErrorMapping(t *testing.T) {
	ctx := context.Background()

	mux := http.NewServeMux()
	mux.HandleFunc("GET /v2/projects/missing", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "project not found"})
	})
	mux.HandleFunc("POST /v2/projects", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"detail": "key is invalid"})
	})

	p := newTestAPI(t, &scopeHandler{scope: models.APIKeyScope{OrganizationID: "org-1"}, next: mux})

	_, err := p.Projects.Get(ctx, "missing")
	apiErr, ok := AsAPIError(err)
	require.True(t, ok)
	assert.True(t, apiErr.NotFound())
	assert.Contains(t, string(apiErr.Body), "project not found")

	_, err = p.Projects.Create(ctx, models.ProjectCreate{Key: "!!"})
	apiErr, ok = AsAPIError(err)
	require.True(t, ok)
	assert.True(t, apiErr.ValidationFailed())
}

func TestProjectsSyncFacadeIsSafeForConcurrentUse(t *testing.T) {
	ctx := context.Background()

	mux := http.NewServeMux()
	mux.HandleFunc("GET /v2/projects", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, []models.ProjectRead{{Key: "web"}})
	})
	p := newTestAPI(t, &scopeHandler{scope: models.APIKeyScope{OrganizationID: "org-1"}, next: mux})

	const goroutines = 10
	var wg sync.WaitGroup
	results := make([][]models.ProjectRead, goroutines)
	errs := make([]error, goroutines)
	for i := range goroutines {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i], errs[i] = p.Projects.List(ctx, 1, 100)
		}()
	}
	wg.Wait()

	for i := range goroutines {
		require.NoError(t, errs[i])
		require.Len(t, results[i], 1)
		assert.Equal(t, "web", results[i][0].Key)
	}
}

func TestProjectsAsyncFutures(t *testing.T) {
	ctx := context.Background()

	mux := http.NewServeMux()
	mux.HandleFunc("GET /v2/projects", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, []models.ProjectRead{{Key: "web"}})
	})
	p := newTestAPI(t, &scopeHandler{scope: models.APIKeyScope{OrganizationID: "org-1"}, next: mux})

	f := p.Projects.Async().List(ctx, 1, 100)
	assert.NotEmpty(t, f.ID())

	<-f.Done()
	list, err := f.Await(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	// Awaiting the same future again observes the same result.
	again, err := f.Await(ctx)
	require.NoError(t, err)
	assert.Equal(t, list, again)
}

func TestEnvironmentsRequireProjectContext(t *testing.T) {
	ctx := context.Background()

	mux := http.NewServeMux()
	mux.HandleFunc("GET /v2/projects/proj-1/envs", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, []models.EnvironmentRead{{Key: "prod"}})
	})
	p := newTestAPI(t, &scopeHandler{scope: models.APIKeyScope{OrganizationID: "org-1"}, next: mux})

	_, err := p.Environments.List(ctx, 1, 100)
	ctxErr, ok := AsContextError(err)
	require.True(t, ok)
	assert.Equal(t, ContextProject, ctxErr.RequiredLevel)

	require.NoError(t, p.SetProjectLevelContext(ctx, "org-1", "proj-1"))
	envs, err := p.Environments.List(ctx, 1, 100)
	require.NoError(t, err)
	require.Len(t, envs, 1)
	assert.Equal(t, "prod", envs[0].Key)
}
