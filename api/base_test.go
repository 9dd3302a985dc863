package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/pitabwire/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/permitio/permit-go/client"
	"github.com/permitio/permit-go/config"
	"github.com/permitio/permit-go/futures"
	"github.com/permitio/permit-go/models"
)

// scopeHandler serves the api key scope endpoint and counts how many times it
// was hit, delegating everything else to next.
type scopeHandler struct {
	scope models.APIKeyScope
	calls atomic.Int64
	next  http.Handler
}

func (h *scopeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path == scopeEndpointPath {
		h.calls.Add(1)
		writeJSON(w, http.StatusOK, h.scope)
		return
	}
	if h.next != nil {
		h.next.ServeHTTP(w, r)
		return
	}
	http.NotFound(w, r)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func newTestAPI(t *testing.T, handler http.Handler) *PermitAPI {
	t.Helper()
	ctx := context.Background()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	runner, err := futures.NewRunner()
	require.NoError(t, err)
	t.Cleanup(runner.Shutdown)

	cfg := config.Defaults()
	cfg.Token = "secret-token"
	cfg.APIURL = srv.URL

	return New(cfg, client.NewManager(ctx), runner, util.NewLogger(ctx, util.WithLogNoColor(true)))
}

func TestScopeResolvedExactlyOnceUnderConcurrency(t *testing.T) {
	ctx := context.Background()

	var listCalls atomic.Int64
	scope := &scopeHandler{
		scope: models.APIKeyScope{OrganizationID: "org-1", ProjectID: "proj-1", EnvironmentID: "env-1"},
		next: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			listCalls.Add(1)
			writeJSON(w, http.StatusOK, []models.ResourceRead{})
		}),
	}
	p := newTestAPI(t, scope)

	const goroutines = 10
	var wg sync.WaitGroup
	errs := make([]error, goroutines)
	for i := range goroutines {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = p.Resources.List(ctx, 1, 100)
		}()
	}
	wg.Wait()

	for _, err := range errs {
		require.NoError(t, err)
	}
	assert.Equal(t, int64(1), scope.calls.Load(), "scope must be fetched exactly once")
	assert.Equal(t, int64(goroutines), listCalls.Load())
}

func TestScopeResolutionFailureIsRetriedNextCall(t *testing.T) {
	ctx := context.Background()

	var attempts atomic.Int64
	mux := http.NewServeMux()
	mux.HandleFunc(scopeEndpointPath, func(w http.ResponseWriter, r *http.Request) {
		if attempts.Add(1) == 1 {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"detail": "warming up"})
			return
		}
		writeJSON(w, http.StatusOK, models.APIKeyScope{
			OrganizationID: "org-1", ProjectID: "proj-1", EnvironmentID: "env-1",
		})
	})
	mux.HandleFunc("/v2/schema/proj-1/env-1/resources", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, []models.ResourceRead{})
	})
	p := newTestAPI(t, mux)

	_, err := p.Resources.List(ctx, 1, 100)
	apiErr, ok := AsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusServiceUnavailable, apiErr.StatusCode)

	// A failed bootstrap is not cached; the next call resolves and succeeds.
	_, err = p.Resources.List(ctx, 1, 100)
	require.NoError(t, err)
	assert.Equal(t, int64(2), attempts.Load())
}

func TestScopeWithoutOrganizationIsRejected(t *testing.T) {
	ctx := context.Background()

	p := newTestAPI(t, &scopeHandler{scope: models.APIKeyScope{}})

	_, err := p.Projects.List(ctx, 1, 100)
	ctxErr, ok := AsContextError(err)
	require.True(t, ok)
	assert.Equal(t, AccessLevelWaitForInit, ctxErr.CredentialLevel)
}

func TestGateBlocksBeforeAnyEntityRequest(t *testing.T) {
	ctx := context.Background()

	var entityCalls atomic.Int64
	scope := &scopeHandler{
		scope: models.APIKeyScope{OrganizationID: "org-1"},
		next: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			entityCalls.Add(1)
			writeJSON(w, http.StatusOK, []models.ResourceRead{})
		}),
	}
	p := newTestAPI(t, scope)

	_, err := p.Resources.List(ctx, 1, 100)
	ctxErr, ok := AsContextError(err)
	require.True(t, ok)
	assert.Equal(t, ContextEnvironment, ctxErr.RequiredLevel)
	assert.Equal(t, AccessLevelOrganization, ctxErr.CredentialLevel)
	assert.Zero(t, entityCalls.Load(), "a gated operation must never reach the network")

	// Narrowing the same client unblocks the operation.
	require.NoError(t, p.SetEnvironmentLevelContext(ctx, "org-1", "proj-9", "env-9"))
	_, err = p.Resources.List(ctx, 1, 100)
	require.NoError(t, err)
	assert.Equal(t, int64(1), entityCalls.Load())
}

func TestRequestsCarryBearerTokenAndScopedPaths(t *testing.T) {
	ctx := context.Background()

	type seen struct {
		method, path, auth string
	}
	var mu sync.Mutex
	var requests []seen

	scope := &scopeHandler{
		scope: models.APIKeyScope{OrganizationID: "org-1", ProjectID: "proj-1", EnvironmentID: "env-1"},
		next: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			mu.Lock()
			requests = append(requests, seen{r.Method, r.URL.Path, r.Header.Get("Authorization")})
			mu.Unlock()
			writeJSON(w, http.StatusOK, models.ResourceRead{Key: "document"})
		}),
	}
	p := newTestAPI(t, scope)

	_, err := p.Resources.Get(ctx, "document")
	require.NoError(t, err)
	_, err = p.Tenants.Create(ctx, models.TenantCreate{Key: "acme"})
	require.NoError(t, err)
	err = p.Roles.Delete(ctx, "viewer")
	require.NoError(t, err)

	require.Len(t, requests, 3)
	assert.Equal(t, seen{http.MethodGet, "/v2/schema/proj-1/env-1/resources/document", "bearer secret-token"}, requests[0])
	assert.Equal(t, seen{http.MethodPost, "/v2/facts/proj-1/env-1/tenants", "bearer secret-token"}, requests[1])
	assert.Equal(t, seen{http.MethodDelete, "/v2/schema/proj-1/env-1/roles/viewer", "bearer secret-token"}, requests[2])
}

func TestPageQueryClampsArguments(t *testing.T) {
	assert.Equal(t, "?page=1&per_page=100", pageQuery(0, 0))
	assert.Equal(t, "?page=3&per_page=25", pageQuery(3, 25))
	assert.Equal(t, "?page=1&per_page=100", pageQuery(1, 500))
}
