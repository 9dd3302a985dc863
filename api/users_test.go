package api

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/permitio/permit-go/models"
)

func environmentScopedAPI(t *testing.T, mux *http.ServeMux) *PermitAPI {
	t.Helper()
	return newTestAPI(t, &scopeHandler{
		scope: models.APIKeyScope{OrganizationID: "org-1", ProjectID: "proj-1", EnvironmentID: "env-1"},
		next:  mux,
	})
}

func TestUsersGetManyPreservesKeyOrder(t *testing.T) {
	ctx := context.Background()

	mux := http.NewServeMux()
	mux.HandleFunc("GET /v2/facts/proj-1/env-1/users/{key}", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, models.UserRead{Key: r.PathValue("key")})
	})
	p := environmentScopedAPI(t, mux)

	keys := []string{"alice", "bob", "carol", "dave"}
	users, err := p.Users.GetMany(ctx, keys...)
	require.NoError(t, err)
	require.Len(t, users, len(keys))
	for i, key := range keys {
		assert.Equal(t, key, users[i].Key)
	}
}

func TestUsersGetManyStopsOnFirstError(t *testing.T) {
	ctx := context.Background()

	mux := http.NewServeMux()
	mux.HandleFunc("GET /v2/facts/proj-1/env-1/users/{key}", func(w http.ResponseWriter, r *http.Request) {
		if r.PathValue("key") == "ghost" {
			writeJSON(w, http.StatusNotFound, map[string]string{"detail": "user not found"})
			return
		}
		writeJSON(w, http.StatusOK, models.UserRead{Key: r.PathValue("key")})
	})
	p := environmentScopedAPI(t, mux)

	_, err := p.Users.GetMany(ctx, "alice", "ghost", "bob")
	apiErr, ok := AsAPIError(err)
	require.True(t, ok)
	assert.True(t, apiErr.NotFound())
}

func TestUsersSyncUpserts(t *testing.T) {
	ctx := context.Background()

	mux := http.NewServeMux()
	mux.HandleFunc("PUT /v2/facts/proj-1/env-1/users/alice", func(w http.ResponseWriter, r *http.Request) {
		var payload models.UserCreate
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "alice@example.com", payload.Email)
		writeJSON(w, http.StatusOK, models.UserRead{Key: "alice", Email: payload.Email})
	})
	p := environmentScopedAPI(t, mux)

	user, err := p.Users.Sync(ctx, models.UserCreate{Key: "alice", Email: "alice@example.com"})
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Key)
}

func TestUsersRoleGrants(t *testing.T) {
	ctx := context.Background()

	mux := http.NewServeMux()
	mux.HandleFunc("POST /v2/facts/proj-1/env-1/users/alice/roles", func(w http.ResponseWriter, r *http.Request) {
		var payload models.UserRole
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, models.UserRole{Role: "admin", Tenant: "acme"}, payload)
		writeJSON(w, http.StatusOK, models.RoleAssignmentRead{User: "alice", Role: "admin", Tenant: "acme"})
	})
	mux.HandleFunc("DELETE /v2/facts/proj-1/env-1/users/alice/roles", func(w http.ResponseWriter, r *http.Request) {
		var payload models.UserRole
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, models.UserRole{Role: "admin", Tenant: "acme"}, payload)
		w.WriteHeader(http.StatusNoContent)
	})
	p := environmentScopedAPI(t, mux)

	assignment, err := p.Users.AssignRole(ctx, "alice", "admin", "acme")
	require.NoError(t, err)
	assert.Equal(t, "admin", assignment.Role)

	require.NoError(t, p.Users.UnassignRole(ctx, "alice", "admin", "acme"))
}
