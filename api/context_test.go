package api

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/permitio/permit-go/models"
)

func orgScope() models.APIKeyScope {
	return models.APIKeyScope{OrganizationID: "org-1"}
}

func projectScope() models.APIKeyScope {
	return models.APIKeyScope{OrganizationID: "org-1", ProjectID: "proj-1"}
}

func environmentScope() models.APIKeyScope {
	return models.APIKeyScope{OrganizationID: "org-1", ProjectID: "proj-1", EnvironmentID: "env-1"}
}

func TestSavePermittedScopeDerivesKeyLevel(t *testing.T) {
	testCases := []struct {
		name      string
		scope     models.APIKeyScope
		keyLevel  AccessLevel
		level     ContextLevel
		project   string
		environ   string
	}{
		{
			name:     "organization key",
			scope:    orgScope(),
			keyLevel: AccessLevelOrganization,
			level:    ContextOrganization,
		},
		{
			name:     "project key",
			scope:    projectScope(),
			keyLevel: AccessLevelProject,
			level:    ContextProject,
			project:  "proj-1",
		},
		{
			name:     "environment key",
			scope:    environmentScope(),
			keyLevel: AccessLevelEnvironment,
			level:    ContextEnvironment,
			project:  "proj-1",
			environ:  "env-1",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			pctx := NewAPIContext()
			assert.False(t, pctx.Resolved())
			assert.Equal(t, AccessLevelWaitForInit, pctx.KeyLevel())

			pctx.SavePermittedScope(tc.scope)

			assert.True(t, pctx.Resolved())
			assert.Equal(t, tc.keyLevel, pctx.KeyLevel())
			assert.Equal(t, tc.level, pctx.Level())
			assert.Equal(t, "org-1", pctx.Organization())
			assert.Equal(t, tc.project, pctx.Project())
			assert.Equal(t, tc.environ, pctx.Environment())
		})
	}
}

func TestSavePermittedScopeIsWriteOnce(t *testing.T) {
	pctx := NewAPIContext()
	pctx.SavePermittedScope(environmentScope())

	pctx.SavePermittedScope(models.APIKeyScope{OrganizationID: "org-2"})

	assert.Equal(t, AccessLevelEnvironment, pctx.KeyLevel())
	assert.Equal(t, "org-1", pctx.Organization())
	assert.Equal(t, "env-1", pctx.Environment())
}

func TestSetContextBeforeResolutionFails(t *testing.T) {
	pctx := NewAPIContext()

	err := pctx.SetOrganizationLevelContext("org-1")
	require.Error(t, err)

	err = pctx.SetEnvironmentLevelContext("org-1", "proj-1", "env-1")
	require.Error(t, err)
}

func TestOrganizationKeyMayNarrowToAnyEnvironment(t *testing.T) {
	pctx := NewAPIContext()
	pctx.SavePermittedScope(orgScope())

	require.NoError(t, pctx.SetProjectLevelContext("org-1", "proj-a"))
	assert.Equal(t, ContextProject, pctx.Level())
	assert.Equal(t, "proj-a", pctx.Project())

	require.NoError(t, pctx.SetEnvironmentLevelContext("org-1", "proj-b", "env-b"))
	assert.Equal(t, ContextEnvironment, pctx.Level())
	assert.Equal(t, "proj-b", pctx.Project())
	assert.Equal(t, "env-b", pctx.Environment())
}

func TestNarrowingToBroaderLevelClearsSelection(t *testing.T) {
	pctx := NewAPIContext()
	pctx.SavePermittedScope(orgScope())

	require.NoError(t, pctx.SetEnvironmentLevelContext("org-1", "proj-a", "env-a"))
	require.NoError(t, pctx.SetProjectLevelContext("org-1", "proj-b"))

	assert.Equal(t, ContextProject, pctx.Level())
	assert.Equal(t, "proj-b", pctx.Project())
	assert.Empty(t, pctx.Environment())

	require.NoError(t, pctx.SetOrganizationLevelContext("org-1"))
	assert.Equal(t, ContextOrganization, pctx.Level())
	assert.Empty(t, pctx.Project())
	assert.Empty(t, pctx.Environment())
}

func TestNarrowingOutsidePermittedScopeFails(t *testing.T) {
	t.Run("wrong organization", func(t *testing.T) {
		pctx := NewAPIContext()
		pctx.SavePermittedScope(orgScope())

		err := pctx.SetOrganizationLevelContext("org-2")
		chErr, ok := AsContextChangeError(err)
		require.True(t, ok)
		assert.Equal(t, "organization", chErr.Field)
		assert.Equal(t, "org-2", chErr.Value)
	})

	t.Run("project key cannot switch project", func(t *testing.T) {
		pctx := NewAPIContext()
		pctx.SavePermittedScope(projectScope())

		err := pctx.SetProjectLevelContext("org-1", "proj-2")
		chErr, ok := AsContextChangeError(err)
		require.True(t, ok)
		assert.Equal(t, "project", chErr.Field)

		// The permitted project itself is always re-selectable.
		require.NoError(t, pctx.SetProjectLevelContext("org-1", "proj-1"))
	})

	t.Run("environment key cannot switch environment", func(t *testing.T) {
		pctx := NewAPIContext()
		pctx.SavePermittedScope(environmentScope())

		err := pctx.SetEnvironmentLevelContext("org-1", "proj-1", "env-2")
		chErr, ok := AsContextChangeError(err)
		require.True(t, ok)
		assert.Equal(t, "environment", chErr.Field)

		require.NoError(t, pctx.SetEnvironmentLevelContext("org-1", "proj-1", "env-1"))
	})

	t.Run("failed narrowing leaves context untouched", func(t *testing.T) {
		pctx := NewAPIContext()
		pctx.SavePermittedScope(environmentScope())

		require.Error(t, pctx.SetEnvironmentLevelContext("org-1", "proj-1", "env-2"))
		assert.Equal(t, "env-1", pctx.Environment())
		assert.Equal(t, ContextEnvironment, pctx.Level())
	})
}

func TestEnsureLevel(t *testing.T) {
	t.Run("environment key satisfies every level", func(t *testing.T) {
		pctx := NewAPIContext()
		pctx.SavePermittedScope(environmentScope())

		assert.NoError(t, pctx.EnsureLevel(ContextOrganization))
		assert.NoError(t, pctx.EnsureLevel(ContextProject))
		assert.NoError(t, pctx.EnsureLevel(ContextEnvironment))
	})

	t.Run("organization key blocks environment operations", func(t *testing.T) {
		pctx := NewAPIContext()
		pctx.SavePermittedScope(orgScope())

		assert.NoError(t, pctx.EnsureLevel(ContextOrganization))

		err := pctx.EnsureLevel(ContextEnvironment)
		ctxErr, ok := AsContextError(err)
		require.True(t, ok)
		assert.Equal(t, ContextEnvironment, ctxErr.RequiredLevel)
		assert.Equal(t, AccessLevelOrganization, ctxErr.CredentialLevel)
		assert.Contains(t, ctxErr.Error(), "ENVIRONMENT_LEVEL_API_KEY")
		assert.Contains(t, ctxErr.Error(), "ORGANIZATION_LEVEL_API_KEY")
		assert.Contains(t, ctxErr.Error(), "SetEnvironmentLevelContext")
	})

	t.Run("narrowed organization key passes the gate", func(t *testing.T) {
		pctx := NewAPIContext()
		pctx.SavePermittedScope(orgScope())
		require.NoError(t, pctx.SetEnvironmentLevelContext("org-1", "proj-a", "env-a"))

		assert.NoError(t, pctx.EnsureLevel(ContextEnvironment))
	})

	t.Run("unresolved context blocks everything", func(t *testing.T) {
		pctx := NewAPIContext()

		err := pctx.EnsureLevel(ContextOrganization)
		ctxErr, ok := AsContextError(err)
		require.True(t, ok)
		assert.Equal(t, AccessLevelWaitForInit, ctxErr.CredentialLevel)
	})
}

func TestLevelStrings(t *testing.T) {
	assert.Equal(t, "WAIT_FOR_INIT", AccessLevelWaitForInit.String())
	assert.Equal(t, "ORGANIZATION_LEVEL_API_KEY", AccessLevelOrganization.String())
	assert.Equal(t, "PROJECT_LEVEL_API_KEY", AccessLevelProject.String())
	assert.Equal(t, "ENVIRONMENT_LEVEL_API_KEY", AccessLevelEnvironment.String())

	assert.Equal(t, "ORGANIZATION", ContextOrganization.String())
	assert.Equal(t, AccessLevelEnvironment, ContextEnvironment.KeyLevel())
}
