package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinisys/backoffice/internal/registry"
	apperrors "github.com/clinisys/backoffice/pkg/errors"
)

func TestDoctorScopeDeniesIdentityTables(t *testing.T) {
	engine := NewEngine(registry.Clinical())

	scope, err := engine.ScopeFor(Principal{ID: 7, Role: RoleDoctor})
	require.NoError(t, err)

	for _, denied := range []string{
		registry.Patients, registry.Aliases,
		registry.EncryptionKeys, registry.ActionLogs,
	} {
		assert.False(t, scope.CanSee(denied), "doctor must not see %s", denied)
		assert.NotContains(t, scope.VisibleFields, denied)
	}

	assert.True(t, scope.CanSee(registry.Visits))
	assert.True(t, scope.CanSee(registry.SystemUsers))
	assert.False(t, scope.Writable)
	assert.Equal(t, "backoffice_doctor", scope.DBRole)
}

func TestDoctorScopeHidesSensitiveFields(t *testing.T) {
	engine := NewEngine(registry.Clinical())

	scope, err := engine.ScopeFor(Principal{ID: 7, Role: RoleDoctor})
	require.NoError(t, err)

	assert.NotContains(t, scope.Fields(registry.SystemUsers), "hashed_password")
}

func TestAdminScopeSeesEverything(t *testing.T) {
	reg := registry.Clinical()
	engine := NewEngine(reg)

	scope, err := engine.ScopeFor(Principal{ID: 1, Role: RoleAdmin})
	require.NoError(t, err)

	assert.Equal(t, reg.All(), scope.VisibleEntities)
	assert.True(t, scope.Writable)
	assert.Equal(t, "backoffice_admin", scope.DBRole)

	// Sensitive fields stay visible to admins, matching the table browser.
	assert.Contains(t, scope.Fields(registry.SystemUsers), "hashed_password")
	assert.Contains(t, scope.Fields(registry.EncryptionKeys), "key_material")
}

func TestFieldProjectionPreservesDeclaredOrder(t *testing.T) {
	reg := registry.Clinical()
	engine := NewEngine(reg)

	scope, err := engine.ScopeFor(Principal{ID: 1, Role: RoleAdmin})
	require.NoError(t, err)

	visits, err := reg.Describe(registry.Visits)
	require.NoError(t, err)
	assert.Equal(t, visits.FieldNames(), scope.Fields(registry.Visits))
}

func TestUnknownRoleFailsClosed(t *testing.T) {
	engine := NewEngine(registry.Clinical())

	scope, err := engine.ScopeFor(Principal{ID: 3, Role: Role("intern")})
	require.Error(t, err)
	assert.Nil(t, scope, "no partial scope may escape on an unknown role")
	assert.True(t, apperrors.Is(err, apperrors.ErrUnknownRole))
}
