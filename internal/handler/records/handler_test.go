package records

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinisys/backoffice/internal/middleware"
	"github.com/clinisys/backoffice/internal/policy"
	"github.com/clinisys/backoffice/internal/registry"
)

func scopedContext(t *testing.T, role policy.Role) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/v1/tables", nil)

	scope, err := policy.NewEngine(registry.Clinical()).ScopeFor(policy.Principal{ID: 1, Role: role})
	require.NoError(t, err)
	c.Set(middleware.ContextScope, scope)
	return c, w
}

type tablesResponse struct {
	Success bool `json:"success"`
	Data    struct {
		Writable bool        `json:"writable"`
		Tables   []tableView `json:"tables"`
	} `json:"data"`
}

func TestTablesForDoctor(t *testing.T) {
	reg := registry.Clinical()
	h := NewHandler(reg, nil)

	c, w := scopedContext(t, policy.RoleDoctor)
	h.Tables(c)

	require.Equal(t, http.StatusOK, w.Code)

	var resp tablesResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.False(t, resp.Data.Writable)

	names := make(map[string]tableView, len(resp.Data.Tables))
	for _, view := range resp.Data.Tables {
		names[view.Name] = view
	}

	assert.NotContains(t, names, registry.Patients)
	assert.NotContains(t, names, registry.Aliases)
	assert.NotContains(t, names, registry.EncryptionKeys)
	assert.NotContains(t, names, registry.ActionLogs)
	require.Contains(t, names, registry.Visits)

	// A read-only role sees nothing as creatable or editable.
	visits := names[registry.Visits]
	assert.False(t, visits.Creatable)
	for _, f := range visits.Fields {
		assert.False(t, f.Editable, f.Name)
	}

	// Sensitive credential fields never reach the doctor's field list.
	for _, f := range names[registry.SystemUsers].Fields {
		assert.NotEqual(t, "hashed_password", f.Name)
	}
}

func TestTablesForAdmin(t *testing.T) {
	reg := registry.Clinical()
	h := NewHandler(reg, nil)

	c, w := scopedContext(t, policy.RoleAdmin)
	h.Tables(c)

	require.Equal(t, http.StatusOK, w.Code)

	var resp tablesResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Data.Writable)
	assert.Len(t, resp.Data.Tables, len(reg.All()))

	names := make(map[string]tableView, len(resp.Data.Tables))
	for _, view := range resp.Data.Tables {
		names[view.Name] = view
	}

	assert.True(t, names[registry.Visits].Creatable)
	assert.False(t, names[registry.SystemUsers].Creatable, "accounts are provisioned by the staff service")
	assert.False(t, names[registry.EncryptionKeys].Creatable, "keys only change through rotation")

	// Enum fields carry their member list for rendering.
	var status *fieldView
	for i, f := range names[registry.Visits].Fields {
		if f.Name == "status" {
			status = &names[registry.Visits].Fields[i]
		}
	}
	require.NotNil(t, status)
	assert.Equal(t, registry.VisitStatusValues, status.Enum)
}
