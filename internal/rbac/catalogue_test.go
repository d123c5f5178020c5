package rbac_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AgarwalVaibhav-20/dq-frontend-sub001/internal/rbac"
)

func TestDefaultCatalogue(t *testing.T) {
	cat, err := rbac.DefaultCatalogue()
	require.NoError(t, err)

	admin, ok := cat.Definition(rbac.RoleAdmin)
	require.True(t, ok)
	assert.Len(t, admin.AllowedPermissions, len(rbac.AllPermissions()))

	waiter, ok := cat.Definition(rbac.RoleWaiter)
	require.True(t, ok)
	assert.Equal(t, "Waiter", waiter.Label)
	assert.True(t, waiter.AllowedPermissions.Has(rbac.PermPOS))
	assert.False(t, waiter.AllowedPermissions.Has(rbac.PermReports))

	assert.Contains(t, cat.Roles(), rbac.RoleCashier)
	assert.Equal(t, rbac.RoleAdmin, cat.Definitions()[0].Role)
}

func TestCatalogueDefinitionIsACopy(t *testing.T) {
	cat, err := rbac.DefaultCatalogue()
	require.NoError(t, err)
	def, _ := cat.Definition(rbac.RoleWaiter)
	delete(def.AllowedPermissions, rbac.PermPOS)

	again, _ := cat.Definition(rbac.RoleWaiter)
	assert.True(t, again.AllowedPermissions.Has(rbac.PermPOS))
}

func TestParseCatalogueErrors(t *testing.T) {
	_, err := rbac.ParseCatalogue([]byte("roles:\n  - role: chef\n"))
	require.ErrorIs(t, err, rbac.ErrUnknownRole)

	_, err = rbac.ParseCatalogue([]byte("roles:\n  - role: waiter\n    permissions: [Cooking]\n"))
	require.ErrorIs(t, err, rbac.ErrUnknownPermission)

	_, err = rbac.ParseCatalogue([]byte("roles:\n  - role: waiter\n  - role: waiter\n"))
	require.Error(t, err)
}

func TestLoadCatalogueFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "roles.yaml")
	require.NoError(t, os.WriteFile(path, []byte("roles:\n  - role: cashier\n    permissions: [Dues]\n"), 0o600))

	cat, err := rbac.LoadCatalogue(path)
	require.NoError(t, err)
	assert.Equal(t, []rbac.Role{rbac.RoleCashier}, cat.Roles())

	_, err = rbac.LoadCatalogue(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}
