package assignment_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AgarwalVaibhav-20/dq-frontend-sub001/internal/assignment"
	"github.com/AgarwalVaibhav-20/dq-frontend-sub001/internal/rbac"
)

func cashierDefinition() rbac.RoleDefinition {
	return rbac.RoleDefinition{
		Role:               rbac.RoleCashier,
		Label:              "Cashier",
		AllowedPermissions: rbac.NewPermissionSet(rbac.PermOrders, rbac.PermDues, rbac.PermPOS),
	}
}

func TestConfirmationStartsUnchecked(t *testing.T) {
	conf := assignment.NewConfirmation(cashierDefinition())
	opts := conf.Options()
	require.Len(t, opts, 3)
	// Catalogue order, not insertion order.
	assert.Equal(t, []rbac.Permission{rbac.PermOrders, rbac.PermPOS, rbac.PermDues},
		[]rbac.Permission{opts[0].Permission, opts[1].Permission, opts[2].Permission})
	for _, o := range opts {
		assert.False(t, o.Checked)
	}
	assert.False(t, conf.Acknowledged())
	assert.False(t, conf.CanConfirm())
}

func TestConfirmRequiresAcknowledgementAndPermission(t *testing.T) {
	ackOnly := assignment.NewConfirmation(cashierDefinition())
	ackOnly.Acknowledge(true)
	assert.False(t, ackOnly.CanConfirm())

	permOnly := assignment.NewConfirmation(cashierDefinition())
	require.NoError(t, permOnly.Toggle(rbac.PermOrders))
	assert.False(t, permOnly.CanConfirm())

	both := assignment.NewConfirmation(cashierDefinition())
	require.NoError(t, both.Toggle(rbac.PermOrders))
	both.Acknowledge(true)
	assert.True(t, both.CanConfirm())

	require.NoError(t, both.Toggle(rbac.PermOrders))
	assert.False(t, both.CanConfirm())
}

func TestConfirmationRejectsPermissionsOutsideRole(t *testing.T) {
	conf := assignment.NewConfirmation(cashierDefinition())
	err := conf.SetChecked(rbac.PermLicense, true)
	require.ErrorIs(t, err, assignment.ErrPermissionNotAllowed)
	assert.Empty(t, conf.Selected())
}

func TestSelectedIsACopy(t *testing.T) {
	conf := assignment.NewConfirmation(cashierDefinition())
	require.NoError(t, conf.SetChecked(rbac.PermDues, true))
	sel := conf.Selected()
	delete(sel, rbac.PermDues)
	assert.True(t, conf.Selected().Has(rbac.PermDues))
}
