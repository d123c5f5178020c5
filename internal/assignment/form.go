// Package assignment implements the select-then-confirm workflow that changes
// another actor's role and permission set.
package assignment

import (
	"fmt"

	"github.com/AgarwalVaibhav-20/dq-frontend-sub001/internal/rbac"
)

// Option is one permission checkbox of a confirmation.
type Option struct {
	Permission rbac.Permission `json:"permission"`
	Checked    bool            `json:"checked"`
}

// Confirmation is the confirm step for a selected role. Every allowed
// permission starts unchecked, as does the acknowledgement.
type Confirmation struct {
	role         rbac.Role
	label        string
	allowed      []rbac.Permission
	checked      rbac.PermissionSet
	acknowledged bool
}

// NewConfirmation opens the confirm step for def.
func NewConfirmation(def rbac.RoleDefinition) *Confirmation {
	allowed := make([]rbac.Permission, 0, len(def.AllowedPermissions))
	for _, p := range rbac.AllPermissions() {
		if def.AllowedPermissions.Has(p) {
			allowed = append(allowed, p)
		}
	}
	return &Confirmation{
		role:    def.Role,
		label:   def.Label,
		allowed: allowed,
		checked: rbac.NewPermissionSet(),
	}
}

// Role returns the selected role.
func (c *Confirmation) Role() rbac.Role { return c.role }

// Label returns the selected role's display label.
func (c *Confirmation) Label() string { return c.label }

// Options lists the permission checkboxes in catalogue order.
func (c *Confirmation) Options() []Option {
	out := make([]Option, len(c.allowed))
	for i, p := range c.allowed {
		out[i] = Option{Permission: p, Checked: c.checked.Has(p)}
	}
	return out
}

// SetChecked sets one permission checkbox.
func (c *Confirmation) SetChecked(p rbac.Permission, checked bool) error {
	if !c.allows(p) {
		return fmt.Errorf("%w: %q for %q", ErrPermissionNotAllowed, p, c.role)
	}
	if checked {
		c.checked[p] = struct{}{}
	} else {
		delete(c.checked, p)
	}
	return nil
}

// Toggle flips one permission checkbox.
func (c *Confirmation) Toggle(p rbac.Permission) error {
	return c.SetChecked(p, !c.checked.Has(p))
}

// Acknowledge sets the "I acknowledge the new role" checkbox.
func (c *Confirmation) Acknowledge(ack bool) {
	c.acknowledged = ack
}

// Acknowledged reports the acknowledgement checkbox.
func (c *Confirmation) Acknowledged() bool { return c.acknowledged }

// CanConfirm reports whether the confirm action is enabled: the
// acknowledgement and at least one permission must be checked.
func (c *Confirmation) CanConfirm() bool {
	return c.acknowledged && len(c.checked) > 0
}

// Selected returns the checked permissions.
func (c *Confirmation) Selected() rbac.PermissionSet {
	return c.checked.Clone()
}

func (c *Confirmation) allows(p rbac.Permission) bool {
	for _, a := range c.allowed {
		if a == p {
			return true
		}
	}
	return false
}
