package roles

import (
	"github.com/AgarwalVaibhav-20/dq-frontend-sub001/internal/assignment"
	"github.com/AgarwalVaibhav-20/dq-frontend-sub001/internal/rbac"
)

// Role is a catalogue entry as shown on the role picker.
type Role struct {
	Role               rbac.Role         `json:"role"`
	Label              string            `json:"label"`
	Description        string            `json:"description,omitempty"`
	AllowedPermissions []rbac.Permission `json:"allowedPermissions"`
	Wildcard           bool              `json:"wildcard"`
}

// ConfirmationView is the initial state of the confirm step for a role.
type ConfirmationView struct {
	Role         rbac.Role           `json:"role"`
	Label        string              `json:"label"`
	Options      []assignment.Option `json:"options"`
	Acknowledged bool                `json:"acknowledged"`
	CanConfirm   bool                `json:"canConfirm"`
}
