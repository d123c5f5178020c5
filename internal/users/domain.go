package users

import (
	"strings"

	"github.com/AgarwalVaibhav-20/dq-frontend-sub001/internal/directory"
	"github.com/AgarwalVaibhav-20/dq-frontend-sub001/internal/rbac"
)

// User is a directory account as shown on the permission screen.
type User = directory.User

// ListFilter narrows the user listing. Zero fields match everything.
type ListFilter struct {
	Role   rbac.Role
	Status string
	Query  string
}

// Match reports whether u passes the filter.
func (f ListFilter) Match(u User) bool {
	if f.Role != rbac.RoleNone && u.Role != f.Role {
		return false
	}
	if f.Status != "" && !strings.EqualFold(u.Status, f.Status) {
		return false
	}
	if q := strings.ToLower(strings.TrimSpace(f.Query)); q != "" {
		for _, field := range []string{u.Name, u.Email, u.Username, u.ID} {
			if strings.Contains(strings.ToLower(field), q) {
				return true
			}
		}
		return false
	}
	return true
}
