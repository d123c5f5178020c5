package rbac

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// Role is the coarse-grained actor category carried by an identity.
type Role string

// Known roles. RoleNone is the baseline after logout and grants nothing.
const (
	RoleNone       Role = ""
	RoleAdmin      Role = "admin"
	RoleSuperAdmin Role = "superadmin"
	RoleManager    Role = "manager"
	RoleWaiter     Role = "waiter"
	RoleCashier    Role = "cashier"
	RoleUser       Role = "user"
)

var knownRoles = map[Role]struct{}{
	RoleAdmin:      {},
	RoleSuperAdmin: {},
	RoleManager:    {},
	RoleWaiter:     {},
	RoleCashier:    {},
	RoleUser:       {},
}

// ParseRole validates a role tag.
func ParseRole(raw string) (Role, error) {
	role := Role(strings.TrimSpace(raw))
	if _, ok := knownRoles[role]; !ok {
		return RoleNone, fmt.Errorf("%w: %q", ErrUnknownRole, raw)
	}
	return role, nil
}

// IsWildcard reports whether the role passes every permission check.
func (r Role) IsWildcard() bool {
	return r == RoleAdmin || r == RoleSuperAdmin
}

// Permission is a named capability. Names are compared by exact,
// case-sensitive equality.
type Permission string

// ParsePermission validates a capability name against the catalogue.
func ParsePermission(raw string) (Permission, error) {
	p := Permission(raw)
	if _, ok := permissionIndex[p]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownPermission, raw)
	}
	return p, nil
}

// MustPermission is ParsePermission for static declarations.
func MustPermission(raw string) Permission {
	p, err := ParsePermission(raw)
	if err != nil {
		panic(err)
	}
	return p
}

// PermissionSet is an unordered set of capabilities.
type PermissionSet map[Permission]struct{}

// NewPermissionSet builds a set from the given permissions.
func NewPermissionSet(perms ...Permission) PermissionSet {
	set := make(PermissionSet, len(perms))
	for _, p := range perms {
		set[p] = struct{}{}
	}
	return set
}

// ParsePermissionSet builds a set from raw names, rejecting unknown ones.
func ParsePermissionSet(names []string) (PermissionSet, error) {
	set := make(PermissionSet, len(names))
	for _, name := range names {
		p, err := ParsePermission(name)
		if err != nil {
			return nil, err
		}
		set[p] = struct{}{}
	}
	return set, nil
}

// Has reports whether p is in the set.
func (s PermissionSet) Has(p Permission) bool {
	_, ok := s[p]
	return ok
}

// ContainsAll reports whether every permission of required is in s.
func (s PermissionSet) ContainsAll(required PermissionSet) bool {
	for p := range required {
		if !s.Has(p) {
			return false
		}
	}
	return true
}

// Clone returns an independent copy.
func (s PermissionSet) Clone() PermissionSet {
	out := make(PermissionSet, len(s))
	for p := range s {
		out[p] = struct{}{}
	}
	return out
}

// Sorted returns the permissions in lexical order.
func (s PermissionSet) Sorted() []Permission {
	out := make([]Permission, 0, len(s))
	for p := range s {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Strings returns the sorted permission names.
func (s PermissionSet) Strings() []string {
	sorted := s.Sorted()
	out := make([]string, len(sorted))
	for i, p := range sorted {
		out[i] = string(p)
	}
	return out
}

// MarshalJSON encodes the set as a sorted array of names.
func (s PermissionSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Strings())
}

// UnmarshalJSON decodes an array of names. Unknown names are kept so that a
// server-side catalogue ahead of this build never silently widens access;
// they simply never match a known requirement.
func (s *PermissionSet) UnmarshalJSON(data []byte) error {
	var names []string
	if err := json.Unmarshal(data, &names); err != nil {
		return err
	}
	set := make(PermissionSet, len(names))
	for _, name := range names {
		set[Permission(name)] = struct{}{}
	}
	*s = set
	return nil
}

// Identity describes the authenticated actor.
type Identity struct {
	UserID       string        `json:"userId"`
	Role         Role          `json:"role"`
	Permissions  PermissionSet `json:"permissions"`
	RestaurantID string        `json:"restaurantId,omitempty"`
	CategoryID   string        `json:"categoryId,omitempty"`
	UserName     string        `json:"userName,omitempty"`
	UserEmail    string        `json:"userEmail,omitempty"`
	Username     string        `json:"username,omitempty"`
}

// Resolved reports whether both user and role are known.
func (i Identity) Resolved() bool {
	return i.UserID != "" && i.Role != RoleNone
}

// Allows reports whether the identity satisfies every required permission.
func (i Identity) Allows(required PermissionSet) bool {
	if i.Role.IsWildcard() {
		return true
	}
	if len(required) == 0 {
		return true
	}
	return i.Permissions.ContainsAll(required)
}

// Clone returns a deep copy.
func (i Identity) Clone() Identity {
	out := i
	out.Permissions = i.Permissions.Clone()
	return out
}

// RoleDefinition describes which permissions a role may be granted. It does
// not grant them.
type RoleDefinition struct {
	Role               Role
	Label              string
	Description        string
	AllowedPermissions PermissionSet
}
