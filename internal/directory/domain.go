package directory

import "github.com/AgarwalVaibhav-20/dq-frontend-sub001/internal/rbac"

// User is a directory entry as listed on the permission screen.
type User struct {
	ID           string             `json:"id"`
	Name         string             `json:"name,omitempty"`
	Email        string             `json:"email,omitempty"`
	Username     string             `json:"username,omitempty"`
	Role         rbac.Role          `json:"role"`
	Permissions  rbac.PermissionSet `json:"permissions"`
	Status       string             `json:"status,omitempty"`
	RestaurantID string             `json:"restaurantId,omitempty"`
}

// Profile is the acting user's own profile.
type Profile struct {
	ID           string             `json:"id"`
	Role         rbac.Role          `json:"role"`
	Permissions  rbac.PermissionSet `json:"permissions"`
	RestaurantID string             `json:"restaurantId,omitempty"`
	CategoryID   string             `json:"categoryId,omitempty"`
	Name         string             `json:"name,omitempty"`
	Email        string             `json:"email,omitempty"`
	Username     string             `json:"username,omitempty"`
}

// Identity converts the profile into the store's identity shape.
func (p Profile) Identity() rbac.Identity {
	perms := p.Permissions
	if perms == nil {
		perms = rbac.NewPermissionSet()
	}
	return rbac.Identity{
		UserID:       p.ID,
		Role:         p.Role,
		Permissions:  perms.Clone(),
		RestaurantID: p.RestaurantID,
		CategoryID:   p.CategoryID,
		UserName:     p.Name,
		UserEmail:    p.Email,
		Username:     p.Username,
	}
}

// LoginResult is returned by a successful login.
type LoginResult struct {
	Token string  `json:"token"`
	User  Profile `json:"user"`
}

// RoleUpdate is the body of an update-user-role call.
type RoleUpdate struct {
	Role        rbac.Role          `json:"role"`
	Permissions rbac.PermissionSet `json:"permissions"`
}

// RoleUpdateResult is the updated subset returned by the directory.
type RoleUpdateResult struct {
	ID          string             `json:"id"`
	Role        rbac.Role          `json:"role"`
	Permissions rbac.PermissionSet `json:"permissions"`
}
