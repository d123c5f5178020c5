package authstate

import (
	"encoding/json"
	"fmt"

	"github.com/AgarwalVaibhav-20/dq-frontend-sub001/internal/rbac"
)

// Persisted record keys. Logout clears all of them as one unit.
const (
	KeyAuthToken       = "authToken"
	KeyUserID          = "userId"
	KeyRestaurantID    = "restaurantId"
	KeyCategoryID      = "categoryId"
	KeyUserRole        = "userRole"
	KeyUserPermissions = "userPermissions"
	KeySessionStarted  = "sessionStarted"
	KeyUserName        = "userName"
	KeyUserEmail       = "userEmail"
	KeyUsername        = "username"
)

// RecordKeys lists the full persisted key set.
func RecordKeys() []string {
	return []string{
		KeyAuthToken,
		KeyUserID,
		KeyRestaurantID,
		KeyCategoryID,
		KeyUserRole,
		KeyUserPermissions,
		KeySessionStarted,
		KeyUserName,
		KeyUserEmail,
		KeyUsername,
	}
}

const sessionStartedValue = "true"

// encodeRecord serialises a snapshot into the values to set and the keys to
// remove.
func encodeRecord(snap Snapshot) (map[string]string, []string, error) {
	perms := snap.Identity.Permissions
	if perms == nil {
		perms = rbac.NewPermissionSet()
	}
	encoded, err := json.Marshal(perms)
	if err != nil {
		return nil, nil, fmt.Errorf("authstate: encode permissions: %w", err)
	}
	id := snap.Identity
	fields := map[string]string{
		KeyAuthToken:       snap.Credential,
		KeyUserID:          id.UserID,
		KeyRestaurantID:    id.RestaurantID,
		KeyCategoryID:      id.CategoryID,
		KeyUserRole:        string(id.Role),
		KeyUserPermissions: string(encoded),
		KeyUserName:        id.UserName,
		KeyUserEmail:       id.UserEmail,
		KeyUsername:        id.Username,
	}
	if snap.SessionStarted {
		fields[KeySessionStarted] = sessionStartedValue
	}
	values := make(map[string]string, len(fields))
	var remove []string
	for _, key := range RecordKeys() {
		if v, ok := fields[key]; ok && v != "" {
			values[key] = v
			continue
		}
		remove = append(remove, key)
	}
	return values, remove, nil
}

// decodeRecord rebuilds a snapshot from persisted values. Generation is left
// for the store to assign.
func decodeRecord(values map[string]string) (Snapshot, error) {
	snap := Snapshot{
		Credential:     values[KeyAuthToken],
		SessionStarted: values[KeySessionStarted] == sessionStartedValue,
		Identity: rbac.Identity{
			UserID:       values[KeyUserID],
			Role:         rbac.Role(values[KeyUserRole]),
			RestaurantID: values[KeyRestaurantID],
			CategoryID:   values[KeyCategoryID],
			UserName:     values[KeyUserName],
			UserEmail:    values[KeyUserEmail],
			Username:     values[KeyUsername],
			Permissions:  rbac.NewPermissionSet(),
		},
	}
	if raw := values[KeyUserPermissions]; raw != "" {
		var perms rbac.PermissionSet
		if err := json.Unmarshal([]byte(raw), &perms); err != nil {
			return Snapshot{}, fmt.Errorf("authstate: decode permissions: %w", err)
		}
		snap.Identity.Permissions = perms
	}
	return snap, nil
}
