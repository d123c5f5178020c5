package auth

import (
	"errors"
	"time"

	"github.com/AgarwalVaibhav-20/dq-frontend-sub001/internal/rbac"
)

// ErrInvalidCredentials is returned when the directory refuses a login or
// hands back an unusable credential.
var ErrInvalidCredentials = errors.New("auth: invalid credentials")

// SessionView is the public view of the auth state. The raw credential is
// never exposed.
type SessionView struct {
	State          string         `json:"state"`
	Authenticated  bool           `json:"authenticated"`
	SessionStarted bool           `json:"sessionStarted"`
	Identity       *rbac.Identity `json:"identity,omitempty"`
	ExpiresAt      *time.Time     `json:"expiresAt,omitempty"`
	// Next is where the console should go from here.
	Next string `json:"next,omitempty"`
}
