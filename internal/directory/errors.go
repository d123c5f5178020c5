package directory

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrUnauthorized indicates the directory rejected the credential.
	ErrUnauthorized = errors.New("directory: unauthorized")
	// ErrInvalidLogin indicates wrong login details.
	ErrInvalidLogin = errors.New("directory: invalid login")
	// ErrNotFound indicates the requested user does not exist.
	ErrNotFound = errors.New("directory: not found")
)

// NetworkError is a transient failure talking to the directory. It is
// surfaced as a notification and never forces a logout.
type NetworkError struct {
	Op     string
	Status int
	Err    error
}

func (e *NetworkError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("directory: %s: status %d", e.Op, e.Status)
	}
	return fmt.Sprintf("directory: %s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// HTTPStatus is the status the console answers with when the directory is
// unreachable.
func (e *NetworkError) HTTPStatus() int {
	return http.StatusBadGateway
}

// IsNetworkError reports whether err is a transient directory failure.
func IsNetworkError(err error) bool {
	var ne *NetworkError
	return errors.As(err, &ne)
}

// RejectedError is a non-transient refusal (4xx) from the directory.
type RejectedError struct {
	Op      string
	Status  int
	Message string
}

func (e *RejectedError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("directory: %s rejected (%d): %s", e.Op, e.Status, e.Message)
	}
	return fmt.Sprintf("directory: %s rejected (%d)", e.Op, e.Status)
}

// Is matches ErrNotFound for 404 refusals.
func (e *RejectedError) Is(target error) bool {
	return target == ErrNotFound && e.Status == http.StatusNotFound
}

// HTTPStatus passes the directory's refusal status through.
func (e *RejectedError) HTTPStatus() int {
	return e.Status
}
