package client

import (
	"errors"
	"fmt"
)

// ErrAuthorityUnreachable marks transport-level failures: the backend could
// not be reached or did not answer in time. Permission checks recover from
// this via the local policy table; user-management operations surface it.
var ErrAuthorityUnreachable = errors.New("authority unreachable")

// ErrAuthenticationFailure marks rejected credentials: a 401 response or a
// failed login.
var ErrAuthenticationFailure = errors.New("authentication failed")

// APIError is a non-2xx response from a backend service
type APIError struct {
	StatusCode int
	Detail     string
}

func (e *APIError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("backend returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("backend returned status %d: %s", e.StatusCode, e.Detail)
}

// IsUnreachable reports whether err is a transport-level failure
func IsUnreachable(err error) bool {
	return errors.Is(err, ErrAuthorityUnreachable)
}
