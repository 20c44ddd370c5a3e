package access

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by the Guard.
var (
	// ErrUnknownRole is returned by CreateSession for roles not in the table.
	ErrUnknownRole = errors.New("unknown role")

	// ErrAuthentication means the token does not identify an active session.
	// Unknown, revoked, expired and empty tokens are indistinguishable.
	ErrAuthentication = errors.New("authentication required: no active session")

	// ErrAuthorization means the session lacks the permission or role.
	ErrAuthorization = errors.New("access denied")
)

// AuthorizationError describes a denied operation. Exactly one of
// Permission and RequiredRole is set.
type AuthorizationError struct {
	Operation    string
	User         string
	Role         string
	Permission   string
	RequiredRole string
}

func (e *AuthorizationError) Error() string {
	if e.RequiredRole != "" {
		return fmt.Sprintf("access denied: %s requires role %q (user %s has role %q)",
			e.Operation, e.RequiredRole, e.User, e.Role)
	}
	return fmt.Sprintf("access denied: %s requires permission %q (role %q does not grant it)",
		e.Operation, e.Permission, e.Role)
}

func (e *AuthorizationError) Unwrap() error {
	return ErrAuthorization
}
