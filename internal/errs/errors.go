// Package errs defines the error kinds every service and the actions boundary
// return for expected failure conditions. Callers classify with errors.Is;
// services attach detail with fmt.Errorf("...: %w", errs.ErrNotFound).
package errs

import "errors"

var (
	// ErrNotAuthenticated means no valid session could be resolved for the caller.
	ErrNotAuthenticated = errors.New("not authenticated")

	// ErrNotFound means the entity is absent or not owned by the caller.
	// Ownership misses deliberately collapse into this kind so callers cannot
	// enumerate other users' entity IDs.
	ErrNotFound = errors.New("not found")

	// ErrConflict means a uniqueness constraint was violated, e.g. a duplicate
	// two-factor method type for the same user.
	ErrConflict = errors.New("conflict")

	// ErrInvalidCredential means a wrong password, one-time code, or API key.
	ErrInvalidCredential = errors.New("invalid credential")

	// ErrInvalidState means the operation was attempted from an impossible
	// state, e.g. revoking all other sessions without a current token.
	ErrInvalidState = errors.New("invalid state")

	// ErrInternal wraps repository or crypto-primitive failures. The cause is
	// logged server-side; only the kind reaches the client.
	ErrInternal = errors.New("internal error")
)
