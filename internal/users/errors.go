package users

import "errors"

// Sentinel errors surfaced to the HTTP layer, which maps them to
// statuses. Store and hashing failures pass through wrapped.
var (
	ErrMissingField       = errors.New("missing required field")
	ErrConflict           = errors.New("duplicate username or email")
	ErrNotFound           = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidID          = errors.New("invalid user id")
)
