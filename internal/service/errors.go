package service

import "errors"

// Sentinel errors the HTTP boundary maps to status codes. Handlers match
// with errors.Is; anything that isn't one of these surfaces as a 500 with
// no internal detail.
var (
	ErrValidation         = errors.New("validation error")
	ErrUserExists         = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrInvalidToken marks a bad or expired one-time token (email
	// verification, password reset). It is a request problem, not an
	// authentication failure, so the boundary maps it to a 400.
	ErrInvalidToken = errors.New("invalid or expired token")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrNotFound           = errors.New("not found")

	ErrSelfChat      = errors.New("cannot chat with yourself")
	ErrNotGroupChat  = errors.New("not a group chat")
	ErrTooFewMembers = errors.New("group must have at least 3 participants")
)
