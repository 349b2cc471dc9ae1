package service

import "errors"

var (
	// ErrUnauthenticated covers missing, malformed, and expired session
	// credentials, plus login failures. Callers cannot tell which.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrUnauthorized means the session is valid but the acting user does not
	// own the resource.
	ErrUnauthorized = errors.New("unauthorized")
	ErrNotFound     = errors.New("not found")
)
