package auth

import "errors"

var (
	// ErrUnauthorized is reported when no valid bearer token is presented.
	ErrUnauthorized = errors.New("auth: unauthorized")
	// ErrForbidden is reported when the token's role is below the route's.
	ErrForbidden = errors.New("auth: forbidden")
	// ErrInvalidToken wraps every token parse or claim failure.
	ErrInvalidToken = errors.New("auth: invalid token")
	ErrMissingToken = errors.New("auth: missing bearer token")
	ErrEmptySecret  = errors.New("auth: empty secret")
)
