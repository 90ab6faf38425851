package auth

import "errors"

// Sentinel errors for callers that need to map read-API auth failures
// to response codes.
var (
	ErrUnauthorized = errors.New("auth: missing or invalid credentials")
	ErrForbidden    = errors.New("auth: role does not grant access")
	ErrInvalidToken = errors.New("auth: invalid token")
)
