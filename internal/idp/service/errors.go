package service

import "errors"

// Service-level sentinel errors. Guard-facing failures all collapse into
// ErrAuthFailure; anything not listed here is an unrecognized failure and is
// surfaced as a generic server error after logging.
var (
	// ErrAuthFailure is the uniform credential failure. It deliberately
	// carries no detail: expired, tampered, and revoked all look the same
	// from outside.
	ErrAuthFailure = errors.New("auth_failure")

	// ErrPassportNotFound reports a passport key that resolved to nothing:
	// never issued, already exchanged, or expired.
	ErrPassportNotFound = errors.New("passport_not_found")

	// ErrPassportContention reports a freshly generated key colliding with
	// an existing record. With 64 chars of alphanumeric entropy this is
	// store contention in practice, and it is not retried automatically.
	ErrPassportContention = errors.New("passport_contention")

	// ErrCodeNotFound reports an authorization code that resolved to
	// nothing: never issued, already consumed, or expired.
	ErrCodeNotFound = errors.New("code_not_found")

	// ErrSessionNotFound reports a missing session record for an identity.
	ErrSessionNotFound = errors.New("session_not_found")
)
