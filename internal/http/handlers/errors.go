// Package handlers defines HTTP-layer error codes used across all API endpoints.
//
// This file centralizes the symbolic error code constants that are mapped to
// HTTP responses via the `fail()` helper. The codes give clients a stable,
// machine-readable taxonomy alongside the human-readable messages (which are
// French for the flows the shipped frontend displays verbatim).
//
// Conventions:
//   - Codes are lowercase snake_case.
//   - Generic codes (bad_request, unauthorized, conflict, ...) mirror common
//     HTTP status semantics.
//   - Domain-specific codes are reserved for failures that the status alone
//     cannot convey (e.g. recognize_failed vs. a generic 500).
package handlers

const (
	ErrCodeBadRequest   = "bad_request"
	ErrCodeUnauthorized = "unauthorized"
	ErrCodeNotFound     = "not_found"
	ErrCodeConflict     = "conflict"
	ErrCodeRateLimited  = "rate_limited"
	ErrCodeInternal     = "internal_error"

	// Domain-specific:
	ErrCodeRecognizeFailed  = "recognize_failed"
	ErrCodeCreateFailed     = "create_failed"
	ErrCodeListFailed       = "list_failed"
	ErrCodeMethodNotAllowed = "method_not_allowed"
)
