// Package handlers defines HTTP-layer error codes used across all API endpoints.
//
// These symbolic constants are mapped to HTTP responses via the fail() helper
// and give clients a stable, machine-readable error taxonomy that supplements
// the human-readable message. Codes are lowercase snake_case; generic codes
// mirror common HTTP status semantics, while domain-specific codes carry the
// payment failure classification (bank rejection vs. timeout) that the status
// alone does not convey precisely.
package handlers

const (
	ErrCodeBadRequest       = "bad_request"
	ErrCodeNotFound         = "not_found"
	ErrCodeMethodNotAllowed = "method_not_allowed"
	ErrCodeRateLimited      = "too_many_requests"
	ErrCodeInternal         = "internal_error"

	// Domain-specific:
	ErrCodeBankRejected = "bank_rejected"
	ErrCodeBankTimeout  = "bank_timeout"
)
