// Package services implements the payment processing pipeline. This file
// centralizes service-level error values so they can be consistently returned
// by the orchestrator and mapped to HTTP statuses at the handler layer.
package services

import (
	"errors"
	"fmt"
)

var (
	// ErrInjectedFailure is returned when the failure injector fires before
	// the bank is called. Safe to retry with the same idempotency key.
	ErrInjectedFailure = errors.New("injected internal processing failure")

	// ErrBankTimeout is returned when the authorization call exceeded its
	// timeout. The outcome is ambiguous, so it is never cached; callers should
	// retry with the same key.
	ErrBankTimeout = errors.New("bank authorization timed out")
)

// BankRejectionError is returned when the bank declined the authorization.
// The decline is not assumed permanent: a retry with corrected data and the
// same idempotency key is allowed.
type BankRejectionError struct {
	// Code is the HTTP status the bank answered with.
	Code int
}

// Error implements the error interface.
func (e *BankRejectionError) Error() string {
	return fmt.Sprintf("bank rejected authorization (status %d)", e.Code)
}
