// Package domain defines the core data model for the payment gateway.
// These types are shared across the transport, service, and repository layers.
package domain

// PaymentStatus enumerates the terminal payment outcomes reported to callers.
type PaymentStatus string

const (
	// StatusSuccess indicates the bank authorized the transaction.
	StatusSuccess PaymentStatus = "SUCCESS"
	// StatusFailed indicates the transaction was not authorized.
	StatusFailed PaymentStatus = "FAILED"
)

// PaymentIntent is a validated, client-submitted request to authorize a
// payment. Schema validation (amount > 0, UUID transaction id, required
// fields) happens at the transport layer before an intent enters the
// processing pipeline.
type PaymentIntent struct {
	// TransactionID is the caller-supplied, globally unique transaction id.
	TransactionID string
	// Amount is a positive, currency-agnostic numeric value.
	Amount float64
	// Currency is an ISO-4217 code; a configured default applies when empty.
	Currency string
	// UserID is an opaque caller identity.
	UserID string
	// IdempotencyKey identifies a logical submission attempt. Repeated
	// submissions with the same key must yield the same recorded result.
	IdempotencyKey string
}

// PaymentResult is the stable, replayable outcome of processing an intent.
// Once stored under an idempotency key it is immutable and must be returned
// verbatim for every future request bearing that key.
type PaymentResult struct {
	TransactionID string        `json:"transaction_id"`
	Status        PaymentStatus `json:"status"`
	Message       string        `json:"message"`
}
