// This file implements the payment orchestrator: the idempotency-and-
// authorization pipeline at the core of the gateway. For each intent it
// consults the idempotency store, gives the failure injector a chance to
// fire, calls the bank under a bounded timeout, classifies the outcome,
// records metrics, and stores successful results so duplicate submissions
// replay instead of re-authorizing.
//
// Only SUCCESS is ever cached under an idempotency key. Duplicate submissions
// of an already-settled payment must never re-authorize with the bank, but
// duplicates after a failure must be allowed to retry, since failures are not
// assumed final.
package services

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/tbourn/go-payment-gateway/internal/bank"
	"github.com/tbourn/go-payment-gateway/internal/domain"
	"github.com/tbourn/go-payment-gateway/internal/metrics"
)

// IdempotencyStore is the deduplication contract required by PaymentService.
//
// Get returns (nil, nil) when no live record exists for key. Put must retain
// the first write for a key and silently drop later ones, so every reader
// observes the originally stored result.
type IdempotencyStore interface {
	Get(ctx context.Context, key string) (*domain.PaymentResult, error)
	Put(ctx context.Context, key string, result *domain.PaymentResult) error
}

// BankAuthorizer is the outbound authorization contract. Implementations
// perform exactly one bank call per invocation and must not retry internally.
type BankAuthorizer interface {
	Authorize(ctx context.Context, transactionID string, amount float64) (bank.Outcome, error)
}

// FailureInjector signals artificially injected processing failures. It is a
// chaos hook supplied at construction so tests can force deterministic
// always-fail or never-fail behavior.
type FailureInjector interface {
	ShouldFail() bool
}

// PaymentService orchestrates the lifecycle of a single payment request.
// Safe for concurrent use; the idempotency store is the only shared mutable
// resource it touches.
type PaymentService struct {
	// Store deduplicates retried submissions.
	Store IdempotencyStore
	// Bank performs the outbound authorization call.
	Bank BankAuthorizer
	// Injector is optional; nil disables failure injection.
	Injector FailureInjector

	// group serializes concurrent executions per idempotency key so at most
	// one bank authorization happens per key even under racing retries.
	group singleflight.Group
}

// NewPaymentService constructs a PaymentService over the given collaborators.
func NewPaymentService(store IdempotencyStore, bankClient BankAuthorizer, injector FailureInjector) *PaymentService {
	return &PaymentService{Store: store, Bank: bankClient, Injector: injector}
}

// Process runs the pipeline for one intent and returns its terminal result.
//
// Business failures surface as classified errors (ErrInjectedFailure,
// *BankRejectionError, ErrBankTimeout); anything else is an infrastructure
// fault. Concurrent calls carrying the same idempotency key collapse into a
// single execution: exactly one bank call happens and every caller observes
// the same result.
func (s *PaymentService) Process(ctx context.Context, intent domain.PaymentIntent) (*domain.PaymentResult, error) {
	v, err, _ := s.group.Do(intent.IdempotencyKey, func() (interface{}, error) {
		return s.process(ctx, intent)
	})
	if err != nil {
		return nil, err
	}
	return v.(*domain.PaymentResult), nil
}

// process executes the pipeline body. It runs at most once at a time per key.
func (s *PaymentService) process(ctx context.Context, intent domain.PaymentIntent) (*domain.PaymentResult, error) {
	start := time.Now()

	// 1) Replay a previously stored result without any further side effects:
	// no bank call, no failure injection, no re-storage.
	stored, err := s.Store.Get(ctx, intent.IdempotencyKey)
	if err != nil {
		return nil, fmt.Errorf("idempotency lookup: %w", err)
	}
	if stored != nil {
		metrics.PaymentRequests.WithLabelValues(metrics.StatusIdempotentHit).Inc()
		return stored, nil
	}

	// 2) Injected failures are never cached: a retry with the same key must
	// be allowed to succeed later.
	if s.Injector != nil && s.Injector.ShouldFail() {
		s.observeFailure(metrics.ReasonInternalError, start)
		return nil, ErrInjectedFailure
	}

	// 3) One bounded authorization call.
	outcome, err := s.Bank.Authorize(ctx, intent.TransactionID, intent.Amount)
	if err != nil {
		return nil, fmt.Errorf("bank authorization call: %w", err)
	}

	switch outcome.Kind {
	case bank.Rejected:
		s.observeFailure(metrics.ReasonBankRejection, start)
		return nil, &BankRejectionError{Code: outcome.Code}
	case bank.TimedOut:
		s.observeFailure(metrics.ReasonBankTimeout, start)
		return nil, ErrBankTimeout
	}

	result := &domain.PaymentResult{
		TransactionID: intent.TransactionID,
		Status:        domain.StatusSuccess,
		Message:       "Payment processed successfully",
	}

	// 4) Cache the success before answering so the next duplicate replays it.
	if err := s.Store.Put(ctx, intent.IdempotencyKey, result); err != nil {
		return nil, fmt.Errorf("idempotency store: %w", err)
	}

	metrics.PaymentRequests.WithLabelValues(metrics.StatusSuccess).Inc()
	metrics.PaymentLatency.WithLabelValues(metrics.StatusSuccess).Observe(time.Since(start).Seconds())
	return result, nil
}

// observeFailure records the failure counter and the latency of a terminal
// failure under its reason label.
func (s *PaymentService) observeFailure(reason string, start time.Time) {
	metrics.PaymentFailures.WithLabelValues(reason).Inc()
	metrics.PaymentLatency.WithLabelValues(reason).Observe(time.Since(start).Seconds())
}
