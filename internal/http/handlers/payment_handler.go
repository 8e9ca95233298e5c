// Payment HTTP handlers.
//
// This file exposes the REST endpoint for submitting payment intents:
//   - POST /pay  (authorize a payment, deduplicated by idempotency key)
//
// Handlers are transport-thin: they validate input (amount > 0, UUID
// transaction id, required fields, known currency) before the core pipeline is
// invoked, delegate to the payment service, and translate classified service
// errors into HTTP results (500 injected/internal, 502 bank rejection,
// 504 bank timeout).
package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"golang.org/x/text/currency"

	"github.com/tbourn/go-payment-gateway/internal/domain"
	"github.com/tbourn/go-payment-gateway/internal/http/middleware"
	"github.com/tbourn/go-payment-gateway/internal/services"
)

// PaymentService defines the processing pipeline consumed by HTTP handlers.
//
// Implementations must be safe for concurrent use and honor the provided
// context for cancellation and timeouts.
type PaymentService interface {
	// Process runs one intent through the idempotency-and-authorization
	// pipeline and returns its terminal result or a classified error.
	Process(ctx context.Context, intent domain.PaymentIntent) (*domain.PaymentResult, error)
}

// Handlers groups the HTTP endpoints of the gateway. It depends on the
// abstract service interface to keep transport concerns separate from the
// pipeline.
type Handlers struct {
	paySvc          PaymentService
	defaultCurrency string
}

// New constructs a Handlers instance bound to the given service. The default
// currency is applied when an intent omits the currency field.
func New(paySvc PaymentService, defaultCurrency string) *Handlers {
	return &Handlers{paySvc: paySvc, defaultCurrency: defaultCurrency}
}

// PayRequest is the JSON payload for submitting a payment intent.
//
// The binding tags enforce the schema guard at the transport layer: a
// non-positive amount or malformed transaction id never reaches the pipeline.
type PayRequest struct {
	// TransactionID is the caller-supplied unique transaction id (UUID).
	TransactionID string `json:"transaction_id" binding:"required,uuid" example:"fa4dfbe0-c3bf-47bd-b32f-d7de221cf43b"`
	// Amount must be strictly greater than zero.
	Amount float64 `json:"amount" binding:"required,gt=0" example:"100"`
	// Currency is an ISO-4217 code; defaults to the configured currency.
	Currency string `json:"currency" example:"NGN"`
	// UserID is an opaque caller identity.
	UserID string `json:"user_id" binding:"required" example:"user123"`
	// IdempotencyKey deduplicates retried submissions. May alternatively be
	// supplied via the Idempotency-Key header.
	IdempotencyKey string `json:"idempotency_key" example:"k1"`
}

// Pay godoc
// @ID          pay
// @Summary     Authorize a payment
// @Description Submits a payment intent. Retries carrying the same idempotency key replay the originally stored result without contacting the bank again.
// @Tags        Payments
// @Accept      json
// @Produce     json
//
// @Param       Idempotency-Key  header  string  false "Idempotency key (fallback when the body omits idempotency_key)" example(k1)
// @Param       body             body    handlers.PayRequest true "Payment intent"
//
// @Success     200  {object} domain.PaymentResult
// @Failure     400  {object} handlers.ErrorResponse "Invalid payment intent"
// @Failure     500  {object} handlers.ErrorResponse "Internal processing error"
// @Failure     502  {object} handlers.ErrorResponse "Bank authorization failed"
// @Failure     504  {object} handlers.ErrorResponse "Bank API timeout"
// @Router      /pay [post]
func (h *Handlers) Pay(c *gin.Context) {
	var req PayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid payment intent")
		return
	}

	// Body key wins; the validated Idempotency-Key header is the fallback.
	key := strings.TrimSpace(req.IdempotencyKey)
	if key == "" {
		key, _ = middleware.GetIdempotencyKey(c)
	}
	if key == "" {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "idempotency_key is required")
		return
	}

	cur := strings.ToUpper(strings.TrimSpace(req.Currency))
	if cur == "" {
		cur = h.defaultCurrency
	}
	if _, err := currency.ParseISO(cur); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "unknown currency code")
		return
	}

	result, err := h.paySvc.Process(c.Request.Context(), domain.PaymentIntent{
		TransactionID:  req.TransactionID,
		Amount:         req.Amount,
		Currency:       cur,
		UserID:         req.UserID,
		IdempotencyKey: key,
	})
	if err != nil {
		var rejection *services.BankRejectionError
		switch {
		case errors.Is(err, services.ErrInjectedFailure):
			fail(c, http.StatusInternalServerError, ErrCodeInternal, "Internal processing error")
		case errors.As(err, &rejection):
			fail(c, http.StatusBadGateway, ErrCodeBankRejected, "Bank authorization failed")
		case errors.Is(err, services.ErrBankTimeout):
			fail(c, http.StatusGatewayTimeout, ErrCodeBankTimeout, "Bank API timeout")
		default:
			// Store or transport faults: not a business outcome, surfaced as a
			// generic server fault.
			fail(c, http.StatusInternalServerError, ErrCodeInternal, "payment processing failed")
		}
		return
	}

	ok(c, http.StatusOK, result)
}
