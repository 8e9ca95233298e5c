// Package bank implements the synchronous boundary to the external
// bank-authorization endpoint. The client performs exactly one outbound call
// per Authorize invocation under a bounded timeout and classifies the result
// into an Outcome. It never retries internally: a hidden retry loop here could
// silently issue duplicate authorizations, so retry policy belongs to the
// caller.
package bank

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"strings"
	"time"
)

// OutcomeKind classifies the result of an authorization attempt.
type OutcomeKind int

const (
	// Authorized means the bank approved the transaction.
	Authorized OutcomeKind = iota
	// Rejected means the bank answered with a non-success status.
	Rejected
	// TimedOut means the call exceeded the configured timeout. The outcome is
	// ambiguous: the bank may or may not have authorized, so callers must not
	// cache it as either.
	TimedOut
)

// String returns a stable lowercase name for logs.
func (k OutcomeKind) String() string {
	switch k {
	case Authorized:
		return "authorized"
	case Rejected:
		return "rejected"
	case TimedOut:
		return "timed_out"
	default:
		return "unknown"
	}
}

// Outcome is the classified result of a single authorization call. It is
// ephemeral: consumed immediately by the orchestrator and never persisted on
// its own.
type Outcome struct {
	Kind OutcomeKind
	// Code is the bank's HTTP status when Kind == Rejected.
	Code int
}

// authorizeRequest is the wire payload sent to the bank endpoint.
type authorizeRequest struct {
	TransactionID string  `json:"transaction_id"`
	Amount        float64 `json:"amount"`
}

// Client calls the configured bank endpoint over HTTP.
//
// The zero value is not usable; construct with NewClient. Safe for concurrent
// use.
type Client struct {
	baseURL string
	timeout time.Duration
	httpc   *http.Client
}

// NewClient returns a Client targeting baseURL (e.g. "http://bank:9090") with
// the given per-call timeout.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: timeout,
		httpc:   &http.Client{Timeout: timeout},
	}
}

// Authorize performs one POST {baseURL}/authorize carrying the transaction id
// and amount, bounded by the client timeout (and any tighter deadline already
// on ctx).
//
// Classification:
//   - 200                  → Authorized
//   - any other status     → Rejected with that status code
//   - deadline exceeded    → TimedOut (late responses are discarded because
//     the request context is cancelled)
//
// Transport failures other than timeouts (connection refused, DNS errors) are
// returned as errors; they are infrastructure faults, not business outcomes.
func (c *Client) Authorize(ctx context.Context, transactionID string, amount float64) (Outcome, error) {
	body, err := json.Marshal(authorizeRequest{TransactionID: transactionID, Amount: amount})
	if err != nil {
		return Outcome{}, err
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/authorize", bytes.NewReader(body))
	if err != nil {
		return Outcome{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		if isTimeout(err) {
			return Outcome{Kind: TimedOut}, nil
		}
		return Outcome{}, err
	}
	defer resp.Body.Close()
	// Drain so the underlying connection can be reused.
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return Outcome{Kind: Rejected, Code: resp.StatusCode}, nil
	}
	return Outcome{Kind: Authorized}, nil
}

// isTimeout reports whether err represents an exceeded deadline, either via
// context cancellation or a net-level timeout (http.Client wraps both).
func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
