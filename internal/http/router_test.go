package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-payment-gateway/internal/config"
	"github.com/tbourn/go-payment-gateway/internal/domain"
)

type stubService struct{}

func (stubService) Process(_ context.Context, intent domain.PaymentIntent) (*domain.PaymentResult, error) {
	return &domain.PaymentResult{
		TransactionID: intent.TransactionID,
		Status:        domain.StatusSuccess,
		Message:       "Payment processed successfully",
	}, nil
}

type stubStore struct {
	entries map[string]*domain.PaymentResult
}

func (s *stubStore) Get(_ context.Context, key string) (*domain.PaymentResult, error) {
	if s.entries == nil {
		return nil, nil
	}
	return s.entries[key], nil
}

func (s *stubStore) Put(_ context.Context, key string, result *domain.PaymentResult) error {
	if s.entries == nil {
		s.entries = make(map[string]*domain.PaymentResult)
	}
	if _, ok := s.entries[key]; !ok {
		s.entries[key] = result
	}
	return nil
}

func testConfig() config.Config {
	return config.Config{
		GinMode:         gin.TestMode,
		APIBasePath:     "/",
		DefaultCurrency: "NGN",
		RateRPS:         1000,
		RateBurst:       1000,
		Security: config.SecurityConfig{
			EnableHSTS: false,
		},
	}
}

func newTestRouter(cfg config.Config) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	RegisterRoutes(r, stubService{}, &stubStore{}, cfg)
	return r
}

func TestRouter_Health(t *testing.T) {
	r := newTestRouter(testConfig())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["status"] != "ok" {
		t.Fatalf("body = %v", body)
	}
}

func TestRouter_Metrics(t *testing.T) {
	r := newTestRouter(testConfig())

	// Drive one request through the middleware chain first.
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	w = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	req.Header.Set("Accept-Encoding", "identity")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	text := w.Body.String()
	for _, metric := range []string{
		"http_requests_inflight",
		"http_requests_total",
		"http_request_duration_seconds",
	} {
		if !strings.Contains(text, metric) {
			t.Errorf("/metrics missing %s", metric)
		}
	}
}

func TestRouter_NotFoundEnvelope(t *testing.T) {
	r := newTestRouter(testConfig())
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/nope", nil)
	req.Header.Set("Accept-Encoding", "identity")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["code"] != "not_found" {
		t.Fatalf("code = %q, want not_found", body["code"])
	}
}

func TestRouter_MethodNotAllowed(t *testing.T) {
	r := newTestRouter(testConfig())
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodDelete, "/pay", nil)
	req.Header.Set("Accept-Encoding", "identity")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d, want 405", w.Code)
	}
}

func TestRouter_PayEndToEnd(t *testing.T) {
	r := newTestRouter(testConfig())

	body := `{
		"transaction_id": "fa4dfbe0-c3bf-47bd-b32f-d7de221cf43b",
		"amount": 100,
		"currency": "NGN",
		"user_id": "user123",
		"idempotency_key": "router-k1"
	}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/pay", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept-Encoding", "identity")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var res domain.PaymentResult
	if err := json.Unmarshal(w.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if res.Status != domain.StatusSuccess {
		t.Fatalf("result = %+v", res)
	}
	if w.Header().Get("X-Request-ID") == "" {
		t.Fatalf("response must carry a correlation id")
	}
	if w.Header().Get("Cache-Control") != "no-store" {
		t.Fatalf("payment responses must not be cacheable")
	}
}

func TestRouter_BasePathMount(t *testing.T) {
	cfg := testConfig()
	cfg.APIBasePath = "/api/v1"
	r := newTestRouter(cfg)

	body := `{
		"transaction_id": "fa4dfbe0-c3bf-47bd-b32f-d7de221cf43b",
		"amount": 100,
		"user_id": "user123",
		"idempotency_key": "router-k2"
	}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/pay", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept-Encoding", "identity")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	// Root-mounted path must not exist under a custom base path.
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/pay", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept-Encoding", "identity")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404 off the base path", w.Code)
	}
}

func TestRouter_ReplayHeaderBypassesRateLimit(t *testing.T) {
	cfg := testConfig()
	cfg.RateRPS = 0
	cfg.RateBurst = 1
	gin.SetMode(gin.TestMode)
	r := gin.New()
	store := &stubStore{entries: map[string]*domain.PaymentResult{
		"known-key": {TransactionID: "tx", Status: domain.StatusSuccess},
	}}
	RegisterRoutes(r, stubService{}, store, cfg)

	send := func() int {
		body := `{
			"transaction_id": "fa4dfbe0-c3bf-47bd-b32f-d7de221cf43b",
			"amount": 100,
			"user_id": "user123"
		}`
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/pay", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept-Encoding", "identity")
		req.Header.Set("Idempotency-Key", "known-key")
		r.ServeHTTP(w, req)
		return w.Code
	}

	// The single-token bucket would exhaust immediately, but replays of a
	// stored key skip the limiter entirely.
	for i := 0; i < 3; i++ {
		if code := send(); code != http.StatusOK {
			t.Fatalf("replay %d: status = %d, want 200", i, code)
		}
	}
}

func TestRouter_OversizedBody(t *testing.T) {
	r := newTestRouter(testConfig())

	big := strings.Repeat("x", (64<<10)+1)
	body := `{"transaction_id":"fa4dfbe0-c3bf-47bd-b32f-d7de221cf43b","amount":100,"user_id":"` + big + `","idempotency_key":"k"}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/pay", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept-Encoding", "identity")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400 for oversized body", w.Code)
	}
}
