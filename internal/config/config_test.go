package config

import (
	"strings"
	"testing"
	"time"
)

// clearEnv unsets every key this package reads so defaults are observable
// regardless of the host environment.
func clearEnv(t *testing.T) {
	t.Helper()
	keys := []string{
		"PORT", "READ_TIMEOUT", "READ_HEADER_TIMEOUT", "WRITE_TIMEOUT",
		"IDLE_TIMEOUT", "MAX_HEADER_BYTES", "GIN_MODE",
		"LOG_LEVEL", "LOG_PRETTY", "API_BASE_PATH",
		"BANK_API_URL", "BANK_REQUEST_TIMEOUT",
		"FAILURE_RATE", "DEFAULT_CURRENCY", "IDEMPOTENCY_TTL",
		"STORE_BACKEND", "DB_PATH",
		"RATE_RPS", "RATE_BURST",
		"CORS_ALLOWED_ORIGINS", "ENABLE_HSTS", "HSTS_MAX_AGE",
		"OTEL_ENABLED", "OTEL_EXPORTER_OTLP_ENDPOINT", "OTEL_EXPORTER_OTLP_INSECURE",
		"OTEL_SERVICE_NAME", "OTEL_TRACES_SAMPLER_ARG",
	}
	for _, k := range keys {
		t.Setenv(k, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "8080" {
		t.Errorf("Port = %q, want 8080", cfg.Port)
	}
	if cfg.GinMode != "release" {
		t.Errorf("GinMode = %q, want release", cfg.GinMode)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want info", cfg.LogLevel)
	}
	if cfg.APIBasePath != "/" {
		t.Errorf("APIBasePath = %q, want /", cfg.APIBasePath)
	}
	if cfg.Bank.URL != "http://localhost:9090" {
		t.Errorf("Bank.URL = %q", cfg.Bank.URL)
	}
	if cfg.Bank.Timeout != 5*time.Second {
		t.Errorf("Bank.Timeout = %v, want 5s", cfg.Bank.Timeout)
	}
	if cfg.FailureRate != 0 {
		t.Errorf("FailureRate = %v, want 0 (injection disabled)", cfg.FailureRate)
	}
	if cfg.DefaultCurrency != "NGN" {
		t.Errorf("DefaultCurrency = %q, want NGN", cfg.DefaultCurrency)
	}
	if cfg.IdempotencyTTL != 24*time.Hour {
		t.Errorf("IdempotencyTTL = %v, want 24h", cfg.IdempotencyTTL)
	}
	if cfg.StoreBackend != StoreMemory {
		t.Errorf("StoreBackend = %q, want memory", cfg.StoreBackend)
	}
	if cfg.RateRPS != 50 || cfg.RateBurst != 100 {
		t.Errorf("rate defaults = (%v, %d), want (50, 100)", cfg.RateRPS, cfg.RateBurst)
	}
	if cfg.OTEL.Enabled {
		t.Errorf("OTEL must be disabled by default")
	}
}

func TestLoad_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9999")
	t.Setenv("BANK_API_URL", "http://bank.internal:8443")
	t.Setenv("BANK_REQUEST_TIMEOUT", "750ms")
	t.Setenv("FAILURE_RATE", "0.25")
	t.Setenv("DEFAULT_CURRENCY", "usd")
	t.Setenv("IDEMPOTENCY_TTL", "1h")
	t.Setenv("STORE_BACKEND", "SQLITE")
	t.Setenv("DB_PATH", "/tmp/pay.db")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example ,")
	t.Setenv("API_BASE_PATH", "api/v1/")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "9999" {
		t.Errorf("Port = %q", cfg.Port)
	}
	if cfg.Bank.URL != "http://bank.internal:8443" {
		t.Errorf("Bank.URL = %q", cfg.Bank.URL)
	}
	if cfg.Bank.Timeout != 750*time.Millisecond {
		t.Errorf("Bank.Timeout = %v", cfg.Bank.Timeout)
	}
	if cfg.FailureRate != 0.25 {
		t.Errorf("FailureRate = %v", cfg.FailureRate)
	}
	if cfg.DefaultCurrency != "USD" {
		t.Errorf("DefaultCurrency = %q, want USD (upper-cased)", cfg.DefaultCurrency)
	}
	if cfg.IdempotencyTTL != time.Hour {
		t.Errorf("IdempotencyTTL = %v", cfg.IdempotencyTTL)
	}
	if cfg.StoreBackend != StoreSQLite {
		t.Errorf("StoreBackend = %q, want sqlite (lower-cased)", cfg.StoreBackend)
	}
	if len(cfg.CORS.AllowedOrigins) != 2 || cfg.CORS.AllowedOrigins[0] != "https://a.example" {
		t.Errorf("AllowedOrigins = %v", cfg.CORS.AllowedOrigins)
	}
	if cfg.APIBasePath != "/api/v1" {
		t.Errorf("APIBasePath = %q, want /api/v1", cfg.APIBasePath)
	}
}

func TestLoad_ValidationErrors(t *testing.T) {
	cases := []struct {
		name string
		key  string
		val  string
		want string
	}{
		{"bad log level", "LOG_LEVEL", "verbose", "LOG_LEVEL"},
		{"negative bank timeout", "BANK_REQUEST_TIMEOUT", "-1s", "BANK_REQUEST_TIMEOUT"},
		{"failure rate above one", "FAILURE_RATE", "1.5", "FAILURE_RATE"},
		{"failure rate below zero", "FAILURE_RATE", "-0.1", "FAILURE_RATE"},
		{"bad currency length", "DEFAULT_CURRENCY", "NAIRA", "DEFAULT_CURRENCY"},
		{"non-positive ttl", "IDEMPOTENCY_TTL", "-1h", "IDEMPOTENCY_TTL"},
		{"unknown backend", "STORE_BACKEND", "redis", "STORE_BACKEND"},
		{"negative rps", "RATE_RPS", "-1", "RATE_RPS"},
		{"zero burst", "RATE_BURST", "0", "RATE_BURST"},
		{"bad sampler ratio", "OTEL_TRACES_SAMPLER_ARG", "2", "OTEL_TRACES_SAMPLER_ARG"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tc.key, tc.val)
			_, err := Load()
			if err == nil {
				t.Fatalf("expected validation error for %s=%s", tc.key, tc.val)
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("error %q does not mention %s", err, tc.want)
			}
		})
	}
}

func TestLoad_SQLiteRequiresDBPath(t *testing.T) {
	clearEnv(t)
	t.Setenv("STORE_BACKEND", "sqlite")
	t.Setenv("DB_PATH", "   ")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for blank DB_PATH with sqlite backend")
	}
}

func TestLoad_WarningAliasesToWarn(t *testing.T) {
	clearEnv(t)
	t.Setenv("LOG_LEVEL", "WARNING")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.LogLevel != "warn" {
		t.Errorf("LogLevel = %q, want warn", cfg.LogLevel)
	}
}

func TestLoad_UnknownGinMode_FallsBackToRelease(t *testing.T) {
	clearEnv(t)
	t.Setenv("GIN_MODE", "prod")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.GinMode != "release" {
		t.Errorf("GinMode = %q, want release", cfg.GinMode)
	}
}

func TestLoad_MalformedValues_FallBackToDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("FAILURE_RATE", "lots")
	t.Setenv("RATE_BURST", "many")
	t.Setenv("READ_TIMEOUT", "soon")
	t.Setenv("LOG_PRETTY", "maybe")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.FailureRate != 0 {
		t.Errorf("FailureRate = %v, want default 0", cfg.FailureRate)
	}
	if cfg.RateBurst != 100 {
		t.Errorf("RateBurst = %d, want default 100", cfg.RateBurst)
	}
	if cfg.ReadTimeout != 15*time.Second {
		t.Errorf("ReadTimeout = %v, want default 15s", cfg.ReadTimeout)
	}
	if cfg.LogPretty {
		t.Errorf("LogPretty must default to false on unparsable input")
	}
}

func TestNormalizeBasePath(t *testing.T) {
	cases := map[string]string{
		"":        "/",
		"/":       "/",
		"api":     "/api",
		"/api":    "/api",
		"/api/":   "/api",
		"api/v1/": "/api/v1",
		"  /x  ":  "/x",
	}
	for in, want := range cases {
		if got := normalizeBasePath(in); got != want {
			t.Errorf("normalizeBasePath(%q) = %q, want %q", in, got, want)
		}
	}
}
