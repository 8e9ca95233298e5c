// Command server runs the payment-authorization gateway: it wires the
// configuration, idempotency store, bank client, failure injector, and HTTP
// transport together, then serves until interrupted.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/tbourn/go-payment-gateway/internal/bank"
	"github.com/tbourn/go-payment-gateway/internal/chaos"
	"github.com/tbourn/go-payment-gateway/internal/config"
	httpapi "github.com/tbourn/go-payment-gateway/internal/http"
	"github.com/tbourn/go-payment-gateway/internal/observability"
	"github.com/tbourn/go-payment-gateway/internal/repo"
	"github.com/tbourn/go-payment-gateway/internal/services"
	"github.com/tbourn/go-payment-gateway/internal/sysutil"
)

const version = "1.0.0"

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := config.MustLoad()

	sysutil.SetLogLevel(cfg.LogLevel)
	if cfg.LogPretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	ctx := context.Background()

	shutdownOTel, err := observability.SetupOTel(ctx, cfg.OTEL, version)
	if err != nil {
		log.Fatal().Err(err).Msg("otel setup failed")
	}

	store, err := buildStore(cfg)
	if err != nil {
		log.Fatal().Err(err).Str("backend", cfg.StoreBackend).Msg("idempotency store setup failed")
	}

	svc := services.NewPaymentService(
		store,
		bank.NewClient(cfg.Bank.URL, cfg.Bank.Timeout),
		chaos.New(cfg.FailureRate),
	)

	gin.SetMode(cfg.GinMode)
	r := gin.New()
	httpapi.RegisterRoutes(r, svc, store, cfg)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()
	log.Info().
		Str("port", cfg.Port).
		Str("bank_url", cfg.Bank.URL).
		Str("store", cfg.StoreBackend).
		Float64("failure_rate", cfg.FailureRate).
		Msg("payment gateway started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown failed")
	}
	if err := shutdownOTel(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("otel shutdown failed")
	}
}

// buildStore selects the idempotency store backend from configuration.
func buildStore(cfg config.Config) (services.IdempotencyStore, error) {
	if cfg.StoreBackend == config.StoreSQLite {
		db, err := repo.OpenSQLite(cfg.DBPath)
		if err != nil {
			return nil, err
		}
		if err := repo.AutoMigrate(db); err != nil {
			return nil, err
		}
		return repo.NewSQLStore(db, cfg.IdempotencyTTL), nil
	}
	return repo.NewMemoryStore(cfg.IdempotencyTTL), nil
}
