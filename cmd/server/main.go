package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"google.golang.org/grpc"

	grpcserver "github.com/iho/subledger/internal/adapter/grpc/server"
	httpAdapter "github.com/iho/subledger/internal/adapter/http"
	"github.com/iho/subledger/internal/adapter/http/handler"
	"github.com/iho/subledger/internal/adapter/http/middleware"
	"github.com/iho/subledger/internal/adapter/idgen"
	"github.com/iho/subledger/internal/infrastructure/config"
	"github.com/iho/subledger/internal/infrastructure/logger"
	"github.com/iho/subledger/internal/infrastructure/metrics"
	"github.com/iho/subledger/internal/usecase"
)

// janitorInterval is how often in-memory expirations are swept.
const janitorInterval = time.Minute

func main() {
	// Console output until the configured logger is built
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	// Load configuration
	cfg, err := config.LoadWithDotenv()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	log.Logger = logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log.Logger); err != nil {
		log.Fatal().Err(err).Msg("server failed")
	}

	log.Info().Msg("server stopped")
}

// run wires the application and serves until ctx is cancelled.
func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	connectCtx, cancel := context.WithTimeout(ctx, cfg.DatabaseTimeout)
	defer cancel()

	store, err := openStorage(connectCtx, cfg, log)
	if err != nil {
		return err
	}
	defer store.Close()
	log.Info().Str("driver", cfg.StorageDriver).Msg("storage ready")

	eph, err := openEphemeral(connectCtx, cfg)
	if err != nil {
		return err
	}
	defer eph.Close()

	a := newApp(cfg, store, eph, metrics.New(), log)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:      a.router,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	go eph.runJanitor(ctx, janitorInterval)
	if a.rateLimiter != nil {
		go a.rateLimiter.RunCleanup(ctx, 10*time.Minute, time.Hour)
	}

	errCh := make(chan error, 2)
	go func() {
		log.Info().Str("port", cfg.HTTPPort).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	if cfg.GRPCPort != "" {
		lis, err := net.Listen("tcp", fmt.Sprintf(":%s", cfg.GRPCPort))
		if err != nil {
			return fmt.Errorf("failed to listen for grpc: %w", err)
		}
		defer a.grpcServer.GracefulStop()

		go func() {
			log.Info().Str("port", cfg.GRPCPort).Msg("starting grpc server")
			if err := a.grpcServer.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
				errCh <- err
			}
		}()
	}

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down server...")

	// Graceful shutdown
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer cancelShutdown()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	return nil
}

type app struct {
	router      http.Handler
	grpcServer  *grpc.Server
	rateLimiter *middleware.RateLimiter
}

// newApp builds the use cases and the router over opened backends.
func newApp(cfg *config.Config, store *storage, eph *ephemeral, recorder usecase.Recorder, log zerolog.Logger) *app {
	idGen := idgen.NewULIDGenerator()

	partyUC := usecase.NewPartyUseCase(store.parties, idGen)
	documentUC := usecase.NewDocumentUseCase(store.documents, idGen)
	ledgerUC := usecase.NewLedgerUseCase(store.parties, store.documents, eph.cache, cfg.LedgerCacheTTL, recorder, log)
	reconcileUC := usecase.NewReconciliationUseCase(usecase.ReconciliationConfig{
		Ledgers:        ledgerUC,
		DocumentRepo:   store.documents,
		Sessions:       eph.sessions,
		IDGen:          idGen,
		SessionTTL:     cfg.ReconcileSessionTTL,
		PersistCleared: cfg.ReconcilePersistCleared,
		Recorder:       recorder,
		Logger:         log,
	})

	checks := append([]handler.HealthCheck{}, store.checks...)
	checks = append(checks, eph.checks...)

	a := &app{}
	if cfg.HTTPRateLimitRPS > 0 {
		a.rateLimiter = middleware.NewRateLimiter(cfg.HTTPRateLimitRPS, cfg.HTTPRateLimitBurst, cfg.HTTPTrustProxy)
	}

	a.router = httpAdapter.NewRouter(httpAdapter.RouterConfig{
		PartyHandler:          handler.NewPartyHandler(partyUC),
		DocumentHandler:       handler.NewDocumentHandler(documentUC),
		LedgerHandler:         handler.NewLedgerHandler(ledgerUC),
		ReconciliationHandler: handler.NewReconciliationHandler(reconcileUC),
		SchemaHandler:         handler.NewSchemaHandler(),
		HealthHandler:         handler.NewHealthHandler(checks...),
		IdempotencyStore:      eph.idempotency,
		IdempotencyTTL:        cfg.IdempotencyTTL,
		RateLimiter:           a.rateLimiter,
		CORSAllowedOrigins:    cfg.CORSAllowedOrigins,
		MetricsHandler:        promhttp.Handler(),
		Logger:                log,
	})

	a.grpcServer = grpcserver.New(grpcserver.Config{
		Ledger:           ledgerUC,
		Reconciliation:   reconcileUC,
		IdempotencyStore: eph.idempotency,
		IdempotencyTTL:   cfg.IdempotencyTTL,
		Logger:           log,
	})

	return a
}
