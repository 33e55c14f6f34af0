package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pollution-tracker/internal/config"
	"pollution-tracker/internal/ledger"
	"pollution-tracker/internal/observability/logging"
	"pollution-tracker/internal/observability/metrics"
	"pollution-tracker/internal/reconcile"
	impl "pollution-tracker/internal/service/impl"
	"pollution-tracker/internal/store"
	httpx "pollution-tracker/internal/transport/http"
	"pollution-tracker/pkg/db"

	"github.com/gagliardetto/solana-go/rpc"
)

const serviceName = "pollution-tracker"

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}

	logger := logging.NewLogger(logging.Config{
		ServiceName: serviceName,
		Environment: cfg.Environment,
		Level:       cfg.LogLevel,
	})
	slog.SetDefault(logger)
	metrics.MustRegister(serviceName)

	logger.Info("starting service")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 1) DB
	gdb, err := db.OpenGorm(db.Config{
		DSN:          cfg.DatabaseURL,
		LogSQL:       cfg.LogSQL,
		MaxOpenConns: cfg.DBMaxConns,
	})
	if err != nil {
		logger.Error("gorm open", "error", err)
		os.Exit(1)
	}
	st := store.New(gdb)
	if err := st.Migrate(ctx); err != nil {
		logger.Error("migrate", "error", err)
		os.Exit(1)
	}

	// 2) Ledger; refuse to serve without a reachable node and a funded key
	key, err := ledger.ParseKeypair(cfg.SolanaKeypair)
	if err != nil {
		logger.Error("solana keypair", "error", err)
		os.Exit(1)
	}
	lc := ledger.Dial(cfg.SolanaRPC, key, ledger.Config{
		Protocol:   cfg.MemoProtocol,
		MinBalance: cfg.MinBalanceLamports,
		Commitment: rpc.CommitmentConfirmed,
	})
	startupCtx, cancel := context.WithTimeout(ctx, cfg.LedgerTimeout)
	if err := lc.CheckConnection(startupCtx); err != nil {
		cancel()
		logger.Error("ledger connection", "rpc", cfg.SolanaRPC, "error", err)
		os.Exit(1)
	}
	if err := lc.EnsureBalance(startupCtx); err != nil {
		cancel()
		logger.Error("ledger balance", "account", lc.PublicKey().String(), "error", err)
		os.Exit(1)
	}
	cancel()

	// 3) Services
	pw := impl.NewPasswordServiceArgon2id()
	ts := impl.NewTokenServiceHS256(impl.TokenConfig{
		TTL:        cfg.TokenTTL,
		SigningKey: []byte(cfg.JWTSecret),
	})
	access := impl.NewAccessServiceImpl(st)

	router := httpx.NewRouter(httpx.Services{
		Auth:     impl.NewAuthServiceImpl(st, pw, ts),
		Tokens:   ts,
		Ingest:   impl.NewIngestServiceImpl(st, access, lc, cfg.LedgerTimeout),
		Readings: impl.NewReadingServiceImpl(st, access, lc),
		Health:   st.Ping,
	}, httpx.Options{
		CORSOrigins:     cfg.CORSOrigins,
		IngestRateLimit: cfg.IngestRateLimit,
	})

	// 4) Reconciler
	rec := reconcile.New(st.Readings(), lc, reconcile.Config{
		Interval:      cfg.ReconcileInterval,
		Grace:         cfg.ReconcileGrace,
		ConfirmWindow: cfg.ReconcileConfirm,
		Batch:         cfg.ReconcileBatch,
		MaxAttempts:   cfg.ReconcileMaxAttempts,
		LedgerTimeout: cfg.LedgerTimeout,
	}, logger)
	recDone := make(chan struct{})
	go func() {
		defer close(recDone)
		rec.Run(ctx)
	}()

	// 5) HTTP
	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("pollution tracker listening", "addr", srv.Addr, "signer", lc.PublicKey().String())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutting down")
	case err := <-errCh:
		if err != nil {
			logger.Error("server error", "error", err)
			stop()
			<-recDone
			os.Exit(1)
		}
	}

	stop()
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancelShutdown()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown", "error", err)
	}
	<-recDone

	if sqlDB, err := gdb.DB(); err == nil {
		_ = sqlDB.Close()
	}
	logger.Info("stopped")
}
