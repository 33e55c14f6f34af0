package config

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func setRequired(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("SOLANA_RPC", "http://localhost:8899")
	t.Setenv("SOLANA_KEYPAIR", "[1,2,3]")
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.TokenTTL != time.Hour {
		t.Fatalf("expected 1h token ttl, got %s", cfg.TokenTTL)
	}
	if cfg.MinBalanceLamports != 1_000_000 {
		t.Fatalf("unexpected min balance %d", cfg.MinBalanceLamports)
	}
	if cfg.MemoProtocol != "pollution" {
		t.Fatalf("unexpected memo protocol %q", cfg.MemoProtocol)
	}
	if cfg.DBMaxConns != 5 {
		t.Fatalf("unexpected pool size %d", cfg.DBMaxConns)
	}
	if len(cfg.CORSOrigins) != 1 || cfg.CORSOrigins[0] != "*" {
		t.Fatalf("unexpected cors origins %v", cfg.CORSOrigins)
	}
}

func TestLoadOverrides(t *testing.T) {
	setRequired(t)
	t.Setenv("TOKEN_TTL", "15m")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("RECONCILE_BATCH", "not-a-number")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.TokenTTL != 15*time.Minute {
		t.Fatalf("expected 15m, got %s", cfg.TokenTTL)
	}
	if len(cfg.CORSOrigins) != 2 || cfg.CORSOrigins[1] != "https://b.example" {
		t.Fatalf("unexpected cors origins %v", cfg.CORSOrigins)
	}
	if cfg.ReconcileBatch != 50 {
		t.Fatalf("invalid int should fall back to default, got %d", cfg.ReconcileBatch)
	}
}

func TestLoadMissingSecrets(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	t.Setenv("SOLANA_RPC", "http://localhost:8899")
	t.Setenv("SOLANA_KEYPAIR", "")

	_, err := Load()
	if !errors.Is(err, ErrMissing) {
		t.Fatalf("expected ErrMissing, got %v", err)
	}
	if !strings.Contains(err.Error(), "JWT_SECRET") || !strings.Contains(err.Error(), "SOLANA_KEYPAIR") {
		t.Fatalf("error should name missing keys: %v", err)
	}
}

func TestLoadRejectsGraceWithinLedgerTimeout(t *testing.T) {
	setRequired(t)
	t.Setenv("LEDGER_TIMEOUT", "45s")
	t.Setenv("RECONCILE_GRACE", "30s")

	_, err := Load()
	if !errors.Is(err, ErrInvalid) {
		t.Fatalf("expected ErrInvalid, got %v", err)
	}
	if !strings.Contains(err.Error(), "RECONCILE_GRACE") {
		t.Fatalf("error should name the offending key: %v", err)
	}

	t.Setenv("RECONCILE_GRACE", "2m")
	t.Setenv("RECONCILE_CONFIRM_WINDOW", "45s")
	if _, err := Load(); !errors.Is(err, ErrInvalid) {
		t.Fatalf("expected ErrInvalid for confirm window, got %v", err)
	}

	t.Setenv("RECONCILE_CONFIRM_WINDOW", "10m")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.ReconcileGrace != 2*time.Minute || cfg.ReconcileConfirm != 10*time.Minute {
		t.Fatalf("unexpected reconcile timings: grace=%s confirm=%s", cfg.ReconcileGrace, cfg.ReconcileConfirm)
	}
}
