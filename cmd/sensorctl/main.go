package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"pollution-tracker/internal/config"
	"pollution-tracker/internal/domain"
	"pollution-tracker/internal/ledger"
	"pollution-tracker/internal/observability/logging"
	"pollution-tracker/internal/store"
	"pollution-tracker/pkg/db"

	"github.com/gagliardetto/solana-go"
)

func main() {
	if len(os.Args) < 2 {
		usage()
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	cfg := config.LoadDB()
	// logs go to stderr so stdout stays machine readable
	logger := logging.NewLogger(logging.Config{
		ServiceName: "sensorctl",
		Environment: cfg.Environment,
		Level:       cfg.LogLevel,
		Output:      os.Stderr,
	})
	slog.SetDefault(logger)

	var err error
	switch cmd {
	case "register-sensor":
		err = runRegisterSensor(cfg, args)
	case "list-sensors":
		err = runListSensors(cfg, args)
	case "verify":
		err = runVerify(cfg, args)
	case "pubkey":
		err = runPubkey(cfg)
	default:
		usage()
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: %s <command> [options]\n", os.Args[0])
	fmt.Fprintln(os.Stderr, "Commands:")
	fmt.Fprintln(os.Stderr, "  register-sensor  Register a sensor for an existing user")
	fmt.Fprintln(os.Stderr, "  list-sensors     List the sensors owned by a user")
	fmt.Fprintln(os.Stderr, "  verify           Check a stored reading against its ledger anchor")
	fmt.Fprintln(os.Stderr, "  pubkey           Print the public key of SOLANA_KEYPAIR")
	os.Exit(2)
}

func openStore(cfg config.Config) (*store.Store, func(), error) {
	gdb, err := db.OpenGorm(db.Config{DSN: cfg.DatabaseURL, LogSQL: cfg.LogSQL, MaxOpenConns: cfg.DBMaxConns})
	if err != nil {
		return nil, nil, fmt.Errorf("open database: %w", err)
	}
	closeFn := func() {
		if sqlDB, err := gdb.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	return store.New(gdb), closeFn, nil
}

type registerOpts struct {
	id       int
	name     string
	location string
	owner    string
}

func runRegisterSensor(cfg config.Config, args []string) error {
	fs := flag.NewFlagSet("register-sensor", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var o registerOpts
	fs.IntVar(&o.id, "id", 0, "sensor id (positive integer)")
	fs.StringVar(&o.name, "name", "", "sensor name")
	fs.StringVar(&o.location, "location", "", "sensor location")
	fs.StringVar(&o.owner, "owner", "", "owning username")
	if err := fs.Parse(args); err != nil {
		return err
	}
	o.owner = strings.TrimSpace(o.owner)
	if o.id <= 0 || o.id > 1<<31-1 {
		return fmt.Errorf("-id must be a positive 32-bit integer")
	}
	if o.owner == "" {
		return fmt.Errorf("-owner is required")
	}

	st, closeFn, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer closeFn()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := st.Migrate(ctx); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	sensor := &domain.Sensor{
		ID:       domain.SensorID(o.id),
		Name:     strings.TrimSpace(o.name),
		Location: strings.TrimSpace(o.location),
		Owner:    o.owner,
	}
	err = st.WithTx(ctx, func(tx *store.Store) error {
		if _, err := tx.Users().GetByUsername(ctx, o.owner); err != nil {
			if errors.Is(err, store.ErrRecordNotFound) {
				return fmt.Errorf("user %q does not exist", o.owner)
			}
			return err
		}
		if err := tx.Sensors().Create(ctx, sensor); err != nil {
			if errors.Is(err, store.ErrDuplicate) {
				return fmt.Errorf("sensor %d already registered", o.id)
			}
			return err
		}
		return nil
	})
	if err != nil {
		return err
	}
	return printJSON(sensor)
}

func runListSensors(cfg config.Config, args []string) error {
	fs := flag.NewFlagSet("list-sensors", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	owner := fs.String("owner", "", "owning username")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if strings.TrimSpace(*owner) == "" {
		return fmt.Errorf("-owner is required")
	}

	st, closeFn, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer closeFn()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	sensors, err := st.Sensors().ListByOwner(ctx, strings.TrimSpace(*owner))
	if err != nil {
		return err
	}
	return printJSON(sensors)
}

func runVerify(cfg config.Config, args []string) error {
	fs := flag.NewFlagSet("verify", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	readingID := fs.Int64("reading", 0, "reading id")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *readingID <= 0 {
		return fmt.Errorf("-reading is required")
	}
	if cfg.SolanaRPC == "" {
		return fmt.Errorf("SOLANA_RPC is required")
	}

	st, closeFn, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer closeFn()

	ctx, cancel := context.WithTimeout(context.Background(), cfg.LedgerTimeout)
	defer cancel()

	r, err := st.Readings().Get(ctx, domain.ReadingID(*readingID))
	if err != nil {
		return fmt.Errorf("load reading %d: %w", *readingID, err)
	}

	// verification needs no signing key
	var key solana.PrivateKey
	if cfg.SolanaKeypair != "" {
		if key, err = ledger.ParseKeypair(cfg.SolanaKeypair); err != nil {
			return err
		}
	}
	lc := ledger.Dial(cfg.SolanaRPC, key, ledger.Config{Protocol: cfg.MemoProtocol})

	out := struct {
		Reading     domain.Reading `json:"reading"`
		Fingerprint string         `json:"fingerprint"`
		Memo        string         `json:"memo"`
		Verified    bool           `json:"verified"`
	}{
		Reading:     *r,
		Fingerprint: r.Fingerprint(),
		Memo:        lc.Memo(*r),
	}
	if r.AnchorSignature != nil {
		if out.Verified, err = lc.Verify(ctx, *r, *r.AnchorSignature); err != nil {
			return err
		}
	}
	return printJSON(out)
}

func runPubkey(cfg config.Config) error {
	if cfg.SolanaKeypair == "" {
		return fmt.Errorf("SOLANA_KEYPAIR is required")
	}
	key, err := ledger.ParseKeypair(cfg.SolanaKeypair)
	if err != nil {
		return err
	}
	fmt.Println(key.PublicKey().String())
	return nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
