// Package ledger anchors reading fingerprints on Solana as SPL Memo
// transactions and verifies them later from the transaction logs.
package ledger

import (
	"context"
	"crypto/ed25519"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"pollution-tracker/internal/domain"
	"pollution-tracker/internal/fingerprint"
	"pollution-tracker/internal/observability/metrics"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
)

// MemoProgramID is the SPL Memo program on mainnet, devnet and testnet.
var MemoProgramID = solana.MustPublicKeyFromBase58("MemoSq4gqABAXKb96qnH8TysNcWxMyWCqXgDLGmfcHr")

// RPC is the subset of the Solana JSON-RPC API the client uses. *rpc.Client
// satisfies it.
type RPC interface {
	GetVersion(ctx context.Context) (*rpc.GetVersionResult, error)
	GetBalance(ctx context.Context, account solana.PublicKey, commitment rpc.CommitmentType) (*rpc.GetBalanceResult, error)
	GetLatestBlockhash(ctx context.Context, commitment rpc.CommitmentType) (*rpc.GetLatestBlockhashResult, error)
	SendTransaction(ctx context.Context, tx *solana.Transaction) (solana.Signature, error)
	GetTransaction(ctx context.Context, sig solana.Signature, opts *rpc.GetTransactionOpts) (*rpc.GetTransactionResult, error)
}

type Config struct {
	Protocol   string // memo tag, e.g. "pollution"
	MinBalance uint64 // lamports
	Commitment rpc.CommitmentType
}

type Client struct {
	rpc    RPC
	key    solana.PrivateKey
	payer  solana.PublicKey
	cfg    Config
	logger *slog.Logger
}

func New(r RPC, key solana.PrivateKey, cfg Config) *Client {
	if cfg.Protocol == "" {
		cfg.Protocol = "pollution"
	}
	if cfg.Commitment == "" {
		cfg.Commitment = rpc.CommitmentConfirmed
	}
	c := &Client{
		rpc:    r,
		key:    key,
		cfg:    cfg,
		logger: slog.Default().With("component", "ledger"),
	}
	// a client without a key can still Verify
	if len(key) == ed25519.PrivateKeySize {
		c.payer = key.PublicKey()
	}
	return c
}

// Dial builds a client against a JSON-RPC endpoint.
func Dial(endpoint string, key solana.PrivateKey, cfg Config) *Client {
	return New(rpc.New(endpoint), key, cfg)
}

func (c *Client) PublicKey() solana.PublicKey { return c.payer }

// Memo is the exact string anchored for r.
func (c *Client) Memo(r domain.Reading) string {
	return fingerprint.Memo(c.cfg.Protocol, r.Fingerprint())
}

// CheckConnection asks the node for its version.
func (c *Client) CheckConnection(ctx context.Context) error {
	v, err := c.rpc.GetVersion(ctx)
	if err != nil {
		return fmt.Errorf("ledger: get version: %w", err)
	}
	c.logger.Info("connected to ledger node", "version", v.SolanaCore)
	return nil
}

// EnsureBalance fails unless the signing account holds more than the
// configured minimum. It is meant to run once at startup.
func (c *Client) EnsureBalance(ctx context.Context) error {
	res, err := c.rpc.GetBalance(ctx, c.payer, c.cfg.Commitment)
	if err != nil {
		return fmt.Errorf("ledger: get balance: %w", err)
	}
	c.logger.Info("signing account balance", "account", c.payer.String(), "lamports", res.Value)
	if res.Value <= c.cfg.MinBalance {
		return fmt.Errorf("%w: %d lamports, need more than %d", ErrInsufficientBalance, res.Value, c.cfg.MinBalance)
	}
	return nil
}

// Submit anchors the fingerprint of r and returns the transaction
// signature. It returns once the node accepts the transaction; it does not
// wait for confirmation and does not retry.
func (c *Client) Submit(ctx context.Context, r domain.Reading) (string, error) {
	start := time.Now()
	stage := StageBuilt
	if c.payer == (solana.PublicKey{}) {
		return "", &AnchorError{Stage: stage, Err: ErrInvalidKeypair}
	}
	result := "success"
	defer func() {
		metrics.LedgerSubmissionsTotal.WithLabelValues(string(stage), result).Inc()
		metrics.LedgerSubmitDurationSeconds.WithLabelValues().Observe(time.Since(start).Seconds())
	}()

	memo := c.Memo(r)
	ix := solana.NewInstruction(
		MemoProgramID,
		solana.AccountMetaSlice{solana.NewAccountMeta(c.payer, false, true)},
		[]byte(memo),
	)

	recent, err := c.rpc.GetLatestBlockhash(ctx, c.cfg.Commitment)
	if err != nil {
		result = "failure"
		return "", &AnchorError{Stage: stage, Err: fmt.Errorf("get latest blockhash: %w", err)}
	}
	if recent == nil || recent.Value == nil {
		result = "failure"
		return "", &AnchorError{Stage: stage, Err: errors.New("empty blockhash response")}
	}

	tx, err := solana.NewTransaction(
		[]solana.Instruction{ix},
		recent.Value.Blockhash,
		solana.TransactionPayer(c.payer),
	)
	if err != nil {
		result = "failure"
		return "", &AnchorError{Stage: stage, Err: fmt.Errorf("build transaction: %w", err)}
	}

	if _, err := tx.Sign(func(pub solana.PublicKey) *solana.PrivateKey {
		if pub.Equals(c.payer) {
			return &c.key
		}
		return nil
	}); err != nil {
		result = "failure"
		return "", &AnchorError{Stage: stage, Err: fmt.Errorf("sign transaction: %w", err)}
	}
	stage = StageSigned

	sig, err := c.rpc.SendTransaction(ctx, tx)
	if err != nil {
		result = "failure"
		return "", &AnchorError{Stage: stage, Err: fmt.Errorf("send transaction: %w", err)}
	}
	stage = StageSubmitted

	c.logger.Info("memo submitted", "reading_id", r.ID, "sensor_id", r.SensorID, "signature", sig.String(), "memo", memo)
	return sig.String(), nil
}

// Verify reports whether the transaction named by signature carries the
// memo for r. A transaction the node does not know yet is reported as
// (false, nil).
func (c *Client) Verify(ctx context.Context, r domain.Reading, signature string) (bool, error) {
	sig, err := solana.SignatureFromBase58(strings.TrimSpace(signature))
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}

	maxVersion := uint64(0)
	res, err := c.rpc.GetTransaction(ctx, sig, &rpc.GetTransactionOpts{
		Encoding:                       solana.EncodingBase64,
		Commitment:                     c.cfg.Commitment,
		MaxSupportedTransactionVersion: &maxVersion,
	})
	if err != nil {
		if errors.Is(err, rpc.ErrNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("ledger: get transaction: %w", err)
	}
	if res == nil || res.Meta == nil {
		return false, nil
	}

	// Memo program logs look like: Program log: Memo (len 77): "pollution:v1:<fp>"
	expected := c.Memo(r)
	for _, line := range res.Meta.LogMessages {
		if strings.Contains(line, expected) {
			return true, nil
		}
	}
	return false, nil
}
