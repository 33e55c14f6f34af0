package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"pollution-tracker/internal/domain"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/stretchr/testify/require"
)

type fakeRPC struct {
	balance      uint64
	balanceErr   error
	blockhashErr error
	sendErr      error
	getTxErr     error
	logs         []string

	sent      []*solana.Transaction
	lookedUp  []solana.Signature
	lastTxOpt *rpc.GetTransactionOpts
}

func (f *fakeRPC) GetVersion(context.Context) (*rpc.GetVersionResult, error) {
	return &rpc.GetVersionResult{SolanaCore: "1.18.0"}, nil
}

func (f *fakeRPC) GetBalance(context.Context, solana.PublicKey, rpc.CommitmentType) (*rpc.GetBalanceResult, error) {
	if f.balanceErr != nil {
		return nil, f.balanceErr
	}
	return &rpc.GetBalanceResult{Value: f.balance}, nil
}

func (f *fakeRPC) GetLatestBlockhash(context.Context, rpc.CommitmentType) (*rpc.GetLatestBlockhashResult, error) {
	if f.blockhashErr != nil {
		return nil, f.blockhashErr
	}
	return &rpc.GetLatestBlockhashResult{
		Value: &rpc.LatestBlockhashResult{Blockhash: solana.HashFromBytes(make([]byte, 32))},
	}, nil
}

func (f *fakeRPC) SendTransaction(_ context.Context, tx *solana.Transaction) (solana.Signature, error) {
	if f.sendErr != nil {
		return solana.Signature{}, f.sendErr
	}
	f.sent = append(f.sent, tx)
	return tx.Signatures[0], nil
}

func (f *fakeRPC) GetTransaction(_ context.Context, sig solana.Signature, opts *rpc.GetTransactionOpts) (*rpc.GetTransactionResult, error) {
	f.lookedUp = append(f.lookedUp, sig)
	f.lastTxOpt = opts
	if f.getTxErr != nil {
		return nil, f.getTxErr
	}
	return &rpc.GetTransactionResult{Meta: &rpc.TransactionMeta{LogMessages: f.logs}}, nil
}

func newTestClient(t *testing.T, f *fakeRPC) *Client {
	t.Helper()
	key, err := solana.NewRandomPrivateKey()
	require.NoError(t, err)
	return New(f, key, Config{Protocol: "pollution", MinBalance: 1_000_000})
}

func sampleReading() domain.Reading {
	return domain.Reading{
		ID:          42,
		SensorID:    7,
		Timestamp:   time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
		CO2:         412.5,
		Temperature: 21.3,
	}
}

func TestSubmitBuildsSignedMemoTransaction(t *testing.T) {
	f := &fakeRPC{}
	c := newTestClient(t, f)
	r := sampleReading()

	sig, err := c.Submit(context.Background(), r)
	require.NoError(t, err)
	require.Len(t, f.sent, 1)

	tx := f.sent[0]
	require.Equal(t, tx.Signatures[0].String(), sig)
	require.NoError(t, tx.VerifySignatures())
	require.True(t, tx.Message.AccountKeys[0].Equals(c.PublicKey()), "payer must be the first account")

	require.Len(t, tx.Message.Instructions, 1)
	ix := tx.Message.Instructions[0]
	require.True(t, tx.Message.AccountKeys[ix.ProgramIDIndex].Equals(MemoProgramID))

	memo := string(ix.Data)
	require.Equal(t, c.Memo(r), memo)
	require.True(t, strings.HasPrefix(memo, "pollution:v1:"))
	require.Len(t, strings.TrimPrefix(memo, "pollution:v1:"), 64)
}

func TestSubmitFailureStages(t *testing.T) {
	boom := errors.New("node unavailable")

	tests := []struct {
		name  string
		fake  *fakeRPC
		stage Stage
	}{
		{"blockhash", &fakeRPC{blockhashErr: boom}, StageBuilt},
		{"send", &fakeRPC{sendErr: boom}, StageSigned},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, tt.fake)
			sig, err := c.Submit(context.Background(), sampleReading())
			require.Error(t, err)
			require.Empty(t, sig)

			var ae *AnchorError
			require.ErrorAs(t, err, &ae)
			require.Equal(t, tt.stage, ae.Stage)
			require.ErrorIs(t, err, domain.ErrAnchor)
			require.ErrorIs(t, err, boom)
			require.Equal(t, domain.KindAnchor, domain.KindOf(err))
			require.Empty(t, tt.fake.sent)
		})
	}
}

func TestVerify(t *testing.T) {
	r := sampleReading()

	t.Run("memo present", func(t *testing.T) {
		f := &fakeRPC{}
		c := newTestClient(t, f)
		f.logs = []string{
			"Program MemoSq4gqABAXKb96qnH8TysNcWxMyWCqXgDLGmfcHr invoke [1]",
			`Program log: Memo (len 77): "` + c.Memo(r) + `"`,
			"Program MemoSq4gqABAXKb96qnH8TysNcWxMyWCqXgDLGmfcHr success",
		}
		sig, err := c.Submit(context.Background(), r)
		require.NoError(t, err)

		ok, err := c.Verify(context.Background(), r, sig)
		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, solana.EncodingBase64, f.lastTxOpt.Encoding)
		require.NotNil(t, f.lastTxOpt.MaxSupportedTransactionVersion)
		require.Equal(t, uint64(0), *f.lastTxOpt.MaxSupportedTransactionVersion)
	})

	t.Run("different reading", func(t *testing.T) {
		f := &fakeRPC{}
		c := newTestClient(t, f)
		f.logs = []string{`Program log: Memo (len 77): "` + c.Memo(r) + `"`}
		sig, err := c.Submit(context.Background(), r)
		require.NoError(t, err)

		other := r
		other.CO2 = 413
		ok, err := c.Verify(context.Background(), other, sig)
		require.NoError(t, err)
		require.False(t, ok)
	})

	t.Run("not found", func(t *testing.T) {
		f := &fakeRPC{getTxErr: rpc.ErrNotFound}
		c := newTestClient(t, f)
		sig, err := c.Submit(context.Background(), r)
		require.NoError(t, err)

		ok, err := c.Verify(context.Background(), r, sig)
		require.NoError(t, err)
		require.False(t, ok)
	})

	t.Run("node error", func(t *testing.T) {
		f := &fakeRPC{getTxErr: errors.New("timeout")}
		c := newTestClient(t, f)
		sig, err := c.Submit(context.Background(), r)
		require.NoError(t, err)

		_, err = c.Verify(context.Background(), r, sig)
		require.Error(t, err)
	})

	t.Run("malformed signature", func(t *testing.T) {
		f := &fakeRPC{}
		c := newTestClient(t, f)
		_, err := c.Verify(context.Background(), r, "not-a-signature")
		require.ErrorIs(t, err, ErrInvalidSignature)
		require.Empty(t, f.lookedUp)
	})
}

func TestEnsureBalance(t *testing.T) {
	ctx := context.Background()

	c := newTestClient(t, &fakeRPC{balance: 5_000_000})
	require.NoError(t, c.EnsureBalance(ctx))

	c = newTestClient(t, &fakeRPC{balance: 1_000_000})
	require.ErrorIs(t, c.EnsureBalance(ctx), ErrInsufficientBalance)

	c = newTestClient(t, &fakeRPC{balanceErr: errors.New("refused")})
	err := c.EnsureBalance(ctx)
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrInsufficientBalance)
}

func TestCheckConnection(t *testing.T) {
	c := newTestClient(t, &fakeRPC{})
	require.NoError(t, c.CheckConnection(context.Background()))
}

func TestClientWithoutKeyCanOnlyVerify(t *testing.T) {
	f := &fakeRPC{}
	c := New(f, nil, Config{})

	_, err := c.Submit(context.Background(), sampleReading())
	require.ErrorIs(t, err, ErrInvalidKeypair)
	require.ErrorIs(t, err, domain.ErrAnchor)
	require.Empty(t, f.sent)

	key, err := solana.NewRandomPrivateKey()
	require.NoError(t, err)
	signer := New(f, key, Config{})
	sig, err := signer.Submit(context.Background(), sampleReading())
	require.NoError(t, err)

	f.logs = []string{`Program log: Memo (len 77): "` + c.Memo(sampleReading()) + `"`}
	ok, err := c.Verify(context.Background(), sampleReading(), sig)
	require.NoError(t, err)
	require.True(t, ok)
}

// rpcNode answers getTransaction like a validator would, with the memo
// program logs in meta and the transaction itself base64 encoded.
func rpcNode(t *testing.T, logs []string, found bool) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		var req struct {
			ID     json.RawMessage   `json:"id"`
			Method string            `json:"method"`
			Params []json.RawMessage `json:"params"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		var result any
		if req.Method == "getTransaction" && found {
			var opts struct {
				Encoding string `json:"encoding"`
			}
			if len(req.Params) > 1 {
				_ = json.Unmarshal(req.Params[1], &opts)
			}
			result = map[string]any{
				"slot":        1234,
				"version":     0,
				"transaction": []string{"", opts.Encoding},
				"meta": map[string]any{
					"err":          nil,
					"fee":          5000,
					"preBalances":  []uint64{},
					"postBalances": []uint64{},
					"logMessages":  logs,
				},
			}
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"jsonrpc": "2.0",
			"id":      req.ID,
			"result":  result,
		})
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func TestVerifyAgainstJSONRPCNode(t *testing.T) {
	r := sampleReading()
	sig := solana.SignatureFromBytes(make([]byte, 64)).String()

	memos := New(nil, nil, Config{Protocol: "pollution"})
	logs := []string{
		"Program MemoSq4gqABAXKb96qnH8TysNcWxMyWCqXgDLGmfcHr invoke [1]",
		`Program log: Memo (len 77): "` + memos.Memo(r) + `"`,
		"Program MemoSq4gqABAXKb96qnH8TysNcWxMyWCqXgDLGmfcHr success",
	}

	t.Run("memo on chain", func(t *testing.T) {
		srv, calls := rpcNode(t, logs, true)
		c := Dial(srv.URL, nil, Config{Protocol: "pollution"})

		ok, err := c.Verify(context.Background(), r, sig)
		require.NoError(t, err)
		require.True(t, ok)
		require.EqualValues(t, 1, calls.Load())
	})

	t.Run("unknown transaction", func(t *testing.T) {
		srv, calls := rpcNode(t, logs, false)
		c := Dial(srv.URL, nil, Config{Protocol: "pollution"})

		ok, err := c.Verify(context.Background(), r, sig)
		require.NoError(t, err)
		require.False(t, ok)
		require.EqualValues(t, 1, calls.Load())
	})
}
