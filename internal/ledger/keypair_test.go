package ledger

import (
	"encoding/json"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/mr-tron/base58"
	"github.com/stretchr/testify/require"
)

func TestParseKeypair(t *testing.T) {
	key, err := solana.NewRandomPrivateKey()
	require.NoError(t, err)

	ints := make([]int, len(key))
	for i, b := range key {
		ints[i] = int(b)
	}
	asJSON, err := json.Marshal(ints)
	require.NoError(t, err)

	t.Run("json byte array", func(t *testing.T) {
		got, err := ParseKeypair(string(asJSON))
		require.NoError(t, err)
		require.True(t, got.PublicKey().Equals(key.PublicKey()))
	})

	t.Run("base58", func(t *testing.T) {
		got, err := ParseKeypair("  " + base58.Encode(key) + "\n")
		require.NoError(t, err)
		require.True(t, got.PublicKey().Equals(key.PublicKey()))
	})

	tampered := append([]byte(nil), key...)
	tampered[63] ^= 0xff

	for name, raw := range map[string]string{
		"empty":         "",
		"short":         base58.Encode(key[:32]),
		"bad base58":    "0OIl",
		"bad json":      "[1,2,",
		"byte overflow": "[256]",
		"mismatched":    base58.Encode(tampered),
	} {
		t.Run(name, func(t *testing.T) {
			_, err := ParseKeypair(raw)
			require.ErrorIs(t, err, ErrInvalidKeypair)
		})
	}
}
