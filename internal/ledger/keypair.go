package ledger

import (
	"crypto/ed25519"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/gagliardetto/solana-go"
	"github.com/mr-tron/base58"
)

// ParseKeypair decodes the service signing key. Both the solana-keygen JSON
// byte array and a base58 encoded 64-byte secret key are accepted.
func ParseKeypair(raw string) (solana.PrivateKey, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, fmt.Errorf("%w: empty", ErrInvalidKeypair)
	}

	var secret []byte
	if strings.HasPrefix(raw, "[") {
		var ints []int
		if err := json.Unmarshal([]byte(raw), &ints); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidKeypair, err)
		}
		secret = make([]byte, len(ints))
		for i, n := range ints {
			if n < 0 || n > 255 {
				return nil, fmt.Errorf("%w: byte %d out of range", ErrInvalidKeypair, i)
			}
			secret[i] = byte(n)
		}
	} else {
		b, err := base58.Decode(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidKeypair, err)
		}
		secret = b
	}

	if len(secret) != ed25519.PrivateKeySize {
		return nil, fmt.Errorf("%w: expected %d bytes, got %d", ErrInvalidKeypair, ed25519.PrivateKeySize, len(secret))
	}
	// the trailing 32 bytes must be the public half of the seed
	derived := ed25519.NewKeyFromSeed(secret[:ed25519.SeedSize])
	if !derived.Equal(ed25519.PrivateKey(secret)) {
		return nil, fmt.Errorf("%w: public key does not match seed", ErrInvalidKeypair)
	}
	return solana.PrivateKey(secret), nil
}
