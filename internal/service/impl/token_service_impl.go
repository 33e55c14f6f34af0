package impl

import (
	"errors"
	"fmt"
	"time"

	"pollution-tracker/internal/domain"
	"pollution-tracker/internal/observability/metrics"
	"pollution-tracker/internal/service"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type TokenConfig struct {
	TTL        time.Duration // e.g. 1h
	SigningKey []byte        // HS256 secret
}

type TokenServiceImpl struct {
	cfg TokenConfig
	now func() time.Time
}

func NewTokenServiceHS256(cfg TokenConfig) *TokenServiceImpl {
	if cfg.TTL <= 0 {
		cfg.TTL = time.Hour
	}
	return &TokenServiceImpl{cfg: cfg, now: time.Now}
}

// Issue signs a session token for subject.
func (t *TokenServiceImpl) Issue(subject string) (string, *service.Claims, error) {
	result := "success"
	defer func() {
		metrics.TokensIssuedTotal.WithLabelValues(result).Inc()
	}()

	if subject == "" {
		result = "failure"
		return "", nil, ErrEmptyCredential
	}
	if len(t.cfg.SigningKey) == 0 {
		result = "failure"
		return "", nil, errors.New("token signing key not configured")
	}

	now := t.now().UTC()
	claims := &service.Claims{
		Role: domain.RoleUser,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(now.Add(t.cfg.TTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        uuid.New().String(),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.cfg.SigningKey)
	if err != nil {
		result = "failure"
		return "", nil, fmt.Errorf("sign token: %w", err)
	}
	return signed, claims, nil
}

// Verify checks signature and expiry. Every failure is ErrUnauthenticated.
func (t *TokenServiceImpl) Verify(token string) (*service.Claims, error) {
	claims := &service.Claims{}
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.now),
	)
	tok, err := parser.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return t.cfg.SigningKey, nil
	})
	if err != nil || !tok.Valid || claims.Subject == "" {
		return nil, domain.ErrUnauthenticated
	}
	return claims, nil
}
