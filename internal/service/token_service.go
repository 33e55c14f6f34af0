package service

import (
	"github.com/golang-jwt/jwt/v5"
)

// Claims is the verified content of a session token.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

type TokenService interface {
	Issue(subject string) (string, *Claims, error)
	Verify(token string) (*Claims, error)
}
