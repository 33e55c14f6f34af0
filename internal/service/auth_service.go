package service

import (
	"context"

	"pollution-tracker/internal/dto"
)

type AuthService interface {
	Register(ctx context.Context, form dto.UserForm) error
	Login(ctx context.Context, form dto.UserForm) (*dto.LoginResponse, error)
}
