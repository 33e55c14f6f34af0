package impl

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"pollution-tracker/internal/domain"
	"pollution-tracker/internal/dto"
	"pollution-tracker/internal/observability/logging"
	"pollution-tracker/internal/observability/metrics"
	"pollution-tracker/internal/service"
	"pollution-tracker/internal/store"
)

type userStore interface {
	Create(ctx context.Context, usr *domain.User) error
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
}

type AuthServiceImpl struct {
	Users           userStore
	PasswordService service.PasswordService
	TService        service.TokenService
}

func NewAuthServiceImpl(st *store.Store, passwordService service.PasswordService, tokenService service.TokenService) *AuthServiceImpl {
	return &AuthServiceImpl{
		Users:           st.Users(),
		PasswordService: passwordService,
		TService:        tokenService,
	}
}

func (a *AuthServiceImpl) Register(ctx context.Context, form dto.UserForm) error {
	result := "success"
	defer func() {
		metrics.AuthRegistrationsTotal.WithLabelValues(result).Inc()
	}()

	username := strings.TrimSpace(form.Username)
	if username == "" || form.Password == "" {
		result = "invalid"
		return fmt.Errorf("%w: username and password are required", domain.ErrInvalidInput)
	}

	hash, err := a.PasswordService.Hash(form.Password)
	if err != nil {
		result = "failure"
		return fmt.Errorf("hash password: %w", err)
	}

	if err := a.Users.Create(ctx, &domain.User{Username: username, PasswordHash: hash}); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			result = "conflict"
			return domain.ErrUsernameTaken
		}
		result = "failure"
		return fmt.Errorf("%w: create user: %v", domain.ErrStore, err)
	}

	logging.FromContext(ctx).Info("user registered", "username", username)
	return nil
}

func (a *AuthServiceImpl) Login(ctx context.Context, form dto.UserForm) (*dto.LoginResponse, error) {
	result := "success"
	defer func() {
		metrics.AuthLoginsTotal.WithLabelValues(result).Inc()
	}()

	username := strings.TrimSpace(form.Username)
	if username == "" || form.Password == "" {
		result = "invalid"
		return nil, domain.ErrInvalidCredentials
	}

	user, err := a.Users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			result = "invalid"
			return nil, domain.ErrInvalidCredentials
		}
		result = "failure"
		return nil, fmt.Errorf("%w: load user: %v", domain.ErrStore, err)
	}

	if !a.PasswordService.Verify(form.Password, user.PasswordHash) {
		result = "invalid"
		return nil, domain.ErrInvalidCredentials
	}

	token, claims, err := a.TService.Issue(user.Username)
	if err != nil {
		result = "failure"
		return nil, fmt.Errorf("issue token: %w", err)
	}

	logging.FromContext(ctx).Info("user logged in", "username", user.Username, "jti", claims.ID)
	return &dto.LoginResponse{
		Token:    token,
		Username: user.Username,
		Role:     claims.Role,
	}, nil
}
