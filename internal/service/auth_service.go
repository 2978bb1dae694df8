package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/authz"
	"github.com/spec-kit/helpdesk-service/internal/config"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util"
)

// AuthService coordinates registration, login and user administration. Its
// output is the authenticated principal the rest of the service consumes.
type AuthService struct {
	users      repository.UserRepository
	tokenMgr   *auth.TokenManager
	bcryptCost int
}

// NewAuthService builds the service.
func NewAuthService(cfg config.AuthConfig, users repository.UserRepository) *AuthService {
	return &AuthService{
		users:      users,
		tokenMgr:   auth.NewTokenManager(cfg.JWTSecret, cfg.AccessTokenTTLMinutes),
		bcryptCost: cfg.BcryptCost,
	}
}

// Register creates a new customer account and returns a signed token.
func (s *AuthService) Register(ctx context.Context, name, email, password string) (*domain.User, string, time.Time, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)
	if name == "" || email == "" || password == "" {
		return nil, "", time.Time{}, apperrors.NewValidationError("name, email and password are required", nil)
	}

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, "", time.Time{}, apperrors.NewConflict("email already registered", map[string]any{"email": email})
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, "", time.Time{}, apperrors.MapError(err)
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, "", time.Time{}, apperrors.MapError(err)
	}

	user := &domain.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         domain.RoleCustomer,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, "", time.Time{}, apperrors.MapError(err)
	}

	token, exp, err := s.tokenMgr.GenerateToken(user.ID, user.Role)
	if err != nil {
		return nil, "", time.Time{}, apperrors.MapError(err)
	}
	return user, token, exp, nil
}

// Login authenticates a principal by email and password.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.User, string, time.Time, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, "", time.Time{}, apperrors.NewUnauthorized("invalid credentials")
		}
		return nil, "", time.Time{}, apperrors.MapError(err)
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, "", time.Time{}, apperrors.NewUnauthorized("invalid credentials")
	}
	token, exp, err := s.tokenMgr.GenerateToken(user.ID, user.Role)
	if err != nil {
		return nil, "", time.Time{}, apperrors.MapError(err)
	}
	return user, token, exp, nil
}

// ListUsers returns all principals. Admin only.
func (s *AuthService) ListUsers(ctx context.Context, principal *domain.User) ([]domain.User, error) {
	if principal == nil {
		return nil, apperrors.NewUnauthorized("authentication required")
	}
	if !authz.CanPerform(principal, authz.ActionListUsers, nil) {
		return nil, apperrors.NewForbidden("admin role required")
	}
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return users, nil
}

// DeleteUser removes a principal. Admin only.
func (s *AuthService) DeleteUser(ctx context.Context, principal *domain.User, id string) error {
	if principal == nil {
		return apperrors.NewUnauthorized("authentication required")
	}
	if !authz.CanPerform(principal, authz.ActionDeleteUser, nil) {
		return apperrors.NewForbidden("admin role required")
	}
	if err := s.users.Delete(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("user", map[string]any{"id": id})
		}
		return apperrors.MapError(err)
	}
	return nil
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}
