package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"teamtask/internal/models"
	"teamtask/internal/repository"
	"teamtask/pkg/crypto"
	"teamtask/pkg/logger"

	"go.uber.org/zap"
)

// UserStore is the part of the user accessor the auth flow needs.
type UserStore interface {
	Create(ctx context.Context, name, email, password string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id int64) (*models.User, error)
	FindByResetToken(ctx context.Context, tokenHash string, now time.Time) (*models.User, error)
	ComparePassword(password, hash string) bool
	SetResetToken(ctx context.Context, id int64, tokenHash string, expires time.Time) error
	ResetPassword(ctx context.Context, id int64, password string) error
}

// AuthResult is returned by register and login.
type AuthResult struct {
	Token string            `json:"token"`
	User  models.PublicUser `json:"user"`
}

type AuthService struct {
	users    UserStore
	tokens   *TokenManager
	resetTTL time.Duration
	now      func() time.Time
}

func NewAuthService(users UserStore, tokens *TokenManager, resetTTL time.Duration) *AuthService {
	return &AuthService{users: users, tokens: tokens, resetTTL: resetTTL, now: time.Now}
}

func (s *AuthService) Register(ctx context.Context, name, email, password string) (*AuthResult, error) {
	_, err := s.users.FindByEmail(ctx, email)
	if err == nil {
		return nil, ErrUserExists
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("find user: %w", err)
	}

	user, err := s.users.Create(ctx, name, email, password)
	if err != nil {
		// lost a race with a concurrent registration
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrUserExists
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	logger.AuditLogger.Info("User registered", zap.Int64("user_id", user.ID))
	return s.issue(user)
}

// Login fails with ErrInvalidCredentials for an unknown email and for a
// wrong password alike.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			logger.SecurityLogger.Warn("Login failed", zap.String("reason", "unknown email"))
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	if !s.users.ComparePassword(password, user.Password) {
		logger.SecurityLogger.Warn("Login failed", zap.String("reason", "wrong password"), zap.Int64("user_id", user.ID))
		return nil, ErrInvalidCredentials
	}

	logger.AuditLogger.Info("User logged in", zap.Int64("user_id", user.ID))
	return s.issue(user)
}

func (s *AuthService) Me(ctx context.Context, id int64) (*models.PublicUser, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	pub := user.Public()
	return &pub, nil
}

// ForgotPassword stores a fresh reset token for the account and returns the
// raw token. Unknown emails return an empty token and no error.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) (string, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			logger.SecurityLogger.Warn("Password reset requested for unknown email")
			return "", nil
		}
		return "", fmt.Errorf("find user: %w", err)
	}

	token, hash, err := crypto.GenerateResetToken()
	if err != nil {
		return "", fmt.Errorf("generate reset token: %w", err)
	}
	if err := s.users.SetResetToken(ctx, user.ID, hash, s.now().Add(s.resetTTL)); err != nil {
		return "", fmt.Errorf("store reset token: %w", err)
	}

	logger.SecurityLogger.Info("Password reset token issued", zap.Int64("user_id", user.ID))
	return token, nil
}

func (s *AuthService) ResetPassword(ctx context.Context, token, password string) error {
	if err := crypto.ValidateTokenFormat(token); err != nil {
		return ErrInvalidResetToken
	}

	user, err := s.users.FindByResetToken(ctx, crypto.HashToken(token), s.now())
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrInvalidResetToken
		}
		return fmt.Errorf("find user by reset token: %w", err)
	}
	if err := s.users.ResetPassword(ctx, user.ID, password); err != nil {
		return fmt.Errorf("reset password: %w", err)
	}

	logger.SecurityLogger.Info("Password reset", zap.Int64("user_id", user.ID))
	return nil
}

func (s *AuthService) issue(user *models.User) (*AuthResult, error) {
	token, err := s.tokens.Generate(user)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}
	return &AuthResult{Token: token, User: user.Public()}, nil
}
