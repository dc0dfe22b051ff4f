package users

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/akarpovs/livegate/internal/common"
	"github.com/akarpovs/livegate/internal/logging"
	"github.com/akarpovs/livegate/internal/server/auth"
	"github.com/akarpovs/livegate/internal/server/config"
)

// AuthResult pairs an identity with a freshly signed access token.
type AuthResult struct {
	User  *User
	Token string
}

// Service orchestrates the credential store and the token primitives for
// the register/login/status flows.
type Service struct {
	repo                        Repository
	jwtSecret                   []byte
	accessTokenValidityDuration time.Duration
	bcryptCost                  int
	logger                      logging.Logger
}

func NewService(repo Repository, cfg *config.Config, logger logging.Logger) *Service {
	return &Service{
		repo:                        repo,
		jwtSecret:                   []byte(cfg.SecretKey),
		accessTokenValidityDuration: cfg.AccessTokenValidityDuration,
		bcryptCost:                  cfg.BcryptCost,
		logger:                      logger.With("module", "users_service"),
	}
}

// NormalizeEmail lowercases and trims an email so uniqueness is
// case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates a user with a bcrypt-hashed password and the default
// role set, then issues a token for it. A duplicate email yields
// common.ErrorConflict. The raw password is never stored or logged.
func (s *Service) Register(ctx context.Context, email, password, fullName string) (*AuthResult, error) {

	passwordHash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		s.logger.Error(ctx, "failed to hash password", "error", err)
		return nil, common.ErrorInternal
	}

	user := &User{
		ID:           uuid.NewString(),
		Email:        NormalizeEmail(email),
		PasswordHash: passwordHash,
		FullName:     fullName,
		IsActive:     true,
		Roles:        []Role{RoleUser},
	}

	user, err = s.repo.Create(ctx, user)
	if err != nil {
		if errors.Is(err, common.ErrorConflict) {
			return nil, common.ErrorConflict
		}
		return nil, fmt.Errorf("error creating user: %w", err)
	}

	s.logger.Info(ctx, "user registered", "email", user.Email)

	return s.result(ctx, user)
}

// Login verifies credentials and issues a token. An unknown email and a
// wrong password are deliberately indistinguishable: both yield
// common.ErrorUnauthorized.
func (s *Service) Login(ctx context.Context, email, password string) (*AuthResult, error) {

	user, err := s.repo.GetByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		s.logger.Error(ctx, "failed to get user", "error", err)
		return nil, common.ErrorInternal
	}

	if !auth.CheckPassword(user.PasswordHash, password) {
		return nil, common.ErrorUnauthorized
	}

	if !user.IsActive {
		return nil, common.ErrorUnauthorized
	}

	return s.result(ctx, user)
}

// CheckStatus re-issues a token for an already-authenticated identity. This
// is the only path that extends a session's effective life.
func (s *Service) CheckStatus(ctx context.Context, user *User) (*AuthResult, error) {
	return s.result(ctx, user)
}

func (s *Service) result(ctx context.Context, user *User) (*AuthResult, error) {
	token, err := auth.GenerateToken(user.ID, s.jwtSecret, s.accessTokenValidityDuration)
	if err != nil {
		s.logger.Error(ctx, "failed to generate token", "error", err)
		return nil, common.ErrorInternal
	}
	return &AuthResult{User: user, Token: token}, nil
}
