package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/hosting-portal/internal/auth"
	"github.com/spec-kit/hosting-portal/internal/config"
	"github.com/spec-kit/hosting-portal/internal/domain"
	"github.com/spec-kit/hosting-portal/internal/identity"
	"github.com/spec-kit/hosting-portal/internal/repository"
	apperrors "github.com/spec-kit/hosting-portal/pkg/util/errorutil"
)

// AccountService coordinates portal registration and login flows.
// Session tokens are issued locally; admin privilege is never encoded
// in the token and is re-evaluated on every request.
type AccountService struct {
	users      repository.UserRepository
	tokenMgr   *identity.TokenManager
	bcryptCost int
}

// NewAccountService builds the service.
func NewAccountService(cfg config.AuthConfig, users repository.UserRepository, tokenMgr *identity.TokenManager) *AccountService {
	return &AccountService{
		users:      users,
		tokenMgr:   tokenMgr,
		bcryptCost: cfg.BcryptCost,
	}
}

// Register creates a new portal account with the client role.
func (s *AccountService) Register(ctx context.Context, name, email, password string) (*domain.User, string, time.Time, error) {
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, "", time.Time{}, apperrors.NewConflict("email already registered", nil)
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, "", time.Time{}, err
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, "", time.Time{}, err
	}

	user := &domain.User{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         domain.UserRoleClient,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, "", time.Time{}, err
	}

	token, exp, err := s.tokenMgr.Issue(user.ID)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	return user, token, exp, nil
}

// Login authenticates a portal account.
func (s *AccountService) Login(ctx context.Context, email, password string) (*domain.User, string, time.Time, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, "", time.Time{}, apperrors.NewUnauthenticated("invalid credentials")
		}
		return nil, "", time.Time{}, err
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, "", time.Time{}, apperrors.NewUnauthenticated("invalid credentials")
	}
	token, exp, err := s.tokenMgr.Issue(user.ID)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	return user, token, exp, nil
}
