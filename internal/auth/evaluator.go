package auth

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/hosting-portal/internal/domain"
	"github.com/spec-kit/hosting-portal/internal/identity"
	"github.com/spec-kit/hosting-portal/internal/repository"
)

// Evaluator decides admin privilege by consulting two independent
// sources of truth: the persisted user record and the identity
// provider's metadata. Any true signal wins. The portal record and the
// provider can drift, so ORing trades possible false positives for no
// false negatives.
type Evaluator struct {
	users    repository.UserRepository
	provider identity.Provider
	logger   *zap.Logger
}

// NewEvaluator constructs the evaluator.
func NewEvaluator(users repository.UserRepository, provider identity.Provider, logger *zap.Logger) *Evaluator {
	return &Evaluator{users: users, provider: provider, logger: logger}
}

// IsAdmin reports whether the user holds admin privilege. Provider
// lookup failures are logged and treated as a false signal; they never
// surface to the caller. A missing user record is likewise a false
// signal, not an error.
func (e *Evaluator) IsAdmin(ctx context.Context, userID string) (bool, error) {
	dbAdmin := false
	user, err := e.users.GetByID(ctx, userID)
	switch {
	case err == nil:
		dbAdmin = recordSignal(user)
	case errors.Is(err, pgx.ErrNoRows):
		// no portal record yet; the provider may still vouch
	default:
		return false, err
	}

	providerAdmin := false
	meta, err := e.provider.GetUser(ctx, userID)
	if err != nil {
		e.logger.Warn("identity provider lookup failed",
			zap.String("user_id", userID),
			zap.Error(err))
	} else {
		providerAdmin = metadataSignal(meta)
	}

	return dbAdmin || providerAdmin, nil
}

func recordSignal(user *domain.User) bool {
	if user == nil {
		return false
	}
	return user.IsAdmin || user.Role == domain.UserRoleAdmin
}

func metadataSignal(meta *identity.Metadata) bool {
	if meta == nil {
		return false
	}
	return meta.IsAdmin || meta.Role == string(domain.UserRoleAdmin)
}
