package auth

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/hosting-portal/internal/domain"
	"github.com/spec-kit/hosting-portal/internal/identity"
	"github.com/spec-kit/hosting-portal/internal/repository"
	apperrors "github.com/spec-kit/hosting-portal/pkg/util/errorutil"
)

const principalKey = "auth_principal"

// Principal represents the authenticated caller. IsAdmin is evaluated
// once per request at resolution time; response authorship records the
// value current at submission.
type Principal struct {
	UserID  string
	User    *domain.User
	IsAdmin bool
}

// AuthMiddleware resolves bearer tokens into principals.
type AuthMiddleware struct {
	tokens    *identity.TokenManager
	users     repository.UserRepository
	evaluator *Evaluator
}

// NewAuthMiddleware constructs middleware.
func NewAuthMiddleware(tokens *identity.TokenManager, users repository.UserRepository, evaluator *Evaluator) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens, users: users, evaluator: evaluator}
}

// Handle enforces authentication for protected routes. Any resolution
// failure short-circuits the request before business logic runs.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return apperrors.NewUnauthenticated("missing authorization header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return apperrors.NewUnauthenticated("invalid authorization header")
	}

	userID, err := m.tokens.Resolve(parts[1])
	if err != nil {
		return apperrors.NewUnauthenticated("invalid session token")
	}

	principal := &Principal{UserID: userID}

	// The user record may be absent when the identity provider knows
	// an account the portal has not seen yet; that is tolerated here
	// and repaired lazily on first ticket creation.
	user, err := m.users.GetByID(c.Context(), userID)
	switch {
	case err == nil:
		principal.User = user
	case errors.Is(err, pgx.ErrNoRows):
	default:
		return apperrors.ToDomainError(err)
	}

	isAdmin, err := m.evaluator.IsAdmin(c.Context(), userID)
	if err != nil {
		return apperrors.ToDomainError(err)
	}
	principal.IsAdmin = isAdmin

	c.Locals(principalKey, principal)
	return c.Next()
}

// PrincipalFromContext retrieves the authenticated entity.
func PrincipalFromContext(c *fiber.Ctx) (*Principal, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	principal, ok := val.(*Principal)
	return principal, ok
}
