package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/hosting-portal/internal/domain"
	"github.com/spec-kit/hosting-portal/internal/identity"
	apperrors "github.com/spec-kit/hosting-portal/pkg/util/errorutil"
)

func newTestApp(users *fakeUserRepo, provider *fakeProvider) (*fiber.App, *identity.TokenManager) {
	tokenMgr := identity.NewTokenManager("test-secret", 60)
	evaluator := NewEvaluator(users, provider, zap.NewNop())
	middleware := NewAuthMiddleware(tokenMgr, users, evaluator)

	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		err := c.Next()
		if err != nil {
			domainErr := apperrors.ToDomainError(err)
			return c.Status(domainErr.HTTPStatus).JSON(fiber.Map{"code": domainErr.Code})
		}
		return nil
	})
	app.Get("/whoami", middleware.Handle, RequireAuthenticated(), func(c *fiber.Ctx) error {
		principal, _ := PrincipalFromContext(c)
		return c.JSON(fiber.Map{"user_id": principal.UserID, "is_admin": principal.IsAdmin})
	})
	app.Get("/admin", middleware.Handle, RequireAdmin(), func(c *fiber.Ctx) error {
		return c.SendStatus(http.StatusNoContent)
	})
	return app, tokenMgr
}

func TestMiddlewareRejectsMissingAndMalformedTokens(t *testing.T) {
	app, _ := newTestApp(
		&fakeUserRepo{users: map[string]*domain.User{}},
		&fakeProvider{meta: map[string]identity.Metadata{}},
	)

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("test request: %v", err)
	}
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("missing header: status %d", resp.StatusCode)
	}

	req = httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer bogus")
	resp, err = app.Test(req)
	if err != nil {
		t.Fatalf("test request: %v", err)
	}
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("bogus token: status %d", resp.StatusCode)
	}
}

func TestMiddlewareResolvesPrincipal(t *testing.T) {
	users := &fakeUserRepo{users: map[string]*domain.User{
		"u-1": {ID: "u-1", Name: "Dana"},
	}}
	app, tokenMgr := newTestApp(users, &fakeProvider{meta: map[string]identity.Metadata{}})

	token, _, err := tokenMgr.Issue("u-1")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("test request: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
}

func TestRequireAdminGatesNonAdmins(t *testing.T) {
	users := &fakeUserRepo{users: map[string]*domain.User{
		"client": {ID: "client"},
		"boss":   {ID: "boss", IsAdmin: true},
	}}
	app, tokenMgr := newTestApp(users, &fakeProvider{meta: map[string]identity.Metadata{}})

	clientToken, _, _ := tokenMgr.Issue("client")
	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+clientToken)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("test request: %v", err)
	}
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("client on admin route: status %d", resp.StatusCode)
	}

	adminToken, _, _ := tokenMgr.Issue("boss")
	req = httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+adminToken)
	resp, err = app.Test(req)
	if err != nil {
		t.Fatalf("test request: %v", err)
	}
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("admin on admin route: status %d", resp.StatusCode)
	}
}
