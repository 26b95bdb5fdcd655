package identity

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/spec-kit/hosting-portal/internal/config"
)

// Metadata is the slice of the identity provider's user record the
// portal cares about.
type Metadata struct {
	IsAdmin bool   `json:"is_admin"`
	Role    string `json:"role"`
}

// Provider looks up user metadata at the external identity provider.
// Implementations must return an error for not-found and transient
// failures alike; recovery is the authorization evaluator's job.
type Provider interface {
	GetUser(ctx context.Context, userID string) (*Metadata, error)
}

type httpProvider struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewHTTPProvider builds a Provider over the identity provider's REST API.
func NewHTTPProvider(cfg config.IdentityConfig) Provider {
	return &httpProvider{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		client:  &http.Client{Timeout: cfg.Timeout()},
	}
}

func (p *httpProvider) GetUser(ctx context.Context, userID string) (*Metadata, error) {
	if p.baseURL == "" {
		return nil, fmt.Errorf("identity provider not configured")
	}

	endpoint := p.baseURL + "/v2/users/" + url.PathEscape(userID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	if p.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+p.apiKey)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("identity provider returned %d", resp.StatusCode)
	}

	var payload struct {
		UserID   string `json:"user_id"`
		Email    string `json:"email"`
		Metadata struct {
			IsAdmin bool   `json:"isAdmin"`
			Role    string `json:"role"`
		} `json:"app_metadata"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode identity response: %w", err)
	}

	return &Metadata{
		IsAdmin: payload.Metadata.IsAdmin,
		Role:    payload.Metadata.Role,
	}, nil
}

// staticProvider serves fixed metadata; used when the portal runs
// without an external provider (local development).
type staticProvider struct {
	users map[string]Metadata
}

// NewStaticProvider returns a Provider backed by an in-memory table.
func NewStaticProvider(users map[string]Metadata) Provider {
	return &staticProvider{users: users}
}

func (p *staticProvider) GetUser(_ context.Context, userID string) (*Metadata, error) {
	meta, ok := p.users[userID]
	if !ok {
		return nil, fmt.Errorf("user %s not found", userID)
	}
	return &meta, nil
}
