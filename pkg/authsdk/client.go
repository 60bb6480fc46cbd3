package authsdk

import (
	"context"
	"net/http"
	"strings"
	"time"
)

// SDKClient calls the public endpoints of the identity service and opens
// Sessions for the authenticated ones.
type SDKClient struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewSDKClient returns a client for the service at baseURL.
func NewSDKClient(baseURL string) *SDKClient {
	return &SDKClient{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Register creates a student or instructor account. The returned Session
// holds the token pair handed out at registration.
func (c *SDKClient) Register(ctx context.Context, req RegisterRequest) (*RegisterResponse, *Session, error) {
	resp, err := c.doRequest(ctx, http.MethodPost, "/register", "", req)
	if err != nil {
		return nil, nil, err
	}

	var out RegisterResponse
	if err := decodeJSON(resp, &out, http.StatusCreated); err != nil {
		return nil, nil, err
	}
	return &out, c.NewSession(out.Tokens), nil
}

// Login authenticates with username and password.
func (c *SDKClient) Login(ctx context.Context, username, password string) (*LoginResponse, *Session, error) {
	resp, err := c.doRequest(ctx, http.MethodPost, "/login", "", LoginRequest{
		Username: username,
		Password: password,
	})
	if err != nil {
		return nil, nil, err
	}

	var out LoginResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, nil, err
	}
	return &out, c.NewSession(out.Tokens), nil
}

// Refresh exchanges a refresh token for a new pair. The old refresh token
// is revoked by the exchange.
func (c *SDKClient) Refresh(ctx context.Context, refresh string) (TokenPair, error) {
	resp, err := c.doRequest(ctx, http.MethodPost, "/token/refresh", "", RefreshRequest{Refresh: refresh})
	if err != nil {
		return TokenPair{}, err
	}

	var out TokensResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return TokenPair{}, err
	}
	return out.Tokens, nil
}
