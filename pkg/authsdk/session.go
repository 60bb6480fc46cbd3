package authsdk

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// refreshBuffer is how long before access token expiry a Session refreshes.
const refreshBuffer = 30 * time.Second

// Session is an authenticated caller. It refreshes the access token shortly
// before it expires, rotating the refresh token as the service requires.
type Session struct {
	client *SDKClient

	mu        sync.RWMutex
	tokens    TokenPair
	expiresAt time.Time
}

// NewSession wraps an existing token pair, for example one restored from
// storage.
func (c *SDKClient) NewSession(tokens TokenPair) *Session {
	return &Session{
		client:    c,
		tokens:    tokens,
		expiresAt: accessExpiry(tokens.Access),
	}
}

// accessExpiry reads exp without verifying the signature; the server does
// that. A token without exp is treated as already expired.
func accessExpiry(access string) time.Time {
	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(access, &claims); err != nil || claims.ExpiresAt == nil {
		return time.Time{}
	}
	return claims.ExpiresAt.Add(-refreshBuffer)
}

// Tokens returns the current pair.
func (s *Session) Tokens() TokenPair {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tokens
}

func (s *Session) setTokens(tokens TokenPair) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens = tokens
	s.expiresAt = accessExpiry(tokens.Access)
}

// getValidToken returns the access token, refreshing it first when it is
// about to expire.
func (s *Session) getValidToken(ctx context.Context) (string, error) {
	s.mu.RLock()
	if time.Now().Before(s.expiresAt) {
		token := s.tokens.Access
		s.mu.RUnlock()
		return token, nil
	}
	s.mu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()

	// another goroutine may have refreshed while we waited
	if time.Now().Before(s.expiresAt) {
		return s.tokens.Access, nil
	}
	if s.tokens.Refresh == "" {
		return "", fmt.Errorf("access token expired and no refresh token available")
	}

	tokens, err := s.client.Refresh(ctx, s.tokens.Refresh)
	if err != nil {
		return "", fmt.Errorf("failed to refresh token: %w", err)
	}
	s.tokens = tokens
	s.expiresAt = accessExpiry(tokens.Access)
	return s.tokens.Access, nil
}

// do sends an authenticated request and decodes the expected response.
func (s *Session) do(ctx context.Context, method, path string, body, target any, expectedStatus int) error {
	token, err := s.getValidToken(ctx)
	if err != nil {
		return err
	}

	resp, err := s.client.doRequest(ctx, method, path, token, body)
	if err != nil {
		return err
	}
	return decodeJSON(resp, target, expectedStatus)
}

// Logout revokes the session's refresh token. The access token stays valid
// until it expires.
func (s *Session) Logout(ctx context.Context) error {
	refresh := s.Tokens().Refresh
	if refresh == "" {
		return fmt.Errorf("no refresh token to revoke")
	}
	return s.do(ctx, http.MethodPost, "/logout", RefreshRequest{Refresh: refresh}, nil, http.StatusOK)
}

// Profile returns the caller's profile.
func (s *Session) Profile(ctx context.Context) (*Profile, error) {
	var out ProfileResponse
	if err := s.do(ctx, http.MethodGet, "/profile", nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out.Profile, nil
}

// UpdateProfile applies a partial update and returns the new profile.
func (s *Session) UpdateProfile(ctx context.Context, req ProfileUpdateRequest) (*Profile, error) {
	var out ProfileResponse
	if err := s.do(ctx, http.MethodPost, "/profile", req, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out.Profile, nil
}

// DeleteAccount deletes the caller's account. The session is unusable
// afterwards.
func (s *Session) DeleteAccount(ctx context.Context) error {
	return s.do(ctx, http.MethodDelete, "/profile", nil, nil, http.StatusOK)
}

// ChangePassword changes the password and switches the session to the new
// token pair. Refresh tokens held elsewhere stop working.
func (s *Session) ChangePassword(ctx context.Context, oldPassword, newPassword string) error {
	var out PasswordChangeResponse
	err := s.do(ctx, http.MethodPost, "/password/change", PasswordChangeRequest{
		OldPassword:  oldPassword,
		NewPassword:  newPassword,
		NewPassword2: newPassword,
	}, &out, http.StatusOK)
	if err != nil {
		return err
	}
	s.setTokens(out.Tokens)
	return nil
}

// CreateAdmin creates another admin account. Requires an admin session.
func (s *Session) CreateAdmin(ctx context.Context, req AdminCreateRequest) (*Profile, error) {
	var out AdminCreateResponse
	if err := s.do(ctx, http.MethodPost, "/admin/accounts", req, &out, http.StatusCreated); err != nil {
		return nil, err
	}
	return &out.User, nil
}

// ActivateAccount re-enables login for accountID. Requires an admin session.
func (s *Session) ActivateAccount(ctx context.Context, accountID string) error {
	return s.do(ctx, http.MethodPost, "/admin/accounts/"+accountID+"/activate", nil, nil, http.StatusOK)
}

// DeactivateAccount disables accountID and revokes its refresh tokens.
// Requires an admin session.
func (s *Session) DeactivateAccount(ctx context.Context, accountID string) error {
	return s.do(ctx, http.MethodPost, "/admin/accounts/"+accountID+"/deactivate", nil, nil, http.StatusOK)
}
