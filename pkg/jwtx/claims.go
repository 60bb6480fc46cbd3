package jwtx

import (
	"slices"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/aussiebroadwan/kelas/pkg/idx"
)

// Default lifetimes for the token pair handed out at login.
const (
	// DefaultAccessTokenTTL keeps access tokens short lived since they are
	// never revoked, only allowed to expire.
	DefaultAccessTokenTTL = 15 * time.Minute

	// DefaultRefreshTokenTTL is how long a refresh token stays usable
	// unless it is revoked first.
	DefaultRefreshTokenTTL = 7 * 24 * time.Hour
)

// TokenType distinguishes the two halves of a token pair. A refresh
// token must never be accepted where an access token is expected.
type TokenType string

const (
	TokenTypeAccess  TokenType = "access"
	TokenTypeRefresh TokenType = "refresh"
)

// Claims carried by every token the identity service signs.
type Claims struct {
	jwt.RegisteredClaims

	// TokenType is "access" or "refresh".
	TokenType TokenType `json:"token_type"`

	// Role of the account at issue time: student, instructor or admin.
	Role string `json:"role,omitempty"`

	// Username at issue time. Informational only, the subject is
	// authoritative since usernames can change.
	Username string `json:"username,omitempty"`
}

// ClaimsParams groups the inputs to NewClaims.
type ClaimsParams struct {
	Type     TokenType
	Subject  string
	Username string
	Role     string
	Issuer   string
	Audience []string
	TTL      time.Duration
	Now      time.Time
}

// NewClaims builds claims with a fresh jti and exp derived from TTL.
func NewClaims(p ClaimsParams) Claims {
	now := p.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}

	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    p.Issuer,
			Subject:   p.Subject,
			Audience:  jwt.ClaimStrings(p.Audience),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(p.TTL)),
			ID:        NewJTI(),
		},
		TokenType: p.Type,
		Role:      p.Role,
		Username:  p.Username,
	}
}

// NewJTI returns a ULID for the "jti" claim. ULIDs sort by issue time,
// which keeps the revocation table index friendly.
func NewJTI() string {
	return idx.MustNew().String()
}

// ValidateIssuer checks if the issuer matches expected value.
func (c *Claims) ValidateIssuer(expected string) error {
	if expected == "" {
		return nil
	}

	if c.Issuer != expected {
		return ErrIssuer
	}

	return nil
}

// ValidateAudience checks if at least one expected audience is present.
func (c *Claims) ValidateAudience(expected []string) error {
	if len(expected) == 0 {
		return nil
	}

	for _, want := range expected {
		if slices.Contains(c.Audience, want) {
			return nil
		}
	}

	return ErrAudience
}

// ValidateTokenType rejects tokens minted for a different purpose.
func (c *Claims) ValidateTokenType(expected TokenType) error {
	if c.TokenType != expected {
		return ErrTokenType
	}
	return nil
}

// ValidateExpiry ensures the token hasn't expired (exp) and isn't before nbf.
func (c *Claims) ValidateExpiry() error {
	return c.ValidateExpiryWithLeeway(0)
}

// ValidateExpiryWithLeeway adds a small grace period for clock skew.
func (c *Claims) ValidateExpiryWithLeeway(leeway time.Duration) error {
	now := time.Now().UTC()

	if c.ExpiresAt != nil && now.After(c.ExpiresAt.Add(leeway)) {
		return ErrExpired
	}

	if c.NotBefore != nil && now.Before(c.NotBefore.Add(-leeway)) {
		return ErrNotYetValid
	}

	return nil
}

// ExpiresIn returns the remaining lifetime of the token, zero once expired.
func (c *Claims) ExpiresIn(now time.Time) time.Duration {
	if c.ExpiresAt == nil {
		return 0
	}
	if d := c.ExpiresAt.Sub(now); d > 0 {
		return d
	}
	return 0
}
