package domain

import "time"

// TokenPair is what login, registration, refresh and password change hand
// back. Both halves are signed JWTs.
type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// OutstandingToken is an issued refresh token, tracked by its jti so it can
// be revoked before it expires.
type OutstandingToken struct {
	JTI       string
	AccountID string
	ExpiresAt time.Time
	RevokedAt *time.Time
	CreatedAt time.Time
}

// Usable reports whether the token may still be exchanged at now.
func (t *OutstandingToken) Usable(now time.Time) bool {
	return t.RevokedAt == nil && now.Before(t.ExpiresAt)
}
