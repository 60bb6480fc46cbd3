package domain

import "time"

// SigningKey is a JWT signing key persisted in AUTH_KEY_STORAGE_MODE
// persistent. The private key PEM is sealed with the master key.
type SigningKey struct {
	ID                  string // ULID
	Kid                 string
	Algorithm           string // ES256 or EdDSA
	PrivateKeyEncrypted []byte
	CreatedAt           time.Time
	RetiredAt           *time.Time
	ExpiresAt           time.Time
}

// IsActive returns true if the key is not retired and not expired.
func (k *SigningKey) IsActive(now time.Time) bool {
	return k.RetiredAt == nil && now.Before(k.ExpiresAt)
}
