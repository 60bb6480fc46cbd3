package store

import (
	"context"
	"time"

	"github.com/aussiebroadwan/kelas/internal/identity/domain"
	"github.com/aussiebroadwan/kelas/pkg/jwtx"
)

// KeyStoreAdapter implements jwtx.KeyStore on top of a Store so pkg/jwtx does
// not depend on the domain package.
type KeyStoreAdapter struct {
	store Store
	now   func() time.Time
}

// NewKeyStoreAdapter returns an adapter reading the store's signing keys.
func NewKeyStoreAdapter(s Store) *KeyStoreAdapter {
	return &KeyStoreAdapter{store: s, now: func() time.Time { return time.Now().UTC() }}
}

func (a *KeyStoreAdapter) ListAllSigningKeys(ctx context.Context) ([]jwtx.SigningKeyRecord, error) {
	keys, err := a.store.SigningKeys().ListAllSigningKeys(ctx, a.now())
	if err != nil {
		return nil, err
	}
	return toRecords(keys), nil
}

func (a *KeyStoreAdapter) ListActiveSigningKeys(ctx context.Context) ([]jwtx.SigningKeyRecord, error) {
	keys, err := a.store.SigningKeys().ListActiveSigningKeys(ctx, a.now())
	if err != nil {
		return nil, err
	}
	return toRecords(keys), nil
}

func (a *KeyStoreAdapter) CreateSigningKey(ctx context.Context, rec jwtx.SigningKeyRecord) error {
	return a.store.SigningKeys().CreateSigningKey(ctx, domain.SigningKey{
		ID:                  rec.ID,
		Kid:                 rec.Kid,
		Algorithm:           rec.Algorithm,
		PrivateKeyEncrypted: rec.PrivateKeyEncrypted,
		CreatedAt:           rec.CreatedAt,
		RetiredAt:           rec.RetiredAt,
		ExpiresAt:           rec.ExpiresAt,
	})
}

func toRecords(keys []domain.SigningKey) []jwtx.SigningKeyRecord {
	records := make([]jwtx.SigningKeyRecord, len(keys))
	for i, k := range keys {
		records[i] = jwtx.SigningKeyRecord{
			ID:                  k.ID,
			Kid:                 k.Kid,
			Algorithm:           k.Algorithm,
			PrivateKeyEncrypted: k.PrivateKeyEncrypted,
			CreatedAt:           k.CreatedAt,
			RetiredAt:           k.RetiredAt,
			ExpiresAt:           k.ExpiresAt,
		}
	}
	return records
}
