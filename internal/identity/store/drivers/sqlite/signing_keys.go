package sqlite

import (
	"context"
	"time"

	"github.com/aussiebroadwan/kelas/internal/identity/domain"
	"github.com/aussiebroadwan/kelas/internal/identity/store/drivers/sqlite/gen"
)

type signingKeysRepo struct {
	q *gen.Queries
}

func (r *signingKeysRepo) CreateSigningKey(ctx context.Context, key domain.SigningKey) error {
	return mapConstraint(r.q.CreateSigningKey(ctx, gen.CreateSigningKeyParams{
		ID:                  key.ID,
		Kid:                 key.Kid,
		Algorithm:           key.Algorithm,
		PrivateKeyEncrypted: key.PrivateKeyEncrypted,
		CreatedAt:           key.CreatedAt.UTC(),
		RetiredAt:           nullTime(key.RetiredAt),
		ExpiresAt:           key.ExpiresAt.UTC(),
	}))
}

func (r *signingKeysRepo) ListActiveSigningKeys(ctx context.Context, now time.Time) ([]domain.SigningKey, error) {
	rows, err := r.q.ListActiveSigningKeys(ctx, now.UTC())
	if err != nil {
		return nil, err
	}
	return mapSigningKeys(rows), nil
}

func (r *signingKeysRepo) ListAllSigningKeys(ctx context.Context, now time.Time) ([]domain.SigningKey, error) {
	rows, err := r.q.ListAllSigningKeys(ctx, now.UTC())
	if err != nil {
		return nil, err
	}
	return mapSigningKeys(rows), nil
}

func (r *signingKeysRepo) DeleteExpiredSigningKeys(ctx context.Context, now time.Time) (int64, error) {
	return r.q.DeleteExpiredSigningKeys(ctx, now.UTC())
}

func mapSigningKeys(rows []gen.SigningKey) []domain.SigningKey {
	keys := make([]domain.SigningKey, len(rows))
	for i, row := range rows {
		keys[i] = mapSigningKey(row)
	}
	return keys
}
