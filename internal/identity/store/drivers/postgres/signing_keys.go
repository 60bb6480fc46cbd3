package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/aussiebroadwan/kelas/internal/identity/domain"
)

type signingKeysRepo struct {
	q querier
}

func (r *signingKeysRepo) CreateSigningKey(ctx context.Context, k domain.SigningKey) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO signing_keys (id, kid, algorithm, private_key_encrypted, created_at, retired_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		k.ID, k.Kid, k.Algorithm, k.PrivateKeyEncrypted, k.CreatedAt, k.RetiredAt, k.ExpiresAt)
	return mapErr(err)
}

func (r *signingKeysRepo) ListActiveSigningKeys(ctx context.Context, now time.Time) ([]domain.SigningKey, error) {
	return r.list(ctx, `
		SELECT id, kid, algorithm, private_key_encrypted, created_at, retired_at, expires_at
		FROM signing_keys
		WHERE retired_at IS NULL AND expires_at > $1
		ORDER BY created_at DESC`, now)
}

func (r *signingKeysRepo) ListAllSigningKeys(ctx context.Context, now time.Time) ([]domain.SigningKey, error) {
	return r.list(ctx, `
		SELECT id, kid, algorithm, private_key_encrypted, created_at, retired_at, expires_at
		FROM signing_keys
		WHERE expires_at > $1
		ORDER BY created_at DESC`, now)
}

func (r *signingKeysRepo) list(ctx context.Context, query string, now time.Time) ([]domain.SigningKey, error) {
	rows, err := r.q.Query(ctx, query, now)
	if err != nil {
		return nil, mapErr(err)
	}

	keys, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.SigningKey, error) {
		var k domain.SigningKey
		err := row.Scan(&k.ID, &k.Kid, &k.Algorithm, &k.PrivateKeyEncrypted, &k.CreatedAt, &k.RetiredAt, &k.ExpiresAt)
		return k, err
	})
	if err != nil {
		return nil, mapErr(err)
	}
	return keys, nil
}

func (r *signingKeysRepo) DeleteExpiredSigningKeys(ctx context.Context, now time.Time) (int64, error) {
	tag, err := r.q.Exec(ctx, `DELETE FROM signing_keys WHERE expires_at <= $1`, now)
	if err != nil {
		return 0, mapErr(err)
	}
	return tag.RowsAffected(), nil
}
