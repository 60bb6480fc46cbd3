package postgres

import (
	"context"
	"time"

	"github.com/aussiebroadwan/kelas/internal/identity/domain"
)

type outstandingTokensRepo struct {
	q querier
}

func (r *outstandingTokensRepo) CreateOutstandingToken(ctx context.Context, t domain.OutstandingToken) error {
	_, err := r.q.Exec(ctx,
		`INSERT INTO outstanding_tokens (jti, account_id, expires_at, created_at) VALUES ($1, $2, $3, $4)`,
		t.JTI, t.AccountID, t.ExpiresAt, t.CreatedAt)
	return mapErr(err)
}

func (r *outstandingTokensRepo) GetOutstandingToken(ctx context.Context, jti string) (domain.OutstandingToken, error) {
	var t domain.OutstandingToken
	err := r.q.QueryRow(ctx,
		`SELECT jti, account_id, expires_at, revoked_at, created_at FROM outstanding_tokens WHERE jti = $1`,
		jti).Scan(&t.JTI, &t.AccountID, &t.ExpiresAt, &t.RevokedAt, &t.CreatedAt)
	if err != nil {
		return domain.OutstandingToken{}, mapErr(err)
	}
	return t, nil
}

func (r *outstandingTokensRepo) RevokeOutstandingToken(ctx context.Context, jti string, now time.Time) error {
	return requireRow(r.q.Exec(ctx,
		`UPDATE outstanding_tokens SET revoked_at = $1 WHERE jti = $2 AND revoked_at IS NULL`, now, jti))
}

func (r *outstandingTokensRepo) RevokeAllAccountTokens(ctx context.Context, accountID string, now time.Time) (int64, error) {
	tag, err := r.q.Exec(ctx,
		`UPDATE outstanding_tokens SET revoked_at = $1 WHERE account_id = $2 AND revoked_at IS NULL`, now, accountID)
	if err != nil {
		return 0, mapErr(err)
	}
	return tag.RowsAffected(), nil
}

func (r *outstandingTokensRepo) DeleteExpiredOutstandingTokens(ctx context.Context, now time.Time) (int64, error) {
	tag, err := r.q.Exec(ctx, `DELETE FROM outstanding_tokens WHERE expires_at < $1`, now)
	if err != nil {
		return 0, mapErr(err)
	}
	return tag.RowsAffected(), nil
}
