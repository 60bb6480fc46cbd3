package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/aussiebroadwan/kelas/internal/identity/domain"
	"github.com/aussiebroadwan/kelas/internal/identity/store/drivers/sqlite/gen"
)

type outstandingTokensRepo struct {
	q *gen.Queries
}

func (r *outstandingTokensRepo) CreateOutstandingToken(ctx context.Context, t domain.OutstandingToken) error {
	return mapConstraint(r.q.CreateOutstandingToken(ctx, gen.CreateOutstandingTokenParams{
		Jti:       t.JTI,
		AccountID: t.AccountID,
		ExpiresAt: t.ExpiresAt.UTC(),
		CreatedAt: t.CreatedAt.UTC(),
	}))
}

func (r *outstandingTokensRepo) GetOutstandingToken(ctx context.Context, jti string) (domain.OutstandingToken, error) {
	row, err := r.q.GetOutstandingToken(ctx, jti)
	if err != nil {
		return domain.OutstandingToken{}, mapNotFound(err)
	}
	return mapOutstandingToken(row), nil
}

func (r *outstandingTokensRepo) RevokeOutstandingToken(ctx context.Context, jti string, now time.Time) error {
	return requireRow(r.q.RevokeOutstandingToken(ctx, gen.RevokeOutstandingTokenParams{
		RevokedAt: sql.NullTime{Time: now.UTC(), Valid: true},
		Jti:       jti,
	}))
}

func (r *outstandingTokensRepo) RevokeAllAccountTokens(ctx context.Context, accountID string, now time.Time) (int64, error) {
	return r.q.RevokeAllAccountTokens(ctx, gen.RevokeAllAccountTokensParams{
		RevokedAt: sql.NullTime{Time: now.UTC(), Valid: true},
		AccountID: accountID,
	})
}

func (r *outstandingTokensRepo) DeleteExpiredOutstandingTokens(ctx context.Context, now time.Time) (int64, error) {
	return r.q.DeleteExpiredOutstandingTokens(ctx, now.UTC())
}
