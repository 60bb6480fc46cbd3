package sqlite

import (
	"context"
	"time"

	"github.com/aussiebroadwan/kelas/internal/identity/domain"
	"github.com/aussiebroadwan/kelas/internal/identity/store/drivers/sqlite/gen"
)

type accountsRepo struct {
	q *gen.Queries
}

func (r *accountsRepo) GetAccountByID(ctx context.Context, id string) (domain.Account, error) {
	row, err := r.q.GetAccountByID(ctx, id)
	if err != nil {
		return domain.Account{}, mapNotFound(err)
	}
	return mapAccount(row), nil
}

func (r *accountsRepo) GetAccountByUsername(ctx context.Context, username string) (domain.Account, error) {
	row, err := r.q.GetAccountByUsername(ctx, username)
	if err != nil {
		return domain.Account{}, mapNotFound(err)
	}
	return mapAccount(row), nil
}

func (r *accountsRepo) CreateAccount(ctx context.Context, a domain.Account) error {
	err := r.q.CreateAccount(ctx, gen.CreateAccountParams{
		ID:           a.ID,
		Username:     a.Username,
		PasswordHash: a.PasswordHash,
		Email:        a.Email,
		FirstName:    a.FirstName,
		LastName:     a.LastName,
		Role:         string(a.Role),
		IsActive:     a.IsActive,
		IsStaff:      a.IsStaff,
		IsSuperuser:  a.IsSuperuser,
		CreatedAt:    a.CreatedAt.UTC(),
		UpdatedAt:    a.UpdatedAt.UTC(),
	})
	return mapConstraint(err)
}

func (r *accountsRepo) UpdateAccount(ctx context.Context, id string, u domain.AccountUpdate, now time.Time) error {
	n, err := r.q.UpdateAccount(ctx, gen.UpdateAccountParams{
		Username:  nullString(u.Username),
		Email:     nullString(u.Email),
		FirstName: nullString(u.FirstName),
		LastName:  nullString(u.LastName),
		UpdatedAt: now.UTC(),
		ID:        id,
	})
	return requireRow(n, mapConstraint(err))
}

func (r *accountsRepo) UpdatePasswordHash(ctx context.Context, id, hash string, now time.Time) error {
	return requireRow(r.q.UpdateAccountPasswordHash(ctx, gen.UpdateAccountPasswordHashParams{
		PasswordHash: hash,
		UpdatedAt:    now.UTC(),
		ID:           id,
	}))
}

func (r *accountsRepo) SetAccountActive(ctx context.Context, id string, active bool, now time.Time) error {
	return requireRow(r.q.SetAccountActive(ctx, gen.SetAccountActiveParams{
		IsActive:  active,
		UpdatedAt: now.UTC(),
		ID:        id,
	}))
}

func (r *accountsRepo) DeleteAccount(ctx context.Context, id string) error {
	return requireRow(r.q.DeleteAccount(ctx, id))
}

func (r *accountsRepo) HasAdmin(ctx context.Context) (bool, error) {
	n, err := r.q.CountAdmins(ctx)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
