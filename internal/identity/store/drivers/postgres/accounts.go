package postgres

import (
	"context"
	"time"

	"github.com/aussiebroadwan/kelas/internal/identity/domain"
)

const accountColumns = `id, username, password_hash, email, first_name, last_name,
	role, is_active, is_staff, is_superuser, created_at, updated_at`

type accountsRepo struct {
	q querier
}

func (r *accountsRepo) getAccount(ctx context.Context, where string, arg string) (domain.Account, error) {
	var (
		a    domain.Account
		role string
	)
	err := r.q.QueryRow(ctx, `SELECT `+accountColumns+` FROM accounts WHERE `+where+` = $1`, arg).Scan(
		&a.ID, &a.Username, &a.PasswordHash, &a.Email, &a.FirstName, &a.LastName,
		&role, &a.IsActive, &a.IsStaff, &a.IsSuperuser, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return domain.Account{}, mapErr(err)
	}
	a.Role = domain.Role(role)
	a.CreatedAt = a.CreatedAt.UTC()
	a.UpdatedAt = a.UpdatedAt.UTC()
	return a, nil
}

func (r *accountsRepo) GetAccountByID(ctx context.Context, id string) (domain.Account, error) {
	return r.getAccount(ctx, "id", id)
}

func (r *accountsRepo) GetAccountByUsername(ctx context.Context, username string) (domain.Account, error) {
	return r.getAccount(ctx, "username", username)
}

func (r *accountsRepo) CreateAccount(ctx context.Context, a domain.Account) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO accounts (`+accountColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		a.ID, a.Username, a.PasswordHash, a.Email, a.FirstName, a.LastName,
		string(a.Role), a.IsActive, a.IsStaff, a.IsSuperuser, a.CreatedAt, a.UpdatedAt,
	)
	return mapErr(err)
}

func (r *accountsRepo) UpdateAccount(ctx context.Context, id string, u domain.AccountUpdate, now time.Time) error {
	return requireRow(r.q.Exec(ctx, `
		UPDATE accounts
		SET username   = COALESCE($1, username),
		    email      = COALESCE($2, email),
		    first_name = COALESCE($3, first_name),
		    last_name  = COALESCE($4, last_name),
		    updated_at = $5
		WHERE id = $6`,
		u.Username, u.Email, u.FirstName, u.LastName, now, id,
	))
}

func (r *accountsRepo) UpdatePasswordHash(ctx context.Context, id, hash string, now time.Time) error {
	return requireRow(r.q.Exec(ctx,
		`UPDATE accounts SET password_hash = $1, updated_at = $2 WHERE id = $3`, hash, now, id))
}

func (r *accountsRepo) SetAccountActive(ctx context.Context, id string, active bool, now time.Time) error {
	return requireRow(r.q.Exec(ctx,
		`UPDATE accounts SET is_active = $1, updated_at = $2 WHERE id = $3`, active, now, id))
}

func (r *accountsRepo) DeleteAccount(ctx context.Context, id string) error {
	return requireRow(r.q.Exec(ctx, `DELETE FROM accounts WHERE id = $1`, id))
}

func (r *accountsRepo) HasAdmin(ctx context.Context) (bool, error) {
	var exists bool
	err := r.q.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM accounts WHERE role = 'admin')`).Scan(&exists)
	return exists, mapErr(err)
}
