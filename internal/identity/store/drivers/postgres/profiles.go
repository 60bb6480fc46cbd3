package postgres

import (
	"context"

	"github.com/aussiebroadwan/kelas/internal/identity/domain"
)

type instructorsRepo struct {
	q querier
}

func (r *instructorsRepo) CreateInstructorProfile(ctx context.Context, p domain.InstructorProfile) error {
	_, err := r.q.Exec(ctx,
		`INSERT INTO instructor_profiles (account_id, instructor_id, keahlian) VALUES ($1, $2, $3)`,
		p.AccountID, p.InstructorID, p.Keahlian)
	return mapErr(err)
}

func (r *instructorsRepo) GetInstructorProfile(ctx context.Context, accountID string) (domain.InstructorProfile, error) {
	var p domain.InstructorProfile
	err := r.q.QueryRow(ctx,
		`SELECT account_id, instructor_id, keahlian FROM instructor_profiles WHERE account_id = $1`,
		accountID).Scan(&p.AccountID, &p.InstructorID, &p.Keahlian)
	if err != nil {
		return domain.InstructorProfile{}, mapErr(err)
	}
	return p, nil
}

func (r *instructorsRepo) UpdateKeahlian(ctx context.Context, accountID string, keahlian int) error {
	return requireRow(r.q.Exec(ctx,
		`UPDATE instructor_profiles SET keahlian = $1 WHERE account_id = $2`, keahlian, accountID))
}

type adminsRepo struct {
	q querier
}

func (r *adminsRepo) CreateAdminProfile(ctx context.Context, p domain.AdminProfile) error {
	_, err := r.q.Exec(ctx,
		`INSERT INTO admin_profiles (account_id, admin_id) VALUES ($1, $2)`, p.AccountID, p.AdminID)
	return mapErr(err)
}

func (r *adminsRepo) GetAdminProfile(ctx context.Context, accountID string) (domain.AdminProfile, error) {
	var p domain.AdminProfile
	err := r.q.QueryRow(ctx,
		`SELECT account_id, admin_id FROM admin_profiles WHERE account_id = $1`, accountID,
	).Scan(&p.AccountID, &p.AdminID)
	if err != nil {
		return domain.AdminProfile{}, mapErr(err)
	}
	return p, nil
}
