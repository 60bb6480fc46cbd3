package sqlite

import (
	"context"

	"github.com/aussiebroadwan/kelas/internal/identity/domain"
	"github.com/aussiebroadwan/kelas/internal/identity/store/drivers/sqlite/gen"
)

type instructorsRepo struct {
	q *gen.Queries
}

func (r *instructorsRepo) CreateInstructorProfile(ctx context.Context, p domain.InstructorProfile) error {
	return mapConstraint(r.q.CreateInstructorProfile(ctx, gen.CreateInstructorProfileParams{
		AccountID:    p.AccountID,
		InstructorID: p.InstructorID,
		Keahlian:     int64(p.Keahlian),
	}))
}

func (r *instructorsRepo) GetInstructorProfile(ctx context.Context, accountID string) (domain.InstructorProfile, error) {
	row, err := r.q.GetInstructorProfile(ctx, accountID)
	if err != nil {
		return domain.InstructorProfile{}, mapNotFound(err)
	}
	return domain.InstructorProfile{
		AccountID:    row.AccountID,
		InstructorID: row.InstructorID,
		Keahlian:     int(row.Keahlian),
	}, nil
}

func (r *instructorsRepo) UpdateKeahlian(ctx context.Context, accountID string, keahlian int) error {
	return requireRow(r.q.UpdateKeahlian(ctx, gen.UpdateKeahlianParams{
		Keahlian:  int64(keahlian),
		AccountID: accountID,
	}))
}

type adminsRepo struct {
	q *gen.Queries
}

func (r *adminsRepo) CreateAdminProfile(ctx context.Context, p domain.AdminProfile) error {
	return mapConstraint(r.q.CreateAdminProfile(ctx, gen.CreateAdminProfileParams{
		AccountID: p.AccountID,
		AdminID:   p.AdminID,
	}))
}

func (r *adminsRepo) GetAdminProfile(ctx context.Context, accountID string) (domain.AdminProfile, error) {
	row, err := r.q.GetAdminProfile(ctx, accountID)
	if err != nil {
		return domain.AdminProfile{}, mapNotFound(err)
	}
	return domain.AdminProfile{AccountID: row.AccountID, AdminID: row.AdminID}, nil
}
