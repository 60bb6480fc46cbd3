package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/aussiebroadwan/kelas/internal/identity/domain"
	"github.com/aussiebroadwan/kelas/internal/identity/metrics"
	"github.com/aussiebroadwan/kelas/internal/identity/store"
	"github.com/aussiebroadwan/kelas/internal/identity/validation"
	"github.com/aussiebroadwan/kelas/pkg/cryptox"
	"github.com/aussiebroadwan/kelas/pkg/slogx"
)

// AdminService holds the privileged account operations. Admin accounts are
// only ever created here, never through registration.
type AdminService struct {
	Store     store.Store
	Tokens    *TokenService
	Validator *validation.Validator
}

// BootstrapAdmin is the first admin configured through the environment.
type BootstrapAdmin struct {
	Username string
	Password string // generated when empty
	Email    string
}

// CreateAdmin creates a staff superuser with an admin profile.
func (s *AdminService) CreateAdmin(ctx context.Context, in validation.AdminCreateInput) (domain.Member, error) {
	if err := invalid(s.Validator.AdminCreate(&in)); err != nil {
		return domain.Member{}, err
	}

	m, err := s.create(ctx, in)
	if err != nil {
		return domain.Member{}, err
	}

	slogx.FromContext(ctx).Info("admin account created", slog.String("account_id", m.ID))
	return m, nil
}

func (s *AdminService) create(ctx context.Context, in validation.AdminCreateInput) (domain.Member, error) {
	hash, err := cryptox.HashPassword(in.Password)
	if err != nil {
		return domain.Member{}, fmt.Errorf("%w: %w", ErrCreationFailed, err)
	}

	now := time.Now().UTC()
	m := domain.Member{Account: domain.Account{
		ID:           uuid.NewString(),
		Username:     in.Username,
		PasswordHash: hash,
		Email:        in.Email,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Role:         domain.RoleAdmin,
		IsActive:     true,
		IsStaff:      true,
		IsSuperuser:  true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}}
	m.Admin = &domain.AdminProfile{AccountID: m.ID, AdminID: uuid.NewString()}

	if err := createMember(ctx, s.Store, m); err != nil {
		return domain.Member{}, err
	}
	metrics.RegistrationsTotal.WithLabelValues(string(domain.RoleAdmin)).Inc()
	return m, nil
}

// Bootstrap creates the first admin when cfg.Username is set and no admin
// exists yet. The payload rules of CreateAdmin do not apply, the operator
// owns these values. It reports whether an account was created.
func (s *AdminService) Bootstrap(ctx context.Context, cfg BootstrapAdmin) (bool, error) {
	l := slogx.FromContext(ctx)

	if cfg.Username == "" {
		return false, nil
	}

	exists, err := s.Store.Accounts().HasAdmin(ctx)
	if err != nil {
		return false, fmt.Errorf("check for admin: %w", err)
	}
	if exists {
		l.Debug("admin already present, skipping bootstrap")
		return false, nil
	}

	password := cfg.Password
	generated := password == ""
	if generated {
		if password, err = cryptox.GeneratePassword(); err != nil {
			return false, err
		}
	}

	m, err := s.create(ctx, validation.AdminCreateInput{
		Username:  cfg.Username,
		Password:  password,
		Email:     cfg.Email,
		FirstName: cfg.Username,
	})
	if err != nil {
		return false, fmt.Errorf("bootstrap admin: %w", err)
	}

	if generated {
		l.Warn("bootstrap admin created with generated password, change it after first login",
			slog.String("username", m.Username),
			slog.String("password", password),
		)
	} else {
		l.Info("bootstrap admin created", slog.String("username", m.Username))
	}
	return true, nil
}

// SetActive enables or disables an account. Disabling also revokes every
// refresh token it holds.
func (s *AdminService) SetActive(ctx context.Context, accountID string, active bool) error {
	l := slogx.FromContext(ctx)

	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		now := time.Now().UTC()
		if err := tx.Accounts().SetAccountActive(ctx, accountID, active, now); err != nil {
			return err
		}
		if active {
			return nil
		}
		n, err := s.Tokens.revokeAll(ctx, tx, accountID, now, metrics.RevokeDeactivation)
		if err != nil {
			return err
		}
		l.Info("account deactivated", slog.String("account_id", accountID), slog.Int64("revoked_tokens", n))
		return nil
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrAccountNotFound
		}
		l.Error("failed to change account status", slog.String("account_id", accountID), slog.Any("error", err))
		return err
	}

	if active {
		l.Info("account activated", slog.String("account_id", accountID))
	}
	return nil
}
