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

// AccountService serves the self-service account operations: register,
// login, profile and password change.
type AccountService struct {
	Store     store.Store
	Tokens    *TokenService
	Validator *validation.Validator
}

// Registration is a freshly created account with its first token pair.
type Registration struct {
	Member domain.Member
	Tokens domain.TokenPair
}

// Register creates a student or instructor. The account and its instructor
// profile are written in one transaction.
func (s *AccountService) Register(ctx context.Context, in validation.RegisterInput) (Registration, error) {
	l := slogx.FromContext(ctx)

	if err := invalid(s.Validator.Register(&in)); err != nil {
		return Registration{}, err
	}

	hash, err := cryptox.HashPassword(in.Password)
	if err != nil {
		l.Error("failed to hash password", slog.Any("error", err))
		return Registration{}, fmt.Errorf("%w: %w", ErrCreationFailed, err)
	}

	now := time.Now().UTC()
	member := domain.Member{Account: domain.Account{
		ID:           uuid.NewString(),
		Username:     in.Username,
		PasswordHash: hash,
		Email:        in.Email,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Role:         domain.Role(in.Role),
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}}
	if member.Role == domain.RoleInstructor {
		member.Instructor = &domain.InstructorProfile{
			AccountID:    member.ID,
			InstructorID: uuid.NewString(),
			Keahlian:     *in.Keahlian,
		}
	}

	if err := createMember(ctx, s.Store, member); err != nil {
		return Registration{}, err
	}
	metrics.RegistrationsTotal.WithLabelValues(string(member.Role)).Inc()

	tokens, err := s.Tokens.Issue(ctx, member.Account)
	if err != nil {
		l.Error("failed to issue tokens after registration",
			slog.String("account_id", member.ID),
			slog.Any("error", err),
		)
		return Registration{}, err
	}

	l.Info("account registered",
		slog.String("account_id", member.ID),
		slog.String("role", string(member.Role)),
	)
	return Registration{Member: member, Tokens: tokens}, nil
}

// createMember writes the account and any profile extension atomically.
func createMember(ctx context.Context, st store.Store, m domain.Member) error {
	err := st.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Accounts().CreateAccount(ctx, m.Account); err != nil {
			return err
		}
		if m.Instructor != nil {
			if err := tx.Instructors().CreateInstructorProfile(ctx, *m.Instructor); err != nil {
				return err
			}
		}
		if m.Admin != nil {
			if err := tx.Admins().CreateAdminProfile(ctx, *m.Admin); err != nil {
				return err
			}
		}
		return nil
	})
	if err == nil {
		return nil
	}
	if errors.Is(err, store.ErrAlreadyExists) {
		return ErrUsernameTaken
	}

	slogx.FromContext(ctx).Error("failed to create account",
		slog.String("role", string(m.Role)),
		slog.Any("error", err),
	)
	return fmt.Errorf("%w: %w", ErrCreationFailed, err)
}

// Login checks credentials and issues a pair. Unknown usernames and wrong
// passwords return the same error and cost the same hash work.
func (s *AccountService) Login(ctx context.Context, in validation.LoginInput) (domain.Account, domain.TokenPair, error) {
	l := slogx.FromContext(ctx)

	if err := invalid(s.Validator.Login(&in)); err != nil {
		return domain.Account{}, domain.TokenPair{}, err
	}

	a, err := s.Store.Accounts().GetAccountByUsername(ctx, in.Username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			cryptox.BurnVerify(in.Password)
			metrics.LoginsTotal.WithLabelValues(metrics.LoginInvalidCredentials).Inc()
			return domain.Account{}, domain.TokenPair{}, ErrInvalidCredentials
		}
		l.Error("failed to load account for login", slog.Any("error", err))
		return domain.Account{}, domain.TokenPair{}, err
	}

	if err := cryptox.VerifyPassword(in.Password, a.PasswordHash); err != nil {
		if !errors.Is(err, cryptox.ErrPasswordMismatch) {
			l.Error("stored password hash unreadable",
				slog.String("account_id", a.ID),
				slog.Any("error", err),
			)
		}
		metrics.LoginsTotal.WithLabelValues(metrics.LoginInvalidCredentials).Inc()
		return domain.Account{}, domain.TokenPair{}, ErrInvalidCredentials
	}

	if !a.IsActive {
		metrics.LoginsTotal.WithLabelValues(metrics.LoginDisabled).Inc()
		return domain.Account{}, domain.TokenPair{}, ErrAccountDisabled
	}

	tokens, err := s.Tokens.Issue(ctx, a)
	if err != nil {
		l.Error("failed to issue tokens", slog.String("account_id", a.ID), slog.Any("error", err))
		return domain.Account{}, domain.TokenPair{}, err
	}

	metrics.LoginsTotal.WithLabelValues(metrics.LoginSuccess).Inc()
	return a, tokens, nil
}

// Refresh validates the payload and rotates the refresh token.
func (s *AccountService) Refresh(ctx context.Context, in validation.RefreshInput) (domain.TokenPair, error) {
	if err := invalid(s.Validator.Refresh(&in)); err != nil {
		return domain.TokenPair{}, err
	}
	return s.Tokens.Refresh(ctx, in.Refresh)
}

// Logout revokes a refresh token of the calling account.
func (s *AccountService) Logout(ctx context.Context, accountID string, in validation.RefreshInput) error {
	if err := invalid(s.Validator.Refresh(&in)); err != nil {
		return err
	}
	return s.Tokens.RevokeFor(ctx, accountID, in.Refresh)
}

// Profile returns the account with its role extension.
func (s *AccountService) Profile(ctx context.Context, accountID string) (domain.Member, error) {
	a, err := s.activeAccount(ctx, accountID)
	if err != nil {
		return domain.Member{}, err
	}
	return loadMember(ctx, s.Store, a)
}

// activeAccount loads an authenticated caller. A deactivated account keeps
// its unexpired access tokens, so every operation on the caller's own
// account goes through here.
func (s *AccountService) activeAccount(ctx context.Context, id string) (domain.Account, error) {
	a, err := s.account(ctx, id)
	if err != nil {
		return domain.Account{}, err
	}
	if !a.IsActive {
		return domain.Account{}, ErrAccountDisabled
	}
	return a, nil
}

func (s *AccountService) account(ctx context.Context, id string) (domain.Account, error) {
	a, err := s.Store.Accounts().GetAccountByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Account{}, ErrAccountNotFound
		}
		return domain.Account{}, err
	}
	return a, nil
}

func loadMember(ctx context.Context, st store.Store, a domain.Account) (domain.Member, error) {
	m := domain.Member{Account: a}

	switch a.Role {
	case domain.RoleInstructor:
		p, err := st.Instructors().GetInstructorProfile(ctx, a.ID)
		if err != nil {
			return domain.Member{}, fmt.Errorf("load instructor profile: %w", err)
		}
		m.Instructor = &p
	case domain.RoleAdmin:
		p, err := st.Admins().GetAdminProfile(ctx, a.ID)
		if err != nil {
			return domain.Member{}, fmt.Errorf("load admin profile: %w", err)
		}
		m.Admin = &p
	}
	return m, nil
}

// UpdateProfile applies a partial update. The role never changes, and
// keahlian is only applied to instructors.
func (s *AccountService) UpdateProfile(ctx context.Context, accountID string, in validation.ProfileUpdateInput) (domain.Member, error) {
	a, err := s.activeAccount(ctx, accountID)
	if err != nil {
		return domain.Member{}, err
	}

	if err := invalid(s.Validator.ProfileUpdate(&in, a.Role)); err != nil {
		return domain.Member{}, err
	}

	update := domain.AccountUpdate{
		Username:  in.Username,
		Email:     in.Email,
		FirstName: in.FirstName,
		LastName:  in.LastName,
	}

	var m domain.Member
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if !update.Empty() {
			if err := tx.Accounts().UpdateAccount(ctx, a.ID, update, time.Now().UTC()); err != nil {
				switch {
				case errors.Is(err, store.ErrAlreadyExists):
					return ErrUsernameTaken
				case errors.Is(err, store.ErrNotFound):
					return ErrAccountNotFound
				}
				return err
			}
		}
		if in.Keahlian != nil {
			if err := tx.Instructors().UpdateKeahlian(ctx, a.ID, *in.Keahlian); err != nil {
				return err
			}
		}

		updated, err := tx.Accounts().GetAccountByID(ctx, a.ID)
		if err != nil {
			return err
		}
		m, err = loadMember(ctx, tx, updated)
		return err
	})
	if err != nil {
		if !errors.Is(err, ErrUsernameTaken) && !errors.Is(err, ErrAccountNotFound) {
			slogx.FromContext(ctx).Error("failed to update profile",
				slog.String("account_id", a.ID),
				slog.Any("error", err),
			)
		}
		return domain.Member{}, err
	}
	return m, nil
}

// DeleteAccount removes the account. Its profile and outstanding tokens go
// with it, so its refresh tokens stop working.
func (s *AccountService) DeleteAccount(ctx context.Context, accountID string) error {
	if _, err := s.activeAccount(ctx, accountID); err != nil {
		return err
	}
	if err := s.Store.Accounts().DeleteAccount(ctx, accountID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrAccountNotFound
		}
		slogx.FromContext(ctx).Error("failed to delete account",
			slog.String("account_id", accountID),
			slog.Any("error", err),
		)
		return err
	}
	slogx.FromContext(ctx).Info("account deleted", slog.String("account_id", accountID))
	return nil
}

// ChangePassword replaces the password, revokes every refresh token of the
// account and returns a new pair.
func (s *AccountService) ChangePassword(ctx context.Context, accountID string, in validation.PasswordChangeInput) (domain.TokenPair, error) {
	l := slogx.FromContext(ctx)

	a, err := s.activeAccount(ctx, accountID)
	if err != nil {
		return domain.TokenPair{}, err
	}

	errs := s.Validator.PasswordChange(&in, validation.UserAttributes{
		Username:  a.Username,
		Email:     a.Email,
		FirstName: a.FirstName,
		LastName:  a.LastName,
	})
	if in.OldPassword != "" && cryptox.VerifyPassword(in.OldPassword, a.PasswordHash) != nil {
		errs.Add("old_password", validation.MsgWrongOldPassword)
	}
	if err := invalid(errs); err != nil {
		return domain.TokenPair{}, err
	}

	hash, err := cryptox.HashPassword(in.NewPassword)
	if err != nil {
		l.Error("failed to hash password", slog.Any("error", err))
		return domain.TokenPair{}, err
	}

	var pair domain.TokenPair
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		now := time.Now().UTC()
		if err := tx.Accounts().UpdatePasswordHash(ctx, a.ID, hash, now); err != nil {
			return err
		}
		n, err := s.Tokens.revokeAll(ctx, tx, a.ID, now, metrics.RevokePasswordChange)
		if err != nil {
			return err
		}
		l.Info("password changed", slog.String("account_id", a.ID), slog.Int64("revoked_tokens", n))

		pair, err = s.Tokens.issue(ctx, tx, a, now)
		return err
	})
	if err != nil {
		l.Error("failed to change password", slog.String("account_id", a.ID), slog.Any("error", err))
		return domain.TokenPair{}, err
	}
	return pair, nil
}
