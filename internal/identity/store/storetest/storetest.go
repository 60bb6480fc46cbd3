// Package storetest holds behaviour tests shared by every store driver.
package storetest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/kelas/internal/identity/domain"
	"github.com/aussiebroadwan/kelas/internal/identity/store"
	"github.com/aussiebroadwan/kelas/pkg/idx"
)

// Run exercises s against the store.Store contract. open must return a
// migrated, empty store.
func Run(t *testing.T, open func(t *testing.T) store.Store) {
	t.Run("Accounts", func(t *testing.T) { testAccounts(t, open(t)) })
	t.Run("Profiles", func(t *testing.T) { testProfiles(t, open(t)) })
	t.Run("OutstandingTokens", func(t *testing.T) { testOutstandingTokens(t, open(t)) })
	t.Run("SigningKeys", func(t *testing.T) { testSigningKeys(t, open(t)) })
	t.Run("Transactions", func(t *testing.T) { testTransactions(t, open(t)) })
}

// NewAccount returns a valid account with the given username and role.
func NewAccount(username string, role domain.Role) domain.Account {
	now := time.Now().UTC().Truncate(time.Second)
	return domain.Account{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: "$argon2id$v=19$m=19456,t=2,p=1$c2FsdA$aGFzaA",
		Email:        username + "@example.com",
		FirstName:    "First",
		LastName:     "Last",
		Role:         role,
		IsActive:     true,
		IsStaff:      role == domain.RoleAdmin,
		IsSuperuser:  role == domain.RoleAdmin,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func testAccounts(t *testing.T, s store.Store) {
	ctx := context.Background()
	accounts := s.Accounts()

	alice := NewAccount("alice", domain.RoleStudent)
	require.NoError(t, accounts.CreateAccount(ctx, alice))

	t.Run("get by id and username", func(t *testing.T) {
		got, err := accounts.GetAccountByID(ctx, alice.ID)
		require.NoError(t, err)
		require.Equal(t, alice.Username, got.Username)
		require.Equal(t, domain.RoleStudent, got.Role)
		require.True(t, got.IsActive)
		require.WithinDuration(t, alice.CreatedAt, got.CreatedAt, time.Second)

		got, err = accounts.GetAccountByUsername(ctx, "alice")
		require.NoError(t, err)
		require.Equal(t, alice.ID, got.ID)
	})

	t.Run("missing account", func(t *testing.T) {
		_, err := accounts.GetAccountByID(ctx, uuid.NewString())
		require.ErrorIs(t, err, store.ErrNotFound)
		_, err = accounts.GetAccountByUsername(ctx, "nobody")
		require.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("duplicate username", func(t *testing.T) {
		dup := NewAccount("alice", domain.RoleInstructor)
		require.ErrorIs(t, accounts.CreateAccount(ctx, dup), store.ErrAlreadyExists)
	})

	t.Run("partial update", func(t *testing.T) {
		email := "alice@kelas.test"
		require.NoError(t, accounts.UpdateAccount(ctx, alice.ID, domain.AccountUpdate{Email: &email}, time.Now()))

		got, err := accounts.GetAccountByID(ctx, alice.ID)
		require.NoError(t, err)
		require.Equal(t, email, got.Email)
		require.Equal(t, "alice", got.Username)
		require.Equal(t, "First", got.FirstName)
	})

	t.Run("rename onto taken username", func(t *testing.T) {
		require.NoError(t, accounts.CreateAccount(ctx, NewAccount("bob", domain.RoleStudent)))
		taken := "bob"
		err := accounts.UpdateAccount(ctx, alice.ID, domain.AccountUpdate{Username: &taken}, time.Now())
		require.ErrorIs(t, err, store.ErrAlreadyExists)
	})

	t.Run("password and active flag", func(t *testing.T) {
		require.NoError(t, accounts.UpdatePasswordHash(ctx, alice.ID, "new-hash", time.Now()))
		require.NoError(t, accounts.SetAccountActive(ctx, alice.ID, false, time.Now()))

		got, err := accounts.GetAccountByID(ctx, alice.ID)
		require.NoError(t, err)
		require.Equal(t, "new-hash", got.PasswordHash)
		require.False(t, got.IsActive)

		require.ErrorIs(t, accounts.SetAccountActive(ctx, uuid.NewString(), true, time.Now()), store.ErrNotFound)
	})

	t.Run("has admin", func(t *testing.T) {
		has, err := accounts.HasAdmin(ctx)
		require.NoError(t, err)
		require.False(t, has)

		require.NoError(t, accounts.CreateAccount(ctx, NewAccount("root", domain.RoleAdmin)))
		has, err = accounts.HasAdmin(ctx)
		require.NoError(t, err)
		require.True(t, has)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, accounts.DeleteAccount(ctx, alice.ID))
		require.ErrorIs(t, accounts.DeleteAccount(ctx, alice.ID), store.ErrNotFound)
	})
}

func testProfiles(t *testing.T, s store.Store) {
	ctx := context.Background()

	inst := NewAccount("ibu", domain.RoleInstructor)
	require.NoError(t, s.Accounts().CreateAccount(ctx, inst))

	profile := domain.InstructorProfile{AccountID: inst.ID, InstructorID: uuid.NewString(), Keahlian: 7}
	require.NoError(t, s.Instructors().CreateInstructorProfile(ctx, profile))

	got, err := s.Instructors().GetInstructorProfile(ctx, inst.ID)
	require.NoError(t, err)
	require.Equal(t, profile, got)

	require.NoError(t, s.Instructors().UpdateKeahlian(ctx, inst.ID, 9))
	got, err = s.Instructors().GetInstructorProfile(ctx, inst.ID)
	require.NoError(t, err)
	require.Equal(t, 9, got.Keahlian)

	t.Run("keahlian out of range", func(t *testing.T) {
		require.Error(t, s.Instructors().UpdateKeahlian(ctx, inst.ID, 11))
	})

	t.Run("admin profile", func(t *testing.T) {
		admin := NewAccount("root", domain.RoleAdmin)
		require.NoError(t, s.Accounts().CreateAccount(ctx, admin))
		require.NoError(t, s.Admins().CreateAdminProfile(ctx, domain.AdminProfile{AccountID: admin.ID, AdminID: uuid.NewString()}))

		got, err := s.Admins().GetAdminProfile(ctx, admin.ID)
		require.NoError(t, err)
		require.Equal(t, admin.ID, got.AccountID)

		_, err = s.Admins().GetAdminProfile(ctx, inst.ID)
		require.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("profile requires account", func(t *testing.T) {
		err := s.Instructors().CreateInstructorProfile(ctx, domain.InstructorProfile{
			AccountID: uuid.NewString(), InstructorID: uuid.NewString(), Keahlian: 3,
		})
		require.Error(t, err)
	})

	t.Run("delete cascades", func(t *testing.T) {
		require.NoError(t, s.Accounts().DeleteAccount(ctx, inst.ID))
		_, err := s.Instructors().GetInstructorProfile(ctx, inst.ID)
		require.ErrorIs(t, err, store.ErrNotFound)
	})
}

func testOutstandingTokens(t *testing.T, s store.Store) {
	ctx := context.Background()
	tokens := s.OutstandingTokens()
	now := time.Now().UTC()

	acc := NewAccount("alice", domain.RoleStudent)
	require.NoError(t, s.Accounts().CreateAccount(ctx, acc))

	issue := func(expires time.Time) domain.OutstandingToken {
		tok := domain.OutstandingToken{JTI: idx.MustNew().String(), AccountID: acc.ID, ExpiresAt: expires, CreatedAt: now}
		require.NoError(t, tokens.CreateOutstandingToken(ctx, tok))
		return tok
	}

	t.Run("revoke once", func(t *testing.T) {
		tok := issue(now.Add(time.Hour))

		got, err := tokens.GetOutstandingToken(ctx, tok.JTI)
		require.NoError(t, err)
		require.Nil(t, got.RevokedAt)
		require.True(t, got.Usable(now))

		require.NoError(t, tokens.RevokeOutstandingToken(ctx, tok.JTI, now))
		require.ErrorIs(t, tokens.RevokeOutstandingToken(ctx, tok.JTI, now), store.ErrNotFound)

		got, err = tokens.GetOutstandingToken(ctx, tok.JTI)
		require.NoError(t, err)
		require.NotNil(t, got.RevokedAt)
	})

	t.Run("revoke unknown", func(t *testing.T) {
		require.ErrorIs(t, tokens.RevokeOutstandingToken(ctx, idx.MustNew().String(), now), store.ErrNotFound)
		_, err := tokens.GetOutstandingToken(ctx, "missing")
		require.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("revoke all", func(t *testing.T) {
		issue(now.Add(time.Hour))
		issue(now.Add(time.Hour))

		n, err := tokens.RevokeAllAccountTokens(ctx, acc.ID, now)
		require.NoError(t, err)
		require.EqualValues(t, 2, n)

		n, err = tokens.RevokeAllAccountTokens(ctx, acc.ID, now)
		require.NoError(t, err)
		require.Zero(t, n)
	})

	t.Run("delete expired", func(t *testing.T) {
		old := issue(now.Add(-time.Hour))
		live := issue(now.Add(time.Hour))

		n, err := tokens.DeleteExpiredOutstandingTokens(ctx, now)
		require.NoError(t, err)
		require.EqualValues(t, 1, n)

		_, err = tokens.GetOutstandingToken(ctx, old.JTI)
		require.ErrorIs(t, err, store.ErrNotFound)
		_, err = tokens.GetOutstandingToken(ctx, live.JTI)
		require.NoError(t, err)
	})

	t.Run("account delete cascades", func(t *testing.T) {
		tok := issue(now.Add(time.Hour))
		require.NoError(t, s.Accounts().DeleteAccount(ctx, acc.ID))
		_, err := tokens.GetOutstandingToken(ctx, tok.JTI)
		require.ErrorIs(t, err, store.ErrNotFound)
	})
}

func testSigningKeys(t *testing.T, s store.Store) {
	ctx := context.Background()
	keys := s.SigningKeys()
	now := time.Now().UTC()
	retired := now.Add(-time.Minute)

	mk := func(kid string, created time.Time, expires time.Time, retiredAt *time.Time) domain.SigningKey {
		k := domain.SigningKey{
			ID:                  idx.MustNew().String(),
			Kid:                 kid,
			Algorithm:           "EdDSA",
			PrivateKeyEncrypted: []byte("sealed-" + kid),
			CreatedAt:           created,
			RetiredAt:           retiredAt,
			ExpiresAt:           expires,
		}
		require.NoError(t, keys.CreateSigningKey(ctx, k))
		return k
	}

	mk("old", now.Add(-3*time.Hour), now.Add(time.Hour), nil)
	mk("new", now.Add(-time.Hour), now.Add(time.Hour), nil)
	mk("retired", now.Add(-2*time.Hour), now.Add(time.Hour), &retired)
	mk("expired", now.Add(-4*time.Hour), now.Add(-time.Hour), nil)

	active, err := keys.ListActiveSigningKeys(ctx, now)
	require.NoError(t, err)
	require.Equal(t, []string{"new", "old"}, kids(active))
	require.Equal(t, []byte("sealed-new"), active[0].PrivateKeyEncrypted)

	all, err := keys.ListAllSigningKeys(ctx, now)
	require.NoError(t, err)
	require.Equal(t, []string{"new", "retired", "old"}, kids(all))
	require.NotNil(t, all[1].RetiredAt)

	n, err := keys.DeleteExpiredSigningKeys(ctx, now)
	require.NoError(t, err)
	require.EqualValues(t, 1, n)
}

func kids(keys []domain.SigningKey) []string {
	out := make([]string, len(keys))
	for i, k := range keys {
		out[i] = k.Kid
	}
	return out
}

func testTransactions(t *testing.T, s store.Store) {
	ctx := context.Background()

	t.Run("rollback on error", func(t *testing.T) {
		acc := NewAccount("ghost", domain.RoleInstructor)
		boom := errors.New("boom")

		err := s.WithTx(ctx, func(tx store.Tx) error {
			require.NoError(t, tx.Accounts().CreateAccount(ctx, acc))
			return boom
		})
		require.ErrorIs(t, err, boom)

		_, err = s.Accounts().GetAccountByID(ctx, acc.ID)
		require.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("failing profile leaves no account", func(t *testing.T) {
		acc := NewAccount("orphan", domain.RoleInstructor)

		err := s.WithTx(ctx, func(tx store.Tx) error {
			if err := tx.Accounts().CreateAccount(ctx, acc); err != nil {
				return err
			}
			return tx.Instructors().CreateInstructorProfile(ctx, domain.InstructorProfile{
				AccountID: acc.ID, InstructorID: uuid.NewString(), Keahlian: 42,
			})
		})
		require.Error(t, err)

		_, err = s.Accounts().GetAccountByUsername(ctx, "orphan")
		require.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("commit", func(t *testing.T) {
		acc := NewAccount("carol", domain.RoleInstructor)
		err := s.WithTx(ctx, func(tx store.Tx) error {
			if err := tx.Accounts().CreateAccount(ctx, acc); err != nil {
				return err
			}
			return tx.Instructors().CreateInstructorProfile(ctx, domain.InstructorProfile{
				AccountID: acc.ID, InstructorID: uuid.NewString(), Keahlian: 5,
			})
		})
		require.NoError(t, err)

		p, err := s.Instructors().GetInstructorProfile(ctx, acc.ID)
		require.NoError(t, err)
		require.Equal(t, 5, p.Keahlian)
	})

	t.Run("nested transactions are refused", func(t *testing.T) {
		tx, err := s.Tx(ctx)
		require.NoError(t, err)
		defer func() { _ = tx.Rollback() }()

		_, err = tx.Tx(ctx)
		require.Error(t, err)
	})
}
