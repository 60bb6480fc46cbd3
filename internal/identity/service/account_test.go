package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/kelas/internal/identity/domain"
	"github.com/aussiebroadwan/kelas/internal/identity/validation"
	"github.com/aussiebroadwan/kelas/pkg/jwtx"
)

func TestRegister(t *testing.T) {
	ctx := context.Background()

	t.Run("student", func(t *testing.T) {
		h := newHarness(t)

		reg := h.register(t, aliceInput("student"))
		require.Equal(t, domain.RoleStudent, reg.Member.Role)
		require.Nil(t, reg.Member.Instructor)
		require.Nil(t, reg.Member.Admin)
		require.True(t, reg.Member.IsActive)
		require.False(t, reg.Member.IsStaff)
		require.NotEmpty(t, reg.Tokens.Access)
		require.NotEmpty(t, reg.Tokens.Refresh)

		m, err := h.accounts.Profile(ctx, reg.Member.ID)
		require.NoError(t, err)
		require.Equal(t, "alice", m.Username)
		require.Nil(t, m.Instructor)
	})

	t.Run("instructor", func(t *testing.T) {
		h := newHarness(t)

		in := aliceInput("instructor")
		in.Keahlian = intPtr(7)
		reg := h.register(t, in)
		require.NotNil(t, reg.Member.Instructor)
		require.Equal(t, 7, reg.Member.Instructor.Keahlian)

		m, err := h.accounts.Profile(ctx, reg.Member.ID)
		require.NoError(t, err)
		require.Equal(t, 7, m.Instructor.Keahlian)
		require.Equal(t, reg.Member.Instructor.InstructorID, m.Instructor.InstructorID)
	})

	t.Run("tokens carry identity", func(t *testing.T) {
		h := newHarness(t)
		reg := h.register(t, aliceInput("student"))

		claims, err := h.tokens.KeyManager.Verifier.Verify(reg.Tokens.Access)
		require.NoError(t, err)
		require.Equal(t, reg.Member.ID, claims.Subject)
		require.Equal(t, "student", claims.Role)
		require.Equal(t, "alice", claims.Username)
		require.Equal(t, jwtx.TokenTypeAccess, claims.TokenType)
	})

	t.Run("admin role rejected", func(t *testing.T) {
		h := newHarness(t)
		_, err := h.accounts.Register(ctx, aliceInput("admin"))
		requireFieldError(t, err, "role")

		has, err := h.store.Accounts().HasAdmin(ctx)
		require.NoError(t, err)
		require.False(t, has)
	})

	t.Run("password mismatch", func(t *testing.T) {
		h := newHarness(t)
		in := aliceInput("student")
		in.Password2 = "Str0ngP@ss?"
		_, err := h.accounts.Register(ctx, in)
		requireFieldError(t, err, "password2")
	})

	t.Run("instructor without keahlian", func(t *testing.T) {
		h := newHarness(t)
		_, err := h.accounts.Register(ctx, aliceInput("instructor"))
		requireFieldError(t, err, "keahlian")
	})

	t.Run("username taken", func(t *testing.T) {
		h := newHarness(t)
		h.register(t, aliceInput("student"))

		_, err := h.accounts.Register(ctx, aliceInput("student"))
		require.ErrorIs(t, err, ErrUsernameTaken)
	})

	t.Run("instructor creation is atomic", func(t *testing.T) {
		base := newHarness(t)
		h := newHarnessWithStore(t, failingStore{Store: base.store})

		in := aliceInput("instructor")
		in.Keahlian = intPtr(7)
		_, err := h.accounts.Register(ctx, in)
		require.ErrorIs(t, err, ErrCreationFailed)

		_, err = base.store.Accounts().GetAccountByUsername(ctx, "alice")
		require.Error(t, err)
	})
}

func TestLogin(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	reg := h.register(t, aliceInput("student"))

	t.Run("success", func(t *testing.T) {
		a, pair, err := h.accounts.Login(ctx, validation.LoginInput{Username: "alice", Password: "Str0ngP@ss!"})
		require.NoError(t, err)
		require.Equal(t, reg.Member.ID, a.ID)
		require.NotEmpty(t, pair.Access)
		require.NotEmpty(t, pair.Refresh)
	})

	t.Run("wrong password and unknown user look the same", func(t *testing.T) {
		_, _, errWrong := h.accounts.Login(ctx, validation.LoginInput{Username: "alice", Password: "nope"})
		_, _, errUnknown := h.accounts.Login(ctx, validation.LoginInput{Username: "bob", Password: "nope"})
		require.ErrorIs(t, errWrong, ErrInvalidCredentials)
		require.ErrorIs(t, errUnknown, ErrInvalidCredentials)
		require.Equal(t, errWrong.Error(), errUnknown.Error())
	})

	t.Run("missing fields", func(t *testing.T) {
		_, _, err := h.accounts.Login(ctx, validation.LoginInput{Username: "alice"})
		requireFieldError(t, err, "password")
	})

	t.Run("disabled account", func(t *testing.T) {
		require.NoError(t, h.admins.SetActive(ctx, reg.Member.ID, false))
		t.Cleanup(func() { _ = h.admins.SetActive(ctx, reg.Member.ID, true) })

		_, _, err := h.accounts.Login(ctx, validation.LoginInput{Username: "alice", Password: "Str0ngP@ss!"})
		require.ErrorIs(t, err, ErrAccountDisabled)

		// a wrong password on a disabled account is still just wrong
		_, _, err = h.accounts.Login(ctx, validation.LoginInput{Username: "alice", Password: "nope"})
		require.ErrorIs(t, err, ErrInvalidCredentials)
	})
}

func TestLogout(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	reg := h.register(t, aliceInput("student"))

	_, err := h.accounts.Refresh(ctx, validation.RefreshInput{})
	requireFieldError(t, err, "refresh")

	err = h.accounts.Logout(ctx, reg.Member.ID, validation.RefreshInput{})
	requireFieldError(t, err, "refresh")

	require.NoError(t, h.accounts.Logout(ctx, reg.Member.ID, validation.RefreshInput{Refresh: reg.Tokens.Refresh}))
	require.ErrorIs(t, h.accounts.Logout(ctx, reg.Member.ID, validation.RefreshInput{Refresh: reg.Tokens.Refresh}), ErrInvalidToken)
}

func TestUpdateProfile(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)

	in := aliceInput("instructor")
	in.Keahlian = intPtr(7)
	alice := h.register(t, in)

	bob := aliceInput("student")
	bob.Username = "bob"
	bob.Email = "bob@x.com"
	h.register(t, bob)

	t.Run("partial update", func(t *testing.T) {
		m, err := h.accounts.UpdateProfile(ctx, alice.Member.ID, validation.ProfileUpdateInput{
			FirstName: strPtr("Alicia"),
			Keahlian:  intPtr(9),
		})
		require.NoError(t, err)
		require.Equal(t, "Alicia", m.FirstName)
		require.Equal(t, "B", m.LastName)
		require.Equal(t, "alice", m.Username)
		require.Equal(t, 9, m.Instructor.Keahlian)
		require.Equal(t, domain.RoleInstructor, m.Role)
	})

	t.Run("username taken", func(t *testing.T) {
		_, err := h.accounts.UpdateProfile(ctx, alice.Member.ID, validation.ProfileUpdateInput{Username: strPtr("bob")})
		require.ErrorIs(t, err, ErrUsernameTaken)
	})

	t.Run("keeping own username", func(t *testing.T) {
		_, err := h.accounts.UpdateProfile(ctx, alice.Member.ID, validation.ProfileUpdateInput{Username: strPtr("alice")})
		require.NoError(t, err)
	})

	t.Run("invalid fields", func(t *testing.T) {
		_, err := h.accounts.UpdateProfile(ctx, alice.Member.ID, validation.ProfileUpdateInput{
			Email:    strPtr("nope"),
			Keahlian: intPtr(11),
		})
		requireFieldError(t, err, "email")
		requireFieldError(t, err, "keahlian")
	})

	t.Run("missing account", func(t *testing.T) {
		_, err := h.accounts.UpdateProfile(ctx, "00000000-0000-0000-0000-000000000000", validation.ProfileUpdateInput{})
		require.ErrorIs(t, err, ErrAccountNotFound)
	})
}

func TestDeleteAccount(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	reg := h.register(t, aliceInput("student"))

	require.NoError(t, h.accounts.DeleteAccount(ctx, reg.Member.ID))

	_, err := h.accounts.Profile(ctx, reg.Member.ID)
	require.ErrorIs(t, err, ErrAccountNotFound)

	_, err = h.tokens.Refresh(ctx, reg.Tokens.Refresh)
	require.ErrorIs(t, err, ErrInvalidToken)

	require.ErrorIs(t, h.accounts.DeleteAccount(ctx, reg.Member.ID), ErrAccountNotFound)
}

func TestChangePassword(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	reg := h.register(t, aliceInput("student"))

	t.Run("wrong old password", func(t *testing.T) {
		_, err := h.accounts.ChangePassword(ctx, reg.Member.ID, validation.PasswordChangeInput{
			OldPassword: "wrong", NewPassword: "N3w-Secret!", NewPassword2: "N3w-Secret!",
		})
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		require.Equal(t, []string{validation.MsgWrongOldPassword}, verr.Fields["old_password"])
	})

	t.Run("mismatch", func(t *testing.T) {
		_, err := h.accounts.ChangePassword(ctx, reg.Member.ID, validation.PasswordChangeInput{
			OldPassword: "Str0ngP@ss!", NewPassword: "N3w-Secret!", NewPassword2: "other",
		})
		requireFieldError(t, err, "new_password2")
	})

	t.Run("success revokes old refresh tokens", func(t *testing.T) {
		_, second, err := h.accounts.Login(ctx, validation.LoginInput{Username: "alice", Password: "Str0ngP@ss!"})
		require.NoError(t, err)

		pair, err := h.accounts.ChangePassword(ctx, reg.Member.ID, validation.PasswordChangeInput{
			OldPassword: "Str0ngP@ss!", NewPassword: "N3w-Secret!", NewPassword2: "N3w-Secret!",
		})
		require.NoError(t, err)

		for _, old := range []string{reg.Tokens.Refresh, second.Refresh} {
			_, err := h.tokens.Refresh(ctx, old)
			require.ErrorIs(t, err, ErrInvalidToken)
		}
		_, err = h.tokens.Refresh(ctx, pair.Refresh)
		require.NoError(t, err)

		_, _, err = h.accounts.Login(ctx, validation.LoginInput{Username: "alice", Password: "Str0ngP@ss!"})
		require.ErrorIs(t, err, ErrInvalidCredentials)
		_, _, err = h.accounts.Login(ctx, validation.LoginInput{Username: "alice", Password: "N3w-Secret!"})
		require.NoError(t, err)
	})
}

func TestDeactivatedAccountCannotUseSelfService(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	reg := h.register(t, aliceInput("student"))

	require.NoError(t, h.admins.SetActive(ctx, reg.Member.ID, false))

	_, err := h.accounts.ChangePassword(ctx, reg.Member.ID, validation.PasswordChangeInput{
		OldPassword: "Str0ngP@ss!", NewPassword: "N3w-Secret!", NewPassword2: "N3w-Secret!",
	})
	require.ErrorIs(t, err, ErrAccountDisabled)

	_, err = h.accounts.UpdateProfile(ctx, reg.Member.ID, validation.ProfileUpdateInput{FirstName: strPtr("Eve")})
	require.ErrorIs(t, err, ErrAccountDisabled)

	_, err = h.accounts.Profile(ctx, reg.Member.ID)
	require.ErrorIs(t, err, ErrAccountDisabled)

	require.ErrorIs(t, h.accounts.DeleteAccount(ctx, reg.Member.ID), ErrAccountDisabled)

	// nothing was issued or changed while disabled
	n, err := h.store.OutstandingTokens().RevokeAllAccountTokens(ctx, reg.Member.ID, time.Now().UTC())
	require.NoError(t, err)
	require.Zero(t, n)

	require.NoError(t, h.admins.SetActive(ctx, reg.Member.ID, true))
	_, _, err = h.accounts.Login(ctx, validation.LoginInput{Username: "alice", Password: "Str0ngP@ss!"})
	require.NoError(t, err)

	m, err := h.accounts.Profile(ctx, reg.Member.ID)
	require.NoError(t, err)
	require.Equal(t, "A", m.FirstName)
}
