package validation_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/kelas/internal/identity/domain"
	"github.com/aussiebroadwan/kelas/internal/identity/validation"
)

func intPtr(v int) *int       { return &v }
func strPtr(v string) *string { return &v }

func aliceInput() validation.RegisterInput {
	return validation.RegisterInput{
		Username:  "alice",
		Password:  "Str0ngP@ss!",
		Password2: "Str0ngP@ss!",
		Email:     "a@x.com",
		FirstName: "A",
		LastName:  "B",
		Role:      "student",
	}
}

func TestRegister(t *testing.T) {
	val := validation.New(nil)

	tests := []struct {
		name   string
		mutate func(in *validation.RegisterInput)
		fields map[string]string // field -> expected message (empty means valid)
	}{
		{
			name:   "valid student",
			mutate: func(*validation.RegisterInput) {},
		},
		{
			name: "valid instructor",
			mutate: func(in *validation.RegisterInput) {
				in.Role = "instructor"
				in.Keahlian = intPtr(7)
			},
		},
		{
			name:   "student keahlian is ignored",
			mutate: func(in *validation.RegisterInput) { in.Keahlian = intPtr(99) },
		},
		{
			name:   "admin role rejected",
			mutate: func(in *validation.RegisterInput) { in.Role = "admin" },
			fields: map[string]string{"role": validation.MsgInvalidRole},
		},
		{
			name:   "unknown role rejected",
			mutate: func(in *validation.RegisterInput) { in.Role = "teacher" },
			fields: map[string]string{"role": validation.MsgInvalidRole},
		},
		{
			name:   "password mismatch",
			mutate: func(in *validation.RegisterInput) { in.Password2 = "Str0ngP@ss?" },
			fields: map[string]string{"password2": validation.MsgPasswordMismatch},
		},
		{
			name:   "instructor without keahlian",
			mutate: func(in *validation.RegisterInput) { in.Role = "instructor" },
			fields: map[string]string{"keahlian": validation.MsgKeahlianRequired},
		},
		{
			name: "keahlian out of range",
			mutate: func(in *validation.RegisterInput) {
				in.Role = "instructor"
				in.Keahlian = intPtr(11)
			},
			fields: map[string]string{"keahlian": validation.MsgKeahlianRange},
		},
		{
			name: "keahlian zero",
			mutate: func(in *validation.RegisterInput) {
				in.Role = "instructor"
				in.Keahlian = intPtr(0)
			},
			fields: map[string]string{"keahlian": validation.MsgKeahlianRange},
		},
		{
			name:   "invalid email",
			mutate: func(in *validation.RegisterInput) { in.Email = "not-an-email" },
			fields: map[string]string{"email": validation.MsgInvalidEmail},
		},
		{
			name:   "invalid username",
			mutate: func(in *validation.RegisterInput) { in.Username = "alice smith" },
			fields: map[string]string{"username": validation.MsgInvalidUsername},
		},
		{
			name:   "long last name",
			mutate: func(in *validation.RegisterInput) { in.LastName = strings.Repeat("b", 151) },
			fields: map[string]string{"last_name": validation.MsgMaxLength},
		},
		{
			name: "everything missing",
			mutate: func(in *validation.RegisterInput) {
				*in = validation.RegisterInput{}
			},
			fields: map[string]string{
				"username":   validation.MsgRequired,
				"password":   validation.MsgRequired,
				"password2":  validation.MsgRequired,
				"email":      validation.MsgRequired,
				"first_name": validation.MsgRequired,
				"last_name":  validation.MsgRequired,
				"role":       validation.MsgRequired,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := aliceInput()
			tt.mutate(&in)

			errs := val.Register(&in)
			require.Len(t, errs, len(tt.fields), "errors: %v", errs)
			for field, msg := range tt.fields {
				require.Contains(t, errs[field], msg)
			}
		})
	}
}

func TestRegisterCollectsEveryError(t *testing.T) {
	val := validation.New(nil)
	in := aliceInput()
	in.Role = "instructor"
	in.Password2 = "different"
	in.Email = "bad"

	errs := val.Register(&in)
	require.True(t, errs.Has("password2"))
	require.True(t, errs.Has("keahlian"))
	require.True(t, errs.Has("email"))
}

func TestRegisterMergesDecodeErrors(t *testing.T) {
	val := validation.New(nil)
	in := aliceInput()
	in.Role = "instructor"
	in.Keahlian = nil
	in.Password2 = "different"
	in.SetDecodeErrors(validation.Errors{"keahlian": {"A valid integer is required."}})

	errs := val.Register(&in)
	require.Equal(t, []string{"A valid integer is required."}, errs["keahlian"])
	require.Equal(t, []string{validation.MsgPasswordMismatch}, errs["password2"])
}

func TestRegisterNormalizes(t *testing.T) {
	val := validation.New(nil)
	in := aliceInput()
	in.Username = "  alice "
	in.Email = " Alice@Example.COM "

	require.True(t, val.Register(&in).Empty())
	require.Equal(t, "alice", in.Username)
	require.Equal(t, "Alice@example.com", in.Email)
}

func TestRegisterWeakPassword(t *testing.T) {
	val := validation.New(nil)
	in := aliceInput()
	in.Password = "1234567"
	in.Password2 = "1234567"

	errs := val.Register(&in)
	require.ElementsMatch(t, []string{
		"This password is too short. It must contain at least 8 characters.",
		validation.MsgPasswordNumeric,
		validation.MsgPasswordCommon,
	}, errs["password"])
	require.False(t, errs.Has("password2"))
}

func TestLogin(t *testing.T) {
	val := validation.New(nil)

	require.True(t, val.Login(&validation.LoginInput{Username: "alice", Password: "x"}).Empty())

	errs := val.Login(&validation.LoginInput{})
	require.Equal(t, []string{validation.MsgRequired}, errs["username"])
	require.Equal(t, []string{validation.MsgRequired}, errs["password"])
}

func TestRefresh(t *testing.T) {
	val := validation.New(nil)
	require.True(t, val.Refresh(&validation.RefreshInput{Refresh: "tok"}).Empty())
	require.Equal(t, []string{validation.MsgRequired}, val.Refresh(&validation.RefreshInput{Refresh: "  "})["refresh"])
}

func TestProfileUpdate(t *testing.T) {
	val := validation.New(nil)

	t.Run("empty update is valid", func(t *testing.T) {
		require.True(t, val.ProfileUpdate(&validation.ProfileUpdateInput{}, domain.RoleStudent).Empty())
	})

	t.Run("field checks", func(t *testing.T) {
		in := validation.ProfileUpdateInput{
			Username:  strPtr(""),
			Email:     strPtr("nope"),
			FirstName: strPtr(strings.Repeat("x", 151)),
		}
		errs := val.ProfileUpdate(&in, domain.RoleStudent)
		require.Equal(t, []string{validation.MsgBlank}, errs["username"])
		require.Equal(t, []string{validation.MsgInvalidEmail}, errs["email"])
		require.Equal(t, []string{validation.MsgMaxLength}, errs["first_name"])
	})

	t.Run("keahlian for instructors", func(t *testing.T) {
		in := validation.ProfileUpdateInput{Keahlian: intPtr(12)}
		require.Equal(t, []string{validation.MsgKeahlianRange}, val.ProfileUpdate(&in, domain.RoleInstructor)["keahlian"])

		in = validation.ProfileUpdateInput{Keahlian: intPtr(4)}
		require.True(t, val.ProfileUpdate(&in, domain.RoleInstructor).Empty())
		require.Equal(t, 4, *in.Keahlian)
	})

	t.Run("keahlian dropped for students", func(t *testing.T) {
		in := validation.ProfileUpdateInput{Keahlian: intPtr(12)}
		require.True(t, val.ProfileUpdate(&in, domain.RoleStudent).Empty())
		require.Nil(t, in.Keahlian)
	})

	t.Run("decode errors", func(t *testing.T) {
		in := validation.ProfileUpdateInput{Email: strPtr("nope")}
		in.SetDecodeErrors(validation.Errors{"keahlian": {"A valid integer is required."}})

		errs := val.ProfileUpdate(&in, domain.RoleInstructor)
		require.True(t, errs.Has("keahlian"))
		require.True(t, errs.Has("email"))

		in = validation.ProfileUpdateInput{}
		in.SetDecodeErrors(validation.Errors{"keahlian": {"A valid integer is required."}})
		require.True(t, val.ProfileUpdate(&in, domain.RoleStudent).Empty())
	})

	t.Run("trims in place", func(t *testing.T) {
		in := validation.ProfileUpdateInput{Username: strPtr(" bob "), LastName: strPtr(" Smith ")}
		require.True(t, val.ProfileUpdate(&in, domain.RoleStudent).Empty())
		require.Equal(t, "bob", *in.Username)
		require.Equal(t, "Smith", *in.LastName)
	})
}

func TestPasswordChange(t *testing.T) {
	val := validation.New(nil)
	user := validation.UserAttributes{Username: "alice", Email: "a@x.com"}

	require.True(t, val.PasswordChange(&validation.PasswordChangeInput{
		OldPassword: "old", NewPassword: "N3w-Secret!", NewPassword2: "N3w-Secret!",
	}, user).Empty())

	errs := val.PasswordChange(&validation.PasswordChangeInput{
		OldPassword: "old", NewPassword: "N3w-Secret!", NewPassword2: "other",
	}, user)
	require.Equal(t, []string{validation.MsgPasswordMismatch}, errs["new_password2"])

	errs = val.PasswordChange(&validation.PasswordChangeInput{}, user)
	require.Len(t, errs, 3)
}

func TestAdminCreate(t *testing.T) {
	val := validation.New(nil)

	in := validation.AdminCreateInput{
		Username: "root", Password: "V3ry$ecure", Email: "root@kelas.test", FirstName: "R", LastName: "T",
	}
	require.True(t, val.AdminCreate(&in).Empty())

	in.Password = "password"
	require.Equal(t, []string{validation.MsgPasswordCommon}, val.AdminCreate(&in)["password"])
}

type denyAll struct{}

func (denyAll) Check(string, validation.UserAttributes) []string { return []string{"nope"} }

func TestCustomPolicy(t *testing.T) {
	val := validation.New(denyAll{})
	in := aliceInput()
	require.Equal(t, []string{"nope"}, val.Register(&in)["password"])
}

func TestErrorsString(t *testing.T) {
	errs := validation.Errors{}
	errs.Add("role", "bad role")
	errs.Add("email", "bad email")
	require.Equal(t, "email: bad email; role: bad role", errs.Error())
}
