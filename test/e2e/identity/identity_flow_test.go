package identity_test

import (
	"net/http"
	"testing"

	"github.com/aussiebroadwan/kelas/pkg/authsdk"
	"github.com/stretchr/testify/require"
)

// TestRegisterLoginRefresh covers the full token lifecycle of a student:
// registration, login, refresh rotation, reuse of a revoked refresh token
// and logout.
func TestRegisterLoginRefresh(t *testing.T) {
	client := authsdk.NewSDKClient(setupIdentityContainer(t, nil))

	reg, _ := registerUser(t, client, "alice", "student", nil)
	require.Equal(t, "Student registered successfully", reg.Message)
	require.Equal(t, "student", reg.User.Role)
	require.Empty(t, reg.User.InstructorID)

	login, session, err := client.Login(t.Context(), "alice", userPassword)
	require.NoError(t, err)
	require.Equal(t, reg.User.ID, login.User.ID)

	old := session.Tokens()
	rotated, err := client.Refresh(t.Context(), old.Refresh)
	require.NoError(t, err)
	require.NotEqual(t, old.Access, rotated.Access, "access token should be rotated")
	require.NotEqual(t, old.Refresh, rotated.Refresh, "refresh token should be rotated")

	_, err = client.Refresh(t.Context(), old.Refresh)
	assertStatus(t, err, http.StatusUnauthorized, "reused refresh token")

	session = client.NewSession(rotated)
	require.NoError(t, session.Logout(t.Context()))

	_, err = client.Refresh(t.Context(), rotated.Refresh)
	assertStatus(t, err, http.StatusUnauthorized, "refresh after logout")
}

func TestInstructorProfile(t *testing.T) {
	client := authsdk.NewSDKClient(setupIdentityContainer(t, nil))

	reg, session := registerUser(t, client, "budi", "instructor", intPtr(7))
	require.Equal(t, "Instructor registered successfully", reg.Message)
	require.NotEmpty(t, reg.User.InstructorID)

	profile, err := session.Profile(t.Context())
	require.NoError(t, err)
	require.Equal(t, "instructor", profile.Role)
	require.Equal(t, reg.User.InstructorID, profile.InstructorID)
	require.NotNil(t, profile.Keahlian)
	require.Equal(t, 7, *profile.Keahlian)

	updated, err := session.UpdateProfile(t.Context(), authsdk.ProfileUpdateRequest{Keahlian: intPtr(9)})
	require.NoError(t, err)
	require.Equal(t, 9, *updated.Keahlian)

	_, err = session.UpdateProfile(t.Context(), authsdk.ProfileUpdateRequest{Keahlian: intPtr(11)})
	apiErr := assertStatus(t, err, http.StatusBadRequest, "keahlian out of range")
	require.NotEmpty(t, apiErr.Field("keahlian"))
}

func TestRegisterValidation(t *testing.T) {
	client := authsdk.NewSDKClient(setupIdentityContainer(t, nil))

	_, _, err := client.Register(t.Context(), authsdk.RegisterRequest{
		Username:  "carol",
		Password:  userPassword,
		Password2: "something else",
		Email:     "carol@kelas.test",
		FirstName: "C",
		LastName:  "D",
		Role:      "student",
	})
	apiErr := assertStatus(t, err, http.StatusBadRequest, "password mismatch")
	require.NotEmpty(t, apiErr.Field("password2"))

	_, _, err = client.Register(t.Context(), authsdk.RegisterRequest{
		Username:  "carol",
		Password:  userPassword,
		Password2: userPassword,
		Email:     "carol@kelas.test",
		FirstName: "C",
		LastName:  "D",
		Role:      "instructor",
	})
	apiErr = assertStatus(t, err, http.StatusBadRequest, "instructor without keahlian")
	require.NotEmpty(t, apiErr.Field("keahlian"))

	registerUser(t, client, "carol", "student", nil)

	_, _, err = client.Register(t.Context(), authsdk.RegisterRequest{
		Username:  "carol",
		Password:  userPassword,
		Password2: userPassword,
		Email:     "carol2@kelas.test",
		FirstName: "C",
		LastName:  "D",
		Role:      "student",
	})
	assertStatus(t, err, http.StatusBadRequest, "duplicate username")
}

func TestPasswordChangeAndDelete(t *testing.T) {
	client := authsdk.NewSDKClient(setupIdentityContainer(t, nil))

	_, session := registerUser(t, client, "dewi", "student", nil)
	before := session.Tokens()

	const newPassword = "N3w-Pa55word!"
	require.NoError(t, session.ChangePassword(t.Context(), userPassword, newPassword))
	require.NotEqual(t, before.Refresh, session.Tokens().Refresh)

	_, err := client.Refresh(t.Context(), before.Refresh)
	assertStatus(t, err, http.StatusUnauthorized, "refresh token issued before password change")

	_, _, err = client.Login(t.Context(), "dewi", userPassword)
	apiErr := assertStatus(t, err, http.StatusBadRequest, "login with old password")
	require.NotEmpty(t, apiErr.Field(authsdk.NonFieldErrors))

	_, session, err = client.Login(t.Context(), "dewi", newPassword)
	require.NoError(t, err)

	require.NoError(t, session.DeleteAccount(t.Context()))

	_, _, err = client.Login(t.Context(), "dewi", newPassword)
	assertStatus(t, err, http.StatusBadRequest, "login after delete")
}
