package identity_test

import (
	"net/http"
	"testing"

	"github.com/aussiebroadwan/kelas/pkg/authsdk"
	"github.com/stretchr/testify/require"
)

func TestBootstrapAdmin(t *testing.T) {
	client := authsdk.NewSDKClient(setupIdentityContainer(t, nil))

	admin := adminSession(t, client)
	profile, err := admin.Profile(t.Context())
	require.NoError(t, err)
	require.Equal(t, adminUsername, profile.Username)
	require.NotEmpty(t, profile.AdminID)
	require.NotNil(t, profile.IsStaff)
	require.True(t, *profile.IsStaff)

	created, err := admin.CreateAdmin(t.Context(), authsdk.AdminCreateRequest{
		Username:  "ops",
		Password:  "0ps-Pa55word",
		Email:     "ops@kelas.test",
		FirstName: "Ops",
		LastName:  "Team",
	})
	require.NoError(t, err)
	require.Equal(t, "admin", created.Role)

	_, _, err = client.Login(t.Context(), "ops", "0ps-Pa55word")
	require.NoError(t, err)
}

func TestAdminRoutesForbiddenToStudents(t *testing.T) {
	client := authsdk.NewSDKClient(setupIdentityContainer(t, nil))

	_, student := registerUser(t, client, "eka", "student", nil)

	_, err := student.CreateAdmin(t.Context(), authsdk.AdminCreateRequest{
		Username: "sneaky",
		Password: "Sn3aky-Pa55",
		Email:    "sneaky@kelas.test",
	})
	assertStatus(t, err, http.StatusForbidden, "student creating an admin")

	_, _, err = client.Register(t.Context(), authsdk.RegisterRequest{
		Username:  "sneaky",
		Password:  userPassword,
		Password2: userPassword,
		Email:     "sneaky@kelas.test",
		FirstName: "S",
		LastName:  "N",
		Role:      "admin",
	})
	apiErr := assertStatus(t, err, http.StatusBadRequest, "self-registration as admin")
	require.NotEmpty(t, apiErr.Field("role"))
}

func TestDeactivateAndActivate(t *testing.T) {
	client := authsdk.NewSDKClient(setupIdentityContainer(t, nil))

	admin := adminSession(t, client)
	reg, session := registerUser(t, client, "fajar", "student", nil)
	refresh := session.Tokens().Refresh

	require.NoError(t, admin.DeactivateAccount(t.Context(), reg.User.ID))

	_, _, err := client.Login(t.Context(), "fajar", userPassword)
	apiErr := assertStatus(t, err, http.StatusBadRequest, "login while deactivated")
	require.NotEmpty(t, apiErr.Field(authsdk.NonFieldErrors))

	_, err = client.Refresh(t.Context(), refresh)
	assertStatus(t, err, http.StatusUnauthorized, "refresh token revoked by deactivation")

	require.NoError(t, admin.ActivateAccount(t.Context(), reg.User.ID))

	_, _, err = client.Login(t.Context(), "fajar", userPassword)
	require.NoError(t, err)

	err = admin.DeactivateAccount(t.Context(), "00000000-0000-0000-0000-000000000000")
	assertStatus(t, err, http.StatusNotFound, "unknown account")
}
