package http

import (
	"net/http"

	"github.com/aussiebroadwan/kelas/internal/identity/service"
	"github.com/aussiebroadwan/kelas/internal/identity/validation"
	"github.com/aussiebroadwan/kelas/pkg/authsdk"
	"github.com/aussiebroadwan/kelas/pkg/httpx"
)

// ProfileHandler serves the caller's own account.
type ProfileHandler struct {
	Accounts *service.AccountService
}

// HandleGet handles GET /profile
//
//	@Summary		Get own profile
//	@Description	Returns the caller's account. Admins also get admin_id, is_staff and is_superuser; instructors get instructor_id and keahlian.
//	@Tags			Profile
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	authsdk.ProfileResponse	"Profile"
//	@Failure		401	{object}	authsdk.ErrorResponse	"Missing or invalid access token, or account deactivated"
//	@Failure		404	{object}	authsdk.ErrorResponse	"Account not found"
//	@Router			/profile [get].
func (h *ProfileHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	accountID, ok := callerID(w, r)
	if !ok {
		return
	}

	m, err := h.Accounts.Profile(r.Context(), accountID)
	if err != nil {
		writeCallerError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, authsdk.ProfileResponse{
		Status:  authsdk.StatusSuccess,
		Profile: profile(m),
	})
}

// HandleUpdate handles POST /profile
//
//	@Summary		Update own profile
//	@Description	Partial update. Omitted fields are kept. keahlian only applies to instructors.
//	@Tags			Profile
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body		authsdk.ProfileUpdateRequest	true	"Fields to change"
//	@Success		200		{object}	authsdk.ProfileResponse			"Updated profile"
//	@Failure		400		{object}	authsdk.ErrorResponse			"Field errors or username already taken"
//	@Failure		401		{object}	authsdk.ErrorResponse			"Missing or invalid access token, or account deactivated"
//	@Failure		404		{object}	authsdk.ErrorResponse			"Account not found"
//	@Router			/profile [post].
func (h *ProfileHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	accountID, ok := callerID(w, r)
	if !ok {
		return
	}

	var in validation.ProfileUpdateInput
	if !decode(w, r, &in) {
		return
	}

	m, err := h.Accounts.UpdateProfile(r.Context(), accountID, in)
	if err != nil {
		writeCallerError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, authsdk.ProfileResponse{
		Status:  authsdk.StatusSuccess,
		Message: "Profile updated successfully",
		Profile: profile(m),
	})
}

// HandleDelete handles DELETE /profile
//
//	@Summary		Delete own account
//	@Description	Deletes the account with its profile. Its refresh tokens stop working.
//	@Tags			Profile
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	authsdk.MessageResponse	"User account deleted successfully"
//	@Failure		401	{object}	authsdk.ErrorResponse	"Missing or invalid access token, or account deactivated"
//	@Failure		404	{object}	authsdk.ErrorResponse	"Account not found"
//	@Router			/profile [delete].
func (h *ProfileHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	accountID, ok := callerID(w, r)
	if !ok {
		return
	}

	if err := h.Accounts.DeleteAccount(r.Context(), accountID); err != nil {
		writeCallerError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, authsdk.MessageResponse{
		Status:  authsdk.StatusSuccess,
		Message: "User account deleted successfully",
	})
}

// HandlePasswordChange handles POST /password/change
//
//	@Summary		Change password
//	@Description	Replaces the password, revokes every refresh token of the account and returns a new pair.
//	@Tags			Profile
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body		authsdk.PasswordChangeRequest	true	"Old and new password"
//	@Success		200		{object}	authsdk.PasswordChangeResponse	"New token pair"
//	@Failure		400		{object}	authsdk.ErrorResponse			"Field errors"
//	@Failure		401		{object}	authsdk.ErrorResponse			"Missing or invalid access token, or account deactivated"
//	@Router			/password/change [post].
func (h *ProfileHandler) HandlePasswordChange(w http.ResponseWriter, r *http.Request) {
	accountID, ok := callerID(w, r)
	if !ok {
		return
	}

	var in validation.PasswordChangeInput
	if !decode(w, r, &in) {
		return
	}

	tokens, err := h.Accounts.ChangePassword(r.Context(), accountID, in)
	if err != nil {
		writeCallerError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, authsdk.PasswordChangeResponse{
		Status:  authsdk.StatusSuccess,
		Message: "Password changed successfully",
		Tokens:  tokenPair(tokens),
	})
}
