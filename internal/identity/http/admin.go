package http

import (
	"net/http"

	"github.com/aussiebroadwan/kelas/internal/identity/service"
	"github.com/aussiebroadwan/kelas/internal/identity/validation"
	"github.com/aussiebroadwan/kelas/pkg/authsdk"
	"github.com/aussiebroadwan/kelas/pkg/httpx"
)

// AdminHandler serves the admin only account management endpoints.
type AdminHandler struct {
	Admins *service.AdminService
}

// HandleCreate handles POST /admin/accounts
//
//	@Summary		Create an admin
//	@Description	Creates a staff superuser with an admin profile. Requires an admin access token.
//	@Tags			Admin
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body		authsdk.AdminCreateRequest	true	"Admin account"
//	@Success		201		{object}	authsdk.AdminCreateResponse	"Created admin"
//	@Failure		400		{object}	authsdk.ErrorResponse		"Field errors or username already taken"
//	@Failure		401		{object}	authsdk.ErrorResponse		"Missing or invalid access token, or account deactivated"
//	@Failure		403		{object}	authsdk.ErrorResponse		"Caller is not an admin"
//	@Router			/admin/accounts [post].
func (h *AdminHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var in validation.AdminCreateInput
	if !decode(w, r, &in) {
		return
	}

	m, err := h.Admins.CreateAdmin(r.Context(), in)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, authsdk.AdminCreateResponse{
		Status:  authsdk.StatusSuccess,
		Message: "Admin created successfully",
		User:    profile(m),
	})
}

// HandleActivate handles POST /admin/accounts/{id}/activate
//
//	@Summary		Activate an account
//	@Tags			Admin
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id	path		string					true	"Account id"
//	@Success		200	{object}	authsdk.MessageResponse	"Account activated"
//	@Failure		401	{object}	authsdk.ErrorResponse	"Missing or invalid access token, or account deactivated"
//	@Failure		403	{object}	authsdk.ErrorResponse	"Caller is not an admin"
//	@Failure		404	{object}	authsdk.ErrorResponse	"Account not found"
//	@Router			/admin/accounts/{id}/activate [post].
func (h *AdminHandler) HandleActivate(w http.ResponseWriter, r *http.Request) {
	h.setActive(w, r, true, "Account activated successfully")
}

// HandleDeactivate handles POST /admin/accounts/{id}/deactivate
//
//	@Summary		Deactivate an account
//	@Description	Disables login and revokes every refresh token of the account.
//	@Tags			Admin
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id	path		string					true	"Account id"
//	@Success		200	{object}	authsdk.MessageResponse	"Account deactivated"
//	@Failure		401	{object}	authsdk.ErrorResponse	"Missing or invalid access token, or account deactivated"
//	@Failure		403	{object}	authsdk.ErrorResponse	"Caller is not an admin"
//	@Failure		404	{object}	authsdk.ErrorResponse	"Account not found"
//	@Router			/admin/accounts/{id}/deactivate [post].
func (h *AdminHandler) HandleDeactivate(w http.ResponseWriter, r *http.Request) {
	h.setActive(w, r, false, "Account deactivated successfully")
}

func (h *AdminHandler) setActive(w http.ResponseWriter, r *http.Request, active bool, msg string) {
	if err := h.Admins.SetActive(r.Context(), r.PathValue("id"), active); err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, authsdk.MessageResponse{
		Status:  authsdk.StatusSuccess,
		Message: msg,
	})
}
