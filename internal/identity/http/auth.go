package http

import (
	"errors"
	"net/http"

	"github.com/aussiebroadwan/kelas/internal/identity/domain"
	"github.com/aussiebroadwan/kelas/internal/identity/service"
	"github.com/aussiebroadwan/kelas/internal/identity/validation"
	"github.com/aussiebroadwan/kelas/pkg/authsdk"
	"github.com/aussiebroadwan/kelas/pkg/httpx"
)

// AuthHandler serves registration and the token lifecycle endpoints.
type AuthHandler struct {
	Accounts *service.AccountService
}

// HandleRegister handles POST /register
//
//	@Summary		Register a student or instructor
//	@Description	Creates an account and returns its first token pair. Instructors must send keahlian between 1 and 10.
//	@Description	Admin accounts cannot be registered here.
//	@Tags			Accounts
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.RegisterRequest		true	"Registration payload"
//	@Success		201		{object}	authsdk.RegisterResponse	"Created account and token pair"
//	@Failure		400		{object}	authsdk.ErrorResponse		"Field errors or username already taken"
//	@Failure		429		{object}	authsdk.ErrorResponse		"Rate limited"
//	@Failure		500		{object}	authsdk.ErrorResponse		"Account could not be created"
//	@Router			/register [post].
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var in validation.RegisterInput
	if !decode(w, r, &in) {
		return
	}

	reg, err := h.Accounts.Register(r.Context(), in)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	msg := "Student registered successfully"
	if reg.Member.Role == domain.RoleInstructor {
		msg = "Instructor registered successfully"
	}

	httpx.WriteJSON(w, http.StatusCreated, authsdk.RegisterResponse{
		Status:  authsdk.StatusSuccess,
		Message: msg,
		User:    registeredUser(reg.Member),
		Tokens:  tokenPair(reg.Tokens),
	})
}

// HandleLogin handles POST /login
//
//	@Summary		Log in
//	@Description	Exchanges username and password for a token pair. Wrong passwords and unknown usernames give the same error.
//	@Tags			Accounts
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.LoginRequest	true	"Credentials"
//	@Success		200		{object}	authsdk.LoginResponse	"Account summary and token pair"
//	@Failure		400		{object}	authsdk.ErrorResponse	"Missing fields, bad credentials or disabled account"
//	@Failure		429		{object}	authsdk.ErrorResponse	"Rate limited"
//	@Router			/login [post].
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var in validation.LoginInput
	if !decode(w, r, &in) {
		return
	}

	a, tokens, err := h.Accounts.Login(r.Context(), in)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, authsdk.LoginResponse{
		Status: authsdk.StatusSuccess,
		User: authsdk.LoginUser{
			ID:       a.ID,
			Username: a.Username,
			Role:     string(a.Role),
		},
		Tokens: tokenPair(tokens),
	})
}

// HandleRefresh handles POST /token/refresh
//
//	@Summary		Rotate a refresh token
//	@Description	Returns a new token pair. The presented refresh token is revoked and cannot be used again.
//	@Tags			Tokens
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.RefreshRequest	true	"Refresh token"
//	@Success		200		{object}	authsdk.TokensResponse	"New token pair"
//	@Failure		400		{object}	authsdk.ErrorResponse	"Missing refresh field"
//	@Failure		401		{object}	authsdk.ErrorResponse	"Invalid or expired token"
//	@Router			/token/refresh [post].
func (h *AuthHandler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	var in validation.RefreshInput
	if !decode(w, r, &in) {
		return
	}

	tokens, err := h.Accounts.Refresh(r.Context(), in)
	if err != nil {
		if errors.Is(err, service.ErrInvalidToken) {
			httpx.WriteError(w, http.StatusUnauthorized, msgExpiredToken)
			return
		}
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, authsdk.TokensResponse{
		Status: authsdk.StatusSuccess,
		Tokens: tokenPair(tokens),
	})
}

// HandleLogout handles POST /logout
//
//	@Summary		Log out
//	@Description	Revokes a refresh token of the caller. The access token remains valid until it expires.
//	@Tags			Tokens
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body		authsdk.RefreshRequest	true	"Refresh token to revoke"
//	@Success		200		{object}	authsdk.MessageResponse	"User logged out successfully"
//	@Failure		400		{object}	authsdk.ErrorResponse	"Missing refresh field or invalid token"
//	@Failure		401		{object}	authsdk.ErrorResponse	"Missing or invalid access token, or account deactivated"
//	@Router			/logout [post].
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	accountID, ok := callerID(w, r)
	if !ok {
		return
	}

	var in validation.RefreshInput
	if !decode(w, r, &in) {
		return
	}

	if err := h.Accounts.Logout(r.Context(), accountID, in); err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, authsdk.MessageResponse{
		Status:  authsdk.StatusSuccess,
		Message: "User logged out successfully",
	})
}
