package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/aussiebroadwan/kelas/internal/identity/service"
	"github.com/aussiebroadwan/kelas/internal/identity/validation"
	"github.com/aussiebroadwan/kelas/pkg/httpx"
	"github.com/aussiebroadwan/kelas/pkg/slogx"
)

const (
	msgInvalidToken   = "Invalid token"
	msgExpiredToken   = "Invalid or expired token"
	msgUsernameTaken  = "Username already taken"
	msgNotFound       = "Account not found"
	msgMalformedBody  = "Request body is not valid JSON"
	msgCreationFailed = "Account could not be created"
	msgInternal       = "Internal server error"
	msgInactive       = "User is inactive"
)

// decodeErrorSink is an input that collects decode failures for its
// validator, see validation.Decoded.
type decodeErrorSink interface {
	SetDecodeErrors(validation.Errors)
}

// decode reads the JSON body into dst. An empty body leaves dst zeroed so
// the validator reports every required field, and fields of the wrong type
// are handed to the validator through dst. It answers the request and
// returns false when the body cannot be used.
func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	err := httpx.DecodeJSON(w, r, dst)

	var typeErrs httpx.FieldTypeErrors
	switch {
	case err == nil, errors.Is(err, httpx.ErrEmptyBody):
		return true
	case errors.As(err, &typeErrs):
		if sink, ok := dst.(decodeErrorSink); ok {
			sink.SetDecodeErrors(validation.Errors(typeErrs.Fields()))
			return true
		}
		httpx.WriteFieldErrors(w, http.StatusBadRequest, typeErrs.Fields())
		return false
	case errors.Is(err, httpx.ErrNotObject):
		writeNonField(w, validation.MsgNotObject)
		return false
	}

	slogx.FromContext(r.Context()).Debug("rejected request body", slog.Any("error", err))
	httpx.WriteError(w, http.StatusBadRequest, msgMalformedBody)
	return false
}

// writeServiceError maps a service error onto the error envelope. Anything
// unrecognised is logged and answered with a 500.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		httpx.WriteFieldErrors(w, http.StatusBadRequest, verr.Fields)
	case errors.Is(err, service.ErrInvalidCredentials):
		writeNonField(w, validation.MsgLoginFailed)
	case errors.Is(err, service.ErrAccountDisabled):
		writeNonField(w, validation.MsgAccountDisabled)
	case errors.Is(err, service.ErrInvalidToken):
		httpx.WriteError(w, http.StatusBadRequest, msgInvalidToken)
	case errors.Is(err, service.ErrUsernameTaken):
		httpx.WriteError(w, http.StatusBadRequest, msgUsernameTaken)
	case errors.Is(err, service.ErrAccountNotFound):
		httpx.WriteError(w, http.StatusNotFound, msgNotFound)
	case errors.Is(err, service.ErrCreationFailed):
		httpx.WriteError(w, http.StatusInternalServerError, msgCreationFailed)
	default:
		slogx.FromContext(r.Context()).Error("unhandled service error", slog.Any("error", err))
		httpx.WriteError(w, http.StatusInternalServerError, msgInternal)
	}
}

// writeCallerError is writeServiceError for operations on the caller's own
// account. A deactivated caller is no longer authenticated.
func writeCallerError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, service.ErrAccountDisabled) {
		httpx.WriteError(w, http.StatusUnauthorized, msgInactive)
		return
	}
	writeServiceError(w, r, err)
}

func writeNonField(w http.ResponseWriter, msg string) {
	httpx.WriteFieldErrors(w, http.StatusBadRequest, map[string][]string{
		validation.NonFieldErrors: {msg},
	})
}

// callerID returns the authenticated account. AuthnMiddleware guarantees
// it on every route that calls this.
func callerID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id, ok := httpx.AccountID(r.Context())
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "Authentication credentials were not provided.")
	}
	return id, ok
}
