package authsdk

import (
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"net/http"
	"slices"
	"strings"
)

// NonFieldErrors is the errors key used for failures not tied to a field,
// such as bad login credentials.
const NonFieldErrors = "non_field_errors"

// APIError is any non-success response of the identity service.
type APIError struct {
	StatusCode int
	Message    string
	Fields     map[string][]string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("identity: %d: %s", e.StatusCode, e.Message)
	}
	if len(e.Fields) > 0 {
		parts := make([]string, 0, len(e.Fields))
		for _, field := range slices.Sorted(maps.Keys(e.Fields)) {
			parts = append(parts, field+": "+strings.Join(e.Fields[field], " "))
		}
		return fmt.Sprintf("identity: %d: %s", e.StatusCode, strings.Join(parts, "; "))
	}
	return fmt.Sprintf("identity: %d: %s", e.StatusCode, http.StatusText(e.StatusCode))
}

// Field returns the messages reported for field.
func (e *APIError) Field(field string) []string {
	return e.Fields[field]
}

// AsAPIError unwraps err into an *APIError.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	ok := errors.As(err, &apiErr)
	return apiErr, ok
}

// IsStatus reports whether err is an APIError with the given status code.
func IsStatus(err error, code int) bool {
	apiErr, ok := AsAPIError(err)
	return ok && apiErr.StatusCode == code
}

// parseErrorResponse turns a non-success response body into an *APIError.
func parseErrorResponse(resp *http.Response, body []byte) error {
	apiErr := &APIError{StatusCode: resp.StatusCode}

	var env ErrorResponse
	if err := json.Unmarshal(body, &env); err == nil {
		apiErr.Message = env.Message
		apiErr.Fields = env.Errors
	}
	if apiErr.Message == "" && len(apiErr.Fields) == 0 {
		apiErr.Message = http.StatusText(resp.StatusCode)
	}
	return apiErr
}
