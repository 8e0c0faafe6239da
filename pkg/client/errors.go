package client

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// HTTPError represents a non-2xx HTTP response from the API.
type HTTPError struct {
	StatusCode int
	Message    string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
}

// IsStatus returns true if err (or any wrapped error) is an HTTPError with the given status code.
func IsStatus(err error, code int) bool {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode == code
	}
	return false
}

// ValidationError carries field-keyed messages from a rejected form
// submission (registration, login, profile update). The keys match the
// submitted field names so callers can render errors inline.
type ValidationError struct {
	StatusCode int
	Fields     map[string][]string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return fmt.Sprintf("HTTP %d: validation failed", e.StatusCode)
	}
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, name+": "+strings.Join(e.Fields[name], "; "))
	}
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, strings.Join(parts, ", "))
}

// FieldErrors extracts the field map if err is a ValidationError.
func FieldErrors(err error) (map[string][]string, bool) {
	var vErr *ValidationError
	if errors.As(err, &vErr) {
		return vErr.Fields, true
	}
	return nil, false
}

// ErrNoRefreshToken is returned when a token refresh is requested but no
// refresh token is stored. Callers treat it as "logged out", not a failure.
var ErrNoRefreshToken = errors.New("client: no refresh token stored")
