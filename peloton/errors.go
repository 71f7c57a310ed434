package peloton

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// maxErrorMessageLen caps how much of a response body is copied into an error message.
const maxErrorMessageLen = 1000

var (
	// ErrMissingID is returned when an accessor that requires an ID is called without one.
	ErrMissingID = errors.New("peloton: missing resource id")

	// ErrMalformedPage is wrapped by the APIError returned for a page response that lacks
	// the page count or the items key.
	ErrMalformedPage = errors.New("peloton: malformed page response")
)

// APIError represents an error returned by the Peloton API, or a response the client
// could not interpret.
type APIError struct {
	StatusCode int
	Message    string
	URL        string

	// Payload holds the raw response for malformed page responses.
	Payload json.RawMessage

	Err error // Underlying error, if any
}

// Error implements the error interface.
func (e *APIError) Error() string {
	msg := fmt.Sprintf("peloton api error: %d - %s at %s", e.StatusCode, e.Message, e.URL)
	if e.Err != nil {
		msg += fmt.Sprintf(" (%v)", e.Err)
	}
	return msg
}

// Unwrap implements errors.Unwrap so the underlying error can be extracted.
func (e *APIError) Unwrap() error {
	return e.Err
}

// IsNotFound reports whether the API answered 404.
func (e *APIError) IsNotFound() bool {
	return e.StatusCode == http.StatusNotFound
}

// IsUnauthorized reports whether the API rejected the session (401 or 403).
func (e *APIError) IsUnauthorized() bool {
	return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
}

// AuthError represents a failed login: rejected credentials, an unreachable login
// endpoint, or a login response missing the session cookie or identity fields.
type AuthError struct {
	StatusCode int
	Message    string
	Err        error
}

// Error implements the error interface.
func (e *AuthError) Error() string {
	msg := "peloton auth error"
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(" (%d)", e.StatusCode)
	}
	msg += ": " + e.Message
	if e.Err != nil {
		msg += fmt.Sprintf(" - %v", e.Err)
	}
	return msg
}

// Unwrap implements errors.Unwrap.
func (e *AuthError) Unwrap() error {
	return e.Err
}

// mapHTTPError converts an unsuccessful HTTP response to an APIError.
func mapHTTPError(resp *http.Response, body []byte) error {
	apiErr := &APIError{
		StatusCode: resp.StatusCode,
		Message:    truncate(string(body)),
	}
	if resp.Request != nil && resp.Request.URL != nil {
		apiErr.URL = resp.Request.URL.String()
	}
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(resp.StatusCode)
	}
	return apiErr
}

func truncate(s string) string {
	if len(s) <= maxErrorMessageLen {
		return s
	}
	return s[:maxErrorMessageLen] + "..."
}
