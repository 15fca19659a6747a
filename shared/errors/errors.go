package errors

import (
	stderrors "errors"
	"net/http"
)

// ErrorWithStatusCode is a failure reported by the backend: a non-2xx
// response. Message is what the backend said in "message" or "error",
// Details carries its "details" field and FieldErrors its per-field
// "errors" mapping (400 validation responses).
type ErrorWithStatusCode struct {
	Message     string
	StatusCode  int
	Details     string
	FieldErrors map[string]string
}

func (e *ErrorWithStatusCode) Error() string {
	return e.Message
}

var (
	// ErrBackendUnavailable wraps transport failures: no response was received.
	ErrBackendUnavailable = stderrors.New("backend unavailable")
	// ErrNotAuthenticated is returned by actions that need a known current
	// user before any request is made.
	ErrNotAuthenticated = stderrors.New("You must be logged in")
)

// AsStatus returns the backend error wrapped in err, if any.
func AsStatus(err error) (*ErrorWithStatusCode, bool) {
	var e *ErrorWithStatusCode
	if stderrors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// StatusCode returns the HTTP status of a backend error, 0 for anything else.
func StatusCode(err error) int {
	if e, ok := AsStatus(err); ok {
		return e.StatusCode
	}
	return 0
}

func IsNotFound(err error) bool {
	return StatusCode(err) == http.StatusNotFound
}

func IsUnauthorized(err error) bool {
	return StatusCode(err) == http.StatusUnauthorized
}

func IsBadRequest(err error) bool {
	return StatusCode(err) == http.StatusBadRequest
}

// IsTransport reports whether err is a transport failure.
func IsTransport(err error) bool {
	return stderrors.Is(err, ErrBackendUnavailable)
}
