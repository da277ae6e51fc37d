package client

import (
	"errors"
	"net/http"

	"github.com/dmitrijs2005/mithaimart/internal/common"
)

// APIError is a non-2xx answer from the server. Message is the server's
// text, passed through verbatim; Kind is the matching common sentinel.
type APIError struct {
	Status  int
	Code    string
	Message string
	Kind    error
}

func (e *APIError) Error() string { return e.Message }

func (e *APIError) Unwrap() error { return e.Kind }

// NetworkError wraps a transport failure or timeout. Its message is the
// generic common.ErrNetwork text; the cause stays reachable via errors.Is.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string { return common.ErrNetwork.Error() }

func (e *NetworkError) Unwrap() []error { return []error{common.ErrNetwork, e.Err} }

// kindFor picks the sentinel for an error response, preferring the
// machine-readable code over the bare status.
func kindFor(status int, code string) error {
	switch code {
	case "invalid_credentials":
		return common.ErrInvalidCredentials
	case "unauthorized":
		return common.ErrUnauthorized
	case "forbidden":
		return common.ErrForbidden
	case "conflict":
		return common.ErrDuplicateAccount
	case "validation_error", "bad_request":
		return common.ErrInvalidInput
	case "too_many_attempts":
		return common.ErrTooManyAttempts
	}

	switch status {
	case http.StatusBadRequest:
		return common.ErrInvalidInput
	case http.StatusUnauthorized:
		return common.ErrUnauthorized
	case http.StatusForbidden:
		return common.ErrForbidden
	case http.StatusNotFound:
		return common.ErrNotFound
	case http.StatusConflict:
		return common.ErrDuplicateAccount
	case http.StatusTooManyRequests:
		return common.ErrTooManyAttempts
	}
	return common.ErrInternal
}

// IsNetwork reports whether err came from the transport rather than from
// a server answer.
func IsNetwork(err error) bool {
	return errors.Is(err, common.ErrNetwork)
}
