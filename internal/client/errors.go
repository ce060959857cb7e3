// Package client talks to the remote missions API.  Every failure is
// translated into one of the error kinds below, each carrying a message fit
// for display: the server-supplied message when there is one, otherwise a
// fixed default for the operation.
package client

import (
	"errors"
	"fmt"
)

// ErrUnauthenticated is returned before any request is sent when no session
// token is available locally.
var ErrUnauthenticated = errors.New("no token found")

// AuthenticationError means the server rejected the credentials or the
// session token.
type AuthenticationError struct {
	Status  int
	Message string
}

func (e *AuthenticationError) Error() string { return e.Message }

// RegistrationError means the account could not be created (duplicate
// email, rejected fields).
type RegistrationError struct {
	Status  int
	Message string
}

func (e *RegistrationError) Error() string { return e.Message }

// ValidationError reports malformed input, either caught locally (Status 0)
// or returned by the server as a 400-class response.
type ValidationError struct {
	Status  int
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// NotFoundError means the mission does not exist or belongs to someone else.
type NotFoundError struct {
	ID      uint64
	Message string
}

func (e *NotFoundError) Error() string { return e.Message }

// APIError covers any other non-2xx response.  Status is 0 for transport
// failures, in which case Err holds the cause.
type APIError struct {
	Status  int
	Message string
	Err     error
}

func (e *APIError) Error() string {
	if e.Status == 0 {
		return e.Message
	}
	return fmt.Sprintf("%s (HTTP %d)", e.Message, e.Status)
}

func (e *APIError) Unwrap() error { return e.Err }

// Message returns the text to show the user for err.
func Message(err error) string {
	if err == nil {
		return ""
	}
	if errors.Is(err, ErrUnauthenticated) {
		return "Session expirée, veuillez vous reconnecter"
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return err.Error()
}

// IsAuthFailure reports whether err means the user has to log in again.
func IsAuthFailure(err error) bool {
	if errors.Is(err, ErrUnauthenticated) {
		return true
	}
	var authErr *AuthenticationError
	return errors.As(err, &authErr)
}
