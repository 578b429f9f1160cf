package api

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrUnauthorized = errors.New("api: unauthorized")
	ErrNotFound     = errors.New("api: not found")
	ErrServer       = errors.New("api: server error")
	ErrNetwork      = errors.New("api: network failure")
	// ErrTokenExpired matches responses carrying code "token_not_valid",
	// which the session manager treats as a terminal refresh failure.
	ErrTokenExpired = errors.New("api: token invalid or expired")
)

func IsUnauthorized(err error) bool { return errors.Is(err, ErrUnauthorized) }
func IsNotFound(err error) bool     { return errors.Is(err, ErrNotFound) }
func IsServer(err error) bool       { return errors.Is(err, ErrServer) }
func IsNetwork(err error) bool      { return errors.Is(err, ErrNetwork) }
func IsTokenExpired(err error) bool { return errors.Is(err, ErrTokenExpired) }

// Error is a non-2xx response from the service. The body convention is a JSON
// object with one of {message, detail, code}.
type Error struct {
	Status  int
	Code    string
	Message string
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("request failed with status %d", e.Status)
}

func (e *Error) Is(target error) bool {
	switch target {
	case ErrUnauthorized:
		return e.Status == http.StatusUnauthorized
	case ErrNotFound:
		return e.Status == http.StatusNotFound
	case ErrServer:
		return e.Status >= 500
	case ErrTokenExpired:
		return e.Code == "token_not_valid"
	}
	return false
}
