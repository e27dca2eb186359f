package apiclient

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrTransport        = errors.New("transport failure")
	ErrValidation       = errors.New("request rejected")
	ErrUnauthorized     = errors.New("unauthorized")
	ErrForbidden        = errors.New("forbidden")
	ErrNotFound         = errors.New("not found")
	ErrConflict         = errors.New("conflict")
	ErrServer           = errors.New("server error")
	ErrNotAuthenticated = errors.New("not authenticated")
)

// Error is returned for every failed call. It matches its Kind with
// errors.Is and, for transport failures, the underlying cause as well.
type Error struct {
	Kind    error
	Status  int
	Method  string
	Path    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	switch {
	case e.Status != 0 && e.Message != "":
		return fmt.Sprintf("%s %s: %d: %s", e.Method, e.Path, e.Status, e.Message)
	case e.Status != 0:
		return fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.Status, http.StatusText(e.Status))
	case e.Err != nil:
		return fmt.Sprintf("%s %s: %v: %v", e.Method, e.Path, e.Kind, e.Err)
	default:
		return fmt.Sprintf("%s %s: %v", e.Method, e.Path, e.Kind)
	}
}

func (e *Error) Unwrap() []error {
	if e.Err != nil {
		return []error{e.Kind, e.Err}
	}
	return []error{e.Kind}
}

func kindFor(status int) error {
	switch {
	case status == http.StatusUnauthorized:
		return ErrUnauthorized
	case status == http.StatusForbidden:
		return ErrForbidden
	case status == http.StatusNotFound:
		return ErrNotFound
	case status == http.StatusConflict:
		return ErrConflict
	case status >= 400 && status < 500:
		return ErrValidation
	default:
		return ErrServer
	}
}

// Message returns the server's message for err, or err.Error().
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Message != "" {
		return e.Message
	}
	if err == nil {
		return ""
	}
	return err.Error()
}
