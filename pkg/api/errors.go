package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Error is a non-2xx response from the backend.
type Error struct {
	StatusCode int
	Method     string
	Path       string
	Message    string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.StatusCode, http.StatusText(e.StatusCode))
	}
	return fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.StatusCode, e.Message)
}

// NetworkError means the request never produced a response.
type NetworkError struct {
	Method string
	Path   string
	Err    error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Method, e.Path, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

func newError(method, path string, status int, raw []byte) *Error {
	e := &Error{StatusCode: status, Method: method, Path: path}
	var body struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if json.Unmarshal(raw, &body) == nil {
		e.Message = body.Message
		if e.Message == "" {
			e.Message = body.Error
		}
	}
	if e.Message == "" {
		e.Message = strings.TrimSpace(string(raw))
		if len(e.Message) > 200 {
			e.Message = e.Message[:200]
		}
	}
	return e
}

func StatusCode(err error) int {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

// IsUnauthorized reports a 401 or 403, which forces a logout.
func IsUnauthorized(err error) bool {
	code := StatusCode(err)
	return code == http.StatusUnauthorized || code == http.StatusForbidden
}

func IsNotFound(err error) bool {
	return StatusCode(err) == http.StatusNotFound
}

func IsNetwork(err error) bool {
	var netErr *NetworkError
	return errors.As(err, &netErr)
}

type Outcome int

const (
	OutcomeOK Outcome = iota
	// OutcomeForceLogout: the session is no longer valid.
	OutcomeForceLogout
	// OutcomeNotFound: on login this means the account does not exist.
	OutcomeNotFound
	// OutcomeOffline: keep the session, show cached data.
	OutcomeOffline
	// OutcomeToast: show a transient notification.
	OutcomeToast
	// OutcomeCancelled: the caller went away, nothing to report.
	OutcomeCancelled
)

func (o Outcome) String() string {
	switch o {
	case OutcomeOK:
		return "ok"
	case OutcomeForceLogout:
		return "force_logout"
	case OutcomeNotFound:
		return "not_found"
	case OutcomeOffline:
		return "offline"
	case OutcomeToast:
		return "toast"
	case OutcomeCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Classify maps an error from any call site onto the action the UI takes.
func Classify(err error) Outcome {
	switch {
	case err == nil:
		return OutcomeOK
	case errors.Is(err, context.Canceled):
		return OutcomeCancelled
	case IsUnauthorized(err):
		return OutcomeForceLogout
	case IsNotFound(err):
		return OutcomeNotFound
	case IsNetwork(err):
		return OutcomeOffline
	default:
		return OutcomeToast
	}
}

// Message renders an error for a toast.
func Message(err error) string {
	var apiErr *Error
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	if IsNetwork(err) {
		return "Network unavailable"
	}
	return err.Error()
}
