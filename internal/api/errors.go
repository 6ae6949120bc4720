package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrNoAccessToken is returned before any network call when no credential
	// is available.
	ErrNoAccessToken = errors.New("No access token found")
	// ErrUnauthorized wraps every 401 response.
	ErrUnauthorized = errors.New("unauthorized")
)

// Error is a failure reported by the server, either through a non-2xx status
// or through a 2xx body carrying "success": false.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Status >= 200 && e.Status < 300 {
		return "request was not successful"
	}
	return fmt.Sprintf("request failed with status code %d", e.Status)
}

func (e *Error) Unwrap() error {
	if e.Status == http.StatusUnauthorized {
		return ErrUnauthorized
	}
	return nil
}

// ServerMessage returns the human-readable message the server attached to
// err, or "" when there is none.
func ServerMessage(err error) string {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return ""
}

// IsBusinessFailure reports whether err is a 2xx response whose body said
// "success": false.
func IsBusinessFailure(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Status >= 200 && apiErr.Status < 300
}

type statusBody struct {
	Success *bool  `json:"success"`
	Message string `json:"message"`
}

func parseStatusBody(body []byte) statusBody {
	var sb statusBody
	_ = json.Unmarshal(body, &sb)
	return sb
}

func errorFromResponse(status int, body []byte) *Error {
	return &Error{Status: status, Message: parseStatusBody(body).Message}
}

// checkSuccess enforces the mutation contract: a 2xx body must say
// "success": true.
func checkSuccess(status int, body []byte) error {
	sb := parseStatusBody(body)
	if sb.Success != nil && *sb.Success {
		return nil
	}
	return &Error{Status: status, Message: sb.Message}
}
