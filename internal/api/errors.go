package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Error is returned by strict endpoints when the service cannot be reached
// or answers with a non-2xx status.
type Error struct {
	Op         string // endpoint name, e.g. "historical-data"
	Method     string
	URL        string
	StatusCode int    // 0 for transport failures
	Message    string // upstream error message when one was supplied
	Err        error  // underlying transport error
}

func (e *Error) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("api %s: %s %s: %v", e.Op, e.Method, e.URL, e.Err)
	}
	if e.Message != "" {
		return fmt.Sprintf("api %s: status %d: %s", e.Op, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("api %s: status %d", e.Op, e.StatusCode)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// StatusCode extracts the upstream HTTP status from err, or 0.
func StatusCode(err error) int {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

// IsNotFound reports whether err is an upstream 404.
func IsNotFound(err error) bool {
	return StatusCode(err) == http.StatusNotFound
}

// IsUnavailable reports whether err means the service could not be used at all:
// a transport failure or a 5xx answer.
func IsUnavailable(err error) bool {
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.StatusCode == 0 || apiErr.StatusCode >= http.StatusInternalServerError
}

// errorMessage pulls the message out of an {"error": "..."} body,
// falling back to the trimmed raw body.
func errorMessage(body []byte) string {
	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		if payload.Error != "" {
			return payload.Error
		}
		if payload.Message != "" {
			return payload.Message
		}
	}

	msg := strings.TrimSpace(string(body))
	if len(msg) > 200 {
		msg = msg[:200]
	}
	return msg
}
