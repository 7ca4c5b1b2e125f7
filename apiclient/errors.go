package apiclient

import (
	"fmt"

	crmerrors "github.com/jrsteele09/go-crm/internal/errors"
)

// APIError is returned for any non-2xx response. Message and ErrorText carry
// the "message" and "error" fields of a JSON body when present.
type APIError struct {
	StatusCode int
	Message    string
	ErrorText  string
	Payload    map[string]any
}

func (e *APIError) Error() string {
	switch {
	case e.Message != "":
		return fmt.Sprintf("api status %d: %s", e.StatusCode, e.Message)
	case e.ErrorText != "":
		return fmt.Sprintf("api status %d: %s", e.StatusCode, e.ErrorText)
	default:
		return fmt.Sprintf("api status %d", e.StatusCode)
	}
}

// Structured reports whether the body carried a message the user can be shown.
func (e *APIError) Structured() bool {
	return e.Message != "" || e.ErrorText != ""
}

func (e *APIError) Is(target error) bool {
	return target == crmerrors.ErrServerRejected && e.Structured()
}
