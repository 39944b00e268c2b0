package platform

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/hay-kot/reviewdesk/internal/core/review"
)

// ErrNotFound is returned for a 404 from any endpoint. It is the same
// sentinel as review.ErrNotFound so callers can check either.
var ErrNotFound = review.ErrNotFound

// StatusError is a non-2xx response from the platform.
type StatusError struct {
	Method string
	Path   string
	Code   int
	Detail string
}

func (e *StatusError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s %s: HTTP %d: %s", e.Method, e.Path, e.Code, e.Detail)
	}
	return fmt.Sprintf("%s %s: HTTP %d", e.Method, e.Path, e.Code)
}

// Is makes errors.Is(err, ErrNotFound) true for 404 responses.
func (e *StatusError) Is(target error) bool {
	return target == ErrNotFound && e.Code == http.StatusNotFound
}

// MissingFieldError is returned when a 2xx response lacks a field the client
// depends on. Such responses are never treated as success.
type MissingFieldError struct {
	Op    string
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("%s: response is missing %q", e.Op, e.Field)
}

// IsNotFound reports whether err is a not-found outcome.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsMissingField reports whether err is a MissingFieldError for field.
func IsMissingField(err error, field string) bool {
	var mfe *MissingFieldError
	return errors.As(err, &mfe) && mfe.Field == field
}
