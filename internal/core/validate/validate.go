// Package validate provides the input checks that run before any request is
// sent to the platform.
package validate

import (
	"errors"
	"fmt"
	"strings"

	"github.com/hay-kot/criterio"
	"github.com/hay-kot/reviewdesk/internal/core/review"
)

// ErrInvalid marks every error produced by this package.
var ErrInvalid = errors.New("invalid input")

// Required validates a string is non-empty after trimming whitespace.
func Required(s string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("is required")
	}
	return nil
}

// CandidateName validates the name a session is created for.
func CandidateName(name string) error {
	if err := criterio.Run("candidate_name", name, Required); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	return nil
}

// CommentInput validates a comment before it is submitted. The file is not
// checked: callers fill in a default when it is blank.
func CommentInput(c review.Comment) error {
	err := criterio.ValidateStruct(
		criterio.Run("text", c.Text, Required),
		criterio.Run("line_range", c.Lines, lineRange),
		criterio.Run("type", c.Type, commentType),
		criterio.Run("severity", c.Severity, severity),
	)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	return nil
}

func lineRange(r review.LineRange) error {
	if !r.IsSet() {
		return fmt.Errorf("is required")
	}
	if !r.Valid() {
		return fmt.Errorf("%d-%d is not a valid range", r.Start, r.End)
	}
	return nil
}

func commentType(t review.Type) error {
	_, err := review.ParseType(string(t))
	return err
}

func severity(s review.Severity) error {
	_, err := review.ParseSeverity(string(s))
	return err
}

// IsInvalid reports whether err came from a validator in this package.
func IsInvalid(err error) bool {
	return errors.Is(err, ErrInvalid)
}
