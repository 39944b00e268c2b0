package review

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// UnknownValueError is returned when the wire carries an enum value the
// client does not know.
type UnknownValueError struct {
	Kind  string
	Value string
}

func (e *UnknownValueError) Error() string {
	return fmt.Sprintf("unknown %s %q", e.Kind, e.Value)
}

// Type classifies a comment.
type Type string

const (
	TypeBug         Type = "bug"
	TypeSecurity    Type = "security"
	TypeStyle       Type = "style"
	TypePerformance Type = "performance"
)

// Types lists every comment type in display order.
var Types = []Type{TypeBug, TypeSecurity, TypeStyle, TypePerformance}

func ParseType(s string) (Type, error) {
	for _, t := range Types {
		if string(t) == s {
			return t, nil
		}
	}
	return "", &UnknownValueError{Kind: "comment type", Value: s}
}

// Severity ranks a comment.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
)

// Severities lists every severity from most to least severe.
var Severities = []Severity{SeverityCritical, SeverityHigh, SeverityMedium, SeverityLow}

func ParseSeverity(s string) (Severity, error) {
	for _, sv := range Severities {
		if string(sv) == s {
			return sv, nil
		}
	}
	return "", &UnknownValueError{Kind: "severity", Value: s}
}

// Next cycles through the values, wrapping at the end.
func (t Type) Next() Type { return cycle(Types, t) }

// Next cycles through the values, wrapping at the end.
func (s Severity) Next() Severity { return cycle(Severities, s) }

func cycle[T comparable](all []T, cur T) T {
	for i, v := range all {
		if v == cur {
			return all[(i+1)%len(all)]
		}
	}
	return all[0]
}

// LineRange is an inclusive, 1-based span of lines. The zero value is unset.
type LineRange struct {
	Start int
	End   int
}

var errBadRange = errors.New(`line range must look like "12" or "12-18"`)

// ParseLineRange accepts "n" or "s-e". A single line collapses to "n-n".
func ParseLineRange(s string) (LineRange, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return LineRange{}, errBadRange
	}

	startStr, endStr, found := strings.Cut(s, "-")
	if !found {
		endStr = startStr
	}

	start, err := strconv.Atoi(strings.TrimSpace(startStr))
	if err != nil {
		return LineRange{}, errBadRange
	}
	end, err := strconv.Atoi(strings.TrimSpace(endStr))
	if err != nil {
		return LineRange{}, errBadRange
	}

	r := LineRange{Start: start, End: end}
	if !r.Valid() {
		return LineRange{}, fmt.Errorf("invalid line range %q: start must be >= 1 and end >= start", s)
	}
	return r, nil
}

// Span builds a range from two cursor positions in either order.
func Span(a, b int) LineRange {
	return LineRange{Start: min(a, b), End: max(a, b)}
}

func (r LineRange) IsSet() bool { return r != LineRange{} }

func (r LineRange) Valid() bool { return r.Start >= 1 && r.End >= r.Start }

func (r LineRange) String() string {
	if !r.IsSet() {
		return ""
	}
	return strconv.Itoa(r.Start) + "-" + strconv.Itoa(r.End)
}

// Contains reports whether line falls inside the range.
func (r LineRange) Contains(line int) bool {
	return r.IsSet() && line >= r.Start && line <= r.End
}

// Comment is one review remark. Comments are immutable once created.
type Comment struct {
	File     string    `json:"file"`
	Lines    LineRange `json:"line_range"`
	Type     Type      `json:"type"`
	Severity Severity  `json:"severity"`
	Text     string    `json:"text"`
}

// MarshalText lets LineRange travel as its "s-e" string form.
func (r LineRange) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

func (r *LineRange) UnmarshalText(b []byte) error {
	if len(b) == 0 {
		*r = LineRange{}
		return nil
	}
	parsed, err := ParseLineRange(string(b))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}
