package validate

import (
	"encoding/json"
	"fmt"
	"math"
	"net/url"
	"regexp"
	"strings"
	"time"
)

// FieldError describes one violated rule on one field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Value   any    `json:"value,omitempty"`
}

func (e FieldError) Error() string { return e.Message }

func fieldError(field, format string, value any, args ...any) FieldError {
	return FieldError{
		Field:   field,
		Message: fmt.Sprintf(format, args...),
		Value:   value,
	}
}

var (
	uuidPattern     = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[1-5][0-9a-fA-F]{3}-[89abAB][0-9a-fA-F]{3}-[0-9a-fA-F]{12}$`)
	hexColorPattern = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)
	datePattern     = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
)

// NonEmptyString reports violations unless v is a string with non-blank
// content.
func NonEmptyString(v any, field string) []FieldError {
	s, ok := v.(string)
	if !ok {
		return []FieldError{fieldError(field, "%s must be a string", v, field)}
	}
	if strings.TrimSpace(s) == "" {
		return []FieldError{fieldError(field, "%s cannot be empty", v, field)}
	}
	return nil
}

// UUID reports violations unless v is a version 1-5 UUID string.
func UUID(v any, field string) []FieldError {
	s, ok := v.(string)
	if !ok {
		return []FieldError{fieldError(field, "%s must be a string", v, field)}
	}
	if !uuidPattern.MatchString(s) {
		return []FieldError{fieldError(field, "%s must be a valid UUID", v, field)}
	}
	return nil
}

// Timestamp reports violations unless v is an RFC 3339 timestamp string.
func Timestamp(v any, field string) []FieldError {
	s, ok := v.(string)
	if !ok {
		return []FieldError{fieldError(field, "%s must be a string", v, field)}
	}
	if _, err := time.Parse(time.RFC3339, s); err != nil {
		return []FieldError{fieldError(field, "%s must be a valid ISO timestamp", v, field)}
	}
	return nil
}

// DateFormat reports violations unless v is a YYYY-MM-DD date string.
func DateFormat(v any, field string) []FieldError {
	s, ok := v.(string)
	if !ok || !datePattern.MatchString(s) {
		return []FieldError{fieldError(field, "%s must be in YYYY-MM-DD format", v, field)}
	}
	return nil
}

// Range bounds a numeric check. Nil ends are unbounded; both bounds are
// inclusive.
type Range struct {
	Min *float64
	Max *float64
}

// AtLeast returns a range bounded only from below.
func AtLeast(min float64) Range {
	return Range{Min: &min}
}

// Between returns a range inclusive at both ends.
func Between(min, max float64) Range {
	return Range{Min: &min, Max: &max}
}

// NumberInRange reports violations unless v is a number inside r. A value
// failing the number check short-circuits without reporting range errors.
func NumberInRange(v any, field string, r Range) []FieldError {
	f, ok := toFloat(v)
	if !ok || math.IsNaN(f) {
		return []FieldError{fieldError(field, "%s must be a number", v, field)}
	}

	var errs []FieldError
	if r.Min != nil && f < *r.Min {
		errs = append(errs, fieldError(field, "%s must be at least %v", v, field, *r.Min))
	}
	if r.Max != nil && f > *r.Max {
		errs = append(errs, fieldError(field, "%s must be at most %v", v, field, *r.Max))
	}
	return errs
}

// HexColor reports violations unless v is a #RRGGBB color string. Nil is
// accepted; colors are optional everywhere they appear.
func HexColor(v any, field string) []FieldError {
	if v == nil {
		return nil
	}
	s, ok := v.(string)
	if !ok {
		return []FieldError{fieldError(field, "%s must be a string", v, field)}
	}
	if !hexColorPattern.MatchString(s) {
		return []FieldError{fieldError(field, "%s must be a valid hex color (e.g., #FF5733)", v, field)}
	}
	return nil
}

// URL reports violations unless v is an absolute URL string. Nil is
// accepted.
func URL(v any, field string) []FieldError {
	if v == nil {
		return nil
	}
	s, ok := v.(string)
	if !ok {
		return []FieldError{fieldError(field, "%s must be a string", v, field)}
	}
	parsed, err := url.Parse(s)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return []FieldError{fieldError(field, "%s must be a valid URL", v, field)}
	}
	return nil
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}
