package validate

import (
	"fmt"
	"strings"
)

// Array maps validator across items, namespacing each element error's field
// as "field[index].subfield" and returning one aggregated list.
func Array[T any](items []T, validator func(T) []FieldError, field string) []FieldError {
	var errs []FieldError
	for i, item := range items {
		for _, err := range validator(item) {
			err.Field = fmt.Sprintf("%s[%d].%s", field, i, err.Field)
			errs = append(errs, err)
		}
	}
	return errs
}

// Must adapts a list-returning validator into an error-returning function.
// This is the one place aggregated violations convert into a single error
// value; all messages are joined so nothing is lost.
func Must[T any](validator func(T) []FieldError) func(T) error {
	return func(value T) error {
		errs := validator(value)
		if len(errs) == 0 {
			return nil
		}
		parts := make([]string, 0, len(errs))
		for _, err := range errs {
			parts = append(parts, fmt.Sprintf("%s: %s", err.Field, err.Message))
		}
		return fmt.Errorf("validation failed: %s", strings.Join(parts, ", "))
	}
}
