package expectation

import (
	"fmt"
	"strings"
)

// ColumnNotFoundError is returned when an expectation names a column the
// batch does not have.
type ColumnNotFoundError struct {
	Column    string
	Available []string
}

func (e *ColumnNotFoundError) Error() string {
	return fmt.Sprintf("column %q not found in result (available: %s)", e.Column, strings.Join(e.Available, ", "))
}

// ParamError is returned when a declaration's parameters cannot be decoded
// or fail validation.
type ParamError struct {
	Rule string
	Err  error
}

func (e *ParamError) Error() string {
	return fmt.Sprintf("invalid parameters for %s: %v", e.Rule, e.Err)
}

func (e *ParamError) Unwrap() error {
	return e.Err
}
