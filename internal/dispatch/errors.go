package dispatch

import (
	"fmt"
	"strings"

	"github.com/leapstack-labs/leapdq/pkg/core"
)

// UnknownRuleError is returned when a declaration names a rule the library
// does not register. It is fatal regardless of the declared severity.
type UnknownRuleError struct {
	Source    string
	Index     int
	Rule      string
	Available []string
}

func (e *UnknownRuleError) Error() string {
	return fmt.Sprintf("%s: expectation %d: unknown rule %q (available: %s)",
		e.Source, e.Index, e.Rule, strings.Join(e.Available, ", "))
}

// ParamError is returned when a declaration's parameters are rejected.
type ParamError struct {
	Source string
	Index  int
	Rule   string
	Err    error
}

func (e *ParamError) Error() string {
	return fmt.Sprintf("%s: expectation %d: %v", e.Source, e.Index, e.Err)
}

func (e *ParamError) Unwrap() error {
	return e.Err
}

// ExecutionError is returned when an expectation cannot be evaluated, for
// example because its column is missing from the result.
type ExecutionError struct {
	Source string
	Index  int
	Rule   string
	Err    error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("%s: expectation %d (%s): %v", e.Source, e.Index, e.Rule, e.Err)
}

func (e *ExecutionError) Unwrap() error {
	return e.Err
}

// ValidationFailure is returned when a failed expectation aborts the run.
type ValidationFailure struct {
	Source   string
	Rule     string
	Outcome  core.ValidationOutcome
	Severity core.Severity
}

func (e *ValidationFailure) Error() string {
	return fmt.Sprintf("validation failed: %s: rule %s on column %q (severity %s): %.2f%% unexpected of %d elements",
		e.Source, e.Rule, e.Outcome.Column, e.Severity, e.Outcome.UnexpectedPercent, e.Outcome.ElementCount)
}
