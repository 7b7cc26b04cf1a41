package dispatch

import "github.com/leapstack-labs/leapdq/pkg/core"

// Action is what the run does with an outcome.
type Action int

// Actions, in increasing order of gravity.
const (
	ActionPass   Action = iota // expectation met
	ActionInform               // failed, logged at info, run continues
	ActionWarn                 // failed, logged as a warning, run continues
	ActionAbort                // failed, run stops
)

func (a Action) String() string {
	switch a {
	case ActionPass:
		return "pass"
	case ActionInform:
		return "inform"
	case ActionWarn:
		return "warn"
	case ActionAbort:
		return "abort"
	default:
		return "unknown"
	}
}

// Policy maps an outcome and its declared severity to an action.
type Policy interface {
	Decide(outcome core.ValidationOutcome, severity core.Severity) Action
}

// PolicyFunc adapts a function to Policy.
type PolicyFunc func(outcome core.ValidationOutcome, severity core.Severity) Action

// Decide implements Policy.
func (f PolicyFunc) Decide(outcome core.ValidationOutcome, severity core.Severity) Action {
	return f(outcome, severity)
}

// SeverityPolicy aborts on HIGH failures, warns on MEDIUM and informs on LOW.
type SeverityPolicy struct{}

// Decide implements Policy.
func (SeverityPolicy) Decide(outcome core.ValidationOutcome, severity core.Severity) Action {
	if outcome.Success {
		return ActionPass
	}
	switch severity {
	case core.SeverityMedium:
		return ActionWarn
	case core.SeverityLow:
		return ActionInform
	default:
		return ActionAbort
	}
}

// MarshalText implements encoding.TextMarshaler.
func (a Action) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}
