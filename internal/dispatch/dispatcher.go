// Package dispatch resolves declared expectations against the expectation
// library and runs them in order, applying the severity policy to each
// outcome.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/leapstack-labs/leapdq/pkg/core"
	"github.com/leapstack-labs/leapdq/pkg/expectation"
)

// Step is one planned expectation: the declaration and its bound routine.
type Step struct {
	Source      string
	Index       int
	Expectation core.Expectation
	Bound       *expectation.Bound
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithPolicy replaces the default SeverityPolicy.
func WithPolicy(p Policy) Option {
	return func(d *Dispatcher) {
		if p != nil {
			d.policy = p
		}
	}
}

// WithReporter sets the reporter receiving every result.
func WithReporter(r Reporter) Option {
	return func(d *Dispatcher) {
		if r != nil {
			d.reporter = r
		}
	}
}

// WithLogger sets the logger for dispatcher diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Dispatcher) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// Dispatcher plans and executes expectations.
type Dispatcher struct {
	library  *expectation.Library
	policy   Policy
	reporter Reporter
	logger   *slog.Logger
}

// New creates a dispatcher over library. A nil library uses the default
// catalog.
func New(library *expectation.Library, opts ...Option) *Dispatcher {
	if library == nil {
		library = expectation.Default()
	}
	d := &Dispatcher{
		library: library,
		policy:  SeverityPolicy{},
		logger:  slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.reporter == nil {
		d.reporter = NewLogReporter(d.logger)
	}
	return d
}

// Plan resolves every declaration of source before anything runs.
func (d *Dispatcher) Plan(source string, decls []core.Expectation) ([]Step, error) {
	steps := make([]Step, 0, len(decls))
	for i, decl := range decls {
		bound, ok, err := d.library.Bind(decl.Rule, decl.Params)
		if !ok {
			return nil, &UnknownRuleError{
				Source:    source,
				Index:     i,
				Rule:      decl.Rule,
				Available: d.library.Names(),
			}
		}
		if err != nil {
			return nil, &ParamError{Source: source, Index: i, Rule: decl.Rule, Err: err}
		}
		steps = append(steps, Step{Source: source, Index: i, Expectation: decl, Bound: bound})
	}
	return steps, nil
}

// Run executes steps against batch in order. It stops at the first step the
// policy aborts on and returns a *ValidationFailure for it.
func (d *Dispatcher) Run(ctx context.Context, batch *expectation.Batch, steps []Step) error {
	for _, step := range steps {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("validation interrupted: %w", err)
		}

		start := time.Now()
		outcome, err := step.Bound.Run(batch)
		if err != nil {
			return &ExecutionError{Source: step.Source, Index: step.Index, Rule: step.Expectation.Rule, Err: err}
		}

		severity := step.Expectation.Severity
		result := Result{
			Source:   step.Source,
			Index:    step.Index,
			Rule:     step.Expectation.Rule,
			Severity: severity,
			Action:   d.policy.Decide(outcome, severity),
			Outcome:  outcome,
			Duration: time.Since(start),
		}
		d.reporter.Report(ctx, result)

		if result.Action == ActionAbort {
			return &ValidationFailure{
				Source:   step.Source,
				Rule:     result.Rule,
				Outcome:  outcome,
				Severity: severity,
			}
		}
	}
	return nil
}

// IsFatalDeclaration reports whether err is a planning error, meaning the
// rule-set itself is wrong rather than the data.
func IsFatalDeclaration(err error) bool {
	var unknown *UnknownRuleError
	var param *ParamError
	return errors.As(err, &unknown) || errors.As(err, &param)
}
