// Package starlark provides the Starlark evaluation context for query templates.
package starlark

import (
	"fmt"

	"go.starlark.net/starlark"
)

// EnvGlobal is the name under which the deployment environment is exposed
// unless the parameters define it themselves.
const EnvGlobal = "env"

// ExecutionContext holds the globals for evaluating template expressions.
// Globals are the query's parameters; they are frozen and safe to share.
type ExecutionContext struct {
	globals starlark.StringDict
}

// NewExecutionContext builds a context from a parameter map and environment.
func NewExecutionContext(params map[string]any, env string) (*ExecutionContext, error) {
	globals := make(starlark.StringDict, len(params)+1)
	for name, v := range params {
		sv, err := GoToStarlark(v)
		if err != nil {
			return nil, fmt.Errorf("parameter %q: %w", name, err)
		}
		globals[name] = sv
	}
	if _, ok := globals[EnvGlobal]; !ok && env != "" {
		globals[EnvGlobal] = starlark.String(env)
	}
	globals.Freeze()
	return &ExecutionContext{globals: globals}, nil
}

// Globals returns the globals dictionary for Starlark execution.
func (ctx *ExecutionContext) Globals() starlark.StringDict {
	return ctx.globals
}

// EvalExpr evaluates a single Starlark expression and returns the result.
// Undefined names are errors.
func (ctx *ExecutionContext) EvalExpr(expr string, filename string, line int) (starlark.Value, error) {
	thread := &starlark.Thread{
		Name:  filename,
		Print: func(_ *starlark.Thread, _ string) {},
	}

	result, err := starlark.Eval(thread, filename, expr, ctx.globals) //nolint:staticcheck // SA1019: will migrate to EvalOptions later
	if err != nil {
		return nil, &EvalError{
			File:    filename,
			Line:    line,
			Expr:    expr,
			Message: err.Error(),
		}
	}
	return result, nil
}

// EvalExprString evaluates a Starlark expression and returns its text form.
// Strings render raw, None renders empty, everything else uses its
// Starlark representation.
func (ctx *ExecutionContext) EvalExprString(expr string, filename string, line int) (string, error) {
	result, err := ctx.EvalExpr(expr, filename, line)
	if err != nil {
		return "", err
	}

	switch v := result.(type) {
	case starlark.String:
		return string(v), nil
	case starlark.NoneType:
		return "", nil
	default:
		return result.String(), nil
	}
}

// EvalError represents an error during Starlark expression evaluation.
type EvalError struct {
	File    string
	Line    int
	Expr    string
	Message string
}

func (e *EvalError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s:%d: error evaluating %q: %s", e.File, e.Line, e.Expr, e.Message)
	}
	return fmt.Sprintf("%s: error evaluating %q: %s", e.File, e.Expr, e.Message)
}
