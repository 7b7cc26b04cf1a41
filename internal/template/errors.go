package template

import "fmt"

// Phase is the stage of template processing that failed.
type Phase int

// Template processing phases.
const (
	PhaseLex Phase = iota
	PhaseParse
	PhaseRender
)

func (p Phase) String() string {
	switch p {
	case PhaseLex:
		return "lex"
	case PhaseParse:
		return "parse"
	case PhaseRender:
		return "render"
	default:
		return fmt.Sprintf("Phase(%d)", int(p))
	}
}

// Error is a failure at a position of a named query template. Render
// failures carry the underlying Starlark error as Cause.
type Error struct {
	Phase Phase
	Pos   Position
	Msg   string
	Cause error
}

func (e *Error) Error() string {
	loc := fmt.Sprintf("%d:%d", e.Pos.Line, e.Pos.Column)
	if e.Pos.File != "" {
		loc = e.Pos.File + ":" + loc
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", loc, e.Msg, e.Cause)
	}
	return loc + ": " + e.Msg
}

func (e *Error) Unwrap() error { return e.Cause }

func lexError(pos Position, msg string) *Error {
	return &Error{Phase: PhaseLex, Pos: pos, Msg: msg}
}

func parseErrorf(pos Position, format string, args ...any) *Error {
	return &Error{Phase: PhaseParse, Pos: pos, Msg: fmt.Sprintf(format, args...)}
}

func renderError(pos Position, msg string, cause error) *Error {
	return &Error{Phase: PhaseRender, Pos: pos, Msg: msg, Cause: cause}
}
