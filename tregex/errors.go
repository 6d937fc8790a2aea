package tregex

import (
	"errors"
	"fmt"
)

// Construction errors. A *CompileError wraps one of these, so callers can
// test with errors.Is.
var (
	ErrUnknownRelation = errors.New("unknown relation")
	ErrBadRelationArg  = errors.New("malformed relation argument")
	ErrNoHeadFinder    = errors.New("relation requires a head finder")
	ErrNoBasicCategory = errors.New("'@' requires a basic category function")
	ErrVariableGroup   = errors.New("inconsistent variable group")
	ErrUndefinedName   = errors.New("reference to undefined name")
	ErrBadRegex        = errors.New("invalid regex")
	ErrBadCoordination = errors.New("coordination needs at least two children")
)

// ErrStepLimit is reported by Matcher.Err when WithStepLimit stopped a search.
var ErrStepLimit = errors.New("step limit exceeded")

// CompileError is a construction-time failure at a position in the source.
// Syntax errors are reported separately as *query.Error.
type CompileError struct {
	Kind error
	Pos  int
	Msg  string
}

func (e *CompileError) Error() string {
	if e.Msg == "" {
		return fmt.Sprintf("compile error at position %d: %v", e.Pos, e.Kind)
	}
	return fmt.Sprintf("compile error at position %d: %v: %s", e.Pos, e.Kind, e.Msg)
}

func (e *CompileError) Unwrap() error { return e.Kind }

func compileErrorf(kind error, pos int, format string, args ...any) *CompileError {
	return &CompileError{Kind: kind, Pos: pos, Msg: fmt.Sprintf(format, args...)}
}
