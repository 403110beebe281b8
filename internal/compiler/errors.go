package compiler

import (
	"errors"
	"fmt"

	cueerrors "cuelang.org/go/cue/errors"
)

// CompileError reports a condition that does not translate or evaluate.
type CompileError struct {
	// Condition is the text that failed.
	Condition string

	// Pos is the 0-based byte offset of the failure in Condition, or -1.
	Pos int

	Message string
}

func (e *CompileError) Error() string {
	if e.Pos >= 0 {
		return fmt.Sprintf("condition %q: offset %d: %s", e.Condition, e.Pos, e.Message)
	}
	return fmt.Sprintf("condition %q: %s", e.Condition, e.Message)
}

// IsCompileError reports whether err is or wraps a CompileError.
func IsCompileError(err error) bool {
	var ce *CompileError
	return errors.As(err, &ce)
}

// formatCUEError turns a CUE evaluation error into a CompileError carrying
// the first message CUE reports.
func formatCUEError(cond string, err error) error {
	if err == nil {
		return nil
	}
	errs := cueerrors.Errors(err)
	if len(errs) == 0 {
		return &CompileError{Condition: cond, Pos: -1, Message: err.Error()}
	}
	return &CompileError{Condition: cond, Pos: -1, Message: errs[0].Error()}
}
