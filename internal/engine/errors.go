package engine

import (
	"errors"
	"fmt"
)

// ErrClosed is returned by Load after Close.
var ErrClosed = errors.New("engine: closed")

// EvalError represents a failure to evaluate a document.
//
// EvalError carries a code for programmatic handling and the path of the
// file that failed, which for imports differs from the loaded identity.
type EvalError struct {
	// Code identifies the error category.
	Code EvalErrorCode

	// Message is a human-readable description.
	Message string

	// Path is the file being evaluated when the error occurred.
	Path string

	// Err is the underlying cause, if any.
	Err error
}

// EvalErrorCode categorizes evaluation errors.
type EvalErrorCode string

const (
	// ErrCodeParse indicates text that is not a well-formed project.
	ErrCodeParse EvalErrorCode = "PARSE_FAILED"

	// ErrCodeBadCondition indicates a condition that does not compile.
	ErrCodeBadCondition EvalErrorCode = "BAD_CONDITION"

	// ErrCodeImportCycle indicates an import chain that returns to a file
	// already being evaluated.
	ErrCodeImportCycle EvalErrorCode = "IMPORT_CYCLE"

	// ErrCodeImportNotFound indicates an import whose file cannot be read.
	ErrCodeImportNotFound EvalErrorCode = "IMPORT_NOT_FOUND"
)

// Error implements the error interface.
func (e *EvalError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s (path=%s)", e.Code, e.Message, e.Path)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *EvalError) Unwrap() error { return e.Err }

// CodeOf returns the code of the EvalError in err's chain, or "".
func CodeOf(err error) EvalErrorCode {
	var ee *EvalError
	if errors.As(err, &ee) {
		return ee.Code
	}
	return ""
}

// IsImportCycle reports whether err is an import cycle error.
func IsImportCycle(err error) bool { return CodeOf(err) == ErrCodeImportCycle }

// IsBadCondition reports whether err is a condition error.
func IsBadCondition(err error) bool { return CodeOf(err) == ErrCodeBadCondition }
