package errors

import (
	"errors"
	"fmt"
)

// Process exit codes used by the CLI.
const (
	ExitCodeFailure   = 1
	ExitCodeTimeout   = 124
	ExitCodeCancelled = 130
)

// CommandError represents an error that occurred during command execution, carrying the process exit code.
type CommandError struct {
	ExitCode    int
	CommonError string
	Err         error
}

// Error implements the error interface, returning the message from the common error.
func (e *CommandError) Error() string {
	return e.CommonError
}

// Unwrap returns the underlying error.
func (e *CommandError) Unwrap() error {
	return e.Err
}

// NewCommandError creates a new CommandError wrapping err with the given exit code.
func NewCommandError(err error, code int) *CommandError {
	return &CommandError{
		ExitCode:    code,
		CommonError: err.Error(),
		Err:         err,
	}
}

// NewCommandErrorf formats a message and wraps it into a CommandError.
func NewCommandErrorf(code int, format string, args ...interface{}) *CommandError {
	return NewCommandError(fmt.Errorf(format, args...), code)
}

// ExitCode extracts the exit code carried by err. Nil maps to 0 and errors
// without a CommandError in their chain map to ExitCodeFailure.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var cmdErr *CommandError
	if errors.As(err, &cmdErr) {
		return cmdErr.ExitCode
	}
	return ExitCodeFailure
}
