package cli

import (
	"errors"
	"fmt"
)

// Exit codes for CLI commands.
const (
	ExitOK      = 0 // command succeeded
	ExitFailure = 1 // the operation failed (API error, missing token, server rejection)
	ExitUsage   = 2 // invalid flags, arguments or configuration
)

// ExitError carries the exit code a command should terminate with. An
// ExitError without a message is silent: the failure was already reported
// through the output sinks.
type ExitError struct {
	Code    int
	Message string
	Err     error
}

func (e *ExitError) Error() string {
	switch {
	case e.Message != "" && e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	case e.Err != nil:
		return e.Err.Error()
	default:
		return e.Message
	}
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

func (e *ExitError) silent() bool {
	return e.Message == "" && e.Err == nil
}

func usageError(err error) *ExitError {
	return &ExitError{Code: ExitUsage, Err: err}
}

func usageErrorf(format string, args ...any) *ExitError {
	return &ExitError{Code: ExitUsage, Message: fmt.Sprintf(format, args...)}
}

func failure(err error) *ExitError {
	return &ExitError{Code: ExitFailure, Err: err}
}

// reported is returned after the failure was already written as a toast.
var reported = &ExitError{Code: ExitFailure}

// exitCode maps err to a process exit code. Errors that are not an
// ExitError count as failures.
func exitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}
