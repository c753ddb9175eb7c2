package errors

import (
	pkgerrors "github.com/pkg/errors"
)

// ExitCodeError carries the process exit code for a failed command.
type ExitCodeError struct {
	code ExitCode
	error
}

func NewError(err error, exitCode ExitCode) *ExitCodeError {
	if err == nil {
		return nil
	}
	return &ExitCodeError{exitCode, err}
}

func (e *ExitCodeError) GetExitCode() ExitCode {
	if e == nil {
		return 0
	}
	return e.code
}

func (e *ExitCodeError) Cause() error {
	return e.error
}

// ExitCodeOf finds the exit code anywhere in err's cause chain, falling back
// to GenericFailureExitCode. A nil err exits 0.
func ExitCodeOf(err error) ExitCode {
	for err != nil {
		if ece, ok := err.(*ExitCodeError); ok {
			return ece.code
		}
		c, ok := err.(interface{ Cause() error })
		if !ok {
			break
		}
		err = c.Cause()
	}
	if err == nil {
		return 0
	}
	return GenericFailureExitCode
}

// Wrap is pkg/errors Wrap followed by NewError.
func Wrap(err error, exitCode ExitCode, msg string) error {
	if err == nil {
		return nil
	}
	return NewError(pkgerrors.Wrap(err, msg), exitCode)
}
