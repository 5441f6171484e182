package command

import (
	"errors"
	"fmt"
)

const (
	ExitOK          = 0
	ExitFailure     = 1
	ExitIOFailure   = 2
	usageLinePrefix = "Usage: "
)

// ErrUsage is returned when the positional arguments do not form a valid invocation.
var ErrUsage = errors.New("invalid usage")

type Error struct {
	Inner error
	Msg   string
	Code  int
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %v", e.Msg, e.Inner)
}

func (e *Error) Unwrap() error {
	return e.Inner
}

func WrapError(err error) error {
	return WrapErrorWithCode(err, ExitFailure)
}

func WrapErrorWithCode(err error, code int) error {
	if err == nil {
		return nil
	}

	return &Error{
		Inner: err,
		Msg:   "command failed",
		Code:  code,
	}
}

// UsageLine renders the one-line usage message printed on ErrUsage.
func UsageLine(use string) string {
	return usageLinePrefix + use
}
