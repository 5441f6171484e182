package command

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWrapError(t *testing.T) {
	require.NoError(t, WrapError(nil))

	inner := errors.New("boom")
	err := WrapErrorWithCode(inner, ExitIOFailure)

	var cmdErr *Error
	require.ErrorAs(t, err, &cmdErr)
	require.Equal(t, ExitIOFailure, cmdErr.Code)
	require.ErrorIs(t, err, inner)
	require.Equal(t, "command failed: boom", err.Error())

	require.ErrorAs(t, WrapError(inner), &cmdErr)
	require.Equal(t, ExitFailure, cmdErr.Code)
}

func TestUsageLine(t *testing.T) {
	require.Equal(t, "Usage: tool <a> <b>", UsageLine("tool <a> <b>"))
}
