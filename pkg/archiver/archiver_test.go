package archiver

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFormat_Set(t *testing.T) {
	var f Format
	require.NoError(t, f.Set("tgz"))
	require.Equal(t, FormatTgz, f)
	require.Equal(t, "tgz", f.String())

	require.NoError(t, f.Set("zip"))
	require.Equal(t, FormatZip, f)

	err := f.Set("rar")
	require.EqualError(t, err, "must be one of zip,tgz")
	require.Equal(t, FormatZip, f)
	require.Equal(t, "format", f.Type())
}

func TestNew(t *testing.T) {
	for _, format := range []Format{"", FormatZip, FormatTgz} {
		w, err := New(format)
		require.NoError(t, err)
		require.NotNil(t, w)
	}

	_, err := New("rar")
	require.Error(t, err)
}
