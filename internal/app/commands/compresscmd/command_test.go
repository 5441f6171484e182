package compresscmd

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/acronis/go-filecompressor/internal/app/command"
	"github.com/acronis/go-filecompressor/pkg/compressor"
	"github.com/acronis/go-filecompressor/pkg/filesys"
	"github.com/acronis/go-filecompressor/pkg/testsupp"
	"github.com/stretchr/testify/require"
)

func newTestCommand(t *testing.T, workDir string, args ...string) (*bytes.Buffer, error) {
	t.Helper()

	cmd := New(context.Background())
	command.AddWorkDirFlag(cmd)
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true

	stdout := &bytes.Buffer{}
	cmd.SetOut(stdout)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(append([]string{"--working-dir", workDir}, args...))
	return stdout, cmd.Execute()
}

func TestCompressCommand(t *testing.T) {
	testsupp.InitLog(t)

	for _, tc := range []struct {
		name       string
		args       []string
		wantStdout string
		wantErr    error
		wantCode   int
	}{
		{
			name:       "single file",
			args:       []string{"out.zip", "a.txt"},
			wantStdout: "Progress: 1/1\nCompression complete!\n",
		},
		{
			name:       "missing input",
			args:       []string{"out.zip", "nope.txt", "a.txt"},
			wantStdout: "File not found: nope.txt\nProgress: 1/2\nCompression complete!\n",
		},
		{
			name:       "tgz format",
			args:       []string{"--format", "tgz", "out.tgz", "a.txt"},
			wantStdout: "Progress: 1/1\nCompression complete!\n",
		},
		{
			name:    "no inputs",
			args:    []string{"out.zip"},
			wantErr: command.ErrUsage,
		},
		{
			name:     "output not writable",
			args:     []string{"blocker/out.zip", "a.txt"},
			wantCode: command.ExitIOFailure,
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			dir := t.TempDir()
			testsupp.WriteFile(t, dir, "a.txt", "alpha")
			testsupp.WriteFile(t, dir, "blocker", "not a directory")

			stdout, err := newTestCommand(t, dir, tc.args...)
			switch {
			case tc.wantErr != nil:
				require.ErrorIs(t, err, tc.wantErr)
				require.Empty(t, stdout.String())
			case tc.wantCode != 0:
				var cmdErr *command.Error
				require.ErrorAs(t, err, &cmdErr)
				require.Equal(t, tc.wantCode, cmdErr.Code)
				var ioErr *compressor.IOFailure
				require.True(t, errors.As(err, &ioErr))
				require.Equal(t, "create archive", ioErr.Op)
				require.Empty(t, stdout.String())
			default:
				require.NoError(t, err)
				require.Equal(t, tc.wantStdout, stdout.String())
			}
		})
	}
}

func TestCompressCommandArchiveContents(t *testing.T) {
	testsupp.InitLog(t)

	dir := t.TempDir()
	testsupp.WriteFile(t, dir, "a.txt", "alpha")
	testsupp.WriteFile(t, dir, filepath.Join("D", "S", "b.txt"), "bravo")

	_, err := newTestCommand(t, dir, "out.zip", "a.txt", "D")
	require.NoError(t, err)

	names, err := filesys.ListZipEntries(filepath.Join(dir, "out.zip"))
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"a.txt", "D/S/b.txt"}, names)
}

func TestCompressCommandRejectsUnknownFormat(t *testing.T) {
	dir := t.TempDir()

	_, err := newTestCommand(t, dir, "--format", "rar", "out.zip", "a.txt")
	require.Error(t, err)
	require.NotErrorIs(t, err, command.ErrUsage)

	_, statErr := os.Stat(filepath.Join(dir, "out.zip"))
	require.ErrorIs(t, statErr, os.ErrNotExist)
}

func TestExecuteDefaultsToZip(t *testing.T) {
	testsupp.InitLog(t)

	dir := t.TempDir()
	testsupp.WriteFile(t, dir, "a.txt", "alpha")

	stdout := &bytes.Buffer{}
	err := execute(context.Background(), stdout, dir, "out", []string{"a.txt"}, CompressOptions{})
	require.NoError(t, err)

	content, err := filesys.OpenZipFile(filepath.Join(dir, "out"), "a.txt")
	require.NoError(t, err)
	require.Equal(t, "alpha", string(content))
}
