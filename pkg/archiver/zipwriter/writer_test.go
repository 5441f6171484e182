package zipwriter

import (
	"archive/zip"
	"os"
	"path/filepath"
	"testing"

	"github.com/acronis/go-filecompressor/pkg/filesys"
	"github.com/stretchr/testify/require"
)

func TestZipWriter(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "hello.txt")
	require.NoError(t, os.WriteFile(src, []byte("hello, archive"), 0o644))
	info, err := os.Stat(src)
	require.NoError(t, err)

	archive := filepath.Join(dir, "nested", "out.zip")
	wr := New()
	closer, err := wr.Init(archive)
	require.NoError(t, err)

	w, err := wr.CreateEntry("docs/hello.txt", info)
	require.NoError(t, err)
	_, err = w.Write([]byte("hello, archive"))
	require.NoError(t, err)

	w, err = wr.CreateEntry("hello.txt", info)
	require.NoError(t, err)
	_, err = w.Write([]byte("second"))
	require.NoError(t, err)

	require.NoError(t, closer.Close())
	// closing twice is a no-op
	require.NoError(t, wr.Close())

	names, err := filesys.ListZipEntries(archive)
	require.NoError(t, err)
	require.Equal(t, []string{"docs/hello.txt", "hello.txt"}, names)

	content, err := filesys.OpenZipFile(archive, "docs/hello.txt")
	require.NoError(t, err)
	require.Equal(t, "hello, archive", string(content))

	r, err := zip.OpenReader(archive)
	require.NoError(t, err)
	defer r.Close()
	for _, f := range r.File {
		require.Equal(t, zip.Deflate, f.Method)
		require.Equal(t, info.ModTime().Unix(), f.Modified.Unix())
	}
}

func TestZipWriter_NotInitialized(t *testing.T) {
	_, err := New().CreateEntry("a.txt", nil)
	require.Error(t, err)
	require.NoError(t, New().Close())
}
