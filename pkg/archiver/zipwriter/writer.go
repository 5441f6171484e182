package zipwriter

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/flate"
)

type zipWriter struct {
	zw      *zip.Writer
	archive *os.File
}

func New() *zipWriter {
	return &zipWriter{}
}

// Close writes the central directory and closes the archive file.
func (wr *zipWriter) Close() error {
	if wr.archive == nil {
		return nil
	}
	var errs []error
	if err := wr.zw.Close(); err != nil {
		errs = append(errs, fmt.Errorf("finalize zip archive: %w", err))
	}
	if err := wr.archive.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close archive file: %w", err))
	}
	wr.archive = nil
	return errors.Join(errs...)
}

func (wr *zipWriter) Init(destination string) (io.Closer, error) {
	if err := os.MkdirAll(filepath.Dir(destination), os.ModePerm); err != nil {
		return nil, fmt.Errorf("create directory: %w", err)
	}

	archive, err := os.Create(destination)
	if err != nil {
		return nil, fmt.Errorf("create archive: %w", err)
	}
	wr.archive = archive
	wr.zw = zip.NewWriter(archive)
	wr.zw.RegisterCompressor(zip.Deflate, func(out io.Writer) (io.WriteCloser, error) {
		return flate.NewWriter(out, flate.DefaultCompression)
	})

	return wr, nil
}

func (wr *zipWriter) CreateEntry(name string, info fs.FileInfo) (io.Writer, error) {
	if wr.zw == nil {
		return nil, errors.New("archive is not initialized")
	}

	header, err := zip.FileInfoHeader(info)
	if err != nil {
		return nil, fmt.Errorf("create file info header: %w", err)
	}
	// FileInfoHeader only takes the basename and defaults to Store
	header.Name = filepath.ToSlash(name)
	header.Method = zip.Deflate

	w, err := wr.zw.CreateHeader(header)
	if err != nil {
		return nil, fmt.Errorf("create file in archive: %w", err)
	}
	return w, nil
}
