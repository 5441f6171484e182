package tgzwriter

import (
	"archive/tar"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/gzip"
)

type tarWriter struct {
	archive *os.File
	gw      *gzip.Writer
	tw      *tar.Writer
}

func New() *tarWriter {
	return &tarWriter{}
}

func (wr *tarWriter) Close() error {
	if wr.archive == nil {
		return nil
	}
	var errs []error
	if err := wr.tw.Close(); err != nil {
		errs = append(errs, fmt.Errorf("finalize tar stream: %w", err))
	}
	if err := wr.gw.Close(); err != nil {
		errs = append(errs, fmt.Errorf("finalize gzip stream: %w", err))
	}
	if err := wr.archive.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close archive file: %w", err))
	}
	wr.archive = nil
	return errors.Join(errs...)
}

func (wr *tarWriter) Init(destination string) (io.Closer, error) {
	if err := os.MkdirAll(filepath.Dir(destination), os.ModePerm); err != nil {
		return nil, fmt.Errorf("create directory: %w", err)
	}

	archive, err := os.Create(destination)
	if err != nil {
		return nil, fmt.Errorf("create archive: %w", err)
	}
	wr.archive = archive
	wr.gw = gzip.NewWriter(wr.archive)
	wr.tw = tar.NewWriter(wr.gw)

	return wr, nil
}

func (wr *tarWriter) CreateEntry(name string, info fs.FileInfo) (io.Writer, error) {
	if wr.tw == nil {
		return nil, errors.New("archive is not initialized")
	}

	header, err := tar.FileInfoHeader(info, "")
	if err != nil {
		return nil, fmt.Errorf("create file info header: %w", err)
	}

	// Use full path as name (FileInfoHeader only takes the basename)
	// If we don't do this the directory structure would not be preserved
	header.Name = filepath.ToSlash(name)

	if err := wr.tw.WriteHeader(header); err != nil {
		return nil, fmt.Errorf("write file header: %w", err)
	}
	return wr.tw, nil
}
