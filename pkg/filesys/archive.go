package filesys

import (
	"archive/tar"
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
)

// Limit file size to prevent DoS attacks
const maxFileSize = 100 << 20 // 100 MB

func OpenZipFile(source string, fpath string) ([]byte, error) {
	reader, err := zip.OpenReader(source)
	if err != nil {
		return nil, fmt.Errorf("open zip file: %w", err)
	}
	defer reader.Close()

	for _, file := range reader.File {
		if file.Name != fpath {
			continue
		}

		if file.FileInfo().IsDir() {
			return nil, fmt.Errorf("specified file path %s is a directory", fpath)
		}

		rc, err := file.Open()
		if err != nil {
			return nil, fmt.Errorf("open file in archive: %w", err)
		}
		defer rc.Close()

		return io.ReadAll(rc)
	}

	return nil, fmt.Errorf("failed to find %s in archive", fpath)
}

// ListZipEntries returns entry names in archive order.
func ListZipEntries(source string) ([]string, error) {
	reader, err := zip.OpenReader(source)
	if err != nil {
		return nil, fmt.Errorf("open zip file: %w", err)
	}
	defer reader.Close()

	names := make([]string, 0, len(reader.File))
	for _, file := range reader.File {
		names = append(names, file.Name)
	}
	return names, nil
}

func OpenTgzFile(source string, fpath string) ([]byte, error) {
	var content []byte
	found := false
	err := walkTgz(source, func(header *tar.Header, r io.Reader) error {
		if header.Name != fpath {
			return nil
		}
		if header.Typeflag != tar.TypeReg {
			return fmt.Errorf("specified file path %s is not a regular file", fpath)
		}
		var err error
		if content, err = io.ReadAll(r); err != nil {
			return fmt.Errorf("read file in archive: %w", err)
		}
		found = true
		return errStopWalk
	})
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("failed to find %s in archive", fpath)
	}
	return content, nil
}

// ListTgzEntries returns entry names in archive order.
func ListTgzEntries(source string) ([]string, error) {
	var names []string
	if err := walkTgz(source, func(header *tar.Header, _ io.Reader) error {
		names = append(names, header.Name)
		return nil
	}); err != nil {
		return nil, err
	}
	return names, nil
}

var errStopWalk = errors.New("stop walking archive")

func walkTgz(source string, fn func(header *tar.Header, r io.Reader) error) error {
	f, err := os.Open(source)
	if err != nil {
		return fmt.Errorf("open tgz file: %w", err)
	}
	defer f.Close()

	gr, err := gzip.NewReader(f)
	if err != nil {
		return fmt.Errorf("open gzip stream: %w", err)
	}
	defer gr.Close()

	tr := tar.NewReader(gr)
	for {
		header, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read tar header: %w", err)
		}
		if err := fn(header, tr); err != nil {
			if errors.Is(err, errStopWalk) {
				return nil
			}
			return err
		}
	}
}

func sanitizeAndValidatePath(dest string, src string) (string, error) {
	// Sanitize the file name and remove any dangerous characters
	filePath := filepath.Join(dest, filepath.Clean(src))

	// Ensure file paths don't escape the target directory using filepath.Rel for strict comparison
	relPath, err := filepath.Rel(dest, filePath)
	if err != nil || strings.HasPrefix(relPath, "..") {
		return "", fmt.Errorf("invalid file path: %s", filePath)
	}
	return filePath, nil
}

func extractFile(destPath string, src io.Reader, perm os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(destPath), os.ModePerm); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}

	destFile, err := os.OpenFile(destPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, perm.Perm()|0o200)
	if err != nil {
		return fmt.Errorf("create file: %w", err)
	}
	defer destFile.Close()

	n, err := io.CopyN(destFile, src, maxFileSize+1)
	if err != nil && err != io.EOF {
		return fmt.Errorf("copy file: %w", err)
	}
	if n > maxFileSize {
		return fmt.Errorf("file too large: %s", destPath)
	}
	return nil
}

// SecureUnzip extracts a ZIP archive under dest, rejecting entries that escape it.
// It is a verification helper: the compressor never extracts, tests use it to
// check round trips.
func SecureUnzip(src string, dest string) error {
	r, err := zip.OpenReader(src)
	if err != nil {
		return fmt.Errorf("open zip file: %w", err)
	}
	defer r.Close()

	for _, f := range r.File {
		filePath, err := sanitizeAndValidatePath(dest, f.Name)
		if err != nil {
			return fmt.Errorf("sanitize file path: %w", err)
		}

		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(filePath, os.ModePerm); err != nil {
				return fmt.Errorf("create directory: %w", err)
			}
			continue
		}

		if f.UncompressedSize64 > maxFileSize {
			return fmt.Errorf("file too large: %s", f.Name)
		}

		if err := func() error {
			srcFile, err := f.Open()
			if err != nil {
				return fmt.Errorf("open file: %w", err)
			}
			defer srcFile.Close()
			return extractFile(filePath, srcFile, f.Mode())
		}(); err != nil {
			return fmt.Errorf("extract %s: %w", f.Name, err)
		}
	}
	return nil
}

// SecureUntgz is the tar.gz counterpart of SecureUnzip.
func SecureUntgz(src string, dest string) error {
	return walkTgz(src, func(header *tar.Header, r io.Reader) error {
		fPath, err := sanitizeAndValidatePath(dest, header.Name)
		if err != nil {
			return fmt.Errorf("sanitize file path: %w", err)
		}

		switch header.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(fPath, os.ModePerm); err != nil {
				return fmt.Errorf("create directory: %w", err)
			}
		case tar.TypeReg:
			if header.Size > maxFileSize {
				return fmt.Errorf("file too large: %s", header.Name)
			}
			if err := extractFile(fPath, r, header.FileInfo().Mode()); err != nil {
				return fmt.Errorf("extract %s: %w", header.Name, err)
			}
		}
		return nil
	})
}
