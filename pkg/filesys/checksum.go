package filesys

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/rogpeppe/go-internal/dirhash"
	"github.com/zeebo/xxh3"
)

// Checksum is a streaming xxh3-128 digest.
type Checksum struct {
	hasher *xxh3.Hasher
}

func NewChecksum() *Checksum {
	return &Checksum{hasher: xxh3.New()}
}

func (c *Checksum) Write(p []byte) (int, error) {
	return c.hasher.Write(p)
}

// Sum returns the hex digest of everything written so far.
func (c *Checksum) Sum() string {
	sum128 := c.hasher.Sum128()
	return fmt.Sprintf("%016x%016x", sum128.Hi, sum128.Lo)
}

func ComputeFileChecksum(filePath string) (string, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return "", fmt.Errorf("open file: %w", err)
	}
	defer f.Close()

	c := NewChecksum()
	if _, err := io.Copy(c, f); err != nil {
		return "", fmt.Errorf("read file: %w", err)
	}
	return c.Sum(), nil
}

func hashXXH3(files []string, open func(string) (io.ReadCloser, error)) (string, error) {
	h := xxh3.New()
	files = append([]string(nil), files...)
	sort.Strings(files)
	for _, file := range files {
		if strings.Contains(file, "\n") {
			return "", errors.New("dirhash: filenames with newlines are not supported")
		}
		r, err := open(file)
		if err != nil {
			return "", err
		}
		hf := xxh3.New()
		_, err = io.Copy(hf, r)
		r.Close()
		if err != nil {
			return "", err
		}
		fmt.Fprintf(h, "%x  %s\n", hf.Sum(nil), file)
	}
	return "xxh3:" + base64.StdEncoding.EncodeToString(h.Sum(nil)), nil
}

// ComputeDirectoryHash hashes names and contents of every file under dir.
// Entries are named with the given prefix, so trees with equal content under
// different roots hash the same when the prefix matches.
func ComputeDirectoryHash(dir string, prefix string) (string, error) {
	return dirhash.HashDir(dir, prefix, hashXXH3)
}
