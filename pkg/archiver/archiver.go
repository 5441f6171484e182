package archiver

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"strings"

	"github.com/acronis/go-filecompressor/pkg/archiver/tgzwriter"
	"github.com/acronis/go-filecompressor/pkg/archiver/zipwriter"
	"github.com/spf13/pflag"
)

// Writer produces a single archive file entry by entry.
// Init must be called before CreateEntry; the returned io.Closer finalizes the archive.
type Writer interface {
	Init(dst string) (io.Closer, error)
	// CreateEntry starts a new entry and returns a writer for its content.
	// The previous entry is finished implicitly.
	CreateEntry(name string, info fs.FileInfo) (io.Writer, error)
}

type Format string

const (
	FormatZip Format = "zip"
	FormatTgz Format = "tgz"
)

var ListFormats = []string{string(FormatZip), string(FormatTgz)}

var _ pflag.Value = (*Format)(nil)

// String is used both by fmt.Print and by Cobra in help text
func (e *Format) String() string {
	return string(*e)
}

// Set must have pointer receiver so it doesn't change the value of a copy
func (e *Format) Set(v string) error {
	switch v {
	case string(FormatZip), string(FormatTgz):
		*e = Format(v)
		return nil
	default:
		return errors.New(`must be one of ` + strings.Join(ListFormats, ","))
	}
}

// Type is only used in help text
func (e *Format) Type() string {
	return "format"
}

func New(format Format) (Writer, error) {
	switch format {
	case FormatZip, "":
		return zipwriter.New(), nil
	case FormatTgz:
		return tgzwriter.New(), nil
	default:
		return nil, fmt.Errorf("unsupported archive format %q", format)
	}
}
