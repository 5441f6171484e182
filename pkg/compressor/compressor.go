package compressor

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/acronis/go-filecompressor/pkg/archiver"
	"github.com/acronis/go-filecompressor/pkg/filesys"
)

const copyBufferSize = 32 * 1024

var ErrNoInputs = errors.New("at least one input path is required")

// Compressor bundles files and directories into a single archive.
type Compressor struct {
	Writer   archiver.Writer
	Reporter Reporter
	// BaseDir resolves relative input and output paths. Empty means the process working directory.
	BaseDir string
}

type Option func(*Compressor) error

func WithWriter(w archiver.Writer) Option {
	return func(c *Compressor) error {
		if w == nil {
			return fmt.Errorf("writer is not set")
		}
		c.Writer = w
		return nil
	}
}

func WithFormat(format archiver.Format) Option {
	return func(c *Compressor) error {
		w, err := archiver.New(format)
		if err != nil {
			return fmt.Errorf("create archive writer: %w", err)
		}
		c.Writer = w
		return nil
	}
}

func WithReporter(r Reporter) Option {
	return func(c *Compressor) error {
		c.Reporter = r
		return nil
	}
}

func WithBaseDir(dir string) Option {
	return func(c *Compressor) error {
		c.BaseDir = dir
		return nil
	}
}

func New(opts ...Option) (*Compressor, error) {
	c := &Compressor{}

	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, fmt.Errorf("apply option: %w", err)
		}
	}

	if c.Writer == nil {
		w, err := archiver.New(archiver.FormatZip)
		if err != nil {
			return nil, fmt.Errorf("create archive writer: %w", err)
		}
		c.Writer = w
	}
	if c.Reporter == nil {
		c.Reporter = NewConsoleReporter(os.Stdout)
	}

	return c, nil
}

// Summary describes a finished or aborted run.
type Summary struct {
	// Total is the number of inputs given, found or not.
	Total int
	// Processed counts inputs that existed and were fully archived.
	Processed int
	NotFound  []string
	Entries   int
	Bytes     int64
}

// Compress writes every regular file reachable from inputs into the archive at output.
// Missing inputs are reported and skipped. Any I/O error aborts the run with an *IOFailure.
func (c *Compressor) Compress(output string, inputs []string) (Summary, error) {
	if len(inputs) == 0 {
		return Summary{}, ErrNoInputs
	}

	r := &run{
		c:       c,
		buf:     make([]byte, copyBufferSize),
		summary: Summary{Total: len(inputs)},
	}
	err := r.execute(output, inputs)
	return r.summary, err
}

type run struct {
	c          *Compressor
	buf        []byte
	outputInfo fs.FileInfo
	summary    Summary
}

func (r *run) execute(output string, inputs []string) (err error) {
	outPath := r.c.resolve(output)
	slog.Debug("Creating archive", slog.String("path", outPath), slog.Int("inputs", len(inputs)))

	closer, err := r.c.Writer.Init(outPath)
	if err != nil {
		return newIOFailure(err, "create archive", output)
	}
	defer func() {
		if cerr := closer.Close(); cerr != nil && err == nil {
			err = newIOFailure(cerr, "close archive", output)
		}
	}()

	if info, statErr := os.Stat(outPath); statErr == nil {
		r.outputInfo = info
	}

	for _, input := range inputs {
		found, err := r.addInput(input)
		if err != nil {
			return err
		}
		if !found {
			r.summary.NotFound = append(r.summary.NotFound, input)
			r.c.Reporter.NotFound(input)
			continue
		}
		r.summary.Processed++
		r.c.Reporter.Progress(r.summary.Processed, r.summary.Total)
	}

	r.c.Reporter.Complete()
	slog.Debug("Archive has been written",
		slog.String("path", outPath),
		slog.Int("entries", r.summary.Entries),
		slog.Int64("size", r.summary.Bytes))
	return nil
}

// addInput reports false when the input cannot be found. A top-level input that
// cannot be stat'ed for any reason (missing, dangling link, no search permission
// on a parent) counts as not found.
func (r *run) addInput(input string) (bool, error) {
	fsPath := r.c.resolve(input)
	info, err := os.Stat(fsPath)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			slog.Debug("Input is not accessible", slog.String("path", fsPath), slog.String("error", err.Error()))
		}
		return false, nil
	}

	root := entryRoot(fsPath)
	if info.IsDir() {
		slog.Debug("Adding directory", slog.String("path", fsPath), slog.String("entry", root))
		return true, r.addDirectory(fsPath, root, []fs.FileInfo{info})
	}
	return true, r.addFile(fsPath, root, info)
}

func (r *run) addFile(fsPath string, name string, info fs.FileInfo) error {
	if r.outputInfo != nil && os.SameFile(r.outputInfo, info) {
		slog.Debug("Skipping the archive being written", slog.String("path", fsPath))
		return nil
	}
	if !info.Mode().IsRegular() {
		slog.Warn("Skipping file that is not regular", slog.String("path", fsPath), slog.String("mode", info.Mode().String()))
		return nil
	}

	f, err := os.Open(fsPath)
	if err != nil {
		return newIOFailure(err, "open input", fsPath)
	}
	defer f.Close()

	w, err := r.c.Writer.CreateEntry(name, info)
	if err != nil {
		return newIOFailure(err, "create entry", name)
	}

	n, sum, err := r.copyEntry(w, f, fsPath, name)
	if err != nil {
		return err
	}

	r.summary.Entries++
	r.summary.Bytes += n
	slog.Debug("Entry added", slog.String("entry", name), slog.Int64("size", n), slog.String("xxh3", sum))
	return nil
}

// copyEntry streams src into the entry writer and returns the byte count and xxh3 digest.
// Read failures are reported against the input path, write failures against the entry.
func (r *run) copyEntry(w io.Writer, src io.Reader, fsPath string, name string) (int64, string, error) {
	in := &inputReader{r: src}
	sum := filesys.NewChecksum()
	n, err := io.CopyBuffer(io.MultiWriter(w, sum), in, r.buf)
	if err != nil {
		if in.err != nil {
			return n, "", newIOFailure(err, "read input", fsPath)
		}
		return n, "", newIOFailure(err, "write entry", name)
	}
	return n, sum.Sum(), nil
}

// inputReader remembers the last non-EOF read error.
type inputReader struct {
	r   io.Reader
	err error
}

func (ir *inputReader) Read(p []byte) (int, error) {
	n, err := ir.r.Read(p)
	if err != nil && !errors.Is(err, io.EOF) {
		ir.err = err
	}
	return n, err
}

func (c *Compressor) resolve(p string) string {
	if c.BaseDir == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.BaseDir, p)
}

// entryRoot is the entry name of a top-level input: the base name of its absolute path.
// The filesystem root has no name and yields "".
func entryRoot(fsPath string) string {
	abs, err := filepath.Abs(fsPath)
	if err != nil {
		abs = filepath.Clean(fsPath)
	}
	base := filepath.Base(abs)
	if base == "." || base == string(filepath.Separator) {
		return ""
	}
	return base
}

func joinEntryName(parent string, name string) string {
	if parent == "" {
		return name
	}
	return parent + "/" + name
}
