package compressor

import (
	"fmt"
	"io"
	"os"
)

// Reporter receives per-input notifications of a run.
type Reporter interface {
	NotFound(path string)
	Progress(processed, total int)
	Complete()
}

// ConsoleReporter prints the classic console messages.
type ConsoleReporter struct {
	W io.Writer
}

func NewConsoleReporter(w io.Writer) *ConsoleReporter {
	if w == nil {
		w = os.Stdout
	}
	return &ConsoleReporter{W: w}
}

func (r *ConsoleReporter) NotFound(path string) {
	fmt.Fprintf(r.W, "File not found: %s\n", path)
}

func (r *ConsoleReporter) Progress(processed, total int) {
	fmt.Fprintf(r.W, "Progress: %d/%d\n", processed, total)
}

func (r *ConsoleReporter) Complete() {
	fmt.Fprintln(r.W, "Compression complete!")
}
