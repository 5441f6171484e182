package compressor

import "fmt"

// IOFailure is a fatal I/O error that aborts the whole run.
// The partially written archive is left on disk.
type IOFailure struct {
	Inner error
	Op    string
	Path  string
}

func (e *IOFailure) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Inner)
}

func (e *IOFailure) Unwrap() error {
	return e.Inner
}

func newIOFailure(err error, op string, path string) error {
	return &IOFailure{Inner: err, Op: op, Path: path}
}
