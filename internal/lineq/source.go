package lineq

import (
	"io"
	"os"

	"github.com/kbukum/seqkit/errors"
	"github.com/kbukum/seqkit/seq"
)

// Opener opens a named input.
type Opener func(path string) (io.ReadCloser, error)

// Inputs yields the lines of every path in order, one file open at a time.
// With no paths, or for the path "-", lines come from stdin, which can be
// read only once. A nil open uses os.Open.
func Inputs(paths []string, open Opener, stdin io.Reader) (*seq.Sequence[string], error) {
	if open == nil {
		open = func(path string) (io.ReadCloser, error) { return os.Open(path) }
	}
	if len(paths) == 0 {
		paths = []string{"-"}
	}

	parts := make([]*seq.Sequence[string], 0, len(paths))
	var stdinPart *seq.Sequence[string]
	for _, path := range paths {
		var (
			part *seq.Sequence[string]
			err  error
		)
		switch {
		case path != "-":
			part, err = seq.Lines(func() (io.ReadCloser, error) { return open(path) })
		case stdinPart != nil:
			// "-" given twice shares one claim on stdin
			part = stdinPart
		default:
			stdinPart, err = seq.LinesOnce("stdin", stdinOpener(stdin))
			part = stdinPart
		}
		if err != nil {
			return nil, err
		}
		parts = append(parts, part)
	}
	return seq.Concat(parts[0], parts[1:]...)
}

func stdinOpener(stdin io.Reader) func() (io.ReadCloser, error) {
	return func() (io.ReadCloser, error) {
		if stdin == nil {
			return nil, errors.InvalidArgument("lineq.Inputs", "stdin", "is not available")
		}
		return io.NopCloser(stdin), nil
	}
}
