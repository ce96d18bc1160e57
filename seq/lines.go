package seq

import (
	"bufio"
	"context"
	"io"

	"github.com/kbukum/seqkit/validation"
)

// maxLineSize bounds a single line read by Lines.
const maxLineSize = 1 << 20

// Lines yields the lines of the reader returned by open, without line
// terminators. open is called on the first pull of each iteration and the
// reader is closed as soon as the iteration is exhausted, abandoned or
// fails, so the sequence is restartable when open returns a fresh reader
// (for example by calling os.Open). Lines longer than 1 MiB fail with
// bufio.ErrTooLong.
func Lines(open func() (io.ReadCloser, error)) (*Sequence[string], error) {
	if err := validation.For("seq.Lines").Require("open", open != nil).Err(); err != nil {
		return nil, err
	}
	return node(true, func() stepper[string] { return &lineStepper{open: open} }), nil
}

// LinesOnce is like Lines for a reader that cannot be reopened, such as
// stdin or a pipe. Single-pass: open is called at most once and any later
// iteration fails with SOURCE_CONSUMED naming source.
func LinesOnce(source string, open func() (io.ReadCloser, error)) (*Sequence[string], error) {
	if err := validation.For("seq.LinesOnce").
		Custom(source != "", "source", "must not be empty").
		Require("open", open != nil).
		Err(); err != nil {
		return nil, err
	}
	claim := &singlePass{source: source}
	return node(false, func() stepper[string] { return &lineStepper{open: open, claim: claim} }), nil
}

type lineStepper struct {
	open    func() (io.ReadCloser, error)
	claim   *singlePass
	rc      io.ReadCloser
	scanner *bufio.Scanner
}

func (s *lineStepper) step(_ context.Context) (string, bool, error) {
	if s.scanner == nil {
		if s.claim != nil {
			if err := s.claim.acquire(); err != nil {
				return "", false, err
			}
		}
		rc, err := s.open()
		if err != nil {
			return "", false, err
		}
		if rc == nil {
			return "", false, nil
		}
		s.rc = rc
		s.scanner = bufio.NewScanner(rc)
		s.scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	}
	if s.scanner.Scan() {
		return s.scanner.Text(), true, nil
	}
	return "", false, s.scanner.Err()
}

func (s *lineStepper) release() error {
	if s.rc == nil {
		return nil
	}
	return s.rc.Close()
}
