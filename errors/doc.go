// Package errors defines the error taxonomy shared by seqkit packages.
//
// Every failure is an *Error carrying a machine-readable ErrorCode. Two
// errors match under errors.Is when their codes are equal, so callers can
// compare against the sentinels exported by package seq:
//
//	if errors.Is(err, seq.ErrEmptySequence) { ... }
//
// Construction-time failures (INVALID_ARGUMENT) are returned synchronously
// by operator constructors; iteration-time failures (EMPTY_SEQUENCE,
// MULTIPLE_MATCH, DUPLICATE_KEY, ...) surface from terminal operators.
package errors
