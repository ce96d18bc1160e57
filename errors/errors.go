package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// Error is the unified seqkit error type.
type Error struct {
	// Code is a machine-readable error code.
	Code ErrorCode `json:"code"`
	// Op names the operator or component that failed (e.g. "seq.First").
	Op string `json:"op,omitempty"`
	// Message is a human-readable error message.
	Message string `json:"message"`
	// Details contains additional context for the error.
	Details map[string]any `json:"details,omitempty"`
	// Cause is the underlying error that caused this error.
	Cause error `json:"-"`
}

// Error returns the string representation of the error.
func (e *Error) Error() string {
	var b strings.Builder
	if e.Op != "" {
		b.WriteString(e.Op)
		b.WriteString(": ")
	}
	b.WriteString(string(e.Code))
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.Cause != nil {
		fmt.Fprintf(&b, " (cause: %v)", e.Cause)
	}
	return b.String()
}

// Unwrap returns the underlying cause of the error.
func (e *Error) Unwrap() error { return e.Cause }

// Is reports whether target is an *Error with the same code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// WithCause sets the underlying cause of the error and returns the receiver.
func (e *Error) WithCause(cause error) *Error {
	e.Cause = cause
	return e
}

// WithDetail sets a single detail key-value pair and returns the receiver.
func (e *Error) WithDetail(key string, value any) *Error {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// WithDetails merges the provided details into the error and returns the receiver.
func (e *Error) WithDetails(details map[string]any) *Error {
	for k, v := range details {
		e.WithDetail(k, v)
	}
	return e
}

// New creates a new Error.
func New(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

// --- Constructors ---

// InvalidArgument reports a malformed operator argument.
func InvalidArgument(op, arg, reason string) *Error {
	return &Error{
		Code: ErrCodeInvalidArgument, Op: op,
		Message: fmt.Sprintf("argument %q %s", arg, reason),
		Details: map[string]any{"argument": arg},
	}
}

// InvalidConfig reports a configuration that failed validation.
func InvalidConfig(message string) *Error {
	return &Error{Code: ErrCodeInvalidConfig, Message: message}
}

// EmptySequence reports that op required at least one element.
func EmptySequence(op string) *Error {
	return &Error{Code: ErrCodeEmptySequence, Op: op, Message: "sequence contains no matching element"}
}

// MultipleMatch reports that op expected a single match and found more.
func MultipleMatch(op string) *Error {
	return &Error{Code: ErrCodeMultipleMatch, Op: op, Message: "sequence contains more than one matching element"}
}

// DuplicateKey reports a repeated key while building a unique-key map.
func DuplicateKey(op string, key any) *Error {
	return &Error{
		Code: ErrCodeDuplicateKey, Op: op,
		Message: fmt.Sprintf("an element with key %v has already been added", key),
		Details: map[string]any{"key": key},
	}
}

// IndexOutOfRange reports an index past the end of a sequence.
func IndexOutOfRange(op string, index int) *Error {
	return &Error{
		Code: ErrCodeIndexOutOfRange, Op: op,
		Message: fmt.Sprintf("index %d is out of range", index),
		Details: map[string]any{"index": index},
	}
}

// SourceConsumed reports a second iteration of a single-pass source.
func SourceConsumed(source string) *Error {
	return &Error{
		Code: ErrCodeSourceConsumed, Op: source,
		Message: "single-pass source has already been iterated",
	}
}

// TypeMismatch reports a provider element that does not have the expected type.
func TypeMismatch(op string, want string, got any) *Error {
	return &Error{
		Code: ErrCodeTypeMismatch, Op: op,
		Message: fmt.Sprintf("expected element of type %s, got %T", want, got),
		Details: map[string]any{"want": want, "got": fmt.Sprintf("%T", got)},
	}
}

// ProviderFailed wraps an execution failure reported by a named provider.
func ProviderFailed(provider string, cause error) *Error {
	return &Error{
		Code: ErrCodeProviderFailed, Op: provider,
		Message: "provider failed to execute query",
		Details: map[string]any{"provider": provider},
		Cause:   cause,
	}
}

// Unsupported reports an operation a provider cannot translate.
func Unsupported(provider, operation string) *Error {
	return &Error{
		Code: ErrCodeUnsupported, Op: provider,
		Message: fmt.Sprintf("operation %s is not supported", operation),
		Details: map[string]any{"operation": operation},
	}
}

// --- Inspection ---

// AsError converts an error to an *Error if possible.
func AsError(err error) (*Error, bool) {
	var e *Error
	if stderrors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// CodeOf returns the code of the first *Error in err's chain, or "".
func CodeOf(err error) ErrorCode {
	if e, ok := AsError(err); ok {
		return e.Code
	}
	return ""
}

// HasCode reports whether err's chain contains an *Error with code.
func HasCode(err error, code ErrorCode) bool {
	return stderrors.Is(err, &Error{Code: code})
}
