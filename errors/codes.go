package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Construction-time errors.
const (
	// ErrCodeInvalidArgument indicates a nil or out-of-range operator argument.
	ErrCodeInvalidArgument ErrorCode = "INVALID_ARGUMENT"
	// ErrCodeInvalidConfig indicates a configuration struct failed validation.
	ErrCodeInvalidConfig ErrorCode = "INVALID_CONFIG"
)

// Iteration-time errors.
const (
	// ErrCodeEmptySequence indicates a terminal operator needed at least one element.
	ErrCodeEmptySequence ErrorCode = "EMPTY_SEQUENCE"
	// ErrCodeMultipleMatch indicates a uniqueness operator found a second match.
	ErrCodeMultipleMatch ErrorCode = "MULTIPLE_MATCH"
	// ErrCodeDuplicateKey indicates a unique-key map saw the same key twice.
	ErrCodeDuplicateKey ErrorCode = "DUPLICATE_KEY"
	// ErrCodeIndexOutOfRange indicates ElementAt ran past the end of the sequence.
	ErrCodeIndexOutOfRange ErrorCode = "INDEX_OUT_OF_RANGE"
	// ErrCodeSourceConsumed indicates a single-pass source was iterated twice.
	ErrCodeSourceConsumed ErrorCode = "SOURCE_CONSUMED"
)

// Provider boundary errors.
const (
	// ErrCodeTypeMismatch indicates a provider produced an element of the wrong type.
	ErrCodeTypeMismatch ErrorCode = "TYPE_MISMATCH"
	// ErrCodeProviderFailed indicates a provider could not execute a query.
	ErrCodeProviderFailed ErrorCode = "PROVIDER_FAILED"
	// ErrCodeUnsupported indicates a provider does not understand an operation.
	ErrCodeUnsupported ErrorCode = "UNSUPPORTED_OPERATION"
)

var constructionCodes = map[ErrorCode]bool{
	ErrCodeInvalidArgument: true,
	ErrCodeInvalidConfig:   true,
}

// IsConstructionCode reports whether code is raised while a pipeline is
// being built rather than while it is consumed.
func IsConstructionCode(code ErrorCode) bool {
	return constructionCodes[code]
}
