package seq

import "github.com/kbukum/seqkit/errors"

// Sentinels for errors.Is. Errors returned by this package match them by
// code, whatever operator and details they carry.
var (
	ErrInvalidArgument = errors.New(errors.ErrCodeInvalidArgument, "invalid argument")
	ErrEmptySequence   = errors.New(errors.ErrCodeEmptySequence, "sequence contains no elements")
	ErrMultipleMatch   = errors.New(errors.ErrCodeMultipleMatch, "sequence contains more than one match")
	ErrDuplicateKey    = errors.New(errors.ErrCodeDuplicateKey, "duplicate key")
	ErrIndexOutOfRange = errors.New(errors.ErrCodeIndexOutOfRange, "index out of range")
	ErrSourceConsumed  = errors.New(errors.ErrCodeSourceConsumed, "single-pass source already consumed")
	ErrTypeMismatch    = errors.New(errors.ErrCodeTypeMismatch, "provider element has the wrong type")
	ErrProviderFailed  = errors.New(errors.ErrCodeProviderFailed, "provider failed")
	ErrUnsupported     = errors.New(errors.ErrCodeUnsupported, "operation not supported by provider")
)
