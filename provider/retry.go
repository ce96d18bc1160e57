package provider

import (
	"context"
	stderrors "errors"
	"math"
	"math/rand/v2"
	"time"

	"github.com/kbukum/seqkit/errors"
	"github.com/kbukum/seqkit/logger"
	"github.com/kbukum/seqkit/seq"
)

// RetryConfig configures WithRetry.
type RetryConfig struct {
	// MaxAttempts is the maximum number of Execute calls, including the first.
	MaxAttempts int
	// InitialBackoff is the delay before the first retry.
	InitialBackoff time.Duration
	// MaxBackoff caps the delay between retries.
	MaxBackoff time.Duration
	// BackoffFactor is the multiplier for exponential backoff.
	BackoffFactor float64
	// Jitter adds randomness to backoff (0.0 to 1.0).
	Jitter float64
	// RetryIf decides whether an Execute error is worth another attempt.
	RetryIf func(error) bool
}

// DefaultRetryConfig returns sensible defaults.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:    3,
		InitialBackoff: 100 * time.Millisecond,
		MaxBackoff:     5 * time.Second,
		BackoffFactor:  2.0,
		Jitter:         0.1,
		RetryIf:        DefaultRetryIf,
	}
}

var permanentCodes = []errors.ErrorCode{
	errors.ErrCodeInvalidArgument,
	errors.ErrCodeInvalidConfig,
	errors.ErrCodeUnsupported,
	errors.ErrCodeTypeMismatch,
}

// DefaultRetryIf retries everything except cancellation and errors that
// would fail the same way again.
func DefaultRetryIf(err error) bool {
	if stderrors.Is(err, context.Canceled) || stderrors.Is(err, context.DeadlineExceeded) {
		return false
	}
	for _, code := range permanentCodes {
		if errors.HasCode(err, code) {
			return false
		}
	}
	return true
}

// WithRetry returns a Middleware that retries failed Execute calls with
// exponential backoff. Only Execute is retried: once results are flowing,
// errors reach the consumer unchanged, since replaying would duplicate
// elements already yielded.
func WithRetry(cfg RetryConfig) Middleware {
	def := DefaultRetryConfig()
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = def.MaxAttempts
	}
	if cfg.InitialBackoff <= 0 {
		cfg.InitialBackoff = def.InitialBackoff
	}
	if cfg.MaxBackoff <= 0 {
		cfg.MaxBackoff = def.MaxBackoff
	}
	if cfg.BackoffFactor <= 0 {
		cfg.BackoffFactor = def.BackoffFactor
	}
	if cfg.RetryIf == nil {
		cfg.RetryIf = DefaultRetryIf
	}
	return func(inner seq.Provider) seq.Provider {
		return &retryProvider{inner: inner, cfg: cfg, log: logger.Get("provider")}
	}
}

type retryProvider struct {
	inner seq.Provider
	cfg   RetryConfig
	log   *logger.Logger
}

func (r *retryProvider) Name() string { return r.inner.Name() }

func (r *retryProvider) Execute(ctx context.Context, q seq.Query) (seq.Iterator[any], error) {
	var lastErr error
	for attempt := 1; attempt <= r.cfg.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		it, err := r.inner.Execute(ctx, q)
		if err == nil {
			return it, nil
		}
		lastErr = err
		if !r.cfg.RetryIf(err) || attempt == r.cfg.MaxAttempts {
			break
		}

		backoff := r.backoff(attempt)
		r.log.Warn("provider execute failed, retrying", logger.Fields(
			logger.FieldProvider, r.inner.Name(),
			logger.FieldSource, q.Source,
			"attempt", attempt,
			"backoff", backoff.String(),
			logger.FieldError, err.Error(),
		))

		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
	return nil, lastErr
}

// backoff is initial * factor^(attempt-1), jittered and capped.
func (r *retryProvider) backoff(attempt int) time.Duration {
	d := float64(r.cfg.InitialBackoff) * math.Pow(r.cfg.BackoffFactor, float64(attempt-1))
	if r.cfg.Jitter > 0 {
		d += (rand.Float64()*2 - 1) * d * r.cfg.Jitter
	}
	d = min(d, float64(r.cfg.MaxBackoff))
	if d < 0 {
		d = float64(r.cfg.InitialBackoff)
	}
	return time.Duration(d)
}
