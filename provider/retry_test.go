package provider_test

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"github.com/kbukum/seqkit/errors"
	"github.com/kbukum/seqkit/provider"
	"github.com/kbukum/seqkit/seq"
)

// flakyProvider fails the first failures Execute calls with err.
type flakyProvider struct {
	inner    seq.Provider
	failures int
	err      error
	calls    int
}

func (f *flakyProvider) Name() string { return f.inner.Name() }
func (f *flakyProvider) Execute(ctx context.Context, q seq.Query) (seq.Iterator[any], error) {
	f.calls++
	if f.calls <= f.failures {
		return nil, f.err
	}
	return f.inner.Execute(ctx, q)
}

func fastRetry(attempts int) provider.RetryConfig {
	return provider.RetryConfig{MaxAttempts: attempts, InitialBackoff: time.Millisecond, MaxBackoff: 2 * time.Millisecond}
}

func TestWithRetry_RecoversTransientFailure(t *testing.T) {
	flaky := &flakyProvider{inner: numbers(), failures: 2, err: stderrors.New("connection reset")}
	p := provider.WithRetry(fastRetry(3))(flaky)

	got, err := seq.ToSlice(context.Background(), seq.Must(seq.Provided[int](p, "n")))
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 4 || flaky.calls != 3 {
		t.Errorf("got %v after %d calls", got, flaky.calls)
	}
}

func TestWithRetry_GivesUp(t *testing.T) {
	flaky := &flakyProvider{inner: numbers(), failures: 5, err: stderrors.New("connection reset")}
	p := provider.WithRetry(fastRetry(2))(flaky)

	_, err := seq.ToSlice(context.Background(), seq.Must(seq.Provided[int](p, "n")))
	if !errors.HasCode(err, errors.ErrCodeProviderFailed) {
		t.Fatalf("expected PROVIDER_FAILED, got %v", err)
	}
	if flaky.calls != 2 {
		t.Errorf("expected 2 attempts, got %d", flaky.calls)
	}
}

func TestWithRetry_PermanentErrorsNotRetried(t *testing.T) {
	flaky := &flakyProvider{inner: numbers(), failures: 1, err: errors.Unsupported("memory", "window")}
	p := provider.WithRetry(fastRetry(3))(flaky)

	_, err := seq.ToSlice(context.Background(), seq.Must(seq.Provided[int](p, "n")))
	if !errors.HasCode(err, errors.ErrCodeUnsupported) {
		t.Fatalf("expected UNSUPPORTED_OPERATION, got %v", err)
	}
	if flaky.calls != 1 {
		t.Errorf("expected a single attempt, got %d", flaky.calls)
	}
}

func TestWithRetry_StopsOnCancel(t *testing.T) {
	flaky := &flakyProvider{inner: numbers(), failures: 5, err: stderrors.New("timeout")}
	p := provider.WithRetry(provider.RetryConfig{MaxAttempts: 5, InitialBackoff: time.Hour})(flaky)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()
	_, err := p.Execute(ctx, seq.Query{Source: "n"})
	if !stderrors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if flaky.calls != 1 {
		t.Errorf("expected 1 attempt before cancel, got %d", flaky.calls)
	}
}

func TestDefaultRetryIf(t *testing.T) {
	tests := []struct {
		err  error
		want bool
	}{
		{stderrors.New("io"), true},
		{errors.ProviderFailed("db", stderrors.New("io")), true},
		{context.Canceled, false},
		{errors.TypeMismatch("seq.Provided", "int", "x"), false},
		{errors.InvalidArgument("op", "n", "must be positive"), false},
	}
	for _, tc := range tests {
		if got := provider.DefaultRetryIf(tc.err); got != tc.want {
			t.Errorf("DefaultRetryIf(%v) = %v, want %v", tc.err, got, tc.want)
		}
	}
}
