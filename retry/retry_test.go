package retry

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"google.golang.org/api/googleapi"
)

func testConfig() Config {
	return Config{
		MaxRetries:     3,
		InitialBackoff: 1 * time.Millisecond,
		MaxBackoff:     10 * time.Millisecond,
		Multiplier:     2.0,
	}
}

func TestDo_Success(t *testing.T) {
	attempts := 0
	err := Do(context.Background(), testConfig(), nil, func(ctx context.Context) error {
		attempts++
		return nil
	})

	if err != nil {
		t.Errorf("Do() returned error = %v, want nil", err)
	}
	if attempts != 1 {
		t.Errorf("Do() made %d attempts, want 1", attempts)
	}
}

func TestDo_PermanentError(t *testing.T) {
	attempts := 0
	permanent := &googleapi.Error{Code: http.StatusBadRequest, Message: "invalid request"}

	err := Do(context.Background(), testConfig(), nil, func(ctx context.Context) error {
		attempts++
		return permanent
	})

	var apiErr *googleapi.Error
	if !errors.As(err, &apiErr) {
		t.Errorf("Do() returned error = %v, want the permanent API error", err)
	}
	if attempts != 1 {
		t.Errorf("Do() made %d attempts, want 1", attempts)
	}
}

func TestDo_RetriesTransientThenSucceeds(t *testing.T) {
	attempts := 0
	err := Do(context.Background(), testConfig(), nil, func(ctx context.Context) error {
		attempts++
		if attempts < 3 {
			return &googleapi.Error{Code: http.StatusServiceUnavailable}
		}
		return nil
	})

	if err != nil {
		t.Errorf("Do() returned error = %v, want nil", err)
	}
	if attempts != 3 {
		t.Errorf("Do() made %d attempts, want 3", attempts)
	}
}

func TestDo_ExhaustedWrapsRetryableError(t *testing.T) {
	boom := errors.New("network down")
	err := Do(context.Background(), testConfig(), nil, func(ctx context.Context) error {
		return boom
	})

	var rerr *RetryableError
	if !errors.As(err, &rerr) {
		t.Fatalf("Do() returned error = %v, want *RetryableError", err)
	}
	if !errors.Is(err, boom) {
		t.Errorf("RetryableError must unwrap to the last error")
	}
}

func TestDo_ZeroRetriesSingleAttempt(t *testing.T) {
	cfg := testConfig()
	cfg.MaxRetries = 0

	attempts := 0
	boom := &googleapi.Error{Code: http.StatusServiceUnavailable}
	err := Do(context.Background(), cfg, nil, func(ctx context.Context) error {
		attempts++
		return boom
	})

	if attempts != 1 {
		t.Errorf("Do() made %d attempts, want 1", attempts)
	}
	var apiErr *googleapi.Error
	if !errors.As(err, &apiErr) {
		t.Errorf("Do() returned error = %v, want the unwrapped API error", err)
	}
	var rerr *RetryableError
	if errors.As(err, &rerr) {
		t.Error("Do() with zero retries must not wrap in RetryableError")
	}
}

func TestDo_ContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := Do(ctx, testConfig(), nil, func(ctx context.Context) error {
		return errors.New("transient")
	})

	if !errors.Is(err, context.Canceled) {
		t.Errorf("Do() returned error = %v, want context.Canceled", err)
	}
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"rate limited", &googleapi.Error{Code: http.StatusTooManyRequests}, true},
		{"request timeout", &googleapi.Error{Code: http.StatusRequestTimeout}, true},
		{"server error", &googleapi.Error{Code: http.StatusInternalServerError}, true},
		{"bad request", &googleapi.Error{Code: http.StatusBadRequest}, false},
		{"forbidden", &googleapi.Error{Code: http.StatusForbidden}, false},
		{"not found", &googleapi.Error{Code: http.StatusNotFound}, false},
		{"context canceled", context.Canceled, false},
		{"deadline exceeded", context.DeadlineExceeded, false},
		{"unknown network error", errors.New("connection reset"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsRetryable(tt.err); got != tt.want {
				t.Errorf("IsRetryable(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}
