package config

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"
)

func TestDoWithBackoff(t *testing.T) {
	original := retryBaseDelay
	retryBaseDelay = 5 * time.Millisecond
	t.Cleanup(func() { retryBaseDelay = original })

	tests := []struct {
		name          string
		maxRetries    int
		ctxTimeout    time.Duration
		handler       func(req *http.Request) (*http.Response, error)
		expectErr     string
		expectCalls   int
		expectSuccess bool
	}{
		{
			name:       "success on first try",
			maxRetries: 3,
			handler: func(req *http.Request) (*http.Response, error) {
				return statusResponse(http.StatusOK, ""), nil
			},
			expectErr:     "",
			expectCalls:   1,
			expectSuccess: true,
		},
		{
			name:       "max retries exceeded",
			maxRetries: 2,
			handler: func(req *http.Request) (*http.Response, error) {
				return nil, errors.New("mock error")
			},
			expectErr:   "max retries exceeded",
			expectCalls: 3,
		},
		{
			name:       "server errors are retried",
			maxRetries: 1,
			handler: func(req *http.Request) (*http.Response, error) {
				return statusResponse(http.StatusServiceUnavailable, ""), nil
			},
			expectErr:   "status 503",
			expectCalls: 2,
		},
		{
			name:       "client errors are returned as is",
			maxRetries: 3,
			handler: func(req *http.Request) (*http.Response, error) {
				return statusResponse(http.StatusNotFound, "not found"), nil
			},
			expectCalls:   1,
			expectSuccess: true,
		},
		{
			name:       "context cancelled before success",
			maxRetries: 0,
			ctxTimeout: 50 * time.Millisecond,
			handler: func(req *http.Request) (*http.Response, error) {
				return nil, errors.New("fail")
			},
			expectErr:   "context deadline exceeded",
			expectCalls: -1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := &mockRoundTripper{handler: tt.handler}
			client := &http.Client{Transport: mock}
			req, _ := http.NewRequest("GET", "http://example.com", nil)

			ctx := context.Background()
			if tt.ctxTimeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, tt.ctxTimeout)
				defer cancel()
			}

			resp, err := DoWithBackoff(ctx, client, req, tt.maxRetries)

			if tt.expectErr == "" && err != nil {
				t.Fatalf("expected success, got error: %v", err)
			}
			if tt.expectErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.expectErr) {
					t.Fatalf("expected error containing %q, got %v", tt.expectErr, err)
				}
			}
			if tt.expectSuccess && resp == nil {
				t.Fatalf("expected response, got nil")
			}

			if tt.expectCalls >= 0 && mock.calls != tt.expectCalls {
				t.Errorf("expected %d calls, got %d", tt.expectCalls, mock.calls)
			}
		})
	}
}

func TestBackoffStore(t *testing.T) {
	store := NewBackoffStore()

	if _, ok := store.NextRetryAt(7); ok {
		t.Fatal("expected no backoff for unknown feed")
	}
	if store.ShouldSkip(7, time.Now()) {
		t.Fatal("unknown feed should not be skipped")
	}

	store.UpdateBackoff(7)
	first, ok := store.NextRetryAt(7)
	if !ok {
		t.Fatal("expected backoff after first failure")
	}
	if !first.After(time.Now()) {
		t.Errorf("next retry %v should be in the future", first)
	}
	if !store.ShouldSkip(7, time.Now()) {
		t.Error("feed inside its backoff window should be skipped")
	}
	if store.ShouldSkip(7, first.Add(time.Second)) {
		t.Error("feed past its backoff window should not be skipped")
	}

	store.UpdateBackoff(7)
	if got := store.Failures(7); got != 2 {
		t.Errorf("expected 2 failures, got %d", got)
	}
	store.mu.RLock()
	delay := store.backoffs[7].BackoffDelay
	store.mu.RUnlock()
	if delay != 2*BASE_BACKOFF {
		t.Errorf("expected delay %v, got %v", 2*BASE_BACKOFF, delay)
	}

	store.ResetBackoff(7)
	if _, ok := store.NextRetryAt(7); ok {
		t.Error("expected backoff cleared after reset")
	}
	if got := store.Failures(7); got != 0 {
		t.Errorf("expected 0 failures after reset, got %d", got)
	}
}

func TestCalculateNewBackoffDelayCapped(t *testing.T) {
	if got := calculateNewBackoffDelay(MAX_BACKOFF); got != MAX_BACKOFF {
		t.Errorf("expected delay capped at %v, got %v", MAX_BACKOFF, got)
	}
	if got := calculateNewBackoffDelay(BASE_BACKOFF); got != 2*BASE_BACKOFF {
		t.Errorf("expected %v, got %v", 2*BASE_BACKOFF, got)
	}
}
