package core

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestRetryPolicyRetryableErrors(t *testing.T) {
	policy := NewRetryPolicy(RetryConfig{MaxRetries: 3, BaseDelay: time.Millisecond, Jitter: 0})

	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"network", ErrNetwork, true},
		{"rate limited", ErrRateLimited, true},
		{"server", ErrServer, true},
		{"unauthorized", ErrUnauthorized, false},
		{"bad request", ErrBadRequest, false},
		{"decode", ErrDecode, false},
		{"context canceled", context.Canceled, false},
		{"deadline exceeded", context.DeadlineExceeded, false},
		{"nil", nil, false},
		{"unknown", errors.New("mystery"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok := policy.NextDelay(0, tt.err)
			if ok != tt.want {
				t.Errorf("NextDelay(0, %v) retry = %v, want %v", tt.err, ok, tt.want)
			}
		})
	}
}

func TestRetryPolicyProviderErrorStatus(t *testing.T) {
	policy := NewRetryPolicy(RetryConfig{MaxRetries: 3, BaseDelay: time.Millisecond, Jitter: 0})

	tests := []struct {
		status int
		want   bool
	}{
		{429, true},
		{500, true},
		{503, true},
		{400, false},
		{404, false},
	}

	for _, tt := range tests {
		err := &ProviderError{Provider: "deepseek", Status: tt.status, Message: "x"}
		_, ok := policy.NextDelay(0, err)
		if ok != tt.want {
			t.Errorf("status %d: retry = %v, want %v", tt.status, ok, tt.want)
		}
	}
}

func TestRetryPolicyMaxRetries(t *testing.T) {
	policy := NewRetryPolicy(RetryConfig{MaxRetries: 2, BaseDelay: time.Millisecond, Jitter: 0})

	if _, ok := policy.NextDelay(1, ErrServer); !ok {
		t.Error("attempt 1 of 2: retry = false, want true")
	}
	if _, ok := policy.NextDelay(2, ErrServer); ok {
		t.Error("attempt 2 of 2: retry = true, want false")
	}
}

func TestRetryPolicyExponentialBackoff(t *testing.T) {
	policy := NewRetryPolicy(RetryConfig{
		MaxRetries: 5,
		BaseDelay:  100 * time.Millisecond,
		MaxDelay:   time.Second,
		Jitter:     0,
	})

	d0, _ := policy.NextDelay(0, ErrServer)
	d1, _ := policy.NextDelay(1, ErrServer)
	d2, _ := policy.NextDelay(2, ErrServer)

	if d0 != 100*time.Millisecond {
		t.Errorf("delay 0 = %v, want 100ms", d0)
	}
	if d1 != 200*time.Millisecond {
		t.Errorf("delay 1 = %v, want 200ms", d1)
	}
	if d2 != 400*time.Millisecond {
		t.Errorf("delay 2 = %v, want 400ms", d2)
	}

	// Capped at MaxDelay
	d4, _ := policy.NextDelay(4, ErrServer)
	if d4 > time.Second {
		t.Errorf("delay 4 = %v, want <= 1s", d4)
	}
}

func TestRetryConfigDefaults(t *testing.T) {
	policy := NewRetryPolicy(RetryConfig{})
	eb, ok := policy.(*exponentialBackoff)
	if !ok {
		t.Fatal("expected *exponentialBackoff")
	}
	if eb.cfg.MaxRetries != 3 {
		t.Errorf("MaxRetries = %d, want 3", eb.cfg.MaxRetries)
	}
	if eb.cfg.BaseDelay != time.Second {
		t.Errorf("BaseDelay = %v, want 1s", eb.cfg.BaseDelay)
	}
	if eb.cfg.MaxDelay != 30*time.Second {
		t.Errorf("MaxDelay = %v, want 30s", eb.cfg.MaxDelay)
	}
}
