package common

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithRetry(t *testing.T) {
	transient := &TransientRequestError{Op: "health", Status: 503}
	fast := RetryOptions{MaxAttempts: 3, InitialDelay: time.Millisecond}

	tests := []struct {
		name      string
		errs      []error
		wantCalls int
		wantErr   error
	}{
		{name: "first try", errs: []error{nil}, wantCalls: 1},
		{name: "recovers", errs: []error{transient, transient, nil}, wantCalls: 3},
		{name: "exhausted", errs: []error{transient, transient, transient}, wantCalls: 3, wantErr: ErrMaxRetries},
		{name: "auth is final", errs: []error{&AuthorizationError{Status: 401}}, wantCalls: 1, wantErr: ErrAuthorization},
		{name: "validation is final", errs: []error{&ValidationError{Message: "bad"}}, wantCalls: 1, wantErr: ErrValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			err := WithRetry(context.Background(), func() error {
				e := tt.errs[calls]
				calls++
				return e
			}, fast)

			assert.Equal(t, tt.wantCalls, calls)
			if tt.wantErr == nil {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestWithRetry_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0

	err := WithRetry(ctx, func() error {
		calls++
		cancel()
		return &TransientRequestError{Op: "health", Err: errors.New("connection refused")}
	}, RetryOptions{MaxAttempts: 5, InitialDelay: time.Minute})

	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestBackoff(t *testing.T) {
	initial, maxDelay := 100*time.Millisecond, 500*time.Millisecond

	assert.Equal(t, 100*time.Millisecond, backoff(1, initial, maxDelay))
	assert.Equal(t, 200*time.Millisecond, backoff(2, initial, maxDelay))
	assert.Equal(t, 400*time.Millisecond, backoff(3, initial, maxDelay))
	assert.Equal(t, maxDelay, backoff(4, initial, maxDelay))
	assert.Equal(t, maxDelay, backoff(40, initial, maxDelay))
}
