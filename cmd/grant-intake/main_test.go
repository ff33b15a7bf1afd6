package main

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"grant-intake/internal/store"
)

func TestRetryWithBackoff(t *testing.T) {
	transient := errors.New("connection refused")

	tests := []struct {
		name      string
		failures  int
		err       error
		wantCalls int
		wantErr   bool
	}{
		{name: "succeeds first time", failures: 0, wantCalls: 1},
		{name: "succeeds after transient failures", failures: 2, err: transient, wantCalls: 3},
		{name: "gives up after max retries", failures: 10, err: transient, wantCalls: 4, wantErr: true},
		{name: "config error is not retried", failures: 10, err: fmt.Errorf("%w %q", store.ErrUnknownBackend, "mongo"), wantCalls: 1, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			err := retryWithBackoff(context.Background(), func() error {
				calls++
				if calls <= tt.failures {
					return tt.err
				}
				return nil
			}, isConfigError, 4, time.Millisecond, zap.NewNop(), "Store connection")

			assert.Equal(t, tt.wantCalls, calls)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.err)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestRetryWithBackoff_StopsWhenContextDone(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0

	start := time.Now()
	err := retryWithBackoff(ctx, func() error {
		calls++
		cancel()
		return errors.New("dial tcp: i/o timeout")
	}, isConfigError, 10, time.Hour, zap.NewNop(), "Store connection")

	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
	assert.Less(t, time.Since(start), time.Minute)
}
