package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDo_SucceedsFirstTry(t *testing.T) {
	calls := 0
	err := Do(context.Background(), DefaultPolicy, nil, func(ctx context.Context) error {
		calls++
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestDo_PermanentErrorNoRetry(t *testing.T) {
	calls := 0
	permanent := errors.New("bad request")

	err := Do(context.Background(), DefaultPolicy, nil, func(ctx context.Context) error {
		calls++
		return permanent
	})

	assert.ErrorIs(t, err, permanent)
	assert.Equal(t, 1, calls)
}

func TestDo_TransientRetriesThenSucceeds(t *testing.T) {
	calls := 0
	policy := Policy{BaseDelay: time.Millisecond, MaxDelay: 5 * time.Millisecond, MaxRetries: 3}

	err := Do(context.Background(), policy, nil, func(ctx context.Context) error {
		calls++
		if calls < 3 {
			return MarkTransient(errors.New("connection refused"))
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestDo_ExhaustsRetries(t *testing.T) {
	calls := 0
	policy := Policy{BaseDelay: time.Millisecond, MaxDelay: 5 * time.Millisecond, MaxRetries: 2}
	transientErr := errors.New("timeout")

	err := Do(context.Background(), policy, nil, func(ctx context.Context) error {
		calls++
		return MarkTransient(transientErr)
	})

	assert.ErrorIs(t, err, transientErr)
	assert.Equal(t, 3, calls) // initial + 2 retries
}

func TestDo_ContextCancelledDuringBackoff(t *testing.T) {
	policy := Policy{BaseDelay: 50 * time.Millisecond, MaxDelay: time.Second, MaxRetries: 5}
	ctx, cancel := context.WithCancel(context.Background())

	calls := 0
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	err := Do(ctx, policy, nil, func(ctx context.Context) error {
		calls++
		return MarkTransient(errors.New("unavailable"))
	})

	assert.ErrorIs(t, err, context.Canceled)
}

func TestDo_OnRetryCalledWithIncreasingDelay(t *testing.T) {
	policy := Policy{BaseDelay: time.Millisecond, MaxDelay: 4 * time.Millisecond, MaxRetries: 3}
	var delays []time.Duration

	_ = Do(context.Background(), policy, func(attempt int, delay time.Duration, err error) {
		delays = append(delays, delay)
	}, func(ctx context.Context) error {
		return MarkTransient(errors.New("fail"))
	})

	require.Len(t, delays, 3)
	assert.Equal(t, time.Millisecond, delays[0])
	assert.Equal(t, 2*time.Millisecond, delays[1])
	assert.Equal(t, 4*time.Millisecond, delays[2]) // capped at MaxDelay
}

func TestMarkTransient_Nil(t *testing.T) {
	assert.Nil(t, MarkTransient(nil))
}
