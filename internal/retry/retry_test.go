package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vgm/internal/counter"
)

func testConfig() Config {
	return Config{
		MaxAttempts: 3,
		Timeout:     time.Second,
		Backoff:     time.Millisecond,
	}
}

func TestDoSucceedsFirstAttempt(t *testing.T) {
	calls := 0
	err := testConfig().Do(context.Background(), "fetch refs", nil, func(ctx context.Context) error {
		calls++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestDoExhaustsAttempts(t *testing.T) {
	calls := 0
	attempts := counter.NewCounter()
	err := testConfig().Do(context.Background(), "fetch refs", attempts, func(ctx context.Context) error {
		calls++
		return errors.New("connection reset")
	})
	require.Error(t, err)
	assert.Equal(t, 3, calls)
	assert.Equal(t, 3, attempts.Count())
	assert.Contains(t, err.Error(), "fetch refs failed after 3 attempts")
	assert.Contains(t, err.Error(), "connection reset")
}

func TestDoRecoversMidway(t *testing.T) {
	calls := 0
	err := testConfig().Do(context.Background(), "fetch refs", nil, func(ctx context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

// A remote rejection (authorization denied and friends) does not re-consume
// the retry budget: a permanent error stops on its first occurrence.
func TestDoPermanentStopsImmediately(t *testing.T) {
	calls := 0
	denied := errors.New("authorization denied")
	err := testConfig().Do(context.Background(), "fetch refs", nil, func(ctx context.Context) error {
		calls++
		return Permanent(denied)
	})
	require.Error(t, err)
	assert.Equal(t, 1, calls)
	assert.Equal(t, denied, err)
}

func TestDoHonorsTimeoutWindow(t *testing.T) {
	cfg := Config{MaxAttempts: 100, Timeout: 20 * time.Millisecond, Backoff: 50 * time.Millisecond}
	err := cfg.Do(context.Background(), "fetch refs", nil, func(ctx context.Context) error {
		return errors.New("transient")
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), context.DeadlineExceeded.Error())
}

func TestPermanentNilIsNil(t *testing.T) {
	assert.NoError(t, Permanent(nil))
}
