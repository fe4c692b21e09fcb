package retry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"vgm/internal/counter"
	logger "vgm/internal/log"
)

// Config bounds retries for a single network call: at most MaxAttempts
// attempts within Timeout total, with Backoff between attempts. Built once
// per operation and shared by reference across that operation's calls.
// Whole workflow phases are never retried, only the call inside them.
type Config struct {
	MaxAttempts int
	Timeout     time.Duration
	Backoff     time.Duration
}

func DefaultConfig() Config {
	return Config{
		MaxAttempts: 3,
		Timeout:     30 * time.Second,
		Backoff:     2 * time.Second,
	}
}

type permanentError struct {
	err error
}

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// Permanent marks an error as not worth retrying. Remote rejections such as
// denied authorization are permanent; transport faults and 5xx are not.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// Do runs fn until it succeeds, the attempt budget is spent, or the timeout
// window closes. An error wrapped with Permanent stops the loop on first
// occurrence without consuming further attempts. Each attempt bumps the
// optional counter so the status view can show retry progress.
func (c Config) Do(ctx context.Context, name string, attempts *counter.Counter, fn func(ctx context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, c.Timeout)
	defer cancel()

	var lastErr error
	for attempt := 1; attempt <= c.MaxAttempts; attempt++ {
		if attempts != nil {
			attempts.Add(1)
		}
		lastErr = fn(ctx)
		if lastErr == nil {
			return nil
		}

		var perm *permanentError
		if errors.As(lastErr, &perm) {
			return perm.err
		}
		if attempt == c.MaxAttempts {
			break
		}

		logger.Log.Debugf("%s failed (attempt %d of %d): %v", name, attempt, c.MaxAttempts, lastErr)
		select {
		case <-ctx.Done():
			return fmt.Errorf("%s: %w (last error: %v)", name, ctx.Err(), lastErr)
		case <-time.After(c.Backoff):
		}
	}
	return fmt.Errorf("%s failed after %d attempts: %w", name, c.MaxAttempts, lastErr)
}
