package scheduler

import (
	"context"
	"math/rand"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/codectx/codectx/processor"
	"github.com/codectx/codectx/scanner"
	"github.com/codectx/codectx/summary"
)

// RetryPolicy controls how transient failures are retried.
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
	Jitter      bool
}

// DefaultRetryPolicy retries twice after the first failure, doubling
// the delay each time.
var DefaultRetryPolicy = RetryPolicy{
	MaxAttempts: 3,
	BaseDelay:   500 * time.Millisecond,
	MaxDelay:    8 * time.Second,
}

// ProcessFunc produces the entry for one file record.
type ProcessFunc func(ctx context.Context, rec scanner.FileRecord) (summary.Entry, error)

// Result is the outcome of processing one file. Err is the final
// failure after retries were exhausted or a terminal error was hit.
type Result struct {
	Path  string
	Entry summary.Entry
	Err   error
}

// Run processes jobs with at most limit workers in flight. Each
// attempt runs under its own timeout; transient failures are retried
// per policy. A per-file failure never stops the run. Results come
// back indexed like jobs. Cancelling ctx aborts the whole run.
func Run(ctx context.Context, jobs []scanner.FileRecord, process ProcessFunc, limit int, policy RetryPolicy, timeout time.Duration) ([]Result, error) {
	if limit < 1 {
		limit = 1
	}
	if policy.MaxAttempts < 1 {
		policy.MaxAttempts = 1
	}

	results := make([]Result, len(jobs))
	g, ctx := errgroup.WithContext(ctx)
	sem := make(chan struct{}, limit)

	for i, rec := range jobs {
		i, rec := i, rec
		g.Go(func() error {
			select {
			case sem <- struct{}{}:
			case <-ctx.Done():
				return ctx.Err()
			}
			defer func() { <-sem }()

			if ctx.Err() != nil {
				return ctx.Err()
			}
			entry, err := processWithRetry(ctx, rec, process, policy, timeout)
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				results[i] = Result{Path: rec.Path, Err: err}
				return nil
			}
			results[i] = Result{Path: rec.Path, Entry: entry}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func processWithRetry(ctx context.Context, rec scanner.FileRecord, process ProcessFunc, policy RetryPolicy, timeout time.Duration) (summary.Entry, error) {
	var lastErr error
	delay := policy.BaseDelay

	for attempt := 1; attempt <= policy.MaxAttempts; attempt++ {
		if attempt > 1 {
			wait := delay
			if hint := processor.RetryHint(lastErr); hint > wait {
				wait = hint
			}
			if policy.Jitter {
				wait += time.Duration(rand.Int63n(int64(delay)/2 + 1))
			}
			select {
			case <-time.After(wait):
			case <-ctx.Done():
				return summary.Entry{}, ctx.Err()
			}
			delay *= 2
			if policy.MaxDelay > 0 && delay > policy.MaxDelay {
				delay = policy.MaxDelay
			}
		}

		entry, err := attemptOnce(ctx, rec, process, timeout)
		if err == nil {
			return entry, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			return summary.Entry{}, ctx.Err()
		}
		if !processor.IsRetryable(err) {
			return summary.Entry{}, err
		}
	}
	return summary.Entry{}, lastErr
}

func attemptOnce(ctx context.Context, rec scanner.FileRecord, process ProcessFunc, timeout time.Duration) (summary.Entry, error) {
	if timeout <= 0 {
		return process(ctx, rec)
	}
	attemptCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return process(attemptCtx, rec)
}
