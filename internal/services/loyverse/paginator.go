package loyverse

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"
)

// pageFunc fetches one page. It returns the page's records and the cursor for
// the next page; an empty cursor means this was the last page.
type pageFunc[T any] func(ctx context.Context, cursor string) ([]T, string, error)

// retryPolicy bounds the retries on rate-limited pages. Delays grow
// exponentially from BaseDelay with jitter.
type retryPolicy struct {
	MaxRetries int
	BaseDelay  time.Duration
}

// fetchAll walks a cursor-paginated listing sequentially and accumulates every
// record. Rate-limited responses retry the same page without advancing the
// cursor, up to MaxRetries per page; any other error aborts the walk and
// discards the accumulated pages.
func fetchAll[T any](ctx context.Context, page pageFunc[T], policy retryPolicy) ([]T, error) {
	var all []T
	cursor := ""
	pages := 0

	for {
		records, next, err := fetchPage(ctx, page, cursor, policy)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", pages+1, err)
		}
		all = append(all, records...)
		pages++

		if next == "" {
			return all, nil
		}
		cursor = next
	}
}

func fetchPage[T any](ctx context.Context, page pageFunc[T], cursor string, policy retryPolicy) ([]T, string, error) {
	attempt := 0
	for {
		records, next, err := page(ctx, cursor)
		if err == nil {
			return records, next, nil
		}
		if !errors.Is(err, ErrRateLimited) {
			return nil, "", err
		}

		attempt++
		if attempt > policy.MaxRetries {
			return nil, "", fmt.Errorf("rate limited after %d attempts: %w", attempt, err)
		}

		delay := backoffDelay(policy.BaseDelay, attempt)
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, "", ctx.Err()
		}
	}
}

// backoffDelay returns BaseDelay * 2^(attempt-1) with up to 25% jitter.
func backoffDelay(base time.Duration, attempt int) time.Duration {
	delay := base << (attempt - 1)
	jitter := time.Duration(rand.Int63n(int64(delay)/4 + 1))
	return delay + jitter
}
