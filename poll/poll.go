// Package poll implements the bounded long-poll loop used by the
// read-side updates endpoints.
package poll

import (
	"context"
	"time"
)

// Fetch performs one read attempt. It returns the current list and
// whether the polled target exists at all; absent targets terminate
// the poll immediately.
type Fetch[T any] func(ctx context.Context) (items []T, exists bool, err error)

// Options bounds one poll.
type Options struct {
	// IterWait is the sleep between empty fetches.
	IterWait time.Duration

	// MaxWait is the total wall-clock budget. When it runs out the
	// poll ends successfully with an empty list.
	MaxWait time.Duration
}

// DefaultOptions returns the usual long-poll budget.
func DefaultOptions() Options {
	return Options{
		IterWait: 250 * time.Millisecond,
		MaxWait:  25 * time.Second,
	}
}

// Run fetches until one of:
//   - the target is absent: returns (nil, false, nil) with no retry;
//   - the fetch yields items: returns them immediately;
//   - the budget elapses: returns (empty, true, nil) - a timeout is a
//     defined outcome, not an error.
//
// The caller blocks for the duration; only its own execution suspends.
func Run[T any](ctx context.Context, fetch Fetch[T], opts Options) ([]T, bool, error) {
	deadline := time.Now().Add(opts.MaxWait)

	for {
		items, exists, err := fetch(ctx)
		if err != nil {
			return nil, false, err
		}
		if !exists {
			return nil, false, nil
		}
		if len(items) > 0 {
			return items, true, nil
		}

		if time.Now().After(deadline) {
			return []T{}, true, nil
		}

		select {
		case <-time.After(opts.IterWait):
		case <-ctx.Done():
			return nil, false, ctx.Err()
		}
	}
}
