package testutil

import (
	"errors"
	"sync"
	"sync/atomic"

	"consentd/pkg/platform/sentinel"
)

// ConcurrentResult tracks outcomes of concurrent test operations.
type ConcurrentResult struct {
	Successes   int32
	Unavailable int32
	Errors      int32
}

// Total returns the total number of operations executed.
func (r *ConcurrentResult) Total() int32 {
	return r.Successes + r.Unavailable + r.Errors
}

// RunConcurrent executes fn in parallel goroutines and counts outcomes.
// Errors matching sentinel.ErrUnavailable are counted separately.
func RunConcurrent(goroutines int, fn func(idx int) error) *ConcurrentResult {
	var wg sync.WaitGroup
	var successes, unavailable, errs atomic.Int32

	for i := range goroutines {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			err := fn(idx)
			switch {
			case err == nil:
				successes.Add(1)
			case errors.Is(err, sentinel.ErrUnavailable):
				unavailable.Add(1)
			default:
				errs.Add(1)
			}
		}(i)
	}
	wg.Wait()

	return &ConcurrentResult{
		Successes:   successes.Load(),
		Unavailable: unavailable.Load(),
		Errors:      errs.Load(),
	}
}

// Collect runs fn in parallel goroutines and returns each result at its index.
func Collect[T any](goroutines int, fn func(idx int) T) []T {
	out := make([]T, goroutines)
	var wg sync.WaitGroup
	for i := range goroutines {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			out[idx] = fn(idx)
		}(i)
	}
	wg.Wait()
	return out
}
