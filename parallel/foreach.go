// Package parallel contains the bounded worker pool and the parallel hasher used by loaders and splits.
package parallel

import (
	"context"
	"sync"
)

// ForEach executes body for every integer from 0 to length with at most limit goroutines in flight.
// It stops handing out new work after the first error or once ctx is done,
// waits for the running bodies, and returns that error.
func ForEach(ctx context.Context, length, limit int, body func(i int) error) error {
	if limit <= 0 {
		limit = 1 // inline-equivalent, one body at a time
	}
	if length <= 0 {
		return nil // no iterations to perform
	}

	var (
		wg       sync.WaitGroup
		once     sync.Once
		firstErr error
		stop     = make(chan struct{})
		sem      = make(chan struct{}, limit)
	)
	fail := func(err error) {
		once.Do(func() {
			firstErr = err
			close(stop)
		})
	}

loop:
	for i := 0; i < length; i++ {
		if err := ctx.Err(); err != nil {
			fail(err)
			break
		}
		select {
		case <-stop:
			break loop
		case <-ctx.Done():
			fail(ctx.Err())
			break loop
		case sem <- struct{}{}: // acquire
		}
		select {
		case <-stop:
			<-sem
			break loop
		default:
		}
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			defer func() { <-sem }() // release

			if err := body(i); err != nil {
				fail(err)
			}
		}(i)
	}

	wg.Wait()
	return firstErr
}
