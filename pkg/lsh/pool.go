package lsh

import (
	"context"
	"sync"
)

// runOverPoints distributes point indices [0, n) across workers goroutines,
// each running fn(id) to completion before taking the next index. With
// workers <= 1 it runs sequentially on the calling goroutine. The first
// error observed aborts the run; outstanding workers still drain their
// current item but no further indices are dispatched.
func runOverPoints(ctx context.Context, n, workers int, fn func(id PointID) error) error {
	if workers <= 1 {
		for i := 0; i < n; i++ {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := fn(PointID(i)); err != nil {
				return err
			}
		}
		return nil
	}

	jobs := make(chan PointID)
	errCh := make(chan error, workers)
	stop := make(chan struct{})
	var stopOnce sync.Once
	var wg sync.WaitGroup

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for id := range jobs {
				if err := fn(id); err != nil {
					errCh <- err
					stopOnce.Do(func() { close(stop) })
					return
				}
			}
		}()
	}

	go func() {
		defer close(jobs)
		for i := 0; i < n; i++ {
			select {
			case <-stop:
				return
			default:
			}
			select {
			case jobs <- PointID(i):
			case <-ctx.Done():
				return
			case <-stop:
				return
			}
		}
	}()

	wg.Wait()
	close(errCh)
	if err := ctx.Err(); err != nil {
		return err
	}
	for err := range errCh {
		if err != nil {
			return err
		}
	}
	return nil
}

// runOverTables distributes table indices [0, n) across workers goroutines
// running fn(i); fn is responsible for taking extMu itself around any
// shared state it touches. With workers <= 1 it runs sequentially.
func runOverTables(ctx context.Context, n, workers int, fn func(i int) error, extMu *sync.Mutex) error {
	if workers <= 1 {
		for i := 0; i < n; i++ {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := fn(i); err != nil {
				return err
			}
		}
		return nil
	}

	jobs := make(chan int)
	errCh := make(chan error, workers)
	var wg sync.WaitGroup

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				if err := fn(i); err != nil {
					errCh <- err
					return
				}
			}
		}()
	}

	go func() {
		defer close(jobs)
		for i := 0; i < n; i++ {
			select {
			case jobs <- i:
			case <-ctx.Done():
				return
			}
		}
	}()

	wg.Wait()
	close(errCh)
	if err := ctx.Err(); err != nil {
		return err
	}
	for err := range errCh {
		if err != nil {
			return err
		}
	}
	return nil
}
