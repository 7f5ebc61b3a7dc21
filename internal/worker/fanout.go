package worker

import "sync"

// Outcome is the per-item result of a fan-out: either a value or the
// error that produced it, never both meaningful at once.
type Outcome[T any] struct {
	Value T
	Err   error
}

// Map runs fn over items with at most workers goroutines and returns
// outcomes in input order. Failures are captured per item so one bad
// item never aborts the batch.
func Map[In, Out any](items []In, workers int, fn func(In) (Out, error)) []Outcome[Out] {
	if workers <= 0 {
		workers = 1
	}

	outcomes := make([]Outcome[Out], len(items))
	semaphore := make(chan struct{}, workers)

	var wg sync.WaitGroup
	for i, item := range items {
		wg.Add(1)
		go func(idx int, in In) {
			defer wg.Done()

			semaphore <- struct{}{}
			defer func() { <-semaphore }()

			value, err := fn(in)
			outcomes[idx] = Outcome[Out]{Value: value, Err: err}
		}(i, item)
	}
	wg.Wait()

	return outcomes
}
