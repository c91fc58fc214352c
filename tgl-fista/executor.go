package tglfista

import (
	"golang.org/x/sync/errgroup"
)

// Executor runs the per-task terms of the objective. fn is called once for
// every t in [0, n) and must only write to state owned by index t. Run
// returns after every call has finished.
type Executor interface {
	Run(n int, fn func(t int))
}

// Sequential evaluates tasks one after another on the calling goroutine.
type Sequential struct{}

// Run implements Executor.
func (Sequential) Run(n int, fn func(t int)) {
	for t := 0; t < n; t++ {
		fn(t)
	}
}

// Parallel fans tasks out to at most Workers goroutines and waits for all of
// them before returning.
type Parallel struct {
	Workers int
}

// Run implements Executor.
func (p Parallel) Run(n int, fn func(t int)) {
	if n == 1 {
		fn(0)
		return
	}

	var g errgroup.Group
	if p.Workers > 0 {
		g.SetLimit(p.Workers)
	}
	for t := 0; t < n; t++ {
		t := t
		g.Go(func() error {
			fn(t)
			return nil
		})
	}
	_ = g.Wait()
}
