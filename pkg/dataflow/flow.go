// Package dataflow builds small channel pipelines whose stages run in one
// errgroup: the first failing stage cancels the rest, and ForEach reports it.
package dataflow

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// MapFunc transforms one message.
type MapFunc func(msg interface{}) (interface{}, error)

// Flow owns the goroutines of a pipeline.
type Flow struct {
	ctx context.Context
	g   *errgroup.Group
}

// New creates a Flow bound to ctx. Cancelling ctx stops every stage.
func New(ctx context.Context) *Flow {
	g, gctx := errgroup.WithContext(ctx)
	return &Flow{ctx: gctx, g: g}
}

// Context returns the flow's context. It is cancelled once any stage fails.
func (f *Flow) Context() context.Context {
	return f.ctx
}

// From emits items in order.
func (f *Flow) From(items ...interface{}) <-chan interface{} {
	out := make(chan interface{})
	f.g.Go(func() error {
		defer close(out)
		for _, item := range items {
			select {
			case out <- item:
			case <-f.ctx.Done():
				return f.ctx.Err()
			}
		}
		return nil
	})
	return out
}

// Range emits the ints start..end inclusive.
func (f *Flow) Range(start, end int, opts ...Option) <-chan interface{} {
	cfg := applyOptions(opts)
	out := make(chan interface{}, cfg.bufferSize)
	f.g.Go(func() error {
		defer close(out)
		for i := start; i <= end; i++ {
			select {
			case out <- i:
			case <-f.ctx.Done():
				return f.ctx.Err()
			}
		}
		return nil
	})
	return out
}

type result struct {
	value interface{}
	err   error
}

type job struct {
	msg interface{}
	res chan result
}

// Map applies fn to every message on the configured number of workers and
// emits the results in input order. Each message gets a one-slot future that is
// queued before it is handed to a worker; the emitter drains the queue in
// order, so at most workers+bufferSize results are pending at any time.
func (f *Flow) Map(in <-chan interface{}, fn MapFunc, opts ...Option) <-chan interface{} {
	cfg := applyOptions(opts)
	out := make(chan interface{}, cfg.bufferSize)
	jobs := make(chan job)
	futures := make(chan chan result, cfg.workers+cfg.bufferSize)

	// Dispatcher
	f.g.Go(func() error {
		defer close(jobs)
		defer close(futures)
		for {
			var msg interface{}
			var ok bool
			select {
			case msg, ok = <-in:
				if !ok {
					return nil
				}
			case <-f.ctx.Done():
				return f.ctx.Err()
			}

			res := make(chan result, 1)
			select {
			case futures <- res:
			case <-f.ctx.Done():
				return f.ctx.Err()
			}
			select {
			case jobs <- job{msg: msg, res: res}:
			case <-f.ctx.Done():
				return f.ctx.Err()
			}
		}
	})

	// Workers
	for i := 0; i < cfg.workers; i++ {
		f.g.Go(func() error {
			for j := range jobs {
				v, err := fn(j.msg)
				j.res <- result{value: v, err: err}
			}
			return nil
		})
	}

	// Emitter
	f.g.Go(func() error {
		defer close(out)
		for res := range futures {
			var r result
			select {
			case r = <-res:
			case <-f.ctx.Done():
				return f.ctx.Err()
			}
			if r.err != nil {
				return r.err
			}
			select {
			case out <- r.value:
			case <-f.ctx.Done():
				return f.ctx.Err()
			}
		}
		return nil
	})

	return out
}

// ForEach runs fn for every message in the caller's goroutine, then waits for
// all stages. It returns the first error from fn or any stage.
func (f *Flow) ForEach(in <-chan interface{}, fn func(msg interface{}) error) error {
	var fnErr error
	for msg := range in {
		if fnErr != nil {
			continue
		}
		if err := fn(msg); err != nil {
			fnErr = err
			// Stop the producers; the loop keeps draining so they can exit.
			f.g.Go(func() error { return err })
		}
	}

	err := f.g.Wait()
	if fnErr != nil {
		return fnErr
	}
	return err
}
