package catalog

import (
	"context"
	"sync"

	"github.com/hashicorp/go-multierror"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// group runs at most limit tasks at once and joins them all-or-nothing.
type group struct {
	eg     *errgroup.Group
	policy JoinPolicy

	mu   sync.Mutex
	errs *multierror.Error
}

func newGroup(ctx context.Context, opts Options) (*group, context.Context) {
	g := &group{policy: opts.Policy}
	if opts.Policy == JoinCollect {
		g.eg = new(errgroup.Group)
	} else {
		g.eg, ctx = errgroup.WithContext(ctx)
	}
	g.eg.SetLimit(opts.Concurrency)
	return g, ctx
}

func (g *group) Go(fn func() error) {
	if g.policy != JoinCollect {
		g.eg.Go(fn)
		return
	}
	g.eg.Go(func() error {
		if err := fn(); err != nil {
			g.mu.Lock()
			g.errs = multierror.Append(g.errs, err)
			g.mu.Unlock()
		}
		return nil
	})
}

func (g *group) Wait() error {
	if err := g.eg.Wait(); err != nil {
		return err
	}
	return g.errs.ErrorOrNil()
}

// fanOut calls fn for every input concurrently and returns the results in
// input order, whatever order they complete in.
func fanOut[In, Out any](ctx context.Context, opts Options, in []In, fn func(context.Context, In) (Out, error)) ([]Out, error) {
	out := make([]Out, len(in))
	g, gctx := newGroup(ctx, opts)
	for i, v := range in {
		g.Go(func() error {
			r, err := fn(gctx, v)
			if err != nil {
				return err
			}
			out[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// limited runs fn while holding one slot of sem.
func limited[T any](ctx context.Context, sem *semaphore.Weighted, fn func(context.Context) (T, error)) (T, error) {
	if err := sem.Acquire(ctx, 1); err != nil {
		var zero T
		return zero, err
	}
	defer sem.Release(1)
	return fn(ctx)
}
