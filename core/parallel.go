package core

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// seqItems extracts the element slice of a Vector or List, the two
// collection shapes pmap/pfilter/preduce accept (spec §4.7).
func seqItems(v Value) ([]Value, error) {
	switch t := v.(type) {
	case *Vector:
		return t.Items, nil
	case *List:
		return t.Items, nil
	default:
		return nil, ErrType.With(attrStr("reason", "expected a Vector or List"), attrType("value", v))
	}
}

// parallelMap applies fn to every element of coll concurrently,
// partitioning across workers goroutines, preserving input order in
// the result (spec §4.7: "pmap preserves input order in the result").
func parallelMap(ctx context.Context, ev *Evaluator, fn Value, coll Value, workers int) (Value, error) {
	items, err := seqItems(coll)
	if err != nil {
		return nil, err
	}

	out := make([]Value, len(items))
	grp, gctx := errgroup.WithContext(ctx)
	grp.SetLimit(max(1, workers))

	for i, item := range items {
		i, item := i, item

		grp.Go(func() error {
			v, err := ev.Apply(gctx, fn, []Value{item}, false)
			if err != nil {
				return err
			}

			out[i] = v

			return nil
		})
	}

	if err := grp.Wait(); err != nil {
		return nil, err
	}

	return &Vector{Items: out}, nil
}

// parallelFilter keeps elements for which pred is truthy, preserving
// the original relative order of surviving elements.
func parallelFilter(ctx context.Context, ev *Evaluator, pred Value, coll Value, workers int) (Value, error) {
	items, err := seqItems(coll)
	if err != nil {
		return nil, err
	}

	keep := make([]bool, len(items))
	grp, gctx := errgroup.WithContext(ctx)
	grp.SetLimit(max(1, workers))

	for i, item := range items {
		i, item := i, item

		grp.Go(func() error {
			v, err := ev.Apply(gctx, pred, []Value{item}, false)
			if err != nil {
				return err
			}

			keep[i] = Truthy(v)

			return nil
		})
	}

	if err := grp.Wait(); err != nil {
		return nil, err
	}

	out := make([]Value, 0, len(items))

	for i, item := range items {
		if keep[i] {
			out = append(out, item)
		}
	}

	return &Vector{Items: out}, nil
}

// parallelReduce partitions coll across workers goroutines, reduces
// each partition sequentially with combiner starting from the
// partition's first element, then, once every partition is done, folds
// the partial results together with combiner starting from identity, in
// partition order (the combiner must be associative).
func parallelReduce(ctx context.Context, ev *Evaluator, combiner Value, identity Value, coll Value, workers int) (Value, error) {
	items, err := seqItems(coll)
	if err != nil {
		return nil, err
	}

	if len(items) == 0 {
		return identity, nil
	}

	n := max(1, workers)
	if n > len(items) {
		n = len(items)
	}

	chunk := (len(items) + n - 1) / n
	partials := make([]Value, n)
	grp, gctx := errgroup.WithContext(ctx)

	for p := 0; p < n; p++ {
		p := p
		lo := p * chunk
		hi := min(lo+chunk, len(items))

		if lo >= hi {
			partials[p] = identity

			continue
		}

		grp.Go(func() error {
			acc := items[lo]

			for _, v := range items[lo+1 : hi] {
				r, err := ev.Apply(gctx, combiner, []Value{acc, v}, false)
				if err != nil {
					return err
				}

				acc = r
			}

			partials[p] = acc

			return nil
		})
	}

	if err := grp.Wait(); err != nil {
		return nil, err
	}

	acc := identity

	for _, partial := range partials {
		r, err := ev.Apply(ctx, combiner, []Value{acc, partial}, false)
		if err != nil {
			return nil, err
		}

		acc = r
	}

	return acc, nil
}
